// CineSwipe - Real-Time Group Movie Swipe Sessions
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cineswipe

package session

import (
	"context"
	"sort"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/tomtom215/cineswipe/internal/logging"
	"github.com/tomtom215/cineswipe/internal/metrics"
)

// JoinRequest describes a connection entering a room.
type JoinRequest struct {
	RoomID      string
	Conn        ConnID
	UserID      string
	DisplayName string
	Outbox      Outbox

	// Candidates are appended to the room queue, skipping items already queued.
	Candidates []string
}

type member struct {
	id          ConnID
	userID      string
	displayName string
	outbox      Outbox
	joinedAt    time.Time
}

// Commands handled by the room goroutine. Each carries a buffered reply
// channel so the room never blocks on a caller that gave up.
type (
	joinCmd struct {
		req   JoinRequest
		reply chan error
	}
	leaveCmd struct {
		conn   ConnID
		reason string
		reply  chan error
	}
	voteCmd struct {
		vote  Vote
		reply chan error
	}
	addCandidatesCmd struct {
		conn  ConnID
		items []string
		added *int
		reply chan error
	}
	expireCmd struct {
		reason string
		// idleBefore, when non-zero, expires only if the room has been idle
		// since before this instant.
		idleBefore time.Time
		expired    *bool
		reply      chan error
	}
)

// Room is a single swipe session. All fields below the divider are owned by
// the run goroutine.
type Room struct {
	id       string
	cfg      Config
	clock    clockwork.Clock
	sink     EventSink
	onClosed func(*Room)
	log      zerolog.Logger

	inbox    chan interface{}
	done     chan struct{}
	snapshot atomic.Pointer[RoomView]

	// ---
	state        State
	members      map[ConnID]*member
	queue        []string
	queued       map[string]struct{}
	pos          int
	current      string
	round        int
	tally        map[ConnID]Decision
	createdAt    time.Time
	lastActivity time.Time
	grace        clockwork.Timer
}

func newRoom(id string, cfg Config, clock clockwork.Clock, sink EventSink, candidates []string, onClosed func(*Room)) *Room {
	now := clock.Now()
	r := &Room{
		id:           id,
		cfg:          cfg,
		clock:        clock,
		sink:         sink,
		onClosed:     onClosed,
		log:          logging.WithComponent("room").With().Str("room_id", id).Logger(),
		inbox:        make(chan interface{}, cfg.InboxSize),
		done:         make(chan struct{}),
		state:        StateForming,
		members:      make(map[ConnID]*member),
		queued:       make(map[string]struct{}),
		tally:        make(map[ConnID]Decision),
		createdAt:    now,
		lastActivity: now,
	}
	r.enqueue(candidates)
	r.promote()
	r.publishSnapshot()
	return r
}

// ID returns the room identifier.
func (r *Room) ID() string { return r.id }

// Snapshot returns the state published after the last handled command.
func (r *Room) Snapshot() RoomView { return *r.snapshot.Load() }

// Done is closed once the room has reached Closed and stopped.
func (r *Room) Done() <-chan struct{} { return r.done }

func (r *Room) run() {
	defer close(r.done)
	for {
		var graceC <-chan time.Time
		if r.grace != nil {
			graceC = r.grace.Chan()
		}

		select {
		case cmd := <-r.inbox:
			r.handle(cmd)
		case <-graceC:
			r.grace = nil
			if r.state == StateClosing {
				r.close(ReasonGraceExpired)
			}
		}

		r.publishSnapshot()
		if r.state == StateClosed {
			r.drain()
			return
		}
	}
}

// drain fails any commands that were queued behind the close.
func (r *Room) drain() {
	for {
		select {
		case cmd := <-r.inbox:
			replyTo(cmd, ErrRoomClosed)
		default:
			return
		}
	}
}

func replyTo(cmd interface{}, err error) {
	switch c := cmd.(type) {
	case joinCmd:
		c.reply <- err
	case leaveCmd:
		c.reply <- err
	case voteCmd:
		c.reply <- err
	case addCandidatesCmd:
		c.reply <- err
	case expireCmd:
		c.reply <- err
	}
}

func (r *Room) handle(cmd interface{}) {
	switch c := cmd.(type) {
	case joinCmd:
		c.reply <- r.handleJoin(c.req)
	case leaveCmd:
		c.reply <- r.handleLeave(c.conn, c.reason)
	case voteCmd:
		c.reply <- r.handleVote(c.vote)
	case addCandidatesCmd:
		n, err := r.handleAddCandidates(c.conn, c.items)
		*c.added = n
		c.reply <- err
	case expireCmd:
		*c.expired = r.handleExpire(c.reason, c.idleBefore)
		c.reply <- nil
	default:
		r.log.Error().Msgf("unknown room command %T", cmd)
	}
}

// send delivers cmd to the room goroutine and waits for its reply.
func (r *Room) send(ctx context.Context, cmd interface{}, reply chan error) error {
	select {
	case r.inbox <- cmd:
	case <-r.done:
		return ErrRoomClosed
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-reply:
		return err
	case <-r.done:
		select {
		case err := <-reply:
			return err
		default:
			return ErrRoomClosed
		}
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Room) join(ctx context.Context, req JoinRequest) error {
	reply := make(chan error, 1)
	return r.send(ctx, joinCmd{req: req, reply: reply}, reply)
}

func (r *Room) leave(ctx context.Context, conn ConnID, reason string) error {
	reply := make(chan error, 1)
	return r.send(ctx, leaveCmd{conn: conn, reason: reason, reply: reply}, reply)
}

func (r *Room) submitVote(ctx context.Context, v Vote) error {
	reply := make(chan error, 1)
	return r.send(ctx, voteCmd{vote: v, reply: reply}, reply)
}

func (r *Room) addCandidates(ctx context.Context, conn ConnID, items []string) (int, error) {
	reply := make(chan error, 1)
	added := new(int)
	err := r.send(ctx, addCandidatesCmd{conn: conn, items: items, added: added, reply: reply}, reply)
	if err != nil {
		return 0, err
	}
	return *added, nil
}

func (r *Room) expire(ctx context.Context, reason string, idleBefore time.Time) (bool, error) {
	reply := make(chan error, 1)
	expired := new(bool)
	err := r.send(ctx, expireCmd{reason: reason, idleBefore: idleBefore, expired: expired, reply: reply}, reply)
	if err != nil {
		return false, err
	}
	return *expired, nil
}

func (r *Room) handleJoin(req JoinRequest) error {
	if r.state == StateClosed {
		return ErrRoomClosed
	}

	if m, ok := r.members[req.Conn]; ok {
		// Rejoin by the same connection refreshes its outbox only.
		m.outbox = req.Outbox
		r.enqueue(req.Candidates)
		r.promote()
		r.broadcastState()
		return nil
	}

	if len(r.members) >= r.cfg.MaxMembers {
		return ErrRoomFull
	}

	now := r.clock.Now()
	r.members[req.Conn] = &member{
		id:          req.Conn,
		userID:      req.UserID,
		displayName: req.DisplayName,
		outbox:      req.Outbox,
		joinedAt:    now,
	}
	r.lastActivity = now
	metrics.RecordMemberJoined()

	if r.grace != nil {
		r.grace.Stop()
		r.grace = nil
		r.log.Debug().Msg("Rejoin cancelled grace period")
	}

	r.enqueue(req.Candidates)
	r.promote()
	r.updateState()

	r.log.Debug().Str("conn_id", string(req.Conn)).Int("members", len(r.members)).Msg("Member joined")
	r.broadcastState()
	return nil
}

func (r *Room) handleLeave(conn ConnID, reason string) error {
	if r.state == StateClosed {
		return ErrRoomClosed
	}
	if _, ok := r.members[conn]; !ok {
		return ErrNotAMember
	}
	r.removeMember(conn, reason)
	return nil
}

// removeMember drops conn and applies the consequences for the room.
func (r *Room) removeMember(conn ConnID, reason string) {
	delete(r.members, conn)
	delete(r.tally, conn)
	r.lastActivity = r.clock.Now()
	metrics.RecordMemberLeft(reason)

	r.log.Debug().Str("conn_id", string(conn)).Str("reason", reason).Int("members", len(r.members)).Msg("Member left")

	if len(r.members) == 0 {
		r.state = StateClosing
		r.grace = r.clock.NewTimer(r.cfg.GracePeriod)
		r.log.Debug().Dur("grace", r.cfg.GracePeriod).Msg("Room empty, closing")
		return
	}

	r.updateState()
	if r.state == StateActive {
		// The departed member may have been the last undecided vote.
		if r.conclude(r.evaluate()) {
			return
		}
	}
	r.broadcastState()
}

func (r *Room) handleVote(v Vote) error {
	if r.state == StateClosed {
		return ErrRoomClosed
	}
	m, ok := r.members[v.Conn]
	if !ok {
		metrics.RecordVoteDropped("not_a_member")
		return ErrNotAMember
	}
	if co, ok := m.outbox.(closedOutbox); ok && co.Closed() {
		// The connection is already gone; its pending leave wins over this vote.
		r.removeMember(v.Conn, LeaveDisconnect)
		metrics.RecordVoteDropped("disconnected")
		return ErrNotAMember
	}
	if r.state != StateActive {
		metrics.RecordVoteDropped("not_active")
		return ErrRoomNotActive
	}
	if r.current == "" || v.ItemID != r.current || (v.Round != 0 && v.Round != r.round) {
		metrics.RecordVoteDropped("stale")
		return ErrStaleRound
	}

	r.tally[v.Conn] = v.Decision
	r.lastActivity = r.clock.Now()
	metrics.RecordVote(bool(v.Decision))

	r.broadcast(Event{Type: EventVoteRecorded, RoomID: r.id, Data: VoteRecordedData{
		Member:  v.Conn,
		Round:   r.round,
		Votes:   len(r.tally),
		Members: len(r.members),
	}})

	r.conclude(r.evaluate())
	return nil
}

// evaluate runs the aggregator over the current round. Every tally key must be
// a member; a stray entry is logged, discarded and the round left pending.
func (r *Room) evaluate() Result {
	corrupt := false
	for conn := range r.tally {
		if _, ok := r.members[conn]; !ok {
			r.log.Error().Str("conn_id", string(conn)).Int("round", r.round).Msg("Tally entry for non-member discarded")
			delete(r.tally, conn)
			corrupt = true
		}
	}
	if corrupt {
		return Result{Outcome: Pending}
	}
	return Evaluate(r.tally, r.memberIDs(), r.current)
}

// conclude acts on a round verdict and reports whether the round advanced.
func (r *Room) conclude(res Result) bool {
	switch res.Outcome {
	case Match:
		ev := Event{Type: EventMatchFound, RoomID: r.id, Data: MatchFoundData{
			ItemID: res.ItemID,
			Round:  r.round,
			At:     r.clock.Now().UTC(),
		}}
		r.log.Info().Str("item_id", res.ItemID).Int("round", r.round).Msg("Match found")
		metrics.RecordMatch()
		r.broadcast(ev)
		r.emit(ev)
	case RoundExhausted:
		ev := Event{Type: EventRoundExhausted, RoomID: r.id, Data: RoundExhaustedData{
			ItemID: res.ItemID,
			Round:  r.round,
		}}
		metrics.RecordRoundExhausted()
		r.broadcast(ev)
		r.emit(ev)
	default:
		return false
	}
	r.advanceRound()
	return true
}

// advanceRound moves to the next candidate that has not been shown.
func (r *Room) advanceRound() {
	r.tally = make(map[ConnID]Decision, len(r.members))
	if r.current != "" {
		r.pos++
		r.current = ""
	}
	r.promote()
	r.broadcastState()
}

// promote fills an empty current slot from the queue, opening a new round.
func (r *Room) promote() {
	if r.current != "" || r.pos >= len(r.queue) {
		return
	}
	r.current = r.queue[r.pos]
	r.round++
}

// enqueue appends items not yet queued, up to MaxCandidates. It returns the
// number added.
func (r *Room) enqueue(items []string) int {
	added := 0
	for _, item := range items {
		if item == "" || len(r.queue) >= r.cfg.MaxCandidates {
			continue
		}
		if _, dup := r.queued[item]; dup {
			continue
		}
		r.queued[item] = struct{}{}
		r.queue = append(r.queue, item)
		added++
	}
	return added
}

func (r *Room) handleAddCandidates(conn ConnID, items []string) (int, error) {
	if r.state == StateClosed {
		return 0, ErrRoomClosed
	}
	if _, ok := r.members[conn]; !ok {
		return 0, ErrNotAMember
	}
	n := r.enqueue(items)
	if n > 0 {
		r.lastActivity = r.clock.Now()
		r.promote()
		r.broadcastState()
	}
	return n, nil
}

func (r *Room) handleExpire(reason string, idleBefore time.Time) bool {
	if r.state == StateClosed {
		return false
	}
	if !idleBefore.IsZero() && r.lastActivity.After(idleBefore) {
		return false
	}
	r.close(reason)
	return true
}

func (r *Room) updateState() {
	switch {
	case len(r.members) >= r.cfg.MinMembers:
		if r.state != StateActive {
			r.log.Debug().Msg("Room active")
		}
		r.state = StateActive
	default:
		r.state = StateForming
	}
}

// close notifies members and marks the room Closed. The run loop exits
// after the current command.
func (r *Room) close(reason string) {
	if r.grace != nil {
		r.grace.Stop()
		r.grace = nil
	}
	ev := Event{Type: EventRoomClosed, RoomID: r.id, Data: RoomClosedData{Reason: reason}}
	r.broadcast(ev)
	r.emit(ev)

	for id := range r.members {
		metrics.RecordMemberLeft(reason)
		delete(r.members, id)
	}
	r.tally = map[ConnID]Decision{}
	r.state = StateClosed
	metrics.RecordRoomClosed(reason)
	r.log.Info().Str("reason", reason).Int("rounds", r.round).Msg("Room closed")

	if r.onClosed != nil {
		r.onClosed(r)
	}
}

func (r *Room) memberIDs() []ConnID {
	ids := make([]ConnID, 0, len(r.members))
	for id := range r.members {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (r *Room) memberViews() []MemberView {
	views := make([]MemberView, 0, len(r.members))
	for _, id := range r.memberIDs() {
		m := r.members[id]
		_, voted := r.tally[id]
		views = append(views, MemberView{
			ID:          m.id,
			UserID:      m.userID,
			DisplayName: m.displayName,
			Voted:       voted,
		})
	}
	return views
}

func (r *Room) remaining() int {
	left := len(r.queue) - r.pos
	if r.current != "" {
		left--
	}
	if left < 0 {
		return 0
	}
	return left
}

func (r *Room) stateData() RoomStateData {
	return RoomStateData{
		State:       r.state,
		Members:     r.memberViews(),
		CurrentItem: r.current,
		Round:       r.round,
		Remaining:   r.remaining(),
		Exhausted:   r.current == "" && len(r.queue) > 0,
	}
}

func (r *Room) broadcastState() {
	r.broadcast(Event{Type: EventRoomState, RoomID: r.id, Data: r.stateData()})
}

// broadcast offers ev to every member without waiting on any of them.
func (r *Room) broadcast(ev Event) {
	for _, id := range r.memberIDs() {
		m := r.members[id]
		if m.outbox == nil {
			continue
		}
		if !m.outbox.Deliver(ev) {
			metrics.RecordBroadcastDropped(string(ev.Type))
			r.log.Warn().Str("conn_id", string(id)).Str("event", string(ev.Type)).Msg("Dropped event for slow or closed member")
		}
	}
}

func (r *Room) emit(ev Event) {
	if r.sink != nil {
		r.sink.Publish(ev)
	}
}

func (r *Room) publishSnapshot() {
	d := r.stateData()
	r.snapshot.Store(&RoomView{
		ID:           r.id,
		State:        d.State,
		Members:      d.Members,
		CurrentItem:  d.CurrentItem,
		Round:        d.Round,
		Remaining:    d.Remaining,
		Exhausted:    d.Exhausted,
		CreatedAt:    r.createdAt,
		LastActivity: r.lastActivity,
	})
}
