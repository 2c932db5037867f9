// CineSwipe - Real-Time Group Movie Swipe Sessions
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cineswipe

package session

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/tomtom215/cineswipe/internal/logging"
	"github.com/tomtom215/cineswipe/internal/metrics"
)

// Registry owns every live room in the process. Its lock guards only the
// room table; per-room work runs on each room's own goroutine.
type Registry struct {
	cfg   Config
	clock clockwork.Clock
	sink  EventSink

	mu     sync.RWMutex
	rooms  map[string]*Room
	closed bool
}

// Option customizes a Registry.
type Option func(*Registry)

// WithClock replaces the real clock, typically with a clockwork.FakeClock in tests.
func WithClock(c clockwork.Clock) Option {
	return func(g *Registry) { g.clock = c }
}

// WithEventSink forwards match, exhausted-round and closed events to sink.
func WithEventSink(s EventSink) Option {
	return func(g *Registry) { g.sink = s }
}

// NewRegistry creates an empty registry.
func NewRegistry(cfg Config, opts ...Option) *Registry {
	g := &Registry{
		cfg:   cfg.withDefaults(),
		clock: clockwork.NewRealClock(),
		rooms: make(map[string]*Room),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Config returns the effective room configuration.
func (g *Registry) Config() Config { return g.cfg }

// Create makes an empty room. An empty id generates one.
func (g *Registry) Create(_ context.Context, id string, candidates []string) (RoomView, error) {
	if id == "" {
		id = NewRoomID()
	}
	if !ValidRoomID(id) {
		return RoomView{}, ErrInvalidRoomID
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return RoomView{}, ErrRegistryClosed
	}
	if _, ok := g.rooms[id]; ok {
		return RoomView{}, fmt.Errorf("create %s: %w", id, ErrRoomExists)
	}
	room := g.startRoomLocked(id, candidates)
	return room.Snapshot(), nil
}

// CreateOrJoin admits req.Conn to req.RoomID, creating the room when absent.
func (g *Registry) CreateOrJoin(ctx context.Context, req JoinRequest) (RoomView, error) {
	if !ValidRoomID(req.RoomID) {
		return RoomView{}, ErrInvalidRoomID
	}
	if req.Conn == "" {
		return RoomView{}, fmt.Errorf("join %s: empty connection id", req.RoomID)
	}

	room, err := g.getOrCreate(req.RoomID, req.Candidates)
	if err != nil {
		return RoomView{}, err
	}
	if err := room.join(ctx, req); err != nil {
		return RoomView{}, fmt.Errorf("join %s: %w", req.RoomID, err)
	}

	ctx = logging.ContextWithRoomID(ctx, req.RoomID)
	logging.Ctx(ctx).Debug().Str("conn_id", string(req.Conn)).Msg("Joined room")
	return room.Snapshot(), nil
}

func (g *Registry) getOrCreate(id string, candidates []string) (*Room, error) {
	g.mu.RLock()
	room, ok := g.rooms[id]
	closed := g.closed
	g.mu.RUnlock()
	if closed {
		return nil, ErrRegistryClosed
	}
	if ok {
		return room, nil
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return nil, ErrRegistryClosed
	}
	if room, ok := g.rooms[id]; ok {
		return room, nil
	}
	return g.startRoomLocked(id, candidates), nil
}

// startRoomLocked must be called with mu held for writing.
func (g *Registry) startRoomLocked(id string, candidates []string) *Room {
	room := newRoom(id, g.cfg, g.clock, g.sink, candidates, g.remove)
	g.rooms[id] = room
	go room.run()
	metrics.RecordRoomCreated()
	logging.Info().Str("room_id", id).Int("candidates", len(candidates)).Msg("Room created")
	return room
}

// remove is called by a room as it closes.
func (g *Registry) remove(r *Room) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if cur, ok := g.rooms[r.id]; ok && cur == r {
		delete(g.rooms, r.id)
	}
}

// Lookup returns the latest snapshot of a live room.
func (g *Registry) Lookup(id string) (RoomView, bool) {
	g.mu.RLock()
	room, ok := g.rooms[id]
	g.mu.RUnlock()
	if !ok {
		return RoomView{}, false
	}
	view := room.Snapshot()
	if view.State == StateClosed {
		return RoomView{}, false
	}
	return view, true
}

// Exists reports whether a live room has the given id.
func (g *Registry) Exists(id string) bool {
	_, ok := g.Lookup(id)
	return ok
}

func (g *Registry) room(id string) (*Room, error) {
	g.mu.RLock()
	room, ok := g.rooms[id]
	g.mu.RUnlock()
	if !ok {
		return nil, ErrRoomNotFound
	}
	return room, nil
}

// Leave removes conn from the room. The last member leaving starts the grace period.
func (g *Registry) Leave(ctx context.Context, roomID string, conn ConnID, reason string) error {
	room, err := g.room(roomID)
	if err != nil {
		return err
	}
	if err := room.leave(ctx, conn, reason); err != nil {
		return fmt.Errorf("leave %s: %w", roomID, err)
	}
	return nil
}

// SubmitVote records v in the room's current round.
func (g *Registry) SubmitVote(ctx context.Context, roomID string, v Vote) error {
	room, err := g.room(roomID)
	if err != nil {
		return err
	}
	if err := room.submitVote(ctx, v); err != nil {
		return fmt.Errorf("vote %s: %w", roomID, err)
	}
	return nil
}

// AddCandidates extends the room queue and returns how many items were new.
func (g *Registry) AddCandidates(ctx context.Context, roomID string, conn ConnID, items []string) (int, error) {
	room, err := g.room(roomID)
	if err != nil {
		return 0, err
	}
	n, err := room.addCandidates(ctx, conn, items)
	if err != nil {
		return 0, fmt.Errorf("add candidates %s: %w", roomID, err)
	}
	return n, nil
}

// SweepExpired closes every room whose last activity is older than the idle
// timeout at now, whatever its membership. It returns the number closed.
func (g *Registry) SweepExpired(ctx context.Context, now time.Time) int {
	cutoff := now.Add(-g.cfg.IdleTimeout)

	g.mu.RLock()
	candidates := make([]*Room, 0)
	for _, room := range g.rooms {
		if !room.Snapshot().LastActivity.After(cutoff) {
			candidates = append(candidates, room)
		}
	}
	g.mu.RUnlock()

	expired := 0
	for _, room := range candidates {
		ok, err := room.expire(ctx, ReasonIdleTimeout, cutoff)
		if err != nil {
			logging.Debug().Err(err).Str("room_id", room.id).Msg("Sweep skipped room")
			continue
		}
		if ok {
			expired++
		}
	}
	if expired > 0 {
		logging.Info().Int("expired", expired).Msg("Swept idle rooms")
	}
	return expired
}

// Shutdown closes every room and rejects further creation.
func (g *Registry) Shutdown(ctx context.Context) error {
	g.mu.Lock()
	g.closed = true
	rooms := make([]*Room, 0, len(g.rooms))
	for _, room := range g.rooms {
		rooms = append(rooms, room)
	}
	g.mu.Unlock()

	for _, room := range rooms {
		if _, err := room.expire(ctx, ReasonShutdown, time.Time{}); err != nil && ctx.Err() != nil {
			return fmt.Errorf("shutdown: %w", ctx.Err())
		}
		select {
		case <-room.Done():
		case <-ctx.Done():
			return fmt.Errorf("shutdown: %w", ctx.Err())
		}
	}
	return nil
}

// Stats summarizes the registry for the admin API.
type Stats struct {
	Rooms   int            `json:"rooms"`
	Members int            `json:"members"`
	ByState map[string]int `json:"by_state"`
}

// Stats counts live rooms and members.
func (g *Registry) Stats() Stats {
	views := g.List()
	s := Stats{Rooms: len(views), ByState: map[string]int{}}
	for _, v := range views {
		s.Members += len(v.Members)
		s.ByState[v.State.String()]++
	}
	return s
}

// List returns snapshots of all live rooms ordered by id.
func (g *Registry) List() []RoomView {
	g.mu.RLock()
	views := make([]RoomView, 0, len(g.rooms))
	for _, room := range g.rooms {
		if v := room.Snapshot(); v.State != StateClosed {
			views = append(views, v)
		}
	}
	g.mu.RUnlock()
	sort.Slice(views, func(i, j int) bool { return views[i].ID < views[j].ID })
	return views
}
