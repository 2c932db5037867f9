// CineSwipe - Real-Time Group Movie Swipe Sessions
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cineswipe

package websocket

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/tomtom215/cineswipe/internal/auth"
	"github.com/tomtom215/cineswipe/internal/logging"
	"github.com/tomtom215/cineswipe/internal/metrics"
	"github.com/tomtom215/cineswipe/internal/session"
	"github.com/tomtom215/cineswipe/internal/validation"
)

// leaveTimeout bounds the disconnect leave issued after the socket is gone.
const leaveTimeout = 5 * time.Second

// RoomService is the part of the session registry a connection drives.
type RoomService interface {
	CreateOrJoin(ctx context.Context, req session.JoinRequest) (session.RoomView, error)
	Leave(ctx context.Context, roomID string, conn session.ConnID, reason string) error
	SubmitVote(ctx context.Context, roomID string, v session.Vote) error
	AddCandidates(ctx context.Context, roomID string, conn session.ConnID, items []string) (int, error)
}

// ClientConfig tunes one connection.
type ClientConfig struct {
	ReadLimit  int64
	WriteWait  time.Duration
	PongWait   time.Duration
	OutboxSize int
}

func (c ClientConfig) withDefaults() ClientConfig {
	if c.ReadLimit <= 0 {
		c.ReadLimit = 8 * 1024
	}
	if c.WriteWait <= 0 {
		c.WriteWait = 10 * time.Second
	}
	if c.PongWait <= 0 {
		c.PongWait = 60 * time.Second
	}
	if c.OutboxSize <= 0 {
		c.OutboxSize = 64
	}
	return c
}

func (c ClientConfig) pingPeriod() time.Duration {
	return (c.PongWait * 9) / 10
}

// Client is one WebSocket connection. It implements session.Outbox: rooms
// deliver events into its send buffer and writePump drains it.
type Client struct {
	id     session.ConnID
	hub    *Hub
	conn   *websocket.Conn
	rooms  RoomService
	cfg    ClientConfig
	claims *auth.Claims

	// displayName is the fallback name when join carries none.
	displayName string

	mu     sync.Mutex
	send   chan Message
	closed bool

	// room is only touched by readPump.
	room string
}

// NewClient creates a client for an upgraded connection. claims may be nil.
func NewClient(hub *Hub, conn *websocket.Conn, rooms RoomService, cfg ClientConfig, claims *auth.Claims) *Client {
	cfg = cfg.withDefaults()
	c := &Client{
		id:     session.ConnID(uuid.NewString()),
		hub:    hub,
		conn:   conn,
		rooms:  rooms,
		cfg:    cfg,
		claims: claims,
		send:   make(chan Message, cfg.OutboxSize),
	}
	if claims != nil && claims.DisplayName != "" {
		c.displayName = claims.DisplayName
	} else {
		c.displayName = "Guest-" + string(c.id)[:4]
	}
	return c
}

// ID returns the connection identifier used as the room member ID.
func (c *Client) ID() session.ConnID {
	return c.id
}

// Deliver queues a room event without blocking. A client that cannot keep up
// is disconnected; its pending leave then removes it from the room.
func (c *Client) Deliver(ev session.Event) bool {
	return c.enqueue(Message{Type: string(ev.Type), RoomID: ev.RoomID, Data: ev.Data})
}

// Closed reports whether the connection has been torn down.
func (c *Client) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *Client) enqueue(msg Message) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- msg:
		return true
	default:
		metrics.WSErrors.WithLabelValues("slow_consumer").Inc()
		logging.Warn().Str("conn_id", string(c.id)).Str("type", msg.Type).Msg("websocket client too slow, disconnecting")
		c.closeLocked()
		return false
	}
}

// close is idempotent. Closing send makes writePump send a close frame and
// drop the socket, which in turn ends readPump.
func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeLocked()
}

func (c *Client) closeLocked() {
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

func (c *Client) userID() string {
	if c.claims == nil {
		return ""
	}
	return c.claims.Subject
}

// readPump decodes client frames and drives the registry. On exit the client
// is marked closed before the disconnect leave is issued, so any vote still
// queued in the room loses to the leave.
func (c *Client) readPump() {
	defer c.disconnect()

	c.conn.SetReadLimit(c.cfg.ReadLimit)
	if err := c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait)); err != nil {
		logging.Error().Err(err).Msg("failed to set read deadline")
		return
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				metrics.WSErrors.WithLabelValues("unexpected_close").Inc()
				logging.Warn().Err(err).Str("conn_id", string(c.id)).Msg("unexpected websocket close error")
			}
			return
		}
		// Refresh the deadline on traffic as well as pongs.
		_ = c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
		c.handle(data)
	}
}

func (c *Client) disconnect() {
	c.close()
	if c.room != "" {
		ctx, cancel := context.WithTimeout(context.Background(), leaveTimeout)
		err := c.rooms.Leave(ctx, c.room, c.id, session.LeaveDisconnect)
		cancel()
		if err != nil && !errors.Is(err, session.ErrNotAMember) && !errors.Is(err, session.ErrRoomClosed) && !errors.Is(err, session.ErrRoomNotFound) {
			logging.Warn().Err(err).Str("conn_id", string(c.id)).Str("room_id", c.room).Msg("disconnect leave failed")
		}
		c.room = ""
	}
	c.hub.Unregister(c)
	_ = c.conn.Close() // best-effort cleanup
}

func (c *Client) handle(data []byte) {
	var msg inbound
	if err := json.Unmarshal(data, &msg); err != nil {
		metrics.WSErrors.WithLabelValues("decode").Inc()
		c.sendError("", CodeBadRequest, "malformed message")
		return
	}
	metrics.WSMessagesReceived.WithLabelValues(receivedLabel(msg.Type)).Inc()

	ctx := logging.ContextWithConnID(context.Background(), string(c.id))
	if c.room != "" {
		ctx = logging.ContextWithRoomID(ctx, c.room)
	}

	switch msg.Type {
	case MessageTypePing:
		c.enqueue(Message{Type: MessageTypePong})
	case MessageTypeJoin:
		var p validation.JoinPayload
		if !c.decode(msg.Data, &p) {
			return
		}
		c.join(ctx, p)
	case MessageTypeLeave:
		c.leave(ctx)
	case MessageTypeVote:
		var p validation.VotePayload
		if !c.decode(msg.Data, &p) {
			return
		}
		c.vote(ctx, p)
	case MessageTypeAddCandidates:
		var p validation.AddCandidatesPayload
		if !c.decode(msg.Data, &p) {
			return
		}
		c.addCandidates(ctx, p)
	default:
		metrics.WSErrors.WithLabelValues("unknown_type").Inc()
		c.sendError(c.room, CodeBadRequest, "unknown message type")
	}
}

// decode unmarshals and validates a payload, reporting bad_request on failure.
func (c *Client) decode(raw json.RawMessage, into interface{}) bool {
	if len(raw) == 0 {
		raw = json.RawMessage("{}")
	}
	if err := json.Unmarshal(raw, into); err != nil {
		metrics.WSErrors.WithLabelValues("decode").Inc()
		c.sendError(c.room, CodeBadRequest, "malformed payload")
		return false
	}
	if verr := validation.ValidateStruct(into); verr != nil {
		metrics.WSErrors.WithLabelValues("validation").Inc()
		c.sendError(c.room, CodeBadRequest, verr.Error())
		return false
	}
	return true
}

func (c *Client) join(ctx context.Context, p validation.JoinPayload) {
	if c.room != "" && c.room != p.RoomID {
		if err := c.rooms.Leave(ctx, c.room, c.id, session.LeaveSwitch); err != nil {
			logging.Ctx(ctx).Debug().Err(err).Msg("leave before switching rooms")
		}
		c.room = ""
	}

	name := p.DisplayName
	if name == "" {
		name = c.displayName
	}
	_, err := c.rooms.CreateOrJoin(ctx, session.JoinRequest{
		RoomID:      p.RoomID,
		Conn:        c.id,
		UserID:      c.userID(),
		DisplayName: name,
		Outbox:      c,
		Candidates:  p.Candidates,
	})
	if err != nil {
		c.reportError(ctx, p.RoomID, err)
		return
	}
	c.room = p.RoomID
}

func (c *Client) leave(ctx context.Context) {
	if c.room == "" {
		c.reportError(ctx, "", session.ErrNotAMember)
		return
	}
	roomID := c.room
	c.room = ""
	if err := c.rooms.Leave(ctx, roomID, c.id, session.LeaveExplicit); err != nil {
		c.reportError(ctx, roomID, c.roomGone(err))
	}
}

func (c *Client) vote(ctx context.Context, p validation.VotePayload) {
	if c.room == "" {
		c.reportError(ctx, "", session.ErrNotAMember)
		return
	}
	err := c.rooms.SubmitVote(ctx, c.room, session.Vote{
		Conn:     c.id,
		ItemID:   p.ItemID,
		Round:    p.Round,
		Decision: session.Decision(*p.Decision),
	})
	if err != nil {
		roomID := c.room
		c.reportError(ctx, roomID, c.roomGone(err))
	}
}

func (c *Client) addCandidates(ctx context.Context, p validation.AddCandidatesPayload) {
	if c.room == "" {
		c.reportError(ctx, "", session.ErrNotAMember)
		return
	}
	if _, err := c.rooms.AddCandidates(ctx, c.room, c.id, p.Items); err != nil {
		roomID := c.room
		c.reportError(ctx, roomID, c.roomGone(err))
	}
}

// roomGone forgets a joined room that was torn down, so the connection can
// join again. A room already dropped from the registry is reported as closed.
func (c *Client) roomGone(err error) error {
	switch {
	case errors.Is(err, session.ErrRoomClosed):
		c.room = ""
		return err
	case errors.Is(err, session.ErrRoomNotFound):
		c.room = ""
		return session.ErrRoomClosed
	default:
		return err
	}
}

// reportError turns a registry error into an error frame. Stale votes are
// dropped without a reply.
func (c *Client) reportError(ctx context.Context, roomID string, err error) {
	if session.IsSilent(err) {
		logging.Ctx(ctx).Debug().Err(err).Msg("dropped stale vote")
		return
	}
	code := session.ErrorCode(err)
	if code == session.CodeInternal {
		logging.Ctx(ctx).Error().Err(err).Msg("room operation failed")
	}
	metrics.WSErrors.WithLabelValues("rejected").Inc()
	c.sendError(roomID, code, err.Error())
}

func (c *Client) sendError(roomID, code, message string) {
	c.enqueue(Message{Type: MessageTypeError, RoomID: roomID, Data: ErrorData{Code: code, Message: message}})
}

// writePump drains send to the socket and keeps the connection alive with pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(c.cfg.pingPeriod())
	defer func() {
		ticker.Stop()
		_ = c.conn.Close() // best-effort cleanup
	}()

	for {
		select {
		case message, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait)); err != nil {
				return
			}
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			data, err := MarshalMessage(message)
			if err != nil {
				logging.Error().Err(err).Str("type", message.Type).Msg("failed to encode websocket message")
				continue
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				metrics.WSErrors.WithLabelValues("write").Inc()
				return
			}
			metrics.WSMessagesSent.Inc()
		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Start begins reading and writing for the client.
func (c *Client) Start() {
	go c.writePump()
	go c.readPump()
}

func receivedLabel(t string) string {
	switch t {
	case MessageTypeJoin, MessageTypeLeave, MessageTypeVote, MessageTypeAddCandidates, MessageTypePing:
		return t
	default:
		return "unknown"
	}
}
