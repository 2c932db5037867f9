// CineSwipe - Real-Time Group Movie Swipe Sessions
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cineswipe

package websocket

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"

	"github.com/tomtom215/cineswipe/internal/session"
)

type testFrame struct {
	Type   string          `json:"type"`
	RoomID string          `json:"room_id"`
	Data   json.RawMessage `json:"data"`
}

type testState struct {
	State       string               `json:"state"`
	Members     []session.MemberView `json:"members"`
	CurrentItem string               `json:"current_item"`
	Round       int                  `json:"round"`
}

func newTestGateway(t *testing.T, cfg session.Config) (*httptest.Server, *session.Registry) {
	t.Helper()

	reg := session.NewRegistry(cfg)
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = hub.RunWithContext(ctx)
		close(done)
	}()

	srv := httptest.NewServer(NewHandler(hub, reg, ClientConfig{}, nil))
	t.Cleanup(func() {
		srv.Close()
		cancel()
		<-done
		_ = reg.Shutdown(context.Background())
	})
	return srv, reg
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	header := http.Header{}
	header.Set("Origin", srv.URL)
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), header)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, msgType string, data interface{}) {
	t.Helper()
	frame := map[string]interface{}{"type": msgType}
	if data != nil {
		frame["data"] = data
	}
	raw, err := json.Marshal(frame)
	if err != nil {
		t.Fatal(err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, raw); err != nil {
		t.Fatalf("WriteMessage() error = %v", err)
	}
}

func readFrame(t *testing.T, conn *websocket.Conn) testFrame {
	t.Helper()
	if err := conn.SetReadDeadline(time.Now().Add(2 * time.Second)); err != nil {
		t.Fatal(err)
	}
	_, raw, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage() error = %v", err)
	}
	var f testFrame
	if err := json.Unmarshal(raw, &f); err != nil {
		t.Fatalf("decode frame %s: %v", raw, err)
	}
	return f
}

// readUntil skips frames until one of the wanted type arrives.
func readUntil(t *testing.T, conn *websocket.Conn, msgType string) testFrame {
	t.Helper()
	for i := 0; i < 20; i++ {
		if f := readFrame(t, conn); f.Type == msgType {
			return f
		}
	}
	t.Fatalf("no %q frame within 20 frames", msgType)
	return testFrame{}
}

// readStateUntil skips frames until a room_state satisfying ok arrives.
func readStateUntil(t *testing.T, conn *websocket.Conn, ok func(testState) bool) testState {
	t.Helper()
	for i := 0; i < 20; i++ {
		f := readUntil(t, conn, "room_state")
		var st testState
		if err := json.Unmarshal(f.Data, &st); err != nil {
			t.Fatal(err)
		}
		if ok(st) {
			return st
		}
	}
	t.Fatal("room_state never reached the expected shape")
	return testState{}
}

func eventually(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met within 2s")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func errorCode(t *testing.T, f testFrame) string {
	t.Helper()
	var e ErrorData
	if err := json.Unmarshal(f.Data, &e); err != nil {
		t.Fatal(err)
	}
	return e.Code
}

func pairCfg() session.Config {
	return session.Config{MaxMembers: 2, MinMembers: 2, GracePeriod: time.Minute}
}

func joinPair(t *testing.T, srv *httptest.Server) (a, b *websocket.Conn) {
	t.Helper()
	a, b = dial(t, srv), dial(t, srv)
	send(t, a, MessageTypeJoin, map[string]interface{}{"room_id": "abc123", "candidates": []string{"m1", "m2"}})
	readStateUntil(t, a, func(s testState) bool { return len(s.Members) == 1 })
	send(t, b, MessageTypeJoin, map[string]interface{}{"room_id": "abc123"})
	readStateUntil(t, a, func(s testState) bool { return s.State == "active" })
	readStateUntil(t, b, func(s testState) bool { return s.State == "active" })
	return a, b
}

func TestGateway_MatchFlow(t *testing.T) {
	srv, _ := newTestGateway(t, pairCfg())
	a, b := joinPair(t, srv)

	send(t, a, MessageTypeVote, map[string]interface{}{"item_id": "m1", "decision": true})
	send(t, b, MessageTypeVote, map[string]interface{}{"item_id": "m1", "decision": true})

	for _, conn := range []*websocket.Conn{a, b} {
		f := readUntil(t, conn, "match_found")
		if f.RoomID != "abc123" {
			t.Errorf("match room_id = %q, want abc123", f.RoomID)
		}
		var m session.MatchFoundData
		if err := json.Unmarshal(f.Data, &m); err != nil {
			t.Fatal(err)
		}
		if m.ItemID != "m1" {
			t.Errorf("match item = %q, want m1", m.ItemID)
		}
	}
}

func TestGateway_NoVoteAdvances(t *testing.T) {
	srv, _ := newTestGateway(t, pairCfg())
	a, b := joinPair(t, srv)

	send(t, a, MessageTypeVote, map[string]interface{}{"item_id": "m1", "decision": true})
	send(t, b, MessageTypeVote, map[string]interface{}{"item_id": "m1", "decision": false})

	st := readStateUntil(t, a, func(s testState) bool { return s.CurrentItem == "m2" })
	if st.Round != 2 {
		t.Errorf("round = %d, want 2", st.Round)
	}
}

func TestGateway_RoomFull(t *testing.T) {
	srv, _ := newTestGateway(t, pairCfg())
	joinPair(t, srv)

	c := dial(t, srv)
	send(t, c, MessageTypeJoin, map[string]interface{}{"room_id": "abc123"})
	f := readUntil(t, c, MessageTypeError)
	if got := errorCode(t, f); got != session.CodeRoomFull {
		t.Errorf("error code = %q, want %q", got, session.CodeRoomFull)
	}
}

func TestGateway_ActionsAfterRoomClosed(t *testing.T) {
	srv, reg := newTestGateway(t, pairCfg())
	a, _ := joinPair(t, srv)

	if n := reg.SweepExpired(context.Background(), time.Now().Add(time.Hour)); n != 1 {
		t.Fatalf("SweepExpired() = %d, want 1", n)
	}
	readUntil(t, a, string(session.EventRoomClosed))

	send(t, a, MessageTypeVote, map[string]interface{}{"item_id": "m1", "decision": true})
	f := readUntil(t, a, MessageTypeError)
	if got := errorCode(t, f); got != session.CodeRoomClosed {
		t.Errorf("error code = %q, want %q", got, session.CodeRoomClosed)
	}
	if f.RoomID != "abc123" {
		t.Errorf("error room_id = %q, want abc123", f.RoomID)
	}

	// The closed room is forgotten, so later actions need a new join.
	send(t, a, MessageTypeVote, map[string]interface{}{"item_id": "m1", "decision": true})
	if got := errorCode(t, readUntil(t, a, MessageTypeError)); got != session.CodeNotAMember {
		t.Errorf("second error code = %q, want %q", got, session.CodeNotAMember)
	}
	send(t, a, MessageTypeJoin, map[string]interface{}{"room_id": "abc123", "candidates": []string{"m5"}})
	st := readStateUntil(t, a, func(s testState) bool { return len(s.Members) == 1 })
	if st.CurrentItem != "m5" {
		t.Errorf("rejoined room current item = %q, want m5", st.CurrentItem)
	}
}

func TestGateway_DisconnectLeavesRoom(t *testing.T) {
	srv, reg := newTestGateway(t, pairCfg())
	a, b := joinPair(t, srv)

	_ = b.Close()
	st := readStateUntil(t, a, func(s testState) bool { return len(s.Members) == 1 })
	if st.State != "forming" {
		t.Errorf("state after disconnect = %q, want forming", st.State)
	}

	eventually(t, func() bool {
		view, ok := reg.Lookup("abc123")
		return ok && len(view.Members) == 1
	})
}

func TestGateway_SwitchRooms(t *testing.T) {
	srv, reg := newTestGateway(t, pairCfg())
	a := dial(t, srv)

	send(t, a, MessageTypeJoin, map[string]interface{}{"room_id": "first"})
	readUntil(t, a, "room_state")
	send(t, a, MessageTypeJoin, map[string]interface{}{"room_id": "second"})
	f := readUntil(t, a, "room_state")
	if f.RoomID != "second" {
		t.Fatalf("room_state room_id = %q, want second", f.RoomID)
	}

	eventually(t, func() bool {
		view, ok := reg.Lookup("first")
		return !ok || len(view.Members) == 0
	})
}

func TestGateway_PingPong(t *testing.T) {
	srv, _ := newTestGateway(t, pairCfg())
	conn := dial(t, srv)

	send(t, conn, MessageTypePing, nil)
	if f := readFrame(t, conn); f.Type != MessageTypePong {
		t.Errorf("reply type = %q, want pong", f.Type)
	}
}

func TestGateway_Rejections(t *testing.T) {
	srv, _ := newTestGateway(t, pairCfg())

	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"malformed json", `{"type":`, CodeBadRequest},
		{"unknown type", `{"type":"dance"}`, CodeBadRequest},
		{"vote missing decision", `{"type":"vote","data":{"item_id":"m1"}}`, CodeBadRequest},
		{"join invalid room", `{"type":"join","data":{"room_id":"bad room!"}}`, CodeBadRequest},
		{"vote without join", `{"type":"vote","data":{"item_id":"m1","decision":true}}`, session.CodeNotAMember},
		{"leave without join", `{"type":"leave"}`, session.CodeNotAMember},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn := dial(t, srv)
			if err := conn.WriteMessage(websocket.TextMessage, []byte(tt.raw)); err != nil {
				t.Fatal(err)
			}
			f := readFrame(t, conn)
			if f.Type != MessageTypeError {
				t.Fatalf("reply type = %q, want error", f.Type)
			}
			if got := errorCode(t, f); got != tt.want {
				t.Errorf("error code = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGateway_VoteWhileFormingRejected(t *testing.T) {
	srv, _ := newTestGateway(t, pairCfg())
	a := dial(t, srv)

	send(t, a, MessageTypeJoin, map[string]interface{}{"room_id": "abc123", "candidates": []string{"m1"}})
	readUntil(t, a, "room_state")
	send(t, a, MessageTypeVote, map[string]interface{}{"item_id": "m1", "decision": true})
	if got := errorCode(t, readUntil(t, a, MessageTypeError)); got != session.CodeRoomNotActive {
		t.Errorf("error code = %q, want %q", got, session.CodeRoomNotActive)
	}
}

func TestGateway_StaleVoteIsSilent(t *testing.T) {
	srv, _ := newTestGateway(t, pairCfg())
	a, _ := joinPair(t, srv)

	send(t, a, MessageTypeVote, map[string]interface{}{"item_id": "m2", "decision": true})
	send(t, a, MessageTypePing, nil)

	for i := 0; i < 20; i++ {
		f := readFrame(t, a)
		if f.Type == MessageTypeError {
			t.Fatalf("stale vote produced an error frame: %s", f.Data)
		}
		if f.Type == MessageTypePong {
			return
		}
	}
	t.Fatal("pong never arrived")
}

func TestGateway_AddCandidates(t *testing.T) {
	srv, _ := newTestGateway(t, pairCfg())
	a := dial(t, srv)

	send(t, a, MessageTypeJoin, map[string]interface{}{"room_id": "abc123"})
	readUntil(t, a, "room_state")
	send(t, a, MessageTypeAddCandidates, map[string]interface{}{"items": []string{"m9"}})
	readStateUntil(t, a, func(s testState) bool { return s.CurrentItem == "m9" })
}
