package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/parlorchat/parlor/internal/coordinator"
)

// newTestServer builds a Server over a fresh coordinator for handler tests.
// The hub is constructed but never run; query handlers do not need it.
func newTestServer() (*Server, *coordinator.Coordinator) {
	coord := coordinator.New(coordinator.DefaultHistoryCap)
	hub := NewHub(coord)
	return NewServer(DefaultConfig(), coord, hub), coord
}

// TestHealthHandler tests that the health endpoint reports the server as
// running regardless of method.
func TestHealthHandler(t *testing.T) {
	srv, _ := newTestServer()

	for _, method := range []string{http.MethodGet, http.MethodPost} {
		req := httptest.NewRequest(method, "/", nil)
		rr := httptest.NewRecorder()

		srv.HealthHandler(rr, req)

		if rr.Code != http.StatusOK {
			t.Errorf("%s / status = %d, want 200", method, rr.Code)
		}
		if !strings.Contains(rr.Body.String(), "running") {
			t.Errorf("%s / body = %q", method, rr.Body.String())
		}
	}
}

// TestMessagesHandler tests the history snapshot endpoint: room selection,
// the default room, limits, and cursor pagination.
func TestMessagesHandler(t *testing.T) {
	srv, coord := newTestServer()

	coord.Dispatch("conn-1", coordinator.Command{Kind: coordinator.CommandIdentify, DisplayName: "alice"})
	for i := 0; i < 10; i++ {
		coord.Dispatch("conn-1", coordinator.Command{
			Kind: coordinator.CommandSendMessage,
			Body: fmt.Sprintf("msg %d", i),
		})
	}

	fetch := func(t *testing.T, query string) []coordinator.Message {
		t.Helper()
		req := httptest.NewRequest(http.MethodGet, "/api/messages"+query, nil)
		rr := httptest.NewRecorder()
		srv.MessagesHandler(rr, req)
		if rr.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rr.Code)
		}
		var messages []coordinator.Message
		if err := json.Unmarshal(rr.Body.Bytes(), &messages); err != nil {
			t.Fatalf("response is not a message list: %v", err)
		}
		return messages
	}

	all := fetch(t, "")
	if len(all) != 10 {
		t.Fatalf("default fetch returned %d messages, want 10", len(all))
	}

	limited := fetch(t, "?limit=4")
	if len(limited) != 4 {
		t.Fatalf("limit=4 returned %d messages", len(limited))
	}
	if limited[0].Body != "msg 6" {
		t.Errorf("limited page starts at %q, want the 4 most recent oldest-first", limited[0].Body)
	}

	older := fetch(t, fmt.Sprintf("?limit=4&before=%d", limited[0].ID))
	if len(older) != 4 || older[len(older)-1].ID >= limited[0].ID {
		t.Errorf("cursor page = %+v, want 4 strictly older messages", older)
	}

	if empty := fetch(t, "?room=deserted"); len(empty) != 0 {
		t.Errorf("unknown room returned %d messages", len(empty))
	}
}

// TestMessagesHandlerRejectsBadParams tests that malformed cursor and limit
// values produce 400 responses.
func TestMessagesHandlerRejectsBadParams(t *testing.T) {
	srv, _ := newTestServer()

	for _, query := range []string{"?before=abc", "?limit=0", "?limit=-3", "?limit=abc"} {
		req := httptest.NewRequest(http.MethodGet, "/api/messages"+query, nil)
		rr := httptest.NewRecorder()
		srv.MessagesHandler(rr, req)
		if rr.Code != http.StatusBadRequest {
			t.Errorf("query %q status = %d, want 400", query, rr.Code)
		}
	}
}

// TestUsersHandler tests that the presence endpoint lists identified
// sessions in join order.
func TestUsersHandler(t *testing.T) {
	srv, coord := newTestServer()
	coord.Dispatch("conn-1", coordinator.Command{Kind: coordinator.CommandIdentify, DisplayName: "alice"})
	coord.Dispatch("conn-2", coordinator.Command{Kind: coordinator.CommandIdentify, DisplayName: "bob"})

	req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
	rr := httptest.NewRecorder()
	srv.UsersHandler(rr, req)

	var sessions []coordinator.Session
	if err := json.Unmarshal(rr.Body.Bytes(), &sessions); err != nil {
		t.Fatalf("response is not a session list: %v", err)
	}
	if len(sessions) != 2 || sessions[0].DisplayName != "alice" || sessions[1].DisplayName != "bob" {
		t.Errorf("sessions = %+v, want [alice bob] in join order", sessions)
	}
}

// TestRoomsHandler tests that the room listing includes public rooms and
// hides private conversations.
func TestRoomsHandler(t *testing.T) {
	srv, coord := newTestServer()
	coord.Dispatch("conn-1", coordinator.Command{Kind: coordinator.CommandIdentify, DisplayName: "alice"})
	coord.Dispatch("conn-2", coordinator.Command{Kind: coordinator.CommandIdentify, DisplayName: "bob"})
	coord.Dispatch("conn-1", coordinator.Command{Kind: coordinator.CommandJoinRoom, Room: "team"})
	coord.Dispatch("conn-1", coordinator.Command{Kind: coordinator.CommandSendPrivateMessage, ToConnID: "conn-2", Body: "psst"})

	req := httptest.NewRequest(http.MethodGet, "/api/rooms", nil)
	rr := httptest.NewRecorder()
	srv.RoomsHandler(rr, req)

	var rooms []string
	if err := json.Unmarshal(rr.Body.Bytes(), &rooms); err != nil {
		t.Fatalf("response is not a room list: %v", err)
	}
	want := []string{"global", "team"}
	if len(rooms) != 2 || rooms[0] != want[0] || rooms[1] != want[1] {
		t.Errorf("rooms = %v, want %v", rooms, want)
	}
}

// TestWebSocketHandlerRejectsNonGet tests that the upgrade endpoint only
// accepts GET requests.
func TestWebSocketHandlerRejectsNonGet(t *testing.T) {
	srv, _ := newTestServer()

	req := httptest.NewRequest(http.MethodPost, "/ws", nil)
	rr := httptest.NewRecorder()
	srv.WebSocketHandler(rr, req)

	if rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("POST /ws status = %d, want 405", rr.Code)
	}
}
