// Package integration contains integration tests for the Parlor server.
package integration

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/parlorchat/parlor/internal/coordinator"
	"github.com/parlorchat/parlor/internal/server"
	"github.com/parlorchat/parlor/test/testhelpers"
)

// TestHealthEndpoint tests that the root endpoint reports the server as
// running over a real HTTP server.
func TestHealthEndpoint(t *testing.T) {
	env := testhelpers.StartServer(t)

	resp := testhelpers.MakeRequest(t, http.MethodGet, env.TS.URL+"/")
	defer func() { _ = resp.Body.Close() }()

	testhelpers.AssertStatusCode(t, resp, http.StatusOK)
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("Failed to read response body: %v", err)
	}
	if !strings.Contains(string(body), "running") {
		t.Errorf("health body = %q", body)
	}
}

// TestQueryAPIReflectsLiveState tests that the pull-style query endpoints
// expose the same state the WebSocket traffic produced.
func TestQueryAPIReflectsLiveState(t *testing.T) {
	env := testhelpers.StartServer(t)

	alice := testhelpers.Dial(t, env)
	testhelpers.Identify(t, alice, "alice")
	testhelpers.SendEvent(t, alice, "join_room", map[string]string{"room": "team"})
	testhelpers.WaitForEvent(t, alice, "room_joined")
	testhelpers.SendEvent(t, alice, "send_message", map[string]string{"room": "team", "body": "hello"})
	testhelpers.WaitForEvent(t, alice, "room_message")

	resp := testhelpers.MakeRequest(t, http.MethodGet, env.TS.URL+"/api/users")
	var users []struct {
		DisplayName string `json:"displayName"`
	}
	decodeJSONBody(t, resp, &users)
	if len(users) != 1 || users[0].DisplayName != "alice" {
		t.Errorf("/api/users = %+v, want [alice]", users)
	}

	resp = testhelpers.MakeRequest(t, http.MethodGet, env.TS.URL+"/api/rooms")
	var rooms []string
	decodeJSONBody(t, resp, &rooms)
	if len(rooms) != 2 || rooms[0] != "global" || rooms[1] != "team" {
		t.Errorf("/api/rooms = %v, want [global team]", rooms)
	}

	resp = testhelpers.MakeRequest(t, http.MethodGet, env.TS.URL+"/api/messages?room=team")
	var messages []struct {
		Body   string `json:"body"`
		Sender string `json:"sender"`
	}
	decodeJSONBody(t, resp, &messages)
	if len(messages) != 1 || messages[0].Body != "hello" || messages[0].Sender != "alice" {
		t.Errorf("/api/messages?room=team = %+v", messages)
	}
}

func decodeJSONBody(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()

	testhelpers.AssertStatusCode(t, resp, http.StatusOK)
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("Failed to decode JSON body: %v", err)
	}
}

// TestWebSocketRejectsDisallowedOrigin tests that the upgrade endpoint
// enforces the configured origin policy.
func TestWebSocketRejectsDisallowedOrigin(t *testing.T) {
	cfg := server.DefaultConfig()
	cfg.AllowedOrigins = []string{"http://allowed.example.com"}

	coord := coordinator.New(cfg.HistoryLimit)
	hub := server.NewHub(coord)
	go hub.Run()
	t.Cleanup(func() {
		if err := hub.Shutdown(5 * time.Second); err != nil {
			t.Logf("Hub shutdown incomplete: %v", err)
		}
	})

	srv := server.NewServer(cfg, coord, hub)
	ts := httptest.NewServer(srv.Routes())
	t.Cleanup(ts.Close)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	dialer := websocket.Dialer{HandshakeTimeout: 5 * time.Second}

	headers := http.Header{}
	headers.Set("Origin", "http://evil.example.com")
	conn, resp, err := dialer.Dial(wsURL, headers)
	if resp != nil {
		_ = resp.Body.Close()
	}
	if err == nil {
		_ = conn.Close()
		t.Fatal("connection with disallowed origin was accepted")
	}

	headers.Set("Origin", "http://allowed.example.com")
	conn, resp, err = dialer.Dial(wsURL, headers)
	if resp != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		t.Fatalf("connection with allowed origin rejected: %v", err)
	}
	_ = conn.Close()
}
