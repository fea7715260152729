// Package testhelpers provides common utilities and helper functions for
// testing the Parlor server.
//
// This package contains reusable test utilities that are shared across the
// integration tests. It provides functions for starting a fully wired test
// server, dialing WebSocket connections, and exchanging protocol frames to
// reduce code duplication in test files.
package testhelpers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/parlorchat/parlor/internal/coordinator"
	"github.com/parlorchat/parlor/internal/server"
)

// Envelope mirrors the wire frame exchanged with the server.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Env is a running test deployment: coordinator, hub, and HTTP server wired
// together the same way main() does it.
type Env struct {
	Coord *coordinator.Coordinator
	Hub   *server.Hub
	TS    *httptest.Server
}

// StartServer boots a complete server on an ephemeral port with a
// wide-open origin policy and registers cleanup for it. The returned Env is
// ready for WebSocket and HTTP traffic.
func StartServer(t *testing.T) *Env {
	t.Helper()

	cfg := server.DefaultConfig()
	cfg.AllowedOrigins = []string{"*"}
	// Generous burst so protocol tests are never throttled.
	cfg.RateLimit.Burst = 1000

	coord := coordinator.New(cfg.HistoryLimit)
	hub := server.NewHub(coord)
	go hub.Run()

	srv := server.NewServer(cfg, coord, hub)
	ts := httptest.NewServer(srv.Routes())

	t.Cleanup(func() {
		ts.Close()
		if err := hub.Shutdown(5 * time.Second); err != nil {
			t.Logf("Hub shutdown incomplete: %v", err)
		}
	})

	return &Env{Coord: coord, Hub: hub, TS: ts}
}

// WebSocketURL returns the ws:// URL of the test server's upgrade endpoint.
func (e *Env) WebSocketURL() string {
	return "ws" + strings.TrimPrefix(e.TS.URL, "http") + "/ws"
}

// Dial opens a WebSocket connection to the test server and registers
// cleanup for it.
func Dial(t *testing.T, env *Env) *websocket.Conn {
	t.Helper()

	dialer := websocket.Dialer{HandshakeTimeout: 5 * time.Second}
	headers := http.Header{}
	headers.Set("Origin", "http://localhost:8080")

	conn, resp, err := dialer.Dial(env.WebSocketURL(), headers)
	if resp != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		t.Fatalf("Failed to dial WebSocket: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

// SendEvent writes one protocol frame to the connection.
func SendEvent(t *testing.T, conn *websocket.Conn, event string, data any) {
	t.Helper()

	payload, err := json.Marshal(data)
	if err != nil {
		t.Fatalf("Failed to marshal %s data: %v", event, err)
	}
	if err := conn.WriteJSON(Envelope{Event: event, Data: payload}); err != nil {
		t.Fatalf("Failed to send %s: %v", event, err)
	}
}

// WaitForEvent reads frames until one with the given event name arrives and
// returns its data payload. Frames for other events are discarded, since
// broadcasts from concurrent activity interleave freely. It fails the test
// if the event does not arrive within two seconds.
func WaitForEvent(t *testing.T, conn *websocket.Conn, event string) json.RawMessage {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for {
		if err := conn.SetReadDeadline(deadline); err != nil {
			t.Fatalf("Failed to set read deadline: %v", err)
		}
		var frame Envelope
		if err := conn.ReadJSON(&frame); err != nil {
			t.Fatalf("Waiting for %s: %v", event, err)
		}
		if frame.Event == event {
			return frame.Data
		}
	}
}

// ExpectNoEvent asserts that no frame with the given event name arrives
// within the timeout. Other events are tolerated and skipped.
func ExpectNoEvent(t *testing.T, conn *websocket.Conn, event string, timeout time.Duration) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for {
		if err := conn.SetReadDeadline(deadline); err != nil {
			t.Fatalf("Failed to set read deadline: %v", err)
		}
		var frame Envelope
		if err := conn.ReadJSON(&frame); err != nil {
			return // timeout or close: nothing unwanted arrived
		}
		if frame.Event == event {
			t.Fatalf("Received unexpected %s event: %s", event, frame.Data)
		}
	}
}

// Identify sends the identify frame for a display name and waits for the
// resulting presence list, leaving the connection in the Identified state.
func Identify(t *testing.T, conn *websocket.Conn, displayName string) {
	t.Helper()

	SendEvent(t, conn, "identify", map[string]string{"displayName": displayName})
	WaitForEvent(t, conn, "presence_list")
}

// MakeRequest creates and executes an HTTP request, returning the response.
// It includes a 5-second timeout and fails the test if the request cannot be
// created or executed successfully.
func MakeRequest(t *testing.T, method, url string) *http.Response {
	t.Helper()

	client := &http.Client{Timeout: 5 * time.Second}

	req, err := http.NewRequest(method, url, http.NoBody)
	if err != nil {
		t.Fatalf("Failed to create request: %v", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("Failed to make request: %v", err)
	}
	return resp
}

// AssertStatusCode checks if the HTTP response has the expected status code.
func AssertStatusCode(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		t.Errorf("Expected status code %d, got %d", expected, resp.StatusCode)
	}
}
