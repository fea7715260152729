// Package server exposes HTTP handlers, including WebSocket upgrades, health
// checks, and the read-only query API.
package server

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/parlorchat/parlor/internal/coordinator"
)

// Server ties the configuration, coordinator, hub, and origin policy
// together and exposes the HTTP surface. One instance is built at startup
// and owns no ambient global state.
type Server struct {
	cfg      Config
	coord    *coordinator.Coordinator
	hub      *Hub
	upgrader websocket.Upgrader
}

// NewServer builds the HTTP surface over a coordinator and hub.
func NewServer(cfg Config, coord *coordinator.Coordinator, hub *Hub) *Server {
	origins := NewOriginPolicy(cfg.AllowedOrigins)
	return &Server{
		cfg:   cfg,
		coord: coord,
		hub:   hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     origins.Check,
		},
	}
}

// WebSocketHandler handles WebSocket upgrade requests. It validates that the
// request uses the GET method, upgrades the HTTP connection, mints the
// connection identifier, and registers the new client with the hub, which
// launches the read/write pumps.
func (s *Server) WebSocketHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed. WebSocket endpoint only accepts GET requests.", http.StatusMethodNotAllowed)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	client := NewClient(conn, s.hub, uuid.NewString(), r.RemoteAddr, s.cfg)
	s.hub.register <- client
}

// HealthHandler provides a simple health check endpoint that returns server
// status. It responds with a plain text message indicating the server is
// running.
func (s *Server) HealthHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	_, _ = fmt.Fprintf(w, "Parlor chat server is running!")
}

// MessagesHandler returns a paginated, oldest-first snapshot of a room's
// message log. Query parameters: room (default "global"), before (message id
// cursor for backward pagination), limit (default 50, capped at the room
// history bound).
func (s *Server) MessagesHandler(w http.ResponseWriter, r *http.Request) {
	room := r.URL.Query().Get("room")
	if room == "" {
		room = coordinator.DefaultRoom
	}

	var beforeID uint64
	if before := r.URL.Query().Get("before"); before != "" {
		parsed, err := strconv.ParseUint(before, 10, 64)
		if err != nil {
			http.Error(w, "invalid before cursor", http.StatusBadRequest)
			return
		}
		beforeID = parsed
	}

	limit := 50
	if rawLimit := r.URL.Query().Get("limit"); rawLimit != "" {
		parsed, err := strconv.Atoi(rawLimit)
		if err != nil || parsed <= 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = parsed
	}
	if limit > s.cfg.HistoryLimit {
		limit = s.cfg.HistoryLimit
	}

	writeJSON(w, s.coord.History(room, beforeID, limit))
}

// UsersHandler returns the current presence list ordered by join time.
func (s *Server) UsersHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, s.coord.PresenceList())
}

// RoomsHandler returns the sorted names of all known public rooms.
func (s *Server) RoomsHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, s.coord.RoomNames())
}

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("Error writing JSON response: %v", err)
	}
}
