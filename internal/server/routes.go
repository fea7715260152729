// Package server wires HTTP handlers into a ServeMux for the Parlor
// application via routing helpers.
package server

import "net/http"

// Routes configures and returns an HTTP ServeMux with all application
// routes: health check, WebSocket endpoint, and the query API.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.HealthHandler)
	mux.HandleFunc("/ws", s.WebSocketHandler)
	mux.HandleFunc("/api/messages", s.MessagesHandler)
	mux.HandleFunc("/api/users", s.UsersHandler)
	mux.HandleFunc("/api/rooms", s.RoomsHandler)
	return mux
}
