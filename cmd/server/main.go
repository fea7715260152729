package main

import (
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/parlorchat/parlor/internal/coordinator"
	"github.com/parlorchat/parlor/internal/server"
)

func main() {
	log.Println("Starting Parlor chat server...")

	cfg, err := server.LoadConfig()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	coord := coordinator.New(cfg.HistoryLimit)
	hub := server.NewHub(coord)
	go hub.Run()

	srv := server.NewServer(cfg, coord, hub)
	httpServer := server.CreateServer(cfg.Port, srv.Routes())

	errCh := make(chan error, 1)
	go func() {
		if err := server.StartServer(httpServer); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		log.Fatalf("HTTP server error: %v", err)
	case sig := <-stop:
		log.Printf("Received %s, shutting down...", sig)
	}

	if err := server.ShutdownServer(httpServer, cfg.ShutdownTimeout); err != nil {
		log.Printf("HTTP shutdown incomplete: %v", err)
	}
	if err := hub.Shutdown(cfg.ShutdownTimeout); err != nil {
		log.Printf("Hub shutdown incomplete: %v", err)
	}
}
