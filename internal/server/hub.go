// Package server coordinates client registration, event delivery, and
// connection cleanup for the Parlor WebSocket transport via the Hub type.
package server

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/parlorchat/parlor/internal/coordinator"
)

// Hub manages all WebSocket client connections keyed by connection id and
// delivers encoded event frames to their audiences. It maintains client
// registration/unregistration and ensures thread-safe operations through
// mutex protection.
//
// The hub owns the only path from a transport-level disconnect to the
// coordinator's disconnect transition, so a connection is always purged from
// the coordinator exactly once no matter how it died.
type Hub struct {
	coord      *coordinator.Coordinator
	clients    map[string]*Client
	deliver    chan Delivery
	register   chan *Client
	unregister chan *Client
	mutex      sync.RWMutex
	wg         sync.WaitGroup
	ctx        context.Context
	cancel     context.CancelFunc
	done       chan struct{}
}

// NewHub creates and initializes a new Hub instance bound to a coordinator.
// The returned Hub is ready to manage WebSocket connections once Run is
// started.
func NewHub(coord *coordinator.Coordinator) *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		coord:      coord,
		clients:    make(map[string]*Client),
		deliver:    make(chan Delivery, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		ctx:        ctx,
		cancel:     cancel,
		done:       make(chan struct{}),
	}
}

// GetRegisterChan returns the channel used for registering new clients to
// the hub. This channel is write-only from the caller's perspective.
func (h *Hub) GetRegisterChan() chan<- *Client {
	return h.register
}

// GetUnregisterChan returns the channel used for unregistering clients from
// the hub. This channel is write-only from the caller's perspective.
func (h *Hub) GetUnregisterChan() chan<- *Client {
	return h.unregister
}

// Deliver encodes an outbound event batch from the coordinator and queues
// each frame for delivery. State mutation has already completed by the time
// a batch reaches the hub, so a slow recipient can only delay delivery,
// never corrupt shared state.
func (h *Hub) Deliver(batch []coordinator.Outbound) {
	for _, out := range batch {
		payload, err := encodeEvent(out.Event, out.Payload)
		if err != nil {
			log.Printf("Dropping undeliverable %s event: %v", out.Event, err)
			continue
		}

		select {
		case h.deliver <- Delivery{All: out.All, ConnIDs: out.ConnIDs, Payload: payload}:
		case <-h.ctx.Done():
			return
		}
	}
}

func (h *Hub) safeSend(client *Client, message []byte) bool {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Recovered from panic in safeSend: %v", r)
		}
	}()

	// Hold the lock during the entire send operation to prevent race conditions
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	_, exists := h.clients[client.id]
	if !exists || client.closed {
		return false
	}

	select {
	case client.send <- message:
		return true
	default:
		return false
	}
}

// Run starts the hub's main event loop, handling client registration,
// unregistration, and event delivery. This method should be called in a
// separate goroutine as it runs indefinitely.
func (h *Hub) Run() {
	defer close(h.done)

	for {
		select {
		case <-h.ctx.Done():
			h.shutdownClients()
			return

		case client := <-h.register:
			if client == nil {
				log.Printf("Received nil client registration; skipping")
				continue
			}

			h.mutex.Lock()
			client.closed = false
			h.clients[client.id] = client
			clientCount := len(h.clients)
			h.mutex.Unlock()
			log.Printf("Client %s registered from %s. Total clients: %d", client.id, client.addr, clientCount)

			h.wg.Add(2)
			go func() {
				defer h.wg.Done()
				client.writePump()
			}()
			go func() {
				defer h.wg.Done()
				client.readPump()
			}()

		case client := <-h.unregister:
			h.dropClient(client)

		case delivery := <-h.deliver:
			h.handleDelivery(delivery)
		}
	}
}

// dropClient removes a client from the hub and pushes the coordinator
// through the disconnect transition, delivering the resulting presence and
// typing updates to everyone still connected.
func (h *Hub) dropClient(client *Client) {
	h.mutex.Lock()
	if _, ok := h.clients[client.id]; !ok {
		h.mutex.Unlock()
		return
	}
	delete(h.clients, client.id)
	client.closed = true
	clientCount := len(h.clients)
	h.mutex.Unlock()

	// Close the channel after releasing the lock
	close(client.send)
	log.Printf("Client %s unregistered from %s. Total clients: %d", client.id, client.addr, clientCount)

	batch := h.coord.Dispatch(client.id, coordinator.Command{Kind: coordinator.CommandDisconnect})
	h.deliverNow(batch)
}

// deliverNow encodes and delivers a batch from inside the Run goroutine,
// bypassing the deliver channel to avoid self-blocking.
func (h *Hub) deliverNow(batch []coordinator.Outbound) {
	for _, out := range batch {
		payload, err := encodeEvent(out.Event, out.Payload)
		if err != nil {
			log.Printf("Dropping undeliverable %s event: %v", out.Event, err)
			continue
		}
		h.handleDelivery(Delivery{All: out.All, ConnIDs: out.ConnIDs, Payload: payload})
	}
}

// handleDelivery resolves a delivery's audience to concrete clients and
// sends the frame to each of them.
func (h *Hub) handleDelivery(delivery Delivery) {
	targets := h.resolveTargets(delivery)

	var clientsToRemove []*Client
	for _, client := range targets {
		if !h.safeSend(client, delivery.Payload) {
			clientsToRemove = append(clientsToRemove, client)
		}
	}

	h.removeFailedClients(clientsToRemove)
}

// resolveTargets returns a thread-safe snapshot of the clients addressed by
// a delivery.
func (h *Hub) resolveTargets(delivery Delivery) []*Client {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	if delivery.All {
		targets := make([]*Client, 0, len(h.clients))
		for _, client := range h.clients {
			targets = append(targets, client)
		}
		return targets
	}

	targets := make([]*Client, 0, len(delivery.ConnIDs))
	for _, connID := range delivery.ConnIDs {
		if client, ok := h.clients[connID]; ok {
			targets = append(targets, client)
		}
	}
	return targets
}

// removeFailedClients drops clients whose send buffers are full and runs the
// disconnect transition for each of them.
func (h *Hub) removeFailedClients(clientsToRemove []*Client) {
	if len(clientsToRemove) == 0 {
		return
	}

	var dropped []*Client

	h.mutex.Lock()
	for _, client := range clientsToRemove {
		if _, exists := h.clients[client.id]; exists {
			delete(h.clients, client.id)
			client.closed = true
			dropped = append(dropped, client)
			log.Printf("Client %s from %s removed due to full send buffer", client.id, client.addr)
		}
	}
	h.mutex.Unlock()

	// Close channels after releasing the lock
	for _, client := range dropped {
		close(client.send)
	}
	for _, client := range dropped {
		batch := h.coord.Dispatch(client.id, coordinator.Command{Kind: coordinator.CommandDisconnect})
		h.deliverNow(batch)
	}
}

// shutdownClients gracefully closes all active client connections
func (h *Hub) shutdownClients() {
	log.Println("Shutting down all client connections...")

	h.mutex.Lock()
	clients := make([]*Client, 0, len(h.clients))
	for _, client := range h.clients {
		clients = append(clients, client)
	}
	h.mutex.Unlock()

	for _, client := range clients {
		if client.conn != nil {
			if err := client.conn.Close(); err != nil {
				if !isExpectedCloseError(err) {
					log.Printf("Error closing client connection from %s: %v", client.addr, err)
				}
			}
		}
	}

	log.Printf("Closed %d client connections", len(clients))
}

// Shutdown initiates graceful shutdown of the hub and waits for all
// goroutines to complete. It returns after all client connections are closed
// and goroutines have finished, or when the timeout is reached.
func (h *Hub) Shutdown(timeout time.Duration) error {
	log.Println("Initiating hub shutdown...")

	// Signal shutdown
	h.cancel()

	// Wait for Run() to complete
	<-h.done

	// Wait for all client goroutines to finish with timeout
	done := make(chan struct{})
	go func() {
		h.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Println("Hub shutdown completed successfully")
		return nil
	case <-time.After(timeout):
		log.Println("Hub shutdown timeout reached, some goroutines may still be running")
		return context.DeadlineExceeded
	}
}
