package handler

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/sakif/vininote/internal/metrics"
	"github.com/sakif/vininote/internal/store"
)

// Change feed timings.
const (
	eventBuffer    = 16
	eventWriteWait = 10 * time.Second
	eventPongWait  = 60 * time.Second
	eventPingEvery = eventPongWait * 9 / 10
)

// EventHub fans journal changes out to websocket clients: the server side
// of "refresh when another tab or process changed the data".
//
// Publish never blocks. A client whose buffer is full is dropped; its
// view reconnects and reloads.
type EventHub struct {
	logger   *slog.Logger
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*eventClient]struct{}
	closed  bool
}

type eventClient struct {
	send chan store.Change
}

// NewEventHub creates an empty hub. Subscribe it to the journal with
// journal.Subscribe(hub.Publish).
func NewEventHub(logger *slog.Logger) *EventHub {
	return &EventHub{
		logger:  logger,
		clients: make(map[*eventClient]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
	}
}

// Publish queues c for every client.
func (h *EventHub) Publish(c store.Change) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for cl := range h.clients {
		select {
		case cl.send <- c:
		default:
			h.dropLocked(cl)
			metrics.ObserveEventDrop()
			h.logger.Warn("change feed client too slow, dropped")
		}
	}
}

// Clients is the number of connected clients.
func (h *EventHub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Run blocks until ctx is done, then disconnects every client.
func (h *EventHub) Run(ctx context.Context) error {
	<-ctx.Done()

	h.mu.Lock()
	h.closed = true
	for cl := range h.clients {
		h.dropLocked(cl)
	}
	h.mu.Unlock()
	return nil
}

func (h *EventHub) register() (*eventClient, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil, false
	}
	cl := &eventClient{send: make(chan store.Change, eventBuffer)}
	h.clients[cl] = struct{}{}
	metrics.SetEventClients(len(h.clients))
	return cl, true
}

func (h *EventHub) unregister(cl *eventClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.dropLocked(cl)
}

// dropLocked removes cl and closes its channel, once.
func (h *EventHub) dropLocked(cl *eventClient) {
	if _, ok := h.clients[cl]; !ok {
		return
	}
	delete(h.clients, cl)
	close(cl.send)
	metrics.SetEventClients(len(h.clients))
}

// HandleEvents upgrades to a websocket and streams Change values as JSON.
// Messages from the client are read only to notice pongs and disconnects.
//
// HTTP: GET /api/events
func (h *EventHub) HandleEvents(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		h.logger.Debug("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}
	defer conn.Close()

	cl, ok := h.register()
	if !ok {
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
		return
	}
	h.logger.Debug("change feed client connected")

	go h.readLoop(conn, cl)
	h.writeLoop(conn, cl)
}

func (h *EventHub) readLoop(conn *websocket.Conn, cl *eventClient) {
	defer h.unregister(cl)

	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(eventPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(eventPongWait))
	})
	for {
		if _, _, err := conn.NextReader(); err != nil {
			return
		}
	}
}

func (h *EventHub) writeLoop(conn *websocket.Conn, cl *eventClient) {
	ping := time.NewTicker(eventPingEvery)
	defer ping.Stop()

	for {
		select {
		case c, ok := <-cl.send:
			_ = conn.SetWriteDeadline(time.Now().Add(eventWriteWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
				return
			}
			if err := conn.WriteJSON(c); err != nil {
				h.unregister(cl)
				return
			}
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(eventWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.unregister(cl)
				return
			}
		}
	}
}
