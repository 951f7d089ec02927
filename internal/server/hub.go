package server

import "sync"

// ReloadHub is the registry of live-reload client connections. It is owned by
// one DevServer instance and supports only add, remove, and broadcast;
// clients carry no state beyond their delivery channel.
type ReloadHub struct {
	mutex   sync.Mutex
	clients map[chan string]struct{}
	closed  bool
}

// NewReloadHub creates an empty hub
func NewReloadHub() *ReloadHub {
	return &ReloadHub{
		clients: make(map[chan string]struct{}),
	}
}

// Register adds a client and returns its delivery channel. The channel is
// buffered so a slow client cannot stall a broadcast.
func (h *ReloadHub) Register() chan string {
	ch := make(chan string, 8)

	h.mutex.Lock()
	defer h.mutex.Unlock()
	if h.closed {
		close(ch)
		return ch
	}
	h.clients[ch] = struct{}{}
	return ch
}

// Unregister removes a client and closes its channel
func (h *ReloadHub) Unregister(ch chan string) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if _, ok := h.clients[ch]; ok {
		delete(h.clients, ch)
		close(ch)
	}
}

// Broadcast delivers a message to every registered client. Clients whose
// buffers are full miss this message rather than blocking the hub.
func (h *ReloadHub) Broadcast(msg string) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	for ch := range h.clients {
		select {
		case ch <- msg:
		default:
		}
	}
}

// Count returns the number of connected clients
func (h *ReloadHub) Count() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.clients)
}

// Close closes every client channel and rejects future registrations
func (h *ReloadHub) Close() {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	h.closed = true
	for ch := range h.clients {
		delete(h.clients, ch)
		close(ch)
	}
}
