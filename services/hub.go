package services

import "sync"

const (
	MessageView  = "view"
	MessageAlert = "alert"
)

type Message struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Hub fans render-loop messages out to WebSocket clients. Slow subscribers
// miss messages instead of stalling the loop.
type Hub struct {
	mu     sync.Mutex
	subs   map[chan Message]struct{}
	buffer int
}

func NewHub() *Hub {
	return &Hub{subs: make(map[chan Message]struct{}), buffer: 8}
}

// Subscribe returns a message channel and a func that must be called to
// release it.
func (h *Hub) Subscribe() (<-chan Message, func()) {
	ch := make(chan Message, h.buffer)

	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, ch)
			h.mu.Unlock()
			close(ch)
		})
	}
}

func (h *Hub) Publish(m Message) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs {
		select {
		case ch <- m:
		default:
		}
	}
}

func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
