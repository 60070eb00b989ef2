package http

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"

	"github.com/aretw0/knitout/pkg/generator"
)

// Event is one message published on /events.
type Event struct {
	Kind string `json:"kind"`
	Data any    `json:"data"`
}

// StreamManager fans compile events out to SSE subscribers.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[chan<- Event]struct{}
	logger      *slog.Logger
}

// NewStreamManager creates a manager that reports dropped events to logger.
// A nil logger discards them.
func NewStreamManager(logger *slog.Logger) *StreamManager {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &StreamManager{subscribers: make(map[chan<- Event]struct{}), logger: logger}
}

// Subscribe returns a channel of events and the function that closes it.
func (sm *StreamManager) Subscribe() (<-chan Event, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan Event, 64)
	sm.subscribers[ch] = struct{}{}
	return ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		if _, ok := sm.subscribers[ch]; ok {
			delete(sm.subscribers, ch)
			close(ch)
		}
	}
}

// Broadcast sends ev to every subscriber. Slow subscribers miss it.
func (sm *StreamManager) Broadcast(ev Event) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	for ch := range sm.subscribers {
		select {
		case ch <- ev:
		default:
			sm.logger.Warn("SSE: Client buffer full, dropping event", "kind", ev.Kind)
		}
	}
}

// Hooks publishes every pass and course of a compilation.
func (sm *StreamManager) Hooks() generator.Hooks {
	return generator.Hooks{
		OnPass: func(_ context.Context, e *generator.PassEvent) {
			sm.Broadcast(Event{Kind: "pass", Data: passEvent{
				Course: e.Course, Type: e.Type.String(), Direction: e.Direction, Needles: e.Needles, Racking: e.Racking,
			}})
		},
		OnCourse: func(_ context.Context, e *generator.CourseEvent) {
			sm.Broadcast(Event{Kind: "course", Data: *e})
		},
	}
}

type passEvent struct {
	Course    int    `json:"course"`
	Type      string `json:"type"`
	Direction string `json:"direction"`
	Needles   int    `json:"needles"`
	Racking   int    `json:"racking"`
}

// SubscribeEvents handles GET /events (SSE).
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	events, cancel := s.Streams.Subscribe()
	defer cancel()

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Debug("SSE client disconnected")
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			data, err := json.Marshal(ev.Data)
			if err != nil {
				s.logger.Error("SSE encode failed", "err", err)
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Kind, data)
			flusher.Flush()
		}
	}
}
