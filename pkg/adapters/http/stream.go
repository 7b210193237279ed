package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/aretw0/hostflow/internal/logging"
	"github.com/aretw0/hostflow/pkg/domain"
)

// StreamManager fans session diffs out to SSE subscribers.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan string]struct{} // session id -> channels
	logger      *slog.Logger
}

func NewStreamManager() *StreamManager {
	return &StreamManager{
		subscribers: make(map[string]map[chan string]struct{}),
		logger:      logging.NewNop(),
	}
}

// Subscribe registers a channel for the session. The returned func unsubscribes.
func (sm *StreamManager) Subscribe(sessionID string) (<-chan string, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan string, 10)
	if _, ok := sm.subscribers[sessionID]; !ok {
		sm.subscribers[sessionID] = make(map[chan string]struct{})
	}
	sm.subscribers[sessionID][ch] = struct{}{}

	return ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		subs, ok := sm.subscribers[sessionID]
		if !ok {
			return
		}
		if _, ok := subs[ch]; !ok {
			return
		}
		delete(subs, ch)
		close(ch)
		if len(subs) == 0 {
			delete(sm.subscribers, sessionID)
		}
	}
}

// Broadcast sends msg to every subscriber of the session. Slow subscribers miss messages.
func (sm *StreamManager) Broadcast(sessionID string, msg string) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	for ch := range sm.subscribers[sessionID] {
		select {
		case ch <- msg:
		default:
			sm.logger.Warn("SSE: Client buffer full, dropping message", "session_id", sessionID)
		}
	}
}

// Publish encodes a session diff and broadcasts it.
func (sm *StreamManager) Publish(diff *domain.SessionDiff) {
	if diff == nil {
		return
	}
	data, err := json.Marshal(diff)
	if err != nil {
		sm.logger.Error("SSE: Diff encode failed", "err", err)
		return
	}
	sm.Broadcast(diff.SessionID, string(data))
}

// CloseAll ends every subscription.
func (sm *StreamManager) CloseAll() {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	for id, subs := range sm.subscribers {
		for ch := range subs {
			close(ch)
		}
		delete(sm.subscribers, id)
	}
}

// SubscribeEvents handles GET /events?session_id=...[&watch=node,arguments,status] (SSE).
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}
	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		http.Error(w, "session_id is required", http.StatusBadRequest)
		return
	}

	var watch []string
	if raw := r.URL.Query().Get("watch"); raw != "" {
		for _, f := range strings.Split(raw, ",") {
			watch = append(watch, strings.TrimSpace(f))
		}
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, cancel := s.Streams.Subscribe(sessionID)
	defer cancel()

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if len(watch) > 0 && !matches(msg, watch) {
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

// matches reports whether an encoded diff touches any watched field.
func matches(msg string, watch []string) bool {
	var diff domain.SessionDiff
	if err := json.Unmarshal([]byte(msg), &diff); err != nil {
		return true
	}
	for _, field := range watch {
		switch field {
		case "node":
			if diff.CurrentNodeID != nil {
				return true
			}
		case "arguments":
			if len(diff.Arguments) > 0 {
				return true
			}
		case "status":
			if diff.Status != nil {
				return true
			}
		}
	}
	return false
}
