package http

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	gorilla "github.com/gorilla/websocket"

	"github.com/aretw0/hostflow/pkg/adapters/websocket"
	"github.com/aretw0/hostflow/pkg/domain"
	"github.com/aretw0/hostflow/pkg/runner"
)

var upgrader = gorilla.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// Converse handles GET /ws: it upgrades the connection and holds one
// conversation on it. ?session_id= picks the id; a random one is used otherwise.
// An id that is already live, here or in the session store, is refused with 409.
func (s *Server) Converse(w http.ResponseWriter, r *http.Request) {
	if s.Model == nil {
		http.Error(w, "No language model configured", http.StatusServiceUnavailable)
		return
	}
	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	if !s.claim(sessionID) {
		http.Error(w, fmt.Sprintf("Session %s is already live", sessionID), http.StatusConflict)
		return
	}
	defer s.release(sessionID)

	if s.Sessions != nil {
		_, err := s.Sessions.Load(r.Context(), sessionID)
		switch {
		case err == nil:
			http.Error(w, fmt.Sprintf("Session %s is already live", sessionID), http.StatusConflict)
			return
		case !errors.Is(err, domain.ErrSessionNotFound):
			s.fail(w, "Load session failed", err)
			return
		}
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.Logger.Warn("Websocket upgrade failed", "err", err)
		return
	}
	tr := websocket.New(conn, websocket.WithLogger(s.Logger))
	defer tr.Close()

	logger := s.Logger.With("session", sessionID)
	if s.Metrics != nil {
		s.Metrics.SessionOpened()
		defer s.Metrics.SessionClosed()
	}

	opts := []runner.Option{
		runner.WithSessionID(sessionID),
		runner.WithLogger(logger),
		runner.WithUpdates(func(prev, next *domain.Session) {
			diff := domain.Diff(prev, next)
			if diff != nil {
				_ = tr.Notify(websocket.UpdateFrame(diff))
				s.Streams.Publish(diff)
			}
			if next.IsEnded() {
				_ = tr.Notify(websocket.EndedFrame(next))
			}
		}),
	}
	if s.Sessions != nil {
		opts = append(opts, runner.WithSessions(s.Sessions))
	}
	if s.Metrics != nil {
		opts = append(opts, runner.WithObserver(s.Metrics))
	}
	opts = append(opts, s.runnerOpts...)

	logger.Info("Conversation started", "remote", r.RemoteAddr)
	sess, err := s.Engine.NewRunner(s.Model, opts...).Run(r.Context(), tr)
	if err != nil {
		logger.Error("Conversation failed", "err", err)
		return
	}
	if sess != nil {
		logger.Info("Conversation finished", "node", sess.CurrentNodeID, "reason", sess.EndReason)
	}
}

// claim reserves the id for one conversation on this server.
func (s *Server) claim(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.live[id]; taken {
		return false
	}
	s.live[id] = struct{}{}
	return true
}

func (s *Server) release(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.live, id)
}
