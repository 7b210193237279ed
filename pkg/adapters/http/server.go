package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/aretw0/hostflow/internal/logging"
	"github.com/aretw0/hostflow/internal/presentation/graph"
	"github.com/aretw0/hostflow/pkg/domain"
	"github.com/aretw0/hostflow/pkg/observability"
	"github.com/aretw0/hostflow/pkg/ports"
	"github.com/aretw0/hostflow/pkg/runner"
	"github.com/aretw0/hostflow/pkg/session"
)

// Engine is the part of hostflow.Engine the server needs.
type Engine interface {
	Graph() ports.Graph
	NewRunner(model ports.LanguageModel, opts ...runner.Option) *runner.Runner
}

// Server exposes a flow over HTTP: health, graph inspection, live session
// snapshots, session diffs over SSE and conversations over websocket.
type Server struct {
	Engine   Engine
	Model    ports.LanguageModel
	Sessions *session.Manager
	Metrics  *observability.Metrics
	Streams  *StreamManager
	Logger   *slog.Logger
	Name     string
	Version  string

	runnerOpts []runner.Option

	mu   sync.Mutex
	live map[string]struct{} // ids of conversations held by this server
}

// Option configures the Server.
type Option func(*Server)

// WithModel enables the /ws conversation endpoint.
func WithModel(m ports.LanguageModel) Option {
	return func(s *Server) { s.Model = m }
}

// WithSessions enables the /sessions endpoints and snapshot tracking.
func WithSessions(m *session.Manager) Option {
	return func(s *Server) { s.Sessions = m }
}

// WithMetrics mounts /metrics and records per-turn measurements.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Server) { s.Metrics = m }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.Logger = l }
}

// WithInfo sets the flow name and build version reported by /info.
func WithInfo(name, version string) Option {
	return func(s *Server) { s.Name, s.Version = name, version }
}

// WithRunnerOptions appends options to every runner the server creates.
func WithRunnerOptions(opts ...runner.Option) Option {
	return func(s *Server) { s.runnerOpts = append(s.runnerOpts, opts...) }
}

// NewHandler creates the HTTP handler for the engine.
func NewHandler(engine Engine, opts ...Option) http.Handler {
	return NewServer(engine, opts...).Handler()
}

// NewServer creates a server for the engine.
func NewServer(engine Engine, opts ...Option) *Server {
	s := &Server{
		Engine:  engine,
		Streams: NewStreamManager(),
		live:    make(map[string]struct{}),
		Logger:  logging.NewNop(),
		Name:    "hostflow",
		Version: "dev",
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Streams.logger = s.Logger
	return s
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(enableCORS)

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/graph", s.GetGraph)
	r.Get("/events", s.SubscribeEvents)
	r.Get("/ws", s.Converse)
	r.Route("/sessions", func(r chi.Router) {
		r.Get("/", s.ListSessions)
		r.Get("/{sessionID}", s.GetSession)
		r.Get("/{sessionID}/graph", s.GetSessionGraph)
	})
	if s.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.Metrics.Handler())
	}
	return r
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles GET /info.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"app":          "hostflow",
		"flow":         s.Name,
		"version":      strings.TrimSpace(s.Version),
		"start_node":   s.Engine.Graph().Start(),
		"conversation": s.Model != nil,
	})
}

// NodeView is the JSON shape of a node in GET /graph.
type NodeView struct {
	ID       string       `json:"id"`
	Terminal bool         `json:"terminal"`
	Actions  []ActionView `json:"actions,omitempty"`
	Effects  []string     `json:"effects,omitempty"`
}

// ActionView is the JSON shape of an action in GET /graph.
type ActionView struct {
	Name       string         `json:"name"`
	Successor  string         `json:"successor"`
	Parameters map[string]any `json:"parameters"`
}

// GetGraph handles GET /graph. ?format=mermaid returns a flowchart.
func (s *Server) GetGraph(w http.ResponseWriter, r *http.Request) {
	g := s.Engine.Graph()
	if r.URL.Query().Get("format") == "mermaid" {
		s.writeMermaid(w, graph.GenerateMermaid(g.Nodes(), g.Start(), nil))
		return
	}

	nodes := g.Nodes()
	views := make([]NodeView, 0, len(nodes))
	for _, n := range nodes {
		v := NodeView{ID: n.ID, Terminal: n.IsTerminal()}
		for _, a := range n.Actions {
			successor := a.Successor
			if successor == "" {
				successor = n.ID
			}
			v.Actions = append(v.Actions, ActionView{Name: a.Name, Successor: successor, Parameters: a.ParameterSchema()})
		}
		for _, e := range n.Effects {
			v.Effects = append(v.Effects, e.Type)
		}
		views = append(views, v)
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"start": g.Start(), "nodes": views})
}

// ListSessions handles GET /sessions.
func (s *Server) ListSessions(w http.ResponseWriter, r *http.Request) {
	if s.Sessions == nil {
		http.Error(w, "Session tracking is disabled", http.StatusNotImplemented)
		return
	}
	ids, err := s.Sessions.List(r.Context())
	if err != nil {
		s.fail(w, "List sessions failed", err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"sessions": ids})
}

// GetSession handles GET /sessions/{sessionID}.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.loadSession(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, sess)
}

// GetSessionGraph handles GET /sessions/{sessionID}/graph: the flowchart with the session's path highlighted.
func (s *Server) GetSessionGraph(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.loadSession(w, r)
	if !ok {
		return
	}
	g := s.Engine.Graph()
	s.writeMermaid(w, graph.GenerateMermaid(g.Nodes(), g.Start(), graph.OverlayFor(sess)))
}

func (s *Server) loadSession(w http.ResponseWriter, r *http.Request) (*domain.Session, bool) {
	if s.Sessions == nil {
		http.Error(w, "Session tracking is disabled", http.StatusNotImplemented)
		return nil, false
	}
	id := chi.URLParam(r, "sessionID")
	sess, err := s.Sessions.Load(r.Context(), id)
	if errors.Is(err, domain.ErrSessionNotFound) {
		http.Error(w, fmt.Sprintf("Session %s not found", id), http.StatusNotFound)
		return nil, false
	}
	if err != nil {
		s.fail(w, "Load session failed", err)
		return nil, false
	}
	return sess, true
}

func (s *Server) writeMermaid(w http.ResponseWriter, chart string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(chart))
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.Logger.Error("Response encode failed", "err", err)
	}
}

func (s *Server) fail(w http.ResponseWriter, msg string, err error) {
	s.Logger.Error(msg, "err", err)
	http.Error(w, fmt.Sprintf("%s: %v", msg, err), http.StatusInternalServerError)
}

// Shutdown closes every SSE stream.
func (s *Server) Shutdown(ctx context.Context) {
	s.Streams.CloseAll()
}
