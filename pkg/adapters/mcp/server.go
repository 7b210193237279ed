package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/aretw0/hostflow/internal/logging"
	"github.com/aretw0/hostflow/internal/presentation/graph"
	"github.com/aretw0/hostflow/pkg/domain"
	"github.com/aretw0/hostflow/pkg/runner"
	"github.com/aretw0/hostflow/pkg/session"
)

// Names of the tools that are always registered. Flow actions may not reuse them.
const (
	ToolGetPrompt  = "get_prompt"
	ToolGetSession = "get_session"
	ToolEndSession = "end_session"
)

// Resource URIs.
const (
	GraphURI   = "hostflow://graph"
	SessionURI = "hostflow://session"
)

// Engine is the part of hostflow.Engine the server drives.
type Engine interface {
	Start(ctx context.Context, sessionID string) (*domain.Session, error)
	Transition(ctx context.Context, sess *domain.Session, call domain.ToolCall) (*domain.Session, error)
	Manifest(sess *domain.Session) ([]domain.ToolSpec, error)
	Prompt(sess *domain.Session) (domain.Prompt, error)
	End(ctx context.Context, sess *domain.Session, reason string) *domain.Session
	Inspect() []*domain.Node
	Queue() *runner.Queue
}

// TurnResponse is returned by every action tool and by get_prompt.
// Announcements are the fixed lines queued by entry effects since the last
// response; the client speaks them verbatim before anything else.
type TurnResponse struct {
	NodeID        string   `json:"node_id"`
	Ended         bool     `json:"ended"`
	Reason        string   `json:"end_reason,omitempty"`
	Announcements []string `json:"announcements,omitempty"`
	System        string   `json:"system"`
	Actions       []string `json:"actions"`
}

// Server holds one conversation and exposes it to an MCP client, which plays
// the language model: the current node's actions are the server's tools and
// the tool list is swapped on every transition.
type Server struct {
	engine    Engine
	sessions  *session.Manager
	mcpServer *server.MCPServer
	logger    *slog.Logger
	sessionID string
	name      string
	version   string

	mu     sync.Mutex
	sess   *domain.Session
	active []string
}

// Option configures the Server.
type Option func(*Server)

// WithSessionID fixes the conversation id.
func WithSessionID(id string) Option {
	return func(s *Server) { s.sessionID = id }
}

// WithSessions tracks every snapshot in the manager.
func WithSessions(m *session.Manager) Option {
	return func(s *Server) { s.sessions = m }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithInfo sets the name and version announced to clients.
func WithInfo(name, version string) Option {
	return func(s *Server) { s.name, s.version = name, version }
}

// NewServer starts a conversation on the engine and registers its tools.
func NewServer(ctx context.Context, engine Engine, opts ...Option) (*Server, error) {
	s := &Server{
		engine:    engine,
		logger:    logging.NewNop(),
		sessionID: "mcp",
		name:      "hostflow-mcp",
		version:   "dev",
	}
	for _, opt := range opts {
		opt(s)
	}

	for _, n := range engine.Inspect() {
		for _, a := range n.Actions {
			if reserved(a.Name) {
				return nil, &domain.ConfigurationError{Problems: []string{
					fmt.Sprintf("node %q: action name %q is reserved by the MCP server", n.ID, a.Name),
				}}
			}
		}
	}

	s.mcpServer = server.NewMCPServer(s.name, strings.TrimSpace(s.version),
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, false),
	)

	sess, err := engine.Start(ctx, s.sessionID)
	if err != nil {
		return nil, err
	}
	if err := s.commit(ctx, sess); err != nil {
		return nil, err
	}

	s.registerTools()
	s.registerResources()
	return s, nil
}

func reserved(name string) bool {
	switch name {
	case ToolGetPrompt, ToolGetSession, ToolEndSession:
		return true
	}
	return false
}

// MCPServer returns the underlying protocol server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// Session returns the current snapshot.
func (s *Server) Session() *domain.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sess
}

// ServeStdio serves the protocol on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves the protocol over SSE on addr until ctx is cancelled.
func (s *Server) ServeSSE(ctx context.Context, addr string) error {
	baseURL := "http://localhost" + addr
	if !strings.HasPrefix(addr, ":") {
		baseURL = "http://" + addr
	}
	sse := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sse.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sse.MessageHandler()))
	httpServer := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool(ToolGetPrompt,
		mcp.WithDescription("Get the system instruction and available actions for the current step of the conversation."),
	), s.handleGetPrompt)

	s.mcpServer.AddTool(mcp.NewTool(ToolGetSession,
		mcp.WithDescription("Get the full conversation session: current node, history and collected arguments."),
	), s.handleGetSession)

	s.mcpServer.AddTool(mcp.NewTool(ToolEndSession,
		mcp.WithDescription("End the conversation without reaching a terminal node."),
		mcp.WithString("reason", mcp.Description("Why the conversation ends (default: disconnect)")),
	), s.handleEndSession)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.syncActionsLocked()
}

// syncActionsLocked replaces the registered action tools with the current manifest.
func (s *Server) syncActionsLocked() {
	if len(s.active) > 0 {
		s.mcpServer.DeleteTools(s.active...)
		s.active = nil
	}
	specs, err := s.engine.Manifest(s.sess)
	if err != nil {
		s.logger.Error("MCP: manifest failed", "err", err)
		return
	}
	for _, spec := range specs {
		schema, err := json.Marshal(spec.Parameters)
		if err != nil {
			s.logger.Error("MCP: schema encode failed", "action", spec.Name, "err", err)
			continue
		}
		s.mcpServer.AddTool(mcp.NewToolWithRawSchema(spec.Name, spec.Description, schema), s.handleAction)
		s.active = append(s.active, spec.Name)
	}
	s.logger.Debug("MCP: tools synced", "node", s.sess.CurrentNodeID, "actions", s.active)
}

func (s *Server) commit(ctx context.Context, sess *domain.Session) error {
	s.sess = sess
	if s.sessions == nil {
		return nil
	}
	return s.sessions.Track(ctx, sess)
}

func (s *Server) handleAction(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	call := domain.ToolCall{Name: request.Params.Name, Arguments: request.GetArguments()}
	next, err := s.engine.Transition(ctx, s.sess, call)
	switch {
	case domain.IsRecoverable(err):
		return mcp.NewToolResultError(err.Error()), nil
	case errors.Is(err, domain.ErrInvalidState):
		if !s.sess.IsEnded() {
			s.logger.Error("MCP: flow rejected the session", "session", s.sess.ID, "err", err)
			if err := s.commit(ctx, s.engine.End(ctx, s.sess, domain.EndReasonInvalidState)); err != nil {
				s.logger.Warn("MCP: snapshot not tracked", "session", s.sess.ID, "err", err)
			}
			s.syncActionsLocked()
		}
		return mcp.NewToolResultError(err.Error()), nil
	case err != nil:
		return nil, err
	}

	moved := next.CurrentNodeID != s.sess.CurrentNodeID || next.IsEnded()
	if err := s.commit(ctx, next); err != nil {
		s.logger.Warn("MCP: snapshot not tracked", "session", next.ID, "err", err)
	}
	if moved {
		s.syncActionsLocked()
	}
	return s.turnLocked()
}

func (s *Server) handleGetPrompt(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.turnLocked()
}

func (s *Server) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return jsonResult(s.sess)
}

func (s *Server) handleEndSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	reason := request.GetString("reason", domain.EndReasonDisconnect)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sess.IsEnded() {
		return mcp.NewToolResultError(fmt.Sprintf("session %s already ended (%s)", s.sess.ID, s.sess.EndReason)), nil
	}
	if err := s.commit(ctx, s.engine.End(ctx, s.sess, reason)); err != nil {
		s.logger.Warn("MCP: snapshot not tracked", "session", s.sess.ID, "err", err)
	}
	s.syncActionsLocked()
	return s.turnLocked()
}

func (s *Server) turnLocked() (*mcp.CallToolResult, error) {
	prompt, err := s.engine.Prompt(s.sess)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(TurnResponse{
		NodeID:        s.sess.CurrentNodeID,
		Ended:         s.sess.IsEnded(),
		Reason:        s.sess.EndReason,
		Announcements: s.engine.Queue().Drain(s.sess.ID),
		System:        prompt.System(),
		Actions:       append([]string{}, s.active...),
	})
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(GraphURI, "Conversation flow",
		mcp.WithResourceDescription("Mermaid flowchart of the flow with the session's path highlighted"),
		mcp.WithMIMEType("text/plain"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		sess := s.Session()
		chart := graph.GenerateMermaid(s.engine.Inspect(), sess.History[0], graph.OverlayFor(sess))
		return []mcp.ResourceContents{
			mcp.TextResourceContents{URI: GraphURI, MIMEType: "text/plain", Text: chart},
		}, nil
	})

	s.mcpServer.AddResource(mcp.NewResource(SessionURI, "Current session",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		data, err := json.Marshal(s.Session())
		if err != nil {
			return nil, fmt.Errorf("failed to encode session: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{URI: SessionURI, MIMEType: "application/json", Text: string(data)},
		}, nil
	})
}
