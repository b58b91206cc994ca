package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/aretw0/mentor"
	"github.com/aretw0/mentor/internal/logging"
	"github.com/aretw0/mentor/internal/presentation/graph"
	"github.com/aretw0/mentor/pkg/domain"
	"github.com/aretw0/mentor/pkg/ports"
	"github.com/aretw0/mentor/pkg/runner"
	"github.com/aretw0/mentor/pkg/session"
)

// FlowURI is the resource listing the flows of the open sessions.
const FlowURI = "mentor://flow"

// Effect is a domain.Effect with its error rendered as text.
type Effect struct {
	domain.Effect
	Error string `json:"error,omitempty"`
}

// ViewResponse describes the current view of a session.
type ViewResponse struct {
	SessionID string                      `json:"session_id" jsonschema_description:"The session identifier"`
	SectionID string                      `json:"section_id" jsonschema_description:"The section being trained"`
	View      Effect                      `json:"view" jsonschema_description:"The node currently shown and its state"`
	Summary   domain.Summary              `json:"summary" jsonschema_description:"Completion of the section"`
	States    map[string]domain.NodeState `json:"states" jsonschema_description:"State of every node by key"`
}

// EventResponse carries the effects of one dispatched event.
type EventResponse struct {
	Effects  []Effect `json:"effects" jsonschema_description:"Effects produced by the event, in order"`
	Rejected bool     `json:"rejected" jsonschema_description:"Set when the event was an illegal transition"`
}

// OpenArgs are the arguments of open_section.
type OpenArgs struct {
	SectionPath string `json:"section_path"`
	SessionID   string `json:"session_id,omitempty"`
}

// ViewArgs are the arguments of get_view.
type ViewArgs struct {
	SessionID string `json:"session_id"`
}

// EventArgs are the arguments of dispatch_event. Node is a node key.
type EventArgs struct {
	SessionID string `json:"session_id"`
	Type      string `json:"type"`
	Node      string `json:"node,omitempty"`
	Text      string `json:"text,omitempty"`
}

// Server exposes training sessions as MCP tools.
type Server struct {
	manager   *session.Manager
	loader    ports.SectionLoader
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures a Server.
type Option func(*Server)

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(mgr *session.Manager, loader ports.SectionLoader, opts ...Option) *Server {
	s := &Server{
		manager:   mgr,
		loader:    loader,
		logger:    logging.NewNop(),
		mcpServer: server.NewMCPServer("mentor-mcp", strings.TrimSpace(mentor.Version)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves MCP over SSE on addr until ctx ends.
func (s *Server) ServeSSE(ctx context.Context, addr string) error {
	baseURL := "http://" + addr
	if strings.HasPrefix(addr, ":") {
		baseURL = "http://localhost" + addr
	}
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
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
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("open_section",
		mcp.WithDescription("Open a training section. Returns the session already open for that section, if any."),
		mcp.WithString("section_path", mcp.Required(), mcp.Description("Path of the section to load")),
		mcp.WithString("session_id", mcp.Description("Resume a stored session with this ID (optional)")),
		mcp.WithOutputSchema[ViewResponse](),
	), mcp.NewStructuredToolHandler(s.handleOpen))

	s.mcpServer.AddTool(mcp.NewTool("get_view",
		mcp.WithDescription("Render the node currently shown by a session."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("The session identifier")),
		mcp.WithOutputSchema[ViewResponse](),
	), mcp.NewStructuredToolHandler(s.handleGetView))

	s.mcpServer.AddTool(mcp.NewTool("dispatch_event",
		mcp.WithDescription("Send one user event to a session and return the resulting effects."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("The session identifier")),
		mcp.WithString("type", mcp.Required(),
			mcp.Description("Event type"),
			mcp.Enum(
				string(domain.EventStart),
				string(domain.EventSelectNode),
				string(domain.EventSubmitAnswer),
				string(domain.EventShowMentorAnswer),
				string(domain.EventBackToQuestion),
				string(domain.EventAdvance),
			),
		),
		mcp.WithString("node", mcp.Description("Key of the target node of select_node")),
		mcp.WithString("text", mcp.Description("Answer text of submit_answer")),
		mcp.WithOutputSchema[EventResponse](),
	), mcp.NewStructuredToolHandler(s.handleDispatch))

	s.mcpServer.AddTool(mcp.NewTool("get_flow",
		mcp.WithDescription("Get the flow graph of a session with its progress."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("The session identifier")),
		mcp.WithString("format", mcp.Description("mermaid (default) or json"), mcp.Enum("mermaid", "json")),
	), s.handleGetFlow)
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(FlowURI, "Flows of the open sessions",
		mcp.WithMIMEType("application/json"),
	), s.handleFlowResource)
}

func wireEffects(effects domain.EffectSet) []Effect {
	out := make([]Effect, len(effects))
	for i, e := range effects {
		out[i] = Effect{Effect: e}
		if e.Err != nil {
			out[i].Error = e.Err.Error()
		}
	}
	return out
}

func describe(sess *session.Session) ViewResponse {
	return ViewResponse{
		SessionID: sess.ID(),
		SectionID: sess.Section().ID,
		View:      Effect{Effect: sess.View()},
		Summary:   sess.Summary(),
		States:    sess.States(),
	}
}

func (s *Server) handleOpen(ctx context.Context, _ mcp.CallToolRequest, args OpenArgs) (ViewResponse, error) {
	if args.SectionPath == "" {
		return ViewResponse{}, errors.New("section_path is required")
	}
	section, err := s.loader.Load(ctx, args.SectionPath)
	if err != nil {
		return ViewResponse{}, fmt.Errorf("load failed: %w", err)
	}
	sess, err := s.manager.Open(ctx, section, args.SessionID)
	if err != nil {
		return ViewResponse{}, fmt.Errorf("open failed: %w", err)
	}
	return describe(sess), nil
}

func (s *Server) handleGetView(_ context.Context, _ mcp.CallToolRequest, args ViewArgs) (ViewResponse, error) {
	sess, err := s.manager.Get(args.SessionID)
	if err != nil {
		return ViewResponse{}, err
	}
	return describe(sess), nil
}

func (s *Server) handleDispatch(ctx context.Context, _ mcp.CallToolRequest, args EventArgs) (EventResponse, error) {
	sess, err := s.manager.Get(args.SessionID)
	if err != nil {
		return EventResponse{}, err
	}

	ev := domain.Event{Type: domain.EventType(args.Type)}
	switch ev.Type {
	case domain.EventSelectNode:
		node, found := sess.Graph().Lookup(args.Node)
		if !found {
			return EventResponse{}, fmt.Errorf("node '%s': %w", args.Node, domain.ErrUnknownNode)
		}
		ev.Node = node.ID
	case domain.EventSubmitAnswer:
		clean, err := runner.SanitizeInput(args.Text)
		if err != nil {
			s.logger.Warn("MCP dispatch: input rejected", "err", err, "size", len(args.Text))
			return EventResponse{}, fmt.Errorf("input rejected: %w", err)
		}
		ev.Text = clean
	}

	effects, err := sess.Dispatch(ctx, ev)
	if err != nil && !errors.Is(err, domain.ErrIllegalTransition) {
		return EventResponse{}, err
	}
	return EventResponse{
		Effects:  wireEffects(effects),
		Rejected: err != nil,
	}, nil
}

func (s *Server) handleGetFlow(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, err := s.manager.Get(request.GetString("session_id", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if request.GetString("format", "mermaid") == "json" {
		bytes, err := json.Marshal(sess.Graph().Nodes())
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("encode failed: %v", err)), nil
		}
		return mcp.NewToolResultText(string(bytes)), nil
	}
	return mcp.NewToolResultText(graph.GenerateMermaid(sess.Graph(), graph.OverlayFromSnapshot(sess.Snapshot()))), nil
}

type flowEntry struct {
	SessionID string                `json:"session_id"`
	SectionID string                `json:"section_id"`
	Nodes     []domain.WorkflowNode `json:"nodes"`
}

func (s *Server) handleFlowResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	open := s.manager.Sessions()
	flows := make([]flowEntry, 0, len(open))
	for _, sess := range open {
		flows = append(flows, flowEntry{
			SessionID: sess.ID(),
			SectionID: sess.Section().ID,
			Nodes:     sess.Graph().Nodes(),
		})
	}
	bytes, err := json.Marshal(flows)
	if err != nil {
		return nil, fmt.Errorf("failed to encode flows: %w", err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      FlowURI,
			MIMEType: "application/json",
			Text:     string(bytes),
		},
	}, nil
}
