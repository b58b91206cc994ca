package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/aretw0/mentor/internal/presentation/graph"
	"github.com/aretw0/mentor/pkg/domain"
	"github.com/aretw0/mentor/pkg/export"
	"github.com/aretw0/mentor/pkg/runner"
	"github.com/aretw0/mentor/pkg/session"
)

var errBadRequest = errors.New("bad request")

// OpenSessionRequest is the body of POST /sessions.
type OpenSessionRequest struct {
	SectionPath string `json:"section_path"`
	SessionID   string `json:"session_id,omitempty"`
}

// EventRequest is the body of POST /sessions/{id}/events.
// Node is the key of the target of a select_node event.
type EventRequest struct {
	Type domain.EventType `json:"type"`
	Node string           `json:"node,omitempty"`
	Text string           `json:"text,omitempty"`
}

// TaskRequest is the body of the export and import endpoints.
type TaskRequest struct {
	Path string `json:"path"`
}

// SessionResponse describes an open session.
type SessionResponse struct {
	SessionID string                      `json:"session_id"`
	SectionID string                      `json:"section_id"`
	Section   string                      `json:"section"`
	View      Effect                      `json:"view"`
	Summary   domain.Summary              `json:"summary"`
	States    map[string]domain.NodeState `json:"states"`
}

// EventResponse carries the effects of one event.
type EventResponse struct {
	Effects []Effect `json:"effects"`
}

// Effect adds the error text that domain.Effect does not serialize.
type Effect struct {
	domain.Effect
	Error string `json:"error,omitempty"`
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

func describe(sess *session.Session) SessionResponse {
	return SessionResponse{
		SessionID: sess.ID(),
		SectionID: sess.Section().ID,
		Section:   sess.Section().Name,
		View:      Effect{Effect: sess.View()},
		Summary:   sess.Summary(),
		States:    sess.States(),
	}
}

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: invalid request body: %v", errBadRequest, err)
	}
	return nil
}

func (s *Server) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess, err := s.Manager.Get(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return nil, false
	}
	return sess, true
}

// ListSessions handles GET /sessions.
func (s *Server) ListSessions(w http.ResponseWriter, r *http.Request) {
	open := s.Manager.Sessions()
	out := make([]SessionResponse, len(open))
	for i, sess := range open {
		out[i] = describe(sess)
	}
	s.writeJSON(w, http.StatusOK, out)
}

// OpenSession handles POST /sessions.
// Opening an already open section returns its session with 200 instead of 201.
func (s *Server) OpenSession(w http.ResponseWriter, r *http.Request) {
	var body OpenSessionRequest
	if err := decode(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	if body.SectionPath == "" {
		s.writeError(w, r, fmt.Errorf("%w: section_path is required", errBadRequest))
		return
	}

	section, err := s.Loader.Load(r.Context(), body.SectionPath)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	before := len(s.Manager.Sessions())
	sess, err := s.Manager.Open(r.Context(), section, body.SessionID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	status := http.StatusOK
	if len(s.Manager.Sessions()) > before {
		status = http.StatusCreated
		s.stream(sess)
	}
	s.writeJSON(w, status, describe(sess))
}

// stream forwards the effects of sess to its SSE subscribers.
func (s *Server) stream(sess *session.Session) {
	id := sess.ID()
	sess.Subscribe(func(_ context.Context, effects domain.EffectSet) {
		if bytes, err := json.Marshal(wireEffects(effects)); err == nil {
			s.Streams.Broadcast(id, string(bytes))
		}
	})
}

// GetSession handles GET /sessions/{id}.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, describe(sess))
}

// CloseSession handles DELETE /sessions/{id}. ?mode=cancel cancels an
// outstanding task; the default waits for it.
func (s *Server) CloseSession(w http.ResponseWriter, r *http.Request) {
	mode := session.CloseWait
	if r.URL.Query().Get("mode") == "cancel" {
		mode = session.CloseCancel
	}
	if err := s.Manager.Close(r.Context(), chi.URLParam(r, "id"), mode); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DispatchEvent handles POST /sessions/{id}/events.
// A rejected event answers 409 with the illegal transition effect.
func (s *Server) DispatchEvent(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var body EventRequest
	if err := decode(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}

	ev := domain.Event{Type: body.Type}
	switch body.Type {
	case domain.EventSelectNode:
		node, found := sess.Graph().Lookup(body.Node)
		if !found {
			s.writeError(w, r, fmt.Errorf("node '%s': %w", body.Node, domain.ErrUnknownNode))
			return
		}
		ev.Node = node.ID
	case domain.EventSubmitAnswer:
		clean, err := runner.SanitizeInput(body.Text)
		if err != nil {
			s.writeError(w, r, fmt.Errorf("%w: %v", errBadRequest, err))
			return
		}
		ev.Text = clean
	}

	effects, err := sess.Dispatch(r.Context(), ev)
	switch {
	case errors.Is(err, domain.ErrIllegalTransition):
		s.writeJSON(w, http.StatusConflict, EventResponse{Effects: wireEffects(effects)})
	case err != nil:
		s.writeError(w, r, err)
	default:
		s.writeJSON(w, http.StatusOK, EventResponse{Effects: wireEffects(effects)})
	}
}

// StartExport handles POST /sessions/{id}/export.
func (s *Server) StartExport(w http.ResponseWriter, r *http.Request) {
	s.startTask(w, r, func(sess *session.Session, path string) (*export.Task, error) {
		return sess.ExportSolution(r.Context(), path)
	})
}

// StartImport handles POST /sessions/{id}/import.
func (s *Server) StartImport(w http.ResponseWriter, r *http.Request) {
	s.startTask(w, r, func(sess *session.Session, path string) (*export.Task, error) {
		return sess.ImportSolution(r.Context(), path)
	})
}

func (s *Server) startTask(w http.ResponseWriter, r *http.Request, start func(*session.Session, string) (*export.Task, error)) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var body TaskRequest
	if err := decode(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	if body.Path == "" {
		s.writeError(w, r, fmt.Errorf("%w: path is required", errBadRequest))
		return
	}
	task, err := start(sess, body.Path)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusAccepted, task.Status())
}

// GetCurrentTask handles GET /sessions/{id}/tasks/current.
func (s *Server) GetCurrentTask(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	task := sess.CurrentTask()
	if task == nil {
		s.writeJSON(w, http.StatusNotFound, errorResponse{Error: "no task"})
		return
	}
	s.writeJSON(w, http.StatusOK, task.Status())
}

// GetGraph handles GET /sessions/{id}/graph. The default is a Mermaid
// flowchart with the session progress; ?format=json returns the nodes.
func (s *Server) GetGraph(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	if r.URL.Query().Get("format") == "json" {
		s.writeJSON(w, http.StatusOK, sess.Graph().Nodes())
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprint(w, graph.GenerateMermaid(sess.Graph(), graph.OverlayFromSnapshot(sess.Snapshot())))
}
