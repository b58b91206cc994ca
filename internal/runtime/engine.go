package runtime

import (
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/mentor/pkg/domain"
	"github.com/aretw0/mentor/pkg/graph"
)

// Engine is the traversal state machine of one training session.
// It owns the cursor, the per-node states and the solution. Events are
// processed one at a time; the caller serializes access.
type Engine struct {
	graph    *graph.Graph
	states   []domain.NodeState
	current  domain.NodeID
	solution *domain.Solution

	completed bool
	finished  bool

	hooks  domain.LifecycleHooks
	logger *slog.Logger
	now    func() time.Time
}

// EngineOption configures the Engine.
type EngineOption func(*Engine)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets a structured logger.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithClock overrides the time source used for event timestamps.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// NewEngine creates an engine positioned on the Instruction node with every node Unvisited.
func NewEngine(g *graph.Graph, opts ...EngineOption) *Engine {
	e := &Engine{
		graph:    g,
		states:   make([]domain.NodeState, g.Len()),
		current:  g.Instruction().ID,
		solution: domain.NewSolution(),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:      time.Now,
	}
	for i := range e.states {
		e.states[i] = domain.StateUnvisited
	}
	for _, opt := range opts {
		opt(e)
	}
	e.completed = e.IsSectionCompleted()
	return e
}

// Graph returns the flow graph the engine walks.
func (e *Engine) Graph() *graph.Graph {
	return e.graph
}

// Current returns the node under the cursor and its state.
func (e *Engine) Current() (domain.WorkflowNode, domain.NodeState) {
	n, _ := e.graph.Node(e.current)
	return n, e.states[e.current]
}

// State returns the state of a node.
func (e *Engine) State(id domain.NodeID) domain.NodeState {
	if _, ok := e.graph.Node(id); !ok {
		return domain.StateUnvisited
	}
	return e.states[id]
}

// Solution returns a copy of the answers recorded so far.
func (e *Engine) Solution() *domain.Solution {
	return e.solution.Clone()
}

// Finished reports whether the terminal state was reached.
func (e *Engine) Finished() bool {
	return e.finished
}

// View returns the render effect for the current node without changing anything.
func (e *Engine) View() domain.Effect {
	return e.renderEffect()
}
