package runner

import (
	"context"

	"github.com/aretw0/mentor/pkg/domain"
)

// IOHandler defines the strategy for interacting with the learner.
// This allows switching between Text (CLI/TUI) and JSON (Structured) modes.
type IOHandler interface {
	// Render presents the effects of one event.
	Render(ctx context.Context, effects domain.EffectSet) error

	// Input reads one line from the learner.
	Input(ctx context.Context) (string, error)

	// SystemOutput presents a meta-message (help, task status, errors).
	SystemOutput(ctx context.Context, msg string) error
}

// ContentRenderer transforms Markdown before it is written, e.g. to ANSI.
type ContentRenderer func(string) (string, error)
