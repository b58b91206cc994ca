package middleware

import (
	"context"
	"fmt"
	"regexp"

	"github.com/aretw0/mentor/pkg/domain"
	"github.com/aretw0/mentor/pkg/ports"
)

// RedactedAnswer replaces the text of a redacted answer.
const RedactedAnswer = "***"

type redactionMiddleware struct {
	next     ports.SnapshotStore
	patterns []*regexp.Regexp
}

// NewRedactionMiddleware creates a middleware that masks the answers of
// cases whose ID matches one of the patterns before they are stored.
// The in-memory session keeps the real answers.
func NewRedactionMiddleware(patterns []string) (Middleware, error) {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid redaction pattern %q: %w", p, err)
		}
		compiled = append(compiled, re)
	}
	return func(next ports.SnapshotStore) ports.SnapshotStore {
		return &redactionMiddleware{next: next, patterns: compiled}
	}, nil
}

func (m *redactionMiddleware) Save(ctx context.Context, sessionID string, snap *domain.Snapshot) error {
	masked := snap.Clone()
	masked.Solution = domain.NewSolution()
	for _, a := range snap.Solution.Answers() {
		text := a.Text
		if m.matches(a.CaseID) {
			text = RedactedAnswer
		}
		masked.Solution.Set(a.CaseID, text)
	}
	return m.next.Save(ctx, sessionID, masked)
}

func (m *redactionMiddleware) matches(caseID string) bool {
	for _, p := range m.patterns {
		if p.MatchString(caseID) {
			return true
		}
	}
	return false
}

func (m *redactionMiddleware) Load(ctx context.Context, sessionID string) (*domain.Snapshot, error) {
	return m.next.Load(ctx, sessionID)
}

func (m *redactionMiddleware) Delete(ctx context.Context, sessionID string) error {
	return m.next.Delete(ctx, sessionID)
}

func (m *redactionMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}
