package validator

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/mentor/pkg/adapters/file"
	"github.com/aretw0/mentor/pkg/domain"
)

func TestCheck_Valid(t *testing.T) {
	r := Check(domain.Section{
		ID: "s",
		Cases: []domain.Case{
			{ID: "a", Question: "Q1", MentorAnswer: "M1", Next: "b"},
			{ID: "b", Question: "Q2", MentorAnswer: "M2"},
		},
	})
	assert.True(t, r.OK())
	assert.NoError(t, r.Err())
	assert.Empty(t, r.Warnings)
	require.NotNil(t, r.Graph)
	assert.Len(t, r.Graph.ReachableCases(), 2)
}

func TestCheck_Problems(t *testing.T) {
	r := Check(domain.Section{
		ID: "s",
		Cases: []domain.Case{
			{ID: "a", Question: "Q1", MentorAnswer: "M1"},
			{ID: "orphan", Question: "", MentorAnswer: ""},
		},
	})
	assert.False(t, r.OK())
	assert.ErrorIs(t, r.Err(), domain.ErrInvalidFlow)
	assert.Contains(t, r.Errors, "case 'orphan' has no question")
	assert.Contains(t, r.Warnings, "case 'orphan' has no mentor answer")
	assert.Contains(t, r.Warnings, "case 'orphan' is not on the path to total")
}

func TestCheck_BrokenLink(t *testing.T) {
	r := Check(domain.Section{
		ID:    "s",
		Cases: []domain.Case{{ID: "a", Question: "Q", MentorAnswer: "M", Next: "ghost"}},
	})
	require.Len(t, r.Errors, 1)
	assert.Contains(t, r.Errors[0], "ghost")
	assert.Nil(t, r.Graph)
}

func TestValidateSection_Assets(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ecg.png"), []byte("png"), 0644))
	path := filepath.Join(dir, "triage.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
name: Triage
cases:
  - id: a
    question: Q
    mentor_answer: M
    assets: [ecg.png, xray.png]
`), 0644))

	r, err := ValidateSection(context.Background(), file.NewLoader(), path)
	require.NoError(t, err)
	assert.Equal(t, []string{"case 'a': missing asset 'xray.png'"}, r.Errors)
}

func TestValidateSection_LoadErrors(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	_, err := ValidateSection(ctx, file.NewLoader(), filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(dir, "dup.yaml")
	require.NoError(t, os.WriteFile(path, []byte("cases:\n  - id: ''\n    question: Q\n"), 0644))
	r, err := ValidateSection(ctx, file.NewLoader(), path)
	require.NoError(t, err)
	assert.False(t, r.OK())
}
