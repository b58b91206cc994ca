package graph_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/mentor/pkg/domain"
	"github.com/aretw0/mentor/pkg/graph"
)

func linearSection() domain.Section {
	return domain.Section{
		ID:   "sec-1",
		Name: "Linear",
		Cases: []domain.Case{
			{ID: "A", Question: "qa", MentorAnswer: "ma", Next: "B"},
			{ID: "B", Question: "qb", MentorAnswer: "mb", Next: "C"},
			{ID: "C", Question: "qc", MentorAnswer: "mc", Next: domain.TotalRef},
		},
	}
}

func TestBuild_Linear(t *testing.T) {
	g, err := graph.Build(linearSection())
	require.NoError(t, err)

	assert.Equal(t, 5, g.Len())
	assert.Equal(t, domain.KindInstruction, g.Instruction().Kind)
	assert.Equal(t, domain.KindTotal, g.Total().Kind)

	var keys []string
	for _, n := range g.Path() {
		keys = append(keys, n.Key)
	}
	assert.Equal(t, []string{"instruction", "A", "B", "C", "total"}, keys)
	assert.Len(t, g.ReachableCases(), 3)
	assert.Empty(t, g.Unreachable())
	assert.Equal(t, domain.PolicyMentorRequired, g.Policy())
}

func TestBuild_BranchOrderIndependentOfStorage(t *testing.T) {
	section := domain.Section{
		ID:    "sec-2",
		Start: "C",
		Cases: []domain.Case{
			{ID: "A", Next: ""},
			{ID: "B", Next: "A"},
			{ID: "C", Next: "A"},
		},
	}
	g, err := graph.Build(section)
	require.NoError(t, err)

	var path []string
	for _, n := range g.ReachableCases() {
		path = append(path, n.Key)
	}
	assert.Equal(t, []string{"C", "A"}, path)

	var listed []string
	for _, n := range g.Cases() {
		listed = append(listed, n.Key)
	}
	assert.Equal(t, []string{"A", "B", "C"}, listed, "listing keeps construction order")

	unreachable := g.Unreachable()
	require.Len(t, unreachable, 1)
	assert.Equal(t, "B", unreachable[0].Key)
	assert.False(t, g.Reachable(unreachable[0].ID))
}

func TestBuild_DefaultStartIsFirstCase(t *testing.T) {
	g, err := graph.Build(linearSection())
	require.NoError(t, err)

	first, ok := g.Node(g.Instruction().Next)
	require.True(t, ok)
	assert.Equal(t, "A", first.Key)
}

func TestBuild_EmptySection(t *testing.T) {
	g, err := graph.Build(domain.Section{ID: "empty"})
	require.NoError(t, err)
	assert.Equal(t, g.Total().ID, g.Instruction().Next)
	assert.Empty(t, g.ReachableCases())
}

func TestBuild_CyclicFlow(t *testing.T) {
	section := linearSection()
	section.Cases[2].Next = "A"

	g, err := graph.Build(section)
	assert.Nil(t, g)
	require.Error(t, err)

	var cyclic *domain.CyclicFlowError
	require.ErrorAs(t, err, &cyclic)
	assert.Equal(t, "A", cyclic.NodeKey)
	assert.ErrorIs(t, err, domain.ErrInvalidFlow)
}

func TestBuild_SelfLoop(t *testing.T) {
	section := domain.Section{ID: "s", Cases: []domain.Case{{ID: "A", Next: "A"}}}
	_, err := graph.Build(section)

	var cyclic *domain.CyclicFlowError
	assert.ErrorAs(t, err, &cyclic)
}

func TestBuild_DanglingReference(t *testing.T) {
	tests := []struct {
		name    string
		section domain.Section
		from    string
		ref     string
	}{
		{
			name:    "Case Next",
			section: domain.Section{ID: "s", Cases: []domain.Case{{ID: "A", Next: "missing"}}},
			from:    "A",
			ref:     "missing",
		},
		{
			name:    "Start",
			section: domain.Section{ID: "s", Start: "nope", Cases: []domain.Case{{ID: "A"}}},
			from:    domain.InstructionRef,
			ref:     "nope",
		},
		{
			name:    "Back To Instruction",
			section: domain.Section{ID: "s", Cases: []domain.Case{{ID: "A", Next: domain.InstructionRef}}},
			from:    "A",
			ref:     domain.InstructionRef,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := graph.Build(tt.section)
			var dangling *domain.DanglingReferenceError
			require.ErrorAs(t, err, &dangling)
			assert.Equal(t, tt.from, dangling.From)
			assert.Equal(t, tt.ref, dangling.Ref)
			assert.ErrorIs(t, err, domain.ErrInvalidFlow)
		})
	}
}

func TestBuild_DuplicateAndEmptyIDs(t *testing.T) {
	_, err := graph.Build(domain.Section{Cases: []domain.Case{{ID: "A"}, {ID: "A"}}})
	var dup *domain.DuplicateCaseError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "A", dup.CaseID)

	_, err = graph.Build(domain.Section{Cases: []domain.Case{{ID: ""}}})
	assert.ErrorIs(t, err, domain.ErrEmptyCaseID)
	assert.ErrorIs(t, err, domain.ErrInvalidFlow)

	_, err = graph.Build(domain.Section{Cases: []domain.Case{{ID: domain.TotalRef}}})
	assert.ErrorAs(t, err, &dup)
}

func TestGraph_Lookup(t *testing.T) {
	g, err := graph.Build(linearSection())
	require.NoError(t, err)

	n, ok := g.Lookup("B")
	require.True(t, ok)
	assert.Equal(t, "qb", n.Question)
	assert.Equal(t, "mb", n.MentorAnswer)

	next, ok := g.Node(n.Next)
	require.True(t, ok)
	assert.Equal(t, "C", next.Key)

	_, ok = g.Lookup("Z")
	assert.False(t, ok)
	_, ok = g.Node(99)
	assert.False(t, ok)
}
