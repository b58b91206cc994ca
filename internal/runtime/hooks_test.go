package runtime_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/mentor/internal/runtime"
	"github.com/aretw0/mentor/pkg/domain"
)

func TestEngine_LifecycleHooks(t *testing.T) {
	ctx := context.Background()

	var trace []string
	var answers []*domain.AnswerEvent
	var completions []*domain.CompletionEvent
	var rejected []*domain.RejectedEvent

	hooks := domain.LifecycleHooks{
		OnNodeEnter: func(_ context.Context, ev *domain.NodeEvent) {
			trace = append(trace, "enter:"+ev.NodeKey)
		},
		OnNodeLeave: func(_ context.Context, ev *domain.NodeEvent) {
			trace = append(trace, "leave:"+ev.NodeKey)
		},
		OnAnswer: func(_ context.Context, ev *domain.AnswerEvent) {
			answers = append(answers, ev)
		},
		OnCompletion: func(_ context.Context, ev *domain.CompletionEvent) {
			completions = append(completions, ev)
		},
		OnTransitionRejected: func(_ context.Context, ev *domain.RejectedEvent) {
			rejected = append(rejected, ev)
		},
	}

	section := domain.Section{
		ID:    "hooks",
		Cases: []domain.Case{{ID: "only", Question: "Q", MentorAnswer: "M"}},
	}
	e := newEngine(t, section, runtime.WithLifecycleHooks(hooks))

	_, err := e.Start(ctx)
	require.NoError(t, err)
	_, err = e.Advance(ctx)
	require.Error(t, err)
	_, err = e.SubmitAnswer(ctx, "one")
	require.NoError(t, err)
	_, err = e.ShowMentorAnswer(ctx)
	require.NoError(t, err)
	_, err = e.BackToQuestion(ctx)
	require.NoError(t, err)
	_, err = e.SubmitAnswer(ctx, "two")
	require.NoError(t, err)

	assert.Equal(t, []string{"leave:instruction", "enter:only"}, trace)

	require.Len(t, answers, 2)
	assert.False(t, answers[0].Overwrite)
	assert.True(t, answers[1].Overwrite)
	assert.Equal(t, "hooks", answers[1].SectionID)

	require.Len(t, completions, 3)
	assert.True(t, completions[0].Completed)
	assert.False(t, completions[1].Completed)
	assert.True(t, completions[2].Completed)
	assert.Equal(t, 1, completions[2].Total)

	require.Len(t, rejected, 1)
	assert.Equal(t, domain.EventAdvance, rejected[0].Event)
	assert.Equal(t, "only", rejected[0].NodeKey)
}
