package mentor_test

import (
	"context"
	"fmt"
	"log"

	"github.com/aretw0/mentor"
	"github.com/aretw0/mentor/pkg/adapters/memory"
	"github.com/aretw0/mentor/pkg/domain"
)

// ExampleNew_memory trains an in-memory section from start to finish.
func ExampleNew_memory() {
	loader, err := memory.NewLoader(domain.Section{
		ID: "greetings",
		Cases: []domain.Case{
			{ID: "hello", Question: "How do you greet a colleague?", MentorAnswer: "Good morning!"},
		},
	})
	if err != nil {
		log.Fatal(err)
	}

	trainer, err := mentor.New(mentor.WithLoader(loader))
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	sess, err := trainer.Open(ctx, "greetings", "")
	if err != nil {
		log.Fatal(err)
	}

	for _, ev := range []domain.Event{
		domain.StartEvent(),
		domain.SubmitEvent("Hi there"),
		domain.ShowMentorEvent(),
		domain.AdvanceEvent(),
	} {
		effects, err := sess.Dispatch(ctx, ev)
		if err != nil {
			log.Fatal(err)
		}
		if render, ok := effects.Find(domain.EffectRender); ok {
			fmt.Println(render.Node.Key, render.State)
		}
	}
	fmt.Println("completed:", sess.Summary().Completed)

	// Output:
	// hello question_shown
	// hello answered
	// hello mentor_answer_shown
	// total unvisited
	// completed: true
}
