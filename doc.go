/*
Package mentor drives guided training sessions over sections of question cases.

A section is an Instruction, an ordered chain of cases and a Total summary. Each
case shows a question, accepts the learner's answer and can reveal the mentor's
reference answer. The engine is a state machine: the presentation layer forwards
user intents as events and renders the effects the engine returns.

# Usage

	trainer, err := mentor.New(mentor.WithStore(file.NewStore(".mentor/sessions")))
	if err != nil {
		log.Fatal(err)
	}
	defer trainer.Close(ctx)

	sess, err := trainer.Open(ctx, "./sections/triage", "")
	if err != nil {
		log.Fatal(err)
	}

	effects, err := sess.Dispatch(ctx, domain.StartEvent())

Sections are read from a directory of Markdown documents (one per case, plus a
section.md header) or from a single YAML or JSON file. Solutions are exported
to and imported from zip archives by background tasks; see Session.ExportSolution
and Session.TryClose.
*/
package mentor
