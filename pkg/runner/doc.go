/*
Package runner implements the interactive loop of a training session.

It reads lines from the learner, turns them into engine events and renders
the resulting effects through a pluggable IOHandler.

# Commands

	:mentor        show the mentor answer of the current case
	:back          return to the question to edit the answer
	:next          start the section or advance to the next case
	:goto N|KEY    jump to a node by list number or key
	:list          list every node with its progress
	:total         jump to the summary
	:export PATH   archive the solution in the background
	:import PATH   recover answers from an archive
	:status        show the last export or import
	:help          show this help
	:quit          close the session

Any other line is the answer of the current case. Start a line with "::"
to answer with a leading colon.

# Usage

	r := runner.NewRunner(sess,
		runner.WithInputHandler(runner.NewTextHandler(os.Stdin, os.Stdout)),
	)
	if err := r.Run(ctx); err != nil {
		log.Fatal(err)
	}
*/
package runner
