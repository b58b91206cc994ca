package runner

import (
	"fmt"
	"strings"

	"github.com/aretw0/mentor/pkg/domain"
)

// FormatEffect renders an effect as Markdown. Effects without a visual
// form return "".
func FormatEffect(e domain.Effect) string {
	switch e.Type {
	case domain.EffectRender:
		return formatNode(e)
	case domain.EffectCompletionChanged:
		if e.Completed {
			return "_All cases are answered._"
		}
		return "_Some cases still need an answer._"
	case domain.EffectSolutionSaved:
		return "_Solution saved._"
	case domain.EffectSolutionMerged:
		return fmt.Sprintf("_Recovered %d answers._", e.Solution.Len())
	case domain.EffectSessionFinished:
		return "**Section finished.** Well done!"
	case domain.EffectIllegalTransition:
		return fmt.Sprintf("_Not now: %v_", e.Err)
	}
	return ""
}

func formatNode(e domain.Effect) string {
	if e.Node == nil {
		return ""
	}
	var sb strings.Builder
	switch e.Node.Kind {
	case domain.KindInstruction:
		sb.WriteString("# Instruction\n\n")
		sb.WriteString(e.Node.Question)
		sb.WriteString("\n\n_Press Enter or type :next to start._")

	case domain.KindCase:
		fmt.Fprintf(&sb, "## Case %s\n\n%s\n", e.Node.Key, e.Node.Question)
		switch e.State {
		case domain.StateUnvisited:
			sb.WriteString("\n_Not reached yet. Answer the cases before it and use :next to open it._")
		case domain.StateQuestionShown:
			if e.Answer != "" {
				fmt.Fprintf(&sb, "\nPrevious answer: %s\n", e.Answer)
			}
			sb.WriteString("\n_Type your answer._")
		case domain.StateAnswered:
			fmt.Fprintf(&sb, "\n**Your answer:** %s\n\n_Type :mentor to compare, or :next._", e.Answer)
		case domain.StateMentorAnswerShown:
			fmt.Fprintf(&sb, "\n**Your answer:** %s\n\n**Mentor answer:** %s\n\n_Type :next, or :back to edit._", e.Answer, e.Node.MentorAnswer)
		}

	case domain.KindTotal:
		sb.WriteString("# Total\n\n")
		if e.Summary != nil {
			fmt.Fprintf(&sb, "Answered %d of %d cases.\n\n", e.Summary.Answered, e.Summary.Total)
			sb.WriteString("| Case | State | Answer |\n|---|---|---|\n")
			for _, item := range e.Summary.Items {
				fmt.Fprintf(&sb, "| %s | %s | %s |\n", item.CaseID, item.State, escapeCell(item.Answer))
			}
		}
	}
	return sb.String()
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	return strings.ReplaceAll(s, "\n", " ")
}
