package planner

import (
	"fmt"
	"strings"
)

// System prompts sent by the pipeline. The critic instruction pins the
// verdict format parseVerdictScore expects, so change them together.
const (
	planSystemPrompt = "You are a senior software engineer. Produce a concrete, ordered " +
		"implementation plan for the brief you are given. Number every step and keep the " +
		"plan self-contained."

	criticSystemPrompt = "You are reviewing an implementation plan against its brief. " +
		"Judge completeness, ordering, and risk. End your review with a line 'SCORE: <0-10>'."

	refinerSystemPrompt = "You are finalizing an implementation plan. Rewrite the winning " +
		"plan so it addresses the reviewer feedback. Respond with the final plan only."
)

func planUserPrompt(b Brief) string {
	var sb strings.Builder
	sb.WriteString(b.Body)
	if len(b.Sections) > 0 {
		fmt.Fprintf(&sb, "\n\nGive extra attention to: %s.", strings.Join(b.Sections, ", "))
	}
	return sb.String()
}

func critiqueUserPrompt(b Brief, plan string) string {
	return fmt.Sprintf("Brief:\n%s\n\nProposed plan:\n%s", b.Body, plan)
}

func refineUserPrompt(b Brief, winner Draft) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Brief:\n%s\n\nWinning plan (consensus %.1f):\n%s", b.Body, winner.Consensus, winner.Content)
	if len(winner.Reviews) > 0 {
		sb.WriteString("\n\nReviewer feedback:")
		for _, r := range winner.Reviews {
			fmt.Fprintf(&sb, "\n- [%s] %s", r.Critic, r.Content)
		}
	}
	return sb.String()
}
