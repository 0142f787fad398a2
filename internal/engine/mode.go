package engine

import "strings"

// modeRule pairs a reasoning mode with the task vocabulary that triggers it.
// Rules are evaluated in order and the first match wins, so restructuring
// vocabulary beats review vocabulary beats lookup vocabulary.
type modeRule struct {
	mode     ReasoningMode
	triggers []string
}

var modeRules = []modeRule{
	{ModePlanThenSolve, []string{
		"refactor", "restructure", "reorganize", "multiple files", "entire codebase",
	}},
	{ModeCritiqueRevise, []string{
		"review", "improve", "optimize", "enhance", "better",
	}},
	{ModeReactive, []string{
		"read", "show", "display", "what is", "explain", "find",
	}},
}

// SelectMode classifies a task description into a reasoning strategy. An
// explicit override always wins, with no validation against task content.
// Matching is case-insensitive substring containment; tasks matching no
// category default to reactive tool use. Pure and deterministic.
func SelectMode(taskText string, override ReasoningMode) ReasoningMode {
	if override != "" {
		return override
	}

	lower := strings.ToLower(taskText)
	for _, rule := range modeRules {
		for _, trigger := range rule.triggers {
			if strings.Contains(lower, trigger) {
				return rule.mode
			}
		}
	}
	return ModeReactive
}
