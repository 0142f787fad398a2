package engine

import "time"

// AgentConfig carries everything the facade needs to set up one run.
type AgentConfig struct {
	Model           string
	MaxSteps        int
	MaxOutputTokens int
	Temperature     float32

	// ContextBudget is the token ceiling for the run's context accumulator.
	ContextBudget int

	// ModeOverride pins the reasoning mode instead of inferring it from the
	// task text. Empty means infer.
	ModeOverride ReasoningMode

	// RunTimeout bounds the whole run. Zero means no timeout beyond the
	// caller's context.
	RunTimeout time.Duration

	ApprovalPolicy ApprovalPolicy
	RetryPolicy    *RetryPolicy

	PromptVersion string // empty = latest
}

// DefaultAgentConfig returns sane defaults for interactive use.
func DefaultAgentConfig() AgentConfig {
	return AgentConfig{
		Model:           "gpt-4o",
		MaxSteps:        25,
		MaxOutputTokens: 8192,
		ContextBudget:   32000,
		ApprovalPolicy:  PolicyStandard,
	}
}
