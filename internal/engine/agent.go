package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/blkcor/cogent/internal/prompts"
)

// Recaller is the optional long-term memory seam. When set on the agent,
// prior knowledge relevant to the task is recalled into the run's context and
// the final answer is remembered afterwards.
type Recaller interface {
	Recall(ctx context.Context, query string, limit int) ([]string, error)
	Remember(ctx context.Context, content string, tags []string) error
}

// RunMetadata is the accounting attached to every run outcome.
type RunMetadata struct {
	RunID         string        `json:"run_id"`
	Mode          ReasoningMode `json:"mode"`
	TurnCount     int           `json:"turn_count"`
	ToolCallCount int           `json:"tool_call_count"`
	DurationMs    int64         `json:"duration_ms"`
}

// RunResult is the uniform outcome of Execute. Failures are reported here
// with Success false rather than through a separate error path, so callers
// always get metadata.
type RunResult struct {
	Success  bool        `json:"success"`
	Result   string      `json:"result"`
	Metadata RunMetadata `json:"metadata"`
	// Trace is the run's reasoning trail, copied so callers cannot mutate
	// the loop's own record.
	Trace []ReasoningStep `json:"trace,omitempty"`
}

// Agent is the facade over the reasoning loop: it selects a mode, seeds the
// run state, drives Run and normalizes the outcome.
type Agent struct {
	llm      LLMClient
	tools    ToolRegistry
	gate     *Gate
	config   AgentConfig
	hooks    Hooks
	recaller Recaller

	lastState *State
}

// Execute runs one task end to end and returns a uniform result. Errors from
// the loop (retry exhaustion, terminal provider failures, cancellation) are
// folded into the result with Success false.
func (a *Agent) Execute(ctx context.Context, task string) RunResult {
	start := time.Now()
	runID := uuid.NewString()

	mode := SelectMode(task, a.config.ModeOverride)
	st := a.newState(ctx, task, mode)
	a.lastState = st

	if a.config.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.config.RunTimeout)
		defer cancel()
	}

	opts := ChatOptions{
		Temperature:     a.config.Temperature,
		MaxOutputTokens: a.config.MaxOutputTokens,
		RetryPolicy:     a.config.RetryPolicy,
	}

	answer, err := Run(ctx, a.llm, a.tools, a.gate, st, a.hooks, opts)

	meta := RunMetadata{
		RunID:         runID,
		Mode:          mode,
		TurnCount:     st.Step,
		ToolCallCount: st.ToolCallCount,
		DurationMs:    time.Since(start).Milliseconds(),
	}

	trace := append([]ReasoningStep(nil), st.Trace...)

	if err != nil {
		return RunResult{Success: false, Result: err.Error(), Metadata: meta, Trace: trace}
	}

	if a.recaller != nil && st.Done {
		// Remembering is best effort; a storage failure never fails the run.
		_ = a.recaller.Remember(ctx, fmt.Sprintf("task: %s\nanswer: %s", task, answer), []string{string(mode)})
	}

	return RunResult{Success: st.Done, Result: answer, Metadata: meta, Trace: trace}
}

// newState builds the run state: mode prompt, recalled knowledge, the task
// itself, and a fresh context accumulator seeded with the task at critical
// priority.
func (a *Agent) newState(ctx context.Context, task string, mode ReasoningMode) *State {
	prompt := a.systemPrompt(mode)

	history := []ChatMessage{{Role: RoleSystem, Content: prompt}}

	if a.recaller != nil {
		if recalled, err := a.recaller.Recall(ctx, task, 3); err == nil && len(recalled) > 0 {
			content := "Relevant knowledge from previous sessions:"
			for _, r := range recalled {
				content += "\n- " + r
			}
			history = append(history, ChatMessage{Role: RoleSystem, Content: content})
		}
	}

	history = append(history, ChatMessage{Role: RoleUser, Content: task})

	mem := NewContextMemory(a.config.ContextBudget)
	mem.AddItem(task, PriorityCritical)

	return &State{
		History:  history,
		Model:    a.config.Model,
		MaxSteps: a.config.MaxSteps,
		Mode:     mode,
		Memory:   mem,
	}
}

// systemPrompt resolves the mode's prompt from the registry. A missing
// registration falls back to the reactive prompt, which is always present.
func (a *Agent) systemPrompt(mode ReasoningMode) string {
	registry := prompts.DefaultRegistry()

	var p *prompts.Prompt
	var err error
	if a.config.PromptVersion != "" {
		p, err = registry.Get(string(mode), prompts.PromptVersion(a.config.PromptVersion))
	} else {
		p, err = registry.GetLatest(string(mode))
	}
	if err != nil {
		p, err = registry.GetLatest(string(ModeReactive))
		if err != nil {
			return ""
		}
	}
	return p.Content
}

// LastState returns the state of the most recent run. Callers should treat
// it as read-only; it is useful for inspecting the trace after Execute.
func (a *Agent) LastState() *State { return a.lastState }

// Gate exposes the approval gate, e.g. for runtime policy changes.
func (a *Agent) Gate() *Gate { return a.gate }

// SetLLM replaces the model client and model name at runtime.
func (a *Agent) SetLLM(client LLMClient, modelName string) {
	a.llm = client
	a.config.Model = modelName
}
