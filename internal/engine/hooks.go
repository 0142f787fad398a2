package engine

import (
	"context"
	"time"
)

type Hook interface {
	OnStepStart(ctx context.Context, st *State)
	OnBeforeLLM(ctx context.Context, st *State, messages []ChatMessage, toolSchemas []ToolSchema)
	OnAfterLLM(ctx context.Context, st *State, resp LLMResponse)
	OnThought(ctx context.Context, st *State, thought string)
	OnToolCall(ctx context.Context, st *State, call ToolCall)
	OnToolResult(ctx context.Context, st *State, call ToolCall, result ToolResult)
	OnApprovalRequest(ctx context.Context, st *State, toolName string, approved bool)
	OnFinalAnswer(ctx context.Context, st *State, answer string)
	OnDone(ctx context.Context, st *State)
	// Retry hooks
	OnRetryAttempt(ctx context.Context, st *State, attempt int, maxAttempts int, delay time.Duration, err error)
	OnRetryExhausted(ctx context.Context, st *State, err error)
	// Context accumulator hooks
	OnBudgetRejected(ctx context.Context, st *State, tokens int, maxTokens int)
	OnCompression(ctx context.Context, st *State, beforeTokens, afterTokens int)
}

// NopHook lets you implement only the hooks you need.
type NopHook struct{}

func (NopHook) OnStepStart(context.Context, *State)                                    {}
func (NopHook) OnBeforeLLM(context.Context, *State, []ChatMessage, []ToolSchema)       {}
func (NopHook) OnAfterLLM(context.Context, *State, LLMResponse)                        {}
func (NopHook) OnThought(context.Context, *State, string)                              {}
func (NopHook) OnToolCall(context.Context, *State, ToolCall)                           {}
func (NopHook) OnToolResult(context.Context, *State, ToolCall, ToolResult)             {}
func (NopHook) OnApprovalRequest(context.Context, *State, string, bool)                {}
func (NopHook) OnFinalAnswer(context.Context, *State, string)                          {}
func (NopHook) OnDone(context.Context, *State)                                         {}
func (NopHook) OnRetryAttempt(context.Context, *State, int, int, time.Duration, error) {}
func (NopHook) OnRetryExhausted(context.Context, *State, error)                        {}
func (NopHook) OnBudgetRejected(context.Context, *State, int, int)                     {}
func (NopHook) OnCompression(context.Context, *State, int, int)                        {}
