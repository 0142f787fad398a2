package engine

import (
	"context"
	"log"
	"time"
)

type LoggerHook struct{ L *log.Logger }

func (h LoggerHook) OnStepStart(_ context.Context, st *State) {
	h.L.Printf("step=%d/%d mode=%s", st.Step+1, st.MaxSteps, st.Mode)
}
func (h LoggerHook) OnBeforeLLM(_ context.Context, st *State, msgs []ChatMessage, toolSchemas []ToolSchema) {
	tokenizer := GetTokenizerForModel(st.Model)
	messageTokens, _ := CountTokensForMessages(tokenizer, msgs, st.Model)

	toolSchemaTokens := 0
	for _, schema := range toolSchemas {
		nameTokens, _ := tokenizer.CountTokens(schema.Name, st.Model)
		descTokens, _ := tokenizer.CountTokens(schema.Description, st.Model)
		schemaTokens, _ := tokenizer.CountTokens(schema.JSONSchema, st.Model)
		toolSchemaTokens += nameTokens + descTokens + schemaTokens + 10 // +10 for overhead per tool
	}

	h.L.Printf("step=%d: %d msgs | tokens: messages=~%d, tools=~%d (cumulative=%d)",
		st.Step+1, len(msgs), messageTokens, toolSchemaTokens, st.Totals.Total)
}
func (h LoggerHook) OnAfterLLM(_ context.Context, st *State, r LLMResponse) {
	h.L.Printf("finish=%s tokens: prompt=%d completion=%d total=%d (cumulative=%d)",
		r.FinishReason, r.Usage.Prompt, r.Usage.Completion, r.Usage.Total, st.Totals.Total)
}
func (h LoggerHook) OnThought(_ context.Context, _ *State, thought string) {
	if len(thought) > 200 {
		thought = thought[:200] + "..."
	}
	h.L.Printf("thought: %s", thought)
}
func (h LoggerHook) OnToolCall(_ context.Context, _ *State, c ToolCall) {
	h.L.Printf("tool → %s args=%s", c.Name, c.Args)
}
func (h LoggerHook) OnToolResult(_ context.Context, _ *State, c ToolCall, r ToolResult) {
	preview := r.Content
	if len(preview) > 100 {
		preview = preview[:100] + "..."
	}
	if r.IsError {
		h.L.Printf("tool %s error: %s", c.Name, preview)
	} else {
		h.L.Printf("tool %s result: %s", c.Name, preview)
	}
}
func (h LoggerHook) OnApprovalRequest(_ context.Context, _ *State, toolName string, approved bool) {
	h.L.Printf("approval tool=%s approved=%v", toolName, approved)
}
func (h LoggerHook) OnFinalAnswer(_ context.Context, st *State, answer string) {
	if len(answer) > 200 {
		answer = answer[:200] + "..."
	}
	h.L.Printf("final answer (step=%d): %s", st.Step+1, answer)
}
func (h LoggerHook) OnDone(_ context.Context, st *State) {
	h.L.Printf("done: steps=%d tool_calls=%d tokens=%d", st.Step, st.ToolCallCount, st.Totals.Total)
}
func (h LoggerHook) OnRetryAttempt(_ context.Context, st *State, attempt int, maxAttempts int, delay time.Duration, err error) {
	st.Retries++
	h.L.Printf("retry attempt=%d/%d delay=%v error=%v", attempt, maxAttempts, delay, err)
}
func (h LoggerHook) OnRetryExhausted(_ context.Context, _ *State, err error) {
	h.L.Printf("retries exhausted: %v", err)
}
func (h LoggerHook) OnBudgetRejected(_ context.Context, _ *State, tokens int, maxTokens int) {
	h.L.Printf("context budget rejected item: tokens=%d max=%d", tokens, maxTokens)
}
func (h LoggerHook) OnCompression(_ context.Context, _ *State, before, after int) {
	if before == 0 {
		return
	}
	h.L.Printf("context compressed: before=%d after=%d reduction=%.1f%%",
		before, after, float64(before-after)/float64(before)*100)
}

// For metrics, expose counters/gauges and plug into Prometheus later.
