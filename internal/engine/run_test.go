package engine

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"
)

// scriptedLLM replays canned responses (or errors) in order. Once the script
// runs out it keeps returning the last entry.
type scriptedLLM struct {
	script []func() (LLMResponse, error)
	calls  int
}

func (s *scriptedLLM) Chat(ctx context.Context, model string, messages []ChatMessage, toolSchemas []ToolSchema, opts ChatOptions) (LLMResponse, error) {
	idx := s.calls
	if idx >= len(s.script) {
		idx = len(s.script) - 1
	}
	s.calls++
	return s.script[idx]()
}

func textResponse(content string) func() (LLMResponse, error) {
	return func() (LLMResponse, error) {
		return LLMResponse{
			Assistant:    ChatMessage{Role: RoleAssistant, Content: content},
			FinishReason: "stop",
		}, nil
	}
}

func toolResponse(thought string, calls ...ToolCall) func() (LLMResponse, error) {
	return func() (LLMResponse, error) {
		return LLMResponse{
			Assistant:    ChatMessage{Role: RoleAssistant, Content: thought},
			ToolCalls:    calls,
			FinishReason: "tool_calls",
		}, nil
	}
}

func errorResponse(err error) func() (LLMResponse, error) {
	return func() (LLMResponse, error) { return LLMResponse{}, err }
}

func newRunState(maxSteps int) *State {
	return &State{
		History:  []ChatMessage{{Role: RoleUser, Content: "count the files"}},
		MaxSteps: maxSteps,
		Model:    "test-model",
		Mode:     ModeReactive,
		Memory:   NewContextMemory(1000),
	}
}

func fastOpts() ChatOptions {
	p := quickRetryPolicy(2)
	return ChatOptions{RetryPolicy: &p}
}

func TestRunImmediateFinalAnswer(t *testing.T) {
	llm := &scriptedLLM{script: []func() (LLMResponse, error){
		textResponse("All done.\nFINAL ANSWER:   there are 3 files  "),
	}}
	st := newRunState(5)

	answer, err := Run(context.Background(), llm, newEchoRegistry(), quietGate(PolicyPermissive), st, Hooks{}, fastOpts())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if answer != "there are 3 files" {
		t.Errorf("answer = %q, want trimmed text after the marker", answer)
	}
	if !st.Done {
		t.Error("state should be marked done")
	}
	if st.Step != 1 {
		t.Errorf("Step = %d, want 1", st.Step)
	}
	if len(st.Trace) != 1 {
		t.Errorf("trace has %d entries, want 1", len(st.Trace))
	}
}

func TestRunToolCallThenAnswer(t *testing.T) {
	llm := &scriptedLLM{script: []func() (LLMResponse, error){
		toolResponse("Let me check.", ToolCall{ID: "call_1", Name: "echo", Args: `{"text":"three"}`}),
		textResponse("FINAL ANSWER: three files"),
	}}
	st := newRunState(5)

	answer, err := Run(context.Background(), llm, newEchoRegistry(), quietGate(PolicyPermissive), st, Hooks{}, fastOpts())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if answer != "three files" {
		t.Errorf("answer = %q", answer)
	}
	if st.ToolCallCount != 1 {
		t.Errorf("ToolCallCount = %d, want 1", st.ToolCallCount)
	}
	if st.Step != 2 {
		t.Errorf("Step = %d, want 2", st.Step)
	}

	// The tool result must be in the transcript, keyed by the call ID.
	var found bool
	for _, msg := range st.History {
		if msg.Role == RoleTool && msg.Name == "call_1" && msg.Content == "three" {
			found = true
		}
	}
	if !found {
		t.Error("tool result missing from transcript")
	}
}

func TestRunStepExhaustionIsNotAnError(t *testing.T) {
	llm := &scriptedLLM{script: []func() (LLMResponse, error){
		toolResponse("Still looking.", ToolCall{ID: "c", Name: "echo", Args: `{"text":"x"}`}),
	}}
	st := newRunState(3)

	answer, err := Run(context.Background(), llm, newEchoRegistry(), quietGate(PolicyPermissive), st, Hooks{}, fastOpts())
	if err != nil {
		t.Fatalf("exhaustion must not surface as an error, got %v", err)
	}
	if answer != MaxStepsExceededAnswer {
		t.Errorf("answer = %q, want the incomplete-task sentinel", answer)
	}
	if st.Done {
		t.Error("state must not be marked done")
	}
	if llm.calls != 3 {
		t.Errorf("model called %d times, want exactly MaxSteps", llm.calls)
	}
}

func TestRunMarkerBeatsToolCalls(t *testing.T) {
	executed := false
	reg := ToolRegistry{
		"echo": {
			Name:       "echo",
			SchemaJSON: `{"type": "object"}`,
			Category:   CategoryRead,
			Fn: func(ctx context.Context, args map[string]any, callID string) (ToolResult, error) {
				executed = true
				return ToolResult{Content: "x"}, nil
			},
		},
	}
	llm := &scriptedLLM{script: []func() (LLMResponse, error){
		func() (LLMResponse, error) {
			return LLMResponse{
				Assistant: ChatMessage{Role: RoleAssistant, Content: "FINAL ANSWER: done"},
				ToolCalls: []ToolCall{{ID: "c", Name: "echo", Args: `{}`}},
			}, nil
		},
	}}
	st := newRunState(5)

	answer, err := Run(context.Background(), llm, reg, quietGate(PolicyPermissive), st, Hooks{}, fastOpts())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if answer != "done" {
		t.Errorf("answer = %q", answer)
	}
	if executed {
		t.Error("tool calls alongside the marker must not execute")
	}
	if st.ToolCallCount != 0 {
		t.Errorf("ToolCallCount = %d, want 0", st.ToolCallCount)
	}
}

func TestRunContinuationNudge(t *testing.T) {
	llm := &scriptedLLM{script: []func() (LLMResponse, error){
		textResponse("I am thinking about the problem."),
		textResponse("FINAL ANSWER: 42"),
	}}
	st := newRunState(5)

	answer, err := Run(context.Background(), llm, newEchoRegistry(), quietGate(PolicyPermissive), st, Hooks{}, fastOpts())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if answer != "42" {
		t.Errorf("answer = %q", answer)
	}

	var nudged bool
	for _, msg := range st.History {
		if msg.Role == RoleUser && strings.Contains(msg.Content, FinalAnswerMarker) {
			nudged = true
		}
	}
	if !nudged {
		t.Error("plain text without marker or tools should append the continuation nudge")
	}
}

func TestRunNudgesAfterToolResults(t *testing.T) {
	llm := &scriptedLLM{script: []func() (LLMResponse, error){
		toolResponse("Checking.", ToolCall{ID: "c1", Name: "echo", Args: `{"text":"x"}`}),
		textResponse("FINAL ANSWER: ok"),
	}}
	st := newRunState(5)

	_, err := Run(context.Background(), llm, newEchoRegistry(), quietGate(PolicyPermissive), st, Hooks{}, fastOpts())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lastTool := -1
	for i, msg := range st.History {
		if msg.Role == RoleTool {
			lastTool = i
		}
	}
	if lastTool == -1 {
		t.Fatal("no tool message in transcript")
	}
	if lastTool+1 >= len(st.History) {
		t.Fatal("transcript ends at the tool result")
	}
	next := st.History[lastTool+1]
	if next.Role != RoleUser || !strings.Contains(next.Content, FinalAnswerMarker) {
		t.Errorf("message after tool results = {%s %q}, want the continuation nudge",
			next.Role, next.Content)
	}
}

func TestRunTransientErrorsRetriedWithinStep(t *testing.T) {
	transient := WrapProviderError(errors.New("rate limited"), http.StatusTooManyRequests, "")
	llm := &scriptedLLM{script: []func() (LLMResponse, error){
		errorResponse(transient),
		errorResponse(transient),
		textResponse("FINAL ANSWER: recovered"),
	}}
	st := newRunState(5)

	answer, err := Run(context.Background(), llm, newEchoRegistry(), quietGate(PolicyPermissive), st, Hooks{}, fastOpts())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if answer != "recovered" {
		t.Errorf("answer = %q", answer)
	}
	// Retries happen inside the step; only one step completes.
	if st.Step != 1 {
		t.Errorf("Step = %d, want 1", st.Step)
	}
}

func TestRunTerminalErrorWrapsStep(t *testing.T) {
	llm := &scriptedLLM{script: []func() (LLMResponse, error){
		textResponse("FINAL ANSWER: fine"),
		errorResponse(WrapProviderError(errors.New("invalid api key"), http.StatusUnauthorized, "")),
	}}
	// Force a second step by never finishing the first.
	llm.script[0] = toolResponse("Checking.", ToolCall{ID: "c", Name: "echo", Args: `{"text":"x"}`})
	st := newRunState(5)

	_, err := Run(context.Background(), llm, newEchoRegistry(), quietGate(PolicyPermissive), st, Hooks{}, fastOpts())
	var serr *StepError
	if !errors.As(err, &serr) {
		t.Fatalf("expected StepError, got %v", err)
	}
	if serr.Step != 2 {
		t.Errorf("StepError.Step = %d, want 2 (1-indexed)", serr.Step)
	}
}

func TestRunEmptyResponseFailsStep(t *testing.T) {
	llm := &scriptedLLM{script: []func() (LLMResponse, error){
		textResponse("   "),
	}}
	st := newRunState(5)

	_, err := Run(context.Background(), llm, newEchoRegistry(), quietGate(PolicyPermissive), st, Hooks{}, fastOpts())
	if !errors.Is(err, ErrEmptyResponse) {
		t.Fatalf("expected ErrEmptyResponse, got %v", err)
	}
	var serr *StepError
	if !errors.As(err, &serr) || serr.Step != 1 {
		t.Errorf("empty response should fail step 1, got %v", err)
	}
}

func TestRunCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	llm := &scriptedLLM{script: []func() (LLMResponse, error){
		textResponse("FINAL ANSWER: never reached"),
	}}
	st := newRunState(5)

	_, err := Run(ctx, llm, newEchoRegistry(), quietGate(PolicyPermissive), st, Hooks{}, fastOpts())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation, got %v", err)
	}
	if llm.calls != 0 {
		t.Error("cancelled run must not call the model")
	}
}

func TestRunDeniedToolBecomesErrorObservation(t *testing.T) {
	denyAll := func(ctx context.Context, toolName string, args map[string]any) (bool, error) {
		return false, nil
	}
	gate := quietGate(PolicyStrict).WithApprover(denyAll)

	llm := &scriptedLLM{script: []func() (LLMResponse, error){
		toolResponse("Writing.", ToolCall{ID: "c1", Name: "echo", Args: `{"text":"x"}`}),
		textResponse("FINAL ANSWER: gave up"),
	}}

	// Recategorize echo as a write so strict flags it.
	reg := newEchoRegistry()
	tool := reg["echo"]
	tool.Category = CategoryWrite
	reg["echo"] = tool

	st := newRunState(5)
	answer, err := Run(context.Background(), llm, reg, gate, st, Hooks{}, fastOpts())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if answer != "gave up" {
		t.Errorf("answer = %q", answer)
	}

	var denied bool
	for _, msg := range st.History {
		if msg.Role == RoleTool && strings.Contains(msg.Content, "approval denied") {
			denied = true
		}
	}
	if !denied {
		t.Error("denial should surface as an error observation in the transcript")
	}
}

func TestRunSynthesizesMissingCallIDs(t *testing.T) {
	llm := &scriptedLLM{script: []func() (LLMResponse, error){
		toolResponse("Checking.", ToolCall{Name: "echo", Args: `{"text":"x"}`}),
		textResponse("FINAL ANSWER: ok"),
	}}
	st := newRunState(5)

	_, err := Run(context.Background(), llm, newEchoRegistry(), quietGate(PolicyPermissive), st, Hooks{}, fastOpts())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, msg := range st.History {
		if msg.Role == RoleTool && msg.Name == "" {
			t.Error("tool message without a call ID in the transcript")
		}
	}
}

func TestExtractFinalAnswer(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
		wantOK  bool
	}{
		{"plain marker", "FINAL ANSWER: done", "done", true},
		{"marker mid-text", "thinking...\nFINAL ANSWER: 42\n", "42", true},
		{"no marker", "still working", "", false},
		{"empty answer", "FINAL ANSWER:", "", true},
		{"lowercase not matched", "final answer: nope", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractFinalAnswer(tt.content)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("ExtractFinalAnswer(%q) = (%q, %v), want (%q, %v)",
					tt.content, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestRunRetryHookObserved(t *testing.T) {
	transient := WrapProviderError(errors.New("bad gateway"), http.StatusBadGateway, "")
	llm := &scriptedLLM{script: []func() (LLMResponse, error){
		errorResponse(transient),
		textResponse("FINAL ANSWER: ok"),
	}}

	var attempts []int
	var delays []time.Duration
	hook := &retrySpyHook{onRetry: func(attempt int, delay time.Duration) {
		attempts = append(attempts, attempt)
		delays = append(delays, delay)
	}}

	st := newRunState(5)
	_, err := Run(context.Background(), llm, newEchoRegistry(), quietGate(PolicyPermissive), st, Hooks{hook}, fastOpts())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(attempts) != 1 || attempts[0] != 1 {
		t.Errorf("retry hook attempts = %v, want [1]", attempts)
	}
	if len(delays) != 1 || delays[0] <= 0 {
		t.Errorf("retry hook delays = %v, want one positive delay", delays)
	}
}

type retrySpyHook struct {
	NopHook
	onRetry func(attempt int, delay time.Duration)
}

func (h *retrySpyHook) OnRetryAttempt(ctx context.Context, st *State, attempt, maxAttempts int, delay time.Duration, err error) {
	h.onRetry(attempt, delay)
}
