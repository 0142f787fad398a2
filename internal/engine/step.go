package engine

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
)

// FinalAnswerMarker is the completion signal the model emits when the task is
// done. Everything after the marker is the answer.
const FinalAnswerMarker = "FINAL ANSWER:"

// continuationPrompt nudges the model forward when it replies with plain text
// that neither finishes the task nor requests a tool.
const continuationPrompt = "Continue working on the task. When you are finished, reply with a line starting with \"FINAL ANSWER:\" followed by your answer."

// getRetryPolicy returns the retry policy, using defaults if not provided.
func getRetryPolicy(opts ChatOptions) RetryPolicy {
	if opts.RetryPolicy != nil {
		return *opts.RetryPolicy
	}
	return DefaultRetryPolicy()
}

// ExtractFinalAnswer looks for the completion marker in assistant text. It
// returns the trimmed answer after the first occurrence. The marker wins over
// any tool calls in the same response.
func ExtractFinalAnswer(content string) (string, bool) {
	idx := strings.Index(content, FinalAnswerMarker)
	if idx < 0 {
		return "", false
	}
	return strings.TrimSpace(content[idx+len(FinalAnswerMarker):]), true
}

// recordObservation pushes a tool observation into the context accumulator.
// A rejected add triggers one compression pass and one retry; after that the
// observation is dropped from the accumulator (it stays in the transcript).
func recordObservation(ctx context.Context, st *State, hooks Hooks, content string) {
	if st.Memory == nil {
		return
	}
	if st.Memory.AddItem(content, PriorityLow) {
		return
	}
	hooks.OnBudgetRejected(ctx, st, EstimateTokens(content), st.Memory.MaxTokens())

	before := st.Memory.TotalTokens()
	st.Memory.Compress()
	hooks.OnCompression(ctx, st, before, st.Memory.TotalTokens())

	st.Memory.AddItem(content, PriorityLow)
}

// executeToolCall runs one gated tool invocation. Approval denials and every
// dispatch failure come back as an error ToolResult, never as a Go error, so
// the loop always has an observation to feed back to the model.
func executeToolCall(ctx context.Context, call ToolCall, reg ToolRegistry, gate *Gate, st *State, hooks Hooks) ToolResult {
	hooks.OnToolCall(ctx, st, call)

	args := map[string]any{}
	if strings.TrimSpace(call.Args) != "" {
		// A parse failure here still goes through Invoke, which reports it
		// uniformly; the approval decision just sees an empty bag.
		_ = json.Unmarshal([]byte(call.Args), &args)
	}

	if gate != nil {
		if t, ok := reg.Get(call.Name); ok && gate.NeedsApproval(ctx, t, args) {
			approved, err := gate.RequestApproval(ctx, t, args)
			hooks.OnApprovalRequest(ctx, st, call.Name, approved && err == nil)
			if err != nil {
				return ToolResult{
					CallID:  call.ID,
					Content: "approval request failed for tool " + call.Name + ": " + err.Error(),
					IsError: true,
				}
			}
			if !approved {
				return ToolResult{
					CallID:  call.ID,
					Content: "approval denied for tool " + call.Name,
					IsError: true,
				}
			}
		}
	}

	return reg.Invoke(ctx, call.Name, call.Args, call.ID)
}

// stepOnce performs one reason/act cycle: a single model call and, unless the
// completion marker appeared, the execution of every requested tool in order.
func stepOnce(ctx context.Context, llm LLMClient, reg ToolRegistry, gate *Gate, st *State, hooks Hooks, opts ChatOptions) error {
	hooks.OnStepStart(ctx, st)

	msgs := append([]ChatMessage(nil), st.History...)
	toolSchemas := reg.Schemas()
	policy := getRetryPolicy(opts)

	hooks.OnBeforeLLM(ctx, st, msgs, toolSchemas)

	resp, err := RetryModelCall(
		ctx, policy, llm, st.Model, msgs, toolSchemas, opts,
		func(attempt int, delay time.Duration, retryErr error) {
			hooks.OnRetryAttempt(ctx, st, attempt, policy.MaxRetries, delay, retryErr)
		},
	)
	if err != nil {
		if IsRetryExhausted(err) {
			hooks.OnRetryExhausted(ctx, st, err)
		}
		return err
	}

	hooks.OnAfterLLM(ctx, st, resp)
	st.Totals.Prompt += resp.Usage.Prompt
	st.Totals.Completion += resp.Usage.Completion
	st.Totals.Total += resp.Usage.Total

	content := resp.Assistant.Content
	if strings.TrimSpace(content) == "" && len(resp.ToolCalls) == 0 {
		return ErrEmptyResponse
	}

	// The completion marker overrides everything else in the response,
	// including tool calls, which are intentionally not executed.
	if answer, ok := ExtractFinalAnswer(content); ok {
		st.Append(ChatMessage{Role: RoleAssistant, Content: content})
		st.Record(ReasoningStep{Thought: content, Observation: answer})
		st.Done = true
		st.Final = answer
		hooks.OnFinalAnswer(ctx, st, answer)
		return nil
	}

	if content != "" {
		hooks.OnThought(ctx, st, content)
	}

	assistantMsg := resp.Assistant
	assistantMsg.Role = RoleAssistant
	assistantMsg.ToolCalls = resp.ToolCalls
	st.Append(assistantMsg)

	if len(resp.ToolCalls) == 0 {
		// Plain text without the marker. Record the thought and nudge.
		st.Record(ReasoningStep{Thought: content})
		st.Append(ChatMessage{Role: RoleUser, Content: continuationPrompt})
		return nil
	}

	// Tools run sequentially in response order. Each result goes back into
	// the transcript keyed by its call ID so providers can reconstruct the
	// pairing on the next turn.
	for i := range resp.ToolCalls {
		call := resp.ToolCalls[i]
		if call.ID == "" {
			call.ID = uuid.NewString()
		}

		res := executeToolCall(ctx, call, reg, gate, st, hooks)
		hooks.OnToolResult(ctx, st, call, res)

		st.ToolCallCount++
		st.Append(ChatMessage{Role: RoleTool, Name: call.ID, Content: res.Content})
		st.Record(ReasoningStep{
			Thought:     content,
			Action:      &StepAction{Tool: call.Name, Args: call.Args, CallID: call.ID},
			Observation: res.Content,
		})
		recordObservation(ctx, st, hooks, res.Content)

		content = "" // attribute the thought to the first action only
	}

	// Tool results alone do not tell the model what to do next; nudge it to
	// keep going or emit the completion marker.
	st.Append(ChatMessage{Role: RoleUser, Content: continuationPrompt})

	return nil
}
