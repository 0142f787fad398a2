package engine

import (
	"context"
	"fmt"
)

// MaxStepsExceededAnswer is returned as the final answer when the loop runs
// out of steps without seeing the completion marker. It is not an error.
const MaxStepsExceededAnswer = "Task incomplete: reached maximum reasoning steps."

// Run drives reason/act cycles until the model signals completion, the step
// ceiling is reached, or an error escapes a step. Steps increment only on
// successful completion; retries within a step do not consume steps.
//
// The returned string is the final answer. On step exhaustion it is the
// incomplete-task sentinel with a nil error. Any step failure is wrapped in a
// StepError carrying the 1-indexed step number.
func Run(ctx context.Context, llm LLMClient, reg ToolRegistry, gate *Gate, st *State, hooks Hooks, opts ChatOptions) (string, error) {
	st.Step = 0

	for st.Step < st.MaxSteps && !st.Done {
		select {
		case <-ctx.Done():
			return "", &StepError{Step: st.Step + 1, Err: fmt.Errorf("execution cancelled: %w", ctx.Err())}
		default:
		}

		if err := stepOnce(ctx, llm, reg, gate, st, hooks, opts); err != nil {
			return "", &StepError{Step: st.Step + 1, Err: err}
		}
		st.Step++
	}

	if !st.Done {
		st.Final = MaxStepsExceededAnswer
	}
	hooks.OnDone(ctx, st)
	return st.Final, nil
}
