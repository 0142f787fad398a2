package engine

import "time"

// ReasoningMode is the high-level strategy selected once per task. It is
// immutable for the duration of a run.
type ReasoningMode string

const (
	ModeReactive       ReasoningMode = "reactive"
	ModePlanThenSolve  ReasoningMode = "plan-then-solve"
	ModeCritiqueRevise ReasoningMode = "critique-and-revise"
)

// StepAction records one tool request made during a reasoning step.
type StepAction struct {
	Tool   string
	Args   string // serialized JSON arguments
	CallID string
}

// ReasoningStep is one record per loop iteration. At least one of Thought,
// Action or Observation is populated.
type ReasoningStep struct {
	Thought     string
	Action      *StepAction
	Observation string
	At          time.Time
}

// State holds everything one run owns: the conversation transcript, the
// append-only trace, step accounting and the context accumulator. A State is
// never shared across runs.
type State struct {
	History  []ChatMessage
	Trace    []ReasoningStep
	Step     int // current step, increments after each completed step
	MaxSteps int
	Model    string
	Mode     ReasoningMode
	Done     bool
	Final    string // final answer once Done

	ToolCallCount int
	Retries       int
	Totals        Usage

	Memory *ContextMemory // may be nil; observations are accumulated here
}

// Append adds a message to the conversation transcript.
func (s *State) Append(msg ChatMessage) { s.History = append(s.History, msg) }

// Record appends a step record to the trace, stamping it if unstamped.
func (s *State) Record(step ReasoningStep) {
	if step.At.IsZero() {
		step.At = time.Now()
	}
	s.Trace = append(s.Trace, step)
}
