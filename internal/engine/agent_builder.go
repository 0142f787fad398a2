package engine

import (
	"fmt"
	"log"
	"time"
)

// AgentBuilder constructs an Agent with a fluent API.
type AgentBuilder struct {
	config   AgentConfig
	llm      LLMClient
	tools    ToolRegistry
	gate     *Gate
	hooks    Hooks
	recaller Recaller
}

// NewAgentBuilder creates a builder with default configuration.
func NewAgentBuilder() *AgentBuilder {
	return &AgentBuilder{config: DefaultAgentConfig()}
}

// WithModel sets the model name.
func (b *AgentBuilder) WithModel(model string) *AgentBuilder {
	b.config.Model = model
	return b
}

// WithLLM sets the model client.
func (b *AgentBuilder) WithLLM(llm LLMClient) *AgentBuilder {
	b.llm = llm
	return b
}

// WithMaxSteps sets the reasoning step ceiling.
func (b *AgentBuilder) WithMaxSteps(maxSteps int) *AgentBuilder {
	b.config.MaxSteps = maxSteps
	return b
}

// WithMaxOutputTokens sets the per-response output token cap.
func (b *AgentBuilder) WithMaxOutputTokens(tokens int) *AgentBuilder {
	b.config.MaxOutputTokens = tokens
	return b
}

// WithContextBudget sets the token ceiling for the context accumulator.
func (b *AgentBuilder) WithContextBudget(tokens int) *AgentBuilder {
	b.config.ContextBudget = tokens
	return b
}

// WithMode pins the reasoning mode instead of inferring it from the task.
func (b *AgentBuilder) WithMode(mode ReasoningMode) *AgentBuilder {
	b.config.ModeOverride = mode
	return b
}

// WithRunTimeout bounds each Execute call.
func (b *AgentBuilder) WithRunTimeout(d time.Duration) *AgentBuilder {
	b.config.RunTimeout = d
	return b
}

// WithRetryPolicy sets the model call retry policy.
func (b *AgentBuilder) WithRetryPolicy(policy *RetryPolicy) *AgentBuilder {
	b.config.RetryPolicy = policy
	return b
}

// WithApprovalPolicy sets the gate policy used when no gate is provided.
func (b *AgentBuilder) WithApprovalPolicy(policy ApprovalPolicy) *AgentBuilder {
	b.config.ApprovalPolicy = policy
	return b
}

// WithGate supplies a fully constructed gate (e.g. one wired to an
// interactive approver).
func (b *AgentBuilder) WithGate(gate *Gate) *AgentBuilder {
	b.gate = gate
	return b
}

// WithToolRegistry supplies the tool registry.
func (b *AgentBuilder) WithToolRegistry(reg ToolRegistry) *AgentBuilder {
	b.tools = reg
	return b
}

// WithHooks sets custom hooks.
func (b *AgentBuilder) WithHooks(hooks Hooks) *AgentBuilder {
	b.hooks = hooks
	return b
}

// WithRecaller wires long-term memory into the agent.
func (b *AgentBuilder) WithRecaller(r Recaller) *AgentBuilder {
	b.recaller = r
	return b
}

// Build constructs the Agent instance.
func (b *AgentBuilder) Build() (*Agent, error) {
	if b.llm == nil {
		return nil, fmt.Errorf("LLM client not configured: use WithLLM")
	}
	if b.tools == nil {
		b.tools = ToolRegistry{}
	}
	if !ValidPolicy(b.config.ApprovalPolicy) {
		return nil, fmt.Errorf("unknown approval policy: %s", b.config.ApprovalPolicy)
	}
	if b.config.MaxSteps <= 0 {
		return nil, fmt.Errorf("max steps must be positive, got %d", b.config.MaxSteps)
	}
	if b.gate == nil {
		b.gate = NewGate(b.config.ApprovalPolicy, log.Default())
	}
	if b.hooks == nil {
		b.hooks = Hooks{LoggerHook{L: log.Default()}}
	}

	return &Agent{
		llm:      b.llm,
		tools:    b.tools,
		gate:     b.gate,
		config:   b.config,
		hooks:    b.hooks,
		recaller: b.recaller,
	}, nil
}
