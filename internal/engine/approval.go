package engine

import (
	"context"
	"log"
	"sync"
)

// ApprovalPolicy names a gate configuration.
type ApprovalPolicy string

const (
	// PolicyPermissive never requires approval.
	PolicyPermissive ApprovalPolicy = "permissive"
	// PolicyEditAuto auto-approves read-category tools only.
	PolicyEditAuto ApprovalPolicy = "edit-auto"
	// PolicyStandard auto-approves read-category tools, defers to a tool's
	// own predicate when one is registered, and otherwise requires approval
	// for write/command categories. Uncategorized tools pass.
	PolicyStandard ApprovalPolicy = "standard"
	// PolicyStrict auto-approves read-category tools only, ignoring
	// predicates entirely.
	PolicyStrict ApprovalPolicy = "strict"
)

// ValidPolicy reports whether p names a known policy.
func ValidPolicy(p ApprovalPolicy) bool {
	switch p {
	case PolicyPermissive, PolicyEditAuto, PolicyStandard, PolicyStrict:
		return true
	}
	return false
}

// ApprovalFunc is the interactive seam: it asks whoever is in the loop
// (a human, a queue, a test) whether a flagged invocation may proceed.
type ApprovalFunc func(ctx context.Context, toolName string, args map[string]any) (bool, error)

// Gate decides whether tool invocations may proceed without asking a human.
// The policy is the one piece of shared mutable configuration between
// concurrent runs, so it sits behind a lock.
type Gate struct {
	mu       sync.RWMutex
	policy   ApprovalPolicy
	approver ApprovalFunc // nil = approve immediately (fully automated)
	logger   *log.Logger
}

// NewGate creates a gate with the given policy. A nil logger falls back to
// the default logger.
func NewGate(policy ApprovalPolicy, logger *log.Logger) *Gate {
	if logger == nil {
		logger = log.Default()
	}
	return &Gate{policy: policy, logger: logger}
}

// WithApprover sets the interactive approval seam and returns the gate.
func (g *Gate) WithApprover(fn ApprovalFunc) *Gate {
	g.mu.Lock()
	g.approver = fn
	g.mu.Unlock()
	return g
}

// Policy returns the current policy.
func (g *Gate) Policy() ApprovalPolicy {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.policy
}

// SetPolicy swaps the policy at runtime (e.g. on config reload). Unknown
// policies are ignored.
func (g *Gate) SetPolicy(policy ApprovalPolicy) {
	if !ValidPolicy(policy) {
		return
	}
	g.mu.Lock()
	g.policy = policy
	g.mu.Unlock()
}

// NeedsApproval decides synchronously whether this specific invocation may
// proceed without asking. Read-category tools always pass. Under standard, a
// tool's own predicate is authoritative; under strict it is ignored.
func (g *Gate) NeedsApproval(ctx context.Context, t Tool, args map[string]any) bool {
	switch g.Policy() {
	case PolicyPermissive:
		return false

	case PolicyEditAuto:
		return t.Category != CategoryRead

	case PolicyStandard:
		if t.Category == CategoryRead {
			return false
		}
		if t.Approval != nil {
			approved, err := t.Approval(ctx, t.Name, args, PolicyStandard)
			if err != nil {
				g.logger.Printf("approval predicate for %s failed: %v", t.Name, err)
				return true
			}
			return !approved
		}
		switch t.Category {
		case CategoryWrite, CategoryCommand:
			return true
		}
		return false

	case PolicyStrict:
		return t.Category != CategoryRead
	}

	// Unknown policy: fail closed.
	return true
}

// RequestApproval is the gating step for invocations NeedsApproval flagged.
// Without an approver it resolves to approved immediately; with one, the
// caller blocks on the human (or whatever sits behind the seam). Decisions
// are logged for audit.
func (g *Gate) RequestApproval(ctx context.Context, t Tool, args map[string]any) (bool, error) {
	g.mu.RLock()
	approver := g.approver
	policy := g.policy
	g.mu.RUnlock()

	if approver == nil {
		g.logger.Printf("approval: auto-granted tool=%s category=%s policy=%s", t.Name, t.Category, policy)
		return true, nil
	}

	approved, err := approver(ctx, t.Name, args)
	if err != nil {
		return false, err
	}
	if approved {
		g.logger.Printf("approval: granted tool=%s category=%s policy=%s", t.Name, t.Category, policy)
	} else {
		g.logger.Printf("approval: denied tool=%s category=%s policy=%s", t.Name, t.Category, policy)
	}
	return approved, nil
}
