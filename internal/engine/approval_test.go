package engine

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"
)

func quietGate(policy ApprovalPolicy) *Gate {
	return NewGate(policy, log.New(io.Discard, "", 0))
}

func TestNeedsApprovalMatrix(t *testing.T) {
	readTool := Tool{Name: "read_file", Category: CategoryRead}
	writeTool := Tool{Name: "write_file", Category: CategoryWrite}
	cmdTool := Tool{Name: "run_cmd", Category: CategoryCommand}

	tests := []struct {
		name   string
		policy ApprovalPolicy
		tool   Tool
		want   bool
	}{
		{"permissive read", PolicyPermissive, readTool, false},
		{"permissive write", PolicyPermissive, writeTool, false},
		{"permissive command", PolicyPermissive, cmdTool, false},

		{"edit-auto read", PolicyEditAuto, readTool, false},
		{"edit-auto write", PolicyEditAuto, writeTool, true},
		{"edit-auto command", PolicyEditAuto, cmdTool, true},

		{"standard read", PolicyStandard, readTool, false},
		{"standard write", PolicyStandard, writeTool, true},
		{"standard command", PolicyStandard, cmdTool, true},

		{"strict read", PolicyStrict, readTool, false},
		{"strict write", PolicyStrict, writeTool, true},
		{"strict command", PolicyStrict, cmdTool, true},

		{"unknown policy fails closed", ApprovalPolicy("bogus"), readTool, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGate(tt.policy, log.New(io.Discard, "", 0))
			if got := g.NeedsApproval(context.Background(), tt.tool, nil); got != tt.want {
				t.Errorf("NeedsApproval = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNeedsApprovalPredicateUnderStandard(t *testing.T) {
	approving := Tool{
		Name:     "tidy_write",
		Category: CategoryWrite,
		Approval: func(ctx context.Context, toolName string, args map[string]any, policy ApprovalPolicy) (bool, error) {
			return true, nil
		},
	}
	refusing := Tool{
		Name:     "risky_write",
		Category: CategoryWrite,
		Approval: func(ctx context.Context, toolName string, args map[string]any, policy ApprovalPolicy) (bool, error) {
			return false, nil
		},
	}
	failing := Tool{
		Name:     "broken_write",
		Category: CategoryWrite,
		Approval: func(ctx context.Context, toolName string, args map[string]any, policy ApprovalPolicy) (bool, error) {
			return true, errors.New("predicate blew up")
		},
	}

	g := quietGate(PolicyStandard)
	if g.NeedsApproval(context.Background(), approving, nil) {
		t.Error("self-approving predicate should skip the gate under standard")
	}
	if !g.NeedsApproval(context.Background(), refusing, nil) {
		t.Error("refusing predicate should force approval under standard")
	}
	if !g.NeedsApproval(context.Background(), failing, nil) {
		t.Error("failing predicate must fail closed")
	}
}

func TestNeedsApprovalPredicateIgnoredUnderStrict(t *testing.T) {
	tool := Tool{
		Name:     "tidy_write",
		Category: CategoryWrite,
		Approval: func(ctx context.Context, toolName string, args map[string]any, policy ApprovalPolicy) (bool, error) {
			t.Error("predicate must not be consulted under strict")
			return true, nil
		},
	}

	g := quietGate(PolicyStrict)
	if !g.NeedsApproval(context.Background(), tool, nil) {
		t.Error("strict ignores predicates and requires approval for writes")
	}
}

func TestGateSetPolicy(t *testing.T) {
	g := quietGate(PolicyStandard)

	g.SetPolicy(PolicyPermissive)
	if g.Policy() != PolicyPermissive {
		t.Errorf("Policy() = %s after SetPolicy, want permissive", g.Policy())
	}

	// Unknown policies are ignored, keeping the gate usable.
	g.SetPolicy(ApprovalPolicy("nonsense"))
	if g.Policy() != PolicyPermissive {
		t.Errorf("unknown policy changed state to %s", g.Policy())
	}
}

func TestRequestApproval(t *testing.T) {
	tool := Tool{Name: "write_file", Category: CategoryWrite}

	t.Run("nil approver auto-grants", func(t *testing.T) {
		g := quietGate(PolicyStandard)
		ok, err := g.RequestApproval(context.Background(), tool, nil)
		if err != nil || !ok {
			t.Errorf("got (%v, %v), want approved with no error", ok, err)
		}
	})

	t.Run("approver decision is returned", func(t *testing.T) {
		g := quietGate(PolicyStandard).WithApprover(
			func(ctx context.Context, toolName string, args map[string]any) (bool, error) {
				return false, nil
			})
		ok, err := g.RequestApproval(context.Background(), tool, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if ok {
			t.Error("denial should propagate")
		}
	})

	t.Run("approver error propagates", func(t *testing.T) {
		g := quietGate(PolicyStandard).WithApprover(
			func(ctx context.Context, toolName string, args map[string]any) (bool, error) {
				return false, errors.New("stdin closed")
			})
		ok, err := g.RequestApproval(context.Background(), tool, nil)
		if err == nil {
			t.Fatal("expected error from approver")
		}
		if ok {
			t.Error("errored approval must not grant")
		}
	})

	t.Run("valid policy names", func(t *testing.T) {
		for _, p := range []ApprovalPolicy{PolicyPermissive, PolicyEditAuto, PolicyStandard, PolicyStrict} {
			if !ValidPolicy(p) {
				t.Errorf("ValidPolicy(%s) = false", p)
			}
		}
		if ValidPolicy("yolo") {
			t.Error("ValidPolicy should reject unknown names")
		}
	})
}
