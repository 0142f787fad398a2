package engine

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// ApprovalCategory is the coarse risk classification attached to a tool at
// registration time. The Approval Gate keys its decisions off it.
type ApprovalCategory string

const (
	CategoryRead    ApprovalCategory = "read"
	CategoryWrite   ApprovalCategory = "write"
	CategoryCommand ApprovalCategory = "command"
	CategoryNetwork ApprovalCategory = "network"
)

// ToolFunc executes a tool with validated arguments and the model's call ID.
type ToolFunc func(ctx context.Context, args map[string]any, callID string) (ToolResult, error)

// ApprovalPredicate is an optional per-invocation decision function supplied
// at registration. It receives the full invocation context and may block on
// I/O. Only the standard policy consults it.
type ApprovalPredicate func(ctx context.Context, toolName string, args map[string]any, policy ApprovalPolicy) (bool, error)

type Tool struct {
	Name        string
	Description string
	SchemaJSON  string
	Fn          ToolFunc
	Category    ApprovalCategory
	// Approval, when set, lets the tool decide its own invocations under the
	// standard policy.
	Approval ApprovalPredicate
}

// ValidateArgs validates the provided arguments against the tool's schema.
func (t Tool) ValidateArgs(args map[string]any) error {
	schemaLoader := gojsonschema.NewStringLoader(t.SchemaJSON)
	documentLoader := gojsonschema.NewGoLoader(args)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}

	if !result.Valid() {
		var errorMsgs []string
		for _, verr := range result.Errors() {
			errorMsgs = append(errorMsgs, verr.String())
		}
		return &ToolValidationError{
			ToolName: t.Name,
			Errors:   errorMsgs,
		}
	}
	return nil
}

// ToolRegistry maps tool names to their contracts. It is constructed once
// and injected; dispatch is read-only and safe for concurrent runs.
type ToolRegistry map[string]Tool

// Get looks up a tool by name.
func (r ToolRegistry) Get(name string) (Tool, bool) {
	t, ok := r[name]
	return t, ok
}

// Schemas returns the tool catalogue sent to the model on each turn.
func (r ToolRegistry) Schemas() []ToolSchema {
	s := make([]ToolSchema, 0, len(r))
	for _, t := range r {
		s = append(s, ToolSchema{
			Name:        t.Name,
			Description: t.Description,
			JSONSchema:  t.SchemaJSON,
		})
	}
	return s
}

// Names returns the registered tool names, for error messages.
func (r ToolRegistry) Names() []string {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	return names
}

// Invoke dispatches one tool call. It never returns a Go error: argument
// parse failures, unknown tools, schema violations and executor errors are
// all converted to an error-flagged ToolResult the loop feeds back to the
// model as an observation.
func (r ToolRegistry) Invoke(ctx context.Context, name, rawArgsJSON, callID string) ToolResult {
	t, ok := r[name]
	if !ok {
		return ToolResult{
			CallID:  callID,
			Content: fmt.Sprintf("tool not found: %s (available tools: %v)", name, r.Names()),
			IsError: true,
		}
	}

	args := make(map[string]any)
	if rawArgsJSON != "" {
		if err := json.Unmarshal([]byte(rawArgsJSON), &args); err != nil {
			return ToolResult{
				CallID:  callID,
				Content: fmt.Sprintf("invalid arguments for tool %s: %v", name, err),
				IsError: true,
			}
		}
	}

	if err := t.ValidateArgs(args); err != nil {
		return ToolResult{
			CallID:  callID,
			Content: fmt.Sprintf("validation failed for tool %s: %v", name, err),
			IsError: true,
		}
	}

	res, err := t.Fn(ctx, args, callID)
	if err != nil {
		return ToolResult{
			CallID:  callID,
			Content: fmt.Sprintf("execution failed for tool %s: %v", name, err),
			IsError: true,
		}
	}
	res.CallID = callID
	return res
}
