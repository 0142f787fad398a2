package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/blkcor/cogent/internal/engine"
	"github.com/blkcor/cogent/internal/memory"
	"github.com/blkcor/cogent/internal/tools/execution"
	"github.com/blkcor/cogent/internal/tools/filesystem"
	"github.com/blkcor/cogent/internal/tools/search"
	"github.com/blkcor/cogent/internal/workspace"
)

// ToolSet selects which tool groups a registry exposes.
type ToolSet struct {
	Filesystem bool
	Search     bool
	Execution  bool
	Memory     bool
}

// DefaultToolSet enables everything except memory tools, which need a store.
func DefaultToolSet() ToolSet {
	return ToolSet{Filesystem: true, Search: true, Execution: true}
}

// NewToolRegistry creates an engine.ToolRegistry for a workspace root. The
// memory store may be nil when ToolSet.Memory is false.
func NewToolRegistry(root string, set ToolSet, store *memory.Store) (engine.ToolRegistry, error) {
	reg := make(engine.ToolRegistry)

	var walker *workspace.Walker
	if set.Filesystem || set.Search {
		var err error
		walker, err = workspace.NewWalker(root)
		if err != nil {
			return nil, fmt.Errorf("workspace walker: %w", err)
		}
	}

	if set.Filesystem {
		reg["read_file"] = filesystem.NewReadFileTool(root)
		reg["list_files"] = filesystem.NewListFilesTool(walker)
		reg["write_file"] = filesystem.NewWriteFileTool(root)
		reg["delete_file"] = filesystem.NewDeleteFileTool(root)
	}

	if set.Search {
		reg["grep"] = search.NewGrepTool(walker)
		reg["glob"] = search.NewGlobTool(walker)
	}

	if set.Execution {
		reg["run_cmd"] = execution.NewRunCmdTool(root)
	}

	if set.Memory {
		if store == nil {
			return nil, fmt.Errorf("memory tools requested without a store")
		}
		reg["remember"] = newRememberTool(store)
		reg["recall"] = newRecallTool(store)
	}

	return reg, nil
}

// newRememberTool stores a note in long-term memory.
func newRememberTool(store *memory.Store) engine.Tool {
	return engine.Tool{
		Name:        "remember",
		Description: "Stores a fact in long-term memory so future sessions can recall it. Use for durable knowledge, not transient task state.",
		SchemaJSON:  `{"type":"object","properties":{"content":{"type":"string","description":"The fact to remember"},"tags":{"type":"array","items":{"type":"string"},"description":"Optional tags for categorization"}},"required":["content"]}`,
		Category:    engine.CategoryWrite,
		Fn: func(ctx context.Context, args map[string]any, callID string) (engine.ToolResult, error) {
			content, ok := args["content"].(string)
			if !ok {
				return engine.ToolResult{}, fmt.Errorf("content must be a string")
			}
			var tags []string
			if raw, ok := args["tags"].([]any); ok {
				for _, t := range raw {
					if s, ok := t.(string); ok {
						tags = append(tags, s)
					}
				}
			}

			if err := store.Remember(ctx, content, tags); err != nil {
				return engine.ToolResult{}, err
			}
			return engine.ToolResult{Content: `{"remembered":true}`}, nil
		},
	}
}

// newRecallTool searches long-term memory.
func newRecallTool(store *memory.Store) engine.Tool {
	return engine.Tool{
		Name:        "recall",
		Description: "Searches long-term memory for facts relevant to a query.",
		SchemaJSON:  `{"type":"object","properties":{"query":{"type":"string","description":"What to look for"},"limit":{"type":"integer","description":"Maximum results (default 3)"}},"required":["query"]}`,
		Category:    engine.CategoryRead,
		Fn: func(ctx context.Context, args map[string]any, callID string) (engine.ToolResult, error) {
			query, ok := args["query"].(string)
			if !ok {
				return engine.ToolResult{}, fmt.Errorf("query must be a string")
			}
			limit := 3
			if v, ok := args["limit"].(float64); ok && v > 0 {
				limit = int(v)
			}

			notes, err := store.Recall(ctx, query, limit)
			if err != nil {
				return engine.ToolResult{}, err
			}
			out, err := json.Marshal(map[string]any{"notes": notes, "count": len(notes)})
			if err != nil {
				return engine.ToolResult{}, err
			}
			return engine.ToolResult{Content: string(out)}, nil
		},
	}
}
