package filesystem

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/blkcor/cogent/internal/engine"
	"github.com/blkcor/cogent/internal/workspace"
)

// maxListEntries bounds the observation size for huge workspaces.
const maxListEntries = 500

func listFilesImpl(walker *workspace.Walker, pattern string) (string, error) {
	var entries []workspace.Entry
	var err error
	if pattern != "" {
		entries, err = walker.Glob(pattern)
	} else {
		entries, err = walker.Walk()
	}
	if err != nil {
		return "", err
	}

	truncated := false
	if len(entries) > maxListEntries {
		entries = entries[:maxListEntries]
		truncated = true
	}

	paths := make([]string, len(entries))
	for i, e := range entries {
		paths[i] = e.Path
	}

	result := map[string]any{
		"files":     paths,
		"count":     len(paths),
		"truncated": truncated,
	}
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return "", err
	}
	return string(resultJSON), nil
}

// NewListFilesTool creates an engine.Tool that lists workspace files,
// honoring .gitignore. An optional glob pattern filters the result.
func NewListFilesTool(walker *workspace.Walker) engine.Tool {
	return engine.Tool{
		Name:        "list_files",
		Description: "Lists files in the workspace, respecting .gitignore. Optional glob pattern (e.g. \"**/*.go\" or \"*.md\") filters the listing.",
		SchemaJSON:  `{"type":"object","properties":{"pattern":{"type":"string","description":"Optional glob pattern to filter files"}},"required":[]}`,
		Category:    engine.CategoryRead,
		Fn: func(ctx context.Context, args map[string]any, callID string) (engine.ToolResult, error) {
			pattern := ""
			if v, ok := args["pattern"]; ok {
				s, ok := v.(string)
				if !ok {
					return engine.ToolResult{}, fmt.Errorf("pattern must be a string")
				}
				pattern = s
			}

			out, err := listFilesImpl(walker, pattern)
			if err != nil {
				return engine.ToolResult{}, err
			}
			return engine.ToolResult{Content: out}, nil
		},
	}
}
