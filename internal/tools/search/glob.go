package search

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/blkcor/cogent/internal/engine"
	"github.com/blkcor/cogent/internal/workspace"
)

// maxGlobResults bounds the observation size for huge workspaces.
const maxGlobResults = 500

func globImpl(walker *workspace.Walker, pattern string) (string, error) {
	entries, err := walker.Glob(pattern)
	if err != nil {
		return "", fmt.Errorf("invalid glob pattern: %w", err)
	}

	truncated := false
	if len(entries) > maxGlobResults {
		entries = entries[:maxGlobResults]
		truncated = true
	}

	files := make([]string, len(entries))
	for i, e := range entries {
		files[i] = e.Path
	}

	response := map[string]any{
		"pattern":   pattern,
		"files":     files,
		"count":     len(files),
		"truncated": truncated,
	}
	responseJSON, err := json.Marshal(response)
	if err != nil {
		return "", err
	}
	return string(responseJSON), nil
}

// NewGlobTool creates an engine.Tool that finds workspace files by glob
// pattern without scanning their contents.
func NewGlobTool(walker *workspace.Walker) engine.Tool {
	return engine.Tool{
		Name:        "glob",
		Description: "Finds files matching a glob pattern (e.g. \"**/*.go\", \"cmd/*.go\", \"*.md\"), respecting .gitignore. Use this to locate files by name; use grep to search their contents.",
		SchemaJSON:  `{"type":"object","properties":{"pattern":{"type":"string","description":"Glob pattern matched against workspace-relative paths"}},"required":["pattern"]}`,
		Category:    engine.CategoryRead,
		Fn: func(ctx context.Context, args map[string]any, callID string) (engine.ToolResult, error) {
			pattern, ok := args["pattern"].(string)
			if !ok {
				return engine.ToolResult{}, fmt.Errorf("pattern must be a string")
			}

			out, err := globImpl(walker, pattern)
			if err != nil {
				return engine.ToolResult{}, err
			}
			return engine.ToolResult{
				Content: out,
				Display: map[string]string{"pattern": pattern},
			}, nil
		},
	}
}
