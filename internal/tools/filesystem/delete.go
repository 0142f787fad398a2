package filesystem

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/blkcor/cogent/internal/engine"
)

func deleteFileImpl(fsys FileSystem, root, path string) (string, error) {
	full, err := resolveInRoot(root, path)
	if err != nil {
		return "", err
	}

	info, err := fsys.Stat(full)
	if err != nil {
		return "", err
	}
	if info.IsDir() {
		return "", fmt.Errorf("%s is a directory; delete_file only removes files", path)
	}

	if err := fsys.Remove(full); err != nil {
		return "", err
	}

	resultJSON, err := json.Marshal(map[string]any{"path": path, "deleted": true})
	if err != nil {
		return "", err
	}
	return string(resultJSON), nil
}

// NewDeleteFileTool creates an engine.Tool that removes a single file. Its
// approval predicate always asks, so under the standard policy deletions are
// never auto-approved.
func NewDeleteFileTool(root string) engine.Tool {
	fsys := NewOSFileSystem()
	return engine.Tool{
		Name:        "delete_file",
		Description: "Deletes a single file from the workspace. Directories cannot be deleted.",
		SchemaJSON:  `{"type":"object","properties":{"path":{"type":"string","description":"Path relative to the workspace root"}},"required":["path"]}`,
		Category:    engine.CategoryWrite,
		Approval: func(ctx context.Context, toolName string, args map[string]any, policy engine.ApprovalPolicy) (bool, error) {
			return false, nil
		},
		Fn: func(ctx context.Context, args map[string]any, callID string) (engine.ToolResult, error) {
			path, ok := args["path"].(string)
			if !ok {
				return engine.ToolResult{}, fmt.Errorf("path must be a string")
			}

			out, err := deleteFileImpl(fsys, root, path)
			if err != nil {
				return engine.ToolResult{}, err
			}
			return engine.ToolResult{
				Content: out,
				Display: map[string]string{"path": path},
			}, nil
		},
	}
}
