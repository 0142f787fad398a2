package filesystem

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/blkcor/cogent/internal/engine"
)

func writeFileImpl(fsys FileSystem, root, path, content string) (string, error) {
	full, err := resolveInRoot(root, path)
	if err != nil {
		return "", err
	}

	created := true
	if _, serr := fsys.Stat(full); serr == nil {
		created = false
	}

	if err := fsys.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("create parent directories: %w", err)
	}
	if err := fsys.WriteFile(full, []byte(content), 0o644); err != nil {
		return "", err
	}

	result := map[string]any{
		"path":          path,
		"bytes_written": len(content),
		"created":       created,
	}
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return "", err
	}
	return string(resultJSON), nil
}

// NewWriteFileTool creates an engine.Tool that writes workspace files,
// creating parent directories as needed.
func NewWriteFileTool(root string) engine.Tool {
	fsys := NewOSFileSystem()
	return engine.Tool{
		Name:        "write_file",
		Description: "Writes content to a file in the workspace, replacing it if it exists. Parent directories are created automatically.",
		SchemaJSON:  `{"type":"object","properties":{"path":{"type":"string","description":"Path relative to the workspace root"},"content":{"type":"string","description":"Full file content to write"}},"required":["path","content"]}`,
		Category:    engine.CategoryWrite,
		Fn: func(ctx context.Context, args map[string]any, callID string) (engine.ToolResult, error) {
			path, ok := args["path"].(string)
			if !ok {
				return engine.ToolResult{}, fmt.Errorf("path must be a string")
			}
			content, ok := args["content"].(string)
			if !ok {
				return engine.ToolResult{}, fmt.Errorf("content must be a string")
			}

			out, err := writeFileImpl(fsys, root, path, content)
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
