package filesystem

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/blkcor/cogent/internal/engine"
)

// maxFullReadLines is the cutoff above which read_file returns a window
// instead of the whole file.
const maxFullReadLines = 400

func readFileImpl(fsys FileSystem, root, path string, start, end int) (string, error) {
	full, err := resolveInRoot(root, path)
	if err != nil {
		return "", err
	}

	contentBytes, err := fsys.ReadFile(full)
	if err != nil {
		return "", err
	}

	lines := strings.Split(string(contentBytes), "\n")
	lineCount := len(lines)

	contentType := "full"
	content := string(contentBytes)

	if start > 0 || end > 0 {
		if start < 1 {
			start = 1
		}
		if end <= 0 || end > lineCount {
			end = lineCount
		}
		if start > lineCount {
			return "", fmt.Errorf("start line %d is past the end of %s (%d lines)", start, path, lineCount)
		}
		content = strings.Join(lines[start-1:end], "\n")
		contentType = fmt.Sprintf("span %d-%d", start, end)
	} else if lineCount > maxFullReadLines {
		// Large file: return the head and tell the model how to page.
		content = strings.Join(lines[:maxFullReadLines], "\n")
		contentType = fmt.Sprintf("truncated to first %d of %d lines; re-read with start/end to see more", maxFullReadLines, lineCount)
	}

	result := map[string]any{
		"path":         path,
		"content":      content,
		"line_count":   lineCount,
		"content_type": contentType,
	}
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return "", err
	}
	return string(resultJSON), nil
}

// NewReadFileTool creates an engine.Tool that reads workspace files.
func NewReadFileTool(root string) engine.Tool {
	fsys := NewOSFileSystem()
	return engine.Tool{
		Name:        "read_file",
		Description: "Reads the content of a file from the workspace. Provide the path relative to the workspace root. Optional start/end line numbers read a span of a large file.",
		SchemaJSON:  `{"type":"object","properties":{"path":{"type":"string","description":"Path relative to the workspace root"},"start":{"type":"integer","description":"First line to read (1-indexed)"},"end":{"type":"integer","description":"Last line to read (inclusive)"}},"required":["path"]}`,
		Category:    engine.CategoryRead,
		Fn: func(ctx context.Context, args map[string]any, callID string) (engine.ToolResult, error) {
			path, ok := args["path"].(string)
			if !ok {
				return engine.ToolResult{}, fmt.Errorf("path must be a string")
			}
			start := intArg(args, "start")
			end := intArg(args, "end")

			out, err := readFileImpl(fsys, root, path, start, end)
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

// intArg reads an integer argument that arrives as a JSON number.
func intArg(args map[string]any, key string) int {
	if v, ok := args[key].(float64); ok {
		return int(v)
	}
	return 0
}
