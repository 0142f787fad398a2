package search

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/blkcor/cogent/internal/engine"
	"github.com/blkcor/cogent/internal/workspace"
)

// Limits keep observations from flooding the context accumulator.
const (
	maxGrepResults  = 100
	maxLineLength   = 500
	maxFileSizeScan = 2 << 20 // skip files over 2 MiB
)

// GrepResult is one matching line.
type GrepResult struct {
	Path    string `json:"path"`
	Line    int    `json:"line"`
	Content string `json:"content"`
}

func grepImpl(ctx context.Context, walker *workspace.Walker, pattern, glob string, caseInsensitive bool) (string, error) {
	expr := pattern
	if caseInsensitive {
		expr = "(?i)" + expr
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return "", fmt.Errorf("invalid pattern: %w", err)
	}

	var entries []workspace.Entry
	if glob != "" {
		entries, err = walker.Glob(glob)
	} else {
		entries, err = walker.Walk()
	}
	if err != nil {
		return "", err
	}

	results := make([]GrepResult, 0)
	truncated := false

scan:
	for _, e := range entries {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}
		if e.SizeBytes > maxFileSizeScan {
			continue
		}

		matches, err := grepFile(re, filepath.Join(walker.Root(), filepath.FromSlash(e.Path)), e.Path)
		if err != nil {
			continue
		}
		for _, m := range matches {
			if len(results) >= maxGrepResults {
				truncated = true
				break scan
			}
			results = append(results, m)
		}
	}

	response := map[string]any{
		"pattern":   pattern,
		"results":   results,
		"count":     len(results),
		"truncated": truncated,
	}
	responseJSON, err := json.Marshal(response)
	if err != nil {
		return "", err
	}
	return string(responseJSON), nil
}

func grepFile(re *regexp.Regexp, fullPath, relPath string) ([]GrepResult, error) {
	f, err := os.Open(fullPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []GrepResult
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if strings.ContainsRune(line, 0) {
			// Binary file; stop scanning it.
			return out, nil
		}
		if !re.MatchString(line) {
			continue
		}
		content := strings.TrimSpace(line)
		if len(content) > maxLineLength {
			content = content[:maxLineLength] + "..."
		}
		out = append(out, GrepResult{Path: relPath, Line: lineNo, Content: content})
	}
	return out, scanner.Err()
}

// NewGrepTool creates an engine.Tool for regex search across the workspace.
// Matching is pure Go, so it works without ripgrep installed.
func NewGrepTool(walker *workspace.Walker) engine.Tool {
	return engine.Tool{
		Name:        "grep",
		Description: "Regex search across workspace files, respecting .gitignore. Use this to find code patterns, definitions, or references. Supports case-insensitive search and a glob filter.",
		SchemaJSON:  `{"type":"object","properties":{"pattern":{"type":"string","description":"Regex pattern to search for"},"glob":{"type":"string","description":"Optional glob pattern limiting which files are searched"},"case_insensitive":{"type":"boolean","description":"Case-insensitive search"}},"required":["pattern"]}`,
		Category:    engine.CategoryRead,
		Fn: func(ctx context.Context, args map[string]any, callID string) (engine.ToolResult, error) {
			pattern, ok := args["pattern"].(string)
			if !ok {
				return engine.ToolResult{}, fmt.Errorf("pattern must be a string")
			}
			glob, _ := args["glob"].(string)
			caseInsensitive, _ := args["case_insensitive"].(bool)

			out, err := grepImpl(ctx, walker, pattern, glob, caseInsensitive)
			if err != nil {
				return engine.ToolResult{}, err
			}
			return engine.ToolResult{Content: out}, nil
		},
	}
}
