package execution

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/blkcor/cogent/internal/engine"
)

const (
	defaultRunCmdTimeout = 60 * time.Second
	maxRunCmdTimeout     = 5 * time.Minute
	minRunCmdTimeout     = 5 * time.Second
	defaultRunCmdLines   = 40
	minRunCmdLines       = 5
	maxRunCmdLines       = 200
)

var runCmdAllowedCommands = []string{
	// Build tools
	"go", "gofmt", "goimports",
	"npm", "npx", "yarn", "pnpm", "bun",
	"python", "python3", "pip", "pip3", "pytest", "uv",
	"cargo", "rustc", "rustfmt",
	"make", "cmake",

	// Linters & formatters
	"eslint", "prettier",
	"ruff", "black", "mypy",
	"tsc", "node",
	"golangci-lint",
	"shellcheck",

	// File operations
	"mkdir", "touch", "cp", "mv",
	"cat", "head", "tail",
	"ls", "find", "tree",
	"wc", "grep", "awk", "sed", "sort", "uniq", "diff",

	// Version control
	"git",

	// Utilities
	"echo", "printf", "date", "which", "env",
	"tar", "zip", "unzip", "gzip", "gunzip",
	"jq", "yq",
}

// ExecutionResult is the JSON shape every execution tool reports.
type ExecutionResult struct {
	Cmd             string `json:"cmd"`
	ExitCode        int    `json:"exit_code"`
	Stdout          string `json:"stdout"`
	Stderr          string `json:"stderr"`
	StdoutTruncated bool   `json:"stdout_truncated,omitempty"`
	StderrTruncated bool   `json:"stderr_truncated,omitempty"`
	TimedOut        bool   `json:"timed_out,omitempty"`
	Status          string `json:"status"`
}

func runCmdImpl(ctx context.Context, runner Runner, root, cmd, argsStr string, timeout time.Duration, maxLines int) (string, error) {
	isAllowed := false
	for _, allowed := range runCmdAllowedCommands {
		if cmd == allowed {
			isAllowed = true
			break
		}
	}
	if !isAllowed {
		execResult := ExecutionResult{
			Cmd:      cmd,
			ExitCode: 1,
			Stderr:   fmt.Sprintf("Command '%s' is not in allowlist. Allowed commands: %s", cmd, strings.Join(runCmdAllowedCommands, ", ")),
			Status:   "failed",
		}
		resultJSON, _ := json.Marshal(execResult)
		return string(resultJSON), nil
	}

	var args []string
	if argsStr != "" {
		args = parseArgs(argsStr)
	}

	if timeout <= 0 {
		timeout = defaultRunCmdTimeout
	}
	if timeout > maxRunCmdTimeout {
		timeout = maxRunCmdTimeout
	}

	result, err := runner.RunCmd(ctx, root, cmd, args, timeout)

	cmdStr := cmd
	if len(args) > 0 {
		cmdStr += " " + strings.Join(args, " ")
	}

	if maxLines <= 0 {
		maxLines = defaultRunCmdLines
	} else if maxLines > maxRunCmdLines {
		maxLines = maxRunCmdLines
	}

	stdout, stdoutTruncated := truncateOutput(result.Stdout, maxLines)
	stderr, stderrTruncated := truncateOutput(result.Stderr, maxLines)

	execResult := ExecutionResult{
		Cmd:             cmdStr,
		ExitCode:        result.Code,
		Stdout:          stdout,
		Stderr:          stderr,
		StdoutTruncated: stdoutTruncated,
		StderrTruncated: stderrTruncated,
		Status:          "ok",
	}
	if result.TimedOut || errors.Is(err, context.DeadlineExceeded) {
		execResult.TimedOut = true
		execResult.Status = "failed"
	}
	if result.Code != 0 {
		execResult.Status = "failed"
	}

	resultJSON, marshalErr := json.Marshal(execResult)
	if marshalErr != nil {
		return "", marshalErr
	}
	return string(resultJSON), nil
}

// parseArgs splits a space-separated argument string, honoring single and
// double quotes.
func parseArgs(argsStr string) []string {
	var args []string
	var current strings.Builder
	inQuotes := false
	quoteChar := byte(0)

	for i := 0; i < len(argsStr); i++ {
		char := argsStr[i]

		if char == '"' || char == '\'' {
			if !inQuotes {
				inQuotes = true
				quoteChar = char
			} else if char == quoteChar {
				inQuotes = false
				quoteChar = 0
			} else {
				current.WriteByte(char)
			}
		} else if char == ' ' && !inQuotes {
			if current.Len() > 0 {
				args = append(args, current.String())
				current.Reset()
			}
		} else {
			current.WriteByte(char)
		}
	}

	if current.Len() > 0 {
		args = append(args, current.String())
	}
	return args
}

func truncateOutput(s string, maxLines int) (string, bool) {
	lines := strings.Split(s, "\n")
	if len(lines) <= maxLines {
		return s, false
	}
	return strings.Join(lines[:maxLines], "\n") + "\n...", true
}

func parseTimeoutArg(value any) time.Duration {
	seconds, ok := value.(float64)
	if !ok || seconds <= 0 {
		return defaultRunCmdTimeout
	}
	timeout := time.Duration(seconds) * time.Second
	if timeout < minRunCmdTimeout {
		timeout = minRunCmdTimeout
	}
	if timeout > maxRunCmdTimeout {
		timeout = maxRunCmdTimeout
	}
	return timeout
}

// NewRunCmdTool creates an engine.Tool that runs an allowlisted command in
// the workspace. Output is truncated to keep observations small.
func NewRunCmdTool(root string) engine.Tool {
	runner := NewHostRunner()
	return engine.Tool{
		Name:        "run_cmd",
		Description: "Runs an allowlisted command in the workspace root and returns exit code, stdout and stderr. Output is truncated; prefer quiet flags.",
		SchemaJSON:  `{"type":"object","properties":{"cmd":{"type":"string","description":"Executable name, e.g. \"go\""},"args":{"type":"string","description":"Space-separated arguments, quotes supported"},"timeout_seconds":{"type":"number","description":"Timeout in seconds (default 60, max 300)"},"max_output_lines":{"type":"integer","description":"Lines of stdout/stderr to keep (default 40, max 200)"}},"required":["cmd"]}`,
		Category:    engine.CategoryCommand,
		Fn: func(ctx context.Context, args map[string]any, callID string) (engine.ToolResult, error) {
			cmd, ok := args["cmd"].(string)
			if !ok {
				return engine.ToolResult{}, fmt.Errorf("cmd must be a string")
			}
			argsStr, _ := args["args"].(string)
			timeout := parseTimeoutArg(args["timeout_seconds"])
			maxLines := 0
			if v, ok := args["max_output_lines"].(float64); ok {
				maxLines = int(v)
			}

			out, err := runCmdImpl(ctx, runner, root, cmd, argsStr, timeout, maxLines)
			if err != nil {
				return engine.ToolResult{}, err
			}
			return engine.ToolResult{
				Content: out,
				Display: map[string]string{"cmd": cmd},
			}, nil
		},
	}
}
