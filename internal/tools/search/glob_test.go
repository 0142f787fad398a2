package search

import (
	"encoding/json"
	"testing"
)

type globResponse struct {
	Pattern   string   `json:"pattern"`
	Files     []string `json:"files"`
	Count     int      `json:"count"`
	Truncated bool     `json:"truncated"`
}

func runGlob(t *testing.T, files map[string]string, pattern string) globResponse {
	t.Helper()
	w := newTestWorkspace(t, files)
	out, err := globImpl(w, pattern)
	if err != nil {
		t.Fatalf("globImpl failed: %v", err)
	}
	var resp globResponse
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatalf("result is not JSON: %v", err)
	}
	return resp
}

func TestGlobMatchesByPattern(t *testing.T) {
	files := map[string]string{
		"main.go":       "package main\n",
		"sub/helper.go": "package sub\n",
		"README.md":     "# hi\n",
	}

	resp := runGlob(t, files, "**/*.go")
	if resp.Count != 2 {
		t.Fatalf("count = %d, want 2", resp.Count)
	}
	for _, f := range resp.Files {
		if f == "README.md" {
			t.Error("glob leaked a non-matching file")
		}
	}

	resp = runGlob(t, files, "sub/*.go")
	if resp.Count != 1 || resp.Files[0] != "sub/helper.go" {
		t.Errorf("scoped pattern returned %v", resp.Files)
	}
}

func TestGlobRespectsGitignore(t *testing.T) {
	resp := runGlob(t, map[string]string{
		".gitignore":     "generated/\n",
		"generated/a.go": "package a\n",
		"kept.go":        "package kept\n",
	}, "**/*.go")

	if resp.Count != 1 || resp.Files[0] != "kept.go" {
		t.Errorf("got %v, want only kept.go", resp.Files)
	}
}

func TestGlobNoMatches(t *testing.T) {
	resp := runGlob(t, map[string]string{"a.txt": "x\n"}, "*.rs")
	if resp.Count != 0 || resp.Truncated {
		t.Errorf("got %+v, want empty untruncated result", resp)
	}
}
