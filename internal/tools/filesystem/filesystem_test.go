package filesystem

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/blkcor/cogent/internal/workspace"
)

func writeTestFile(t *testing.T, root, rel, content string) {
	t.Helper()
	full := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestReadFileFull(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, root, "main.go", "package main\n\nfunc main() {}\n")

	out, err := readFileImpl(NewOSFileSystem(), root, "main.go", 0, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var res map[string]any
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("result is not JSON: %v", err)
	}
	if res["content"] != "package main\n\nfunc main() {}\n" {
		t.Errorf("content = %q", res["content"])
	}
	if res["content_type"] != "full" {
		t.Errorf("content_type = %q, want full", res["content_type"])
	}
	if res["line_count"].(float64) != 4 {
		t.Errorf("line_count = %v, want 4", res["line_count"])
	}
}

func TestReadFileSpan(t *testing.T) {
	root := t.TempDir()
	var b strings.Builder
	for i := 1; i <= 10; i++ {
		fmt.Fprintf(&b, "line %d\n", i)
	}
	writeTestFile(t, root, "data.txt", b.String())

	out, err := readFileImpl(NewOSFileSystem(), root, "data.txt", 3, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var res map[string]any
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatal(err)
	}
	if res["content"] != "line 3\nline 4\nline 5" {
		t.Errorf("span content = %q", res["content"])
	}
	if res["content_type"] != "span 3-5" {
		t.Errorf("content_type = %q", res["content_type"])
	}
}

func TestReadFileSpanPastEnd(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, root, "short.txt", "one\ntwo\n")

	if _, err := readFileImpl(NewOSFileSystem(), root, "short.txt", 50, 60); err == nil {
		t.Error("start past the end should error")
	}

	// End past the file clamps to the last line.
	out, err := readFileImpl(NewOSFileSystem(), root, "short.txt", 1, 99)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var res map[string]any
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(res["content"].(string), "one\ntwo") {
		t.Errorf("clamped span content = %q", res["content"])
	}
}

func TestReadFileTruncatesLargeFiles(t *testing.T) {
	root := t.TempDir()
	var b strings.Builder
	for i := 1; i <= maxFullReadLines+100; i++ {
		fmt.Fprintf(&b, "line %d\n", i)
	}
	writeTestFile(t, root, "big.txt", b.String())

	out, err := readFileImpl(NewOSFileSystem(), root, "big.txt", 0, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var res map[string]any
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatal(err)
	}
	content := res["content"].(string)
	if strings.Contains(content, fmt.Sprintf("line %d", maxFullReadLines+1)) {
		t.Error("content should stop at the line cutoff")
	}
	if !strings.Contains(res["content_type"].(string), "truncated") {
		t.Errorf("content_type = %q, want truncation notice", res["content_type"])
	}
}

func TestWriteFileCreateAndOverwrite(t *testing.T) {
	root := t.TempDir()

	out, err := writeFileImpl(NewOSFileSystem(), root, "nested/dir/new.txt", "hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var res map[string]any
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatal(err)
	}
	if res["created"] != true {
		t.Error("first write should report created=true")
	}
	if res["bytes_written"].(float64) != 5 {
		t.Errorf("bytes_written = %v, want 5", res["bytes_written"])
	}

	out, err = writeFileImpl(NewOSFileSystem(), root, "nested/dir/new.txt", "replaced")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatal(err)
	}
	if res["created"] != false {
		t.Error("second write should report created=false")
	}

	data, err := os.ReadFile(filepath.Join(root, "nested/dir/new.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "replaced" {
		t.Errorf("file content = %q, want replaced", data)
	}
}

func TestDeleteFile(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, root, "doomed.txt", "bye")

	out, err := deleteFileImpl(NewOSFileSystem(), root, "doomed.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, `"deleted":true`) {
		t.Errorf("result = %q", out)
	}
	if _, err := os.Stat(filepath.Join(root, "doomed.txt")); !os.IsNotExist(err) {
		t.Error("file should be gone")
	}
}

func TestDeleteFileRejectsDirectories(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "subdir"), 0o755); err != nil {
		t.Fatal(err)
	}

	if _, err := deleteFileImpl(NewOSFileSystem(), root, "subdir"); err == nil {
		t.Error("directories must be rejected")
	}
}

func TestResolveInRootRejectsEscapes(t *testing.T) {
	root := t.TempDir()

	tests := []struct {
		path   string
		wantOK bool
	}{
		{"inside.txt", true},
		{"a/b/c.txt", true},
		{".", true},
		{"../outside.txt", false},
		{"a/../../outside.txt", false},
	}

	for _, tt := range tests {
		_, err := resolveInRoot(root, tt.path)
		if tt.wantOK && err != nil {
			t.Errorf("resolveInRoot(%q) unexpectedly failed: %v", tt.path, err)
		}
		if !tt.wantOK && err == nil {
			t.Errorf("resolveInRoot(%q) should have been rejected", tt.path)
		}
	}
}

func TestListFiles(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, root, "main.go", "package main\n")
	writeTestFile(t, root, "README.md", "# hi\n")
	writeTestFile(t, root, "sub/helper.go", "package sub\n")
	writeTestFile(t, root, ".gitignore", "ignored/\n")
	writeTestFile(t, root, "ignored/secret.txt", "shh\n")

	walker, err := workspace.NewWalker(root)
	if err != nil {
		t.Fatal(err)
	}

	out, err := listFilesImpl(walker, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var res struct {
		Files []string `json:"files"`
		Count int      `json:"count"`
	}
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatal(err)
	}
	for _, f := range res.Files {
		if strings.Contains(f, "secret") {
			t.Error("gitignored file leaked into the listing")
		}
	}
	if res.Count < 2 {
		t.Errorf("count = %d, want at least main.go and README.md", res.Count)
	}

	out, err = listFilesImpl(walker, "**/*.go")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatal(err)
	}
	for _, f := range res.Files {
		if !strings.HasSuffix(f, ".go") {
			t.Errorf("glob leaked non-Go file %q", f)
		}
	}
	if res.Count != 2 {
		t.Errorf("glob count = %d, want 2", res.Count)
	}
}
