package workspace

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	gitignore "github.com/sabhiram/go-gitignore"
)

// Entry describes one discovered file.
type Entry struct {
	Path      string // relative to the workspace root, slash-separated
	SizeBytes int64
	MtimeUnix int64
	IsDir     bool
}

// DefaultIgnorePatterns are common directories and files to skip regardless
// of what .gitignore says.
var DefaultIgnorePatterns = []string{
	".git",
	"node_modules",
	"dist",
	"build",
	"vendor",
	"__pycache__",
	"coverage",
	".next",
	".cache",
	"target",
	".idea",
	".vscode",
	".DS_Store",
}

// Walker discovers files under a workspace root, honoring .gitignore.
type Walker struct {
	root          string
	ignoreMatcher gitignore.IgnoreParser
}

// NewWalker creates a walker for root. Ignore patterns combine the built-in
// defaults with every .gitignore found under root.
func NewWalker(root string) (*Walker, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve workspace root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("workspace root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("workspace root is not a directory: %s", abs)
	}

	patterns := make([]string, 0, len(DefaultIgnorePatterns)+16)
	patterns = append(patterns, DefaultIgnorePatterns...)
	patterns = append(patterns, loadGitignorePatterns(abs)...)

	return &Walker{
		root:          abs,
		ignoreMatcher: gitignore.CompileIgnoreLines(patterns...),
	}, nil
}

// Root returns the absolute workspace root.
func (w *Walker) Root() string { return w.root }

// Ignored reports whether a workspace-relative path is excluded.
func (w *Walker) Ignored(relPath string) bool {
	return w.ignoreMatcher.MatchesPath(relPath)
}

// Walk lists every non-ignored file under the root. Directories themselves
// are not returned; unreadable subtrees are skipped.
func (w *Walker) Walk() ([]Entry, error) {
	var entries []Entry

	err := filepath.WalkDir(w.root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if path == w.root {
			return nil
		}

		rel, rerr := filepath.Rel(w.root, path)
		if rerr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if w.ignoreMatcher.MatchesPath(rel) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}

		info, ierr := d.Info()
		if ierr != nil {
			return nil
		}
		entries = append(entries, Entry{
			Path:      rel,
			SizeBytes: info.Size(),
			MtimeUnix: info.ModTime().Unix(),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// Glob returns the non-ignored files matching pattern. The pattern is
// matched against slash-separated relative paths; "**/" prefixes match at
// any depth.
func (w *Walker) Glob(pattern string) ([]Entry, error) {
	all, err := w.Walk()
	if err != nil {
		return nil, err
	}

	var out []Entry
	for _, e := range all {
		ok, merr := matchGlob(pattern, e.Path)
		if merr != nil {
			return nil, merr
		}
		if ok {
			out = append(out, e)
		}
	}
	return out, nil
}

// matchGlob extends path.Match semantics with a leading "**/" that matches
// any directory depth, including zero.
func matchGlob(pattern, rel string) (bool, error) {
	if strings.HasPrefix(pattern, "**/") {
		suffix := strings.TrimPrefix(pattern, "**/")
		if ok, err := filepath.Match(suffix, filepath.Base(rel)); err != nil || ok {
			return ok, err
		}
		return filepath.Match(suffix, rel)
	}
	if ok, err := filepath.Match(pattern, rel); err != nil || ok {
		return ok, err
	}
	// Bare filename patterns match at any depth.
	if !strings.Contains(pattern, "/") {
		return filepath.Match(pattern, filepath.Base(rel))
	}
	return false, nil
}

// loadGitignorePatterns loads patterns from all .gitignore files under root.
// Nested files are flattened; pattern scoping is not reproduced.
func loadGitignorePatterns(root string) []string {
	var patterns []string

	filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() || d.Name() != ".gitignore" {
			return nil
		}
		if lines, rerr := readGitignoreLines(path); rerr == nil {
			patterns = append(patterns, lines...)
		}
		return nil
	})

	return patterns
}

func readGitignoreLines(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}
