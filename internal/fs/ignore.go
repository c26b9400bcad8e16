package fs

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"
)

// IgnoreMatcher applies gitignore-style rules to paths relative to a source
// root. A trailing "/" restricts a pattern to directories, "!" re-includes,
// and the last matching line wins.
type IgnoreMatcher struct {
	gi *ignore.GitIgnore
}

// NewIgnoreMatcher compiles raw pattern lines. Blank lines and comments are
// skipped by the compiler.
func NewIgnoreMatcher(lines []string) *IgnoreMatcher {
	var kept []string
	for _, l := range lines {
		if strings.TrimSpace(l) != "" {
			kept = append(kept, l)
		}
	}
	if len(kept) == 0 {
		return &IgnoreMatcher{}
	}
	return &IgnoreMatcher{gi: ignore.CompileIgnoreLines(kept...)}
}

// Match reports whether relPath (slash-separated) is ignored.
func (m *IgnoreMatcher) Match(relPath string, isDir bool) bool {
	if m == nil || m.gi == nil || relPath == "" {
		return false
	}
	p := filepath.ToSlash(relPath)
	if isDir {
		p += "/"
	}
	return m.gi.MatchesPath(p)
}

// ParseIgnoreFile reads pattern lines from path. A missing file yields no
// patterns and no error.
func ParseIgnoreFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening ignore file: %w", err)
	}
	defer f.Close()

	var patterns []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		patterns = append(patterns, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading ignore file: %w", err)
	}
	return patterns, nil
}
