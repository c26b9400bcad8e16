package fs

import (
	"os"
	"path/filepath"
	"testing"
)

func TestIgnoreMatcher_Match(t *testing.T) {
	tests := []struct {
		name     string
		patterns []string
		relPath  string
		isDir    bool
		want     bool
	}{
		{"basename glob in root", []string{"*.log"}, "app.log", false, true},
		{"basename glob in subdirectory", []string{"*.log"}, "sub/app.log", false, true},
		{"different extension", []string{"*.log"}, "app.txt", false, false},
		{"directory pattern matches directory", []string{"build/"}, "build", true, true},
		{"directory pattern skips file of same name", []string{"build/"}, "build", false, false},
		{"directory pattern matches nested directory", []string{"node_modules/"}, "web/node_modules", true, true},
		{"anchored path pattern", []string{"docs/*.tmp"}, "docs/a.tmp", false, true},
		{"anchored path pattern elsewhere", []string{"docs/*.tmp"}, "other/docs/a.tmp", false, false},
		{"negation re-includes", []string{"*.log", "!keep.log"}, "keep.log", false, false},
		{"negation leaves others ignored", []string{"*.log", "!keep.log"}, "drop.log", false, true},
		{"comments and blanks only", []string{"# nothing", "", "  "}, "a.log", false, false},
		{"no patterns", nil, "anything.txt", false, false},
		{"empty path", []string{"*"}, "", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			m := NewIgnoreMatcher(tt.patterns)
			if got := m.Match(tt.relPath, tt.isDir); got != tt.want {
				t.Errorf("Match(%q, %v) = %v, want %v", tt.relPath, tt.isDir, got, tt.want)
			}
		})
	}
}

func TestParseIgnoreFile(t *testing.T) {
	t.Run("reads patterns from file", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "ignore")
		if err := os.WriteFile(path, []byte("*.log\n# comment\n\nbuild/\n"), 0644); err != nil {
			t.Fatalf("writing test file: %v", err)
		}

		patterns, err := ParseIgnoreFile(path)
		if err != nil {
			t.Fatalf("ParseIgnoreFile() error = %v", err)
		}
		if len(patterns) != 4 {
			t.Fatalf("expected 4 raw lines, got %d", len(patterns))
		}

		m := NewIgnoreMatcher(patterns)
		if !m.Match("build", true) {
			t.Error("build/ should be ignored")
		}
	})

	t.Run("returns nil for missing file", func(t *testing.T) {
		t.Parallel()
		patterns, err := ParseIgnoreFile("/nonexistent/ignore")
		if err != nil {
			t.Fatalf("ParseIgnoreFile() error = %v", err)
		}
		if patterns != nil {
			t.Errorf("expected nil patterns, got %v", patterns)
		}
	})
}
