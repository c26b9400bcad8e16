package tagspace

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"tagspace/internal/database/sqlc"
	"tagspace/internal/util"
)

// SourceDef is one parsed line of a sources list.
type SourceDef struct {
	Name string
	Path string
}

// Resolve returns the real root directory of a registered source.
func (s *IndexService) Resolve(ctx context.Context, name string) (string, error) {
	return resolveWith(ctx, s.database, name)
}

func resolveWith(ctx context.Context, store IndexStore, name string) (string, error) {
	src, err := store.FindSource(ctx, name)
	if err != nil {
		return "", fmt.Errorf("finding source: %w", err)
	}
	if src == nil {
		return "", &UnknownSourceError{Name: name}
	}
	return src.Path, nil
}

// Translate maps a virtual path onto the real filesystem.
func (s *IndexService) Translate(ctx context.Context, virtualPath string) (string, error) {
	return translateWith(ctx, s.database, virtualPath)
}

func translateWith(ctx context.Context, store IndexStore, virtualPath string) (string, error) {
	clean := CleanVirtualPath(virtualPath)
	name, rest := SplitSource(clean)
	if name == "" {
		return "", &UnknownSourceError{Name: ""}
	}
	for _, seg := range strings.Split(clean, "/") {
		if seg == "." || seg == ".." {
			return "", fmt.Errorf("invalid path segment %q in %q", seg, virtualPath)
		}
	}

	root, err := resolveWith(ctx, store, name)
	if err != nil {
		return "", err
	}
	if rest == "" {
		return root, nil
	}
	return filepath.Join(root, filepath.FromSlash(rest)), nil
}

// ListSources returns every registered source ordered by name.
func (s *IndexService) ListSources(ctx context.Context) ([]*sqlc.Source, error) {
	sources, err := s.database.ListSources(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing sources: %w", err)
	}
	return sources, nil
}

// ParseSourceLines parses "name|path" lines. Blank lines and lines starting
// with '#' are skipped and whitespace around both fields is trimmed.
func ParseSourceLines(lines []string) ([]SourceDef, error) {
	var defs []SourceDef
	seen := make(map[string]bool)
	for i, line := range lines {
		text := strings.TrimSpace(line)
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		lineErr := func(reason string) error {
			return &SourceLineError{Line: i + 1, Text: line, Reason: reason}
		}

		name, path, ok := strings.Cut(text, "|")
		if !ok {
			return nil, lineErr("missing '|' separator")
		}
		name = strings.TrimSpace(name)
		path = strings.TrimSpace(path)
		switch {
		case name == "":
			return nil, lineErr("empty source name")
		case strings.Contains(name, "/"):
			return nil, lineErr("source name contains '/'")
		case path == "":
			return nil, lineErr("empty source path")
		case seen[name]:
			return nil, lineErr("duplicate source name")
		}
		seen[name] = true
		defs = append(defs, SourceDef{Name: name, Path: path})
	}
	return defs, nil
}

// ReplaceSources swaps the whole source table for the given lines. A
// malformed line leaves the current table untouched.
func (s *IndexService) ReplaceSources(ctx context.Context, lines []string) error {
	defs, err := ParseSourceLines(lines)
	if err != nil {
		return err
	}

	err = util.Retry(ctx, func() error {
		return s.database.InTx(ctx, func(tx IndexStore) error {
			if err := tx.DeleteAllSources(ctx); err != nil {
				return fmt.Errorf("clearing sources: %w", err)
			}
			for _, d := range defs {
				if err := tx.InsertSource(ctx, d.Name, d.Path); err != nil {
					return fmt.Errorf("inserting source %s: %w", d.Name, err)
				}
			}
			return nil
		})
	})
	if err != nil {
		return err
	}

	s.logger.Info("sources replaced", "count", len(defs))
	return nil
}
