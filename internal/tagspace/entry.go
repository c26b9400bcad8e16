package tagspace

import (
	"strings"

	"github.com/samber/lo"

	"tagspace/internal/database/sqlc"
)

// Entry is one indexed file or directory.
type Entry struct {
	ID       int64
	Path     string // virtual directory, "" for source roots
	Name     string
	Size     int64
	Mtime    float64
	Dev      int64
	Ino      int64
	Checksum string // "" until hashed
	IsDir    bool
	Tags     []string
	Deleted  bool

	// Groups holds the category matches recorded by the filter that
	// selected this entry. Nil outside ListFiles.
	Groups map[string][]string
}

// VirtualPath returns the entry's full virtual path.
func (e *Entry) VirtualPath() string {
	return JoinVirtual(e.Path, e.Name)
}

func entryFromRow(row *sqlc.File) *Entry {
	return &Entry{
		ID:       row.ID,
		Path:     row.Path,
		Name:     row.Name,
		Size:     row.Size,
		Mtime:    row.Mtime,
		Dev:      row.Dev,
		Ino:      row.Ino,
		Checksum: row.Checksum.String,
		IsDir:    row.IsDir,
		Tags:     ParseTags(row.Tags),
		Deleted:  row.DeleteTime.Valid,
	}
}

// ParseTags splits a stored tag string into its ordered, de-duplicated set.
func ParseTags(s string) []string {
	return lo.Uniq(strings.Fields(s))
}

// FormatTags is the stored form of a tag set.
func FormatTags(tags []string) string {
	return strings.Join(tags, " ")
}

// normalizeTags splits any whitespace inside the given tags, drops empty
// tokens and keeps the first occurrence of each tag.
func normalizeTags(tags []string) []string {
	return lo.Uniq(lo.FlatMap(tags, func(t string, _ int) []string {
		return strings.Fields(t)
	}))
}

// mergeTags appends every add not already present, in call order, then
// filters out every remove.
func mergeTags(current, adds, removes []string) []string {
	out := append([]string{}, current...)
	for _, t := range normalizeTags(adds) {
		if !lo.Contains(out, t) {
			out = append(out, t)
		}
	}
	return lo.Without(out, normalizeTags(removes)...)
}
