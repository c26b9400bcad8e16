package tagspace

import "strings"

// CleanVirtualPath trims leading and trailing slashes and collapses empty
// segments, so "/src//a/" becomes "src/a".
func CleanVirtualPath(p string) string {
	segs := strings.FieldsFunc(p, func(r rune) bool { return r == '/' })
	return strings.Join(segs, "/")
}

// SplitSource splits a clean virtual path into its source name and the
// remainder below the source root.
func SplitSource(p string) (source, rest string) {
	source, rest, _ = strings.Cut(p, "/")
	return source, rest
}

// JoinVirtual joins a row's path and name into the entry's full virtual path.
func JoinVirtual(path, name string) string {
	if path == "" {
		return name
	}
	return path + "/" + name
}

// SplitVirtual is the inverse of JoinVirtual.
func SplitVirtual(full string) (path, name string) {
	i := strings.LastIndexByte(full, '/')
	if i < 0 {
		return "", full
	}
	return full[:i], full[i+1:]
}
