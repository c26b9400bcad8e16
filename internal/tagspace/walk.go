package tagspace

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"tagspace/internal/database/sqlc"
)

// observed is one entry seen on disk during a pass.
type observed struct {
	path     string // virtual directory
	name     string
	realPath string
	stat     *FileStat
}

func (o *observed) virtualPath() string {
	return JoinVirtual(o.path, o.name)
}

// identityKey names the content an entry refers to for the duration of a
// pass, so hard links and repeated observations share one digest.
func (o *observed) identityKey() string {
	if o.stat.Dev == 0 && o.stat.Ino == 0 {
		return "path:" + o.realPath
	}
	return fmt.Sprintf("%d:%d:%d:%v", o.stat.Dev, o.stat.Ino, o.stat.Size, o.stat.Mtime)
}

type walkFrame struct {
	virtualDir string
	realDir    string
	rel        string
}

// walkSource lists every indexable entry of a source, the root included,
// in depth-first order with siblings sorted by name. Entries that fail to
// stat are logged and counted in failed.
func (s *IndexService) walkSource(ctx context.Context, src *sqlc.Source) (entries []*observed, failed int64, err error) {
	root, err := s.fsmgr.Stat(src.Path)
	if err != nil {
		s.logger.Warn("skipping source", "source", src.Name, "error", &StatError{Path: src.Path, Err: err})
		return nil, 0, nil
	}
	if !root.IsDir {
		s.logger.Warn("skipping source", "source", src.Name, "error", fmt.Sprintf("%s is not a directory", src.Path))
		return nil, 0, nil
	}

	entries = append(entries, &observed{path: "", name: src.Name, realPath: src.Path, stat: root})
	stack := []walkFrame{{virtualDir: src.Name, realDir: src.Path}}

	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, 0, err
		}
		dir := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		names, err := s.fsmgr.ReadDir(dir.realDir)
		if err != nil {
			s.logger.Warn("skipping directory", "error", &StatError{Path: dir.realDir, Err: err})
			failed++
			continue
		}

		var subdirs []walkFrame
		for _, name := range names {
			if strings.HasPrefix(name, ".") {
				continue
			}
			realPath := filepath.Join(dir.realDir, name)
			st, err := s.fsmgr.Stat(realPath)
			if err != nil {
				s.logger.Warn("skipping entry", "error", &StatError{Path: realPath, Err: err})
				failed++
				continue
			}
			// symlinks, sockets, devices
			if !st.IsDir && !st.IsRegular() {
				continue
			}
			rel := JoinVirtual(dir.rel, name)
			if s.fsmgr.IsIgnored(rel, st.IsDir) {
				continue
			}

			entries = append(entries, &observed{path: dir.virtualDir, name: name, realPath: realPath, stat: st})
			if st.IsDir {
				subdirs = append(subdirs, walkFrame{
					virtualDir: JoinVirtual(dir.virtualDir, name),
					realDir:    realPath,
					rel:        rel,
				})
			}
		}
		for i := len(subdirs) - 1; i >= 0; i-- {
			stack = append(stack, subdirs[i])
		}
	}
	return entries, failed, nil
}
