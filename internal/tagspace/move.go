package tagspace

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"tagspace/internal/database/sqlc"
)

// MoveEntry relocates a live entry inside the index. Missing ancestor
// directories are added and a directory takes its live descendants along.
// Nothing on disk is touched.
func (s *IndexService) MoveEntry(ctx context.Context, id int64, newPath, newName string) (*Entry, error) {
	newPath = CleanVirtualPath(newPath)
	if newPath == "" {
		return nil, fmt.Errorf("destination must be inside a source")
	}
	if newName == "" || strings.Contains(newName, "/") {
		return nil, fmt.Errorf("invalid entry name %q", newName)
	}

	var moved *Entry
	err := s.database.InTx(ctx, func(tx IndexStore) error {
		source, _ := SplitSource(newPath)
		if _, err := resolveWith(ctx, tx, source); err != nil {
			return err
		}

		row, err := findLiveByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if row.Path == newPath && row.Name == newName {
			moved = entryFromRow(row)
			return nil
		}
		if row.Path == "" {
			return fmt.Errorf("cannot move source root %q", row.Name)
		}

		oldFull := JoinVirtual(row.Path, row.Name)
		newFull := JoinVirtual(newPath, newName)

		existing, err := tx.FindLiveFileByPathName(ctx, newPath, newName)
		if err != nil {
			return fmt.Errorf("checking destination: %w", err)
		}
		if existing != nil {
			return fmt.Errorf("%s: %w", newFull, ErrEntryExists)
		}
		if row.IsDir && (newPath == oldFull || strings.HasPrefix(newPath, oldFull+"/")) {
			return fmt.Errorf("cannot move %s into itself", oldFull)
		}

		if err := s.ensureAncestors(ctx, tx, newPath); err != nil {
			return err
		}
		if row.IsDir {
			if _, err := tx.MoveLiveFilePrefix(ctx, oldFull, newFull); err != nil {
				return fmt.Errorf("moving descendants: %w", err)
			}
		}
		if err := tx.UpdateFileLocation(ctx, id, newPath, newName); err != nil {
			return fmt.Errorf("updating location: %w", err)
		}

		row.Path, row.Name = newPath, newName
		moved = entryFromRow(row)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("entry moved", "id", id, "to", moved.VirtualPath())
	return moved, nil
}

// ensureAncestors adds a directory row for every missing component of
// dirPath, taking stat data from disk when the directory exists there.
func (s *IndexService) ensureAncestors(ctx context.Context, tx IndexStore, dirPath string) error {
	segs := strings.Split(dirPath, "/")
	for i, name := range segs {
		parent := strings.Join(segs[:i], "/")
		full := JoinVirtual(parent, name)

		row, err := tx.FindLiveFileByPathName(ctx, parent, name)
		if err != nil {
			return fmt.Errorf("finding %s: %w", full, err)
		}
		if row != nil {
			if !row.IsDir {
				return fmt.Errorf("%s is not a directory", full)
			}
			continue
		}

		params := sqlc.InsertFileParams{Path: parent, Name: name, IsDir: true}
		realPath, err := translateWith(ctx, tx, full)
		if err != nil {
			return err
		}
		st, err := s.fsmgr.Stat(realPath)
		switch {
		case err == nil && !st.IsDir:
			return fmt.Errorf("%s is not a directory on disk", full)
		case err == nil:
			params.Size, params.Mtime, params.Dev, params.Ino = st.Size, st.Mtime, st.Dev, st.Ino
		case !errors.Is(err, fs.ErrNotExist):
			return &StatError{Path: realPath, Err: err}
		}

		if _, err := tx.InsertFile(ctx, params); err != nil {
			return fmt.Errorf("adding directory %s: %w", full, err)
		}
	}
	return nil
}
