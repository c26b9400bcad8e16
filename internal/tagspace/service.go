package tagspace

import (
	"context"
	"fmt"
	"runtime"

	"tagspace/internal/database/sqlc"
	"tagspace/internal/query"
	"tagspace/internal/util"
)

// IndexService is the orchestration layer behind every index operation the
// CLI exposes: listing, tagging, source management, moves and scan passes.
type IndexService struct {
	database Database
	fsmgr    FilesystemManager
	hasher   Hasher
	logger   Logger
	clock    Clock
	idgen    IDGenerator

	hashWorkers int
	progress    Progress
}

// NewIndexService creates an IndexService with the provided dependencies.
func NewIndexService(database Database, fsmgr FilesystemManager, hasher Hasher, logger Logger, clock Clock, idgen IDGenerator) *IndexService {
	return &IndexService{
		database:    database,
		fsmgr:       fsmgr,
		hasher:      hasher,
		logger:      logger,
		clock:       clock,
		idgen:       idgen,
		hashWorkers: runtime.NumCPU(),
		progress:    nopProgress{},
	}
}

// SetHashWorkers bounds the number of files hashed concurrently.
// Values below one are treated as one.
func (s *IndexService) SetHashWorkers(n int) {
	s.hashWorkers = max(n, 1)
}

// SetProgress installs a progress sink for UpdateIndex. Nil disables reporting.
func (s *IndexService) SetProgress(p Progress) {
	if p == nil {
		p = nopProgress{}
	}
	s.progress = p
}

// ListFiles returns the live entries at path (and below it when recursive)
// matching expr, ordered by path then name. limit applies to recursive
// listings only; zero or less means no limit.
func (s *IndexService) ListFiles(ctx context.Context, path, expr string, recursive bool, limit int) ([]*Entry, error) {
	path = CleanVirtualPath(path)

	rows, err := s.database.ListLiveFiles(ctx, path, recursive)
	if err != nil {
		return nil, fmt.Errorf("listing files: %w", err)
	}

	filter := query.Parse(expr)
	var lookup query.CategoryLookup
	if !filter.Empty() {
		lookup, err = s.categoryLookup(ctx)
		if err != nil {
			return nil, err
		}
	}

	var entries []*Entry
	for _, row := range rows {
		e := entryFromRow(row)
		groups, ok := filter.Match(query.Target{Path: e.Path, Name: e.Name, Tags: e.Tags}, lookup)
		if !ok {
			continue
		}
		e.Groups = groups
		entries = append(entries, e)
		if recursive && limit > 0 && len(entries) >= limit {
			break
		}
	}
	return entries, nil
}

func (s *IndexService) categoryLookup(ctx context.Context) (query.CategoryLookup, error) {
	infos, err := s.database.ListTagInfo(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing tag categories: %w", err)
	}
	categories := make(map[string]string, len(infos))
	for _, info := range infos {
		categories[info.TagName] = info.CategoryName
	}
	return func(tag string) string { return categories[tag] }, nil
}

// SetTags replaces the tag set of a live entry.
func (s *IndexService) SetTags(ctx context.Context, id int64, tags []string) error {
	tags = normalizeTags(tags)
	return util.Retry(ctx, func() error {
		return s.database.InTx(ctx, func(tx IndexStore) error {
			if _, err := findLiveByID(ctx, tx, id); err != nil {
				return err
			}
			if err := tx.UpdateFileTags(ctx, id, FormatTags(tags)); err != nil {
				return fmt.Errorf("updating tags: %w", err)
			}
			return nil
		})
	})
}

// ChangeTags appends adds that are not yet present, then drops removes.
func (s *IndexService) ChangeTags(ctx context.Context, id int64, adds, removes []string) error {
	return util.Retry(ctx, func() error {
		return s.database.InTx(ctx, func(tx IndexStore) error {
			row, err := findLiveByID(ctx, tx, id)
			if err != nil {
				return err
			}
			tags := mergeTags(ParseTags(row.Tags), adds, removes)
			if err := tx.UpdateFileTags(ctx, id, FormatTags(tags)); err != nil {
				return fmt.Errorf("updating tags: %w", err)
			}
			return nil
		})
	})
}

// GetEntry returns the live entry with id.
func (s *IndexService) GetEntry(ctx context.Context, id int64) (*Entry, error) {
	row, err := findLiveByID(ctx, s.database, id)
	if err != nil {
		return nil, err
	}
	return entryFromRow(row), nil
}

func findLiveByID(ctx context.Context, store IndexStore, id int64) (*sqlc.File, error) {
	row, err := store.FindFileByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("finding entry %d: %w", id, err)
	}
	if row == nil || row.DeleteTime.Valid {
		return nil, fmt.Errorf("entry %d: %w", id, ErrEntryNotFound)
	}
	return row, nil
}

// TagColors returns the display color of every known tag (its own color,
// else its category's) and the default color for unlabelled tags.
func (s *IndexService) TagColors(ctx context.Context) (map[string]string, string, error) {
	infos, err := s.database.ListTagInfo(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("listing tag colors: %w", err)
	}
	colors := make(map[string]string, len(infos))
	for _, info := range infos {
		color := info.TagColor
		if color == "" {
			color = info.CategoryColor
		}
		colors[info.TagName] = color
	}

	var def string
	category, err := s.database.FindCategory(ctx, "")
	if err != nil {
		return nil, "", fmt.Errorf("finding default category: %w", err)
	}
	if category != nil {
		def = category.Color
	}
	return colors, def, nil
}

// GetHistory returns the most recent operations, newest first.
func (s *IndexService) GetHistory(ctx context.Context, limit int) ([]*sqlc.Operation, error) {
	ops, err := s.database.ListOperations(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("listing operations: %w", err)
	}
	return ops, nil
}

// GetScanPasses returns the most recent scan passes, newest first.
func (s *IndexService) GetScanPasses(ctx context.Context, limit int) ([]*sqlc.ScanPass, error) {
	passes, err := s.database.ListScanPasses(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("listing scan passes: %w", err)
	}
	return passes, nil
}
