package tagspace

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"tagspace/internal/database/sqlc"
	"tagspace/internal/util"
)

// Scan pass statuses.
const (
	PassRunning   = "running"
	PassSuccess   = "success"
	PassCancelled = "cancelled"
	PassFailed    = "failed"
)

// ScanStats counts what one pass did.
type ScanStats struct {
	PassID string
	Epoch  int64

	Observed  int64
	Unchanged int64
	Moved     int64
	Copied    int64
	Created   int64
	Hashed    int64
	Failed    int64
	Deleted   int64
}

type outcome int

const (
	outcomeNone outcome = iota
	outcomeCreated
	outcomeMoved
	outcomeCopied
	outcomeQueued
)

func (st *ScanStats) record(o outcome) {
	switch o {
	case outcomeCreated:
		st.Created++
	case outcomeMoved:
		st.Moved++
	case outcomeCopied:
		st.Copied++
	}
}

// scanPass carries the state of one UpdateIndex call.
type scanPass struct {
	full  bool
	epoch int64
	stats *ScanStats
	memo  *hashMemo

	unmatched []*observed
	rest      []*observed
	jobs      []hashJob
}

// UpdateIndex reconciles the index with every registered source. Rows whose
// files are gone stay tombstoned; moved and copied files keep their tags.
// With full set, every regular file ends up with a checksum.
func (s *IndexService) UpdateIndex(ctx context.Context, full bool) (*ScanStats, error) {
	stats := &ScanStats{PassID: s.idgen.New()}
	epoch, err := s.database.BeginScanPass(ctx, stats.PassID, full, s.clock.Now())
	if err != nil {
		return nil, fmt.Errorf("beginning scan pass: %w", err)
	}
	stats.Epoch = epoch
	s.logger.Info("scan pass started", "pass", stats.PassID, "epoch", epoch, "full", full)

	p := &scanPass{full: full, epoch: epoch, stats: stats, memo: newHashMemo()}
	runErr := s.runPass(ctx, p)
	s.progress.Done()

	// The pass record is written even when ctx is already cancelled.
	finishCtx := context.WithoutCancel(ctx)
	status := PassSuccess
	switch {
	case errors.Is(runErr, context.Canceled), errors.Is(runErr, context.DeadlineExceeded):
		status = PassCancelled
	case runErr != nil:
		status = PassFailed
	}

	deleted, err := s.database.CountTombstoned(finishCtx, epoch)
	if err != nil {
		s.logger.Warn("counting deleted entries", "error", err)
	}
	stats.Deleted = deleted

	err = s.database.FinishScanPass(finishCtx, sqlc.FinishScanPassParams{
		FinishedAt:    sql.NullTime{Time: s.clock.Now(), Valid: true},
		Status:        status,
		Observed:      stats.Observed,
		Unchanged:     stats.Unchanged,
		Moved:         stats.Moved,
		Copied:        stats.Copied,
		Created:       stats.Created,
		Hashed:        stats.Hashed,
		FailedEntries: stats.Failed,
		Deleted:       stats.Deleted,
		ID:            epoch,
	})
	if runErr != nil {
		s.logger.Warn("scan pass ended early", "pass", stats.PassID, "status", status, "error", runErr)
		return stats, fmt.Errorf("scan pass %s: %w", status, runErr)
	}
	if err != nil {
		return stats, fmt.Errorf("recording scan pass: %w", err)
	}

	s.logger.Info("scan pass finished",
		"pass", stats.PassID,
		"observed", stats.Observed,
		"unchanged", stats.Unchanged,
		"moved", stats.Moved,
		"copied", stats.Copied,
		"created", stats.Created,
		"hashed", stats.Hashed,
		"failed", stats.Failed,
		"deleted", stats.Deleted)
	return stats, nil
}

func (s *IndexService) runPass(ctx context.Context, p *scanPass) error {
	if err := s.tombstoneWalkAndMatch(ctx, p); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.matchIdentities(ctx, p); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.matchContentCandidates(ctx, p); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.hashAndApply(ctx, p)
}

// tombstoneWalkAndMatch walks the sources, then tombstones every live row
// and revives the rows found again at the same location in one
// transaction. The walk runs before the transaction so the write lock is
// held only for the database work.
func (s *IndexService) tombstoneWalkAndMatch(ctx context.Context, p *scanPass) error {
	sources, err := s.database.ListSources(ctx)
	if err != nil {
		return fmt.Errorf("listing sources: %w", err)
	}

	s.progress.Stage("walk", 0)
	var entries []*observed
	var failedCount int64
	for _, src := range sources {
		if strings.HasPrefix(src.Name, ".") {
			continue
		}
		found, failed, err := s.walkSource(ctx, src)
		if err != nil {
			return err
		}
		s.progress.Add(int64(len(found)))
		entries = append(entries, found...)
		failedCount += failed
	}
	observedCount := int64(len(entries))

	var unchangedCount int64
	s.progress.Stage("match", observedCount)
	err = s.database.InTx(ctx, func(tx IndexStore) error {
		p.unmatched, p.jobs, unchangedCount = nil, nil, 0

		if _, err := tx.TombstoneLiveFiles(ctx, UnixSeconds(s.clock.Now()), p.epoch); err != nil {
			return fmt.Errorf("tombstoning live rows: %w", err)
		}

		for _, o := range entries {
			if err := ctx.Err(); err != nil {
				return err
			}
			unchanged, err := s.matchPath(ctx, tx, p, o)
			if err != nil {
				return err
			}
			if unchanged {
				unchangedCount++
			}
			s.progress.Add(1)
		}
		return nil
	})
	if err != nil {
		return err
	}

	p.stats.Observed += observedCount
	p.stats.Unchanged += unchangedCount
	p.stats.Failed += failedCount
	return nil
}

// matchPath revives the row at the entry's location, if any, with fresh
// stat data.
func (s *IndexService) matchPath(ctx context.Context, tx IndexStore, p *scanPass, o *observed) (unchanged bool, err error) {
	row, err := tx.FindFileByPathName(ctx, o.path, o.name)
	if err != nil {
		return false, fmt.Errorf("finding %s: %w", o.virtualPath(), err)
	}
	if row == nil {
		p.unmatched = append(p.unmatched, o)
		return false, nil
	}

	checksum, err := s.knownChecksum(ctx, tx, o, row)
	if err != nil {
		return false, err
	}
	if err := tx.ReviveFile(ctx, reviveParams(row.ID, o, checksum)); err != nil {
		return false, fmt.Errorf("reviving %s: %w", o.virtualPath(), err)
	}
	if o.stat.IsRegular() && checksum == "" && (p.full || row.Tags != "") {
		p.jobs = append(p.jobs, hashJob{obs: o, rowID: row.ID})
	}

	unchanged = row.TombstoneEpoch.Valid && row.TombstoneEpoch.Int64 == p.epoch &&
		row.IsDir == o.stat.IsDir && sameStat(row, o.stat)
	return unchanged, nil
}

// matchIdentities resolves unmatched entries by device and inode: a
// tombstoned row has moved, a live row has been copied. Directories with no
// identity match are created here; files go on to content matching.
func (s *IndexService) matchIdentities(ctx context.Context, p *scanPass) error {
	var counts ScanStats
	var rest []*observed
	var jobs []hashJob

	s.progress.Stage("identity", int64(len(p.unmatched)))
	err := s.database.InTx(ctx, func(tx IndexStore) error {
		counts, rest, jobs = ScanStats{}, nil, nil
		for _, o := range p.unmatched {
			if err := ctx.Err(); err != nil {
				return err
			}
			s.progress.Add(1)

			var row *sqlc.File
			if o.stat.Dev != 0 || o.stat.Ino != 0 {
				var err error
				row, err = tx.FindFileByDeviceInode(ctx, o.stat.Dev, o.stat.Ino, o.stat.IsDir, p.epoch)
				if err != nil {
					return fmt.Errorf("finding identity of %s: %w", o.virtualPath(), err)
				}
			}

			if row == nil {
				if !o.stat.IsDir {
					rest = append(rest, o)
					continue
				}
				if _, err := tx.InsertFile(ctx, insertParams(o, "", "")); err != nil {
					return fmt.Errorf("inserting %s: %w", o.virtualPath(), err)
				}
				counts.record(outcomeCreated)
				continue
			}

			checksum, err := s.knownChecksum(ctx, tx, o, row)
			if err != nil {
				return err
			}

			id := row.ID
			if row.DeleteTime.Valid {
				if err := tx.ReviveFile(ctx, reviveParams(row.ID, o, checksum)); err != nil {
					return fmt.Errorf("moving row to %s: %w", o.virtualPath(), err)
				}
				counts.record(outcomeMoved)
			} else {
				created, err := tx.InsertFile(ctx, insertParams(o, checksum, row.Tags))
				if err != nil {
					return fmt.Errorf("copying row to %s: %w", o.virtualPath(), err)
				}
				id = created.ID
				counts.record(outcomeCopied)
			}
			if o.stat.IsRegular() && checksum == "" && (p.full || row.Tags != "") {
				jobs = append(jobs, hashJob{obs: o, rowID: id})
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	p.rest = rest
	p.jobs = append(p.jobs, jobs...)
	p.stats.Created += counts.Created
	p.stats.Moved += counts.Moved
	p.stats.Copied += counts.Copied
	return nil
}

// matchContentCandidates decides per file whether content matching could
// find anything. Files of a size no candidate row shares are created right
// away; the rest are resolved from a cached checksum or queued for hashing.
func (s *IndexService) matchContentCandidates(ctx context.Context, p *scanPass) error {
	s.progress.Stage("content", int64(len(p.rest)))
	for _, o := range p.rest {
		if err := ctx.Err(); err != nil {
			return err
		}
		s.progress.Add(1)

		result, err := s.commitEntry(ctx, func(tx IndexStore) (outcome, error) {
			checksum, err := s.cachedChecksum(ctx, tx, o.realPath, o.stat)
			if err != nil {
				return outcomeNone, err
			}
			candidates, err := tx.ListFilesBySize(ctx, o.stat.Size, !p.full)
			if err != nil {
				return outcomeNone, fmt.Errorf("listing candidates: %w", err)
			}
			if len(candidates) == 0 && !p.full {
				if _, err := tx.InsertFile(ctx, insertParams(o, checksum, "")); err != nil {
					return outcomeNone, fmt.Errorf("inserting: %w", err)
				}
				return outcomeCreated, nil
			}
			if checksum != "" {
				return s.applyContentMatch(ctx, tx, p, o, checksum)
			}
			return outcomeQueued, nil
		})
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.logger.Error("indexing entry failed", "path", o.virtualPath(), "error", err)
			p.stats.Failed++
			continue
		}

		if result == outcomeQueued {
			p.jobs = append(p.jobs, hashJob{obs: o})
			continue
		}
		p.stats.record(result)
	}
	return nil
}

// hashAndApply hashes every queued entry and applies the digests in queue
// order.
func (s *IndexService) hashAndApply(ctx context.Context, p *scanPass) error {
	var total int64
	for _, job := range p.jobs {
		total += job.obs.stat.Size
	}
	s.progress.Stage("hash", total)

	results := s.hashAll(ctx, p.jobs, p.memo)
	for i, job := range p.jobs {
		res := <-results[i]
		if err := ctx.Err(); err != nil {
			return err
		}
		if res.err != nil {
			s.logger.Warn("skipping unreadable file", "error", &ReadError{Path: job.obs.realPath, Err: res.err})
			p.stats.Failed++
			continue
		}
		if res.fresh {
			p.stats.Hashed++
		}

		result, err := s.commitEntry(ctx, func(tx IndexStore) (outcome, error) {
			if res.fresh {
				if err := s.storeChecksum(ctx, tx, job.obs.realPath, job.obs.stat, res.digest); err != nil {
					return outcomeNone, err
				}
			}
			if job.rowID != 0 {
				if err := tx.UpdateFileChecksum(ctx, job.rowID, res.digest); err != nil {
					return outcomeNone, fmt.Errorf("updating checksum: %w", err)
				}
				return outcomeNone, nil
			}
			return s.applyContentMatch(ctx, tx, p, job.obs, res.digest)
		})
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.logger.Error("indexing entry failed", "path", job.obs.virtualPath(), "error", err)
			p.stats.Failed++
			continue
		}
		p.stats.record(result)
	}
	return nil
}

// applyContentMatch places a file by its digest: onto a tombstoned row with
// the same content (moved), next to a live one (copied, tags inherited) or
// as a new row. A quick pass only considers tagged rows.
func (s *IndexService) applyContentMatch(ctx context.Context, tx IndexStore, p *scanPass, o *observed, checksum string) (outcome, error) {
	row, err := tx.FindFileBySizeAndChecksum(ctx, o.stat.Size, checksum, !p.full, p.epoch)
	if err != nil {
		return outcomeNone, fmt.Errorf("finding content match: %w", err)
	}
	switch {
	case row == nil:
		if _, err := tx.InsertFile(ctx, insertParams(o, checksum, "")); err != nil {
			return outcomeNone, fmt.Errorf("inserting: %w", err)
		}
		return outcomeCreated, nil
	case row.DeleteTime.Valid:
		if err := tx.ReviveFile(ctx, reviveParams(row.ID, o, checksum)); err != nil {
			return outcomeNone, fmt.Errorf("moving row: %w", err)
		}
		return outcomeMoved, nil
	default:
		if _, err := tx.InsertFile(ctx, insertParams(o, checksum, row.Tags)); err != nil {
			return outcomeNone, fmt.Errorf("copying row: %w", err)
		}
		return outcomeCopied, nil
	}
}

// commitEntry runs fn in its own transaction, retrying lock contention.
// Counters are applied by the caller from the returned outcome, so a retried
// attempt is never counted twice.
func (s *IndexService) commitEntry(ctx context.Context, fn func(IndexStore) (outcome, error)) (outcome, error) {
	return util.RetryWithResult(ctx, func() (outcome, error) {
		var result outcome
		err := s.database.InTx(ctx, func(tx IndexStore) error {
			var err error
			result, err = fn(tx)
			return err
		})
		return result, err
	})
}

// knownChecksum returns the digest of an entry without hashing: from the
// cache, else carried over from row when size and mtime are unchanged.
func (s *IndexService) knownChecksum(ctx context.Context, tx IndexStore, o *observed, row *sqlc.File) (string, error) {
	if !o.stat.IsRegular() {
		return "", nil
	}
	checksum, err := s.cachedChecksum(ctx, tx, o.realPath, o.stat)
	if err != nil {
		return "", err
	}
	if checksum == "" && row.Checksum.Valid && !row.IsDir &&
		row.Size == o.stat.Size && row.Mtime == o.stat.Mtime {
		checksum = row.Checksum.String
	}
	return checksum, nil
}

func sameStat(row *sqlc.File, st *FileStat) bool {
	return row.Size == st.Size && row.Mtime == st.Mtime && row.Dev == st.Dev && row.Ino == st.Ino
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func insertParams(o *observed, checksum, tags string) sqlc.InsertFileParams {
	return sqlc.InsertFileParams{
		Path:     o.path,
		Name:     o.name,
		Size:     o.stat.Size,
		Mtime:    o.stat.Mtime,
		Dev:      o.stat.Dev,
		Ino:      o.stat.Ino,
		Checksum: nullString(checksum),
		IsDir:    o.stat.IsDir,
		Tags:     tags,
	}
}

func reviveParams(id int64, o *observed, checksum string) sqlc.ReviveFileParams {
	return sqlc.ReviveFileParams{
		Path:     o.path,
		Name:     o.name,
		Size:     o.stat.Size,
		Mtime:    o.stat.Mtime,
		Dev:      o.stat.Dev,
		Ino:      o.stat.Ino,
		Checksum: nullString(checksum),
		IsDir:    o.stat.IsDir,
		ID:       id,
	}
}
