package tagspace

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// hashJob is an entry waiting for its digest. rowID is set for rows that
// were already matched and only need the checksum filled in.
type hashJob struct {
	obs   *observed
	rowID int64
}

type hashResult struct {
	digest string
	fresh  bool // computed by this job rather than shared
	err    error
}

// hashMemo computes each identity's digest at most once per pass, even when
// several workers ask for it at the same time.
type hashMemo struct {
	group singleflight.Group
	mu    sync.Mutex
	done  map[string]string
}

func newHashMemo() *hashMemo {
	return &hashMemo{done: make(map[string]string)}
}

func (m *hashMemo) lookup(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.done[key]
	return d, ok
}

func (m *hashMemo) do(key string, fn func() (string, error)) (digest string, fresh bool, err error) {
	if d, ok := m.lookup(key); ok {
		return d, false, nil
	}
	v, err, _ := m.group.Do(key, func() (any, error) {
		if d, ok := m.lookup(key); ok {
			return d, nil
		}
		fresh = true
		d, err := fn()
		if err != nil {
			return "", err
		}
		m.mu.Lock()
		m.done[key] = d
		m.mu.Unlock()
		return d, nil
	})
	if err != nil {
		return "", fresh, err
	}
	return v.(string), fresh, nil
}

// hashAll hashes jobs on a bounded pool. Result i arrives on channel i, so
// the caller can apply results in queue order while later files hash.
func (s *IndexService) hashAll(ctx context.Context, jobs []hashJob, memo *hashMemo) []chan hashResult {
	results := make([]chan hashResult, len(jobs))
	for i := range results {
		results[i] = make(chan hashResult, 1)
	}

	go func() {
		var g errgroup.Group
		g.SetLimit(s.hashWorkers)
		for i, job := range jobs {
			g.Go(func() error {
				if err := ctx.Err(); err != nil {
					results[i] <- hashResult{err: err}
					return nil
				}
				digest, fresh, err := memo.do(job.obs.identityKey(), func() (string, error) {
					return s.hasher.Hash(ctx, job.obs.realPath, job.obs.stat, s.progress.Add)
				})
				if !fresh {
					s.progress.Add(job.obs.stat.Size)
				}
				results[i] <- hashResult{digest: digest, fresh: fresh, err: err}
				return nil
			})
		}
		_ = g.Wait()
	}()

	return results
}
