package tagspace

import "context"

// Hasher computes content digests. expect is the stat taken when the entry
// was observed; implementations fail if the file changed while being read.
// progress receives byte counts as they are read and may be nil.
type Hasher interface {
	Hash(ctx context.Context, realPath string, expect *FileStat, progress func(n int64)) (string, error)
}
