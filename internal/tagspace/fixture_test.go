package tagspace_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"tagspace/internal/database"
	"tagspace/internal/database/sqlc"
	"tagspace/internal/hashing"
	"tagspace/internal/tagspace"
	"tagspace/internal/testutil"
)

type fixture struct {
	db    *database.SQLiteDatabase
	fsmgr *testutil.MockFilesystemManager
	clock *testutil.StubClock
	svc   *tagspace.IndexService
}

// newFixture builds a service over an in-memory index and filesystem with
// one source, "photos", rooted at /data/photos.
func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := testutil.NewTestDatabase(t)
	fsmgr := testutil.NewMockFilesystemManager()
	fsmgr.AddDirectory("/data/photos")
	clock := testutil.FixedClock()
	svc := tagspace.NewIndexService(db, fsmgr, hashing.NewSHA256Hasher(fsmgr), tagspace.NewNopLogger(), clock, testutil.NewStubIDGenerator())
	svc.SetHashWorkers(4)

	require.NoError(t, svc.ReplaceSources(context.Background(), []string{"photos|/data/photos"}))
	return &fixture{db: db, fsmgr: fsmgr, clock: clock, svc: svc}
}

func (f *fixture) update(t *testing.T, full bool) *tagspace.ScanStats {
	t.Helper()
	f.clock.Advance(time.Minute)
	stats, err := f.svc.UpdateIndex(context.Background(), full)
	require.NoError(t, err)
	return stats
}

// row returns the live row at a virtual path, or nil.
func (f *fixture) row(t *testing.T, virtualPath string) *sqlc.File {
	t.Helper()
	path, name := tagspace.SplitVirtual(virtualPath)
	row, err := f.db.FindLiveFileByPathName(context.Background(), path, name)
	require.NoError(t, err)
	return row
}

func (f *fixture) mustRow(t *testing.T, virtualPath string) *sqlc.File {
	t.Helper()
	row := f.row(t, virtualPath)
	require.NotNil(t, row, "no live row at %s", virtualPath)
	return row
}

func (f *fixture) setTags(t *testing.T, virtualPath string, tags ...string) {
	t.Helper()
	require.NoError(t, f.svc.SetTags(context.Background(), f.mustRow(t, virtualPath).ID, tags))
}
