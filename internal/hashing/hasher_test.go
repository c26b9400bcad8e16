package hashing_test

import (
	"context"
	"errors"
	"testing"

	"tagspace/internal/hashing"
	"tagspace/internal/testutil"
)

func TestSHA256Hasher_Hash(t *testing.T) {
	fsmgr := testutil.NewMockFilesystemManager()
	content := []byte("hello, tagspace")
	fsmgr.AddFile("/data/a.txt", content)

	st, err := fsmgr.Stat("/data/a.txt")
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}

	var reported int64
	h := hashing.NewSHA256Hasher(fsmgr)
	got, err := h.Hash(context.Background(), "/data/a.txt", st, func(n int64) { reported += n })
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	if want := testutil.SHA256Hex(content); got != want {
		t.Errorf("Hash() = %s, want %s", got, want)
	}
	if reported != int64(len(content)) {
		t.Errorf("progress reported %d bytes, want %d", reported, len(content))
	}
}

func TestSHA256Hasher_HashEmptyFile(t *testing.T) {
	fsmgr := testutil.NewMockFilesystemManager()
	fsmgr.AddFile("/data/empty", nil)

	got, err := hashing.NewSHA256Hasher(fsmgr).Hash(context.Background(), "/data/empty", nil, nil)
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	if want := testutil.SHA256Hex(nil); got != want {
		t.Errorf("Hash() = %s, want %s", got, want)
	}
}

func TestSHA256Hasher_RejectsChangedFile(t *testing.T) {
	fsmgr := testutil.NewMockFilesystemManager()
	fsmgr.AddFile("/data/a.txt", []byte("before"))

	st, err := fsmgr.Stat("/data/a.txt")
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	fsmgr.WriteFile("/data/a.txt", []byte("after!"))

	_, err = hashing.NewSHA256Hasher(fsmgr).Hash(context.Background(), "/data/a.txt", st, nil)
	if err == nil {
		t.Fatal("Hash() succeeded on a file that changed since it was observed")
	}
}

func TestSHA256Hasher_OpenError(t *testing.T) {
	fsmgr := testutil.NewMockFilesystemManager()
	fsmgr.AddFile("/data/a.txt", []byte("x"))
	permErr := errors.New("permission denied")
	fsmgr.FailOpen("/data/a.txt", permErr)

	_, err := hashing.NewSHA256Hasher(fsmgr).Hash(context.Background(), "/data/a.txt", nil, nil)
	if !errors.Is(err, permErr) {
		t.Errorf("Hash() error = %v, want %v", err, permErr)
	}
}

func TestSHA256Hasher_Cancelled(t *testing.T) {
	fsmgr := testutil.NewMockFilesystemManager()
	fsmgr.AddFile("/data/a.txt", []byte("x"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := hashing.NewSHA256Hasher(fsmgr).Hash(ctx, "/data/a.txt", nil, nil)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Hash() error = %v, want context.Canceled", err)
	}
}
