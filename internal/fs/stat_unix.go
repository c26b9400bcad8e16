//go:build unix

package fs

import (
	"io/fs"
	"syscall"
)

// statIdentity extracts the device and inode numbers of an entry.
func statIdentity(info fs.FileInfo) (dev, ino int64) {
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return 0, 0
	}
	return int64(st.Dev), int64(st.Ino)
}
