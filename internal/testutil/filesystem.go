package testutil

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"
	"time"

	"tagspace/internal/tagspace"
)

// MockNode is the content and identity shared by every name that links to it.
type MockNode struct {
	Content []byte
	Mode    fs.FileMode
	ModTime time.Time
	Ino     int64
}

// MockFilesystemManager is an in-memory tree for testing. Paths are
// slash-separated and absolute. Every mutation advances the mock clock by
// one second, so changed files always get a new mtime.
type MockFilesystemManager struct {
	mu           sync.Mutex
	nodes        map[string]*MockNode
	nextIno      int64
	now          time.Time
	zeroIdentity bool
	statErrs     map[string]error
	openErrs     map[string]error
	opens        map[string]int
	ignore       func(relPath string, isDir bool) bool

	// OnOpen, when set, runs before every Open.
	OnOpen func(realPath string)
}

// NewMockFilesystemManager creates an empty tree containing only "/".
func NewMockFilesystemManager() *MockFilesystemManager {
	m := &MockFilesystemManager{
		nodes:    make(map[string]*MockNode),
		now:      time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC),
		statErrs: make(map[string]error),
		openErrs: make(map[string]error),
		opens:    make(map[string]int),
	}
	m.nodes["/"] = m.newNode(nil, fs.ModeDir|0755)
	return m
}

func (m *MockFilesystemManager) newNode(content []byte, mode fs.FileMode) *MockNode {
	m.nextIno++
	m.now = m.now.Add(time.Second)
	return &MockNode{Content: content, Mode: mode, ModTime: m.now, Ino: m.nextIno}
}

func (m *MockFilesystemManager) mkdirAll(p string) {
	if p == "/" || p == "." {
		return
	}
	if _, ok := m.nodes[p]; ok {
		return
	}
	m.mkdirAll(path.Dir(p))
	m.nodes[p] = m.newNode(nil, fs.ModeDir|0755)
}

// AddDirectory creates a directory and any missing parents.
func (m *MockFilesystemManager) AddDirectory(p string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mkdirAll(path.Clean(p))
}

// AddFile creates or replaces a file with a new identity.
func (m *MockFilesystemManager) AddFile(p string, content []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p = path.Clean(p)
	m.mkdirAll(path.Dir(p))
	m.nodes[p] = m.newNode(content, 0644)
}

// AddSymlink creates a symbolic link.
func (m *MockFilesystemManager) AddSymlink(p, target string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p = path.Clean(p)
	m.mkdirAll(path.Dir(p))
	m.nodes[p] = m.newNode([]byte(target), fs.ModeSymlink|0777)
}

// WriteFile rewrites a file in place: identity kept, mtime advanced.
func (m *MockFilesystemManager) WriteFile(p string, content []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := m.nodes[path.Clean(p)]
	m.now = m.now.Add(time.Second)
	n.Content = content
	n.ModTime = m.now
}

// Rename moves an entry, and everything below it, keeping identities.
func (m *MockFilesystemManager) Rename(oldPath, newPath string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	oldPath, newPath = path.Clean(oldPath), path.Clean(newPath)
	m.mkdirAll(path.Dir(newPath))
	for p, n := range m.subtree(oldPath) {
		delete(m.nodes, p)
		m.nodes[newPath+strings.TrimPrefix(p, oldPath)] = n
	}
}

// Copy duplicates a file under a new identity and a new mtime.
func (m *MockFilesystemManager) Copy(src, dst string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	dst = path.Clean(dst)
	n := m.nodes[path.Clean(src)]
	m.mkdirAll(path.Dir(dst))
	m.nodes[dst] = m.newNode(bytes.Clone(n.Content), n.Mode)
}

// HardLink makes dst another name for src.
func (m *MockFilesystemManager) HardLink(src, dst string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	dst = path.Clean(dst)
	m.mkdirAll(path.Dir(dst))
	m.nodes[dst] = m.nodes[path.Clean(src)]
}

// Remove deletes an entry and everything below it.
func (m *MockFilesystemManager) Remove(p string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for sub := range m.subtree(path.Clean(p)) {
		delete(m.nodes, sub)
	}
}

func (m *MockFilesystemManager) subtree(root string) map[string]*MockNode {
	out := make(map[string]*MockNode)
	for p, n := range m.nodes {
		if p == root || strings.HasPrefix(p, root+"/") {
			out[p] = n
		}
	}
	return out
}

// SetZeroIdentity makes Stat report device and inode 0, like filesystems
// without stable inode numbers.
func (m *MockFilesystemManager) SetZeroIdentity(zero bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.zeroIdentity = zero
}

// FailStat makes Stat of p return err.
func (m *MockFilesystemManager) FailStat(p string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statErrs[path.Clean(p)] = err
}

// FailOpen makes Open of p return err.
func (m *MockFilesystemManager) FailOpen(p string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.openErrs[path.Clean(p)] = err
}

// SetIgnore installs the ignore predicate.
func (m *MockFilesystemManager) SetIgnore(fn func(relPath string, isDir bool) bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ignore = fn
}

// OpenCount returns how many times p has been opened.
func (m *MockFilesystemManager) OpenCount(p string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.opens[path.Clean(p)]
}

// TotalOpens returns how many files have been opened in total.
func (m *MockFilesystemManager) TotalOpens() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := 0
	for _, n := range m.opens {
		total += n
	}
	return total
}

func (m *MockFilesystemManager) Stat(realPath string) (*tagspace.FileStat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := path.Clean(realPath)
	if err := m.statErrs[p]; err != nil {
		return nil, err
	}
	n, ok := m.nodes[p]
	if !ok {
		return nil, fmt.Errorf("stat %s: %w", p, fs.ErrNotExist)
	}

	st := &tagspace.FileStat{
		Name:  path.Base(p),
		Size:  int64(len(n.Content)),
		Mtime: tagspace.UnixSeconds(n.ModTime),
		IsDir: n.Mode.IsDir(),
		Mode:  n.Mode,
	}
	if !m.zeroIdentity {
		st.Dev, st.Ino = 1, n.Ino
	}
	return st, nil
}

func (m *MockFilesystemManager) ReadDir(realPath string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	dir := path.Clean(realPath)
	n, ok := m.nodes[dir]
	if !ok {
		return nil, fmt.Errorf("readdir %s: %w", dir, fs.ErrNotExist)
	}
	if !n.Mode.IsDir() {
		return nil, fmt.Errorf("readdir %s: not a directory", dir)
	}

	var names []string
	for p := range m.nodes {
		if p != dir && path.Dir(p) == dir {
			names = append(names, path.Base(p))
		}
	}
	sort.Strings(names)
	return names, nil
}

func (m *MockFilesystemManager) Open(realPath string) (io.ReadCloser, error) {
	if m.OnOpen != nil {
		m.OnOpen(realPath)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	p := path.Clean(realPath)
	m.opens[p]++
	if err := m.openErrs[p]; err != nil {
		return nil, err
	}
	n, ok := m.nodes[p]
	if !ok {
		return nil, fmt.Errorf("open %s: %w", p, fs.ErrNotExist)
	}
	if !n.Mode.IsRegular() {
		return nil, fmt.Errorf("open %s: not a regular file", p)
	}
	return io.NopCloser(bytes.NewReader(bytes.Clone(n.Content))), nil
}

func (m *MockFilesystemManager) IsIgnored(relPath string, isDir bool) bool {
	m.mu.Lock()
	fn := m.ignore
	m.mu.Unlock()
	return fn != nil && fn(relPath, isDir)
}

var _ tagspace.FilesystemManager = (*MockFilesystemManager)(nil)

// SHA256Hex is the checksum the index stores for a file holding data.
func SHA256Hex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
