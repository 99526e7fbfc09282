// Package disk implements the disk manager (spec.md §4.3): it maps page
// ids to a (file, byte offset) pair, grows files to allocate fresh pages,
// and performs the whole-page reads and writes the buffer pool calls on a
// cache miss or eviction.
//
// The page id -> (file, offset) map and the next-page-id counter are held
// only in memory; persisting either across restarts is an open question
// spec.md leaves to a higher layer (§9).
package disk

import (
	"io"
	"math"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sys/unix"

	"github.com/dbsystems/pagestore/page"
	"github.com/dbsystems/pagestore/storeerr"
)

type location struct {
	file   string
	offset int64
}

type openFile struct {
	f    *os.File
	size int64
}

// Manager is the disk manager. It is safe for concurrent use; all
// operations are serialized by a single mutex, matching the minimum
// correct implementation spec.md §5 describes for the buffer pool above
// it (I/O happens with locks held here deliberately, since each
// operation here is itself the blocking suspension point the caller is
// expected to account for).
type Manager struct {
	mu         sync.Mutex
	pageSize   int
	baseDir    string
	nextPageID page.ID
	locations  map[page.ID]location
	files      map[string]*openFile
	log        *zap.Logger
}

// New creates a disk manager rooted at baseDir, managing pages of the
// given size. nextPageID starts at 0 and is assigned monotonically for
// the lifetime of the Manager.
func New(baseDir string, pageSize int, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		pageSize:  pageSize,
		baseDir:   baseDir,
		locations: make(map[page.ID]location),
		files:     make(map[string]*openFile),
		log:       logger,
	}
}

// AllocatePages creates (or reopens) fileName, extends it by n pages, and
// returns n fresh page ids mapped to the newly grown region.
func (m *Manager) AllocatePages(n int, fileName string) ([]page.ID, error) {
	if n <= 0 {
		return nil, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	of, err := m.openOrCreate(fileName)
	if err != nil {
		return nil, err
	}

	if uint64(n) > math.MaxInt64/uint64(m.pageSize) {
		return nil, storeerr.Wrap(storeerr.IoError, "allocate %d pages of size %d in %q: offset overflow", n, m.pageSize, fileName)
	}
	grow := int64(n) * int64(m.pageSize)
	startOffset := of.size
	newSize := startOffset + grow

	// Extend the file by writing a single byte at the new last position,
	// per spec.md §4.3.
	if _, err := of.f.WriteAt([]byte{0}, newSize-1); err != nil {
		return nil, storeerr.Wrap(storeerr.IoError, "growing %q to %d bytes", fileName, newSize)
	}
	of.size = newSize

	ids := make([]page.ID, n)
	for i := 0; i < n; i++ {
		id := m.nextPageID
		m.nextPageID++
		ids[i] = id
		m.locations[id] = location{file: fileName, offset: startOffset + int64(i)*int64(m.pageSize)}
	}
	m.log.Debug("allocated pages", zap.String("file", fileName), zap.Int("count", n))
	return ids, nil
}

// LoadPage reads exactly pageSize bytes for id.
func (m *Manager) LoadPage(id page.ID) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	loc, ok := m.locations[id]
	if !ok {
		return nil, storeerr.Wrap(storeerr.UnknownPageId, "page %d", id)
	}
	of, err := m.openOrCreate(loc.file)
	if err != nil {
		return nil, err
	}

	buf := make([]byte, m.pageSize)
	n, err := of.f.ReadAt(buf, loc.offset)
	if err != nil && !(err == io.EOF && n == m.pageSize) {
		return nil, storeerr.Wrap(storeerr.IoError, "reading page %d from %q at offset %d", id, loc.file, loc.offset)
	}
	return buf, nil
}

// SavePage writes exactly pageSize bytes for id.
func (m *Manager) SavePage(id page.ID, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	loc, ok := m.locations[id]
	if !ok {
		return storeerr.Wrap(storeerr.UnknownPageId, "page %d", id)
	}
	if len(data) != m.pageSize {
		return storeerr.Wrap(storeerr.IoError, "page %d: write of %d bytes, want %d", id, len(data), m.pageSize)
	}
	of, err := m.openOrCreate(loc.file)
	if err != nil {
		return err
	}
	if _, err := of.f.WriteAt(data, loc.offset); err != nil {
		return storeerr.Wrap(storeerr.IoError, "writing page %d to %q at offset %d", id, loc.file, loc.offset)
	}
	return nil
}

// Close flushes nothing (the buffer pool owns dirty pages) but releases
// every open file descriptor and its advisory lock.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	var firstErr error
	for name, of := range m.files {
		if err := of.f.Close(); err != nil && firstErr == nil {
			firstErr = storeerr.Wrap(storeerr.IoError, "closing %q", name)
		}
	}
	m.files = make(map[string]*openFile)
	return firstErr
}

func (m *Manager) openOrCreate(name string) (*openFile, error) {
	if of, ok := m.files[name]; ok {
		return of, nil
	}
	path := filepath.Join(m.baseDir, name)
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, storeerr.Wrap(storeerr.IoError, "opening %q", path)
	}
	// Advisory exclusive lock: guards against a second process opening the
	// same database file concurrently, in the spirit of Giulio2002/gdbx's
	// lock.go (which holds a process-exclusive lock over its lock file via
	// the same golang.org/x/sys/unix primitives).
	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		f.Close()
		return nil, storeerr.Wrap(storeerr.IoError, "locking %q: already open by another process", path)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, storeerr.Wrap(storeerr.IoError, "statting %q", path)
	}
	of := &openFile{f: f, size: info.Size()}
	m.files[name] = of
	return of, nil
}
