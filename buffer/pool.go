// Package buffer implements the page manager / buffer pool (spec.md
// §4.5): a bounded in-memory cache of page frames, backed by the disk
// manager, that serves pinned handles to callers and evicts along
// least-recently-used order when it must make room for a miss.
package buffer

import (
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/dbsystems/pagestore/disk"
	"github.com/dbsystems/pagestore/lru"
	"github.com/dbsystems/pagestore/page"
	"github.com/dbsystems/pagestore/storeerr"
)

// Handle is a reference-counted, lockable wrapper around a cached page
// frame. Callers must hold the Handle's lock (RLock for reads, Lock for
// writes that call MarkDirty) for the duration of their access, and must
// Unpin when done.
type Handle struct {
	sync.RWMutex
	frame    *page.Frame
	pinCount int32
}

// Frame returns the underlying page frame. Callers must hold the
// handle's lock while touching its bytes.
func (h *Handle) Frame() *page.Frame { return h.frame }

func (h *Handle) pin() int32   { return atomic.AddInt32(&h.pinCount, 1) }
func (h *Handle) unpin() int32 { return atomic.AddInt32(&h.pinCount, -1) }
func (h *Handle) pins() int32  { return atomic.LoadInt32(&h.pinCount) }

// Pool is the buffer pool. A single mutex serializes every operation
// that touches the pages map, the free list, or the usage tracker,
// matching the minimum-correctness design spec.md §5 calls out (a
// pool-wide lock, plus a per-frame lock for the bytes themselves).
type Pool struct {
	mu                     sync.Mutex
	disk                   *disk.Manager
	tracker                *lru.Tracker
	pages                  map[page.ID]*Handle
	emptyPages             []page.ID
	maxPages               int
	pageSize               int
	skipCleanEvictionWrite bool
	log                    *zap.Logger
}

// Option configures a Pool at construction time.
type Option func(*Pool)

// WithSkipCleanEvictionWrite makes eviction skip the write-back for a
// victim frame that was never marked dirty (spec.md §9 open question:
// this is a permitted refinement, not the minimum-correctness baseline,
// since a clean frame's bytes already match disk).
func WithSkipCleanEvictionWrite(skip bool) Option {
	return func(p *Pool) { p.skipCleanEvictionWrite = skip }
}

// New builds a Pool of at most maxPages frames, each pageSize bytes,
// backed by d and ordered for eviction by tracker.
func New(d *disk.Manager, tracker *lru.Tracker, maxPages, pageSize int, logger *zap.Logger, opts ...Option) *Pool {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &Pool{
		disk:     d,
		tracker:  tracker,
		pages:    make(map[page.ID]*Handle),
		maxPages: maxPages,
		pageSize: pageSize,
		log:      logger,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// AddEmptyPages grows fileName by n pages via the disk manager, fills the
// cache with up to min(free_cache_slots, n) of them as zeroed frames
// (each inserted into the usage tracker as if just touched), and records
// all n ids in the free list (spec.md's add_empty_pages).
func (p *Pool) AddEmptyPages(n int, fileName string) error {
	ids, err := p.disk.AllocatePages(n, fileName)
	if err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	freeSlots := p.maxPages - len(p.pages)
	if freeSlots < 0 {
		freeSlots = 0
	}
	toCache := n
	if freeSlots < toCache {
		toCache = freeSlots
	}
	for i := 0; i < toCache; i++ {
		id := ids[i]
		p.pages[id] = &Handle{frame: page.NewFrame(id, p.pageSize)}
		p.tracker.Insert(id)
	}
	p.emptyPages = append(p.emptyPages, ids...)
	return nil
}

// NextFreePage pops an id from the free list and resolves it via
// FindPage, returning a pinned handle. Returns NoFreePages if the free
// list is empty (spec.md's next_free_page).
func (p *Pool) NextFreePage() (*Handle, error) {
	p.mu.Lock()
	if len(p.emptyPages) == 0 {
		p.mu.Unlock()
		return nil, storeerr.Wrap(storeerr.NoFreePages, "no unallocated pages remain")
	}
	id := p.emptyPages[0]
	p.emptyPages = p.emptyPages[1:]
	p.mu.Unlock()

	return p.FindPage(id)
}

// FindPage pins and returns the handle for id, loading it from disk on a
// cache miss, evicting along LRU order first if the pool is full
// (spec.md's find_page).
func (p *Pool) FindPage(id page.ID) (*Handle, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if h, ok := p.pages[id]; ok {
		h.pin()
		p.tracker.Touch(id)
		return h, nil
	}

	if p.maxPages <= 0 {
		return nil, storeerr.Wrap(storeerr.OutOfBufferSlots, "pool has no buffer slots configured")
	}

	if len(p.pages) >= p.maxPages {
		if err := p.evictLocked(); err != nil {
			return nil, storeerr.Wrap(storeerr.OutOfBufferSlots, "find_page(%d): %v", id, err)
		}
	}

	data, err := p.disk.LoadPage(id)
	if err != nil {
		return nil, err
	}
	f := page.WrapFrame(id, data)
	h := &Handle{frame: f}
	h.pin()
	p.pages[id] = h
	p.tracker.Insert(id)
	return h, nil
}

// Unpin releases a reference obtained from FindPage. If dirty is true
// the frame is flagged as diverging from disk; Unpin never flushes
// eagerly, the write happens on eviction or Close.
func (p *Pool) Unpin(id page.ID, dirty bool) error {
	p.mu.Lock()
	h, ok := p.pages[id]
	p.mu.Unlock()
	if !ok {
		return storeerr.Wrap(storeerr.UnknownPageId, "unpin: page %d is not cached", id)
	}
	if dirty {
		h.frame.MarkDirty()
	}
	if h.unpin() < 0 {
		atomic.StoreInt32(&h.pinCount, 0)
		return storeerr.Wrap(storeerr.CorruptPage, "unpin: page %d was not pinned", id)
	}
	return nil
}

// evictLocked picks the least-recently-used unpinned cached page,
// flushes it if dirty, and removes it from the pool. p.mu must be held.
func (p *Pool) evictLocked() error {
	for _, id := range p.tracker.Keys() {
		h, ok := p.pages[id]
		if !ok || h.pins() > 0 {
			continue
		}
		if h.frame.Dirty() || !p.skipCleanEvictionWrite {
			if err := p.disk.SavePage(id, h.frame.Data()); err != nil {
				return err
			}
			h.frame.ClearDirty()
		}
		delete(p.pages, id)
		p.tracker.Remove(id)
		p.log.Debug("evicted page", zap.Uint64("page_id", uint64(id)))
		return nil
	}
	return storeerr.Wrap(storeerr.AllPagesPinned, "no unpinned page to evict out of %d cached", len(p.pages))
}

// Close flushes every dirty cached page to disk. Pinned pages are
// flushed too: Close is a shutdown operation, not a concurrent one.
func (p *Pool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	for id, h := range p.pages {
		if !h.frame.Dirty() {
			continue
		}
		if err := p.disk.SavePage(id, h.frame.Data()); err != nil {
			return err
		}
		h.frame.ClearDirty()
	}
	return nil
}

// Len returns the number of frames currently cached.
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.pages)
}

// PageSize returns the fixed page size this pool was configured with.
func (p *Pool) PageSize() int { return p.pageSize }
