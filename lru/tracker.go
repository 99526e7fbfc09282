// Package lru implements the usage tracker (spec.md §4.4): a priority
// structure ordering page ids by descending recency of access, so the
// buffer pool's eviction scan can walk oldest-to-newest.
//
// It is a thin wrapper around hashicorp/golang-lru/v2's simplelru.LRU,
// which already maintains exactly the ordered structure the spec
// describes (a doubly linked list plus a hash index), the same dependency
// conuredb/conuredb, perkeep/perkeep, operator-framework/operator-registry
// and rpcpool/yellowstone-faithful carry for this category of recency
// cache.
package lru

import (
	lruv2 "github.com/hashicorp/golang-lru/v2/simplelru"

	"github.com/dbsystems/pagestore/page"
)

// Tracker orders page ids by descending recency of access. Inserting an
// id while already at capacity drops the oldest entry, so a Tracker
// sized to at least the buffer pool's max_num_pages never evicts on its
// own and the buffer pool alone decides what gets evicted. New does not
// check the capacity against the pool's size.
type Tracker struct {
	inner *lruv2.LRU[page.ID, struct{}]
}

// New builds a Tracker sized for capacity distinct page ids.
func New(capacity int) *Tracker {
	if capacity < 1 {
		capacity = 1
	}
	inner, err := lruv2.NewLRU[page.ID, struct{}](capacity, nil)
	if err != nil {
		// NewLRU only errors on capacity <= 0, which we've just ruled out.
		panic(err)
	}
	return &Tracker{inner: inner}
}

// Insert records id with "now" recency. If id is already tracked this is
// the same as Touch.
func (t *Tracker) Insert(id page.ID) {
	t.inner.Add(id, struct{}{})
}

// Touch updates id's recency to "now". No-op if id isn't tracked.
func (t *Tracker) Touch(id page.ID) {
	t.inner.Get(id)
}

// PeekLRU returns the least-recently-used id without removing it.
func (t *Tracker) PeekLRU() (page.ID, bool) {
	id, _, ok := t.inner.GetOldest()
	return id, ok
}

// Remove forgets id.
func (t *Tracker) Remove(id page.ID) {
	t.inner.Remove(id)
}

// Contains reports whether id is currently tracked.
func (t *Tracker) Contains(id page.ID) bool {
	return t.inner.Contains(id)
}

// Len returns the number of tracked ids.
func (t *Tracker) Len() int {
	return t.inner.Len()
}

// Keys returns every tracked id ordered oldest (least recently used)
// first, matching the order evict_next_page scans in.
func (t *Tracker) Keys() []page.ID {
	return t.inner.Keys()
}
