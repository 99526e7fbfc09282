package index

import (
	"testing"

	"github.com/dbsystems/pagestore/page"
)

func newTestView(t *testing.T) *View {
	t.Helper()
	f := page.NewFrame(1, 256)
	v, err := InitPage(f, page.IndexLeaf, 0, Uint64Column{})
	if err != nil {
		t.Fatalf("InitPage() = %v", err)
	}
	return v
}

func TestInitPageStartsEmpty(t *testing.T) {
	v := newTestView(t)
	h := v.ReadSlotsHeader()
	if h.SlotCount != 0 || h.FragmentedCount != 0 {
		t.Fatalf("fresh page should have no slots, got %+v", h)
	}
	if h.NextEmptyOffset != 255 {
		t.Fatalf("fresh page next_empty_offset = %d, want 255", h.NextEmptyOffset)
	}
}

var col = Uint64Column{}

// TestAppendKeyMaintainsSortOrder matches spec.md's scenario 4: keys
// appended out of order end up iterated in ascending order.
func TestAppendKeyMaintainsSortOrder(t *testing.T) {
	v := newTestView(t)
	inserts := []uint64{30, 10, 20}
	for i, k := range inserts {
		if err := v.AppendKey(page.ID(100+i), uint16(i), col.Encode(k)); err != nil {
			t.Fatalf("AppendKey(%d) = %v", k, err)
		}
	}

	entries := v.Iterate()
	want := []uint64{10, 20, 30}
	if len(entries) != len(want) {
		t.Fatalf("Iterate() returned %d entries, want %d", len(entries), len(want))
	}
	for i, e := range entries {
		if got := col.Decode(e.Key); got != want[i] {
			t.Fatalf("entries[%d] = %d, want %d", i, got, want[i])
		}
	}
}

// TestAppendKeyLeftwardStableTie matches spec.md's scenario 5: appending
// an equal key places the new entry before the existing one with the
// same key, not after.
func TestAppendKeyLeftwardStableTie(t *testing.T) {
	v := newTestView(t)
	if err := v.AppendKey(1, 0, col.Encode(10)); err != nil {
		t.Fatalf("AppendKey(1) = %v", err)
	}
	if err := v.AppendKey(2, 0, col.Encode(10)); err != nil {
		t.Fatalf("AppendKey(2) = %v", err)
	}

	entries := v.Iterate()
	if len(entries) != 2 {
		t.Fatalf("Iterate() returned %d entries, want 2", len(entries))
	}
	if entries[0].ChildPageID != 2 || entries[1].ChildPageID != 1 {
		t.Fatalf("tie-break: got child order %d, %d; want 2, 1 (leftward-stable)", entries[0].ChildPageID, entries[1].ChildPageID)
	}
}

func TestAppendKeyPageFull(t *testing.T) {
	f := page.NewFrame(1, 64)
	v, err := InitPage(f, page.IndexLeaf, 0, col)
	if err != nil {
		t.Fatalf("InitPage() = %v", err)
	}
	var lastErr error
	for i := 0; i < 64; i++ {
		lastErr = v.AppendKey(page.ID(i), 0, col.Encode(uint64(i)))
		if lastErr != nil {
			break
		}
	}
	if lastErr == nil {
		t.Fatal("expected AppendKey() to eventually return PageFull on a small page")
	}
}

func TestMarkFragmentedExcludesFromIterate(t *testing.T) {
	v := newTestView(t)
	for i, k := range []uint64{10, 20, 30} {
		if err := v.AppendKey(page.ID(i), 0, col.Encode(k)); err != nil {
			t.Fatalf("AppendKey(%d) = %v", k, err)
		}
	}
	if err := v.MarkFragmented(1); err != nil {
		t.Fatalf("MarkFragmented(1) = %v", err)
	}
	entries := v.Iterate()
	if len(entries) != 2 {
		t.Fatalf("Iterate() after MarkFragmented = %d entries, want 2", len(entries))
	}
	if v.ReadFragmentedCount() != 1 {
		t.Fatalf("ReadFragmentedCount() = %d, want 1", v.ReadFragmentedCount())
	}
}

func TestCompactReclaimsFragmentedSpace(t *testing.T) {
	v := newTestView(t)
	for i, k := range []uint64{10, 20, 30} {
		if err := v.AppendKey(page.ID(i), 0, col.Encode(k)); err != nil {
			t.Fatalf("AppendKey(%d) = %v", k, err)
		}
	}
	if err := v.MarkFragmented(1); err != nil {
		t.Fatalf("MarkFragmented(1) = %v", err)
	}
	before := v.ReadSlotsHeader()

	if err := v.Compact(); err != nil {
		t.Fatalf("Compact() = %v", err)
	}
	after := v.ReadSlotsHeader()

	if after.SlotCount != 2 {
		t.Fatalf("Compact() left SlotCount = %d, want 2", after.SlotCount)
	}
	if after.FragmentedCount != 0 {
		t.Fatalf("Compact() left FragmentedCount = %d, want 0", after.FragmentedCount)
	}
	if after.NextEmptyOffset <= before.NextEmptyOffset {
		t.Fatalf("Compact() should reclaim heap space: before=%d after=%d", before.NextEmptyOffset, after.NextEmptyOffset)
	}

	entries := v.Iterate()
	want := []uint64{10, 30}
	for i, e := range entries {
		if got := col.Decode(e.Key); got != want[i] {
			t.Fatalf("entries[%d] = %d, want %d", i, got, want[i])
		}
	}
}

func TestRequireIndexTypeRejectsNonIndexFrame(t *testing.T) {
	f := page.NewFrame(1, 256)
	f.WriteHeader(page.Header{Magic: page.MagicNumber, Type: page.DataPage, PageID: 1})
	if _, err := New(f, col); err == nil {
		t.Fatal("expected New() to reject a non-index page")
	}
}
