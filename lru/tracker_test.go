package lru

import "testing"

func TestPeekLRUReturnsOldest(t *testing.T) {
	tr := New(8)
	tr.Insert(1)
	tr.Insert(2)
	tr.Insert(3)

	id, ok := tr.PeekLRU()
	if !ok || id != 1 {
		t.Fatalf("PeekLRU() = (%d, %v), want (1, true)", id, ok)
	}
	// Peek must not remove.
	if !tr.Contains(1) {
		t.Fatal("PeekLRU() should not remove the entry")
	}
}

func TestTouchReordersRecency(t *testing.T) {
	tr := New(8)
	tr.Insert(1)
	tr.Insert(2)
	tr.Insert(3)

	tr.Touch(1)
	tr.Touch(2)
	tr.Touch(3)

	id, ok := tr.PeekLRU()
	if !ok || id != 1 {
		t.Fatalf("PeekLRU() after touch(1);touch(2);touch(3) = (%d, %v), want (1, true)", id, ok)
	}
}

func TestTouchAbsentIsNoop(t *testing.T) {
	tr := New(8)
	tr.Touch(42)
	if tr.Len() != 0 {
		t.Fatalf("Touch() of an absent id should not insert it, Len() = %d", tr.Len())
	}
	if _, ok := tr.PeekLRU(); ok {
		t.Fatal("PeekLRU() on an empty tracker should return ok=false")
	}
}

func TestInsertExistingActsAsTouch(t *testing.T) {
	tr := New(8)
	tr.Insert(1)
	tr.Insert(2)
	tr.Insert(1)

	id, ok := tr.PeekLRU()
	if !ok || id != 2 {
		t.Fatalf("PeekLRU() after re-insert(1) = (%d, %v), want (2, true)", id, ok)
	}
}

func TestRemoveForgetsId(t *testing.T) {
	tr := New(8)
	tr.Insert(1)
	tr.Insert(2)
	tr.Remove(1)

	if tr.Contains(1) {
		t.Fatal("Remove() should forget the id")
	}
	id, ok := tr.PeekLRU()
	if !ok || id != 2 {
		t.Fatalf("PeekLRU() after Remove(1) = (%d, %v), want (2, true)", id, ok)
	}
}
