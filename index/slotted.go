package index

import (
	"github.com/dbsystems/pagestore/codec"
	"github.com/dbsystems/pagestore/page"
	"github.com/dbsystems/pagestore/storeerr"
)

// Slotted-page layout, immediately following the common page header
// (page.HeaderSize bytes):
//
//	[slots header: 6 bytes][slot directory, packed 2-byte offsets, grows upward][... free space ...][record heap, grows downward]
//
// The slot directory is a packed array of 2-byte record offsets.
// Indices [0, occupied) hold live record offsets in key-sorted order;
// indices [occupied, occupied+fragmented) hold offsets of records
// logically removed but not yet reclaimed. A record's length is never
// stored in the directory: it is always recordFixedSize + col.Len(),
// derivable from the column alone.
const (
	slotsHeaderOffset  = page.HeaderSize
	offSlotCount       = slotsHeaderOffset
	offFragmentedCount = slotsHeaderOffset + 2
	offNextEmptyOffset = slotsHeaderOffset + 4
	slotsHeaderSize    = 6
	directoryStart     = slotsHeaderOffset + slotsHeaderSize
	directoryEntrySize = 2
	recordFixedSize    = 10 // child_page_id(8) + slot_index_in_child(2)
)

// SlotsHeader is the 6-byte per-page bookkeeping record. NextEmptyOffset
// is the highest byte offset currently unused, i.e. one less than the
// lowest record byte in the heap.
type SlotsHeader struct {
	SlotCount       int
	FragmentedCount int
	NextEmptyOffset int
}

// Entry is a decoded key entry: the child page it points at, the slot
// index within that child (meaningful only for IndexLeaf pages), and the
// raw key bytes.
type Entry struct {
	ChildPageID      page.ID
	SlotIndexInChild uint16
	Key              []byte
}

// View is a read/write window over an index page's slotted layout. It
// assumes the frame already holds an IndexNode or IndexLeaf page.
type View struct {
	frame *page.Frame
	col   Column
}

// New wraps an already-initialized index frame for reading and writing.
// It fails with CorruptPage if the frame's magic number is wrong, and if
// the frame isn't currently tagged as an index page.
func New(f *page.Frame, col Column) (*View, error) {
	if err := f.CheckMagic(); err != nil {
		return nil, err
	}
	if _, err := f.RequireIndexType(); err != nil {
		return nil, err
	}
	return &View{frame: f, col: col}, nil
}

// InitPage formats a fresh frame as an empty index page of the given
// type and parent, and returns a View over it.
func InitPage(f *page.Frame, typ page.Type, parent page.ID, col Column) (*View, error) {
	if typ != page.IndexNode && typ != page.IndexLeaf {
		return nil, storeerr.Wrap(storeerr.WrongPageType, "init_page: %s is not an index page type", typ)
	}
	f.WriteHeader(page.Header{
		Magic:  page.MagicNumber,
		Type:   typ,
		Parent: parent,
		PageID: f.PageID(),
	})
	v := &View{frame: f, col: col}
	v.writeSlotsHeader(SlotsHeader{SlotCount: 0, FragmentedCount: 0, NextEmptyOffset: f.PageSize() - 1})
	return v, nil
}

// ReadSlotsHeader decodes the 6-byte slots header.
func (v *View) ReadSlotsHeader() SlotsHeader {
	d := v.frame.Data()
	return SlotsHeader{
		SlotCount:       int(codec.ReadU16(d, offSlotCount)),
		FragmentedCount: int(codec.ReadU16(d, offFragmentedCount)),
		NextEmptyOffset: int(codec.ReadU16(d, offNextEmptyOffset)),
	}
}

func (v *View) writeSlotsHeader(h SlotsHeader) {
	d := v.frame.Data()
	codec.WriteU16(d, offSlotCount, uint16(h.SlotCount))
	codec.WriteU16(d, offFragmentedCount, uint16(h.FragmentedCount))
	codec.WriteU16(d, offNextEmptyOffset, uint16(h.NextEmptyOffset))
	v.frame.MarkDirty()
}

// ReadSlotCount returns the occupied (live) slot count.
func (v *View) ReadSlotCount() int { return v.ReadSlotsHeader().SlotCount }

// ReadFragmentedCount returns the count of slots tombstoned but not yet
// reclaimed by Compact.
func (v *View) ReadFragmentedCount() int { return v.ReadSlotsHeader().FragmentedCount }

// ReadNextEmptyOffset returns the highest byte offset currently unused.
func (v *View) ReadNextEmptyOffset() int { return v.ReadSlotsHeader().NextEmptyOffset }

func directoryOffset(i int) int { return directoryStart + i*directoryEntrySize }

// readDirectory returns every directory entry: the first SlotCount
// entries are live offsets in key order, the rest are fragmented offsets.
func (v *View) readDirectory(h SlotsHeader) []uint16 {
	d := v.frame.Data()
	total := h.SlotCount + h.FragmentedCount
	out := make([]uint16, total)
	for i := 0; i < total; i++ {
		out[i] = codec.ReadU16(d, directoryOffset(i))
	}
	return out
}

// writeDirectory rewrites the whole directory region in one pass: live
// offsets first (in the order given), then fragmented offsets. This is
// update_slots: the slot directory is always replaced atomically, never
// patched entry-by-entry, so a concurrent reader under the frame's lock
// never observes a torn directory.
func (v *View) writeDirectory(live, fragmented []uint16, nextEmptyOffset int) {
	d := v.frame.Data()
	i := 0
	for _, off := range live {
		codec.WriteU16(d, directoryOffset(i), off)
		i++
	}
	for _, off := range fragmented {
		codec.WriteU16(d, directoryOffset(i), off)
		i++
	}
	v.writeSlotsHeader(SlotsHeader{
		SlotCount:       len(live),
		FragmentedCount: len(fragmented),
		NextEmptyOffset: nextEmptyOffset,
	})
}

func (v *View) recordSize() int { return recordFixedSize + v.col.Len() }

func (v *View) decodeEntry(offset uint16) Entry {
	d := v.frame.Data()
	off := int(offset)
	return Entry{
		ChildPageID:      page.ID(codec.ReadU64(d, off)),
		SlotIndexInChild: codec.ReadU16(d, off+8),
		Key:              codec.ReadBytes(d, off+recordFixedSize, v.col.Len()),
	}
}

// SlotEntry decodes the live entry at slot i (0 <= i < occupied).
func (v *View) SlotEntry(i int) (Entry, error) {
	h := v.ReadSlotsHeader()
	if i < 0 || i >= h.SlotCount {
		return Entry{}, storeerr.Wrap(storeerr.CorruptPage, "slot_entry(%d): out of range, slot count %d", i, h.SlotCount)
	}
	offset := codec.ReadU16(v.frame.Data(), directoryOffset(i))
	return v.decodeEntry(offset), nil
}

// OccupiedOffsets returns the live region's raw directory offsets, in
// key order.
func (v *View) OccupiedOffsets() []uint16 {
	h := v.ReadSlotsHeader()
	return v.readDirectory(h)[:h.SlotCount]
}

// FragmentedOffsets returns the fragmented region's raw directory
// offsets, tombstoned but not yet reclaimed.
func (v *View) FragmentedOffsets() []uint16 {
	h := v.ReadSlotsHeader()
	dir := v.readDirectory(h)
	return dir[h.SlotCount:]
}

// Iterate yields every live entry in slot-directory order, which
// append_key maintains as key-ascending order.
func (v *View) Iterate() []Entry {
	offsets := v.OccupiedOffsets()
	out := make([]Entry, len(offsets))
	for i, off := range offsets {
		out[i] = v.decodeEntry(off)
	}
	return out
}

// AppendKey is the sorted insert: it places the new entry at the
// smallest index i such that key <= key_at(slot[i]), or at the end if
// none compares greater-or-equal. Ties are broken leftward: an entry
// with a key equal to an existing one is inserted before it, so the
// first caller to claim a key wins the later iteration position.
//
// Fails with PageFull if growing the directory by one 2-byte entry and
// writing the record would collide (new_offset < directory_end).
func (v *View) AppendKey(childPageID page.ID, slotIndexInChild uint16, key []byte) error {
	if len(key) != v.col.Len() {
		return storeerr.Wrap(storeerr.CorruptPage, "append_key: key is %d bytes, column width is %d", len(key), v.col.Len())
	}
	h := v.ReadSlotsHeader()
	size := recordFixedSize + len(key)
	newOffset := h.NextEmptyOffset - size

	directoryEnd := directoryStart + directoryEntrySize*(h.SlotCount+h.FragmentedCount+1)
	if newOffset < directoryEnd {
		return storeerr.Wrap(storeerr.PageFull, "append_key: new_offset %d collides with directory_end %d", newOffset, directoryEnd)
	}

	dir := v.readDirectory(h)
	live := dir[:h.SlotCount]
	fragmented := dir[h.SlotCount:]

	insertAt := len(live)
	for i, off := range live {
		existing := v.decodeEntry(off).Key
		if v.col.Compare(key, existing) <= 0 {
			insertAt = i
			break
		}
	}

	newLive := make([]uint16, 0, len(live)+1)
	newLive = append(newLive, live[:insertAt]...)
	newLive = append(newLive, uint16(newOffset))
	newLive = append(newLive, live[insertAt:]...)

	d := v.frame.Data()
	off := codec.WriteU64(d, newOffset, uint64(childPageID))
	off = codec.WriteU16(d, off, slotIndexInChild)
	codec.WriteBytes(d, off, key)

	v.writeDirectory(newLive, fragmented, newOffset-1)
	return nil
}

// MarkFragmented moves slot i (0 <= i < occupied) from the live region
// to the fragmented region. Its heap bytes are not reclaimed until
// Compact runs.
func (v *View) MarkFragmented(i int) error {
	h := v.ReadSlotsHeader()
	if i < 0 || i >= h.SlotCount {
		return storeerr.Wrap(storeerr.CorruptPage, "mark_fragmented(%d): out of range, slot count %d", i, h.SlotCount)
	}
	dir := v.readDirectory(h)
	live := dir[:h.SlotCount]
	fragmented := dir[h.SlotCount:]

	target := live[i]
	newLive := make([]uint16, 0, len(live)-1)
	newLive = append(newLive, live[:i]...)
	newLive = append(newLive, live[i+1:]...)
	newFragmented := append(append([]uint16{}, fragmented...), target)

	v.writeDirectory(newLive, newFragmented, h.NextEmptyOffset)
	return nil
}

// Compact rewrites the slot directory (through writeDirectory, the
// update_slots step) and the record heap from scratch, keeping only the live entries (already in key
// order) and dropping every fragmented one, reclaiming their heap
// space. The record heap is repacked against the top of the page using
// the same per-record layout append_key uses, so the result is
// indistinguishable from a page built by appending the surviving
// entries to an empty page in order.
func (v *View) Compact() error {
	live := v.Iterate()

	cursor := v.frame.PageSize() - 1
	newLive := make([]uint16, len(live))
	d := v.frame.Data()
	for i, entry := range live {
		size := recordFixedSize + len(entry.Key)
		newOffset := cursor - size
		off := codec.WriteU64(d, newOffset, uint64(entry.ChildPageID))
		off = codec.WriteU16(d, off, entry.SlotIndexInChild)
		codec.WriteBytes(d, off, entry.Key)
		newLive[i] = uint16(newOffset)
		cursor = newOffset - 1
	}

	v.writeDirectory(newLive, nil, cursor)
	return nil
}
