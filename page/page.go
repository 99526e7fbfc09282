// Package page implements the page frame (spec.md §3, §4.2): a fixed-size
// byte buffer plus the metadata (page id, dirty bit) the buffer pool and
// slotted-page layer need, and the common page header every page type
// shares.
package page

import (
	"github.com/dbsystems/pagestore/codec"
	"github.com/dbsystems/pagestore/storeerr"
)

// ID is a page id: a 64-bit unsigned integer, unique within a database.
type ID uint64

// Type is the page type tag stored in the header.
type Type uint8

const (
	_ Type = iota
	// IndexNode is an interior B+-tree index page.
	IndexNode
	// IndexLeaf is a leaf B+-tree index page.
	IndexLeaf
	// DataPage holds tuples (out of scope for this spec; tag reserved).
	DataPage
)

func (t Type) String() string {
	switch t {
	case IndexNode:
		return "IndexNode"
	case IndexLeaf:
		return "IndexLeaf"
	case DataPage:
		return "DataPage"
	default:
		return "Unknown"
	}
}

// MagicNumber identifies a valid, initialized page.
const MagicNumber uint32 = 0xFBEA82B9

// Header offsets, per spec.md §3.
const (
	offMagic  = 0
	offType   = 4
	offLSN    = 5
	offParent = 9
	offPageID = 17
	// HeaderSize is the total on-page header length in bytes.
	HeaderSize = 25
)

// Header is the common page header, decoded from or encoded to the first
// HeaderSize bytes of a page.
type Header struct {
	Magic  uint32
	Type   Type
	LSN    uint32
	Parent ID
	PageID ID
}

// Frame owns a fixed-size byte buffer plus the page id and dirty bit the
// buffer pool needs to manage it. It is a view over bytes it owns outright
// (unlike the slotted-page layer, which borrows a Frame's Data).
type Frame struct {
	pageID ID
	data   []byte
	dirty  bool
}

// NewFrame allocates a zeroed frame of the given page size for pageID.
func NewFrame(pageID ID, pageSize int) *Frame {
	return &Frame{
		pageID: pageID,
		data:   make([]byte, pageSize),
	}
}

// WrapFrame builds a frame around bytes already read from disk (dirty=false).
func WrapFrame(pageID ID, data []byte) *Frame {
	return &Frame{pageID: pageID, data: data}
}

// PageID returns the frame's page id.
func (f *Frame) PageID() ID { return f.pageID }

// Data returns the frame's backing buffer. Mutating it directly bypasses
// the dirty flag; prefer WriteHeader or the slotted-page API.
func (f *Frame) Data() []byte { return f.data }

// PageSize returns the size of the frame's backing buffer.
func (f *Frame) PageSize() int { return len(f.data) }

// Dirty reports whether the in-memory bytes diverge from the last
// persisted bytes (spec.md invariant 5).
func (f *Frame) Dirty() bool { return f.dirty }

// MarkDirty flags the frame as diverging from disk.
func (f *Frame) MarkDirty() { f.dirty = true }

// ClearDirty flags the frame as matching disk, after a successful flush.
func (f *Frame) ClearDirty() { f.dirty = false }

// ReadHeader decodes the common page header without validating it.
func (f *Frame) ReadHeader() Header {
	d := f.data
	return Header{
		Magic:  codec.ReadU32(d, offMagic),
		Type:   Type(d[offType]),
		LSN:    codec.ReadU32(d, offLSN),
		Parent: ID(codec.ReadU64(d, offParent)),
		PageID: ID(codec.ReadU64(d, offPageID)),
	}
}

// WriteHeader encodes h into the frame, marks it dirty, and mirrors h's
// page id into the frame's own PageID field (spec.md §4.2).
func (f *Frame) WriteHeader(h Header) {
	d := f.data
	codec.WriteU32(d, offMagic, h.Magic)
	d[offType] = byte(h.Type)
	codec.WriteU32(d, offLSN, h.LSN)
	codec.WriteU64(d, offParent, uint64(h.Parent))
	codec.WriteU64(d, offPageID, uint64(h.PageID))
	f.pageID = h.PageID
	f.dirty = true
}

// ReadType returns the page type tag. A tag outside {IndexNode, IndexLeaf,
// DataPage} is format corruption, not a programming error: it means the
// bytes on disk (or in the frame) are not a page this engine wrote.
func (f *Frame) ReadType() (Type, error) {
	t := Type(f.data[offType])
	switch t {
	case IndexNode, IndexLeaf, DataPage:
		return t, nil
	default:
		return 0, storeerr.Wrap(storeerr.CorruptPage, "page %d: unknown page type tag %d", f.pageID, t)
	}
}

// RequireIndexType validates the frame currently holds an index page
// (IndexNode or IndexLeaf) and returns its type. It is the narrow accessor
// spec.md §4.2 calls as_index_node_view: the slotted-page layer calls this
// before interpreting a frame's bytes as an index node.
func (f *Frame) RequireIndexType() (Type, error) {
	t, err := f.ReadType()
	if err != nil {
		return 0, err
	}
	if t != IndexNode && t != IndexLeaf {
		return 0, storeerr.Wrap(storeerr.WrongPageType, "page %d: expected index page, got %s", f.pageID, t)
	}
	return t, nil
}

// CheckMagic validates the frame's magic number matches the compiled
// constant. index.New calls it before interpreting a frame as an index page.
func (f *Frame) CheckMagic() error {
	if got := codec.ReadU32(f.data, offMagic); got != MagicNumber {
		return storeerr.Wrap(storeerr.CorruptPage, "page %d: bad magic %#x, want %#x", f.pageID, got, MagicNumber)
	}
	return nil
}
