// Package index implements the on-page B+-tree index node (spec.md
// §4.6): the slotted layout of key entries within a page, and the
// column codec capability that gives those key bytes domain meaning and
// an ordering.
package index

import (
	"bytes"

	"github.com/dbsystems/pagestore/codec"
)

// Column is the capability a key domain must provide to be stored in an
// index node: a fixed encoded width and an ordering over encoded bytes.
// Encoding values to and from those bytes is not part of the interface;
// concrete columns such as Uint64Column provide their own
// Encode/Decode. Compare must agree with the domain's
// natural order over the encoded form, the same way append_key's
// sorted-insert relies on it.
type Column interface {
	// Len returns the fixed width, in bytes, of this column's encoding.
	Len() int
	// Compare orders two encoded keys of this column's width.
	Compare(a, b []byte) int
}

// Uint64Column encodes keys as big-endian uint64s. Big-endian encoding
// makes byte-wise comparison agree with numeric comparison, so Compare
// is just bytes.Compare.
type Uint64Column struct{}

// Len is always 8 for Uint64Column.
func (Uint64Column) Len() int { return 8 }

// Encode writes v as an 8-byte big-endian key.
func (Uint64Column) Encode(v uint64) []byte {
	b := make([]byte, 8)
	codec.WriteU64(b, 0, v)
	return b
}

// Decode reads an 8-byte big-endian key back into a uint64.
func (Uint64Column) Decode(b []byte) uint64 {
	return codec.ReadU64(b, 0)
}

// Compare orders two 8-byte big-endian keys numerically.
func (Uint64Column) Compare(a, b []byte) int {
	return bytes.Compare(a[:8], b[:8])
}
