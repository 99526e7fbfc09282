// Package codec reads and writes fixed-width big-endian integers and raw
// byte spans at explicit offsets within a page's backing buffer. It is the
// lowest layer of the storage engine (spec.md §4.1): every other
// component's on-page format is built on these primitives.
//
// Offsets are the caller's responsibility. An offset plus width that
// doesn't fit within buf is a programming bug, not a recoverable error, so
// these functions panic rather than return an error.
package codec

import "encoding/binary"

// ReadU16 reads a big-endian uint16 at offset.
func ReadU16(buf []byte, offset int) uint16 {
	return binary.BigEndian.Uint16(buf[offset : offset+2])
}

// WriteU16 writes v as big-endian at offset and returns the offset
// immediately past the bytes written, so calls can be chained.
func WriteU16(buf []byte, offset int, v uint16) int {
	binary.BigEndian.PutUint16(buf[offset:offset+2], v)
	return offset + 2
}

// ReadU32 reads a big-endian uint32 at offset.
func ReadU32(buf []byte, offset int) uint32 {
	return binary.BigEndian.Uint32(buf[offset : offset+4])
}

// WriteU32 writes v as big-endian at offset and returns the offset
// immediately past the bytes written.
func WriteU32(buf []byte, offset int, v uint32) int {
	binary.BigEndian.PutUint32(buf[offset:offset+4], v)
	return offset + 4
}

// ReadU64 reads a big-endian uint64 at offset.
func ReadU64(buf []byte, offset int) uint64 {
	return binary.BigEndian.Uint64(buf[offset : offset+8])
}

// WriteU64 writes v as big-endian at offset and returns the offset
// immediately past the bytes written.
func WriteU64(buf []byte, offset int, v uint64) int {
	binary.BigEndian.PutUint64(buf[offset:offset+8], v)
	return offset + 8
}

// WriteBytes copies src into dst starting at offset and returns the offset
// immediately past the bytes written.
func WriteBytes(dst []byte, offset int, src []byte) int {
	copy(dst[offset:offset+len(src)], src)
	return offset + len(src)
}

// ReadBytes returns a copy of the n bytes at offset. The copy protects
// callers from aliasing the page's backing buffer.
func ReadBytes(src []byte, offset, n int) []byte {
	out := make([]byte, n)
	copy(out, src[offset:offset+n])
	return out
}
