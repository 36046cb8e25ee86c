// Package lewire provides little-endian scalar packing and unpacking for the
// fixed-size portions of ZIP on-disk structures.
//
// The read side mirrors the struct-based binary.Read idiom used throughout
// the corpus (e.g. a fixed-size Go struct decoded in one binary.Read call);
// the write side mirrors the rolling-buffer writeBuf idiom used to emit the
// same structures without per-field allocations.
package lewire

import "encoding/binary"

// Reader decodes little-endian scalars from a fixed-size byte slice, advancing
// an internal cursor after every read. It never allocates and never returns
// an error: callers are expected to have already validated the slice is at
// least as long as the structure being decoded (the internal/zipheader readers
// do this by reading into a fixed-size array first).
type Reader struct {
	b []byte
}

// NewReader wraps b for sequential little-endian decoding.
func NewReader(b []byte) *Reader {
	return &Reader{b: b}
}

// Remaining returns the slice that has not yet been consumed.
func (r *Reader) Remaining() []byte {
	return r.b
}

func (r *Reader) Uint8() uint8 {
	v := r.b[0]
	r.b = r.b[1:]
	return v
}

func (r *Reader) Uint16() uint16 {
	v := binary.LittleEndian.Uint16(r.b)
	r.b = r.b[2:]
	return v
}

func (r *Reader) Uint32() uint32 {
	v := binary.LittleEndian.Uint32(r.b)
	r.b = r.b[4:]
	return v
}

func (r *Reader) Uint64() uint64 {
	v := binary.LittleEndian.Uint64(r.b)
	r.b = r.b[8:]
	return v
}

// Writer accumulates little-endian scalars into a caller-provided
// fixed-size buffer, advancing an internal cursor after every write.
type Writer struct {
	b []byte
}

// NewWriter wraps b for sequential little-endian encoding. b must be exactly
// as long as the structure being encoded; callers typically pass a stack
// array slice (e.g. `var buf [30]byte; w := NewWriter(buf[:])`).
func NewWriter(b []byte) *Writer {
	return &Writer{b: b}
}

func (w *Writer) Uint8(v uint8) {
	w.b[0] = v
	w.b = w.b[1:]
}

func (w *Writer) Uint16(v uint16) {
	binary.LittleEndian.PutUint16(w.b, v)
	w.b = w.b[2:]
}

func (w *Writer) Uint32(v uint32) {
	binary.LittleEndian.PutUint32(w.b, v)
	w.b = w.b[4:]
}

func (w *Writer) Uint64(v uint64) {
	binary.LittleEndian.PutUint64(w.b, v)
	w.b = w.b[8:]
}
