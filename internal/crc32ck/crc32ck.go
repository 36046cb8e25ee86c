// Package crc32ck wraps hash/crc32 with the incremental update shape the
// archive header layer needs: fold a chunk of payload bytes into a running
// checksum without ever materializing the whole entry in memory.
package crc32ck

import (
	"hash"
	"hash/crc32"
)

// Hasher accumulates an IEEE CRC-32 across streamed writes, mirroring the
// running-checksum wrapper used elsewhere in the corpus for sha256/sha512.
type Hasher struct {
	w hash.Hash32
}

// New starts a fresh CRC-32 accumulator.
func New() *Hasher {
	return &Hasher{w: crc32.NewIEEE()}
}

func (h *Hasher) Write(p []byte) (n int, err error) {
	return h.w.Write(p)
}

// Sum32 returns the checksum of all bytes written so far.
func (h *Hasher) Sum32() uint32 {
	return h.w.Sum32()
}

// Update folds b into prev and returns the new running checksum, for callers
// that would rather not keep a Hasher alive across chunks.
func Update(prev uint32, b []byte) uint32 {
	return crc32.Update(prev, crc32.IEEETable, b)
}
