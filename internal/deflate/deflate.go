// Package deflate streams entry payloads through DEFLATE or Store while
// folding a running CRC-32, so the mutation engine never has to buffer a
// whole entry to learn its compressed size or checksum.
package deflate

import (
	"fmt"
	"io"

	"github.com/klauspost/compress/flate"

	"github.com/meniny/zipkit/internal/crc32ck"
)

// Method identifies a compression method, matching the on-disk values in
// the local/central file headers.
type Method uint16

const (
	Store   Method = 0
	Deflate Method = 8
)

// DefaultChunkSize is the buffered-I/O chunk spec.md's resource model calls
// for when no caller-provided chunk size is given.
const DefaultChunkSize = 16 * 1024

// Result reports the byte counts and checksum produced by Compress or
// Decompress.
type Result struct {
	UncompressedSize uint64
	CompressedSize   uint64
	CRC32            uint32
}

// Compress streams src through method into dst, chunkSize bytes at a time,
// and returns the sizes and CRC-32 of the uncompressed stream.
func Compress(dst io.Writer, src io.Reader, method Method, chunkSize int) (Result, error) {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	cw := &countingWriter{w: dst}
	h := crc32ck.New()
	tee := io.TeeReader(src, h)

	var sink io.Writer
	var closer io.Closer
	switch method {
	case Store:
		sink = cw
	case Deflate:
		fw, err := flate.NewWriter(cw, flate.DefaultCompression)
		if err != nil {
			return Result{}, fmt.Errorf("create deflate writer: %w", err)
		}
		sink = fw
		closer = fw
	default:
		return Result{}, fmt.Errorf("compress: unsupported method %d", method)
	}

	buf := make([]byte, chunkSize)
	var n int64
	var err error
	n, err = io.CopyBuffer(sink, tee, buf)
	if err != nil {
		return Result{}, fmt.Errorf("compress payload: %w", err)
	}
	if closer != nil {
		if err := closer.Close(); err != nil {
			return Result{}, fmt.Errorf("flush deflate writer: %w", err)
		}
	}

	return Result{
		UncompressedSize: uint64(n),
		CompressedSize:   uint64(cw.n),
		CRC32:            h.Sum32(),
	}, nil
}

// Decompress streams src (method-encoded) into dst, chunkSize bytes at a
// time, and returns the decompressed size and CRC-32 so the caller can
// verify it against the recorded checksum.
func Decompress(dst io.Writer, src io.Reader, method Method, chunkSize int) (Result, error) {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	var source io.Reader
	var closer io.Closer
	switch method {
	case Store:
		source = src
	case Deflate:
		fr := flate.NewReader(src)
		source = fr
		closer = fr
	default:
		return Result{}, fmt.Errorf("decompress: unsupported method %d", method)
	}

	h := crc32ck.New()
	tee := io.TeeReader(source, h)

	buf := make([]byte, chunkSize)
	n, err := io.CopyBuffer(dst, tee, buf)
	if err != nil {
		return Result{}, fmt.Errorf("decompress payload: %w", err)
	}
	if closer != nil {
		if err := closer.Close(); err != nil {
			return Result{}, fmt.Errorf("close deflate reader: %w", err)
		}
	}

	return Result{
		UncompressedSize: uint64(n),
		CRC32:            h.Sum32(),
	}, nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
