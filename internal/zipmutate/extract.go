package zipmutate

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/meniny/zipkit/internal/deflate"
	"github.com/meniny/zipkit/internal/zerrors"
	"github.com/meniny/zipkit/internal/zipsession"
)

// ExtractOptions customises Extract and ExtractToPath.
type ExtractOptions struct {
	ChunkSize int
	SkipCRC   bool
}

// WithExtractChunkSize overrides the streaming chunk size.
func WithExtractChunkSize(n int) func(*ExtractOptions) {
	return func(o *ExtractOptions) { o.ChunkSize = n }
}

// WithSkipCRC disables CRC-32 verification, used only for fast listing.
func WithSkipCRC() func(*ExtractOptions) {
	return func(o *ExtractOptions) { o.SkipCRC = true }
}

// Extract streams entry's payload (decompressing if needed) into dst,
// verifying the recomputed CRC-32 against the recorded one unless
// WithSkipCRC was given. It is only valid for File and Symlink entries.
func Extract(s *zipsession.Session, entry zipsession.Entry, dst io.Writer, optFns ...func(*ExtractOptions)) (int64, error) {
	opts := &ExtractOptions{ChunkSize: deflate.DefaultChunkSize}
	for _, fn := range optFns {
		fn(opts)
	}

	method := deflate.Method(entry.Method())
	if method != deflate.Store && method != deflate.Deflate {
		return 0, fmt.Errorf("extract entry %q: %w", entry.Path(), zerrors.ErrInvalidCompressionMethod)
	}

	payloadOffset := entry.LocalHeaderOffset() + entry.LocalFileHeader.Size()
	src := io.NewSectionReader(s.File(), payloadOffset, int64(entry.CentralDirectoryHeader.PayloadSize()))

	result, err := deflate.Decompress(dst, src, method, opts.ChunkSize)
	if err != nil {
		return 0, fmt.Errorf("extract entry %q: %w: %w", entry.Path(), zerrors.ErrUnreadableFile, err)
	}

	if !opts.SkipCRC && result.CRC32 != entry.CRC32() {
		return int64(result.UncompressedSize), fmt.Errorf("extract entry %q: %w", entry.Path(), zerrors.ErrInvalidCRC32)
	}

	return int64(result.UncompressedSize), nil
}

// ExtractToPath materializes entry at destPath on the local filesystem:
// directories are created empty, files are extracted with their recorded
// mode, and symlinks are recreated with the payload bytes as their target.
func ExtractToPath(s *zipsession.Session, entry zipsession.Entry, destPath string, optFns ...func(*ExtractOptions)) error {
	mode := zipsession.ModeFromExternalAttrs(entry.CentralDirectoryHeader.ExternalAttrs)

	switch entry.Kind {
	case zipsession.KindDirectory:
		if err := os.MkdirAll(destPath, 0o755); err != nil {
			return fmt.Errorf("extract entry %q: create directory: %w: %w", entry.Path(), zerrors.ErrUnwritableFile, err)
		}
		return nil

	case zipsession.KindSymlink:
		var buf writerToBuffer
		if _, err := Extract(s, entry, &buf, optFns...); err != nil {
			return err
		}
		if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
			return fmt.Errorf("extract entry %q: create parent directory: %w: %w", entry.Path(), zerrors.ErrUnwritableFile, err)
		}
		os.Remove(destPath)
		if err := os.Symlink(buf.String(), destPath); err != nil {
			return fmt.Errorf("extract entry %q: create symlink: %w: %w", entry.Path(), zerrors.ErrUnwritableFile, err)
		}
		return nil

	default:
		if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
			return fmt.Errorf("extract entry %q: create parent directory: %w: %w", entry.Path(), zerrors.ErrUnwritableFile, err)
		}
		perm := mode.Perm()
		if perm == 0 {
			perm = 0o644
		}
		out, err := os.OpenFile(destPath, os.O_RDWR|os.O_CREATE|os.O_TRUNC, perm)
		if err != nil {
			return fmt.Errorf("extract entry %q: create file: %w: %w", entry.Path(), zerrors.ErrUnwritableFile, err)
		}
		defer out.Close()

		if _, err := Extract(s, entry, out, optFns...); err != nil {
			return err
		}
		return nil
	}
}

// writerToBuffer is a minimal io.Writer sink for small payloads (symlink
// targets), avoiding a dependency on bytes.Buffer's larger API surface.
type writerToBuffer struct {
	b []byte
}

func (w *writerToBuffer) Write(p []byte) (int, error) {
	w.b = append(w.b, p...)
	return len(p), nil
}

func (w *writerToBuffer) String() string {
	return string(w.b)
}
