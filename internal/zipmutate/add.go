// Package zipmutate implements the mutation engine: the add-entry and
// remove-entry transactions that rewrite the central directory in place,
// and the extract-entry operation that streams a payload back out. The
// central-directory-rewrite-on-write shape is grounded on
// andrewstephens-gozip's ZipWriter.Close; the data-descriptor and
// UTF-8/CP437 flag logic is grounded on martin-sucha-zipserve's
// prepareEntry/detectUTF8/makeDataDescriptor.
package zipmutate

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/meniny/zipkit/internal/deflate"
	"github.com/meniny/zipkit/internal/zerrors"
	"github.com/meniny/zipkit/internal/zipheader"
	"github.com/meniny/zipkit/internal/zipsession"
)

// AddOptions customises Add. With no option functions, Add compresses with
// Deflate, uses deflate.DefaultChunkSize, and gives the entry mode 0o755.
type AddOptions struct {
	Compression deflate.Method
	ChunkSize   int
	Mode        os.FileMode
	Modified    time.Time
}

// WithStore adds the entry uncompressed.
func WithStore() func(*AddOptions) {
	return func(o *AddOptions) { o.Compression = deflate.Store }
}

// WithDeflate adds the entry DEFLATE-compressed (the default).
func WithDeflate() func(*AddOptions) {
	return func(o *AddOptions) { o.Compression = deflate.Deflate }
}

// WithChunkSize overrides the streaming chunk size.
func WithChunkSize(n int) func(*AddOptions) {
	return func(o *AddOptions) { o.ChunkSize = n }
}

// WithMode overrides the entry's permission and file-type bits. Pass a mode
// with os.ModeDir or os.ModeSymlink set to add a directory or symlink entry.
func WithMode(mode os.FileMode) func(*AddOptions) {
	return func(o *AddOptions) { o.Mode = mode }
}

// WithModified overrides the entry's modification time (default: now).
func WithModified(t time.Time) func(*AddOptions) {
	return func(o *AddOptions) { o.Modified = t }
}

const defaultPermissions = 0o755

// Add streams src into the archive as path, following the spec's
// append-then-rewrite-central-directory procedure:
//
//  1. seek to the current central directory's start;
//  2. write a placeholder local header with sizes/CRC zeroed and the
//     data-descriptor flag set;
//  3. stream the payload through the Deflate codec, folding CRC-32;
//  4. write the data descriptor with final CRC and sizes;
//  5. rewrite every prior central directory header, then append this
//     entry's header;
//  6. write a new EOCD and truncate the file.
//
// A directory path (one ending in "/") or a nil src gets a zero-length
// Store payload and no data descriptor; src is ignored for a directory
// path.
func Add(s *zipsession.Session, path string, src io.Reader, optFns ...func(*AddOptions)) error {
	if s.Mode() == zipsession.Read {
		return fmt.Errorf("add entry %q: %w", path, zerrors.ErrUnwritableArchive)
	}
	if path == "" {
		return fmt.Errorf("add entry: %w", zerrors.ErrInvalidEntryPath)
	}

	opts := &AddOptions{
		Compression: deflate.Deflate,
		ChunkSize:   deflate.DefaultChunkSize,
		Mode:        defaultPermissions,
		Modified:    time.Now(),
	}
	for _, fn := range optFns {
		fn(opts)
	}

	isDir := strings.HasSuffix(path, "/")
	if isDir {
		opts.Mode |= os.ModeDir
		opts.Compression = deflate.Store
	}

	_, utf8OK := zipheader.EncodeCP437AwareName(path)
	if !utf8OK && !utf8.ValidString(path) {
		return fmt.Errorf("add entry %q: %w", path, zerrors.ErrInvalidEntryPath)
	}
	flags := uint16(0)
	if !utf8OK {
		flags |= zipheader.FlagUTF8
	}

	// Collect the existing central directory before any byte in its
	// region is overwritten by this entry's local header and payload.
	var existing []zipheader.CentralDirectoryHeader
	for entry, err := range s.Iterate() {
		if err != nil {
			return fmt.Errorf("add entry %q: read existing central directory: %w", path, err)
		}
		existing = append(existing, entry.CentralDirectoryHeader)
	}

	f := s.File()
	localOffset := int64(s.EOCD().CDOffset)
	if _, err := f.Seek(localOffset, io.SeekStart); err != nil {
		return fmt.Errorf("add entry %q: seek to central directory start: %w: %w", path, zerrors.ErrUnwritableArchive, err)
	}

	modDate, modTime := zipheader.TimeToMsDosTime(opts.Modified)

	if isDir || src == nil {
		lfh := zipheader.LocalFileHeader{
			ReaderVersion: 20,
			Flags:         flags,
			Method:        uint16(deflate.Store),
			ModifiedTime:  modTime,
			ModifiedDate:  modDate,
			Name:          path,
		}
		if _, err := f.Write(lfh.Bytes()); err != nil {
			return fmt.Errorf("add entry %q: write local file header: %w: %w", path, zerrors.ErrUnwritableFile, err)
		}

		creatorVersion, externalAttrs := zipsession.ExternalAttrsFromMode(opts.Mode)
		cdh := zipheader.CentralDirectoryHeader{
			CreatorVersion: creatorVersion,
			ReaderVersion:  20,
			Flags:          flags,
			Method:         uint16(deflate.Store),
			ModifiedTime:   modTime,
			ModifiedDate:   modDate,
			ExternalAttrs:  externalAttrs,
			Offset:         uint32(localOffset),
			Name:           path,
		}
		return finishAdd(s, existing, cdh)
	}

	flags |= zipheader.FlagDataDescriptor
	lfh := zipheader.LocalFileHeader{
		ReaderVersion: 20,
		Flags:         flags,
		Method:        uint16(opts.Compression),
		ModifiedTime:  modTime,
		ModifiedDate:  modDate,
		Name:          path,
	}
	if _, err := f.Write(lfh.Bytes()); err != nil {
		return fmt.Errorf("add entry %q: write local file header: %w: %w", path, zerrors.ErrUnwritableFile, err)
	}

	result, err := deflate.Compress(f, src, opts.Compression, opts.ChunkSize)
	if err != nil {
		return fmt.Errorf("add entry %q: compress payload: %w: %w", path, zerrors.ErrUnwritableFile, err)
	}

	dd := zipheader.DataDescriptor{
		CRC32:            result.CRC32,
		CompressedSize:   uint32(result.CompressedSize),
		UncompressedSize: uint32(result.UncompressedSize),
	}
	if _, err := f.Write(dd.Bytes()); err != nil {
		return fmt.Errorf("add entry %q: write data descriptor: %w: %w", path, zerrors.ErrUnwritableFile, err)
	}

	creatorVersion, externalAttrs := zipsession.ExternalAttrsFromMode(opts.Mode)
	cdh := zipheader.CentralDirectoryHeader{
		CreatorVersion:   creatorVersion,
		ReaderVersion:    20,
		Flags:            flags,
		Method:           uint16(opts.Compression),
		ModifiedTime:     modTime,
		ModifiedDate:     modDate,
		CRC32:            result.CRC32,
		CompressedSize:   uint32(result.CompressedSize),
		UncompressedSize: uint32(result.UncompressedSize),
		ExternalAttrs:    externalAttrs,
		Offset:           uint32(localOffset),
		Name:             path,
	}
	return finishAdd(s, existing, cdh)
}

// finishAdd rewrites every prior central directory header, appends cdh,
// writes the new EOCD, and truncates the file.
func finishAdd(s *zipsession.Session, existing []zipheader.CentralDirectoryHeader, cdh zipheader.CentralDirectoryHeader) error {
	f := s.File()

	cdOffset, err := f.Seek(0, io.SeekCurrent)
	if err != nil {
		return fmt.Errorf("add entry %q: locate central directory: %w: %w", cdh.Name, zerrors.ErrUnwritableArchive, err)
	}

	for i, h := range existing {
		if _, err := f.Write(h.Bytes()); err != nil {
			return fmt.Errorf("add entry %q: rewrite central directory header %d: %w: %w", cdh.Name, i, zerrors.ErrUnwritableArchive, err)
		}
	}
	if _, err := f.Write(cdh.Bytes()); err != nil {
		return fmt.Errorf("add entry %q: write new central directory header: %w: %w", cdh.Name, zerrors.ErrUnwritableArchive, err)
	}

	cdEnd, err := f.Seek(0, io.SeekCurrent)
	if err != nil {
		return fmt.Errorf("add entry %q: locate end of central directory: %w: %w", cdh.Name, zerrors.ErrUnwritableArchive, err)
	}
	cdSize := cdEnd - cdOffset
	if cdOffset+cdSize > 1<<32-1 {
		return fmt.Errorf("add entry %q: %w", cdh.Name, zerrors.ErrInvalidStartOfCentralDirectoryOffset)
	}

	count := uint16(len(existing) + 1)
	eocd := zipheader.EOCDRecord{
		CDCountOnDisk: count,
		CDCount:       count,
		CDSize:        uint32(cdSize),
		CDOffset:      uint32(cdOffset),
	}
	if _, err := f.Write(eocd.Bytes()); err != nil {
		return fmt.Errorf("add entry %q: write EOCD: %w: %w", cdh.Name, zerrors.ErrUnwritableArchive, err)
	}

	end, err := f.Seek(0, io.SeekCurrent)
	if err != nil {
		return fmt.Errorf("add entry %q: locate archive end: %w: %w", cdh.Name, zerrors.ErrUnwritableArchive, err)
	}
	if err := f.Truncate(end); err != nil {
		return fmt.Errorf("add entry %q: truncate archive: %w: %w", cdh.Name, zerrors.ErrUnwritableArchive, err)
	}

	s.SetEOCD(eocd)
	return nil
}
