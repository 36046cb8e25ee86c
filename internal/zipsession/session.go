// Package zipsession implements the archive session lifecycle: opening or
// creating the backing file, scanning backwards for the End Of Central
// Directory record, and iterating/looking up entries in central-directory
// order. It is grounded on the corpus's read-only central-directory
// scanners (zipper.CDScanner, zipper/cd.Find), generalized here into a
// read/write local-file session.
package zipsession

import (
	"bytes"
	"fmt"
	"io"
	"iter"
	"os"

	"github.com/meniny/zipkit/internal/zerrors"
	"github.com/meniny/zipkit/internal/zipheader"
)

// Mode selects how the backing file is opened.
type Mode int

const (
	Read Mode = iota
	Create
	Update
)

// DefaultScanBound is the backward-scan limit for the EOCD signature: the
// source algorithm uses 66000 rather than the exact 65557 (22 fixed bytes
// plus the 65535-byte maximum comment); this engine preserves that bound
// rather than tightening it, see DESIGN.md.
const DefaultScanBound = 66000

// EntryKind is the derived type of an entry, computed from the OS-made-by
// byte and external file attributes.
type EntryKind int

const (
	KindFile EntryKind = iota
	KindDirectory
	KindSymlink
)

func (k EntryKind) String() string {
	switch k {
	case KindDirectory:
		return "directory"
	case KindSymlink:
		return "symlink"
	default:
		return "file"
	}
}

// Entry is an immutable value snapshot of one archive member, taken at
// iteration time.
type Entry struct {
	CentralDirectoryHeader zipheader.CentralDirectoryHeader
	LocalFileHeader        zipheader.LocalFileHeader
	DataDescriptor         *zipheader.DataDescriptor
	Kind                   EntryKind
}

func (e Entry) Path() string              { return e.CentralDirectoryHeader.Name }
func (e Entry) UncompressedSize() uint64   { return uint64(e.CentralDirectoryHeader.UncompressedSize) }
func (e Entry) CompressedSize() uint64     { return uint64(e.CentralDirectoryHeader.CompressedSize) }
func (e Entry) CRC32() uint32              { return e.CentralDirectoryHeader.CRC32 }
func (e Entry) Method() uint16             { return e.CentralDirectoryHeader.Method }
func (e Entry) LocalHeaderOffset() int64   { return int64(e.CentralDirectoryHeader.Offset) }

// Session owns the backing file exclusively for its lifetime. Sessions are
// not safe for concurrent use.
type Session struct {
	file *os.File
	mode Mode
	eocd zipheader.EOCDRecord
}

// File returns the session's backing file.
func (s *Session) File() *os.File { return s.file }

// Mode returns the mode the session was opened with.
func (s *Session) Mode() Mode { return s.mode }

// EOCD returns the session's in-memory EOCD record.
func (s *Session) EOCD() zipheader.EOCDRecord { return s.eocd }

// SetEOCD replaces the session's in-memory EOCD. Callers must only do this
// after the corresponding bytes have been flushed to disk, preserving the
// engine's atomicity posture for its in-memory view.
func (s *Session) SetEOCD(r zipheader.EOCDRecord) { s.eocd = r }

// Close releases the session's backing file.
func (s *Session) Close() error {
	return s.file.Close()
}

// Open opens path according to mode.
//
// Read fails if the path is missing or unreadable, then scans for EOCD.
// Create fails if the path already exists; it writes exactly the 22-byte
// empty EOCD and reopens for read-write. Update fails if the path is
// missing or unwritable, then scans for EOCD.
func Open(path string, mode Mode) (*Session, error) {
	switch mode {
	case Read:
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open archive for read: %w: %w", zerrors.ErrUnreadableArchive, err)
		}
		eocd, err := scanEOCD(f)
		if err != nil {
			f.Close()
			return nil, err
		}
		return &Session{file: f, mode: mode, eocd: eocd}, nil

	case Create:
		f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o644)
		if err != nil {
			return nil, fmt.Errorf("create archive: %w: %w", zerrors.ErrUnwritableArchive, err)
		}
		eocd := zipheader.EOCDRecord{}
		if _, err := f.Write(eocd.Bytes()); err != nil {
			f.Close()
			return nil, fmt.Errorf("write empty EOCD: %w: %w", zerrors.ErrUnwritableArchive, err)
		}
		return &Session{file: f, mode: mode, eocd: eocd}, nil

	case Update:
		f, err := os.OpenFile(path, os.O_RDWR, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open archive for update: %w: %w", zerrors.ErrUnwritableArchive, err)
		}
		eocd, err := scanEOCD(f)
		if err != nil {
			f.Close()
			return nil, err
		}
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			f.Close()
			return nil, fmt.Errorf("seek archive to start: %w: %w", zerrors.ErrUnwritableArchive, err)
		}
		return &Session{file: f, mode: mode, eocd: eocd}, nil

	default:
		return nil, fmt.Errorf("open archive: unknown mode %d", mode)
	}
}

// scanEOCD walks backwards from the end of f looking for the EOCD
// signature, bounded by DefaultScanBound bytes, then parses the full
// record including its comment tail.
func scanEOCD(f *os.File) (zipheader.EOCDRecord, error) {
	info, err := f.Stat()
	if err != nil {
		return zipheader.EOCDRecord{}, fmt.Errorf("stat archive: %w: %w", zerrors.ErrUnreadableArchive, err)
	}
	size := info.Size()
	if size < zipheader.EOCDFixedSize {
		return zipheader.EOCDRecord{}, fmt.Errorf("archive too small: %w", zerrors.ErrMissingEndOfCentralDirectoryRecord)
	}

	maxScan := int64(DefaultScanBound)
	start := size - zipheader.EOCDFixedSize
	low := start - maxScan
	if low < 0 {
		low = 0
	}

	sig := make([]byte, 4)
	sig[0], sig[1], sig[2], sig[3] = 0x50, 0x4b, 0x05, 0x06

	window := make([]byte, size-low)
	if _, err := f.ReadAt(window, low); err != nil && err != io.EOF {
		return zipheader.EOCDRecord{}, fmt.Errorf("read archive tail: %w: %w", zerrors.ErrUnreadableArchive, err)
	}

	for i := len(window) - zipheader.EOCDFixedSize; i >= 0; i-- {
		if bytes.Equal(window[i:i+4], sig) {
			rec, err := zipheader.ReadEOCDRecord(bytes.NewReader(window[i:]))
			if err != nil {
				return zipheader.EOCDRecord{}, fmt.Errorf("parse EOCD: %w: %w", zerrors.ErrUnreadableArchive, err)
			}
			return rec, nil
		}
	}

	return zipheader.EOCDRecord{}, fmt.Errorf("scan %d bytes for EOCD signature: %w", len(window), zerrors.ErrMissingEndOfCentralDirectoryRecord)
}

// Iterate produces a finite, restartable sequence of entries in
// central-directory order, starting at EOCD.CDOffset and stopping after
// EOCD.CDCount entries. A read failure for an individual entry stops the
// sequence and yields the error; it does not retry or skip.
func (s *Session) Iterate() iter.Seq2[Entry, error] {
	return func(yield func(Entry, error) bool) {
		offset := int64(s.eocd.CDOffset)
		for i := uint16(0); i < s.eocd.CDCount; i++ {
			cdh, n, err := readCDHeaderAt(s.file, offset)
			if err != nil {
				yield(Entry{}, fmt.Errorf("read central directory header %d: %w: %w", i, zerrors.ErrUnreadableArchive, err))
				return
			}

			lfh, err := readLocalHeaderAt(s.file, int64(cdh.Offset))
			if err != nil {
				yield(Entry{}, fmt.Errorf("read local file header for %q: %w: %w", cdh.Name, zerrors.ErrUnreadableArchive, err))
				return
			}

			var dd *zipheader.DataDescriptor
			if cdh.HasDataDescriptor() {
				ddOffset := int64(cdh.Offset) + lfh.Size() + int64(cdh.PayloadSize())
				parsed, err := readDataDescriptorAt(s.file, ddOffset)
				if err != nil {
					yield(Entry{}, fmt.Errorf("read data descriptor for %q: %w: %w", cdh.Name, zerrors.ErrUnreadableArchive, err))
					return
				}
				dd = &parsed
			}

			entry := Entry{
				CentralDirectoryHeader: cdh,
				LocalFileHeader:        lfh,
				DataDescriptor:         dd,
				Kind:                   DeriveKind(cdh),
			}

			offset += n
			if !yield(entry, nil) {
				return
			}
		}
	}
}

// Lookup returns the first entry whose path matches exactly, following
// stable first-match semantics (the ZIP format does not forbid duplicate
// paths).
func (s *Session) Lookup(path string) (Entry, bool, error) {
	for entry, err := range s.Iterate() {
		if err != nil {
			return Entry{}, false, err
		}
		if entry.Path() == path {
			return entry, true, nil
		}
	}
	return Entry{}, false, nil
}

func readCDHeaderAt(f *os.File, offset int64) (zipheader.CentralDirectoryHeader, int64, error) {
	sr := io.NewSectionReader(f, offset, 1<<32)
	cdh, err := zipheader.ReadCentralDirectoryHeader(sr)
	if err != nil {
		return zipheader.CentralDirectoryHeader{}, 0, err
	}
	return cdh, cdh.Size(), nil
}

func readLocalHeaderAt(f *os.File, offset int64) (zipheader.LocalFileHeader, error) {
	sr := io.NewSectionReader(f, offset, 1<<32)
	return zipheader.ReadLocalFileHeader(sr)
}

func readDataDescriptorAt(f *os.File, offset int64) (zipheader.DataDescriptor, error) {
	sr := io.NewSectionReader(f, offset, zipheader.DataDescriptorFixedSize)
	return zipheader.ReadDataDescriptor(sr)
}

// DeriveKind implements the entry-kind-determination rules: OS-made-by
// (upper byte of CreatorVersion) selects how ExternalAttrs is interpreted.
func DeriveKind(cdh zipheader.CentralDirectoryHeader) EntryKind {
	const (
		creatorUnix   = 3
		creatorMacOSX = 19
		creatorFAT    = 0

		sIFMT  = 0xf000
		sIFDIR = 0x4000
		sIFLNK = 0xa000

		msdosDir = 0x10
	)

	madeBy := cdh.CreatorVersion >> 8
	isDir := len(cdh.Name) > 0 && cdh.Name[len(cdh.Name)-1] == '/'

	switch madeBy {
	case creatorUnix, creatorMacOSX:
		mode := cdh.ExternalAttrs >> 16
		switch mode & sIFMT {
		case sIFDIR:
			return KindDirectory
		case sIFLNK:
			return KindSymlink
		default:
			if isDir {
				return KindDirectory
			}
			return KindFile
		}
	case creatorFAT:
		if isDir || cdh.ExternalAttrs&msdosDir != 0 {
			return KindDirectory
		}
		return KindFile
	default:
		if isDir {
			return KindDirectory
		}
		return KindFile
	}
}
