package zipmutate

import (
	"fmt"
	"io"
	"os"

	"github.com/meniny/zipkit/internal/zerrors"
	"github.com/meniny/zipkit/internal/zipheader"
	"github.com/meniny/zipkit/internal/zipsession"
)

// shiftChunkSize bounds the left-shift copy so removing an entry never
// loads its trailing payload region into memory all at once.
const shiftChunkSize = 16 * 1024

// Remove deletes entry from the archive: the payload region after it is
// shifted left over its span in bounded chunks, the central directory is
// rewritten without it (surviving offsets adjusted), and a new EOCD is
// written before the file is truncated.
func Remove(s *zipsession.Session, entry zipsession.Entry) error {
	if s.Mode() == zipsession.Read {
		return fmt.Errorf("remove entry %q: %w", entry.Path(), zerrors.ErrUnwritableArchive)
	}

	a := entry.LocalHeaderOffset()
	ddSize := int64(0)
	if entry.CentralDirectoryHeader.HasDataDescriptor() {
		ddSize = zipheader.DataDescriptorFixedSize
	}
	b := a + entry.LocalFileHeader.Size() + int64(entry.CentralDirectoryHeader.PayloadSize()) + ddSize
	cdOffset := int64(s.EOCD().CDOffset)
	shift := b - a

	var kept []zipheader.CentralDirectoryHeader
	for e, err := range s.Iterate() {
		if err != nil {
			return fmt.Errorf("remove entry %q: read central directory: %w", entry.Path(), err)
		}
		if e.CentralDirectoryHeader.Offset == uint32(a) {
			continue
		}
		cdh := e.CentralDirectoryHeader
		if int64(cdh.Offset) >= b {
			cdh.Offset -= uint32(shift)
		}
		kept = append(kept, cdh)
	}

	f := s.File()
	if err := shiftLeft(f, b, cdOffset, shift); err != nil {
		return fmt.Errorf("remove entry %q: shift payload region: %w: %w", entry.Path(), zerrors.ErrUnwritableArchive, err)
	}

	newCDOffset := cdOffset - shift
	if _, err := f.Seek(newCDOffset, io.SeekStart); err != nil {
		return fmt.Errorf("remove entry %q: seek to new central directory start: %w: %w", entry.Path(), zerrors.ErrUnwritableArchive, err)
	}
	for i, h := range kept {
		if _, err := f.Write(h.Bytes()); err != nil {
			return fmt.Errorf("remove entry %q: rewrite central directory header %d: %w: %w", entry.Path(), i, zerrors.ErrUnwritableArchive, err)
		}
	}

	cdEnd, err := f.Seek(0, io.SeekCurrent)
	if err != nil {
		return fmt.Errorf("remove entry %q: locate end of central directory: %w: %w", entry.Path(), zerrors.ErrUnwritableArchive, err)
	}

	count := uint16(len(kept))
	eocd := zipheader.EOCDRecord{
		CDCountOnDisk: count,
		CDCount:       count,
		CDSize:        uint32(cdEnd - newCDOffset),
		CDOffset:      uint32(newCDOffset),
	}
	if _, err := f.Write(eocd.Bytes()); err != nil {
		return fmt.Errorf("remove entry %q: write EOCD: %w: %w", entry.Path(), zerrors.ErrUnwritableArchive, err)
	}

	end, err := f.Seek(0, io.SeekCurrent)
	if err != nil {
		return fmt.Errorf("remove entry %q: locate archive end: %w: %w", entry.Path(), zerrors.ErrUnwritableArchive, err)
	}
	if err := f.Truncate(end); err != nil {
		return fmt.Errorf("remove entry %q: truncate archive: %w: %w", entry.Path(), zerrors.ErrUnwritableArchive, err)
	}

	s.SetEOCD(eocd)
	return nil
}

// shiftLeft copies the byte range [srcStart, srcEnd) to start at
// srcStart-shift, shiftChunkSize bytes at a time. Since the destination always
// trails the source, a single forward pass is safe.
func shiftLeft(f *os.File, srcStart, srcEnd, shift int64) error {
	if shift <= 0 {
		return nil
	}

	buf := make([]byte, shiftChunkSize)
	src, dst := srcStart, srcStart-shift

	for src < srcEnd {
		n := int64(len(buf))
		if remaining := srcEnd - src; remaining < n {
			n = remaining
		}
		if _, err := f.ReadAt(buf[:n], src); err != nil && err != io.EOF {
			return fmt.Errorf("read payload chunk at %d: %w", src, err)
		}
		if _, err := f.WriteAt(buf[:n], dst); err != nil {
			return fmt.Errorf("write payload chunk at %d: %w", dst, err)
		}
		src += n
		dst += n
	}
	return nil
}
