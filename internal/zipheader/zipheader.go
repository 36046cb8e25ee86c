// Package zipheader parses and emits the four fixed on-disk structures of a
// ZIP archive: Local File Header, Data Descriptor, Central Directory Header,
// and End Of Central Directory record. Fixed-size portions are decoded with
// internal/lewire the same way the corpus decodes ZIP structures with
// encoding/binary; trailing variable-length portions (filename, extra
// field, comments) are read by the caller-supplied reader in declared
// order, following the read-then-trailing-callback shape used throughout
// the corpus's hand-rolled ZIP parsers.
package zipheader

import (
	"fmt"
	"io"
	"time"
	"unicode/utf8"

	"github.com/valyala/bytebufferpool"

	"github.com/meniny/zipkit/internal/lewire"
)

// Signatures of the four fixed structures, little-endian on disk.
const (
	SigLocalFileHeader        = 0x04034b50
	SigDataDescriptor         = 0x08074b50
	SigCentralDirectoryHeader = 0x02014b50
	SigEOCD                   = 0x06054b50
)

// Sizes of the fixed-size portion of each structure, excluding trailing
// variable-length data.
const (
	LocalFileHeaderFixedSize        = 30
	DataDescriptorFixedSize         = 16
	CentralDirectoryHeaderFixedSize = 46
	EOCDFixedSize                   = 22
)

// GP flag bits the engine cares about.
const (
	FlagUTF8           uint16 = 0x800
	FlagDataDescriptor uint16 = 0x8
)

// LocalFileHeader precedes each entry's payload.
type LocalFileHeader struct {
	ReaderVersion    uint16
	Flags            uint16
	Method           uint16
	ModifiedTime     uint16
	ModifiedDate     uint16
	CRC32            uint32
	CompressedSize   uint32
	UncompressedSize uint32
	Name             string
	Extra            []byte

	// RawNameLen is the on-disk byte length of the encoded name, which can
	// differ from len(Name) once CP437 bytes above 0x7f are decoded into
	// multi-byte UTF-8 runes. Offset arithmetic must use this, not len(Name).
	RawNameLen int
}

// HasDataDescriptor reports whether GP flag bit 3 is set.
func (h LocalFileHeader) HasDataDescriptor() bool {
	return h.Flags&FlagDataDescriptor != 0
}

// Size returns the total on-disk size of this header including its
// trailing name and extra field.
func (h LocalFileHeader) Size() int64 {
	return int64(LocalFileHeaderFixedSize + h.RawNameLen + len(h.Extra))
}

// ReadLocalFileHeader reads and validates a Local File Header from r, which
// must be positioned at the start of the structure.
func ReadLocalFileHeader(r io.Reader) (LocalFileHeader, error) {
	var buf [LocalFileHeaderFixedSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return LocalFileHeader{}, fmt.Errorf("read local file header: %w", err)
	}

	lr := lewire.NewReader(buf[:])
	if sig := lr.Uint32(); sig != SigLocalFileHeader {
		return LocalFileHeader{}, fmt.Errorf("read local file header: bad signature 0x%08x", sig)
	}

	h := LocalFileHeader{}
	lr.Uint16() // version needed to extract, unused
	h.Flags = lr.Uint16()
	h.Method = lr.Uint16()
	h.ModifiedTime = lr.Uint16()
	h.ModifiedDate = lr.Uint16()
	h.CRC32 = lr.Uint32()
	h.CompressedSize = lr.Uint32()
	h.UncompressedSize = lr.Uint32()
	nameLen := lr.Uint16()
	extraLen := lr.Uint16()

	name, err := readTrailing(r, int(nameLen))
	if err != nil {
		return LocalFileHeader{}, fmt.Errorf("read local file header name: %w", err)
	}
	extra, err := readTrailing(r, int(extraLen))
	if err != nil {
		return LocalFileHeader{}, fmt.Errorf("read local file header extra: %w", err)
	}
	h.Name = decodeName(name, h.Flags)
	h.Extra = extra
	h.RawNameLen = int(nameLen)
	return h, nil
}

// Bytes emits the fixed portion followed by name and extra field.
func (h LocalFileHeader) Bytes() []byte {
	nameBytes, utf8 := encodeName(h.Name, h.Flags)
	_ = utf8

	buf := make([]byte, LocalFileHeaderFixedSize+len(nameBytes)+len(h.Extra))
	w := lewire.NewWriter(buf)
	w.Uint32(SigLocalFileHeader)
	w.Uint16(h.ReaderVersion)
	w.Uint16(h.Flags)
	w.Uint16(h.Method)
	w.Uint16(h.ModifiedTime)
	w.Uint16(h.ModifiedDate)
	w.Uint32(h.CRC32)
	w.Uint32(h.CompressedSize)
	w.Uint32(h.UncompressedSize)
	w.Uint16(uint16(len(nameBytes)))
	w.Uint16(uint16(len(h.Extra)))
	copy(buf[LocalFileHeaderFixedSize:], nameBytes)
	copy(buf[LocalFileHeaderFixedSize+len(nameBytes):], h.Extra)
	return buf
}

// DataDescriptor follows a payload when the local header's sizes were
// unknown at write time (GP flag bit 3).
type DataDescriptor struct {
	CRC32            uint32
	CompressedSize   uint32
	UncompressedSize uint32
}

// ReadDataDescriptor reads a 16-byte Data Descriptor from r, positioned
// immediately after the entry payload. The de-facto standard signature is
// always emitted by this engine's writer, so it is required on read too.
func ReadDataDescriptor(r io.Reader) (DataDescriptor, error) {
	var buf [DataDescriptorFixedSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return DataDescriptor{}, fmt.Errorf("read data descriptor: %w", err)
	}
	lr := lewire.NewReader(buf[:])
	if sig := lr.Uint32(); sig != SigDataDescriptor {
		return DataDescriptor{}, fmt.Errorf("read data descriptor: bad signature 0x%08x", sig)
	}
	return DataDescriptor{
		CRC32:            lr.Uint32(),
		CompressedSize:   lr.Uint32(),
		UncompressedSize: lr.Uint32(),
	}, nil
}

// Bytes emits the Data Descriptor's 16 bytes.
func (d DataDescriptor) Bytes() []byte {
	buf := make([]byte, DataDescriptorFixedSize)
	w := lewire.NewWriter(buf)
	w.Uint32(SigDataDescriptor)
	w.Uint32(d.CRC32)
	w.Uint32(d.CompressedSize)
	w.Uint32(d.UncompressedSize)
	return buf
}

// CentralDirectoryHeader is the authoritative per-entry record; the engine
// must trust this over the (possibly zeroed) Local File Header.
type CentralDirectoryHeader struct {
	CreatorVersion   uint16
	ReaderVersion    uint16
	Flags            uint16
	Method           uint16
	ModifiedTime     uint16
	ModifiedDate     uint16
	CRC32            uint32
	CompressedSize   uint32
	UncompressedSize uint32
	DiskNumber       uint16
	InternalAttrs    uint16
	ExternalAttrs    uint32
	Offset           uint32
	Name             string
	Extra            []byte
	Comment          string

	// RawNameLen, RawExtraLen, RawCommentLen are the on-disk byte lengths
	// of the encoded trailing fields; see LocalFileHeader.RawNameLen.
	RawNameLen    int
	RawExtraLen   int
	RawCommentLen int
}

func (h CentralDirectoryHeader) HasDataDescriptor() bool {
	return h.Flags&FlagDataDescriptor != 0
}

// PayloadSize returns the size of the payload as it sits on disk: the
// compressed size for Deflate, the uncompressed size for Store.
func (h CentralDirectoryHeader) PayloadSize() uint32 {
	if h.Method == 0 {
		return h.UncompressedSize
	}
	return h.CompressedSize
}

// Modified converts ModifiedDate/ModifiedTime into a time.Time, resolution 2s.
func (h CentralDirectoryHeader) Modified() time.Time {
	return msDosTimeToTime(h.ModifiedDate, h.ModifiedTime)
}

// ReadCentralDirectoryHeader reads and validates a Central Directory Header
// from r, positioned at the start of the structure.
func ReadCentralDirectoryHeader(r io.Reader) (CentralDirectoryHeader, error) {
	var buf [CentralDirectoryHeaderFixedSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return CentralDirectoryHeader{}, fmt.Errorf("read central directory header: %w", err)
	}

	lr := lewire.NewReader(buf[:])
	if sig := lr.Uint32(); sig != SigCentralDirectoryHeader {
		return CentralDirectoryHeader{}, fmt.Errorf("read central directory header: bad signature 0x%08x", sig)
	}

	h := CentralDirectoryHeader{}
	h.CreatorVersion = lr.Uint16()
	h.ReaderVersion = lr.Uint16()
	h.Flags = lr.Uint16()
	h.Method = lr.Uint16()
	h.ModifiedTime = lr.Uint16()
	h.ModifiedDate = lr.Uint16()
	h.CRC32 = lr.Uint32()
	h.CompressedSize = lr.Uint32()
	h.UncompressedSize = lr.Uint32()
	nameLen := lr.Uint16()
	extraLen := lr.Uint16()
	commentLen := lr.Uint16()
	h.DiskNumber = lr.Uint16()
	h.InternalAttrs = lr.Uint16()
	h.ExternalAttrs = lr.Uint32()
	h.Offset = lr.Uint32()

	name, err := readTrailing(r, int(nameLen))
	if err != nil {
		return CentralDirectoryHeader{}, fmt.Errorf("read central directory header name: %w", err)
	}
	extra, err := readTrailing(r, int(extraLen))
	if err != nil {
		return CentralDirectoryHeader{}, fmt.Errorf("read central directory header extra: %w", err)
	}
	comment, err := readTrailing(r, int(commentLen))
	if err != nil {
		return CentralDirectoryHeader{}, fmt.Errorf("read central directory header comment: %w", err)
	}

	h.Name = decodeName(name, h.Flags)
	h.Extra = extra
	h.Comment = decodeName(comment, h.Flags)
	h.RawNameLen = int(nameLen)
	h.RawExtraLen = int(extraLen)
	h.RawCommentLen = int(commentLen)
	return h, nil
}

// Size returns the total on-disk size of this header including its
// trailing name, extra field, and comment.
func (h CentralDirectoryHeader) Size() int64 {
	return int64(CentralDirectoryHeaderFixedSize + h.RawNameLen + h.RawExtraLen + h.RawCommentLen)
}

// Bytes emits the fixed portion followed by name, extra field, and comment.
func (h CentralDirectoryHeader) Bytes() []byte {
	nameBytes, _ := encodeName(h.Name, h.Flags)
	commentBytes, _ := encodeName(h.Comment, h.Flags)

	buf := make([]byte, CentralDirectoryHeaderFixedSize+len(nameBytes)+len(h.Extra)+len(commentBytes))
	w := lewire.NewWriter(buf)
	w.Uint32(SigCentralDirectoryHeader)
	w.Uint16(h.CreatorVersion)
	w.Uint16(h.ReaderVersion)
	w.Uint16(h.Flags)
	w.Uint16(h.Method)
	w.Uint16(h.ModifiedTime)
	w.Uint16(h.ModifiedDate)
	w.Uint32(h.CRC32)
	w.Uint32(h.CompressedSize)
	w.Uint32(h.UncompressedSize)
	w.Uint16(uint16(len(nameBytes)))
	w.Uint16(uint16(len(h.Extra)))
	w.Uint16(uint16(len(commentBytes)))
	w.Uint16(h.DiskNumber)
	w.Uint16(h.InternalAttrs)
	w.Uint32(h.ExternalAttrs)
	w.Uint32(h.Offset)

	off := CentralDirectoryHeaderFixedSize
	copy(buf[off:], nameBytes)
	off += len(nameBytes)
	copy(buf[off:], h.Extra)
	off += len(h.Extra)
	copy(buf[off:], commentBytes)
	return buf
}

// EOCDRecord anchors the archive: total entry count and where the central
// directory begins.
type EOCDRecord struct {
	DiskNumber    uint16
	CDDiskOffset  uint16
	CDCountOnDisk uint16
	CDCount       uint16
	CDSize        uint32
	CDOffset      uint32
	Comment       []byte
}

// ReadEOCDRecord reads the fixed 22 bytes plus comment trailer from r,
// positioned at the start of the signature.
func ReadEOCDRecord(r io.Reader) (EOCDRecord, error) {
	var buf [EOCDFixedSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return EOCDRecord{}, fmt.Errorf("read EOCD: %w", err)
	}

	lr := lewire.NewReader(buf[:])
	if sig := lr.Uint32(); sig != SigEOCD {
		return EOCDRecord{}, fmt.Errorf("read EOCD: bad signature 0x%08x", sig)
	}

	rec := EOCDRecord{}
	rec.DiskNumber = lr.Uint16()
	rec.CDDiskOffset = lr.Uint16()
	rec.CDCountOnDisk = lr.Uint16()
	rec.CDCount = lr.Uint16()
	rec.CDSize = lr.Uint32()
	rec.CDOffset = lr.Uint32()
	commentLen := lr.Uint16()

	comment, err := readTrailing(r, int(commentLen))
	if err != nil {
		return EOCDRecord{}, fmt.Errorf("read EOCD comment: %w", err)
	}
	rec.Comment = comment
	return rec, nil
}

// Bytes emits the fixed 22 bytes followed by the comment.
func (rec EOCDRecord) Bytes() []byte {
	buf := make([]byte, EOCDFixedSize+len(rec.Comment))
	w := lewire.NewWriter(buf)
	w.Uint32(SigEOCD)
	w.Uint16(rec.DiskNumber)
	w.Uint16(rec.CDDiskOffset)
	w.Uint16(rec.CDCountOnDisk)
	w.Uint16(rec.CDCount)
	w.Uint32(rec.CDSize)
	w.Uint32(rec.CDOffset)
	w.Uint16(uint16(len(rec.Comment)))
	copy(buf[EOCDFixedSize:], rec.Comment)
	return buf
}

// EmptyEOCD returns the 22-byte EOCD record written by session Create.
func EmptyEOCD() EOCDRecord {
	return EOCDRecord{}
}

// readTrailing reads a variable-length filename/extra/comment field into a
// pooled buffer, avoiding a fresh allocation per central-directory record
// scanned, and returns a copy sized to n once the read succeeds.
func readTrailing(r io.Reader, n int) ([]byte, error) {
	if n == 0 {
		return nil, nil
	}
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	buf.B = buf.B[:0]
	if cap(buf.B) < n {
		buf.B = make([]byte, n)
	} else {
		buf.B = buf.B[:n]
	}
	if _, err := io.ReadFull(r, buf.B); err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, buf.B)
	return out, nil
}

// decodeName decodes b as UTF-8 when flags bit 11 is set, else as CP437.
func decodeName(b []byte, flags uint16) string {
	if len(b) == 0 {
		return ""
	}
	if flags&FlagUTF8 != 0 {
		return string(b)
	}
	return lewire.DecodeCP437(b)
}

// encodeName encodes s as UTF-8 when flags bit 11 is set, else attempts
// CP437; ok reports whether a lossless CP437 encoding was found.
func encodeName(s string, flags uint16) (b []byte, ok bool) {
	if flags&FlagUTF8 != 0 {
		return []byte(s), true
	}
	return lewire.EncodeCP437(s)
}

// detectUTF8 reports whether s is a valid UTF-8 string, and whether it
// must be considered UTF-8: any rune outside 0x20-0x7d, or a backslash,
// requires it, even where CP-437 has a byte for that rune.
func detectUTF8(s string) (valid, require bool) {
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		i += size
		if r < 0x20 || r > 0x7d || r == 0x5c {
			if !utf8.ValidRune(r) || (r == utf8.RuneError && size == 1) {
				return false, false
			}
			require = true
		}
	}
	return true, require
}

// EncodeCP437AwareName picks the same encoding policy the mutation engine
// uses when adding a new entry: prefer CP437 for names that don't need
// UTF-8, and fall back to UTF-8 (reporting cp437OK=false) otherwise. This
// mirrors prepareEntry's avoid-the-UTF-8-flag-unless-necessary behavior.
func EncodeCP437AwareName(s string) (nameBytes []byte, cp437OK bool) {
	valid, require := detectUTF8(s)
	if !require && valid {
		if b, ok := lewire.EncodeCP437(s); ok {
			return b, true
		}
	}
	return []byte(s), false
}

// msDosTimeToTime converts an MS-DOS date and time into a time.Time. The
// resolution is 2s.
func msDosTimeToTime(dosDate, dosTime uint16) time.Time {
	return time.Date(
		int(dosDate>>9+1980),
		time.Month(dosDate>>5&0xf),
		int(dosDate&0x1f),
		int(dosTime>>11),
		int(dosTime>>5&0x3f),
		int(dosTime&0x1f*2),
		0,
		time.UTC,
	)
}

// TimeToMsDosTime converts a time.Time into MS-DOS date and time fields.
func TimeToMsDosTime(t time.Time) (date, tm uint16) {
	date = uint16(t.Day() + int(t.Month())<<5 + (t.Year()-1980)<<9)
	tm = uint16(t.Second()/2 + t.Minute()<<5 + t.Hour()<<11)
	return
}
