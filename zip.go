package zipkit

import (
	"io"
	"os"
	"time"

	"github.com/meniny/zipkit/internal/deflate"
	"github.com/meniny/zipkit/internal/preview"
	"github.com/meniny/zipkit/internal/zipmutate"
	"github.com/meniny/zipkit/internal/zipsession"
)

// Mode selects how Open treats the backing file.
type Mode int

const (
	// ReadOnly opens an existing archive for reading only.
	ReadOnly Mode = Mode(zipsession.Read)

	// CreateNew refuses to open over an existing file and starts a brand
	// new, empty archive.
	CreateNew Mode = Mode(zipsession.Create)

	// Update opens an existing archive for both reading and mutation.
	Update Mode = Mode(zipsession.Update)
)

// EntryKind is the derived type of an entry: File, Directory, or Symlink.
type EntryKind int

const (
	KindFile      EntryKind = EntryKind(zipsession.KindFile)
	KindDirectory EntryKind = EntryKind(zipsession.KindDirectory)
	KindSymlink   EntryKind = EntryKind(zipsession.KindSymlink)
)

func (k EntryKind) String() string { return zipsession.EntryKind(k).String() }

// Entry is an immutable snapshot of one archive member.
type Entry struct {
	entry zipsession.Entry
}

func (e Entry) Path() string            { return e.entry.Path() }
func (e Entry) UncompressedSize() uint64 { return e.entry.UncompressedSize() }
func (e Entry) CompressedSize() uint64   { return e.entry.CompressedSize() }
func (e Entry) CRC32() uint32            { return e.entry.CRC32() }
func (e Entry) Kind() EntryKind          { return EntryKind(e.entry.Kind) }
func (e Entry) Mode() os.FileMode {
	return zipsession.ModeFromExternalAttrs(e.entry.CentralDirectoryHeader.ExternalAttrs)
}
func (e Entry) Modified() time.Time { return e.entry.CentralDirectoryHeader.Modified() }

// Session is an open archive: either being read, freshly created, or open
// for read-write mutation. A Session owns its backing file exclusively and
// is not safe for concurrent use; callers must serialize access.
type Session struct {
	s *zipsession.Session
}

// Open opens, creates, or reopens-for-update the archive at path,
// depending on mode. The caller must Close the returned Session.
func Open(path string, mode Mode) (*Session, error) {
	s, err := zipsession.Open(path, zipsession.Mode(mode))
	if err != nil {
		return nil, err
	}
	return &Session{s: s}, nil
}

// Close releases the session's backing file.
func (sess *Session) Close() error { return sess.s.Close() }

// Iterate yields every entry in the archive in central-directory order. A
// read failure for an individual entry stops the sequence and yields the
// error.
func (sess *Session) Iterate() func(yield func(Entry, error) bool) {
	return func(yield func(Entry, error) bool) {
		for e, err := range sess.s.Iterate() {
			if err != nil {
				yield(Entry{}, err)
				return
			}
			if !yield(Entry{entry: e}, nil) {
				return
			}
		}
	}
}

// Lookup returns the first entry whose path matches exactly.
func (sess *Session) Lookup(path string) (Entry, bool, error) {
	e, ok, err := sess.s.Lookup(path)
	return Entry{entry: e}, ok, err
}

// Compression selects the method used by Add.
type Compression = deflate.Method

const (
	Store   = deflate.Store
	Deflate = deflate.Deflate
)

// AddOptions customises Add. With no option functions, Add compresses with
// Deflate, uses a 16 KiB chunk size, and gives the entry permissions 0o755.
type AddOptions struct {
	Compression Compression
	ChunkSize   int
	Permissions os.FileMode
	Modified    time.Time
}

// Add streams src into the session as path. A directory path (one ending
// in "/") or a nil src is stored as a zero-length entry. The session must
// not have been opened ReadOnly.
func (sess *Session) Add(path string, src io.Reader, optFns ...func(*AddOptions)) error {
	opts := &AddOptions{
		Compression: deflate.Deflate,
		ChunkSize:   deflate.DefaultChunkSize,
		Permissions: 0o755,
	}
	for _, fn := range optFns {
		fn(opts)
	}

	fns := []func(*zipmutate.AddOptions){
		zipmutate.WithChunkSize(opts.ChunkSize),
		zipmutate.WithMode(opts.Permissions),
	}
	if opts.Compression == deflate.Store {
		fns = append(fns, zipmutate.WithStore())
	} else {
		fns = append(fns, zipmutate.WithDeflate())
	}
	if !opts.Modified.IsZero() {
		fns = append(fns, zipmutate.WithModified(opts.Modified))
	}

	return zipmutate.Add(sess.s, path, src, fns...)
}

// Remove deletes entry from the archive, shifting the payload region left
// and rewriting the central directory.
func (sess *Session) Remove(entry Entry) error {
	return zipmutate.Remove(sess.s, entry.entry)
}

// ExtractOptions customises Extract.
type ExtractOptions struct {
	ChunkSize int
	SkipCRC   bool
}

// Extract streams entry's payload into dst, verifying the recomputed
// CRC-32 unless SkipCRC is set, and returns the number of bytes written.
func (sess *Session) Extract(entry Entry, dst io.Writer, optFns ...func(*ExtractOptions)) (int64, error) {
	opts := &ExtractOptions{ChunkSize: deflate.DefaultChunkSize}
	for _, fn := range optFns {
		fn(opts)
	}
	return zipmutate.Extract(sess.s, entry.entry, dst,
		zipmutate.WithExtractChunkSize(opts.ChunkSize),
		func(o *zipmutate.ExtractOptions) { o.SkipCRC = opts.SkipCRC },
	)
}

// ExtractToPath materializes entry at destPath on the local filesystem.
func (sess *Session) ExtractToPath(entry Entry, destPath string, optFns ...func(*ExtractOptions)) error {
	opts := &ExtractOptions{ChunkSize: deflate.DefaultChunkSize}
	for _, fn := range optFns {
		fn(opts)
	}
	return zipmutate.ExtractToPath(sess.s, entry.entry, destPath,
		zipmutate.WithExtractChunkSize(opts.ChunkSize),
		func(o *zipmutate.ExtractOptions) { o.SkipCRC = opts.SkipCRC },
	)
}

// PreviewFile is a leaf in a Preview tree.
type PreviewFile struct {
	Path string
	Size uint64
}

// PreviewFolder is an interior node in a Preview tree.
type PreviewFolder struct {
	Path    string
	Size    uint64
	Files   []PreviewFile
	Folders []*PreviewFolder
}

// Preview reconstructs the archive's flat entry list into a nested
// folder/file tree, returning the top-level folders.
func (sess *Session) Preview() []*PreviewFolder {
	roots := preview.Build(preview.FromSession(sess.s))
	out := make([]*PreviewFolder, len(roots))
	for i, f := range roots {
		out[i] = convertFolder(f)
	}
	return out
}

func convertFolder(f *preview.Folder) *PreviewFolder {
	files := make([]PreviewFile, len(f.Files))
	for i, pf := range f.Files {
		files[i] = PreviewFile{Path: pf.Path, Size: pf.Size}
	}
	folders := make([]*PreviewFolder, len(f.Folders))
	for i, pf := range f.Folders {
		folders[i] = convertFolder(pf)
	}
	return &PreviewFolder{Path: f.Path, Size: f.Size, Files: files, Folders: folders}
}
