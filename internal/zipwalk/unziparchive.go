package zipwalk

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/meniny/zipkit/internal/deflate"
	"github.com/meniny/zipkit/internal/fsutil"
	"github.com/meniny/zipkit/internal/zipmutate"
	"github.com/meniny/zipkit/internal/zipsession"
)

// UnzipArchiveOptions customises UnzipArchive.
type UnzipArchiveOptions struct {
	ProgressReporter ProgressReporter
	ChunkSize        int

	// UseGivenDirectory extracts directly into dir instead of creating a
	// new subdirectory named after the archive.
	UseGivenDirectory bool

	// NoUnwrapRoot keeps the archive's common top-level directory instead
	// of stripping it.
	NoUnwrapRoot bool

	// NoOverwrite skips files that already exist at the destination.
	NoOverwrite bool
}

// UnzipArchive extracts the archive at archivePath under dir, cancellable
// via ctx between entries, and returns the directory actually used.
//
// Unless UseGivenDirectory is set, a new subdirectory is created (named
// after the archive's basename, disambiguated with a "-1", "-2", ...
// suffix if one already exists). Unless NoUnwrapRoot is set, a single
// common top-level directory shared by every entry is stripped, the same
// way a directory compressed by ZipDirectory can be round-tripped back to
// its original shape.
func UnzipArchive(ctx context.Context, archivePath, dir string, optFns ...func(*UnzipArchiveOptions)) (string, error) {
	opts := &UnzipArchiveOptions{
		ProgressReporter: DefaultProgressReporter,
		ChunkSize:        deflate.DefaultChunkSize,
	}
	for _, fn := range optFns {
		fn(opts)
	}

	s, err := zipsession.Open(archivePath, zipsession.Read)
	if err != nil {
		return "", fmt.Errorf("unzip archive %q: %w", archivePath, err)
	}
	defer s.Close()

	if !opts.UseGivenDirectory {
		stem := strings.TrimSuffix(filepath.Base(archivePath), filepath.Ext(archivePath))
		name, err := fsutil.MkExclDir(dir, stem)
		if err != nil {
			return "", fmt.Errorf("unzip archive %q: create output directory: %w", archivePath, err)
		}
		dir = filepath.Join(dir, name)
	}

	trimRoot := func(path string) string { return path }
	if !opts.NoUnwrapRoot {
		root, ok, err := commonRoot(s)
		if err != nil {
			return "", fmt.Errorf("unzip archive %q: find common root: %w", archivePath, err)
		}
		if ok {
			prefix := root + "/"
			trimRoot = func(path string) string { return strings.TrimPrefix(path, prefix) }
		}
	}

	pr := opts.ProgressReporter
	for entry, err := range s.Iterate() {
		select {
		case <-ctx.Done():
			return dir, ctx.Err()
		default:
		}
		if err != nil {
			return dir, fmt.Errorf("unzip archive %q: read central directory: %w", archivePath, err)
		}

		name := trimRoot(entry.Path())
		if name == "" {
			continue
		}
		destPath := filepath.Join(dir, filepath.FromSlash(name))

		if entry.Kind != zipsession.KindDirectory && opts.NoOverwrite {
			if _, statErr := os.Stat(destPath); statErr == nil {
				continue
			}
		}

		pr(entry.Path(), destPath, 0, false)
		if err := zipmutate.ExtractToPath(s, entry, destPath, zipmutate.WithExtractChunkSize(opts.ChunkSize)); err != nil {
			return dir, fmt.Errorf("unzip archive %q: %w", archivePath, err)
		}
		pr(entry.Path(), destPath, int64(entry.UncompressedSize()), true)
	}

	return dir, nil
}

// commonRoot mirrors zipper.findRoot: it reports the single top-level
// directory shared by every entry, or ok=false if entries disagree or any
// entry sits at the top level.
func commonRoot(s *zipsession.Session) (root string, ok bool, err error) {
	for entry, iterErr := range s.Iterate() {
		if iterErr != nil {
			return "", false, iterErr
		}

		segs := strings.SplitN(entry.Path(), "/", 2)
		if len(segs) == 1 {
			return "", false, nil
		}

		switch {
		case !ok:
			root, ok = segs[0], true
		case segs[0] != root:
			return "", false, nil
		}
	}
	return root, ok, nil
}
