// Package zipwalk implements the "external collaborator" convenience
// wrappers ZipDirectory and UnzipArchive: thin filesystem glue on top of
// the core session/mutation/preview packages, grounded on
// zipper.Zipper.CompressDir/WalkRegularFiles and zipper.Extract.
package zipwalk

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/meniny/zipkit/internal/deflate"
	"github.com/meniny/zipkit/internal/zipmutate"
	"github.com/meniny/zipkit/internal/zipsession"
)

// ZipDirectoryOptions customises ZipDirectory.
type ZipDirectoryOptions struct {
	ProgressReporter ProgressReporter
	ChunkSize        int
	Compression      deflate.Method

	// UnwrapRoot omits dir's own basename as the archive's common root.
	UnwrapRoot bool

	// WriteDir writes directory entries to the archive.
	WriteDir bool
}

// ZipDirectory recursively compresses dir into a new archive at
// archivePath, cancellable via ctx between files. By default the archive
// content is rooted under filepath.Base(dir), mirroring how the directory
// would look if re-extracted with UnzipArchive.
func ZipDirectory(ctx context.Context, dir, archivePath string, optFns ...func(*ZipDirectoryOptions)) error {
	opts := &ZipDirectoryOptions{
		ProgressReporter: DefaultProgressReporter,
		ChunkSize:        deflate.DefaultChunkSize,
		Compression:      deflate.Deflate,
	}
	for _, fn := range optFns {
		fn(opts)
	}

	s, err := zipsession.Open(archivePath, zipsession.Create)
	if err != nil {
		return fmt.Errorf("zip directory %q: %w", dir, err)
	}
	defer s.Close()

	base := filepath.Base(dir)
	archiveName := func(path string) (string, error) {
		name, err := filepath.Rel(dir, path)
		if err != nil {
			return "", err
		}
		name = filepath.ToSlash(name)
		if opts.UnwrapRoot || name == "." {
			return name, nil
		}
		return base + "/" + name, nil
	}

	pr := opts.ProgressReporter
	var addMode func(*zipmutate.AddOptions)
	if opts.Compression == deflate.Store {
		addMode = zipmutate.WithStore()
	} else {
		addMode = zipmutate.WithDeflate()
	}

	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		select {
		case <-ctx.Done():
			if err = ctx.Err(); err == nil {
				return filepath.SkipAll
			}
			return err
		default:
		}
		if err != nil {
			return fmt.Errorf("zip directory %q: walk: %w", dir, err)
		}

		name, err := archiveName(path)
		if err != nil {
			return fmt.Errorf("zip directory %q: compute archive path for %q: %w", dir, path, err)
		}
		if name == "." {
			return nil
		}

		if d.IsDir() {
			if !opts.WriteDir {
				return nil
			}
			if err := zipmutate.Add(s, name+"/", nil, zipmutate.WithMode(os.ModeDir|0o755)); err != nil {
				return fmt.Errorf("zip directory %q: add directory %q: %w", dir, name, err)
			}
			pr(path, name+"/", 0, true)
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		fi, err := d.Info()
		if err != nil {
			return fmt.Errorf("zip directory %q: stat %q: %w", dir, path, err)
		}

		src, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("zip directory %q: open %q: %w", dir, path, err)
		}
		defer src.Close()

		w := pr.CreateWriter(path, name)
		if err := zipmutate.Add(s, name, io.TeeReader(src, w),
			zipmutate.WithChunkSize(opts.ChunkSize),
			addMode,
			zipmutate.WithMode(fi.Mode()),
			zipmutate.WithModified(fi.ModTime()),
		); err != nil {
			return fmt.Errorf("zip directory %q: add file %q: %w", dir, name, err)
		}
		return w.Close()
	})
}
