package zipkit

import (
	"context"

	"github.com/meniny/zipkit/internal/deflate"
	"github.com/meniny/zipkit/internal/zipwalk"
)

// ZipDirectoryOptions customises ZipDirectory.
type ZipDirectoryOptions struct {
	ProgressReporter ProgressReporter
	ChunkSize        int
	Compression      Compression
	UnwrapRoot       bool
	WriteDir         bool
}

// ZipDirectory recursively compresses dir into a new archive at
// archivePath, cancellable via ctx between files. It is an external
// collaborator built entirely on top of the core's add operation (the
// zipmutate.Add that Session.Add also wraps): it does not belong to the
// core engine.
func ZipDirectory(ctx context.Context, dir, archivePath string, optFns ...func(*ZipDirectoryOptions)) error {
	opts := &ZipDirectoryOptions{
		ProgressReporter: DefaultProgressReporter,
		ChunkSize:        deflate.DefaultChunkSize,
		Compression:      deflate.Deflate,
	}
	for _, fn := range optFns {
		fn(opts)
	}

	return zipwalk.ZipDirectory(ctx, dir, archivePath, func(o *zipwalk.ZipDirectoryOptions) {
		o.ProgressReporter = zipwalk.ProgressReporter(opts.ProgressReporter)
		o.ChunkSize = opts.ChunkSize
		o.Compression = opts.Compression
		o.UnwrapRoot = opts.UnwrapRoot
		o.WriteDir = opts.WriteDir
	})
}

// UnzipArchiveOptions customises UnzipArchive.
type UnzipArchiveOptions struct {
	ProgressReporter  ProgressReporter
	ChunkSize         int
	UseGivenDirectory bool
	NoUnwrapRoot      bool
	NoOverwrite       bool
}

// UnzipArchive extracts the archive at archivePath under dir, cancellable
// via ctx between entries, and returns the directory actually used.
func UnzipArchive(ctx context.Context, archivePath, dir string, optFns ...func(*UnzipArchiveOptions)) (string, error) {
	opts := &UnzipArchiveOptions{
		ProgressReporter: DefaultProgressReporter,
		ChunkSize:        deflate.DefaultChunkSize,
	}
	for _, fn := range optFns {
		fn(opts)
	}

	return zipwalk.UnzipArchive(ctx, archivePath, dir, func(o *zipwalk.UnzipArchiveOptions) {
		o.ProgressReporter = zipwalk.ProgressReporter(opts.ProgressReporter)
		o.ChunkSize = opts.ChunkSize
		o.UseGivenDirectory = opts.UseGivenDirectory
		o.NoUnwrapRoot = opts.NoUnwrapRoot
		o.NoOverwrite = opts.NoOverwrite
	})
}

// ProgressReporter is called to report progress while zipping a directory
// or unzipping an archive. See zipwalk.ProgressReporter for the exact
// src/dst/written/done contract.
type ProgressReporter func(src, dst string, written int64, done bool)

// DefaultProgressReporter logs once a file has been fully processed.
func DefaultProgressReporter(src, dst string, written int64, done bool) {
	zipwalk.DefaultProgressReporter(src, dst, written, done)
}

// NoOpProgressReporter turns off progress reporting.
func NoOpProgressReporter(src, dst string, written int64, done bool) {}
