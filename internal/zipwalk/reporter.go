package zipwalk

import (
	"io"
	"log"
)

// ProgressReporter is called to report progress while zipping a directory
// or unzipping an archive.
//
//   - src: path of the file being read (filesystem path for ZipDirectory,
//     archive entry path for UnzipArchive)
//   - dst: path of the file being written (archive entry path for
//     ZipDirectory, filesystem path for UnzipArchive)
//   - written: number of bytes written so far for this file
//   - done: true only once the file has been fully written
//
// The reporter is called at least once per file.
type ProgressReporter func(src, dst string, written int64, done bool)

// DefaultProgressReporter logs once a file has been fully processed.
func DefaultProgressReporter(src, dst string, written int64, done bool) {
	if done {
		log.Printf("%s => %s", src, dst)
	}
}

// NoOpProgressReporter turns off progress reporting.
func NoOpProgressReporter(src, dst string, written int64, done bool) {}

// CreateWriter returns an io.WriteCloser that reports progress as bytes
// flow through it, reporting done=true on Close.
func (r ProgressReporter) CreateWriter(src, dst string) io.WriteCloser {
	return &progressWriter{r, src, dst, 0}
}

type progressWriter struct {
	ProgressReporter
	src, dst string
	written  int64
}

func (w *progressWriter) Write(p []byte) (int, error) {
	n := len(p)
	w.written += int64(n)
	w.ProgressReporter(w.src, w.dst, w.written, false)
	return n, nil
}

func (w *progressWriter) Close() error {
	w.ProgressReporter(w.src, w.dst, w.written, true)
	return nil
}
