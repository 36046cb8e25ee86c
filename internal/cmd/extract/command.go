// Package extract implements the "extract" subcommand: materialize some or
// all entries of an archive onto the local filesystem.
package extract

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	flags "github.com/jessevdk/go-flags"

	"github.com/meniny/zipkit"
	"github.com/meniny/zipkit/internal"
)

// Command extracts an archive, or a subset of its entries, to a directory.
type Command struct {
	OutputDir string   `long:"output-dir" short:"o" description:"directory to extract into; defaults to a new directory named after the archive without its extension, or to the current directory with --entry"`
	Entries   []string `long:"entry" description:"extract only this entry path; may be repeated. Defaults to the whole archive"`
	Args      struct {
		Archive string `positional-arg-name:"archive" description:"the archive to extract" required:"yes"`
	} `positional-args:"yes"`
}

func (c *Command) Execute(args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("unknown positional arguments: %s", strings.Join(args, " "))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, os.Kill)
	defer stop()

	if len(c.Entries) == 0 {
		total, err := totalUncompressedSize(c.Args.Archive)
		if err != nil {
			return fmt.Errorf("scan %q: %w", c.Args.Archive, err)
		}
		reporter := internal.NewBarReporter(total, "extracting "+c.Args.Archive)

		dir, err := zipkit.UnzipArchive(ctx, c.Args.Archive, c.OutputDir, func(o *zipkit.UnzipArchiveOptions) {
			o.UseGivenDirectory = c.OutputDir != ""
			o.ProgressReporter = zipkit.ProgressReporter(reporter)
		})
		if err != nil {
			return fmt.Errorf("extract %q: %w", c.Args.Archive, err)
		}
		fmt.Fprintf(os.Stdout, "extracted %q to %q\n", c.Args.Archive, dir)
		return nil
	}

	sess, err := zipkit.Open(c.Args.Archive, zipkit.ReadOnly)
	if err != nil {
		return fmt.Errorf("open %q: %w", c.Args.Archive, err)
	}
	defer sess.Close()

	dir := c.OutputDir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	n := len(c.Entries)
	for i, path := range c.Entries {
		entry, ok, err := sess.Lookup(path)
		if err != nil {
			return fmt.Errorf("lookup %q: %w", path, err)
		}
		if !ok {
			return fmt.Errorf("extract %q: no such entry", path)
		}

		entryCtx := internal.WithPrefixLogger(ctx, internal.Prefix(i, n, flags.Filename(path)))
		destPath := filepath.Join(dir, filepath.FromSlash(path))
		internal.MustLogger(entryCtx).Printf("%sextracting to %s", internal.MustPrefix(entryCtx), destPath)
		if err := sess.ExtractToPath(entry, destPath); err != nil {
			return fmt.Errorf("extract %q: %w", path, err)
		}
	}
	return nil
}

func totalUncompressedSize(archivePath string) (int64, error) {
	sess, err := zipkit.Open(archivePath, zipkit.ReadOnly)
	if err != nil {
		return 0, err
	}
	defer sess.Close()

	var total int64
	for entry, err := range sess.Iterate() {
		if err != nil {
			return 0, err
		}
		total += int64(entry.UncompressedSize())
	}
	return total, nil
}
