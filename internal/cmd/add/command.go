// Package add implements the "add" subcommand: add a file or directory
// tree to a new or existing archive.
package add

import (
	"context"
	"fmt"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	flags "github.com/jessevdk/go-flags"

	"github.com/meniny/zipkit"
	"github.com/meniny/zipkit/internal"
	"github.com/meniny/zipkit/internal/config"
)

// Command adds files to an archive, creating it if it does not yet exist.
type Command struct {
	Method      string `long:"method" choice:"store" choice:"deflate" description:"compression method; defaults to the .zipkit config, or deflate"`
	Permissions uint32 `long:"permissions" base:"8" description:"octal permissions to store for new entries; defaults to the .zipkit config, or 0755"`
	Args        struct {
		Archive string   `positional-arg-name:"archive" description:"the archive to add to" required:"yes"`
		Files   []string `positional-arg-name:"file" description:"files or directories to add" required:"yes"`
	} `positional-args:"yes"`
}

func (c *Command) Execute(args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("unknown positional arguments: %s", strings.Join(args, " "))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, os.Kill)
	defer stop()

	if _, err := config.Load(ctx); err != nil {
		return fmt.Errorf("load .zipkit config: %w", err)
	}
	defaults := config.ForAdd()

	method := c.Method
	if method == "" {
		method = defaults.Method
	}
	compression := zipkit.Deflate
	if method == "store" {
		compression = zipkit.Store
	}

	perm := os.FileMode(c.Permissions)
	if perm == 0 {
		perm = defaults.Permissions
	}

	mode := zipkit.CreateNew
	if _, err := os.Stat(c.Args.Archive); err == nil {
		mode = zipkit.Update
	}

	sess, err := zipkit.Open(c.Args.Archive, mode)
	if err != nil {
		return fmt.Errorf("open %q: %w", c.Args.Archive, err)
	}
	defer sess.Close()

	n := len(c.Args.Files)
	for i, path := range c.Args.Files {
		log.Print(internal.Prefix(i, n, flags.Filename(path)))
		if err := addPath(sess, path, compression, perm); err != nil {
			return fmt.Errorf("add %q: %w", path, err)
		}
	}
	return nil
}

func addPath(sess *zipkit.Session, path string, compression zipkit.Compression, perm os.FileMode) error {
	fi, err := os.Stat(path)
	if err != nil {
		return err
	}

	if fi.IsDir() {
		base := filepath.Base(path)
		return filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			name, err := filepath.Rel(path, p)
			if err != nil {
				return err
			}
			name = filepath.ToSlash(name)
			if name == "." {
				return nil
			}
			name = base + "/" + name

			if d.IsDir() {
				return sess.Add(name+"/", nil, func(o *zipkit.AddOptions) { o.Permissions = os.ModeDir | perm })
			}
			if !d.Type().IsRegular() {
				return nil
			}

			info, err := d.Info()
			if err != nil {
				return err
			}
			f, err := os.Open(p)
			if err != nil {
				return err
			}
			defer f.Close()

			return sess.Add(name, f, func(o *zipkit.AddOptions) {
				o.Compression = compression
				o.Permissions = perm
				o.Modified = info.ModTime()
			})
		})
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return sess.Add(path, f, func(o *zipkit.AddOptions) {
		o.Compression = compression
		o.Permissions = perm
		o.Modified = fi.ModTime()
	})
}
