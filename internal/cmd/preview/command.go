// Package preview implements the "preview" subcommand: print the folder
// tree an archive would produce on extraction, without touching disk.
package preview

import (
	"fmt"
	"os"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/meniny/zipkit"
)

// Command prints the reconstructed folder/file tree of an archive.
type Command struct {
	Args struct {
		Archive string `positional-arg-name:"archive" description:"the archive to preview" required:"yes"`
	} `positional-args:"yes"`
}

func (c *Command) Execute(args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("unknown positional arguments: %s", strings.Join(args, " "))
	}

	sess, err := zipkit.Open(c.Args.Archive, zipkit.ReadOnly)
	if err != nil {
		return fmt.Errorf("open %q: %w", c.Args.Archive, err)
	}
	defer sess.Close()

	for _, f := range sess.Preview() {
		printFolder(f, 0)
	}
	return nil
}

func printFolder(f *zipkit.PreviewFolder, depth int) {
	indent := strings.Repeat("  ", depth)
	fmt.Fprintf(os.Stdout, "%s%s/ (%s)\n", indent, f.Path, humanize.Bytes(f.Size))
	for _, file := range f.Files {
		fmt.Fprintf(os.Stdout, "%s  %s (%s)\n", indent, file.Path, humanize.Bytes(file.Size))
	}
	for _, folder := range f.Folders {
		printFolder(folder, depth+1)
	}
}
