// Package list implements the "list" subcommand: print every entry in an
// archive, one line per entry, in central-directory order.
package list

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"

	"github.com/meniny/zipkit"
)

// Command lists the contents of one or more archives.
type Command struct {
	Args struct {
		Archives []string `positional-arg-name:"archive" description:"the archive files to list" required:"yes"`
	} `positional-args:"yes"`
}

func (c *Command) Execute(args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("unknown positional arguments: %s", strings.Join(args, " "))
	}

	for _, path := range c.Args.Archives {
		if err := list(path); err != nil {
			return fmt.Errorf("list %q: %w", path, err)
		}
	}
	return nil
}

func list(path string) error {
	sess, err := zipkit.Open(path, zipkit.ReadOnly)
	if err != nil {
		return err
	}
	defer sess.Close()

	w := tabwriter.NewWriter(os.Stdout, 0, 2, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintf(w, "%s\n", path+":")
	for entry, err := range sess.Iterate() {
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "  %s\t%s\t%s\n", entry.Kind(), humanize.Bytes(entry.UncompressedSize()), entry.Path())
	}
	return nil
}
