// Package remove implements the "remove" subcommand: delete one or more
// entries from an existing archive.
package remove

import (
	"fmt"
	"strings"

	"github.com/meniny/zipkit"
)

// Command removes entries from an archive.
type Command struct {
	Args struct {
		Archive string   `positional-arg-name:"archive" description:"the archive to modify" required:"yes"`
		Entries []string `positional-arg-name:"entry" description:"entry paths to remove" required:"yes"`
	} `positional-args:"yes"`
}

func (c *Command) Execute(args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("unknown positional arguments: %s", strings.Join(args, " "))
	}

	sess, err := zipkit.Open(c.Args.Archive, zipkit.Update)
	if err != nil {
		return fmt.Errorf("open %q: %w", c.Args.Archive, err)
	}
	defer sess.Close()

	for _, path := range c.Args.Entries {
		entry, ok, err := sess.Lookup(path)
		if err != nil {
			return fmt.Errorf("lookup %q: %w", path, err)
		}
		if !ok {
			return fmt.Errorf("remove %q: no such entry", path)
		}
		if err := sess.Remove(entry); err != nil {
			return fmt.Errorf("remove %q: %w", path, err)
		}
	}
	return nil
}
