package main

import (
	"fmt"
	"os"

	"github.com/jessevdk/go-flags"

	"github.com/meniny/zipkit/internal/cmd/add"
	"github.com/meniny/zipkit/internal/cmd/extract"
	"github.com/meniny/zipkit/internal/cmd/list"
	"github.com/meniny/zipkit/internal/cmd/preview"
	"github.com/meniny/zipkit/internal/cmd/remove"
)

var opts struct {
	List    list.Command    `command:"list" alias:"ls" description:"list the entries in one or more archives"`
	Add     add.Command     `command:"add" description:"add files or directories to an archive, creating it if needed"`
	Remove  remove.Command  `command:"remove" alias:"rm" description:"remove entries from an archive"`
	Extract extract.Command `command:"extract" alias:"x" description:"extract an archive, or specific entries, to a directory"`
	Preview preview.Command `command:"preview" description:"print the folder/file tree an archive would extract to"`
}

func main() {
	p := flags.NewParser(&opts, flags.Default)
	p.CommandHandler = func(command flags.Commander, args []string) error {
		return command.Execute(args)
	}

	if _, err := p.Parse(); err != nil {
		if !flags.WroteHelp(err) {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		os.Exit(0)
	}
}
