/*
Command asn1kit is the thin CLI wrapper spec.md §6.2 describes: "a thin
wrapper over the core operations", not where the interesting engineering
happens. It dispatches convert and shell subcommands via
google/subcommands, the same package informatter-nilan's own cmd_*.go
files use for their subcommand set.
*/
package main

import (
	"context"
	"flag"
	"os"

	"github.com/google/subcommands"
)

func main() {
	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")
	subcommands.Register(subcommands.CommandsCommand(), "")
	subcommands.Register(&convertCmd{}, "")
	subcommands.Register(&shellCmd{}, "")

	flag.Parse()
	ctx := context.Background()
	os.Exit(int(subcommands.Execute(ctx)))
}
