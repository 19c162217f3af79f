// Command marketplay-admin manages the marketplay schema and user directory.
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/bobmcallan/marketplay/internal/interfaces"
	"github.com/google/subcommands"
)

func main() {
	configPath := flag.String("config", "", "path to marketplay.toml (defaults to MARKETPLAY_CONFIG)")

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")

	open := func(ctx context.Context) (interfaces.StorageManager, error) {
		return openStorage(ctx, *configPath)
	}
	for _, c := range commands(open, os.Stdout) {
		commander.Register(c, "")
	}

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
