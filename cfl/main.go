// Command cfl browses the crypto markets and tracks a crypto portfolio.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"path"

	"github.com/etnz/coinfolio/cmd"
	"github.com/google/subcommands"
)

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")
	cmd.Register(commander)

	// exits when invoked by the shell to complete a command line
	cmd.Completion(commander).Complete("cfl")

	flag.Parse()

	if name := flag.Arg(0); name != "" {
		if _, ok := cmd.Commands(commander)[name]; !ok {
			if found, code := cmd.RunExtension(name, flag.Args()[1:]); found {
				os.Exit(code)
			}
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	status := commander.Execute(ctx)
	stop()
	os.Exit(int(status))
}
