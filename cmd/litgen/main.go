package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/litgen/cmd/litgen/commands"
	"git.home.luguber.info/inful/litgen/internal/foundation/errors"
	"git.home.luguber.info/inful/litgen/internal/version"
)

func main() {
	cli := &commands.CLI{}
	parser := kong.Parse(cli,
		kong.Name("litgen"),
		kong.Description("Build and run the code generator described by a literate Markdown document."),
		kong.UsageOnError(),
		kong.Vars{"version": version.Version},
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := parser.Run(&commands.Global{Ctx: ctx, Stdout: os.Stdout}, cli)
	stop()

	os.Exit(errors.NewCLIErrorAdapter(cli.Verbose, slog.Default()).Report(err))
}
