package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"github.com/inful/mdfigure/cmd/mdfigure/commands"
	"github.com/inful/mdfigure/internal/logfields"
	"github.com/inful/mdfigure/internal/version"
)

func main() {
	var cli commands.CLI
	ctx := kong.Parse(&cli,
		kong.Name("mdfigure"),
		kong.Description("Render Markdown trees to HTML, rewriting image paragraphs into figures."),
		kong.UsageOnError(),
		kong.Vars{"version": fmt.Sprintf("mdfigure %s (commit %s, built %s)",
			version.Version, version.GitCommit, version.BuildTime)},
	)

	if err := ctx.Run(&commands.Global{Logger: slog.Default()}, &cli); err != nil {
		slog.Error("Command failed", logfields.Error(err))
		os.Exit(1)
	}
}
