package main

import (
	"context"
	"io"
	"log"
	"log/slog"
	"os"

	"github.com/dmitrijs2005/modtoolkit/internal/buildinfo"
	"github.com/dmitrijs2005/modtoolkit/internal/client/cli"
	"github.com/dmitrijs2005/modtoolkit/internal/client/config"
	"github.com/dmitrijs2005/modtoolkit/internal/logging"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()
	cfg := config.LoadConfig()

	// diagnostics go to a file so the REPL stays readable
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(logOutput(), nil)))

	app, err := cli.NewApp(cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
		return
	}

	app.Run(ctx)

}

func logOutput() io.Writer {
	f, err := os.OpenFile("modtoolkit.log", os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return io.Discard
	}
	return f
}
