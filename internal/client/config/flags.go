package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/modtoolkit/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   base URL of the backend server (default from Config)
//	-t int      request timeout in seconds (default from Config)
//	-r          roll back failed optimistic toggles immediately
//	-p string   path to the local profile database
//	-m          demo mode for device facts
//
// The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-t", "-r", "-p", "-m"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerURL, "a", cfg.ServerURL, "base URL of the backend server")
	requestTimeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")
	fs.BoolVar(&cfg.RollbackOnFailure, "r", cfg.RollbackOnFailure, "roll back failed toggles immediately")
	fs.StringVar(&cfg.ProfileDBPath, "p", cfg.ProfileDBPath, "path to the local profile database")
	fs.BoolVar(&cfg.DemoMode, "m", cfg.DemoMode, "demo mode for device facts")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.RequestTimeout = time.Duration(*requestTimeout) * time.Second
}
