package main

import (
	"errors"
	"fmt"
	"os"

	app "github.com/intel/svr-info/internal"
	"github.com/intel/svr-info/internal/cli"
)

// Set by goreleaser ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cli.SetVersionInfo(version, commit, date)
	basePath := app.ResolveBasePath()

	var a *app.App
	cli.SetInitializer(func(opts cli.GlobalOptions) error {
		var err error
		a, err = app.NewApp(basePath, app.Options{
			ConfigFile: opts.ConfigFile,
			LogLevel:   opts.LogLevel,
		})
		return err
	})

	err := cli.Execute()
	if a != nil {
		_ = a.Close()
	}
	if err != nil {
		if !errors.Is(err, cli.ErrSilentExit) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}
