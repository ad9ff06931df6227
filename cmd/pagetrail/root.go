package main

import (
	"io"
	"os"

	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	"github.com/pagetrail/pagetrail-server/internal/config"
	"github.com/pagetrail/pagetrail-server/internal/di"
	"github.com/pagetrail/pagetrail-server/internal/logger"
	"github.com/pagetrail/pagetrail-server/internal/service"
)

// configFlags are forwarded to config.Load unchanged.
var configFlags = []struct{ name, usage string }{
	{config.FlagEnv, "Environment (development, staging, production)"},
	{config.FlagBackend, "Storage backend (badger, sqlite, redis, memory)"},
	{config.FlagDataPath, "Directory for local storage"},
	{config.FlagRedisAddr, "Redis address when storage=redis"},
	{config.FlagCovers, "Enable remote cover lookups (default: true)"},
	{config.FlagLogLevel, "Log level (default: warn)"},
	{config.FlagLogFile, "Optional rotating log file path"},
	{config.FlagEnvFile, "Path to .env file (default: .env)"},
}

// app holds the container for the lifetime of one command.
type app struct {
	flags    map[string]string
	injector *do.RootScope
}

func (a *app) library() *service.LibraryService {
	return do.MustInvoke[*service.LibraryService](a.injector)
}

func (a *app) covers() *service.CoverService {
	return do.MustInvoke[*service.CoverService](a.injector)
}

func (a *app) open(cmd *cobra.Command) error {
	for _, f := range configFlags {
		value, err := cmd.Flags().GetString(f.name)
		if err != nil {
			return err
		}
		a.flags[f.name] = value
	}
	// Keep the terminal quiet unless asked otherwise.
	if a.flags[config.FlagLogLevel] == "" && os.Getenv("LOG_LEVEL") == "" {
		a.flags[config.FlagLogLevel] = "warn"
	}

	a.injector = di.NewContainer(a.flags)
	return di.Bootstrap(a.injector)
}

func (a *app) close() {
	if a.injector == nil {
		return
	}
	log, logErr := do.Invoke[*logger.Logger](a.injector)
	if err := a.injector.Shutdown(); err != nil && logErr == nil {
		log.Error("Shutdown error", "error", err)
	}
	if logErr == nil {
		_ = log.Close()
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "pagetrail",
		Short:         "Track the books you own, read, and want to read",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.open(cmd)
		},
	}

	for _, f := range configFlags {
		root.PersistentFlags().String(f.name, "", f.usage)
	}

	root.AddCommand(
		newListCmd(a),
		newShelvesCmd(a),
		newAddCmd(a),
		newStatusCmd(a),
		newDeleteCmd(a),
		newImportCmd(a),
		newExportCmd(a),
		newCoverCmd(a),
		newSearchCmd(a),
	)
	return root
}

// execute runs one command line and releases the container afterwards.
func execute(args []string) error {
	return run(args, os.Stdin, os.Stdout)
}

func run(args []string, in io.Reader, out io.Writer) error {
	a := &app{flags: map[string]string{}}
	defer a.close()

	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetIn(in)
	root.SetOut(out)
	return root.Execute()
}
