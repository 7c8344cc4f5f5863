// shopctl is a terminal storefront client: browse the catalogue, manage the
// cart, check out, and manage your account from the command line.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/common-nighthawk/go-figure"
	"github.com/google/subcommands"
	"github.com/rs/zerolog"

	"github.com/jrsteele09/go-shopfront-client/cmd/shopctl/internal/cli"
	"github.com/jrsteele09/go-shopfront-client/credentials"
	"github.com/jrsteele09/go-shopfront-client/internal/config"
	"github.com/jrsteele09/go-shopfront-client/rest"
	"github.com/jrsteele09/go-shopfront-client/session"
)

func main() {
	os.Exit(int(run()))
}

func run() (status subcommands.ExitStatus) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Recovered from panic: %v\n", r)
			debug.PrintStack()
			status = subcommands.ExitFailure
		}
	}()

	if len(os.Args) == 1 {
		displayAppname("shopctl")
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %s\n", err)
		return subcommands.ExitFailure
	}

	logger := newLogger(cfg.LogLevel)

	var storeOptions []credentials.FileStoreOption
	if cfg.VaultPassphrase != "" {
		storeOptions = append(storeOptions, credentials.WithPassphrase(cfg.VaultPassphrase))
	}
	store, err := credentials.NewFileStore(cfg.CredentialsPath, storeOptions...)
	if err != nil {
		logger.Error().Err(err).Msg("could not open credentials store")
		return subcommands.ExitFailure
	}

	api, err := rest.New(cfg.APIRoot, rest.WithTimeout(cfg.HTTPTimeout), rest.WithLogger(logger))
	if err != nil {
		logger.Error().Err(err).Msg("could not create backend client")
		return subcommands.ExitFailure
	}

	manager, err := session.New(
		session.Deps{API: api, Store: store},
		session.WithLogger(logger),
	)
	if err != nil {
		logger.Error().Err(err).Msg("could not create session manager")
		return subcommands.ExitFailure
	}

	cli.Register(&cli.App{
		Session: manager,
		API:     api,
		Logger:  logger,
		Out:     os.Stdout,
	})

	flag.Parse()
	return subcommands.Execute(context.Background())
}

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(lvl).
		With().
		Timestamp().
		Logger()
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
