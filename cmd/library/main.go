// Package main is the entry point for the library inventory.
//
// It keeps a small collection of books in memory, lets an operator add,
// borrow and return them from an interactive menu, and saves or loads the
// whole collection as a JSON file on request.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	iofs "io/fs"
	"log/slog"
	"os"
	"runtime/debug"

	"github.com/books-inventory/cmd/library/book"
	"github.com/books-inventory/cmd/library/config"
	"github.com/books-inventory/cmd/library/console"
	"github.com/books-inventory/cmd/library/inmemory"
	"github.com/books-inventory/cmd/library/jsonfile"
	"github.com/google/uuid"
	"github.com/lmittmann/tint"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "library: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout io.Writer) error {
	fs := flag.NewFlagSet("library", flag.ContinueOnError)
	version := fs.Bool("version", false, "Print version and exit")
	configPath := fs.String("config", "", "YAML config file (also "+config.EnvConfigFile+")")
	file := fs.String("file", "", "Books file used by Save and Load (default books.json)")
	logLevel := fs.String("log-level", "", "Log level written to stderr: debug, info, warn, error (default warn)")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}
	if len(fs.Args()) > 0 {
		return fmt.Errorf("unknown arguments: %v", fs.Args())
	}

	if *version {
		printVersion(stdout)
		return nil
	}

	cfg, err := loadConfig(fs, *configPath, *file, *logLevel)
	if err != nil {
		return err
	}

	level, err := cfg.Level()
	if err != nil {
		return err
	}
	logger := newLogger(level).With("session", uuid.NewString())
	slog.SetDefault(logger)

	ctx := context.Background()

	store, err := inmemory.NewInMemoryStore()
	if err != nil {
		return fmt.Errorf("creating store: %w", err)
	}
	bookService := book.NewService(store, jsonfile.NewStore())

	loadAtStartup(ctx, bookService, cfg.File)

	return console.New(bookService, stdin, stdout, cfg.File).Run(ctx)
}

// loadAtStartup fills the collection from path. A missing or broken file
// just means an empty collection; only a broken one is worth a warning.
func loadAtStartup(ctx context.Context, svc book.ServiceAPI, path string) {
	err := svc.LoadBooks(ctx, path)
	switch {
	case err == nil:
	case errors.Is(err, iofs.ErrNotExist):
		slog.InfoContext(ctx, "no books file yet, starting with an empty collection", "file", path)
	default:
		slog.WarnContext(ctx, "starting with an empty collection", "file", path, "err", err)
	}
}

/* Layers the configuration: defaults, YAML file, environment, then the flags the operator actually set. */
func loadConfig(fs *flag.FlagSet, configPath, file, logLevel string) (config.Config, error) {
	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) {
		set[f.Name] = true
	})

	if !set["config"] {
		configPath = os.Getenv(config.EnvConfigFile)
	}

	cfg := config.Defaults()
	if configPath != "" {
		fromFile, err := config.LoadYAML(configPath)
		if err != nil {
			return cfg, err
		}
		cfg = config.Merge(cfg, fromFile)
	}
	cfg = config.Merge(cfg, config.FromEnv(os.Getenv))

	var fromFlags config.Config
	if set["file"] {
		fromFlags.File = file
	}
	if set["log-level"] {
		fromFlags.LogLevel = logLevel
	}
	cfg = config.Merge(cfg, fromFlags)

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func newLogger(level slog.Level) *slog.Logger {
	return slog.New(tint.NewHandler(colorable.NewColorable(os.Stderr), &tint.Options{
		Level:      level,
		TimeFormat: "15:04:05.000",
		NoColor:    !isatty.IsTerminal(os.Stderr.Fd()),
	}))
}

func printVersion(w io.Writer) {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		fmt.Fprintln(w, "library (unknown version)")
		return
	}
	fmt.Fprintf(w, "library %s %s\n", info.Main.Version, info.GoVersion)
}
