package main

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/books-inventory/cmd/library/book"
	"github.com/books-inventory/cmd/library/config"
	"github.com/books-inventory/cmd/library/inmemory"
	"github.com/books-inventory/cmd/library/jsonfile"
	"github.com/matryer/is"
)

// clearEnv keeps the developer's environment out of the tests.
func clearEnv(t *testing.T) {
	t.Helper()
	t.Setenv(config.EnvConfigFile, "")
	t.Setenv(config.EnvFile, "")
	t.Setenv(config.EnvLogLevel, "")
}

func TestRun(t *testing.T) {
	t.Run("a session saves to the file given by flag", func(t *testing.T) {
		is := is.New(t)
		clearEnv(t)
		path := filepath.Join(t.TempDir(), "books.json")

		var out bytes.Buffer
		err := run([]string{"-file", path}, strings.NewReader("1\nDune\nHerbert\n111\n5\n7\n"), &out)
		is.NoErr(err)
		is.True(strings.Contains(out.String(), "Data saved successfully."))

		data, err := os.ReadFile(path)
		is.NoErr(err)
		is.Equal(string(data), `[{"title":"Dune","author":"Herbert","available":true,"isbn":"111"}]`)
	})

	t.Run("books in the file are loaded at startup", func(t *testing.T) {
		is := is.New(t)
		clearEnv(t)
		path := filepath.Join(t.TempDir(), "books.json")
		is.NoErr(os.WriteFile(path, []byte(`[{"title":"Emma","author":"Austen","available":false,"isbn":"222"}]`), 0o644))

		var out bytes.Buffer
		is.NoErr(run([]string{"-file", path}, strings.NewReader("4\n7\n"), &out))
		is.True(strings.Contains(out.String(), "Title: Emma, Author: Austen, ISBN: 222, Available: false\n"))
	})

	t.Run("a broken file at startup means an empty collection", func(t *testing.T) {
		is := is.New(t)
		clearEnv(t)
		path := filepath.Join(t.TempDir(), "books.json")
		is.NoErr(os.WriteFile(path, []byte(`not json`), 0o644))

		var out bytes.Buffer
		is.NoErr(run([]string{"-file", path}, strings.NewReader("4\n7\n"), &out))
		is.True(!strings.Contains(out.String(), "Title:"))
	})

	t.Run("closing stdin exits cleanly", func(t *testing.T) {
		is := is.New(t)
		clearEnv(t)

		var out bytes.Buffer
		is.NoErr(run([]string{"-file", filepath.Join(t.TempDir(), "books.json")}, strings.NewReader(""), &out))
	})

	t.Run("prints the version", func(t *testing.T) {
		is := is.New(t)
		clearEnv(t)

		var out bytes.Buffer
		is.NoErr(run([]string{"-version"}, strings.NewReader(""), &out))
		is.True(strings.HasPrefix(out.String(), "library "))
	})

	t.Run("unknown arguments fail", func(t *testing.T) {
		is := is.New(t)
		clearEnv(t)

		err := run([]string{"extra"}, strings.NewReader(""), &bytes.Buffer{})
		is.True(err != nil)
	})

	t.Run("an invalid log level fails", func(t *testing.T) {
		is := is.New(t)
		clearEnv(t)

		err := run([]string{"-log-level", "loud"}, strings.NewReader(""), &bytes.Buffer{})
		is.True(err != nil)
	})
}

func TestLoadAtStartup(t *testing.T) {
	capture := func(t *testing.T) *bytes.Buffer {
		t.Helper()
		var logs bytes.Buffer
		prev := slog.Default()
		slog.SetDefault(slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug})))
		t.Cleanup(func() { slog.SetDefault(prev) })
		return &logs
	}
	newService := func(is *is.I) *book.Service {
		store, err := inmemory.NewInMemoryStore()
		is.NoErr(err)
		return book.NewService(store, jsonfile.NewStore())
	}

	t.Run("a missing file is logged at info", func(t *testing.T) {
		is := is.New(t)
		logs := capture(t)

		loadAtStartup(context.Background(), newService(is), filepath.Join(t.TempDir(), "books.json"))
		is.True(strings.Contains(logs.String(), "level=INFO"))
		is.True(!strings.Contains(logs.String(), "level=WARN"))
	})

	t.Run("a broken file is logged at warn", func(t *testing.T) {
		is := is.New(t)
		logs := capture(t)
		path := filepath.Join(t.TempDir(), "books.json")
		is.NoErr(os.WriteFile(path, []byte(`not json`), 0o644))

		loadAtStartup(context.Background(), newService(is), path)
		is.True(strings.Contains(logs.String(), "level=WARN"))
	})

	t.Run("a good file loads without a warning", func(t *testing.T) {
		is := is.New(t)
		logs := capture(t)
		path := filepath.Join(t.TempDir(), "books.json")
		is.NoErr(os.WriteFile(path, []byte(`[]`), 0o644))

		svc := newService(is)
		loadAtStartup(context.Background(), svc, path)
		is.True(!strings.Contains(logs.String(), "level=WARN"))

		books, err := svc.ListBooks(context.Background())
		is.NoErr(err)
		is.Equal(len(books), 0)
	})
}

func TestLoadConfigPrecedence(t *testing.T) {
	t.Run("flags beat env, env beats the config file", func(t *testing.T) {
		is := is.New(t)
		clearEnv(t)
		dir := t.TempDir()

		cfgPath := filepath.Join(dir, "library.yaml")
		is.NoErr(os.WriteFile(cfgPath, []byte("file: from-yaml.json\nlog_level: debug\n"), 0o644))
		t.Setenv(config.EnvConfigFile, cfgPath)
		t.Setenv(config.EnvLogLevel, "error")

		var out bytes.Buffer
		flagPath := filepath.Join(dir, "from-flag.json")
		is.NoErr(run([]string{"-file", flagPath}, strings.NewReader("5\n7\n"), &out))

		_, err := os.Stat(flagPath)
		is.NoErr(err) //Saved where the flag pointed.
	})

	t.Run("the config file sets the books file when nothing else does", func(t *testing.T) {
		is := is.New(t)
		clearEnv(t)
		dir := t.TempDir()

		booksPath := filepath.Join(dir, "from-yaml.json")
		cfgPath := filepath.Join(dir, "library.yaml")
		is.NoErr(os.WriteFile(cfgPath, []byte("file: "+booksPath+"\n"), 0o644))

		is.NoErr(run([]string{"-config", cfgPath}, strings.NewReader("5\n7\n"), &bytes.Buffer{}))

		_, err := os.Stat(booksPath)
		is.NoErr(err)
	})

	t.Run("env sets the books file", func(t *testing.T) {
		is := is.New(t)
		clearEnv(t)

		booksPath := filepath.Join(t.TempDir(), "from-env.json")
		t.Setenv(config.EnvFile, booksPath)

		is.NoErr(run(nil, strings.NewReader("5\n7\n"), &bytes.Buffer{}))

		_, err := os.Stat(booksPath)
		is.NoErr(err)
	})

	t.Run("a config file that cannot be read fails", func(t *testing.T) {
		is := is.New(t)
		clearEnv(t)

		err := run([]string{"-config", filepath.Join(t.TempDir(), "missing.yaml")}, strings.NewReader(""), &bytes.Buffer{})
		is.True(err != nil)
	})
}
