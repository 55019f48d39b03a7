package config_test

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/books-inventory/cmd/library/config"
	"github.com/matryer/is"
)

func TestDefaults(t *testing.T) {
	is := is.New(t)

	cfg := config.Defaults()
	is.Equal(cfg.File, "books.json")
	is.Equal(cfg.LogLevel, "warn")
	is.NoErr(cfg.Validate())
}

func TestLoadYAML(t *testing.T) {
	t.Run("reads every key", func(t *testing.T) {
		is := is.New(t)
		path := writeConfig(t, "file: /var/lib/library/books.json\nlog_level: debug\n")

		cfg, err := config.LoadYAML(path)
		is.NoErr(err)
		is.Equal(cfg, config.Config{File: "/var/lib/library/books.json", LogLevel: "debug"})
	})

	t.Run("an empty file sets nothing", func(t *testing.T) {
		is := is.New(t)

		cfg, err := config.LoadYAML(writeConfig(t, ""))
		is.NoErr(err)
		is.Equal(cfg, config.Config{})
	})

	t.Run("unknown keys are rejected", func(t *testing.T) {
		is := is.New(t)

		_, err := config.LoadYAML(writeConfig(t, "file: books.json\nlogLevel: debug\n"))
		is.True(err != nil)
	})

	t.Run("a missing file fails", func(t *testing.T) {
		is := is.New(t)

		_, err := config.LoadYAML(filepath.Join(t.TempDir(), "library.yaml"))
		is.True(errors.Is(err, fs.ErrNotExist))
	})
}

func TestMerge(t *testing.T) {
	t.Run("later sources win", func(t *testing.T) {
		is := is.New(t)

		fromFile := config.Config{File: "file.json", LogLevel: "info"}
		fromEnv := config.FromEnv(func(key string) string {
			return map[string]string{config.EnvFile: "env.json"}[key]
		})

		cfg := config.Merge(config.Merge(config.Defaults(), fromFile), fromEnv)
		is.Equal(cfg, config.Config{File: "env.json", LogLevel: "info"})
	})

	t.Run("blank values do not override", func(t *testing.T) {
		is := is.New(t)

		cfg := config.Merge(config.Defaults(), config.Config{File: "   ", LogLevel: ""})
		is.Equal(cfg, config.Defaults())
	})
}

func TestLevel(t *testing.T) {
	t.Run("parses slog level names", func(t *testing.T) {
		is := is.New(t)

		for name, want := range map[string]slog.Level{
			"debug": slog.LevelDebug,
			"INFO":  slog.LevelInfo,
			"warn":  slog.LevelWarn,
			"error": slog.LevelError,
		} {
			l, err := config.Config{LogLevel: name}.Level()
			is.NoErr(err)
			is.Equal(l, want)
		}
	})

	t.Run("an unknown level fails validation", func(t *testing.T) {
		is := is.New(t)

		err := config.Config{File: "books.json", LogLevel: "loud"}.Validate()
		is.True(err != nil)
	})

	t.Run("an empty file path fails validation", func(t *testing.T) {
		is := is.New(t)

		err := config.Config{File: "", LogLevel: "warn"}.Validate()
		is.True(err != nil)
	})
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "library.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}
