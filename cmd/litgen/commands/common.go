package commands

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/litgen/internal/config"
	"git.home.luguber.info/inful/litgen/internal/foundation/errors"
)

// Global carries process-wide state into subcommands.
type Global struct {
	Ctx    context.Context
	Stdout io.Writer
}

func (g *Global) context() context.Context {
	if g == nil || g.Ctx == nil {
		return context.Background()
	}
	return g.Ctx
}

func (g *Global) stdout() io.Writer {
	if g == nil || g.Stdout == nil {
		return os.Stdout
	}
	return g.Stdout
}

// CLI definition & global flags.
type CLI struct {
	Config    string           `short:"c" help:"Configuration file path (default: litgen.yaml in the working directory, when present)"`
	Dir       string           `short:"C" help:"Working directory containing the input document" default:"." type:"path"`
	Verbose   bool             `short:"v" help:"Enable verbose logging"`
	LogFormat string           `name:"log-format" help:"Log output format (text|json); defaults to the configured format"`
	Version   kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build      BuildCmd   `cmd:"" help:"Build the generator from a literate document and run it"`
	Extract    ExtractCmd `cmd:"" help:"Print the final extraction without building"`
	Clean      CleanCmd   `cmd:"" help:"Remove the build workspace"`
	VersionCmd VersionCmd `cmd:"" name:"version" help:"Show version information"`
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	slog.SetDefault(newLogger(os.Stderr, c.LogFormat, c.level("")))
	return nil
}

func (c *CLI) level(configured string) slog.Level {
	if c.Verbose {
		return slog.LevelDebug
	}
	var level slog.Level
	if configured != "" && level.UnmarshalText([]byte(configured)) == nil {
		return level
	}
	return slog.LevelInfo
}

func newLogger(w io.Writer, format string, level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// workDir returns the absolute working directory.
func (c *CLI) workDir() (string, error) {
	dir := c.Dir
	if dir == "" {
		dir = "."
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", errors.FileSystemError("failed to resolve working directory").WithCause(err).WithContext("dir", dir).Build()
	}
	return abs, nil
}

// loadConfig loads the project configuration and applies its logging
// section where no flag overrides it.
func (c *CLI) loadConfig() (string, *config.Config, error) {
	dir, err := c.workDir()
	if err != nil {
		return "", nil, err
	}
	cfg, err := config.Load(dir, c.Config)
	if err != nil {
		return "", nil, err
	}

	format := c.LogFormat
	if format == "" {
		format = cfg.Logging.Format
	}
	slog.SetDefault(newLogger(os.Stderr, format, c.level(cfg.Logging.Level)))
	return dir, cfg, nil
}
