package commands

import (
	"context"
	"log/slog"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/litgen/internal/codegen"
	"git.home.luguber.info/inful/litgen/internal/command"
	"git.home.luguber.info/inful/litgen/internal/logfields"
	"git.home.luguber.info/inful/litgen/internal/metrics"
	"git.home.luguber.info/inful/litgen/internal/pipeline"
	"git.home.luguber.info/inful/litgen/internal/watch"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	Input           string `arg:"" optional:"" help:"Literate document to build (default: yin.md or yin.markdown)"`
	CommentAutogen  bool   `name:"comment-autogen" help:"Mark generated files as autogenerated" default:"true" negatable:""`
	TrackAutogen    bool   `name:"track-autogen" help:"Track which files were autogenerated"`
	Yin             bool   `help:"Generate code for the base framework rather than a dependent crate"`
	Release         bool   `help:"Generate release-mode output"`
	Watch           bool   `short:"w" help:"Rebuild whenever the input, override or a local import changes"`
	MetricsTextfile string `name:"metrics-textfile" help:"Write Prometheus metrics to this file after each run" type:"path"`

	runner command.Runner `kong:"-"`
}

// GenerationConfig returns the generator flags selected on the command line.
func (b *BuildCmd) GenerationConfig() codegen.GenerationConfig {
	gen := codegen.DefaultGenerationConfig()
	gen.CommentAutogen = b.CommentAutogen
	gen.TrackAutogen = b.TrackAutogen
	gen.TargetFlavor = b.Yin
	gen.Release = b.Release
	return gen
}

func (b *BuildCmd) Run(g *Global, root *CLI) error {
	dir, cfg, err := root.loadConfig()
	if err != nil {
		return err
	}

	var reg *prom.Registry
	var recorder metrics.Recorder = metrics.NoopRecorder{}
	if b.MetricsTextfile != "" {
		reg = prom.NewRegistry()
		recorder = metrics.NewPrometheusRecorder(reg)
	}

	opts := []pipeline.Option{pipeline.WithRecorder(recorder)}
	if b.runner != nil {
		opts = append(opts, pipeline.WithRunner(b.runner))
	}
	p := pipeline.New(dir, cfg, opts...)
	gen := b.GenerationConfig()

	runOnce := func(ctx context.Context) ([]string, error) {
		out, err := p.Generate(ctx, b.Input, gen)
		if reg != nil {
			if werr := metrics.WriteTextfile(reg, b.MetricsTextfile); werr != nil {
				slog.Warn("Failed to write metrics", logfields.Path(b.MetricsTextfile), logfields.Error(werr))
			}
		}
		if out == nil {
			return nil, err
		}
		return out.Files, err
	}

	ctx := g.context()
	if !b.Watch {
		_, err := runOnce(ctx)
		return err
	}

	w, err := watch.New(watch.DefaultDebounce)
	if err != nil {
		return err
	}
	defer func() { _ = w.Close() }()
	return w.Loop(ctx, runOnce)
}
