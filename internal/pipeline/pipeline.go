// Package pipeline is the entry point for turning a literate document into
// generated output: locate, extract, merge the override, resolve imports and
// hand the result to the build orchestrator.
package pipeline

import (
	"context"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/litgen/internal/build"
	"git.home.luguber.info/inful/litgen/internal/codegen"
	"git.home.luguber.info/inful/litgen/internal/command"
	"git.home.luguber.info/inful/litgen/internal/config"
	"git.home.luguber.info/inful/litgen/internal/document"
	"git.home.luguber.info/inful/litgen/internal/imports"
	"git.home.luguber.info/inful/litgen/internal/logfields"
	"git.home.luguber.info/inful/litgen/internal/markdown"
	"git.home.luguber.info/inful/litgen/internal/metrics"
	"git.home.luguber.info/inful/litgen/internal/observability"
	"git.home.luguber.info/inful/litgen/internal/override"
	"git.home.luguber.info/inful/litgen/internal/retry"
)

// Output is what a run produced, for callers that archive or inspect it.
type Output struct {
	Filename   string              // input document file name
	Markdown   string              // input document text as read
	Extraction markdown.Extraction // final extraction after override and imports
	Files      []string            // local files the result depends on, including the override path
	URLs       []string            // network imports fetched
}

// Pipeline runs litgen for one working directory.
type Pipeline struct {
	workDir  string
	cfg      *config.Config
	runner   command.Runner
	fetcher  imports.Fetcher
	recorder metrics.Recorder
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithRunner replaces the external command runner.
func WithRunner(r command.Runner) Option {
	return func(p *Pipeline) { p.runner = r }
}

// WithFetcher replaces the network import fetcher.
func WithFetcher(f imports.Fetcher) Option {
	return func(p *Pipeline) { p.fetcher = f }
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(p *Pipeline) { p.recorder = r }
}

// New creates a pipeline for workDir. A nil cfg means built-in defaults.
func New(workDir string, cfg *config.Config, opts ...Option) *Pipeline {
	if cfg == nil {
		cfg = config.Default()
	}
	fetcher := imports.NewHTTPFetcher(cfg.Imports.FetchTimeout)
	fetcher.Retry = retry.FromConfig(cfg.Imports.Retry)
	p := &Pipeline{
		workDir:  workDir,
		cfg:      cfg,
		runner:   command.NewExecRunner(),
		fetcher:  fetcher,
		recorder: metrics.NoopRecorder{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse produces the final extraction for input (or the default document)
// without touching the workspace.
func (p *Pipeline) Parse(ctx context.Context, input string) (*Output, error) {
	ctx = withRun(ctx)

	locator := document.Locator{
		Dir:          p.workDir,
		DefaultNames: p.cfg.Input.DefaultNames,
		Extensions:   p.cfg.Input.Extensions,
	}
	doc, err := locator.Locate(input)
	if err != nil {
		return nil, err
	}

	ext := markdown.Extract(doc.Text)
	over, found, err := override.Load(p.workDir, p.cfg.Input.OverrideName)
	if err != nil {
		return nil, err
	}
	if found {
		ext = override.Merge(ext, over)
	}

	resolver := &imports.Resolver{
		BaseDir:              doc.Dir(),
		Root:                 doc.Path,
		MaxConcurrentFetches: p.cfg.Imports.MaxConcurrentFetches,
		MaxDepth:             p.cfg.Imports.MaxDepth,
		StartMarker:          p.cfg.Imports.StartMarker,
		EndMarker:            p.cfg.Imports.EndMarker,
		Fetcher:              p.fetcher,
		Recorder:             p.recorder,
	}
	final, sources, err := resolver.ResolveAll(ctx, ext)
	if err != nil {
		return nil, err
	}
	observability.DebugContext(ctx, "Resolved imports",
		logfields.Count(len(sources.Files)+len(sources.URLs)), logfields.Path(doc.Path))

	files := []string{doc.Path, filepath.Join(p.workDir, p.cfg.Input.OverrideName)}
	return &Output{
		Filename:   doc.Filename,
		Markdown:   doc.Text,
		Extraction: final,
		Files:      append(files, sources.Files...),
		URLs:       sources.URLs,
	}, nil
}

// Generate parses input and runs the build orchestrator on the result.
func (p *Pipeline) Generate(ctx context.Context, input string, gen codegen.GenerationConfig) (*Output, error) {
	ctx = withRun(ctx)
	start := time.Now()

	out, err := p.Parse(ctx, input)
	if err == nil {
		err = p.Orchestrator().Generate(ctx, out.Extraction, gen)
	}

	p.recorder.ObserveRunDuration(time.Since(start))
	p.recorder.IncRunOutcome(metrics.ResultFor(err, ctx.Err() != nil))
	if err != nil {
		return out, err
	}
	observability.InfoContext(ctx, "Generation completed", logfields.Since(start))
	return out, nil
}

// Orchestrator returns the build orchestrator this pipeline hands off to.
func (p *Pipeline) Orchestrator() *build.Orchestrator {
	return build.NewOrchestrator(p.workDir, p.cfg, p.runner).WithRecorder(p.recorder)
}

// withRun tags ctx with a fresh run id unless it already carries one.
func withRun(ctx context.Context) context.Context {
	if observability.FromContext(ctx).RunID != "" {
		return ctx
	}
	return observability.WithRunID(ctx, uuid.NewString())
}
