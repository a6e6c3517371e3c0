package build

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"slices"

	"git.home.luguber.info/inful/litgen/internal/codegen"
	"git.home.luguber.info/inful/litgen/internal/command"
	"git.home.luguber.info/inful/litgen/internal/config"
	"git.home.luguber.info/inful/litgen/internal/foundation/errors"
	"git.home.luguber.info/inful/litgen/internal/logfields"
	"git.home.luguber.info/inful/litgen/internal/markdown"
	"git.home.luguber.info/inful/litgen/internal/metrics"
	"git.home.luguber.info/inful/litgen/internal/observability"
	"git.home.luguber.info/inful/litgen/internal/workspace"
)

// Orchestrator turns a final extraction into generated output.
type Orchestrator struct {
	workDir   string
	cfg       *config.Config
	runner    command.Runner
	workspace *workspace.Manager
	recorder  metrics.Recorder
}

// NewOrchestrator creates an orchestrator for the project in workDir. A nil
// runner executes commands on the host.
func NewOrchestrator(workDir string, cfg *config.Config, runner command.Runner) *Orchestrator {
	if cfg == nil {
		cfg = config.Default()
	}
	if runner == nil {
		runner = command.NewExecRunner()
	}
	layout := workspace.Layout{
		Dir:          cfg.Workspace.Dir,
		EntryFile:    cfg.Workspace.EntryFile,
		ManifestFile: cfg.Workspace.ManifestFile,
	}
	return &Orchestrator{
		workDir:   workDir,
		cfg:       cfg,
		runner:    runner,
		workspace: workspace.NewManager(workDir, layout),
		recorder:  metrics.NoopRecorder{},
	}
}

// WithRecorder sets the metrics recorder.
func (o *Orchestrator) WithRecorder(r metrics.Recorder) *Orchestrator {
	if r != nil {
		o.recorder = r
	}
	return o
}

// Workspace returns the workspace the orchestrator writes to.
func (o *Orchestrator) Workspace() *workspace.Manager {
	return o.workspace
}

// ArtifactPath returns where the built generator is expected.
func (o *Orchestrator) ArtifactPath() string {
	return o.workspace.ArtifactPath(o.cfg.Toolchain.ProfileDir, o.cfg.Toolchain.ArtifactName)
}

// Generate writes the workspace for ext, builds it and runs the artifact.
func (o *Orchestrator) Generate(ctx context.Context, ext markdown.Extraction, gen codegen.GenerationConfig) error {
	if err := o.runStage(ctx, StageMaterialize, func(ctx context.Context) error {
		return o.materialize(ctx, ext, gen)
	}); err != nil {
		return err
	}

	if err := o.runStage(ctx, StageBuild, o.build); err != nil {
		return err
	}

	artifact := o.ArtifactPath()
	if err := o.runStage(ctx, StageVerify, func(ctx context.Context) error {
		return o.verify(ctx, artifact)
	}); err != nil {
		return err
	}

	return o.runStage(ctx, StageExecute, func(ctx context.Context) error {
		return o.execute(ctx, artifact)
	})
}

func (o *Orchestrator) materialize(ctx context.Context, ext markdown.Extraction, gen codegen.GenerationConfig) error {
	code := markdown.SeparateStatements(ext.Source)
	if len(code.Duplicates) > 0 {
		observability.WarnContext(ctx, "Dropped duplicate import statements", logfields.Count(len(code.Duplicates)))
	}

	entry, err := codegen.RenderEntry(code, gen)
	if err != nil {
		return err
	}
	if o.cfg.Framework.DevDir != "" && ext.Manifest == "" {
		observability.InfoContext(ctx, "Linking generator to local framework checkout", logfields.Dir(o.cfg.Framework.DevDir))
	}
	manifest, err := codegen.RenderManifest(ext.Manifest, o.cfg.Framework)
	if err != nil {
		return err
	}

	if err := o.workspace.Prepare(); err != nil {
		return err
	}
	entryPath, err := o.workspace.WriteEntry(entry)
	if err != nil {
		return err
	}
	manifestPath, err := o.workspace.WriteManifest(manifest)
	if err != nil {
		return err
	}
	observability.DebugContext(ctx, "Generated workspace files",
		slog.String("entry", entryPath), slog.String("manifest", manifestPath))
	return nil
}

func (o *Orchestrator) build(ctx context.Context) error {
	inv := command.Invocation{
		Name: o.cfg.Toolchain.Command,
		Args: slices.Clone(o.cfg.Toolchain.BuildArgs),
		Dir:  o.workspace.GetPath(),
	}
	observability.InfoContext(ctx, "Building generator", logfields.Command(inv.String()), logfields.Dir(inv.Dir))
	return o.runner.RunStreamed(ctx, inv)
}

func (o *Orchestrator) verify(ctx context.Context, artifact string) error {
	info, err := os.Stat(artifact)
	if err != nil || info.IsDir() {
		b := errors.NotFoundError(fmt.Sprintf("generator binary was not found at expected location %s", artifact)).
			WithContext("path", artifact)
		if err != nil {
			b = b.WithCause(err)
		}
		return b.Build()
	}
	observability.InfoContext(ctx, "Generator built", logfields.Path(artifact))
	return nil
}

func (o *Orchestrator) execute(ctx context.Context, artifact string) error {
	inv := command.Invocation{Name: artifact, Dir: o.workDir}
	observability.InfoContext(ctx, "Running generator", logfields.Command(inv.String()), logfields.Dir(inv.Dir))
	return o.runner.RunStreamed(ctx, inv)
}
