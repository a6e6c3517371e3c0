package build

import (
	"context"
	"time"

	"git.home.luguber.info/inful/litgen/internal/logfields"
	"git.home.luguber.info/inful/litgen/internal/metrics"
	"git.home.luguber.info/inful/litgen/internal/observability"
)

// StageName identifies an orchestrator stage.
type StageName string

const (
	StageMaterialize StageName = "materialize"
	StageBuild       StageName = "build"
	StageVerify      StageName = "verify"
	StageExecute     StageName = "execute"
)

// runStage logs the start and outcome of fn and records its duration.
func (o *Orchestrator) runStage(ctx context.Context, name StageName, fn func(context.Context) error) error {
	ctx = observability.WithStage(ctx, string(name))
	start := time.Now()
	observability.InfoContext(ctx, "Starting stage")

	err := fn(ctx)
	d := time.Since(start)
	o.recorder.ObserveStageDuration(string(name), d)
	o.recorder.IncStageResult(string(name), metrics.ResultFor(err, ctx.Err() != nil))

	if err != nil {
		observability.ErrorContext(ctx, "Stage failed", logfields.Since(start), logfields.Error(err))
		return err
	}
	observability.InfoContext(ctx, "Stage completed successfully", logfields.Since(start))
	return nil
}
