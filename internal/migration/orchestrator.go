package migration

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tphakala/premigrate/internal/errors"
	"github.com/tphakala/premigrate/internal/logger"
	"github.com/tphakala/premigrate/internal/observability/metrics"
)

// RunState persists the progress of a run so that a second process can
// tell a run is in progress.
type RunState interface {
	StartRun(ctx context.Context, runID string, totalEntities int, force bool) error
	BeginEntity(ctx context.Context, runID, entity string) error
	CompleteEntity(ctx context.Context, runID string) error
	Complete(ctx context.Context, runID string) error
	Halt(ctx context.Context, runID, errMsg string) error
}

// OrchestratorConfig configures an Orchestrator.
type OrchestratorConfig struct {
	Deps  *Deps
	Steps []Step   // defaults to Steps(Deps)
	State RunState // optional
	Force bool     // start even if the state says another run is active
}

// RunReport describes one run.
type RunReport struct {
	RunID     string
	StartedAt time.Time
	Elapsed   time.Duration
	Results   []Result
	Halted    bool
	HaltedAt  string // entity being migrated when the run halted
}

// Inserted returns the rows inserted over all entities.
func (r *RunReport) Inserted() int {
	n := 0
	for _, res := range r.Results {
		n += res.Inserted
	}
	return n
}

// Failed returns the rows written to the failure ledger over all entities.
func (r *RunReport) Failed() int {
	n := 0
	for _, res := range r.Results {
		n += res.Failed
	}
	return n
}

// Orchestrator runs the migration steps in order.
type Orchestrator struct {
	deps  *Deps
	steps []Step
	state RunState
	force bool
	log   logger.Logger
}

// NewOrchestrator creates an Orchestrator.
func NewOrchestrator(cfg *OrchestratorConfig) *Orchestrator {
	steps := cfg.Steps
	if steps == nil {
		steps = Steps(cfg.Deps)
	}
	return &Orchestrator{
		deps:  cfg.Deps,
		steps: steps,
		state: cfg.State,
		force: cfg.Force,
		log:   cfg.Deps.Log.Module("orchestrator"),
	}
}

// Steps returns the steps in the order they run.
func (o *Orchestrator) Steps() []Step {
	return o.steps
}

// Run migrates every entity in dependency order. Record-level failures are
// contained in the steps. An infrastructure error or a cancelled context
// halts the run before the next entity; the report covers the entities
// attempted so far.
func (o *Orchestrator) Run(ctx context.Context) (*RunReport, error) {
	report := &RunReport{
		RunID:     uuid.NewString(),
		StartedAt: time.Now(),
	}

	if o.state != nil {
		if err := o.state.StartRun(ctx, report.RunID, len(o.steps), o.force); err != nil {
			return report, errors.New(err).
				Category(errors.CategoryState).
				Context("operation", "start_run").
				Build()
		}
	}

	o.log.Info("migration run started",
		logger.String("run_id", report.RunID),
		logger.Int("entities", len(o.steps)))

	for i, step := range o.steps {
		entity := step.Entity()
		if err := ctx.Err(); err != nil {
			return o.halt(ctx, report, entity, errors.New(err).
				Category(errors.CategoryCancellation).
				Context("entity", entity).
				Build())
		}

		if o.state != nil {
			if err := o.state.BeginEntity(ctx, report.RunID, entity); err != nil {
				return o.halt(ctx, report, entity, err)
			}
		}

		start := time.Now()
		res, err := step.Run(ctx)
		res.Entity = entity
		res.Duration = time.Since(start)
		report.Results = append(report.Results, res)

		if flushErr := o.deps.Ledger.Flush(); flushErr != nil && err == nil {
			err = errors.New(flushErr).
				Category(errors.CategoryFileIO).
				Context("operation", "flush_ledger").
				Build()
		}

		o.log.Info(fmt.Sprintf("[%d/%d] %s", i+1, len(o.steps), res.Summary()),
			logger.String("entity", entity),
			logger.Int("inserted", res.Inserted),
			logger.Int("skipped", res.Skipped),
			logger.Int("failed", res.Failed),
			logger.Duration("duration", res.Duration))

		if err != nil {
			return o.halt(ctx, report, entity, err)
		}

		if o.state != nil {
			if err := o.state.CompleteEntity(ctx, report.RunID); err != nil {
				return o.halt(ctx, report, entity, err)
			}
		}
	}

	report.Elapsed = time.Since(report.StartedAt)
	if o.state != nil {
		if err := o.state.Complete(ctx, report.RunID); err != nil {
			return report, err
		}
	}
	o.deps.Metrics.RecordRun(metrics.RunCompleted, time.Now(), report.Elapsed)

	o.log.Info("migration run completed",
		logger.String("run_id", report.RunID),
		logger.Int("inserted", report.Inserted()),
		logger.Int("failed", report.Failed()),
		logger.Duration("elapsed", report.Elapsed))
	return report, nil
}

// halt records a halted run and returns err.
func (o *Orchestrator) halt(ctx context.Context, report *RunReport, entity string, err error) (*RunReport, error) {
	report.Halted = true
	report.HaltedAt = entity
	report.Elapsed = time.Since(report.StartedAt)

	o.log.Error("migration run halted",
		logger.String("run_id", report.RunID),
		logger.String("entity", entity),
		logger.Error(err))

	// The state must record the halt even when ctx was cancelled.
	if o.state != nil {
		if stateErr := o.state.Halt(context.WithoutCancel(ctx), report.RunID, err.Error()); stateErr != nil {
			o.log.Warn("failed to record halted run", logger.Error(stateErr))
		}
	}
	o.deps.Metrics.RecordRun(metrics.RunHalted, time.Now(), report.Elapsed)

	return report, err
}
