package migration_test

import (
	"context"
	"io"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/premigrate/internal/errors"
	"github.com/tphakala/premigrate/internal/ledger"
	"github.com/tphakala/premigrate/internal/logger"
	"github.com/tphakala/premigrate/internal/migration"
)

var testLogger = logger.NewSlogLogger(io.Discard, logger.LogLevelError, time.UTC)

// fakeStep is a Step whose Run is supplied by the test.
type fakeStep struct {
	entity string
	run    func(ctx context.Context) (migration.Result, error)
	ran    bool
}

func (s *fakeStep) Entity() string { return s.entity }

func (s *fakeStep) Run(ctx context.Context) (migration.Result, error) {
	s.ran = true
	if s.run == nil {
		return migration.Result{Fetched: 1, Inserted: 1}, nil
	}
	return s.run(ctx)
}

func (s *fakeStep) SourceCount(context.Context) (int64, error) { return 1, nil }

// fakeState records the calls made to it.
type fakeState struct {
	mu       sync.Mutex
	calls    []string
	startErr error
	haltMsg  string
	haltCtx  error
}

func (s *fakeState) record(call string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, call)
}

func (s *fakeState) StartRun(context.Context, string, int, bool) error {
	s.record("start")
	return s.startErr
}

func (s *fakeState) BeginEntity(_ context.Context, _, entity string) error {
	s.record("begin " + entity)
	return nil
}

func (s *fakeState) CompleteEntity(context.Context, string) error {
	s.record("done")
	return nil
}

func (s *fakeState) Complete(context.Context, string) error {
	s.record("complete")
	return nil
}

func (s *fakeState) Halt(ctx context.Context, _, errMsg string) error {
	s.record("halt")
	s.haltMsg = errMsg
	s.haltCtx = ctx.Err()
	return nil
}

func newOrchestrator(t *testing.T, state migration.RunState, steps ...migration.Step) *migration.Orchestrator {
	t.Helper()

	path := filepath.Join(t.TempDir(), "failed_imports_log.txt")
	l, err := ledger.Open(path, testLogger)
	require.NoError(t, err)

	return migration.NewOrchestrator(&migration.OrchestratorConfig{
		Deps:  &migration.Deps{Ledger: l, Log: testLogger},
		Steps: steps,
		State: state,
	})
}

func TestOrchestrator_RunsStepsInOrder(t *testing.T) {
	t.Parallel()

	state := &fakeState{}
	a, b := &fakeStep{entity: "roles"}, &fakeStep{entity: "regions"}
	orch := newOrchestrator(t, state, a, b)

	report, err := orch.Run(t.Context())
	require.NoError(t, err)

	assert.False(t, report.Halted)
	assert.NotEmpty(t, report.RunID)
	require.Len(t, report.Results, 2)
	assert.Equal(t, "roles", report.Results[0].Entity)
	assert.Equal(t, "regions", report.Results[1].Entity)
	assert.Equal(t, 2, report.Inserted())
	assert.Equal(t, []string{"start", "begin roles", "done", "begin regions", "done", "complete"}, state.calls)
}

func TestOrchestrator_RecordFailuresDoNotHalt(t *testing.T) {
	t.Parallel()

	failing := &fakeStep{entity: "cases", run: func(context.Context) (migration.Result, error) {
		return migration.Result{Fetched: 3, Inserted: 1, Failed: 2}, nil
	}}
	next := &fakeStep{entity: "bookings"}
	orch := newOrchestrator(t, nil, failing, next)

	report, err := orch.Run(t.Context())
	require.NoError(t, err)
	assert.True(t, next.ran)
	assert.Equal(t, 2, report.Failed())
}

func TestOrchestrator_HaltsOnInfrastructureError(t *testing.T) {
	t.Parallel()

	state := &fakeState{}
	broken := &fakeStep{entity: "users", run: func(context.Context) (migration.Result, error) {
		return migration.Result{Fetched: 10, Inserted: 4}, errors.InfrastructureError(errors.NewStd("connection reset"))
	}}
	after := &fakeStep{entity: "portal_access"}
	orch := newOrchestrator(t, state, &fakeStep{entity: "roles"}, broken, after)

	report, err := orch.Run(t.Context())
	require.Error(t, err)
	assert.True(t, errors.IsInfrastructure(err))

	assert.True(t, report.Halted)
	assert.Equal(t, "users", report.HaltedAt)
	require.Len(t, report.Results, 2, "the halted entity is reported")
	assert.Equal(t, 4, report.Results[1].Inserted)
	assert.False(t, after.ran, "no later entity starts")

	assert.Equal(t, []string{"start", "begin roles", "done", "begin users", "halt"}, state.calls)
	assert.Equal(t, "connection reset", state.haltMsg)
}

func TestOrchestrator_CancelledBetweenSteps(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()

	state := &fakeState{}
	first := &fakeStep{entity: "roles", run: func(context.Context) (migration.Result, error) {
		cancel()
		return migration.Result{Inserted: 1}, nil
	}}
	second := &fakeStep{entity: "regions"}
	orch := newOrchestrator(t, state, first, second)

	report, err := orch.Run(ctx)
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryCancellation))
	assert.True(t, report.Halted)
	assert.Equal(t, "regions", report.HaltedAt)
	assert.False(t, second.ran)
	assert.NoError(t, state.haltCtx, "the halt is recorded with a live context")
}

func TestOrchestrator_StartRejected(t *testing.T) {
	t.Parallel()

	state := &fakeState{startErr: errors.NewStd("cannot start migration run: run r-1 is still running")}
	step := &fakeStep{entity: "roles"}
	orch := newOrchestrator(t, state, step)

	_, err := orch.Run(t.Context())
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryState))
	assert.False(t, step.ran)
}

func TestOrchestrator_FlushesLedgerAfterEachStep(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "failed_imports_log.txt")
	l, err := ledger.Open(path, testLogger)
	require.NoError(t, err)

	failing := &fakeStep{entity: "cases", run: func(context.Context) (migration.Result, error) {
		l.Record("cases", "case-1", ledger.Context{CaseID: "case-1"}, "Null value for case reference.")
		return migration.Result{Fetched: 1, Failed: 1}, nil
	}}
	var onDisk []ledger.Entry
	checking := &fakeStep{entity: "bookings", run: func(context.Context) (migration.Result, error) {
		entries, err := ledger.Load(path)
		onDisk = entries
		return migration.Result{}, err
	}}

	orch := migration.NewOrchestrator(&migration.OrchestratorConfig{
		Deps:  &migration.Deps{Ledger: l, Log: testLogger},
		Steps: []migration.Step{failing, checking},
	})

	_, err = orch.Run(t.Context())
	require.NoError(t, err)
	require.Len(t, onDisk, 1, "failures of earlier entities are on disk")
	assert.Equal(t, "case-1", onDisk[0].CaseID)
}
