package migration

import (
	"context"

	"github.com/tphakala/premigrate/internal/datastore/entities"
	"github.com/tphakala/premigrate/internal/legacy"
)

// StagingMigrator stages the legacy recordings that belong to capture
// sessions. It runs right after bookings, whose ids the staging rows carry.
type StagingMigrator struct {
	deps    *Deps
	staging *StagingIndex
}

func NewStagingMigrator(deps *Deps, staging *StagingIndex) *StagingMigrator {
	return &StagingMigrator{deps: deps, staging: staging}
}

func (m *StagingMigrator) Entity() string { return stagingTable }

func (m *StagingMigrator) Fetch(ctx context.Context) ([]legacy.Recording, error) {
	return m.deps.Source.SessionRecordings(ctx)
}

func (m *StagingMigrator) Migrate(ctx context.Context, rows []legacy.Recording) (Result, error) {
	return m.staging.Group(ctx, rows)
}

// CaptureSessionMigrator materializes one capture session per staged chain.
type CaptureSessionMigrator struct {
	staging *StagingIndex
}

func NewCaptureSessionMigrator(staging *StagingIndex) *CaptureSessionMigrator {
	return &CaptureSessionMigrator{staging: staging}
}

func (m *CaptureSessionMigrator) Entity() string { return sessionTable }

func (m *CaptureSessionMigrator) Fetch(ctx context.Context) ([]entities.TempRecording, error) {
	return m.staging.Staged(ctx)
}

func (m *CaptureSessionMigrator) Migrate(ctx context.Context, rows []entities.TempRecording) (Result, error) {
	return m.staging.Materialize(ctx, rows)
}
