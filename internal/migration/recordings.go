package migration

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/tphakala/premigrate/internal/datastore/entities"
	"github.com/tphakala/premigrate/internal/errors"
	"github.com/tphakala/premigrate/internal/ledger"
	"github.com/tphakala/premigrate/internal/legacy"
)

// unknownURL is stored for recordings without a legacy url.
const unknownURL = "Unknown URL"

// RecordingMigrator inserts the available legacy recordings as versions of
// their capture session. A recording is inserted only once its session
// exists and, unless it is the root of its chain, once its parent version
// exists or was queued earlier in the same run. Roots have no parent in the
// destination.
type RecordingMigrator struct {
	deps    *Deps
	staging *StagingIndex
}

func NewRecordingMigrator(deps *Deps, staging *StagingIndex) *RecordingMigrator {
	return &RecordingMigrator{deps: deps, staging: staging}
}

func (m *RecordingMigrator) Entity() string { return entities.Recording{}.TableName() }

func (m *RecordingMigrator) Fetch(ctx context.Context) ([]legacy.Recording, error) {
	return m.deps.Source.AvailableRecordings(ctx)
}

func (m *RecordingMigrator) Migrate(ctx context.Context, rows []legacy.Recording) (Result, error) {
	staged, err := m.staging.Staged(ctx)
	if err != nil {
		return Result{Entity: m.Entity()}, err
	}
	sessions := make(map[string]entities.TempRecording, len(staged))
	for _, row := range staged {
		sessions[row.RecordingID] = row
	}

	b := m.deps.newBatcher(m.Entity(), len(rows))
	return run(ctx, b, m.staging.InsertOrder(rows), func(r legacy.Recording) error {
		chain := groupKey(&r)
		lctx := ledger.Context{CaseID: legacy.Value(r.CaseUID), ChainID: chain}

		return b.process(ctx, r.RecordingUID, lctx, func() (*pending, error) {
			stagedRow, ok := sessions[r.RecordingUID]
			if !ok {
				return nil, errors.ResolutionError(fmt.Sprintf("No capture session found for recording: %s", r.RecordingUID))
			}
			sessionExists, err := m.deps.Guard.Exists(ctx, sessionTable, "id", stagedRow.CaptureSessionID)
			if err != nil {
				return nil, err
			}
			if !sessionExists {
				return nil, errors.ResolutionError(fmt.Sprintf("Capture session %s not found in the capture_sessions table.", stagedRow.CaptureSessionID))
			}

			var parentID *string
			if !isRoot(&r) {
				if err := m.requireParent(ctx, b, chain); err != nil {
					return nil, err
				}
				parentID = &chain
			}

			ver, err := parseVersion(r.RecordingVersion)
			if err != nil {
				return nil, err
			}
			createdAt, err := m.deps.createdAt(r.Created)
			if err != nil {
				return nil, err
			}
			url := unknownURL
			if u := optional(r.URL); u != nil {
				url = *u
			}

			return &pending{
				key: keyOf(m.Entity(), "id", r.RecordingUID),
				row: &entities.Recording{
					ID:                r.RecordingUID,
					CaptureSessionID:  stagedRow.CaptureSessionID,
					ParentRecordingID: parentID,
					Version:           ver,
					URL:               url,
					Filename:          optional(r.Filename),
					CreatedAt:         createdAt,
					DeletedAt:         stagedRow.DeletedAt,
				},
				id:          r.RecordingUID,
				description: stagedRow.CaptureSessionID,
				at:          &createdAt,
			}, nil
		})
	})
}

// requireParent fails unless the parent version is in the destination or
// queued ahead of the child in this run.
func (m *RecordingMigrator) requireParent(ctx context.Context, b *batcher, parentID string) error {
	if b.queued(keyOf(m.Entity(), "id", parentID)) {
		return nil
	}
	ok, err := m.deps.Guard.Exists(ctx, m.Entity(), "id", parentID)
	if err != nil {
		return err
	}
	if !ok {
		return errors.ResolutionError("parent recording id does not match a recording id")
	}
	return nil
}

func parseVersion(value *string) (int, error) {
	raw := strings.TrimSpace(legacy.Value(value))
	if raw == "" {
		return 1, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		return 0, errors.ValidationError(fmt.Sprintf("Invalid recording version: %s", raw))
	}
	return v, nil
}
