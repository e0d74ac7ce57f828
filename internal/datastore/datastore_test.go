package datastore

import (
	"context"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tphakala/premigrate/internal/conf"
	"github.com/tphakala/premigrate/internal/datastore/entities"
	"github.com/tphakala/premigrate/internal/errors"
	"github.com/tphakala/premigrate/internal/logger"
)

var testLogger = logger.NewSlogLogger(io.Discard, logger.LogLevelError, time.UTC)

// setupTestManager creates an initialized SQLite destination in a temp dir.
func setupTestManager(t *testing.T) *Manager {
	t.Helper()

	mgr, err := NewSQLiteManager(filepath.Join(t.TempDir(), "destination.db"), testLogger)
	require.NoError(t, err)
	require.NoError(t, mgr.Initialize())
	t.Cleanup(func() { _ = mgr.Close() })

	return mgr
}

func seedCourt(t *testing.T, w *Writer, id, name string) {
	t.Helper()
	require.NoError(t, w.Create(t.Context(), &entities.Court{
		ID:        id,
		CourtType: entities.CourtTypeCrown,
		Name:      name,
	}))
}

func TestManager_Initialize_CreatesSchemaAndIdleState(t *testing.T) {
	mgr := setupTestManager(t)

	tables, err := NewWriter(mgr.DB()).Tables(t.Context())
	require.NoError(t, err)
	assert.Contains(t, tables, "cases")
	assert.Contains(t, tables, "temp_recordings")
	assert.Contains(t, tables, "migration_state")

	// A second initialization keeps the existing state row.
	require.NoError(t, mgr.Initialize())

	var count int64
	require.NoError(t, mgr.DB().Model(&entities.MigrationState{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open(&conf.DatabaseSettings{Driver: "oracle"}, testLogger)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported database driver")
}

func TestWriter_Exists(t *testing.T) {
	mgr := setupTestManager(t)
	w := NewWriter(mgr.DB())
	ctx := t.Context()

	seedCourt(t, w, "court-1", "Leeds Crown Court")

	found, err := w.Exists(ctx, "courts", "name", "Leeds Crown Court")
	require.NoError(t, err)
	assert.True(t, found)

	found, err = w.Exists(ctx, "courts", "name", "Leeds Youth Court")
	require.NoError(t, err)
	assert.False(t, found)

	found, err = w.ExistsAll(ctx, "courts", map[string]any{"id": "court-1", "court_type": entities.CourtTypeCrown})
	require.NoError(t, err)
	assert.True(t, found)

	_, err = w.ExistsAll(ctx, "courts", nil)
	require.Error(t, err)
}

func TestWriter_Create_DuplicateIsConstraintViolation(t *testing.T) {
	mgr := setupTestManager(t)
	w := NewWriter(mgr.DB())

	seedCourt(t, w, "court-1", "Leeds Crown Court")

	err := w.Create(t.Context(), &entities.Court{ID: "court-2", CourtType: entities.CourtTypeCrown, Name: "Leeds Crown Court"})
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryConstraint))
	assert.True(t, errors.IsRecordLevel(err))
}

func TestWriter_InsertBatch_IsolatesRejectedRows(t *testing.T) {
	mgr := setupTestManager(t)
	w := NewWriter(mgr.DB())
	ctx := t.Context()

	seedCourt(t, w, "court-1", "Leeds Crown Court")

	rows := []any{
		&entities.Case{ID: "case-1", CourtID: "court-1", Reference: "REF1", CreatedAt: time.Now()},
		&entities.Case{ID: "case-2", CourtID: "missing-court", Reference: "REF2", CreatedAt: time.Now()},
		&entities.Case{ID: "case-1", CourtID: "court-1", Reference: "REF1-DUP", CreatedAt: time.Now()},
		&entities.Case{ID: "case-3", CourtID: "court-1", Reference: "REF3", CreatedAt: time.Now()},
	}

	rowErrs, err := w.InsertBatch(ctx, rows)
	require.NoError(t, err)
	require.Len(t, rowErrs, 4)

	assert.NoError(t, rowErrs[0])
	assert.True(t, errors.IsCategory(rowErrs[1], errors.CategoryConstraint), "foreign key violation")
	assert.True(t, errors.IsCategory(rowErrs[2], errors.CategoryConstraint), "duplicate primary key")
	assert.NoError(t, rowErrs[3])

	n, err := w.Count(ctx, "cases")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestWriter_InsertBatch_Empty(t *testing.T) {
	mgr := setupTestManager(t)

	rowErrs, err := NewWriter(mgr.DB()).InsertBatch(t.Context(), nil)
	require.NoError(t, err)
	assert.Empty(t, rowErrs)
}

func TestWriter_InsertBatch_CancelledContextIsInfrastructure(t *testing.T) {
	mgr := setupTestManager(t)
	w := NewWriter(mgr.DB())

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	_, err := w.InsertBatch(ctx, []any{&entities.Role{ID: "role-1", Name: "Level 1"}})
	require.Error(t, err)
	assert.True(t, errors.IsInfrastructure(err))

	n, err := w.Count(t.Context(), "roles")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestWriter_Update(t *testing.T) {
	mgr := setupTestManager(t)
	w := NewWriter(mgr.DB())
	ctx := t.Context()

	seedCourt(t, w, "court-1", "Leeds Crown Court")

	affected, err := w.Update(ctx, "courts", map[string]any{"name": "Leeds Crown Court"}, map[string]any{"location_code": "LDS"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	var codes []string
	require.NoError(t, w.Query(ctx, &codes, "SELECT location_code FROM courts WHERE id = ?", "court-1"))
	assert.Equal(t, []string{"LDS"}, codes)

	_, err = w.Update(ctx, "courts", nil, map[string]any{"location_code": "X"})
	require.Error(t, err)
}

func TestReader_QueryAndCount(t *testing.T) {
	mgr := setupTestManager(t)
	w := NewWriter(mgr.DB())
	ctx := t.Context()

	seedCourt(t, w, "court-1", "Leeds Crown Court")
	seedCourt(t, w, "court-2", "Leeds Youth Court")

	r := NewReader(mgr.DB())

	n, err := r.Count(ctx, "SELECT COUNT(*) FROM courts WHERE name LIKE ?", "Leeds%")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	var rows []struct {
		ID   string `gorm:"column:id"`
		Name string `gorm:"column:name"`
	}
	require.NoError(t, r.Query(ctx, &rows, "SELECT id, name FROM courts ORDER BY name"))
	require.Len(t, rows, 2)
	assert.Equal(t, "Leeds Youth Court", rows[1].Name)

	err = r.Query(ctx, &rows, "SELECT * FROM no_such_table")
	require.Error(t, err)
	assert.True(t, errors.IsInfrastructure(err))
}

func TestClassify(t *testing.T) {
	assert.NoError(t, Classify(nil))

	validation := errors.ValidationError("Null value for case reference.")
	assert.Same(t, validation, Classify(validation))

	err := Classify(errors.NewStd("connection refused"))
	assert.True(t, errors.IsInfrastructure(err))
	assert.False(t, errors.IsRecordLevel(err))
}
