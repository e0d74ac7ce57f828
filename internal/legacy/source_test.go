package legacy_test

import (
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tphakala/premigrate/internal/datastore"
	"github.com/tphakala/premigrate/internal/legacy"
	"github.com/tphakala/premigrate/internal/logger"
	"gorm.io/gorm"
)

func ptr(s string) *string { return &s }

func setupSource(t *testing.T) (*legacy.Source, *gorm.DB) {
	t.Helper()

	log := logger.NewSlogLogger(io.Discard, logger.LogLevelError, time.UTC)
	mgr, err := datastore.NewSQLiteManager(filepath.Join(t.TempDir(), "legacy.db"), log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = mgr.Close() })

	require.NoError(t, mgr.DB().AutoMigrate(legacy.Tables()...))
	return legacy.NewSource(datastore.NewReader(mgr.DB())), mgr.DB()
}

func TestSource_PortalAndAppUsers(t *testing.T) {
	src, db := setupSource(t)
	ctx := t.Context()

	require.NoError(t, db.Create([]legacy.User{
		{UserID: "u1", Email: ptr("a@example.com"), PreRole: ptr("Level 3")},
		{UserID: "u2", Email: ptr("b@example.com"), PreRole: ptr("Level 1"), Invited: ptr("True")},
		{UserID: "u3", Email: ptr("c@example.com"), PreRole: ptr("Level 2")},
		{UserID: "u4", Email: ptr("d@example.com")},
	}).Error)

	portal, err := src.PortalUsers(ctx)
	require.NoError(t, err)
	require.Len(t, portal, 2)
	assert.Equal(t, "u1", portal[0].UserID)
	assert.Equal(t, "u2", portal[1].UserID)

	app, err := src.AppUsers(ctx)
	require.NoError(t, err)
	require.Len(t, app, 2)
	assert.Equal(t, "u2", app[0].UserID)
	assert.Equal(t, "u3", app[1].UserID)

	n, err := src.CountPortalUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = src.CountAppUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestSource_RecordingFilters(t *testing.T) {
	src, db := setupSource(t)
	ctx := t.Context()

	require.NoError(t, db.Create([]legacy.Recording{
		{RecordingUID: "r1", ParentRecUID: ptr("r1"), RecordingVersion: ptr("1")},
		{RecordingUID: "r2", ParentRecUID: ptr("r1"), RecordingVersion: ptr("2"), RecordingAvailable: ptr("true")},
		{RecordingUID: "r3", ParentRecUID: ptr("r3"), RecordingStatus: ptr("No Recording")},
		{RecordingUID: "r4", ParentRecUID: ptr("r4"), RecordingStatus: ptr("Deleted")},
		{RecordingUID: "r5", ParentRecUID: ptr("r5"), RecordingStatus: ptr("Deleted"), IngestAddress: ptr("rtmps://ingest")},
		{RecordingUID: "r6", ParentRecUID: ptr("r6"), RecordingAvailable: ptr("false")},
	}).Error)

	sessions, err := src.SessionRecordings(ctx)
	require.NoError(t, err)
	ids := make([]string, 0, len(sessions))
	for _, r := range sessions {
		ids = append(ids, r.RecordingUID)
	}
	assert.Equal(t, []string{"r1", "r2", "r5", "r6"}, ids)

	n, err := src.CountCaptureSessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n, "roots r1, r5 and r6")

	available, err := src.AvailableRecordings(ctx)
	require.NoError(t, err)
	assert.Len(t, available, 4, "r1, r2, r4 and r5")

	n, err = src.CountRecordings(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(len(available)), n)
}

func TestSource_RecordingEvents(t *testing.T) {
	src, db := setupSource(t)
	ctx := t.Context()

	require.NoError(t, db.Create([]legacy.Audit{
		{AuditUID: "a1", RecordingUID: ptr("r1"), Activity: ptr("Start Recording"), CreatedOn: ptr("2024-01-15 09:00:00")},
		{AuditUID: "a2", RecordingUID: ptr("r2"), Activity: ptr("Stop Recording"), CreatedOn: ptr("2024-01-15 10:00:00")},
		{AuditUID: "a3", RecordingUID: ptr("r9"), Activity: ptr("Start Recording")},
		{AuditUID: "a4", RecordingUID: ptr("r1"), Activity: ptr("Play")},
	}).Error)

	events, err := src.RecordingEvents(ctx, []string{"r1", "r2"}, []string{"Start Recording", "Stop Recording"})
	require.NoError(t, err)
	assert.Len(t, events, 2)

	events, err = src.RecordingEvents(ctx, nil, []string{"Start Recording"})
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestSource_CaseDeletedOn(t *testing.T) {
	src, db := setupSource(t)

	require.NoError(t, db.Create([]legacy.Audit{
		{AuditUID: "a1", CaseUID: ptr("c1"), AuditDetails: ptr("Case marked as Deleted."), CreatedOn: ptr("2024-02-01 08:00:00")},
		{AuditUID: "a2", CaseUID: ptr("c1"), AuditDetails: ptr("Case updated.")},
	}).Error)

	dates, err := src.CaseDeletedOn(t.Context(), "c1")
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-02-01 08:00:00"}, dates)
}

func TestSource_MissingTableIsWrapped(t *testing.T) {
	src, db := setupSource(t)
	require.NoError(t, db.Migrator().DropTable(&legacy.Court{}))

	_, err := src.Courts(t.Context())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read legacy courts")
}
