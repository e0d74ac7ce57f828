package testutil

import (
	"context"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/tphakala/premigrate/internal/conf"
	"github.com/tphakala/premigrate/internal/datastore"
	"github.com/tphakala/premigrate/internal/ledger"
	"github.com/tphakala/premigrate/internal/legacy"
	"github.com/tphakala/premigrate/internal/logger"
	"github.com/tphakala/premigrate/internal/migration"
	"gorm.io/gorm"
)

// Session event activities used by the fixture audits.
const (
	ActivityStarted  = "Recording started"
	ActivityFinished = "Recording finished"
)

// TestContext contains all dependencies needed for migration integration tests.
type TestContext struct {
	// Temporary directory for test databases and the ledger
	TempDir string

	// Legacy database components
	LegacyDB *gorm.DB       // GORM connection for seeding and queries
	Source   *legacy.Source // Source read by the migrators
	Seeder   *LegacySeeder

	// Destination database components
	Destination *datastore.Manager
	Writer      *datastore.Writer
	State       *datastore.StateManager

	LedgerPath string
	Reference  *conf.ReferenceData

	// Deps is the dependency set of the current run. NewRun replaces it.
	Deps *migration.Deps

	// Logger
	Logger logger.Logger
}

// SetupIntegrationTest creates a complete test environment for migration integration tests.
// Call this at the start of each test. Databases are closed with t.Cleanup().
func SetupIntegrationTest(t *testing.T) *TestContext {
	t.Helper()

	tmpDir := t.TempDir()

	// Create test logger (silent for tests)
	log := logger.NewSlogLogger(io.Discard, logger.LogLevelError, time.UTC)

	ref, err := conf.LoadReferenceData("")
	require.NoError(t, err, "failed to load reference data")

	ctx := &TestContext{
		TempDir:    tmpDir,
		LedgerPath: filepath.Join(tmpDir, "failed_imports_log.txt"),
		Reference:  ref,
		Logger:     log,
	}

	ctx.setupLegacyDB(t)
	ctx.setupDestinationDB(t)
	ctx.NewRun(t)

	return ctx
}

// setupLegacyDB creates the legacy SQLite database with its schema.
func (ctx *TestContext) setupLegacyDB(t *testing.T) {
	t.Helper()

	mgr, err := datastore.NewSQLiteManager(filepath.Join(ctx.TempDir, "legacy.db"), ctx.Logger)
	require.NoError(t, err, "failed to create legacy database")
	t.Cleanup(func() { _ = mgr.Close() })

	require.NoError(t, mgr.DB().AutoMigrate(legacy.Tables()...), "failed to migrate legacy schema")

	ctx.LegacyDB = mgr.DB()
	ctx.Source = legacy.NewSource(datastore.NewReader(mgr.DB()))
	ctx.Seeder = NewLegacySeeder(mgr.DB())
}

// setupDestinationDB creates the destination SQLite database with its schema.
func (ctx *TestContext) setupDestinationDB(t *testing.T) {
	t.Helper()

	mgr, err := datastore.NewSQLiteManager(filepath.Join(ctx.TempDir, "destination.db"), ctx.Logger)
	require.NoError(t, err, "failed to create destination database")
	t.Cleanup(func() { _ = mgr.Close() })

	require.NoError(t, mgr.Initialize(), "failed to initialize destination schema")

	ctx.Destination = mgr
	ctx.Writer = datastore.NewWriter(mgr.DB())
	ctx.State = datastore.NewStateManager(mgr.DB())
}

// NewRun builds fresh run dependencies, as a new process would: the
// resolver cache is empty and the ledger is reloaded from disk.
func (ctx *TestContext) NewRun(t *testing.T) *migration.Deps {
	t.Helper()

	l, err := ledger.Open(ctx.LedgerPath, ctx.Logger)
	require.NoError(t, err, "failed to open failure ledger")

	ctx.Deps = &migration.Deps{
		Source:    ctx.Source,
		Writer:    ctx.Writer,
		Guard:     migration.NewGuard(ctx.Writer),
		Resolver:  migration.NewResolver(ctx.Writer, ctx.Reference, ctx.Logger),
		Ledger:    l,
		Audit:     migration.NewAuditWriter(ctx.Writer, nil, ctx.Logger),
		Reference: ctx.Reference,
		Log:       ctx.Logger,
		Location:  time.UTC,
		BatchSize: 10,
		TieBreak:  conf.TieBreakVersionAsc,
		SessionEvents: migration.SessionEvents{
			Started:  ActivityStarted,
			Finished: ActivityFinished,
		},
	}
	return ctx.Deps
}

// RunMigration runs every step with the current dependencies.
func (ctx *TestContext) RunMigration(t *testing.T) *migration.RunReport {
	t.Helper()

	orch := migration.NewOrchestrator(&migration.OrchestratorConfig{
		Deps:  ctx.Deps,
		State: ctx.State,
	})
	report, err := orch.Run(context.Background())
	require.NoError(t, err, "migration run failed")
	require.False(t, report.Halted, "migration run halted")
	return report
}

// Count returns the number of rows in a destination table.
func (ctx *TestContext) Count(t *testing.T, table string) int64 {
	t.Helper()

	n, err := ctx.Writer.Count(context.Background(), table)
	require.NoError(t, err)
	return n
}

// TableCounts returns the row count of every destination table.
func (ctx *TestContext) TableCounts(t *testing.T) map[string]int64 {
	t.Helper()

	tables, err := ctx.Writer.Tables(context.Background())
	require.NoError(t, err)

	counts := make(map[string]int64, len(tables))
	for _, table := range tables {
		counts[table] = ctx.Count(t, table)
	}
	return counts
}

// LedgerEntries returns the entries flushed to the ledger file.
func (ctx *TestContext) LedgerEntries(t *testing.T) []ledger.Entry {
	t.Helper()

	entries, err := ledger.Load(ctx.LedgerPath)
	require.NoError(t, err)
	return entries
}
