//go:build integration && mysql

package datastore

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcmysql "github.com/testcontainers/testcontainers-go/modules/mysql"
	"github.com/tphakala/premigrate/internal/conf"
	"github.com/tphakala/premigrate/internal/datastore/entities"
	"github.com/tphakala/premigrate/internal/errors"
)

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// startMySQL runs a throwaway MySQL server and returns settings for it.
func startMySQL(t *testing.T) *conf.DatabaseSettings {
	t.Helper()
	ctx := t.Context()

	cfg := &conf.DatabaseSettings{
		Driver:   conf.DriverMySQL,
		User:     "premigrate",
		Password: "premigrate",
		Database: "premigrate_test",
	}

	ctr, err := tcmysql.Run(ctx,
		getEnvOrDefault("MYSQL_TEST_IMAGE", "mysql:8.0"),
		tcmysql.WithDatabase(cfg.Database),
		tcmysql.WithUsername(cfg.User),
		tcmysql.WithPassword(cfg.Password),
	)
	if err != nil {
		t.Skipf("Skipping MySQL test: container unavailable: %v", err)
	}
	t.Cleanup(func() { _ = testcontainers.TerminateContainer(ctr) })

	host, err := ctr.Host(ctx)
	require.NoError(t, err)
	port, err := ctr.MappedPort(ctx, "3306/tcp")
	require.NoError(t, err)

	cfg.Host = host
	cfg.Port = port.Int()
	return cfg
}

func TestMySQL_InsertBatch_IsolatesRejectedRows(t *testing.T) {
	cfg := startMySQL(t)

	mgr, err := Open(cfg, testLogger)
	require.NoError(t, err)
	defer func() { _ = mgr.Close() }()
	require.NoError(t, mgr.Initialize())

	w := NewWriter(mgr.DB())
	ctx := t.Context()

	require.NoError(t, w.Create(ctx, &entities.Court{ID: "court-1", CourtType: entities.CourtTypeCrown, Name: "Leeds Crown Court"}))

	rowErrs, err := w.InsertBatch(ctx, []any{
		&entities.Court{ID: "court-2", CourtType: entities.CourtTypeCrown, Name: "Leeds Youth Court"},
		&entities.Court{ID: "court-3", CourtType: entities.CourtTypeCrown, Name: "Leeds Crown Court"},
		&entities.CourtRegion{CourtID: "court-2", RegionID: "missing-region"},
	})
	require.NoError(t, err)
	assert.NoError(t, rowErrs[0])
	assert.True(t, errors.IsCategory(rowErrs[1], errors.CategoryConstraint))
	assert.True(t, errors.IsCategory(rowErrs[2], errors.CategoryConstraint))

	n, err := w.Count(ctx, "courts")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}
