package telemetry

import (
	"io"
	"testing"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/premigrate/internal/buildinfo"
	"github.com/tphakala/premigrate/internal/conf"
	"github.com/tphakala/premigrate/internal/errors"
	"github.com/tphakala/premigrate/internal/logger"
)

var testLogger = logger.NewSlogLogger(io.Discard, logger.LogLevelError, time.UTC)

func TestInitSentry_Disabled(t *testing.T) {
	settings := &conf.Settings{}
	require.NoError(t, InitSentry(settings, &buildinfo.Context{}, testLogger))
}

func TestInitSentry_MissingDSN(t *testing.T) {
	settings := &conf.Settings{}
	settings.Sentry.Enabled = true

	err := InitSentry(settings, &buildinfo.Context{}, testLogger)
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryConfiguration))
}

func TestApplyPrivacyFilters(t *testing.T) {
	event := &sentry.Event{
		ServerName: "migration-host-01",
		User:       sentry.User{Email: "ops@example.com"},
		Message:    "dial admin:hunter2@tcp(db:3306) failed",
		Contexts: map[string]sentry.Context{
			"os":      {"name": "linux"},
			"runtime": {"name": "go"},
			"entity":  {"value": "cases"},
		},
		Extra: map[string]any{
			"component":  "migration",
			"error_type": "*mysql.MySQLError",
			"query":      "SELECT * FROM users WHERE email = 'a@b.com'",
		},
		Tags: map[string]string{
			"hostname": "migration-host-01",
			"category": "infrastructure",
		},
		Exception: []sentry.Exception{{Value: "lookup failed for ops@example.com"}},
	}

	filtered := applyPrivacyFilters(event)

	assert.Empty(t, filtered.ServerName)
	assert.True(t, filtered.User.IsEmpty())
	assert.NotContains(t, filtered.Message, "hunter2")
	assert.NotContains(t, filtered.Contexts, "os")
	assert.NotContains(t, filtered.Contexts, "runtime")
	assert.Contains(t, filtered.Contexts, "entity")
	assert.Equal(t, map[string]any{"component": "migration", "error_type": "*mysql.MySQLError"}, filtered.Extra)
	assert.Equal(t, map[string]string{"category": "infrastructure"}, filtered.Tags)
	assert.NotContains(t, filtered.Exception[0].Value, "ops@example.com")
}
