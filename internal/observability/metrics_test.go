package observability

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tphakala/premigrate/internal/observability/metrics"
)

func TestMetrics_WriteTextfile(t *testing.T) {
	m, err := NewMetrics()
	require.NoError(t, err)

	m.Migration.RecordRows("cases", metrics.OutcomeInserted, 4)
	m.Migration.RecordRun(metrics.RunCompleted, time.Now(), time.Minute)

	path := filepath.Join(t.TempDir(), "premigrate.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `premigrate_rows_total{entity="cases",outcome="inserted"} 4`)
	assert.Contains(t, string(data), "premigrate_last_run_success 1")
}
