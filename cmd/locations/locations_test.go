package locations

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/premigrate/internal/migration"
)

func TestWriteReport(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, writeReport(&buf, []migration.LocationChange{
		{Name: "Default Court", ID: "c-1", Code: "default", Type: "CROWN", Change: "No change"},
		{Name: "Leeds Crown Court", ID: "c-2", Code: "429", Type: "CROWN", Updated: true, Change: "Location code changed from 400 to 429"},
	}))

	assert.Equal(t,
		"NAME               ID   CODE     TYPE   CHANGE\n"+
			"Default Court      c-1  default  CROWN  No change\n"+
			"Leeds Crown Court  c-2  429      CROWN  Location code changed from 400 to 429\n",
		buf.String())
}
