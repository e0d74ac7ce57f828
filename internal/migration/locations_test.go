package migration_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/premigrate/internal/conf"
	"github.com/tphakala/premigrate/internal/datastore/entities"
	"github.com/tphakala/premigrate/internal/legacy"
	"github.com/tphakala/premigrate/internal/migration"
	"github.com/tphakala/premigrate/internal/migration/testutil"
)

func locationReference() *conf.ReferenceData {
	return &conf.ReferenceData{
		Roles:           []string{"Level 1"},
		Regions:         []string{"Default"},
		DefaultLocation: conf.LocationRef{Name: "Default Court", Type: "crown", Code: "default", Region: "Default"},
		UnknownLocation: conf.LocationRef{Type: "CROWN", Code: "Unknown"},
		Locations: []conf.LocationRef{
			{Name: "Riverside Court", Type: "CROWN", Code: "200"},
			{Name: "Harborview Crown Court", Type: "CROWN", Code: "300"},
		},
	}
}

func TestLocationMigrator_UpsertLocations(t *testing.T) {
	t.Parallel()

	ctx := testutil.SetupIntegrationTest(t)
	ctx.Deps.Reference = locationReference()
	require.NoError(t, ctx.Writer.Create(t.Context(),
		&entities.Court{ID: "court-riverside", CourtType: entities.CourtTypeCrown, Name: "Riverside Court", LocationCode: "100"}))

	report, err := migration.NewLocationMigrator(ctx.Deps).UpsertLocations(t.Context())
	require.NoError(t, err)
	require.Len(t, report, 3)

	byName := make(map[string]migration.LocationChange, len(report))
	for _, c := range report {
		byName[c.Name] = c
	}

	def := byName["Default Court"]
	assert.True(t, def.New)
	assert.Equal(t, "CROWN", def.Type)

	river := byName["Riverside Court"]
	assert.True(t, river.Updated)
	assert.False(t, river.New)
	assert.Equal(t, "court-riverside", river.ID)
	assert.Equal(t, "200", river.Code)
	assert.Equal(t, "Location code changed from 100 to 200", river.Change)

	harbor := byName["Harborview Crown Court"]
	assert.True(t, harbor.New)
	assert.Equal(t, "New court", harbor.Change)
	assert.Equal(t, "300", harbor.Code)

	var court entities.Court
	require.NoError(t, ctx.Destination.DB().First(&court, "id = ?", "court-riverside").Error)
	assert.Equal(t, "200", court.LocationCode)
	assert.Equal(t, int64(3), ctx.Count(t, "courts"))

	// A second pass changes nothing.
	report, err = migration.NewLocationMigrator(ctx.Deps).UpsertLocations(t.Context())
	require.NoError(t, err)
	for _, c := range report {
		assert.False(t, c.New, c.Name)
		assert.False(t, c.Updated, c.Name)
		assert.Equal(t, "No change", c.Change, c.Name)
	}
	assert.Equal(t, int64(3), ctx.Count(t, "courts"))
}

func TestLocationMigrator_ExistingLocationOnlyGetsCode(t *testing.T) {
	t.Parallel()

	ctx := testutil.SetupIntegrationTest(t)
	ctx.Deps.Reference = locationReference()
	require.NoError(t, ctx.Writer.Create(t.Context(),
		&entities.Court{ID: "court-riverside", CourtType: entities.CourtTypeFamily, Name: "Riverside Court", LocationCode: "100"}))

	m := migration.NewLocationMigrator(ctx.Deps)
	res, err := m.Migrate(t.Context(), []legacy.Court{
		{CourtID: "legacy-riverside", CourtName: testutil.Ptr("Riverside Court")},
		{CourtID: "legacy-unknown", CourtName: testutil.Ptr("Lost Court")},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Inserted)
	assert.Equal(t, 1, res.Skipped)

	var river entities.Court
	require.NoError(t, ctx.Destination.DB().First(&river, "name = ?", "Riverside Court").Error)
	assert.Equal(t, "court-riverside", river.ID)
	assert.Equal(t, "200", river.LocationCode)
	assert.Equal(t, entities.CourtTypeFamily, river.CourtType, "type of an existing location is kept")

	var lost entities.Court
	require.NoError(t, ctx.Destination.DB().First(&lost, "name = ?", "Lost Court").Error)
	assert.Equal(t, "legacy-unknown", lost.ID)
	assert.Equal(t, "Unknown", lost.LocationCode)
	assert.Equal(t, "CROWN", lost.CourtType)
}
