package migration

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/tphakala/premigrate/internal/datastore/entities"
	"github.com/tphakala/premigrate/internal/ledger"
)

// RegionMigrator creates the regions named in the reference data. The
// legacy store has no regions of its own.
type RegionMigrator struct {
	deps *Deps
}

func NewRegionMigrator(deps *Deps) *RegionMigrator {
	return &RegionMigrator{deps: deps}
}

func (m *RegionMigrator) Entity() string { return entities.Region{}.TableName() }

func (m *RegionMigrator) Fetch(_ context.Context) ([]string, error) {
	return m.deps.Reference.Regions, nil
}

func (m *RegionMigrator) Migrate(ctx context.Context, rows []string) (Result, error) {
	b := m.deps.newBatcher(m.Entity(), len(rows))
	return run(ctx, b, rows, func(name string) error {
		name = strings.TrimSpace(name)
		return b.process(ctx, name, ledger.Context{}, func() (*pending, error) {
			if _, err := required(&name, "Null value for region name."); err != nil {
				return nil, err
			}
			id := uuid.NewString()
			return &pending{
				key:         keyOf(m.Entity(), "name", name),
				row:         &entities.Region{ID: id, Name: name},
				id:          id,
				description: name,
			}, nil
		})
	})
}
