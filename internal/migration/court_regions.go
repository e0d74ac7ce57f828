package migration

import (
	"context"
	"fmt"

	"github.com/tphakala/premigrate/internal/datastore/entities"
	"github.com/tphakala/premigrate/internal/errors"
	"github.com/tphakala/premigrate/internal/ledger"
)

// CourtRegionMigrator links every destination location to its region. The
// region of a location comes from the reference region links, or from the
// reference location entry when no link names it.
type CourtRegionMigrator struct {
	deps *Deps
}

func NewCourtRegionMigrator(deps *Deps) *CourtRegionMigrator {
	return &CourtRegionMigrator{deps: deps}
}

func (m *CourtRegionMigrator) Entity() string { return entities.CourtRegion{}.TableName() }

// Fetch returns the locations already in the destination.
func (m *CourtRegionMigrator) Fetch(ctx context.Context) ([]entities.Court, error) {
	var rows []entities.Court
	err := m.deps.Writer.Query(ctx, &rows, "SELECT * FROM courts ORDER BY name")
	return rows, err
}

func (m *CourtRegionMigrator) Migrate(ctx context.Context, rows []entities.Court) (Result, error) {
	regions, err := m.regionsByCourt(ctx)
	if err != nil {
		return Result{Entity: m.Entity()}, err
	}

	b := m.deps.newBatcher(m.Entity(), len(rows))
	return run(ctx, b, rows, func(c entities.Court) error {
		return b.process(ctx, c.ID, ledger.Context{}, func() (*pending, error) {
			regionName, ok := regions[c.ID]
			if !ok {
				return nil, errors.ResolutionError(fmt.Sprintf("Missing region ID for court: %s", c.Name))
			}
			regionID, err := m.deps.Resolver.ResolveRegion(ctx, regionName)
			if err != nil {
				return nil, err
			}
			return &pending{
				key:         keyOf(m.Entity(), "court_id", c.ID),
				row:         &entities.CourtRegion{CourtID: c.ID, RegionID: regionID},
				id:          c.ID,
				description: c.Name + " in " + regionName,
			}, nil
		})
	})
}

// regionsByCourt maps destination court ids onto region names. The first
// matching link wins.
func (m *CourtRegionMigrator) regionsByCourt(ctx context.Context) (map[string]string, error) {
	ref := m.deps.Reference
	out := make(map[string]string)

	assign := func(location, region string) error {
		if region == "" {
			return nil
		}
		id, ok, err := m.deps.Resolver.MatchLocation(ctx, location)
		if err != nil || !ok {
			return err
		}
		if _, taken := out[id]; !taken {
			out[id] = region
		}
		return nil
	}

	for _, link := range ref.RegionLinks {
		if err := assign(link.Location, link.Region); err != nil {
			return nil, err
		}
	}
	if err := assign(ref.DefaultLocation.Name, ref.DefaultLocation.Region); err != nil {
		return nil, err
	}
	for _, loc := range ref.Locations {
		if err := assign(loc.Name, loc.Region); err != nil {
			return nil, err
		}
	}
	return out, nil
}
