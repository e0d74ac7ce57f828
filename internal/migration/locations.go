package migration

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/tphakala/premigrate/internal/conf"
	"github.com/tphakala/premigrate/internal/datastore/entities"
	"github.com/tphakala/premigrate/internal/errors"
	"github.com/tphakala/premigrate/internal/ledger"
	"github.com/tphakala/premigrate/internal/legacy"
	"github.com/tphakala/premigrate/internal/logger"
)

// Change descriptions of the location code report.
const (
	changeNone = "No change"
	changeNew  = "New court"
)

// LocationChange is one row of the location code report.
type LocationChange struct {
	Name    string
	ID      string
	Code    string
	Type    string
	Updated bool
	New     bool
	Change  string
}

// LocationMigrator creates locations from the legacy courts plus the
// default location. Type and code come from the reference data. A location
// that already exists only has its code brought in line with the reference
// data; no other field of an existing location is ever updated.
type LocationMigrator struct {
	deps *Deps
}

func NewLocationMigrator(deps *Deps) *LocationMigrator {
	return &LocationMigrator{deps: deps}
}

func (m *LocationMigrator) Entity() string { return entities.Court{}.TableName() }

// Fetch returns the legacy courts followed by the default location, which
// has no legacy id.
func (m *LocationMigrator) Fetch(ctx context.Context) ([]legacy.Court, error) {
	rows, err := m.deps.Source.Courts(ctx)
	if err != nil {
		return nil, err
	}
	name := m.deps.Reference.DefaultLocation.Name
	return append(rows, legacy.Court{CourtName: &name}), nil
}

func (m *LocationMigrator) Migrate(ctx context.Context, rows []legacy.Court) (Result, error) {
	b := m.deps.newBatcher(m.Entity(), len(rows))
	return run(ctx, b, rows, func(c legacy.Court) error {
		return b.process(ctx, c.CourtID, ledger.Context{}, func() (*pending, error) {
			name, err := required(c.CourtName, "Null value for court name.")
			if err != nil {
				return nil, err
			}
			ref, known := m.reference(name)

			existing, err := m.existing(ctx, name)
			if err != nil {
				return nil, err
			}
			if existing != nil {
				if known {
					if _, err := m.updateCode(ctx, existing, ref.Code); err != nil {
						return nil, err
					}
				}
				return nil, nil
			}

			id := c.CourtID
			if id == "" {
				id = uuid.NewString()
			}
			return &pending{
				key:         keyOf(m.Entity(), "name", name),
				row:         &entities.Court{ID: id, CourtType: strings.ToUpper(ref.Type), Name: name, LocationCode: ref.Code},
				id:          id,
				description: name,
			}, nil
		})
	})
}

// UpsertLocations brings every reference location into the destination:
// missing locations are inserted and existing ones have their code
// updated. It returns one report row per location.
func (m *LocationMigrator) UpsertLocations(ctx context.Context) ([]LocationChange, error) {
	refs := append([]conf.LocationRef{m.deps.Reference.DefaultLocation}, m.deps.Reference.Locations...)
	report := make([]LocationChange, 0, len(refs))

	for _, ref := range refs {
		existing, err := m.existing(ctx, ref.Name)
		if err != nil {
			return report, err
		}
		if existing != nil {
			change, err := m.updateCode(ctx, existing, ref.Code)
			if err != nil {
				return report, err
			}
			report = append(report, change)
			continue
		}

		court := &entities.Court{
			ID:           uuid.NewString(),
			CourtType:    strings.ToUpper(ref.Type),
			Name:         ref.Name,
			LocationCode: ref.Code,
		}
		change := LocationChange{Name: court.Name, ID: court.ID, Code: court.LocationCode, Type: court.CourtType}
		if err := m.deps.Writer.Create(ctx, court); err != nil {
			if !errors.IsRecordLevel(err) {
				return report, err
			}
			m.deps.Ledger.RecordError(m.Entity(), court.ID, ledger.Context{}, err)
			change.ID = ""
			change.Change = errorText(err)
			report = append(report, change)
			continue
		}
		m.deps.Audit.Record(ctx, m.Entity(), court.ID, court.Name, nil, nil)

		change.New = true
		change.Change = changeNew
		report = append(report, change)
	}
	return report, nil
}

// reference returns the reference entry for a location name and whether
// the reference data knows the location.
func (m *LocationMigrator) reference(name string) (conf.LocationRef, bool) {
	ref := m.deps.Reference
	if name == ref.DefaultLocation.Name {
		return ref.DefaultLocation, true
	}
	if loc, ok := ref.Location(name); ok {
		return loc, true
	}
	return ref.LocationOrUnknown(name), false
}

func (m *LocationMigrator) existing(ctx context.Context, name string) (*entities.Court, error) {
	var rows []entities.Court
	if err := m.deps.Writer.Query(ctx, &rows, "SELECT * FROM courts WHERE name = ?", name); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// updateCode sets the location code of court to code when they differ.
func (m *LocationMigrator) updateCode(ctx context.Context, court *entities.Court, code string) (LocationChange, error) {
	change := LocationChange{
		Name:   court.Name,
		ID:     court.ID,
		Code:   court.LocationCode,
		Type:   court.CourtType,
		Change: changeNone,
	}
	if code == "" || code == court.LocationCode {
		return change, nil
	}

	if _, err := m.deps.Writer.Update(ctx, m.Entity(),
		map[string]any{"id": court.ID},
		map[string]any{"location_code": code}); err != nil {
		return change, err
	}

	change.Code = code
	change.Updated = true
	change.Change = fmt.Sprintf("Location code changed from %s to %s", court.LocationCode, code)
	m.deps.Log.Module("migration").Info("location code updated",
		logger.String("court", court.Name),
		logger.String("from", court.LocationCode),
		logger.String("to", code))
	return change, nil
}

func errorText(err error) string {
	var ee *errors.EnhancedError
	if errors.As(err, &ee) {
		return ee.GetMessage()
	}
	return err.Error()
}
