package migration

import (
	"context"
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/tphakala/premigrate/internal/datastore/entities"
	"github.com/tphakala/premigrate/internal/errors"
	"github.com/tphakala/premigrate/internal/ledger"
	"github.com/tphakala/premigrate/internal/legacy"
)

// RoleMigrator creates roles from the legacy security groups. Only group
// names listed in the reference roles are accepted.
type RoleMigrator struct {
	deps *Deps
}

func NewRoleMigrator(deps *Deps) *RoleMigrator {
	return &RoleMigrator{deps: deps}
}

func (m *RoleMigrator) Entity() string { return entities.Role{}.TableName() }

func (m *RoleMigrator) Fetch(ctx context.Context) ([]legacy.Group, error) {
	return m.deps.Source.SecurityGroups(ctx)
}

func (m *RoleMigrator) Migrate(ctx context.Context, rows []legacy.Group) (Result, error) {
	b := m.deps.newBatcher(m.Entity(), len(rows))
	return run(ctx, b, rows, func(g legacy.Group) error {
		return b.process(ctx, g.GroupID, ledger.Context{}, func() (*pending, error) {
			name, err := required(g.GroupName, "Null value for role name.")
			if err != nil {
				return nil, err
			}
			if !slices.Contains(m.deps.Reference.Roles, name) {
				return nil, errors.ValidationError(fmt.Sprintf("Role %s is not a recognised role.", name))
			}

			id := uuid.NewString()
			return &pending{
				key:         keyOf(m.Entity(), "name", name),
				row:         &entities.Role{ID: id, Name: name},
				id:          id,
				description: name,
			}, nil
		})
	})
}
