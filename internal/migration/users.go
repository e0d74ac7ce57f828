package migration

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/tphakala/premigrate/internal/datastore/entities"
	"github.com/tphakala/premigrate/internal/errors"
	"github.com/tphakala/premigrate/internal/ledger"
	"github.com/tphakala/premigrate/internal/legacy"
)

// UserMigrator copies the legacy users, keeping their ids.
type UserMigrator struct {
	deps *Deps
}

func NewUserMigrator(deps *Deps) *UserMigrator {
	return &UserMigrator{deps: deps}
}

func (m *UserMigrator) Entity() string { return entities.User{}.TableName() }

func (m *UserMigrator) Fetch(ctx context.Context) ([]legacy.User, error) {
	return m.deps.Source.Users(ctx)
}

func (m *UserMigrator) Migrate(ctx context.Context, rows []legacy.User) (Result, error) {
	b := m.deps.newBatcher(m.Entity(), len(rows))
	return run(ctx, b, rows, func(u legacy.User) error {
		return b.process(ctx, u.UserID, ledger.Context{}, func() (*pending, error) {
			email, err := required(u.Email, "Null value for email.")
			if err != nil {
				return nil, err
			}
			createdAt, err := m.deps.createdAt(u.Created)
			if err != nil {
				return nil, err
			}
			modifiedAt, err := m.deps.timestamp(u.Modified)
			if err != nil {
				return nil, err
			}
			createdBy, err := m.deps.Resolver.OptionalUser(ctx, u.CreatedBy)
			if err != nil {
				return nil, err
			}

			user := &entities.User{
				ID:           u.UserID,
				FirstName:    strings.TrimSpace(legacy.Value(u.FirstName)),
				LastName:     strings.TrimSpace(legacy.Value(u.LastName)),
				Email:        email,
				Organisation: optional(u.Organisation),
				Phone:        optional(u.Phone),
				CreatedAt:    createdAt,
				ModifiedAt:   modifiedAt,
			}
			return &pending{
				key:         keyOf(m.Entity(), "id", u.UserID),
				row:         user,
				id:          u.UserID,
				description: strings.TrimSpace(user.FirstName + " " + user.LastName),
				actor:       createdBy,
				at:          &createdAt,
			}, nil
		})
	})
}

// requireUser fails with a resolution error unless the user exists in the
// destination.
func requireUser(ctx context.Context, deps *Deps, userID string) error {
	ok, err := deps.Guard.Exists(ctx, entities.User{}.TableName(), "id", userID)
	if err != nil {
		return err
	}
	if !ok {
		return errors.ResolutionError(fmt.Sprintf("User ID: %s not found in the users table.", userID))
	}
	return nil
}

// PortalAccessMigrator grants portal access to level 3 users and to users
// invited to the portal.
type PortalAccessMigrator struct {
	deps *Deps
}

func NewPortalAccessMigrator(deps *Deps) *PortalAccessMigrator {
	return &PortalAccessMigrator{deps: deps}
}

func (m *PortalAccessMigrator) Entity() string { return entities.PortalAccess{}.TableName() }

func (m *PortalAccessMigrator) Fetch(ctx context.Context) ([]legacy.User, error) {
	return m.deps.Source.PortalUsers(ctx)
}

func (m *PortalAccessMigrator) Migrate(ctx context.Context, rows []legacy.User) (Result, error) {
	b := m.deps.newBatcher(m.Entity(), len(rows))
	return run(ctx, b, rows, func(u legacy.User) error {
		return b.process(ctx, u.UserID, ledger.Context{}, func() (*pending, error) {
			if err := requireUser(ctx, m.deps, u.UserID); err != nil {
				return nil, err
			}
			createdAt, err := m.deps.createdAt(u.Created)
			if err != nil {
				return nil, err
			}
			modifiedAt, err := m.deps.timestamp(u.Modified)
			if err != nil {
				return nil, err
			}

			access := &entities.PortalAccess{
				ID:         uuid.NewString(),
				UserID:     u.UserID,
				Status:     portalStatus(&u),
				CreatedAt:  createdAt,
				ModifiedAt: modifiedAt,
			}
			if legacy.IsTrue(u.Invited) {
				access.InvitedAt = &createdAt
			}
			if access.Status == entities.AccessStatusActive {
				access.RegisteredAt = &createdAt
			}

			return &pending{
				key:         keyOf(m.Entity(), "user_id", u.UserID),
				row:         access,
				id:          access.ID,
				description: u.UserID,
				at:          &createdAt,
			}, nil
		})
	})
}

// portalStatus derives the portal access status of a legacy user.
func portalStatus(u *legacy.User) string {
	switch {
	case legacy.IsTrue(u.LoginEnabled) && legacy.IsTrue(u.EmailConfirmed):
		return entities.AccessStatusActive
	case legacy.IsTrue(u.Invited):
		return entities.AccessStatusInvitationSent
	default:
		return entities.AccessStatusInactive
	}
}

// AppAccessMigrator grants capture app access at the default location to
// users with a role other than level 3.
type AppAccessMigrator struct {
	deps *Deps
}

func NewAppAccessMigrator(deps *Deps) *AppAccessMigrator {
	return &AppAccessMigrator{deps: deps}
}

func (m *AppAccessMigrator) Entity() string { return entities.AppAccess{}.TableName() }

func (m *AppAccessMigrator) Fetch(ctx context.Context) ([]legacy.User, error) {
	return m.deps.Source.AppUsers(ctx)
}

func (m *AppAccessMigrator) Migrate(ctx context.Context, rows []legacy.User) (Result, error) {
	b := m.deps.newBatcher(m.Entity(), len(rows))
	return run(ctx, b, rows, func(u legacy.User) error {
		return b.process(ctx, u.UserID, ledger.Context{}, func() (*pending, error) {
			roleName, err := required(u.PreRole, "Null value for role.")
			if err != nil {
				return nil, err
			}
			if err := requireUser(ctx, m.deps, u.UserID); err != nil {
				return nil, err
			}
			roleID, err := m.deps.Resolver.ResolveRole(ctx, roleName)
			if err != nil {
				return nil, err
			}
			courtID, err := m.deps.Resolver.ResolveLocation(ctx, m.deps.Reference.DefaultLocation.Name)
			if err != nil {
				return nil, err
			}
			createdAt, err := m.deps.createdAt(u.Created)
			if err != nil {
				return nil, err
			}
			modifiedAt, err := m.deps.timestamp(u.Modified)
			if err != nil {
				return nil, err
			}
			createdBy, err := m.deps.Resolver.OptionalUser(ctx, u.CreatedBy)
			if err != nil {
				return nil, err
			}

			access := &entities.AppAccess{
				ID:         uuid.NewString(),
				UserID:     u.UserID,
				CourtID:    courtID,
				RoleID:     roleID,
				Active:     !strings.EqualFold(strings.TrimSpace(legacy.Value(u.Status)), "inactive"),
				CreatedAt:  createdAt,
				ModifiedAt: modifiedAt,
			}
			return &pending{
				key:         keyOf(m.Entity(), "user_id", u.UserID),
				row:         access,
				id:          access.ID,
				description: u.UserID,
				actor:       createdBy,
				at:          &createdAt,
			}, nil
		})
	})
}
