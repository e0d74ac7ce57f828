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

// ShareBookingMigrator turns the legacy video permissions into booking
// shares, keeping their ids. Inactive permissions are migrated as deleted
// shares.
type ShareBookingMigrator struct {
	deps *Deps
}

func NewShareBookingMigrator(deps *Deps) *ShareBookingMigrator {
	return &ShareBookingMigrator{deps: deps}
}

func (m *ShareBookingMigrator) Entity() string { return entities.ShareBooking{}.TableName() }

func (m *ShareBookingMigrator) Fetch(ctx context.Context) ([]legacy.VideoPermission, error) {
	return m.deps.Source.VideoPermissions(ctx)
}

func (m *ShareBookingMigrator) Migrate(ctx context.Context, rows []legacy.VideoPermission) (Result, error) {
	b := m.deps.newBatcher(m.Entity(), len(rows))
	return run(ctx, b, rows, func(vp legacy.VideoPermission) error {
		recordingID := legacy.Value(vp.RecordingUID)
		lctx := ledger.Context{ChainID: recordingID}

		return b.process(ctx, vp.PermissionID, lctx, func() (*pending, error) {
			bookingID, err := m.deps.Resolver.ResolveBookingForRecording(ctx, recordingID)
			if err != nil {
				return nil, err
			}
			sharedWith, err := m.sharedWith(ctx, vp.UserID)
			if err != nil {
				return nil, err
			}
			sharedBy, err := m.deps.Resolver.ResolveUser(ctx, legacy.Value(vp.CreatedBy))
			if err != nil {
				return nil, err
			}
			createdAt, err := m.deps.createdAt(vp.Created)
			if err != nil {
				return nil, err
			}

			share := &entities.ShareBooking{
				ID:               vp.PermissionID,
				BookingID:        bookingID,
				SharedWithUserID: sharedWith,
				SharedByUserID:   sharedBy,
				CreatedAt:        createdAt,
			}
			if strings.TrimSpace(legacy.Value(vp.ActiveStatus)) != "True" {
				deletedAt, err := m.deps.timestamp(vp.Modified)
				if err != nil {
					return nil, err
				}
				if deletedAt == nil {
					deletedAt = &createdAt
				}
				share.DeletedAt = deletedAt
			}

			return &pending{
				key:         keyOf(m.Entity(), "id", vp.PermissionID),
				row:         share,
				id:          vp.PermissionID,
				description: bookingID,
				actor:       &sharedBy,
				at:          &createdAt,
			}, nil
		})
	})
}

// sharedWith validates the user a permission was granted to.
func (m *ShareBookingMigrator) sharedWith(ctx context.Context, value *string) (string, error) {
	raw := strings.TrimSpace(legacy.Value(value))
	invalid := errors.ResolutionError(fmt.Sprintf("Invalid shared_with_user_id value: %s", raw))
	if _, err := uuid.Parse(raw); err != nil {
		return "", invalid
	}
	ok, err := m.deps.Guard.Exists(ctx, entities.User{}.TableName(), "id", raw)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", invalid
	}
	return raw, nil
}
