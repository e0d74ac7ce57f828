package migration

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/tphakala/premigrate/internal/conf"
	"github.com/tphakala/premigrate/internal/datastore/entities"
	"github.com/tphakala/premigrate/internal/errors"
	"github.com/tphakala/premigrate/internal/ledger"
	"github.com/tphakala/premigrate/internal/legacy"
)

// RoomMigrator creates rooms from the legacy rooms.
type RoomMigrator struct {
	deps *Deps
}

func NewRoomMigrator(deps *Deps) *RoomMigrator {
	return &RoomMigrator{deps: deps}
}

func (m *RoomMigrator) Entity() string { return entities.Room{}.TableName() }

func (m *RoomMigrator) Fetch(ctx context.Context) ([]legacy.Room, error) {
	return m.deps.Source.Rooms(ctx)
}

func (m *RoomMigrator) Migrate(ctx context.Context, rows []legacy.Room) (Result, error) {
	b := m.deps.newBatcher(m.Entity(), len(rows))
	return run(ctx, b, rows, func(r legacy.Room) error {
		return b.process(ctx, r.RoomID, ledger.Context{}, func() (*pending, error) {
			name, err := required(r.RoomName, "Null value for room name.")
			if err != nil {
				return nil, err
			}
			id := uuid.NewString()
			return &pending{
				key:         keyOf(m.Entity(), "name", name),
				row:         &entities.Room{ID: id, Name: name},
				id:          id,
				description: name,
			}, nil
		})
	})
}

// CourtroomMigrator places rooms in locations according to the reference
// room assignments. Rooms run before this step.
type CourtroomMigrator struct {
	deps *Deps
}

func NewCourtroomMigrator(deps *Deps) *CourtroomMigrator {
	return &CourtroomMigrator{deps: deps}
}

func (m *CourtroomMigrator) Entity() string { return entities.Courtroom{}.TableName() }

func (m *CourtroomMigrator) Fetch(_ context.Context) ([]conf.RoomAssignment, error) {
	return m.deps.Reference.RoomAssignments, nil
}

func (m *CourtroomMigrator) Migrate(ctx context.Context, rows []conf.RoomAssignment) (Result, error) {
	b := m.deps.newBatcher(m.Entity(), len(rows))
	return run(ctx, b, rows, func(a conf.RoomAssignment) error {
		return b.process(ctx, a.Room, ledger.Context{}, func() (*pending, error) {
			roomID, err := m.deps.Resolver.ResolveRoom(ctx, a.Room)
			if err != nil {
				return nil, err
			}
			courtID, ok, err := m.deps.Resolver.MatchLocation(ctx, a.Location)
			if err != nil {
				return nil, err
			}
			if !ok {
				return nil, errors.ResolutionError(fmt.Sprintf("Location %s not found in the courts table.", a.Location))
			}
			return &pending{
				key:         keyOf(m.Entity(), "room_id", roomID),
				row:         &entities.Courtroom{RoomID: roomID, CourtID: courtID},
				id:          roomID,
				description: a.Room + " at " + a.Location,
			}, nil
		})
	})
}
