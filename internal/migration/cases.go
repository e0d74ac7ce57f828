package migration

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/tphakala/premigrate/internal/datastore/entities"
	"github.com/tphakala/premigrate/internal/errors"
	"github.com/tphakala/premigrate/internal/ledger"
	"github.com/tphakala/premigrate/internal/legacy"
)

// maxCaseReference is the length of the destination reference column.
const maxCaseReference = 25

// CaseMigrator copies the legacy cases, keeping their ids. Cases whose
// court matches no known location are assigned the default location.
type CaseMigrator struct {
	deps *Deps
}

func NewCaseMigrator(deps *Deps) *CaseMigrator {
	return &CaseMigrator{deps: deps}
}

func (m *CaseMigrator) Entity() string { return entities.Case{}.TableName() }

func (m *CaseMigrator) Fetch(ctx context.Context) ([]legacy.Case, error) {
	return m.deps.Source.Cases(ctx)
}

func (m *CaseMigrator) Migrate(ctx context.Context, rows []legacy.Case) (Result, error) {
	b := m.deps.newBatcher(m.Entity(), len(rows))
	return run(ctx, b, rows, func(c legacy.Case) error {
		lctx := ledger.Context{CaseID: c.CaseUID}
		return b.process(ctx, c.CaseUID, lctx, func() (*pending, error) {
			reference, err := required(c.CaseReference, "Null value for case reference.")
			if err != nil {
				return nil, err
			}
			if utf8.RuneCountInString(reference) > maxCaseReference {
				return nil, errors.ValidationError(fmt.Sprintf("Case reference %s exceeds %d characters.", reference, maxCaseReference))
			}
			courtID, err := m.deps.Resolver.ResolveLocation(ctx, legacy.Value(c.Court))
			if err != nil {
				return nil, err
			}
			createdAt, err := m.deps.createdAt(c.Created)
			if err != nil {
				return nil, err
			}
			modifiedAt, err := m.deps.timestamp(c.Modified)
			if err != nil {
				return nil, err
			}
			if modifiedAt == nil {
				modifiedAt = &createdAt
			}
			deletedAt, err := m.deletedAt(ctx, &c, modifiedAt)
			if err != nil {
				return nil, err
			}
			createdBy, err := m.deps.Resolver.OptionalUser(ctx, c.CreatedBy)
			if err != nil {
				return nil, err
			}

			return &pending{
				key: keyOf(m.Entity(), "id", c.CaseUID),
				row: &entities.Case{
					ID:         c.CaseUID,
					CourtID:    courtID,
					Reference:  reference,
					CreatedAt:  createdAt,
					ModifiedAt: modifiedAt,
					DeletedAt:  deletedAt,
				},
				id:          c.CaseUID,
				description: reference,
				actor:       createdBy,
				at:          &createdAt,
			}, nil
		})
	})
}

// deletedAt returns the deletion time of a deleted case: the time of its
// first deletion event, or its modification time.
func (m *CaseMigrator) deletedAt(ctx context.Context, c *legacy.Case, modifiedAt *time.Time) (*time.Time, error) {
	if !strings.EqualFold(strings.TrimSpace(legacy.Value(c.CaseStatus)), "deleted") {
		return nil, nil
	}
	events, err := m.deps.Source.CaseDeletedOn(ctx, c.CaseUID)
	if err != nil {
		return nil, err
	}
	if len(events) > 0 {
		if t, err := m.deps.timestamp(&events[0]); err == nil && t != nil {
			return t, nil
		}
	}
	return modifiedAt, nil
}

// BookingMigrator creates one booking for every case with a reference.
type BookingMigrator struct {
	deps *Deps
}

func NewBookingMigrator(deps *Deps) *BookingMigrator {
	return &BookingMigrator{deps: deps}
}

func (m *BookingMigrator) Entity() string { return entities.Booking{}.TableName() }

func (m *BookingMigrator) Fetch(ctx context.Context) ([]legacy.Case, error) {
	rows, err := m.deps.Source.Cases(ctx)
	if err != nil {
		return nil, err
	}
	out := rows[:0]
	for _, c := range rows {
		if c.CaseReference != nil {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *BookingMigrator) Migrate(ctx context.Context, rows []legacy.Case) (Result, error) {
	b := m.deps.newBatcher(m.Entity(), len(rows))
	return run(ctx, b, rows, func(c legacy.Case) error {
		lctx := ledger.Context{CaseID: c.CaseUID}
		return b.process(ctx, c.CaseUID, lctx, func() (*pending, error) {
			ok, err := m.deps.Guard.Exists(ctx, entities.Case{}.TableName(), "id", c.CaseUID)
			if err != nil {
				return nil, err
			}
			if !ok {
				return nil, errors.ResolutionError(fmt.Sprintf("Case ID: %s not found in the cases table.", c.CaseUID))
			}
			createdAt, err := m.deps.createdAt(c.Created)
			if err != nil {
				return nil, err
			}
			modifiedAt, err := m.deps.timestamp(c.Modified)
			if err != nil {
				return nil, err
			}
			createdBy, err := m.deps.Resolver.OptionalUser(ctx, c.CreatedBy)
			if err != nil {
				return nil, err
			}

			id := uuid.NewString()
			return &pending{
				key: keyOf(m.Entity(), "case_id", c.CaseUID),
				row: &entities.Booking{
					ID:           id,
					CaseID:       c.CaseUID,
					ScheduledFor: createdAt,
					CreatedAt:    createdAt,
					ModifiedAt:   modifiedAt,
				},
				id:          id,
				description: c.CaseUID,
				actor:       createdBy,
				at:          &createdAt,
			}, nil
		})
	})
}
