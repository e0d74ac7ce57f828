package migration

import (
	"context"
	"fmt"
	"strings"

	"github.com/tphakala/premigrate/internal/datastore/entities"
	"github.com/tphakala/premigrate/internal/errors"
	"github.com/tphakala/premigrate/internal/ledger"
	"github.com/tphakala/premigrate/internal/legacy"
)

// ParticipantMigrator copies the legacy contacts as case participants,
// keeping their ids.
type ParticipantMigrator struct {
	deps *Deps
}

func NewParticipantMigrator(deps *Deps) *ParticipantMigrator {
	return &ParticipantMigrator{deps: deps}
}

func (m *ParticipantMigrator) Entity() string { return entities.Participant{}.TableName() }

func (m *ParticipantMigrator) Fetch(ctx context.Context) ([]legacy.Contact, error) {
	return m.deps.Source.Contacts(ctx)
}

func (m *ParticipantMigrator) Migrate(ctx context.Context, rows []legacy.Contact) (Result, error) {
	b := m.deps.newBatcher(m.Entity(), len(rows))
	return run(ctx, b, rows, func(c legacy.Contact) error {
		lctx := ledger.Context{CaseID: legacy.Value(c.CaseUID)}
		return b.process(ctx, c.ContactUID, lctx, func() (*pending, error) {
			caseID, err := required(c.CaseUID, "Null value for case id.")
			if err != nil {
				return nil, err
			}
			participantType, err := parseParticipantType(c.ContactType)
			if err != nil {
				return nil, err
			}
			ok, err := m.deps.Guard.Exists(ctx, entities.Case{}.TableName(), "id", caseID)
			if err != nil {
				return nil, err
			}
			if !ok {
				return nil, errors.ResolutionError(fmt.Sprintf("Case ID: %s not found in the cases table.", caseID))
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

			return &pending{
				key: keyOf(m.Entity(), "id", c.ContactUID),
				row: &entities.Participant{
					ID:              c.ContactUID,
					CaseID:          caseID,
					ParticipantType: participantType,
					FirstName:       strings.TrimSpace(legacy.Value(c.FirstName)),
					LastName:        strings.TrimSpace(legacy.Value(c.LastName)),
					CreatedAt:       createdAt,
					ModifiedAt:      modifiedAt,
				},
				id:          c.ContactUID,
				description: caseID,
				actor:       createdBy,
				at:          &createdAt,
			}, nil
		})
	})
}

func parseParticipantType(value *string) (string, error) {
	raw, err := required(value, "Null value for participant type.")
	if err != nil {
		return "", err
	}
	switch t := strings.ToUpper(raw); t {
	case entities.ParticipantTypeWitness, entities.ParticipantTypeDefendant:
		return t, nil
	default:
		return "", errors.ValidationError(fmt.Sprintf("Invalid participant type: %s", raw))
	}
}

// ParticipantLink is one participant named on a legacy recording.
type ParticipantLink struct {
	RecordingID   string
	CaseID        string
	ParticipantID string
}

// ExpandParticipantLinks splits the comma separated defendant and witness
// lists of recordings into links. Repeated links are dropped.
func ExpandParticipantLinks(recordings []legacy.Recording) []ParticipantLink {
	var links []ParticipantLink
	seen := make(map[ParticipantLink]struct{})
	for _, r := range recordings {
		names := legacy.Value(r.Defendants) + "," + legacy.Value(r.WitnessNames)
		for _, id := range strings.Split(names, ",") {
			id = strings.TrimSpace(id)
			if id == "" {
				continue
			}
			link := ParticipantLink{RecordingID: r.RecordingUID, CaseID: legacy.Value(r.CaseUID), ParticipantID: id}
			if _, dup := seen[link]; dup {
				continue
			}
			seen[link] = struct{}{}
			links = append(links, link)
		}
	}
	return links
}

// BookingParticipantMigrator links participants to the booking of every
// recording that names them.
type BookingParticipantMigrator struct {
	deps *Deps
}

func NewBookingParticipantMigrator(deps *Deps) *BookingParticipantMigrator {
	return &BookingParticipantMigrator{deps: deps}
}

func (m *BookingParticipantMigrator) Entity() string {
	return entities.BookingParticipant{}.TableName()
}

func (m *BookingParticipantMigrator) Fetch(ctx context.Context) ([]ParticipantLink, error) {
	recordings, err := m.deps.Source.ParticipantRecordings(ctx)
	if err != nil {
		return nil, err
	}
	return ExpandParticipantLinks(recordings), nil
}

// Count counts the links named on legacy recordings.
func (m *BookingParticipantMigrator) Count(ctx context.Context) (int64, error) {
	links, err := m.Fetch(ctx)
	return int64(len(links)), err
}

func (m *BookingParticipantMigrator) Migrate(ctx context.Context, rows []ParticipantLink) (Result, error) {
	b := m.deps.newBatcher(m.Entity(), len(rows))
	return run(ctx, b, rows, func(l ParticipantLink) error {
		lctx := ledger.Context{CaseID: l.CaseID, ChainID: l.RecordingID}
		return b.process(ctx, l.ParticipantID, lctx, func() (*pending, error) {
			bookingID, err := m.deps.Resolver.ResolveBookingForRecording(ctx, l.RecordingID)
			if err != nil {
				return nil, err
			}
			ok, err := m.deps.Guard.Exists(ctx, entities.Participant{}.TableName(), "id", l.ParticipantID)
			if err != nil {
				return nil, err
			}
			if !ok {
				return nil, errors.ResolutionError(fmt.Sprintf("Participant ID: %s not found in the participants table.", l.ParticipantID))
			}

			return &pending{
				key: naturalKey{table: m.Entity(), conds: map[string]any{
					"participant_id": l.ParticipantID,
					"booking_id":     bookingID,
				}},
				row:         &entities.BookingParticipant{ParticipantID: l.ParticipantID, BookingID: bookingID},
				id:          l.ParticipantID,
				description: bookingID,
			}, nil
		})
	})
}
