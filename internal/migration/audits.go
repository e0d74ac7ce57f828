package migration

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/tphakala/premigrate/internal/datastore/entities"
	"github.com/tphakala/premigrate/internal/errors"
	"github.com/tphakala/premigrate/internal/ledger"
	"github.com/tphakala/premigrate/internal/legacy"
)

// importedDetails is the audit_details document of an imported legacy
// audit event.
type importedDetails struct {
	Description       *string `json:"description"`
	SubFunctionalArea *string `json:"subfunctionalArea"`
	Trigger           *string `json:"trigger"`
	RecordingID       *string `json:"recordingId"`
	Email             *string `json:"email"`
	CaseID            *string `json:"caseId"`
	CaseReference     *string `json:"caseReference"`
	CourtName         *string `json:"courtName"`
	Source            *string `json:"source"`
	AuditSession      *string `json:"auditSession"`
}

// AuditImportMigrator imports the legacy audit history, keeping the event
// ids. Imported rows are provenance themselves and get no extra audit entry.
type AuditImportMigrator struct {
	deps *Deps
}

func NewAuditImportMigrator(deps *Deps) *AuditImportMigrator {
	return &AuditImportMigrator{deps: deps}
}

func (m *AuditImportMigrator) Entity() string { return entities.Audit{}.TableName() }

func (m *AuditImportMigrator) Fetch(ctx context.Context) ([]legacy.Audit, error) {
	return m.deps.Source.Audits(ctx)
}

func (m *AuditImportMigrator) Migrate(ctx context.Context, rows []legacy.Audit) (Result, error) {
	b := m.deps.newBatcher(m.Entity(), len(rows))
	return run(ctx, b, rows, func(a legacy.Audit) error {
		lctx := ledger.Context{CaseID: legacy.Value(a.CaseUID), ChainID: legacy.Value(a.RecordingUID)}

		return b.process(ctx, a.AuditUID, lctx, func() (*pending, error) {
			createdAt, err := m.deps.createdAt(a.CreatedOn)
			if err != nil {
				return nil, err
			}
			createdBy, err := m.deps.Resolver.OptionalUser(ctx, a.CreatedBy)
			if err != nil {
				return nil, err
			}
			details, err := json.Marshal(importedDetails{
				Description:       a.AuditDetails,
				SubFunctionalArea: a.SubFunctionalArea,
				Trigger:           a.Trigger,
				RecordingID:       a.RecordingUID,
				Email:             a.Email,
				CaseID:            a.CaseUID,
				CaseReference:     a.CaseReference,
				CourtName:         a.CourtName,
				Source:            a.Source,
				AuditSession:      a.AuditSession,
			})
			if err != nil {
				return nil, errors.ValidationError("Invalid audit details: " + err.Error())
			}

			table, recordID := auditTarget(&a)
			source := AuditSource
			if s := optional(a.Source); s != nil {
				source = strings.ToUpper(*s)
			}

			return &pending{
				key: keyOf(m.Entity(), "id", a.AuditUID),
				row: &entities.Audit{
					ID:             a.AuditUID,
					Table:          table,
					TableRecordID:  recordID,
					Source:         source,
					Category:       optional(a.Category),
					Activity:       optional(a.Activity),
					FunctionalArea: optional(a.FunctionalArea),
					AuditDetails:   string(details),
					CreatedBy:      createdBy,
					CreatedAt:      createdAt,
				},
				id:        a.AuditUID,
				skipAudit: true,
			}, nil
		})
	})
}

// auditTarget returns the destination table and record a legacy audit event
// is about. Events about neither a recording nor a case point at themselves.
func auditTarget(a *legacy.Audit) (string, *string) {
	if id := optional(a.RecordingUID); id != nil {
		return entities.Recording{}.TableName(), id
	}
	if id := optional(a.CaseUID); id != nil {
		return entities.Case{}.TableName(), id
	}
	id := a.AuditUID
	return entities.Audit{}.TableName(), &id
}
