package migration

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tphakala/premigrate/internal/datastore"
	"github.com/tphakala/premigrate/internal/datastore/entities"
	"github.com/tphakala/premigrate/internal/logger"
	"github.com/tphakala/premigrate/internal/observability/metrics"
)

// Provenance values written on every migrated row's audit entry.
const (
	AuditSource         = "AUTO"
	AuditCategory       = "data_migration"
	AuditFunctionalArea = "data_processing"
)

// AuditWriter writes one provenance row per migrated record. Write
// failures are logged and counted but never undo the insert they describe.
type AuditWriter struct {
	writer  datastore.DestinationWriter
	metrics *metrics.MigrationMetrics
	log     logger.Logger
	now     func() time.Time
}

// NewAuditWriter creates an AuditWriter.
func NewAuditWriter(writer datastore.DestinationWriter, m *metrics.MigrationMetrics, log logger.Logger) *AuditWriter {
	return &AuditWriter{
		writer:  writer,
		metrics: m,
		log:     log.Module("audit"),
		now:     time.Now,
	}
}

// Record writes the audit entry for one inserted row of entity. It returns
// false when the entry could not be written.
func (a *AuditWriter) Record(ctx context.Context, entity, recordID, description string, actorID *string, at *time.Time) bool {
	details, err := json.Marshal(map[string]string{
		"description": fmt.Sprintf("Created %s_record for: %s", entity, description),
	})
	if err != nil {
		a.fail(entity, recordID, err)
		return false
	}

	activity := entity + "_record_creation"
	category := AuditCategory
	area := AuditFunctionalArea
	createdAt := a.now().UTC()
	if at != nil {
		createdAt = *at
	}

	row := &entities.Audit{
		ID:             uuid.NewString(),
		Table:          entity,
		TableRecordID:  &recordID,
		Source:         AuditSource,
		Category:       &category,
		Activity:       &activity,
		FunctionalArea: &area,
		AuditDetails:   string(details),
		CreatedBy:      actorID,
		CreatedAt:      createdAt,
	}

	if err := a.writer.Create(ctx, row); err != nil {
		a.fail(entity, recordID, err)
		return false
	}
	return true
}

func (a *AuditWriter) fail(entity, recordID string, err error) {
	a.metrics.RecordAuditError(entity)
	a.log.Warn("failed to write audit entry",
		logger.String("entity", entity),
		logger.String("record_id", recordID),
		logger.Error(err))
}
