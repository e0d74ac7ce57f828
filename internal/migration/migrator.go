// Package migration moves legacy rows into the normalized destination, one
// entity at a time and in foreign key order.
//
// Every entity has an EntityMigrator that fetches its source rows,
// validates them, resolves their references through the Resolver, checks
// the Guard and inserts the survivors in batches. Each batch runs in its own
// transaction with one savepoint per row, so a row rejected by the
// destination only loses itself. Rows that fail are written to the failure
// ledger; rows that are inserted get one provenance entry in the audits
// table. Infrastructure errors abort the entity and are returned to the
// Orchestrator, which halts the run.
package migration

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/tphakala/premigrate/internal/conf"
	"github.com/tphakala/premigrate/internal/datastore"
	"github.com/tphakala/premigrate/internal/errors"
	"github.com/tphakala/premigrate/internal/ledger"
	"github.com/tphakala/premigrate/internal/legacy"
	"github.com/tphakala/premigrate/internal/logger"
	"github.com/tphakala/premigrate/internal/observability/metrics"
)

// DefaultBatchSize is the number of rows inserted per transaction.
const DefaultBatchSize = 100

// Result summarizes the migration of one entity.
type Result struct {
	Entity   string
	Fetched  int
	Inserted int
	Skipped  int // already present in the destination or earlier in the run
	Failed   int // written to the failure ledger
	Duration time.Duration
}

// Summary returns a one-line description of the result.
func (r Result) Summary() string {
	return fmt.Sprintf("%s: fetched %d, inserted %d, skipped %d, failed %d in %s",
		r.Entity, r.Fetched, r.Inserted, r.Skipped, r.Failed, r.Duration.Round(time.Millisecond))
}

// EntityMigrator migrates the source rows of one destination entity.
type EntityMigrator[S any] interface {
	// Entity returns the destination table name.
	Entity() string
	// Fetch reads the source rows.
	Fetch(ctx context.Context) ([]S, error)
	// Migrate writes rows to the destination. Record-level failures are
	// counted in the result; the returned error is always an
	// infrastructure failure.
	Migrate(ctx context.Context, rows []S) (Result, error)
}

// Step is an EntityMigrator with its source row type erased, as run by the
// Orchestrator.
type Step interface {
	Entity() string
	Run(ctx context.Context) (Result, error)
	// SourceCount counts the source rows the entity is built from.
	SourceCount(ctx context.Context) (int64, error)
}

// CountFunc counts the source rows of an entity.
type CountFunc func(ctx context.Context) (int64, error)

type step[S any] struct {
	migrator EntityMigrator[S]
	count    CountFunc
}

// AsStep wraps m as a Step counted by count.
func AsStep[S any](m EntityMigrator[S], count CountFunc) Step {
	return &step[S]{migrator: m, count: count}
}

func (s *step[S]) Entity() string { return s.migrator.Entity() }

func (s *step[S]) Run(ctx context.Context) (Result, error) {
	rows, err := s.migrator.Fetch(ctx)
	if err != nil {
		return Result{Entity: s.Entity()}, errors.New(err).
			Category(errors.CategoryInfrastructure).
			Context("entity", s.Entity()).
			Context("operation", "fetch").
			Build()
	}
	return s.migrator.Migrate(ctx, rows)
}

func (s *step[S]) SourceCount(ctx context.Context) (int64, error) {
	return s.count(ctx)
}

// SessionEvents names the legacy audit activities that mark the start and
// end of a capture.
type SessionEvents struct {
	Started  string
	Finished string
}

// Deps bundles the collaborators shared by every migrator of a run.
type Deps struct {
	Source    *legacy.Source
	Writer    datastore.DestinationWriter
	Guard     *Guard
	Resolver  *Resolver
	Ledger    *ledger.Ledger
	Audit     *AuditWriter
	Reference *conf.ReferenceData
	Metrics   *metrics.MigrationMetrics
	Log       logger.Logger

	Location      *time.Location // zone of legacy wall-clock timestamps
	BatchSize     int
	Limiter       *rate.Limiter // paces batches; nil for unlimited
	TieBreak      string
	SessionEvents SessionEvents
	Clock         func() time.Time
}

func (d *Deps) batchSize() int {
	if d.BatchSize <= 0 {
		return DefaultBatchSize
	}
	return d.BatchSize
}

func (d *Deps) now() time.Time {
	if d.Clock == nil {
		return time.Now().UTC()
	}
	return d.Clock().UTC()
}

// createdAt parses a legacy creation timestamp. A missing value takes the
// run clock.
func (d *Deps) createdAt(value *string) (time.Time, error) {
	t, err := d.timestamp(value)
	if err != nil {
		return time.Time{}, err
	}
	if t == nil {
		return d.now(), nil
	}
	return *t, nil
}

// timestamp parses an optional legacy timestamp.
func (d *Deps) timestamp(value *string) (*time.Time, error) {
	t, err := legacy.ParseTimestamp(value, d.Location)
	if err != nil {
		return nil, errors.ValidationError(fmt.Sprintf("Invalid timestamp: %s", legacy.Value(value)))
	}
	return t, nil
}

// naturalKey is the column set that identifies a destination row.
type naturalKey struct {
	table string
	conds map[string]any
}

func keyOf(table, field string, value any) naturalKey {
	return naturalKey{table: table, conds: map[string]any{field: value}}
}

func (k naturalKey) String() string {
	fields := make([]string, 0, len(k.conds))
	for f := range k.conds {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	var b strings.Builder
	b.WriteString(k.table)
	for _, f := range fields {
		fmt.Fprintf(&b, "|%s=%v", f, k.conds[f])
	}
	return b.String()
}

// pending is one resolved row waiting for its batch.
type pending struct {
	key      naturalKey
	row      any
	id       string // destination id written to the audit entry
	recordID string // source id written to the ledger
	lctx     ledger.Context

	description string
	actor       *string
	at          *time.Time // audit time, defaults to now
	skipAudit   bool

	state recordTracker
}

// batcher drives rows of one entity through guard, batch insert, ledger and
// audit.
type batcher struct {
	deps    *Deps
	entity  string
	log     logger.Logger
	started time.Time
	result  Result
	seen    map[string]struct{}
	batch   []*pending

	// ledgerEntity names failures in the ledger when it differs from the
	// table being written.
	ledgerEntity string
}

func (d *Deps) newBatcher(entity string, fetched int) *batcher {
	return &batcher{
		deps:    d,
		entity:  entity,
		log:     d.Log.Module("migration").With(logger.String("entity", entity)),
		started: time.Now(),
		result:  Result{Entity: entity, Fetched: fetched},
		seen:    make(map[string]struct{}),
	}
}

// process validates and resolves one source row through prepare and queues
// the result. Record-level errors go to the ledger; infrastructure errors
// are returned.
func (b *batcher) process(ctx context.Context, recordID string, lctx ledger.Context, prepare func() (*pending, error)) error {
	state := recordTracker{}
	state.advance(StateValidated)

	p, err := prepare()
	if err != nil {
		if !errors.IsRecordLevel(err) {
			return err
		}
		state.advance(StateFailed)
		b.fail(recordID, lctx, err)
		return nil
	}
	if p == nil {
		b.skip("nothing to insert", recordID)
		return nil
	}

	state.advance(StateResolved)
	p.state = state
	if p.recordID == "" {
		p.recordID = recordID
	}
	if p.lctx == (ledger.Context{}) {
		p.lctx = lctx
	}
	return b.add(ctx, p)
}

// fail writes a record-level failure to the ledger.
func (b *batcher) fail(recordID string, lctx ledger.Context, err error) {
	b.result.Failed++
	entity := b.entity
	if b.ledgerEntity != "" {
		entity = b.ledgerEntity
	}
	b.deps.Ledger.RecordError(entity, recordID, lctx, err)
}

// skip counts a row that needs no insert.
func (b *batcher) skip(reason, recordID string) {
	b.result.Skipped++
	b.log.Debug("record skipped",
		logger.String("record_id", recordID),
		logger.String("reason", reason))
}

// add queues p unless its natural key is already in the destination or was
// queued earlier in the run.
func (b *batcher) add(ctx context.Context, p *pending) error {
	key := p.key.String()
	if _, dup := b.seen[key]; dup {
		b.skip("duplicate in run", p.recordID)
		return nil
	}

	exists, err := b.deps.Guard.ExistsAll(ctx, p.key.table, p.key.conds)
	if err != nil {
		return err
	}
	b.seen[key] = struct{}{}
	if exists {
		b.skip("already migrated", p.recordID)
		return nil
	}

	b.batch = append(b.batch, p)
	if len(b.batch) >= b.deps.batchSize() {
		return b.flush(ctx)
	}
	return nil
}

// queued reports whether a row with key was queued or inserted in this run.
func (b *batcher) queued(key naturalKey) bool {
	_, ok := b.seen[key.String()]
	return ok
}

// flush inserts the queued rows in one transaction and writes their ledger
// and audit entries.
func (b *batcher) flush(ctx context.Context) error {
	if len(b.batch) == 0 {
		return nil
	}
	batch := b.batch
	b.batch = nil

	if b.deps.Limiter != nil {
		if err := b.deps.Limiter.Wait(ctx); err != nil {
			return errors.InfrastructureError(err)
		}
	}

	rows := make([]any, len(batch))
	for i, p := range batch {
		rows[i] = p.row
	}

	rowErrs, err := b.deps.Writer.InsertBatch(ctx, rows)
	if err != nil {
		b.deps.Metrics.RecordBatch(b.entity, metrics.BatchRolledBack)
		b.log.Error("batch rolled back",
			logger.Int("rows", len(batch)),
			logger.Error(err))
		return err
	}
	b.deps.Metrics.RecordBatch(b.entity, metrics.BatchCommitted)

	for i, p := range batch {
		if rowErrs[i] != nil {
			p.state.advance(StateFailed)
			b.fail(p.recordID, p.lctx, rowErrs[i])
			continue
		}
		p.state.advance(StateInserted)
		b.result.Inserted++

		if !p.skipAudit {
			b.deps.Audit.Record(ctx, b.entity, p.id, p.description, p.actor, p.at)
		}
		p.state.advance(StateAuditLogged)
	}

	b.log.Debug("batch committed",
		logger.Int("rows", len(batch)),
		logger.Int("inserted", b.result.Inserted))
	return nil
}

// finish flushes the last batch and returns the entity result.
func (b *batcher) finish(ctx context.Context) (Result, error) {
	err := b.flush(ctx)
	return b.close(), err
}

// abort drops the unflushed batch and returns the entity result so far.
func (b *batcher) abort() Result {
	if len(b.batch) > 0 {
		b.log.Warn("unflushed batch discarded", logger.Int("rows", len(b.batch)))
		b.batch = nil
	}
	return b.close()
}

func (b *batcher) close() Result {
	b.result.Duration = time.Since(b.started)

	m := b.deps.Metrics
	m.RecordRows(b.entity, metrics.OutcomeInserted, b.result.Inserted)
	m.RecordRows(b.entity, metrics.OutcomeSkipped, b.result.Skipped)
	m.RecordRows(b.entity, metrics.OutcomeFailed, b.result.Failed)
	m.ObserveEntityDuration(b.entity, b.result.Duration)
	return b.result
}

// run applies each to every row and finishes the batch. It stops at the
// first infrastructure error or when ctx is cancelled, discarding the rows
// not yet flushed.
func run[S any](ctx context.Context, b *batcher, rows []S, each func(S) error) (Result, error) {
	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return b.abort(), errors.New(err).
				Category(errors.CategoryCancellation).
				Context("entity", b.entity).
				Build()
		}
		if err := each(row); err != nil {
			return b.abort(), err
		}
	}
	return b.finish(ctx)
}

// required returns the trimmed value of a mandatory source field.
func required(value *string, message string) (string, error) {
	v := strings.TrimSpace(legacy.Value(value))
	if v == "" {
		return "", errors.ValidationError(message)
	}
	return v, nil
}

// optional returns the trimmed value of a source field, or nil.
func optional(value *string) *string {
	v := strings.TrimSpace(legacy.Value(value))
	if v == "" {
		return nil
	}
	return &v
}
