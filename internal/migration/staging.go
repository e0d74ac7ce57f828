package migration

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tphakala/premigrate/internal/conf"
	"github.com/tphakala/premigrate/internal/datastore/entities"
	"github.com/tphakala/premigrate/internal/errors"
	"github.com/tphakala/premigrate/internal/ledger"
	"github.com/tphakala/premigrate/internal/legacy"
	"github.com/tphakala/premigrate/internal/logger"
)

var (
	stagingTable = entities.TempRecording{}.TableName()
	sessionTable = entities.CaptureSession{}.TableName()
)

// StagingIndex rebuilds capture sessions from chains of legacy recording
// versions. Each legacy recording points at the first version of its chain;
// every chain becomes one capture session.
//
// Group (phase 1) stages every recording with the session id of its chain.
// Materialize (phase 2) creates one capture session per chain whose root and
// booking exist.
type StagingIndex struct {
	deps     *Deps
	tieBreak string
	log      logger.Logger
}

// StagingOption configures a StagingIndex.
type StagingOption func(*StagingIndex)

// WithTieBreak sets the ordering that picks each chain's representative.
func WithTieBreak(tieBreak string) StagingOption {
	return func(s *StagingIndex) {
		if tieBreak != "" {
			s.tieBreak = tieBreak
		}
	}
}

// NewStagingIndex creates a StagingIndex using the tie-break from deps
// unless an option overrides it.
func NewStagingIndex(deps *Deps, opts ...StagingOption) *StagingIndex {
	s := &StagingIndex{
		deps:     deps,
		tieBreak: conf.TieBreakVersionAsc,
		log:      deps.Log.Module("staging"),
	}
	if deps.TieBreak != "" {
		s.tieBreak = deps.TieBreak
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// groupKey returns the chain a recording belongs to: its parent pointer, or
// its own id for a recording without one.
func groupKey(r *legacy.Recording) string {
	if parent := strings.TrimSpace(legacy.Value(r.ParentRecUID)); parent != "" {
		return parent
	}
	return r.RecordingUID
}

// isRoot reports whether r is the first version of its chain.
func isRoot(r *legacy.Recording) bool {
	return groupKey(r) == r.RecordingUID
}

// version parses the legacy version number. Unparseable versions sort last.
func version(r *legacy.Recording) int {
	v, err := strconv.Atoi(strings.TrimSpace(legacy.Value(r.RecordingVersion)))
	if err != nil {
		return int(^uint(0) >> 1)
	}
	return v
}

// compare orders two chain members by the configured tie-break. Ties fall
// through to the creation time and then the id, so the order never depends
// on the source query.
func (s *StagingIndex) compare(va, vb int, ca, cb time.Time, ida, idb string) int {
	byVersion := cmp.Compare(va, vb)
	byCreated := ca.Compare(cb)

	var c int
	switch s.tieBreak {
	case conf.TieBreakVersionDesc:
		c = cmp.Or(-byVersion, byCreated)
	case conf.TieBreakCreatedAsc:
		c = cmp.Or(byCreated, byVersion)
	default:
		c = cmp.Or(byVersion, byCreated)
	}
	return cmp.Or(c, strings.Compare(ida, idb))
}

// recordComparator returns the tie-break ordering of legacy records.
func (s *StagingIndex) recordComparator(records []legacy.Recording) func(a, b legacy.Recording) int {
	created := make(map[string]time.Time, len(records))
	for i := range records {
		if t, err := legacy.ParseTimestamp(records[i].Created, s.deps.Location); err == nil && t != nil {
			created[records[i].RecordingUID] = *t
		}
	}
	return func(a, b legacy.Recording) int {
		return s.compare(version(&a), version(&b),
			created[a.RecordingUID], created[b.RecordingUID],
			a.RecordingUID, b.RecordingUID)
	}
}

// Sort orders records by the configured tie-break.
func (s *StagingIndex) Sort(records []legacy.Recording) {
	slices.SortStableFunc(records, s.recordComparator(records))
}

// representatives returns the first staged row of every chain in tie-break
// order. The choice is made from what is staged now, so a chain whose first
// member was rejected by an earlier run is still materialized once any
// member is staged.
func (s *StagingIndex) representatives(staged []entities.TempRecording) []entities.TempRecording {
	best := make(map[string]entities.TempRecording, len(staged))
	for _, row := range staged {
		cur, ok := best[row.GroupKey]
		if !ok || s.compare(row.Version, cur.Version, row.CreatedAt, cur.CreatedAt, row.RecordingID, cur.RecordingID) < 0 {
			best[row.GroupKey] = row
		}
	}

	reps := make([]entities.TempRecording, 0, len(best))
	for _, row := range best {
		reps = append(reps, row)
	}
	slices.SortFunc(reps, func(a, b entities.TempRecording) int {
		return strings.Compare(a.GroupKey, b.GroupKey)
	})
	return reps
}

// Group stages records (phase 1). The first record of a chain in tie-break
// order allocates the chain's session id, unless an earlier run already
// staged the chain. Records whose booking cannot be resolved are written to
// the ledger and not staged.
func (s *StagingIndex) Group(ctx context.Context, records []legacy.Recording) (Result, error) {
	records = slices.Clone(records)
	s.Sort(records)

	b := s.deps.newBatcher(stagingTable, len(records))
	b.ledgerEntity = sessionTable
	sessions := make(map[string]string)

	return run(ctx, b, records, func(r legacy.Recording) error {
		key := groupKey(&r)
		lctx := ledger.Context{CaseID: legacy.Value(r.CaseUID), ChainID: key}

		return b.process(ctx, r.RecordingUID, lctx, func() (*pending, error) {
			caseID, err := required(r.CaseUID, "Null value for case id.")
			if err != nil {
				return nil, err
			}
			bookingID, err := s.deps.Resolver.ResolveBooking(ctx, caseID)
			if err != nil {
				return nil, err
			}
			createdAt, err := s.deps.createdAt(r.Created)
			if err != nil {
				return nil, err
			}

			var deletedAt *time.Time
			if strings.EqualFold(strings.TrimSpace(legacy.Value(r.RecordingStatus)), "deleted") {
				if deletedAt, err = s.deps.timestamp(r.Modified); err != nil {
					return nil, err
				}
				if deletedAt == nil {
					deletedAt = &createdAt
				}
			}

			sessionID, err := s.sessionFor(ctx, key, sessions)
			if err != nil {
				return nil, err
			}

			row := &entities.TempRecording{
				RecordingID:       r.RecordingUID,
				GroupKey:          key,
				CaptureSessionID:  sessionID,
				BookingID:         bookingID,
				CaseID:            caseID,
				ParentRecordingID: optional(r.ParentRecUID),
				Version:           version(&r),
				IngestAddress:     optional(r.IngestAddress),
				LiveOutputURL:     optional(r.URL),
				Status:            optional(r.RecordingStatus),
				CreatedBy:         optional(r.CreatedBy),
				DeletedAt:         deletedAt,
				CreatedAt:         createdAt,
			}
			return &pending{
				key:       keyOf(stagingTable, "recording_id", r.RecordingUID),
				row:       row,
				id:        r.RecordingUID,
				skipAudit: true,
			}, nil
		})
	})
}

// sessionFor returns the session id of chain key. A chain staged by an
// earlier run keeps its session id.
func (s *StagingIndex) sessionFor(ctx context.Context, key string, sessions map[string]string) (string, error) {
	if id, ok := sessions[key]; ok {
		return id, nil
	}

	var persisted []string
	if err := s.deps.Writer.Query(ctx, &persisted,
		"SELECT capture_session_id FROM temp_recordings WHERE group_key = ? LIMIT 1", key); err != nil {
		return "", err
	}
	if len(persisted) > 0 {
		sessions[key] = persisted[0]
		return persisted[0], nil
	}

	id := uuid.NewString()
	sessions[key] = id
	s.log.Debug("chain staged",
		logger.String("group_key", key),
		logger.String("capture_session_id", id))
	return id, nil
}

// chainEvent is the earliest lifecycle event of a chain.
type chainEvent struct {
	at    time.Time
	actor *string
}

// Staged returns every staging row.
func (s *StagingIndex) Staged(ctx context.Context) ([]entities.TempRecording, error) {
	var staged []entities.TempRecording
	err := s.deps.Writer.Query(ctx, &staged,
		"SELECT * FROM temp_recordings ORDER BY group_key, recording_id")
	return staged, err
}

// Materialize creates the capture sessions of staged chains (phase 2). Each
// chain is represented by its first staged row in tie-break order and is
// materialized once its root is staged and its booking exists.
func (s *StagingIndex) Materialize(ctx context.Context, staged []entities.TempRecording) (Result, error) {
	present := make(map[string]struct{}, len(staged))
	for _, row := range staged {
		present[row.RecordingID] = struct{}{}
	}
	representatives := s.representatives(staged)

	started, finished, err := s.chainEvents(ctx, staged)
	if err != nil {
		return Result{Entity: sessionTable}, err
	}

	b := s.deps.newBatcher(sessionTable, len(representatives))
	return run(ctx, b, representatives, func(rep entities.TempRecording) error {
		lctx := ledger.Context{CaseID: rep.CaseID, ChainID: rep.GroupKey}

		return b.process(ctx, rep.RecordingID, lctx, func() (*pending, error) {
			if _, ok := present[rep.GroupKey]; !ok {
				return nil, errors.ResolutionError(fmt.Sprintf("Root recording %s not found in staging.", rep.GroupKey))
			}
			status, _, err := ParseCaptureStatus(rep.Status)
			if err != nil {
				return nil, err
			}
			bookingExists, err := s.deps.Guard.Exists(ctx, "bookings", "id", rep.BookingID)
			if err != nil {
				return nil, err
			}
			if !bookingExists {
				return nil, errors.ResolutionError(fmt.Sprintf("Booking ID: %s not found in the bookings table.", rep.BookingID))
			}

			startedAt, startedBy, err := s.eventOrCreated(ctx, started[rep.GroupKey], rep)
			if err != nil {
				return nil, err
			}
			finishedAt, finishedBy, err := s.eventOrCreated(ctx, finished[rep.GroupKey], rep)
			if err != nil {
				return nil, err
			}

			row := &entities.CaptureSession{
				ID:               rep.CaptureSessionID,
				BookingID:        rep.BookingID,
				Origin:           entities.OriginPRE,
				IngestAddress:    rep.IngestAddress,
				LiveOutputURL:    rep.LiveOutputURL,
				StartedAt:        &startedAt,
				StartedByUserID:  startedBy,
				FinishedAt:       &finishedAt,
				FinishedByUserID: finishedBy,
				Status:           string(status),
				DeletedAt:        rep.DeletedAt,
			}
			return &pending{
				key:         keyOf(sessionTable, "id", rep.CaptureSessionID),
				row:         row,
				id:          rep.CaptureSessionID,
				description: rep.GroupKey,
				actor:       startedBy,
			}, nil
		})
	})
}

// eventOrCreated returns the time and actor of event, falling back to the
// creation time and creator of the representative.
func (s *StagingIndex) eventOrCreated(ctx context.Context, event *chainEvent, rep entities.TempRecording) (time.Time, *string, error) {
	at, actorEmail := rep.CreatedAt, rep.CreatedBy
	if event != nil {
		at = event.at
		if event.actor != nil {
			actorEmail = event.actor
		}
	}
	actor, err := s.deps.Resolver.OptionalUser(ctx, actorEmail)
	return at, actor, err
}

// chainEvents finds the first started and finished event of every staged
// chain in the legacy audit history.
func (s *StagingIndex) chainEvents(ctx context.Context, staged []entities.TempRecording) (started, finished map[string]*chainEvent, err error) {
	started = make(map[string]*chainEvent)
	finished = make(map[string]*chainEvent)

	names := s.deps.SessionEvents
	if names.Started == "" && names.Finished == "" {
		return started, finished, nil
	}

	chainOf := make(map[string]string, len(staged))
	ids := make([]string, 0, len(staged))
	for _, row := range staged {
		chainOf[row.RecordingID] = row.GroupKey
		ids = append(ids, row.RecordingID)
	}

	activities := slices.DeleteFunc([]string{names.Started, names.Finished}, func(a string) bool { return a == "" })
	events, err := s.deps.Source.RecordingEvents(ctx, ids, activities)
	if err != nil {
		return nil, nil, err
	}

	for _, ev := range events {
		at, perr := legacy.ParseTimestamp(ev.CreatedOn, s.deps.Location)
		if perr != nil || at == nil {
			s.log.Debug("ignoring audit event without a usable time",
				logger.String("audit_id", ev.AuditUID))
			continue
		}
		chain := chainOf[legacy.Value(ev.RecordingUID)]
		target := finished
		if legacy.Value(ev.Activity) == names.Started {
			target = started
		}
		if cur := target[chain]; cur == nil || at.Before(cur.at) {
			target[chain] = &chainEvent{at: *at, actor: optional(ev.CreatedBy)}
		}
	}
	return started, finished, nil
}

// InsertOrder returns records in the order their versions must be inserted:
// every record after the record its parent pointer names. Within one depth,
// records that are the parent of several others come first, then the rest,
// each tier in tie-break order.
func (s *StagingIndex) InsertOrder(records []legacy.Recording) []legacy.Recording {
	byID := make(map[string]*legacy.Recording, len(records))
	children := make(map[string]int, len(records))
	for i := range records {
		byID[records[i].RecordingUID] = &records[i]
		if !isRoot(&records[i]) {
			children[groupKey(&records[i])]++
		}
	}

	depth := make(map[string]int, len(records))
	for i := range records {
		d := 0
		seen := map[string]bool{records[i].RecordingUID: true}
		for cur := &records[i]; !isRoot(cur); d++ {
			parent, ok := byID[groupKey(cur)]
			if !ok || seen[parent.RecordingUID] {
				break
			}
			seen[parent.RecordingUID] = true
			cur = parent
		}
		depth[records[i].RecordingUID] = d
	}

	tier := func(r *legacy.Recording) int {
		if children[r.RecordingUID] > 1 {
			return 0
		}
		return 1
	}

	byTieBreak := s.recordComparator(records)
	ordered := slices.Clone(records)
	slices.SortStableFunc(ordered, func(a, b legacy.Recording) int {
		return cmp.Or(
			cmp.Compare(depth[a.RecordingUID], depth[b.RecordingUID]),
			cmp.Compare(tier(&a), tier(&b)),
			byTieBreak(a, b),
		)
	})
	return ordered
}
