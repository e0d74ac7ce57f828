// Package ledger keeps the failure ledger: a fixed-width, append-only text
// file with one line per source row that could not be migrated. The file is
// both the operator report and the deduplication source for later runs.
package ledger

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/tphakala/premigrate/internal/errors"
	"github.com/tphakala/premigrate/internal/logger"
)

// NotAvailable is written in place of a missing id.
const NotAvailable = "N/A"

const (
	lineFormat   = "| %-22s | %-36s | %-36s | %-36s | %s\n"
	headerTable  = "Table Name"
	separatorRow = "---"
)

// Entry is one ledger line. Entries are plain values and compare with ==.
type Entry struct {
	Entity   string
	RecordID string
	CaseID   string
	ChainID  string
	Message  string
}

// Context carries the optional ids that locate a failure.
type Context struct {
	CaseID  string
	ChainID string
}

// dedupKey identifies a failure across runs. The record id is not part of
// it and messages compare case-insensitively.
type dedupKey struct {
	entity  string
	caseID  string
	chainID string
	message string
}

func (e Entry) normalized() Entry {
	e.RecordID = orNA(e.RecordID)
	e.CaseID = orNA(e.CaseID)
	e.ChainID = orNA(e.ChainID)
	e.Message = strings.Join(strings.Fields(e.Message), " ")
	return e
}

func (e Entry) key() dedupKey {
	n := e.normalized()
	return dedupKey{
		entity:  n.Entity,
		caseID:  n.CaseID,
		chainID: n.ChainID,
		message: strings.ToLower(n.Message),
	}
}

// String renders the entry as a ledger line without the trailing newline.
func (e Entry) String() string {
	n := e.normalized()
	return strings.TrimSuffix(fmt.Sprintf(lineFormat, n.Entity, n.RecordID, n.CaseID, n.ChainID, n.Message), "\n")
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return NotAvailable
	}
	return s
}

// Ledger records failures for one run. It is safe for concurrent use.
type Ledger struct {
	path    string
	log     logger.Logger
	mu      sync.Mutex
	seen    map[dedupKey]struct{}
	pending []Entry
	counts  map[string]int
}

// Open loads the existing ledger at path, if any, for deduplication.
func Open(path string, log logger.Logger) (*Ledger, error) {
	l := &Ledger{
		path:   path,
		log:    log.Module("ledger"),
		seen:   make(map[dedupKey]struct{}),
		counts: make(map[string]int),
	}

	existing, err := Load(path)
	if err != nil {
		return nil, err
	}
	for _, e := range existing {
		l.seen[e.key()] = struct{}{}
	}

	l.log.Debug("failure ledger loaded",
		logger.String("path", path),
		logger.Int("entries", len(existing)))
	return l, nil
}

// Record adds a failure unless an equal one is already known. It reports
// whether the entry is new.
func (l *Ledger) Record(entity, recordID string, ctx Context, message string) bool {
	entry := Entry{
		Entity:   entity,
		RecordID: recordID,
		CaseID:   ctx.CaseID,
		ChainID:  ctx.ChainID,
		Message:  message,
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	key := entry.key()
	if _, dup := l.seen[key]; dup {
		return false
	}
	l.seen[key] = struct{}{}
	l.pending = append(l.pending, entry.normalized())
	l.counts[entity]++

	l.log.Debug("record failed",
		logger.String("entity", entity),
		logger.String("record_id", recordID),
		logger.String("message", message))
	return true
}

// RecordError adds a failure described by err.
func (l *Ledger) RecordError(entity, recordID string, ctx Context, err error) bool {
	return l.Record(entity, recordID, ctx, errorMessage(err))
}

// IsDuplicate reports whether an equal entry is already in the ledger.
func (l *Ledger) IsDuplicate(e Entry) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, dup := l.seen[e.key()]
	return dup
}

// Recorded returns the number of new entries per entity in this run.
func (l *Ledger) Recorded() map[string]int {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make(map[string]int, len(l.counts))
	for k, v := range l.counts {
		out[k] = v
	}
	return out
}

// Pending returns the entries not yet flushed.
func (l *Ledger) Pending() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Entry(nil), l.pending...)
}

// Flush appends the new entries to the ledger file, writing the header
// when the file is new or empty.
func (l *Ledger) Flush() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.pending) == 0 {
		return nil
	}

	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return errors.New(err).
			Component("ledger").
			Category(errors.CategoryFileIO).
			Context("operation", "flush_ledger").
			Build()
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat ledger file: %w", err)
	}

	w := bufio.NewWriter(f)
	if info.Size() == 0 {
		writeHeader(w)
	}
	for _, e := range l.pending {
		_, _ = fmt.Fprintln(w, e.String())
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to write ledger file: %w", err)
	}

	l.log.Info("failure ledger flushed",
		logger.String("path", l.path),
		logger.Int("entries", len(l.pending)))
	l.pending = l.pending[:0]
	return nil
}

func writeHeader(w *bufio.Writer) {
	_, _ = fmt.Fprintf(w, lineFormat, headerTable, "ID", "Case ID", "Chain ID", "Details")
	_, _ = fmt.Fprintf(w, lineFormat,
		strings.Repeat("-", 22), strings.Repeat("-", 36), strings.Repeat("-", 36), strings.Repeat("-", 36), strings.Repeat("-", 50))
}

// errorMessage returns the user-facing text of a migration error.
func errorMessage(err error) string {
	if err == nil {
		return ""
	}
	var ee *errors.EnhancedError
	if errors.As(err, &ee) {
		return ee.GetMessage()
	}
	return err.Error()
}
