package legacy

import (
	"context"
	"fmt"

	"github.com/tphakala/premigrate/internal/datastore"
)

// Recording filters shared by the fetch and count queries. A chain is
// migrated unless its status says nothing was recorded, and a deleted
// chain needs an ingest address to have produced a session.
const (
	sessionFilter = `COALESCE(recordingstatus, '') <> 'No Recording'
		AND (COALESCE(recordingstatus, '') <> 'Deleted' OR ingestaddress IS NOT NULL)`
	recordingFilter = `COALESCE(recordingstatus, '') <> 'No Recording'
		AND (recordingavailable IS NULL OR LOWER(recordingavailable) = 'true')`
)

// Details of the legacy audit event written when a case is deleted.
const caseDeletedDetails = "Case marked as Deleted."

// Source reads the legacy tables through a SourceReader.
type Source struct {
	reader datastore.SourceReader
}

// NewSource creates a Source on top of reader.
func NewSource(reader datastore.SourceReader) *Source {
	return &Source{reader: reader}
}

func (s *Source) SecurityGroups(ctx context.Context) ([]Group, error) {
	var rows []Group
	err := s.reader.Query(ctx, &rows,
		"SELECT * FROM grouplist WHERE grouptype = ? ORDER BY groupname", "Security")
	return rows, wrap("grouplist", err)
}

func (s *Source) Courts(ctx context.Context) ([]Court, error) {
	var rows []Court
	err := s.reader.Query(ctx, &rows, "SELECT * FROM courts ORDER BY courtname")
	return rows, wrap("courts", err)
}

func (s *Source) Rooms(ctx context.Context) ([]Room, error) {
	var rows []Room
	err := s.reader.Query(ctx, &rows, "SELECT * FROM rooms ORDER BY roomname")
	return rows, wrap("rooms", err)
}

func (s *Source) Users(ctx context.Context) ([]User, error) {
	var rows []User
	err := s.reader.Query(ctx, &rows, "SELECT * FROM users ORDER BY userid")
	return rows, wrap("users", err)
}

// PortalUsers returns users with portal access: level 3 users and users
// invited to the portal.
func (s *Source) PortalUsers(ctx context.Context) ([]User, error) {
	var rows []User
	err := s.reader.Query(ctx, &rows,
		"SELECT * FROM users WHERE "+portalFilter+" ORDER BY userid", portalArgs()...)
	return rows, wrap("users", err)
}

// AppUsers returns users with a role below level 3 in the capture app.
func (s *Source) AppUsers(ctx context.Context) ([]User, error) {
	var rows []User
	err := s.reader.Query(ctx, &rows,
		"SELECT * FROM users WHERE "+appFilter+" ORDER BY userid", appArgs()...)
	return rows, wrap("users", err)
}

func (s *Source) Cases(ctx context.Context) ([]Case, error) {
	var rows []Case
	err := s.reader.Query(ctx, &rows, "SELECT * FROM cases ORDER BY caseuid")
	return rows, wrap("cases", err)
}

func (s *Source) Contacts(ctx context.Context) ([]Contact, error) {
	var rows []Contact
	err := s.reader.Query(ctx, &rows, "SELECT * FROM contacts ORDER BY contactuid")
	return rows, wrap("contacts", err)
}

// SessionRecordings returns every recording that belongs to a capture
// session.
func (s *Source) SessionRecordings(ctx context.Context) ([]Recording, error) {
	var rows []Recording
	err := s.reader.Query(ctx, &rows,
		"SELECT * FROM recordings WHERE "+sessionFilter+" ORDER BY recordinguid")
	return rows, wrap("recordings", err)
}

// AvailableRecordings returns the recordings that are migrated as
// recording versions.
func (s *Source) AvailableRecordings(ctx context.Context) ([]Recording, error) {
	var rows []Recording
	err := s.reader.Query(ctx, &rows,
		"SELECT * FROM recordings WHERE "+recordingFilter+" ORDER BY recordinguid")
	return rows, wrap("recordings", err)
}

// ParticipantRecordings returns recordings that list defendants or witnesses.
func (s *Source) ParticipantRecordings(ctx context.Context) ([]Recording, error) {
	var rows []Recording
	err := s.reader.Query(ctx, &rows,
		`SELECT * FROM recordings
		WHERE (defendants IS NOT NULL AND defendants <> '') OR (witnessnames IS NOT NULL AND witnessnames <> '')
		ORDER BY recordinguid`)
	return rows, wrap("recordings", err)
}

func (s *Source) VideoPermissions(ctx context.Context) ([]VideoPermission, error) {
	var rows []VideoPermission
	err := s.reader.Query(ctx, &rows, "SELECT * FROM videopermissions ORDER BY permissionid")
	return rows, wrap("videopermissions", err)
}

func (s *Source) Audits(ctx context.Context) ([]Audit, error) {
	var rows []Audit
	err := s.reader.Query(ctx, &rows, "SELECT * FROM audits ORDER BY audituid")
	return rows, wrap("audits", err)
}

// CaseDeletedOn returns the createdon values of the deletion events of a
// case.
func (s *Source) CaseDeletedOn(ctx context.Context, caseUID string) ([]string, error) {
	var rows []string
	err := s.reader.Query(ctx, &rows,
		"SELECT createdon FROM audits WHERE auditdetails = ? AND caseuid = ? AND createdon IS NOT NULL",
		caseDeletedDetails, caseUID)
	return rows, wrap("audits", err)
}

// RecordingEvents returns the audit events with one of activities raised
// against any of recordingUIDs.
func (s *Source) RecordingEvents(ctx context.Context, recordingUIDs, activities []string) ([]Audit, error) {
	var rows []Audit
	if len(recordingUIDs) == 0 || len(activities) == 0 {
		return rows, nil
	}
	err := s.reader.Query(ctx, &rows,
		"SELECT * FROM audits WHERE recordinguid IN ? AND activity IN ?",
		recordingUIDs, activities)
	return rows, wrap("audits", err)
}

func wrap(table string, err error) error {
	if err != nil {
		return fmt.Errorf("failed to read legacy %s: %w", table, err)
	}
	return nil
}
