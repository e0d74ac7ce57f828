package legacy

import "context"

const (
	level3 = "Level 3"

	portalFilter = "(prerole = ? OR LOWER(invited) = 'true')"
	appFilter    = "(prerole IS NOT NULL AND prerole <> '' AND prerole <> ?)"
)

func portalArgs() []any { return []any{level3} }
func appArgs() []any    { return []any{level3} }

// Counting queries for reconciliation. Each mirrors the fetch query of the
// entity built from that table.

func (s *Source) CountSecurityGroups(ctx context.Context) (int64, error) {
	n, err := s.reader.Count(ctx, "SELECT COUNT(*) FROM grouplist WHERE grouptype = ?", "Security")
	return n, wrap("grouplist", err)
}

func (s *Source) CountCourts(ctx context.Context) (int64, error) {
	n, err := s.reader.Count(ctx, "SELECT COUNT(*) FROM courts")
	return n, wrap("courts", err)
}

func (s *Source) CountRooms(ctx context.Context) (int64, error) {
	n, err := s.reader.Count(ctx, "SELECT COUNT(*) FROM rooms")
	return n, wrap("rooms", err)
}

func (s *Source) CountUsers(ctx context.Context) (int64, error) {
	n, err := s.reader.Count(ctx, "SELECT COUNT(*) FROM users")
	return n, wrap("users", err)
}

func (s *Source) CountPortalUsers(ctx context.Context) (int64, error) {
	n, err := s.reader.Count(ctx, "SELECT COUNT(*) FROM users WHERE "+portalFilter, portalArgs()...)
	return n, wrap("users", err)
}

func (s *Source) CountAppUsers(ctx context.Context) (int64, error) {
	n, err := s.reader.Count(ctx, "SELECT COUNT(*) FROM users WHERE "+appFilter, appArgs()...)
	return n, wrap("users", err)
}

func (s *Source) CountCases(ctx context.Context) (int64, error) {
	n, err := s.reader.Count(ctx, "SELECT COUNT(*) FROM cases")
	return n, wrap("cases", err)
}

// CountBookings counts the cases that can own a booking.
func (s *Source) CountBookings(ctx context.Context) (int64, error) {
	n, err := s.reader.Count(ctx, "SELECT COUNT(*) FROM cases WHERE casereference IS NOT NULL")
	return n, wrap("cases", err)
}

func (s *Source) CountContacts(ctx context.Context) (int64, error) {
	n, err := s.reader.Count(ctx, "SELECT COUNT(*) FROM contacts")
	return n, wrap("contacts", err)
}

// CountCaptureSessions counts chain roots.
func (s *Source) CountCaptureSessions(ctx context.Context) (int64, error) {
	n, err := s.reader.Count(ctx,
		"SELECT COUNT(*) FROM recordings WHERE (parentrecuid IS NULL OR parentrecuid = recordinguid) AND "+sessionFilter)
	return n, wrap("recordings", err)
}

// CountSessionRecordings counts the recordings staged for capture sessions.
func (s *Source) CountSessionRecordings(ctx context.Context) (int64, error) {
	n, err := s.reader.Count(ctx, "SELECT COUNT(*) FROM recordings WHERE "+sessionFilter)
	return n, wrap("recordings", err)
}

func (s *Source) CountRecordings(ctx context.Context) (int64, error) {
	n, err := s.reader.Count(ctx, "SELECT COUNT(*) FROM recordings WHERE "+recordingFilter)
	return n, wrap("recordings", err)
}

func (s *Source) CountVideoPermissions(ctx context.Context) (int64, error) {
	n, err := s.reader.Count(ctx, "SELECT COUNT(*) FROM videopermissions")
	return n, wrap("videopermissions", err)
}

func (s *Source) CountAudits(ctx context.Context) (int64, error) {
	n, err := s.reader.Count(ctx, "SELECT COUNT(*) FROM audits")
	return n, wrap("audits", err)
}
