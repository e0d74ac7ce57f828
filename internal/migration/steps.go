package migration

import (
	"context"

	"github.com/tphakala/premigrate/internal/conf"
	"github.com/tphakala/premigrate/internal/datastore/entities"
	"github.com/tphakala/premigrate/internal/legacy"
)

// Steps returns the migration steps in dependency order. Every entity
// holds foreign keys only into entities of earlier steps.
func Steps(deps *Deps) []Step {
	src := deps.Source
	ref := deps.Reference
	staging := NewStagingIndex(deps)
	bookingParticipants := NewBookingParticipantMigrator(deps)

	return []Step{
		AsStep[legacy.Group](NewRoleMigrator(deps), src.CountSecurityGroups),
		AsStep[string](NewRegionMigrator(deps), fixedCount(len(ref.Regions))),
		AsStep[legacy.Court](NewLocationMigrator(deps), plusDefault(src.CountCourts)),
		AsStep[entities.Court](NewCourtRegionMigrator(deps), plusDefault(src.CountCourts)),
		AsStep[legacy.Room](NewRoomMigrator(deps), src.CountRooms),
		AsStep[conf.RoomAssignment](NewCourtroomMigrator(deps), fixedCount(len(ref.RoomAssignments))),
		AsStep[legacy.User](NewUserMigrator(deps), src.CountUsers),
		AsStep[legacy.User](NewPortalAccessMigrator(deps), src.CountPortalUsers),
		AsStep[legacy.User](NewAppAccessMigrator(deps), src.CountAppUsers),
		AsStep[legacy.Case](NewCaseMigrator(deps), src.CountCases),
		AsStep[legacy.Case](NewBookingMigrator(deps), src.CountBookings),
		AsStep[legacy.Recording](NewStagingMigrator(deps, staging), src.CountSessionRecordings),
		AsStep[legacy.Contact](NewParticipantMigrator(deps), src.CountContacts),
		AsStep[ParticipantLink](bookingParticipants, bookingParticipants.Count),
		AsStep[entities.TempRecording](NewCaptureSessionMigrator(staging), src.CountCaptureSessions),
		AsStep[legacy.Recording](NewRecordingMigrator(deps, staging), src.CountRecordings),
		AsStep[legacy.VideoPermission](NewShareBookingMigrator(deps), src.CountVideoPermissions),
		AsStep[legacy.Audit](NewAuditImportMigrator(deps), src.CountAudits),
	}
}

func fixedCount(n int) CountFunc {
	return func(context.Context) (int64, error) { return int64(n), nil }
}

// plusDefault adds the default location, which has no legacy row.
func plusDefault(count CountFunc) CountFunc {
	return func(ctx context.Context) (int64, error) {
		n, err := count(ctx)
		return n + 1, err
	}
}
