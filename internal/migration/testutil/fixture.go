package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tphakala/premigrate/internal/legacy"
)

// Fixture ids. Users carry UUIDs because share bookings validate them.
const (
	UserAlice   = "0b0f3c5e-1a2b-4c3d-8e4f-5a6b7c8d9e01"
	UserBob     = "0b0f3c5e-1a2b-4c3d-8e4f-5a6b7c8d9e02"
	UserNoEmail = "0b0f3c5e-1a2b-4c3d-8e4f-5a6b7c8d9e03"

	EmailAlice = "alice@example.com"
	EmailBob   = "bob@example.com"

	CourtLeeds  = "court-leeds"
	CourtHarbor = "court-harborview"

	CaseLeeds     = "case-0001"
	CaseFallback  = "case-0002" // court unknown, deleted
	CaseNoRef     = "case-0003"
	CaseReference = "T20240001"

	RecRoot      = "rec-0001"
	RecV2        = "rec-0002"
	RecV3        = "rec-0003"
	RecDeleted   = "rec-0004"
	RecOrphan    = "rec-0005" // case has no booking
	RecNotRecord = "rec-0006" // never recorded

	PartWitness   = "part-0001"
	PartDefendant = "part-0002"
	PartNoCase    = "part-0003"
	PartBadType   = "part-0004"
	PartUnknown   = "part-0009"
)

// SeedFixture loads a small legacy dataset that touches every entity and
// contains one or more failing rows for most of them:
//
//   - security group "Bogus" is not a known role
//   - Harborview has no region
//   - the reference room assignments name rooms that do not exist
//   - one user has no email
//   - one case has no reference, so its recording has no booking
//   - one contact points at a missing case, another has an unknown type
//   - one recording names a participant that does not exist
//   - one video permission names a user id that is not a UUID
func (ctx *TestContext) SeedFixture(t *testing.T) {
	t.Helper()

	s := ctx.Seeder
	require.NoError(t, s.SeedGroups(
		legacy.Group{GroupID: "grp-1", GroupName: Ptr("Level 1"), GroupType: Ptr("Security")},
		legacy.Group{GroupID: "grp-2", GroupName: Ptr("Level 3"), GroupType: Ptr("Security")},
		legacy.Group{GroupID: "grp-3", GroupName: Ptr("Bogus"), GroupType: Ptr("Security")},
		legacy.Group{GroupID: "grp-4", GroupName: Ptr("Admins"), GroupType: Ptr("Distribution")},
	))

	require.NoError(t, s.SeedCourts(
		legacy.Court{CourtID: CourtLeeds, CourtName: Ptr("Leeds Crown Court")},
		legacy.Court{CourtID: CourtHarbor, CourtName: Ptr("Harborview Crown Court")},
	))

	require.NoError(t, s.SeedRooms(
		legacy.Room{RoomID: "room-6", RoomName: Ptr("PRE006")},
		legacy.Room{RoomID: "room-8", RoomName: Ptr("PRE008")},
	))

	require.NoError(t, s.SeedUsers(
		NewUserBuilder(UserAlice, EmailAlice).WithName("Alice", "Archer").WithRole("Level 1").Build(),
		NewUserBuilder(UserBob, EmailBob).WithName("Bob", "Baker").WithRole("Level 3").Build(),
		NewUserBuilder(UserNoEmail, "").WithoutEmail().Build(),
	))

	require.NoError(t, s.SeedCases(
		NewCaseBuilder(CaseLeeds, CaseReference, "Leeds Crown Court").Build(),
		NewCaseBuilder(CaseFallback, "T20240002", "Atlantis Court").
			WithStatus("Deleted").
			WithModified("06/03/2024 12:00").
			Build(),
		NewCaseBuilder(CaseNoRef, "", "Leeds Crown Court").WithoutReference().Build(),
	))

	require.NoError(t, s.SeedContacts(
		legacy.Contact{ContactUID: PartWitness, CaseUID: Ptr(CaseLeeds), ContactType: Ptr("Witness"),
			FirstName: Ptr("Wendy"), LastName: Ptr("Wright")},
		legacy.Contact{ContactUID: PartDefendant, CaseUID: Ptr(CaseLeeds), ContactType: Ptr("defendant"),
			FirstName: Ptr("Dan"), LastName: Ptr("Drake")},
		legacy.Contact{ContactUID: PartNoCase, CaseUID: Ptr("case-missing"), ContactType: Ptr("Witness")},
		legacy.Contact{ContactUID: PartBadType, CaseUID: Ptr(CaseLeeds), ContactType: Ptr("Judge")},
	))

	require.NoError(t, s.SeedRecordings(
		NewRecordingBuilder(RecRoot, CaseLeeds).
			WithCreatedBy(EmailAlice).
			WithParticipants(PartDefendant, PartWitness).
			Build(),
		NewRecordingBuilder(RecV2, CaseLeeds).
			WithParent(RecRoot).
			WithVersion("2").
			WithCreated("01/03/2024 12:00").
			WithParticipants("", PartWitness+", "+PartUnknown).
			Build(),
		NewRecordingBuilder(RecV3, CaseLeeds).
			WithParent(RecRoot).
			WithVersion("3").
			WithCreated("02/03/2024 09:00").
			Build(),
		NewRecordingBuilder(RecDeleted, CaseFallback).
			WithStatus("Deleted").
			WithIngestAddress("rtmp://ingest.example.com/live").
			WithModified("04/03/2024 16:00").
			Build(),
		NewRecordingBuilder(RecOrphan, CaseNoRef).Build(),
		NewRecordingBuilder(RecNotRecord, CaseLeeds).WithStatus("No Recording").Build(),
	))

	require.NoError(t, s.SeedVideoPermissions(
		legacy.VideoPermission{PermissionID: "perm-0001", RecordingUID: Ptr(RecRoot), UserID: Ptr(UserBob),
			CreatedBy: Ptr(EmailAlice), Created: Ptr("03/03/2024 09:00"), ActiveStatus: Ptr("True")},
		legacy.VideoPermission{PermissionID: "perm-0002", RecordingUID: Ptr(RecRoot), UserID: Ptr("not-a-uuid"),
			CreatedBy: Ptr(EmailAlice), Created: Ptr("03/03/2024 09:00"), ActiveStatus: Ptr("True")},
		legacy.VideoPermission{PermissionID: "perm-0003", RecordingUID: Ptr(RecV2), UserID: Ptr(UserBob),
			CreatedBy: Ptr(EmailAlice), Created: Ptr("03/03/2024 09:00"), Modified: Ptr("06/03/2024 10:00"),
			ActiveStatus: Ptr("False")},
	))

	require.NoError(t, s.SeedAudits(
		legacy.Audit{AuditUID: "audit-0001", Activity: Ptr(ActivityStarted), RecordingUID: Ptr(RecRoot),
			CaseUID: Ptr(CaseLeeds), CreatedBy: Ptr(EmailAlice), CreatedOn: Ptr("01/03/2024 10:05"),
			Category: Ptr("Recording"), Source: Ptr("Portal")},
		legacy.Audit{AuditUID: "audit-0002", Activity: Ptr("Case deleted"), CaseUID: Ptr(CaseFallback),
			AuditDetails: Ptr("Case marked as Deleted."), CreatedOn: Ptr("05/03/2024 09:00"),
			Category: Ptr("Case")},
		legacy.Audit{AuditUID: "audit-0003", Activity: Ptr(ActivityFinished), RecordingUID: Ptr(RecRoot),
			CaseUID: Ptr(CaseLeeds), CreatedBy: Ptr(EmailBob), CreatedOn: Ptr("01/03/2024 11:30"),
			Category: Ptr("Recording")},
	))
}
