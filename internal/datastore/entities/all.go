package entities

// All returns one zero value of every destination model in dependency order.
func All() []any {
	return []any{
		&Role{},
		&Region{},
		&Court{},
		&CourtRegion{},
		&Room{},
		&Courtroom{},
		&User{},
		&PortalAccess{},
		&AppAccess{},
		&Case{},
		&Booking{},
		&Participant{},
		&BookingParticipant{},
		&CaptureSession{},
		&Recording{},
		&ShareBooking{},
		&Audit{},
		&TempRecording{},
		&MigrationState{},
	}
}

// WorkingTables are destination tables that hold engine state rather than
// migrated data.
var WorkingTables = []string{
	TempRecording{}.TableName(),
	MigrationState{}.TableName(),
}
