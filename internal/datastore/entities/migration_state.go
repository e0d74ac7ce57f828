package entities

import "time"

// MigrationStatus represents the state of a migration run.
type MigrationStatus string

const (
	MigrationStatusIdle      MigrationStatus = "idle"
	MigrationStatusRunning   MigrationStatus = "running"
	MigrationStatusCompleted MigrationStatus = "completed"
	MigrationStatusHalted    MigrationStatus = "halted"
)

// MigrationState tracks the last migration run against the destination.
// This is a singleton table (only one row with ID=1).
type MigrationState struct {
	ID                uint            `gorm:"primaryKey;check:id = 1"`
	State             MigrationStatus `gorm:"type:varchar(20);not null;default:'idle'"`
	RunID             string          `gorm:"size:36"`
	CurrentEntity     string          `gorm:"size:50"`
	CompletedEntities int             `gorm:"default:0"`
	TotalEntities     int             `gorm:"default:0"`
	StartedAt         *time.Time
	CompletedAt       *time.Time
	ErrorMessage      string    `gorm:"type:text"`
	UpdatedAt         time.Time `gorm:"autoUpdateTime"`
}

// TableName returns the table name for GORM.
func (MigrationState) TableName() string {
	return "migration_state"
}

// Progress returns the run progress as a percentage (0-100).
func (m *MigrationState) Progress() float64 {
	if m.TotalEntities == 0 {
		return 0
	}
	return float64(m.CompletedEntities) / float64(m.TotalEntities) * 100
}

// IsActive returns true if a run is in progress.
func (m *MigrationState) IsActive() bool {
	return m.State == MigrationStatusRunning
}
