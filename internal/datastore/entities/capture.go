package entities

import "time"

// Capture session origins.
const OriginPRE = "PRE"

// CaptureSession groups the versions of one recording under a booking.
type CaptureSession struct {
	ID               string  `gorm:"primaryKey;size:36"`
	BookingID        string  `gorm:"size:36;not null;index"`
	Origin           string  `gorm:"size:20;not null"`
	IngestAddress    *string `gorm:"size:255"`
	LiveOutputURL    *string `gorm:"size:255"`
	StartedAt        *time.Time
	StartedByUserID  *string `gorm:"size:36"`
	FinishedAt       *time.Time
	FinishedByUserID *string `gorm:"size:36"`
	Status           string  `gorm:"size:30;not null"`
	DeletedAt        *time.Time

	Booking    *Booking `gorm:"foreignKey:BookingID"`
	StartedBy  *User    `gorm:"foreignKey:StartedByUserID"`
	FinishedBy *User    `gorm:"foreignKey:FinishedByUserID"`
}

// TableName returns the table name for GORM.
func (CaptureSession) TableName() string { return "capture_sessions" }

// Recording is one version of a captured recording. Chain roots have a
// nil ParentRecordingID.
type Recording struct {
	ID                string  `gorm:"primaryKey;size:36"`
	CaptureSessionID  string  `gorm:"size:36;not null;index"`
	ParentRecordingID *string `gorm:"size:36;index"`
	Version           int     `gorm:"not null"`
	URL               string  `gorm:"size:255"`
	Filename          *string `gorm:"size:255"`
	CreatedAt         time.Time
	DeletedAt         *time.Time

	CaptureSession  *CaptureSession `gorm:"foreignKey:CaptureSessionID"`
	ParentRecording *Recording      `gorm:"foreignKey:ParentRecordingID"`
}

// TableName returns the table name for GORM.
func (Recording) TableName() string { return "recordings" }

// ShareBooking grants another user access to a booking's recordings.
type ShareBooking struct {
	ID               string `gorm:"primaryKey;size:36"`
	BookingID        string `gorm:"size:36;not null;index"`
	SharedWithUserID string `gorm:"size:36;not null"`
	SharedByUserID   string `gorm:"size:36;not null"`
	CreatedAt        time.Time
	DeletedAt        *time.Time

	Booking    *Booking `gorm:"foreignKey:BookingID"`
	SharedWith *User    `gorm:"foreignKey:SharedWithUserID"`
	SharedBy   *User    `gorm:"foreignKey:SharedByUserID"`
}

// TableName returns the table name for GORM.
func (ShareBooking) TableName() string { return "share_bookings" }

// TempRecording is the persisted staging row for one legacy recording. It
// is working state for the capture session and recording steps and is
// excluded from reconciliation.
type TempRecording struct {
	RecordingID       string  `gorm:"primaryKey;size:36"`
	GroupKey          string  `gorm:"size:36;not null;index"`
	CaptureSessionID  string  `gorm:"size:36;not null;index"`
	BookingID         string  `gorm:"size:36;not null"`
	CaseID            string  `gorm:"size:36;not null"`
	ParentRecordingID *string `gorm:"size:36"`
	Version           int
	IngestAddress     *string `gorm:"size:255"`
	LiveOutputURL     *string `gorm:"size:255"`
	Status            *string `gorm:"size:50"`
	CreatedBy         *string `gorm:"size:100"`
	DeletedAt         *time.Time
	CreatedAt         time.Time
}

// TableName returns the table name for GORM.
func (TempRecording) TableName() string { return "temp_recordings" }
