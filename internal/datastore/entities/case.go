package entities

import "time"

// Participant types.
const (
	ParticipantTypeWitness   = "WITNESS"
	ParticipantTypeDefendant = "DEFENDANT"
)

// Case is a court case.
type Case struct {
	ID         string `gorm:"primaryKey;size:36"`
	CourtID    string `gorm:"size:36;not null;index"`
	Reference  string `gorm:"size:25;not null"`
	Test       bool   `gorm:"not null;default:false"`
	CreatedAt  time.Time
	ModifiedAt *time.Time
	DeletedAt  *time.Time

	Court *Court `gorm:"foreignKey:CourtID"`
}

// TableName returns the table name for GORM.
func (Case) TableName() string { return "cases" }

// Booking schedules recording for a case. A migrated case owns one booking.
type Booking struct {
	ID           string    `gorm:"primaryKey;size:36"`
	CaseID       string    `gorm:"size:36;not null;uniqueIndex"`
	ScheduledFor time.Time `gorm:"not null"`
	CreatedAt    time.Time
	ModifiedAt   *time.Time
	DeletedAt    *time.Time

	Case *Case `gorm:"foreignKey:CaseID"`
}

// TableName returns the table name for GORM.
func (Booking) TableName() string { return "bookings" }

// Participant is a witness or defendant in a case.
type Participant struct {
	ID              string `gorm:"primaryKey;size:36"`
	CaseID          string `gorm:"size:36;not null;index"`
	ParticipantType string `gorm:"size:20;not null"`
	FirstName       string `gorm:"size:100"`
	LastName        string `gorm:"size:100"`
	CreatedAt       time.Time
	ModifiedAt      *time.Time
	DeletedAt       *time.Time

	Case *Case `gorm:"foreignKey:CaseID"`
}

// TableName returns the table name for GORM.
func (Participant) TableName() string { return "participants" }

// BookingParticipant links a participant to a booking.
type BookingParticipant struct {
	ParticipantID string `gorm:"primaryKey;size:36"`
	BookingID     string `gorm:"primaryKey;size:36"`

	Participant *Participant `gorm:"foreignKey:ParticipantID"`
	Booking     *Booking     `gorm:"foreignKey:BookingID"`
}

// TableName returns the table name for GORM.
func (BookingParticipant) TableName() string { return "booking_participant" }
