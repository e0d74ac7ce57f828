package entities

import "time"

// Portal access statuses.
const (
	AccessStatusInvitationSent = "INVITATION_SENT"
	AccessStatusActive         = "ACTIVE"
	AccessStatusInactive       = "INACTIVE"
)

// User is a person known to the system.
type User struct {
	ID           string  `gorm:"primaryKey;size:36"`
	FirstName    string  `gorm:"size:100;not null"`
	LastName     string  `gorm:"size:100;not null"`
	Email        string  `gorm:"size:100;not null;uniqueIndex"`
	Organisation *string `gorm:"size:250"`
	Phone        *string `gorm:"size:50"`
	CreatedAt    time.Time
	ModifiedAt   *time.Time
	DeletedAt    *time.Time
}

// TableName returns the table name for GORM.
func (User) TableName() string { return "users" }

// PortalAccess grants a user access to the viewing portal.
type PortalAccess struct {
	ID           string `gorm:"primaryKey;size:36"`
	UserID       string `gorm:"size:36;not null;uniqueIndex"`
	Status       string `gorm:"size:20;not null"`
	LastAccess   *time.Time
	InvitedAt    *time.Time
	RegisteredAt *time.Time
	CreatedAt    time.Time
	ModifiedAt   *time.Time
	DeletedAt    *time.Time

	User *User `gorm:"foreignKey:UserID"`
}

// TableName returns the table name for GORM.
func (PortalAccess) TableName() string { return "portal_access" }

// AppAccess grants a user a role at a court in the recording application.
type AppAccess struct {
	ID         string `gorm:"primaryKey;size:36"`
	UserID     string `gorm:"size:36;not null;uniqueIndex"`
	CourtID    string `gorm:"size:36;not null"`
	RoleID     string `gorm:"size:36;not null"`
	Active     bool   `gorm:"not null"`
	LastAccess *time.Time
	CreatedAt  time.Time
	ModifiedAt *time.Time
	DeletedAt  *time.Time

	User  *User  `gorm:"foreignKey:UserID"`
	Court *Court `gorm:"foreignKey:CourtID"`
	Role  *Role  `gorm:"foreignKey:RoleID"`
}

// TableName returns the table name for GORM.
func (AppAccess) TableName() string { return "app_access" }
