package entities

// Court types.
const (
	CourtTypeCrown      = "CROWN"
	CourtTypeMagistrate = "MAGISTRATE"
	CourtTypeFamily     = "FAMILY"
)

// Role is an access level granted through app access.
type Role struct {
	ID   string `gorm:"primaryKey;size:36"`
	Name string `gorm:"size:100;not null;uniqueIndex"`
}

// TableName returns the table name for GORM.
func (Role) TableName() string { return "roles" }

// Region groups locations geographically.
type Region struct {
	ID   string `gorm:"primaryKey;size:36"`
	Name string `gorm:"size:100;not null;uniqueIndex"`
}

// TableName returns the table name for GORM.
func (Region) TableName() string { return "regions" }

// Court is a location. LocationCode is the only field updated after insert.
type Court struct {
	ID           string `gorm:"primaryKey;size:36"`
	CourtType    string `gorm:"size:20;not null"`
	Name         string `gorm:"size:255;not null;uniqueIndex"`
	LocationCode string `gorm:"size:50"`
}

// TableName returns the table name for GORM.
func (Court) TableName() string { return "courts" }

// CourtRegion links a court to its region.
type CourtRegion struct {
	CourtID  string `gorm:"primaryKey;size:36"`
	RegionID string `gorm:"primaryKey;size:36"`

	Court  *Court  `gorm:"foreignKey:CourtID"`
	Region *Region `gorm:"foreignKey:RegionID"`
}

// TableName returns the table name for GORM.
func (CourtRegion) TableName() string { return "court_region" }

// Room is a physical recording room.
type Room struct {
	ID   string `gorm:"primaryKey;size:36"`
	Name string `gorm:"size:45;not null;uniqueIndex"`
}

// TableName returns the table name for GORM.
func (Room) TableName() string { return "rooms" }

// Courtroom assigns a room to exactly one court.
type Courtroom struct {
	RoomID  string `gorm:"primaryKey;size:36"`
	CourtID string `gorm:"size:36;not null;index"`

	Room  *Room  `gorm:"foreignKey:RoomID"`
	Court *Court `gorm:"foreignKey:CourtID"`
}

// TableName returns the table name for GORM.
func (Courtroom) TableName() string { return "courtrooms" }
