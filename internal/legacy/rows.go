// Package legacy reads rows from the legacy store. The legacy schema keeps
// timestamps and flags as strings; rows are returned as-is and parsed by
// the migrators.
package legacy

// Room is a legacy recording room.
type Room struct {
	RoomID   string  `gorm:"column:roomid;primaryKey"`
	RoomName *string `gorm:"column:roomname"`
}

func (Room) TableName() string { return "rooms" }

// Group is a legacy group; security groups carry role names.
type Group struct {
	GroupID   string  `gorm:"column:groupid;primaryKey"`
	GroupName *string `gorm:"column:groupname"`
	GroupType *string `gorm:"column:grouptype"`
}

func (Group) TableName() string { return "grouplist" }

// Court is a legacy court. Names are free text.
type Court struct {
	CourtID   string  `gorm:"column:courtid;primaryKey"`
	CourtName *string `gorm:"column:courtname"`
}

func (Court) TableName() string { return "courts" }

// User is a legacy user account.
type User struct {
	UserID         string  `gorm:"column:userid;primaryKey"`
	Email          *string `gorm:"column:email"`
	FirstName      *string `gorm:"column:firstname"`
	LastName       *string `gorm:"column:lastname"`
	Organisation   *string `gorm:"column:organisation"`
	Phone          *string `gorm:"column:phone"`
	PreRole        *string `gorm:"column:prerole"`
	Invited        *string `gorm:"column:invited"`
	Status         *string `gorm:"column:status"`
	LoginEnabled   *string `gorm:"column:loginenabled"`
	EmailConfirmed *string `gorm:"column:emailconfirmed"`
	CreatedBy      *string `gorm:"column:createdby"`
	Created        *string `gorm:"column:created"`
	Modified       *string `gorm:"column:modified"`
}

func (User) TableName() string { return "users" }

// Case is a legacy case. Court holds the court name.
type Case struct {
	CaseUID       string  `gorm:"column:caseuid;primaryKey"`
	CaseReference *string `gorm:"column:casereference"`
	Court         *string `gorm:"column:court"`
	CaseStatus    *string `gorm:"column:casestatus"`
	CreatedBy     *string `gorm:"column:createdby"`
	Created       *string `gorm:"column:created"`
	Modified      *string `gorm:"column:modified"`
}

func (Case) TableName() string { return "cases" }

// Contact is a witness or defendant attached to a legacy case.
type Contact struct {
	ContactUID  string  `gorm:"column:contactuid;primaryKey"`
	CaseUID     *string `gorm:"column:caseuid"`
	ContactType *string `gorm:"column:contacttype"`
	FirstName   *string `gorm:"column:firstname"`
	LastName    *string `gorm:"column:lastname"`
	CreatedBy   *string `gorm:"column:createdby"`
	Created     *string `gorm:"column:created"`
	Modified    *string `gorm:"column:modified"`
}

func (Contact) TableName() string { return "contacts" }

// Recording is one version of a legacy recording. ParentRecUID points at
// the first version of the chain; the first version points at itself.
type Recording struct {
	RecordingUID       string  `gorm:"column:recordinguid;primaryKey"`
	CaseUID            *string `gorm:"column:caseuid"`
	ParentRecUID       *string `gorm:"column:parentrecuid"`
	RecordingVersion   *string `gorm:"column:recordingversion"`
	RecordingStatus    *string `gorm:"column:recordingstatus"`
	IngestAddress      *string `gorm:"column:ingestaddress"`
	RecordingAvailable *string `gorm:"column:recordingavailable"`
	Filename           *string `gorm:"column:filename"`
	URL                *string `gorm:"column:url"`
	Defendants         *string `gorm:"column:defendants"`
	WitnessNames       *string `gorm:"column:witnessnames"`
	CreatedBy          *string `gorm:"column:createdby"`
	Created            *string `gorm:"column:created"`
	Modified           *string `gorm:"column:modified"`
}

func (Recording) TableName() string { return "recordings" }

// VideoPermission shares a recording with a user.
type VideoPermission struct {
	PermissionID string  `gorm:"column:permissionid;primaryKey"`
	RecordingUID *string `gorm:"column:recordinguid"`
	UserID       *string `gorm:"column:userid"`
	CreatedBy    *string `gorm:"column:createdby"`
	Created      *string `gorm:"column:created"`
	Modified     *string `gorm:"column:modified"`
	ActiveStatus *string `gorm:"column:activestatus"`
}

func (VideoPermission) TableName() string { return "videopermissions" }

// Audit is one legacy audit event.
type Audit struct {
	AuditUID          string  `gorm:"column:audituid;primaryKey"`
	Activity          *string `gorm:"column:activity"`
	RecordingUID      *string `gorm:"column:recordinguid"`
	CaseUID           *string `gorm:"column:caseuid"`
	AuditDetails      *string `gorm:"column:auditdetails"`
	Email             *string `gorm:"column:email"`
	AuditSession      *string `gorm:"column:auditsession"`
	CaseReference     *string `gorm:"column:casereference"`
	CourtName         *string `gorm:"column:courtname"`
	CreatedBy         *string `gorm:"column:createdby"`
	CreatedOn         *string `gorm:"column:createdon"`
	Source            *string `gorm:"column:source"`
	FunctionalArea    *string `gorm:"column:functionalarea"`
	SubFunctionalArea *string `gorm:"column:subfunctionalarea"`
	Trigger           *string `gorm:"column:trigger"`
	Category          *string `gorm:"column:category"`
}

func (Audit) TableName() string { return "audits" }

// Tables returns one zero value of every legacy row type.
func Tables() []any {
	return []any{
		&Room{},
		&Group{},
		&Court{},
		&User{},
		&Case{},
		&Contact{},
		&Recording{},
		&VideoPermission{},
		&Audit{},
	}
}

// Value returns the string behind p, or "" when p is nil.
func Value(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
