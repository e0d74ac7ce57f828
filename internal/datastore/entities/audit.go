package entities

import "time"

// Audit is one provenance row. Rows written by the migration carry source
// AUTO and category data_migration; imported legacy audits keep their own
// category and activity.
type Audit struct {
	ID             string  `gorm:"primaryKey;size:36"`
	Table          string  `gorm:"column:table_name;size:25;not null"`
	TableRecordID  *string `gorm:"size:36;index"`
	Source         string  `gorm:"size:20;not null"`
	Category       *string `gorm:"size:100"`
	Activity       *string `gorm:"size:100"`
	FunctionalArea *string `gorm:"size:100"`
	AuditDetails   string  `gorm:"type:text"`
	CreatedBy      *string `gorm:"size:36"`
	CreatedAt      time.Time
}

// TableName returns the table name for GORM.
func (Audit) TableName() string { return "audits" }
