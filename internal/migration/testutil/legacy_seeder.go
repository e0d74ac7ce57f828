package testutil

import (
	"fmt"

	"github.com/tphakala/premigrate/internal/legacy"
	"gorm.io/gorm"
)

// batchSize defines the number of rows inserted per statement.
const batchSize = 500

// LegacySeeder seeds the legacy tables.
type LegacySeeder struct {
	db *gorm.DB
}

// NewLegacySeeder creates a new seeder on the legacy database.
func NewLegacySeeder(db *gorm.DB) *LegacySeeder {
	return &LegacySeeder{db: db}
}

// seed inserts rows, a slice of legacy row structs, in batches.
func seed[T any](db *gorm.DB, table string, rows []T) error {
	if len(rows) == 0 {
		return nil
	}
	if err := db.CreateInBatches(rows, batchSize).Error; err != nil {
		return fmt.Errorf("seed %s: %w", table, err)
	}
	return nil
}

func (s *LegacySeeder) SeedGroups(rows ...legacy.Group) error {
	return seed(s.db, "grouplist", rows)
}

func (s *LegacySeeder) SeedCourts(rows ...legacy.Court) error {
	return seed(s.db, "courts", rows)
}

func (s *LegacySeeder) SeedRooms(rows ...legacy.Room) error {
	return seed(s.db, "rooms", rows)
}

func (s *LegacySeeder) SeedUsers(rows ...legacy.User) error {
	return seed(s.db, "users", rows)
}

func (s *LegacySeeder) SeedCases(rows ...legacy.Case) error {
	return seed(s.db, "cases", rows)
}

func (s *LegacySeeder) SeedContacts(rows ...legacy.Contact) error {
	return seed(s.db, "contacts", rows)
}

func (s *LegacySeeder) SeedRecordings(rows ...legacy.Recording) error {
	return seed(s.db, "recordings", rows)
}

func (s *LegacySeeder) SeedVideoPermissions(rows ...legacy.VideoPermission) error {
	return seed(s.db, "videopermissions", rows)
}

func (s *LegacySeeder) SeedAudits(rows ...legacy.Audit) error {
	return seed(s.db, "audits", rows)
}
