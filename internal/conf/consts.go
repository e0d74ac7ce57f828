package conf

// Supported database drivers.
const (
	DriverSQLite   = "sqlite"
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

// Representative ordering inside a recording group.
const (
	TieBreakVersionAsc  = "version-asc"
	TieBreakVersionDesc = "version-desc"
	TieBreakCreatedAsc  = "created-asc"
)

// DefaultLocationName is the synthetic location assigned when a legacy
// location name cannot be matched.
const DefaultLocationName = "Default Court"
