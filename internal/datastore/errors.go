package datastore

import (
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"github.com/tphakala/premigrate/internal/errors"
	"gorm.io/gorm"
)

// MySQL server error numbers that signal a rejected row.
var mysqlConstraintErrors = map[uint16]bool{
	1048: true, // column cannot be null
	1062: true, // duplicate entry
	1216: true, // child row: foreign key constraint fails (legacy)
	1217: true, // parent row: foreign key constraint fails (legacy)
	1406: true, // data too long for column
	1451: true, // cannot delete or update a parent row
	1452: true, // cannot add or update a child row
	3819: true, // check constraint violated
}

// Classify maps a driver error onto the migration error taxonomy. Errors
// caused by the row itself become constraint violations, everything else
// is an infrastructure error. A nil error stays nil.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.IsRecordLevel(err) || errors.IsCategory(err, errors.CategoryInfrastructure) {
		return err
	}
	if IsConstraintError(err) {
		return errors.ConstraintViolation(err)
	}
	return errors.InfrastructureError(err)
}

// IsConstraintError reports whether err is a row-level rejection raised by
// one of the supported drivers.
func IsConstraintError(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) ||
		errors.Is(err, gorm.ErrForeignKeyViolated) ||
		errors.Is(err, gorm.ErrCheckConstraintViolated) {
		return true
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code == sqlite3.ErrConstraint
	}

	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlConstraintErrors[mysqlErr.Number]
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// Class 23: integrity constraint violation; 22001: string too long.
		return strings.HasPrefix(pgErr.Code, "23") || pgErr.Code == "22001"
	}

	return false
}
