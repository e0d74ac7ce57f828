package datastore

import (
	"context"

	"gorm.io/gorm"
)

// SourceReader runs parameterized read queries against the legacy store.
// Statements use positional ? placeholders.
type SourceReader interface {
	Query(ctx context.Context, dest any, sql string, args ...any) error
	Count(ctx context.Context, sql string, args ...any) (int64, error)
}

// Reader implements SourceReader over GORM.
type Reader struct {
	db *gorm.DB
}

// NewReader creates a Reader for db.
func NewReader(db *gorm.DB) *Reader {
	return &Reader{db: db}
}

// Query scans the rows returned by sql into dest, which must be a pointer to
// a slice of structs with column tags.
func (r *Reader) Query(ctx context.Context, dest any, sql string, args ...any) error {
	return Classify(r.db.WithContext(ctx).Raw(sql, args...).Scan(dest).Error)
}

// Count runs a query that returns a single integer.
func (r *Reader) Count(ctx context.Context, sql string, args ...any) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Raw(sql, args...).Scan(&n).Error; err != nil {
		return 0, Classify(err)
	}
	return n, nil
}
