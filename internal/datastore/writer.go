package datastore

import (
	"context"
	"fmt"
	"slices"

	"github.com/tphakala/premigrate/internal/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DestinationWriter is the write side of the destination store. Every call
// acquires and releases its own connection or transaction.
type DestinationWriter interface {
	// Exists reports whether table holds a row whose field equals value.
	Exists(ctx context.Context, table, field string, value any) (bool, error)
	// ExistsAll reports whether table holds a row matching every condition.
	ExistsAll(ctx context.Context, table string, conds map[string]any) (bool, error)
	// Create inserts one row in its own transaction.
	Create(ctx context.Context, row any) error
	// InsertBatch inserts rows in one transaction with one savepoint per row.
	// rowErrs[i] holds the record-level error of rows[i]; err is set only for
	// infrastructure failures, in which case the whole batch is rolled back.
	InsertBatch(ctx context.Context, rows []any) (rowErrs []error, err error)
	// Update sets values on the rows of table matching conds.
	Update(ctx context.Context, table string, conds, values map[string]any) (int64, error)
	// Query scans the result of sql into dest.
	Query(ctx context.Context, dest any, sql string, args ...any) error
	// Count returns the number of rows in table.
	Count(ctx context.Context, table string) (int64, error)
	// Tables lists the tables of the destination schema.
	Tables(ctx context.Context) ([]string, error)
}

// Writer implements DestinationWriter over GORM.
type Writer struct {
	db *gorm.DB
}

// NewWriter creates a Writer for db.
func NewWriter(db *gorm.DB) *Writer {
	return &Writer{db: db}
}

func (w *Writer) Exists(ctx context.Context, table, field string, value any) (bool, error) {
	return w.ExistsAll(ctx, table, map[string]any{field: value})
}

func (w *Writer) ExistsAll(ctx context.Context, table string, conds map[string]any) (bool, error) {
	if len(conds) == 0 {
		return false, fmt.Errorf("exists check on %s needs at least one condition", table)
	}

	var found []int
	err := w.db.WithContext(ctx).
		Table(table).
		Select("1").
		Where(eqConditions(conds)).
		Limit(1).
		Scan(&found).Error
	if err != nil {
		return false, Classify(err)
	}
	return len(found) > 0, nil
}

func (w *Writer) Create(ctx context.Context, row any) error {
	return Classify(w.db.WithContext(ctx).Omit(clause.Associations).Create(row).Error)
}

func (w *Writer) InsertBatch(ctx context.Context, rows []any) ([]error, error) {
	rowErrs := make([]error, len(rows))
	if len(rows) == 0 {
		return rowErrs, nil
	}

	err := w.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i, row := range rows {
			savepoint := fmt.Sprintf("row_%d", i)
			if err := tx.SavePoint(savepoint).Error; err != nil {
				return errors.InfrastructureError(err)
			}

			insertErr := Classify(tx.Omit(clause.Associations).Create(row).Error)
			if insertErr == nil {
				continue
			}
			if !errors.IsRecordLevel(insertErr) {
				return insertErr
			}

			// Only this row is undone; earlier rows stay in the transaction.
			if err := tx.RollbackTo(savepoint).Error; err != nil {
				return errors.InfrastructureError(err)
			}
			rowErrs[i] = insertErr
		}
		return nil
	})
	if err != nil {
		return nil, Classify(err)
	}
	return rowErrs, nil
}

func (w *Writer) Update(ctx context.Context, table string, conds, values map[string]any) (int64, error) {
	if len(conds) == 0 {
		return 0, fmt.Errorf("update on %s needs at least one condition", table)
	}

	result := w.db.WithContext(ctx).
		Table(table).
		Where(eqConditions(conds)).
		Updates(values)
	if result.Error != nil {
		return 0, Classify(result.Error)
	}
	return result.RowsAffected, nil
}

func (w *Writer) Query(ctx context.Context, dest any, sql string, args ...any) error {
	return Classify(w.db.WithContext(ctx).Raw(sql, args...).Scan(dest).Error)
}

func (w *Writer) Count(ctx context.Context, table string) (int64, error) {
	var n int64
	if err := w.db.WithContext(ctx).Table(table).Count(&n).Error; err != nil {
		return 0, Classify(err)
	}
	return n, nil
}

func (w *Writer) Tables(ctx context.Context) ([]string, error) {
	tables, err := w.db.WithContext(ctx).Migrator().GetTables()
	if err != nil {
		return nil, Classify(err)
	}
	slices.Sort(tables)
	return tables, nil
}

// eqConditions builds quoted column equality conditions in a stable order.
func eqConditions(conds map[string]any) clause.Expression {
	keys := make([]string, 0, len(conds))
	for k := range conds {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	exprs := make([]clause.Expression, 0, len(keys))
	for _, k := range keys {
		exprs = append(exprs, clause.Eq{Column: clause.Column{Name: k}, Value: conds[k]})
	}
	return clause.And(exprs...)
}
