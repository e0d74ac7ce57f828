package migration

import (
	"context"

	"github.com/tphakala/premigrate/internal/datastore"
)

// Guard answers whether a natural key is already present in the
// destination. Every insert is preceded by a guard check.
type Guard struct {
	writer datastore.DestinationWriter
}

// NewGuard creates a Guard reading through writer.
func NewGuard(writer datastore.DestinationWriter) *Guard {
	return &Guard{writer: writer}
}

// Exists reports whether table has a row with field equal to value.
func (g *Guard) Exists(ctx context.Context, table, field string, value any) (bool, error) {
	return g.writer.Exists(ctx, table, field, value)
}

// ExistsAll reports whether table has a row matching a composite key.
func (g *Guard) ExistsAll(ctx context.Context, table string, key map[string]any) (bool, error) {
	return g.writer.ExistsAll(ctx, table, key)
}
