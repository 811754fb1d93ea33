// Package inspector reads table structure from a live database catalog.
// Implementations issue read-only metadata queries only; no data rows are
// ever touched. The two-method contract (ListTables/Describe) keeps engine
// differences out of the mapper, resolver, and renderer.
package inspector

import (
	"context"
	"sort"

	"github.com/crawlkit/sqlgen/internal/schema"
)

type Inspector interface {
	Connect(ctx context.Context, dsn string) error
	Ping(ctx context.Context) error

	// ListTables returns every base table name, sorted.
	ListTables(ctx context.Context) ([]string, error)

	// Describe returns metadata for the named tables, in argument order,
	// with columns in catalog ordinal order. Missing tables produce a
	// *schema.TableNotFoundError naming every absent table.
	Describe(ctx context.Context, tables []string) ([]schema.Table, error)

	Close() error
}

// New returns the inspector for a configured provider. Unknown providers
// fall back to postgres, matching the config default.
func New(provider string) Inspector {
	switch provider {
	case "mysql":
		return NewMySQL()
	case "sqlite", "sqlite3":
		return NewSQLite()
	default:
		return NewPostgres()
	}
}

// checkMissing diffs the requested set against the catalog listing and
// reports every absent table at once.
func checkMissing(existing, requested []string) error {
	known := make(map[string]bool, len(existing))
	for _, name := range existing {
		known[name] = true
	}
	var missing []string
	for _, name := range requested {
		if !known[name] {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return &schema.TableNotFoundError{Tables: missing}
	}
	return nil
}

// appendColumn adds a column unless one with the same name is already
// present. A table shadowed across two visible schemas can yield the same
// catalog row more than once; keeping the first occurrence preserves
// ordinal order.
func appendColumn(t *schema.Table, col schema.Column) {
	for _, existing := range t.Columns {
		if existing.Name == col.Name {
			return
		}
	}
	t.Columns = append(t.Columns, col)
}

// appendForeignKey adds a foreign key unless an identical one is already
// recorded, for the same shadowed-schema reason as appendColumn.
func appendForeignKey(t *schema.Table, fk schema.ForeignKey) {
	for _, existing := range t.ForeignKeys {
		if existing == fk {
			return
		}
	}
	t.ForeignKeys = append(t.ForeignKeys, fk)
}

// inRequestedOrder reorders described tables to match the request.
func inRequestedOrder(byName map[string]schema.Table, requested []string) []schema.Table {
	tables := make([]schema.Table, 0, len(requested))
	for _, name := range requested {
		if t, ok := byName[name]; ok {
			tables = append(tables, t)
		}
	}
	return tables
}
