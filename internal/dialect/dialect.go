// Package dialect holds the database-specific halves of introspection:
// catalog queries and the rules that classify keys.
//
// Every dialect implements Dialect. The foreign-key capabilities are optional
// interfaces; a dialect that lacks one is a valid no-op variant:
//
//	if fk, ok := d.(dialect.ForeignKeyQuerier); ok {
//		sql, args := fk.ForeignKeysQuery(table, dbName)
//		...
//	}
package dialect

import (
	"context"

	"github.com/koustreak/automodel/internal/database"
	"github.com/koustreak/automodel/internal/errs"
	"github.com/koustreak/automodel/internal/schema"
)

// Dialect lists and describes tables for one database engine.
type Dialect interface {
	// Name returns the driver name the dialect serves.
	Name() string

	// ListTablesQuery returns the query that lists user tables.
	ListTablesQuery() (string, []any)

	// TableNameField names the column holding the table name when the
	// listing query returns structured rows. Empty means the first column.
	TableNameField() string

	// DescribeTable returns the column descriptor of table.
	DescribeTable(ctx context.Context, q database.Querier, table string) (*schema.Table, error)
}

// ForeignKeyQuerier is implemented by dialects that can list a table's
// foreign-key (and possibly primary-key) constraints.
type ForeignKeyQuerier interface {
	ForeignKeysQuery(table, databaseName string) (string, []any)
}

// SerialKeyDetector is implemented by dialects that can tell whether a
// reference marks an auto-incrementing identity column.
type SerialKeyDetector interface {
	IsSerialKey(ref *schema.ForeignKeyRef) bool
}

// PrimaryKeyDetector is implemented by dialects whose foreign-key query also
// returns primary-key constraints.
type PrimaryKeyDetector interface {
	IsPrimaryKey(raw map[string]any) bool
}

// For returns the dialect for driver. namespace is the schema the catalog
// queries are restricted to; SQLite ignores it.
func For(driver database.Driver, namespace string) (Dialect, error) {
	switch driver {
	case database.DriverPostgres:
		if namespace == "" {
			namespace = "public"
		}
		return &Postgres{Schema: namespace}, nil
	case database.DriverMySQL:
		return &MySQL{Database: namespace}, nil
	case database.DriverSQLite:
		return &SQLite{}, nil
	case database.DriverMSSQL:
		if namespace == "" {
			namespace = "dbo"
		}
		return &MSSQL{Schema: namespace}, nil
	default:
		return nil, errs.Newf(errs.ErrKindUnsupported, "no dialect for driver %q", driver)
	}
}

// SerialPredicate returns d's serial-key predicate. Dialects without one
// never classify a column as serial.
func SerialPredicate(d Dialect) func(*schema.ForeignKeyRef) bool {
	if s, ok := d.(SerialKeyDetector); ok {
		return func(ref *schema.ForeignKeyRef) bool {
			return ref != nil && s.IsSerialKey(ref)
		}
	}
	return func(*schema.ForeignKeyRef) bool { return false }
}

// IsPrimaryKey applies d's primary-key predicate to a raw catalog row.
func IsPrimaryKey(d Dialect, raw map[string]any) bool {
	if p, ok := d.(PrimaryKeyDetector); ok {
		return p.IsPrimaryKey(raw)
	}
	return false
}
