package dialect

import (
	"context"

	"github.com/koustreak/automodel/internal/database"
	"github.com/koustreak/automodel/internal/errs"
	"github.com/koustreak/automodel/internal/schema"
)

// SQLite reads table metadata through the pragma table-valued functions.
// Foreign-key rows use the pragma's own field names (table, from, to). SQLite
// has no serial-key predicate: INTEGER PRIMARY KEY rowid aliases never show
// up in foreign_key_list.
type SQLite struct{}

func (s *SQLite) Name() string { return string(database.DriverSQLite) }

func (s *SQLite) TableNameField() string { return "" }

func (s *SQLite) ListTablesQuery() (string, []any) {
	const q = `
		SELECT name
		FROM sqlite_master
		WHERE type = 'table'
		  AND name NOT LIKE 'sqlite_%'
		ORDER BY name`
	return q, nil
}

func (s *SQLite) DescribeTable(ctx context.Context, q database.Querier, table string) (*schema.Table, error) {
	const query = `
		SELECT name, type, "notnull", dflt_value, pk
		FROM pragma_table_info(?)
		ORDER BY cid`

	rows, err := q.Query(ctx, query, table)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindUnknown, "describe table "+table, err)
	}
	defer rows.Close()

	t := &schema.Table{Name: table}
	for rows.Next() {
		var (
			col        schema.Column
			notNull    int64
			defaultVal *string
			pk         int64
		)
		if err := rows.Scan(&col.Name, &col.Type, &notNull, &defaultVal, &pk); err != nil {
			return nil, errs.Wrap(errs.ErrKindUnknown, "scan column", err)
		}
		col.AllowNull = notNull == 0
		col.PrimaryKey = pk > 0
		col.DefaultValue = ParseDefault(defaultVal)
		t.Columns = append(t.Columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(t.Columns) == 0 {
		return nil, errs.Newf(errs.ErrKindNotFound, "table %s not found or has no columns", table)
	}
	return t, nil
}

func (s *SQLite) ForeignKeysQuery(table, _ string) (string, []any) {
	return `SELECT * FROM pragma_foreign_key_list(?)`, []any{table}
}
