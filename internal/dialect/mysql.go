package dialect

import (
	"context"
	"strings"

	"github.com/koustreak/automodel/internal/database"
	"github.com/koustreak/automodel/internal/errs"
	"github.com/koustreak/automodel/internal/schema"
)

// MySQL reads information_schema for one database (schema = database in MySQL).
type MySQL struct {
	Database string
}

func (m *MySQL) Name() string { return string(database.DriverMySQL) }

func (m *MySQL) TableNameField() string { return "" }

func (m *MySQL) ListTablesQuery() (string, []any) {
	const q = `
		SELECT TABLE_NAME
		FROM information_schema.TABLES
		WHERE TABLE_SCHEMA = ?
		  AND TABLE_TYPE   = 'BASE TABLE'
		ORDER BY TABLE_NAME`
	return q, []any{m.Database}
}

// DescribeTable returns column details for a single table. Defaults are
// kept as the raw strings MySQL reports.
func (m *MySQL) DescribeTable(ctx context.Context, q database.Querier, table string) (*schema.Table, error) {
	const query = `
		SELECT COLUMN_NAME,
		       COLUMN_TYPE,
		       IS_NULLABLE = 'YES',
		       COLUMN_DEFAULT,
		       COLUMN_KEY = 'PRI'
		FROM information_schema.COLUMNS
		WHERE TABLE_SCHEMA = ? AND TABLE_NAME = ?
		ORDER BY ORDINAL_POSITION`

	rows, err := q.Query(ctx, query, m.Database, table)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindUnknown, "describe table "+m.Database+"."+table, err)
	}
	defer rows.Close()

	t := &schema.Table{Name: table}
	for rows.Next() {
		var (
			col        schema.Column
			columnType string
			defaultVal *string
		)
		if err := rows.Scan(&col.Name, &columnType, &col.AllowNull, &defaultVal, &col.PrimaryKey); err != nil {
			return nil, errs.Wrap(errs.ErrKindUnknown, "scan column", err)
		}
		col.Type = mysqlType(columnType)
		if defaultVal != nil {
			col.DefaultValue = *defaultVal
		}
		t.Columns = append(t.Columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(t.Columns) == 0 {
		return nil, errs.Newf(errs.ErrKindNotFound, "table %s.%s not found or has no columns", m.Database, table)
	}
	return t, nil
}

// mysqlType upper-cases COLUMN_TYPE the way SHOW COLUMNS clients expect,
// leaving enum labels untouched.
func mysqlType(columnType string) string {
	if strings.HasPrefix(strings.ToLower(columnType), "enum(") {
		return "ENUM" + columnType[4:]
	}
	return strings.ToUpper(columnType)
}

// ForeignKeysQuery lists every key column usage of table, including the
// PRIMARY constraint, joined with the column's EXTRA so auto_increment
// columns can be recognised.
func (m *MySQL) ForeignKeysQuery(table, databaseName string) (string, []any) {
	const q = `
		SELECT K.CONSTRAINT_NAME         AS constraint_name,
		       K.CONSTRAINT_SCHEMA       AS source_schema,
		       K.TABLE_NAME              AS source_table,
		       K.COLUMN_NAME             AS source_column,
		       K.REFERENCED_TABLE_SCHEMA AS target_schema,
		       K.REFERENCED_TABLE_NAME   AS target_table,
		       K.REFERENCED_COLUMN_NAME  AS target_column,
		       C.EXTRA                   AS extra,
		       C.COLUMN_KEY              AS column_key
		FROM information_schema.KEY_COLUMN_USAGE AS K
		LEFT JOIN information_schema.COLUMNS AS C
		  ON C.TABLE_NAME   = K.TABLE_NAME
		 AND C.COLUMN_NAME  = K.COLUMN_NAME
		 AND C.TABLE_SCHEMA = K.CONSTRAINT_SCHEMA
		WHERE K.TABLE_NAME = ?
		  AND K.CONSTRAINT_SCHEMA = ?`
	if databaseName == "" {
		databaseName = m.Database
	}
	return q, []any{table, databaseName}
}

func (m *MySQL) IsPrimaryKey(raw map[string]any) bool {
	return database.Text(raw["constraint_name"]) == "PRIMARY"
}

func (m *MySQL) IsSerialKey(ref *schema.ForeignKeyRef) bool {
	return database.Text(ref.Raw["extra"]) == "auto_increment"
}
