package dialect

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/koustreak/automodel/internal/database"
	"github.com/koustreak/automodel/internal/errs"
	"github.com/koustreak/automodel/internal/schema"
)

// MSSQL reads INFORMATION_SCHEMA and sys.columns of one SQL Server schema.
// Its table listing returns structured rows keyed by tableName.
type MSSQL struct {
	Schema string
}

func (m *MSSQL) Name() string { return string(database.DriverMSSQL) }

func (m *MSSQL) TableNameField() string { return "tableName" }

func (m *MSSQL) ListTablesQuery() (string, []any) {
	const q = `
		SELECT TABLE_NAME AS tableName, TABLE_SCHEMA AS tableSchema
		FROM INFORMATION_SCHEMA.TABLES
		WHERE TABLE_TYPE = 'BASE TABLE'
		  AND TABLE_SCHEMA = @p1
		ORDER BY TABLE_NAME`
	return q, []any{m.Schema}
}

func (m *MSSQL) DescribeTable(ctx context.Context, q database.Querier, table string) (*schema.Table, error) {
	const query = `
		SELECT c.COLUMN_NAME,
		       c.DATA_TYPE,
		       c.CHARACTER_MAXIMUM_LENGTH,
		       c.IS_NULLABLE,
		       c.COLUMN_DEFAULT,
		       CASE WHEN pk.COLUMN_NAME IS NULL THEN 0 ELSE 1 END AS primary_key
		FROM INFORMATION_SCHEMA.COLUMNS c
		LEFT JOIN (
			SELECT cu.TABLE_SCHEMA, cu.TABLE_NAME, cu.COLUMN_NAME
			FROM INFORMATION_SCHEMA.TABLE_CONSTRAINTS tc
			JOIN INFORMATION_SCHEMA.KEY_COLUMN_USAGE cu
			  ON tc.CONSTRAINT_NAME = cu.CONSTRAINT_NAME
			 AND tc.TABLE_SCHEMA    = cu.TABLE_SCHEMA
			 AND tc.TABLE_NAME      = cu.TABLE_NAME
			WHERE tc.CONSTRAINT_TYPE = 'PRIMARY KEY'
		) pk
		  ON pk.TABLE_SCHEMA = c.TABLE_SCHEMA
		 AND pk.TABLE_NAME   = c.TABLE_NAME
		 AND pk.COLUMN_NAME  = c.COLUMN_NAME
		WHERE c.TABLE_SCHEMA = @p1 AND c.TABLE_NAME = @p2
		ORDER BY c.ORDINAL_POSITION`

	rows, err := q.Query(ctx, query, m.Schema, table)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindUnknown, "describe table "+m.Schema+"."+table, err)
	}
	defer rows.Close()

	t := &schema.Table{Name: table}
	for rows.Next() {
		var (
			col        schema.Column
			dataType   string
			maxLen     sql.NullInt64
			nullable   string
			defaultVal *string
			pk         int64
		)
		if err := rows.Scan(&col.Name, &dataType, &maxLen, &nullable, &defaultVal, &pk); err != nil {
			return nil, errs.Wrap(errs.ErrKindUnknown, "scan column", err)
		}
		col.Type = mssqlType(dataType, maxLen)
		col.AllowNull = strings.EqualFold(nullable, "YES")
		col.PrimaryKey = pk == 1
		if defaultVal != nil {
			stripped := stripParens(strings.TrimSpace(*defaultVal))
			col.DefaultValue = ParseDefault(&stripped)
		}
		t.Columns = append(t.Columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(t.Columns) == 0 {
		return nil, errs.Newf(errs.ErrKindNotFound, "table %s.%s not found or has no columns", m.Schema, table)
	}
	return t, nil
}

func mssqlType(dataType string, maxLen sql.NullInt64) string {
	t := strings.ToUpper(dataType)
	switch {
	case !maxLen.Valid:
		return t
	case maxLen.Int64 == -1:
		return t + "(MAX)"
	default:
		return fmt.Sprintf("%s(%d)", t, maxLen.Int64)
	}
}

// ForeignKeysQuery returns every constraint the table's columns take part
// in, with the referenced table/column for foreign keys and the column's
// identity flag.
func (m *MSSQL) ForeignKeysQuery(table, _ string) (string, []any) {
	const q = `
		SELECT ccu.TABLE_NAME      AS source_table,
		       ccu.CONSTRAINT_NAME AS constraint_name,
		       ccu.COLUMN_NAME     AS source_column,
		       kcu.TABLE_NAME      AS target_table,
		       kcu.COLUMN_NAME     AS target_column,
		       tc.CONSTRAINT_TYPE  AS constraint_type,
		       c.is_identity       AS is_identity
		FROM INFORMATION_SCHEMA.TABLE_CONSTRAINTS tc
		JOIN INFORMATION_SCHEMA.CONSTRAINT_COLUMN_USAGE ccu
		  ON ccu.CONSTRAINT_NAME = tc.CONSTRAINT_NAME
		 AND ccu.TABLE_SCHEMA    = tc.TABLE_SCHEMA
		LEFT JOIN INFORMATION_SCHEMA.REFERENTIAL_CONSTRAINTS rc
		  ON rc.CONSTRAINT_NAME = ccu.CONSTRAINT_NAME
		LEFT JOIN INFORMATION_SCHEMA.KEY_COLUMN_USAGE kcu
		  ON kcu.CONSTRAINT_NAME = rc.UNIQUE_CONSTRAINT_NAME
		 AND tc.CONSTRAINT_TYPE  = 'FOREIGN KEY'
		JOIN sys.columns c
		  ON c.name = ccu.COLUMN_NAME
		 AND c.object_id = OBJECT_ID(QUOTENAME(ccu.TABLE_SCHEMA) + '.' + QUOTENAME(ccu.TABLE_NAME))
		WHERE ccu.TABLE_NAME = @p1
		  AND ccu.TABLE_SCHEMA = @p2`
	return q, []any{table, m.Schema}
}

func (m *MSSQL) IsPrimaryKey(raw map[string]any) bool {
	return database.Text(raw["constraint_type"]) == "PRIMARY KEY"
}

func (m *MSSQL) IsSerialKey(ref *schema.ForeignKeyRef) bool {
	return database.Truthy(ref.Raw["is_identity"])
}
