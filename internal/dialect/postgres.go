package dialect

import (
	"context"
	"strings"

	"github.com/koustreak/automodel/internal/database"
	"github.com/koustreak/automodel/internal/errs"
	"github.com/koustreak/automodel/internal/schema"
)

// Postgres reads the PostgreSQL catalogs of a single schema.
type Postgres struct {
	Schema string
}

func (p *Postgres) Name() string { return string(database.DriverPostgres) }

func (p *Postgres) TableNameField() string { return "" }

// ListTablesQuery excludes PostGIS' spatial_ref_sys bookkeeping table.
func (p *Postgres) ListTablesQuery() (string, []any) {
	const q = `
		SELECT table_name::text
		FROM information_schema.tables
		WHERE table_schema = $1
		  AND table_type   = 'BASE TABLE'
		  AND table_name  <> 'spatial_ref_sys'
		ORDER BY table_name`
	return q, []any{p.Schema}
}

// DescribeTable returns column details for a single table. Array columns
// report their element udt name; enum columns carry their labels in Special.
func (p *Postgres) DescribeTable(ctx context.Context, q database.Querier, table string) (*schema.Table, error) {
	const query = `
		SELECT
			c.column_name::text,
			UPPER(CASE WHEN c.data_type = 'ARRAY' THEN c.udt_name::text ELSE c.data_type::text END)
				|| COALESCE('(' || c.character_maximum_length || ')', '') AS type,
			c.is_nullable = 'YES'                                          AS allow_null,
			c.column_default::text,
			EXISTS (
				SELECT 1
				FROM information_schema.table_constraints tc
				JOIN information_schema.key_column_usage kcu
					ON tc.constraint_name = kcu.constraint_name
					AND tc.table_schema = kcu.table_schema
				WHERE tc.constraint_type = 'PRIMARY KEY'
				  AND tc.table_schema = c.table_schema
				  AND tc.table_name   = c.table_name
				  AND kcu.column_name = c.column_name
			)                                                              AS primary_key,
			ARRAY(
				SELECT e.enumlabel::text
				FROM pg_catalog.pg_type t
				JOIN pg_catalog.pg_enum e ON e.enumtypid = t.oid
				WHERE t.typname = c.udt_name
				ORDER BY e.enumsortorder
			)                                                              AS special
		FROM information_schema.columns c
		WHERE c.table_schema = $1 AND c.table_name = $2
		ORDER BY c.ordinal_position`

	rows, err := q.Query(ctx, query, p.Schema, table)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindUnknown, "describe table "+p.Schema+"."+table, err)
	}
	defer rows.Close()

	t := &schema.Table{Name: table}
	for rows.Next() {
		var (
			col        schema.Column
			defaultVal *string
			special    []string
		)
		if err := rows.Scan(&col.Name, &col.Type, &col.AllowNull, &defaultVal, &col.PrimaryKey, &special); err != nil {
			return nil, errs.Wrap(errs.ErrKindUnknown, "scan column", err)
		}
		col.DefaultValue = ParseDefault(defaultVal)
		if col.Type == "USER-DEFINED" && len(special) > 0 {
			col.Special = special
		}
		t.Columns = append(t.Columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(t.Columns) == 0 {
		return nil, errs.Newf(errs.ErrKindNotFound, "table %s.%s not found or has no columns", p.Schema, table)
	}
	return t, nil
}

// ForeignKeysQuery lists the primary-key and foreign-key constraints of
// table, with the default expression and identity marker of the source
// column so serial keys can be recognised. Only the first column of a
// composite constraint is reported.
func (p *Postgres) ForeignKeysQuery(table, _ string) (string, []any) {
	const q = `
		SELECT
			o.conname::text                                            AS constraint_name,
			ns.nspname::text                                           AS source_schema,
			m.relname::text                                            AS source_table,
			(SELECT a.attname::text FROM pg_catalog.pg_attribute a
			  WHERE a.attrelid = m.oid AND a.attnum = o.conkey[1] AND NOT a.attisdropped)  AS source_column,
			fs.nspname::text                                           AS target_schema,
			f.relname::text                                            AS target_table,
			(SELECT a.attname::text FROM pg_catalog.pg_attribute a
			  WHERE a.attrelid = f.oid AND a.attnum = o.confkey[1] AND NOT a.attisdropped) AS target_column,
			o.contype::text                                            AS contype,
			(SELECT pg_get_expr(d.adbin, d.adrelid) FROM pg_catalog.pg_attrdef d
			  WHERE d.adrelid = m.oid AND d.adnum = o.conkey[1])       AS extra,
			(SELECT a.attidentity::text FROM pg_catalog.pg_attribute a
			  WHERE a.attrelid = m.oid AND a.attnum = o.conkey[1])     AS identity
		FROM pg_catalog.pg_constraint o
		JOIN pg_catalog.pg_class m       ON m.oid = o.conrelid
		JOIN pg_catalog.pg_namespace ns  ON ns.oid = m.relnamespace
		LEFT JOIN pg_catalog.pg_class f  ON f.oid = o.confrelid
		LEFT JOIN pg_catalog.pg_namespace fs ON fs.oid = f.relnamespace
		WHERE o.contype IN ('p', 'f')
		  AND m.relkind = 'r'
		  AND m.relname = $1
		  AND ns.nspname = $2
		ORDER BY o.conname`
	return q, []any{table, p.Schema}
}

// IsPrimaryKey reports primary-key constraint rows.
func (p *Postgres) IsPrimaryKey(raw map[string]any) bool {
	return database.Text(raw["contype"]) == "p"
}

// IsSerialKey recognises primary keys backed by a sequence default
// (serial/bigserial) or declared as identity columns.
func (p *Postgres) IsSerialKey(ref *schema.ForeignKeyRef) bool {
	if !p.IsPrimaryKey(ref.Raw) {
		return false
	}
	extra := database.Text(ref.Raw["extra"])
	if strings.HasPrefix(extra, "nextval") && strings.Contains(extra, "_seq") && strings.Contains(extra, "::regclass") {
		return true
	}
	switch database.Text(ref.Raw["identity"]) {
	case "a", "d":
		return true
	}
	return false
}
