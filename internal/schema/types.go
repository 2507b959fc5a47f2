// Package schema holds the build-scoped description of the tables a run
// generates code for: per-table column descriptors and the foreign-key
// index that decorates them.
package schema

// Attributes is the metadata a dialect reports for one column.
type Attributes struct {
	Type         string // raw catalog type, e.g. "INTEGER", "CHARACTER VARYING(255)"
	AllowNull    bool
	DefaultValue any // nil, string, bool, int64 or float64
	PrimaryKey   bool
	Special      []string // enum labels for USER-DEFINED types

	// ForeignKey is set by ForeignKeyIndex.Attach.
	ForeignKey *ForeignKeyRef
}

// Column is one entry of a table's column descriptor.
type Column struct {
	Name string
	Attributes
}

// Table is the column descriptor of a single table. Columns keep catalog
// order; the first entry is conventionally the primary key.
type Table struct {
	Name    string
	Columns []Column
}

// Column returns the named column, or nil.
func (t *Table) Column(name string) *Column {
	for i := range t.Columns {
		if t.Columns[i].Name == name {
			return &t.Columns[i]
		}
	}
	return nil
}

// ColumnNames returns the column names in order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}
