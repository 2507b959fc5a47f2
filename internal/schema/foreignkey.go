package schema

// ForeignKeyRef is the canonical form of a dialect's foreign-key catalog row.
type ForeignKeyRef struct {
	SourceTable  string
	SourceColumn string
	TargetTable  string
	TargetColumn string

	// IsForeignKey holds iff both source and target column are non-blank.
	IsForeignKey bool

	// IsPrimaryKey is reported by dialects that return primary-key
	// constraints from the same catalog query.
	IsPrimaryKey bool

	// Raw is the unmodified catalog row, for dialect predicates that read
	// dialect-only fields such as "extra" or "is_identity".
	Raw map[string]any
}

// Indexed reports whether the ref belongs in a ForeignKeyIndex.
func (r *ForeignKeyRef) Indexed() bool {
	return r != nil && (r.IsForeignKey || r.IsPrimaryKey)
}

// ForeignKeyIndex maps table → source column → reference.
type ForeignKeyIndex map[string]map[string]*ForeignKeyRef

// Put stores ref under its source table and column, replacing any earlier
// ref for the same column. Refs that are neither foreign nor primary keys
// are ignored.
func (ix ForeignKeyIndex) Put(ref *ForeignKeyRef) {
	if !ref.Indexed() {
		return
	}
	cols, ok := ix[ref.SourceTable]
	if !ok {
		cols = make(map[string]*ForeignKeyRef)
		ix[ref.SourceTable] = cols
	}
	cols[ref.SourceColumn] = ref
}

// Lookup returns the ref for (table, column), or nil.
func (ix ForeignKeyIndex) Lookup(table, column string) *ForeignKeyRef {
	return ix[table][column]
}

// Attach sets ForeignKey on every column of t that has an indexed ref and
// clears it on the others.
func (ix ForeignKeyIndex) Attach(t *Table) {
	for i := range t.Columns {
		t.Columns[i].ForeignKey = ix.Lookup(t.Name, t.Columns[i].Name)
	}
}
