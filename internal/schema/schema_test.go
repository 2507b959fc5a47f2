package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestForeignKeyIndex_Put(t *testing.T) {
	ix := ForeignKeyIndex{}

	ix.Put(&ForeignKeyRef{SourceTable: "users", SourceColumn: "team_id", TargetTable: "teams", TargetColumn: "id", IsForeignKey: true})
	ix.Put(&ForeignKeyRef{SourceTable: "users", SourceColumn: "id", IsPrimaryKey: true})
	ix.Put(&ForeignKeyRef{SourceTable: "users", SourceColumn: "note"})
	ix.Put(nil)

	assert.Len(t, ix["users"], 2)
	assert.Equal(t, "teams", ix.Lookup("users", "team_id").TargetTable)
	assert.True(t, ix.Lookup("users", "id").IsPrimaryKey)
	assert.Nil(t, ix.Lookup("users", "note"))
	assert.Nil(t, ix.Lookup("ghosts", "id"))
}

func TestForeignKeyIndex_PutReplaces(t *testing.T) {
	ix := ForeignKeyIndex{}
	ix.Put(&ForeignKeyRef{SourceTable: "users", SourceColumn: "id", IsPrimaryKey: true})
	ix.Put(&ForeignKeyRef{SourceTable: "users", SourceColumn: "id", TargetTable: "accounts", TargetColumn: "id", IsForeignKey: true})

	got := ix.Lookup("users", "id")
	assert.True(t, got.IsForeignKey)
	assert.False(t, got.IsPrimaryKey)
}

func TestForeignKeyIndex_Attach(t *testing.T) {
	ix := ForeignKeyIndex{}
	ref := &ForeignKeyRef{SourceTable: "users", SourceColumn: "team_id", TargetTable: "teams", TargetColumn: "id", IsForeignKey: true}
	ix.Put(ref)

	stale := &ForeignKeyRef{SourceTable: "users", SourceColumn: "email", IsForeignKey: true}
	tbl := &Table{
		Name: "users",
		Columns: []Column{
			{Name: "id"},
			{Name: "email", Attributes: Attributes{ForeignKey: stale}},
			{Name: "team_id"},
		},
	}
	ix.Attach(tbl)

	assert.Nil(t, tbl.Column("id").ForeignKey)
	assert.Nil(t, tbl.Column("email").ForeignKey)
	assert.Same(t, ref, tbl.Column("team_id").ForeignKey)
}

func TestTable_Column(t *testing.T) {
	tbl := &Table{Name: "teams", Columns: []Column{{Name: "id"}, {Name: "name"}}}

	assert.Equal(t, []string{"id", "name"}, tbl.ColumnNames())
	assert.Equal(t, "name", tbl.Column("name").Name)
	assert.Nil(t, tbl.Column("missing"))
}
