package render

import (
	"github.com/koustreak/automodel/internal/schema"
)

// association is one has-one relation derived from a non-serial foreign key.
type association struct {
	Column schema.Column
	Target string // referenced table
	Key    string // referenced column
	Alias  string // association alias, unique within the table
	Var    string // JS variable holding the referenced model
}

// associations returns the relations of t in column order. The alias is the
// referenced table name; a second reference to the same table is aliased
// <table>_<column> so aliases stay unique.
func (b base) associations(t *schema.Table) []association {
	var out []association
	used := make(map[string]bool)
	for i := range t.Columns {
		col := t.Columns[i]
		if col.ForeignKey == nil || !col.ForeignKey.IsForeignKey || b.isSerial(&col) {
			continue
		}
		alias := col.ForeignKey.TargetTable
		if used[alias] {
			alias = alias + "_" + col.Name
		}
		used[alias] = true
		out = append(out, association{
			Column: col,
			Target: col.ForeignKey.TargetTable,
			Key:    col.ForeignKey.TargetColumn,
			Alias:  alias,
			Var:    b.modelVar(col.ForeignKey.TargetTable),
		})
	}
	return out
}

// modelVar is the JS variable for the model of table. Names that would
// shadow the base model m or the ORM variables get a _model suffix.
func (b base) modelVar(table string) string {
	v := ident(table)
	if v == "m" || v == b.opts.Local || v == b.opts.Global {
		v += "_model"
	}
	return v
}

// imports returns the distinct referenced tables of assocs in first-seen order.
func imports(assocs []association) []association {
	seen := make(map[string]bool)
	var out []association
	for _, a := range assocs {
		if seen[a.Target] {
			continue
		}
		seen[a.Target] = true
		out = append(out, a)
	}
	return out
}

// associationRenderer emits <table>.model.js: the base model plus one
// hasOne per foreign key.
type associationRenderer struct{ base }

func (r *associationRenderer) Kind() Kind { return KindAssociation }

func (r *associationRenderer) FileName(table string) string { return table + ".model.js" }

func (r *associationRenderer) Render(t *schema.Table) (string, error) {
	if err := checkTable(t); err != nil {
		return "", err
	}
	w := &codeWriter{base: r.base}
	assocs := r.associations(t)

	w.line(0, "module.exports = function(%s) {", r.opts.Local)
	w.line(1, "var m = %s.import(%s);", r.opts.Local, quote("./"+t.Name+".js"))
	for _, a := range imports(assocs) {
		w.line(1, "var %s = %s.import(%s);", a.Var, r.opts.Local, quote("./"+a.Target+".js"))
	}
	for _, a := range assocs {
		w.line(1, "m.hasOne(%s, { as: %s, foreignKey: %s });", a.Var, quote(a.Alias), quote(a.Key))
	}
	w.line(1, "return m;")
	w.line(0, "};")

	return w.String(), nil
}
