package render

import (
	"github.com/koustreak/automodel/internal/schema"
)

// typedefRenderer emits DB__<table>.hx, a structural record of the table's
// columns. Keys, nullability and defaults are not part of it.
type typedefRenderer struct{ base }

func (r *typedefRenderer) Kind() Kind { return KindTypedef }

func (r *typedefRenderer) FileName(table string) string { return "DB__" + table + ".hx" }

func (r *typedefRenderer) Render(t *schema.Table) (string, error) {
	if err := checkTable(t); err != nil {
		return "", err
	}
	w := &codeWriter{base: r.base}

	w.line(0, "typedef DB__%s = {", ident(t.Name))
	for i, col := range t.Columns {
		sep := ","
		if i == len(t.Columns)-1 {
			sep = ""
		}
		w.line(1, "%s: %s%s", ident(col.Name), recordType(col.Attributes), sep)
	}
	w.line(0, "};")

	return w.String(), nil
}

// recordType maps a column onto the record vocabulary. Enums are strings;
// anything unrecognised is Dynamic.
func recordType(attr schema.Attributes) string {
	if _, ok := EnumType(attr); ok {
		return "String"
	}
	class, _ := Classify(attr.Type)
	return class.RecordType()
}
