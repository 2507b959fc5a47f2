package render

import (
	"strconv"
	"strings"

	"github.com/koustreak/automodel/internal/schema"
)

// modelRenderer emits <table>.js, a self-contained model definition.
type modelRenderer struct{ base }

func (r *modelRenderer) Kind() Kind { return KindModel }

func (r *modelRenderer) FileName(table string) string { return table + ".js" }

func (r *modelRenderer) Render(t *schema.Table) (string, error) {
	if err := checkTable(t); err != nil {
		return "", err
	}
	w := &codeWriter{base: r.base}

	w.line(0, "module.exports = function(%s, %s) {", r.opts.Local, r.opts.Global)
	w.line(1, "return %s.define(%s, {", r.opts.Local, quote(t.Name))

	for i := range t.Columns {
		col := &t.Columns[i]
		w.line(2, "%s: {", key(col.Name))
		w.b.WriteString(r.pad(3))
		w.b.WriteString(strings.Join(r.attributes(i, col), ",\n"+r.pad(3)))
		w.b.WriteByte('\n')
		if i+1 < len(t.Columns) {
			w.line(2, "},")
		} else {
			w.line(2, "}")
		}
	}

	w.line(1, "}, {")
	options := make([]string, 0, len(r.opts.Additional)+1)
	options = append(options, "tableName: "+quote(t.Name))
	for _, kv := range r.opts.Additional {
		options = append(options, key(kv.Key)+": "+kv.Value)
	}
	w.b.WriteString(r.pad(2))
	w.b.WriteString(strings.Join(options, ",\n"+r.pad(2)))
	w.b.WriteByte('\n')
	w.line(1, "});")
	w.line(0, "};")

	return w.String(), nil
}

// attributes returns the attribute entries of one column. A serial key gets
// autoIncrement and no default; any other foreign key gets a references
// block.
func (r *modelRenderer) attributes(i int, col *schema.Column) []string {
	var attrs []string
	serial := r.isSerial(col)

	primary := i == 0
	if primary {
		attrs = append(attrs, "primaryKey: true")
	}

	attrs = append(attrs, "type: "+r.typeExpr(col.Attributes))
	attrs = append(attrs, "allowNull: "+strconv.FormatBool(col.AllowNull))

	if col.DefaultValue != nil && !serial {
		attrs = append(attrs, "defaultValue: "+literal(col.DefaultValue))
	}

	if !primary && col.PrimaryKey && col.ForeignKey != nil && col.ForeignKey.IsPrimaryKey {
		attrs = append(attrs, "primaryKey: true")
	}

	switch {
	case serial:
		attrs = append(attrs, "autoIncrement: true")
	case col.ForeignKey != nil && col.ForeignKey.IsForeignKey:
		attrs = append(attrs, "references: {\n"+
			r.pad(4)+"model: "+quote(col.ForeignKey.TargetTable)+",\n"+
			r.pad(4)+"key: "+quote(col.ForeignKey.TargetColumn)+"\n"+
			r.pad(3)+"}")
	}
	return attrs
}

// typeExpr renders the ORM data type of a column, falling back to the raw
// catalog type as a quoted literal.
func (r *modelRenderer) typeExpr(attr schema.Attributes) string {
	if enum, ok := EnumType(attr); ok {
		return r.opts.Global + "." + enum
	}
	class, suffix := Classify(attr.Type)
	if class == Unknown {
		return quote(attr.Type)
	}
	return r.opts.Global + "." + class.DataType() + suffix
}
