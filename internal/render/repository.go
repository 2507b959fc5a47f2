package render

import (
	"github.com/koustreak/automodel/internal/schema"
)

// repositoryRenderer emits <table>.repository.js: finder helpers on top of
// the association-aware model.
type repositoryRenderer struct{ base }

func (r *repositoryRenderer) Kind() Kind { return KindRepository }

func (r *repositoryRenderer) FileName(table string) string { return table + ".repository.js" }

func (r *repositoryRenderer) Render(t *schema.Table) (string, error) {
	if err := checkTable(t); err != nil {
		return "", err
	}
	w := &codeWriter{base: r.base}
	assocs := r.associations(t)

	w.line(0, "module.exports = function(%s) {", r.opts.Local)
	w.line(1, "var m = %s.import(%s);", r.opts.Local, quote("./"+t.Name+".model.js"))
	for _, a := range imports(assocs) {
		w.line(1, "var %s = %s.import(%s);", a.Var, r.opts.Local, quote("./"+a.Target+".model.js"))
	}

	for _, a := range assocs {
		w.line(1, "m.findWith_%s = function(limit) {", ident(a.Alias))
		w.line(2, "return m.findAll({")
		w.line(3, "include: [{ model: %s, as: %s }],", a.Var, quote(a.Alias))
		w.line(3, "limit: limit,")
		w.line(3, "raw: true")
		w.line(2, "}).then(function(rows) {")
		w.line(3, "console.log(rows);")
		w.line(3, "return rows;")
		w.line(2, "});")
		w.line(1, "};")
	}

	w.line(1, "m.findWithAssociations = function(limit, order, cb) {")
	w.line(2, "return m.findAll({")
	if len(assocs) == 0 {
		w.line(3, "include: [],")
	} else {
		w.line(3, "include: [")
		for i, a := range assocs {
			sep := ","
			if i == len(assocs)-1 {
				sep = ""
			}
			w.line(4, "{ model: %s, as: %s }%s", a.Var, quote(a.Alias), sep)
		}
		w.line(3, "],")
	}
	w.line(3, "order: order,")
	w.line(3, "limit: limit,")
	w.line(3, "raw: true")
	w.line(2, "}).then(function(rows) {")
	w.line(3, "cb(rows);")
	w.line(2, "});")
	w.line(1, "};")

	w.line(1, "m.findBy = function(attr, value, cb) {")
	w.line(2, "var where = {};")
	w.line(2, "where[attr] = value;")
	w.line(2, "return m.findAll({")
	w.line(3, "where: where,")
	w.line(3, "raw: true")
	w.line(2, "}).then(function(rows) {")
	w.line(3, "cb(rows);")
	w.line(2, "});")
	w.line(1, "};")

	w.line(1, "return m;")
	w.line(0, "};")

	return w.String(), nil
}
