// Package render turns column descriptors into the four generated artifacts
// of a table: the model definition, the model with its associations, the
// repository helpers and the typed record.
package render

import (
	"fmt"
	"strings"

	"github.com/koustreak/automodel/internal/errs"
	"github.com/koustreak/automodel/internal/schema"
)

// Kind selects one of the four artifacts.
type Kind int

const (
	KindModel Kind = iota
	KindAssociation
	KindRepository
	KindTypedef
)

// Kinds lists every artifact kind in pass order.
var Kinds = []Kind{KindModel, KindAssociation, KindRepository, KindTypedef}

func (k Kind) String() string {
	switch k {
	case KindModel:
		return "model"
	case KindAssociation:
		return "association"
	case KindRepository:
		return "repository"
	case KindTypedef:
		return "typedef"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if k.String() == s {
			return k, nil
		}
	}
	return 0, errs.Newf(errs.ErrKindInvalidInput, "unknown artifact kind %q", s)
}

// KeyValue is an extra table option; Value is emitted verbatim.
type KeyValue struct {
	Key   string
	Value string
}

// Options control the shape of generated code.
type Options struct {
	Global      string // ORM namespace, e.g. Sequelize
	Local       string // ORM instance variable, e.g. sequelize
	Spaces      bool   // indent with spaces instead of tabs
	Indentation int    // indent repetitions, at least 1
	Additional  []KeyValue
}

// Defaults fills unset fields and appends freezeTableName: true to
// Additional unless the caller already set it.
func (o Options) Defaults() Options {
	if o.Global == "" {
		o.Global = "Sequelize"
	}
	if o.Local == "" {
		o.Local = "sequelize"
	}
	if o.Indentation < 1 {
		o.Indentation = 1
	}
	additional := make([]KeyValue, 0, len(o.Additional)+1)
	frozen := false
	for _, kv := range o.Additional {
		if kv.Key == "freezeTableName" {
			frozen = true
		}
		additional = append(additional, kv)
	}
	if !frozen {
		additional = append(additional, KeyValue{Key: "freezeTableName", Value: "true"})
	}
	o.Additional = additional
	return o
}

// Indent returns one indentation unit.
func (o Options) Indent() string {
	unit := "\t"
	if o.Spaces {
		unit = " "
	}
	return strings.Repeat(unit, max(o.Indentation, 1))
}

// Renderer produces one artifact kind.
type Renderer interface {
	Kind() Kind
	FileName(table string) string
	Render(t *schema.Table) (string, error)
}

// SerialFunc reports whether a column's reference marks a serial key.
type SerialFunc func(*schema.ForeignKeyRef) bool

// New returns the renderer for kind. serial may be nil, in which case no
// column is treated as serial.
func New(kind Kind, opts Options, serial SerialFunc) (Renderer, error) {
	if serial == nil {
		serial = func(*schema.ForeignKeyRef) bool { return false }
	}
	base := base{opts: opts.Defaults(), serial: serial}
	base.indent = base.opts.Indent()

	switch kind {
	case KindModel:
		return &modelRenderer{base}, nil
	case KindAssociation:
		return &associationRenderer{base}, nil
	case KindRepository:
		return &repositoryRenderer{base}, nil
	case KindTypedef:
		return &typedefRenderer{base}, nil
	default:
		return nil, errs.Newf(errs.ErrKindInvalidInput, "unknown artifact kind %d", int(kind))
	}
}

// base carries what every renderer shares.
type base struct {
	opts   Options
	indent string
	serial SerialFunc
}

// isSerial reports whether col is a serial key: it has a reference and the
// dialect's predicate accepts it.
func (b base) isSerial(col *schema.Column) bool {
	return col.ForeignKey != nil && b.serial(col.ForeignKey)
}

// pad returns depth indentation units.
func (b base) pad(depth int) string {
	return strings.Repeat(b.indent, depth)
}

func checkTable(t *schema.Table) error {
	if t == nil || t.Name == "" {
		return errs.New(errs.ErrKindInvalidInput, "render: table has no name")
	}
	return nil
}

// codeWriter accumulates indented lines.
type codeWriter struct {
	b    strings.Builder
	base base
}

func (w *codeWriter) line(depth int, format string, args ...any) {
	w.b.WriteString(w.base.pad(depth))
	if len(args) == 0 {
		w.b.WriteString(format)
	} else {
		fmt.Fprintf(&w.b, format, args...)
	}
	w.b.WriteByte('\n')
}

func (w *codeWriter) String() string { return w.b.String() }
