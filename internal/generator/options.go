package generator

import (
	"github.com/koustreak/automodel/internal/emit"
	"github.com/koustreak/automodel/internal/render"
)

// DefaultDirectory is where generated files go when no target is set.
const DefaultDirectory = "./models"

// Options configure one Run. The zero value is usable.
type Options struct {
	// Global is the ORM namespace referenced by generated code.
	Global string
	// Local is the variable name of the ORM instance.
	Local string
	// Spaces indents with spaces instead of tabs.
	Spaces bool
	// Indentation is the number of indent characters per level.
	Indentation int
	// Directory receives the generated files unless Target is set.
	Directory string
	// Tables restricts generation to these tables. Empty means all.
	Tables []string
	// Additional options added to every table's options block.
	Additional []render.KeyValue
	// Target overrides Directory.
	Target emit.Target
}

func (o Options) withDefaults() Options {
	if o.Directory == "" {
		o.Directory = DefaultDirectory
	}
	if o.Target == nil {
		o.Target = emit.NewFSTarget(nil, o.Directory)
	}
	return o
}

func (o Options) render() render.Options {
	return render.Options{
		Global:      o.Global,
		Local:       o.Local,
		Spaces:      o.Spaces,
		Indentation: o.Indentation,
		Additional:  o.Additional,
	}.Defaults()
}
