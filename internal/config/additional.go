package config

import (
	"strings"

	"github.com/koustreak/automodel/internal/errs"
	"github.com/koustreak/automodel/internal/render"
	"go.yaml.in/yaml/v3"
)

// Additional holds extra table options in the order they were written.
// YAML strings become quoted literals; other scalars are copied verbatim.
type Additional []render.KeyValue

func (a *Additional) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return errs.Newf(errs.ErrKindInvalidInput, "additional: line %d: expected a mapping", node.Line)
	}
	out := make(Additional, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		k, v := node.Content[i], node.Content[i+1]
		if v.Kind != yaml.ScalarNode {
			return errs.Newf(errs.ErrKindInvalidInput, "additional.%s: line %d: expected a scalar", k.Value, v.Line)
		}
		value := v.Value
		switch {
		case v.ShortTag() == "!!str":
			value = render.Quote(v.Value)
		case v.ShortTag() == "!!null":
			value = "null"
		}
		out = append(out, render.KeyValue{Key: k.Value, Value: value})
	}
	*a = out
	return nil
}

// ParseKeyValue parses a key=value command-line option.
func ParseKeyValue(s string) (render.KeyValue, error) {
	k, v, ok := strings.Cut(s, "=")
	k = strings.TrimSpace(k)
	if !ok || k == "" {
		return render.KeyValue{}, errs.Newf(errs.ErrKindInvalidInput, "option %q is not key=value", s)
	}
	return render.KeyValue{Key: k, Value: render.Literal(v)}, nil
}

// Merge appends kvs to a. A key already present is overwritten in place.
func (a Additional) Merge(kvs ...render.KeyValue) Additional {
	out := append(Additional(nil), a...)
	for _, kv := range kvs {
		replaced := false
		for i := range out {
			if out[i].Key == kv.Key {
				out[i].Value = kv.Value
				replaced = true
				break
			}
		}
		if !replaced {
			out = append(out, kv)
		}
	}
	return out
}
