package render

import (
	"regexp"
	"strings"

	"github.com/koustreak/automodel/internal/schema"
)

// Class is the target-type vocabulary raw catalog types map onto.
type Class int

const (
	Unknown Class = iota
	Boolean
	Integer
	BigInt
	String
	Text
	DateTime
	Double
	Float
	Decimal
	UUID
	JSONB
	JSON
	Geometry
)

var (
	integerPrefix = regexp.MustCompile(`^(smallint|mediumint|tinyint|int)`)
	lengthSuffix  = regexp.MustCompile(`\(\d+\)`)
)

// Classify maps a raw catalog type onto a Class. Matching is
// case-insensitive. For integers the first "(N)" length suffix of the raw
// type is returned as well, e.g. "INT(11)" → Integer, "(11)".
func Classify(raw string) (Class, string) {
	t := strings.ToLower(strings.TrimSpace(raw))

	switch {
	case t == "tinyint(1)" || t == "boolean":
		return Boolean, ""
	case integerPrefix.MatchString(t):
		return Integer, lengthSuffix.FindString(t)
	case strings.HasPrefix(t, "bigint"):
		return BigInt, ""
	case strings.HasPrefix(t, "string"),
		strings.Contains(t, "varchar"),
		strings.Contains(t, "varying"),
		strings.Contains(t, "nvarchar"):
		return String, ""
	case strings.Contains(t, "text"):
		return Text, ""
	case strings.HasPrefix(t, "date"), strings.HasPrefix(t, "time"):
		return DateTime, ""
	case strings.HasPrefix(t, "float8"), strings.HasPrefix(t, "double precision"):
		return Double, ""
	case strings.HasPrefix(t, "float"):
		return Float, ""
	case strings.HasPrefix(t, "decimal"):
		return Decimal, ""
	case strings.HasPrefix(t, "uuid"):
		return UUID, ""
	case strings.HasPrefix(t, "jsonb"):
		return JSONB, ""
	case strings.HasPrefix(t, "json"):
		return JSON, ""
	case strings.HasPrefix(t, "geometry"):
		return Geometry, ""
	default:
		return Unknown, ""
	}
}

// DataType is the ORM data type constant for c, without namespace.
func (c Class) DataType() string {
	switch c {
	case Boolean:
		return "BOOLEAN"
	case Integer:
		return "INTEGER"
	case BigInt:
		return "BIGINT"
	case String:
		return "STRING"
	case Text:
		return "TEXT"
	case DateTime:
		return "DATE"
	case Double:
		return "DOUBLE"
	case Float:
		return "FLOAT"
	case Decimal:
		return "DECIMAL"
	case UUID:
		return "UUIDV4"
	case JSONB:
		return "JSONB"
	case JSON:
		return "JSON"
	case Geometry:
		return "GEOMETRY"
	default:
		return ""
	}
}

// RecordType is the typed-record field type for c.
func (c Class) RecordType() string {
	switch c {
	case Boolean:
		return "Bool"
	case Integer, BigInt:
		return "Int"
	case String, Text, UUID:
		return "String"
	case DateTime:
		return "Date"
	case Double, Float, Decimal:
		return "Float"
	default:
		return "Dynamic"
	}
}

// EnumType returns the ENUM(...) type of an enum column: a USER-DEFINED
// column carrying labels in Special, or a raw type already spelled enum(...).
func EnumType(attr schema.Attributes) (string, bool) {
	if attr.Type == "USER-DEFINED" && len(attr.Special) > 0 {
		labels := make([]string, len(attr.Special))
		for i, s := range attr.Special {
			labels[i] = quote(s)
		}
		return "ENUM(" + strings.Join(labels, ",") + ")", true
	}
	if len(attr.Type) >= 5 && strings.EqualFold(attr.Type[:5], "enum(") {
		return "ENUM" + attr.Type[4:], true
	}
	return "", false
}
