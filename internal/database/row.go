package database

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/koustreak/automodel/internal/errs"
)

// ScanRows reads all rows from the result set and returns them as a slice
// of maps keyed by column name. Catalog rows differ in shape across
// dialects, so the foreign-key normalizer works on these maps rather than
// on typed structs.
//
// Byte slices are converted to strings, since database/sql drivers hand
// text columns back as []byte when scanning into *any.
//
// The returned slice is always non-nil (empty slice on zero rows).
// ScanRows always closes the Rows.
func ScanRows(rows Rows) ([]map[string]any, error) {
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindQueryFailed, "failed to read column names", err)
	}

	result := make([]map[string]any, 0)

	for rows.Next() {
		dest := make([]any, len(columns))
		destPtrs := make([]any, len(columns))
		for i := range dest {
			destPtrs[i] = &dest[i]
		}

		if err := rows.Scan(destPtrs...); err != nil {
			return nil, errs.Wrap(errs.ErrKindQueryFailed, "failed to scan row", err)
		}

		row := make(map[string]any, len(columns))
		for i, col := range columns {
			if b, ok := dest[i].([]byte); ok {
				row[col] = string(b)
				continue
			}
			row[col] = dest[i]
		}
		result = append(result, row)
	}

	if err := rows.Err(); err != nil {
		return nil, errs.Wrap(errs.ErrKindQueryFailed, "error during row iteration", err)
	}

	return result, nil
}

// Text renders a scanned catalog value as a string. nil becomes "".
func Text(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}

// Truthy interprets the boolean-ish values catalogs return: bools, bit
// columns scanned as integers, and "1"/"true"/"YES" strings.
func Truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case int64:
		return t != 0
	case int32:
		return t != 0
	case int:
		return t != 0
	case []byte:
		return Truthy(string(t))
	case string:
		s := strings.TrimSpace(t)
		if strings.EqualFold(s, "yes") {
			return true
		}
		b, err := strconv.ParseBool(s)
		return err == nil && b
	default:
		return false
	}
}
