// Package introspect reads table lists, column descriptors and foreign-key
// constraints through a dialect.
package introspect

import (
	"context"

	"github.com/koustreak/automodel/internal/database"
	"github.com/koustreak/automodel/internal/dialect"
	"github.com/koustreak/automodel/internal/errs"
	"github.com/koustreak/automodel/internal/logger"
	"github.com/koustreak/automodel/internal/schema"
	"golang.org/x/sync/errgroup"
)

const defaultWorkers = 8

// Reader lists tables and describes their columns.
type Reader struct {
	q       database.Querier
	dialect dialect.Dialect
	log     *logger.Logger
	workers int
}

// NewReader creates a Reader. A nil log discards output.
func NewReader(q database.Querier, d dialect.Dialect, log *logger.Logger) *Reader {
	if log == nil {
		log = logger.Nop()
	}
	return &Reader{q: q, dialect: d, log: log, workers: defaultWorkers}
}

// Tables returns the discovered tables intersected with allow, in discovery
// order. An empty allow-list keeps every table; unknown names in allow are
// dropped without error.
func (r *Reader) Tables(ctx context.Context, allow []string) ([]string, error) {
	query, args := r.dialect.ListTablesQuery()

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindUnknown, "list tables", err)
	}
	raw, err := database.ScanRows(rows)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindUnknown, "list tables", err)
	}

	discovered := make([]string, 0, len(raw))
	for _, row := range raw {
		if name := tableName(row, r.dialect.TableNameField()); name != "" {
			discovered = append(discovered, name)
		}
	}

	tables := Intersect(discovered, allow)
	r.log.With().Int("discovered", len(discovered)).Int("selected", len(tables)).Logger().Debug("listed tables")
	return tables, nil
}

// tableName extracts the table name from a listing row: the named field for
// dialects that return structured rows, otherwise the only column.
func tableName(row map[string]any, field string) string {
	if field != "" {
		return database.Text(row[field])
	}
	for _, v := range row {
		return database.Text(v)
	}
	return ""
}

// Intersect keeps the entries of discovered that appear in allow, preserving
// discovered's order. A nil or empty allow keeps everything.
func Intersect(discovered, allow []string) []string {
	if len(allow) == 0 {
		return discovered
	}
	wanted := make(map[string]struct{}, len(allow))
	for _, name := range allow {
		wanted[name] = struct{}{}
	}
	out := make([]string, 0, len(allow))
	for _, name := range discovered {
		if _, ok := wanted[name]; ok {
			out = append(out, name)
		}
	}
	return out
}

// Describe returns the column descriptor of one table.
func (r *Reader) Describe(ctx context.Context, table string) (*schema.Table, error) {
	t, err := r.dialect.DescribeTable(ctx, r.q, table)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindUnknown, "describe "+table, err)
	}
	return t, nil
}

// DescribeAll describes every table concurrently. The result is in the
// order of tables. The first failure cancels the remaining describes and is
// returned.
func (r *Reader) DescribeAll(ctx context.Context, tables []string) ([]*schema.Table, error) {
	out := make([]*schema.Table, len(tables))

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(r.workers)

	for i, table := range tables {
		i, table := i, table
		eg.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			t, err := r.Describe(ctx, table)
			if err != nil {
				return err
			}
			// each task owns its slot
			out[i] = t
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
