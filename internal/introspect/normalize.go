package introspect

import (
	"context"
	"strings"

	"github.com/koustreak/automodel/internal/database"
	"github.com/koustreak/automodel/internal/dialect"
	"github.com/koustreak/automodel/internal/errs"
	"github.com/koustreak/automodel/internal/logger"
	"github.com/koustreak/automodel/internal/schema"
	"golang.org/x/sync/errgroup"
)

// Field aliases used by the dialects' foreign-key rows. SQLite's
// pragma_foreign_key_list reports from/to/table.
var (
	sourceColumnFields = []string{"source_column", "from"}
	targetColumnFields = []string{"target_column", "to"}
	targetTableFields  = []string{"target_table", "table"}
)

// Normalizer turns dialect foreign-key rows into a ForeignKeyIndex.
type Normalizer struct {
	q            database.Querier
	dialect      dialect.Dialect
	databaseName string
	log          *logger.Logger
	workers      int
}

// NewNormalizer creates a Normalizer. databaseName is passed to the
// dialect's foreign-key query.
func NewNormalizer(q database.Querier, d dialect.Dialect, databaseName string, log *logger.Logger) *Normalizer {
	if log == nil {
		log = logger.Nop()
	}
	return &Normalizer{q: q, dialect: d, databaseName: databaseName, log: log, workers: defaultWorkers}
}

// NormalizeRow resolves the aliased fields of a raw foreign-key row. Missing
// fields resolve to "".
func NormalizeRow(table string, raw map[string]any, d dialect.Dialect) *schema.ForeignKeyRef {
	source := firstField(raw, sourceColumnFields)
	target := firstField(raw, targetColumnFields)

	return &schema.ForeignKeyRef{
		SourceTable:  table,
		SourceColumn: source,
		TargetTable:  firstField(raw, targetTableFields),
		TargetColumn: target,
		IsForeignKey: strings.TrimSpace(source) != "" && strings.TrimSpace(target) != "",
		IsPrimaryKey: dialect.IsPrimaryKey(d, raw),
		Raw:          raw,
	}
}

func firstField(raw map[string]any, names []string) string {
	for _, name := range names {
		if v := database.Text(raw[name]); v != "" {
			return v
		}
	}
	return ""
}

// ForeignKeys returns the indexed references of one table keyed by source
// column. It returns nil, nil when the dialect has no foreign-key query.
func (n *Normalizer) ForeignKeys(ctx context.Context, table string) (map[string]*schema.ForeignKeyRef, error) {
	fk, ok := n.dialect.(dialect.ForeignKeyQuerier)
	if !ok {
		return nil, nil
	}

	query, args := fk.ForeignKeysQuery(table, n.databaseName)
	rows, err := n.q.Query(ctx, query, args...)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindUnknown, "foreign keys of "+table, err)
	}
	raw, err := database.ScanRows(rows)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindUnknown, "foreign keys of "+table, err)
	}

	ix := schema.ForeignKeyIndex{}
	for _, row := range raw {
		ix.Put(NormalizeRow(table, row, n.dialect))
	}
	return ix[table], nil
}

// Index builds the ForeignKeyIndex for tables. Tables are queried
// concurrently; a failing table is logged and left out of the index, and
// never fails the whole index.
func (n *Normalizer) Index(ctx context.Context, tables []string) schema.ForeignKeyIndex {
	slots := make([]map[string]*schema.ForeignKeyRef, len(tables))

	var eg errgroup.Group
	eg.SetLimit(n.workers)

	for i, table := range tables {
		i, table := i, table
		eg.Go(func() error {
			refs, err := n.ForeignKeys(ctx, table)
			if err != nil {
				n.log.Table(table).WarnWith("skipping foreign keys", err, nil)
				return nil
			}
			slots[i] = refs
			return nil
		})
	}
	_ = eg.Wait()

	ix := make(schema.ForeignKeyIndex, len(tables))
	for i, table := range tables {
		if len(slots[i]) > 0 {
			ix[table] = slots[i]
		}
	}
	return ix
}
