// Package generator runs the introspect → render → emit pipeline once per
// artifact kind.
package generator

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/koustreak/automodel/internal/database"
	"github.com/koustreak/automodel/internal/database/mssql"
	"github.com/koustreak/automodel/internal/database/mysql"
	"github.com/koustreak/automodel/internal/database/postgres"
	"github.com/koustreak/automodel/internal/database/sqlite"
	"github.com/koustreak/automodel/internal/dialect"
	"github.com/koustreak/automodel/internal/emit"
	"github.com/koustreak/automodel/internal/errs"
	"github.com/koustreak/automodel/internal/introspect"
	"github.com/koustreak/automodel/internal/logger"
	"github.com/koustreak/automodel/internal/render"
	"golang.org/x/sync/errgroup"
)

// Generator owns the connection pool of one run.
type Generator struct {
	db           database.DB
	dialect      dialect.Dialect
	databaseName string
	log          *logger.Logger
	ran          atomic.Bool
}

// New opens the database described by cfg and selects its dialect.
func New(ctx context.Context, cfg *database.Config, log *logger.Logger) (*Generator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	db, err := Open(ctx, cfg)
	if err != nil {
		return nil, err
	}
	d, err := dialect.For(cfg.Driver, cfg.SchemaOrDefault())
	if err != nil {
		db.Close()
		return nil, err
	}
	return NewWithDB(db, d, cfg.Database, log), nil
}

// NewWithDB wraps an already opened pool.
func NewWithDB(db database.DB, d dialect.Dialect, databaseName string, log *logger.Logger) *Generator {
	if log == nil {
		log = logger.Nop()
	}
	return &Generator{
		db:           db,
		dialect:      d,
		databaseName: databaseName,
		log:          log.With().Str("dialect", d.Name()).Logger(),
	}
}

// Open connects to the engine named by cfg.Driver.
func Open(ctx context.Context, cfg *database.Config) (database.DB, error) {
	driver, err := database.ParseDriver(string(cfg.Driver))
	if err != nil {
		return nil, err
	}
	cfg.Driver = driver

	switch driver {
	case database.DriverPostgres:
		db, err := postgres.New(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return db, nil
	case database.DriverMySQL:
		db, err := mysql.New(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return db, nil
	case database.DriverSQLite:
		db, err := sqlite.New(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return db, nil
	case database.DriverMSSQL:
		db, err := mssql.New(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return db, nil
	default:
		return nil, errs.Newf(errs.ErrKindUnsupported, "unsupported database driver %q", driver)
	}
}

// Tables lists the tables a Run with the same allow-list would process.
func (g *Generator) Tables(ctx context.Context, allow []string) ([]string, error) {
	return introspect.NewReader(g.db, g.dialect, g.log).Tables(ctx, allow)
}

// Close closes the pool. Run closes it by itself; Close is for callers
// that never call Run.
func (g *Generator) Close() {
	g.db.Close()
}

// Run generates all four artifact kinds. The passes run concurrently and
// each releases the pool once it has rendered; the last release closes it.
// Run returns the first error of any pass after all passes have finished.
// A Generator can run only once.
func (g *Generator) Run(ctx context.Context, opts Options) error {
	if !g.ran.CompareAndSwap(false, true) {
		return errs.New(errs.ErrKindInvalidInput, "generator already ran; its connection is closed")
	}

	opts = opts.withDefaults()
	ropts := opts.render()
	shared := database.Share(g.db, len(render.Kinds))
	start := time.Now()

	var eg errgroup.Group
	for _, kind := range render.Kinds {
		kind := kind
		eg.Go(func() error {
			return g.pass(ctx, shared, kind, ropts, opts)
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}

	g.log.With().Int("passes", len(render.Kinds)).Str("elapsed", time.Since(start).String()).Logger().Info("generation finished")
	return nil
}

// pass runs list → normalize → describe → render, releases its hold on the
// pool, then writes.
func (g *Generator) pass(ctx context.Context, shared *database.Shared, kind render.Kind, ropts render.Options, opts Options) error {
	log := g.log.Pass(kind.String())

	release := sync.OnceFunc(func() { shared.Release() })
	defer release()

	r, err := render.New(kind, ropts, dialect.SerialPredicate(g.dialect))
	if err != nil {
		return err
	}

	reader := introspect.NewReader(shared, g.dialect, log)
	tables, err := reader.Tables(ctx, opts.Tables)
	if err != nil {
		return errs.Wrap(errs.ErrKindUnknown, kind.String()+" pass", err)
	}

	index := introspect.NewNormalizer(shared, g.dialect, g.databaseName, log).Index(ctx, tables)

	described, err := reader.DescribeAll(ctx, tables)
	if err != nil {
		return errs.Wrap(errs.ErrKindUnknown, kind.String()+" pass", err)
	}

	files := make([]emit.File, len(described))
	var rg errgroup.Group
	for i, t := range described {
		i, t := i, t
		rg.Go(func() error {
			index.Attach(t)
			text, err := r.Render(t)
			if err != nil {
				return err
			}
			files[i] = emit.File{Name: r.FileName(t.Name), Data: []byte(text)}
			return nil
		})
	}
	if err := rg.Wait(); err != nil {
		return errs.Wrap(errs.ErrKindUnknown, kind.String()+" pass", err)
	}

	release()
	log.With().Int("tables", len(files)).Logger().Debug("rendered")

	if err := emit.New(opts.Target, log).Write(ctx, files); err != nil {
		return errs.Wrap(errs.ErrKindUnknown, kind.String()+" pass", err)
	}
	log.With().Int("files", len(files)).Logger().Info("pass complete")
	return nil
}
