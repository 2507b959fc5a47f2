package cli

import (
	"context"

	"github.com/koustreak/automodel/internal/emit"
	"github.com/koustreak/automodel/internal/generator"
	"github.com/koustreak/automodel/internal/preview"
	"github.com/koustreak/automodel/internal/watch"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func (a *app) newServeCommand() *cobra.Command {
	var (
		addr     string
		watchCfg bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve generated models from memory for preview",
		Long:  "serve runs a generation into memory and serves the files over HTTP. POST /regenerate rebuilds them; with --watch the config file is watched too.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runServe(cmd.Context(), addr, watchCfg)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8089", "listen address")
	cmd.Flags().BoolVarP(&watchCfg, "watch", "w", false, "regenerate when the config file changes")
	return cmd
}

func (a *app) runServe(ctx context.Context, addr string, watchCfg bool) error {
	srv := preview.New(a.build, a.log)
	if _, err := srv.Regenerate(ctx); err != nil {
		return err
	}

	var w *watch.Watcher
	if watchCfg {
		path, _ := a.configPath()
		var err error
		w, err = watch.New(path, func(ctx context.Context) error {
			if err := a.load(); err != nil {
				return err
			}
			_, err := srv.Regenerate(ctx)
			return err
		}, a.log)
		if err != nil {
			return err
		}
	}

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		return srv.ListenAndServe(ctx, addr)
	})
	if w != nil {
		eg.Go(func() error { return w.Run(ctx) })
	}

	printSuccess(a.out, "preview at http://%s/files", addr)
	return eg.Wait()
}

// build runs one generation from the current config. A generator closes
// its pool after one run, so each build opens a new one.
func (a *app) build(ctx context.Context, target emit.Target) error {
	cfg, log := a.current()
	dbCfg, err := cfg.Connection()
	if err != nil {
		return err
	}
	g, err := generator.New(ctx, dbCfg, log)
	if err != nil {
		return err
	}
	opts := cfg.GeneratorOptions()
	opts.Target = target
	return g.Run(ctx, opts)
}
