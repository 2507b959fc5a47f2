package cli

import (
	"context"

	"github.com/koustreak/automodel/internal/config"
	"github.com/koustreak/automodel/internal/emit"
	"github.com/koustreak/automodel/internal/filestore/minio"
	"github.com/koustreak/automodel/internal/generator"
	"github.com/koustreak/automodel/internal/render"
	"github.com/spf13/cobra"
)

func (a *app) newGenerateCommand() *cobra.Command {
	var additional []string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate models for every table",
		Example: `  automodel generate --driver postgres -d shop -u app -p secret
  automodel generate --driver sqlite -d ./app.db --tables users,teams --spaces --indentation 2
  automodel generate --additional timestamps=false --bucket models --prefix shop/`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runGenerate(cmd.Context(), additional)
		},
	}

	f := cmd.Flags()
	f.StringP("directory", "o", "", "output directory (default "+generator.DefaultDirectory+")")
	f.StringSliceP("tables", "t", nil, "only generate these tables")
	f.Bool("spaces", false, "indent with spaces instead of tabs")
	f.Int("indentation", 0, "indent characters per level")
	f.String("global", "", "ORM namespace used in generated code")
	f.String("local", "", "ORM instance variable used in generated code")
	f.StringArrayVarP(&additional, "additional", "a", nil, "extra table option as key=value, repeatable")
	f.String("bucket", "", "publish to this object storage bucket instead of a directory")
	f.String("prefix", "", "object key prefix when publishing to a bucket")
	f.String("endpoint", "", "object storage endpoint, host:port")
	f.String("access-key", "", "object storage access key")
	f.String("secret-key", "", "object storage secret key")
	f.Bool("use-ssl", false, "use TLS for object storage")

	a.bind(cmd, map[string]string{
		"output.directory":     "directory",
		"generate.tables":      "tables",
		"generate.spaces":      "spaces",
		"generate.indentation": "indentation",
		"generate.global":      "global",
		"generate.local":       "local",
		"output.bucket":        "bucket",
		"output.prefix":        "prefix",
		"output.endpoint":      "endpoint",
		"output.access_key":    "access-key",
		"output.secret_key":    "secret-key",
		"output.use_ssl":       "use-ssl",
	}, false)

	return cmd
}

func (a *app) runGenerate(ctx context.Context, additional []string) error {
	opts, err := a.generatorOptions(additional)
	if err != nil {
		return err
	}

	target, closeTarget, err := a.outputTarget(ctx)
	if err != nil {
		return err
	}
	defer closeTarget()
	opts.Target = target

	dbCfg, err := a.cfg.Connection()
	if err != nil {
		return err
	}
	g, err := generator.New(ctx, dbCfg, a.log)
	if err != nil {
		return err
	}
	if err := g.Run(ctx, opts); err != nil {
		return err
	}

	if a.cfg.Output.ObjectStore() {
		printSuccess(a.out, "models published to bucket %s", a.cfg.Output.Bucket)
	} else {
		printSuccess(a.out, "models written to %s", a.cfg.Output.Directory)
	}
	return nil
}

// generatorOptions merges --additional flags into the configured options.
func (a *app) generatorOptions(additional []string) (generator.Options, error) {
	extra := make([]render.KeyValue, 0, len(additional))
	for _, s := range additional {
		kv, err := config.ParseKeyValue(s)
		if err != nil {
			return generator.Options{}, err
		}
		extra = append(extra, kv)
	}
	a.cfg.Generate.Additional = a.cfg.Generate.Additional.Merge(extra...)
	return a.cfg.GeneratorOptions(), nil
}

// outputTarget returns an object storage target when a bucket is set, else
// nil so the generator writes to the configured directory.
func (a *app) outputTarget(ctx context.Context) (emit.Target, func(), error) {
	if !a.cfg.Output.ObjectStore() {
		return nil, func() {}, nil
	}
	cfg := a.cfg.Output.Filestore()
	store, err := minio.New(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return emit.NewObjectTarget(store, cfg.Bucket, cfg.Prefix), func() { _ = store.Close() }, nil
}
