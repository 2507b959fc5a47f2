// Package cli wires the automodel commands.
package cli

import (
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/koustreak/automodel/internal/config"
	"github.com/koustreak/automodel/internal/logger"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// app is the state shared by every command of one invocation.
type app struct {
	fs      afero.Fs
	v       *viper.Viper
	cfgFile string
	out     io.Writer

	// mu guards cfg and log, which serve --watch reloads.
	mu  sync.RWMutex
	cfg *config.Config
	log *logger.Logger
}

// NewRootCommand builds the command tree.
func NewRootCommand(version string) *cobra.Command {
	a := &app{fs: afero.NewOsFs(), v: config.NewViper(), out: os.Stdout}

	root := &cobra.Command{
		Use:           "automodel",
		Short:         "Generate ORM models from a live database schema",
		Long:          "automodel reads the tables of a database and writes a model, an association module, a repository module and a typed record for each of them.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			a.out = cmd.OutOrStdout()
			return a.load()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&a.cfgFile, "config", "c", "", "config file (default ./"+config.DefaultFile+")")
	pf.String("driver", "", "database driver: postgres, mysql, sqlite, mssql")
	pf.String("host", "", "database host")
	pf.Int("port", 0, "database port")
	pf.StringP("user", "u", "", "database user")
	pf.StringP("password", "p", "", "database password")
	pf.StringP("database", "d", "", "database name, or file path for sqlite")
	pf.StringP("schema", "s", "", "schema to read (postgres, mssql)")
	pf.String("dsn", "", "connection string, overrides host/port/user/password")
	pf.String("log-level", "", "debug, info, warn or error")
	pf.String("log-format", "", "console or json")

	a.bind(root, map[string]string{
		"database.driver":   "driver",
		"database.host":     "host",
		"database.port":     "port",
		"database.user":     "user",
		"database.password": "password",
		"database.name":     "database",
		"database.schema":   "schema",
		"database.dsn":      "dsn",
		"log.level":         "log-level",
		"log.format":        "log-format",
	}, true)

	root.AddCommand(a.newGenerateCommand(), a.newTablesCommand(), a.newServeCommand())
	return root
}

// bind maps viper keys to flags of cmd.
func (a *app) bind(cmd *cobra.Command, keys map[string]string, persistent bool) {
	flags := cmd.Flags()
	if persistent {
		flags = cmd.PersistentFlags()
	}
	for key, flag := range keys {
		// only fails for a nil flag
		_ = a.v.BindPFlag(key, flags.Lookup(flag))
	}
}

// load resolves .env files, the config file and overrides, in that order.
func (a *app) load() error {
	if err := config.LoadDotEnv(a.fs, "."); err != nil {
		return err
	}

	path, optional := a.configPath()
	cfg, err := config.Load(a.fs, path, optional)
	if err != nil {
		return err
	}
	cfg.Override(a.v)
	log := logger.New(cfg.Log.Logger())
	log.Debugf("config: %s", path)

	a.mu.Lock()
	a.cfg, a.log = cfg, log
	a.mu.Unlock()
	return nil
}

func (a *app) current() (*config.Config, *logger.Logger) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.cfg, a.log
}

// configPath returns the explicit --config, else the first default location
// that exists. Default locations are optional.
func (a *app) configPath() (string, bool) {
	if a.cfgFile != "" {
		return a.cfgFile, false
	}
	candidates := []string{config.DefaultFile}
	if home, err := homedir.Dir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".config", "automodel", config.DefaultFile))
	}
	for _, c := range candidates {
		if _, err := a.fs.Stat(c); err == nil {
			return c, true
		}
	}
	return config.DefaultFile, true
}
