// Package config loads automodel.yaml, .env files and AUTOMODEL_*
// overrides into one Config.
package config

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/koustreak/automodel/internal/database"
	"github.com/koustreak/automodel/internal/errs"
	"github.com/koustreak/automodel/internal/filestore"
	"github.com/koustreak/automodel/internal/generator"
	"github.com/koustreak/automodel/internal/logger"
	"github.com/koustreak/automodel/internal/render"
	"github.com/spf13/afero"
	"go.yaml.in/yaml/v3"
)

// DefaultFile is the config file looked up when none is given.
const DefaultFile = "automodel.yaml"

// Config is the file form of a run.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Generate GenerateConfig `yaml:"generate"`
	Output   OutputConfig   `yaml:"output"`
	Log      LogConfig      `yaml:"log"`
}

type DatabaseConfig struct {
	Driver         string        `yaml:"driver"`
	Host           string        `yaml:"host"`
	Port           int           `yaml:"port"`
	User           string        `yaml:"user"`
	Password       string        `yaml:"password"`
	Name           string        `yaml:"database"`
	Schema         string        `yaml:"schema"`
	SSLMode        string        `yaml:"sslmode"`
	DSN            string        `yaml:"dsn"`
	MaxConns       int32         `yaml:"max_conns"`
	ConnectTimeout time.Duration `yaml:"connect_timeout"`
}

type GenerateConfig struct {
	Global      string     `yaml:"global"`
	Local       string     `yaml:"local"`
	Spaces      bool       `yaml:"spaces"`
	Indentation int        `yaml:"indentation"`
	Tables      []string   `yaml:"tables"`
	Additional  Additional `yaml:"additional"`
}

// OutputConfig selects where generated files go. A non-empty Bucket sends
// them to object storage instead of Directory.
type OutputConfig struct {
	Directory string `yaml:"directory"`
	Bucket    string `yaml:"bucket"`
	Prefix    string `yaml:"prefix"`
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	UseSSL    bool   `yaml:"use_ssl"`
	Region    string `yaml:"region"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the settings used when no file is present.
func Default() *Config {
	return &Config{
		Generate: GenerateConfig{
			Global:      "Sequelize",
			Local:       "sequelize",
			Indentation: 1,
		},
		Output: OutputConfig{Directory: generator.DefaultDirectory},
		Log:    LogConfig{Level: "info", Format: "console"},
	}
}

// Load reads path from fs over the defaults. A missing file is not an
// error when optional is true. A nil fs reads the OS filesystem.
func Load(fs afero.Fs, path string, optional bool) (*Config, error) {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	cfg := Default()

	f, err := fs.Open(path)
	if err != nil {
		if optional && os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, errs.Wrap(errs.ErrKindNotFound, "open config "+path, err)
	}
	defer f.Close()

	if err := Decode(f, cfg); err != nil {
		return nil, errs.Wrap(errs.ErrKindUnknown, "config "+path, err)
	}
	return cfg, nil
}

// Decode reads YAML from r into cfg. Keys absent from the document keep
// their current values.
func Decode(r io.Reader, cfg *Config) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && err != io.EOF {
		return errs.Wrap(errs.ErrKindInvalidInput, "invalid yaml", err)
	}
	return nil
}

// Connection converts the database section into a validated database.Config.
func (c *Config) Connection() (*database.Config, error) {
	driver, err := database.ParseDriver(c.Database.Driver)
	if err != nil {
		return nil, err
	}
	out := database.DefaultConfig(driver)
	out.Host = c.Database.Host
	out.Port = c.Database.Port
	out.User = c.Database.User
	out.Password = c.Database.Password
	out.Database = c.Database.Name
	out.Schema = c.Database.Schema
	out.SSLMode = c.Database.SSLMode
	out.DSN = c.Database.DSN
	out.MaxConns = database.WithDefault(c.Database.MaxConns, out.MaxConns)
	out.ConnectTimeout = database.WithDefault(c.Database.ConnectTimeout, out.ConnectTimeout)
	return out, out.Validate()
}

// GeneratorOptions converts the generate and output sections. Target is
// left nil; the caller picks it from Output.
func (c *Config) GeneratorOptions() generator.Options {
	return generator.Options{
		Global:      c.Generate.Global,
		Local:       c.Generate.Local,
		Spaces:      c.Generate.Spaces,
		Indentation: c.Generate.Indentation,
		Directory:   c.Output.Directory,
		Tables:      c.Generate.Tables,
		Additional:  []render.KeyValue(c.Generate.Additional),
	}
}

// ObjectStore reports whether output goes to a bucket.
func (o OutputConfig) ObjectStore() bool {
	return o.Bucket != ""
}

// Filestore returns the object storage settings of the output section.
func (o OutputConfig) Filestore() *filestore.Config {
	cfg := filestore.DefaultConfig(o.Endpoint, o.AccessKey, o.SecretKey)
	cfg.UseSSL = o.UseSSL
	cfg.Region = o.Region
	cfg.Bucket = o.Bucket
	cfg.Prefix = o.Prefix
	return cfg
}

// Logger returns the logger settings of the log section.
func (l LogConfig) Logger() *logger.Config {
	cfg := logger.DefaultConfig()
	if l.Level != "" {
		cfg.Level = strings.ToLower(l.Level)
	}
	if l.Format != "" {
		cfg.Format = strings.ToLower(l.Format)
	}
	return cfg
}
