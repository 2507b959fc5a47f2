package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/koustreak/automodel/internal/errs"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. AUTOMODEL_DATABASE_HOST.
const EnvPrefix = "AUTOMODEL"

// LoadDotEnv exports the variables of .env and then .env.local from dir.
// Variables already in the environment win over .env; .env.local wins over
// both. Missing files are skipped.
func LoadDotEnv(fs afero.Fs, dir string) error {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if err := loadEnvFile(fs, filepath.Join(dir, ".env"), false); err != nil {
		return err
	}
	return loadEnvFile(fs, filepath.Join(dir, ".env.local"), true)
}

func loadEnvFile(fs afero.Fs, path string, override bool) error {
	f, err := fs.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errs.Wrap(errs.ErrKindInvalidInput, "open "+path, err)
	}
	defer f.Close()

	vars, err := godotenv.Parse(f)
	if err != nil {
		return errs.Wrap(errs.ErrKindInvalidInput, "parse "+path, err)
	}
	for k, v := range vars {
		if _, set := os.LookupEnv(k); set && !override {
			continue
		}
		if err := os.Setenv(k, v); err != nil {
			return errs.Wrap(errs.ErrKindInvalidInput, "set "+k, err)
		}
	}
	return nil
}

// NewViper returns a viper instance that resolves keys such as
// "database.host" from AUTOMODEL_DATABASE_HOST.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

// Override copies every key v has a value for (a changed flag or an
// environment variable) over the file values.
func (c *Config) Override(v *viper.Viper) {
	setString(v, "database.driver", &c.Database.Driver)
	setString(v, "database.host", &c.Database.Host)
	setInt(v, "database.port", &c.Database.Port)
	setString(v, "database.user", &c.Database.User)
	setString(v, "database.password", &c.Database.Password)
	setString(v, "database.name", &c.Database.Name)
	setString(v, "database.schema", &c.Database.Schema)
	setString(v, "database.sslmode", &c.Database.SSLMode)
	setString(v, "database.dsn", &c.Database.DSN)

	setString(v, "generate.global", &c.Generate.Global)
	setString(v, "generate.local", &c.Generate.Local)
	setBool(v, "generate.spaces", &c.Generate.Spaces)
	setInt(v, "generate.indentation", &c.Generate.Indentation)
	if v.IsSet("generate.tables") {
		c.Generate.Tables = splitList(v.GetStringSlice("generate.tables"))
	}

	setString(v, "output.directory", &c.Output.Directory)
	setString(v, "output.bucket", &c.Output.Bucket)
	setString(v, "output.prefix", &c.Output.Prefix)
	setString(v, "output.endpoint", &c.Output.Endpoint)
	setString(v, "output.access_key", &c.Output.AccessKey)
	setString(v, "output.secret_key", &c.Output.SecretKey)
	setBool(v, "output.use_ssl", &c.Output.UseSSL)
	setString(v, "output.region", &c.Output.Region)

	setString(v, "log.level", &c.Log.Level)
	setString(v, "log.format", &c.Log.Format)
}

func setString(v *viper.Viper, key string, dst *string) {
	if v.IsSet(key) {
		*dst = v.GetString(key)
	}
}

func setInt(v *viper.Viper, key string, dst *int) {
	if v.IsSet(key) {
		*dst = v.GetInt(key)
	}
}

func setBool(v *viper.Viper, key string, dst *bool) {
	if v.IsSet(key) {
		*dst = v.GetBool(key)
	}
}

// splitList accepts both repeated values and comma-separated ones.
func splitList(in []string) []string {
	var out []string
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
