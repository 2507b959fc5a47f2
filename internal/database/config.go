package database

import (
	"strings"
	"time"

	"github.com/koustreak/automodel/internal/errs"
)

// Driver identifies the database engine.
type Driver string

const (
	DriverPostgres Driver = "postgres"
	DriverMySQL    Driver = "mysql"
	DriverSQLite   Driver = "sqlite"
	DriverMSSQL    Driver = "mssql"
)

// ParseDriver accepts the driver names and common aliases users type.
func ParseDriver(name string) (Driver, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "postgres", "postgresql", "pg":
		return DriverPostgres, nil
	case "mysql", "mariadb":
		return DriverMySQL, nil
	case "sqlite", "sqlite3":
		return DriverSQLite, nil
	case "mssql", "sqlserver":
		return DriverMSSQL, nil
	default:
		return "", errs.Newf(errs.ErrKindUnsupported, "unsupported database driver %q", name)
	}
}

// Config holds everything needed to open the single connection pool a run uses.
type Config struct {
	// Driver is the database engine (e.g. DriverPostgres).
	Driver Driver

	// Connection parameters. Ignored by drivers when DSN is set, except
	// Database and Schema which the catalog queries still need.
	Host     string
	Port     int
	User     string
	Password string
	Database string // database name; file path for SQLite
	Schema   string // Postgres / SQL Server schema, defaults per driver
	SSLMode  string

	// DSN overrides the DSN built from the fields above.
	DSN string

	// Pool tuning
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration

	ConnectTimeout time.Duration
}

// DefaultConfig returns pool settings sized for a short-lived catalog scan.
func DefaultConfig(driver Driver) *Config {
	return &Config{
		Driver:          driver,
		MaxConns:        8,
		MinConns:        1,
		MaxConnLifetime: 30 * time.Minute,
		MaxConnIdleTime: 5 * time.Minute,
		ConnectTimeout:  10 * time.Second,
	}
}

// SchemaOrDefault returns the configured schema, falling back to the
// driver's conventional default namespace.
func (c *Config) SchemaOrDefault() string {
	if c.Schema != "" {
		return c.Schema
	}
	switch c.Driver {
	case DriverPostgres:
		return "public"
	case DriverMSSQL:
		return "dbo"
	default:
		return c.Database
	}
}

// Validate checks the fields every driver needs.
func (c *Config) Validate() error {
	if c.Driver == "" {
		return errs.New(errs.ErrKindInvalidInput, "database driver is required")
	}
	if _, err := ParseDriver(string(c.Driver)); err != nil {
		return err
	}
	if c.DSN == "" && c.Database == "" {
		return errs.New(errs.ErrKindInvalidInput, "database name (or dsn) is required")
	}
	return nil
}

// WithDefault returns val if non-zero, otherwise returns def.
func WithDefault[T int | int32 | time.Duration](val, def T) T {
	if val == 0 {
		return def
	}
	return val
}
