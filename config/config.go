package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const DefaultPrefix = "DBCLIENT"

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	Database Database `mapstructure:"database"`
	Log      Log      `mapstructure:"log"`
}

// Database holds the connection and pool settings of the store
type Database struct {
	Driver         string        `mapstructure:"driver"` // sqlite or postgres
	Path           string        `mapstructure:"path"`   // sqlite file, ":memory:" for an in-memory database
	Host           string        `mapstructure:"host"`
	Port           int           `mapstructure:"port"`
	Name           string        `mapstructure:"name"`
	User           string        `mapstructure:"user"`
	Password       string        `mapstructure:"password"`
	SSLMode        string        `mapstructure:"sslmode"`
	PoolMin        int           `mapstructure:"poolmin"`
	PoolMax        int           `mapstructure:"poolmax"`
	IdleTimeout    time.Duration `mapstructure:"idletimeout"`
	ConnectTimeout time.Duration `mapstructure:"connecttimeout"`
}

type Log struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json or console
}

var defaults = map[string]interface{}{
	"database.driver":         DriverSQLite,
	"database.path":           "dbclient.db",
	"database.host":           "localhost",
	"database.port":           5432,
	"database.name":           "dbclient",
	"database.user":           "postgres",
	"database.password":       "",
	"database.sslmode":        "disable",
	"database.poolmin":        2,
	"database.poolmax":        10,
	"database.idletimeout":    "5m",
	"database.connecttimeout": "5s",
	"log.level":               "info",
	"log.format":              "json",
}

// Default returns the configuration used when nothing is overridden
func Default() Config {
	v := viper.New()
	setDefaults(v)
	cfg, err := load(v)
	if err != nil {
		// defaults are static, a failure here is a programming error
		panic(err)
	}
	return cfg
}

// Load layers configuration: defaults, then an optional .env file, then environment
// variables with the given prefix (e.g. DBCLIENT_DATABASE_HOST -> database.host).
func Load(prefix string) (Config, error) {
	if prefix == "" {
		prefix = DefaultPrefix
	}

	v := viper.New()
	setDefaults(v)
	if err := readDotEnv(v, ".env", prefix); err != nil {
		return Config{}, err
	}

	v.SetEnvPrefix(prefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return load(v)
}

func setDefaults(v *viper.Viper) {
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
}

// readDotEnv lifts PREFIX_SECTION_KEY entries of an env file into section.key
// defaults, so real environment variables still take precedence.
func readDotEnv(v *viper.Viper, path, prefix string) error {
	env := viper.New()
	env.SetConfigFile(path)
	env.SetConfigType("env")
	if err := env.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	p := strings.ToLower(prefix) + "_"
	for _, key := range env.AllKeys() {
		if !strings.HasPrefix(key, p) {
			continue
		}
		propKey := strings.Replace(strings.TrimPrefix(key, p), "_", ".", 1)
		v.SetDefault(propKey, env.Get(key))
	}
	return nil
}

func load(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Database.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the settings that cannot be defaulted safely
func (d Database) Validate() error {
	switch d.Driver {
	case DriverSQLite:
		if d.Path == "" {
			return fmt.Errorf("database.path is required for the %s driver", d.Driver)
		}
	case DriverPostgres:
		if d.Host == "" || d.Name == "" {
			return fmt.Errorf("database.host and database.name are required for the %s driver", d.Driver)
		}
	default:
		return fmt.Errorf("unsupported database driver %q", d.Driver)
	}
	if d.PoolMax < 1 {
		return fmt.Errorf("database.poolmax must be at least 1")
	}
	if d.PoolMin < 0 || d.PoolMin > d.PoolMax {
		return fmt.Errorf("database.poolmin must be between 0 and database.poolmax")
	}
	return nil
}

// dsnEscaper escapes a value for a single quoted keyword/value pair
var dsnEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`)

// DSN renders the PostgreSQL connection string. Every text value is quoted so empty
// values and values with spaces or quotes survive parsing.
func (d Database) DSN() string {
	quote := func(value string) string {
		return "'" + dsnEscaper.Replace(value) + "'"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s connect_timeout=%d",
		quote(d.Host), d.Port, quote(d.User), quote(d.Password), quote(d.Name), quote(d.SSLMode), int(d.ConnectTimeout.Seconds()))
}

