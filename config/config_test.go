package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, "dbclient.db", cfg.Database.Path)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, 2, cfg.Database.PoolMin)
	assert.Equal(t, 10, cfg.Database.PoolMax)
	assert.Equal(t, 5*time.Minute, cfg.Database.IdleTimeout)
	assert.Equal(t, 5*time.Second, cfg.Database.ConnectTimeout)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Setenv("TESTDBC_DATABASE_DRIVER", "postgres")
	t.Setenv("TESTDBC_DATABASE_HOST", "db.internal")
	t.Setenv("TESTDBC_DATABASE_PORT", "6543")
	t.Setenv("TESTDBC_DATABASE_POOLMAX", "20")
	t.Setenv("TESTDBC_DATABASE_CONNECTTIMEOUT", "12s")
	t.Setenv("TESTDBC_LOG_LEVEL", "debug")

	cfg, err := Load("TESTDBC")
	require.NoError(t, err)

	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 6543, cfg.Database.Port)
	assert.Equal(t, 20, cfg.Database.PoolMax)
	assert.Equal(t, 12*time.Second, cfg.Database.ConnectTimeout)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Contains(t, cfg.Database.DSN(), "host='db.internal' port=6543")
	assert.Contains(t, cfg.Database.DSN(), "connect_timeout=12")
}

func TestDSNParsesWithPgx(t *testing.T) {
	d := Default().Database

	parsed, err := pgconn.ParseConfig(d.DSN())
	require.NoError(t, err)
	assert.Equal(t, "localhost", parsed.Host)
	assert.Equal(t, uint16(5432), parsed.Port)
	assert.Equal(t, "postgres", parsed.User)
	assert.Equal(t, "", parsed.Password)
	assert.Equal(t, "dbclient", parsed.Database)
	assert.Equal(t, 5*time.Second, parsed.ConnectTimeout)

	d.Password = `p@ss w'rd\1`
	d.Name = "site diary"
	parsed, err = pgconn.ParseConfig(d.DSN())
	require.NoError(t, err)
	assert.Equal(t, `p@ss w'rd\1`, parsed.Password)
	assert.Equal(t, "site diary", parsed.Database)
	assert.Equal(t, "postgres", parsed.User)
}

func TestLoadRejectsInvalidSettings(t *testing.T) {
	t.Setenv("TESTBAD_DATABASE_DRIVER", "oracle")
	_, err := Load("TESTBAD")
	assert.ErrorContains(t, err, "unsupported database driver")

	t.Setenv("TESTBAD_DATABASE_DRIVER", "sqlite")
	t.Setenv("TESTBAD_DATABASE_POOLMIN", "50")
	_, err = Load("TESTBAD")
	assert.ErrorContains(t, err, "poolmin")
}

func TestReadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.env")
	content := "DOTENV_DATABASE_PATH=/var/lib/site.db\nDOTENV_LOG_FORMAT=console\nOTHER_KEY=ignored\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	v := viper.New()
	setDefaults(v)
	require.NoError(t, readDotEnv(v, path, "DOTENV"))

	cfg, err := load(v)
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/site.db", cfg.Database.Path)
	assert.Equal(t, "console", cfg.Log.Format)

	assert.NoError(t, readDotEnv(viper.New(), filepath.Join(t.TempDir(), "missing.env"), "DOTENV"))
}
