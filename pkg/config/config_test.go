package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marshallshelly/airline/pkg/runtime"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(New())
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.DB.Host)
	assert.Equal(t, 5432, cfg.DB.Port)
	assert.Equal(t, int32(1), cfg.DB.MaxConns)
	assert.Equal(t, 10*time.Second, cfg.DB.ConnectTimeout)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
}

func TestLoad_Precedence(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "airline.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
db:
  host: filehost
  port: 6000
  name: filedb
  user: fileuser
log:
  level: warn
`), 0o600))

	t.Setenv("AIRLINE_DB_PORT", "7000")
	t.Setenv("AIRLINE_DB_USER", "envuser")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs)
	require.NoError(t, fs.Parse([]string{"--db-user", "flaguser"}))

	v := New()
	require.NoError(t, BindFlags(v, fs))
	require.NoError(t, ReadFile(v, file))

	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, "filehost", cfg.DB.Host, "file beats default")
	assert.Equal(t, "filedb", cfg.DB.Name)
	assert.Equal(t, 7000, cfg.DB.Port, "env beats file")
	assert.Equal(t, "flaguser", cfg.DB.User, "flag beats env")
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, int32(1), cfg.DB.MaxConns, "unset flag does not override default")
}

func TestReadFile_MissingDefaultIsFine(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())

	assert.NoError(t, ReadFile(New(), ""))
}

func TestReadFile_ExplicitMissingFails(t *testing.T) {
	err := ReadFile(New(), filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestApplyPositional(t *testing.T) {
	v := New()
	require.NoError(t, ApplyPositional(v, []string{"airlinedb", "5433", "admin"}))

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "airlinedb", cfg.DB.Name)
	assert.Equal(t, 5433, cfg.DB.Port)
	assert.Equal(t, "admin", cfg.DB.User)
	assert.Empty(t, cfg.DB.Password)
}

func TestApplyPositional_Errors(t *testing.T) {
	assert.Error(t, ApplyPositional(New(), []string{"db", "5432"}))

	err := ApplyPositional(New(), []string{"db", "port", "user"})
	var ve *runtime.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "port", ve.Field)

	assert.NoError(t, ApplyPositional(New(), nil))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		mut   func(c *Config)
		field string
	}{
		{"empty host", func(c *Config) { c.DB.Host = "" }, "db.host"},
		{"port out of range", func(c *Config) { c.DB.Port = 70000 }, "db.port"},
		{"empty name", func(c *Config) { c.DB.Name = "" }, "db.name"},
		{"negative conns", func(c *Config) { c.DB.MaxConns = -1 }, "db.max_conns"},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(New())
			require.NoError(t, err)

			tt.mut(cfg)
			err = cfg.Validate()

			var ve *runtime.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}

func TestValidate_URLSkipsFieldChecks(t *testing.T) {
	cfg := &Config{
		DB:  DBConfig{URL: "postgres://u@h/db"},
		Log: LogConfig{Level: "info", Format: "json"},
	}
	assert.NoError(t, cfg.Validate())
}

func TestDBConfig_Runtime(t *testing.T) {
	db := DBConfig{Host: "h", Port: 1, Name: "n", User: "u", Password: "p", SSLMode: "disable", MaxConns: 3, ConnectTimeout: time.Second}
	rc := db.Runtime()

	assert.Equal(t, &runtime.Config{
		Host: "h", Port: 1, Database: "n", User: "u", Password: "p",
		SSLMode: "disable", MaxConns: 3, ConnectTimeout: time.Second,
	}, rc)
}
