// Package config resolves settings from flags, AIRLINE_* environment
// variables, an optional airline.yaml file and defaults, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/marshallshelly/airline/pkg/logging"
	"github.com/marshallshelly/airline/pkg/runtime"
)

// EnvPrefix is prepended to every environment variable, e.g. AIRLINE_DB_HOST.
const EnvPrefix = "AIRLINE"

// Config is the resolved configuration.
type Config struct {
	DB  DBConfig  `mapstructure:"db"`
	Log LogConfig `mapstructure:"log"`
}

// DBConfig describes the database session. When URL is set it wins over the
// individual fields.
type DBConfig struct {
	URL            string        `mapstructure:"url"`
	Host           string        `mapstructure:"host"`
	Port           int           `mapstructure:"port"`
	Name           string        `mapstructure:"name"`
	User           string        `mapstructure:"user"`
	Password       string        `mapstructure:"password"`
	SSLMode        string        `mapstructure:"sslmode"`
	MaxConns       int32         `mapstructure:"max_conns"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
}

// LogConfig selects log verbosity and encoding.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// flag name -> viper key
var flagKeys = map[string]string{
	"db-url":             "db.url",
	"db-host":            "db.host",
	"db-port":            "db.port",
	"db-name":            "db.name",
	"db-user":            "db.user",
	"db-password":        "db.password",
	"db-sslmode":         "db.sslmode",
	"db-max-conns":       "db.max_conns",
	"db-connect-timeout": "db.connect_timeout",
	"log-level":          "log.level",
	"log-format":         "log.format",
}

// New returns a viper instance with defaults and environment binding set up.
func New() *viper.Viper {
	v := viper.New()

	def := runtime.DefaultConfig()
	v.SetDefault("db.url", "")
	v.SetDefault("db.host", def.Host)
	v.SetDefault("db.port", def.Port)
	v.SetDefault("db.name", def.Database)
	v.SetDefault("db.user", def.User)
	v.SetDefault("db.password", "")
	v.SetDefault("db.sslmode", def.SSLMode)
	v.SetDefault("db.max_conns", def.MaxConns)
	v.SetDefault("db.connect_timeout", def.ConnectTimeout)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", string(logging.FormatConsole))

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// RegisterFlags defines the configuration flags on fs.
func RegisterFlags(fs *pflag.FlagSet) {
	def := runtime.DefaultConfig()
	fs.String("config", "", "config file (default ./airline.yaml or $HOME/.config/airline/airline.yaml)")
	fs.String("db-url", "", "database URL (overrides the individual db-* flags)")
	fs.String("db-host", def.Host, "database host")
	fs.Int("db-port", def.Port, "database port")
	fs.String("db-name", def.Database, "database name")
	fs.String("db-user", def.User, "database user")
	fs.String("db-password", "", "database password")
	fs.String("db-sslmode", def.SSLMode, "sslmode (disable, prefer, require, ...)")
	fs.Int32("db-max-conns", def.MaxConns, "maximum open connections")
	fs.Duration("db-connect-timeout", def.ConnectTimeout, "connection timeout")
	fs.String("log-level", "info", "log level (debug, info, warn, error)")
	fs.String("log-format", string(logging.FormatConsole), "log format (console, json)")
}

// BindFlags makes explicitly set flags override every other source.
func BindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	for name, key := range flagKeys {
		flag := fs.Lookup(name)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("failed to bind flag %s: %w", name, err)
		}
	}
	return nil
}

// ReadFile reads path, or searches the default locations when path is
// empty. A missing file in the default locations is not an error.
func ReadFile(v *viper.Viper, path string) error {
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("airline")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "airline"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}
	return nil
}

// ApplyPositional accepts the classic "<dbname> <port> <user>" arguments.
// They take precedence over flags.
func ApplyPositional(v *viper.Viper, args []string) error {
	if len(args) == 0 {
		return nil
	}
	if len(args) != 3 {
		return fmt.Errorf("expected <dbname> <port> <user>, got %d argument(s)", len(args))
	}

	port, err := strconv.Atoi(args[1])
	if err != nil {
		return &runtime.ValidationError{Field: "port", Message: fmt.Sprintf("%q is not a number", args[1])}
	}

	v.Set("db.name", args[0])
	v.Set("db.port", port)
	v.Set("db.user", args[2])
	return nil
}

// Load resolves and validates the configuration held by v.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if c.DB.URL == "" {
		if c.DB.Host == "" {
			return &runtime.ValidationError{Field: "db.host", Message: "must not be empty"}
		}
		if c.DB.Port < 1 || c.DB.Port > 65535 {
			return &runtime.ValidationError{Field: "db.port", Message: fmt.Sprintf("%d is out of range", c.DB.Port)}
		}
		if c.DB.Name == "" {
			return &runtime.ValidationError{Field: "db.name", Message: "must not be empty"}
		}
	}
	if c.DB.MaxConns < 0 {
		return &runtime.ValidationError{Field: "db.max_conns", Message: "must not be negative"}
	}
	switch logging.Format(c.Log.Format) {
	case logging.FormatConsole, logging.FormatJSON:
	default:
		return &runtime.ValidationError{Field: "log.format", Message: fmt.Sprintf("unknown format %q", c.Log.Format)}
	}
	return nil
}

// Runtime converts the database settings for runtime.Connect.
func (c *DBConfig) Runtime() *runtime.Config {
	return &runtime.Config{
		Host:           c.Host,
		Port:           c.Port,
		Database:       c.Name,
		User:           c.User,
		Password:       c.Password,
		SSLMode:        c.SSLMode,
		MaxConns:       c.MaxConns,
		ConnectTimeout: c.ConnectTimeout,
	}
}
