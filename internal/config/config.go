package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Cache    CacheConfig
	Logging  LoggingConfig
}

// ServerConfig points the client at a ledger service. An empty URL means
// "run the bundled service in-process".
type ServerConfig struct {
	URL    string
	Listen string // bind address for ledgerdeskd / the in-process service
}

// DatabaseConfig holds sqlite settings for the bundled service.
type DatabaseConfig struct {
	Path       string
	Migrations string
}

// CacheConfig tunes the query cache.
type CacheConfig struct {
	FreshFor   time.Duration `mapstructure:"fresh_for"`
	Retries    int
	RetryDelay time.Duration `mapstructure:"retry_delay"`
}

// LoggingConfig selects log level and format.
type LoggingConfig struct {
	Level  string
	Format string
}

// Load reads configuration from file and env. Env var overrides use prefix
// LEDGERDESK_, e.g. LEDGERDESK_SERVER_URL.
func Load() (Config, error) {
	v := viper.New()

	// default values
	v.SetDefault("server.url", "")
	v.SetDefault("server.listen", "127.0.0.1:0")
	v.SetDefault("database.path", filepath.Join(os.Getenv("HOME"), ".local", "share", "ledgerdesk", "ledger.db"))
	v.SetDefault("database.migrations", "internal/database/migrations")
	v.SetDefault("cache.fresh_for", "5m")
	v.SetDefault("cache.retries", 2)
	v.SetDefault("cache.retry_delay", "200ms")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")

	v.SetConfigType("toml")

	cfgPath := os.Getenv("LEDGERDESK_CONFIG")
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "ledgerdesk"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("LEDGERDESK")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// read config file if present
	_ = v.ReadInConfig()

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return c, nil
}
