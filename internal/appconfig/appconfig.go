// Package appconfig loads the adchub configuration from defaults, an optional
// adchub.yaml file and ADCHUB_* environment variables, in increasing precedence.
package appconfig

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment overrides (ADCHUB_SERVER_PORT, ...)
const EnvPrefix = "ADCHUB"

// Settings backends
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type SheetsConfig struct {
	MaxAge          time.Duration `mapstructure:"maxAge"`
	CleanupInterval time.Duration `mapstructure:"cleanupInterval"`
}

type SettingsConfig struct {
	Backend    string `mapstructure:"backend"`
	Path       string `mapstructure:"path"`
	SQLitePath string `mapstructure:"sqlitePath"`
}

type RobotEventsConfig struct {
	BaseURL     string        `mapstructure:"baseURL"`
	WebURL      string        `mapstructure:"webURL"`
	Token       string        `mapstructure:"token"`
	ProgramID   int           `mapstructure:"programID"`
	ProgramSlug string        `mapstructure:"programSlug"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

type WorldSkillsConfig struct {
	RefreshInterval time.Duration `mapstructure:"refreshInterval"`
}

type NgrokConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	AuthToken string `mapstructure:"authToken"`
	Domain    string `mapstructure:"domain"`
}

// Config is the full application configuration
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Log         LogConfig         `mapstructure:"log"`
	SeasonsDir  string            `mapstructure:"seasonsDir"`
	Sheets      SheetsConfig      `mapstructure:"sheets"`
	Settings    SettingsConfig    `mapstructure:"settings"`
	RobotEvents RobotEventsConfig `mapstructure:"robotevents"`
	WorldSkills WorldSkillsConfig `mapstructure:"worldskills"`
	Ngrok       NgrokConfig       `mapstructure:"ngrok"`
	Metrics     bool              `mapstructure:"metrics"`
}

// SetDefaults registers the default value of every key
func SetDefaults() {
	viper.SetDefault("server.host", "localhost")
	viper.SetDefault("server.port", 8080)

	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "console")

	viper.SetDefault("seasonsDir", "seasons")

	viper.SetDefault("sheets.maxAge", "24h")
	viper.SetDefault("sheets.cleanupInterval", "1h")

	viper.SetDefault("settings.backend", BackendFile)
	viper.SetDefault("settings.path", "data/settings.json")
	viper.SetDefault("settings.sqlitePath", "data/adchub.db")

	viper.SetDefault("robotevents.baseURL", "https://www.robotevents.com/api/v2")
	viper.SetDefault("robotevents.webURL", "https://www.robotevents.com")
	viper.SetDefault("robotevents.token", "")
	viper.SetDefault("robotevents.programID", 44)
	viper.SetDefault("robotevents.programSlug", "adc")
	viper.SetDefault("robotevents.timeout", "15s")

	viper.SetDefault("worldskills.refreshInterval", "1h")

	viper.SetDefault("ngrok.enabled", false)
	viper.SetDefault("ngrok.authToken", "")
	viper.SetDefault("ngrok.domain", "")

	viper.SetDefault("metrics", true)
}

// Load reads the configuration. With an empty configFile, adchub.yaml is looked up in
// the working directory and its absence is not an error; an explicit file must exist.
func Load(configFile string) (*Config, error) {
	SetDefaults()

	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.SetConfigName("adchub")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects configurations the server cannot start with
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d", c.Server.Port)
	}
	switch c.Settings.Backend {
	case BackendFile, BackendSQLite:
	default:
		return fmt.Errorf("invalid settings.backend %q (want %q or %q)", c.Settings.Backend, BackendFile, BackendSQLite)
	}
	if c.Sheets.MaxAge <= 0 {
		return fmt.Errorf("sheets.maxAge must be positive")
	}
	if c.Sheets.CleanupInterval <= 0 {
		return fmt.Errorf("sheets.cleanupInterval must be positive")
	}
	if c.RobotEvents.ProgramID <= 0 {
		return fmt.Errorf("robotevents.programID must be positive")
	}
	return nil
}

// Addr returns the host:port the HTTP server listens on
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
