package config

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	CNPJa  CNPJaConfig  `yaml:"cnpja" mapstructure:"cnpja"`
	Search SearchConfig `yaml:"search" mapstructure:"search"`
	Export ExportConfig `yaml:"export" mapstructure:"export"`
	Server ServerConfig `yaml:"server" mapstructure:"server"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// CNPJaConfig holds the registry API credentials and transport settings.
type CNPJaConfig struct {
	Key               string `yaml:"key" mapstructure:"key"`
	BaseURL           string `yaml:"base_url" mapstructure:"base_url"`
	TimeoutSecs       int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	RequestsPerMinute int    `yaml:"requests_per_minute" mapstructure:"requests_per_minute"`
}

// SearchConfig holds the default search filters.
type SearchConfig struct {
	Limit        int  `yaml:"limit" mapstructure:"limit"`
	Optant       bool `yaml:"optant" mapstructure:"optant"`
	MaxPages     int  `yaml:"max_pages" mapstructure:"max_pages"`
	LookbackDays int  `yaml:"lookback_days" mapstructure:"lookback_days"`
}

// ExportConfig configures where and how export files are written.
type ExportConfig struct {
	Dir      string `yaml:"dir" mapstructure:"dir"`
	Encoding string `yaml:"encoding" mapstructure:"encoding"`
}

// ServerConfig configures the local HTTP front end.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("CNPJ_LEADS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("cnpja.key", "")
	v.SetDefault("cnpja.base_url", "https://api.cnpja.com")
	v.SetDefault("cnpja.timeout_secs", 30)
	v.SetDefault("cnpja.requests_per_minute", 60)
	v.SetDefault("search.limit", 100)
	v.SetDefault("search.optant", true)
	v.SetDefault("search.max_pages", 1)
	v.SetDefault("search.lookback_days", 180)
	v.SetDefault("export.dir", ".")
	v.SetDefault("export.encoding", "utf-8")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the fields a command needs before it starts. mode is one
// of "search", "serve" or "export".
func (c *Config) Validate(mode string) error {
	var problems []string

	switch mode {
	case "search", "serve":
		if c.CNPJa.Key == "" {
			problems = append(problems, "cnpja.key is required (CNPJ_LEADS_CNPJA_KEY)")
		}
		if c.CNPJa.BaseURL == "" {
			problems = append(problems, "cnpja.base_url is required")
		}
		if c.Search.Limit <= 0 {
			problems = append(problems, fmt.Sprintf("search.limit must be positive, got %d", c.Search.Limit))
		}
		if mode == "serve" && (c.Server.Port <= 0 || c.Server.Port > 65535) {
			problems = append(problems, fmt.Sprintf("server.port must be between 1 and 65535, got %d", c.Server.Port))
		}
	case "export":
	default:
		return eris.Errorf("config: unknown validation mode %q", mode)
	}

	if len(problems) > 0 {
		return eris.Errorf("config: %s", strings.Join(problems, "; "))
	}
	return nil
}

// Redacted returns a copy with credentials masked, for display.
func (c Config) Redacted() Config {
	if c.CNPJa.Key != "" {
		c.CNPJa.Key = "****"
	}
	origins := make([]string, len(c.Server.AllowedOrigins))
	copy(origins, c.Server.AllowedOrigins)
	c.Server.AllowedOrigins = origins
	return c
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
