package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Load loads the configuration. A config file is optional: environment
// variables (OVERSEERR_URL, OVERSEERR_API_KEY, PLEX_URL, PLEX_TOKEN,
// LOG_LEVEL, MCP_TRANSPORT, MCP_HOST, MCP_PORT) are enough on their own.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)
	bindEnv(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".overseerr-mcp"))
		}
		v.AddConfigPath("/etc/overseerr-mcp/")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
		if configPath != "" {
			return nil, fmt.Errorf("config file not found: %w", err)
		}
		// No file, env only.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.transport", "stdio")
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 8080)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
}

// bindEnv maps the flat environment variables onto config keys.
func bindEnv(v *viper.Viper) {
	v.BindEnv("overseerr.url", "OVERSEERR_URL")
	v.BindEnv("overseerr.api_key", "OVERSEERR_API_KEY")
	v.BindEnv("plex.url", "PLEX_URL")
	v.BindEnv("plex.token", "PLEX_TOKEN")
	v.BindEnv("logging.level", "LOG_LEVEL")
	v.BindEnv("server.transport", "MCP_TRANSPORT")
	v.BindEnv("server.host", "MCP_HOST")
	v.BindEnv("server.port", "MCP_PORT")
}

// validate checks if the configuration is valid
func validate(cfg *Config) error {
	if cfg.Overseerr.URL == "" {
		return fmt.Errorf("overseerr.url is required (set OVERSEERR_URL)")
	}
	if cfg.Overseerr.APIKey == "" {
		return fmt.Errorf("overseerr.api_key is required (set OVERSEERR_API_KEY)")
	}

	// Plex is optional, but a half-configured Plex is a mistake.
	if cfg.HasPlex() {
		if cfg.Plex.URL == "" {
			return fmt.Errorf("plex.url is required when plex.token is set")
		}
		if cfg.Plex.Token == "" {
			return fmt.Errorf("plex.token is required when plex.url is set")
		}
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[cfg.Logging.Level] {
		return fmt.Errorf("invalid logging level: %s", cfg.Logging.Level)
	}

	validFormats := map[string]bool{
		"console": true,
		"json":    true,
	}
	if !validFormats[cfg.Logging.Format] {
		return fmt.Errorf("invalid logging format: %s", cfg.Logging.Format)
	}

	validTransports := map[string]bool{
		"stdio": true,
		"sse":   true,
		"http":  true,
	}
	if !validTransports[cfg.Server.Transport] {
		return fmt.Errorf("invalid transport: %s (must be stdio, sse, or http)", cfg.Server.Transport)
	}

	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", cfg.Server.Port)
	}

	return nil
}
