package config

// Config represents the complete configuration structure
type Config struct {
	Overseerr OverseerrConfig `mapstructure:"overseerr"`
	Plex      PlexConfig      `mapstructure:"plex"`
	Server    ServerConfig    `mapstructure:"server"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// OverseerrConfig holds Overseerr API connection details
type OverseerrConfig struct {
	URL    string `mapstructure:"url"`
	APIKey string `mapstructure:"api_key"`
}

// PlexConfig holds Plex Media Server connection details. Optional: when
// both fields are empty the catalog tools report a configuration error
// instead of failing startup.
type PlexConfig struct {
	URL   string `mapstructure:"url"`
	Token string `mapstructure:"token"`
}

// ServerConfig controls how the tool server is exposed
type ServerConfig struct {
	Transport string `mapstructure:"transport"`
	Host      string `mapstructure:"host"`
	Port      int    `mapstructure:"port"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// HasPlex reports whether a Plex connection is configured at all.
func (c *Config) HasPlex() bool {
	return c.Plex.URL != "" || c.Plex.Token != ""
}
