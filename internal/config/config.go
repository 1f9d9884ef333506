package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Source  string        `yaml:"source"`
	Output  string        `yaml:"output"`
	Title   string        `yaml:"title,omitempty"`
	Figure  FigureConfig  `yaml:"figure"`
	Preview PreviewConfig `yaml:"preview"`
	Cache   CacheConfig   `yaml:"cache"`
	Notify  NotifyConfig  `yaml:"notify"`
}

// FigureConfig carries the two figure rewriting options. The key names match
// the option names the extension documents.
type FigureConfig struct {
	ImageLink     bool `yaml:"image_link"`
	SkipNoCaption bool `yaml:"skip_no_caption"`
}

// PreviewConfig configures the preview server.
type PreviewConfig struct {
	Port            int    `yaml:"port"`
	LiveReload      *bool  `yaml:"live_reload,omitempty"`
	Metrics         bool   `yaml:"metrics"`
	RebuildInterval string `yaml:"rebuild_interval,omitempty"`
}

// LiveReloadEnabled reports whether live reload is on. It defaults to on
// when the key is absent from the file.
func (p PreviewConfig) LiveReloadEnabled() bool {
	return p.LiveReload == nil || *p.LiveReload
}

// CacheConfig configures the persistent render cache.
type CacheConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path,omitempty"`
	MaxAge  string `yaml:"max_age,omitempty"`
}

// NotifyConfig configures render pass notifications. An empty URL disables
// them.
type NotifyConfig struct {
	URL     string `yaml:"url,omitempty"`
	Subject string `yaml:"subject,omitempty"`
}

// Load loads configuration from the specified file
func Load(configPath string) (*Config, error) {
	// Load .env file if it exists
	if err := loadEnvFile(); err != nil {
		// Don't fail if .env doesn't exist, just log it
		fmt.Fprintf(os.Stderr, "Note: .env file not found or couldn't be loaded: %v\n", err)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("configuration file not found: %s", configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Expand environment variables in the YAML content
	expandedData := os.ExpandEnv(string(data))

	var config Config
	if err := yaml.Unmarshal([]byte(expandedData), &config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config.applyDefaults()

	return &config, nil
}

// applyDefaults fills in the values an empty or partial file leaves out.
func (c *Config) applyDefaults() {
	if c.Source == "" {
		c.Source = "./docs"
	}
	if c.Output == "" {
		c.Output = "./site"
	}
	if c.Title == "" {
		c.Title = "Documentation"
	}
	if c.Preview.Port == 0 {
		c.Preview.Port = 1316
	}
	if c.Cache.Path == "" {
		c.Cache.Path = ".mdfigure/cache.db"
	}
	if c.Cache.MaxAge == "" {
		c.Cache.MaxAge = "168h"
	}
	if c.Notify.Subject == "" {
		c.Notify.Subject = "mdfigure.pass"
	}
}

// Validate checks values that would otherwise fail deep inside a pass.
func (c *Config) Validate() error {
	if c.Source == "" {
		return fmt.Errorf("source directory must be set")
	}
	if c.Preview.Port < 1 || c.Preview.Port > 65535 {
		return fmt.Errorf("invalid preview port: %d", c.Preview.Port)
	}
	if _, err := c.ParseRebuildInterval(); err != nil {
		return err
	}
	if _, err := c.ParseCacheMaxAge(); err != nil {
		return err
	}
	return nil
}

// ParseRebuildInterval returns the periodic rebuild interval. Zero disables
// periodic rebuilds.
func (c *Config) ParseRebuildInterval() (time.Duration, error) {
	if c.Preview.RebuildInterval == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Preview.RebuildInterval)
	if err != nil {
		return 0, fmt.Errorf("invalid rebuild_interval: %s: %w", c.Preview.RebuildInterval, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("rebuild_interval cannot be negative: %s", c.Preview.RebuildInterval)
	}
	return d, nil
}

// ParseCacheMaxAge returns the age after which cache entries are pruned.
func (c *Config) ParseCacheMaxAge() (time.Duration, error) {
	d, err := time.ParseDuration(c.Cache.MaxAge)
	if err != nil {
		return 0, fmt.Errorf("invalid max_age: %s: %w", c.Cache.MaxAge, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("max_age must be positive: %s", c.Cache.MaxAge)
	}
	return d, nil
}

// Init creates a new configuration file with example content
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", configPath)
	}

	liveReload := true
	exampleConfig := Config{
		Source: "./docs",
		Output: "./site",
		Title:  "My Documentation",
		Figure: FigureConfig{
			ImageLink:     false,
			SkipNoCaption: false,
		},
		Preview: PreviewConfig{
			Port:       1316,
			LiveReload: &liveReload,
			Metrics:    false,
		},
		Cache: CacheConfig{
			Enabled: false,
			Path:    ".mdfigure/cache.db",
			MaxAge:  "168h",
		},
		Notify: NotifyConfig{
			URL:     "",
			Subject: "mdfigure.pass",
		},
	}

	data, err := yaml.Marshal(&exampleConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// loadEnvFile loads environment variables from the first .env file found.
// Values already present in the environment win.
func loadEnvFile() error {
	envPaths := []string{".env", ".env.local"}

	for _, envPath := range envPaths {
		if _, err := os.Stat(envPath); err != nil {
			continue
		}
		if err := godotenv.Load(envPath); err != nil {
			return fmt.Errorf("failed to load %s: %w", envPath, err)
		}
		fmt.Fprintf(os.Stderr, "Loaded environment variables from %s\n", envPath)
		return nil
	}

	return fmt.Errorf("no .env file found")
}
