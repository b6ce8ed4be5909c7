package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/raphi011/linear/internal/errs"
	"github.com/raphi011/linear/internal/storage"
)

// Environment variables read by the CLI.
const (
	EnvAPIKey    = "LINEAR_API_KEY"
	EnvAPIURL    = "LINEAR_API_URL"
	EnvConfigDir = "LINEAR_CONFIG_DIR"
)

// Defaults for optional settings.
const (
	DefaultAPIURL   = "https://api.linear.app"
	DefaultTimeout  = 30 * time.Second
	DefaultCacheTTL = 24 * time.Hour
	DefaultOutput   = "table"
)

// ValidOutputs are the accepted values for the output setting.
var ValidOutputs = []string{"table", "json", "compact"}

// Config holds the linear configuration.
type Config struct {
	APIKey      string
	DefaultTeam string
	APIURL      string
	Timeout     time.Duration
	CacheTTL    time.Duration
	Output      string

	// Dir is the directory the config was loaded from. The cache file
	// lives next to config.toml.
	Dir string
}

// fileConfig mirrors config.toml. Durations are kept as strings so
// omitempty works and parse errors can name the field.
type fileConfig struct {
	APIKey      string `toml:"api_key,omitempty"`
	DefaultTeam string `toml:"default_team,omitempty"`
	APIURL      string `toml:"api_url,omitempty"`
	Timeout     string `toml:"timeout,omitempty"`
	CacheTTL    string `toml:"cache_ttl,omitempty"`
	Output      string `toml:"output,omitempty"`
}

// Default returns the default configuration rooted at dir.
func Default(dir string) Config {
	return Config{
		APIURL:   DefaultAPIURL,
		Timeout:  DefaultTimeout,
		CacheTTL: DefaultCacheTTL,
		Output:   DefaultOutput,
		Dir:      dir,
	}
}

// Dir returns the config directory: $LINEAR_CONFIG_DIR if set, otherwise
// <user config dir>/linear.
func Dir() (string, error) {
	if d := os.Getenv(EnvConfigDir); d != "" {
		return expandPath(d)
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", errs.Config("cannot determine config directory: %v", err)
	}
	return filepath.Join(base, "linear"), nil
}

// Path returns the config file path inside dir.
func Path(dir string) string {
	return filepath.Join(dir, "config.toml")
}

// Load reads dir/config.toml.
// Returns Default() if the file doesn't exist (no error).
// Returns a ConfigError if the file exists but is invalid.
func Load(dir string) (Config, error) {
	path := Path(dir)

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := Default(dir)
			applyEnv(&cfg)
			return cfg, nil
		}
		return Default(dir), errs.Config("failed to read config file: %v", err)
	}

	var raw fileConfig
	if _, err := toml.Decode(string(data), &raw); err != nil {
		return Default(dir), errs.WithSuggestion(
			errs.Config("failed to parse %s: %v", path, err),
			"Fix the file or recreate it with 'linear init --force'",
		)
	}

	cfg, err := fromFile(raw, dir)
	if err != nil {
		return Default(dir), err
	}
	applyEnv(&cfg)
	return cfg, nil
}

func fromFile(raw fileConfig, dir string) (Config, error) {
	cfg := Default(dir)
	cfg.APIKey = strings.TrimSpace(raw.APIKey)
	cfg.DefaultTeam = strings.TrimSpace(raw.DefaultTeam)

	if raw.APIURL != "" {
		cfg.APIURL = strings.TrimRight(raw.APIURL, "/")
	}
	if raw.Output != "" {
		cfg.Output = raw.Output
	}

	var err error
	if cfg.Timeout, err = parseDuration(raw.Timeout, "timeout", DefaultTimeout); err != nil {
		return cfg, err
	}
	if cfg.CacheTTL, err = parseDuration(raw.CacheTTL, "cache_ttl", DefaultCacheTTL); err != nil {
		return cfg, err
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if u := os.Getenv(EnvAPIURL); u != "" {
		cfg.APIURL = strings.TrimRight(u, "/")
	}
}

// Validate checks all settings and returns the first problem as a
// ConfigError.
func (c Config) Validate() error {
	if err := validateEnum(c.Output, "output", ValidOutputs); err != nil {
		return err
	}
	if err := validateURL(c.APIURL, "api_url"); err != nil {
		return err
	}
	if err := validateTeamKey(c.DefaultTeam, "default_team"); err != nil {
		return err
	}
	if c.Timeout <= 0 {
		return errs.Config("invalid timeout %s: must be positive", c.Timeout)
	}
	if c.CacheTTL < 0 {
		return errs.Config("invalid cache_ttl %s: must not be negative", c.CacheTTL)
	}
	return nil
}

// Save writes cfg to dir/config.toml with a commented header. Only
// non-default values are written.
func Save(cfg Config) (string, error) {
	path := Path(cfg.Dir)
	content, err := Render(cfg)
	if err != nil {
		return "", err
	}
	if err := storage.WriteFileAtomic(path, []byte(content), 0o600); err != nil {
		return "", fmt.Errorf("write config: %w", err)
	}
	return path, nil
}

// Render returns the config file content for cfg.
func Render(cfg Config) (string, error) {
	raw := fileConfig{
		APIKey:      cfg.APIKey,
		DefaultTeam: cfg.DefaultTeam,
	}
	if cfg.APIURL != "" && cfg.APIURL != DefaultAPIURL {
		raw.APIURL = cfg.APIURL
	}
	if cfg.Timeout != 0 && cfg.Timeout != DefaultTimeout {
		raw.Timeout = cfg.Timeout.String()
	}
	if cfg.CacheTTL != 0 && cfg.CacheTTL != DefaultCacheTTL {
		raw.CacheTTL = cfg.CacheTTL.String()
	}
	if cfg.Output != "" && cfg.Output != DefaultOutput {
		raw.Output = cfg.Output
	}

	body, err := toml.Marshal(raw)
	if err != nil {
		return "", err
	}
	return header + string(body) + footer, nil
}

const header = `# linear configuration
# The LINEAR_API_KEY environment variable takes precedence over api_key.

`

const footer = `
# Optional settings (defaults shown)
# api_url = "https://api.linear.app"
# timeout = "30s"
# cache_ttl = "24h"
# output = "table"   # table, json, or compact
`

func parseDuration(s, field string, def time.Duration) (time.Duration, error) {
	if s == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, errs.Config("invalid %s %q: %v", field, s, err)
	}
	return d, nil
}

// expandPath expands ~ to the user's home directory
func expandPath(path string) (string, error) {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", errs.Config("expand ~: %v", err)
		}
		return filepath.Join(home, strings.TrimPrefix(path[1:], "/")), nil
	}
	return path, nil
}

func validateURL(raw, field string) error {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errs.Config("invalid %s %q: must be an http(s) URL", field, raw)
	}
	return nil
}
