// Package config loads the generator's configuration from a YAML file with
// environment variable overrides for the handful of values that differ
// between deployments.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"podcast-feed-gen/internal/source/manual"
)

const (
	defaultListenAddr    = "127.0.0.1:8080"
	defaultNamingScheme  = "%t.xml"
	defaultWorkers       = 4
	defaultSourceTimeout = 15
	defaultDebounceMS    = 500
)

var defaultShowSources = []string{"chimera", "manual"}

var defaultEpisodeSources = []string{"audioprobe", "chimera", "radiorest", "article", "manual"}

// Config is the full configuration surface.
type Config struct {
	Backend struct {
		BaseURL        string `yaml:"base_url"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
	} `yaml:"backend"`

	Sources struct {
		Show    []string `yaml:"show_chain"`
		Episode []string `yaml:"episode_chain"`

		TimeoutSeconds int `yaml:"timeout_seconds"`

		Chimera struct {
			BaseURL string `yaml:"base_url"`
		} `yaml:"chimera"`
		RadioRest struct {
			BaseURL string `yaml:"base_url"`
			Cutoff  string `yaml:"cutoff"`
		} `yaml:"radiorest"`
	} `yaml:"sources"`

	Feeds struct {
		TargetDir    string `yaml:"target_dir"`
		NamingScheme string `yaml:"naming_scheme"`
		BaseURL      string `yaml:"base_url"`
	} `yaml:"feeds"`

	Overrides struct {
		Shows    map[int]manual.ShowOverride       `yaml:"shows"`
		Episodes map[string]manual.EpisodeOverride `yaml:"episodes"`
	} `yaml:"overrides"`

	Server struct {
		ListenAddr string `yaml:"listen_addr"`
		AliasFile  string `yaml:"alias_file"`
		DebounceMS int    `yaml:"debounce_ms"`
	} `yaml:"server"`

	Workers int `yaml:"workers"`
}

// Load reads the configuration at path, applies environment overrides and
// defaults, and validates the result. An empty path loads defaults plus
// environment only.
func Load(path string) (Config, error) {
	var cfg Config

	if path = strings.TrimSpace(path); path != "" {
		resolved, err := resolvePath(path)
		if err != nil {
			return Config{}, err
		}
		data, err := os.ReadFile(resolved)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(&cfg)
	applyDefaults(&cfg)

	if err := validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if value := strings.TrimSpace(os.Getenv("PODFEED_BACKEND_URL")); value != "" {
		cfg.Backend.BaseURL = value
	}
	if value := strings.TrimSpace(os.Getenv("PODFEED_TARGET_DIR")); value != "" {
		cfg.Feeds.TargetDir = value
	}
	if value := strings.TrimSpace(os.Getenv("PODFEED_LISTEN_ADDR")); value != "" {
		cfg.Server.ListenAddr = value
	}
	if value := strings.TrimSpace(os.Getenv("PODFEED_WORKERS")); value != "" {
		if n, err := strconv.Atoi(value); err == nil && n > 0 {
			cfg.Workers = n
		}
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Feeds.NamingScheme == "" {
		cfg.Feeds.NamingScheme = defaultNamingScheme
	}
	if cfg.Feeds.TargetDir == "" {
		cfg.Feeds.TargetDir = "feeds"
	}
	if cfg.Server.ListenAddr == "" {
		cfg.Server.ListenAddr = defaultListenAddr
	}
	if cfg.Server.DebounceMS <= 0 {
		cfg.Server.DebounceMS = defaultDebounceMS
	}
	if cfg.Workers <= 0 {
		cfg.Workers = defaultWorkers
	}
	if cfg.Sources.TimeoutSeconds <= 0 {
		cfg.Sources.TimeoutSeconds = defaultSourceTimeout
	}
	if len(cfg.Sources.Show) == 0 {
		cfg.Sources.Show = append([]string(nil), defaultShowSources...)
	}
	if len(cfg.Sources.Episode) == 0 {
		cfg.Sources.Episode = append([]string(nil), defaultEpisodeSources...)
	}
}

func validate(cfg Config) error {
	if !strings.Contains(cfg.Feeds.NamingScheme, "%t") &&
		!strings.Contains(cfg.Feeds.NamingScheme, "%T") &&
		!strings.Contains(cfg.Feeds.NamingScheme, "%i") {
		return errors.New("naming scheme must contain %t, %T or %i to keep feed filenames unique")
	}
	if _, err := cfg.RadioRestCutoff(); err != nil {
		return err
	}
	return nil
}

// BackendTimeout returns the HTTP timeout for the authoritative backend.
func (c Config) BackendTimeout() time.Duration {
	if c.Backend.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.Backend.TimeoutSeconds) * time.Second
}

// SourceTimeout returns the per-source enrichment timeout.
func (c Config) SourceTimeout() time.Duration {
	return time.Duration(c.Sources.TimeoutSeconds) * time.Second
}

// Debounce returns the file-watcher debounce used by serve mode.
func (c Config) Debounce() time.Duration {
	return time.Duration(c.Server.DebounceMS) * time.Millisecond
}

// RadioRestCutoff parses the configured cutoff date; empty means "applies to
// everything".
func (c Config) RadioRestCutoff() (time.Time, error) {
	raw := strings.TrimSpace(c.Sources.RadioRest.Cutoff)
	if raw == "" {
		return time.Time{}, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if cutoff, err := time.Parse(layout, raw); err == nil {
			return cutoff.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("radiorest cutoff %q: want RFC 3339 or YYYY-MM-DD", raw)
}

// ValidateListenAddr ensures serve mode binds to localhost only; the feeds
// are meant to sit behind the station's reverse proxy.
func ValidateListenAddr(addr string) error {
	addr = strings.TrimSpace(strings.ToLower(addr))
	if strings.HasPrefix(addr, "127.0.0.1:") || strings.HasPrefix(addr, "localhost:") || strings.HasPrefix(addr, "[::1]:") {
		return nil
	}
	return errors.New("listen address must bind to localhost")
}

func resolvePath(path string) (string, error) {
	if strings.HasPrefix(path, "~") {
		home, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(home, path[1:])
		}
	}
	return filepath.Abs(path)
}
