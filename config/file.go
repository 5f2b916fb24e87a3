package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pevans/festa/discovery"
	"github.com/pevans/festa/fetcher"
	"github.com/pevans/festa/logger"
	"github.com/pevans/festa/record"
	"github.com/pevans/festa/scraper"
	"gopkg.in/yaml.v3"
)

// EnvConfigPath names the variable that overrides the config file location.
const EnvConfigPath = "FESTA_CONFIG"

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// CrawlConfig configures the aggregator.
type CrawlConfig struct {
	DayWorkers int `yaml:"day_workers"`
}

// FileConfig represents the structure of ~/.festa/config.yaml. Sources are
// keyed by display name or slug, e.g. "kaltim-post".
type FileConfig struct {
	Keyword string                        `yaml:"keyword"`
	Fetch   fetcher.Config                `yaml:"fetch"`
	Log     logger.Config                 `yaml:"log"`
	Server  ServerConfig                  `yaml:"server"`
	Crawl   CrawlConfig                   `yaml:"crawl"`
	Sources map[string]scraper.SiteConfig `yaml:"sources"`
}

// Default returns the built-in configuration.
func Default() *FileConfig {
	d := discovery.DefaultConfig()
	return &FileConfig{
		Keyword: d.Keyword,
		Fetch:   d.Fetch,
		Log:     logger.Config{Level: "info", Encoding: "console"},
		Server:  ServerConfig{Addr: ":8080"},
		Crawl:   CrawlConfig{DayWorkers: d.DayWorkers},
	}
}

// Path returns $FESTA_CONFIG if set, otherwise ~/.festa/config.yaml.
func Path() (string, error) {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".festa", "config.yaml"), nil
}

// LoadConfigFile loads the config file over the defaults. Returns nil if the
// file doesn't exist (not an error). Returns error if the file exists but
// cannot be parsed.
func LoadConfigFile() (*FileConfig, error) {
	configPath, err := Path()
	if err != nil {
		return nil, err
	}
	return loadFile(configPath)
}

func loadFile(configPath string) (*FileConfig, error) {
	data, err := os.ReadFile(configPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return cfg, nil
}

// Load resolves the effective configuration: environment variables over
// the config file over defaults.
func Load() (*FileConfig, error) {
	return LoadFrom("")
}

// LoadFrom is Load with an explicit config file path. An empty path means
// the default location from Path.
func LoadFrom(configPath string) (*FileConfig, error) {
	if configPath == "" {
		p, err := Path()
		if err != nil {
			return nil, err
		}
		configPath = p
	}

	cfg, err := loadFile(configPath)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		cfg = Default()
	}
	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from FESTA_* variables read through getenv.
func (c *FileConfig) ApplyEnv(getenv func(string) string) error {
	str := func(key string, dst *string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}
	str("FESTA_KEYWORD", &c.Keyword)
	str("FESTA_LOG_LEVEL", &c.Log.Level)
	str("FESTA_LOG_ENCODING", &c.Log.Encoding)
	str("FESTA_SERVER_ADDR", &c.Server.Addr)
	str("FESTA_USER_AGENT", &c.Fetch.UserAgent)

	ints := map[string]*int{
		"FESTA_FETCH_ATTEMPTS": &c.Fetch.Attempts,
		"FESTA_DAY_WORKERS":    &c.Crawl.DayWorkers,
	}
	for key, dst := range ints {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid %s: %w", key, err)
			}
			*dst = n
		}
	}

	durations := map[string]*time.Duration{
		"FESTA_FETCH_TIMEOUT":     &c.Fetch.Timeout,
		"FESTA_FETCH_RETRY_DELAY": &c.Fetch.RetryDelay,
	}
	for key, dst := range durations {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("invalid %s: %w", key, err)
			}
			*dst = d
		}
	}

	if v := strings.TrimSpace(getenv("FESTA_REQUESTS_PER_SECOND")); v != "" {
		rps, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid FESTA_REQUESTS_PER_SECOND: %w", err)
		}
		c.Fetch.RequestsPerSecond = rps
	}
	return nil
}

// Discovery converts the file config into aggregator settings. An unknown
// source key is an error.
func (c *FileConfig) Discovery() (discovery.Config, error) {
	cfg := discovery.Config{
		Keyword:    c.Keyword,
		DayWorkers: c.Crawl.DayWorkers,
		Fetch:      c.Fetch,
		Sites:      make(map[record.SourceName]scraper.SiteConfig, len(c.Sources)),
	}
	for key, site := range c.Sources {
		name, err := record.ParseSourceName(key)
		if err != nil {
			return discovery.Config{}, fmt.Errorf("config sources: %w", err)
		}
		cfg.Sites[name] = site
	}
	return cfg, nil
}
