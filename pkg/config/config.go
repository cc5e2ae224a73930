// Package config loads collabgraph settings from defaults, an optional YAML
// file and the environment, in that order of precedence.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"

	"github.com/rmax-ai/collabgraph/pkg/engine"
	"github.com/rmax-ai/collabgraph/pkg/filter"
)

const (
	SourceLive    = "live"
	SourceFixture = "fixture"

	defaultAddr = "127.0.0.1:8091"
)

type Catalog struct {
	Source      string `yaml:"source"`
	FixturePath string `yaml:"fixture_path"`
}

type MusicBrainz struct {
	BaseURL       string  `yaml:"base_url"`
	UserAgent     string  `yaml:"user_agent"`
	RatePerSecond float64 `yaml:"rate_per_second"`
}

type Spotify struct {
	BaseURL      string `yaml:"base_url"`
	TokenURL     string `yaml:"token_url"`
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
}

type Cache struct {
	RedisAddr string        `yaml:"redis_addr"`
	RedisTTL  time.Duration `yaml:"redis_ttl"`
	// Disk persists memoized lookups under the snapshot directory.
	Disk bool `yaml:"disk"`
}

type Snapshot struct {
	Dir string `yaml:"dir"`
}

type Graph struct {
	MaxDepth       int      `yaml:"max_depth"`
	Breadth        int      `yaml:"breadth"`
	SizeMultiplier int      `yaml:"size_multiplier"`
	MaxSize        int      `yaml:"max_size"`
	SeedSize       int      `yaml:"seed_size"`
	Palette        []string `yaml:"palette"`
}

type Server struct {
	Addr string `yaml:"addr"`
}

type Log struct {
	JSON  bool   `yaml:"json"`
	Level string `yaml:"level"`
}

// Config is the full application configuration.
type Config struct {
	Catalog     Catalog     `yaml:"catalog"`
	MusicBrainz MusicBrainz `yaml:"musicbrainz"`
	Spotify     Spotify     `yaml:"spotify"`
	Cache       Cache       `yaml:"cache"`
	Snapshot    Snapshot    `yaml:"snapshot"`
	Graph       Graph       `yaml:"graph"`
	Server      Server      `yaml:"server"`
	Log         Log         `yaml:"log"`
	// Filters are named presets of kind -> value pairs.
	Filters map[string]map[string]string `yaml:"filters"`
}

// Default returns the built-in configuration.
func Default() Config {
	opts := engine.DefaultOptions()
	return Config{
		Catalog: Catalog{Source: SourceLive},
		MusicBrainz: MusicBrainz{
			RatePerSecond: 1,
		},
		Cache:    Cache{RedisTTL: 24 * time.Hour},
		Snapshot: Snapshot{Dir: "saved"},
		Graph: Graph{
			MaxDepth:       2,
			Breadth:        5,
			SizeMultiplier: opts.SizeMultiplier,
			MaxSize:        opts.MaxSize,
			SeedSize:       opts.SeedSize,
			Palette:        opts.Palette,
		},
		Server: Server{Addr: defaultAddr},
		Log:    Log{Level: "info"},
	}
}

// Load builds the configuration from defaults, the YAML file at path (skipped
// when empty; COLLABGRAPH_CONFIG is consulted first) and the environment.
// Relative paths are resolved against the working directory.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv("COLLABGRAPH_CONFIG")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, errors.Wrapf(err, "read config %s", path)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, errors.Wrapf(err, "parse config %s", path)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}

	cwd, err := os.Getwd()
	if err != nil {
		return Config{}, errors.Wrap(err, "failed to get cwd")
	}
	cfg.Snapshot.Dir = resolvePath(cfg.Snapshot.Dir, cwd)
	cfg.Catalog.FixturePath = resolvePath(cfg.Catalog.FixturePath, cwd)
	return cfg, nil
}

func (c *Config) applyEnv() error {
	c.Catalog.Source = envOrDefault("COLLABGRAPH_CATALOG_SOURCE", c.Catalog.Source)
	c.Catalog.FixturePath = envOrDefault("COLLABGRAPH_FIXTURE_PATH", c.Catalog.FixturePath)
	c.MusicBrainz.BaseURL = envOrDefault("COLLABGRAPH_MUSICBRAINZ_URL", c.MusicBrainz.BaseURL)
	c.MusicBrainz.UserAgent = envOrDefault("COLLABGRAPH_MUSICBRAINZ_USER_AGENT", c.MusicBrainz.UserAgent)
	c.Spotify.BaseURL = envOrDefault("COLLABGRAPH_SPOTIFY_URL", c.Spotify.BaseURL)
	c.Spotify.TokenURL = envOrDefault("COLLABGRAPH_SPOTIFY_TOKEN_URL", c.Spotify.TokenURL)
	c.Spotify.ClientID = envOrDefaultWithFallback([]string{"COLLABGRAPH_SPOTIFY_CLIENT_ID", "SPOTIFY_CLIENT_ID"}, c.Spotify.ClientID)
	c.Spotify.ClientSecret = envOrDefaultWithFallback([]string{"COLLABGRAPH_SPOTIFY_CLIENT_SECRET", "SPOTIFY_CLIENT_SECRET"}, c.Spotify.ClientSecret)
	c.Cache.RedisAddr = envOrDefault("COLLABGRAPH_REDIS_ADDR", c.Cache.RedisAddr)
	c.Snapshot.Dir = envOrDefault("COLLABGRAPH_SNAPSHOT_DIR", c.Snapshot.Dir)
	c.Server.Addr = addrFromEnv(c.Server.Addr)
	c.Log.Level = envOrDefault("COLLABGRAPH_LOG_LEVEL", c.Log.Level)

	if v := os.Getenv("COLLABGRAPH_MUSICBRAINZ_RATE"); v != "" {
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return errors.Wrap(err, "invalid COLLABGRAPH_MUSICBRAINZ_RATE")
		}
		c.MusicBrainz.RatePerSecond = parsed
	}
	if v := os.Getenv("COLLABGRAPH_REDIS_TTL"); v != "" {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return errors.Wrap(err, "invalid COLLABGRAPH_REDIS_TTL")
		}
		c.Cache.RedisTTL = parsed
	}
	for key, dst := range map[string]*bool{
		"COLLABGRAPH_CACHE_DISK": &c.Cache.Disk,
		"COLLABGRAPH_LOG_JSON":   &c.Log.JSON,
	} {
		if v := os.Getenv(key); v != "" {
			parsed, err := strconv.ParseBool(v)
			if err != nil {
				return errors.Wrapf(err, "invalid %s", key)
			}
			*dst = parsed
		}
	}
	for key, dst := range map[string]*int{
		"COLLABGRAPH_MAX_DEPTH": &c.Graph.MaxDepth,
		"COLLABGRAPH_BREADTH":   &c.Graph.Breadth,
	} {
		if v := os.Getenv(key); v != "" {
			parsed, err := strconv.Atoi(v)
			if err != nil {
				return errors.Wrapf(err, "invalid %s", key)
			}
			*dst = parsed
		}
	}
	return nil
}

// Validate checks the settings that would otherwise fail late.
func (c Config) Validate() error {
	switch c.Catalog.Source {
	case SourceLive:
	case SourceFixture:
		if c.Catalog.FixturePath == "" {
			return errors.New("catalog.source=fixture requires catalog.fixture_path")
		}
	default:
		return errors.Newf("unsupported catalog source: %s", c.Catalog.Source)
	}
	if c.Graph.MaxDepth < 1 {
		return errors.Newf("graph.max_depth must be positive, got %d", c.Graph.MaxDepth)
	}
	if c.Graph.Breadth < 0 {
		return errors.Newf("graph.breadth must not be negative, got %d", c.Graph.Breadth)
	}
	if c.Graph.SizeMultiplier <= 0 || c.Graph.MaxSize <= 0 {
		return errors.New("graph.size_multiplier and graph.max_size must be positive")
	}
	if c.MusicBrainz.RatePerSecond < 0 {
		return errors.New("musicbrainz.rate_per_second must not be negative")
	}
	if strings.TrimSpace(c.Server.Addr) == "" {
		return errors.New("server.addr cannot be empty")
	}
	for name, values := range c.Filters {
		if _, err := filter.FromValues(values); err != nil {
			return errors.Wrapf(err, "filter preset %q", name)
		}
	}
	return nil
}

// EngineOptions returns the expansion options described by the graph section.
func (c Config) EngineOptions() engine.Options {
	return engine.Options{
		SizeMultiplier: c.Graph.SizeMultiplier,
		MaxSize:        c.Graph.MaxSize,
		SeedSize:       c.Graph.SeedSize,
		Palette:        c.Graph.Palette,
	}
}

// Preset returns the filter set of a named preset.
func (c Config) Preset(name string) (filter.Set, error) {
	values, ok := c.Filters[name]
	if !ok {
		return nil, errors.Newf("unknown filter preset %q", name)
	}
	return filter.FromValues(values)
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func envOrDefaultWithFallback(keys []string, fallback string) string {
	for _, key := range keys {
		if value := os.Getenv(key); value != "" {
			return value
		}
	}
	return fallback
}

func addrFromEnv(fallback string) string {
	if value := os.Getenv("COLLABGRAPH_ADDR"); value != "" {
		return value
	}
	if port := os.Getenv("COLLABGRAPH_PORT"); port != "" {
		return fmt.Sprintf("127.0.0.1:%s", port)
	}
	return fallback
}

func resolvePath(path string, cwd string) string {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return trimmed
	}
	if filepath.IsAbs(trimmed) {
		return trimmed
	}
	return filepath.Join(cwd, trimmed)
}
