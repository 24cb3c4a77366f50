// Package config loads ghgraph settings from a TOML file and the
// environment.
//
// Settings are resolved in three layers: built-in defaults, the config file
// ($XDG_CONFIG_HOME/ghgraph/config.toml unless a path is given), then the
// environment. A missing default file is not an error; a missing explicit
// file is.
//
// Example file:
//
//	[neo4j]
//	uri      = "neo4j://localhost:7687"
//	user     = "neo4j"
//	password = "secret"
//
//	[cache]
//	backend = "redis"
//	redis_url = "redis://localhost:6379/0"
//	ttl = "12h"
//
//	[render]
//	formats = ["png", "svg"]
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/ghgraph/pkg/cache"
	ghErrors "github.com/matzehuels/ghgraph/pkg/errors"
	"github.com/matzehuels/ghgraph/pkg/extract/neo4j"
	"github.com/matzehuels/ghgraph/pkg/integrations/ossinsight"
	"github.com/matzehuels/ghgraph/pkg/render/nodelink"
)

const appName = "ghgraph"

// EnvRedisURL overrides [Cache.RedisURL].
const EnvRedisURL = "GHGRAPH_REDIS_URL"

// Defaults.
const (
	DefaultExtractionTTL = 24 * time.Hour
	DefaultInsightTTL    = time.Hour
)

// Config is the full settings tree.
type Config struct {
	Neo4j   neo4j.Config `toml:"neo4j"`
	Cache   Cache        `toml:"cache"`
	Render  Render       `toml:"render"`
	Insight Insight      `toml:"insight"`

	// Path is the file the settings were read from, empty when none was.
	Path string `toml:"-"`
}

// Cache selects the memoization backend for extractions and API responses.
type Cache struct {
	Backend  string   `toml:"backend"`
	Dir      string   `toml:"dir"`
	RedisURL string   `toml:"redis_url"`
	TTL      Duration `toml:"ttl"`
}

// Render holds image defaults. Zero values defer to the renderer.
type Render struct {
	Width             int      `toml:"width"`
	Height            int      `toml:"height"`
	Formats           []string `toml:"formats"`
	Seed              uint64   `toml:"seed"`
	LabelLimit        int      `toml:"label_limit"`
	ClusterLabelLimit int      `toml:"cluster_label_limit"`
	Declutter         *bool    `toml:"declutter"`
}

// Insight configures the OSS Insight client.
type Insight struct {
	BaseURL string   `toml:"base_url"`
	TTL     Duration `toml:"ttl"`
}

// Duration is a time.Duration written as a Go duration string ("90m").
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Cache: Cache{
			Backend: cache.BackendFile,
			TTL:     Duration{DefaultExtractionTTL},
		},
		Render: Render{Formats: []string{string(nodelink.FormatPNG)}},
		Insight: Insight{
			BaseURL: ossinsight.DefaultBaseURL,
			TTL:     Duration{DefaultInsightTTL},
		},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/ghgraph/config.toml, falling back
// to ~/.config.
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// DefaultCacheDir returns $XDG_CACHE_HOME/ghgraph, falling back to
// ~/.cache.
func DefaultCacheDir() (string, error) {
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return filepath.Join(dir, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// Load reads path (or the default location when path is empty), applies
// environment overrides and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return nil, ghErrors.Wrap(ghErrors.ErrCodeInvalidConfig, err, "locate config file")
		}
		path = p
	}

	md, err := toml.DecodeFile(path, cfg)
	switch {
	case err == nil:
		cfg.Path = path
		if keys := md.Undecoded(); len(keys) > 0 {
			names := make([]string, len(keys))
			for i, k := range keys {
				names[i] = k.String()
			}
			return nil, ghErrors.New(ghErrors.ErrCodeInvalidConfig, "%s: unknown keys: %s", path, strings.Join(names, ", "))
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	default:
		return nil, ghErrors.Wrap(ghErrors.ErrCodeInvalidConfig, err, "read %s", path)
	}

	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overlays NEO4J_* and GHGRAPH_REDIS_URL onto c. Setting the redis
// URL through the environment also selects the redis backend.
func (c *Config) ApplyEnv() {
	c.Neo4j = neo4j.ConfigFromEnv(c.Neo4j)
	if v := os.Getenv(EnvRedisURL); v != "" {
		c.Cache.RedisURL = v
		c.Cache.Backend = cache.BackendRedis
	}
}

// Validate checks everything that can be checked without connecting. The
// Neo4j URI is only checked when set; commands that query the database call
// [Config.RequireNeo4j].
func (c *Config) Validate() error {
	if c.Neo4j.URI != "" {
		if err := ghErrors.ValidateDatabaseURI(c.Neo4j.URI); err != nil {
			return err
		}
	}

	backends := []string{"", cache.BackendFile, cache.BackendRedis, cache.BackendNone}
	if !slices.Contains(backends, c.Cache.Backend) {
		return ghErrors.New(ghErrors.ErrCodeInvalidConfig, "unknown cache backend %q", c.Cache.Backend)
	}
	if c.Cache.Backend == cache.BackendRedis && c.Cache.RedisURL == "" {
		return ghErrors.New(ghErrors.ErrCodeInvalidConfig, "redis cache backend needs redis_url (or %s)", EnvRedisURL)
	}
	if c.Cache.TTL.Duration < 0 || c.Insight.TTL.Duration < 0 {
		return ghErrors.New(ghErrors.ErrCodeInvalidConfig, "cache ttl must not be negative")
	}

	if c.Render.Width < 0 || c.Render.Height < 0 {
		return ghErrors.New(ghErrors.ErrCodeInvalidConfig, "invalid render size %dx%d", c.Render.Width, c.Render.Height)
	}
	if _, err := c.Formats(); err != nil {
		return err
	}

	if c.Insight.BaseURL != "" {
		if err := ghErrors.ValidateURL(c.Insight.BaseURL); err != nil {
			return ghErrors.Wrap(ghErrors.ErrCodeInvalidConfig, err, "insight base_url")
		}
	}
	return nil
}

// RequireNeo4j reports a missing or malformed connection.
func (c *Config) RequireNeo4j() error {
	if err := ghErrors.ValidateDatabaseURI(c.Neo4j.URI); err != nil {
		return err
	}
	if err := c.Neo4j.Validate(); err != nil {
		return ghErrors.Wrap(ghErrors.ErrCodeInvalidConfig, err, "neo4j connection")
	}
	return nil
}

// Formats parses the configured output formats.
func (c *Config) Formats() ([]nodelink.Format, error) {
	out := make([]nodelink.Format, 0, len(c.Render.Formats))
	for _, s := range c.Render.Formats {
		f, err := nodelink.ParseFormat(s)
		if err != nil {
			return nil, ghErrors.Wrap(ghErrors.ErrCodeInvalidFormat, err, "render formats")
		}
		out = append(out, f)
	}
	return out, nil
}

// CacheOptions resolves the cache backend settings, filling the default
// directory for the file backend.
func (c *Config) CacheOptions() (cache.Options, error) {
	opts := cache.Options{
		Backend:  c.Cache.Backend,
		Dir:      c.Cache.Dir,
		RedisURL: c.Cache.RedisURL,
		Prefix:   appName + ":",
	}
	if opts.Dir == "" && (opts.Backend == "" || opts.Backend == cache.BackendFile) {
		dir, err := DefaultCacheDir()
		if err != nil {
			return opts, ghErrors.Wrap(ghErrors.ErrCodeInvalidConfig, err, "locate cache directory")
		}
		opts.Dir = dir
	}
	return opts, nil
}
