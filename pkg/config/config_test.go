package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/ghgraph/pkg/cache"
	ghErrors "github.com/matzehuels/ghgraph/pkg/errors"
	"github.com/matzehuels/ghgraph/pkg/render/nodelink"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"NEO4J_URI", "NEO4J_USER", "NEO4J_PASSWORD", "NEO4J_DATABASE", EnvRedisURL} {
		t.Setenv(k, "")
	}
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Path != "" {
		t.Errorf("Path = %q, want empty", cfg.Path)
	}
	if cfg.Cache.Backend != cache.BackendFile || cfg.Cache.TTL.Duration != DefaultExtractionTTL {
		t.Errorf("Cache = %+v", cfg.Cache)
	}
	if cfg.Insight.TTL.Duration != DefaultInsightTTL {
		t.Errorf("Insight.TTL = %v", cfg.Insight.TTL)
	}
}

func TestLoad_File(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
[neo4j]
uri = "neo4j+s://db.example.com"
user = "reader"
password = "pw"

[cache]
backend = "none"
ttl = "90m"

[render]
width = 800
formats = ["png", "dot"]
seed = 7
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Path != path {
		t.Errorf("Path = %q", cfg.Path)
	}
	if cfg.Neo4j.URI != "neo4j+s://db.example.com" || cfg.Neo4j.User != "reader" {
		t.Errorf("Neo4j = %+v", cfg.Neo4j)
	}
	if cfg.Cache.TTL.Duration != 90*time.Minute {
		t.Errorf("TTL = %v, want 90m", cfg.Cache.TTL)
	}
	formats, err := cfg.Formats()
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]nodelink.Format{nodelink.FormatPNG, nodelink.FormatDOT}, formats); diff != "" {
		t.Errorf("Formats() mismatch (-want +got):\n%s", diff)
	}
	if err := cfg.RequireNeo4j(); err != nil {
		t.Errorf("RequireNeo4j() = %v", err)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
[neo4j]
uri = "neo4j://file-host"
user = "file-user"
`)
	t.Setenv("NEO4J_URI", "bolt://env-host:7687")
	t.Setenv(EnvRedisURL, "redis://localhost:6379/1")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Neo4j.URI != "bolt://env-host:7687" {
		t.Errorf("URI = %q, env should win", cfg.Neo4j.URI)
	}
	if cfg.Neo4j.User != "file-user" {
		t.Errorf("User = %q, file value should survive", cfg.Neo4j.User)
	}
	if cfg.Cache.Backend != cache.BackendRedis || cfg.Cache.RedisURL != "redis://localhost:6379/1" {
		t.Errorf("Cache = %+v", cfg.Cache)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
		code ghErrors.Code
	}{
		{"unknown key", "[render]\ncolour = \"red\"\n", ghErrors.ErrCodeInvalidConfig},
		{"bad scheme", "[neo4j]\nuri = \"http://x\"\n", ghErrors.ErrCodeInvalidConfig},
		{"bad backend", "[cache]\nbackend = \"memcached\"\n", ghErrors.ErrCodeInvalidConfig},
		{"redis without url", "[cache]\nbackend = \"redis\"\n", ghErrors.ErrCodeInvalidConfig},
		{"bad ttl", "[cache]\nttl = \"soon\"\n", ghErrors.ErrCodeInvalidConfig},
		{"bad format", "[render]\nformats = [\"gif\"]\n", ghErrors.ErrCodeInvalidFormat},
		{"bad base url", "[insight]\nbase_url = \"ftp://x\"\n", ghErrors.ErrCodeInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			_, err := Load(writeConfig(t, tt.body))
			if !ghErrors.Is(err, tt.code) {
				t.Errorf("Load() error = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	clearEnv(t)
	if _, err := Load(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Error("Load() should fail for a missing explicit path")
	}
}

func TestRequireNeo4j(t *testing.T) {
	cfg := Default()
	if err := cfg.RequireNeo4j(); !ghErrors.Is(err, ghErrors.ErrCodeInvalidConfig) {
		t.Errorf("RequireNeo4j() = %v on empty config", err)
	}
	cfg.Neo4j.URI = "neo4j://localhost"
	if err := cfg.RequireNeo4j(); err == nil {
		t.Error("RequireNeo4j() should ask for a user")
	}
}

func TestCacheOptions(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg")

	cfg := Default()
	opts, err := cfg.CacheOptions()
	if err != nil {
		t.Fatal(err)
	}
	if opts.Dir != filepath.Join("/tmp/xdg", "ghgraph") {
		t.Errorf("Dir = %q", opts.Dir)
	}

	cfg.Cache.Backend = cache.BackendNone
	opts, _ = cfg.CacheOptions()
	if opts.Dir != "" {
		t.Errorf("Dir = %q for the null backend, want empty", opts.Dir)
	}
}
