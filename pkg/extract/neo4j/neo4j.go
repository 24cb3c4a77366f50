// Package neo4j implements [extract.Querier] on the Neo4j Bolt driver.
//
// Every Read opens a session, runs one read transaction and closes the
// session again, so a Client is safe for concurrent use and holds no
// session state between reads.
package neo4j

import (
	"context"
	"fmt"
	"os"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/matzehuels/ghgraph/pkg/extract"
)

// Environment variables read by [ConfigFromEnv].
const (
	EnvURI      = "NEO4J_URI"
	EnvUser     = "NEO4J_USER"
	EnvPassword = "NEO4J_PASSWORD"
	EnvDatabase = "NEO4J_DATABASE"
)

// Config holds connection parameters. An empty Database selects the
// server's default database.
type Config struct {
	URI      string `toml:"uri"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	Database string `toml:"database"`
}

// ConfigFromEnv overlays the NEO4J_* environment variables onto base.
func ConfigFromEnv(base Config) Config {
	if v := os.Getenv(EnvURI); v != "" {
		base.URI = v
	}
	if v := os.Getenv(EnvUser); v != "" {
		base.User = v
	}
	if v := os.Getenv(EnvPassword); v != "" {
		base.Password = v
	}
	if v := os.Getenv(EnvDatabase); v != "" {
		base.Database = v
	}
	return base
}

// Validate reports missing connection parameters.
func (c Config) Validate() error {
	if c.URI == "" {
		return fmt.Errorf("neo4j: missing uri (set %s)", EnvURI)
	}
	if c.User == "" {
		return fmt.Errorf("neo4j: missing user (set %s)", EnvUser)
	}
	return nil
}

// Client is a read-only Neo4j connection.
type Client struct {
	driver   neo4j.DriverWithContext
	database string
}

var _ extract.Querier = (*Client)(nil)

// Open creates a driver and verifies the server is reachable.
func Open(ctx context.Context, cfg Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	driver, err := neo4j.NewDriverWithContext(cfg.URI, neo4j.BasicAuth(cfg.User, cfg.Password, ""))
	if err != nil {
		return nil, fmt.Errorf("neo4j: create driver: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("neo4j: connect %s: %w", cfg.URI, err)
	}
	return &Client{driver: driver, database: cfg.Database}, nil
}

// Read runs query in a fresh read session and returns every record.
func (c *Client) Read(ctx context.Context, query string, params map[string]any) ([]extract.Record, error) {
	session := c.driver.NewSession(ctx, neo4j.SessionConfig{
		DatabaseName: c.database,
		AccessMode:   neo4j.AccessModeRead,
	})
	defer session.Close(ctx)

	out, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, query, params)
		if err != nil {
			return nil, err
		}
		records, err := result.Collect(ctx)
		if err != nil {
			return nil, err
		}
		rows := make([]extract.Record, 0, len(records))
		for _, rec := range records {
			rows = append(rows, extract.Record(rec.AsMap()))
		}
		return rows, nil
	})
	if err != nil {
		return nil, err
	}
	return out.([]extract.Record), nil
}

// Close releases the driver's connection pool.
func (c *Client) Close(ctx context.Context) error {
	return c.driver.Close(ctx)
}
