/*-------------------------------------------------------------------------
 *
 * pgEdge NetSuite Connect Agent
 *
 * Portions copyright (c) 2026, pgEdge, Inc.
 * This software is released under The PostgreSQL License
 *
 *-------------------------------------------------------------------------
 */

// Package mirror executes approved queries against a local Postgres
// replica of the Connect tables. The replica lets agents iterate on
// queries without burning concurrency slots on the real SuiteAnalytics
// endpoint. Only SQL that came out of the validator approved should reach
// Execute.
package mirror

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"pgedge-netsuite-mcp/internal/config"
	"pgedge-netsuite-mcp/internal/logging"
)

// Result holds the rows of one mirror query
type Result struct {
	Columns   []string
	Rows      [][]interface{}
	Truncated bool // true when the row cap cut the result short
	Elapsed   time.Duration
}

// Client manages the connection pool to the mirror database
type Client struct {
	cfg  config.MirrorConfig
	pool *pgxpool.Pool
}

// NewClient creates a mirror client from configuration. Connect must be
// called before Execute.
func NewClient(cfg config.MirrorConfig) *Client {
	return &Client{cfg: cfg}
}

// Connect establishes the connection pool
func (c *Client) Connect(ctx context.Context) error {
	poolConfig, err := pgxpool.ParseConfig(c.connString())
	if err != nil {
		return fmt.Errorf("unable to parse connection string: %w", err)
	}

	if c.cfg.PoolMaxConns > 0 {
		poolConfig.MaxConns = int32(c.cfg.PoolMaxConns)
	}
	if c.cfg.PoolMinConns > 0 {
		poolConfig.MinConns = int32(c.cfg.PoolMinConns)
	}
	if c.cfg.PoolMaxConnIdleTime != "" {
		if idle, err := time.ParseDuration(c.cfg.PoolMaxConnIdleTime); err == nil {
			poolConfig.MaxConnIdleTime = idle
		}
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return fmt.Errorf("unable to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return fmt.Errorf("mirror database unreachable: %w", err)
	}

	c.pool = pool
	logging.Info("mirror connected",
		"host", c.cfg.Host,
		"database", c.cfg.Database,
		"max_conns", poolConfig.MaxConns)
	return nil
}

// Close releases the connection pool
func (c *Client) Close() {
	if c.pool != nil {
		c.pool.Close()
		c.pool = nil
	}
}

// Ready reports whether the client has a live pool
func (c *Client) Ready() bool {
	return c.pool != nil
}

// Execute rewrites an approved Connect-dialect query for the mirror and
// runs it inside a read-only transaction. Rows beyond the configured cap
// are dropped and the result is marked truncated.
func (c *Client) Execute(ctx context.Context, approvedSQL string) (*Result, error) {
	if c.pool == nil {
		return nil, fmt.Errorf("mirror is not connected")
	}

	rewritten, err := Rewrite(approvedSQL, c.cfg.TablePrefix)
	if err != nil {
		return nil, err
	}

	start := time.Now()

	tx, err := c.pool.BeginTx(ctx, pgx.TxOptions{AccessMode: pgx.ReadOnly})
	if err != nil {
		return nil, fmt.Errorf("begin read-only transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	rows, err := tx.Query(ctx, rewritten)
	if err != nil {
		return nil, fmt.Errorf("mirror query failed: %w", err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	columns := make([]string, len(fields))
	for i, f := range fields {
		columns[i] = string(f.Name)
	}

	result := &Result{Columns: columns}
	for rows.Next() {
		if len(result.Rows) >= c.cfg.MaxRows {
			result.Truncated = true
			break
		}
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("reading row: %w", err)
		}
		result.Rows = append(result.Rows, values)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("mirror query failed: %w", err)
	}

	result.Elapsed = time.Since(start)
	logging.Debug("mirror query executed",
		"rows", len(result.Rows),
		"truncated", result.Truncated,
		"elapsed_ms", result.Elapsed.Milliseconds())
	return result, nil
}

func (c *Client) connString() string {
	u := url.URL{
		Scheme: "postgres",
		Host:   fmt.Sprintf("%s:%d", c.cfg.Host, c.cfg.Port),
		Path:   "/" + c.cfg.Database,
	}
	if c.cfg.Password != "" {
		u.User = url.UserPassword(c.cfg.User, c.cfg.Password)
	} else {
		u.User = url.User(c.cfg.User)
	}
	q := u.Query()
	q.Set("sslmode", c.cfg.SSLMode)
	q.Set("application_name", "pgEdge NetSuite Connect Agent")
	u.RawQuery = q.Encode()
	return u.String()
}
