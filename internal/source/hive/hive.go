/*
 * Copyright 2026 The metaharbor Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *    https://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */
package hive

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"
	_ "sqlflow.org/gohive"

	"github.com/metaharbor/ingest/internal/catalog"
	"github.com/metaharbor/ingest/internal/config"
	"github.com/metaharbor/ingest/internal/source"
)

// defaultDatabase is the namespace Prepare forces before any introspection.
const defaultDatabase = "default"

// Connector introspects a Hive warehouse through its thrift SQL driver.
type Connector struct {
	conn   *config.HiveConnection
	pool   *sql.DB
	logger *zap.Logger

	// database is the active namespace; empty until Prepare runs.
	database string
}

var _ source.Connector = (*Connector)(nil)

// New builds a Hive connector from a source configuration. Configurations
// carrying any other connection kind fail with config.InvalidSourceError.
func New(cfg config.SourceConfig, logger *zap.Logger) (source.Connector, error) {
	conn, err := cfg.Connection.HiveConn()
	if err != nil {
		return nil, err
	}

	dsn := fmt.Sprintf("%s:%s@%s:%d/%s", conn.Username, conn.Password, conn.Host, conn.Port, defaultDatabase)
	if conn.Auth != "" {
		dsn += "?auth=" + conn.Auth
	}
	pool, err := sql.Open("hive", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening hive connection to %s:%d: %w", conn.Host, conn.Port, err)
	}

	return &Connector{conn: conn, pool: pool, logger: logger}, nil
}

// newWithPool wires an existing pool in, for tests.
func newWithPool(pool *sql.DB, logger *zap.Logger) *Connector {
	return &Connector{conn: &config.HiveConnection{}, pool: pool, logger: logger}
}

// Prepare forces the active database to the default namespace, then verifies
// connectivity.
func (c *Connector) Prepare(ctx context.Context) error {
	c.database = defaultDatabase
	if _, err := c.pool.ExecContext(ctx, "USE "+c.database); err != nil {
		return fmt.Errorf("selecting hive database %s: %w", c.database, err)
	}
	return c.Ping(ctx)
}

// ListTables lists the tables of the active database.
func (c *Connector) ListTables(ctx context.Context) ([]string, error) {
	rows, err := c.pool.QueryContext(ctx, "SHOW TABLES")
	if err != nil {
		return nil, fmt.Errorf("listing hive tables: %w", err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning hive table name: %w", err)
		}
		tables = append(tables, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating hive table rows: %w", err)
	}
	return tables, nil
}

// DescribeTable retrieves the table's raw DESCRIBE rows and normalizes them
// into column descriptors.
func (c *Connector) DescribeTable(ctx context.Context, tableName string) ([]catalog.ColumnDescriptor, error) {
	raw, err := c.describeRows(ctx, tableName)
	if err != nil {
		return nil, err
	}
	return normalizeColumns(raw, c.logger), nil
}

// describeRows runs DESCRIBE and returns the three-field rows verbatim.
func (c *Connector) describeRows(ctx context.Context, tableName string) ([]rawColumn, error) {
	target := tableName
	if c.database != "" {
		target = c.database + "." + tableName
	}
	rows, err := c.pool.QueryContext(ctx, "DESCRIBE "+target)
	if err != nil {
		return nil, fmt.Errorf("describing hive table %s: %w", target, err)
	}
	defer rows.Close()

	var raw []rawColumn
	for rows.Next() {
		var name, dataType, comment sql.NullString
		if err := rows.Scan(&name, &dataType, &comment); err != nil {
			return nil, fmt.Errorf("scanning DESCRIBE row for %s: %w", target, err)
		}
		rc := rawColumn{Name: name.String, Type: dataType.String}
		if comment.Valid {
			rc.Comment = &comment.String
		}
		raw = append(raw, rc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating DESCRIBE rows for %s: %w", target, err)
	}
	return raw, nil
}

func (c *Connector) Ping(ctx context.Context) error {
	return c.pool.PingContext(ctx)
}

func (c *Connector) Close() error {
	if c.pool != nil {
		return c.pool.Close()
	}
	return nil
}

func init() {
	source.Register(config.KindHive, New)
}
