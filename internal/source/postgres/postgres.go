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
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"strings"

	"cloud.google.com/go/cloudsqlconn"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/metaharbor/ingest/internal/catalog"
	"github.com/metaharbor/ingest/internal/config"
	"github.com/metaharbor/ingest/internal/source"
)

// Connector introspects a PostgreSQL database, directly or through Cloud SQL.
type Connector struct {
	conn   *config.PostgresConnection
	pool   *sql.DB
	logger *zap.Logger
}

var _ source.Connector = (*Connector)(nil)

// postgresTypeMap keys are lowercased leading words of
// information_schema.columns.data_type ("character varying" -> "character",
// "timestamp without time zone" -> "timestamp", array columns -> "array").
var postgresTypeMap = map[string]catalog.DataType{
	"smallint":    catalog.DataTypeSmallInt,
	"int2":        catalog.DataTypeSmallInt,
	"integer":     catalog.DataTypeInt,
	"int4":        catalog.DataTypeInt,
	"bigint":      catalog.DataTypeBigInt,
	"int8":        catalog.DataTypeBigInt,
	"real":        catalog.DataTypeFloat,
	"float4":      catalog.DataTypeFloat,
	"double":      catalog.DataTypeDouble,
	"float8":      catalog.DataTypeDouble,
	"numeric":     catalog.DataTypeNumeric,
	"decimal":     catalog.DataTypeDecimal,
	"money":       catalog.DataTypeNumeric,
	"boolean":     catalog.DataTypeBoolean,
	"character":   catalog.DataTypeVarchar,
	"varchar":     catalog.DataTypeVarchar,
	"bpchar":      catalog.DataTypeChar,
	"text":        catalog.DataTypeText,
	"bytea":       catalog.DataTypeBinary,
	"date":        catalog.DataTypeDate,
	"time":        catalog.DataTypeTime,
	"timetz":      catalog.DataTypeTime,
	"timestamp":   catalog.DataTypeTimestamp,
	"timestamptz": catalog.DataTypeTimestamp,
	"interval":    catalog.DataTypeInterval,
	"json":        catalog.DataTypeJSON,
	"jsonb":       catalog.DataTypeJSON,
	"uuid":        catalog.DataTypeUUID,
	"array":       catalog.DataTypeArray,
}

// New builds a Postgres connector from a source configuration.
func New(cfg config.SourceConfig, logger *zap.Logger) (source.Connector, error) {
	conn, err := cfg.Connection.PostgresConn()
	if err != nil {
		return nil, err
	}

	var pool *sql.DB
	if conn.CloudSQLInstance != "" {
		pool, err = openCloudSQLPool(conn)
	} else {
		pool, err = openStandardPool(conn)
	}
	if err != nil {
		return nil, err
	}
	return &Connector{conn: conn, pool: pool, logger: logger}, nil
}

func newWithPool(pool *sql.DB, logger *zap.Logger) *Connector {
	return &Connector{conn: &config.PostgresConnection{}, pool: pool, logger: logger}
}

func openStandardPool(conn *config.PostgresConnection) (*sql.DB, error) {
	sslMode := conn.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	connStr := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		conn.Host, conn.Port, conn.Username, conn.Password, conn.Database, sslMode,
	)
	pool, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("opening postgres connection: %w", err)
	}
	return pool, nil
}

func openCloudSQLPool(conn *config.PostgresConnection) (*sql.DB, error) {
	dsn := fmt.Sprintf("user=%s password=%s database=%s", conn.Username, conn.Password, conn.Database)
	pgxCfg, err := pgx.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parsing cloud sql postgres config: %w", err)
	}

	var opts []cloudsqlconn.Option
	if conn.UsePrivateIP {
		opts = append(opts, cloudsqlconn.WithDefaultDialOptions(cloudsqlconn.WithPrivateIP()))
	}
	d, err := cloudsqlconn.NewDialer(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("cloudsqlconn.NewDialer: %w", err)
	}
	pgxCfg.DialFunc = func(ctx context.Context, network, instance string) (net.Conn, error) {
		return d.Dial(ctx, conn.CloudSQLInstance)
	}

	pool, err := sql.Open("pgx", stdlib.RegisterConnConfig(pgxCfg))
	if err != nil {
		return nil, fmt.Errorf("opening cloud sql postgres connection: %w", err)
	}
	return pool, nil
}

// Prepare verifies connectivity.
func (c *Connector) Prepare(ctx context.Context) error {
	return c.Ping(ctx)
}

func (c *Connector) ListTables(ctx context.Context) ([]string, error) {
	query := `SELECT table_name FROM information_schema.tables
		WHERE table_schema = 'public' AND table_type = 'BASE TABLE'
		ORDER BY table_name`

	rows, err := c.pool.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing postgres tables: %w", err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning postgres table name: %w", err)
		}
		tables = append(tables, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating postgres table rows: %w", err)
	}
	return tables, nil
}

func (c *Connector) DescribeTable(ctx context.Context, tableName string) ([]catalog.ColumnDescriptor, error) {
	query := `SELECT c.column_name, c.data_type, c.udt_name, c.is_nullable, c.column_default,
			pgd.description
		FROM information_schema.columns c
		LEFT JOIN pg_catalog.pg_statio_all_tables st
			ON st.relname = c.table_name AND st.schemaname = c.table_schema
		LEFT JOIN pg_catalog.pg_description pgd
			ON pgd.objoid = st.relid AND pgd.objsubid = c.ordinal_position
		WHERE c.table_schema = 'public' AND c.table_name = $1
		ORDER BY c.ordinal_position`

	rows, err := c.pool.QueryContext(ctx, query, tableName)
	if err != nil {
		return nil, fmt.Errorf("describing postgres table %s: %w", tableName, err)
	}
	defer rows.Close()

	var columns []catalog.ColumnDescriptor
	for rows.Next() {
		var name, dataType, udtName, isNullable string
		var columnDefault, comment sql.NullString
		if err := rows.Scan(&name, &dataType, &udtName, &isNullable, &columnDefault, &comment); err != nil {
			return nil, fmt.Errorf("scanning postgres column for %s: %w", tableName, err)
		}

		tag := strings.ToLower(source.TypeTag(dataType))
		resolved := source.ResolveType(postgresTypeMap, tag, name, c.logger)

		col := catalog.ColumnDescriptor{
			Name:     name,
			DataType: resolved,
			Nullable: isNullable == "YES",
		}
		if columnDefault.Valid {
			col.Default = &columnDefault.String
		}
		if comment.Valid && comment.String != "" {
			col.Comment = &comment.String
		}
		if resolved.IsComplex() {
			// information_schema reports arrays as bare "ARRAY"; the
			// udt name (e.g. _int4) is the closest raw description.
			raw := udtName
			if raw == "" {
				raw = dataType
			}
			col.RawDataType = &raw
		}
		columns = append(columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating postgres columns for %s: %w", tableName, err)
	}
	return columns, nil
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
	source.Register(config.KindPostgres, New)
}
