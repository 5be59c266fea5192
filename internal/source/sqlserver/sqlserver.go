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
package sqlserver

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"net/url"
	"strings"

	"cloud.google.com/go/cloudsqlconn"
	mssql "github.com/denisenkom/go-mssqldb"
	"go.uber.org/zap"

	"github.com/metaharbor/ingest/internal/catalog"
	"github.com/metaharbor/ingest/internal/config"
	"github.com/metaharbor/ingest/internal/source"
)

// Connector introspects a SQL Server database, directly or through Cloud SQL.
type Connector struct {
	conn   *config.SQLServerConnection
	pool   *sql.DB
	logger *zap.Logger
}

var _ source.Connector = (*Connector)(nil)

var sqlServerTypeMap = map[string]catalog.DataType{
	"tinyint":          catalog.DataTypeTinyInt,
	"smallint":         catalog.DataTypeSmallInt,
	"int":              catalog.DataTypeInt,
	"bigint":           catalog.DataTypeBigInt,
	"bit":              catalog.DataTypeBoolean,
	"decimal":          catalog.DataTypeDecimal,
	"numeric":          catalog.DataTypeNumeric,
	"money":            catalog.DataTypeNumeric,
	"smallmoney":       catalog.DataTypeNumeric,
	"float":            catalog.DataTypeDouble,
	"real":             catalog.DataTypeFloat,
	"char":             catalog.DataTypeChar,
	"nchar":            catalog.DataTypeChar,
	"varchar":          catalog.DataTypeVarchar,
	"nvarchar":         catalog.DataTypeVarchar,
	"text":             catalog.DataTypeText,
	"ntext":            catalog.DataTypeText,
	"xml":              catalog.DataTypeText,
	"binary":           catalog.DataTypeBinary,
	"varbinary":        catalog.DataTypeBinary,
	"image":            catalog.DataTypeBinary,
	"date":             catalog.DataTypeDate,
	"time":             catalog.DataTypeTime,
	"datetime":         catalog.DataTypeTimestamp,
	"datetime2":        catalog.DataTypeTimestamp,
	"smalldatetime":    catalog.DataTypeTimestamp,
	"datetimeoffset":   catalog.DataTypeTimestamp,
	"uniqueidentifier": catalog.DataTypeUUID,
}

type csqlDialer struct {
	dialer     *cloudsqlconn.Dialer
	connName   string
	usePrivate bool
}

// DialContext adheres to the mssql.Dialer interface.
func (c *csqlDialer) DialContext(ctx context.Context, network, addr string) (net.Conn, error) {
	var opts []cloudsqlconn.DialOption
	if c.usePrivate {
		opts = append(opts, cloudsqlconn.WithPrivateIP())
	}
	return c.dialer.Dial(ctx, c.connName, opts...)
}

// New builds a SQL Server connector from a source configuration.
func New(cfg config.SourceConfig, logger *zap.Logger) (source.Connector, error) {
	conn, err := cfg.Connection.SQLServerConn()
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
	return &Connector{conn: &config.SQLServerConnection{}, pool: pool, logger: logger}
}

func dsn(conn *config.SQLServerConnection, host string) string {
	u := &url.URL{
		Scheme:   "sqlserver",
		User:     url.UserPassword(conn.Username, conn.Password),
		Host:     host,
		RawQuery: url.Values{"database": {conn.Database}}.Encode(),
	}
	return u.String()
}

func openStandardPool(conn *config.SQLServerConnection) (*sql.DB, error) {
	pool, err := sql.Open("sqlserver", dsn(conn, fmt.Sprintf("%s:%d", conn.Host, conn.Port)))
	if err != nil {
		return nil, fmt.Errorf("opening sqlserver connection: %w", err)
	}
	return pool, nil
}

func openCloudSQLPool(conn *config.SQLServerConnection) (*sql.DB, error) {
	d, err := cloudsqlconn.NewDialer(context.Background())
	if err != nil {
		return nil, fmt.Errorf("cloudsqlconn.NewDialer: %w", err)
	}

	connector, err := mssql.NewConnector(dsn(conn, "cloudsql"))
	if err != nil {
		d.Close()
		return nil, fmt.Errorf("building cloud sql sqlserver connector: %w", err)
	}
	connector.Dialer = &csqlDialer{
		dialer:     d,
		connName:   conn.CloudSQLInstance,
		usePrivate: conn.UsePrivateIP,
	}
	return sql.OpenDB(connector), nil
}

// Prepare verifies connectivity.
func (c *Connector) Prepare(ctx context.Context) error {
	return c.Ping(ctx)
}

func (c *Connector) ListTables(ctx context.Context) ([]string, error) {
	query := `SELECT TABLE_NAME FROM INFORMATION_SCHEMA.TABLES
		WHERE TABLE_TYPE = 'BASE TABLE'
		ORDER BY TABLE_NAME`

	rows, err := c.pool.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing sqlserver tables: %w", err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning sqlserver table name: %w", err)
		}
		tables = append(tables, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sqlserver table rows: %w", err)
	}
	return tables, nil
}

func (c *Connector) DescribeTable(ctx context.Context, tableName string) ([]catalog.ColumnDescriptor, error) {
	query := `SELECT c.COLUMN_NAME, c.DATA_TYPE, c.IS_NULLABLE, c.COLUMN_DEFAULT,
			CAST(ep.value AS NVARCHAR(4000)) AS column_comment
		FROM INFORMATION_SCHEMA.COLUMNS c
		LEFT JOIN sys.extended_properties ep
			ON ep.major_id = OBJECT_ID(c.TABLE_SCHEMA + '.' + c.TABLE_NAME)
			AND ep.minor_id = c.ORDINAL_POSITION
			AND ep.name = 'MS_Description'
		WHERE c.TABLE_NAME = @p1
		ORDER BY c.ORDINAL_POSITION`

	rows, err := c.pool.QueryContext(ctx, query, tableName)
	if err != nil {
		return nil, fmt.Errorf("describing sqlserver table %s: %w", tableName, err)
	}
	defer rows.Close()

	var columns []catalog.ColumnDescriptor
	for rows.Next() {
		var name, dataType, isNullable string
		var columnDefault, comment sql.NullString
		if err := rows.Scan(&name, &dataType, &isNullable, &columnDefault, &comment); err != nil {
			return nil, fmt.Errorf("scanning sqlserver column for %s: %w", tableName, err)
		}

		tag := strings.ToLower(source.TypeTag(dataType))
		col := catalog.ColumnDescriptor{
			Name:     name,
			DataType: source.ResolveType(sqlServerTypeMap, tag, name, c.logger),
			Nullable: isNullable == "YES",
		}
		if columnDefault.Valid {
			col.Default = &columnDefault.String
		}
		if comment.Valid && comment.String != "" {
			col.Comment = &comment.String
		}
		columns = append(columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sqlserver columns for %s: %w", tableName, err)
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
	source.Register(config.KindSQLServer, New)
}
