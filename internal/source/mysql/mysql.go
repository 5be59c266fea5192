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
package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"strings"

	"cloud.google.com/go/cloudsqlconn"
	"github.com/go-sql-driver/mysql"
	"go.uber.org/zap"

	"github.com/metaharbor/ingest/internal/catalog"
	"github.com/metaharbor/ingest/internal/config"
	"github.com/metaharbor/ingest/internal/source"
)

// Connector introspects a MySQL database, directly or through Cloud SQL.
type Connector struct {
	conn   *config.MySQLConnection
	pool   *sql.DB
	logger *zap.Logger
}

var _ source.Connector = (*Connector)(nil)

var mysqlTypeMap = map[string]catalog.DataType{
	"tinyint":    catalog.DataTypeTinyInt,
	"smallint":   catalog.DataTypeSmallInt,
	"mediumint":  catalog.DataTypeInt,
	"int":        catalog.DataTypeInt,
	"integer":    catalog.DataTypeInt,
	"bigint":     catalog.DataTypeBigInt,
	"float":      catalog.DataTypeFloat,
	"double":     catalog.DataTypeDouble,
	"decimal":    catalog.DataTypeDecimal,
	"numeric":    catalog.DataTypeNumeric,
	"bit":        catalog.DataTypeBinary,
	"boolean":    catalog.DataTypeBoolean,
	"varchar":    catalog.DataTypeVarchar,
	"char":       catalog.DataTypeChar,
	"tinytext":   catalog.DataTypeText,
	"text":       catalog.DataTypeText,
	"mediumtext": catalog.DataTypeText,
	"longtext":   catalog.DataTypeText,
	"enum":       catalog.DataTypeVarchar,
	"set":        catalog.DataTypeVarchar,
	"binary":     catalog.DataTypeBinary,
	"varbinary":  catalog.DataTypeBinary,
	"tinyblob":   catalog.DataTypeBinary,
	"blob":       catalog.DataTypeBinary,
	"mediumblob": catalog.DataTypeBinary,
	"longblob":   catalog.DataTypeBinary,
	"date":       catalog.DataTypeDate,
	"time":       catalog.DataTypeTime,
	"datetime":   catalog.DataTypeTimestamp,
	"timestamp":  catalog.DataTypeTimestamp,
	"year":       catalog.DataTypeInt,
	"json":       catalog.DataTypeJSON,
}

// New builds a MySQL connector from a source configuration.
func New(cfg config.SourceConfig, logger *zap.Logger) (source.Connector, error) {
	conn, err := cfg.Connection.MySQLConn()
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
	return &Connector{conn: &config.MySQLConnection{}, pool: pool, logger: logger}
}

func openStandardPool(conn *config.MySQLConnection) (*sql.DB, error) {
	mysqlCfg := mysql.Config{
		User:                 conn.Username,
		Passwd:               conn.Password,
		Net:                  "tcp",
		Addr:                 fmt.Sprintf("%s:%d", conn.Host, conn.Port),
		DBName:               conn.Database,
		AllowNativePasswords: true,
		ParseTime:            true,
	}
	pool, err := sql.Open("mysql", mysqlCfg.FormatDSN())
	if err != nil {
		return nil, fmt.Errorf("opening mysql connection: %w", err)
	}
	return pool, nil
}

func openCloudSQLPool(conn *config.MySQLConnection) (*sql.DB, error) {
	if conn.Username == "" || conn.Password == "" || conn.Database == "" {
		return nil, fmt.Errorf("cloud sql mysql connection needs username, password and database")
	}

	d, err := cloudsqlconn.NewDialer(context.Background())
	if err != nil {
		return nil, fmt.Errorf("cloudsqlconn.NewDialer: %w", err)
	}

	var opts []cloudsqlconn.DialOption
	if conn.UsePrivateIP {
		opts = append(opts, cloudsqlconn.WithPrivateIP())
	}

	network := "cloudsql-" + conn.CloudSQLInstance
	mysql.RegisterDialContext(network,
		func(ctx context.Context, addr string) (net.Conn, error) {
			return d.Dial(ctx, conn.CloudSQLInstance, opts...)
		})

	mysqlCfg := mysql.Config{
		User:                 conn.Username,
		Passwd:               conn.Password,
		Net:                  network,
		Addr:                 conn.CloudSQLInstance,
		DBName:               conn.Database,
		AllowNativePasswords: true,
		ParseTime:            true,
	}
	pool, err := sql.Open("mysql", mysqlCfg.FormatDSN())
	if err != nil {
		mysql.DeregisterDialContext(network)
		d.Close()
		return nil, fmt.Errorf("opening cloud sql mysql connection: %w", err)
	}
	return pool, nil
}

// Prepare verifies connectivity. MySQL sources are already scoped to the
// configured database by the DSN.
func (c *Connector) Prepare(ctx context.Context) error {
	return c.Ping(ctx)
}

func (c *Connector) ListTables(ctx context.Context) ([]string, error) {
	query := `SELECT TABLE_NAME FROM information_schema.TABLES
		WHERE TABLE_SCHEMA = DATABASE() AND TABLE_TYPE = 'BASE TABLE'
		ORDER BY TABLE_NAME`

	rows, err := c.pool.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing mysql tables: %w", err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning mysql table name: %w", err)
		}
		tables = append(tables, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating mysql table rows: %w", err)
	}
	return tables, nil
}

func (c *Connector) DescribeTable(ctx context.Context, tableName string) ([]catalog.ColumnDescriptor, error) {
	query := `SELECT COLUMN_NAME, COLUMN_TYPE, IS_NULLABLE, COLUMN_DEFAULT, COLUMN_COMMENT
		FROM information_schema.COLUMNS
		WHERE TABLE_SCHEMA = DATABASE() AND TABLE_NAME = ?
		ORDER BY ORDINAL_POSITION`

	rows, err := c.pool.QueryContext(ctx, query, tableName)
	if err != nil {
		return nil, fmt.Errorf("describing mysql table %s: %w", tableName, err)
	}
	defer rows.Close()

	var columns []catalog.ColumnDescriptor
	for rows.Next() {
		var name, columnType, isNullable string
		var columnDefault, comment sql.NullString
		if err := rows.Scan(&name, &columnType, &isNullable, &columnDefault, &comment); err != nil {
			return nil, fmt.Errorf("scanning mysql column for %s: %w", tableName, err)
		}

		tag := strings.ToLower(source.TypeTag(columnType))
		col := catalog.ColumnDescriptor{
			Name:     name,
			DataType: source.ResolveType(mysqlTypeMap, tag, name, c.logger),
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
		return nil, fmt.Errorf("iterating mysql columns for %s: %w", tableName, err)
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
	source.Register(config.KindMySQL, New)
}
