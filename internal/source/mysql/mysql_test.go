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
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/metaharbor/ingest/internal/catalog"
	"github.com/metaharbor/ingest/internal/config"
)

var describeColumns = []string{"COLUMN_NAME", "COLUMN_TYPE", "IS_NULLABLE", "COLUMN_DEFAULT", "COLUMN_COMMENT"}

func TestDescribeTable(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT COLUMN_NAME, COLUMN_TYPE, IS_NULLABLE, COLUMN_DEFAULT, COLUMN_COMMENT").
		WithArgs("orders").
		WillReturnRows(sqlmock.NewRows(describeColumns).
			AddRow("id", "bigint(20)", "NO", nil, "").
			AddRow("status", "enum('new','paid')", "YES", "new", "order state").
			AddRow("payload", "json", "YES", nil, ""))

	c := newWithPool(db, zap.NewNop())
	cols, err := c.DescribeTable(context.Background(), "orders")
	require.NoError(t, err)
	require.Len(t, cols, 3)

	assert.Equal(t, "id", cols[0].Name)
	assert.Equal(t, catalog.DataTypeBigInt, cols[0].DataType)
	assert.False(t, cols[0].Nullable)
	assert.Nil(t, cols[0].Default)
	assert.Nil(t, cols[0].Comment)

	assert.Equal(t, catalog.DataTypeVarchar, cols[1].DataType)
	assert.True(t, cols[1].Nullable)
	require.NotNil(t, cols[1].Default)
	assert.Equal(t, "new", *cols[1].Default)
	require.NotNil(t, cols[1].Comment)
	assert.Equal(t, "order state", *cols[1].Comment)

	assert.Equal(t, catalog.DataTypeJSON, cols[2].DataType)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDescribeTableUnrecognizedType(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT COLUMN_NAME, COLUMN_TYPE, IS_NULLABLE, COLUMN_DEFAULT, COLUMN_COMMENT").
		WithArgs("places").
		WillReturnRows(sqlmock.NewRows(describeColumns).
			AddRow("loc", "geometry", "YES", nil, ""))

	core, logs := observer.New(zap.WarnLevel)
	c := newWithPool(db, zap.New(core))

	cols, err := c.DescribeTable(context.Background(), "places")
	require.NoError(t, err)
	require.Len(t, cols, 1)
	assert.Equal(t, catalog.DataTypeNull, cols[0].DataType)

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "geometry", fields["type"])
	assert.Equal(t, "loc", fields["column"])
}

func TestListTables(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT TABLE_NAME FROM information_schema.TABLES").
		WillReturnRows(sqlmock.NewRows([]string{"TABLE_NAME"}).
			AddRow("customers").
			AddRow("orders"))

	c := newWithPool(db, zap.NewNop())
	tables, err := c.ListTables(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"customers", "orders"}, tables)
}

func TestNewRejectsMismatchedConnection(t *testing.T) {
	cfg := config.SourceConfig{
		ServiceName: "warehouse",
		Connection: config.ServiceConnection{
			Kind: config.KindHive,
			Hive: &config.HiveConnection{Host: "hive.internal"},
		},
	}

	_, err := New(cfg, zap.NewNop())
	var invalid *config.InvalidSourceError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, config.KindMySQL, invalid.Expected)
	assert.Equal(t, config.KindHive, invalid.Actual)
}
