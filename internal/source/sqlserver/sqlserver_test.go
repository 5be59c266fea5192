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
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/metaharbor/ingest/internal/catalog"
	"github.com/metaharbor/ingest/internal/config"
)

var describeColumns = []string{"COLUMN_NAME", "DATA_TYPE", "IS_NULLABLE", "COLUMN_DEFAULT", "column_comment"}

func TestDescribeTable(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT c.COLUMN_NAME, c.DATA_TYPE, c.IS_NULLABLE").
		WithArgs("invoices").
		WillReturnRows(sqlmock.NewRows(describeColumns).
			AddRow("id", "uniqueidentifier", "NO", "(newid())", nil).
			AddRow("total", "money", "YES", nil, "invoice total").
			AddRow("issued_at", "datetime2", "NO", nil, nil))

	c := newWithPool(db, zap.NewNop())
	cols, err := c.DescribeTable(context.Background(), "invoices")
	require.NoError(t, err)
	require.Len(t, cols, 3)

	assert.Equal(t, catalog.DataTypeUUID, cols[0].DataType)
	assert.False(t, cols[0].Nullable)
	require.NotNil(t, cols[0].Default)
	assert.Equal(t, "(newid())", *cols[0].Default)

	assert.Equal(t, catalog.DataTypeNumeric, cols[1].DataType)
	require.NotNil(t, cols[1].Comment)
	assert.Equal(t, "invoice total", *cols[1].Comment)

	assert.Equal(t, catalog.DataTypeTimestamp, cols[2].DataType)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListTables(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT TABLE_NAME FROM INFORMATION_SCHEMA.TABLES").
		WillReturnRows(sqlmock.NewRows([]string{"TABLE_NAME"}).
			AddRow("invoices"))

	c := newWithPool(db, zap.NewNop())
	tables, err := c.ListTables(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"invoices"}, tables)
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
	assert.Equal(t, config.KindSQLServer, invalid.Expected)
	assert.Equal(t, config.KindHive, invalid.Actual)
}
