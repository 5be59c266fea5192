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
	"errors"
	"reflect"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/metaharbor/ingest/internal/catalog"
	"github.com/metaharbor/ingest/internal/config"
)

func strPtr(s string) *string { return &s }

func TestNormalizeColumns(t *testing.T) {
	tests := []struct {
		name string
		rows []rawColumn
		want []catalog.ColumnDescriptor
	}{
		{
			name: "partition section excluded entirely",
			rows: []rawColumn{
				{Name: "id", Type: "int"},
				{Name: "# Partition Information"},
				{Name: "# col_name", Type: "data_type", Comment: strPtr("comment")},
				{Name: "dt", Type: "string"},
			},
			want: []catalog.ColumnDescriptor{
				{Name: "id", DataType: catalog.DataTypeInt, Nullable: true},
			},
		},
		{
			name: "header and blank rows dropped without ending the scan",
			rows: []rawColumn{
				{Name: "# col_name", Type: "data_type"},
				{Name: "", Type: ""},
				{Name: "  id  ", Type: " bigint "},
				{Name: "   "},
				{Name: "name", Type: "string", Comment: strPtr("  customer name  ")},
			},
			want: []catalog.ColumnDescriptor{
				{Name: "id", DataType: catalog.DataTypeBigInt, Nullable: true},
				{Name: "name", DataType: catalog.DataTypeString, Nullable: true, Comment: strPtr("customer name")},
			},
		},
		{
			name: "type tag is the leading word run",
			rows: []rawColumn{
				{Name: "code", Type: "varchar(32)"},
				{Name: "price", Type: "decimal(10,2)"},
				{Name: "flags", Type: "array<string>"},
			},
			want: []catalog.ColumnDescriptor{
				{Name: "code", DataType: catalog.DataTypeVarchar, Nullable: true},
				{Name: "price", DataType: catalog.DataTypeDecimal, Nullable: true},
				{Name: "flags", DataType: catalog.DataTypeArray, Nullable: true, RawDataType: strPtr("array<string>")},
			},
		},
		{
			name: "raw data type kept for every complex type",
			rows: []rawColumn{
				{Name: "tags", Type: "map<string,string>"},
				{Name: "address", Type: "struct<street:string,zip:int>"},
				{Name: "payload", Type: "uniontype<int,string>"},
				{Name: "plain", Type: "string"},
			},
			want: []catalog.ColumnDescriptor{
				{Name: "tags", DataType: catalog.DataTypeMap, Nullable: true, RawDataType: strPtr("map<string,string>")},
				{Name: "address", DataType: catalog.DataTypeStruct, Nullable: true, RawDataType: strPtr("struct<street:string,zip:int>")},
				{Name: "payload", DataType: catalog.DataTypeUnion, Nullable: true, RawDataType: strPtr("uniontype<int,string>")},
				{Name: "plain", DataType: catalog.DataTypeString, Nullable: true},
			},
		},
		{
			name: "partitioned table with complex column",
			rows: []rawColumn{
				{Name: "id", Type: "int"},
				{Name: "data", Type: "array<string>", Comment: strPtr("nested")},
				{Name: "# Partition Information", Type: ""},
				{Name: "dt", Type: "string"},
			},
			want: []catalog.ColumnDescriptor{
				{Name: "id", DataType: catalog.DataTypeInt, Nullable: true},
				{Name: "data", DataType: catalog.DataTypeArray, Nullable: true, Comment: strPtr("nested"), RawDataType: strPtr("array<string>")},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalizeColumns(tt.rows, zap.NewNop())
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("normalizeColumns() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestNormalizeColumnsUnrecognizedType(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	logger := zap.New(core)

	rows := []rawColumn{
		{Name: "geo", Type: "geography(point)"},
		{Name: "id", Type: "int"},
	}
	got := normalizeColumns(rows, logger)

	if len(got) != 2 {
		t.Fatalf("expected unrecognized column to be kept, got %d descriptors", len(got))
	}
	if got[0].DataType != catalog.DataTypeNull {
		t.Errorf("unrecognized type resolved to %s, want %s", got[0].DataType, catalog.DataTypeNull)
	}
	if got[0].RawDataType != nil {
		t.Errorf("unrecognized type must not carry a raw data type, got %q", *got[0].RawDataType)
	}

	warnings := logs.All()
	if len(warnings) != 1 {
		t.Fatalf("expected exactly one warning, got %d", len(warnings))
	}
	fields := warnings[0].ContextMap()
	if fields["type"] != "geography" {
		t.Errorf("warning names type %v, want geography", fields["type"])
	}
	if fields["column"] != "geo" {
		t.Errorf("warning names column %v, want geo", fields["column"])
	}
}

func TestDescribeTable(t *testing.T) {
	pool, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock database: %v", err)
	}
	defer pool.Close()

	rows := sqlmock.NewRows([]string{"col_name", "data_type", "comment"}).
		AddRow("# col_name", "data_type", "comment").
		AddRow("id", "int", nil).
		AddRow("data", "array<string>", "nested").
		AddRow("# Partition Information", "", nil).
		AddRow("dt", "string", nil)
	mock.ExpectQuery(`DESCRIBE orders`).WillReturnRows(rows)

	c := newWithPool(pool, zap.NewNop())
	got, err := c.DescribeTable(context.Background(), "orders")
	if err != nil {
		t.Fatalf("DescribeTable() error: %v", err)
	}

	want := []catalog.ColumnDescriptor{
		{Name: "id", DataType: catalog.DataTypeInt, Nullable: true},
		{Name: "data", DataType: catalog.DataTypeArray, Nullable: true, Comment: strPtr("nested"), RawDataType: strPtr("array<string>")},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("DescribeTable() = %+v, want %+v", got, want)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestDescribeTablePropagatesDriverError(t *testing.T) {
	pool, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock database: %v", err)
	}
	defer pool.Close()

	driverErr := errors.New("Table not found missing_table")
	mock.ExpectQuery(`DESCRIBE default.missing_table`).WillReturnError(driverErr)

	c := newWithPool(pool, zap.NewNop())
	c.database = "default"
	if _, err := c.DescribeTable(context.Background(), "missing_table"); !errors.Is(err, driverErr) {
		t.Errorf("DescribeTable() error = %v, want wrapped %v", err, driverErr)
	}
}

func TestPrepareSelectsDefaultDatabase(t *testing.T) {
	pool, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatalf("failed to create mock database: %v", err)
	}
	defer pool.Close()

	mock.ExpectExec(`USE default`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectPing()

	c := newWithPool(pool, zap.NewNop())
	if err := c.Prepare(context.Background()); err != nil {
		t.Fatalf("Prepare() error: %v", err)
	}
	if c.database != "default" {
		t.Errorf("Prepare() left database = %q, want default", c.database)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestNewRejectsMismatchedConnection(t *testing.T) {
	cfg := config.SourceConfig{
		ServiceName: "warehouse",
		Connection: config.ServiceConnection{
			Kind:     config.KindPostgres,
			Postgres: &config.PostgresConnection{Host: "localhost", Port: 5432},
		},
	}

	_, err := New(cfg, zap.NewNop())
	var invalid *config.InvalidSourceError
	if !errors.As(err, &invalid) {
		t.Fatalf("New() error = %v, want InvalidSourceError", err)
	}
	if invalid.Expected != config.KindHive || invalid.Actual != config.KindPostgres {
		t.Errorf("InvalidSourceError = %+v, want expected hive / actual postgres", invalid)
	}
}

func TestNewAcceptsHiveConnection(t *testing.T) {
	cfg := config.SourceConfig{
		ServiceName: "warehouse",
		Connection: config.ServiceConnection{
			Kind: config.KindHive,
			Hive: &config.HiveConnection{Host: "localhost", Port: 10000, Username: "hive"},
		},
	}

	c, err := New(cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	defer c.Close()
}
