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
package config

import (
	"fmt"
	"time"
)

// ConnectionKind identifies which engine a service connection targets.
type ConnectionKind string

const (
	KindHive      ConnectionKind = "hive"
	KindMySQL     ConnectionKind = "mysql"
	KindPostgres  ConnectionKind = "postgres"
	KindSQLServer ConnectionKind = "sqlserver"
)

// KnownKinds lists every connection kind a connector is registered for.
var KnownKinds = []ConnectionKind{KindHive, KindMySQL, KindPostgres, KindSQLServer}

// InvalidSourceError reports a service connection whose payload does not
// match the connection kind a connector expects.
type InvalidSourceError struct {
	Expected ConnectionKind
	Actual   ConnectionKind
}

func (e *InvalidSourceError) Error() string {
	return fmt.Sprintf("invalid source: expected %s connection, got %s", e.Expected, e.Actual)
}

// Config is the full workflow configuration.
type Config struct {
	Source   SourceConfig   `mapstructure:"source"`
	Sink     SinkConfig     `mapstructure:"sink"`
	Catalog  CatalogConfig  `mapstructure:"catalog"`
	Workflow WorkflowConfig `mapstructure:"workflow"`
}

// SourceConfig names the service being ingested and carries its connection.
type SourceConfig struct {
	ServiceName string            `mapstructure:"serviceName"`
	Connection  ServiceConnection `mapstructure:"connection"`
}

// ServiceConnection is a tagged variant over the known connection kinds:
// Kind selects which of the typed payloads must be set. Connectors resolve
// their payload through the typed accessors, which fail with
// InvalidSourceError on a mismatch.
type ServiceConnection struct {
	Kind      ConnectionKind       `mapstructure:"kind"`
	Hive      *HiveConnection      `mapstructure:"hive"`
	MySQL     *MySQLConnection     `mapstructure:"mysql"`
	Postgres  *PostgresConnection  `mapstructure:"postgres"`
	SQLServer *SQLServerConnection `mapstructure:"sqlserver"`
}

// HiveConnection configures a Hive thrift connection. Ingestion always
// targets the warehouse's default namespace, so no database is configured.
type HiveConnection struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Auth     string `mapstructure:"auth"`
}

// MySQLConnection configures a MySQL source, optionally through Cloud SQL.
type MySQLConnection struct {
	Host             string `mapstructure:"host"`
	Port             int    `mapstructure:"port"`
	Username         string `mapstructure:"username"`
	Password         string `mapstructure:"password"`
	Database         string `mapstructure:"database"`
	CloudSQLInstance string `mapstructure:"cloudSQLInstance"`
	UsePrivateIP     bool   `mapstructure:"usePrivateIP"`
}

// PostgresConnection configures a PostgreSQL source, optionally through
// Cloud SQL.
type PostgresConnection struct {
	Host             string `mapstructure:"host"`
	Port             int    `mapstructure:"port"`
	Username         string `mapstructure:"username"`
	Password         string `mapstructure:"password"`
	Database         string `mapstructure:"database"`
	SSLMode          string `mapstructure:"sslMode"`
	CloudSQLInstance string `mapstructure:"cloudSQLInstance"`
	UsePrivateIP     bool   `mapstructure:"usePrivateIP"`
}

// SQLServerConnection configures a SQL Server source, optionally through
// Cloud SQL.
type SQLServerConnection struct {
	Host             string `mapstructure:"host"`
	Port             int    `mapstructure:"port"`
	Username         string `mapstructure:"username"`
	Password         string `mapstructure:"password"`
	Database         string `mapstructure:"database"`
	CloudSQLInstance string `mapstructure:"cloudSQLInstance"`
	UsePrivateIP     bool   `mapstructure:"usePrivateIP"`
}

// HiveConn returns the Hive payload or an InvalidSourceError.
func (s ServiceConnection) HiveConn() (*HiveConnection, error) {
	if s.Kind != KindHive || s.Hive == nil {
		return nil, &InvalidSourceError{Expected: KindHive, Actual: s.Kind}
	}
	return s.Hive, nil
}

// MySQLConn returns the MySQL payload or an InvalidSourceError.
func (s ServiceConnection) MySQLConn() (*MySQLConnection, error) {
	if s.Kind != KindMySQL || s.MySQL == nil {
		return nil, &InvalidSourceError{Expected: KindMySQL, Actual: s.Kind}
	}
	return s.MySQL, nil
}

// PostgresConn returns the Postgres payload or an InvalidSourceError.
func (s ServiceConnection) PostgresConn() (*PostgresConnection, error) {
	if s.Kind != KindPostgres || s.Postgres == nil {
		return nil, &InvalidSourceError{Expected: KindPostgres, Actual: s.Kind}
	}
	return s.Postgres, nil
}

// SQLServerConn returns the SQL Server payload or an InvalidSourceError.
func (s ServiceConnection) SQLServerConn() (*SQLServerConnection, error) {
	if s.Kind != KindSQLServer || s.SQLServer == nil {
		return nil, &InvalidSourceError{Expected: KindSQLServer, Actual: s.Kind}
	}
	return s.SQLServer, nil
}

// DatabaseName returns the database of whichever payload matches the kind.
// Hive falls back to the default namespace its connector forces in Prepare.
func (s ServiceConnection) DatabaseName() string {
	switch s.Kind {
	case KindHive:
		return "default"
	case KindMySQL:
		if s.MySQL != nil {
			return s.MySQL.Database
		}
	case KindPostgres:
		if s.Postgres != nil {
			return s.Postgres.Database
		}
	case KindSQLServer:
		if s.SQLServer != nil {
			return s.SQLServer.Database
		}
	}
	return ""
}

// SinkConfig selects where normalized records go.
type SinkConfig struct {
	Type    string            `mapstructure:"type"` // console, catalog or kafka
	Console ConsoleSinkConfig `mapstructure:"console"`
	Kafka   KafkaSinkConfig   `mapstructure:"kafka"`
}

// ConsoleSinkConfig configures the console sink.
type ConsoleSinkConfig struct {
	Format string `mapstructure:"format"` // json or yaml
}

// KafkaSinkConfig configures the Kafka sink.
type KafkaSinkConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

// CatalogConfig configures the metadata store the workflow reports to.
type CatalogConfig struct {
	ServerURL       string                 `mapstructure:"serverURL"`
	APIToken        string                 `mapstructure:"apiToken"`
	Timeout         time.Duration          `mapstructure:"timeout"`
	PipelineService *PipelineServiceConfig `mapstructure:"pipelineService"`
}

// PipelineServiceConfig registers this workflow as a pipeline service on the
// catalog before ingestion starts.
type PipelineServiceConfig struct {
	Name            string `mapstructure:"name"`
	Description     string `mapstructure:"description"`
	URL             string `mapstructure:"url"`
	StartDate       string `mapstructure:"startDate"`
	RepeatFrequency string `mapstructure:"repeatFrequency"`
}

// WorkflowConfig tunes the ingestion run.
type WorkflowConfig struct {
	Workers       int                 `mapstructure:"workers"`
	IncludeTables []string            `mapstructure:"includeTables"`
	ExcludeTables []string            `mapstructure:"excludeTables"`
	Lineage       []LineageEdgeConfig `mapstructure:"lineage"`
	StatusAddr    string              `mapstructure:"statusAddr"`
}

// LineageEdgeConfig declares one table-to-table lineage edge to submit after
// ingestion.
type LineageEdgeConfig struct {
	From        string `mapstructure:"from"`
	To          string `mapstructure:"to"`
	Description string `mapstructure:"description"`
}

// Validate checks structural consistency of the configuration.
func (c *Config) Validate() error {
	if c.Source.ServiceName == "" {
		return fmt.Errorf("source.serviceName is required")
	}
	if err := c.Source.Connection.validate(); err != nil {
		return err
	}
	switch c.Sink.Type {
	case "", "console":
		if f := c.Sink.Console.Format; f != "" && f != "json" && f != "yaml" {
			return fmt.Errorf("sink.console.format must be json or yaml, got %q", f)
		}
	case "catalog":
		if c.Catalog.ServerURL == "" {
			return fmt.Errorf("sink.type is catalog but catalog.serverURL is empty")
		}
	case "kafka":
		if len(c.Sink.Kafka.Brokers) == 0 {
			return fmt.Errorf("sink.type is kafka but sink.kafka.brokers is empty")
		}
		if c.Sink.Kafka.Topic == "" {
			return fmt.Errorf("sink.type is kafka but sink.kafka.topic is empty")
		}
	default:
		return fmt.Errorf("unsupported sink type %q", c.Sink.Type)
	}
	if c.Workflow.Workers < 0 {
		return fmt.Errorf("workflow.workers cannot be negative")
	}
	for _, edge := range c.Workflow.Lineage {
		if edge.From == "" || edge.To == "" {
			return fmt.Errorf("workflow.lineage edges need both from and to")
		}
	}
	return nil
}

// validate checks the variant invariant: a known kind, with exactly the
// matching payload set.
func (s ServiceConnection) validate() error {
	known := false
	for _, k := range KnownKinds {
		if s.Kind == k {
			known = true
			break
		}
	}
	if !known {
		return fmt.Errorf("unsupported connection kind %q (supported: %v)", s.Kind, KnownKinds)
	}

	set := map[ConnectionKind]bool{
		KindHive:      s.Hive != nil,
		KindMySQL:     s.MySQL != nil,
		KindPostgres:  s.Postgres != nil,
		KindSQLServer: s.SQLServer != nil,
	}
	if !set[s.Kind] {
		return fmt.Errorf("connection kind is %s but no %s payload is set", s.Kind, s.Kind)
	}
	for k, ok := range set {
		if ok && k != s.Kind {
			return fmt.Errorf("connection kind is %s but a %s payload is also set", s.Kind, k)
		}
	}
	return nil
}
