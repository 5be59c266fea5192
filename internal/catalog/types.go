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
package catalog

import (
	"fmt"
	"net/url"
)

// DataType is the normalized, engine-agnostic column type identifier used by
// the metadata store.
type DataType string

const (
	DataTypeTinyInt   DataType = "TINYINT"
	DataTypeSmallInt  DataType = "SMALLINT"
	DataTypeInt       DataType = "INT"
	DataTypeBigInt    DataType = "BIGINT"
	DataTypeFloat     DataType = "FLOAT"
	DataTypeDouble    DataType = "DOUBLE"
	DataTypeDecimal   DataType = "DECIMAL"
	DataTypeNumeric   DataType = "NUMERIC"
	DataTypeBoolean   DataType = "BOOLEAN"
	DataTypeString    DataType = "STRING"
	DataTypeVarchar   DataType = "VARCHAR"
	DataTypeChar      DataType = "CHAR"
	DataTypeText      DataType = "TEXT"
	DataTypeBinary    DataType = "BINARY"
	DataTypeDate      DataType = "DATE"
	DataTypeTime      DataType = "TIME"
	DataTypeTimestamp DataType = "TIMESTAMP"
	DataTypeInterval  DataType = "INTERVAL"
	DataTypeJSON      DataType = "JSON"
	DataTypeUUID      DataType = "UUID"
	DataTypeArray     DataType = "ARRAY"
	DataTypeMap       DataType = "MAP"
	DataTypeStruct    DataType = "STRUCT"
	DataTypeUnion     DataType = "UNION"

	// DataTypeNull is the fallback marker for engine-native types the
	// connector does not recognize.
	DataTypeNull DataType = "NULL"
)

// complexTypes are the types whose full definition cannot be captured by the
// type tag alone; descriptors for these carry the raw engine type string.
var complexTypes = map[DataType]bool{
	DataTypeArray:  true,
	DataTypeMap:    true,
	DataTypeStruct: true,
	DataTypeUnion:  true,
}

// IsComplex reports whether t is a nested/composite type (array, map,
// struct, union).
func (t DataType) IsComplex() bool {
	return complexTypes[t]
}

// ColumnDescriptor is the uniform column shape produced by every source
// connector. RawDataType is populated only for complex data types.
type ColumnDescriptor struct {
	Name        string   `json:"name" yaml:"name"`
	DataType    DataType `json:"dataType" yaml:"dataType"`
	Comment     *string  `json:"comment,omitempty" yaml:"comment,omitempty"`
	Nullable    bool     `json:"nullable" yaml:"nullable"`
	Default     *string  `json:"default,omitempty" yaml:"default,omitempty"`
	RawDataType *string  `json:"rawDataType,omitempty" yaml:"rawDataType,omitempty"`
}

// TableRecord is one normalized table emitted by an ingestion run.
type TableRecord struct {
	Service     string             `json:"service" yaml:"service"`
	Database    string             `json:"database" yaml:"database"`
	Name        string             `json:"name" yaml:"name"`
	Description string             `json:"description,omitempty" yaml:"description,omitempty"`
	Columns     []ColumnDescriptor `json:"columns" yaml:"columns"`
}

// FullyQualifiedName returns service.database.table.
func (t TableRecord) FullyQualifiedName() string {
	return fmt.Sprintf("%s.%s.%s", t.Service, t.Database, t.Name)
}

// EntityReference points at an entity stored in the metadata catalog.
type EntityReference struct {
	ID   string `json:"id,omitempty" yaml:"id,omitempty"`
	Type string `json:"type" yaml:"type"`
	Name string `json:"name" yaml:"name"`
}

// EntitiesEdge is one directed lineage edge between two catalog entities.
type EntitiesEdge struct {
	FromEntity EntityReference `json:"fromEntity" yaml:"fromEntity"`
	ToEntity   EntityReference `json:"toEntity" yaml:"toEntity"`
}

// AddLineageRequest submits a lineage edge to the catalog. The edge is
// required; the description is optional.
type AddLineageRequest struct {
	Description *string       `json:"description,omitempty"`
	Edge        *EntitiesEdge `json:"edge"`
}

// Validate checks the request's required fields.
func (r AddLineageRequest) Validate() error {
	if r.Edge == nil {
		return fmt.Errorf("lineage edge is required")
	}
	if r.Edge.FromEntity.Name == "" || r.Edge.FromEntity.Type == "" {
		return fmt.Errorf("lineage edge fromEntity needs a name and a type")
	}
	if r.Edge.ToEntity.Name == "" || r.Edge.ToEntity.Type == "" {
		return fmt.Errorf("lineage edge toEntity needs a name and a type")
	}
	return nil
}

// Schedule describes when metadata ingestion jobs run. RepeatFrequency is an
// ISO 8601 duration (e.g. PT1H, P1D).
type Schedule struct {
	StartDate       *string `json:"startDate,omitempty" yaml:"startDate,omitempty"`
	RepeatFrequency *string `json:"repeatFrequency,omitempty" yaml:"repeatFrequency,omitempty"`
}

// UpdatePipelineServiceRequest updates the pipeline-service entity backing an
// ingestion workflow. All fields are optional.
type UpdatePipelineServiceRequest struct {
	Description       *string   `json:"description,omitempty"`
	PipelineURL       *string   `json:"pipelineUrl,omitempty"`
	IngestionSchedule *Schedule `json:"ingestionSchedule,omitempty"`
}

// Validate checks that PipelineURL, when present, parses as an absolute URL.
func (r UpdatePipelineServiceRequest) Validate() error {
	if r.PipelineURL == nil {
		return nil
	}
	u, err := url.Parse(*r.PipelineURL)
	if err != nil {
		return fmt.Errorf("invalid pipeline URL %q: %w", *r.PipelineURL, err)
	}
	if !u.IsAbs() {
		return fmt.Errorf("pipeline URL %q is not absolute", *r.PipelineURL)
	}
	return nil
}
