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
	"strings"

	"go.uber.org/zap"

	"github.com/metaharbor/ingest/internal/catalog"
	"github.com/metaharbor/ingest/internal/source"
)

// Markers Hive interleaves with the real column rows in DESCRIBE output.
const (
	colNameHeader   = "# col_name"
	partitionHeader = "# Partition Information"
)

// rawColumn is one DESCRIBE row before normalization.
type rawColumn struct {
	Name    string
	Type    string
	Comment *string
}

// hiveTypeMap resolves Hive type tags to catalog types. Hive spells the
// union type uniontype<...> in DESCRIBE output; both spellings are carried.
var hiveTypeMap = map[string]catalog.DataType{
	"boolean":   catalog.DataTypeBoolean,
	"tinyint":   catalog.DataTypeTinyInt,
	"smallint":  catalog.DataTypeSmallInt,
	"int":       catalog.DataTypeInt,
	"integer":   catalog.DataTypeInt,
	"bigint":    catalog.DataTypeBigInt,
	"float":     catalog.DataTypeFloat,
	"double":    catalog.DataTypeDouble,
	"decimal":   catalog.DataTypeDecimal,
	"numeric":   catalog.DataTypeNumeric,
	"string":    catalog.DataTypeString,
	"varchar":   catalog.DataTypeVarchar,
	"char":      catalog.DataTypeChar,
	"binary":    catalog.DataTypeBinary,
	"date":      catalog.DataTypeDate,
	"timestamp": catalog.DataTypeTimestamp,
	"interval":  catalog.DataTypeInterval,
	"array":     catalog.DataTypeArray,
	"map":       catalog.DataTypeMap,
	"struct":    catalog.DataTypeStruct,
	"union":     catalog.DataTypeUnion,
	"uniontype": catalog.DataTypeUnion,
}

// normalizeColumns turns raw DESCRIBE rows into ordered column descriptors.
//
// Hive's textual DESCRIBE output mixes real columns with a "# col_name"
// header and, for partitioned tables, a trailing "# Partition Information"
// section repeating the partition keys. Header rows are skipped; the
// partition marker ends processing outright, so everything after it is
// excluded. Unrecognized type tags are reported as warnings and mapped to
// the NULL type, never dropped.
func normalizeColumns(rows []rawColumn, logger *zap.Logger) []catalog.ColumnDescriptor {
	result := make([]catalog.ColumnDescriptor, 0, len(rows))
	for _, row := range rows {
		name := strings.TrimSpace(row.Name)
		if name == "" || name == colNameHeader {
			continue
		}
		if name == partitionHeader {
			break
		}

		rawType := strings.TrimSpace(row.Type)
		tag := source.TypeTag(rawType)
		dataType := source.ResolveType(hiveTypeMap, tag, name, logger)

		col := catalog.ColumnDescriptor{
			Name:     name,
			DataType: dataType,
			Nullable: true, // DESCRIBE output carries no nullability
		}
		if row.Comment != nil {
			if comment := strings.TrimSpace(*row.Comment); comment != "" {
				col.Comment = &comment
			}
		}
		if dataType.IsComplex() {
			raw := rawType
			col.RawDataType = &raw
		}
		result = append(result, col)
	}
	return result
}
