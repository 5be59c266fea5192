package source

import (
	"regexp"

	"go.uber.org/zap"

	"github.com/metaharbor/ingest/internal/catalog"
)

var typeTagRE = regexp.MustCompile(`^\w+`)

// TypeTag extracts the engine-native type tag from a raw type description:
// the leading run of letters, digits and underscores. Any parenthesized
// precision or nested-type suffix is discarded ("varchar(32)" -> "varchar",
// "array<string>" -> "array"). Returns "" when the description does not
// start with a word character.
func TypeTag(rawType string) string {
	return typeTagRE.FindString(rawType)
}

// ResolveType maps an engine type tag to its catalog type through the
// dialect's lookup table. Unrecognized tags are reported as a warning and
// mapped to the NULL type; they never fail introspection.
func ResolveType(typeMap map[string]catalog.DataType, tag, column string, logger *zap.Logger) catalog.DataType {
	if dataType, ok := typeMap[tag]; ok {
		return dataType
	}
	logger.Warn("did not recognize column type",
		zap.String("type", tag),
		zap.String("column", column))
	return catalog.DataTypeNull
}
