// Package naming converts catalog identifiers (snake_case) into Go
// identifiers. The transform is deterministic: each underscore-delimited
// segment is capitalized and the segments are concatenated, with no
// singularization ("users" stays "Users", "fzu_notices" becomes
// "FzuNotices").
package naming

import (
	"strings"
	"unicode"

	"github.com/crawlkit/sqlgen/internal/schema"
)

// TypeName derives the generated struct name for a table.
func TypeName(tableName string) string {
	return capitalizeSegments(tableName)
}

// FieldName derives the generated field name for a column. Go requires
// exported identifiers, so the same PascalCase policy as TypeName is applied
// uniformly; the verbatim column name is preserved in struct tags.
func FieldName(columnName string) string {
	return capitalizeSegments(columnName)
}

// CollectionSuffix is appended to one-to-many relation fields instead of
// grammatical pluralization.
const CollectionSuffix = "List"

func capitalizeSegments(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, seg := range strings.Split(s, "_") {
		if seg == "" {
			continue
		}
		r := []rune(seg)
		b.WriteRune(unicode.ToUpper(r[0]))
		for _, c := range r[1:] {
			b.WriteRune(unicode.ToLower(c))
		}
	}
	return b.String()
}

// CheckCollisions fails fast when two distinct table names transform to the
// same type name; generating under a collision would silently overwrite one
// model file with another.
func CheckCollisions(tableNames []string) error {
	seen := make(map[string]string, len(tableNames))
	for _, table := range tableNames {
		typeName := TypeName(table)
		if prev, ok := seen[typeName]; ok && prev != table {
			return &schema.NameCollisionError{
				TypeName: typeName,
				Tables:   []string{prev, table},
			}
		}
		seen[typeName] = table
	}
	return nil
}
