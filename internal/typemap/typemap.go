// Package typemap maps native column types onto Go field descriptors. The
// lookup table is built once at package init and never mutated afterwards;
// Map is pure, so identical column metadata always yields identical output.
package typemap

import (
	"fmt"
	"strings"

	"github.com/crawlkit/sqlgen/internal/schema"
)

// GoType is the storage type used in generated declarations. Pkg is the
// import path for qualified types ("" for builtins); Slice marks a
// sequence-of-element type produced from an array column.
type GoType struct {
	Pkg   string
	Name  string
	Slice bool
}

// Mapping is the result of looking up one column. Semantic carries the
// richer type hint (decimal, timestamptz, uuid, ...) used where the target
// ORM supports it; ColumnType is the parameterized SQL type emitted into the
// column tag. Opaque marks the generic text fallback for unknown types.
type Mapping struct {
	GoType     GoType
	Semantic   string
	ColumnType string
	Opaque     bool
}

type entry struct {
	goType   GoType
	semantic string
	sqlName  string
}

var lookup = map[string]entry{
	"int2":     {GoType{Name: "int16"}, "", "smallint"},
	"smallint": {GoType{Name: "int16"}, "", "smallint"},
	"tinyint":  {GoType{Name: "int8"}, "", "tinyint"},

	"int4":      {GoType{Name: "int32"}, "", "integer"},
	"int":       {GoType{Name: "int32"}, "", "integer"},
	"integer":   {GoType{Name: "int32"}, "", "integer"},
	"mediumint": {GoType{Name: "int32"}, "", "integer"},
	"serial":    {GoType{Name: "int32"}, "", "integer"},

	"int8":      {GoType{Name: "int64"}, "", "bigint"},
	"bigint":    {GoType{Name: "int64"}, "", "bigint"},
	"bigserial": {GoType{Name: "int64"}, "", "bigint"},

	"numeric": {GoType{Name: "string"}, "decimal", "numeric"},
	"decimal": {GoType{Name: "string"}, "decimal", "numeric"},

	"bool":    {GoType{Name: "bool"}, "", "boolean"},
	"boolean": {GoType{Name: "bool"}, "", "boolean"},

	"varchar":           {GoType{Name: "string"}, "", "varchar"},
	"character varying": {GoType{Name: "string"}, "", "varchar"},
	"bpchar":            {GoType{Name: "string"}, "", "char"},
	"char":              {GoType{Name: "string"}, "", "char"},
	"character":         {GoType{Name: "string"}, "", "char"},

	"text":       {GoType{Name: "string"}, "text", "text"},
	"tinytext":   {GoType{Name: "string"}, "text", "text"},
	"mediumtext": {GoType{Name: "string"}, "text", "text"},
	"longtext":   {GoType{Name: "string"}, "text", "text"},
	"clob":       {GoType{Name: "string"}, "text", "text"},

	"date": {GoType{Pkg: "time", Name: "Time"}, "date", "date"},
	"time": {GoType{Name: "string"}, "time", "time"},

	"timestamp":                   {GoType{Pkg: "time", Name: "Time"}, "timestamp", "timestamp"},
	"timestamp without time zone": {GoType{Pkg: "time", Name: "Time"}, "timestamp", "timestamp"},
	"datetime":                    {GoType{Pkg: "time", Name: "Time"}, "timestamp", "timestamp"},
	"timestamptz":                 {GoType{Pkg: "time", Name: "Time"}, "timestamptz", "timestamptz"},
	"timestamp with time zone":    {GoType{Pkg: "time", Name: "Time"}, "timestamptz", "timestamptz"},

	"real":             {GoType{Name: "float32"}, "", "real"},
	"float4":           {GoType{Name: "float32"}, "", "real"},
	"float8":           {GoType{Name: "float64"}, "", "double precision"},
	"double precision": {GoType{Name: "float64"}, "", "double precision"},
	"double":           {GoType{Name: "float64"}, "", "double precision"},
	"float":            {GoType{Name: "float64"}, "", "double precision"},

	"json":  {GoType{Name: "[]byte"}, "json", "json"},
	"jsonb": {GoType{Name: "[]byte"}, "jsonb", "jsonb"},

	"uuid": {GoType{Pkg: "github.com/google/uuid", Name: "UUID"}, "uuid", "uuid"},

	"bytea":     {GoType{Name: "[]byte"}, "binary", "bytea"},
	"blob":      {GoType{Name: "[]byte"}, "binary", "blob"},
	"binary":    {GoType{Name: "[]byte"}, "binary", "blob"},
	"varbinary": {GoType{Name: "[]byte"}, "binary", "blob"},
}

// opaque is the fallback for native types with no explicit mapping.
var opaque = Mapping{
	GoType:     GoType{Name: "string"},
	ColumnType: "text",
	Opaque:     true,
}

// Map resolves a column's native type to its Go field descriptor. Unknown
// types degrade to the opaque fallback (Mapping.Opaque set) rather than
// failing; the caller records the warning.
func Map(col schema.Column) Mapping {
	key := normalize(col.NativeType)

	if elem, ok := arrayElement(key); ok {
		return mapArray(col, elem)
	}

	e, ok := lookup[key]
	if !ok {
		return opaque
	}
	return Mapping{
		GoType:     e.goType,
		Semantic:   e.semantic,
		ColumnType: parameterize(e.sqlName, col),
	}
}

// mapArray maps the element type first, then wraps it as a slice. Nested
// arrays and unmappable elements degrade to the opaque fallback.
func mapArray(col schema.Column, elemKey string) Mapping {
	if _, nested := arrayElement(elemKey); nested {
		return opaque
	}
	e, ok := lookup[elemKey]
	if !ok || e.goType.Slice || e.goType.Name == "[]byte" {
		return opaque
	}
	elemCol := col
	elemCol.NativeType = elemKey
	return Mapping{
		GoType:     GoType{Pkg: e.goType.Pkg, Name: e.goType.Name, Slice: true},
		Semantic:   "array",
		ColumnType: parameterize(e.sqlName, elemCol) + "[]",
	}
}

// normalize lowercases the native type and strips parameterization, so
// "VARCHAR(50)" and "varchar" hit the same table entry.
func normalize(nativeType string) string {
	s := strings.ToLower(strings.TrimSpace(nativeType))
	if i := strings.Index(s, "("); i != -1 {
		tail := ""
		if j := strings.Index(s, ")"); j != -1 && j+1 < len(s) {
			tail = s[j+1:]
		}
		s = strings.TrimSpace(s[:i]) + tail
	}
	return s
}

// arrayElement reports whether the key names an array type and returns the
// element key. Postgres spells arrays "_varchar" in udt names; "varchar[]"
// also appears in information_schema-style output.
func arrayElement(key string) (string, bool) {
	if strings.HasPrefix(key, "_") {
		return key[1:], true
	}
	if strings.HasSuffix(key, "[]") {
		return key[:len(key)-2], true
	}
	return "", false
}

func parameterize(sqlName string, col schema.Column) string {
	switch sqlName {
	case "varchar", "char":
		if col.HasLength {
			return fmt.Sprintf("%s(%d)", sqlName, col.Length)
		}
	case "numeric":
		if col.HasPrecision && col.HasScale {
			return fmt.Sprintf("numeric(%d,%d)", col.Precision, col.Scale)
		}
		if col.HasPrecision {
			return fmt.Sprintf("numeric(%d)", col.Precision)
		}
	}
	return sqlName
}
