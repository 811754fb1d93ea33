package typemap

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/crawlkit/sqlgen/internal/schema"
)

func TestMapCoversSupportedTypes(t *testing.T) {
	for _, nativeType := range []string{
		"integer", "bigint", "smallint",
		"numeric", "decimal",
		"boolean",
		"varchar", "bpchar", "text",
		"timestamptz", "timestamp", "date",
		"jsonb", "json", "uuid",
		"_varchar", "text[]",
		"real", "double precision", "bytea",
	} {
		m := Map(schema.Column{Name: "c", NativeType: nativeType})
		require.False(t, m.Opaque, "native type %q should have an explicit mapping", nativeType)
		require.NotEmpty(t, m.GoType.Name, "native type %q", nativeType)
	}
}

func TestMapIsCaseInsensitiveAndStripsParameters(t *testing.T) {
	plain := Map(schema.Column{Name: "c", NativeType: "varchar"})
	upper := Map(schema.Column{Name: "c", NativeType: "VARCHAR(50)"})

	require.False(t, upper.Opaque)
	require.Equal(t, plain.GoType, upper.GoType)
}

func TestMapVarcharLength(t *testing.T) {
	m := Map(schema.Column{Name: "name", NativeType: "varchar", Length: 50, HasLength: true})
	require.Equal(t, "varchar(50)", m.ColumnType)
	require.Equal(t, "string", m.GoType.Name)
}

func TestMapNumericPrecisionScale(t *testing.T) {
	m := Map(schema.Column{Name: "price", NativeType: "numeric", Precision: 10, Scale: 2, HasPrecision: true, HasScale: true})
	require.Equal(t, "numeric(10,2)", m.ColumnType)
	require.Equal(t, "decimal", m.Semantic)
}

func TestMapTimestampTimezoneAwareness(t *testing.T) {
	naive := Map(schema.Column{Name: "c", NativeType: "timestamp"})
	aware := Map(schema.Column{Name: "c", NativeType: "timestamptz"})

	require.Equal(t, "timestamp", naive.Semantic)
	require.Equal(t, "timestamptz", aware.Semantic)
	require.Equal(t, "time", aware.GoType.Pkg)
}

func TestMapArrayRecursesIntoElement(t *testing.T) {
	m := Map(schema.Column{Name: "tags", NativeType: "_varchar"})
	require.True(t, m.GoType.Slice)
	require.Equal(t, "string", m.GoType.Name)
	require.Equal(t, "array", m.Semantic)
	require.Equal(t, "varchar[]", m.ColumnType)
}

func TestMapUnknownTypeFallsBack(t *testing.T) {
	m := Map(schema.Column{Name: "amount", NativeType: "money"})
	require.True(t, m.Opaque)
	require.Equal(t, "string", m.GoType.Name)
	require.Equal(t, "text", m.ColumnType)
}

func TestMapNestedArrayDegradesToOpaque(t *testing.T) {
	m := Map(schema.Column{Name: "matrix", NativeType: "__int4"})
	require.True(t, m.Opaque)
}

func TestMapArrayOfUnknownElementDegradesToOpaque(t *testing.T) {
	m := Map(schema.Column{Name: "amounts", NativeType: "_money"})
	require.True(t, m.Opaque)
}

func TestMapIsPure(t *testing.T) {
	col := schema.Column{Name: "id", NativeType: "uuid"}
	require.Equal(t, Map(col), Map(col))
}
