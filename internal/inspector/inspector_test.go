package inspector

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/crawlkit/sqlgen/internal/schema"
)

func TestAppendColumnSkipsShadowedDuplicate(t *testing.T) {
	table := &schema.Table{Name: "users"}
	appendColumn(table, schema.Column{Name: "id", NativeType: "int8", IsPrimaryKey: true})
	appendColumn(table, schema.Column{Name: "email", NativeType: "varchar"})
	appendColumn(table, schema.Column{Name: "id", NativeType: "int8", IsPrimaryKey: true})

	require.Len(t, table.Columns, 2)
	require.Equal(t, "id", table.Columns[0].Name)
	require.Equal(t, "email", table.Columns[1].Name)
}

func TestAppendForeignKeySkipsShadowedDuplicate(t *testing.T) {
	table := &schema.Table{Name: "posts"}
	fk := schema.ForeignKey{SourceColumn: "author_id", TargetTable: "users", TargetColumn: "id"}
	appendForeignKey(table, fk)
	appendForeignKey(table, fk)
	appendForeignKey(table, schema.ForeignKey{SourceColumn: "editor_id", TargetTable: "users", TargetColumn: "id"})

	require.Len(t, table.ForeignKeys, 2)
}

func TestPostgresCleanDefault(t *testing.T) {
	cases := map[string]string{
		"":                                      "",
		"nextval('users_id_seq'::regclass)":     "",
		"now()":                                 "NOW()",
		"CURRENT_TIMESTAMP":                     "NOW()",
		"'pending'::character varying":          "'pending'",
		"true":                                  "true",
		"0":                                     "0",
	}
	for input, want := range cases {
		require.Equal(t, want, cleanDefault(input), "cleanDefault(%q)", input)
	}
}

func TestSQLiteSplitDeclaredType(t *testing.T) {
	native, length, hasLength, _, _, _, _ := splitDeclaredType("VARCHAR(50)")
	require.Equal(t, "varchar", native)
	require.True(t, hasLength)
	require.EqualValues(t, 50, length)

	native, _, hasLength, precision, scale, hasPrecision, hasScale := splitDeclaredType("NUMERIC(10,2)")
	require.Equal(t, "numeric", native)
	require.False(t, hasLength)
	require.True(t, hasPrecision)
	require.True(t, hasScale)
	require.EqualValues(t, 10, precision)
	require.EqualValues(t, 2, scale)

	native, _, hasLength, _, _, _, _ = splitDeclaredType("TEXT")
	require.Equal(t, "text", native)
	require.False(t, hasLength)
}

func TestFactorySelectsProvider(t *testing.T) {
	require.IsType(t, &Postgres{}, New("postgresql"))
	require.IsType(t, &Postgres{}, New("postgres"))
	require.IsType(t, &MySQL{}, New("mysql"))
	require.IsType(t, &SQLite{}, New("sqlite"))
	require.IsType(t, &SQLite{}, New("sqlite3"))
	require.IsType(t, &Postgres{}, New("unknown"))
}
