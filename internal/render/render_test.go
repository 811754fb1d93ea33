package render

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/crawlkit/sqlgen/internal/relation"
	"github.com/crawlkit/sqlgen/internal/schema"
)

// collapse folds all whitespace runs to single spaces so assertions are not
// coupled to gofmt's struct field alignment.
func collapse(src string) string {
	return strings.Join(strings.Fields(src), " ")
}

func fixedClock() time.Time {
	return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
}

func testRenderer() *Renderer {
	r := New("models")
	r.Now = fixedClock
	return r
}

func buildFor(t *testing.T, tables []schema.Table, generated map[string]bool, target string) ModelIR {
	t.Helper()
	relations, _ := relation.Resolve(tables, generated)
	for _, table := range tables {
		if table.Name == target {
			ir, _ := BuildIR(table, relations)
			return ir
		}
	}
	t.Fatalf("table %q not in fixture", target)
	return ModelIR{}
}

func TestRenderModel(t *testing.T) {
	tables := []schema.Table{
		{
			Name:    "users",
			Comment: "registered accounts",
			Columns: []schema.Column{
				{Name: "id", NativeType: "varchar", Length: 32, HasLength: true, IsPrimaryKey: true, Comment: "oauth id"},
				{Name: "name", NativeType: "varchar", Length: 64, HasLength: true},
				{Name: "created_at", NativeType: "timestamptz", DefaultExpr: "NOW()"},
				{Name: "deleted_at", NativeType: "timestamptz", Nullable: true},
			},
		},
	}

	ir := buildFor(t, tables, map[string]bool{"users": true}, "users")
	src, err := testRenderer().Render(ir)
	require.NoError(t, err)

	require.Contains(t, src, "package models")
	require.Contains(t, src, "type Users struct")
	require.Contains(t, src, `Users maps the "users" table. registered accounts`)
	require.Contains(t, src, `gorm:"column:id;type:varchar(32);primaryKey;comment:oauth id"`)
	require.Contains(t, src, `gorm:"column:name;type:varchar(64);not null"`)
	require.Contains(t, src, `gorm:"column:created_at;type:timestamptz;not null;default:NOW()"`)
	require.Contains(t, collapse(src), "DeletedAt *time.Time")
	require.Contains(t, src, `json:"deleted_at,omitempty"`)
	require.Contains(t, src, `return "users"`)
	require.Contains(t, src, "Generated at: 2026-01-02T03:04:05Z")
}

func TestRenderCompositePrimaryKey(t *testing.T) {
	tables := []schema.Table{
		{
			Name: "enrollments",
			Columns: []schema.Column{
				{Name: "student_id", NativeType: "int8", IsPrimaryKey: true},
				{Name: "course_id", NativeType: "int8", IsPrimaryKey: true},
				{Name: "grade", NativeType: "numeric", Nullable: true},
			},
		},
	}

	ir := buildFor(t, tables, map[string]bool{"enrollments": true}, "enrollments")
	src, err := testRenderer().Render(ir)
	require.NoError(t, err)

	require.Contains(t, src, `gorm:"column:student_id;type:bigint;primaryKey"`)
	require.Contains(t, src, `gorm:"column:course_id;type:bigint;primaryKey"`)
	require.Equal(t, 2, strings.Count(src, "primaryKey"), "both key columns and nothing else must be flagged")
}

func TestRenderRelations(t *testing.T) {
	tables := []schema.Table{
		{
			Name: "users",
			Columns: []schema.Column{
				{Name: "id", NativeType: "int8", IsPrimaryKey: true, IsAutoIncrement: true},
			},
		},
		{
			Name: "posts",
			Columns: []schema.Column{
				{Name: "id", NativeType: "int8", IsPrimaryKey: true, IsAutoIncrement: true},
				{Name: "author_id", NativeType: "int8"},
			},
			ForeignKeys: []schema.ForeignKey{
				{SourceColumn: "author_id", TargetTable: "users", TargetColumn: "id"},
			},
		},
	}
	generated := map[string]bool{"users": true, "posts": true}

	postsSrc, err := testRenderer().Render(buildFor(t, tables, generated, "posts"))
	require.NoError(t, err)
	require.Contains(t, collapse(postsSrc), "Users *Users")
	require.Contains(t, postsSrc, `gorm:"foreignKey:AuthorId;references:Id"`)

	usersSrc, err := testRenderer().Render(buildFor(t, tables, generated, "users"))
	require.NoError(t, err)
	require.Contains(t, collapse(usersSrc), "PostsList []Posts")
	require.Contains(t, usersSrc, `json:"posts_list,omitempty"`)
}

func TestRenderSkipsDanglingRelation(t *testing.T) {
	tables := []schema.Table{
		{
			Name: "posts",
			Columns: []schema.Column{
				{Name: "id", NativeType: "int8", IsPrimaryKey: true},
				{Name: "author_id", NativeType: "int8"},
			},
			ForeignKeys: []schema.ForeignKey{
				{SourceColumn: "author_id", TargetTable: "users", TargetColumn: "id"},
			},
		},
	}

	ir := buildFor(t, tables, map[string]bool{"posts": true}, "posts")
	require.Len(t, ir.Relations, 1)
	require.True(t, ir.Relations[0].Dangling)

	src, err := testRenderer().Render(ir)
	require.NoError(t, err)
	require.NotContains(t, src, "*Users")
	require.Contains(t, src, "AuthorId", "the raw FK column field must remain")
}

func TestRenderSelfReference(t *testing.T) {
	tables := []schema.Table{
		{
			Name: "categories",
			Columns: []schema.Column{
				{Name: "id", NativeType: "int8", IsPrimaryKey: true},
				{Name: "parent_id", NativeType: "int8", Nullable: true},
			},
			ForeignKeys: []schema.ForeignKey{
				{SourceColumn: "parent_id", TargetTable: "categories", TargetColumn: "id"},
			},
		},
	}

	ir := buildFor(t, tables, map[string]bool{"categories": true}, "categories")
	src, err := testRenderer().Render(ir)
	require.NoError(t, err)

	// The reference is a named pointer field, never an eagerly expanded
	// structure, so the type stays finite.
	require.Contains(t, collapse(src), "Categories *Categories")
	require.Contains(t, collapse(src), "CategoriesList []Categories")
}

func TestRenderIsDeterministic(t *testing.T) {
	tables := []schema.Table{
		{
			Name: "events",
			Columns: []schema.Column{
				{Name: "id", NativeType: "uuid", IsPrimaryKey: true},
				{Name: "payload", NativeType: "jsonb", Nullable: true},
				{Name: "tags", NativeType: "_text", Nullable: true},
			},
		},
	}

	ir := buildFor(t, tables, map[string]bool{"events": true}, "events")
	r := testRenderer()
	first, err := r.Render(ir)
	require.NoError(t, err)
	second, err := r.Render(ir)
	require.NoError(t, err)
	require.Equal(t, first, second)

	require.Contains(t, first, "uuid.UUID")
	require.Contains(t, collapse(first), "Tags []string")
}

func TestRenderBaseAndIndex(t *testing.T) {
	r := testRenderer()

	base, err := r.RenderBase()
	require.NoError(t, err)
	require.Contains(t, base, "type Model struct")
	require.Contains(t, base, "autoCreateTime")
	require.Contains(t, base, "autoUpdateTime")

	index, err := r.RenderIndex([]string{"Users", "Posts"})
	require.NoError(t, err)
	require.Contains(t, index, "func AllModels() []interface{}")
	require.Contains(t, index, "&Users{}")
	require.Contains(t, index, "&Posts{}")
}
