package inspector

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/Masterminds/squirrel"
	"github.com/stretchr/testify/require"

	"github.com/crawlkit/sqlgen/internal/schema"
)

func mockMySQL(t *testing.T) (*MySQL, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return &MySQL{
		db: db,
		qb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
	}, mock
}

func expectListTables(mock sqlmock.Sqlmock, names ...string) {
	rows := sqlmock.NewRows([]string{"table_name"})
	for _, name := range names {
		rows.AddRow(name)
	}
	mock.ExpectQuery("SELECT table_name FROM information_schema.tables").
		WithArgs("BASE TABLE").
		WillReturnRows(rows)
}

func TestMySQLListTables(t *testing.T) {
	m, mock := mockMySQL(t)
	expectListTables(mock, "posts", "users")

	tables, err := m.ListTables(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"posts", "users"}, tables)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLDescribe(t *testing.T) {
	m, mock := mockMySQL(t)
	expectListTables(mock, "posts", "users")

	columns := sqlmock.NewRows([]string{
		"table_name", "column_name", "data_type", "is_nullable",
		"column_default", "character_maximum_length",
		"numeric_precision", "numeric_scale",
		"column_key", "extra", "column_comment",
	}).
		AddRow("posts", "id", "bigint", "NO", nil, nil, 20, 0, "PRI", "auto_increment", "").
		AddRow("posts", "title", "varchar", "NO", nil, 255, nil, nil, "", "", "post title").
		AddRow("posts", "author_id", "bigint", "YES", nil, nil, 20, 0, "MUL", "", "")
	mock.ExpectQuery("SELECT table_name, column_name, data_type, is_nullable").
		WillReturnRows(columns)

	comments := sqlmock.NewRows([]string{"table_name", "table_comment"}).
		AddRow("posts", "blog posts")
	mock.ExpectQuery("SELECT table_name, table_comment FROM information_schema.tables").
		WillReturnRows(comments)

	fks := sqlmock.NewRows([]string{
		"table_name", "column_name", "referenced_table_name", "referenced_column_name",
	}).
		AddRow("posts", "author_id", "users", "id")
	mock.ExpectQuery("SELECT table_name, column_name, referenced_table_name").
		WillReturnRows(fks)

	tables, err := m.Describe(context.Background(), []string{"posts"})
	require.NoError(t, err)
	require.Len(t, tables, 1)

	posts := tables[0]
	require.Equal(t, "posts", posts.Name)
	require.Equal(t, "blog posts", posts.Comment)
	require.Len(t, posts.Columns, 3)

	id := posts.Columns[0]
	require.True(t, id.IsPrimaryKey)
	require.True(t, id.IsAutoIncrement)
	require.False(t, id.Nullable)

	title := posts.Columns[1]
	require.Equal(t, "varchar", title.NativeType)
	require.True(t, title.HasLength)
	require.EqualValues(t, 255, title.Length)
	require.Equal(t, "post title", title.Comment)

	require.Len(t, posts.ForeignKeys, 1)
	require.Equal(t, schema.ForeignKey{
		SourceColumn: "author_id",
		TargetTable:  "users",
		TargetColumn: "id",
	}, posts.ForeignKeys[0])

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLDescribeMissingTablesListsAll(t *testing.T) {
	m, mock := mockMySQL(t)
	expectListTables(mock, "users")

	_, err := m.Describe(context.Background(), []string{"ghost", "users", "phantom"})
	require.Error(t, err)

	var notFound *schema.TableNotFoundError
	require.True(t, errors.As(err, &notFound))
	require.Equal(t, []string{"ghost", "phantom"}, notFound.Tables)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLDefaultNormalization(t *testing.T) {
	require.Equal(t, "NOW()", normalizeMySQLDefault("CURRENT_TIMESTAMP"))
	require.Equal(t, "pending", normalizeMySQLDefault("'pending'"))
}
