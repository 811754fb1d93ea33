package inspector

import (
	"context"
	"database/sql"
	"strings"

	"github.com/Masterminds/squirrel"
	_ "github.com/go-sql-driver/mysql"

	"github.com/crawlkit/sqlgen/internal/schema"
)

// MySQL inspects a MySQL catalog via information_schema over database/sql.
type MySQL struct {
	db *sql.DB
	qb squirrel.StatementBuilderType
}

func NewMySQL() *MySQL {
	return &MySQL{
		qb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
	}
}

func (m *MySQL) Connect(ctx context.Context, dsn string) error {
	dsn = strings.TrimPrefix(dsn, "mysql://")

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return &schema.ConnectivityError{Provider: "mysql", Err: err}
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return &schema.ConnectivityError{Provider: "mysql", Err: err}
	}

	m.db = db
	return nil
}

func (m *MySQL) Ping(ctx context.Context) error {
	if err := m.db.PingContext(ctx); err != nil {
		return &schema.ConnectivityError{Provider: "mysql", Err: err}
	}
	return nil
}

func (m *MySQL) Close() error {
	if m.db != nil {
		err := m.db.Close()
		m.db = nil
		return err
	}
	return nil
}

func (m *MySQL) ListTables(ctx context.Context) ([]string, error) {
	query, args, err := m.qb.
		Select("table_name").
		From("information_schema.tables").
		Where("table_schema = DATABASE()").
		Where(squirrel.Eq{"table_type": "BASE TABLE"}).
		OrderBy("table_name").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := m.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		tables = append(tables, name)
	}
	return tables, rows.Err()
}

func (m *MySQL) Describe(ctx context.Context, tables []string) ([]schema.Table, error) {
	existing, err := m.ListTables(ctx)
	if err != nil {
		return nil, err
	}
	if err := checkMissing(existing, tables); err != nil {
		return nil, err
	}

	byName, err := m.fetchColumns(ctx, tables)
	if err != nil {
		return nil, err
	}
	if err := m.fetchTableComments(ctx, tables, byName); err != nil {
		return nil, err
	}
	if err := m.fetchForeignKeys(ctx, tables, byName); err != nil {
		return nil, err
	}

	return inRequestedOrder(flatten(byName), tables), nil
}

func (m *MySQL) fetchColumns(ctx context.Context, tables []string) (map[string]*schema.Table, error) {
	query, args, err := m.qb.
		Select(
			"table_name", "column_name", "data_type", "is_nullable",
			"column_default", "character_maximum_length",
			"numeric_precision", "numeric_scale",
			"column_key", "extra", "column_comment",
		).
		From("information_schema.columns").
		Where("table_schema = DATABASE()").
		Where(squirrel.Eq{"table_name": tables}).
		OrderBy("table_name", "ordinal_position").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := m.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byName := make(map[string]*schema.Table, len(tables))
	for rows.Next() {
		var tableName, isNullable, columnKey, extra, comment string
		var col schema.Column
		var columnDefault sql.NullString
		var charMaxLength, numericPrecision, numericScale sql.NullInt64

		err := rows.Scan(
			&tableName,
			&col.Name,
			&col.NativeType,
			&isNullable,
			&columnDefault,
			&charMaxLength,
			&numericPrecision,
			&numericScale,
			&columnKey,
			&extra,
			&comment,
		)
		if err != nil {
			return nil, err
		}

		col.Nullable = isNullable == "YES"
		col.IsPrimaryKey = columnKey == "PRI"
		col.IsAutoIncrement = strings.Contains(strings.ToLower(extra), "auto_increment")
		col.Comment = comment
		if charMaxLength.Valid {
			col.Length, col.HasLength = charMaxLength.Int64, true
		}
		if numericPrecision.Valid {
			col.Precision, col.HasPrecision = numericPrecision.Int64, true
		}
		if numericScale.Valid {
			col.Scale, col.HasScale = numericScale.Int64, true
		}
		if columnDefault.Valid && !col.IsAutoIncrement {
			col.DefaultExpr = normalizeMySQLDefault(columnDefault.String)
		}

		t := byName[tableName]
		if t == nil {
			t = &schema.Table{Name: tableName}
			byName[tableName] = t
		}
		t.Columns = append(t.Columns, col)
	}
	return byName, rows.Err()
}

func (m *MySQL) fetchTableComments(ctx context.Context, tables []string, byName map[string]*schema.Table) error {
	query, args, err := m.qb.
		Select("table_name", "table_comment").
		From("information_schema.tables").
		Where("table_schema = DATABASE()").
		Where(squirrel.Eq{"table_name": tables}).
		ToSql()
	if err != nil {
		return err
	}

	rows, err := m.db.QueryContext(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var tableName string
		var comment sql.NullString
		if err := rows.Scan(&tableName, &comment); err != nil {
			return err
		}
		if t := byName[tableName]; t != nil && comment.Valid {
			t.Comment = comment.String
		}
	}
	return rows.Err()
}

func (m *MySQL) fetchForeignKeys(ctx context.Context, tables []string, byName map[string]*schema.Table) error {
	query, args, err := m.qb.
		Select("table_name", "column_name", "referenced_table_name", "referenced_column_name").
		From("information_schema.key_column_usage").
		Where("table_schema = DATABASE()").
		Where("referenced_table_name IS NOT NULL").
		Where(squirrel.Eq{"table_name": tables}).
		OrderBy("table_name", "ordinal_position").
		ToSql()
	if err != nil {
		return err
	}

	rows, err := m.db.QueryContext(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var tableName, columnName, targetTable, targetColumn string
		if err := rows.Scan(&tableName, &columnName, &targetTable, &targetColumn); err != nil {
			return err
		}
		if t := byName[tableName]; t != nil {
			t.ForeignKeys = append(t.ForeignKeys, schema.ForeignKey{
				SourceColumn: columnName,
				TargetTable:  targetTable,
				TargetColumn: targetColumn,
			})
		}
	}
	return rows.Err()
}

// normalizeMySQLDefault keeps function defaults recognizable and drops the
// quoting MySQL adds around literal defaults.
func normalizeMySQLDefault(defaultVal string) string {
	upper := strings.ToUpper(defaultVal)
	if strings.Contains(upper, "CURRENT_TIMESTAMP") || strings.Contains(upper, "NOW()") {
		return "NOW()"
	}
	return strings.Trim(defaultVal, "'")
}
