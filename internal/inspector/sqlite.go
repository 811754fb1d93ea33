package inspector

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/Masterminds/squirrel"
	_ "github.com/mattn/go-sqlite3"

	"github.com/crawlkit/sqlgen/internal/schema"
)

// SQLite inspects an SQLite file via PRAGMA statements. PRAGMAs cannot be
// batched, so Describe walks the requested tables one at a time.
type SQLite struct {
	db *sql.DB
	qb squirrel.StatementBuilderType
}

var sqliteTypeParams = regexp.MustCompile(`^([a-zA-Z ]+?)\s*\((\d+)(?:\s*,\s*(\d+))?\)$`)

func NewSQLite() *SQLite {
	return &SQLite{
		qb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
	}
}

func (s *SQLite) Connect(ctx context.Context, dsn string) error {
	path := strings.TrimPrefix(dsn, "sqlite://")
	if !strings.Contains(path, "?") {
		path += "?mode=ro"
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return &schema.ConnectivityError{Provider: "sqlite", Err: err}
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return &schema.ConnectivityError{Provider: "sqlite", Err: err}
	}

	s.db = db
	return nil
}

func (s *SQLite) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return &schema.ConnectivityError{Provider: "sqlite", Err: err}
	}
	return nil
}

func (s *SQLite) Close() error {
	if s.db != nil {
		err := s.db.Close()
		s.db = nil
		return err
	}
	return nil
}

func (s *SQLite) ListTables(ctx context.Context) ([]string, error) {
	query, args, err := s.qb.
		Select("name").
		From("sqlite_master").
		Where(squirrel.Eq{"type": "table"}).
		Where("name NOT LIKE 'sqlite_%'").
		OrderBy("name").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
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

func (s *SQLite) Describe(ctx context.Context, tables []string) ([]schema.Table, error) {
	existing, err := s.ListTables(ctx)
	if err != nil {
		return nil, err
	}
	if err := checkMissing(existing, tables); err != nil {
		return nil, err
	}

	described := make([]schema.Table, 0, len(tables))
	for _, name := range tables {
		t, err := s.describeTable(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("failed to describe table %s: %w", name, err)
		}
		described = append(described, t)
	}
	return described, nil
}

func (s *SQLite) describeTable(ctx context.Context, name string) (schema.Table, error) {
	t := schema.Table{Name: name}

	rows, err := s.db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%q)", name))
	if err != nil {
		return t, err
	}
	defer rows.Close()

	for rows.Next() {
		var cid, notNull, pk int
		var colName, declType string
		var dfltValue sql.NullString
		if err := rows.Scan(&cid, &colName, &declType, &notNull, &dfltValue, &pk); err != nil {
			return t, err
		}

		col := schema.Column{
			Name:         colName,
			Nullable:     notNull == 0 && pk == 0,
			IsPrimaryKey: pk > 0,
		}
		col.NativeType, col.Length, col.HasLength, col.Precision, col.Scale, col.HasPrecision, col.HasScale = splitDeclaredType(declType)
		// An INTEGER single-column primary key aliases the rowid.
		col.IsAutoIncrement = pk == 1 && strings.EqualFold(col.NativeType, "integer")
		if dfltValue.Valid {
			col.DefaultExpr = strings.Trim(dfltValue.String, "'")
		}
		t.Columns = append(t.Columns, col)
	}
	if err := rows.Err(); err != nil {
		return t, err
	}

	fkRows, err := s.db.QueryContext(ctx, fmt.Sprintf("PRAGMA foreign_key_list(%q)", name))
	if err != nil {
		return t, err
	}
	defer fkRows.Close()

	for fkRows.Next() {
		var id, seq int
		var table, from, onUpdate, onDelete, match string
		var to sql.NullString
		if err := fkRows.Scan(&id, &seq, &table, &from, &to, &onUpdate, &onDelete, &match); err != nil {
			return t, err
		}
		target := "id"
		if to.Valid {
			target = to.String
		}
		t.ForeignKeys = append(t.ForeignKeys, schema.ForeignKey{
			SourceColumn: from,
			TargetTable:  table,
			TargetColumn: target,
		})
	}
	return t, fkRows.Err()
}

// splitDeclaredType separates "VARCHAR(50)" or "NUMERIC(10,2)" into the bare
// native type plus its parameters.
func splitDeclaredType(declType string) (native string, length int64, hasLength bool, precision, scale int64, hasPrecision, hasScale bool) {
	declType = strings.TrimSpace(declType)
	m := sqliteTypeParams.FindStringSubmatch(declType)
	if m == nil {
		return strings.ToLower(declType), 0, false, 0, 0, false, false
	}

	native = strings.ToLower(strings.TrimSpace(m[1]))
	first, _ := strconv.ParseInt(m[2], 10, 64)
	if m[3] != "" {
		second, _ := strconv.ParseInt(m[3], 10, 64)
		return native, 0, false, first, second, true, true
	}
	if native == "numeric" || native == "decimal" {
		return native, 0, false, first, 0, true, false
	}
	return native, first, true, 0, 0, false, false
}
