package inspector

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/crawlkit/sqlgen/internal/schema"
)

// Postgres inspects a PostgreSQL catalog through a small pgx pool.
type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres() *Postgres {
	return &Postgres{}
}

func (p *Postgres) Connect(ctx context.Context, dsn string) error {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return &schema.ConnectivityError{Provider: "postgresql", Err: err}
	}

	config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeExec
	config.MaxConns = 2
	config.MinConns = 0
	config.MaxConnLifetime = 15 * time.Minute
	config.MaxConnIdleTime = 3 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return &schema.ConnectivityError{Provider: "postgresql", Err: err}
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return &schema.ConnectivityError{Provider: "postgresql", Err: err}
	}

	p.pool = pool
	return nil
}

func (p *Postgres) Ping(ctx context.Context) error {
	if err := p.pool.Ping(ctx); err != nil {
		return &schema.ConnectivityError{Provider: "postgresql", Err: err}
	}
	return nil
}

func (p *Postgres) Close() error {
	if p.pool != nil {
		p.pool.Close()
		p.pool = nil
	}
	return nil
}

func (p *Postgres) ListTables(ctx context.Context) ([]string, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT DISTINCT table_name FROM information_schema.tables
		WHERE table_schema IN (current_schema(), 'public') AND table_type = 'BASE TABLE'
		ORDER BY table_name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tables := make([]string, 0, 32)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		tables = append(tables, name)
	}
	return tables, rows.Err()
}

func (p *Postgres) Describe(ctx context.Context, tables []string) ([]schema.Table, error) {
	existing, err := p.ListTables(ctx)
	if err != nil {
		return nil, err
	}
	if err := checkMissing(existing, tables); err != nil {
		return nil, err
	}

	byName, err := p.fetchColumns(ctx, tables)
	if err != nil {
		return nil, err
	}
	if err := p.fetchTableComments(ctx, tables, byName); err != nil {
		return nil, err
	}
	if err := p.fetchConstraints(ctx, tables, byName); err != nil {
		return nil, err
	}

	return inRequestedOrder(flatten(byName), tables), nil
}

// fetchColumns reads every column for the batch in a single query, ordered
// by ordinal position so generated field order matches the catalog.
// DISTINCT ON guards against a table name existing in both current_schema()
// and public: without it every column row would come back once per schema.
func (p *Postgres) fetchColumns(ctx context.Context, tables []string) (map[string]*schema.Table, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT DISTINCT ON (c.table_name, c.ordinal_position)
			c.table_name,
			c.column_name,
			c.udt_name,
			c.is_nullable,
			c.column_default,
			c.character_maximum_length,
			c.numeric_precision,
			c.numeric_scale,
			pgd.description
		FROM information_schema.columns c
		JOIN pg_catalog.pg_class pc ON pc.relname = c.table_name
		JOIN pg_catalog.pg_namespace pn ON pn.oid = pc.relnamespace AND pn.nspname = c.table_schema
		LEFT JOIN pg_catalog.pg_description pgd ON pgd.objoid = pc.oid AND pgd.objsubid = c.ordinal_position
		WHERE c.table_name = ANY($1)
		  AND c.table_schema IN (current_schema(), 'public')
		ORDER BY c.table_name, c.ordinal_position, c.table_schema
	`, tables)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byName := make(map[string]*schema.Table, len(tables))
	for rows.Next() {
		var tableName, isNullable string
		var col schema.Column
		var columnDefault, comment sql.NullString
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
			&comment,
		)
		if err != nil {
			return nil, err
		}

		col.Nullable = isNullable == "YES"
		if charMaxLength.Valid {
			col.Length, col.HasLength = charMaxLength.Int64, true
		}
		if numericPrecision.Valid {
			col.Precision, col.HasPrecision = numericPrecision.Int64, true
		}
		if numericScale.Valid {
			col.Scale, col.HasScale = numericScale.Int64, true
		}
		if columnDefault.Valid {
			col.IsAutoIncrement = strings.Contains(strings.ToLower(columnDefault.String), "nextval")
			col.DefaultExpr = cleanDefault(columnDefault.String)
		}
		if comment.Valid {
			col.Comment = comment.String
		}

		t := byName[tableName]
		if t == nil {
			t = &schema.Table{Name: tableName}
			byName[tableName] = t
		}
		appendColumn(t, col)
	}
	return byName, rows.Err()
}

func (p *Postgres) fetchTableComments(ctx context.Context, tables []string, byName map[string]*schema.Table) error {
	rows, err := p.pool.Query(ctx, `
		SELECT pc.relname, obj_description(pc.oid, 'pg_class')
		FROM pg_catalog.pg_class pc
		JOIN pg_catalog.pg_namespace pn ON pn.oid = pc.relnamespace
		WHERE pc.relname = ANY($1)
		  AND pn.nspname IN (current_schema(), 'public')
		  AND pc.relkind = 'r'
	`, tables)
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

// fetchConstraints resolves primary keys and foreign keys from pg_constraint
// directly, using UNNEST WITH ORDINALITY so multi-column FKs pair the right
// source and target columns.
func (p *Postgres) fetchConstraints(ctx context.Context, tables []string, byName map[string]*schema.Table) error {
	pkRows, err := p.pool.Query(ctx, `
		SELECT DISTINCT src_table.relname, src_attr.attname
		FROM pg_constraint con
		JOIN pg_class src_table ON con.conrelid = src_table.oid
		JOIN pg_namespace ns ON src_table.relnamespace = ns.oid
		CROSS JOIN LATERAL UNNEST(con.conkey) AS cols(src_col)
		JOIN pg_attribute src_attr ON src_attr.attrelid = src_table.oid AND src_attr.attnum = cols.src_col
		WHERE src_table.relname = ANY($1)
		  AND ns.nspname IN (current_schema(), 'public')
		  AND con.contype = 'p'
	`, tables)
	if err != nil {
		return err
	}
	defer pkRows.Close()

	for pkRows.Next() {
		var tableName, columnName string
		if err := pkRows.Scan(&tableName, &columnName); err != nil {
			return err
		}
		markPrimaryKey(byName, tableName, columnName)
	}
	if err := pkRows.Err(); err != nil {
		return err
	}

	fkRows, err := p.pool.Query(ctx, `
		SELECT
			src_table.relname,
			src_attr.attname,
			tgt_table.relname,
			tgt_attr.attname
		FROM pg_constraint con
		JOIN pg_class src_table ON con.conrelid = src_table.oid
		JOIN pg_namespace ns ON src_table.relnamespace = ns.oid
		CROSS JOIN LATERAL UNNEST(con.conkey, con.confkey) WITH ORDINALITY AS cols(src_col, tgt_col, ord)
		JOIN pg_attribute src_attr ON src_attr.attrelid = src_table.oid AND src_attr.attnum = cols.src_col
		JOIN pg_class tgt_table ON con.confrelid = tgt_table.oid
		JOIN pg_attribute tgt_attr ON tgt_attr.attrelid = tgt_table.oid AND tgt_attr.attnum = cols.tgt_col
		WHERE src_table.relname = ANY($1)
		  AND ns.nspname IN (current_schema(), 'public')
		  AND con.contype = 'f'
		ORDER BY con.oid, cols.ord
	`, tables)
	if err != nil {
		return err
	}
	defer fkRows.Close()

	for fkRows.Next() {
		var tableName, columnName, targetTable, targetColumn string
		if err := fkRows.Scan(&tableName, &columnName, &targetTable, &targetColumn); err != nil {
			return err
		}
		if t := byName[tableName]; t != nil {
			appendForeignKey(t, schema.ForeignKey{
				SourceColumn: columnName,
				TargetTable:  targetTable,
				TargetColumn: targetColumn,
			})
		}
	}
	return fkRows.Err()
}

func markPrimaryKey(byName map[string]*schema.Table, tableName, columnName string) {
	t := byName[tableName]
	if t == nil {
		return
	}
	for i := range t.Columns {
		if t.Columns[i].Name == columnName {
			t.Columns[i].IsPrimaryKey = true
			return
		}
	}
}

func flatten(byName map[string]*schema.Table) map[string]schema.Table {
	out := make(map[string]schema.Table, len(byName))
	for name, t := range byName {
		out[name] = *t
	}
	return out
}

// cleanDefault strips postgres cast suffixes and sequence defaults so the
// expression can be carried into the generated column tag.
func cleanDefault(defaultVal string) string {
	if defaultVal == "" {
		return ""
	}

	if idx := strings.Index(defaultVal, "::"); idx != -1 {
		defaultVal = strings.TrimSpace(defaultVal[:idx])
	}

	upper := strings.ToUpper(defaultVal)
	switch {
	case strings.Contains(upper, "NEXTVAL"):
		return ""
	case strings.Contains(upper, "NOW()"), strings.Contains(upper, "CURRENT_TIMESTAMP"):
		return "NOW()"
	case upper == "TRUE" || upper == "FALSE":
		return strings.ToLower(upper)
	}
	return defaultVal
}
