package render

import (
	"github.com/crawlkit/sqlgen/internal/naming"
	"github.com/crawlkit/sqlgen/internal/relation"
	"github.com/crawlkit/sqlgen/internal/schema"
	"github.com/crawlkit/sqlgen/internal/typemap"
)

// ModelIR is the renderer-ready description of one generated type.
type ModelIR struct {
	ClassName string
	TableName string
	Comment   string
	Fields    []FieldIR
	Relations []RelationIR
}

// FieldIR describes one struct field derived from a column. Pointer marks
// nullable non-key scalars; the column's verbatim name is kept for tags.
type FieldIR struct {
	Name       string
	Column     string
	Type       typemap.GoType
	Pointer    bool
	ColumnType string
	PrimaryKey bool
	AutoIncr   bool
	NotNull    bool
	Default    string
	Comment    string
}

// RelationIR describes one association field. ForeignKeyField and
// ReferencesField are the Go field names on the FK-holding side and the
// referenced side. Dangling relations are kept in the IR but not rendered.
type RelationIR struct {
	Name            string
	TargetType      string
	Kind            relation.Kind
	ForeignKeyField string
	ReferencesField string
	Dangling        bool
}

// BuildIR assembles the intermediate representation for one table from its
// catalog metadata and the resolved relation set. Unmappable column types
// degrade to the opaque fallback and are reported as warnings.
func BuildIR(table schema.Table, relations []relation.Relation) (ModelIR, []schema.Warning) {
	ir := ModelIR{
		ClassName: naming.TypeName(table.Name),
		TableName: table.Name,
		Comment:   table.Comment,
		Fields:    make([]FieldIR, 0, len(table.Columns)),
	}

	var warnings []schema.Warning
	for _, col := range table.Columns {
		m := typemap.Map(col)
		if m.Opaque {
			warnings = append(warnings, schema.UnmappableTypeWarning(table.Name, col.Name, col.NativeType))
		}
		ir.Fields = append(ir.Fields, FieldIR{
			Name:       naming.FieldName(col.Name),
			Column:     col.Name,
			Type:       m.GoType,
			Pointer:    col.Nullable && !col.IsPrimaryKey && scalar(m.GoType),
			ColumnType: m.ColumnType,
			PrimaryKey: col.IsPrimaryKey,
			AutoIncr:   col.IsAutoIncrement,
			NotNull:    !col.Nullable && !col.IsPrimaryKey,
			Default:    col.DefaultExpr,
			Comment:    col.Comment,
		})
	}

	for _, rel := range relation.ForTable(relations, table.Name) {
		ir.Relations = append(ir.Relations, RelationIR{
			Name:            rel.FieldName,
			TargetType:      naming.TypeName(rel.Target),
			Kind:            rel.Kind,
			ForeignKeyField: naming.FieldName(rel.SourceColumn),
			ReferencesField: naming.FieldName(rel.TargetColumn),
			Dangling:        rel.Dangling,
		})
	}

	return ir, warnings
}

// scalar reports whether a nullable column of this type should become a
// pointer field. Slices and byte blobs already have a nil zero value.
func scalar(t typemap.GoType) bool {
	return !t.Slice && t.Name != "[]byte"
}
