// Package render emits generated Go source from model IR. Rendering is
// deterministic and single-pass: the only run-dependent output is the
// "Generated at" header line, produced from an injectable clock so it stays
// isolated to exactly one line per file.
package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/dave/jennifer/jen"

	"github.com/crawlkit/sqlgen/internal/relation"
)

// Renderer emits model, base, and index files for one output package.
type Renderer struct {
	Package string
	Now     func() time.Time
}

func New(pkg string) *Renderer {
	if pkg == "" {
		pkg = "models"
	}
	return &Renderer{Package: pkg, Now: time.Now}
}

// Render produces the source file for one table's model.
func (r *Renderer) Render(ir ModelIR) (string, error) {
	f := r.newFile("table " + ir.TableName)

	comment := fmt.Sprintf("%s maps the %q table.", ir.ClassName, ir.TableName)
	if ir.Comment != "" {
		comment += " " + ir.Comment
	}
	f.Comment(comment)
	f.Type().Id(ir.ClassName).StructFunc(func(g *jen.Group) {
		for _, fld := range ir.Fields {
			g.Id(fld.Name).Add(fieldType(fld)).Tag(map[string]string{
				"gorm": gormTag(fld),
				"json": jsonTag(fld.Column, fld.Pointer),
			})
		}
		for _, rel := range ir.Relations {
			if rel.Dangling {
				continue
			}
			switch rel.Kind {
			case relation.ManyToOne:
				g.Id(rel.Name).Op("*").Id(rel.TargetType).Tag(map[string]string{
					"gorm": fmt.Sprintf("foreignKey:%s;references:%s", rel.ForeignKeyField, rel.ReferencesField),
					"json": jsonTag(toSnakeCase(rel.Name), true),
				})
			case relation.OneToMany:
				g.Id(rel.Name).Index().Id(rel.TargetType).Tag(map[string]string{
					"gorm": fmt.Sprintf("foreignKey:%s;references:%s", rel.ForeignKeyField, rel.ReferencesField),
					"json": jsonTag(toSnakeCase(rel.Name), true),
				})
			}
		}
	})

	f.Comment("TableName tells the ORM which table backs this model.")
	f.Func().Params(jen.Id(ir.ClassName)).Id("TableName").Params().String().Block(
		jen.Return(jen.Lit(ir.TableName)),
	)

	return renderFile(f)
}

// RenderBase produces the shared base declaration, emitted once per output
// package: the common id/created_at/updated_at convention for hand-written
// models living alongside the generated ones.
func (r *Renderer) RenderBase() (string, error) {
	f := r.newFile("shared base declaration")

	f.Comment("Model is the shared column convention. Embed it in hand-written")
	f.Comment("models that follow the id/created_at/updated_at layout.")
	f.Type().Id("Model").Struct(
		jen.Id("Id").Int64().Tag(map[string]string{
			"gorm": "column:id;primaryKey;autoIncrement",
			"json": "id",
		}),
		jen.Id("CreatedAt").Qual("time", "Time").Tag(map[string]string{
			"gorm": "column:created_at;autoCreateTime",
			"json": "created_at",
		}),
		jen.Id("UpdatedAt").Qual("time", "Time").Tag(map[string]string{
			"gorm": "column:updated_at;autoUpdateTime",
			"json": "updated_at",
		}),
	)

	return renderFile(f)
}

// RenderIndex produces the package entry point enumerating every type
// generated in this run, in order.
func (r *Renderer) RenderIndex(classNames []string) (string, error) {
	f := r.newFile("package index")

	f.Comment("AllModels returns one value of every generated model, for bulk")
	f.Comment("registration such as AutoMigrate.")
	f.Func().Id("AllModels").Params().Index().Interface().Block(
		jen.Return(jen.Index().Interface().ValuesFunc(func(g *jen.Group) {
			for _, name := range classNames {
				g.Op("&").Id(name).Values()
			}
		})),
	)

	return renderFile(f)
}

func (r *Renderer) newFile(source string) *jen.File {
	f := jen.NewFile(r.Package)
	f.HeaderComment("Code generated by sqlgen. DO NOT EDIT.")
	f.HeaderComment("Source: " + source + ".")
	f.HeaderComment("Generated at: " + r.Now().UTC().Format(time.RFC3339))
	return f
}

func renderFile(f *jen.File) (string, error) {
	var b strings.Builder
	if err := f.Render(&b); err != nil {
		return "", fmt.Errorf("failed to render source: %w", err)
	}
	return b.String(), nil
}

func fieldType(fld FieldIR) jen.Code {
	var base *jen.Statement
	if fld.Type.Pkg != "" {
		base = jen.Qual(fld.Type.Pkg, fld.Type.Name)
	} else {
		base = jen.Id(fld.Type.Name)
	}
	if fld.Type.Slice {
		base = jen.Index().Add(base)
	}
	if fld.Pointer {
		return jen.Op("*").Add(base)
	}
	return base
}

func gormTag(fld FieldIR) string {
	parts := []string{"column:" + fld.Column, "type:" + fld.ColumnType}
	if fld.PrimaryKey {
		parts = append(parts, "primaryKey")
	}
	if fld.AutoIncr {
		parts = append(parts, "autoIncrement")
	}
	if fld.NotNull {
		parts = append(parts, "not null")
	}
	if fld.Default != "" && !fld.AutoIncr {
		parts = append(parts, "default:"+fld.Default)
	}
	if fld.Comment != "" {
		parts = append(parts, "comment:"+fld.Comment)
	}
	return strings.Join(parts, ";")
}

func jsonTag(name string, omitempty bool) string {
	if omitempty {
		return name + ",omitempty"
	}
	return name
}

func toSnakeCase(s string) string {
	var result strings.Builder
	for i, r := range s {
		if i > 0 && r >= 'A' && r <= 'Z' {
			result.WriteRune('_')
		}
		result.WriteRune(r)
	}
	return strings.ToLower(result.String())
}
