// Package relation derives associations from foreign-key constraints. Every
// FK on table A targeting table B yields a ManyToOne owned by A and the
// mirrored OneToMany owned by B; nothing is read from the database here.
package relation

import (
	"github.com/crawlkit/sqlgen/internal/naming"
	"github.com/crawlkit/sqlgen/internal/schema"
)

type Kind string

const (
	OneToMany Kind = "one_to_many"
	ManyToOne Kind = "many_to_one"
)

// Relation is one association field on Owner referring to Target.
// SourceTable/SourceColumn always name the side holding the FK column.
// Dangling relations target a table outside the generation set; they are
// recorded so the report can mention them, and the renderer skips the field.
type Relation struct {
	Owner        string
	Target       string
	Kind         Kind
	FieldName    string
	SourceTable  string
	SourceColumn string
	TargetColumn string
	Dangling     bool
}

// Resolve pairs every foreign key into its two relation halves. tables must
// be the full inspected set so cross-table relations are computed correctly
// even when only a subset is being generated; generated marks that subset.
// Warnings are emitted for dangling relations on tables that will render.
func Resolve(tables []schema.Table, generated map[string]bool) ([]Relation, []schema.Warning) {
	known := make(map[string]bool, len(tables))
	for _, t := range tables {
		known[t.Name] = true
	}

	var relations []Relation
	for _, t := range tables {
		for _, fk := range t.ForeignKeys {
			m2o := Relation{
				Owner:        t.Name,
				Target:       fk.TargetTable,
				Kind:         ManyToOne,
				FieldName:    naming.TypeName(fk.TargetTable),
				SourceTable:  t.Name,
				SourceColumn: fk.SourceColumn,
				TargetColumn: fk.TargetColumn,
				Dangling:     !known[fk.TargetTable] || !generated[fk.TargetTable],
			}
			o2m := Relation{
				Owner:        fk.TargetTable,
				Target:       t.Name,
				Kind:         OneToMany,
				FieldName:    naming.TypeName(t.Name) + naming.CollectionSuffix,
				SourceTable:  t.Name,
				SourceColumn: fk.SourceColumn,
				TargetColumn: fk.TargetColumn,
				Dangling:     !generated[t.Name],
			}
			relations = append(relations, m2o, o2m)
		}
	}

	disambiguate(relations, tables)

	var warnings []schema.Warning
	for _, r := range relations {
		if r.Dangling && generated[r.Owner] {
			warnings = append(warnings, schema.DanglingRelationWarning(r.Owner, r.Target))
		}
	}
	return relations, warnings
}

// disambiguate qualifies relation field names with the FK column's name when
// one owner would otherwise carry two identical fields (two FKs to the same
// target table, or a relation shadowing a column field).
func disambiguate(relations []Relation, tables []schema.Table) {
	columnFields := make(map[string]map[string]bool, len(tables))
	for _, t := range tables {
		fields := make(map[string]bool, len(t.Columns))
		for _, c := range t.Columns {
			fields[naming.FieldName(c.Name)] = true
		}
		columnFields[t.Name] = fields
	}

	counts := make(map[string]map[string]int)
	for _, r := range relations {
		if counts[r.Owner] == nil {
			counts[r.Owner] = make(map[string]int)
		}
		counts[r.Owner][r.FieldName]++
	}

	for i := range relations {
		r := &relations[i]
		if counts[r.Owner][r.FieldName] > 1 || columnFields[r.Owner][r.FieldName] {
			r.FieldName += naming.FieldName(r.SourceColumn)
		}
	}
}

// ForTable returns the relations owned by one table, preserving resolution
// order.
func ForTable(relations []Relation, table string) []Relation {
	var owned []Relation
	for _, r := range relations {
		if r.Owner == table {
			owned = append(owned, r)
		}
	}
	return owned
}
