package schema

// Table describes one table as read from the database catalog. Column order
// matches the catalog's ordinal order and is propagated verbatim into
// generated field order.
type Table struct {
	Name        string
	Comment     string
	Columns     []Column
	ForeignKeys []ForeignKey
}

// Column is immutable once read from the catalog. NativeType carries the
// engine's own type name (udt name for postgres, e.g. "varchar", "_text" for
// arrays) without parameterization; length/precision/scale are kept aside.
type Column struct {
	Name            string
	NativeType      string
	Length          int64
	Precision       int64
	Scale           int64
	HasLength       bool
	HasPrecision    bool
	HasScale        bool
	Nullable        bool
	IsPrimaryKey    bool
	IsAutoIncrement bool
	DefaultExpr     string
	Comment         string
}

// ForeignKey records one column-level reference. Self-referencing keys
// (TargetTable == owning table) are valid.
type ForeignKey struct {
	SourceColumn string
	TargetTable  string
	TargetColumn string
}

// PrimaryKey returns the names of all primary-key columns in declaration
// order. Composite keys return more than one name.
func (t Table) PrimaryKey() []string {
	var pk []string
	for _, c := range t.Columns {
		if c.IsPrimaryKey {
			pk = append(pk, c.Name)
		}
	}
	return pk
}

// Column looks up a column by its catalog name.
func (t Table) Column(name string) (Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}
