package schema

import (
	"fmt"
	"strings"
)

// ConnectivityError wraps any failure to reach or authenticate to the
// database. It is fatal: no output is written.
type ConnectivityError struct {
	Provider string
	Err      error
}

func (e *ConnectivityError) Error() string {
	return fmt.Sprintf("cannot connect to %s database: %v", e.Provider, e.Err)
}

func (e *ConnectivityError) Unwrap() error { return e.Err }

// TableNotFoundError names every requested table missing from the catalog,
// not just the first one encountered.
type TableNotFoundError struct {
	Tables []string
}

func (e *TableNotFoundError) Error() string {
	return fmt.Sprintf("tables not found in catalog: %s", strings.Join(e.Tables, ", "))
}

// NameCollisionError reports two distinct tables mapping to the same
// generated type name. Fatal before any file is written.
type NameCollisionError struct {
	TypeName string
	Tables   []string
}

func (e *NameCollisionError) Error() string {
	return fmt.Sprintf("tables %s would both generate type %q", strings.Join(e.Tables, " and "), e.TypeName)
}

// Warning is a non-fatal finding recorded in the generation report.
type Warning struct {
	Table   string `yaml:"table"`
	Kind    string `yaml:"kind"`
	Message string `yaml:"message"`
}

const (
	WarnUnmappableType   = "unmappable_type"
	WarnDanglingRelation = "dangling_relation"
)

func UnmappableTypeWarning(table, column, nativeType string) Warning {
	return Warning{
		Table:   table,
		Kind:    WarnUnmappableType,
		Message: fmt.Sprintf("column %s has no mapping for native type %q, using opaque text", column, nativeType),
	}
}

func DanglingRelationWarning(table, target string) Warning {
	return Warning{
		Table:   table,
		Kind:    WarnDanglingRelation,
		Message: fmt.Sprintf("relation to table %q outside the generation set, field omitted", target),
	}
}
