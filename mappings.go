package filters

import (
	"google.golang.org/protobuf/types/known/structpb"
)

// TargetSQLTableMappings carries the table and column renaming rules for the
// options.targetSQLTableMappings payload field, one optional section per SQL
// database. Sections left nil are omitted from the payload.
//
// Each section maps a policy-side table name to either a string (the
// database table name) or an object of column renames, where the "$self"
// key renames the table itself:
//
//	{"tickets": {"$self": "support_tickets", "resolved": "is_resolved"}}
//
// Numbers in a section are held as float64, so integers beyond 2^53 lose
// precision. Mappings carry names, not numbers.
type TargetSQLTableMappings struct {
	SQLServer  *structpb.Struct `json:"sqlserver,omitempty"`
	MySQL      *structpb.Struct `json:"mysql,omitempty"`
	PostgreSQL *structpb.Struct `json:"postgresql,omitempty"`
	SQLite     *structpb.Struct `json:"sqlite,omitempty"`
}

// selfKey renames the table itself inside a table mapping object.
const selfKey = "$self"

// For returns the section used by dialect d, or nil when d has none.
func (t *TargetSQLTableMappings) For(d Dialect) *structpb.Struct {
	if t == nil {
		return nil
	}
	if field := t.field(d); field != nil {
		return *field
	}
	return nil
}

// Set replaces the section used by SQL dialect d.
func (t *TargetSQLTableMappings) Set(d Dialect, mapping *structpb.Struct) error {
	field := t.field(d)
	if field == nil {
		return errorf("table mappings: dialect %s has no SQL target", d)
	}
	*field = mapping
	return nil
}

// MapTable records that the policy table name maps to target in dialect d,
// with optional column renames. An empty target keeps the table name and
// only renames columns.
func (t *TargetSQLTableMappings) MapTable(d Dialect, table, target string, columns map[string]string) error {
	field := t.field(d)
	if field == nil {
		return errorf("table mappings: dialect %s has no SQL target", d)
	}
	if table == "" {
		return errorf("table mappings: table name is required")
	}

	entry := make(map[string]any, len(columns)+1)
	if target != "" {
		entry[selfKey] = target
	}
	for from, to := range columns {
		entry[from] = to
	}
	value, err := structpb.NewValue(entry)
	if err != nil {
		return errorf("table mappings: %w", err)
	}

	if *field == nil {
		*field = &structpb.Struct{Fields: map[string]*structpb.Value{}}
	}
	if (*field).Fields == nil {
		(*field).Fields = map[string]*structpb.Value{}
	}
	(*field).Fields[table] = value
	return nil
}

func (t *TargetSQLTableMappings) field(d Dialect) **structpb.Struct {
	switch d.SQLTarget() {
	case "sqlserver":
		return &t.SQLServer
	case "mysql":
		return &t.MySQL
	case "postgresql":
		return &t.PostgreSQL
	case "sqlite":
		return &t.SQLite
	default:
		return nil
	}
}
