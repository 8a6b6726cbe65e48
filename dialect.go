package filters

import (
	"errors"
	"fmt"
)

// Dialect is a data filter format supported by the Compile API. It is used
// in the options.targetDialects payload field and for Accept header
// selection.
type Dialect uint8

// The zero Dialect is not a valid dialect.
const (
	UcastAll Dialect = iota + 1
	UcastMinimal
	UcastPrisma
	UcastLinq
	SQLSQLServer
	SQLMySQL
	SQLPostgreSQL
	SQLSQLite
)

// Fallbacks returned for values outside the known set.
const (
	unknownOption     = "unknown"
	unknownLabel      = "Unknown"
	fallbackMediaType = "application/json"
)

const (
	familyUCAST = "ucast"
	familySQL   = "sql"
)

type dialectInfo struct {
	label     string
	option    string
	mediaType string
	family    string
	target    string
}

// dialectTable is indexed by Dialect. Index 0 is the invalid zero value.
var dialectTable = [...]dialectInfo{
	UcastAll:      {"UcastAll", "ucast+all", "application/vnd.open-policy-agent.ucast.all+json", familyUCAST, ""},
	UcastMinimal:  {"UcastMinimal", "ucast+minimal", "application/vnd.open-policy-agent.ucast.minimal+json", familyUCAST, ""},
	UcastPrisma:   {"UcastPrisma", "ucast+prisma", "application/vnd.open-policy-agent.ucast.prisma+json", familyUCAST, ""},
	UcastLinq:     {"UcastLinq", "ucast+linq", "application/vnd.open-policy-agent.ucast.linq+json", familyUCAST, ""},
	SQLSQLServer:  {"SqlSqlserver", "sql+sqlserver", "application/vnd.open-policy-agent.sql.sqlserver+json", familySQL, "sqlserver"},
	SQLMySQL:      {"SqlMysql", "sql+mysql", "application/vnd.open-policy-agent.sql.mysql+json", familySQL, "mysql"},
	SQLPostgreSQL: {"SqlPostgresql", "sql+postgresql", "application/vnd.open-policy-agent.sql.postgresql+json", familySQL, "postgresql"},
	SQLSQLite:     {"SqlSqlite", "sql+sqlite", "application/vnd.open-policy-agent.sql.sqlite+json", familySQL, "sqlite"},
}

// ErrUnknownDialect matches any *UnknownDialectError via errors.Is.
var ErrUnknownDialect = errors.New("filters: unknown dialect")

// UnknownDialectError is returned when a string does not name any known
// dialect.
type UnknownDialectError struct {
	Value string
}

func (e *UnknownDialectError) Error() string {
	return fmt.Sprintf("filters: unknown dialect %q", e.Value)
}

// Is reports whether target is ErrUnknownDialect.
func (e *UnknownDialectError) Is(target error) bool {
	return target == ErrUnknownDialect
}

// Dialects returns every known dialect in declaration order.
func Dialects() []Dialect {
	out := make([]Dialect, 0, len(dialectTable)-1)
	for d := UcastAll; int(d) < len(dialectTable); d++ {
		out = append(out, d)
	}
	return out
}

// ParseDialect returns the dialect whose wire option string is exactly s.
// Matching is case-sensitive and nothing is trimmed.
func ParseDialect(s string) (Dialect, error) {
	for _, d := range Dialects() {
		if dialectTable[d].option == s {
			return d, nil
		}
	}
	return 0, &UnknownDialectError{Value: s}
}

// DialectFromAcceptHeader returns the dialect whose media type is exactly
// mediaType. It is the inverse of AcceptHeader for known dialects.
func DialectFromAcceptHeader(mediaType string) (Dialect, error) {
	for _, d := range Dialects() {
		if dialectTable[d].mediaType == mediaType {
			return d, nil
		}
	}
	return 0, &UnknownDialectError{Value: mediaType}
}

// Valid reports whether d is one of the known dialects.
func (d Dialect) Valid() bool {
	return d > 0 && int(d) < len(dialectTable)
}

// OptionString returns the dialect string for the options.targetDialects
// payload field, e.g. "sql+postgresql". Invalid dialects return "unknown".
func (d Dialect) OptionString() string {
	if !d.Valid() {
		return unknownOption
	}
	return dialectTable[d].option
}

// AcceptHeader returns the media type that selects d as the response format,
// of the form application/vnd.open-policy-agent.<family>.<target>+json.
// Invalid dialects return "application/json".
func (d Dialect) AcceptHeader() string {
	if !d.Valid() {
		return fallbackMediaType
	}
	return dialectTable[d].mediaType
}

// Label returns the enum label, e.g. "SqlPostgresql".
func (d Dialect) Label() string {
	if !d.Valid() {
		return unknownLabel
	}
	return dialectTable[d].label
}

func (d Dialect) String() string {
	return d.OptionString()
}

// Family returns "ucast" or "sql", or empty for invalid dialects.
func (d Dialect) Family() string {
	if !d.Valid() {
		return ""
	}
	return dialectTable[d].family
}

// IsSQL reports whether d produces a SQL WHERE clause.
func (d Dialect) IsSQL() bool { return d.Family() == familySQL }

// IsUCAST reports whether d produces a UCAST expression tree.
func (d Dialect) IsUCAST() bool { return d.Family() == familyUCAST }

// SQLTarget returns the SQL database name ("postgresql", "mysql", ...) used
// as the key in TargetSQLTableMappings. It is empty for UCAST dialects.
func (d Dialect) SQLTarget() string {
	if !d.Valid() {
		return ""
	}
	return dialectTable[d].target
}

// MarshalText encodes d as its wire option string. Invalid dialects fail
// rather than putting "unknown" on the wire.
func (d Dialect) MarshalText() ([]byte, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("invalid dialect value %d", uint8(d))
	}
	return []byte(dialectTable[d].option), nil
}

// UnmarshalText decodes a wire option string.
func (d *Dialect) UnmarshalText(text []byte) error {
	parsed, err := ParseDialect(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
