package filters_test

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	filters "github.com/Dome-Systems/sdk-filters-go"
)

func TestDialects_AllEight(t *testing.T) {
	all := filters.Dialects()
	if len(all) != 8 {
		t.Fatalf("len(Dialects()) = %d, want 8", len(all))
	}
	for _, d := range all {
		if !d.Valid() {
			t.Errorf("%v.Valid() = false, want true", d)
		}
	}
}

func TestParseDialect_RoundTrip(t *testing.T) {
	for _, d := range filters.Dialects() {
		got, err := filters.ParseDialect(d.OptionString())
		if err != nil {
			t.Fatalf("ParseDialect(%q) error: %v", d.OptionString(), err)
		}
		if got != d {
			t.Errorf("ParseDialect(%q) = %v, want %v", d.OptionString(), got, d)
		}
	}
}

func TestAcceptHeader_ShapeAndUnique(t *testing.T) {
	seen := make(map[string]filters.Dialect)
	for _, d := range filters.Dialects() {
		h := d.AcceptHeader()
		if !strings.HasPrefix(h, "application/") || !strings.HasSuffix(h, "+json") {
			t.Errorf("%v.AcceptHeader() = %q, want application/...+json", d, h)
		}
		if prev, ok := seen[h]; ok {
			t.Errorf("%v and %v share media type %q", prev, d, h)
		}
		seen[h] = d

		back, err := filters.DialectFromAcceptHeader(h)
		if err != nil {
			t.Fatalf("DialectFromAcceptHeader(%q) error: %v", h, err)
		}
		if back != d {
			t.Errorf("DialectFromAcceptHeader(%q) = %v, want %v", h, back, d)
		}
	}
}

func TestProjections_OneToOne(t *testing.T) {
	options := make(map[string]bool)
	labels := make(map[string]bool)
	for _, d := range filters.Dialects() {
		if options[d.OptionString()] {
			t.Errorf("duplicate option string %q", d.OptionString())
		}
		if labels[d.Label()] {
			t.Errorf("duplicate label %q", d.Label())
		}
		options[d.OptionString()] = true
		labels[d.Label()] = true
	}
}

func TestSQLPostgreSQL(t *testing.T) {
	d := filters.SQLPostgreSQL
	if got := d.OptionString(); got != "sql+postgresql" {
		t.Errorf("OptionString() = %q, want %q", got, "sql+postgresql")
	}
	if got := d.AcceptHeader(); got != "application/vnd.open-policy-agent.sql.postgresql+json" {
		t.Errorf("AcceptHeader() = %q", got)
	}
	if got := d.Label(); got != "SqlPostgresql" {
		t.Errorf("Label() = %q, want %q", got, "SqlPostgresql")
	}
	if !d.IsSQL() || d.IsUCAST() {
		t.Error("expected SQL family")
	}
	if got := d.SQLTarget(); got != "postgresql" {
		t.Errorf("SQLTarget() = %q, want %q", got, "postgresql")
	}
}

func TestUcastLinq(t *testing.T) {
	d := filters.UcastLinq
	if got := d.String(); got != "ucast+linq" {
		t.Errorf("String() = %q, want %q", got, "ucast+linq")
	}
	if !d.IsUCAST() || d.IsSQL() {
		t.Error("expected UCAST family")
	}
	if got := d.SQLTarget(); got != "" {
		t.Errorf("SQLTarget() = %q, want empty", got)
	}
}

func TestParseDialect_Unknown(t *testing.T) {
	_, err := filters.ParseDialect("bogus+dialect")
	if err == nil {
		t.Fatal("expected error for unknown dialect")
	}

	var unknown *filters.UnknownDialectError
	if !errors.As(err, &unknown) {
		t.Fatalf("error type = %T, want *UnknownDialectError", err)
	}
	if unknown.Value != "bogus+dialect" {
		t.Errorf("Value = %q, want %q", unknown.Value, "bogus+dialect")
	}
	if !errors.Is(err, filters.ErrUnknownDialect) {
		t.Error("expected errors.Is(err, ErrUnknownDialect)")
	}
	if !strings.Contains(err.Error(), "bogus+dialect") {
		t.Errorf("error %q does not mention the input", err)
	}
}

func TestParseDialect_ExactMatchOnly(t *testing.T) {
	inputs := []string{
		"UCAST+ALL",
		"Sql+Postgresql",
		" ucast+all",
		"ucast+all ",
		"ucast+all+extra",
		"ucast",
		"",
		"application/vnd.open-policy-agent.ucast.all+json",
		"UcastAll",
	}
	for _, in := range inputs {
		if _, err := filters.ParseDialect(in); !errors.Is(err, filters.ErrUnknownDialect) {
			t.Errorf("ParseDialect(%q) error = %v, want ErrUnknownDialect", in, err)
		}
	}
}

func TestDialectFromAcceptHeader_Unknown(t *testing.T) {
	for _, in := range []string{"application/json", "APPLICATION/VND.OPEN-POLICY-AGENT.SQL.MYSQL+JSON", "sql+mysql"} {
		if _, err := filters.DialectFromAcceptHeader(in); !errors.Is(err, filters.ErrUnknownDialect) {
			t.Errorf("DialectFromAcceptHeader(%q) error = %v, want ErrUnknownDialect", in, err)
		}
	}
}

func TestInvalidDialect_Fallbacks(t *testing.T) {
	for _, d := range []filters.Dialect{0, 9, 255} {
		if d.Valid() {
			t.Errorf("Dialect(%d).Valid() = true", uint8(d))
		}
		if got := d.OptionString(); got != "unknown" {
			t.Errorf("Dialect(%d).OptionString() = %q, want %q", uint8(d), got, "unknown")
		}
		if got := d.AcceptHeader(); got != "application/json" {
			t.Errorf("Dialect(%d).AcceptHeader() = %q, want %q", uint8(d), got, "application/json")
		}
		if got := d.Label(); got != "Unknown" {
			t.Errorf("Dialect(%d).Label() = %q, want %q", uint8(d), got, "Unknown")
		}
		if d.IsSQL() || d.IsUCAST() || d.SQLTarget() != "" {
			t.Errorf("Dialect(%d) reports a family", uint8(d))
		}
	}
}

func TestDialect_JSON(t *testing.T) {
	data, err := json.Marshal([]filters.Dialect{filters.UcastLinq, filters.SQLMySQL})
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}
	if string(data) != `["ucast+linq","sql+mysql"]` {
		t.Errorf("Marshal = %s", data)
	}

	var got []filters.Dialect
	if err := json.Unmarshal([]byte(`["sql+sqlite","ucast+prisma"]`), &got); err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}
	if len(got) != 2 || got[0] != filters.SQLSQLite || got[1] != filters.UcastPrisma {
		t.Errorf("Unmarshal = %v", got)
	}
}

func TestDialect_JSONRejectsUnknown(t *testing.T) {
	var got []filters.Dialect
	err := json.Unmarshal([]byte(`["sql+oracle"]`), &got)
	if !errors.Is(err, filters.ErrUnknownDialect) {
		t.Errorf("Unmarshal error = %v, want ErrUnknownDialect", err)
	}

	if _, err := json.Marshal([]filters.Dialect{0}); err == nil {
		t.Error("expected error marshaling the zero dialect")
	}
}
