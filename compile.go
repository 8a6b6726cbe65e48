package filters

import (
	"bytes"
	"encoding/json"
)

// CompileRequest is the JSON body of a Compile API request.
type CompileRequest struct {
	// Input is the known part of the policy input. It is encoded as-is.
	Input any `json:"input,omitempty"`

	// Query overrides the rule to compile when the path alone is not enough.
	Query string `json:"query,omitempty"`

	// Unknowns lists the references left unevaluated, e.g. "input.tickets".
	Unknowns []string `json:"unknowns,omitempty"`

	Options *CompileOptions `json:"options,omitempty"`
}

// CompileOptions is the options object of a CompileRequest.
type CompileOptions struct {
	DisableInlining        []string                `json:"disableInlining,omitempty"`
	TargetDialects         []Dialect               `json:"targetDialects,omitempty"`
	TargetSQLTableMappings *TargetSQLTableMappings `json:"targetSQLTableMappings,omitempty"`

	// MaskRule names the rule that produces column masks, e.g.
	// "data.filters.masks".
	MaskRule string `json:"maskRule,omitempty"`
}

// withDialect returns a shallow copy of r whose options carry d as the only
// target dialect when none was set.
func (r *CompileRequest) withDialect(d Dialect) *CompileRequest {
	out := CompileRequest{}
	if r != nil {
		out = *r
	}
	var opts CompileOptions
	if out.Options != nil {
		opts = *out.Options
	}
	if len(opts.TargetDialects) == 0 {
		opts.TargetDialects = []Dialect{d}
	}
	out.Options = &opts
	return &out
}

// CompileResponse is the JSON body of a successful Compile API response.
type CompileResponse struct {
	Result CompileResult `json:"result"`
}

// CompileResult holds the compiled data filter and its column masks.
type CompileResult struct {
	// Query is the filter: a SQL WHERE clause string for SQL dialects, or a
	// UCAST expression tree for UCAST dialects. It is empty or the literal
	// null when there is no filter; SQL and UCAST treat both as absent.
	Query json.RawMessage `json:"query,omitempty"`

	// ColumnMasks is set when the request named a mask rule.
	ColumnMasks ColumnMasks `json:"column_masks,omitempty"`
}

// HasFilter reports whether the result carries a filter. An absent query and
// a JSON null query both mean no filter.
func (r CompileResult) HasFilter() bool {
	q := bytes.TrimSpace(r.Query)
	return len(q) > 0 && !bytes.Equal(q, []byte("null"))
}

// SQL returns the filter as a SQL string. An absent filter yields "".
func (r CompileResult) SQL() (string, error) {
	if !r.HasFilter() {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(r.Query, &s); err != nil {
		return "", errorf("decode SQL filter: %w", err)
	}
	return s, nil
}

// UCAST returns the filter as a decoded UCAST tree. An absent filter yields
// nil.
func (r CompileResult) UCAST() (map[string]any, error) {
	if !r.HasFilter() {
		return nil, nil
	}
	var tree map[string]any
	if err := json.Unmarshal(r.Query, &tree); err != nil {
		return nil, errorf("decode UCAST filter: %w", err)
	}
	return tree, nil
}
