package filters

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// MaskingFunc describes how the value of one result column is transformed
// before it is shown to the caller, e.g. {"replace": {"value": "***"}} or
// "redact".
//
// The payload is opaque: any JSON value is accepted, its shape is defined by
// the policy engine version, and it is not validated here. The encoded form
// is kept exactly, so large integers survive a round trip. The zero
// MaskingFunc encodes as null.
type MaskingFunc struct {
	// raw is the canonical encoding: compact, object keys sorted.
	raw   []byte
	value *structpb.Value
}

// NewMaskingFunc builds a MaskingFunc from any JSON-encodable value.
func NewMaskingFunc(v any) (MaskingFunc, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return MaskingFunc{}, errorf("build masking function: %w", err)
	}
	m, err := parseMaskingFunc(data)
	if err != nil {
		return MaskingFunc{}, errorf("build masking function: %w", err)
	}
	return m, nil
}

// ReplaceMask returns the masking function that replaces a column's value
// with value.
func ReplaceMask(value any) (MaskingFunc, error) {
	return NewMaskingFunc(map[string]any{
		"replace": map[string]any{"value": value},
	})
}

func parseMaskingFunc(data []byte) (MaskingFunc, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return MaskingFunc{}, err
	}
	if dec.More() {
		return MaskingFunc{}, errors.New("trailing data after JSON value")
	}
	if v == nil {
		return MaskingFunc{}, nil
	}

	raw, err := json.Marshal(v)
	if err != nil {
		return MaskingFunc{}, err
	}
	value := &structpb.Value{}
	if err := value.UnmarshalJSON(raw); err != nil {
		return MaskingFunc{}, err
	}
	return MaskingFunc{raw: raw, value: value}, nil
}

// decode returns the payload as plain Go values, numbers as json.Number.
func (m MaskingFunc) decode() any {
	if m.raw == nil {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(m.raw))
	dec.UseNumber()
	var v any
	// raw is always valid JSON.
	_ = dec.Decode(&v)
	return v
}

// Value returns a copy of the payload as a structured value. Numbers are
// float64 there; use MarshalJSON or AsInterface for exact integers.
func (m MaskingFunc) Value() *structpb.Value {
	if m.value == nil {
		return structpb.NewNullValue()
	}
	return proto.Clone(m.value).(*structpb.Value)
}

// AsInterface returns the payload as plain Go values, with numbers as
// json.Number. The zero MaskingFunc yields nil.
func (m MaskingFunc) AsInterface() any {
	return m.decode()
}

// AsMap returns the payload as a map when it is a JSON object.
func (m MaskingFunc) AsMap() (map[string]any, bool) {
	obj, ok := m.decode().(map[string]any)
	return obj, ok
}

// ReplaceValue returns the replacement value of a {"replace": {"value": v}}
// masking function.
func (m MaskingFunc) ReplaceValue() (any, bool) {
	obj, ok := m.AsMap()
	if !ok {
		return nil, false
	}
	replace, ok := obj["replace"].(map[string]any)
	if !ok {
		return nil, false
	}
	v, ok := replace["value"]
	return v, ok
}

// Equal reports whether m and other carry the same JSON value.
func (m MaskingFunc) Equal(other MaskingFunc) bool {
	return bytes.Equal(m.raw, other.raw)
}

// MarshalJSON implements json.Marshaler.
func (m MaskingFunc) MarshalJSON() ([]byte, error) {
	if m.raw == nil {
		return []byte("null"), nil
	}
	return m.raw, nil
}

// UnmarshalJSON implements json.Unmarshaler. Any JSON value is accepted;
// null decodes to the zero MaskingFunc.
func (m *MaskingFunc) UnmarshalJSON(data []byte) error {
	parsed, err := parseMaskingFunc(data)
	if err != nil {
		return fmt.Errorf("decode masking function: %w", err)
	}
	*m = parsed
	return nil
}

// ColumnMasks maps table name to column name to the masking function the
// policy engine generated for that column alongside a data filter.
//
// Values are built once from a response and treated as read-only.
type ColumnMasks map[string]map[string]MaskingFunc

// NewColumnMasks returns an empty ColumnMasks.
func NewColumnMasks() ColumnMasks {
	return ColumnMasks{}
}

// NewColumnMasksWithCapacity returns an empty ColumnMasks sized for about n
// tables.
func NewColumnMasksWithCapacity(n int) ColumnMasks {
	return make(ColumnMasks, n)
}

// ColumnMasksFrom copies an already-decoded two-level mapping.
func ColumnMasksFrom(m map[string]map[string]MaskingFunc) ColumnMasks {
	out := make(ColumnMasks, len(m))
	for table, cols := range m {
		inner := make(map[string]MaskingFunc, len(cols))
		for col, fn := range cols {
			inner[col] = fn
		}
		out[table] = inner
	}
	return out
}

// ParseColumnMasks decodes a JSON object of objects into ColumnMasks.
func ParseColumnMasks(data []byte) (ColumnMasks, error) {
	var masks ColumnMasks
	if err := json.Unmarshal(data, &masks); err != nil {
		return nil, errorf("decode column masks: %w", err)
	}
	if masks == nil {
		masks = NewColumnMasks()
	}
	return masks, nil
}

// Lookup returns the masking function for table.column.
func (c ColumnMasks) Lookup(table, column string) (MaskingFunc, bool) {
	fn, ok := c[table][column]
	return fn, ok
}

// Tables returns the masked table names in sorted order.
func (c ColumnMasks) Tables() []string {
	tables := make([]string, 0, len(c))
	for table := range c {
		tables = append(tables, table)
	}
	sort.Strings(tables)
	return tables
}

// Equal reports whether c and other hold the same tables, columns and
// masking functions.
func (c ColumnMasks) Equal(other ColumnMasks) bool {
	if len(c) != len(other) {
		return false
	}
	for table, cols := range c {
		otherCols, ok := other[table]
		if !ok || len(cols) != len(otherCols) {
			return false
		}
		for col, fn := range cols {
			otherFn, ok := otherCols[col]
			if !ok || !fn.Equal(otherFn) {
				return false
			}
		}
	}
	return true
}

// String returns the canonical JSON encoding, with keys sorted.
func (c ColumnMasks) String() string {
	if c == nil {
		return "{}"
	}
	data, err := json.Marshal(c)
	if err != nil {
		return "{}"
	}
	return string(data)
}
