// Package s57 decodes S-57 feature and spatial fields from ISO 8211 records
// into a queryable in-memory chart: a Feature Store plus a Spatial Index,
// built incrementally as records are decoded and refined by sequential
// update files.
package s57

import "fmt"

// ValueKind tags the variant held by a Value.
type ValueKind int

const (
	ValInt ValueKind = iota
	ValFloat
	ValString
	ValEnum
	ValList
	ValBytes
)

// Value is the tagged sum type attribute decoding produces in place of a
// dynamically-typed map. Exactly the fields matching Kind are meaningful.
type Value struct {
	Kind      ValueKind
	Int       int64
	Float     float64
	Str       string
	EnumCode  string
	EnumLabel string
	HasLabel  bool
	List      []Value
	Bytes     []byte
}

func IntValue(v int64) Value        { return Value{Kind: ValInt, Int: v} }
func FloatValue(v float64) Value    { return Value{Kind: ValFloat, Float: v} }
func StringValue(v string) Value    { return Value{Kind: ValString, Str: v} }
func BytesValue(v []byte) Value     { return Value{Kind: ValBytes, Bytes: v} }
func ListValue(vs []Value) Value    { return Value{Kind: ValList, List: vs} }

// EnumValue carries the raw code plus, when the catalog resolved it, the
// label. HasLabel is false when the domain has no entry for code.
func EnumValue(code, label string, hasLabel bool) Value {
	return Value{Kind: ValEnum, EnumCode: code, EnumLabel: label, HasLabel: hasLabel}
}

// AsFloat returns the value's best numeric interpretation, for depth-range
// sanity checks and similar numeric validation.
func (v Value) AsFloat() (float64, bool) {
	switch v.Kind {
	case ValInt:
		return float64(v.Int), true
	case ValFloat:
		return v.Float, true
	default:
		return 0, false
	}
}

func (v Value) String() string {
	switch v.Kind {
	case ValInt:
		return fmt.Sprintf("%d", v.Int)
	case ValFloat:
		return fmt.Sprintf("%g", v.Float)
	case ValString:
		return v.Str
	case ValEnum:
		if v.HasLabel {
			return fmt.Sprintf("%s (%s)", v.EnumCode, v.EnumLabel)
		}
		return v.EnumCode
	case ValBytes:
		return fmt.Sprintf("<%d bytes>", len(v.Bytes))
	case ValList:
		return fmt.Sprintf("<%d values>", len(v.List))
	default:
		return "<unknown>"
	}
}

// coerceScalar implements the spec's attribute coercion: try integer, then
// floating point, then trimmed string. raw is the ASCII text recovered from
// a fixed-width subfield with trailing padding already trimmed by the
// caller.
func coerceScalar(raw string) Value {
	if n, ok := parseInt(raw); ok {
		return IntValue(n)
	}
	if f, ok := parseFloat(raw); ok {
		return FloatValue(f)
	}
	return StringValue(raw)
}
