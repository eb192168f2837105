package sim

import "strconv"

// ValueKind tags the dynamic type of a feature cell.
type ValueKind uint8

const (
	KindMissing ValueKind = iota
	KindInt
	KindFloat
	KindString
)

// Value is a scalar cell from the input table. Trace columns are
// heterogeneous: categoricals arrive as strings, everything else as numbers,
// and cells may be empty.
type Value struct {
	kind ValueKind
	num  float64
	str  string
}

// Missing is the zero Value.
var Missing = Value{}

// IntValue wraps an integer cell.
func IntValue(v int64) Value { return Value{kind: KindInt, num: float64(v)} }

// FloatValue wraps a floating-point cell.
func FloatValue(v float64) Value { return Value{kind: KindFloat, num: v} }

// StringValue wraps a string cell.
func StringValue(s string) Value { return Value{kind: KindString, str: s} }

// ParseValue classifies a raw CSV cell: empty → missing, integer, float,
// anything else a string.
func ParseValue(cell string) Value {
	if cell == "" {
		return Missing
	}
	if i, err := strconv.ParseInt(cell, 10, 64); err == nil {
		return IntValue(i)
	}
	if f, err := strconv.ParseFloat(cell, 64); err == nil {
		return FloatValue(f)
	}
	return StringValue(cell)
}

// Kind returns the cell's tag.
func (v Value) Kind() ValueKind { return v.kind }

// Float returns the numeric value and whether the cell is numeric.
func (v Value) Float() (float64, bool) {
	if v.kind == KindInt || v.kind == KindFloat {
		return v.num, true
	}
	return 0, false
}

// Str returns the string value; empty for non-string cells.
func (v Value) Str() string {
	if v.kind == KindString {
		return v.str
	}
	return ""
}

// FeatureMap holds one input row keyed by column name.
type FeatureMap map[string]Value

// Float returns the named feature as a number, or def when the feature is
// absent or non-numeric.
func (m FeatureMap) Float(name string, def float64) float64 {
	if f, ok := m[name].Float(); ok {
		return f
	}
	return def
}

// Str returns the named feature as a string; empty when absent or numeric.
func (m FeatureMap) Str(name string) string {
	return m[name].Str()
}
