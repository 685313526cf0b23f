// Package param holds the canonical mutable parameter state of the visual
// generator: a tagged value type, the key-value store every control surface
// writes into, and the default parameter schema.
package param

import (
	"fmt"
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Kind tags the variant held by a Value.
type Kind int

const (
	KindNumber Kind = iota
	KindInt
	KindColor
	KindBool
	KindEnum
)

func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindInt:
		return "int"
	case KindColor:
		return "color"
	case KindBool:
		return "bool"
	case KindEnum:
		return "enum"
	}
	return "unknown"
}

// Value is a tagged variant: Number | Int | Color | Bool | Enum. Int covers
// numeric parameters that must never take fractional values (grid
// dimensions); during a scene blend they snap instead of interpolating.
type Value struct {
	kind Kind
	num  float64
	b    bool
	s    string
	col  colorful.Color
}

// Number wraps a continuous numeric parameter.
func Number(v float64) Value {
	return Value{kind: KindNumber, num: v}
}

// Int wraps a discrete numeric parameter.
func Int(v int) Value {
	return Value{kind: KindInt, num: float64(v)}
}

// Color parses a hex color string ("#rrggbb") into a color value.
func Color(hex string) (Value, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return Value{}, fmt.Errorf("parse color %q: %w", hex, err)
	}
	return Value{kind: KindColor, col: c}, nil
}

// MustColor is Color for schema literals; it panics on a malformed string.
func MustColor(hex string) Value {
	v, err := Color(hex)
	if err != nil {
		panic(err)
	}
	return v
}

// Bool wraps a boolean parameter.
func Bool(v bool) Value {
	return Value{kind: KindBool, b: v}
}

// Enum wraps a parameter drawn from a fixed label set.
func Enum(v string) Value {
	return Value{kind: KindEnum, s: v}
}

// Kind returns the variant tag.
func (v Value) Kind() Kind { return v.kind }

// Float returns the numeric payload of a Number or Int.
func (v Value) Float() float64 { return v.num }

// IntValue returns the payload of an Int rounded to the nearest integer.
func (v Value) IntValue() int { return int(math.Round(v.num)) }

// BoolValue returns the payload of a Bool.
func (v Value) BoolValue() bool { return v.b }

// EnumValue returns the payload of an Enum.
func (v Value) EnumValue() string { return v.s }

// Hex returns the payload of a Color as "#rrggbb".
func (v Value) Hex() string { return v.col.Hex() }

// RGB returns the color payload.
func (v Value) RGB() colorful.Color { return v.col }

func (v Value) String() string {
	switch v.kind {
	case KindNumber:
		return fmt.Sprintf("%g", v.num)
	case KindInt:
		return fmt.Sprintf("%d", v.IntValue())
	case KindColor:
		return v.col.Hex()
	case KindBool:
		return fmt.Sprintf("%t", v.b)
	case KindEnum:
		return v.s
	}
	return "<invalid>"
}

// Equal reports whether two values have the same kind and payload.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNumber, KindInt:
		return v.num == o.num
	case KindColor:
		return v.col == o.col
	case KindBool:
		return v.b == o.b
	case KindEnum:
		return v.s == o.s
	}
	return false
}

// Interpolate blends v toward to at eased progress p. Numbers interpolate
// linearly and may overshoot when the easing curve does; colors blend
// component-wise in RGB with p clamped to [0,1]; discrete kinds (Int, Bool,
// Enum) switch to the target once p reaches the midpoint so they never
// flicker between two states frame to frame. Mismatched kinds snap the same
// way.
func (v Value) Interpolate(to Value, p float64) Value {
	if v.kind != to.kind {
		if p >= 0.5 {
			return to
		}
		return v
	}
	switch v.kind {
	case KindNumber:
		return Number(v.num + (to.num-v.num)*p)
	case KindColor:
		return Value{kind: KindColor, col: v.col.BlendRgb(to.col, math.Max(0, math.Min(1, p)))}
	default:
		if p >= 0.5 {
			return to
		}
		return v
	}
}
