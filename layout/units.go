package layout

import (
	"strconv"
	"strings"
)

// This file defines unit-safe types and helpers for lengths used by themes
// and page geometry. The engine itself works in PDF points.

// Unit represents the original unit of a length value as written in a theme.
type Unit int

const (
	UnitNone Unit = iota // unit-less numbers like factors
	UnitMM               // millimeters
	UnitCM               // centimeters
	UnitIN               // inches
	UnitPT               // points
)

// Conversion constants between pt and mm.
const (
	PtToMm = 25.4 / 72
	MmToPt = 72 / 25.4
)

// ISO A4 portrait in points.
const (
	A4Width  = 210 * MmToPt
	A4Height = 297 * MmToPt
)

// Length preserves a numeric value with its unit.
type Length struct {
	Value float64 `json:"value"`
	Unit  Unit    `json:"unit"`
}

// To converts this length to target unit. Supported targets: UnitMM, UnitPT.
// Unit-less values are taken as already being in the target unit.
func (l Length) To(target Unit) float64 {
	var mm float64
	switch l.Unit {
	case UnitMM:
		mm = l.Value
	case UnitCM:
		mm = l.Value * 10
	case UnitIN:
		mm = l.Value * 25.4
	case UnitPT:
		if target == UnitPT {
			return l.Value
		}
		return l.Value * PtToMm
	default:
		return l.Value
	}
	if target == UnitPT {
		return mm * MmToPt
	}
	return mm
}

func (l Length) ToMM() float64 { return l.To(UnitMM) }
func (l Length) ToPT() float64 { return l.To(UnitPT) }

// ParseRawLengthStr parses a length string such as "12pt" or "5mm" preserving its unit.
// Invalid input yields a zero, unit-less Length.
func ParseRawLengthStr(value string) Length {
	v := strings.TrimSpace(value)
	if v == "" {
		return Length{Value: 0, Unit: UnitNone}
	}
	lower := strings.ToLower(v)
	unit := UnitNone
	num := lower
	for _, suf := range []struct {
		s string
		u Unit
	}{{"mm", UnitMM}, {"cm", UnitCM}, {"in", UnitIN}, {"pt", UnitPT}} {
		if strings.HasSuffix(lower, suf.s) {
			unit = suf.u
			num = strings.TrimSpace(strings.TrimSuffix(lower, suf.s))
			break
		}
	}
	f, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return Length{Value: 0, Unit: UnitNone}
	}
	return Length{Value: f, Unit: unit}
}

// LineHeightKind distinguishes factor-based vs absolute line-height specification.
type LineHeightKind int

const (
	LineHeightFactor LineHeightKind = iota
	LineHeightAbsolute
)

// LineHeightSpec preserves author intent: either a factor (e.g., 1.2x) or an absolute length (e.g., 10pt).
type LineHeightSpec struct {
	Kind   LineHeightKind `json:"kind"`
	Factor float64        `json:"factor,omitempty"`
	Len    Length         `json:"len,omitempty"`
}

// ParseLineHeight accepts "1.2x" (factor) or an absolute length.
func ParseLineHeight(value string) (LineHeightSpec, bool) {
	v := strings.TrimSpace(value)
	if strings.HasSuffix(v, "x") {
		f, err := strconv.ParseFloat(strings.TrimSuffix(v, "x"), 64)
		if err != nil || f <= 0 {
			return LineHeightSpec{}, false
		}
		return LineHeightSpec{Kind: LineHeightFactor, Factor: f}, true
	}
	l := ParseRawLengthStr(v)
	if l.Value <= 0 {
		return LineHeightSpec{}, false
	}
	return LineHeightSpec{Kind: LineHeightAbsolute, Len: l}, true
}

// Resolve computes the absolute line height in points for a font size in points.
func (s LineHeightSpec) Resolve(fontSizePt float64) float64 {
	switch {
	case s.Kind == LineHeightFactor && s.Factor > 0:
		return fontSizePt * s.Factor
	case s.Kind == LineHeightAbsolute && s.Len.Value > 0:
		return s.Len.ToPT()
	default:
		// fallback to 1.2x if unspecified
		return fontSizePt * 1.2
	}
}
