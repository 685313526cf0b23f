package rhythm

import (
	"math"

	"golang.org/x/exp/slices"
)

// Division is a musical note-division label. The set is fixed and ordered
// from shortest to longest; see Divisions.
type Division string

const (
	Div64th  Division = "1/64"
	Div32nd  Division = "1/32"
	Div16th  Division = "1/16"
	Div8th   Division = "1/8"
	Div4th   Division = "1/4"
	DivHalf  Division = "1/2"
	DivBar   Division = "1 bar"
	Div2Bars Division = "2 bars"
	Div4Bars Division = "4 bars"
	Div8Bars Division = "8 bars"
)

// Divisions is the fixed ordered set of valid division labels.
var Divisions = []Division{
	Div64th, Div32nd, Div16th, Div8th, Div4th, DivHalf,
	DivBar, Div2Bars, Div4Bars, Div8Bars,
}

// subBarQuarters maps the fractional-note labels to their length in quarter
// notes. Bar-based labels scale with the time signature instead.
var subBarQuarters = map[Division]float64{
	Div64th: 0.0625,
	Div32nd: 0.125,
	Div16th: 0.25,
	Div8th:  0.5,
	Div4th:  1,
	DivHalf: 2,
}

var barMultiples = map[Division]int{
	DivBar:   1,
	Div2Bars: 2,
	Div4Bars: 4,
	Div8Bars: 8,
}

// Valid reports whether d is one of the known division labels.
func (d Division) Valid() bool {
	return slices.Contains(Divisions, d)
}

// QuarterNotes returns the length of the division in quarter notes. Bar
// divisions span beatsPerBar quarter notes per bar (a 4/4 bar is 4 quarters,
// matching the sixteenths-per-bar arithmetic used for Song Position Pointer).
// Unknown labels fall back to one quarter note.
func (d Division) QuarterNotes(beatsPerBar int) float64 {
	if beatsPerBar < 1 {
		beatsPerBar = 4
	}
	if q, ok := subBarQuarters[d]; ok {
		return q
	}
	if bars, ok := barMultiples[d]; ok {
		return float64(bars * beatsPerBar)
	}
	return 1
}

// Phase maps elapsed beats onto the division cycle, yielding a value in
// [0,1). Negative input is treated as zero.
func Phase(d Division, beats float64, beatsPerBar int) float64 {
	if beats <= 0 || math.IsNaN(beats) {
		return 0
	}
	ratio := beats / d.QuarterNotes(beatsPerBar)
	return ratio - math.Floor(ratio)
}

// BoundaryIndex returns how many full division cycles have elapsed at the
// given beat count.
func BoundaryIndex(d Division, beats float64, beatsPerBar int) int64 {
	if beats <= 0 || math.IsNaN(beats) {
		return 0
	}
	return int64(math.Floor(beats / d.QuarterNotes(beatsPerBar)))
}

// BoundaryCrossed reports whether at least one division boundary lies between
// prevBeats and currBeats. It compares floor counters rather than testing for
// equality with the boundary itself, so sparse or irregular ticks can never
// skip a crossing.
func BoundaryCrossed(d Division, prevBeats, currBeats float64, beatsPerBar int) bool {
	return BoundaryIndex(d, prevBeats, beatsPerBar) < BoundaryIndex(d, currBeats, beatsPerBar)
}
