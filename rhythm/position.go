// Package rhythm holds the musical-time value types shared by the clock
// sources and everything that consumes beat phase: beat positions, note
// divisions, and the floor-based phase/boundary math used to derive triggers
// from continuous time.
package rhythm

import (
	"fmt"
	"math"
)

// BeatPosition is a musical position. Bar and Beat are 1-based; Tick
// subdivides a beat into quarters (1..4) and exists for display only.
type BeatPosition struct {
	Bar  int
	Beat int
	Tick int
}

// Origin is the position at the top of the song: bar 1, beat 1, tick 1.
func Origin() BeatPosition {
	return BeatPosition{Bar: 1, Beat: 1, Tick: 1}
}

func (p BeatPosition) String() string {
	return fmt.Sprintf("%d.%d.%d", p.Bar, p.Beat, p.Tick)
}

// PositionForBeats converts elapsed quarter-note beats since song start into
// a BeatPosition. Negative input clamps to the origin.
func PositionForBeats(beats float64, beatsPerBar int) BeatPosition {
	if beats < 0 || math.IsNaN(beats) {
		return Origin()
	}
	if beatsPerBar < 1 {
		beatsPerBar = 4
	}
	whole := int(math.Floor(beats))
	return BeatPosition{
		Bar:  whole/beatsPerBar + 1,
		Beat: whole%beatsPerBar + 1,
		Tick: int(math.Floor(beats*4))%4 + 1,
	}
}

// PositionForSixteenths converts a count of sixteenth notes since song start
// (the unit used by MIDI Song Position Pointer) into a BeatPosition.
func PositionForSixteenths(sixteenths int, beatsPerBar int) BeatPosition {
	if sixteenths < 0 {
		return Origin()
	}
	if beatsPerBar < 1 {
		beatsPerBar = 4
	}
	perBar := 4 * beatsPerBar
	within := sixteenths % perBar
	return BeatPosition{
		Bar:  sixteenths/perBar + 1,
		Beat: within/4 + 1,
		Tick: within%4 + 1,
	}
}
