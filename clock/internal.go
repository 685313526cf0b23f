package clock

import (
	"math"
	"time"

	"github.com/elimuro/rglr-gnrtr-engine/engine/scale"
	"github.com/elimuro/rglr-gnrtr-engine/rhythm"
)

const (
	// MinBPM and MaxBPM bound the internal tempo. MIDI-derived tempo is not
	// clamped; we trust external hardware.
	MinBPM = 60.0
	MaxBPM = 200.0
)

// InternalClock is a free-running clock source at a user-set BPM. It keeps
// no timers of its own: the frame loop calls Tick, which advances musical
// time from wall-clock elapsed time minus accumulated pause time and fires
// beat callbacks for every division boundary crossed since the previous
// tick.
type InternalClock struct {
	beatsPerBar int
	hooks       Hooks

	bpm      float64
	division rhythm.Division

	playing     bool
	startAt     time.Time
	pausedAt    time.Time
	pausedAccum time.Duration

	beats float64
}

// NewInternalClock creates an internal clock source at the default tempo.
func NewInternalClock(beatsPerBar int, hooks Hooks) *InternalClock {
	if beatsPerBar < 1 {
		beatsPerBar = 4
	}
	return &InternalClock{
		beatsPerBar: beatsPerBar,
		hooks:       hooks,
		bpm:         defaultBPM,
		division:    rhythm.Div4th,
	}
}

// SetDivision selects the division used for beat callbacks.
func (c *InternalClock) SetDivision(d rhythm.Division) {
	if d.Valid() {
		c.division = d
	}
}

// BPM returns the configured tempo.
func (c *InternalClock) BPM() float64 {
	return c.bpm
}

// SetBPM changes the tempo, clamped to [MinBPM,MaxBPM]. The start time is
// adjusted so the current beat and phase are unaffected by the change,
// whether playing or paused; a paused clock rebaselines against the moment
// it was paused so the position it resumes from does not rescale.
func (c *InternalClock) SetBPM(bpm float64, now time.Time) {
	bpm = scale.ClampFloat(bpm, MinBPM, MaxBPM)
	anchor := now
	if !c.playing {
		anchor = c.pausedAt
	}
	if c.playing || !c.pausedAt.IsZero() {
		elapsed := c.beats * 60.0 / bpm
		c.startAt = anchor.Add(-c.pausedAccum).Add(-time.Duration(elapsed * float64(time.Second)))
	}
	c.bpm = bpm
	c.hooks.bpm(bpm)
}

// Start begins playback from the top: bar 1, beat 1, tick 1.
func (c *InternalClock) Start(now time.Time) {
	c.startAt = now
	c.pausedAccum = 0
	c.pausedAt = time.Time{}
	c.beats = 0
	c.playing = true
}

// Pause freezes the position; Resume continues from it.
func (c *InternalClock) Pause(now time.Time) {
	if !c.playing {
		return
	}
	c.playing = false
	c.pausedAt = now
}

// Resume folds the paused duration into the accumulator so musical time is
// continuous across the pause.
func (c *InternalClock) Resume(now time.Time) {
	if c.playing {
		return
	}
	if !c.pausedAt.IsZero() {
		c.pausedAccum += now.Sub(c.pausedAt)
		c.pausedAt = time.Time{}
	}
	c.playing = true
}

// Stop halts playback. The position stays frozen at its last value; the next
// Start resets it.
func (c *InternalClock) Stop() {
	c.playing = false
	c.pausedAt = time.Time{}
}

// Tick advances musical time to now and fires the beat callback once per
// division boundary crossed since the previous tick. Boundary detection
// compares floor counters, so an uneven tick cadence can neither skip nor
// double-fire a crossing.
func (c *InternalClock) Tick(now time.Time) {
	if !c.playing {
		return
	}
	elapsed := now.Sub(c.startAt) - c.pausedAccum
	curr := elapsed.Seconds() * c.bpm / 60.0
	if curr < 0 || math.IsNaN(curr) {
		return
	}
	prev := c.beats
	c.beats = curr

	prevIdx := rhythm.BoundaryIndex(c.division, prev, c.beatsPerBar)
	currIdx := rhythm.BoundaryIndex(c.division, curr, c.beatsPerBar)
	divLen := c.division.QuarterNotes(c.beatsPerBar)
	for i := prevIdx + 1; i <= currIdx; i++ {
		c.hooks.beat(rhythm.PositionForBeats(float64(i)*divLen, c.beatsPerBar))
	}
}

// State returns the current clock state. An internal clock is always
// "receiving" its own pulses.
func (c *InternalClock) State() State {
	return State{
		IsReceivingClock:         true,
		IsPlaying:                c.playing,
		CurrentBPM:               c.bpm,
		BeatPosition:             rhythm.PositionForBeats(c.beats, c.beatsPerBar),
		SongPositionInSixteenths: int(math.Floor(c.beats * 4)),
		PulseCount:               int(math.Floor(c.beats * PulsesPerQuarterNote)),
	}
}

// AnimationTime returns elapsed beats as of the last Tick.
func (c *InternalClock) AnimationTime() float64 {
	return c.beats
}

// BeatProgress returns the phase within the given division.
func (c *InternalClock) BeatProgress(d rhythm.Division) float64 {
	return rhythm.Phase(d, c.beats, c.beatsPerBar)
}

// IsOnBeat reports whether the position is within one frame (~16 ms of
// beats at the current tempo) of a division boundary.
func (c *InternalClock) IsOnBeat(d rhythm.Division) bool {
	frameBeats := 0.016 * c.bpm / 60.0
	epsilon := frameBeats / d.QuarterNotes(c.beatsPerBar)
	return c.BeatProgress(d) < epsilon
}

// Reset stops playback and returns to the origin.
func (c *InternalClock) Reset() {
	c.playing = false
	c.startAt = time.Time{}
	c.pausedAt = time.Time{}
	c.pausedAccum = 0
	c.beats = 0
}
