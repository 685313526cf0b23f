package clock

import (
	"math"
	"time"

	"gitlab.com/gomidi/midi/v2"

	"github.com/elimuro/rglr-gnrtr-engine/rhythm"
)

const (
	// PulsesPerQuarterNote is fixed by the MIDI spec: 24 clock pulses per
	// quarter note.
	PulsesPerQuarterNote = 24

	// DefaultClockTimeout is how long we wait for the next pulse before
	// declaring the external clock lost.
	DefaultClockTimeout = 200 * time.Millisecond

	// bpmWindowSize is one quarter note worth of pulse intervals.
	bpmWindowSize = 24

	// bpmHysteresis suppresses republishing noise-level tempo jitter.
	bpmHysteresis = 0.1

	defaultBPM = 120.0
)

// MIDIClock derives tempo and beat position from external MIDI realtime
// messages. Raw timestamped messages are pushed in via HandleMessage; the
// frame loop drives clock-loss detection via CheckTimeout.
type MIDIClock struct {
	beatsPerBar int
	hooks       Hooks
	timeout     time.Duration

	receiving   bool
	playing     bool
	position    rhythm.BeatPosition
	pulseCount  int
	sixteenths  int
	lastPulseAt time.Time
	havePulse   bool

	bpmWindow []float64
	published float64
}

// NewMIDIClock creates a MIDI clock source.
func NewMIDIClock(beatsPerBar int, hooks Hooks) *MIDIClock {
	if beatsPerBar < 1 {
		beatsPerBar = 4
	}
	return &MIDIClock{
		beatsPerBar: beatsPerBar,
		hooks:       hooks,
		timeout:     DefaultClockTimeout,
		position:    rhythm.Origin(),
		published:   defaultBPM,
	}
}

// SetTimeout overrides the clock-loss detection window.
func (c *MIDIClock) SetTimeout(d time.Duration) {
	if d > 0 {
		c.timeout = d
	}
}

// HandleMessage processes one timestamped realtime message. Anything that is
// not a realtime or song-position message is ignored.
func (c *MIDIClock) HandleMessage(ts time.Time, msg midi.Message) {
	if len(msg) == 0 {
		return
	}
	switch msg.Type() {
	case midi.TimingClockMsg:
		c.handlePulse(ts)
	case midi.StartMsg:
		c.handleStart()
	case midi.StopMsg:
		c.handleStop()
	case midi.ContinueMsg:
		c.handleContinue()
	case midi.SPPMsg:
		c.handleSongPosition(msg)
	}
}

func (c *MIDIClock) handlePulse(ts time.Time) {
	c.receiving = true
	if c.havePulse {
		interval := float64(ts.Sub(c.lastPulseAt)) / float64(time.Millisecond)
		if interval > 0 {
			instant := 60000.0 / (interval * PulsesPerQuarterNote)
			c.bpmWindow = append(c.bpmWindow, instant)
			if len(c.bpmWindow) > bpmWindowSize {
				c.bpmWindow = c.bpmWindow[1:]
			}
			c.updateBPM()
		}
	}
	c.lastPulseAt = ts
	c.havePulse = true

	if !c.playing {
		return
	}
	c.pulseCount++
	if c.pulseCount%6 == 0 {
		c.sixteenths = c.pulseCount / 6
		c.position = rhythm.PositionForSixteenths(c.sixteenths, c.beatsPerBar)
	}
	if c.pulseCount%PulsesPerQuarterNote == 0 {
		c.hooks.beat(c.position)
	}
}

func (c *MIDIClock) updateBPM() {
	sum := 0.0
	for _, v := range c.bpmWindow {
		sum += v
	}
	mean := sum / float64(len(c.bpmWindow))
	rounded := math.Round(mean*10) / 10
	if math.Abs(rounded-c.published) > bpmHysteresis {
		c.published = rounded
		c.hooks.bpm(rounded)
	}
}

func (c *MIDIClock) handleStart() {
	c.pulseCount = 0
	c.sixteenths = 0
	c.position = rhythm.Origin()
	c.playing = true
	c.hooks.transport(EventPlaying)
}

func (c *MIDIClock) handleStop() {
	if !c.playing {
		return
	}
	c.playing = false
	// Position is intentionally frozen, not reset; Continue resumes here.
	// Musical time is pulse-count-derived, so continuity across the gap
	// needs no wall-clock bookkeeping.
	c.hooks.transport(EventStopped)
}

func (c *MIDIClock) handleContinue() {
	if c.playing {
		return
	}
	c.playing = true
	c.hooks.transport(EventPlaying)
}

// handleSongPosition decodes the 14-bit position (LSB | MSB<<7) counted in
// MIDI sixteenth notes and jumps the beat position immediately rather than
// waiting for the next pulse.
func (c *MIDIClock) handleSongPosition(msg midi.Message) {
	if len(msg) < 3 {
		return
	}
	pos := int(msg[1]&0x7F) | int(msg[2]&0x7F)<<7
	c.sixteenths = pos
	c.pulseCount = pos * 6
	c.position = rhythm.PositionForSixteenths(pos, c.beatsPerBar)
	c.hooks.beat(c.position)
}

// CheckTimeout flags the clock as lost when no pulse arrived within the
// timeout window. Call it once per frame; the sync_lost notification fires
// exactly once per loss, and the next pulse re-arms detection.
func (c *MIDIClock) CheckTimeout(now time.Time) {
	if !c.receiving || !c.havePulse {
		return
	}
	if now.Sub(c.lastPulseAt) > c.timeout {
		c.receiving = false
		c.hooks.transport(EventSyncLost)
	}
}

// State returns the current clock state.
func (c *MIDIClock) State() State {
	return State{
		IsReceivingClock:         c.receiving,
		IsPlaying:                c.playing,
		CurrentBPM:               c.published,
		BeatPosition:             c.position,
		SongPositionInSixteenths: c.sixteenths,
		PulseCount:               c.pulseCount,
	}
}

// AnimationTime returns elapsed beats derived from the pulse counter.
func (c *MIDIClock) AnimationTime() float64 {
	return float64(c.pulseCount) / PulsesPerQuarterNote
}

// BeatProgress returns the phase within the given division.
func (c *MIDIClock) BeatProgress(d rhythm.Division) float64 {
	return rhythm.Phase(d, c.AnimationTime(), c.beatsPerBar)
}

// IsOnBeat reports whether the position is within one clock pulse of a
// division boundary.
func (c *MIDIClock) IsOnBeat(d rhythm.Division) bool {
	epsilon := (1.0 / PulsesPerQuarterNote) / d.QuarterNotes(c.beatsPerBar)
	return c.BeatProgress(d) < epsilon
}

// Reset returns the source to its initial state and disarms timeout
// detection so no stale sync_lost can fire after teardown.
func (c *MIDIClock) Reset() {
	c.receiving = false
	c.playing = false
	c.position = rhythm.Origin()
	c.pulseCount = 0
	c.sixteenths = 0
	c.havePulse = false
	c.lastPulseAt = time.Time{}
	c.bpmWindow = nil
	c.published = defaultBPM
}
