// Package clock implements the tempo/beat-phase providers that everything
// else synchronizes to. Two sources exist: MIDIClock follows an external
// device's realtime messages, InternalClock free-runs at a user-set BPM.
// Both are driven from the frame loop; neither schedules its own timers.
package clock

import (
	"github.com/elimuro/rglr-gnrtr-engine/rhythm"
)

// TransportEvent names a transport state change published by a clock source
// or the transport coordinator.
type TransportEvent string

const (
	EventPlaying  TransportEvent = "playing"
	EventStopped  TransportEvent = "stopped"
	EventPaused   TransportEvent = "paused"
	EventSyncLost TransportEvent = "sync_lost"
)

// State is a point-in-time view of a clock source.
type State struct {
	IsReceivingClock         bool
	IsPlaying                bool
	CurrentBPM               float64
	BeatPosition             rhythm.BeatPosition
	SongPositionInSixteenths int
	PulseCount               int
}

// Hooks carries the callbacks a source fires as it advances. Nil fields are
// skipped. The transport coordinator installs these and fans them out to its
// observer registries.
type Hooks struct {
	OnBeat      func(rhythm.BeatPosition)
	OnTransport func(TransportEvent)
	OnBPM       func(float64)
}

func (h Hooks) beat(p rhythm.BeatPosition) {
	if h.OnBeat != nil {
		h.OnBeat(p)
	}
}

func (h Hooks) transport(ev TransportEvent) {
	if h.OnTransport != nil {
		h.OnTransport(ev)
	}
}

func (h Hooks) bpm(v float64) {
	if h.OnBPM != nil {
		h.OnBPM(v)
	}
}

// Source abstracts a tempo/beat-phase provider.
type Source interface {
	// State returns the current clock state.
	State() State

	// AnimationTime returns elapsed musical time in quarter-note beats.
	AnimationTime() float64

	// BeatProgress returns the phase within the given division, in [0,1).
	BeatProgress(d rhythm.Division) float64

	// IsOnBeat reports whether the current position sits on a boundary of
	// the given division.
	IsOnBeat(d rhythm.Division) bool

	// Reset returns the source to its initial state and disarms any pending
	// timeout detection.
	Reset()
}
