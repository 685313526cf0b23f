// Package transport owns playback state and the active clock source, and
// exposes unified musical-time queries plus the beat/transport/BPM observer
// registries the rest of the application subscribes to.
package transport

import (
	"time"

	"gitlab.com/gomidi/midi/v2"
	kclock "k8s.io/utils/clock"

	"github.com/elimuro/rglr-gnrtr-engine/clock"
	"github.com/elimuro/rglr-gnrtr-engine/observer"
	"github.com/elimuro/rglr-gnrtr-engine/rhythm"
)

// Mode is the playback state.
type Mode string

const (
	ModeStopped Mode = "stopped"
	ModePlaying Mode = "playing"
	ModePaused  Mode = "paused"
)

// SyncSource selects which clock the coordinator follows.
type SyncSource string

const (
	SourceInternal SyncSource = "internal"
	SourceMIDI     SyncSource = "midi"
)

// State mirrors the active clock source shaped for transport consumers.
type State struct {
	Mode         Mode
	SyncSource   SyncSource
	InternalBPM  float64
	CurrentBPM   float64
	BeatDivision rhythm.Division
}

// Coordinator routes transport commands, owns the stopped/playing/paused
// state machine, and fans clock callbacks out to isolated observer
// registries.
type Coordinator struct {
	clk         kclock.PassiveClock
	beatsPerBar int

	mode     Mode
	source   SyncSource
	division rhythm.Division

	internal *clock.InternalClock
	midi     *clock.MIDIClock

	beatObs      *observer.Registry[rhythm.BeatPosition]
	transportObs *observer.Registry[clock.TransportEvent]
	bpmObs       *observer.Registry[float64]
}

// NewCoordinator creates a coordinator following the internal clock.
func NewCoordinator(clk kclock.PassiveClock, beatsPerBar int) *Coordinator {
	if beatsPerBar < 1 {
		beatsPerBar = 4
	}
	c := &Coordinator{
		clk:          clk,
		beatsPerBar:  beatsPerBar,
		mode:         ModeStopped,
		source:       SourceInternal,
		division:     rhythm.Div4th,
		beatObs:      observer.NewRegistry[rhythm.BeatPosition]("beat"),
		transportObs: observer.NewRegistry[clock.TransportEvent]("transport"),
		bpmObs:       observer.NewRegistry[float64]("bpm"),
	}
	c.internal = clock.NewInternalClock(beatsPerBar, clock.Hooks{
		OnBeat: func(p rhythm.BeatPosition) {
			if c.source == SourceInternal {
				c.beatObs.Notify(p)
			}
		},
		OnBPM: func(bpm float64) {
			if c.source == SourceInternal {
				c.bpmObs.Notify(bpm)
			}
		},
	})
	c.midi = clock.NewMIDIClock(beatsPerBar, clock.Hooks{
		OnBeat: func(p rhythm.BeatPosition) {
			if c.source == SourceMIDI {
				c.beatObs.Notify(p)
			}
		},
		OnTransport: func(ev clock.TransportEvent) {
			if c.source != SourceMIDI {
				return
			}
			// External transport drives our mode while following MIDI.
			switch ev {
			case clock.EventPlaying:
				c.mode = ModePlaying
			case clock.EventStopped:
				c.mode = ModeStopped
			}
			c.transportObs.Notify(ev)
		},
		OnBPM: func(bpm float64) {
			if c.source == SourceMIDI {
				c.bpmObs.Notify(bpm)
			}
		},
	})
	return c
}

// OnBeat subscribes to beat-changed notifications of the active source.
func (c *Coordinator) OnBeat(fn func(rhythm.BeatPosition)) func() {
	return c.beatObs.Subscribe(fn)
}

// OnTransport subscribes to transport-changed notifications.
func (c *Coordinator) OnTransport(fn func(clock.TransportEvent)) func() {
	return c.transportObs.Subscribe(fn)
}

// OnBPM subscribes to published tempo changes.
func (c *Coordinator) OnBPM(fn func(float64)) func() {
	return c.bpmObs.Subscribe(fn)
}

// Play starts playback. From stopped it restarts at bar 1, beat 1, tick 1;
// from paused it resumes in place, folding the paused duration into the
// pause accumulator so animation time stays continuous. The two are
// semantically different for a live performance and must stay distinct.
func (c *Coordinator) Play() {
	switch c.mode {
	case ModePlaying:
		return
	case ModeStopped:
		if c.source == SourceInternal {
			c.internal.Start(c.clk.Now())
		}
	case ModePaused:
		if c.source == SourceInternal {
			c.internal.Resume(c.clk.Now())
		}
	}
	c.mode = ModePlaying
	c.transportObs.Notify(clock.EventPlaying)
}

// Pause freezes playback keeping the beat position.
func (c *Coordinator) Pause() {
	if c.mode != ModePlaying {
		return
	}
	if c.source == SourceInternal {
		c.internal.Pause(c.clk.Now())
	}
	c.mode = ModePaused
	c.transportObs.Notify(clock.EventPaused)
}

// Stop halts playback; the next Play restarts from the top.
func (c *Coordinator) Stop() {
	if c.mode == ModeStopped {
		return
	}
	if c.source == SourceInternal {
		c.internal.Stop()
	}
	c.mode = ModeStopped
	c.transportObs.Notify(clock.EventStopped)
}

// SetSyncSource swaps the active clock source. A playing transport pauses
// first, swaps, then resumes, so clock ownership is never ambiguous
// mid-swap and the "was playing" intent survives the switch.
func (c *Coordinator) SetSyncSource(s SyncSource) {
	if s == c.source || (s != SourceInternal && s != SourceMIDI) {
		return
	}
	wasPlaying := c.mode == ModePlaying
	if wasPlaying {
		c.Pause()
	}
	c.source = s
	if wasPlaying {
		c.Play()
	}
}

// SetInternalBPM sets the internal tempo, clamped to [60,200]. The phase is
// preserved across the change.
func (c *Coordinator) SetInternalBPM(bpm float64) {
	c.internal.SetBPM(bpm, c.clk.Now())
}

// SetClockTimeout overrides the window after which a silent MIDI clock is
// declared lost. Non-positive durations are ignored.
func (c *Coordinator) SetClockTimeout(d time.Duration) {
	c.midi.SetTimeout(d)
}

// SetBeatDivision selects the division used for beat-synchronized triggers.
func (c *Coordinator) SetBeatDivision(d rhythm.Division) {
	if !d.Valid() {
		return
	}
	c.division = d
	c.internal.SetDivision(d)
}

// HandleMIDIMessage forwards a timestamped realtime message to the MIDI
// clock. Messages are fed regardless of the active source so the tempo
// estimate is warm when the user switches over.
func (c *Coordinator) HandleMIDIMessage(ts time.Time, msg midi.Message) {
	c.midi.HandleMessage(ts, msg)
}

// Tick drives the active source. Call once per frame, before the scene
// interpolator tick.
func (c *Coordinator) Tick(now time.Time) {
	switch c.source {
	case SourceInternal:
		c.internal.Tick(now)
	case SourceMIDI:
		c.midi.CheckTimeout(now)
	}
}

func (c *Coordinator) active() clock.Source {
	if c.source == SourceMIDI {
		return c.midi
	}
	return c.internal
}

// State returns the transport state shaped for GUI consumers.
func (c *Coordinator) State() State {
	return State{
		Mode:         c.mode,
		SyncSource:   c.source,
		InternalBPM:  c.internal.BPM(),
		CurrentBPM:   c.active().State().CurrentBPM,
		BeatDivision: c.division,
	}
}

// ClockState exposes the active source's raw clock state.
func (c *Coordinator) ClockState() clock.State {
	return c.active().State()
}

// AnimationTime returns elapsed musical time in beats from the active source.
func (c *Coordinator) AnimationTime() float64 {
	return c.active().AnimationTime()
}

// BeatProgress returns the phase within the given division, in [0,1).
func (c *Coordinator) BeatProgress(d rhythm.Division) float64 {
	return c.active().BeatProgress(d)
}

// IsOnBeat reports whether the active source sits on a division boundary.
func (c *Coordinator) IsOnBeat(d rhythm.Division) bool {
	return c.active().IsOnBeat(d)
}

// BeatDivision returns the configured trigger division.
func (c *Coordinator) BeatDivision() rhythm.Division {
	return c.division
}
