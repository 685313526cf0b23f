// Package engine wires the timing and parameter components into one object
// owned by the application root. There are no ambient singletons: every
// component receives the store and clock it needs by reference.
package engine

import (
	"time"

	"gitlab.com/gomidi/midi/v2"
	kclock "k8s.io/utils/clock"

	"github.com/elimuro/rglr-gnrtr-engine/config"
	"github.com/elimuro/rglr-gnrtr-engine/mapping"
	"github.com/elimuro/rglr-gnrtr-engine/param"
	"github.com/elimuro/rglr-gnrtr-engine/preset"
	"github.com/elimuro/rglr-gnrtr-engine/scene"
	"github.com/elimuro/rglr-gnrtr-engine/transport"
)

// Engine is the root of the synchronization core: the parameter store, the
// transport coordinator, the scene interpolator, and the MIDI mapping table.
type Engine struct {
	Store        *param.Store
	Transport    *transport.Coordinator
	Interpolator *scene.Interpolator
	Mappings     *mapping.Table

	cfg *config.Config
}

// New builds an engine from the given config. The clock is injected so tests
// can drive time explicitly.
func New(cfg *config.Config, clk kclock.PassiveClock) *Engine {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	store := param.NewStore()
	coord := transport.NewCoordinator(clk, cfg.BeatsPerBar)
	coord.SetInternalBPM(cfg.InternalBPM)
	coord.SetClockTimeout(time.Duration(cfg.ClockTimeoutMs) * time.Millisecond)
	return &Engine{
		Store:        store,
		Transport:    coord,
		Interpolator: scene.NewInterpolator(store, clk),
		Mappings:     mapping.NewTable(store),
		cfg:          cfg,
	}
}

// Tick drives one frame. Clock and transport state advance first, then the
// scene interpolation, so consumers reading after Tick always observe a
// self-consistent post-tick snapshot.
func (e *Engine) Tick(now time.Time) {
	e.Transport.Tick(now)
	e.Interpolator.Tick(now)
}

// HandleMIDI routes one timestamped incoming MIDI message: realtime messages
// feed the MIDI clock, everything else goes through the mapping table.
func (e *Engine) HandleMIDI(ts time.Time, msg midi.Message) {
	if len(msg) == 0 {
		return
	}
	switch msg.Type() {
	case midi.TimingClockMsg, midi.StartMsg, midi.StopMsg, midi.ContinueMsg, midi.SPPMsg:
		e.Transport.HandleMIDIMessage(ts, msg)
	default:
		e.Mappings.Handle(msg)
	}
}

// LoadScene decodes a preset document and starts an interpolated transition
// toward it from the live state, using the configured default duration and
// easing when the caller passes zero values.
func (e *Engine) LoadScene(data []byte, duration time.Duration, easing string) error {
	doc, err := preset.Decode(data)
	if err != nil {
		return err
	}
	if duration <= 0 {
		duration = time.Duration(e.cfg.SceneDurationSec * float64(time.Second))
	}
	if easing == "" {
		easing = e.cfg.SceneEasing
	}
	target := doc.SnapshotForStore(e.Store)
	if err := preset.ValidateSnapshot(target); err != nil {
		return err
	}
	return e.Interpolator.Begin(nil, target, duration, easing)
}

// ExportScene dumps the full parameter state as a preset document ready for
// the file save path.
func (e *Engine) ExportScene(name string) ([]byte, error) {
	return preset.FromSnapshot(name, e.Store.Snapshot()).Encode()
}
