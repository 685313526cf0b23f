package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gitlab.com/gomidi/midi/v2"
	clocktesting "k8s.io/utils/clock/testing"

	"github.com/elimuro/rglr-gnrtr-engine/clock"
	"github.com/elimuro/rglr-gnrtr-engine/config"
	"github.com/elimuro/rglr-gnrtr-engine/mapping"
	"github.com/elimuro/rglr-gnrtr-engine/param"
	"github.com/elimuro/rglr-gnrtr-engine/preset"
	"github.com/elimuro/rglr-gnrtr-engine/rhythm"
	"github.com/elimuro/rglr-gnrtr-engine/transport"
)

func newTestEngine() (*Engine, *clocktesting.FakeClock) {
	fc := clocktesting.NewFakeClock(time.Unix(0, 0))
	return New(config.DefaultConfig(), fc), fc
}

func TestLoadSceneInterpolates(t *testing.T) {
	t.Parallel()

	eng, fc := newTestEngine()
	doc := []byte(`{"settings": {
		"animationSpeed": 5.0,
		"movementAmplitude": 0.9,
		"gridWidth": 16,
		"gridHeight": 16
	}}`)

	require.NoError(t, eng.LoadScene(doc, time.Second, "linear"))
	require.True(t, eng.Interpolator.IsActive())

	fc.Step(500 * time.Millisecond)
	eng.Tick(fc.Now())
	v, _ := eng.Store.Get("animationSpeed")
	require.InDelta(t, 3.0, v.Float(), 1e-9) // 1.0 → 5.0 at p=0.5

	fc.Step(time.Second)
	eng.Tick(fc.Now())
	v, _ = eng.Store.Get("animationSpeed")
	require.Equal(t, 5.0, v.Float())
	require.False(t, eng.Interpolator.IsActive())
}

func TestLoadSceneRejectsInvalidDocument(t *testing.T) {
	t.Parallel()

	eng, _ := newTestEngine()
	err := eng.LoadScene([]byte(`{"settings": {"animationSpeed": 1}}`), time.Second, "linear")
	require.ErrorIs(t, err, preset.ErrValidation)
	require.False(t, eng.Interpolator.IsActive())

	v, _ := eng.Store.Get("animationSpeed")
	require.Equal(t, 1.0, v.Float())
}

func TestExportSceneRoundTrip(t *testing.T) {
	t.Parallel()

	eng, fc := newTestEngine()
	data, err := eng.ExportScene("live dump")
	require.NoError(t, err)

	other, _ := newTestEngine()
	require.NoError(t, other.LoadScene(data, time.Millisecond, "linear"))
	fc.Step(time.Second)
	other.Tick(time.Unix(2, 0))
}

func TestHandleMIDIRouting(t *testing.T) {
	t.Parallel()

	eng, fc := newTestEngine()
	eng.Mappings.Add(mapping.Mapping{Channel: 0, Kind: mapping.SourceCC, Number: 21, Target: "randomness"})

	// realtime bytes reach the MIDI clock
	eng.HandleMIDI(fc.Now(), midi.Message([]byte{0xFA}))
	eng.HandleMIDI(fc.Now(), midi.Message([]byte{0xF8}))

	// control changes reach the mapping table
	eng.HandleMIDI(fc.Now(), midi.Message([]byte{0xB0, 21, 127}))
	v, _ := eng.Store.Get("randomness")
	require.Equal(t, 1.0, v.Float())
}

func TestClockTimeoutFromConfig(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	cfg.ClockTimeoutMs = 500
	fc := clocktesting.NewFakeClock(time.Unix(0, 0))
	eng := New(cfg, fc)
	eng.Transport.SetSyncSource(transport.SourceMIDI)

	var events []clock.TransportEvent
	eng.Transport.OnTransport(func(ev clock.TransportEvent) { events = append(events, ev) })

	for i := 0; i < 5; i++ {
		eng.HandleMIDI(fc.Now(), midi.Message([]byte{0xF8}))
		fc.Step(40 * time.Millisecond)
	}

	// silence past the stock window but inside the configured one
	fc.Step(300 * time.Millisecond)
	eng.Tick(fc.Now())
	require.Empty(t, events)

	fc.Step(300 * time.Millisecond)
	eng.Tick(fc.Now())
	require.Equal(t, []clock.TransportEvent{clock.EventSyncLost}, events)
}

func TestTickOrderTransportBeforeScene(t *testing.T) {
	t.Parallel()

	eng, fc := newTestEngine()
	eng.Transport.Play()

	var order []string
	eng.Transport.OnBeat(func(rhythm.BeatPosition) {
		if len(order) == 0 || order[len(order)-1] != "beat" {
			order = append(order, "beat")
		}
	})
	eng.Store.SubscribeAll(func(param.Change) {
		if len(order) == 0 || order[len(order)-1] != "scene" {
			order = append(order, "scene")
		}
	})

	doc := []byte(`{"settings": {
		"animationSpeed": 5.0,
		"movementAmplitude": 0.9,
		"gridWidth": 16,
		"gridHeight": 16
	}}`)
	require.NoError(t, eng.LoadScene(doc, 2*time.Second, "linear"))

	// one frame spanning a quarter-note boundary: transport beats land
	// before the interpolation writes
	fc.Step(time.Second)
	eng.Tick(fc.Now())

	require.Equal(t, []string{"beat", "scene"}, order)
}
