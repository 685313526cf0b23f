package scene

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	clocktesting "k8s.io/utils/clock/testing"

	"github.com/elimuro/rglr-gnrtr-engine/param"
	"github.com/elimuro/rglr-gnrtr-engine/preset"
)

func newTestInterpolator() (*Interpolator, *param.Store, *clocktesting.FakeClock) {
	store := param.NewStore()
	fc := clocktesting.NewFakeClock(time.Unix(5000, 0))
	return NewInterpolator(store, fc), store, fc
}

// target returns a minimal valid snapshot around the store defaults.
func target(store *param.Store, overrides param.Snapshot) param.Snapshot {
	out := param.Snapshot{}
	for _, k := range param.RequiredKeys {
		v, _ := store.Get(k)
		out[k] = v
	}
	for k, v := range overrides {
		out[k] = v
	}
	return out
}

func TestConvergence(t *testing.T) {
	t.Parallel()

	ip, store, fc := newTestInterpolator()
	to := target(store, param.Snapshot{
		"animationSpeed": param.Number(4.0),
		"gridWidth":      param.Int(16),
		"showGrid":       param.Bool(false),
		"shapeColor":     param.MustColor("#ff0000"),
	})
	require.NoError(t, ip.Begin(nil, to, time.Second, "linear"))

	fc.Step(500 * time.Millisecond)
	ip.Tick(fc.Now())
	v, _ := store.Get("animationSpeed")
	require.InDelta(t, 2.5, v.Float(), 1e-9) // 1.0 → 4.0 at p=0.5
	require.True(t, ip.IsActive())

	// at (or past) the full duration every key lands exactly on the target
	fc.Step(700 * time.Millisecond)
	ip.Tick(fc.Now())
	require.False(t, ip.IsActive())

	v, _ = store.Get("animationSpeed")
	require.Equal(t, 4.0, v.Float())
	v, _ = store.Get("gridWidth")
	require.Equal(t, 16, v.IntValue())
	v, _ = store.Get("showGrid")
	require.False(t, v.BoolValue())
	v, _ = store.Get("shapeColor")
	require.Equal(t, "#ff0000", v.Hex())
}

func TestTickAfterCompletionIsNoOp(t *testing.T) {
	t.Parallel()

	ip, store, fc := newTestInterpolator()
	to := target(store, param.Snapshot{"animationSpeed": param.Number(2.0)})
	require.NoError(t, ip.Begin(nil, to, time.Second, "linear"))

	fc.Step(2 * time.Second)
	ip.Tick(fc.Now())
	require.False(t, ip.IsActive())

	// a live edit after completion must not be overwritten
	require.NoError(t, store.Set("animationSpeed", param.Number(9)))
	fc.Step(time.Second)
	ip.Tick(fc.Now())
	v, _ := store.Get("animationSpeed")
	require.Equal(t, 9.0, v.Float())
}

func TestRetargetFromCurrent(t *testing.T) {
	t.Parallel()

	ip, store, fc := newTestInterpolator()
	require.NoError(t, store.Set("animationSpeed", param.Number(0)))

	s1 := target(store, param.Snapshot{"animationSpeed": param.Number(10)})
	require.NoError(t, ip.Begin(nil, s1, time.Second, "linear"))

	fc.Step(500 * time.Millisecond)
	ip.Tick(fc.Now())
	v, _ := store.Get("animationSpeed")
	require.InDelta(t, 5.0, v.Float(), 1e-9)

	// retarget mid-flight: the new session starts from the live, partially
	// interpolated store contents, not from either old endpoint
	s2 := target(store, param.Snapshot{"animationSpeed": param.Number(6)})
	require.NoError(t, ip.Begin(nil, s2, time.Second, "linear"))

	fc.Step(500 * time.Millisecond)
	ip.Tick(fc.Now())
	v, _ = store.Get("animationSpeed")
	require.InDelta(t, 5.5, v.Float(), 1e-9) // halfway from 5 to 6
}

func TestValidationRejection(t *testing.T) {
	t.Parallel()

	ip, store, fc := newTestInterpolator()
	before := store.Snapshot()

	to := target(store, nil)
	delete(to, "gridWidth")
	err := ip.Begin(nil, to, time.Second, "linear")
	require.ErrorIs(t, err, preset.ErrValidation)
	require.False(t, ip.IsActive())

	// rejected call leaves the store untouched
	fc.Step(time.Second)
	ip.Tick(fc.Now())
	after := store.Snapshot()
	for k, v := range before {
		require.True(t, v.Equal(after[k]), "key %q changed after rejected begin", k)
	}
}

func TestNonPositiveDurationRejected(t *testing.T) {
	t.Parallel()

	ip, store, _ := newTestInterpolator()
	err := ip.Begin(nil, target(store, nil), 0, "linear")
	require.ErrorIs(t, err, preset.ErrValidation)
}

func TestKeysOutsideTargetPassThrough(t *testing.T) {
	t.Parallel()

	ip, store, fc := newTestInterpolator()
	to := target(store, param.Snapshot{"animationSpeed": param.Number(2)})
	require.NoError(t, ip.Begin(nil, to, time.Second, "linear"))

	// cellSize is not in the target; live edits to it survive the blend
	require.NoError(t, store.Set("cellSize", param.Number(7)))
	fc.Step(500 * time.Millisecond)
	ip.Tick(fc.Now())

	v, _ := store.Get("cellSize")
	require.Equal(t, 7.0, v.Float())
}

func TestContestedKeysOverwrittenEachTick(t *testing.T) {
	t.Parallel()

	ip, store, fc := newTestInterpolator()
	to := target(store, param.Snapshot{"animationSpeed": param.Number(2)})
	require.NoError(t, ip.Begin(nil, to, time.Second, "linear"))

	// interpolation wins for contested keys: a live edit mid-session is
	// overwritten on the next tick
	require.NoError(t, store.Set("animationSpeed", param.Number(99)))
	fc.Step(500 * time.Millisecond)
	ip.Tick(fc.Now())

	v, _ := store.Get("animationSpeed")
	require.InDelta(t, 1.5, v.Float(), 1e-9)
}

func TestCancel(t *testing.T) {
	t.Parallel()

	ip, store, fc := newTestInterpolator()
	to := target(store, param.Snapshot{"animationSpeed": param.Number(2)})
	require.NoError(t, ip.Begin(nil, to, time.Second, "linear"))

	fc.Step(500 * time.Millisecond)
	ip.Tick(fc.Now())
	ip.Cancel()
	require.False(t, ip.IsActive())

	// values stay where the last tick left them
	v, _ := store.Get("animationSpeed")
	require.InDelta(t, 1.5, v.Float(), 1e-9)
}

func TestDebugInfo(t *testing.T) {
	t.Parallel()

	ip, store, fc := newTestInterpolator()
	require.Equal(t, DebugInfo{}, ip.DebugInfo())

	require.NoError(t, ip.Begin(nil, target(store, nil), 2*time.Second, "inOutCubic"))
	fc.Step(time.Second)

	info := ip.DebugInfo()
	require.True(t, info.IsActive)
	require.InDelta(t, 0.5, info.Progress, 1e-9)
	require.Equal(t, 1000.0, info.ElapsedMs)
	require.Equal(t, 2000.0, info.DurationMs)
	require.Equal(t, "inOutCubic", info.EasingName)
}

func TestUnknownEasingFallsBackToLinear(t *testing.T) {
	t.Parallel()

	ip, store, fc := newTestInterpolator()
	to := target(store, param.Snapshot{"animationSpeed": param.Number(2)})
	require.NoError(t, ip.Begin(nil, to, time.Second, "power2.inOut"))

	fc.Step(500 * time.Millisecond)
	ip.Tick(fc.Now())
	v, _ := store.Get("animationSpeed")
	require.InDelta(t, 1.5, v.Float(), 1e-9)
}

func TestEasingNamesKnown(t *testing.T) {
	t.Parallel()

	require.Contains(t, EasingNames(), "linear")
	require.Contains(t, EasingNames(), "inOutCubic")
	require.Contains(t, EasingNames(), "outElastic")
}
