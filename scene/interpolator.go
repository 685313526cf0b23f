// Package scene drives timed blends of the full parameter state between two
// snapshots. One session runs at a time; the render loop ticks it once per
// frame after the transport tick.
package scene

import (
	"fmt"
	"time"

	"github.com/fogleman/ease"
	"github.com/sirupsen/logrus"
	kclock "k8s.io/utils/clock"

	"github.com/elimuro/rglr-gnrtr-engine/logger"
	"github.com/elimuro/rglr-gnrtr-engine/param"
	"github.com/elimuro/rglr-gnrtr-engine/preset"
)

// DebugInfo describes the in-flight session for UI display.
type DebugInfo struct {
	IsActive   bool
	Progress   float64
	ElapsedMs  float64
	DurationMs float64
	EasingName string
}

type session struct {
	from       param.Snapshot
	to         param.Snapshot
	keys       []string
	start      time.Time
	duration   time.Duration
	easingName string
	easing     ease.Function
}

// Interpolator blends the parameter store between two snapshots over a
// duration with a named easing curve.
//
// Conflict policy: while a session is active the interpolation wins for every
// key in the target snapshot — live edits (GUI drag, MIDI CC) to those keys
// are overwritten on the next tick. Edits to keys outside the target's key
// set pass through untouched.
type Interpolator struct {
	store *param.Store
	clk   kclock.PassiveClock
	sess  *session
}

// NewInterpolator creates an interpolator writing into store.
func NewInterpolator(store *param.Store, clk kclock.PassiveClock) *Interpolator {
	return &Interpolator{store: store, clk: clk}
}

// Begin starts a new session from `from` to `to`. A nil `from` captures the
// store as it is right now, which is also how retargeting works: beginning
// while a session is in flight discards it and blends onward from the
// current, possibly mid-interpolation, values rather than jumping back.
// The target must pass the minimum preset validation; on failure no session
// starts and the store is unchanged.
func (ip *Interpolator) Begin(from param.Snapshot, to param.Snapshot, duration time.Duration, easingName string) error {
	if err := preset.ValidateSnapshot(to); err != nil {
		return err
	}
	if duration <= 0 {
		return fmt.Errorf("%w: duration must be positive, got %v", preset.ErrValidation, duration)
	}
	if from == nil {
		from = ip.store.Snapshot()
	}

	keys := make([]string, 0, len(to))
	for _, k := range ip.store.Keys() {
		if _, ok := to[k]; ok {
			keys = append(keys, k)
		}
	}

	ip.sess = &session{
		from:       from.Clone(),
		to:         to.Clone(),
		keys:       keys,
		start:      ip.clk.Now(),
		duration:   duration,
		easingName: easingName,
		easing:     easingByName(easingName),
	}
	logger.GetProjectLogger().WithFields(logrus.Fields{
		"keys":     len(keys),
		"duration": duration,
		"easing":   easingName,
	}).Debug("scene interpolation started")
	return nil
}

// Cancel discards the active session immediately. The store keeps whatever
// values the last tick wrote.
func (ip *Interpolator) Cancel() {
	ip.sess = nil
}

// IsActive reports whether a session is in flight.
func (ip *Interpolator) IsActive() bool {
	return ip.sess != nil
}

// Tick advances the active session to now, writing the full target key set
// into the store every frame — not just changed keys, since consumers depend
// on continuous re-assertion. Once raw progress reaches 1 the exact target
// values land and the session ends; further ticks are no-ops.
func (ip *Interpolator) Tick(now time.Time) {
	s := ip.sess
	if s == nil {
		return
	}
	raw := now.Sub(s.start).Seconds() / s.duration.Seconds()
	if raw < 0 {
		raw = 0
	}
	if raw >= 1 {
		ip.writeTarget(s)
		ip.sess = nil
		return
	}
	p := s.easing(raw)
	for _, k := range s.keys {
		fromVal, ok := s.from[k]
		if !ok {
			if cur, found := ip.store.Get(k); found {
				fromVal = cur
			} else {
				continue
			}
		}
		ip.set(k, fromVal.Interpolate(s.to[k], p))
	}
}

func (ip *Interpolator) writeTarget(s *session) {
	for _, k := range s.keys {
		ip.set(k, s.to[k])
	}
}

func (ip *Interpolator) set(key string, v param.Value) {
	if err := ip.store.Set(key, v); err != nil {
		logger.GetProjectLogger().WithFields(logrus.Fields{
			"key": key,
		}).Warnf("interpolation write rejected: %v", err)
	}
}

// DebugInfo returns progress details for the active session, or a zero
// struct when idle.
func (ip *Interpolator) DebugInfo() DebugInfo {
	s := ip.sess
	if s == nil {
		return DebugInfo{}
	}
	elapsed := ip.clk.Now().Sub(s.start)
	raw := elapsed.Seconds() / s.duration.Seconds()
	if raw < 0 {
		raw = 0
	}
	if raw > 1 {
		raw = 1
	}
	return DebugInfo{
		IsActive:   true,
		Progress:   raw,
		ElapsedMs:  float64(elapsed) / float64(time.Millisecond),
		DurationMs: float64(s.duration) / float64(time.Millisecond),
		EasingName: s.easingName,
	}
}
