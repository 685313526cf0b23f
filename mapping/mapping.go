// Package mapping routes incoming MIDI control events onto parameter store
// keys via a user-editable mapping table.
package mapping

import (
	"github.com/sirupsen/logrus"
	"gitlab.com/gomidi/midi/v2"

	"github.com/elimuro/rglr-gnrtr-engine/engine/scale"
	"github.com/elimuro/rglr-gnrtr-engine/logger"
	"github.com/elimuro/rglr-gnrtr-engine/param"
)

// SourceKind identifies what kind of MIDI event a mapping listens for.
type SourceKind string

const (
	SourceCC         SourceKind = "cc"
	SourceNote       SourceKind = "note"
	SourcePitchBend  SourceKind = "pitchbend"
	SourceAftertouch SourceKind = "aftertouch"
)

// Mapping binds one MIDI control to one parameter key. Channel is 0-based
// per the wire format. Number is the controller or note number and is
// ignored for pitchbend/aftertouch. The normalized [0,1] control value is
// scaled onto [Min,Max] before it lands in the store.
type Mapping struct {
	Channel uint8      `json:"channel"`
	Kind    SourceKind `json:"kind"`
	Number  uint8      `json:"number"`
	Target  string     `json:"target"`
	Min     float64    `json:"min"`
	Max     float64    `json:"max"`
}

func (m Mapping) sameSource(o Mapping) bool {
	if m.Channel != o.Channel || m.Kind != o.Kind {
		return false
	}
	if m.Kind == SourcePitchBend || m.Kind == SourceAftertouch {
		return true
	}
	return m.Number == o.Number
}

var toUnit7 = scale.ToUnitClamp(0, 127)
var toUnit14 = scale.ToUnitClamp(0, 16383)

// Table is the user-editable mapping table feeding the parameter store.
// Lookup is a plain scan; tables stay small.
type Table struct {
	store    *param.Store
	mappings []Mapping
}

// NewTable creates an empty table writing into store.
func NewTable(store *param.Store) *Table {
	return &Table{store: store}
}

// Add registers a mapping. A mapping with the same source replaces the old
// one.
func (t *Table) Add(m Mapping) {
	if m.Min == 0 && m.Max == 0 {
		m.Max = 1
	}
	for i, existing := range t.mappings {
		if existing.sameSource(m) {
			t.mappings[i] = m
			return
		}
	}
	t.mappings = append(t.mappings, m)
}

// Remove drops the mapping with the given source, if present.
func (t *Table) Remove(channel uint8, kind SourceKind, number uint8) {
	probe := Mapping{Channel: channel, Kind: kind, Number: number}
	for i, existing := range t.mappings {
		if existing.sameSource(probe) {
			t.mappings = append(t.mappings[:i], t.mappings[i+1:]...)
			return
		}
	}
}

// Mappings returns a copy of the configured mappings.
func (t *Table) Mappings() []Mapping {
	out := make([]Mapping, len(t.mappings))
	copy(out, t.mappings)
	return out
}

// Route resolves msg against the table and returns the target key and the
// normalized [0,1] control value. ok is false when nothing matches.
func (t *Table) Route(msg midi.Message) (target string, normalized float64, ok bool) {
	m, normalized, ok := t.route(msg)
	return m.Target, normalized, ok
}

func (t *Table) route(msg midi.Message) (match Mapping, normalized float64, ok bool) {
	var channel, number uint8
	var value float64
	var kind SourceKind

	var cc, val, key, vel, pressure uint8
	var rel int16
	var abs uint16
	switch {
	case msg.GetControlChange(&channel, &cc, &val):
		kind, number, value = SourceCC, cc, toUnit7(float64(val))
	case msg.GetNoteStart(&channel, &key, &vel):
		kind, number, value = SourceNote, key, toUnit7(float64(vel))
	case msg.GetNoteEnd(&channel, &key):
		// NoteOff, or NoteOn with velocity 0 on hardware that sends it that
		// way. Routes as zero so the parameter returns to Min on release.
		kind, number, value = SourceNote, key, 0
	case msg.GetPitchBend(&channel, &rel, &abs):
		kind, value = SourcePitchBend, toUnit14(float64(abs))
	case msg.GetAfterTouch(&channel, &pressure):
		kind, value = SourceAftertouch, toUnit7(float64(pressure))
	default:
		return Mapping{}, 0, false
	}

	for _, m := range t.mappings {
		if m.Channel != channel || m.Kind != kind {
			continue
		}
		if (kind == SourceCC || kind == SourceNote) && m.Number != number {
			continue
		}
		return m, value, true
	}
	return Mapping{}, 0, false
}

// Handle routes msg and writes the scaled value into the target parameter.
// Numbers scale onto [Min,Max]; ints round; bools switch at the halfway
// point. Color and enum targets are not MIDI-mappable and are skipped.
func (t *Table) Handle(msg midi.Message) bool {
	m, normalized, ok := t.route(msg)
	if !ok {
		return false
	}
	current, found := t.store.Get(m.Target)
	if !found {
		logger.GetProjectLogger().WithFields(logrus.Fields{
			"target": m.Target,
		}).Warn("mapping targets unknown parameter")
		return false
	}

	scaled := scale.FromUnitClamp(m.Min, m.Max)(normalized)
	var v param.Value
	switch current.Kind() {
	case param.KindNumber:
		v = param.Number(scaled)
	case param.KindInt:
		v = param.Int(int(scaled + 0.5))
	case param.KindBool:
		v = param.Bool(normalized >= 0.5)
	default:
		return false
	}
	if err := t.store.Set(m.Target, v); err != nil {
		logger.GetProjectLogger().Warnf("mapping write rejected: %v", err)
		return false
	}
	return true
}
