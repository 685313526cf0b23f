// Package preset reads and writes scene/preset documents: full parameter
// snapshots wrapped in a small JSON envelope. The file I/O itself lives with
// the caller; this package owns the schema, validation, and conversion to
// and from tagged parameter values.
package preset

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	gerrors "github.com/gruntwork-io/go-commons/errors"

	"github.com/elimuro/rglr-gnrtr-engine/param"
)

// ErrValidation is returned when a document is missing one of the required
// settings keys. The store is left untouched when this happens.
var ErrValidation = errors.New("preset validation failed")

// Document is the on-disk shape of a scene/preset.
type Document struct {
	Name      string                 `json:"name,omitempty"`
	Timestamp string                 `json:"timestamp,omitempty"`
	Settings  map[string]interface{} `json:"settings"`
}

// ValidateSettings checks that the minimum required keys are present.
// Presence is sufficient; value types are coerced on conversion instead.
func ValidateSettings(settings map[string]interface{}) error {
	if settings == nil {
		return fmt.Errorf("%w: no settings", ErrValidation)
	}
	for _, k := range param.RequiredKeys {
		if _, ok := settings[k]; !ok {
			return fmt.Errorf("%w: missing required key %q", ErrValidation, k)
		}
	}
	return nil
}

// ValidateSnapshot is ValidateSettings for an already-converted snapshot.
func ValidateSnapshot(snap param.Snapshot) error {
	if snap == nil {
		return fmt.Errorf("%w: no settings", ErrValidation)
	}
	for _, k := range param.RequiredKeys {
		if _, ok := snap[k]; !ok {
			return fmt.Errorf("%w: missing required key %q", ErrValidation, k)
		}
	}
	return nil
}

// Decode parses and validates a preset document.
func Decode(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, gerrors.WithStackTrace(err)
	}
	if err := ValidateSettings(doc.Settings); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Encode serializes the document for file export.
func (d *Document) Encode() ([]byte, error) {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, gerrors.WithStackTrace(err)
	}
	return data, nil
}

// SnapshotForStore converts the raw settings into tagged values using the
// store's registered kinds. Keys the store does not know, and values that
// cannot be coerced to the key's kind, are dropped.
func (d *Document) SnapshotForStore(st *param.Store) param.Snapshot {
	out := make(param.Snapshot)
	for _, key := range st.Keys() {
		raw, ok := d.Settings[key]
		if !ok {
			continue
		}
		current, _ := st.Get(key)
		if v, ok := coerce(raw, current.Kind()); ok {
			out[key] = v
		}
	}
	return out
}

func coerce(raw interface{}, kind param.Kind) (param.Value, bool) {
	switch kind {
	case param.KindNumber:
		if f, ok := raw.(float64); ok {
			return param.Number(f), true
		}
	case param.KindInt:
		if f, ok := raw.(float64); ok {
			return param.Int(int(f)), true
		}
	case param.KindColor:
		if s, ok := raw.(string); ok {
			if v, err := param.Color(s); err == nil {
				return v, true
			}
		}
	case param.KindBool:
		if b, ok := raw.(bool); ok {
			return param.Bool(b), true
		}
	case param.KindEnum:
		if s, ok := raw.(string); ok {
			return param.Enum(s), true
		}
	}
	return param.Value{}, false
}

// FromSnapshot builds a document from a full store dump, ready for the file
// save path.
func FromSnapshot(name string, snap param.Snapshot) *Document {
	settings := make(map[string]interface{}, len(snap))
	for k, v := range snap {
		switch v.Kind() {
		case param.KindNumber:
			settings[k] = v.Float()
		case param.KindInt:
			settings[k] = v.IntValue()
		case param.KindColor:
			settings[k] = v.Hex()
		case param.KindBool:
			settings[k] = v.BoolValue()
		case param.KindEnum:
			settings[k] = v.EnumValue()
		}
	}
	return &Document{
		Name:      name,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Settings:  settings,
	}
}
