package param

import (
	"errors"
	"fmt"

	"golang.org/x/exp/slices"

	"github.com/elimuro/rglr-gnrtr-engine/observer"
)

var (
	// ErrUnknownKey is returned when setting a key that was never registered.
	ErrUnknownKey = errors.New("unknown parameter key")

	// ErrKindMismatch is returned when a value's kind does not match the
	// key's registered kind.
	ErrKindMismatch = errors.New("parameter kind mismatch")

	// ErrAlreadyRegistered is returned when registering a key twice.
	ErrAlreadyRegistered = errors.New("parameter already registered")
)

// Change describes one parameter mutation.
type Change struct {
	Key string
	Old Value
	New Value
}

// Snapshot is a full key-value dump of the store. Snapshots are plain maps;
// ordering is supplied by the store's registration order when one is applied.
type Snapshot map[string]Value

// Clone returns an independent copy.
func (s Snapshot) Clone() Snapshot {
	out := make(Snapshot, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Store is the canonical mutable parameter state. Keys must be registered
// (the default schema registers the canonical set) before they can be set,
// and a key's kind is fixed at registration. The store is driven from the
// single engine goroutine.
type Store struct {
	order  []string
	values map[string]Value
	kinds  map[string]Kind
	subs   map[string]*observer.Registry[Change]
	all    *observer.Registry[Change]
}

// NewStore creates a store pre-registered with the default schema.
func NewStore() *Store {
	s := NewEmptyStore()
	for _, f := range DefaultSchema() {
		// Schema keys are unique; Register cannot fail here.
		_ = s.Register(f.Key, f.Default)
	}
	return s
}

// NewEmptyStore creates a store with no registered keys.
func NewEmptyStore() *Store {
	return &Store{
		values: make(map[string]Value),
		kinds:  make(map[string]Kind),
		subs:   make(map[string]*observer.Registry[Change]),
		all:    observer.NewRegistry[Change]("param.all"),
	}
}

// Register adds a key with its initial value. The value's kind becomes the
// key's kind for all subsequent sets.
func (s *Store) Register(key string, initial Value) error {
	if _, ok := s.values[key]; ok {
		return fmt.Errorf("%w: %s", ErrAlreadyRegistered, key)
	}
	s.order = append(s.order, key)
	s.values[key] = initial
	s.kinds[key] = initial.Kind()
	return nil
}

// Has reports whether key is registered.
func (s *Store) Has(key string) bool {
	_, ok := s.values[key]
	return ok
}

// Get returns the current value for key.
func (s *Store) Get(key string) (Value, bool) {
	v, ok := s.values[key]
	return v, ok
}

// Set stores v under key and notifies subscribers. Subscribers are notified
// on every successful set, including no-op writes: consumers rely on
// continuous re-assertion during scene blends.
func (s *Store) Set(key string, v Value) error {
	old, ok := s.values[key]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	if s.kinds[key] != v.Kind() {
		return fmt.Errorf("%w: %s is %s, got %s", ErrKindMismatch, key, s.kinds[key], v.Kind())
	}
	s.values[key] = v
	ch := Change{Key: key, Old: old, New: v}
	if reg, found := s.subs[key]; found {
		reg.Notify(ch)
	}
	s.all.Notify(ch)
	return nil
}

// Subscribe registers fn for changes to one key and returns an unsubscribe
// function. Dispatch is panic-isolated per subscriber.
func (s *Store) Subscribe(key string, fn func(Change)) func() {
	reg, ok := s.subs[key]
	if !ok {
		reg = observer.NewRegistry[Change]("param." + key)
		s.subs[key] = reg
	}
	return reg.Subscribe(fn)
}

// SubscribeAll registers fn for every change.
func (s *Store) SubscribeAll(fn func(Change)) func() {
	return s.all.Subscribe(fn)
}

// Keys returns the registered keys in registration order.
func (s *Store) Keys() []string {
	return slices.Clone(s.order)
}

// Snapshot exports the full current state.
func (s *Store) Snapshot() Snapshot {
	out := make(Snapshot, len(s.values))
	for _, k := range s.order {
		out[k] = s.values[k]
	}
	return out
}

// Apply sets every registered key present in snap, in registration order.
// Keys the store does not know are skipped. The first set failure aborts and
// is returned; earlier writes stand, matching per-key set semantics.
func (s *Store) Apply(snap Snapshot) error {
	for _, k := range s.order {
		v, ok := snap[k]
		if !ok {
			continue
		}
		if err := s.Set(k, v); err != nil {
			return err
		}
	}
	return nil
}
