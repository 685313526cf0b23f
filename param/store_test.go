package param

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultSchemaRegistered(t *testing.T) {
	t.Parallel()

	s := NewStore()
	for _, k := range RequiredKeys {
		require.True(t, s.Has(k), "required key %q missing from default schema", k)
	}
	require.Equal(t, len(DefaultSchema()), len(s.Keys()))
}

func TestSetGet(t *testing.T) {
	t.Parallel()

	s := NewStore()
	require.NoError(t, s.Set("animationSpeed", Number(2.5)))

	v, ok := s.Get("animationSpeed")
	require.True(t, ok)
	require.Equal(t, 2.5, v.Float())
}

func TestSetUnknownKeyRejected(t *testing.T) {
	t.Parallel()

	s := NewStore()
	err := s.Set("noSuchParameter", Number(1))
	require.ErrorIs(t, err, ErrUnknownKey)

	// explicit registration makes the key legal
	require.NoError(t, s.Register("noSuchParameter", Number(0)))
	require.NoError(t, s.Set("noSuchParameter", Number(1)))
}

func TestSetKindMismatchRejected(t *testing.T) {
	t.Parallel()

	s := NewStore()
	err := s.Set("animationSpeed", Bool(true))
	require.ErrorIs(t, err, ErrKindMismatch)

	v, _ := s.Get("animationSpeed")
	require.Equal(t, KindNumber, v.Kind())
}

func TestRegisterTwiceRejected(t *testing.T) {
	t.Parallel()

	s := NewStore()
	err := s.Register("animationSpeed", Number(0))
	require.ErrorIs(t, err, ErrAlreadyRegistered)
}

func TestSubscribeByKey(t *testing.T) {
	t.Parallel()

	s := NewStore()
	var changes []Change
	unsub := s.Subscribe("gridWidth", func(c Change) { changes = append(changes, c) })

	require.NoError(t, s.Set("gridWidth", Int(12)))
	require.NoError(t, s.Set("gridHeight", Int(9))) // different key: no callback

	require.Len(t, changes, 1)
	require.Equal(t, "gridWidth", changes[0].Key)
	require.Equal(t, 8, changes[0].Old.IntValue())
	require.Equal(t, 12, changes[0].New.IntValue())

	unsub()
	require.NoError(t, s.Set("gridWidth", Int(13)))
	require.Len(t, changes, 1)
}

func TestSetNotifiesEvenWhenUnchanged(t *testing.T) {
	t.Parallel()

	// consumers depend on continuous re-assertion during scene blends
	s := NewStore()
	count := 0
	s.Subscribe("cellSize", func(Change) { count++ })

	require.NoError(t, s.Set("cellSize", Number(1.0)))
	require.NoError(t, s.Set("cellSize", Number(1.0)))
	require.Equal(t, 2, count)
}

func TestSnapshotApplyRoundTrip(t *testing.T) {
	t.Parallel()

	s := NewStore()
	require.NoError(t, s.Set("animationSpeed", Number(3)))
	require.NoError(t, s.Set("showGrid", Bool(false)))
	snap := s.Snapshot()

	other := NewStore()
	require.NoError(t, other.Apply(snap))

	v, _ := other.Get("animationSpeed")
	require.Equal(t, 3.0, v.Float())
	v, _ = other.Get("showGrid")
	require.False(t, v.BoolValue())
}

func TestSnapshotIsDetached(t *testing.T) {
	t.Parallel()

	s := NewStore()
	snap := s.Snapshot()
	require.NoError(t, s.Set("animationSpeed", Number(9)))
	require.Equal(t, 1.0, snap["animationSpeed"].Float())
}
