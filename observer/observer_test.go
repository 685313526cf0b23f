package observer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNotifyOrder(t *testing.T) {
	t.Parallel()

	reg := NewRegistry[int]("test")
	var got []int
	reg.Subscribe(func(v int) { got = append(got, v*10) })
	reg.Subscribe(func(v int) { got = append(got, v*100) })

	reg.Notify(2)
	require.Equal(t, []int{20, 200}, got)
}

func TestPanicIsolation(t *testing.T) {
	t.Parallel()

	reg := NewRegistry[string]("test")
	var after bool
	reg.Subscribe(func(string) { panic("broken effect") })
	reg.Subscribe(func(string) { after = true })

	require.NotPanics(t, func() { reg.Notify("beat") })
	require.True(t, after, "dispatch must continue past a failing callback")
}

func TestUnsubscribe(t *testing.T) {
	t.Parallel()

	reg := NewRegistry[int]("test")
	calls := 0
	unsub := reg.Subscribe(func(int) { calls++ })
	reg.Notify(1)
	unsub()
	unsub() // double unsubscribe is harmless
	reg.Notify(2)

	require.Equal(t, 1, calls)
	require.Equal(t, 0, reg.Len())
}
