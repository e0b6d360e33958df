package hoststack

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/navflow/pkg/navflow"
)

func screen(key string) navflow.HostScreen {
	return navflow.HostScreen{Key: key, Handle: key}
}

func keys(m *Memory) []string {
	var out []string
	for _, s := range m.Screens() {
		out = append(out, s.Key)
	}
	return out
}

func seeded(t *testing.T, opts ...Option) *Memory {
	t.Helper()
	m := NewMemory(opts...)
	for _, k := range []string{"a", "b", "c"} {
		require.NoError(t, m.Apply(navflow.Command{Op: navflow.OpAppend, Screen: screen(k)}, nil))
		m.Flush()
	}
	return m
}

func TestMemory_Apply(t *testing.T) {
	tests := []struct {
		name    string
		cmd     navflow.Command
		want    []string
		wantErr bool
	}{
		{"append", navflow.Command{Op: navflow.OpAppend, Screen: screen("d")}, []string{"a", "b", "c", "d"}, false},
		{"overlay", navflow.Command{Op: navflow.OpShowOverlay, Screen: screen("o")}, []string{"a", "b", "c", "o"}, false},
		{"remove top", navflow.Command{Op: navflow.OpRemoveTop}, []string{"a", "b"}, false},
		{"truncate", navflow.Command{Op: navflow.OpTruncate, Length: 1}, []string{"a"}, false},
		{"truncate to same length", navflow.Command{Op: navflow.OpTruncate, Length: 3}, []string{"a", "b", "c"}, false},
		{"truncate too long", navflow.Command{Op: navflow.OpTruncate, Length: 4}, []string{"a", "b", "c"}, true},
		{"truncate negative", navflow.Command{Op: navflow.OpTruncate, Length: -1}, []string{"a", "b", "c"}, true},
		{"close without overlay", navflow.Command{Op: navflow.OpCloseOverlay}, []string{"a", "b", "c"}, true},
		{"unknown op", navflow.Command{Op: "spin"}, []string{"a", "b", "c"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := seeded(t)
			acked := false
			err := m.Apply(tt.cmd, func() { acked = true })
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidCommand)
				assert.False(t, acked, "done must not run on error")
				assert.Len(t, m.Commands(), 3)
			} else {
				require.NoError(t, err)
				assert.True(t, acked)
				assert.Len(t, m.Commands(), 4)
			}
			assert.Equal(t, tt.want, keys(m))
		})
	}
}

func TestMemory_OverlayFlag(t *testing.T) {
	m := NewMemory()
	require.NoError(t, m.Apply(navflow.Command{Op: navflow.OpAppend, Screen: navflow.HostScreen{Key: "a", Overlay: true}}, nil))
	require.NoError(t, m.Apply(navflow.Command{Op: navflow.OpShowOverlay, Screen: screen("o")}, nil))
	require.NoError(t, m.Apply(navflow.Command{Op: navflow.OpAppend, Screen: screen("p")}, nil))

	s := m.Screens()
	assert.False(t, s[0].Overlay, "append clears the overlay flag")
	assert.True(t, s[1].Overlay)

	require.NoError(t, m.Apply(navflow.Command{Op: navflow.OpCloseOverlay}, nil))
	assert.Equal(t, []string{"a"}, keys(m), "closing an overlay removes everything above it")
}

func TestMemory_DeferredAcks(t *testing.T) {
	m := NewMemory(WithDeferredAcks())

	var acks []string
	require.NoError(t, m.Apply(navflow.Command{Op: navflow.OpAppend, Screen: screen("a")}, func() { acks = append(acks, "a") }))
	assert.True(t, m.Pending())
	assert.Empty(t, acks)
	assert.Equal(t, []string{"a"}, keys(m), "the change applies before the ack")

	err := m.Apply(navflow.Command{Op: navflow.OpAppend, Screen: screen("b")}, nil)
	assert.ErrorIs(t, err, ErrTransitionInProgress)

	assert.True(t, m.Ack())
	assert.Equal(t, []string{"a"}, acks)
	assert.False(t, m.Pending())
	assert.False(t, m.Ack())
}

func TestMemory_FlushFollowsChainedCommands(t *testing.T) {
	m := NewMemory(WithDeferredAcks())

	var apply func(keys ...string)
	apply = func(keys ...string) {
		if len(keys) == 0 {
			return
		}
		require.NoError(t, m.Apply(navflow.Command{Op: navflow.OpAppend, Screen: screen(keys[0])}, func() { apply(keys[1:]...) }))
	}
	apply("a", "b", "c")

	m.Flush()
	assert.Equal(t, []string{"a", "b", "c"}, keys(m))
	assert.False(t, m.Pending())
}

func TestMemory_Gestures(t *testing.T) {
	t.Run("swipe back", func(t *testing.T) {
		m := seeded(t)
		var events []navflow.HostEvent
		m.Observe(func(e navflow.HostEvent) { events = append(events, e) })

		assert.True(t, m.SwipeBack())
		assert.Equal(t, []string{"a", "b"}, keys(m))
		require.Len(t, events, 1)
		assert.Equal(t, navflow.HostPopped, events[0].Kind)
		assert.Equal(t, "c", events[0].Screen.Key)
	})

	t.Run("swipe back refuses root", func(t *testing.T) {
		m := NewMemory()
		require.NoError(t, m.Apply(navflow.Command{Op: navflow.OpAppend, Screen: screen("a")}, nil))
		assert.False(t, m.SwipeBack())
		assert.Equal(t, []string{"a"}, keys(m))
	})

	t.Run("swipe back refuses overlay", func(t *testing.T) {
		m := seeded(t)
		require.NoError(t, m.Apply(navflow.Command{Op: navflow.OpShowOverlay, Screen: screen("o")}, nil))
		assert.False(t, m.SwipeBack())
	})

	t.Run("dismiss overlay", func(t *testing.T) {
		m := seeded(t)
		require.NoError(t, m.Apply(navflow.Command{Op: navflow.OpShowOverlay, Screen: screen("o")}, nil))
		require.NoError(t, m.Apply(navflow.Command{Op: navflow.OpAppend, Screen: screen("p")}, nil))

		var got navflow.HostEvent
		m.Observe(func(e navflow.HostEvent) { got = e })
		assert.True(t, m.DismissOverlay())
		assert.Equal(t, []string{"a", "b", "c"}, keys(m))
		assert.Equal(t, navflow.HostOverlayDismissed, got.Kind)
		assert.Equal(t, "o", got.Screen.Key)

		assert.False(t, m.DismissOverlay())
	})

	t.Run("pop to root", func(t *testing.T) {
		m := seeded(t)
		assert.True(t, m.PopToRoot())
		assert.Equal(t, []string{"a"}, keys(m))
		assert.False(t, m.PopToRoot())
	})

	t.Run("gestures wait for pending acks", func(t *testing.T) {
		m := seeded(t, WithDeferredAcks())
		require.NoError(t, m.Apply(navflow.Command{Op: navflow.OpAppend, Screen: screen("d")}, nil))
		assert.False(t, m.SwipeBack())
		assert.False(t, m.PopToRoot())
		m.Flush()
		assert.True(t, m.SwipeBack())
	})

	t.Run("inject", func(t *testing.T) {
		m := seeded(t)
		var got navflow.HostEvent
		m.Observe(func(e navflow.HostEvent) { got = e })
		m.Inject(navflow.HostScreen{Key: "system"})
		assert.Equal(t, []string{"a", "b", "c", "system"}, keys(m))
		assert.Equal(t, navflow.HostTopShown, got.Kind)
		assert.Len(t, m.Commands(), 3, "injected screens are not commands")
	})
}

func TestMemory_ObserveCancel(t *testing.T) {
	m := seeded(t)

	var order []string
	cancelFirst := m.Observe(func(navflow.HostEvent) { order = append(order, "first") })
	m.Observe(func(navflow.HostEvent) { order = append(order, "second") })

	assert.True(t, m.SwipeBack())
	assert.Equal(t, []string{"first", "second"}, order)

	cancelFirst()
	order = nil
	assert.True(t, m.SwipeBack())
	assert.Equal(t, []string{"second"}, order)
}

func TestMemory_ScreensIsACopy(t *testing.T) {
	m := seeded(t)
	s := m.Screens()
	s[0].Key = "mutated"
	assert.Equal(t, "a", m.Screens()[0].Key)
}
