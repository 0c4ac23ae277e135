package signal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type counter struct {
	slot  Slot
	calls int
}

func (c *counter) Handle(x int) int {
	c.calls++
	return x
}

func TestSlot_CloseDisconnects(t *testing.T) {
	sig := New1[int, int]()
	recv := &counter{}

	conn, err := sig.Connect(recv.Handle, &recv.slot)
	require.NoError(t, err)
	assert.True(t, recv.slot.Attached())
	assert.True(t, recv.slot.Same(conn))

	assert.Equal(t, 5, sig.Emit(5))
	assert.Equal(t, 1, recv.calls)

	recv.slot.Close()
	assert.False(t, recv.slot.Attached())
	assert.False(t, conn.Connected())
	assert.Equal(t, 0, sig.Len())

	assert.NotPanics(t, func() { sig.Emit(5) })
	assert.Equal(t, 1, recv.calls)

	// closing again is a no-op
	assert.NotPanics(t, recv.slot.Close)
}

func TestSlot_ZeroValueClose(t *testing.T) {
	var slot Slot
	assert.False(t, slot.Attached())
	assert.NotPanics(t, func() {
		slot.Close()
		slot.Close()
	})
	slot.SetLock(true)
	assert.False(t, slot.IsLocked())
}

func TestSlot_LockSharedWithHandle(t *testing.T) {
	sig := New1[int, int]()
	recv := &counter{}

	conn, err := sig.Connect(recv.Handle, &recv.slot)
	require.NoError(t, err)

	recv.slot.SetLock(true)
	assert.True(t, conn.IsLocked())
	assert.Equal(t, 0, sig.Emit(3))
	assert.Equal(t, 0, recv.calls)

	conn.SetLock(false)
	assert.False(t, recv.slot.IsLocked())
	assert.Equal(t, 3, sig.Emit(3))
}

func TestSlot_ReleasedByEveryRemovalPath(t *testing.T) {
	tests := []struct {
		name   string
		remove func(sig *Signal1[int, int], conn Connection, slot *Slot)
	}{
		{"handle", func(_ *Signal1[int, int], conn Connection, _ *Slot) { conn.Disconnect() }},
		{"signal disconnect", func(sig *Signal1[int, int], conn Connection, _ *Slot) { sig.Disconnect(conn) }},
		{"disconnect slot", func(sig *Signal1[int, int], _ Connection, slot *Slot) { sig.DisconnectSlot(slot) }},
		{"slot close", func(_ *Signal1[int, int], _ Connection, slot *Slot) { slot.Close() }},
		{"disconnect all", func(sig *Signal1[int, int], _ Connection, _ *Slot) { sig.DisconnectAll() }},
		{"signal close", func(sig *Signal1[int, int], _ Connection, _ *Slot) { sig.Close() }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig := New1[int, int]()
			recv := &counter{}

			conn, err := sig.Connect(recv.Handle, &recv.slot)
			require.NoError(t, err)

			tt.remove(sig, conn, &recv.slot)

			assert.False(t, recv.slot.Attached())
			assert.Equal(t, 0, sig.Len())
			assert.NotPanics(t, recv.slot.Close)
			assert.Equal(t, 0, sig.Emit(1))
			assert.Equal(t, 0, recv.calls)
		})
	}
}

func TestSlot_SignalCloseLeavesSlotsUnattached(t *testing.T) {
	sig := New1[int, int]()
	receivers := []*counter{{}, {}, {}}
	for _, r := range receivers {
		_, err := sig.Connect(r.Handle, &r.slot)
		require.NoError(t, err)
	}

	sig.Close()

	for _, r := range receivers {
		assert.False(t, r.slot.Attached())
		assert.NotPanics(t, r.slot.Close)
		assert.NotPanics(t, r.slot.Disconnect)
	}
}

func TestSlot_DisconnectAllThenClose(t *testing.T) {
	sig := New1[int, int]()
	a, b := &counter{}, &counter{}
	_, err := sig.Connect(a.Handle, &a.slot)
	require.NoError(t, err)
	_, err = sig.Connect(b.Handle, &b.slot)
	require.NoError(t, err)
	plain, err := sig.Connect(func(x int) int { return x }, nil)
	require.NoError(t, err)

	sig.DisconnectAll()
	assert.Equal(t, 0, sig.Len())
	assert.False(t, plain.Connected())

	assert.NotPanics(t, func() {
		a.slot.Close()
		b.slot.Close()
		a.slot.Disconnect()
	})

	// the signal stays usable
	_, err = sig.Connect(a.Handle, &a.slot)
	require.NoError(t, err)
	assert.Equal(t, 7, sig.Emit(7))
	assert.Equal(t, 1, a.calls)
	assert.Equal(t, 0, b.calls)
}

func TestSlot_AttachedSlotIsRejected(t *testing.T) {
	first := New1[int, int]()
	second := New1[int, int]()
	recv := &counter{}

	conn, err := first.Connect(recv.Handle, &recv.slot)
	require.NoError(t, err)

	_, err = first.Connect(recv.Handle, &recv.slot)
	assert.ErrorIs(t, err, ErrSlotAttached)
	_, err = second.Connect(recv.Handle, &recv.slot)
	assert.ErrorIs(t, err, ErrSlotAttached)

	// the original registration is untouched
	assert.Equal(t, 1, first.Len())
	assert.Equal(t, 0, second.Len())
	assert.True(t, recv.slot.Same(conn))

	// once released the slot can be attached elsewhere
	recv.slot.Close()
	_, err = second.Connect(recv.Handle, &recv.slot)
	require.NoError(t, err)
	assert.Equal(t, 4, second.Emit(4))
	assert.Equal(t, 0, first.Emit(4))
}

func TestSlot_DisconnectSlotFromOtherSignal(t *testing.T) {
	first := New1[int, int]()
	second := New1[int, int]()
	recv := &counter{}

	_, err := first.Connect(recv.Handle, &recv.slot)
	require.NoError(t, err)

	second.DisconnectSlot(&recv.slot)
	assert.True(t, recv.slot.Attached())
	assert.Equal(t, 1, first.Len())
}
