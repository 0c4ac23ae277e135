package signal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatch_DisconnectSelf(t *testing.T) {
	sig := New1[int, int]()
	var calls []string
	var self Connection

	_, _ = sig.Connect(func(x int) int { calls = append(calls, "a"); return 1 }, nil)
	self, _ = sig.Connect(func(x int) int {
		calls = append(calls, "b")
		self.Disconnect()
		return 2
	}, nil)
	_, _ = sig.Connect(func(x int) int { calls = append(calls, "c"); return 3 }, nil)

	assert.Equal(t, 3, sig.Emit(0))
	assert.Equal(t, []string{"a", "b", "c"}, calls)
	assert.Equal(t, 2, sig.Len())

	calls = nil
	assert.Equal(t, 3, sig.Emit(0))
	assert.Equal(t, []string{"a", "c"}, calls)
}

func TestDispatch_DisconnectFollowing(t *testing.T) {
	sig := New1[int, int]()
	var calls []string
	var next Connection

	_, _ = sig.Connect(func(x int) int {
		calls = append(calls, "a")
		next.Disconnect()
		return 1
	}, nil)
	next, _ = sig.Connect(func(x int) int { calls = append(calls, "b"); return 2 }, nil)
	_, _ = sig.Connect(func(x int) int { calls = append(calls, "c"); return 3 }, nil)

	assert.Equal(t, []int{1, 3}, sig.EmitCollect(0))
	assert.Equal(t, []string{"a", "c"}, calls)
	assert.Equal(t, 2, sig.joints.Len())
}

func TestDispatch_DisconnectTail(t *testing.T) {
	sig := New1[int, int]()
	var tail Connection

	_, _ = sig.Connect(func(x int) int {
		tail.Disconnect()
		return 1
	}, nil)
	tail, _ = sig.Connect(func(x int) int { return 2 }, nil)

	// the tail is gone by the time dispatch reaches it
	assert.Equal(t, 0, sig.Emit(0))
	assert.Equal(t, 1, sig.Emit(0))
}

func TestDispatch_ConnectDuringDispatch(t *testing.T) {
	sig := New1[int, int]()
	var calls []string
	added := false

	_, _ = sig.Connect(func(x int) int {
		calls = append(calls, "a")
		if !added {
			added = true
			_, err := sig.Connect(func(x int) int { calls = append(calls, "late"); return 99 }, nil)
			require.NoError(t, err)
		}
		return 1
	}, nil)

	assert.Equal(t, 1, sig.Emit(0))
	assert.Equal(t, []string{"a"}, calls)

	calls = nil
	assert.Equal(t, 99, sig.Emit(0))
	assert.Equal(t, []string{"a", "late"}, calls)
}

func TestDispatch_ConnectDuringCollect(t *testing.T) {
	sig := New1[int, int]()
	added := false

	_, _ = sig.Connect(func(x int) int {
		if !added {
			added = true
			_, err := sig.Connect(func(x int) int { return x * 100 }, nil)
			require.NoError(t, err)
		}
		return x
	}, nil)

	sum := func(v []int) int {
		total := 0
		for _, n := range v {
			total += n
		}
		return total
	}

	assert.Equal(t, []int{2}, sig.EmitCollect(2))
	assert.Equal(t, 202, sig.EmitAggregate(2, sum))
}

func TestDispatch_DisconnectAllDuringDispatch(t *testing.T) {
	sig := New1[int, int]()
	recv := &counter{}
	var calls []string

	_, _ = sig.Connect(func(x int) int {
		calls = append(calls, "a")
		sig.DisconnectAll()
		return 1
	}, nil)
	_, err := sig.Connect(recv.Handle, &recv.slot)
	require.NoError(t, err)

	assert.Equal(t, 0, sig.Emit(0))
	assert.Equal(t, []string{"a"}, calls)
	assert.Equal(t, 0, recv.calls)
	assert.False(t, recv.slot.Attached())
	assert.Equal(t, 0, sig.joints.Len())
}

func TestDispatch_SlotClosedDuringDispatch(t *testing.T) {
	sig := New1[int, int]()
	recv := &counter{}

	_, _ = sig.Connect(func(x int) int {
		recv.slot.Close()
		return 1
	}, nil)
	_, err := sig.Connect(recv.Handle, &recv.slot)
	require.NoError(t, err)
	_, _ = sig.Connect(func(x int) int { return 3 }, nil)

	assert.Equal(t, []int{1, 3}, sig.EmitCollect(0))
	assert.Equal(t, 0, recv.calls)
	assert.Equal(t, 2, sig.Len())
}

func TestDispatch_Nested(t *testing.T) {
	sig := New1[int, int]()
	var calls []int
	var victim Connection

	_, _ = sig.Connect(func(depth int) int {
		calls = append(calls, depth)
		if depth == 0 {
			victim.Disconnect()
			sig.Emit(1)
		}
		return depth
	}, nil)
	victim, _ = sig.Connect(func(depth int) int {
		calls = append(calls, 100+depth)
		return depth
	}, nil)

	sig.Emit(0)

	// the inner dispatch sees the tombstone and skips it, the outer one too
	assert.Equal(t, []int{0, 1}, calls)
	assert.Equal(t, 0, sig.dispatching)
	assert.Equal(t, 1, sig.joints.Len())
}

func TestDispatch_LockDuringDispatch(t *testing.T) {
	sig := New1[int, int]()
	var tail Connection

	_, _ = sig.Connect(func(x int) int {
		tail.SetLock(true)
		return 1
	}, nil)
	tail, _ = sig.Connect(func(x int) int { return 2 }, nil)

	assert.Equal(t, 0, sig.Emit(0))
	tail.SetLock(false)
	assert.Equal(t, 2, sig.Emit(0))
}
