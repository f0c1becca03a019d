package sched

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThrottle_TrailingEdge(t *testing.T) {
	t.Run("burst of calls fires exactly once after the window", func(t *testing.T) {
		clock := NewFakeClock()
		fired := 0
		th := NewThrottle(clock, time.Second, func() { fired++ })

		for range 20 {
			th.Call()
			clock.Advance(10 * time.Millisecond)
		}
		assert.Equal(t, 0, fired, "should not fire inside the window")

		clock.Advance(time.Second)
		assert.Equal(t, 1, fired)
		assert.False(t, th.Pending())
	})

	t.Run("separate bursts fire separately", func(t *testing.T) {
		clock := NewFakeClock()
		fired := 0
		th := NewThrottle(clock, time.Second, func() { fired++ })

		th.Call()
		clock.Advance(time.Second)
		require.Equal(t, 1, fired)

		th.Call()
		th.Call()
		clock.Advance(time.Second)
		assert.Equal(t, 2, fired)
	})

	t.Run("flush runs a pending invocation immediately", func(t *testing.T) {
		clock := NewFakeClock()
		fired := 0
		th := NewThrottle(clock, time.Second, func() { fired++ })

		th.Call()
		th.Flush()
		assert.Equal(t, 1, fired)

		// The canceled timer must not fire a second time.
		clock.Advance(2 * time.Second)
		assert.Equal(t, 1, fired)
	})

	t.Run("flush without pending work is a no-op", func(t *testing.T) {
		clock := NewFakeClock()
		fired := 0
		th := NewThrottle(clock, time.Second, func() { fired++ })

		th.Flush()
		assert.Equal(t, 0, fired)
	})
}

func TestDebouncer(t *testing.T) {
	t.Run("only the last call of a burst runs", func(t *testing.T) {
		clock := NewFakeClock()
		deb := NewDebouncer(clock, 150*time.Millisecond)

		var got []string
		for _, q := range []string{"c", "ca", "cat"} {
			deb.Call(func() { got = append(got, q) })
			clock.Advance(50 * time.Millisecond)
		}
		clock.Advance(150 * time.Millisecond)

		require.Len(t, got, 1)
		assert.Equal(t, "cat", got[0])
	})

	t.Run("cancel drops the pending call", func(t *testing.T) {
		clock := NewFakeClock()
		deb := NewDebouncer(clock, 150*time.Millisecond)

		fired := false
		deb.Call(func() { fired = true })
		deb.Cancel()
		clock.Advance(time.Second)
		assert.False(t, fired)
	})
}

func TestFakeClock_Advance(t *testing.T) {
	clock := NewFakeClock()
	var order []int

	clock.AfterFunc(30*time.Millisecond, func() { order = append(order, 30) })
	clock.AfterFunc(10*time.Millisecond, func() { order = append(order, 10) })
	clock.AfterFunc(20*time.Millisecond, func() { order = append(order, 20) })

	clock.Advance(time.Second)
	assert.Equal(t, []int{10, 20, 30}, order, "timers fire in due order")
}
