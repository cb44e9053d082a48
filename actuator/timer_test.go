package actuator

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimerFiresAfterStartDelay(t *testing.T) {
	timer := NewTimer(5*time.Millisecond, 5*time.Millisecond)
	var ticks atomic.Int32
	timer.Start(func() { ticks.Add(1) })
	defer timer.Stop()

	time.Sleep(50 * time.Millisecond)
	assert.Greater(t, ticks.Load(), int32(0))
}

func TestStopPreventsFurtherTicks(t *testing.T) {
	timer := NewTimer(time.Millisecond, 5*time.Millisecond)
	var ticks atomic.Int32
	timer.Start(func() { ticks.Add(1) })
	time.Sleep(30 * time.Millisecond)
	timer.Stop()
	after := ticks.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, after, ticks.Load())
}

func TestActionsNeverOverlap(t *testing.T) {
	timer := NewTimer(0, time.Millisecond)
	var running atomic.Bool
	var overlapped atomic.Bool
	timer.Start(func() {
		if !running.CompareAndSwap(false, true) {
			overlapped.Store(true)
			return
		}
		time.Sleep(5 * time.Millisecond)
		running.Store(false)
	})
	defer timer.Stop()
	time.Sleep(60 * time.Millisecond)
	assert.False(t, overlapped.Load())
}
