// Package actuator implements the real-time control loop that drives a
// live game from a NodeCalculator's published best path: Timer (a
// periodic, drain-safe ticker), BlockMover (translates a best path into
// one physical move per tick), and Computer (the facade binding the two
// together, restarting the search whenever a new piece spawns).
package actuator

import (
	"sync"
	"time"
)

// Action is a Timer's periodic callback. A new tick never starts until
// the previous Action invocation has returned, so an Action never runs
// concurrently with itself.
type Action func()

// Timer is a threaded periodic callback with a distinct start delay and
// steady-state period. Stop blocks until any in-flight Action returns and
// guarantees no further invocation afterward.
type Timer struct {
	mu           sync.Mutex
	startDelay   time.Duration
	period       time.Duration
	action       Action
	stopCh       chan struct{}
	runnerDoneCh chan struct{}
	running      bool
}

// NewTimer returns a Timer that, once started, waits startDelay before its
// first tick and then fires every period thereafter.
func NewTimer(startDelay, period time.Duration) *Timer {
	return &Timer{startDelay: startDelay, period: period}
}

// Start begins calling action after startDelay, then every period, until
// Stop is called. Start is a no-op if the timer is already running.
func (t *Timer) Start(action Action) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.running {
		return
	}
	t.running = true
	t.action = action
	t.stopCh = make(chan struct{})
	t.runnerDoneCh = make(chan struct{})
	go t.run(t.stopCh, t.runnerDoneCh)
}

func (t *Timer) run(stopCh, doneCh chan struct{}) {
	defer close(doneCh)

	select {
	case <-stopCh:
		return
	case <-time.After(t.startDelay):
	}

	for {
		t.mu.Lock()
		period := t.period
		t.mu.Unlock()

		timer := time.NewTimer(period)
		select {
		case <-stopCh:
			timer.Stop()
			return
		case <-timer.C:
			t.action()
		}
	}
}

// Stop blocks until any currently executing Action returns, then
// guarantees no further tick fires. Stop is a no-op if the timer is not
// running.
func (t *Timer) Stop() {
	t.mu.Lock()
	if !t.running {
		t.mu.Unlock()
		return
	}
	stopCh, doneCh := t.stopCh, t.runnerDoneCh
	t.running = false
	t.mu.Unlock()

	close(stopCh)
	<-doneCh
}

// SetPeriod changes the steady-state tick interval; the currently pending
// tick still fires at the old interval, but every tick after that uses the
// new one.
func (t *Timer) SetPeriod(period time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.period = period
}
