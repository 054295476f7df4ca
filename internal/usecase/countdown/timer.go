// Package countdown implements the cancellable one-shot countdown that
// gates one-time-code entry windows.
package countdown

import (
	"fmt"
	"sync"
	"time"
)

// Option configures a Timer.
type Option func(*Timer)

// WithInterval overrides the tick interval. The default is one second;
// tests use a longer interval and drive ticks directly.
func WithInterval(d time.Duration) Option {
	return func(t *Timer) { t.interval = d }
}

// Timer is a restartable one-shot countdown. Each tick decrements the
// remaining seconds by exactly one; reaching zero stops the timer and
// fires the expire callback exactly once. Stop cancels synchronously:
// after Stop returns, no tick or callback from the previous run can fire.
type Timer struct {
	mu        sync.Mutex
	remaining int
	running   bool
	gen       uint64
	stop      chan struct{}
	interval  time.Duration
	onExpire  func()
}

// New creates a stopped timer. onExpire may be nil.
func New(onExpire func(), opts ...Option) *Timer {
	t := &Timer{interval: time.Second, onExpire: onExpire}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Start arms the countdown at seconds and begins ticking. Any previous
// run is cancelled first.
func (t *Timer) Start(seconds int) {
	t.Stop()

	t.mu.Lock()
	t.remaining = seconds
	t.running = true
	t.gen++
	gen := t.gen
	stop := make(chan struct{})
	t.stop = stop
	t.mu.Unlock()

	go t.loop(gen, stop)
}

// Stop cancels the countdown and zeroes the remaining time. Idempotent.
func (t *Timer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stop != nil {
		close(t.stop)
		t.stop = nil
	}
	t.gen++
	t.remaining = 0
	t.running = false
}

// Remaining returns the seconds left on the countdown.
func (t *Timer) Remaining() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.remaining
}

// Running reports whether the countdown is armed.
func (t *Timer) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running
}

func (t *Timer) loop(gen uint64, stop chan struct{}) {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if !t.tickGen(gen) {
				return
			}
		}
	}
}

// tickGen applies one tick if the timer still belongs to generation gen.
func (t *Timer) tickGen(gen uint64) bool {
	t.mu.Lock()
	if gen != t.gen {
		t.mu.Unlock()
		return false
	}
	return t.applyTick()
}

// tick applies one tick to the current run. Used directly by tests to
// drive the countdown deterministically.
func (t *Timer) tick() bool {
	t.mu.Lock()
	return t.applyTick()
}

// applyTick decrements under t.mu and releases it before any callback.
func (t *Timer) applyTick() bool {
	if !t.running {
		t.mu.Unlock()
		return false
	}
	t.remaining--
	if t.remaining > 0 {
		t.mu.Unlock()
		return true
	}
	t.remaining = 0
	t.running = false
	t.stop = nil
	t.gen++
	cb := t.onExpire
	t.mu.Unlock()
	if cb != nil {
		cb()
	}
	return false
}

// FormatMMSS renders a second count as zero-padded mm:ss.
func FormatMMSS(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
