package stagedop

import (
	"errors"
	"sync"

	"github.com/loyaltyware/walletcore/internal/usecase/countdown"
)

// ErrCodeExpired indicates a one-time-code submission after the countdown
// reached zero. The rejection is local; the backend is not contacted.
var ErrCodeExpired = errors.New("one-time code window expired")

// CodeWindow holds the request identifier of a pending one-time-code
// verification while its countdown runs. When the countdown expires the
// pending request is discarded and submissions are rejected locally.
type CodeWindow struct {
	mu        sync.Mutex
	requestID string
	timer     *countdown.Timer
}

// NewCodeWindow creates a closed window.
func NewCodeWindow(opts ...countdown.Option) *CodeWindow {
	w := &CodeWindow{}
	w.timer = countdown.New(w.expire, opts...)
	return w
}

// Open arms the window for requestID with a countdown of seconds.
// A previously open window is discarded first.
func (w *CodeWindow) Open(requestID string, seconds int) {
	w.mu.Lock()
	w.requestID = requestID
	w.mu.Unlock()
	w.timer.Start(seconds)
}

// RequestID returns the pending request identifier, or ErrCodeExpired if
// the window is closed or the countdown has run out.
func (w *CodeWindow) RequestID() (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.requestID == "" || !w.timer.Running() {
		return "", ErrCodeExpired
	}
	return w.requestID, nil
}

// Remaining returns the seconds left on the countdown.
func (w *CodeWindow) Remaining() int { return w.timer.Remaining() }

// Close discards the pending request and stops the countdown. Idempotent.
func (w *CodeWindow) Close() {
	w.timer.Stop()
	w.mu.Lock()
	w.requestID = ""
	w.mu.Unlock()
}

func (w *CodeWindow) expire() {
	w.mu.Lock()
	w.requestID = ""
	w.mu.Unlock()
}
