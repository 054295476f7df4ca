// Package sessionlock re-arms the PIN/biometric gate based on how long
// the app stayed backgrounded and routes the user after unlock.
package sessionlock

import (
	"log/slog"
	"sync"
	"time"

	"github.com/loyaltyware/walletcore/internal/domain"
)

// Event is one input to the controller's state machine.
type Event int

const (
	// EventForeground is the host's background→foreground transition.
	EventForeground Event = iota
	// EventBackground is the host's foreground→background transition.
	EventBackground
	// EventAuthCompleted fires once, when initial onboarding finishes.
	EventAuthCompleted
	// EventUnlocked fires when the external auth collaborator accepted a
	// PIN or biometric entry.
	EventUnlocked
)

// Config carries the re-lock policy. The threshold and the exclusion list
// are configuration, not a derived rule.
type Config struct {
	// RelockThreshold is the minimum backgrounded duration after which
	// resuming requires re-authentication. Shorter absences (a system
	// permission dialog, an app switch) do not interrupt the user.
	RelockThreshold time.Duration

	// ExcludedScreens are pending screens that survive a re-lock. They
	// represent modal confirmation flows reached via a notification;
	// rerouting to home would silently cancel a pending decision.
	ExcludedScreens []string

	// HomeScreen is the default destination after unlock.
	HomeScreen string
}

// DefaultConfig matches the production policy.
func DefaultConfig() Config {
	return Config{
		RelockThreshold: 10 * time.Second,
		ExcludedScreens: []string{"ShopNotification", "MileageCancelNotification"},
		HomeScreen:      "Wallet",
	}
}

// Snapshot is a read-only copy of the controller state.
type Snapshot struct {
	Locked            bool
	AuthCompleted     bool
	BackgroundedAt    *time.Time
	PendingNextScreen string
}

// Controller owns the process-wide session-lock state. All mutation goes
// through Notify and SetNextScreen; readers get value snapshots.
type Controller struct {
	mu    sync.Mutex
	cfg   Config
	clock domain.Clock
	nav   domain.Navigator
	log   *slog.Logger

	locked         bool
	authCompleted  bool
	backgroundedAt *time.Time
	bgTimeUnknown  bool
	pendingNext    string
}

// New creates an unlocked controller. log may be nil.
func New(cfg Config, clock domain.Clock, nav domain.Navigator, log *slog.Logger) *Controller {
	if log == nil {
		log = slog.Default()
	}
	return &Controller{
		cfg:         cfg,
		clock:       clock,
		nav:         nav,
		log:         log,
		pendingNext: cfg.HomeScreen,
	}
}

// Notify feeds one lifecycle or authentication event into the machine.
func (c *Controller) Notify(ev Event) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch ev {
	case EventAuthCompleted:
		// Initial onboarding finished: raise the gate once, with the
		// pending screen left at its default.
		c.authCompleted = true
		c.locked = true

	case EventBackground:
		now, err := c.clock.Now()
		if err != nil {
			// Unknown backgrounding time reads as "too long" on resume.
			c.backgroundedAt = nil
			c.bgTimeUnknown = true
			c.log.Warn("clock unreadable on background", "err", err)
			return
		}
		c.backgroundedAt = &now
		c.bgTimeUnknown = false

	case EventForeground:
		at := c.backgroundedAt
		unknown := c.bgTimeUnknown
		c.backgroundedAt = nil
		c.bgTimeUnknown = false
		if !c.authCompleted {
			return
		}
		if unknown {
			// Fail safe: we cannot tell how long the app was away.
			c.raiseLock()
			return
		}
		if at == nil {
			return
		}
		now, err := c.clock.Now()
		if err != nil {
			// Fail safe: an unreadable clock raises the lock, never
			// fails open.
			c.log.Warn("clock unreadable on foreground, locking", "err", err)
			c.raiseLock()
			return
		}
		if now.Sub(*at) > c.cfg.RelockThreshold {
			c.raiseLock()
		}

	case EventUnlocked:
		c.locked = false
		c.nav.Navigate(c.pendingNext)
	}
}

// raiseLock locks and reroutes to home unless the pending screen is a
// protected confirmation flow. Caller holds c.mu.
func (c *Controller) raiseLock() {
	c.locked = true
	for _, s := range c.cfg.ExcludedScreens {
		if c.pendingNext == s {
			return
		}
	}
	c.pendingNext = c.cfg.HomeScreen
}

// SetNextScreen records where the next unlock should land, typically set
// when an in-app notification opens a confirmation flow.
func (c *Controller) SetNextScreen(screen string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pendingNext = screen
}

// CurrentState returns a snapshot of the lock state.
func (c *Controller) CurrentState() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	var at *time.Time
	if c.backgroundedAt != nil {
		t := *c.backgroundedAt
		at = &t
	}
	return Snapshot{
		Locked:            c.locked,
		AuthCompleted:     c.authCompleted,
		BackgroundedAt:    at,
		PendingNextScreen: c.pendingNext,
	}
}
