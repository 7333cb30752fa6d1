package directory

import (
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// Broadcaster delivers SystemUpdateID notifications. NotifyAll pushes the
// revision to every subscriber; NotifyOne syncs a single new subscriber.
type Broadcaster interface {
	NotifyAll(revision uint32)
	NotifyOne(sid string, revision uint32)
}

// Notifier owns the process-wide revision counter and subscriber count and
// coalesces change broadcasts behind a single-slot timer: a rescan
// completion arriving while a broadcast is pending replaces the pending
// timer rather than stacking a second one.
type Notifier struct {
	mu          sync.Mutex
	logger      *log.Logger
	rate        time.Duration
	broadcaster Broadcaster

	revision    uint32
	subscribers int
	pending     *time.Timer
}

// NewNotifier creates a Notifier with the initial revision (normally the
// last completed scan time) and the minimum interval between broadcasts.
func NewNotifier(initial uint32, rate time.Duration, b Broadcaster, logger *log.Logger) *Notifier {
	if rate <= 0 {
		rate = 200 * time.Millisecond
	}
	return &Notifier{
		logger:      logger,
		rate:        rate,
		broadcaster: b,
		revision:    initial,
	}
}

// Revision returns the current SystemUpdateID.
func (n *Notifier) Revision() uint32 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.revision
}

// SubscriberCount returns the number of active subscribers.
func (n *Notifier) SubscriberCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.subscribers
}

// RescanCompleted records a library rescan. The revision never decreases:
// a completion timestamp at or behind the current revision still advances
// it by one so subscribers observe the change.
func (n *Notifier) RescanCompleted(completedAt uint32) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if completedAt > n.revision {
		n.revision = completedAt
	} else {
		n.revision++
	}

	if n.subscribers == 0 {
		return
	}

	// coalesce: replace any pending broadcast instead of stacking one
	if n.pending != nil {
		n.pending.Stop()
	}
	n.pending = time.AfterFunc(n.rate, n.fireBroadcast)
}

func (n *Notifier) fireBroadcast() {
	n.mu.Lock()
	n.pending = nil
	rev := n.revision
	subs := n.subscribers
	n.mu.Unlock()

	if subs == 0 {
		return
	}
	n.logger.Debug("broadcasting system update", "revision", rev, "subscribers", subs)
	n.broadcaster.NotifyAll(rev)
}

// Subscribe registers a subscriber and immediately syncs it with the
// current revision. The initial-state notification is not rate limited.
func (n *Notifier) Subscribe(sid string) {
	n.mu.Lock()
	n.subscribers++
	rev := n.revision
	n.mu.Unlock()

	n.broadcaster.NotifyOne(sid, rev)
}

// Unsubscribe removes a subscriber, flooring the count at zero.
func (n *Notifier) Unsubscribe(sid string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.subscribers > 0 {
		n.subscribers--
	}
}

// Stop cancels any pending broadcast.
func (n *Notifier) Stop() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.pending != nil {
		n.pending.Stop()
		n.pending = nil
	}
}
