// Package memory contains an in-memory notifier used for dry runs and tests.
package memory

import (
	"context"
	"sync"
)

// Notifier records notifications instead of sending them.
type Notifier struct {
	mu            sync.RWMutex
	notifications []Notification
	failures      map[string]error
}

// Notification captures one Notify call.
type Notification struct {
	URL  string
	Type string
}

// New returns a memory Notifier that accepts every URL.
func New() *Notifier {
	return &Notifier{failures: make(map[string]error)}
}

// FailOn makes subsequent Notify calls for rawURL return err.
func (n *Notifier) FailOn(rawURL string, err error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.failures[rawURL] = err
}

// Notify records the notification and returns the configured failure, if any.
func (n *Notifier) Notify(ctx context.Context, rawURL, notificationType string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notifications = append(n.notifications, Notification{URL: rawURL, Type: notificationType})
	return n.failures[rawURL]
}

// Notifications returns the recorded calls in order.
func (n *Notifier) Notifications() []Notification {
	n.mu.RLock()
	defer n.mu.RUnlock()
	out := make([]Notification, len(n.notifications))
	copy(out, n.notifications)
	return out
}

// URLs returns the notified URLs in order.
func (n *Notifier) URLs() []string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	out := make([]string, 0, len(n.notifications))
	for _, rec := range n.notifications {
		out = append(out, rec.URL)
	}
	return out
}
