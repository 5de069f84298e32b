// Package notifier fans board revisions out to live update streams.
package notifier

import "sync"

// Reason says why the board changed.
type Reason string

const (
	ReasonInteraction Reason = "interaction"
	ReasonReload      Reason = "reload"
)

// Update is delivered to subscribers. Rev increases by one per Publish.
type Update struct {
	Rev    uint64
	Reason Reason
}

// Notifier broadcasts board updates to every subscriber. A slow subscriber
// only ever holds the latest update; intermediate ones are coalesced.
type Notifier struct {
	mu        sync.RWMutex
	rev       uint64
	listeners map[chan Update]struct{}
}

// New creates a Notifier at revision 0.
func New() *Notifier {
	return &Notifier{
		listeners: make(map[chan Update]struct{}),
	}
}

// Subscribe returns a channel that receives updates.
// The caller must call Unsubscribe when done.
func (n *Notifier) Subscribe() chan Update {
	ch := make(chan Update, 1)
	n.mu.Lock()
	n.listeners[ch] = struct{}{}
	n.mu.Unlock()
	return ch
}

// Unsubscribe removes a listener channel and closes it. Unknown channels are
// ignored.
func (n *Notifier) Unsubscribe(ch chan Update) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if _, ok := n.listeners[ch]; !ok {
		return
	}
	delete(n.listeners, ch)
	close(ch)
}

// Publish bumps the revision and hands it to all listeners without blocking.
func (n *Notifier) Publish(reason Reason) Update {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.rev++
	u := Update{Rev: n.rev, Reason: reason}
	for ch := range n.listeners {
		// Replace a stale pending update with the newest one.
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- u:
		default:
		}
	}
	return u
}

// Rev returns the current revision.
func (n *Notifier) Rev() uint64 {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.rev
}

// Len returns the number of subscribers.
func (n *Notifier) Len() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.listeners)
}
