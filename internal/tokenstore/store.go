// Package tokenstore persists the session token pair used by the API client.
//
// The pair is always written and cleared atomically: there is never a state
// where only one of the two tokens is present after a logout or a failed
// refresh. Consumers that need to stay consistent with the authentication
// state (e.g. independently running views) subscribe to change notifications
// instead of polling.
package tokenstore

import "sync"

// Pair holds the access and refresh tokens for one authenticated session.
// Token contents are opaque to the store.
type Pair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// Store persists the session token pair.
type Store interface {
	// Load returns the current pair. ok is false when no session is stored.
	Load() (pair Pair, ok bool)

	// Save replaces the stored pair atomically.
	Save(pair Pair) error

	// Clear removes both tokens.
	Clear() error

	// Subscribe registers fn to be called after every Save or Clear.
	// The returned cancel function removes the subscription.
	Subscribe(fn func()) (cancel func())
}

// notifier implements the Subscribe half of Store. The zero value is ready
// to use. Callbacks run synchronously on the mutating goroutine.
type notifier struct {
	mu   sync.Mutex
	next int
	subs map[int]func()
}

func (n *notifier) subscribe(fn func()) func() {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.subs == nil {
		n.subs = make(map[int]func())
	}
	id := n.next
	n.next++
	n.subs[id] = fn

	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		delete(n.subs, id)
	}
}

func (n *notifier) notify() {
	n.mu.Lock()
	fns := make([]func(), 0, len(n.subs))
	for _, fn := range n.subs {
		fns = append(fns, fn)
	}
	n.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}
