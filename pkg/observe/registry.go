// Package observe provides the observer registry used by state stores to
// fan out change notifications.
//
// A Registry owns an ordered list of subscribed observers. Notification
// delivers to a snapshot of the subscriber list taken when the cycle starts,
// in subscription (FIFO) order. Observers registered during a cycle first
// hear about the next change; observers cancelled during a cycle receive no
// further delivery in that cycle. A panicking observer never prevents
// delivery to the observers behind it; panics are captured per observer and
// returned as one batch after the cycle completes.
package observe

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/go-drift/statekit/pkg/errors"
)

// Observer is a callback invoked once per notification cycle. Observers
// receive no arguments; they re-read current state through the store that
// owns the registry.
type Observer func()

// Subscription identifies one registered observer. The zero value is inert.
type Subscription struct {
	id       uuid.UUID
	registry *Registry
}

// ID returns the unique identifier of this subscription.
func (s Subscription) ID() uuid.UUID {
	return s.id
}

// Cancel removes the observer from the registry. Cancelling an already
// cancelled (or zero) subscription is a no-op. An observer cancelled while
// a cycle is running is skipped for the remainder of that cycle.
func (s Subscription) Cancel() {
	if s.registry == nil {
		return
	}
	s.registry.cancel(s.id)
}

type entry struct {
	id        uuid.UUID
	fn        Observer
	cancelled bool
}

// Registry is an ordered observer list with snapshot-on-notify fan-out.
// All methods are safe for concurrent use. The zero value is not usable;
// call NewRegistry.
type Registry struct {
	mu        sync.Mutex
	entries   []*entry
	notifying bool
	pending   bool
	closed    bool
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Subscribe registers fn and returns its subscription handle. The same
// callback may be registered twice and is then invoked twice per cycle.
// Subscribing to a closed registry returns an inert subscription; fn will
// never be invoked.
func (r *Registry) Subscribe(fn Observer) Subscription {
	if fn == nil {
		return Subscription{}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return Subscription{}
	}
	e := &entry{id: uuid.New(), fn: fn}
	r.entries = append(r.entries, e)
	return Subscription{id: e.id, registry: r}
}

// Len returns the number of live subscriptions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// NotifyAll delivers one notification cycle to every observer subscribed
// when the cycle starts, in subscription order.
//
// If a cycle is already running, the call is coalesced into one follow-up
// cycle that runs after the active cycle finishes; the coalesced call
// returns nil and any observer failures from the follow-up cycle are
// reported through the errors package and returned by the driving call.
// This reentrancy rule means an observer that mutates the store from its
// own callback never re-enters the active notification loop.
//
// The returned error, when non-nil, is a *errors.ObserverErrors batch.
func (r *Registry) NotifyAll() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	if r.notifying {
		r.pending = true
		r.mu.Unlock()
		return nil
	}
	r.notifying = true
	r.mu.Unlock()

	var failures []*errors.ObserverError
	for {
		r.mu.Lock()
		snapshot := make([]*entry, len(r.entries))
		copy(snapshot, r.entries)
		r.mu.Unlock()

		for i, e := range snapshot {
			r.mu.Lock()
			skip := e.cancelled || r.closed
			r.mu.Unlock()
			if skip {
				continue
			}
			if oe := r.invoke(i, e.fn); oe != nil {
				failures = append(failures, oe)
			}
		}

		r.mu.Lock()
		if !r.pending || r.closed {
			r.notifying = false
			r.mu.Unlock()
			break
		}
		r.pending = false
		r.mu.Unlock()
	}

	if len(failures) == 0 {
		return nil
	}
	batch := &errors.ObserverErrors{Failures: failures}
	errors.ReportObserverErrors(batch)
	return batch
}

// invoke runs one observer, converting a panic into an ObserverError.
func (r *Registry) invoke(index int, fn Observer) (oe *errors.ObserverError) {
	defer func() {
		if v := recover(); v != nil {
			oe = &errors.ObserverError{
				Index:      index,
				Recovered:  v,
				StackTrace: errors.CaptureStack(),
				Timestamp:  time.Now(),
			}
		}
	}()
	fn()
	return nil
}

func (r *Registry) cancel(id uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, e := range r.entries {
		if e.id == id {
			e.cancelled = true
			r.entries = append(r.entries[:i], r.entries[i+1:]...)
			return
		}
	}
}

// Close cancels every subscription and rejects future ones. After Close,
// NotifyAll delivers nothing. Close is idempotent.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.closed = true
	for _, e := range r.entries {
		e.cancelled = true
	}
	r.entries = nil
}
