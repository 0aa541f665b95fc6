package binding

import (
	"github.com/go-drift/statekit/pkg/store"
)

// Listenable is the minimal subscription surface consumed by UI binding
// hooks: AddListener registers a no-argument callback and returns its
// unsubscribe function.
type Listenable interface {
	AddListener(fn func()) func()
}

type storeListenable struct {
	s *store.Store
}

// StoreListenable adapts a store to the Listenable interface so it plugs
// into hook-style UI bindings.
func StoreListenable(s *store.Store) Listenable {
	return storeListenable{s: s}
}

func (l storeListenable) AddListener(fn func()) func() {
	sub := l.s.Subscribe(fn)
	return sub.Cancel
}

// DeferredMutator issues trusted writes on the host's owner thread via
// Dispatch. Observers that need to mutate the store from their own
// notification callback use this so the mutation lands on the next
// scheduling turn instead of inside the active cycle. Without a registered
// dispatcher the write is applied directly; the registry still coalesces
// it into a follow-up cycle.
type DeferredMutator struct {
	s *store.Store
}

// NewDeferredMutator returns a mutator bound to s.
func NewDeferredMutator(s *store.Store) *DeferredMutator {
	return &DeferredMutator{s: s}
}

// SetTrusted schedules a trusted write. The caller's frame is gone by the
// time a dispatched write runs, so failures surface only through the
// global error handler, which the store already reports to.
func (m *DeferredMutator) SetTrusted(field string, value store.Value) {
	apply := func() {
		_ = m.s.SetTrusted(field, value)
	}
	if !Dispatch(apply) {
		apply()
	}
}
