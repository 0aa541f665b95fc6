package storetest

import (
	"sync"

	"github.com/go-drift/statekit/pkg/store"
)

// RecordingObserver counts notifications and captures the snapshot seen at
// each one. All methods are safe for concurrent use.
type RecordingObserver struct {
	mu    sync.Mutex
	s     *store.Store
	count int
	seen  []store.Snapshot
}

// NewRecordingObserver returns an observer that re-reads s on every
// notification.
func NewRecordingObserver(s *store.Store) *RecordingObserver {
	return &RecordingObserver{s: s}
}

// Observe is the callback to subscribe.
func (o *RecordingObserver) Observe() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.count++
	o.seen = append(o.seen, o.s.Snapshot())
}

// Count returns the number of notifications received.
func (o *RecordingObserver) Count() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.count
}

// Last returns the snapshot captured at the most recent notification and
// whether any notification arrived.
func (o *RecordingObserver) Last() (store.Snapshot, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(o.seen) == 0 {
		return store.Snapshot{}, false
	}
	return o.seen[len(o.seen)-1], true
}
