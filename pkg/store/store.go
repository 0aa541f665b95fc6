package store

import (
	stderrors "errors"
	"sync"
	"time"

	"github.com/go-drift/statekit/pkg/errors"
	"github.com/go-drift/statekit/pkg/observe"
)

// Sentinel errors wrapped by the StoreError values the store returns.
var (
	// ErrClosed is returned by mutations attempted after Close.
	ErrClosed = stderrors.New("store is closed")
	// ErrBusy is returned by Commit while another commit is in flight.
	ErrBusy = stderrors.New("commit already in flight")
)

// Validator checks a full candidate set before any asynchronous work
// starts. Implementations report every failing field together, typically
// as a *errors.ValidationErrors batch. A nil return accepts the candidates.
type Validator interface {
	Validate(candidates map[string]Value) error
}

// Recorder receives instrumentation events from a store. Implementations
// must be safe for concurrent use; see the metrics package for a
// Prometheus-backed implementation.
type Recorder interface {
	// RecordCommit is called once per Commit call with its outcome.
	RecordCommit(outcome string, duration time.Duration)
	// RecordTrustedWrite is called once per successful SetTrusted.
	RecordTrustedWrite(field string)
	// RecordNotify is called after each fan-out driven by this store.
	RecordNotify(duration time.Duration, failures int)
}

type nopRecorder struct{}

func (nopRecorder) RecordCommit(string, time.Duration) {}
func (nopRecorder) RecordTrustedWrite(string)          {}
func (nopRecorder) RecordNotify(time.Duration, int)    {}

// Option configures a Store.
type Option func(*Store)

// WithValidator sets the validator run at the start of every Commit.
// A store without a validator accepts any candidate set.
func WithValidator(v Validator) Option {
	return func(s *Store) {
		if v != nil {
			s.validator = v
		}
	}
}

// WithWriter sets the external writer used by Commit. A store without a
// writer applies valid candidates immediately.
func WithWriter(w Writer) Option {
	return func(s *Store) {
		if w != nil {
			s.writer = w
		}
	}
}

// WithRecorder attaches an instrumentation recorder.
func WithRecorder(r Recorder) Option {
	return func(s *Store) {
		if r != nil {
			s.recorder = r
		}
	}
}

// WithNow overrides the clock used for error timestamps and durations.
// Tests use this with storetest.FakeClock.
func WithNow(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// Store holds the current state snapshot, mediates every read and write,
// and owns the set of subscribed observers.
//
// Reads and trusted writes are synchronous and never suspend. Commit is
// the only operation with an asynchronous step (the external write); at
// most one commit is in flight per store, a second concurrent Commit fails
// fast with ErrBusy. The store is mutex-guarded throughout, so a
// multi-threaded host is safe even though the intended driver is a single
// logical owner such as a UI event loop.
type Store struct {
	mu       sync.Mutex
	snap     Snapshot
	inflight bool
	closed   bool

	validator Validator
	writer    Writer
	registry  *observe.Registry
	recorder  Recorder
	now       func() time.Time
}

// New creates a store holding a copy of the initial fields.
func New(initial map[string]Value, opts ...Option) *Store {
	fields := make(map[string]Value, len(initial))
	for name, v := range initial {
		fields[name] = v
	}
	s := &Store{
		snap:     newSnapshot(fields, 0),
		writer:   NopWriter{},
		registry: observe.NewRegistry(),
		recorder: nopRecorder{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the current value of a field. It is side-effect free and
// returns identical results until the next mutation completes.
func (s *Store) Get(field string) (Value, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap.Get(field)
}

// Snapshot returns the current state snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap
}

// SetTrusted overwrites a field with no validation and fans out exactly
// one notification. It never suspends and fails only on a closed store.
//
// A trusted write may interleave with a pending Commit. When both target
// the same field, the last writer by completion order wins: a commit that
// resolves after this call overwrites the field again with its candidate.
//
// The returned error is nil, a closed-store error, or the
// *errors.ObserverErrors batch collected during fan-out. A fan-out batch
// does not undo the write.
func (s *Store) SetTrusted(field string, value Value) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return s.closedError("store.SetTrusted", field)
	}
	next := s.snap.with(map[string]Value{field: value})
	s.snap = newSnapshot(next, s.snap.version+1)
	s.mu.Unlock()

	s.recorder.RecordTrustedWrite(field)
	return s.notify()
}

// Subscribe registers an observer invoked once per externally visible
// state change. Observers re-read state through Get or Snapshot.
func (s *Store) Subscribe(fn observe.Observer) observe.Subscription {
	return s.registry.Subscribe(fn)
}

// Observers returns the number of live subscriptions.
func (s *Store) Observers() int {
	return s.registry.Len()
}

// Close detaches every observer and rejects further mutations. Reads stay
// valid. No notification is delivered after Close returns. Close is
// idempotent.
func (s *Store) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.registry.Close()
}

// notify drives one fan-out cycle and records its duration.
func (s *Store) notify() error {
	start := s.now()
	err := s.registry.NotifyAll()
	failures := 0
	var batch *errors.ObserverErrors
	if stderrors.As(err, &batch) {
		failures = batch.Len()
	}
	s.recorder.RecordNotify(s.now().Sub(start), failures)
	return err
}

func (s *Store) closedError(op, field string) error {
	err := &errors.StoreError{
		Op:        op,
		Kind:      errors.KindClosed,
		Field:     field,
		Err:       ErrClosed,
		Timestamp: s.now(),
	}
	errors.Report(err)
	return err
}
