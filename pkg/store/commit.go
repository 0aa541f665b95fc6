package store

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/go-drift/statekit/pkg/errors"
)

// Commit outcomes passed to Recorder.RecordCommit.
const (
	OutcomeCommitted  = "committed"
	OutcomeValidation = "validation"
	OutcomeBusy       = "busy"
	OutcomeWrite      = "write"
	OutcomeTimeout    = "timeout"
	OutcomeClosed     = "closed"
)

// Commit applies a validated asynchronous mutation.
//
// The pipeline is strictly ordered: all candidate fields are validated
// synchronously first (every failing field is reported together, no
// asynchronous work starts for invalid input); then the external writer
// runs; then the candidate fields atomically replace the current values;
// then exactly one notification cycle fans out. On validation failure,
// write failure, deadline expiry, or cancellation the state is unchanged
// and no notification fires.
//
// At most one commit is in flight per store. A second Commit issued while
// one is pending fails fast wrapping ErrBusy; invalid input is rejected
// before the in-flight slot is consulted, so a misbehaving caller never
// occupies the slot with doomed work. The slot is freed on every
// resolution path.
//
// A deadline is applied by passing a deadline-carrying ctx. On expiry the
// commit resolves wrapping context.DeadlineExceeded with the state
// unchanged; the abandoned write goroutine may still finish in the
// background but its result is discarded.
//
// On success Commit returns the new snapshot. The returned error may then
// still be a *errors.ObserverErrors batch: the commit was applied, but one
// or more observers panicked during fan-out.
func (s *Store) Commit(ctx context.Context, candidates map[string]Value) (Snapshot, error) {
	const op = "store.Commit"
	start := s.now()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		s.recorder.RecordCommit(OutcomeClosed, s.now().Sub(start))
		return Snapshot{}, s.closedError(op, "")
	}
	prev := s.snap
	s.mu.Unlock()

	if len(candidates) == 0 {
		err := s.commitError(op, errors.KindValidation, fmt.Errorf("empty candidate set"))
		s.recorder.RecordCommit(OutcomeValidation, s.now().Sub(start))
		return prev, err
	}

	// Step 1: synchronous validation, before the in-flight slot and before
	// any asynchronous work.
	if s.validator != nil {
		if verr := s.validator.Validate(candidates); verr != nil {
			err := s.commitError(op, errors.KindValidation, verr)
			s.recorder.RecordCommit(OutcomeValidation, s.now().Sub(start))
			return prev, err
		}
	}

	// Acquire the single in-flight slot.
	s.mu.Lock()
	if s.inflight {
		s.mu.Unlock()
		err := s.commitError(op, errors.KindBusy, ErrBusy)
		s.recorder.RecordCommit(OutcomeBusy, s.now().Sub(start))
		return prev, err
	}
	s.inflight = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.inflight = false
		s.mu.Unlock()
	}()

	// Step 2: the external write. The store enforces ctx itself so a
	// writer that ignores cancellation cannot hold the slot past the
	// deadline.
	frozen := freeze(candidates)
	done := make(chan error, 1)
	go func() {
		done <- s.writer.Write(ctx, frozen)
	}()

	select {
	case werr := <-done:
		if werr != nil {
			kind, outcome := errors.KindWrite, OutcomeWrite
			if stderrors.Is(werr, context.DeadlineExceeded) || stderrors.Is(werr, context.Canceled) {
				kind, outcome = errors.KindTimeout, OutcomeTimeout
			}
			err := s.commitError(op, kind, werr)
			s.recorder.RecordCommit(outcome, s.now().Sub(start))
			return prev, err
		}
	case <-ctx.Done():
		err := s.commitError(op, errors.KindTimeout, ctx.Err())
		s.recorder.RecordCommit(OutcomeTimeout, s.now().Sub(start))
		return prev, err
	}

	// Step 3: atomic swap. Candidate fields win over any trusted writes
	// that interleaved with the flight (last writer by completion order);
	// unrelated fields keep their interleaved values.
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		s.recorder.RecordCommit(OutcomeClosed, s.now().Sub(start))
		return Snapshot{}, s.closedError(op, "")
	}
	next := s.snap.with(frozen)
	s.snap = newSnapshot(next, s.snap.version+1)
	committed := s.snap
	s.mu.Unlock()

	s.recorder.RecordCommit(OutcomeCommitted, s.now().Sub(start))

	// Step 4: exactly one fan-out reflecting the new snapshot.
	return committed, s.notify()
}

// freeze copies the caller's candidate map so later caller mutation cannot
// leak into the write or the swap.
func freeze(candidates map[string]Value) map[string]Value {
	frozen := make(map[string]Value, len(candidates))
	for name, v := range candidates {
		frozen[name] = v
	}
	return frozen
}

func (s *Store) commitError(op string, kind errors.ErrorKind, cause error) error {
	err := &errors.StoreError{
		Op:        op,
		Kind:      kind,
		Err:       cause,
		Timestamp: s.now(),
	}
	errors.Report(err)
	return err
}
