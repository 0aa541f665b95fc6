package storetest

import (
	"context"
	"sync"

	"github.com/go-drift/statekit/pkg/store"
)

// step is one scripted write resolution.
type step struct {
	err  error
	gate chan struct{}
}

// ScriptedWriter is a store.Writer with a per-call script. Each Write pops
// the next step: an immediate outcome queued with Enqueue, or a blocking
// outcome queued with EnqueueBlocking that resolves only when the returned
// release function runs (or ctx expires first). An exhausted script
// succeeds immediately.
type ScriptedWriter struct {
	mu    sync.Mutex
	steps []step
	calls []map[string]store.Value
}

// NewScriptedWriter returns a writer with an empty script.
func NewScriptedWriter() *ScriptedWriter {
	return &ScriptedWriter{}
}

// Enqueue scripts one write resolving immediately with err.
func (w *ScriptedWriter) Enqueue(err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.steps = append(w.steps, step{err: err})
}

// EnqueueBlocking scripts one write that blocks until the returned release
// function is called, then resolves with err. Interleaving tests use the
// block window to issue other mutations while the commit is in flight.
func (w *ScriptedWriter) EnqueueBlocking(err error) (release func()) {
	gate := make(chan struct{})
	w.mu.Lock()
	w.steps = append(w.steps, step{err: err, gate: gate})
	w.mu.Unlock()
	var once sync.Once
	return func() {
		once.Do(func() { close(gate) })
	}
}

// Write implements store.Writer.
func (w *ScriptedWriter) Write(ctx context.Context, candidates map[string]store.Value) error {
	frozen := make(map[string]store.Value, len(candidates))
	for name, v := range candidates {
		frozen[name] = v
	}

	w.mu.Lock()
	w.calls = append(w.calls, frozen)
	var next step
	if len(w.steps) > 0 {
		next = w.steps[0]
		w.steps = w.steps[1:]
	}
	w.mu.Unlock()

	if next.gate != nil {
		select {
		case <-next.gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return next.err
}

// Calls returns a copy of the candidate sets received so far.
func (w *ScriptedWriter) Calls() []map[string]store.Value {
	w.mu.Lock()
	defer w.mu.Unlock()
	calls := make([]map[string]store.Value, len(w.calls))
	copy(calls, w.calls)
	return calls
}
