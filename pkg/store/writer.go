package store

import (
	"context"
	"time"
)

// Writer performs the external side effect of a validated commit, such as
// persistence or a network call. The store treats it as a black box that
// owns its own duration and outcome: a nil return applies the candidates,
// any error rejects the commit with state unchanged.
//
// Write must honor ctx cancellation. The store additionally enforces the
// commit deadline itself, so a Writer that ignores ctx delays only its own
// goroutine, never the store.
type Writer interface {
	Write(ctx context.Context, candidates map[string]Value) error
}

// WriterFunc adapts a function to the Writer interface.
type WriterFunc func(ctx context.Context, candidates map[string]Value) error

func (f WriterFunc) Write(ctx context.Context, candidates map[string]Value) error {
	return f(ctx, candidates)
}

// NopWriter succeeds immediately. It is the default writer of a store
// constructed without WithWriter.
type NopWriter struct{}

func (NopWriter) Write(context.Context, map[string]Value) error { return nil }

// SimulatedWriter models an external collaborator with fixed latency and a
// configurable outcome. It is intended for demos and tests that need a
// realistic asynchronous write step without real I/O.
type SimulatedWriter struct {
	// Latency is how long each write takes before resolving.
	Latency time.Duration
	// Err, when non-nil, is returned after the latency elapses.
	Err error
}

func (w *SimulatedWriter) Write(ctx context.Context, _ map[string]Value) error {
	if w.Latency > 0 {
		timer := time.NewTimer(w.Latency)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return w.Err
}
