package errors

import (
	"log/slog"
)

// LogHandler is a Handler that logs errors through slog.
type LogHandler struct {
	// Logger overrides the default slog logger when set.
	Logger *slog.Logger
	// Verbose enables detailed output including stack traces.
	Verbose bool
}

func (h *LogHandler) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// HandleError logs a StoreError.
func (h *LogHandler) HandleError(err *StoreError) {
	if err == nil {
		return
	}
	attrs := []any{
		slog.String("op", err.Op),
		slog.String("kind", err.Kind.String()),
	}
	if err.Field != "" {
		attrs = append(attrs, slog.String("field", err.Field))
	}
	if err.Err != nil {
		attrs = append(attrs, slog.Any("err", err.Err))
	}
	h.logger().Error("statekit store error", attrs...)
}

// HandleObserverErrors logs each observer failure from a fan-out cycle.
func (h *LogHandler) HandleObserverErrors(errs *ObserverErrors) {
	if errs == nil {
		return
	}
	log := h.logger()
	for _, f := range errs.Failures {
		attrs := []any{
			slog.Int("observer", f.Index),
			slog.Any("recovered", f.Recovered),
		}
		if h.Verbose && f.StackTrace != "" {
			attrs = append(attrs, slog.String("stack", f.StackTrace))
		}
		log.Error("statekit observer panic", attrs...)
	}
}
