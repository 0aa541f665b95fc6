package errors

import (
	"runtime"
	"strings"
	"sync"
	"time"
)

// Handler receives errors reported by statekit components.
type Handler interface {
	// HandleError is called when a store operation fails.
	HandleError(err *StoreError)
	// HandleObserverErrors is called when observers fail during fan-out.
	HandleObserverErrors(errs *ObserverErrors)
}

var (
	// DefaultHandler is the global error handler.
	// It defaults to LogHandler with verbose=false.
	DefaultHandler Handler = &LogHandler{}

	handlerMu sync.RWMutex
)

// SetHandler configures the global error handler.
// Pass nil to restore the default LogHandler.
func SetHandler(h Handler) {
	handlerMu.Lock()
	defer handlerMu.Unlock()
	if h == nil {
		DefaultHandler = &LogHandler{}
	} else {
		DefaultHandler = h
	}
}

// getHandler returns the current error handler.
func getHandler() Handler {
	handlerMu.RLock()
	defer handlerMu.RUnlock()
	return DefaultHandler
}

// Report sends an error to the global handler.
// If err.Timestamp is zero, it is set to the current time.
func Report(err *StoreError) {
	if err == nil {
		return
	}
	if err.Timestamp.IsZero() {
		err.Timestamp = time.Now()
	}
	if h := getHandler(); h != nil {
		h.HandleError(err)
	}
}

// ReportObserverErrors sends a fan-out failure batch to the global handler.
func ReportObserverErrors(errs *ObserverErrors) {
	if errs == nil || len(errs.Failures) == 0 {
		return
	}
	if h := getHandler(); h != nil {
		h.HandleObserverErrors(errs)
	}
}

// CaptureStack returns the current call stack, trimmed of runtime frames.
func CaptureStack() string {
	buf := make([]byte, 8192)
	n := runtime.Stack(buf, false)
	stack := string(buf[:n])

	// Drop the goroutine header and the frames inside this package.
	lines := strings.Split(stack, "\n")
	if len(lines) > 5 {
		return lines[0] + "\n" + strings.Join(lines[5:], "\n")
	}
	return stack
}
