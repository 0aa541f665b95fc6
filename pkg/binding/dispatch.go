// Package binding bridges store notifications to a host presentation
// layer without the store core depending on any UI framework.
//
// Hosts with a UI thread register a dispatch function once at startup;
// mutations issued from inside notification callbacks are then deferred
// onto that thread for the next scheduling turn instead of re-entering
// the active fan-out.
package binding

import "sync"

var (
	dispatchMu   sync.RWMutex
	dispatchFunc func(callback func())
)

// RegisterDispatch sets the function used to schedule callbacks on the
// host's owner thread. Hosts call this once during initialization. Pass
// nil to clear the dispatcher.
func RegisterDispatch(fn func(callback func())) {
	dispatchMu.Lock()
	dispatchFunc = fn
	dispatchMu.Unlock()
}

// Dispatch schedules a callback on the host's owner thread. Returns true
// if the callback was scheduled, false if no dispatcher is registered or
// the callback is nil.
func Dispatch(callback func()) bool {
	dispatchMu.RLock()
	fn := dispatchFunc
	dispatchMu.RUnlock()
	if fn == nil || callback == nil {
		return false
	}
	fn(callback)
	return true
}
