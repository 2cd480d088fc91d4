package config

import (
	"sync"

	"github.com/charles-muller/AspNetSessionState/pkg/sessionstate"
)

// The process-wide settings are write-once: the first Initialize wins
// and every later call is a no-op, even with different values. Callers
// that can pass settings explicitly should do so instead of relying on
// this global; it exists for compatibility with hosts that configure
// the session layer from a single entry point.
var global struct {
	mu  sync.Mutex
	set bool
	val sessionstate.Settings
}

// Initialize records the process-wide settings. Returns true when this
// call won the initialization, false when settings were already set and
// the call had no effect. Concurrent initializers race deterministically:
// exactly one wins, the value is never a mix of two calls.
func Initialize(settings sessionstate.Settings) bool {
	global.mu.Lock()
	defer global.mu.Unlock()
	if global.set {
		return false
	}
	global.val = settings
	global.set = true
	return true
}

// Current returns the process-wide settings and whether they were
// initialized.
func Current() (sessionstate.Settings, bool) {
	global.mu.Lock()
	defer global.mu.Unlock()
	return global.val, global.set
}

// resetForTest clears the global. Only tests may call this.
func resetForTest() {
	global.mu.Lock()
	defer global.mu.Unlock()
	global.set = false
	global.val = sessionstate.Settings{}
}
