package framelib

import "sync"

// Flag is a single boolean shared across request handlers, the slideshow
// job and the button poll loop, e.g. "setup mode active". Readers must go
// through Get on every use rather than caching the value across blocking
// calls; the flag can flip underneath them at any time.
type Flag struct {
	mu sync.Mutex
	v  bool
}

// Get returns the current value.
func (f *Flag) Get() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.v
}

// Set updates the value.
func (f *Flag) Set(v bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.v = v
}

// CompareAndSet sets the flag to next only if it currently equals expect,
// reporting whether the swap happened. Button handlers use this to make
// "enter setup mode once" idempotent under concurrent presses.
func (f *Flag) CompareAndSet(expect, next bool) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.v != expect {
		return false
	}
	f.v = next
	return true
}
