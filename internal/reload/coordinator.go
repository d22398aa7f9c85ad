// Package reload implements the file-watch-and-swap loop shared by every
// hot-reloadable artifact in the decision core (rule config, system
// config; pattern lists are loaded once at startup and are not watched):
// a stopCh+sync.WaitGroup+time.Ticker background loop generalized
// into one reusable poll/load/validate/swap coordinator (§4.7).
package reload

import (
	"sync"
	"time"
)

// LoadFunc loads and validates the artifact at path, returning the new
// value to swap in, or an error that leaves the previous value in place.
type LoadFunc func(path string) (interface{}, error)

// Observer is invoked after a successful swap, with the newly active value.
type Observer func(newValue interface{})

// ErrorHandler is invoked when a poll's LoadFunc fails; the previous value
// is retained and the error is never propagated to the caller of Enable.
type ErrorHandler func(err error)

// Coordinator runs a single poll-modtime/load/validate/swap loop for one
// watched artifact. It is disabled by default; Enable/Disable are
// idempotent and safe to call concurrently.
type Coordinator struct {
	path    string
	load    LoadFunc
	onError ErrorHandler

	mu       sync.Mutex
	running  bool
	stopCh   chan struct{}
	wg       sync.WaitGroup
	lastMod  time.Time

	valueMu sync.RWMutex
	value   interface{}
}

// New constructs a Coordinator for the artifact at path, loaded with load.
// The initial value must be set via Seed before the first poll, typically
// by calling load once synchronously at startup.
func New(path string, load LoadFunc, onError ErrorHandler) *Coordinator {
	if onError == nil {
		onError = func(error) {}
	}
	return &Coordinator{path: path, load: load, onError: onError}
}

// Seed sets the initial value without going through the poll loop, for the
// synchronous startup load that happens before hot reload is enabled.
func (c *Coordinator) Seed(value interface{}) {
	c.valueMu.Lock()
	defer c.valueMu.Unlock()
	c.value = value
}

// Value returns the currently active value. Safe for concurrent use while
// the background loop is swapping it.
func (c *Coordinator) Value() interface{} {
	c.valueMu.RLock()
	defer c.valueMu.RUnlock()
	return c.value
}

// Enable starts the background poll loop at the given interval. Calling
// Enable while already running is a no-op.
func (c *Coordinator) Enable(interval time.Duration, observer Observer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return
	}

	c.stopCh = make(chan struct{})
	c.running = true
	c.wg.Add(1)
	go c.runLoop(interval, observer)
}

// Disable stops the background loop and blocks until it has exited, which
// is guaranteed within one poll interval. Calling Disable while not running
// is a no-op.
func (c *Coordinator) Disable() {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return
	}
	close(c.stopCh)
	c.running = false
	c.mu.Unlock()

	c.wg.Wait()
}

func (c *Coordinator) runLoop(interval time.Duration, observer Observer) {
	defer c.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			c.pollOnce(observer)
		}
	}
}

func (c *Coordinator) pollOnce(observer Observer) {
	mod, err := statModTime(c.path)
	if err != nil {
		c.onError(err)
		return
	}
	if !mod.After(c.lastMod) {
		return
	}

	newValue, err := c.load(c.path)
	if err != nil {
		c.onError(err)
		return
	}

	c.lastMod = mod
	c.valueMu.Lock()
	c.value = newValue
	c.valueMu.Unlock()

	if observer != nil {
		observer(newValue)
	}
}
