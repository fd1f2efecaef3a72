package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/ghview/internal/core/ports/driving"
	"github.com/custodia-labs/ghview/internal/logger"
)

// Ensure FetchCoordinator implements the interface.
var _ driving.SearchCoordinator = (*FetchCoordinator)(nil)

// FetchAction is run once per settled input value. ctx is cancelled as
// soon as a newer value is submitted.
type FetchAction func(ctx context.Context, value string)

// FetchCoordinator debounces input changes into fetches.
//
// Every Submit stops the pending timer and cancels the running action
// before anything else is scheduled. A generation counter guards the timer
// callback, so a superseded value never reaches the action even when its
// timer fired concurrently with the Submit that replaced it.
type FetchCoordinator struct {
	action FetchAction

	mu        sync.Mutex
	window    time.Duration
	timer     *time.Timer
	gen       uint64
	cancelRun context.CancelFunc
	closed    bool

	wg sync.WaitGroup
}

// NewFetchCoordinator creates a coordinator that runs action for every
// value left unchanged for window.
func NewFetchCoordinator(window time.Duration, action FetchAction) *FetchCoordinator {
	return &FetchCoordinator{action: action, window: window}
}

// Submit records a new input value. Blank input only cancels.
func (c *FetchCoordinator) Submit(input string) {
	value := strings.TrimSpace(input)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.stopLocked()
	if value == "" {
		return
	}

	gen := c.gen
	c.timer = time.AfterFunc(c.window, func() { c.fire(gen, value) })
}

// Cancel drops the pending value and cancels any running action.
func (c *FetchCoordinator) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
}

// SetWindow changes the quiescence window. A pending value keeps the
// window it was submitted with.
func (c *FetchCoordinator) SetWindow(d time.Duration) {
	if d <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.window != d {
		logger.Debug("search: debounce window %s -> %s", c.window, d)
	}
	c.window = d
}

// Window returns the current quiescence window.
func (c *FetchCoordinator) Window() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.window
}

// Close cancels everything, waits for a running action to return and
// ignores later submissions.
func (c *FetchCoordinator) Close() {
	c.mu.Lock()
	c.closed = true
	c.stopLocked()
	c.mu.Unlock()

	c.wg.Wait()
}

// stopLocked must be called with mu held.
func (c *FetchCoordinator) stopLocked() {
	c.gen++
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	if c.cancelRun != nil {
		c.cancelRun()
		c.cancelRun = nil
	}
}

func (c *FetchCoordinator) fire(gen uint64, value string) {
	c.mu.Lock()
	if gen != c.gen || c.closed {
		c.mu.Unlock()
		return
	}
	c.timer = nil
	ctx, cancel := context.WithCancel(context.Background())
	c.cancelRun = cancel
	c.wg.Add(1)
	c.mu.Unlock()

	defer c.wg.Done()
	defer cancel()

	logger.Debug("search: running for %q", value)
	c.action(ctx, value)

	c.mu.Lock()
	if gen == c.gen {
		c.cancelRun = nil
	}
	c.mu.Unlock()
}
