// Package mode implements the shell's foreground-only mode, toggled by the
// terminal stop signal.
package mode

import (
	"context"
	"io"
	"os"
	"sync"
	"sync/atomic"
)

const (
	// EnterMessage is written when foreground-only mode is switched on.
	EnterMessage = "Entering foreground-only mode (& is now ignored)\n"
	// ExitMessage is written when foreground-only mode is switched off.
	ExitMessage = "Exiting foreground-only mode\n"
)

// Controller holds the foreground-only flag.
//
// The flag may be flipped from a signal watching goroutine while the shell
// loop reads it, so all access is atomic. Messages are written with a single
// Write call each.
type Controller struct {
	foregroundOnly atomic.Bool

	mu  sync.Mutex
	out io.Writer
}

// NewController creates a controller with background execution enabled that
// announces mode changes on out.
func NewController(out io.Writer) *Controller {
	if out == nil {
		out = io.Discard
	}
	return &Controller{out: out}
}

// BackgroundEnabled reports whether a trailing & may start a background job.
func (c *Controller) BackgroundEnabled() bool {
	return !c.foregroundOnly.Load()
}

// ForegroundOnly reports whether foreground-only mode is active.
func (c *Controller) ForegroundOnly() bool {
	return c.foregroundOnly.Load()
}

// Toggle flips the mode, writes the matching message and returns true if
// foreground-only mode is now active.
func (c *Controller) Toggle() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Toggles are serialized so the message always matches the new state.
	now := !c.foregroundOnly.Load()
	c.foregroundOnly.Store(now)

	msg := ExitMessage
	if now {
		msg = EnterMessage
	}
	_, _ = io.WriteString(c.out, msg)
	return now
}

// Watch toggles the mode once per received signal until ctx is cancelled or
// sigs is closed.
func (c *Controller) Watch(ctx context.Context, sigs <-chan os.Signal) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case _, ok := <-sigs:
			if !ok {
				return nil
			}
			c.Toggle()
		}
	}
}
