// Package extensibility provides pluggable implementations of the engine's
// ReleaseRunner and LayerAcquirer extension points.
package extensibility

import (
	"log"
	"time"

	"github.com/comalice/scopex/internal/core"
	"github.com/comalice/scopex/internal/primitives"
)

// DefaultReleaseRunner runs the release action directly.
type DefaultReleaseRunner struct{}

// RunRelease executes the release action.
func (DefaultReleaseRunner) RunRelease(_ primitives.ResourceConfig, release func() error) error {
	return release()
}

// LoggingReleaseRunner wraps a ReleaseRunner and adds logging around
// execution.
type LoggingReleaseRunner struct {
	inner core.ReleaseRunner
}

// NewLoggingReleaseRunner creates a LoggingReleaseRunner wrapping inner.
func NewLoggingReleaseRunner(inner core.ReleaseRunner) *LoggingReleaseRunner {
	return &LoggingReleaseRunner{inner: inner}
}

// RunRelease logs before and after delegating to the inner runner.
func (r *LoggingReleaseRunner) RunRelease(res primitives.ResourceConfig, release func() error) error {
	log.Printf("LOG: Releasing resource %q", res.ID)
	start := time.Now()
	err := r.inner.RunRelease(res, release)
	log.Printf("LOG: Release of %q completed in %v: %v", res.ID, time.Since(start), err)
	return err
}

// OverrunFunc is called when a release action exceeds its budget. It runs
// on a timer goroutine while the release is still executing.
type OverrunFunc func(res primitives.ResourceConfig, budget time.Duration)

// WatchdogRunner reports release actions that exceed their configured
// ReleaseTimeout. It only observes: the action always runs to completion,
// because the guard guarantee is never traded for a deadline.
type WatchdogRunner struct {
	inner     core.ReleaseRunner
	onOverrun OverrunFunc
}

// NewWatchdogRunner creates a WatchdogRunner wrapping inner. A nil
// onOverrun falls back to stdlib log.
func NewWatchdogRunner(inner core.ReleaseRunner, onOverrun OverrunFunc) *WatchdogRunner {
	if onOverrun == nil {
		onOverrun = func(res primitives.ResourceConfig, budget time.Duration) {
			log.Printf("WATCHDOG: release of %q exceeded %v", res.ID, budget)
		}
	}
	return &WatchdogRunner{inner: inner, onOverrun: onOverrun}
}

// RunRelease arms a timer for the resource's budget, runs the release to
// completion, and stops the timer. Resources without a budget skip the
// watchdog entirely.
func (r *WatchdogRunner) RunRelease(res primitives.ResourceConfig, release func() error) error {
	if res.ReleaseTimeout <= 0 {
		return r.inner.RunRelease(res, release)
	}
	t := time.AfterFunc(res.ReleaseTimeout, func() {
		r.onOverrun(res, res.ReleaseTimeout)
	})
	defer t.Stop()
	return r.inner.RunRelease(res, release)
}
