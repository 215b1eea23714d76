// Package core provides the runtime tier of the release-plan engine.
// Options for configuring Engine instances.
package core

// WithReleaseRunner configures the Engine with a custom ReleaseRunner.
func WithReleaseRunner(r ReleaseRunner) Option {
	return func(e *Engine) {
		if r != nil {
			e.runner = r
		}
	}
}

// WithAcquirer configures the Engine with a custom LayerAcquirer.
func WithAcquirer(a LayerAcquirer) Option {
	return func(e *Engine) {
		e.acquirer = a
	}
}

// WithPersister configures the Engine with a TracePersister.
func WithPersister(p TracePersister) Option {
	return func(e *Engine) {
		e.persister = p
	}
}

// WithPublisher configures the Engine with an EventPublisher.
func WithPublisher(pb EventPublisher) Option {
	return func(e *Engine) {
		e.publisher = pb
	}
}

// WithClock configures the Engine's timestamp source (for tests).
func WithClock(c Clock) Option {
	return func(e *Engine) {
		if c != nil {
			e.clock = c
		}
	}
}
