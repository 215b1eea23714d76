// Package core provides the runtime tier of the release-plan engine.
// The engine turns a validated plan into a guarded scope: every acquired
// resource arms one scope guard, and the guards release in LIFO order on
// every exit path, including a panicking body.
// Pluggable components (runner, acquirer, persister, publisher) are
// declared here; implementations live in internal/extensibility and
// internal/production.
package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/comalice/scopex"
	"github.com/comalice/scopex/internal/primitives"
)

// ReleaseRunner executes one release action. Implementations may add
// logging or watchdog reporting around it, but must always run the action
// to completion: the guard guarantee is never traded for a deadline.
type ReleaseRunner interface {
	RunRelease(res primitives.ResourceConfig, release func() error) error
}

// Acquisition is one successfully acquired resource, as reported by a
// LayerAcquirer.
type Acquisition struct {
	ID      string
	Value   any
	Release func() error
	Elapsed time.Duration
}

// LayerAcquirer acquires the resources of one topological layer. On error
// it must still return every successful Acquisition so the engine can arm
// guards for them; their releases run even when the layer fails.
type LayerAcquirer interface {
	AcquireLayer(ctx context.Context, ids []string, reg *Registry) ([]Acquisition, error)
}

// TracePersister stores the audit trail of a completed run.
type TracePersister interface {
	Save(ctx context.Context, trace Trace) error
	Load(ctx context.Context, planID string) (Trace, error)
}

// EventKind classifies lifecycle events.
type EventKind string

const (
	EventAcquired      EventKind = "acquired"
	EventReleased      EventKind = "released"
	EventReleaseFailed EventKind = "releaseFailed"
)

// LifecycleEvent describes one acquire/release step as it happens.
type LifecycleEvent struct {
	PlanID     string    `json:"planID" yaml:"planID"`
	ResourceID string    `json:"resourceID" yaml:"resourceID"`
	Kind       EventKind `json:"kind" yaml:"kind"`
	Timestamp  time.Time `json:"timestamp" yaml:"timestamp"`
	Err        string    `json:"err,omitempty" yaml:"err,omitempty"`
}

// EventPublisher receives lifecycle events. Publishing is best-effort; the
// engine ignores publish errors.
type EventPublisher interface {
	Publish(ctx context.Context, ev LifecycleEvent) error
	Close() error
}

// Clock supplies timestamps; replaceable for deterministic tests.
type Clock func() time.Time

// Option applies configuration to Engine via functional options.
type Option func(*Engine)

// Engine executes a release plan inside a guarded scope.
//
// Run acquires the plan's resources layer by layer, arms one scope guard
// per acquisition, hands the body borrow-only access to the acquired
// values, and lets the guards release everything in reverse acquire order.
// A body failure or panic never skips a release.
type Engine struct {
	plan      primitives.PlanConfig
	registry  *Registry
	runner    ReleaseRunner
	acquirer  LayerAcquirer
	persister TracePersister
	publisher EventPublisher
	clock     Clock
}

// NewEngine creates an Engine for a validated plan.
func NewEngine(plan primitives.PlanConfig, reg *Registry, opts ...Option) (*Engine, error) {
	if err := plan.Validate(); err != nil {
		return nil, fmt.Errorf("invalid plan: %w", err)
	}
	if reg == nil {
		return nil, errors.New("registry is required")
	}
	e := &Engine{
		plan:     plan,
		registry: reg,
		runner:   defaultRunner{},
		clock:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Run executes body with every plan resource acquired and guarded.
//
// The returned Trace records every acquire and release step. Release
// errors do not interrupt the remaining releases; they are joined with the
// body's error (if any) in the returned error. If the body panics, all
// releases still run, the panic continues to the caller, and the trace is
// not persisted.
func (e *Engine) Run(ctx context.Context, body func(ctx context.Context, s *Session) error) (*Trace, error) {
	layers, err := e.plan.Layers()
	if err != nil {
		return nil, err
	}

	trace := &Trace{PlanID: e.plan.ID, Start: e.clock()}
	sess := newSession()
	defer sess.close()
	var releaseErrs []error

	runErr := scopex.EnterAll(len(e.plan.Resources), func(handles []*scopex.Handle) error {
		next := 0
		for _, layer := range layers {
			acqs, layerErr := e.acquireLayer(ctx, layer)
			for _, acq := range acqs {
				sess.put(acq.ID, acq.Value)
				trace.append(TraceStep{
					ResourceID: acq.ID,
					Op:         OpAcquire,
					Timestamp:  e.clock(),
					Duration:   acq.Elapsed,
				})
				e.publish(ctx, acq.ID, EventAcquired, nil)
				e.armRelease(ctx, handles[next], acq, trace, &releaseErrs)
				next++
			}
			if layerErr != nil {
				return fmt.Errorf("plan %s: %w", e.plan.ID, layerErr)
			}
		}
		return body(ctx, sess)
	})

	trace.End = e.clock()

	combined := runErr
	if len(releaseErrs) > 0 {
		combined = errors.Join(append([]error{runErr}, releaseErrs...)...)
	}

	if e.persister != nil {
		if perr := e.persister.Save(ctx, *trace); perr != nil {
			combined = errors.Join(combined, fmt.Errorf("persist trace: %w", perr))
		}
	}
	return trace, combined
}

// armRelease arms one guard with the release action for acq, wrapped with
// tracing, publishing and error collection. The guard runs it exactly once
// when the scope unwinds.
func (e *Engine) armRelease(ctx context.Context, h *scopex.Handle, acq Acquisition, trace *Trace, releaseErrs *[]error) {
	res := e.plan.Resources[acq.ID]
	if res == nil {
		res = &primitives.ResourceConfig{ID: acq.ID}
	}
	h.ArmFunc(func() {
		start := e.clock()
		rerr := e.runner.RunRelease(*res, acq.Release)
		step := TraceStep{
			ResourceID: acq.ID,
			Op:         OpRelease,
			Timestamp:  start,
			Duration:   e.clock().Sub(start),
		}
		kind := EventReleased
		if rerr != nil {
			step.Err = rerr.Error()
			kind = EventReleaseFailed
			*releaseErrs = append(*releaseErrs, fmt.Errorf("release %s: %w", acq.ID, rerr))
		}
		trace.append(step)
		e.publish(ctx, acq.ID, kind, rerr)
	})
}

// acquireLayer delegates to the configured LayerAcquirer, defaulting to a
// timed sequential loop.
func (e *Engine) acquireLayer(ctx context.Context, ids []string) ([]Acquisition, error) {
	if e.acquirer != nil {
		return e.acquirer.AcquireLayer(ctx, ids, e.registry)
	}
	var acqs []Acquisition
	for _, id := range ids {
		p, ok := e.registry.Lookup(id)
		if !ok {
			return acqs, fmt.Errorf("%w: %s", ErrProviderNotFound, id)
		}
		start := time.Now()
		value, release, err := p.Acquire(ctx)
		if err != nil {
			return acqs, fmt.Errorf("acquire %s: %w", id, err)
		}
		if release == nil {
			release = noopRelease
		}
		acqs = append(acqs, Acquisition{
			ID:      id,
			Value:   value,
			Release: release,
			Elapsed: time.Since(start),
		})
	}
	return acqs, nil
}

func (e *Engine) publish(ctx context.Context, resourceID string, kind EventKind, rerr error) {
	if e.publisher == nil {
		return
	}
	ev := LifecycleEvent{
		PlanID:     e.plan.ID,
		ResourceID: resourceID,
		Kind:       kind,
		Timestamp:  e.clock(),
	}
	if rerr != nil {
		ev.Err = rerr.Error()
	}
	_ = e.publisher.Publish(ctx, ev) // best-effort
}

// noopRelease stands in for a nil release func: a resource that needs no
// cleanup still gets a guard, a trace step and a lifecycle event.
func noopRelease() error { return nil }

// defaultRunner is the ReleaseRunner used when none is configured.
type defaultRunner struct{}

func (defaultRunner) RunRelease(_ primitives.ResourceConfig, release func() error) error {
	return release()
}
