package core

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comalice/scopex/internal/primitives"
)

func bringupPlan(t *testing.T) primitives.PlanConfig {
	t.Helper()
	plan, err := primitives.NewPlanBuilder("bringup").
		Resource("power").
		Resource("bus").After("power").
		Resource("dma").After("bus").
		Resource("sensor").After("bus").
		Build()
	require.NoError(t, err)
	return plan
}

// recordingRegistry registers a provider per plan resource that appends to
// log on acquire and release. failAcquire/failRelease inject errors.
func recordingRegistry(t *testing.T, plan primitives.PlanConfig, log *[]string, failAcquire, failRelease map[string]error) *Registry {
	t.Helper()
	reg := NewRegistry()
	for id := range plan.Resources {
		err := reg.RegisterFunc(id, func(ctx context.Context) (any, func() error, error) {
			if aerr := failAcquire[id]; aerr != nil {
				return nil, nil, aerr
			}
			*log = append(*log, "acquire "+id)
			release := func() error {
				*log = append(*log, "release "+id)
				return failRelease[id]
			}
			return "value of " + id, release, nil
		})
		require.NoError(t, err)
	}
	return reg
}

func TestRunAcquiresInOrderReleasesLIFO(t *testing.T) {
	plan := bringupPlan(t)
	var log []string
	reg := recordingRegistry(t, plan, &log, nil, nil)

	e, err := NewEngine(plan, reg)
	require.NoError(t, err)

	trace, err := e.Run(context.Background(), func(ctx context.Context, s *Session) error {
		log = append(log, "body")
		return nil
	})
	require.NoError(t, err)

	want := []string{
		"acquire power", "acquire bus", "acquire dma", "acquire sensor",
		"body",
		"release sensor", "release dma", "release bus", "release power",
	}
	assert.Equal(t, want, log)
	assert.Equal(t, []string{"power", "bus", "dma", "sensor"}, trace.Acquires())
	assert.Equal(t, []string{"sensor", "dma", "bus", "power"}, trace.Releases())
}

func TestRunBodyErrorStillReleases(t *testing.T) {
	plan := bringupPlan(t)
	var log []string
	reg := recordingRegistry(t, plan, &log, nil, nil)

	e, err := NewEngine(plan, reg)
	require.NoError(t, err)

	bodyErr := errors.New("sensor misread")
	_, err = e.Run(context.Background(), func(ctx context.Context, s *Session) error {
		return bodyErr
	})
	require.ErrorIs(t, err, bodyErr)
	assert.Contains(t, log, "release power")
	assert.Contains(t, log, "release sensor")
}

func TestRunBodyPanicStillReleases(t *testing.T) {
	plan := bringupPlan(t)
	var log []string
	reg := recordingRegistry(t, plan, &log, nil, nil)

	e, err := NewEngine(plan, reg)
	require.NoError(t, err)

	func() {
		defer func() {
			r := recover()
			require.Equal(t, "body blew up", r)
		}()
		_, _ = e.Run(context.Background(), func(ctx context.Context, s *Session) error {
			panic("body blew up")
		})
	}()

	want := []string{
		"acquire power", "acquire bus", "acquire dma", "acquire sensor",
		"release sensor", "release dma", "release bus", "release power",
	}
	assert.Equal(t, want, log)
}

func TestRunAcquireFailureReleasesAcquiredPrefix(t *testing.T) {
	plan := bringupPlan(t)
	var log []string
	acquireErr := errors.New("dma channel busy")
	reg := recordingRegistry(t, plan, &log, map[string]error{"dma": acquireErr}, nil)

	e, err := NewEngine(plan, reg)
	require.NoError(t, err)

	bodyRan := false
	_, err = e.Run(context.Background(), func(ctx context.Context, s *Session) error {
		bodyRan = true
		return nil
	})
	require.ErrorIs(t, err, acquireErr)
	assert.False(t, bodyRan, "body must not run after an acquire failure")
	assert.Contains(t, log, "release bus")
	assert.Contains(t, log, "release power")
	assert.NotContains(t, log, "release dma")
}

func TestRunReleaseErrorsAreJoined(t *testing.T) {
	plan := bringupPlan(t)
	var log []string
	releaseErr := errors.New("bus refused to idle")
	reg := recordingRegistry(t, plan, &log, nil, map[string]error{"bus": releaseErr})

	e, err := NewEngine(plan, reg)
	require.NoError(t, err)

	trace, err := e.Run(context.Background(), func(ctx context.Context, s *Session) error {
		return nil
	})
	require.ErrorIs(t, err, releaseErr)
	// A failing release never blocks the remaining releases.
	assert.Equal(t, []string{"sensor", "dma", "bus", "power"}, trace.Releases())

	var failed int
	for _, s := range trace.Steps {
		if s.Op == OpRelease && s.Err != "" {
			failed++
			assert.Equal(t, "bus", s.ResourceID)
		}
	}
	assert.Equal(t, 1, failed)
}

func TestRunSessionValues(t *testing.T) {
	plan := bringupPlan(t)
	var log []string
	reg := recordingRegistry(t, plan, &log, nil, nil)

	e, err := NewEngine(plan, reg)
	require.NoError(t, err)

	_, err = e.Run(context.Background(), func(ctx context.Context, s *Session) error {
		assert.Equal(t, "value of dma", s.MustValue("dma"))
		_, ok := s.Value("nvram")
		assert.False(t, ok)
		return nil
	})
	require.NoError(t, err)
}

func TestRunSessionEscapePanics(t *testing.T) {
	plan := bringupPlan(t)
	var log []string
	reg := recordingRegistry(t, plan, &log, nil, nil)

	e, err := NewEngine(plan, reg)
	require.NoError(t, err)

	var escaped *Session
	_, err = e.Run(context.Background(), func(ctx context.Context, s *Session) error {
		escaped = s
		return nil
	})
	require.NoError(t, err)

	assert.PanicsWithValue(t,
		"core: session used outside the engine run that issued it",
		func() { escaped.MustValue("dma") })
}

type memPersister struct {
	saved []Trace
	err   error
}

func (m *memPersister) Save(ctx context.Context, trace Trace) error {
	if m.err != nil {
		return m.err
	}
	m.saved = append(m.saved, trace)
	return nil
}

func (m *memPersister) Load(ctx context.Context, planID string) (Trace, error) {
	for _, tr := range m.saved {
		if tr.PlanID == planID {
			return tr, nil
		}
	}
	return Trace{}, fmt.Errorf("no trace for plan %q", planID)
}

func TestRunPersistsTrace(t *testing.T) {
	plan := bringupPlan(t)
	var log []string
	reg := recordingRegistry(t, plan, &log, nil, nil)
	p := &memPersister{}

	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	e, err := NewEngine(plan, reg,
		WithPersister(p),
		WithClock(func() time.Time { return fixed }),
	)
	require.NoError(t, err)

	_, err = e.Run(context.Background(), func(ctx context.Context, s *Session) error { return nil })
	require.NoError(t, err)

	require.Len(t, p.saved, 1)
	assert.Equal(t, "bringup", p.saved[0].PlanID)
	assert.Equal(t, fixed, p.saved[0].Start)
	assert.Equal(t, fixed, p.saved[0].End)
	assert.Len(t, p.saved[0].Steps, 8)
}

func TestRunPersistErrorIsJoined(t *testing.T) {
	plan := bringupPlan(t)
	var log []string
	reg := recordingRegistry(t, plan, &log, nil, nil)
	perr := errors.New("disk full")
	p := &memPersister{err: perr}

	e, err := NewEngine(plan, reg, WithPersister(p))
	require.NoError(t, err)

	_, err = e.Run(context.Background(), func(ctx context.Context, s *Session) error { return nil })
	require.ErrorIs(t, err, perr)
}

type memPublisher struct {
	events []LifecycleEvent
}

func (m *memPublisher) Publish(ctx context.Context, ev LifecycleEvent) error {
	m.events = append(m.events, ev)
	return nil
}

func (m *memPublisher) Close() error { return nil }

func TestRunPublishesLifecycleEvents(t *testing.T) {
	plan := bringupPlan(t)
	var log []string
	reg := recordingRegistry(t, plan, &log, nil, map[string]error{"sensor": errors.New("stuck")})
	pub := &memPublisher{}

	e, err := NewEngine(plan, reg, WithPublisher(pub))
	require.NoError(t, err)

	_, err = e.Run(context.Background(), func(ctx context.Context, s *Session) error { return nil })
	require.Error(t, err)

	var acquired, released, failed int
	for _, ev := range pub.events {
		assert.Equal(t, "bringup", ev.PlanID)
		switch ev.Kind {
		case EventAcquired:
			acquired++
		case EventReleased:
			released++
		case EventReleaseFailed:
			failed++
			assert.Equal(t, "sensor", ev.ResourceID)
			assert.Contains(t, ev.Err, "stuck")
		}
	}
	assert.Equal(t, 4, acquired)
	assert.Equal(t, 3, released)
	assert.Equal(t, 1, failed)
}

// A provider may return a nil release for a resource with no cleanup. The
// engine arms a no-op in its place: the run completes, the value reaches
// the session, and the acquisition is traced like any other.
func TestRunNilReleaseProviderIsNoop(t *testing.T) {
	plan, err := primitives.NewPlanBuilder("solo").
		Resource("rom").
		Build()
	require.NoError(t, err)

	reg := NewRegistry()
	require.NoError(t, reg.RegisterFunc("rom", func(ctx context.Context) (any, func() error, error) {
		return "readonly", nil, nil
	}))

	e, err := NewEngine(plan, reg)
	require.NoError(t, err)

	trace, err := e.Run(context.Background(), func(ctx context.Context, s *Session) error {
		assert.Equal(t, "readonly", s.MustValue("rom"))
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"rom"}, trace.Acquires())
	assert.Equal(t, []string{"rom"}, trace.Releases())
}

func TestNewEngineRejectsInvalidPlan(t *testing.T) {
	_, err := NewEngine(primitives.PlanConfig{}, NewRegistry())
	require.Error(t, err)
}

func TestNewEngineRequiresRegistry(t *testing.T) {
	_, err := NewEngine(bringupPlan(t), nil)
	require.Error(t, err)
}
