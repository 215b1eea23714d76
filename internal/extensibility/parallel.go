package extensibility

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/comalice/scopex/internal/core"
)

// GroupAcquirer acquires the independent resources of one topological
// layer concurrently. Releases are untouched: the engine still runs them
// sequentially, in LIFO order, on the caller's goroutine.
type GroupAcquirer struct {
	limit int
}

// NewGroupAcquirer creates a GroupAcquirer. limit bounds concurrent
// acquisitions per layer; limit <= 0 means unbounded.
func NewGroupAcquirer(limit int) *GroupAcquirer {
	return &GroupAcquirer{limit: limit}
}

// AcquireLayer acquires ids concurrently via errgroup. The first failure
// cancels the group's context for the acquisitions still in flight.
// Successful acquisitions are always returned, even on error, so the
// engine can arm guards for them and release them during unwind.
func (a *GroupAcquirer) AcquireLayer(ctx context.Context, ids []string, reg *core.Registry) ([]core.Acquisition, error) {
	g, gctx := errgroup.WithContext(ctx)
	if a.limit > 0 {
		g.SetLimit(a.limit)
	}

	// Index-stable slots: each goroutine writes only its own slot.
	slots := make([]core.Acquisition, len(ids))
	for i, id := range ids {
		g.Go(func() error {
			p, ok := reg.Lookup(id)
			if !ok {
				return fmt.Errorf("%w: %s", core.ErrProviderNotFound, id)
			}
			start := time.Now()
			value, release, err := p.Acquire(gctx)
			if err != nil {
				return fmt.Errorf("acquire %s: %w", id, err)
			}
			if release == nil {
				// Nil release means no cleanup; arm a no-op so the
				// guard path stays uniform.
				release = func() error { return nil }
			}
			slots[i] = core.Acquisition{
				ID:      id,
				Value:   value,
				Release: release,
				Elapsed: time.Since(start),
			}
			return nil
		})
	}
	err := g.Wait()

	// A filled slot carries its resource ID; plan validation rejects empty
	// IDs, so an empty slot can only mean the acquisition failed.
	acqs := make([]core.Acquisition, 0, len(ids))
	for _, acq := range slots {
		if acq.ID != "" {
			acqs = append(acqs, acq)
		}
	}
	return acqs, err
}
