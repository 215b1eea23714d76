package primitives

import (
	"errors"
	"fmt"
	"time"
)

// ResourceConfig describes one guarded resource in a release plan.
//
// After lists resources that must be acquired before this one; release
// order is always the exact reverse of acquire order, so a resource is
// released before everything it depends on.
type ResourceConfig struct {
	ID             string        `json:"id" yaml:"id"`
	Description    string        `json:"description,omitempty" yaml:"description,omitempty"`
	After          []string      `json:"after,omitempty" yaml:"after,omitempty"`
	ReleaseTimeout time.Duration `json:"releaseTimeout,omitempty" yaml:"releaseTimeout,omitempty"`
}

// NewResourceConfig creates a ResourceConfig with the given ID.
func NewResourceConfig(id string) *ResourceConfig {
	return &ResourceConfig{ID: id}
}

// WithAfter appends ordering dependencies.
func (r *ResourceConfig) WithAfter(ids ...string) *ResourceConfig {
	r.After = append(r.After, ids...)
	return r
}

// WithReleaseTimeout sets the watchdog budget for the release action.
func (r *ResourceConfig) WithReleaseTimeout(d time.Duration) *ResourceConfig {
	r.ReleaseTimeout = d
	return r
}

// Validate validates a single resource:
// - Non-empty ID
// - No self-dependency
// - No duplicate dependencies
// - Non-negative release timeout
func (r *ResourceConfig) Validate() error {
	if r.ID == "" {
		return errors.New("resource ID is required")
	}
	seen := make(map[string]bool, len(r.After))
	for _, dep := range r.After {
		if dep == r.ID {
			return fmt.Errorf("resource %q depends on itself", r.ID)
		}
		if seen[dep] {
			return fmt.Errorf("resource %q lists dependency %q twice", r.ID, dep)
		}
		seen[dep] = true
	}
	if r.ReleaseTimeout < 0 {
		return fmt.Errorf("resource %q has negative release timeout", r.ID)
	}
	return nil
}
