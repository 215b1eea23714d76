// Package primitives includes builder helpers for PlanConfig.
package primitives

import "time"

// PlanBuilder builds PlanConfig fluently.
type PlanBuilder struct {
	config    *PlanConfig
	resources map[string]*ResourceConfig
}

// NewPlanBuilder creates a new PlanBuilder.
func NewPlanBuilder(id string) *PlanBuilder {
	return &PlanBuilder{
		config:    &PlanConfig{ID: id},
		resources: make(map[string]*ResourceConfig),
	}
}

// Resource starts (or continues) a resource definition.
func (b *PlanBuilder) Resource(id string) *ResourceBuilder {
	r, ok := b.resources[id]
	if !ok {
		r = NewResourceConfig(id)
		b.resources[id] = r
	}
	return &ResourceBuilder{resource: r, pb: b}
}

// Build finalizes and validates the plan.
func (b *PlanBuilder) Build() (PlanConfig, error) {
	b.config.Resources = b.resources
	if err := b.config.Validate(); err != nil {
		return PlanConfig{}, err
	}
	return *b.config, nil
}

// ResourceBuilder for fluent resource definitions.
type ResourceBuilder struct {
	resource *ResourceConfig
	pb       *PlanBuilder
}

// Describe sets the human-readable description.
func (rb *ResourceBuilder) Describe(desc string) *ResourceBuilder {
	rb.resource.Description = desc
	return rb
}

// After adds ordering dependencies.
func (rb *ResourceBuilder) After(ids ...string) *ResourceBuilder {
	rb.resource.WithAfter(ids...)
	return rb
}

// ReleaseTimeout sets the watchdog budget for the release action.
func (rb *ResourceBuilder) ReleaseTimeout(d time.Duration) *ResourceBuilder {
	rb.resource.WithReleaseTimeout(d)
	return rb
}

// Resource starts a sibling resource definition.
func (rb *ResourceBuilder) Resource(id string) *ResourceBuilder {
	return rb.pb.Resource(id)
}

// Build finalizes the whole plan.
func (rb *ResourceBuilder) Build() (PlanConfig, error) {
	return rb.pb.Build()
}
