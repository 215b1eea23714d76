package primitives

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

// PlanConfig defines the complete release plan: every guarded resource of a
// bounded scope, keyed by ID.
type PlanConfig struct {
	ID        string                     `json:"id" yaml:"id"`
	Resources map[string]*ResourceConfig `json:"resources" yaml:"resources"`
}

// Validate validates the entire plan:
// - Non-empty ID
// - At least one resource
// - Map keys agree with resource IDs
// - All individual resources validate
// - All dependency targets exist
// - No dependency cycles
func (p *PlanConfig) Validate() error {
	if p.ID == "" {
		return errors.New("plan ID is required")
	}
	if len(p.Resources) == 0 {
		return errors.New("resources map is required and cannot be empty")
	}
	for key, res := range p.Resources {
		if res == nil {
			return fmt.Errorf("resource %q is nil", key)
		}
		if key != res.ID {
			return fmt.Errorf("resource key %q does not match ID %q", key, res.ID)
		}
		if err := res.Validate(); err != nil {
			return fmt.Errorf("resource %q validation failed: %w", key, err)
		}
		for _, dep := range res.After {
			if _, exists := p.Resources[dep]; !exists {
				return fmt.Errorf("resource %q depends on unknown resource %q", key, dep)
			}
		}
	}
	if _, err := p.AcquireOrder(); err != nil {
		return err
	}
	return nil
}

// AcquireOrder returns a deterministic topological order of the plan's
// resources: every resource appears after all of its After dependencies,
// and ties break lexicographically by ID.
func (p *PlanConfig) AcquireOrder() ([]string, error) {
	layers, err := p.Layers()
	if err != nil {
		return nil, err
	}
	var order []string
	for _, layer := range layers {
		order = append(order, layer...)
	}
	return order, nil
}

// ReleaseOrder returns the exact reverse of AcquireOrder: the LIFO order in
// which the engine's guards will run the release actions.
func (p *PlanConfig) ReleaseOrder() ([]string, error) {
	order, err := p.AcquireOrder()
	if err != nil {
		return nil, err
	}
	rev := make([]string, len(order))
	for i, id := range order {
		rev[len(order)-1-i] = id
	}
	return rev, nil
}

// Layers groups the plan into topological layers: resources within one
// layer have no ordering constraints between each other and may be acquired
// concurrently. Layer contents are sorted by ID for determinism.
func (p *PlanConfig) Layers() ([][]string, error) {
	indegree := make(map[string]int, len(p.Resources))
	dependents := make(map[string][]string, len(p.Resources))
	for id, res := range p.Resources {
		if _, ok := indegree[id]; !ok {
			indegree[id] = 0
		}
		for _, dep := range res.After {
			indegree[id]++
			dependents[dep] = append(dependents[dep], id)
		}
	}

	var layers [][]string
	placed := 0
	ready := make([]string, 0, len(indegree))
	for id, deg := range indegree {
		if deg == 0 {
			ready = append(ready, id)
		}
	}
	for len(ready) > 0 {
		sort.Strings(ready)
		layer := ready
		ready = nil
		placed += len(layer)
		for _, id := range layer {
			for _, next := range dependents[id] {
				indegree[next]--
				if indegree[next] == 0 {
					ready = append(ready, next)
				}
			}
		}
		layers = append(layers, layer)
	}

	if placed != len(p.Resources) {
		return nil, fmt.Errorf("plan %q has a dependency cycle", p.ID)
	}
	return layers, nil
}

// ParsePlanYAML parses and validates a plan from YAML.
func ParsePlanYAML(data []byte) (PlanConfig, error) {
	var p PlanConfig
	if err := yaml.Unmarshal(data, &p); err != nil {
		return PlanConfig{}, fmt.Errorf("yaml unmarshal: %w", err)
	}
	if err := p.Validate(); err != nil {
		return PlanConfig{}, err
	}
	return p, nil
}

// ParsePlanJSON parses and validates a plan from JSON.
func ParsePlanJSON(data []byte) (PlanConfig, error) {
	var p PlanConfig
	if err := json.Unmarshal(data, &p); err != nil {
		return PlanConfig{}, fmt.Errorf("json unmarshal: %w", err)
	}
	if err := p.Validate(); err != nil {
		return PlanConfig{}, err
	}
	return p, nil
}
