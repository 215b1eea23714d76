package core

import "time"

// Trace ops.
const (
	OpAcquire = "acquire"
	OpRelease = "release"
)

// TraceStep records one acquire or release as it happened.
type TraceStep struct {
	ResourceID string        `json:"resourceID" yaml:"resourceID" msgpack:"resourceID"`
	Op         string        `json:"op" yaml:"op" msgpack:"op"`
	Timestamp  time.Time     `json:"timestamp" yaml:"timestamp" msgpack:"timestamp"`
	Duration   time.Duration `json:"duration" yaml:"duration" msgpack:"duration"`
	Err        string        `json:"err,omitempty" yaml:"err,omitempty" msgpack:"err,omitempty"`
}

// Trace is the serializable audit trail of one engine run. Steps appear in
// execution order, so a well-formed trace shows every release in the exact
// reverse of its acquires.
type Trace struct {
	PlanID string      `json:"planID" yaml:"planID" msgpack:"planID"`
	Start  time.Time   `json:"start" yaml:"start" msgpack:"start"`
	End    time.Time   `json:"end" yaml:"end" msgpack:"end"`
	Steps  []TraceStep `json:"steps" yaml:"steps" msgpack:"steps"`
}

func (t *Trace) append(step TraceStep) {
	t.Steps = append(t.Steps, step)
}

// Releases returns the resource IDs of all release steps in execution order.
func (t *Trace) Releases() []string {
	var ids []string
	for _, s := range t.Steps {
		if s.Op == OpRelease {
			ids = append(ids, s.ResourceID)
		}
	}
	return ids
}

// Acquires returns the resource IDs of all acquire steps in execution order.
func (t *Trace) Acquires() []string {
	var ids []string
	for _, s := range t.Steps {
		if s.Op == OpAcquire {
			ids = append(ids, s.ResourceID)
		}
	}
	return ids
}
