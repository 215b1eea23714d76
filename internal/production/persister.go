// Package production provides production integrations for the release-plan
// engine: trace persistence, event publishing, visualization.
package production

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"

	"github.com/comalice/scopex/internal/core"
)

// Format selects the on-disk encoding of persisted traces.
type Format string

const (
	FormatJSON    Format = "json"
	FormatYAML    Format = "yaml"
	FormatMsgpack Format = "msgpack"
)

// ErrTraceNotFound is returned by Load when no trace exists for a plan.
var ErrTraceNotFound = errors.New("trace not found")

// FilePersister stores engine traces as one file per plan ID, in the
// configured format. JSON and YAML for inspectability, msgpack for compact
// binary archives.
type FilePersister struct {
	dir    string
	format Format
}

// NewFilePersister creates a FilePersister, ensuring the directory exists.
func NewFilePersister(dir string, format Format) (*FilePersister, error) {
	switch format {
	case FormatJSON, FormatYAML, FormatMsgpack:
	default:
		return nil, fmt.Errorf("unknown trace format %q", format)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return &FilePersister{dir: dir, format: format}, nil
}

// Save writes the trace, replacing any previous trace for the same plan.
func (p *FilePersister) Save(ctx context.Context, trace core.Trace) error {
	data, err := p.marshal(trace)
	if err != nil {
		return fmt.Errorf("%s marshal: %w", p.format, err)
	}
	fn := p.path(trace.PlanID)
	if err := os.WriteFile(fn, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", fn, err)
	}
	return nil
}

// Load reads the trace for planID.
func (p *FilePersister) Load(ctx context.Context, planID string) (core.Trace, error) {
	fn := p.path(planID)
	data, err := os.ReadFile(fn)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return core.Trace{}, fmt.Errorf("%w: %s", ErrTraceNotFound, planID)
		}
		return core.Trace{}, fmt.Errorf("read %s: %w", fn, err)
	}
	var trace core.Trace
	if err := p.unmarshal(data, &trace); err != nil {
		return core.Trace{}, fmt.Errorf("%s unmarshal: %w", p.format, err)
	}
	return trace, nil
}

func (p *FilePersister) path(planID string) string {
	return filepath.Join(p.dir, planID+"."+string(p.format))
}

func (p *FilePersister) marshal(trace core.Trace) ([]byte, error) {
	switch p.format {
	case FormatYAML:
		return yaml.Marshal(trace)
	case FormatMsgpack:
		return msgpack.Marshal(trace)
	default:
		return json.MarshalIndent(trace, "", "  ")
	}
}

func (p *FilePersister) unmarshal(data []byte, trace *core.Trace) error {
	switch p.format {
	case FormatYAML:
		return yaml.Unmarshal(data, trace)
	case FormatMsgpack:
		return msgpack.Unmarshal(data, trace)
	default:
		return json.Unmarshal(data, trace)
	}
}
