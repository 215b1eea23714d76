package production

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/comalice/scopex/internal/primitives"
)

// DefaultVisualizer renders a release plan's dependency graph.
type DefaultVisualizer struct{}

// ExportDOT generates Graphviz DOT source for the plan. Resources in
// released are drawn dimmed, so a partially unwound scope is visible at a
// glance.
func (v *DefaultVisualizer) ExportDOT(plan primitives.PlanConfig, released []string) string {
	var buf bytes.Buffer
	buf.WriteString("digraph ReleasePlan {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  node [shape=box, fontsize=10, style=rounded];\n")
	buf.WriteString("  edge [fontsize=9, label=\"after\"];\n")

	done := make(map[string]bool, len(released))
	for _, id := range released {
		done[id] = true
	}

	ids := make([]string, 0, len(plan.Resources))
	for id := range plan.Resources {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		res := plan.Resources[id]
		label := id
		if res.Description != "" {
			label = fmt.Sprintf("%s\\n%s", id, res.Description)
		}
		if done[id] {
			fmt.Fprintf(&buf, "  %q [label=%q, style=\"rounded,dashed\", color=gray];\n", id, label)
		} else {
			fmt.Fprintf(&buf, "  %q [label=%q];\n", id, label)
		}
	}
	for _, id := range ids {
		for _, dep := range plan.Resources[id].After {
			fmt.Fprintf(&buf, "  %q -> %q;\n", id, dep)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

// ExportJSON serializes the plan to JSON.
func (v *DefaultVisualizer) ExportJSON(plan primitives.PlanConfig) ([]byte, error) {
	return json.MarshalIndent(plan, "", "  ")
}
