package graph

import (
	"encoding/json"
	"fmt"
	"os"

	flowerr "github.com/matzehuels/flowmap/pkg/errors"
	"github.com/matzehuels/flowmap/pkg/layout"
)

// =============================================================================
// Layout Conversion
// =============================================================================

// FromResult converts a layout result for serialization. When the result
// carries a bundling simulation its current paths and outcome are included.
func FromResult(r *layout.Result) Layout {
	out := Layout{
		Nodes:  r.Nodes,
		Links:  r.Links,
		Routes: r.Routes,
		Stats: Stats{
			Nodes: len(r.Nodes),
			Links: len(r.Links),
			Scale: r.Scale,
		},
	}
	for _, n := range r.Nodes {
		if n.Synthetic {
			out.Stats.Midpoints++
		}
	}
	if sim := r.Simulation; sim != nil {
		out.Stats.Bundled = true
		out.Stats.Ticks = sim.Ticks()
		out.Stats.Alpha = sim.Alpha()
		if reason := sim.Reason(); reason != "" {
			out.Stats.EndReason = string(reason)
		} else {
			out.Stats.EndReason = sim.State().String()
		}
	}
	return out
}

// Validate checks that every link names nodes present in the layout.
func (l *Layout) Validate() error {
	ids := make(map[string]struct{}, len(l.Nodes))
	for _, n := range l.Nodes {
		ids[n.ID] = struct{}{}
	}
	for i, link := range l.Links {
		for _, id := range [2]string{link.Source, link.Target} {
			if _, ok := ids[id]; !ok {
				return flowerr.New(flowerr.ErrCodeInvalidFormat, "link %d references node %q not in layout", i, id)
			}
		}
	}
	return nil
}

// =============================================================================
// Layout Serialization API
// =============================================================================

// MarshalLayout serializes a Layout to indented JSON.
func MarshalLayout(l Layout) ([]byte, error) {
	return json.MarshalIndent(l, "", "  ")
}

// UnmarshalLayout deserializes and validates a Layout.
func UnmarshalLayout(data []byte) (Layout, error) {
	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return Layout{}, flowerr.Wrap(flowerr.ErrCodeInvalidFormat, err, "unmarshal layout")
	}
	if err := l.Validate(); err != nil {
		return Layout{}, err
	}
	return l, nil
}

// WriteLayoutFile writes a Layout to a JSON file.
func WriteLayoutFile(l Layout, path string) error {
	data, err := MarshalLayout(l)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadLayoutFile reads a Layout from a JSON file.
func ReadLayoutFile(path string) (Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Layout{}, fmt.Errorf("read %s: %w", path, err)
	}
	return UnmarshalLayout(data)
}
