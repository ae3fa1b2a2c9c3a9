package layout

import (
	"fmt"

	"github.com/matzehuels/flowmap/pkg/bundle"
	"github.com/matzehuels/flowmap/pkg/flow"
	"github.com/matzehuels/flowmap/pkg/flow/transform"
)

// Node is a positioned node in a layout result.
type Node struct {
	ID        string  `json:"id"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Y0        float64 `json:"y0"`
	Y1        float64 `json:"y1"`
	Depth     int     `json:"depth"`
	Height    int     `json:"height"`
	Value     float64 `json:"value"`
	Synthetic bool    `json:"synthetic,omitempty"`
}

// Breadth returns the node's vertical extent.
func (n Node) Breadth() float64 { return n.Y1 - n.Y0 }

// Link is a positioned link in a layout result. Y0 and Y1 are the band
// centers at the source and target node.
type Link struct {
	Source  string  `json:"source"`
	Target  string  `json:"target"`
	Origin  string  `json:"origin,omitempty"`
	Value   float64 `json:"value"`
	Width   float64 `json:"width"`
	Y0      float64 `json:"y0"`
	Y1      float64 `json:"y1"`
	Path    []Point `json:"path"`
	Polygon []Point `json:"polygon,omitempty"`
}

// Result is the output of one layout pass.
type Result struct {
	// Nodes holds every node with non-zero value, in input order followed
	// by midpoint nodes.
	Nodes []Node `json:"nodes"`

	// Links holds every link that entered the graph, in graph order.
	Links []Link `json:"links"`

	// Routes is set when bidirectional resolution ran.
	Routes []transform.Route `json:"routes,omitempty"`

	// Segments holds the straight segments handed to edge bundling. Each
	// segment's LinkIndex is an index into Links.
	Segments []bundle.Segment `json:"-"`

	// Scale is the link width scale fitted for this pass.
	Scale LinearScale `json:"scale"`

	// Simulation is set by Engine when edge bundling is enabled.
	Simulation *bundle.Simulation `json:"-"`
}

// ApplyPaths replaces the paths of bundled links. Paths whose LinkIndex is
// out of range are ignored.
func (r *Result) ApplyPaths(paths []bundle.Path) {
	for _, p := range paths {
		if p.LinkIndex < 0 || p.LinkIndex >= len(r.Links) {
			continue
		}
		r.Links[p.LinkIndex].Path = append([]Point(nil), p.Points...)
		r.Links[p.LinkIndex].Polygon = nil
	}
}

// Compute runs one synchronous layout pass:
//
//  1. Resolve bidirectional routes (when enabled)
//  2. Build the flow graph
//  3. Assign depths and heights
//  4. Fit the width scale and compute node breadths
//  5. Stack links at each node
//  6. Derive segment geometry, or collect segments for bundling
//
// Any error aborts the pass; no partial result is returned. Compute does not
// start a bundling simulation; use [Engine] for that.
func Compute(nodes []flow.RawNode, links []flow.RawLink, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	result := &Result{}
	if opts.Bidirectional {
		res, err := transform.ResolveRoutes(nodes, links)
		if err != nil {
			return nil, fmt.Errorf("resolve routes: %w", err)
		}
		nodes, links = res.Nodes, res.Links
		result.Routes = res.Routes
	}

	g, err := flow.Build(nodes, links)
	if err != nil {
		return nil, fmt.Errorf("build graph: %w", err)
	}
	if err := transform.AssignLayers(g); err != nil {
		return nil, fmt.Errorf("assign layers: %w", err)
	}

	result.Scale = WidthScale(g, opts.WidthRange)
	ComputeBreadths(g, result.Scale)
	StackLinks(g, opts.Order)

	for _, n := range g.Nodes() {
		if n.Value == 0 {
			continue
		}
		result.Nodes = append(result.Nodes, Node{
			ID:        n.ID,
			X:         n.X,
			Y:         n.Y,
			Y0:        n.Y0,
			Y1:        n.Y1,
			Depth:     n.Depth,
			Height:    n.Height,
			Value:     n.Value,
			Synthetic: n.IsSynthetic(),
		})
	}

	for _, l := range g.Links() {
		a := Point{X: l.Source.X, Y: l.Y0}
		b := Point{X: l.Target.X, Y: l.Y1}
		out := Link{
			Source: l.Source.ID,
			Target: l.Target.ID,
			Origin: l.Origin,
			Value:  l.Value,
			Width:  l.Width,
			Y0:     l.Y0,
			Y1:     l.Y1,
		}
		if opts.EdgeBundling {
			out.Path = SegmentGeometry(a, b, 0, TaperOptions{}, ArrowOptions{}).Path
			result.Segments = append(result.Segments, bundle.Segment{LinkIndex: l.Index(), Source: a, Target: b})
		} else {
			geom := SegmentGeometry(a, b, l.Width, opts.Taper, opts.Arrows)
			out.Path, out.Polygon = geom.Path, geom.Polygon
		}
		result.Links = append(result.Links, out)
	}

	return result, nil
}
