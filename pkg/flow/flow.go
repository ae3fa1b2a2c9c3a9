package flow

import (
	"errors"
	"fmt"
	"slices"

	flowerr "github.com/matzehuels/flowmap/pkg/errors"
)

var (
	// ErrMissingNode is returned by [Graph.AddLink] and [Build] when a link
	// references a node ID that is not part of the graph. The returned error
	// names the unresolved ID.
	ErrMissingNode = errors.New("missing node")

	// ErrDuplicateNode is returned by [Graph.AddNode] when a node with the
	// same ID already exists. Node IDs must be unique.
	ErrDuplicateNode = errors.New("duplicate node")

	// ErrNonPositiveValue is returned by [Graph.AddLink] for links whose
	// value is zero or negative. [Build] drops such links before they reach
	// the model, so callers of Build never see it.
	ErrNonPositiveValue = errors.New("link value must be positive")
)

// NodeKind distinguishes between caller-supplied anchors and synthetic
// nodes created while resolving bidirectional routes.
type NodeKind int

const (
	// NodeKindRegular is an anchor supplied by the caller (typically a
	// region centroid).
	NodeKindRegular NodeKind = iota
	// NodeKindMidpoint is a synthetic node placed halfway along a route that
	// carries flow in both directions. It lives for a single layout pass.
	NodeKindMidpoint
)

// String returns the serialized name of the kind.
func (k NodeKind) String() string {
	switch k {
	case NodeKindMidpoint:
		return "midpoint"
	default:
		return "regular"
	}
}

// RawNode is a node as supplied by the caller: an ID and an already
// projected planar anchor.
type RawNode struct {
	ID   string   `json:"id" yaml:"id" toml:"id"`
	X    float64  `json:"x" yaml:"x" toml:"x"`
	Y    float64  `json:"y" yaml:"y" toml:"y"`
	Kind NodeKind `json:"-" yaml:"-" toml:"-"`
}

// RawLink is a directed flow as supplied by the caller. Source and Target
// are node IDs, not references.
//
// Origin is set by route resolution on midpoint half-links and names the
// real node the flow leaves from. It is empty for ordinary links.
type RawLink struct {
	Source string  `json:"source" yaml:"source" toml:"source"`
	Target string  `json:"target" yaml:"target" toml:"target"`
	Value  float64 `json:"value" yaml:"value" toml:"value"`
	Origin string  `json:"origin,omitempty" yaml:"origin,omitempty" toml:"origin,omitempty"`
}

// Node is a resolved anchor with its incident links.
//
// X and Y are never modified by the layout. Depth and Height are filled in
// by layering, Y0 and Y1 by the breadth stage.
type Node struct {
	ID   string
	X, Y float64
	Kind NodeKind

	// Value is the larger of the node's outgoing and incoming totals.
	Value float64

	SourceLinks []*Link // outgoing, in link input order
	TargetLinks []*Link // incoming, in link input order

	Depth  int
	Height int

	Y0, Y1 float64

	in, out float64
	index   int
}

// Index returns the node's position in input order. Synthetic nodes are
// indexed after every caller-supplied node.
func (n *Node) Index() int { return n.index }

// IsSynthetic reports whether the node was created during route resolution.
func (n *Node) IsSynthetic() bool { return n.Kind != NodeKindRegular }

// OutValue returns the sum of outgoing link values.
func (n *Node) OutValue() float64 { return n.out }

// InValue returns the sum of incoming link values.
func (n *Node) InValue() float64 { return n.in }

// Incident returns the outgoing links followed by the incoming links.
// The returned slice is new; the node's own slices are not shared.
func (n *Node) Incident() []*Link {
	out := make([]*Link, 0, len(n.SourceLinks)+len(n.TargetLinks))
	out = append(out, n.SourceLinks...)
	return append(out, n.TargetLinks...)
}

// Link is a resolved directed flow between two nodes of the same graph.
//
// Width is derived from the global width scale; Y0 and Y1 are the centers of
// the link's band at the source and target node respectively.
type Link struct {
	Source *Node
	Target *Node
	Value  float64
	Origin string

	Width  float64
	Y0, Y1 float64

	index int
}

// Index returns the link's position in input order.
func (l *Link) Index() int { return l.index }

// Other returns the endpoint of l that is not n. For a self loop it returns n.
func (l *Link) Other(n *Node) *Node {
	if l.Source == n {
		return l.Target
	}
	return l.Source
}

// Graph is a flow graph with resolved link endpoints.
//
// The zero value is not usable - use [New] or [Build].
// Graph is not safe for concurrent use; a layout pass owns its graph.
type Graph struct {
	nodes []*Node
	byID  map[string]*Node
	links []*Link
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{byID: make(map[string]*Node)}
}

// Build normalizes raw input into a linked graph.
//
// Every link with a non-positive value is dropped before entering the model.
// A link that references an ID absent from nodes fails the whole build with
// an error naming that ID; no partial graph is returned.
func Build(nodes []RawNode, links []RawLink) (*Graph, error) {
	g := New()
	for _, n := range nodes {
		if _, err := g.AddNode(n); err != nil {
			return nil, err
		}
	}
	for _, l := range links {
		if err := flowerr.ValidateValue(l.Source, l.Target, l.Value); err != nil {
			return nil, err
		}
		if l.Value <= 0 {
			continue
		}
		if _, err := g.AddLink(l); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// AddNode adds a node and returns its resolved form.
// Returns an INVALID_INPUT error for empty IDs or non-finite coordinates and
// a DUPLICATE_NODE error wrapping [ErrDuplicateNode] for repeated IDs.
func (g *Graph) AddNode(raw RawNode) (*Node, error) {
	if err := flowerr.ValidateNodeID(raw.ID); err != nil {
		return nil, err
	}
	if err := flowerr.ValidateCoordinate(raw.ID, "x", raw.X); err != nil {
		return nil, err
	}
	if err := flowerr.ValidateCoordinate(raw.ID, "y", raw.Y); err != nil {
		return nil, err
	}
	if _, exists := g.byID[raw.ID]; exists {
		return nil, flowerr.Wrap(flowerr.ErrCodeDuplicateNode, ErrDuplicateNode, "node %q", raw.ID)
	}

	n := &Node{
		ID:    raw.ID,
		X:     raw.X,
		Y:     raw.Y,
		Kind:  raw.Kind,
		index: len(g.nodes),
	}
	g.nodes = append(g.nodes, n)
	g.byID[n.ID] = n
	return n, nil
}

// AddLink resolves both endpoints of raw and appends the link to the
// endpoints' link lists.
//
// Returns a MISSING_NODE error wrapping [ErrMissingNode] that names the
// first unresolved ID, or [ErrNonPositiveValue] for zero or negative values.
func (g *Graph) AddLink(raw RawLink) (*Link, error) {
	src, ok := g.byID[raw.Source]
	if !ok {
		return nil, missingNode(raw.Source)
	}
	dst, ok := g.byID[raw.Target]
	if !ok {
		return nil, missingNode(raw.Target)
	}
	if raw.Value <= 0 {
		return nil, fmt.Errorf("link %q -> %q: %w", raw.Source, raw.Target, ErrNonPositiveValue)
	}

	l := &Link{
		Source: src,
		Target: dst,
		Value:  raw.Value,
		Origin: raw.Origin,
		index:  len(g.links),
	}
	g.links = append(g.links, l)

	src.SourceLinks = append(src.SourceLinks, l)
	src.out += l.Value
	src.Value = max(src.out, src.in)

	dst.TargetLinks = append(dst.TargetLinks, l)
	dst.in += l.Value
	dst.Value = max(dst.out, dst.in)

	return l, nil
}

func missingNode(id string) error {
	return flowerr.Wrap(flowerr.ErrCodeMissingNode, ErrMissingNode, "link references unknown node %q", id)
}

// Node returns the node with the given ID and true, or nil and false.
func (g *Graph) Node(id string) (*Node, bool) {
	n, ok := g.byID[id]
	return n, ok
}

// Nodes returns all nodes in index order. The slice is a copy; the nodes
// are shared with the graph.
func (g *Graph) Nodes() []*Node { return slices.Clone(g.nodes) }

// Links returns all links in index order. The slice is a copy; the links
// are shared with the graph.
func (g *Graph) Links() []*Link { return slices.Clone(g.links) }

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// LinkCount returns the number of links.
func (g *Graph) LinkCount() int { return len(g.links) }

// Sources returns nodes with no incoming links, in index order.
func (g *Graph) Sources() []*Node {
	var sources []*Node
	for _, n := range g.nodes {
		if len(n.TargetLinks) == 0 {
			sources = append(sources, n)
		}
	}
	return sources
}

// Sinks returns nodes with no outgoing links, in index order.
func (g *Graph) Sinks() []*Node {
	var sinks []*Node
	for _, n := range g.nodes {
		if len(n.SourceLinks) == 0 {
			sinks = append(sinks, n)
		}
	}
	return sinks
}

// ValueExtent returns the minimum and maximum link value in the graph.
// Both are zero for a graph without links.
func (g *Graph) ValueExtent() (lo, hi float64) {
	for i, l := range g.links {
		if i == 0 || l.Value < lo {
			lo = l.Value
		}
		if i == 0 || l.Value > hi {
			hi = l.Value
		}
	}
	return lo, hi
}
