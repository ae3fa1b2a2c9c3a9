package transform

import (
	"fmt"

	flowerr "github.com/matzehuels/flowmap/pkg/errors"
	"github.com/matzehuels/flowmap/pkg/flow"
)

// Route aggregates every link between one unordered pair of nodes.
//
// A is the endpoint with the lexicographically smaller ID. FlowAB is the
// exact sum of all positive A→B link values, FlowBA the sum of all B→A
// values.
type Route struct {
	Key    string       `json:"key"`
	A      flow.RawNode `json:"a"`
	B      flow.RawNode `json:"b"`
	FlowAB float64      `json:"flow_ab"`
	FlowBA float64      `json:"flow_ba"`
}

// Bidirectional reports whether the route carries flow both ways.
func (r Route) Bidirectional() bool { return r.FlowAB > 0 && r.FlowBA > 0 }

// Midpoint returns the arithmetic mean of the route's endpoint anchors.
func (r Route) Midpoint() (x, y float64) {
	return (r.A.X + r.B.X) / 2, (r.A.Y + r.B.Y) / 2
}

// Resolution is the output of [ResolveRoutes]: the node set extended with
// synthetic midpoints and the aggregated link set.
type Resolution struct {
	Nodes  []flow.RawNode
	Links  []flow.RawLink
	Routes []Route

	// Midpoints is the number of synthetic nodes appended to Nodes.
	Midpoints int
}

// RouteKey returns the canonical key of the unordered pair {a, b}.
func RouteKey(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + "|" + b
}

// ResolveRoutes collapses all links between each unordered pair of nodes
// into one route and re-emits the route as links that no longer form
// two-node cycles.
//
// For every route:
//   - flow both ways: a midpoint node is placed at the mean of the two
//     anchors and two half-links are emitted, midpoint→B carrying FlowAB
//     and midpoint→A carrying FlowBA. Each half-link's Origin names the
//     real node the flow leaves from.
//   - flow one way: a single direct link carries the total.
//   - no positive flow: the route is dropped.
//
// Routes are processed in order of first appearance, so identical input
// yields identical output. Self loops are passed through unchanged; they are
// not routes and are left for layering to reject. Links with a non-positive
// value are dropped before their endpoints are looked up, as in [flow.Build].
//
// # Node IDs
//
// Midpoint nodes are assigned IDs of the form "A|B#mid". If that collides
// with an existing ID a numeric suffix is appended ("A|B#mid__2").
//
// # Errors
//
// A link naming an ID absent from nodes returns a MISSING_NODE error that
// names the ID. Non-finite values return INVALID_INPUT.
//
// ResolveRoutes does not retain any state: every layout pass rebuilds its
// routes from the current raw link set.
func ResolveRoutes(nodes []flow.RawNode, links []flow.RawLink) (*Resolution, error) {
	byID := make(map[string]flow.RawNode, len(nodes))
	for _, n := range nodes {
		if _, ok := byID[n.ID]; !ok {
			byID[n.ID] = n
		}
	}

	var (
		order  []string
		routes = make(map[string]*Route)
		loops  []flow.RawLink
	)

	for _, l := range links {
		if err := flowerr.ValidateValue(l.Source, l.Target, l.Value); err != nil {
			return nil, err
		}
		if l.Value <= 0 {
			continue
		}
		src, ok := byID[l.Source]
		if !ok {
			return nil, missingNode(l.Source)
		}
		dst, ok := byID[l.Target]
		if !ok {
			return nil, missingNode(l.Target)
		}
		if src.ID == dst.ID {
			loops = append(loops, l)
			continue
		}

		key := RouteKey(src.ID, dst.ID)
		r, ok := routes[key]
		if !ok {
			a, b := src, dst
			if b.ID < a.ID {
				a, b = b, a
			}
			r = &Route{Key: key, A: a, B: b}
			routes[key] = r
			order = append(order, key)
		}
		if src.ID == r.A.ID {
			r.FlowAB += l.Value
		} else {
			r.FlowBA += l.Value
		}
	}

	res := &Resolution{
		Nodes:  append([]flow.RawNode(nil), nodes...),
		Routes: make([]Route, 0, len(order)),
	}
	gen := newIDGen(nodes)

	for _, key := range order {
		r := *routes[key]
		res.Routes = append(res.Routes, r)

		switch {
		case r.Bidirectional():
			mx, my := r.Midpoint()
			mid := flow.RawNode{ID: gen.next(key), X: mx, Y: my, Kind: flow.NodeKindMidpoint}
			res.Nodes = append(res.Nodes, mid)
			res.Midpoints++
			res.Links = append(res.Links,
				flow.RawLink{Source: mid.ID, Target: r.B.ID, Value: r.FlowAB, Origin: r.A.ID},
				flow.RawLink{Source: mid.ID, Target: r.A.ID, Value: r.FlowBA, Origin: r.B.ID},
			)
		case r.FlowAB > 0:
			res.Links = append(res.Links, flow.RawLink{Source: r.A.ID, Target: r.B.ID, Value: r.FlowAB})
		case r.FlowBA > 0:
			res.Links = append(res.Links, flow.RawLink{Source: r.B.ID, Target: r.A.ID, Value: r.FlowBA})
		}
	}
	res.Links = append(res.Links, loops...)

	return res, nil
}

func missingNode(id string) error {
	return flowerr.Wrap(flowerr.ErrCodeMissingNode, flow.ErrMissingNode, "link references unknown node %q", id)
}

type idGen struct {
	used map[string]struct{}
}

func newIDGen(nodes []flow.RawNode) *idGen {
	m := make(map[string]struct{}, len(nodes)*2)
	for _, n := range nodes {
		m[n.ID] = struct{}{}
	}
	return &idGen{used: m}
}

func (gen *idGen) next(key string) string {
	prefix := key + "#mid"
	id := prefix
	for i := 2; ; i++ {
		if _, exists := gen.used[id]; !exists {
			gen.used[id] = struct{}{}
			return id
		}
		id = fmt.Sprintf("%s__%d", prefix, i)
	}
}
