package transform

import (
	"errors"

	flowerr "github.com/matzehuels/flowmap/pkg/errors"
	"github.com/matzehuels/flowmap/pkg/flow"
)

// ErrCircularLink is returned by [AssignDepths] and [AssignHeights] when a
// traversal does not terminate within NodeCount()+1 waves. The graph then
// contains a cycle that route resolution did not remove.
var ErrCircularLink = errors.New("circular link")

// AssignLayers runs [AssignDepths] followed by [AssignHeights].
func AssignLayers(g *flow.Graph) error {
	if err := AssignDepths(g); err != nil {
		return err
	}
	return AssignHeights(g)
}

// AssignDepths sets each node's Depth to its longest-path distance from a
// node with no incoming links.
//
// # Algorithm
//
// AssignDepths expands waves instead of recursing, so stack usage does not
// grow with path length:
//  1. The first wave holds every node
//  2. Each node in the current wave takes the wave number as its depth
//  3. The targets of its outgoing links form the next wave
//  4. Repeat until a wave is empty
//
// A node reached by several paths is revisited in later waves and keeps the
// deepest wave number, which is one more than its deepest ancestor.
//
// # Cycles
//
// On an acyclic graph the number of waves never exceeds the node count.
// Exceeding NodeCount()+1 waves returns a CIRCULAR_LINK error wrapping
// [ErrCircularLink]. Bidirectional routes look like two-node cycles and
// must go through [ResolveRoutes] first.
//
// # Performance
//
// Time complexity is O(V·E) in the worst case, O(V + E) for trees.
func AssignDepths(g *flow.Graph) error {
	return relax(g, "depth",
		func(n *flow.Node, wave int) { n.Depth = wave },
		func(n *flow.Node) []*flow.Node { return targets(n.SourceLinks) },
	)
}

// AssignHeights sets each node's Height to its longest-path distance to a
// node with no outgoing links. It mirrors [AssignDepths] along incoming links.
func AssignHeights(g *flow.Graph) error {
	return relax(g, "height",
		func(n *flow.Node, wave int) { n.Height = wave },
		func(n *flow.Node) []*flow.Node { return sources(n.TargetLinks) },
	)
}

func relax(g *flow.Graph, what string, set func(*flow.Node, int), next func(*flow.Node) []*flow.Node) error {
	limit := g.NodeCount()
	current := g.Nodes()

	for wave := 0; len(current) > 0; wave++ {
		if wave > limit {
			return flowerr.Wrap(flowerr.ErrCodeCircularLink, ErrCircularLink,
				"%s traversal exceeded %d waves at node %q", what, limit+1, current[0].ID)
		}

		seen := make(map[*flow.Node]struct{}, len(current))
		var upcoming []*flow.Node
		for _, n := range current {
			set(n, wave)
			for _, m := range next(n) {
				if _, ok := seen[m]; ok {
					continue
				}
				seen[m] = struct{}{}
				upcoming = append(upcoming, m)
			}
		}
		current = upcoming
	}
	return nil
}

func targets(links []*flow.Link) []*flow.Node {
	out := make([]*flow.Node, len(links))
	for i, l := range links {
		out[i] = l.Target
	}
	return out
}

func sources(links []*flow.Link) []*flow.Node {
	out := make([]*flow.Node, len(links))
	for i, l := range links {
		out[i] = l.Source
	}
	return out
}
