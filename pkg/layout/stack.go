package layout

import "github.com/matzehuels/flowmap/pkg/flow"

// StackLinks assigns each link's band centers Y0 (at its source) and Y1 (at
// its target).
//
// For every node, all incident links are ordered once with order. Outgoing
// and incoming links are then stacked separately in that order, each side
// accumulating widths downwards from the node's Y0. The wider side tiles
// [Y0, Y1] exactly; the narrower side is contiguous from Y0.
//
// ComputeBreadths must run first.
func StackLinks(g *flow.Graph, order Order) {
	for _, n := range g.Nodes() {
		out, in := n.Y0, n.Y0
		for _, l := range OrderLinks(n, n.Incident(), order) {
			if l.Source == n {
				l.Y0 = out + l.Width/2
				out += l.Width
				continue
			}
			l.Y1 = in + l.Width/2
			in += l.Width
		}
	}
}
