package layout

import "github.com/matzehuels/flowmap/pkg/flow"

// WidthScale fits one scale over the global link value range of g, so that
// widths are comparable across the whole diagram.
func WidthScale(g *flow.Graph, rng [2]float64) LinearScale {
	lo, hi := g.ValueExtent()
	return NewLinearScale(lo, hi, rng)
}

// ComputeBreadths sets every link's Width from scale and every node's
// vertical extent [Y0, Y1]. The extent is centered on the node's anchor and
// is as tall as the larger of its outgoing and incoming width totals.
func ComputeBreadths(g *flow.Graph, scale LinearScale) {
	for _, l := range g.Links() {
		l.Width = scale.Apply(l.Value)
	}
	for _, n := range g.Nodes() {
		half := max(sideWidth(n.SourceLinks), sideWidth(n.TargetLinks)) / 2
		n.Y0 = n.Y - half
		n.Y1 = n.Y + half
	}
}

func sideWidth(links []*flow.Link) float64 {
	var w float64
	for _, l := range links {
		w += l.Width
	}
	return w
}
