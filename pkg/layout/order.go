package layout

import (
	"cmp"
	"slices"

	"github.com/matzehuels/flowmap/pkg/flow"
)

// Order compares two links incident to n and returns a negative number when
// a stacks above b, a positive number when b stacks above a, and zero when
// their order does not matter. Orders must be deterministic.
type Order func(n *flow.Node, a, b *flow.Link) int

// DefaultOrder stacks a node's links to reduce crossings:
//  1. by the vertical position of the other endpoint, top first
//  2. outgoing before incoming
//  3. larger value first
//  4. by link index, then by the other endpoint's ID
func DefaultOrder(n *flow.Node, a, b *flow.Link) int {
	oa, ob := a.Other(n), b.Other(n)
	if c := cmp.Compare(oa.Y, ob.Y); c != 0 {
		return c
	}
	if c := cmp.Compare(direction(n, a), direction(n, b)); c != 0 {
		return c
	}
	if c := cmp.Compare(b.Value, a.Value); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Index(), b.Index()); c != 0 {
		return c
	}
	return cmp.Compare(oa.ID, ob.ID)
}

func direction(n *flow.Node, l *flow.Link) int {
	if l.Source == n {
		return 0
	}
	return 1
}

// OrderLinks returns links sorted by order from the point of view of n.
// The input slice is not modified. A nil order uses [DefaultOrder].
func OrderLinks(n *flow.Node, links []*flow.Link, order Order) []*flow.Link {
	if order == nil {
		order = DefaultOrder
	}
	out := slices.Clone(links)
	slices.SortStableFunc(out, func(a, b *flow.Link) int { return order(n, a, b) })
	return out
}
