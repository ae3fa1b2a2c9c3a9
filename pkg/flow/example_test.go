package flow_test

import (
	"fmt"

	"github.com/matzehuels/flowmap/pkg/flow"
)

func ExampleBuild() {
	nodes := []flow.RawNode{
		{ID: "DE", X: 10, Y: 20},
		{ID: "FR", X: 0, Y: 30},
		{ID: "IT", X: 15, Y: 45},
	}
	links := []flow.RawLink{
		{Source: "DE", Target: "FR", Value: 120},
		{Source: "DE", Target: "IT", Value: 80},
		{Source: "FR", Target: "IT", Value: 0}, // dropped: not part of the flow
	}

	g, err := flow.Build(nodes, links)
	if err != nil {
		fmt.Println("Error:", err)
		return
	}

	de, _ := g.Node("DE")
	fmt.Println("links:", g.LinkCount())
	fmt.Println("DE outgoing:", len(de.SourceLinks), "value:", de.Value)
	// Output:
	// links: 2
	// DE outgoing: 2 value: 200
}

func ExampleBuild_missingNode() {
	_, err := flow.Build(
		[]flow.RawNode{{ID: "A"}, {ID: "B"}},
		[]flow.RawLink{{Source: "A", Target: "Z", Value: 1}},
	)
	fmt.Println(err)
	// Output:
	// MISSING_NODE: link references unknown node "Z": missing node
}
