// Package nodelink renders layouts as Graphviz node-link diagrams for
// debugging.
//
// The preview is not a flow map: links are straight and nodes are bars.
// It is meant for checking anchors, node breadths and which links exist
// after route resolution, without an external renderer.
//
//	dot := nodelink.ToDOT(layout, nodelink.Options{Detailed: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// Node positions are pinned (pos="x,y!") and laid out with neato, so the
// diagram keeps the geography of the input. SVG output uses
// [github.com/goccy/go-graphviz], which embeds Graphviz and needs no
// system installation.
package nodelink
