// Package render holds output renderers for flowmap layouts.
//
// Production rendering of flow maps belongs to the consumer of the layout
// JSON. The [nodelink] subpackage provides a Graphviz preview for debugging.
//
// [nodelink]: github.com/matzehuels/flowmap/pkg/render/nodelink
package render
