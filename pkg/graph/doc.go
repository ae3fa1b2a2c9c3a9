// Package graph provides the file formats of flowmap: input documents and
// serialized layouts.
//
// # Documents
//
// A [Document] lists anchored nodes, directed links and the layout options
// to apply. It decodes from JSON, YAML or TOML; [ReadDocumentFile] picks the
// decoder by file extension:
//
//	nodes:
//	  - {id: DE, x: 100, y: 80}
//	  - {id: FR, x: 60, y: 120}
//	links:
//	  - {source: DE, target: FR, value: 12}
//	options:
//	  bidirectional: true
//
// Unknown keys are rejected with an INVALID_FORMAT error.
//
// # Layouts
//
// [Layout] is the JSON output of a layout pass: positioned nodes, link
// bands with their paths, the resolved routes and summary [Stats]. Use
// [FromResult] to convert a layout.Result and [MarshalLayout] to encode it.
//
// # Caching
//
// [HashInput] hashes a document's nodes and links independently of the
// encoding they were read from, so the same input in YAML and JSON shares
// cached layouts.
package graph
