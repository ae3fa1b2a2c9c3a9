package graph

import (
	"path/filepath"
	"strings"

	flowerr "github.com/matzehuels/flowmap/pkg/errors"
	"github.com/matzehuels/flowmap/pkg/flow"
	"github.com/matzehuels/flowmap/pkg/flow/transform"
	"github.com/matzehuels/flowmap/pkg/layout"
)

// =============================================================================
// Formats
// =============================================================================

// Format names a document encoding.
type Format string

// Supported input formats. Layouts are always written as JSON.
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// ParseFormat accepts a format name or file extension ("yml" is YAML).
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "toml":
		return FormatTOML, nil
	}
	return "", flowerr.New(flowerr.ErrCodeUnsupported, "unsupported format %q (must be one of: json, yaml, toml)", s)
}

// FormatFromPath picks the format from the file extension.
func FormatFromPath(path string) (Format, error) {
	ext := filepath.Ext(path)
	if ext == "" {
		return "", flowerr.New(flowerr.ErrCodeUnsupported, "cannot infer format of %q: no file extension", path)
	}
	return ParseFormat(ext)
}

// =============================================================================
// Document - Layout Input
// =============================================================================

// Document is the input format: anchors, flows and the layout options to
// apply. The same structure decodes from JSON, YAML and TOML:
//
//	[[nodes]]
//	id = "DE"
//	x = 100
//	y = 80
//
//	[[links]]
//	source = "DE"
//	target = "FR"
//	value = 12
//
//	[options]
//	bidirectional = true
type Document struct {
	Nodes   []flow.RawNode `json:"nodes" yaml:"nodes" toml:"nodes"`
	Links   []flow.RawLink `json:"links" yaml:"links" toml:"links"`
	Options layout.Options `json:"options" yaml:"options" toml:"options"`
}

// =============================================================================
// Layout - Layout Output
// =============================================================================

// Layout is the serialized result of a layout pass, ready for an external
// renderer.
type Layout struct {
	Nodes  []layout.Node     `json:"nodes"`
	Links  []layout.Link     `json:"links"`
	Routes []transform.Route `json:"routes,omitempty"`
	Stats  Stats             `json:"stats"`
}

// Stats summarizes a layout pass.
type Stats struct {
	Nodes     int                `json:"nodes"`
	Links     int                `json:"links"`
	Midpoints int                `json:"midpoints,omitempty"`
	Scale     layout.LinearScale `json:"scale"`

	// Bundling outcome; empty when edge bundling was off.
	Bundled   bool    `json:"bundled,omitempty"`
	Ticks     int     `json:"ticks,omitempty"`
	Alpha     float64 `json:"alpha,omitempty"`
	EndReason string  `json:"end_reason,omitempty"`
}
