package cache

import "strings"

// Keyer derives cache keys. Keys embed a type prefix ("layout",
// "artifact") that [KeyType] recovers for metrics labels.
type Keyer interface {
	// LayoutKey identifies a layout of the document with the given hash.
	LayoutKey(inputHash string, opts LayoutKeyOpts) string
	// ArtifactKey identifies a rendered artifact of the layout with the given hash.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// LayoutKeyOpts holds every option that changes layout output.
type LayoutKeyOpts struct {
	Bidirectional bool    `json:"bidirectional"`
	EdgeBundling  bool    `json:"edge_bundling"`
	WidthMin      float64 `json:"width_min"`
	WidthMax      float64 `json:"width_max"`
	Taper         bool    `json:"taper"`
	TaperFraction float64 `json:"taper_fraction"`
	TaperFloor    float64 `json:"taper_floor"`
	Arrows        bool    `json:"arrows"`
	ArrowScale    float64 `json:"arrow_scale"`

	// Bundling carries the simulation parameters; any JSON-marshalable
	// value works since only its encoding enters the hash.
	Bundling any `json:"bundling,omitempty"`
}

// ArtifactKeyOpts holds every option that changes rendered output.
type ArtifactKeyOpts struct {
	Format    string `json:"format"`
	Detailed  bool   `json:"detailed"`
	Midpoints bool   `json:"midpoints"`
}

// DefaultKeyer hashes key options with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// LayoutKey returns "layout:<sha256>".
func (DefaultKeyer) LayoutKey(inputHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", inputHash, opts)
}

// ArtifactKey returns "artifact:<sha256>".
func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}

// KeyType returns the type prefix of a key produced by a Keyer, ignoring
// any scope prefix. Keys without a prefix report "unknown".
func KeyType(key string) string {
	i := strings.LastIndexByte(key, ':')
	if i <= 0 {
		return "unknown"
	}
	prefix := key[:i]
	if j := strings.LastIndexByte(prefix, ':'); j >= 0 {
		prefix = prefix[j+1:]
	}
	if prefix == "" {
		return "unknown"
	}
	return prefix
}
