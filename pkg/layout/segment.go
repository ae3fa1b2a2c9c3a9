package layout

import (
	"math"

	"github.com/matzehuels/flowmap/pkg/bundle"
)

// Point is a planar position.
type Point = bundle.Point

// TaperOptions turns a link into a quadrilateral that widens from its
// source to its target.
type TaperOptions struct {
	Enabled bool `json:"enabled" yaml:"enabled" toml:"enabled"`

	// Fraction is the start half-width relative to the end half-width.
	Fraction float64 `json:"fraction,omitempty" yaml:"fraction,omitempty" toml:"fraction,omitempty"`

	// Floor is the smallest start half-width.
	Floor float64 `json:"floor,omitempty" yaml:"floor,omitempty" toml:"floor,omitempty"`
}

// ArrowOptions shortens links so an arrowhead drawn at the end lands on the
// target anchor.
type ArrowOptions struct {
	Enabled bool `json:"enabled" yaml:"enabled" toml:"enabled"`

	// Scale is the arrowhead length as a multiple of the link width.
	Scale float64 `json:"scale,omitempty" yaml:"scale,omitempty" toml:"scale,omitempty"`
}

// Backoff returns the distance the end point moves back for a link of the
// given width.
func (a ArrowOptions) Backoff(width float64) float64 {
	if !a.Enabled {
		return 0
	}
	return width * a.Scale
}

// Geometry is the drawable shape of one non-bundled link.
type Geometry struct {
	// Path is [start, end], or a single point for a zero-length link.
	Path []Point
	// Polygon is the tapered outline [start+, end+, end-, start-], or nil
	// when tapering is off or the link has zero length.
	Polygon []Point
}

// SegmentGeometry computes the geometry of a straight link from a to b with
// the given stroke width.
func SegmentGeometry(a, b Point, width float64, taper TaperOptions, arrows ArrowOptions) Geometry {
	b = TrimEnd(a, b, arrows.Backoff(width))
	if a == b {
		return Geometry{Path: []Point{a}}
	}
	g := Geometry{Path: []Point{a, b}}
	if taper.Enabled {
		g.Polygon = TaperPolygon(a, b, width, taper.Fraction, taper.Floor)
	}
	return g
}

// TrimEnd moves b towards a by d, clamped to the segment's length.
func TrimEnd(a, b Point, d float64) Point {
	length := math.Hypot(b.X-a.X, b.Y-a.Y)
	if length == 0 || d <= 0 {
		return b
	}
	if d >= length {
		return a
	}
	t := (length - d) / length
	return Point{X: a.X + (b.X-a.X)*t, Y: a.Y + (b.Y-a.Y)*t}
}

// TaperPolygon returns the quadrilateral of a link from a to b whose
// half-width grows from max(width/2*fraction, floor) at a to width/2 at b.
// The start half-width never exceeds the end half-width. It returns nil for
// a zero-length segment.
func TaperPolygon(a, b Point, width, fraction, floor float64) []Point {
	dx, dy := b.X-a.X, b.Y-a.Y
	length := math.Hypot(dx, dy)
	if length == 0 {
		return nil
	}
	nx, ny := -dy/length, dx/length

	end := width / 2
	start := min(max(end*fraction, floor), end)

	return []Point{
		{X: a.X + nx*start, Y: a.Y + ny*start},
		{X: b.X + nx*end, Y: b.Y + ny*end},
		{X: b.X - nx*end, Y: b.Y - ny*end},
		{X: a.X - nx*start, Y: a.Y - ny*start},
	}
}
