package bundle

import "math"

// Point is a planar position.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Segment is the straight line a link would be drawn along before bundling.
// LinkIndex identifies the link in the caller's link list.
type Segment struct {
	LinkIndex int   `json:"link"`
	Source    Point `json:"source"`
	Target    Point `json:"target"`
}

// Length returns the Euclidean length of the segment.
func (s Segment) Length() float64 {
	return math.Hypot(s.Target.X-s.Source.X, s.Target.Y-s.Source.Y)
}

// Path is a subdivided segment: [source, p1, ..., pn, target].
//
// The first and last point are pinned to the segment's endpoints; the
// Interior points in between are moved by the simulation.
type Path struct {
	LinkIndex int     `json:"link"`
	Points    []Point `json:"points"`
	Interior  int     `json:"interior"`
}

// Source returns the pinned first point.
func (p Path) Source() Point { return p.Points[0] }

// Target returns the pinned last point.
func (p Path) Target() Point { return p.Points[len(p.Points)-1] }

func (p Path) clone() Path {
	p.Points = append([]Point(nil), p.Points...)
	return p
}

// Diagonal returns the diagonal of the bounding box spanned by the endpoints
// of all segments with non-zero length.
func Diagonal(segments []Segment) float64 {
	var (
		minX, minY = math.Inf(1), math.Inf(1)
		maxX, maxY = math.Inf(-1), math.Inf(-1)
		found      bool
	)
	for _, s := range segments {
		if s.Length() == 0 {
			continue
		}
		found = true
		for _, p := range [2]Point{s.Source, s.Target} {
			minX, maxX = min(minX, p.X), max(maxX, p.X)
			minY, maxY = min(minY, p.Y), max(maxY, p.Y)
		}
	}
	if !found {
		return 0
	}
	return math.Hypot(maxX-minX, maxY-minY)
}

// Subdivide splits every segment into a path with
// p.InteriorPoints(length, Diagonal(segments)) evenly spaced interior points.
//
// Zero-length segments are skipped: they produce no path, so the result may
// be shorter than segments. Paths keep the segments' order.
func Subdivide(segments []Segment, p Params) []Path {
	diagonal := Diagonal(segments)
	paths := make([]Path, 0, len(segments))
	for _, s := range segments {
		length := s.Length()
		if length == 0 {
			continue
		}
		n := p.InteriorPoints(length, diagonal)
		pts := make([]Point, n+2)
		for i := range pts {
			t := float64(i) / float64(n+1)
			pts[i] = Point{
				X: s.Source.X + t*(s.Target.X-s.Source.X),
				Y: s.Source.Y + t*(s.Target.Y-s.Source.Y),
			}
		}
		// Pin exactly, independent of interpolation rounding.
		pts[0], pts[n+1] = s.Source, s.Target
		paths = append(paths, Path{LinkIndex: s.LinkIndex, Points: pts, Interior: n})
	}
	return paths
}
