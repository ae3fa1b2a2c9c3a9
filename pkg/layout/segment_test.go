package layout

import (
	"math"
	"testing"
)

func TestTrimEnd(t *testing.T) {
	a := Point{X: 0, Y: 0}
	b := Point{X: 30, Y: 40}
	tests := []struct {
		name string
		d    float64
		want Point
	}{
		{"no backoff", 0, b},
		{"partial", 10, Point{X: 24, Y: 32}},
		{"whole length", 50, a},
		{"beyond length", 80, a},
		{"negative", -5, b},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TrimEnd(a, b, tt.d)
			if math.Abs(got.X-tt.want.X) > tolerance || math.Abs(got.Y-tt.want.Y) > tolerance {
				t.Errorf("TrimEnd(%v) = %v, want %v", tt.d, got, tt.want)
			}
		})
	}
}

func TestArrowBackoff(t *testing.T) {
	tests := []struct {
		arrows ArrowOptions
		width  float64
		want   float64
	}{
		{ArrowOptions{Enabled: true, Scale: 1.5}, 4, 6},
		{ArrowOptions{Enabled: true, Scale: 2}, 4, 8},
		{ArrowOptions{Enabled: false, Scale: 1.5}, 4, 0},
	}
	for _, tt := range tests {
		if got := tt.arrows.Backoff(tt.width); got != tt.want {
			t.Errorf("%+v.Backoff(%v) = %v, want %v", tt.arrows, tt.width, got, tt.want)
		}
	}
}

func TestTaperPolygon(t *testing.T) {
	tests := []struct {
		name      string
		width     float64
		fraction  float64
		floor     float64
		wantStart float64
		wantEnd   float64
	}{
		{"fraction", 16, 0.25, 0.5, 2, 8},
		{"floor", 2, 0.25, 0.5, 0.5, 1},
		{"floor capped at end", 0.6, 0.25, 0.5, 0.3, 0.3},
		{"full fraction", 10, 1, 0.5, 5, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Vertical segment: the normal points along -x.
			poly := TaperPolygon(Point{X: 10, Y: 0}, Point{X: 10, Y: 100}, tt.width, tt.fraction, tt.floor)
			if len(poly) != 4 {
				t.Fatalf("got %d points, want 4", len(poly))
			}
			start := math.Hypot(poly[0].X-poly[3].X, poly[0].Y-poly[3].Y) / 2
			end := math.Hypot(poly[1].X-poly[2].X, poly[1].Y-poly[2].Y) / 2
			if math.Abs(start-tt.wantStart) > tolerance || math.Abs(end-tt.wantEnd) > tolerance {
				t.Errorf("half-widths = %v, %v, want %v, %v", start, end, tt.wantStart, tt.wantEnd)
			}
			if poly[0].Y != 0 || poly[1].Y != 100 {
				t.Errorf("polygon not built on the normal: %v", poly)
			}
		})
	}
}

func TestSegmentGeometry_ZeroLength(t *testing.T) {
	p := Point{X: 3, Y: 4}
	g := SegmentGeometry(p, p, 5, TaperOptions{Enabled: true, Fraction: 0.25, Floor: 0.5}, ArrowOptions{})
	if len(g.Path) != 1 || g.Path[0] != p {
		t.Errorf("Path = %v, want single point %v", g.Path, p)
	}
	if g.Polygon != nil {
		t.Errorf("Polygon = %v, want nil", g.Polygon)
	}
}

func TestSegmentGeometry_ArrowSwallowsSegment(t *testing.T) {
	a, b := Point{X: 0, Y: 0}, Point{X: 5, Y: 0}
	g := SegmentGeometry(a, b, 10, TaperOptions{}, ArrowOptions{Enabled: true, Scale: 1.5})
	if len(g.Path) != 1 || g.Path[0] != a {
		t.Errorf("Path = %v, want [%v]", g.Path, a)
	}
}
