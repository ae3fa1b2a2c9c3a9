package bundle

import (
	"math"
	"testing"
)

func TestInteriorPoints(t *testing.T) {
	p := DefaultParams()
	tests := []struct {
		name     string
		length   float64
		diagonal float64
		want     int
	}{
		{"zero length", 0, 100, 1},
		{"full diagonal", 100, 100, 10},
		{"half diagonal", 50, 100, 6},
		{"a third", 33, 100, 4},
		{"beyond diagonal", 250, 100, 10},
		{"no diagonal", 10, 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.InteriorPoints(tt.length, tt.diagonal); got != tt.want {
				t.Errorf("InteriorPoints(%v, %v) = %d, want %d", tt.length, tt.diagonal, got, tt.want)
			}
		})
	}
}

func TestDiagonal(t *testing.T) {
	segs := []Segment{
		{Source: Point{0, 0}, Target: Point{30, 0}},
		{Source: Point{10, 40}, Target: Point{20, 10}},
		{Source: Point{500, 500}, Target: Point{500, 500}}, // zero length, ignored
	}
	if got := Diagonal(segs); got != 50 {
		t.Errorf("Diagonal() = %v, want 50", got)
	}
	if got := Diagonal(nil); got != 0 {
		t.Errorf("Diagonal(nil) = %v, want 0", got)
	}
}

func TestSubdivide(t *testing.T) {
	segs := []Segment{
		{LinkIndex: 0, Source: Point{0, 0}, Target: Point{100, 0}},
		{LinkIndex: 1, Source: Point{5, 5}, Target: Point{5, 5}},
		{LinkIndex: 2, Source: Point{0, 0}, Target: Point{50, 0}},
	}
	paths := Subdivide(segs, DefaultParams())

	if len(paths) != 2 {
		t.Fatalf("Subdivide() returned %d paths, want 2 (zero-length skipped)", len(paths))
	}
	if paths[0].LinkIndex != 0 || paths[1].LinkIndex != 2 {
		t.Errorf("link indices = %d, %d, want 0, 2", paths[0].LinkIndex, paths[1].LinkIndex)
	}

	long := paths[0]
	if long.Interior != 10 || len(long.Points) != 12 {
		t.Errorf("long path interior = %d points = %d, want 10 and 12", long.Interior, len(long.Points))
	}
	if long.Source() != segs[0].Source || long.Target() != segs[0].Target {
		t.Errorf("endpoints = %v %v, want %v %v", long.Source(), long.Target(), segs[0].Source, segs[0].Target)
	}
	for i := 1; i < len(long.Points); i++ {
		step := long.Points[i].X - long.Points[i-1].X
		if math.Abs(step-100.0/11) > 1e-9 {
			t.Errorf("spacing at %d = %v, want %v", i, step, 100.0/11)
		}
	}

	if short := paths[1]; short.Interior != 6 {
		t.Errorf("short path interior = %d, want 6", short.Interior)
	}
}
