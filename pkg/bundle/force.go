package bundle

import "math"

type particle struct {
	x, y   float64
	vx, vy float64
	pinned bool
}

type spring struct {
	a, b int
	rest float64
}

// system holds the particles of all paths in one flat slice. Path i owns
// particles[offsets[i]:offsets[i+1]].
type system struct {
	particles []particle
	springs   []spring
	offsets   []int

	// reach limits the many-body force to closer pairs. Zero means no limit.
	reach float64
	grid  map[cell][]int
}

// cell is a square of side reach in the charge grid.
type cell struct{ x, y int }

func newSystem(paths []Path, reach float64) *system {
	sys := &system{offsets: make([]int, 0, len(paths)+1), reach: reach}
	for _, p := range paths {
		base := len(sys.particles)
		sys.offsets = append(sys.offsets, base)
		last := len(p.Points) - 1
		rest := Segment{Source: p.Source(), Target: p.Target()}.Length() / float64(last)
		for i, pt := range p.Points {
			sys.particles = append(sys.particles, particle{x: pt.X, y: pt.Y, pinned: i == 0 || i == last})
			if i > 0 {
				sys.springs = append(sys.springs, spring{a: base + i - 1, b: base + i, rest: rest})
			}
		}
	}
	sys.offsets = append(sys.offsets, len(sys.particles))
	return sys
}

// tick applies spring and many-body forces scaled by alpha, then integrates
// velocities. It returns the total distance moved by all particles.
func (sys *system) tick(p Params, alpha float64) float64 {
	sys.applySprings(p.LinkStrength * alpha)
	sys.applyCharge(p.ChargeStrength * alpha)
	return sys.integrate(1 - p.VelocityDecay)
}

func (sys *system) applySprings(strength float64) {
	ps := sys.particles
	for _, s := range sys.springs {
		a, b := &ps[s.a], &ps[s.b]
		dx := b.x + b.vx - a.x - a.vx
		dy := b.y + b.vy - a.y - a.vy
		l := math.Hypot(dx, dy)
		if l == 0 {
			continue
		}
		k := (l - s.rest) / l * strength / 2
		dx, dy = dx*k, dy*k
		b.vx -= dx
		b.vy -= dy
		a.vx += dx
		a.vy += dy
	}
}

// applyCharge applies the many-body force. With a reach, particles are
// bucketed into cells of that size so each particle only visits the 3x3
// block of cells around it.
func (sys *system) applyCharge(strength float64) {
	if strength == 0 {
		return
	}
	if sys.reach <= 0 {
		sys.chargeAll(strength)
		return
	}

	grid := make(map[cell][]int, len(sys.grid))
	for i := range sys.particles {
		c := sys.cellOf(i)
		grid[c] = append(grid[c], i)
	}
	sys.grid = grid

	max2 := sys.reach * sys.reach
	for i := range sys.particles {
		c := sys.cellOf(i)
		for dx := -1; dx <= 1; dx++ {
			for dy := -1; dy <= 1; dy++ {
				for _, j := range grid[cell{c.x + dx, c.y + dy}] {
					if j > i {
						sys.charge(i, j, strength, max2)
					}
				}
			}
		}
	}
}

func (sys *system) chargeAll(strength float64) {
	for i := range sys.particles {
		for j := i + 1; j < len(sys.particles); j++ {
			sys.charge(i, j, strength, 0)
		}
	}
}

func (sys *system) cellOf(i int) cell {
	pt := &sys.particles[i]
	return cell{int(math.Floor(pt.x / sys.reach)), int(math.Floor(pt.y / sys.reach))}
}

// charge applies the many-body force between particles i and j. Pairs at or
// beyond sqrt(max2) are skipped unless max2 is zero.
func (sys *system) charge(i, j int, strength, max2 float64) {
	a, b := &sys.particles[i], &sys.particles[j]
	if a.pinned && b.pinned {
		return
	}
	dx := b.x - a.x
	dy := b.y - a.y
	l2 := dx*dx + dy*dy
	if l2 == 0 || (max2 > 0 && l2 >= max2) {
		return
	}
	// Soften very close pairs so the force stays bounded.
	if l2 < 1 {
		l2 = math.Sqrt(l2)
	}
	w := strength / l2
	a.vx += dx * w
	a.vy += dy * w
	b.vx -= dx * w
	b.vy -= dy * w
}

func (sys *system) integrate(keep float64) float64 {
	var moved float64
	for i := range sys.particles {
		pt := &sys.particles[i]
		if pt.pinned {
			pt.vx, pt.vy = 0, 0
			continue
		}
		pt.vx *= keep
		pt.vy *= keep
		pt.x += pt.vx
		pt.y += pt.vy
		moved += math.Hypot(pt.vx, pt.vy)
	}
	return moved
}

// writeTo copies particle positions into the matching path points. Pinned
// particles never move, so endpoints are written back unchanged.
func (sys *system) writeTo(paths []Path) {
	for i := range paths {
		pts := sys.particles[sys.offsets[i]:sys.offsets[i+1]]
		for j := range pts {
			if pts[j].pinned {
				continue
			}
			paths[i].Points[j] = Point{X: pts[j].x, Y: pts[j].y}
		}
	}
}
