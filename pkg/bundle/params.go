package bundle

import (
	"math"
	"time"

	flowerr "github.com/matzehuels/flowmap/pkg/errors"
)

// Default simulation parameters.
const (
	DefaultMinPoints      = 1
	DefaultMaxPoints      = 10
	DefaultAlphaMin       = 0.001
	DefaultVelocityDecay  = 0.4
	DefaultChargeStrength = 10
	DefaultLinkStrength   = 0.7

	// DefaultReachFraction is the many-body distance limit, as a fraction
	// of the diagram's diagonal, used when DistanceMax is zero.
	DefaultReachFraction = 0.15
)

// DefaultAlphaDecay lets alpha fall from 1 to DefaultAlphaMin in 300 ticks.
var DefaultAlphaDecay = 1 - math.Pow(DefaultAlphaMin, 1.0/300)

// Params configures subdivision and relaxation. Zero-valued fields take
// their defaults in [Params.SetDefaults]; a zero strength or decay therefore
// means "use the default", not "off".
//
// ChargeStrength follows the usual many-body sign convention: positive
// values pull nearby points together, which is what bundles co-routed flows,
// and negative values push them apart. DistanceMax limits the many-body force
// to point pairs closer than the given distance. Zero limits it to
// DefaultReachFraction of the diagram's diagonal; a negative value removes
// the limit, at quadratic cost in the number of points.
type Params struct {
	MinPoints int `json:"min_points,omitempty" yaml:"min_points,omitempty" toml:"min_points,omitempty"`
	MaxPoints int `json:"max_points,omitempty" yaml:"max_points,omitempty" toml:"max_points,omitempty"`

	AlphaDecay     float64 `json:"alpha_decay,omitempty" yaml:"alpha_decay,omitempty" toml:"alpha_decay,omitempty"`
	AlphaMin       float64 `json:"alpha_min,omitempty" yaml:"alpha_min,omitempty" toml:"alpha_min,omitempty"`
	VelocityDecay  float64 `json:"velocity_decay,omitempty" yaml:"velocity_decay,omitempty" toml:"velocity_decay,omitempty"`
	ChargeStrength float64 `json:"charge_strength,omitempty" yaml:"charge_strength,omitempty" toml:"charge_strength,omitempty"`
	LinkStrength   float64 `json:"link_strength,omitempty" yaml:"link_strength,omitempty" toml:"link_strength,omitempty"`
	DistanceMax    float64 `json:"distance_max,omitempty" yaml:"distance_max,omitempty" toml:"distance_max,omitempty"`

	// TickInterval paces ticks when the simulation runs through Start.
	// Zero runs ticks back to back.
	TickInterval time.Duration `json:"-" yaml:"-" toml:"-"`

	// MaxTicks ends the run after the given number of ticks. Zero leaves
	// convergence to the alpha schedule alone.
	MaxTicks int `json:"max_ticks,omitempty" yaml:"max_ticks,omitempty" toml:"max_ticks,omitempty"`
}

// DefaultParams returns the default simulation parameters.
func DefaultParams() Params {
	var p Params
	p.SetDefaults()
	return p
}

// SetDefaults fills zero-valued fields with defaults. It is idempotent.
func (p *Params) SetDefaults() {
	if p.MinPoints == 0 {
		p.MinPoints = DefaultMinPoints
	}
	if p.MaxPoints == 0 {
		p.MaxPoints = max(DefaultMaxPoints, p.MinPoints)
	}
	if p.AlphaDecay == 0 {
		p.AlphaDecay = DefaultAlphaDecay
	}
	if p.AlphaMin == 0 {
		p.AlphaMin = DefaultAlphaMin
	}
	if p.VelocityDecay == 0 {
		p.VelocityDecay = DefaultVelocityDecay
	}
	if p.ChargeStrength == 0 {
		p.ChargeStrength = DefaultChargeStrength
	}
	if p.LinkStrength == 0 {
		p.LinkStrength = DefaultLinkStrength
	}
}

// Validate reports the first out-of-range parameter as an INVALID_INPUT error.
func (p Params) Validate() error {
	switch {
	case p.MinPoints < 0 || p.MaxPoints < p.MinPoints:
		return flowerr.New(flowerr.ErrCodeInvalidInput, "bundling points range [%d, %d] is invalid", p.MinPoints, p.MaxPoints)
	case !inUnit(p.AlphaDecay) || p.AlphaDecay == 0:
		return flowerr.New(flowerr.ErrCodeInvalidInput, "alpha decay %v must be in (0, 1)", p.AlphaDecay)
	case !inUnit(p.AlphaMin) || p.AlphaMin == 0:
		return flowerr.New(flowerr.ErrCodeInvalidInput, "alpha min %v must be in (0, 1)", p.AlphaMin)
	case !inUnit(p.VelocityDecay):
		return flowerr.New(flowerr.ErrCodeInvalidInput, "velocity decay %v must be in [0, 1)", p.VelocityDecay)
	case !finite(p.ChargeStrength) || !finite(p.LinkStrength) || !finite(p.DistanceMax):
		return flowerr.New(flowerr.ErrCodeInvalidInput, "bundling strengths and distance must be finite")
	case p.LinkStrength < 0:
		return flowerr.New(flowerr.ErrCodeInvalidInput, "link strength %v must not be negative", p.LinkStrength)
	case p.MaxTicks < 0 || p.TickInterval < 0:
		return flowerr.New(flowerr.ErrCodeInvalidInput, "max ticks and tick interval must not be negative")
	}
	return nil
}

// Reach returns the many-body distance limit for a diagram with the given
// diagonal. Zero means no limit.
func (p Params) Reach(diagonal float64) float64 {
	switch {
	case p.DistanceMax > 0:
		return p.DistanceMax
	case p.DistanceMax < 0:
		return 0
	}
	return DefaultReachFraction * diagonal
}

// InteriorPoints returns the number of interior points a segment of the
// given length receives: lengths in [0, diagonal] map linearly onto
// [MinPoints, MaxPoints] and the result is rounded. Lengths beyond the
// diagonal are clamped.
func (p Params) InteriorPoints(length, diagonal float64) int {
	if diagonal <= 0 {
		return p.MinPoints
	}
	t := min(max(length/diagonal, 0), 1)
	return int(math.Round(float64(p.MinPoints) + t*float64(p.MaxPoints-p.MinPoints)))
}

func inUnit(v float64) bool { return v >= 0 && v < 1 }

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
