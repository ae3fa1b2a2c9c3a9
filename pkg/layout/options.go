package layout

import (
	"math"

	"github.com/matzehuels/flowmap/pkg/bundle"
	flowerr "github.com/matzehuels/flowmap/pkg/errors"
)

// Default layout parameters.
const (
	DefaultWidthMin      = 1.0
	DefaultWidthMax      = 20.0
	DefaultTaperFraction = 0.25
	DefaultTaperFloor    = 0.5
	DefaultArrowScale    = 1.5
)

// Options configures a layout pass.
type Options struct {
	// Bidirectional resolves routes before layering, splitting routes that
	// carry flow both ways at a midpoint node. Input with flows in both
	// directions between two nodes fails layering without it.
	Bidirectional bool `json:"bidirectional" yaml:"bidirectional" toml:"bidirectional"`

	// EdgeBundling replaces straight segments by a bundling simulation.
	EdgeBundling bool `json:"edge_bundling" yaml:"edge_bundling" toml:"edge_bundling"`

	// WidthRange is the output range of the link width scale.
	WidthRange [2]float64 `json:"width_range" yaml:"width_range" toml:"width_range"`

	Taper    TaperOptions  `json:"taper" yaml:"taper" toml:"taper"`
	Arrows   ArrowOptions  `json:"arrows" yaml:"arrows" toml:"arrows"`
	Bundling bundle.Params `json:"bundling" yaml:"bundling" toml:"bundling"`

	// Order stacks links at each node. Defaults to DefaultOrder.
	Order Order `json:"-" yaml:"-" toml:"-"`

	validated bool
}

// ValidateAndSetDefaults applies defaults and checks all parameters.
// This method is idempotent - calling it multiple times has the same effect
// as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	o.SetDefaults()
	if err := o.Validate(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// SetDefaults fills zero-valued fields with defaults.
func (o *Options) SetDefaults() {
	if o.WidthRange == [2]float64{} {
		o.WidthRange = [2]float64{DefaultWidthMin, DefaultWidthMax}
	}
	if o.Taper.Fraction == 0 {
		o.Taper.Fraction = DefaultTaperFraction
	}
	if o.Taper.Floor == 0 {
		o.Taper.Floor = DefaultTaperFloor
	}
	if o.Arrows.Scale == 0 {
		o.Arrows.Scale = DefaultArrowScale
	}
	if o.Order == nil {
		o.Order = DefaultOrder
	}
	o.Bundling.SetDefaults()
}

// Validate reports the first invalid parameter as an INVALID_INPUT error.
func (o *Options) Validate() error {
	if err := flowerr.ValidateRange("width range", o.WidthRange[0], o.WidthRange[1]); err != nil {
		return err
	}
	if f := o.Taper.Fraction; !(f > 0 && f <= 1) {
		return flowerr.New(flowerr.ErrCodeInvalidInput, "taper fraction %v must be in (0, 1]", f)
	}
	if f := o.Taper.Floor; f < 0 || math.IsInf(f, 0) || math.IsNaN(f) {
		return flowerr.New(flowerr.ErrCodeInvalidInput, "taper floor %v must be finite and not negative", f)
	}
	if s := o.Arrows.Scale; s < 0 || math.IsInf(s, 0) || math.IsNaN(s) {
		return flowerr.New(flowerr.ErrCodeInvalidInput, "arrow scale %v must be finite and not negative", s)
	}
	return o.Bundling.Validate()
}
