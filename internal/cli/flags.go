package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/flowmap/pkg/layout"
)

// layoutFlags overrides the layout options stored in an input document.
// Only flags given on the command line are applied, so a document's own
// settings survive unless explicitly overridden.
type layoutFlags struct {
	bidirectional bool
	bundle        bool
	taper         bool
	arrows        bool
	widthMin      float64
	widthMax      float64
	maxTicks      int

	noCache bool
	refresh bool
}

func (f *layoutFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.BoolVar(&f.bidirectional, "bidirectional", false, "split routes carrying flow both ways at a midpoint")
	fs.BoolVar(&f.bundle, "bundle", false, "bundle links with a force simulation")
	fs.BoolVar(&f.taper, "taper", false, "taper links from source to target")
	fs.BoolVar(&f.arrows, "arrows", false, "pull link ends back to leave room for arrowheads")
	fs.Float64Var(&f.widthMin, "width-min", layout.DefaultWidthMin, "smallest link width")
	fs.Float64Var(&f.widthMax, "width-max", layout.DefaultWidthMax, "largest link width")
	fs.IntVar(&f.maxTicks, "max-ticks", 0, "stop bundling after this many ticks (0 = until converged)")
	fs.BoolVar(&f.noCache, "no-cache", false, "disable caching")
	fs.BoolVar(&f.refresh, "refresh", false, "recompute even if a cached layout exists")
}

// apply copies every flag the user set onto o.
func (f *layoutFlags) apply(cmd *cobra.Command, o *layout.Options) {
	fs := cmd.Flags()
	if fs.Changed("bidirectional") {
		o.Bidirectional = f.bidirectional
	}
	if fs.Changed("bundle") {
		o.EdgeBundling = f.bundle
	}
	if fs.Changed("taper") {
		o.Taper.Enabled = f.taper
	}
	if fs.Changed("arrows") {
		o.Arrows.Enabled = f.arrows
	}
	if fs.Changed("width-min") || fs.Changed("width-max") {
		if o.WidthRange == [2]float64{} {
			o.WidthRange = [2]float64{layout.DefaultWidthMin, layout.DefaultWidthMax}
		}
		if fs.Changed("width-min") {
			o.WidthRange[0] = f.widthMin
		}
		if fs.Changed("width-max") {
			o.WidthRange[1] = f.widthMax
		}
	}
	if fs.Changed("max-ticks") {
		o.Bundling.MaxTicks = f.maxTicks
	}
}
