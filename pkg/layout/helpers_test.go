package layout

import "github.com/matzehuels/flowmap/pkg/bundle"

func bundleParamsWithAlphaDecay(d float64) bundle.Params {
	p := bundle.DefaultParams()
	p.AlphaDecay = d
	return p
}
