package layout

// LinearScale maps a value domain linearly onto an output range.
type LinearScale struct {
	Domain [2]float64 `json:"domain"`
	Range  [2]float64 `json:"range"`
}

// NewLinearScale returns a scale from [lo, hi] onto rng.
func NewLinearScale(lo, hi float64, rng [2]float64) LinearScale {
	return LinearScale{Domain: [2]float64{lo, hi}, Range: rng}
}

// Apply maps v onto the range and clamps the result. A degenerate domain
// maps every value to the middle of the range.
func (s LinearScale) Apply(v float64) float64 {
	r0, r1 := s.Range[0], s.Range[1]
	d0, d1 := s.Domain[0], s.Domain[1]
	if d1-d0 <= eps {
		return (r0 + r1) / 2
	}
	t := min(max((v-d0)/(d1-d0), 0), 1)
	return r0 + t*(r1-r0)
}

const eps = 1e-9
