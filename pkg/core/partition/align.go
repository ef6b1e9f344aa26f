package partition

// SnapNearest returns the multiple of step closest to v, never less than step.
// Ties round up. It makes a requested target size legal for a given step size.
func SnapNearest(v, step int64) int64 {
	if step <= 0 {
		return v
	}
	lower := (v / step) * step
	upper := lower + step
	snapped := upper
	if v-lower < upper-v {
		snapped = lower
	}
	if snapped < step {
		return step
	}
	return snapped
}

// SnapUp returns the smallest multiple of step that is >= v.
// It makes a requested overlap legal without shrinking it.
func SnapUp(v, step int64) int64 {
	if step <= 0 || v <= 0 {
		return max(v, 0)
	}
	if v%step == 0 {
		return v
	}
	return (v/step)*step + step
}

// SnapParams returns a copy of p whose target sizes are snapped to the nearest
// multiple of the step size and whose overlaps are rounded up to one.
func SnapParams(p Params) Params {
	out := p.Clone()
	for d := range out.TargetSize {
		if d < len(out.StepSize) {
			out.TargetSize[d] = SnapNearest(out.TargetSize[d], out.StepSize[d])
		}
	}
	for d := range out.Overlap {
		if d < len(out.StepSize) {
			out.Overlap[d] = SnapUp(out.Overlap[d], out.StepSize[d])
		}
	}
	return out
}
