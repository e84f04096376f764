package mapper

// lipSync is the independent mouth-openness pipeline: threshold gate,
// sensitivity multiply, clamp, exponential smoothing. It runs separately
// from the full expression channel mapping because lip sync needs a faster,
// gated response than perceptual expression tracking.
type lipSync struct {
	gate        float64
	sensitivity float64
	smoothing   float64
	value       float64
}

// update feeds one raw mouth-openness sample through the pipeline and
// returns the smoothed output in [0,1].
func (l *lipSync) update(raw float64) float64 {
	if raw < l.gate {
		raw = 0
	}
	raw *= l.sensitivity
	if raw > 1 {
		raw = 1
	}
	if raw < 0 {
		raw = 0
	}
	l.value += (raw - l.value) * l.smoothing
	return l.value
}

// reset zeroes the pipeline, used on speaking end so the mouth closes
// immediately instead of decaying.
func (l *lipSync) reset() {
	l.value = 0
}
