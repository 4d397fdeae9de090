package calculator

// VolumeRatio divides each bar's volume by the mean volume of the lookback
// bars before it. A zero mean yields 0.
func VolumeRatio(volumes []float64, lookback int) []float64 {
	n := len(volumes)
	out := undefinedSeries(n)
	if lookback < 1 {
		return out
	}
	sum := 0.0
	for i := 0; i < n; i++ {
		if i >= lookback {
			mean := sum / float64(lookback)
			if mean == 0 {
				out[i] = 0
			} else {
				out[i] = volumes[i] / mean
			}
			sum -= volumes[i-lookback]
		}
		sum += volumes[i]
	}
	return out
}
