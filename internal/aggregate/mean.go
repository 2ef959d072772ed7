package aggregate

// RunningMean is an online (incremental) arithmetic mean. It keeps no
// sample history, so summaries can be folded across an arbitrarily long
// scan of matched markets without unbounded memory.
type RunningMean struct {
	n    int
	mean float64
}

// Add folds one sample into the mean: avg += (sample - avg) / n.
func (m *RunningMean) Add(sample float64) {
	m.n++
	m.mean += (sample - m.mean) / float64(m.n)
}

// Mean returns the current mean, or 0 when no samples were folded.
// The zero-count short-circuit keeps summaries NaN-free.
func (m *RunningMean) Mean() float64 {
	if m.n == 0 {
		return 0
	}
	return m.mean
}

// Count returns the number of folded samples.
func (m *RunningMean) Count() int {
	return m.n
}
