package aggregate

import (
	"math"
	"math/rand"
	"testing"
)

func TestRunningMean_Empty(t *testing.T) {
	var m RunningMean
	if m.Mean() != 0 {
		t.Errorf("expected 0 for empty mean, got %v", m.Mean())
	}
	if m.Count() != 0 {
		t.Errorf("expected count 0, got %d", m.Count())
	}
}

func TestRunningMean_SingleSample(t *testing.T) {
	var m RunningMean
	m.Add(42)
	if m.Mean() != 42 {
		t.Errorf("expected 42, got %v", m.Mean())
	}
}

func TestRunningMean_KnownSequence(t *testing.T) {
	var m RunningMean
	for _, s := range []float64{30, 90} {
		m.Add(s)
	}
	if m.Mean() != 60 {
		t.Errorf("expected 60, got %v", m.Mean())
	}
}

// Property: the incremental mean equals the batch arithmetic mean for
// any sequence of folds, within floating-point tolerance.
func TestRunningMean_MatchesBatchMean(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for run := 0; run < 100; run++ {
		n := 1 + rng.Intn(500)
		var m RunningMean
		sum := 0.0
		for i := 0; i < n; i++ {
			sample := rng.Float64() * 100000
			m.Add(sample)
			sum += sample
		}

		batch := sum / float64(n)
		if math.Abs(m.Mean()-batch) > 1e-9*math.Max(1, math.Abs(batch)) {
			t.Fatalf("run %d: incremental mean %v != batch mean %v", run, m.Mean(), batch)
		}
	}
}
