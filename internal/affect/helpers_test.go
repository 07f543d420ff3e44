package affect

import "time"

var testEpoch = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

// zSample builds a sample whose magnitude equals mag.
func zSample(i int, mag float64) AccelerationSample {
	return AccelerationSample{
		Timestamp: testEpoch.Add(time.Duration(i) * 20 * time.Millisecond),
		Z:         mag,
	}
}

// feed pushes n samples produced by magAt through the extractor and
// returns the last feature vector.
func feed(fe *FeatureExtractor, start, n int, magAt func(i int) float64) FeatureVector {
	var fv FeatureVector
	for i := start; i < start+n; i++ {
		fv = fe.Observe(zSample(i, magAt(i)))
	}
	return fv
}

func constant(mag float64) func(int) float64 {
	return func(int) float64 { return mag }
}

func alternating(a, b float64) func(int) float64 {
	return func(i int) float64 {
		if i%2 == 0 {
			return a
		}
		return b
	}
}
