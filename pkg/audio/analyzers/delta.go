package analyzers

// DefaultDeltaWidth is the number of frames a delta regression spans.
const DefaultDeltaWidth = 9

// Delta computes first-order time derivatives of a Time x Dim feature matrix
// with the regression d[t] = sum_n n*(c[t+n]-c[t-n]) / (2*sum_n n^2) over
// n = 1..width/2. Frames beyond either edge repeat the edge frame.
// The result has the same shape as features.
func Delta(features [][]float64, width int) [][]float64 {
	frames := len(features)
	if frames == 0 {
		return [][]float64{}
	}

	half := width / 2
	if half < 1 {
		half = 1
	}

	var denom float64
	for n := 1; n <= half; n++ {
		denom += float64(n * n)
	}
	denom *= 2

	dim := len(features[0])
	deltas := make([][]float64, frames)
	for t := range frames {
		deltas[t] = make([]float64, dim)
		for d := range dim {
			var num float64
			for n := 1; n <= half; n++ {
				next := min(t+n, frames-1)
				prev := max(t-n, 0)
				num += float64(n) * (features[next][d] - features[prev][d])
			}
			deltas[t][d] = num / denom
		}
	}

	return deltas
}

// DeltaOrder applies Delta order times, giving the order-th derivative.
func DeltaOrder(features [][]float64, width, order int) [][]float64 {
	out := features
	for range order {
		out = Delta(out, width)
	}
	return out
}
