package render

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/stat"
)

// Lowess smooths points sorted by x with locally weighted linear regression
// (Cleveland 1979) and returns the fitted value at every x.
//
// Each fit uses the floor(frac*n) nearest points, at least two, with tricube
// distance weights.
// Every robustifying iteration reweights the points by the bisquare of their
// residual over six median absolute residuals; it stops early on an exact fit.
func Lowess(points []Point, frac float64, iterations int) []Point {
	n := len(points)
	if n == 0 {
		return nil
	}

	xs := make([]float64, n)
	ys := make([]float64, n)
	for i, p := range points {
		xs[i], ys[i] = p.X, p.Y
	}

	k := int(frac*float64(n) + 1e-10)
	k = max(k, min(2, n))
	k = min(k, n)

	robust := make([]float64, n)
	for i := range robust {
		robust[i] = 1
	}
	fitted := make([]float64, n)
	weights := make([]float64, n)
	residuals := make([]float64, n)

	for iter := 0; ; iter++ {
		left := 0
		for i := range n {
			for left+k < n && xs[i]-xs[left] > xs[left+k]-xs[i] {
				left++
			}
			right := left + k
			h := math.Max(xs[i]-xs[left], xs[right-1]-xs[i])

			w := weights[left:right]
			for j := range w {
				w[j] = tricube(math.Abs(xs[left+j]-xs[i]), h) * robust[left+j]
			}
			fitted[i] = localFit(xs[left:right], ys[left:right], w, xs[i], ys[i])
		}

		if iter >= iterations {
			break
		}

		for i := range residuals {
			residuals[i] = math.Abs(ys[i] - fitted[i])
		}
		sorted := slices.Clone(residuals)
		slices.Sort(sorted)
		s := stat.Quantile(0.5, stat.Empirical, sorted, nil)
		if s == 0 {
			break
		}
		for i, r := range residuals {
			robust[i] = bisquare(r / (6 * s))
		}
	}

	out := make([]Point, n)
	for i := range out {
		out[i] = Point{X: xs[i], Y: fitted[i]}
	}
	return out
}

// localFit evaluates at x0 the weighted least-squares line through (xs, ys).
// Without two distinct weighted x values it falls back to the weighted mean,
// and without any weight to own.
func localFit(xs, ys, w []float64, x0, own float64) float64 {
	first := -1
	distinct := false
	for j, wj := range w {
		if wj <= 0 {
			continue
		}
		if first < 0 {
			first = j
		} else if xs[j] != xs[first] {
			distinct = true
			break
		}
	}

	switch {
	case first < 0:
		return own
	case !distinct:
		return stat.Mean(ys, w)
	}

	alpha, beta := stat.LinearRegression(xs, ys, w, false)
	return alpha + beta*x0
}

func tricube(d, h float64) float64 {
	if h <= 0 {
		return 1
	}
	u := d / h
	if u >= 1 {
		return 0
	}
	v := 1 - u*u*u
	return v * v * v
}

func bisquare(u float64) float64 {
	if math.Abs(u) >= 1 {
		return 0
	}
	v := 1 - u*u
	return v * v
}
