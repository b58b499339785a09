package render

import (
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// confidence is the level of the band drawn around aggregated lines.
const confidence = 0.95

// EstimateMeans averages the y values of points sharing an x. points must be
// sorted by x. The band is the Student t interval of the mean; a single
// observation has a zero-width band.
func EstimateMeans(points []Point) []Estimate {
	var out []Estimate
	for start := 0; start < len(points); {
		end := start + 1
		for end < len(points) && points[end].X == points[start].X {
			end++
		}

		ys := make([]float64, end-start)
		for i := range ys {
			ys[i] = points[start+i].Y
		}
		out = append(out, estimate(points[start].X, ys))
		start = end
	}
	return out
}

func estimate(x float64, ys []float64) Estimate {
	n := len(ys)
	if n == 1 {
		return Estimate{X: x, Mean: ys[0], Lower: ys[0], Upper: ys[0], N: 1}
	}

	mean, sd := stat.MeanStdDev(ys, nil)
	t := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(n - 1)}.Quantile(1 - (1-confidence)/2)
	half := t * sd / math.Sqrt(float64(n))
	return Estimate{X: x, Mean: mean, Lower: mean - half, Upper: mean + half, N: n}
}
