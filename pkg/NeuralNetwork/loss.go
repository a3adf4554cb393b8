package NeuralNetwork

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// SoftmaxRows turns every row of Z into a probability distribution in place.
func SoftmaxRows(Z *mat.Dense) {
	r, _ := Z.Dims()
	for i := range r {
		row := Z.RawRowView(i)
		maxv := math.Inf(-1)
		for _, v := range row {
			maxv = math.Max(maxv, v)
		}
		sum := 0.0
		for j, v := range row {
			row[j] = math.Exp(v - maxv)
			sum += row[j]
		}
		for j := range row {
			row[j] /= sum
		}
	}
}

// CrossEntropy is the mean negative log-likelihood of the true classes y
// under the row distributions in P. Probabilities are clipped away from 0.
func CrossEntropy(y []int, P mat.Matrix) float64 {
	if len(y) == 0 {
		return 0
	}
	eps := 1e-15
	s := 0.0
	for i, c := range y {
		p := math.Min(math.Max(P.At(i, c), eps), 1-eps)
		s -= math.Log(p)
	}
	return s / float64(len(y))
}
