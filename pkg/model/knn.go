package model

import (
	"errors"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// KNN is a k-nearest-neighbours classifier with Euclidean distance and a
// majority vote over the neighbours' labels.
type KNN struct {
	K int
	X *mat.Dense
	y []int
}

// NewKNN creates and returns a new KNN model.
func NewKNN(k int) *KNN {
	return &KNN{K: k}
}

// Fit stores the training data; all work happens in Predict.
func (m *KNN) Fit(X *mat.Dense, y []int) error {
	if m.K <= 0 {
		return errors.New("knn: k must be positive")
	}
	if err := checkXY(X, y); err != nil {
		return err
	}
	m.X = X
	m.y = y
	return nil
}

// Predict labels each row of X, spreading rows across CPUs.
func (m *KNN) Predict(X *mat.Dense) ([]int, error) {
	if m.X == nil {
		return nil, ErrNotFitted
	}
	if err := checkFinite(X); err != nil {
		return nil, err
	}
	r, _ := X.Dims()
	out := make([]int, r)
	parallelRows(r, func(s, e int) {
		for i := s; i < e; i++ {
			out[i] = m.predictSingle(X.RawRowView(i))
		}
	})
	return out, nil
}

// predictSingle keeps a small sorted slice of the K nearest training rows.
func (m *KNN) predictSingle(xi []float64) int {
	type neighbour struct {
		d     float64
		label int
	}
	nbrs := make([]neighbour, 0, m.K+1)
	n, _ := m.X.Dims()
	for j := range n {
		d := euclidSquared(xi, m.X.RawRowView(j))
		if len(nbrs) < m.K {
			nbrs = append(nbrs, neighbour{d, m.y[j]})
			sort.SliceStable(nbrs, func(a, b int) bool { return nbrs[a].d < nbrs[b].d })
		} else if d < nbrs[len(nbrs)-1].d {
			nbrs[len(nbrs)-1] = neighbour{d, m.y[j]}
			sort.SliceStable(nbrs, func(a, b int) bool { return nbrs[a].d < nbrs[b].d })
		}
	}

	counts := make(map[int]int)
	for _, nb := range nbrs {
		counts[nb.label]++
	}
	return voteLabel(counts)
}

// euclidSquared computes the squared Euclidean distance between two vectors.
func euclidSquared(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}
