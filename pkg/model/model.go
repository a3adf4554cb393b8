package model

import (
	"errors"
	"fmt"
	"math"
	"runtime"
	"sort"
	"sync"

	"gonum.org/v1/gonum/mat"
)

var (
	ErrNotFitted = errors.New("model: not fitted")
	ErrNonFinite = errors.New("model: input contains NaN or Inf")
)

// Classifier is a supervised model over integer class labels.
type Classifier interface {
	Fit(X *mat.Dense, y []int) error
	Predict(X *mat.Dense) ([]int, error)
}

// ProbabilisticClassifier also exposes per-class probabilities. Column j of
// the result corresponds to Classes()[j].
type ProbabilisticClassifier interface {
	Classifier
	PredictProba(X *mat.Dense) (*mat.Dense, error)
	Classes() []int
}

func checkXY(X *mat.Dense, y []int) error {
	if X == nil || X.IsEmpty() {
		return errors.New("model: empty X")
	}
	r, _ := X.Dims()
	if r != len(y) {
		return fmt.Errorf("model: X has %d rows, y has %d labels", r, len(y))
	}
	return checkFinite(X)
}

func checkFinite(X *mat.Dense) error {
	r, _ := X.Dims()
	for i := range r {
		for j, v := range X.RawRowView(i) {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("%w: row %d column %d", ErrNonFinite, i, j)
			}
		}
	}
	return nil
}

// uniqueLabels returns the sorted distinct labels of y and a label to
// position lookup.
func uniqueLabels(y []int) ([]int, map[int]int) {
	pos := make(map[int]int)
	var classes []int
	for _, v := range y {
		if _, ok := pos[v]; !ok {
			pos[v] = 0
			classes = append(classes, v)
		}
	}
	sort.Ints(classes)
	for i, c := range classes {
		pos[c] = i
	}
	return classes, pos
}

// parallelRows splits 0..n-1 into one contiguous chunk per CPU and runs fn
// on each chunk concurrently.
func parallelRows(n int, fn func(start, end int)) {
	workers := runtime.GOMAXPROCS(0)
	rowsPerWorker := (n + workers - 1) / workers

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		start := w * rowsPerWorker
		end := min(start+rowsPerWorker, n)
		if start >= end {
			continue
		}
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			fn(s, e)
		}(start, end)
	}
	wg.Wait()
}

// voteLabel returns the most frequent label, the lowest one on ties.
func voteLabel(counts map[int]int) int {
	best, bestCount := 0, -1
	for label, c := range counts {
		if c > bestCount || (c == bestCount && label < best) {
			best, bestCount = label, c
		}
	}
	return best
}
