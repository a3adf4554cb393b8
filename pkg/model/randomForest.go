package model

import (
	"errors"
	"math"
	"math/rand"
	"sync"

	"gonum.org/v1/gonum/mat"
)

// RandomForest is a bagged ensemble of decision trees that predicts by
// majority vote.
type RandomForest struct {
	NEstimators     int
	MaxDepth        int
	MinSamplesSplit int
	MaxFeatures     int // 0 => sqrt(p)
	Bootstrap       bool
	RandomState     int64

	Trees   []*DecisionTreeClassifier
	classes []int
}

// RandomForestOption configures a RandomForest.
type RandomForestOption func(*RandomForest)

func WithNEstimators(n int) RandomForestOption { return func(rf *RandomForest) { rf.NEstimators = n } }
func WithBootstrap(b bool) RandomForestOption  { return func(rf *RandomForest) { rf.Bootstrap = b } }
func WithForestMaxDepth(d int) RandomForestOption {
	return func(rf *RandomForest) { rf.MaxDepth = d }
}
func WithForestMaxFeatures(k int) RandomForestOption {
	return func(rf *RandomForest) { rf.MaxFeatures = k }
}
func WithForestRandomState(seed int64) RandomForestOption {
	return func(rf *RandomForest) { rf.RandomState = seed }
}

// NewRandomForest initializes the forest with sensible defaults.
func NewRandomForest(opts ...RandomForestOption) *RandomForest {
	rf := &RandomForest{
		NEstimators:     100,
		MinSamplesSplit: 2,
		Bootstrap:       true,
		RandomState:     42,
	}
	for _, o := range opts {
		o(rf)
	}
	return rf
}

// Fit trains every tree concurrently on its own bootstrap sample of row
// indices. Tree i is seeded with RandomState+i.
func (rf *RandomForest) Fit(X *mat.Dense, y []int) error {
	if err := checkXY(X, y); err != nil {
		return err
	}
	if rf.NEstimators <= 0 {
		return errors.New("randomforest: need at least one estimator")
	}
	n, p := X.Dims()
	maxFeatures := rf.MaxFeatures
	if maxFeatures <= 0 {
		maxFeatures = max(1, int(math.Sqrt(float64(p))))
	}
	rf.classes, _ = uniqueLabels(y)

	rf.Trees = make([]*DecisionTreeClassifier, rf.NEstimators)
	var wg sync.WaitGroup
	errCh := make(chan error, rf.NEstimators)

	for i := 0; i < rf.NEstimators; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			seed := rf.RandomState + int64(idx)
			treeRand := rand.New(rand.NewSource(seed))
			sample := make([]int, n)
			for j := range sample {
				if rf.Bootstrap {
					sample[j] = treeRand.Intn(n)
				} else {
					sample[j] = j
				}
			}

			tree := NewDecisionTreeClassifier(
				WithMaxDepth(rf.MaxDepth),
				WithMinSamplesSplit(rf.MinSamplesSplit),
				WithMaxFeatures(maxFeatures),
				WithRandomState(seed),
			)
			if err := tree.fitIndices(X, y, sample); err != nil {
				errCh <- err
				return
			}
			rf.Trees[idx] = tree
		}(i)
	}
	wg.Wait()
	close(errCh)

	for err := range errCh {
		if err != nil {
			return err
		}
	}
	return nil
}

// Classes returns the sorted labels seen during Fit.
func (rf *RandomForest) Classes() []int { return rf.classes }

// Predict returns the majority vote of all trees, the lowest label on ties.
func (rf *RandomForest) Predict(X *mat.Dense) ([]int, error) {
	if len(rf.Trees) == 0 {
		return nil, ErrNotFitted
	}
	allPreds := make([][]int, len(rf.Trees))
	var wg sync.WaitGroup
	for k, tree := range rf.Trees {
		wg.Add(1)
		go func(k int, t *DecisionTreeClassifier) {
			defer wg.Done()
			allPreds[k], _ = t.Predict(X)
		}(k, tree)
	}
	wg.Wait()

	n, _ := X.Dims()
	out := make([]int, n)
	parallelRows(n, func(s, e int) {
		for i := s; i < e; i++ {
			counts := make(map[int]int)
			for _, preds := range allPreds {
				counts[preds[i]]++
			}
			out[i] = voteLabel(counts)
		}
	})
	return out, nil
}
