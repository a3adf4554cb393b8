package loader

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func labels(counts ...int) []int {
	var y []int
	for c, n := range counts {
		for range n {
			y = append(y, c)
		}
	}
	return y
}

func classCount(y, idx []int) map[int]int {
	m := map[int]int{}
	for _, i := range idx {
		m[y[i]]++
	}
	return m
}

func TestStratifiedSplitSizesAndProportions(t *testing.T) {
	y := labels(25, 50, 25)
	train, test, err := StratifiedSplit(y, 0.2, 42)
	require.NoError(t, err)
	assert.Len(t, test, 20)
	assert.Len(t, train, 80)
	assert.Equal(t, map[int]int{0: 5, 1: 10, 2: 5}, classCount(y, test))

	all := append(append([]int(nil), train...), test...)
	sort.Ints(all)
	for i, v := range all {
		require.Equal(t, i, v, "every row lands in exactly one side")
	}
}

func TestStratifiedSplitCeilAndRemainders(t *testing.T) {
	// 0.2*11 = 2.2 -> 3 test rows; shares 0.818 / 1.364 / 0.818
	y := labels(3, 5, 3)
	train, test, err := StratifiedSplit(y, 0.2, 7)
	require.NoError(t, err)
	assert.Len(t, test, 3)
	assert.Len(t, train, 8)
	assert.Equal(t, map[int]int{0: 1, 1: 1, 2: 1}, classCount(y, test))
}

func TestStratifiedSplitDeterministic(t *testing.T) {
	y := labels(30, 60, 30)
	tr1, te1, err := StratifiedSplit(y, 0.2, 42)
	require.NoError(t, err)
	tr2, te2, err := StratifiedSplit(y, 0.2, 42)
	require.NoError(t, err)
	assert.Equal(t, tr1, tr2)
	assert.Equal(t, te1, te2)

	_, te3, err := StratifiedSplit(y, 0.2, 43)
	require.NoError(t, err)
	assert.NotEqual(t, te1, te3)
}

func TestStratifiedSplitErrors(t *testing.T) {
	_, _, err := StratifiedSplit(labels(5, 5), 0, 1)
	assert.ErrorContains(t, err, "must be in (0, 1)")

	_, _, err = StratifiedSplit(labels(5, 1), 0.2, 1)
	assert.ErrorContains(t, err, "need at least 2")

	_, _, err = StratifiedSplit(labels(2, 2, 2), 0.1, 1)
	assert.ErrorContains(t, err, "cannot hold 3 classes")
}

func TestTrainTestSplit(t *testing.T) {
	train, test, err := TrainTestSplit(10, 0.25, 1)
	require.NoError(t, err)
	assert.Len(t, test, 3)
	assert.Len(t, train, 7)

	_, _, err = TrainTestSplit(1, 0.5, 1)
	assert.Error(t, err)
}

func TestTake(t *testing.T) {
	X := mat.NewDense(3, 2, []float64{1, 2, 3, 4, 5, 6})
	sub := Take(X, []int{2, 0})
	assert.Equal(t, []float64{5, 6}, sub.RawRowView(0))
	assert.Equal(t, []float64{1, 2}, sub.RawRowView(1))
	assert.Equal(t, []int{30, 10}, TakeInts([]int{10, 20, 30}, []int{2, 0}))
}
