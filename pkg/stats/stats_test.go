package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestPercentile(t *testing.T) {
	x := []float64{100, 10, 90, 20, 80, 30, 70, 40, 60, 50}
	tests := []struct {
		p    float64
		want float64
	}{
		{0, 10},
		{25, 32.5},
		{50, 55},
		{75, 77.5},
		{100, 100},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, Percentile(x, tt.p), 1e-9, "p=%v", tt.p)
	}
	assert.Equal(t, 100.0, x[0], "input is not reordered")
	assert.True(t, math.IsNaN(Percentile(nil, 50)))

	qs := Percentiles(x, 25, 75)
	assert.InDeltaSlice(t, []float64{32.5, 77.5}, qs, 1e-9)
}

func TestMomentsAndMedian(t *testing.T) {
	x := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	assert.Equal(t, 5.0, Mean(x))
	assert.InDelta(t, 2.0, Std(x), 1e-12, "population std")
	assert.Equal(t, 4.5, Median(x))
	lo, hi := MinMax(x)
	assert.Equal(t, 2.0, lo)
	assert.Equal(t, 9.0, hi)

	assert.Equal(t, []float64{1, 3}, DropNaN([]float64{1, math.NaN(), 3}))
	assert.True(t, math.IsNaN(Mean(nil)))
}

func TestStandardScaler(t *testing.T) {
	X := mat.NewDense(4, 2, []float64{
		1, 5,
		2, 5,
		3, 5,
		4, 5,
	})
	s := NewStandardScaler()
	_, err := s.Transform(X)
	assert.ErrorIs(t, err, ErrNotFitted)

	require.NoError(t, s.Fit(X))
	assert.Equal(t, 1.0, s.Std[1], "constant column keeps unit scale")

	Z, err := s.Transform(X)
	require.NoError(t, err)
	col := mat.Col(nil, 0, Z)
	assert.InDelta(t, 0, Mean(col), 1e-12)
	assert.InDelta(t, 1, Std(col), 1e-12)
	assert.Equal(t, []float64{0, 0, 0, 0}, mat.Col(nil, 1, Z))

	_, err = s.Transform(mat.NewDense(1, 3, nil))
	assert.ErrorContains(t, err, "fitted on 2 columns")
}

func TestOtherScalers(t *testing.T) {
	X := mat.NewDense(5, 1, []float64{1, 2, 3, 4, 100})

	mm := NewMinMaxScaler()
	require.NoError(t, mm.Fit(X))
	Z, err := mm.Transform(X)
	require.NoError(t, err)
	assert.Equal(t, 0.0, Z.At(0, 0))
	assert.Equal(t, 1.0, Z.At(4, 0))

	rb := NewRobustScaler()
	require.NoError(t, rb.Fit(X))
	Z, err = rb.Transform(X)
	require.NoError(t, err)
	assert.Equal(t, 0.0, Z.At(2, 0), "median maps to zero")
	assert.Equal(t, 0.5, Z.At(3, 0))
}

func TestScalerInverse(t *testing.T) {
	X := mat.NewDense(5, 2, []float64{
		1, 7,
		2, 7,
		3, 7,
		4, 7,
		100, 7,
	})
	for _, name := range []string{"standard", "minmax", "robust"} {
		t.Run(name, func(t *testing.T) {
			s, err := NewScaler(name)
			require.NoError(t, err)
			require.NoError(t, s.Fit(X))
			Z, err := s.Transform(X)
			require.NoError(t, err)
			for i := range 5 {
				for j := range 2 {
					assert.InDelta(t, X.At(i, j), s.Inverse(j, Z.At(i, j)), 1e-9, "row %d col %d", i, j)
				}
			}
		})
	}
}

func TestNewScaler(t *testing.T) {
	for _, name := range []string{"standard", "minmax", "robust"} {
		s, err := NewScaler(name)
		require.NoError(t, err)
		assert.NotNil(t, s)
	}
	s, err := NewScaler("none")
	require.NoError(t, err)
	assert.Nil(t, s)

	_, err = NewScaler("zscore")
	assert.Error(t, err)
}
