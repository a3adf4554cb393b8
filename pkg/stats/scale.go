package stats

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

var ErrNotFitted = errors.New("stats: scaler is not fitted")

// StandardScaler standardizes each column to zero mean and unit variance.
// Columns with zero variance are only centred.
type StandardScaler struct {
	Mean []float64
	Std  []float64
}

func NewStandardScaler() *StandardScaler { return &StandardScaler{} }

func (s *StandardScaler) Fit(X mat.Matrix) error {
	r, c := X.Dims()
	if r == 0 {
		return errors.New("stats: cannot fit scaler on empty matrix")
	}
	s.Mean = make([]float64, c)
	s.Std = make([]float64, c)
	col := make([]float64, r)
	for j := 0; j < c; j++ {
		mat.Col(col, j, X)
		s.Mean[j] = Mean(col)
		s.Std[j] = Std(col)
		if s.Std[j] == 0 {
			s.Std[j] = 1
		}
	}
	return nil
}

func (s *StandardScaler) Transform(X mat.Matrix) (*mat.Dense, error) {
	if s.Mean == nil {
		return nil, ErrNotFitted
	}
	return applyColumns(X, len(s.Mean), func(j int, v float64) float64 {
		return (v - s.Mean[j]) / s.Std[j]
	})
}

// Inverse maps a scaled value of column j back to its original unit.
func (s *StandardScaler) Inverse(j int, v float64) float64 {
	return v*s.Std[j] + s.Mean[j]
}

// MinMaxScaler scales each column to [0, 1].
type MinMaxScaler struct {
	Min []float64
	Max []float64
}

func NewMinMaxScaler() *MinMaxScaler { return &MinMaxScaler{} }

func (s *MinMaxScaler) Fit(X mat.Matrix) error {
	r, c := X.Dims()
	if r == 0 {
		return errors.New("stats: cannot fit scaler on empty matrix")
	}
	s.Min = make([]float64, c)
	s.Max = make([]float64, c)
	col := make([]float64, r)
	for j := 0; j < c; j++ {
		mat.Col(col, j, X)
		s.Min[j], s.Max[j] = MinMax(col)
	}
	return nil
}

func (s *MinMaxScaler) Transform(X mat.Matrix) (*mat.Dense, error) {
	if s.Min == nil {
		return nil, ErrNotFitted
	}
	return applyColumns(X, len(s.Min), func(j int, v float64) float64 {
		if s.Max[j] == s.Min[j] {
			return 0
		}
		return (v - s.Min[j]) / (s.Max[j] - s.Min[j])
	})
}

// Inverse maps a scaled value of column j back to its original unit.
func (s *MinMaxScaler) Inverse(j int, v float64) float64 {
	return v*(s.Max[j]-s.Min[j]) + s.Min[j]
}

// RobustScaler scales each column using its median and interquartile range.
type RobustScaler struct {
	Median []float64
	IQR    []float64
}

func NewRobustScaler() *RobustScaler { return &RobustScaler{} }

func (s *RobustScaler) Fit(X mat.Matrix) error {
	r, c := X.Dims()
	if r == 0 {
		return errors.New("stats: cannot fit scaler on empty matrix")
	}
	s.Median = make([]float64, c)
	s.IQR = make([]float64, c)
	col := make([]float64, r)
	for j := 0; j < c; j++ {
		mat.Col(col, j, X)
		q := Percentiles(col, 25, 50, 75)
		s.Median[j] = q[1]
		s.IQR[j] = q[2] - q[0]
	}
	return nil
}

func (s *RobustScaler) Transform(X mat.Matrix) (*mat.Dense, error) {
	if s.Median == nil {
		return nil, ErrNotFitted
	}
	return applyColumns(X, len(s.Median), func(j int, v float64) float64 {
		if s.IQR[j] == 0 {
			return v - s.Median[j]
		}
		return (v - s.Median[j]) / s.IQR[j]
	})
}

// Inverse maps a scaled value of column j back to its original unit.
func (s *RobustScaler) Inverse(j int, v float64) float64 {
	if s.IQR[j] == 0 {
		return v + s.Median[j]
	}
	return v*s.IQR[j] + s.Median[j]
}

// Scaler learns per-column statistics on training data and applies them to
// any matrix with the same columns.
type Scaler interface {
	Fit(X mat.Matrix) error
	Transform(X mat.Matrix) (*mat.Dense, error)
	Inverse(j int, v float64) float64
}

// NewScaler returns the scaler registered under name, or nil for "none".
func NewScaler(name string) (Scaler, error) {
	switch name {
	case "standard":
		return NewStandardScaler(), nil
	case "minmax":
		return NewMinMaxScaler(), nil
	case "robust":
		return NewRobustScaler(), nil
	case "none", "":
		return nil, nil
	default:
		return nil, fmt.Errorf("stats: unknown scaler %q", name)
	}
}

func applyColumns(X mat.Matrix, fitted int, f func(j int, v float64) float64) (*mat.Dense, error) {
	r, c := X.Dims()
	if c != fitted {
		return nil, fmt.Errorf("stats: scaler fitted on %d columns, got %d", fitted, c)
	}
	out := mat.NewDense(r, c, nil)
	out.Apply(func(_, j int, v float64) float64 {
		if math.IsNaN(v) {
			return v
		}
		return f(j, v)
	}, X)
	return out, nil
}
