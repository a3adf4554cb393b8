package dataprep

import (
	"errors"
	"fmt"

	"salesclass/pkg/data"
	"salesclass/pkg/stats"
)

// SalesCategory is the ordinal class derived from a sales figure.
type SalesCategory int

const (
	Low SalesCategory = iota
	Medium
	High
)

// CategoryNames lists the class names indexed by SalesCategory.
var CategoryNames = []string{"Low", "Medium", "High"}

func (c SalesCategory) String() string {
	if c < Low || c > High {
		return fmt.Sprintf("SalesCategory(%d)", int(c))
	}
	return CategoryNames[c]
}

// Thresholds are the lower and upper quartile cut points.
type Thresholds struct {
	Q1 float64
	Q3 float64
}

// QuartileThresholds returns the 25th and 75th percentiles of the
// non-missing values.
func QuartileThresholds(values []float64) (Thresholds, error) {
	clean := stats.DropNaN(values)
	if len(clean) == 0 {
		return Thresholds{}, errors.New("dataprep: no values to compute quartiles")
	}
	q := stats.Percentiles(clean, 25, 75)
	return Thresholds{Q1: q[0], Q3: q[1]}, nil
}

// Categorize maps v to Low below Q1, High above Q3 and Medium otherwise.
// NaN compares false both ways and lands in Medium.
func (t Thresholds) Categorize(v float64) SalesCategory {
	switch {
	case v < t.Q1:
		return Low
	case v > t.Q3:
		return High
	default:
		return Medium
	}
}

// DeriveLabels computes quartile thresholds over the source column, adds a
// categorical label column to t and returns the label ids per row. Rows
// without a source value are labelled Medium.
func DeriveLabels(t *data.Table, source, label string) ([]int, Thresholds, error) {
	col, err := t.Column(source)
	if err != nil {
		return nil, Thresholds{}, err
	}
	if col.Kind != data.Numeric {
		return nil, Thresholds{}, fmt.Errorf("dataprep: label source %q is not numeric", source)
	}
	th, err := QuartileThresholds(col.Num)
	if err != nil {
		return nil, Thresholds{}, err
	}

	ids := make([]int, len(col.Num))
	names := make([]string, len(col.Num))
	for i, v := range col.Num {
		c := th.Categorize(v)
		ids[i] = int(c)
		names[i] = c.String()
	}
	if err := t.AddColumn(data.NewCategorical(label, names)); err != nil {
		return nil, Thresholds{}, err
	}
	return ids, th, nil
}
