package dataprep

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"

	"salesclass/pkg/data"
)

// SplitFeatures partitions the table columns, minus exclude, into numeric
// and categorical feature names. Table order is preserved.
func SplitFeatures(t *data.Table, exclude ...string) (numeric, categorical []string) {
	skip := make(map[string]struct{}, len(exclude))
	for _, name := range exclude {
		skip[name] = struct{}{}
	}
	for _, c := range t.Columns {
		if _, ok := skip[c.Name]; ok {
			continue
		}
		if c.Kind == data.Numeric {
			numeric = append(numeric, c.Name)
		} else {
			categorical = append(categorical, c.Name)
		}
	}
	return numeric, categorical
}

// BuildFeatureMatrix lays out the numeric columns followed by the one-hot
// expansion of each categorical column. It returns the matrix and the name
// of every matrix column.
func BuildFeatureMatrix(t *data.Table, numeric, categorical []string) (*mat.Dense, []string, error) {
	var cols []*data.Column
	for _, name := range numeric {
		c, err := t.Column(name)
		if err != nil {
			return nil, nil, err
		}
		if c.Kind != data.Numeric {
			return nil, nil, fmt.Errorf("dataprep: column %q is not numeric", name)
		}
		cols = append(cols, c)
	}
	for _, name := range categorical {
		c, err := t.Column(name)
		if err != nil {
			return nil, nil, err
		}
		if c.Kind != data.Categorical {
			return nil, nil, fmt.Errorf("dataprep: column %q is not categorical", name)
		}
		cols = append(cols, OneHot(c)...)
	}
	if len(cols) == 0 {
		return nil, nil, errors.New("dataprep: no feature columns")
	}

	rows := t.Rows()
	X := mat.NewDense(rows, len(cols), nil)
	names := make([]string, len(cols))
	for j, c := range cols {
		names[j] = c.Name
		X.SetCol(j, c.Num)
	}
	return X, names, nil
}
