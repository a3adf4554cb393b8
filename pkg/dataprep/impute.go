package dataprep

import (
	"fmt"
	"math"
	"strings"

	"salesclass/pkg/data"
	"salesclass/pkg/stats"
)

// ImputeResult summarizes a grouped median imputation.
type ImputeResult struct {
	Groups       int
	GroupFilled  int
	GlobalFilled int
	Remaining    int
	GlobalMedian float64
}

// ImputeMedian replaces NaN values in col with the median of the observed
// values and returns how many cells were filled.
func ImputeMedian(col []float64) (int, float64) {
	median := stats.Median(stats.DropNaN(col))
	if math.IsNaN(median) {
		return 0, median
	}
	filled := 0
	for i, v := range col {
		if math.IsNaN(v) {
			col[i] = median
			filled++
		}
	}
	return filled, median
}

// ImputeGroupMedian fills missing values of the numeric target column in
// two passes. First each missing cell gets the median of its group, where a
// group is the tuple of groupBy values. Cells whose group has no observed
// value are then filled with the median of the whole column. Rows with a
// missing group key take part in the second pass only.
func ImputeGroupMedian(t *data.Table, target string, groupBy ...string) (ImputeResult, error) {
	var res ImputeResult
	col, err := t.Column(target)
	if err != nil {
		return res, err
	}
	if col.Kind != data.Numeric {
		return res, fmt.Errorf("dataprep: impute target %q is not numeric", target)
	}
	keys := make([]*data.Column, len(groupBy))
	for i, name := range groupBy {
		if keys[i], err = t.Column(name); err != nil {
			return res, err
		}
	}

	groups := make(map[string][]int)
	var order []string
	for i := range col.Num {
		key, ok := groupKey(keys, i)
		if !ok {
			continue
		}
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], i)
	}
	res.Groups = len(groups)

	for _, key := range order {
		rows := groups[key]
		observed := make([]float64, 0, len(rows))
		for _, i := range rows {
			if !math.IsNaN(col.Num[i]) {
				observed = append(observed, col.Num[i])
			}
		}
		if len(observed) == 0 || len(observed) == len(rows) {
			continue
		}
		median := stats.Median(observed)
		for _, i := range rows {
			if math.IsNaN(col.Num[i]) {
				col.Num[i] = median
				res.GroupFilled++
			}
		}
	}

	res.GlobalFilled, res.GlobalMedian = ImputeMedian(col.Num)
	res.Remaining = col.MissingCount()
	return res, nil
}

func groupKey(keys []*data.Column, i int) (string, bool) {
	parts := make([]string, len(keys))
	for k, c := range keys {
		if c.IsMissing(i) {
			return "", false
		}
		parts[k] = c.Text(i)
	}
	return strings.Join(parts, "\x1f"), true
}
