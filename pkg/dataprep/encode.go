package dataprep

import (
	"sort"

	"salesclass/pkg/data"
)

// Levels returns the distinct non-missing values of a categorical column in
// lexicographic order.
func Levels(col *data.Column) []string {
	seen := make(map[string]struct{})
	for _, v := range col.Cat {
		if v != "" {
			seen[v] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for v := range seen {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// OneHot expands a categorical column into one indicator column per level,
// named "<column>_<level>". A missing value yields a row of zeros.
func OneHot(col *data.Column) []*data.Column {
	levels := Levels(col)
	pos := make(map[string]int, len(levels))
	out := make([]*data.Column, len(levels))
	for k, lv := range levels {
		pos[lv] = k
		out[k] = data.NewNumeric(col.Name+"_"+lv, make([]float64, len(col.Cat)))
	}
	for i, v := range col.Cat {
		if k, ok := pos[v]; ok {
			out[k].Num[i] = 1
		}
	}
	return out
}
