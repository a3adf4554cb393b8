package dataprep

import (
	"sort"

	"salesclass/pkg/data"
	"salesclass/pkg/stats"
)

// ValueCount is one categorical level and how often it occurs.
type ValueCount struct {
	Value string
	Count int
}

// ColumnProfile summarizes a single column.
type ColumnProfile struct {
	Name    string
	Kind    data.Kind
	Missing int

	// numeric columns
	Min, Max, Mean, Std, Median float64

	// categorical columns
	Distinct int
	Top      []ValueCount
}

// Profile summarizes every column of t. Categorical columns keep their topN
// most frequent levels.
func Profile(t *data.Table, topN int) []ColumnProfile {
	out := make([]ColumnProfile, 0, len(t.Columns))
	for _, c := range t.Columns {
		p := ColumnProfile{Name: c.Name, Kind: c.Kind, Missing: c.MissingCount()}
		if c.Kind == data.Numeric {
			vals := stats.DropNaN(c.Num)
			p.Min, p.Max = stats.MinMax(vals)
			p.Mean = stats.Mean(vals)
			p.Std = stats.Std(vals)
			p.Median = stats.Median(vals)
		} else {
			counts := ValueCounts(c)
			p.Distinct = len(counts)
			if topN > 0 && len(counts) > topN {
				counts = counts[:topN]
			}
			p.Top = counts
		}
		out = append(out, p)
	}
	return out
}

// ValueCounts returns the non-missing levels of a categorical column, most
// frequent first, ties broken by value.
func ValueCounts(c *data.Column) []ValueCount {
	m := make(map[string]int)
	for _, v := range c.Cat {
		if v != "" {
			m[v]++
		}
	}
	out := make([]ValueCount, 0, len(m))
	for v, n := range m {
		out = append(out, ValueCount{Value: v, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Value < out[j].Value
	})
	return out
}
