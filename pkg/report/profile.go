package report

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"salesclass/pkg/data"
	"salesclass/pkg/dataprep"
)

func num(v float64) string {
	if math.IsNaN(v) {
		return "-"
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// ProfileTable renders one row per column: kind and missing count, then
// numeric summary statistics or the categorical level counts.
func ProfileTable(rows int, profiles []dataprep.ColumnProfile) string {
	t := newTable("column", "kind", "missing", "min", "max", "mean", "std", "median", "distinct", "top values")
	for _, p := range profiles {
		missing := fmt.Sprintf("%d (%.1f%%)", p.Missing, 100*float64(p.Missing)/float64(max(rows, 1)))
		if p.Kind == data.Numeric {
			t.Row(p.Name, p.Kind.String(), missing, num(p.Min), num(p.Max), num(p.Mean), num(p.Std), num(p.Median), "", "")
			continue
		}
		top := make([]string, len(p.Top))
		for i, vc := range p.Top {
			top[i] = fmt.Sprintf("%s (%d)", vc.Value, vc.Count)
		}
		t.Row(p.Name, p.Kind.String(), missing, "", "", "", "", "", strconv.Itoa(p.Distinct), strings.Join(top, ", "))
	}
	return t.String()
}
