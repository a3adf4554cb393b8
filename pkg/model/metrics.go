package model

import (
	"errors"
	"fmt"
)

// Accuracy is the fraction of positions where yPred equals yTrue.
func Accuracy(yTrue, yPred []int) float64 {
	if len(yTrue) == 0 {
		return 0
	}
	c := 0
	for i := range yTrue {
		if yTrue[i] == yPred[i] {
			c++
		}
	}
	return float64(c) / float64(len(yTrue))
}

// ConfusionMatrix counts (true, predicted) pairs. Row i and column j follow
// the order of labels; pairs involving other labels are ignored.
func ConfusionMatrix(yTrue, yPred, labels []int) [][]int {
	pos := make(map[int]int, len(labels))
	for i, l := range labels {
		pos[l] = i
	}
	cm := make([][]int, len(labels))
	for i := range cm {
		cm[i] = make([]int, len(labels))
	}
	for i := range yTrue {
		r, ok1 := pos[yTrue[i]]
		c, ok2 := pos[yPred[i]]
		if ok1 && ok2 {
			cm[r][c]++
		}
	}
	return cm
}

// ClassMetrics holds one row of a classification report.
type ClassMetrics struct {
	Name      string
	Precision float64
	Recall    float64
	F1        float64
	Support   int
}

// Report is a per-class precision/recall/F1 summary with accuracy and
// macro and support-weighted averages.
type Report struct {
	Classes     []ClassMetrics
	Accuracy    float64
	MacroAvg    ClassMetrics
	WeightedAvg ClassMetrics
	Total       int
	Confusion   [][]int
}

// ClassificationReport scores yPred against yTrue for each of labels, named
// by names. A ratio with a zero denominator counts as 0.
func ClassificationReport(yTrue, yPred, labels []int, names []string) (*Report, error) {
	if len(yTrue) != len(yPred) {
		return nil, fmt.Errorf("metrics: %d true labels, %d predictions", len(yTrue), len(yPred))
	}
	if len(yTrue) == 0 {
		return nil, errors.New("metrics: no samples")
	}
	if len(labels) != len(names) {
		return nil, fmt.Errorf("metrics: %d labels, %d names", len(labels), len(names))
	}

	cm := ConfusionMatrix(yTrue, yPred, labels)
	rep := &Report{
		Accuracy:    Accuracy(yTrue, yPred),
		Total:       len(yTrue),
		Confusion:   cm,
		MacroAvg:    ClassMetrics{Name: "macro avg"},
		WeightedAvg: ClassMetrics{Name: "weighted avg"},
	}

	for k := range labels {
		tp := cm[k][k]
		predicted, actual := 0, 0
		for j := range labels {
			predicted += cm[j][k]
			actual += cm[k][j]
		}
		m := ClassMetrics{
			Name:      names[k],
			Precision: ratio(tp, predicted),
			Recall:    ratio(tp, actual),
			Support:   actual,
		}
		if m.Precision+m.Recall > 0 {
			m.F1 = 2 * m.Precision * m.Recall / (m.Precision + m.Recall)
		}
		rep.Classes = append(rep.Classes, m)
	}

	support := 0
	for _, m := range rep.Classes {
		support += m.Support
	}
	nk := float64(len(rep.Classes))
	for _, m := range rep.Classes {
		rep.MacroAvg.Precision += m.Precision / nk
		rep.MacroAvg.Recall += m.Recall / nk
		rep.MacroAvg.F1 += m.F1 / nk
		if support > 0 {
			w := float64(m.Support) / float64(support)
			rep.WeightedAvg.Precision += m.Precision * w
			rep.WeightedAvg.Recall += m.Recall * w
			rep.WeightedAvg.F1 += m.F1 * w
		}
	}
	rep.MacroAvg.Support = support
	rep.WeightedAvg.Support = support
	return rep, nil
}

func ratio(a, b int) float64 {
	if b == 0 {
		return 0
	}
	return float64(a) / float64(b)
}
