// Package report renders run results for the terminal and writes the
// optional chart and graph artifacts.
package report

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"salesclass/pkg/model"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	nameStyle   = lipgloss.NewStyle().Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1).Align(lipgloss.Right)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#16858E"))
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == 0:
				return nameStyle
			default:
				return cellStyle
			}
		})
}

func f2(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) }

// ClassificationTable renders the per-class rows followed by accuracy, macro
// avg and weighted avg, every score rounded to two decimals. The accuracy
// row repeats the accuracy in each column.
func ClassificationTable(rep *model.Report) string {
	t := newTable("", "precision", "recall", "f1-score", "support")
	for _, c := range rep.Classes {
		t.Row(c.Name, f2(c.Precision), f2(c.Recall), f2(c.F1), strconv.Itoa(c.Support))
	}
	acc := f2(rep.Accuracy)
	t.Row("accuracy", acc, acc, acc, acc)
	for _, c := range []model.ClassMetrics{rep.MacroAvg, rep.WeightedAvg} {
		t.Row(c.Name, f2(c.Precision), f2(c.Recall), f2(c.F1), strconv.Itoa(c.Support))
	}
	return t.String()
}

// ConfusionTable renders rep.Confusion with true classes as rows and
// predicted classes as columns.
func ConfusionTable(rep *model.Report) string {
	headers := []string{"true \\ pred"}
	for _, c := range rep.Classes {
		headers = append(headers, c.Name)
	}
	t := newTable(headers...)
	for i, c := range rep.Classes {
		row := []string{c.Name}
		for _, n := range rep.Confusion[i] {
			row = append(row, strconv.Itoa(n))
		}
		t.Row(row...)
	}
	return t.String()
}

// Summary is a one-line description of the held-out score.
func Summary(modelKind string, rep *model.Report) string {
	return fmt.Sprintf("%s: accuracy %.4f on %d test rows", modelKind, rep.Accuracy, rep.Total)
}
