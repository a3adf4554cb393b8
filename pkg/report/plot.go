package report

import (
	"errors"
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// SaveLossPlot draws the training loss per epoch. The image format follows
// the file extension (png, svg, pdf, ...).
func SaveLossPlot(curve []float64, filename string) error {
	if len(curve) == 0 {
		return errors.New("report: empty loss curve")
	}
	p := plot.New()
	p.Title.Text = "Training loss"
	p.X.Label.Text = "epoch"
	p.Y.Label.Text = "loss"
	p.Add(plotter.NewGrid())

	pts := make(plotter.XYs, len(curve))
	for i, v := range curve {
		pts[i].X = float64(i + 1)
		pts[i].Y = v
	}
	l, err := plotter.NewLine(pts)
	if err != nil {
		return fmt.Errorf("report: loss line: %w", err)
	}
	l.LineStyle.Width = vg.Points(1.5)
	p.Add(l)

	if err := p.Save(6*vg.Inch, 4*vg.Inch, filename); err != nil {
		return fmt.Errorf("report: save %s: %w", filename, err)
	}
	return nil
}
