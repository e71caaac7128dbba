package progress

import (
	"errors"
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// ErrEmptyHistory is returned when plotting a history with no generations.
var ErrEmptyHistory = errors.New("progress: empty history")

// Plot size.
const (
	plotWidth  = 8 * vg.Inch
	plotHeight = 4 * vg.Inch
)

// SavePlot writes a fitness-over-generations chart with best and mean
// series to path. The image format follows the extension (png, svg, pdf...).
// Fitness spans many orders of magnitude, so the Y axis is logarithmic.
func SavePlot(h *History, path string) error {
	stats := h.Stats()
	if len(stats) == 0 {
		return ErrEmptyHistory
	}

	best := make(plotter.XYs, 0, len(stats))
	mean := make(plotter.XYs, 0, len(stats))
	for _, st := range stats {
		if st.Best > 0 {
			best = append(best, plotter.XY{X: float64(st.Generation), Y: st.Best})
		}
		if st.Mean > 0 {
			mean = append(mean, plotter.XY{X: float64(st.Generation), Y: st.Mean})
		}
	}
	if len(best) == 0 {
		return fmt.Errorf("%w: no positive fitness values", ErrEmptyHistory)
	}

	p := plot.New()
	p.Title.Text = "Fitness over generations"
	p.X.Label.Text = "Generation"
	p.Y.Label.Text = "Fitness"
	p.Y.Scale = plot.LogScale{}
	p.Y.Tick.Marker = plot.LogTicks{Prec: -1}
	p.Add(plotter.NewGrid())

	if err := addLine(p, "best", best, color.RGBA{R: 200, A: 255}); err != nil {
		return err
	}
	if len(mean) > 0 {
		if err := addLine(p, "mean", mean, color.RGBA{B: 200, A: 255}); err != nil {
			return err
		}
	}
	p.Legend.Top = true
	p.Legend.Left = true

	pad(p, best)

	if err := p.Save(plotWidth, plotHeight, path); err != nil {
		return fmt.Errorf("progress: save plot: %w", err)
	}
	return nil
}

func addLine(p *plot.Plot, name string, pts plotter.XYs, c color.Color) error {
	line, err := plotter.NewLine(pts)
	if err != nil {
		return fmt.Errorf("progress: %s series: %w", name, err)
	}
	line.Color = c
	line.Width = vg.Points(1.5)
	p.Add(line)
	p.Legend.Add(name, line)
	return nil
}

// pad widens degenerate axis ranges so single-generation histories still
// render.
func pad(p *plot.Plot, pts plotter.XYs) {
	if p.X.Min == p.X.Max {
		p.X.Min--
		p.X.Max++
	}
	if p.Y.Min == p.Y.Max {
		y := pts[0].Y
		p.Y.Min = y / 2
		p.Y.Max = y * 2
	}
}
