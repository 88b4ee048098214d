package report

import (
	"errors"
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// maxBars caps the chart at the highest scoring features.
const maxBars = 30

// PlotImportances saves a bar chart of the features ranked by fscore. The
// image format follows the file extension (png, svg, pdf...).
func PlotImportances(path, title string, features []FeatureScore) error {
	if len(features) == 0 {
		return errors.New("report: nothing to plot")
	}
	ranked := Ranked(features)
	if len(ranked) > maxBars {
		ranked = ranked[:maxBars]
	}

	values := make(plotter.Values, len(ranked))
	names := make([]string, len(ranked))
	for i, f := range ranked {
		values[i] = f.FScore
		names[i] = f.Name
	}

	p := plot.New()
	p.Title.Text = title
	p.Y.Label.Text = "fscore (split count)"

	bars, err := plotter.NewBarChart(values, vg.Points(12))
	if err != nil {
		return fmt.Errorf("report: bar chart: %w", err)
	}
	bars.Color = color.RGBA{R: 50, G: 90, B: 200, A: 255}
	bars.LineStyle.Width = 0
	p.Add(bars)
	p.NominalX(names...)
	p.X.Tick.Label.Rotation = math.Pi / 2
	p.X.Tick.Label.XAlign = draw.XRight
	p.X.Tick.Label.YAlign = draw.YCenter

	width := vg.Length(len(ranked))*vg.Points(18) + 2*vg.Inch
	if err := p.Save(width, 4*vg.Inch, path); err != nil {
		return fmt.Errorf("report: save plot: %w", err)
	}
	return nil
}
