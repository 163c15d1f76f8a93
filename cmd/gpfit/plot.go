package main

import (
	"image/color"

	"github.com/ChristopherRabotin/gogp"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// plotPrediction saves the samples and the predicted mean with its 2σ bounds as an image.
func plotPrediction(name string, times, values []float64, grid mat.Matrix, pred gogp.Prediction) error {
	p := plot.New()
	p.Title.Text = "GP prediction"
	p.X.Label.Text = "t"
	p.Y.Label.Text = "y"

	data := make(plotter.XYs, len(times))
	for i := range times {
		data[i].X = times[i]
		data[i].Y = values[i]
	}
	scatter, err := plotter.NewScatter(data)
	if err != nil {
		return err
	}
	scatter.GlyphStyle.Color = color.RGBA{A: 255}
	scatter.GlyphStyle.Radius = vg.Points(1.5)
	p.Add(scatter)
	p.Legend.Add("data", scatter)

	n, _ := grid.Dims()
	mean := make(plotter.XYs, n)
	upper := make(plotter.XYs, n)
	lower := make(plotter.XYs, n)
	for i := 0; i < n; i++ {
		t := grid.At(i, 0)
		μ, σ := pred.Mean().AtVec(i), pred.StdDev(i)
		mean[i] = plotter.XY{X: t, Y: μ}
		upper[i] = plotter.XY{X: t, Y: μ + 2*σ}
		lower[i] = plotter.XY{X: t, Y: μ - 2*σ}
	}
	if err := plotutil.AddLines(p, "mean", mean, "mean+2σ", upper, "mean-2σ", lower); err != nil {
		return err
	}
	return p.Save(8*vg.Inch, 5*vg.Inch, name)
}
