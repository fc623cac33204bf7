// Package plot renders Pd-vs-SNR curves to PNG.
package plot

import (
	"bytes"
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"radartools/domain/sweep"
)

var curveColors = []color.Color{
	color.RGBA{R: 255, A: 255},
	color.RGBA{G: 160, A: 255},
	color.RGBA{B: 255, A: 255},
	color.RGBA{R: 255, G: 165, A: 255},
	color.RGBA{R: 128, B: 128, A: 255},
	color.RGBA{G: 128, B: 128, A: 255},
}

// CurveRenderer draws every curve of a sweep on one Pd-vs-SNR(dB) plot
type CurveRenderer struct {
	width  vg.Length
	height vg.Length
}

// NewCurveRenderer creates a renderer producing 800x500pt images
func NewCurveRenderer() *CurveRenderer {
	return &CurveRenderer{width: vg.Points(800), height: vg.Points(500)}
}

// Render returns the plot as PNG bytes
func (r *CurveRenderer) Render(result *sweep.Result) ([]byte, error) {
	if result == nil || len(result.Curves) == 0 {
		return nil, fmt.Errorf("no curves to plot")
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Probability of detection, Pfa = %g", result.Pfa)
	p.X.Label.Text = "SNR per pulse (dB)"
	p.Y.Label.Text = "Pd"
	p.Y.Min = 0
	p.Y.Max = 1
	p.X.Min = result.Grid.MinDB
	p.X.Max = result.Grid.MaxDB
	p.Add(plotter.NewGrid())

	for i, c := range result.Curves {
		pts := make(plotter.XYs, len(c.Points))
		for j, pt := range c.Points {
			pts[j] = plotter.XY{X: pt.SNRdB, Y: pt.Pd}
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return nil, fmt.Errorf("failed to create line for %s: %w", c.Label(), err)
		}
		line.Color = curveColors[i%len(curveColors)]
		line.LineStyle.Width = vg.Points(1.5)
		if i >= len(curveColors) {
			line.LineStyle.Dashes = []vg.Length{vg.Points(5), vg.Points(3)}
		}
		p.Add(line)
		p.Legend.Add(c.Label(), line)
	}
	p.Legend.Top = false
	p.Legend.Left = false
	p.Legend.XOffs = -vg.Points(10)
	p.Legend.YOffs = vg.Points(10)

	writer, err := p.WriterTo(r.width, r.height, "png")
	if err != nil {
		return nil, fmt.Errorf("failed to create plot writer: %w", err)
	}
	buf := new(bytes.Buffer)
	if _, err := writer.WriteTo(buf); err != nil {
		return nil, fmt.Errorf("failed to write plot to buffer: %w", err)
	}
	return buf.Bytes(), nil
}
