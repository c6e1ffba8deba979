package report

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// WriteResidualPlot saves a PNG with one residual line per track, the
// static/dynamic threshold as a dashed line and estimation failures as
// crosses on the x axis. Returns the number of tracks plotted; with no
// samples nothing is written.
func (r *Recorder) WriteResidualPlot(path string) (int, error) {
	residuals := r.Residuals()
	failures := r.Failures()
	if len(residuals) == 0 && len(failures) == 0 {
		return 0, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return 0, fmt.Errorf("failed to create output dir: %w", err)
	}

	p := plot.New()
	p.Title.Text = "Residual translation error per track"
	p.X.Label.Text = "Frame"
	p.Y.Label.Text = "Residual (m)"

	byTrack := make(map[int]plotter.XYs)
	var ids []int
	minFrame, maxFrame := 0, 0
	threshold := 0.0
	for i, s := range residuals {
		if _, ok := byTrack[s.TrackID]; !ok {
			ids = append(ids, s.TrackID)
		}
		byTrack[s.TrackID] = append(byTrack[s.TrackID], plotter.XY{X: float64(s.FrameIdx), Y: s.Residual})
		if i == 0 || s.FrameIdx < minFrame {
			minFrame = s.FrameIdx
		}
		maxFrame = max(maxFrame, s.FrameIdx)
		threshold = s.Threshold
	}

	colors := trackColors(len(ids))
	for i, id := range ids {
		line, points, err := plotter.NewLinePoints(byTrack[id])
		if err != nil {
			return 0, err
		}
		line.Color = colors[i]
		line.Width = vg.Points(1)
		points.Color = colors[i]
		points.Radius = vg.Points(1.5)
		p.Add(line, points)
		p.Legend.Add(fmt.Sprintf("track %d", id), line, points)
	}

	if len(residuals) > 0 {
		limit, err := plotter.NewLine(plotter.XYs{
			{X: float64(minFrame), Y: threshold},
			{X: float64(maxFrame), Y: threshold},
		})
		if err != nil {
			return 0, err
		}
		limit.Color = color.Gray{Y: 96}
		limit.Dashes = []vg.Length{vg.Points(4), vg.Points(4)}
		p.Add(limit)
		p.Legend.Add("threshold", limit)
	}

	if len(failures) > 0 {
		pts := make(plotter.XYs, len(failures))
		for i, f := range failures {
			pts[i] = plotter.XY{X: float64(f.FrameIdx), Y: 0}
		}
		crosses, err := plotter.NewScatter(pts)
		if err != nil {
			return 0, err
		}
		crosses.GlyphStyle.Shape = draw.CrossGlyph{}
		crosses.GlyphStyle.Color = color.RGBA{R: 200, A: 255}
		p.Add(crosses)
		p.Legend.Add("no estimate", crosses)
	}

	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10

	if err := p.Save(14*vg.Inch, 6*vg.Inch, path); err != nil {
		return 0, fmt.Errorf("save residual plot: %w", err)
	}
	return len(ids), nil
}

// trackColors returns n distinct line colors spread from red to magenta.
func trackColors(n int) []color.Color {
	if n <= 0 {
		return nil
	}
	// Rainbow needs at least two colors to space the hues.
	return palette.Rainbow(max(n, 2), palette.Red, palette.Magenta, 0.8, 0.85, 1).Colors()[:n]
}
