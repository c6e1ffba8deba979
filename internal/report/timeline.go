package report

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/instrec/internal/tracks"
)

var stateColors = map[tracks.State]string{
	tracks.Static:    "#35b779",
	tracks.Dynamic:   "#e8590c",
	tracks.Uncertain: "#868e96",
}

// RenderTimeline writes an HTML scatter chart with one point per track
// update: frame on x, track id on y, colored by the state the track was
// in after that update. Points carry the residual (or -1 for a failed
// estimate) as their third value for the tooltip.
func (r *Recorder) RenderTimeline(w io.Writer, title string) error {
	transitions := r.Transitions()
	history := newStateHistory(transitions)
	series := map[tracks.State][]opts.ScatterData{}
	maxTrack := 0

	for _, s := range r.Residuals() {
		st := history.at(s.TrackID, s.FrameIdx)
		series[st] = append(series[st], opts.ScatterData{Value: []interface{}{s.FrameIdx, s.TrackID, s.Residual}})
		maxTrack = max(maxTrack, s.TrackID)
	}
	for _, f := range r.Failures() {
		st := history.at(f.TrackID, f.FrameIdx)
		series[st] = append(series[st], opts.ScatterData{
			Value:  []interface{}{f.FrameIdx, f.TrackID, -1},
			Symbol: "diamond",
		})
		maxTrack = max(maxTrack, f.TrackID)
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Width: "1200px", Height: "600px"}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: fmt.Sprintf("tracks=%d transitions=%d", maxTrack+1, len(transitions))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Type: "value", Name: "Frame", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value", Name: "Track", NameLocation: "middle", NameGap: 30, Min: -1, Max: maxTrack + 1}),
	)

	for _, st := range []tracks.State{tracks.Static, tracks.Dynamic, tracks.Uncertain} {
		scatter.AddSeries(st.String(), series[st],
			charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 8}),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: stateColors[st]}),
		)
	}

	if err := scatter.Render(w); err != nil {
		return fmt.Errorf("render timeline: %w", err)
	}
	return nil
}
