package report

import (
	"bytes"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/instrec/internal/tracks"
)

func sampleRecorder() *Recorder {
	r := NewRecorder()
	r.RecordResidual(1, 1, 0.02, 0.2)
	r.RecordTransition(1, 1, tracks.Uncertain, tracks.Static)
	r.RecordResidual(0, 1, 0.9, 0.2)
	r.RecordTransition(0, 1, tracks.Uncertain, tracks.Dynamic)
	r.RecordResidual(1, 2, 0.03, 0.2)
	r.RecordEstimationFailure(0, 2, 1)
	r.RecordEstimationFailure(0, 3, 2)
	r.RecordTransition(0, 3, tracks.Dynamic, tracks.Uncertain)
	return r
}

func TestRecorder_OrdersSamples(t *testing.T) {
	t.Parallel()
	r := sampleRecorder()

	assert.Equal(t, []ResidualSample{
		{TrackID: 0, FrameIdx: 1, Residual: 0.9, Threshold: 0.2},
		{TrackID: 1, FrameIdx: 1, Residual: 0.02, Threshold: 0.2},
		{TrackID: 1, FrameIdx: 2, Residual: 0.03, Threshold: 0.2},
	}, r.Residuals())
	assert.Equal(t, []FailureSample{
		{TrackID: 0, FrameIdx: 2, FailureStreak: 1},
		{TrackID: 0, FrameIdx: 3, FailureStreak: 2},
	}, r.Failures())
	assert.Len(t, r.Transitions(), 3)
}

func TestRecorder_StateAt(t *testing.T) {
	t.Parallel()
	r := sampleRecorder()

	assert.Equal(t, tracks.Uncertain, r.StateAt(0, 0))
	assert.Equal(t, tracks.Dynamic, r.StateAt(0, 1))
	assert.Equal(t, tracks.Dynamic, r.StateAt(0, 2))
	assert.Equal(t, tracks.Uncertain, r.StateAt(0, 3))
	assert.Equal(t, tracks.Static, r.StateAt(1, 9))
	assert.Equal(t, tracks.Uncertain, r.StateAt(7, 9), "unknown track")
}

func TestStateHistory_MatchesLinearScan(t *testing.T) {
	t.Parallel()
	r := NewRecorder()
	states := []tracks.State{tracks.Static, tracks.Dynamic, tracks.Uncertain}
	for id := 0; id < 4; id++ {
		for f := id; f < 40; f += id + 2 {
			r.RecordTransition(id, f, tracks.Uncertain, states[(f+id)%3])
		}
	}
	// Two transitions in one frame: the later one wins.
	r.RecordTransition(2, 41, tracks.Static, tracks.Dynamic)
	r.RecordTransition(2, 41, tracks.Dynamic, tracks.Static)

	transitions := r.Transitions()
	history := newStateHistory(transitions)
	for id := 0; id < 5; id++ {
		for f := -1; f < 45; f++ {
			want := tracks.Uncertain
			for _, tr := range transitions {
				if tr.TrackID == id && tr.FrameIdx <= f {
					want = tr.To
				}
			}
			assert.Equal(t, want, history.at(id, f), "track %d frame %d", id, f)
		}
	}
	assert.Equal(t, tracks.Static, history.at(2, 41))
}

func TestRecorder_StartStop(t *testing.T) {
	t.Parallel()
	r := sampleRecorder()
	r.Stop()
	assert.False(t, r.IsEnabled())
	r.RecordResidual(5, 5, 1, 0.2)
	assert.Len(t, r.Residuals(), 3, "stopped recorder ignores samples")

	r.Start()
	assert.True(t, r.IsEnabled())
	assert.Empty(t, r.Residuals())
	assert.Empty(t, r.Failures())
	assert.Empty(t, r.Transitions())
}

func TestRecorder_ConcurrentRecording(t *testing.T) {
	t.Parallel()
	r := NewRecorder()
	var wg sync.WaitGroup
	for id := 0; id < 8; id++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for f := 0; f < 50; f++ {
				r.RecordResidual(id, f, 0.1, 0.2)
			}
		}(id)
	}
	wg.Wait()
	assert.Len(t, r.Residuals(), 400)
}

func TestRecorder_ImplementsDebugCollector(t *testing.T) {
	t.Parallel()
	var _ tracks.DebugCollector = NewRecorder()
}

func TestWriteResidualPlot(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "plots", "residuals.png")

	n, err := sampleRecorder().WriteResidualPlot(path)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestTrackColors(t *testing.T) {
	t.Parallel()
	assert.Nil(t, trackColors(0))
	assert.Len(t, trackColors(1), 1)

	colors := trackColors(6)
	require.Len(t, colors, 6)
	seen := make(map[[4]uint32]bool)
	for _, c := range colors {
		r, g, b, a := c.RGBA()
		seen[[4]uint32{r, g, b, a}] = true
	}
	assert.Len(t, seen, 6, "colors must be distinct")
}

func TestWriteResidualPlot_NoSamples(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "empty.png")

	n, err := NewRecorder().WriteResidualPlot(path)
	require.NoError(t, err)
	assert.Zero(t, n)
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestRenderTimeline(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	require.NoError(t, sampleRecorder().RenderTimeline(&buf, "replay"))

	html := buf.String()
	assert.Contains(t, html, "<html")
	assert.Contains(t, html, "replay")
	for _, label := range []string{"Static", "Dynamic", "Uncertain"} {
		assert.Contains(t, html, label)
	}
	assert.Contains(t, html, "transitions=3")
}
