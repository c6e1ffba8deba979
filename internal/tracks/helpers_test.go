package tracks

import (
	"sync"

	"github.com/banshee-data/instrec/internal/geom"
	"github.com/banshee-data/instrec/internal/segmentation"
)

// scriptedEstimator replays a fixed list of results, one per call.
// A nil entry means "no estimate".
type scriptedEstimator struct {
	results []*geom.Pose
	calls   int
	seen    [][2]int
}

func (e *scriptedEstimator) EstimateRelativePose(prev, cur *TrackFrame, _ geom.Pose32) (geom.Pose, bool) {
	e.seen = append(e.seen, [2]int{prev.FrameIdx, cur.FrameIdx})
	if e.calls >= len(e.results) {
		panic("scriptedEstimator: out of results")
	}
	r := e.results[e.calls]
	e.calls++
	if r == nil {
		return geom.Pose{}, false
	}
	return *r, true
}

func posePtr(p geom.Pose) *geom.Pose { return &p }

// fixedEstimator always returns the same answer.
type fixedEstimator struct {
	pose geom.Pose
	ok   bool
}

func (e fixedEstimator) EstimateRelativePose(_, _ *TrackFrame, _ geom.Pose32) (geom.Pose, bool) {
	return e.pose, e.ok
}

var (
	noEstimate = fixedEstimator{}
	stillPose  = fixedEstimator{pose: geom.Identity(), ok: true}
	movingPose = fixedEstimator{pose: geom.Translation(1.0, 0, 0), ok: true}
)

func testConfig() Config {
	return Config{
		MaxUncertainFramesStatic:   3,
		MaxUncertainFramesDynamic:  2,
		TransErrorThreshold:        0.20,
		MinFramesForReconstruction: 6,
		MinSameClassScore:          0.01,
		TemporalDiscount:           0.8,
	}
}

var defaultBox = segmentation.BoundingBox{X0: 100, Y0: 50, X1: 199, Y1: 149}

func makeFrame(idx int, class string, box segmentation.BoundingBox) TrackFrame {
	view := segmentation.NewInstanceView(segmentation.InstanceDetection{
		ClassName:  class,
		Confidence: 0.9,
		Box:        box,
	}, nil)
	return NewTrackFrame(idx, view, geom.Identity32())
}

// trackWithFrames builds a track holding the given global frame indices.
func trackWithFrames(id int, indices ...int) *Track {
	tr := NewTrack(id, testConfig())
	for _, idx := range indices {
		tr.AddFrame(makeFrame(idx, "car", defaultBox))
	}
	return tr
}

// addAndUpdate appends frame idx and runs one Update with est.
func addAndUpdate(tr *Track, idx int, est PoseEstimator) {
	tr.AddFrame(makeFrame(idx, "car", defaultBox))
	tr.Update(geom.Identity32(), est, false)
}

type transition struct {
	trackID, frameIdx int
	from, to          State
}

type recordingCollector struct {
	mu          sync.Mutex
	enabled     bool
	residuals   []float64
	failures    []int
	transitions []transition
}

func (c *recordingCollector) IsEnabled() bool { return c.enabled }

func (c *recordingCollector) RecordResidual(_, _ int, residual, _ float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.residuals = append(c.residuals, residual)
}

func (c *recordingCollector) RecordEstimationFailure(_, _, streak int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failures = append(c.failures, streak)
}

func (c *recordingCollector) RecordTransition(trackID, frameIdx int, from, to State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.transitions = append(c.transitions, transition{trackID, frameIdx, from, to})
}
