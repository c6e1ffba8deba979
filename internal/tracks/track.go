package tracks

import (
	"fmt"
	"math"
	"slices"

	"github.com/banshee-data/instrec/internal/geom"
	"github.com/banshee-data/instrec/internal/monitoring"
	"github.com/banshee-data/instrec/internal/recon"
)

// PoseEstimator estimates an object's motion between two of its frames.
//
// The returned transform is the object's apparent motion from prev to cur
// in camera coordinates, the same convention as egomotion, so a static
// object yields (approximately) egomotion itself. Returning false is an
// expected outcome (too few correspondences, degenerate motion), not an
// error.
type PoseEstimator interface {
	EstimateRelativePose(prev, cur *TrackFrame, egomotion geom.Pose32) (geom.Pose, bool)
}

// Track is one physical object observed across frames. Frames may have
// gaps where the object was not detected.
type Track struct {
	id     int
	cfg    Config
	frames []TrackFrame
	state  State

	reconstruction *recon.Handle
	needsCleanup   bool
	fusedFrames    int

	// Constant-velocity memory: the last estimator-confirmed relative
	// motion, the frame it was observed at (-1 when none) and the number
	// of frames it spans.
	lastKnownMotionTime int
	lastKnownMotionSpan int
	lastKnownMotion     geom.Pose

	failureStreak       int
	contradictionStreak int

	debug DebugCollector
}

// NewTrack returns an empty Uncertain track.
func NewTrack(id int, cfg Config) *Track {
	return &Track{
		id:                  id,
		cfg:                 cfg,
		state:               Uncertain,
		lastKnownMotionTime: -1,
		lastKnownMotion:     geom.Identity(),
	}
}

// SetDebugCollector attaches an optional collector for state machine
// internals. Pass nil to detach.
func (t *Track) SetDebugCollector(dc DebugCollector) {
	t.debug = dc
}

func (t *Track) debugEnabled() bool {
	return t.debug != nil && t.debug.IsEnabled()
}

// ID returns the track's identifier.
func (t *Track) ID() int { return t.id }

// Config returns the thresholds the track was built with.
func (t *Track) Config() Config { return t.cfg }

// Size returns the number of frames.
func (t *Track) Size() int { return len(t.frames) }

// AddFrame appends an observation. Frame indices must strictly increase.
func (t *Track) AddFrame(frame TrackFrame) {
	if n := len(t.frames); n > 0 && frame.FrameIdx <= t.frames[n-1].FrameIdx {
		panic(fmt.Sprintf("tracks: track %d: frame %d added after frame %d",
			t.id, frame.FrameIdx, t.frames[n-1].FrameIdx))
	}
	t.frames = append(t.frames, frame)
}

// Frames returns a copy of the frame history.
func (t *Track) Frames() []TrackFrame {
	return slices.Clone(t.frames)
}

// Frame returns the i-th frame of the track (not the global frame index).
func (t *Track) Frame(i int) TrackFrame {
	t.mustHaveFrame(i)
	return t.frames[i]
}

// LastFrame returns the most recent frame. The track must not be empty.
func (t *Track) LastFrame() TrackFrame {
	t.mustNotBeEmpty("LastFrame")
	return t.frames[len(t.frames)-1]
}

// StartTime returns the global index of the first frame.
func (t *Track) StartTime() int {
	t.mustNotBeEmpty("StartTime")
	return t.frames[0].FrameIdx
}

// EndTime returns the global index of the last frame.
func (t *Track) EndTime() int {
	t.mustNotBeEmpty("EndTime")
	return t.frames[len(t.frames)-1].FrameIdx
}

// ClassName returns the class of the most recent detection.
func (t *Track) ClassName() string {
	t.mustNotBeEmpty("ClassName")
	return t.frames[len(t.frames)-1].View.ClassName()
}

// State returns the current classification.
func (t *Track) State() State { return t.state }

// StateLabel returns the display label of the current classification.
func (t *Track) StateLabel() string { return t.state.String() }

// LastKnownMotion returns the last estimator-confirmed relative motion and
// the frame index it was observed at. ok is false before any estimate.
func (t *Track) LastKnownMotion() (motion geom.Pose, frameIdx int, ok bool) {
	return t.lastKnownMotion, t.lastKnownMotionTime, t.lastKnownMotionTime >= 0
}

// EligibleForReconstruction reports whether the track has enough frames to
// justify starting a reconstruction. It does not look at the state.
func (t *Track) EligibleForReconstruction() bool {
	return len(t.frames) >= t.cfg.MinFramesForReconstruction
}

// FirstFusableFrameIndex returns the index of the frame right before the
// first frame with a known relative pose (clamped to 0), or -1 when the
// track is empty or no frame has one.
func (t *Track) FirstFusableFrameIndex() int {
	for i := range t.frames {
		if t.frames[i].RelativePose.IsPresent() {
			return max(0, i-1)
		}
	}
	return -1
}

// FramePose returns the pose of frame i relative to the track's first
// frame, composing the relative poses of frames 1..i. Any missing link
// makes the result absent; links are never skipped or extrapolated.
func (t *Track) FramePose(i int) (geom.Pose, bool) {
	return t.FramePoseFrom(0, i)
}

// FramePoseFrom is FramePose measured from frame anchor instead of the
// first frame: it composes the relative poses of frames anchor+1..i.
// Frames before anchor have no pose in that frame of reference.
func (t *Track) FramePoseFrom(anchor, i int) (geom.Pose, bool) {
	t.mustHaveFrame(anchor)
	t.mustHaveFrame(i)
	if i < anchor {
		return geom.Pose{}, false
	}
	pose := geom.Identity()
	for k := anchor + 1; k <= i; k++ {
		rel, ok := t.frames[k].RelativePose.Get()
		if !ok {
			return geom.Pose{}, false
		}
		pose = rel.Mul(pose)
	}
	return pose, true
}

// HasReconstruction reports whether the track owns a reconstruction.
func (t *Track) HasReconstruction() bool {
	return t.reconstruction != nil
}

// Reconstruction returns the owned handle, or nil. Callers that keep it
// beyond the current frame must Acquire it and Release when done.
func (t *Track) Reconstruction() *recon.Handle {
	return t.reconstruction
}

// AttachReconstruction binds driver to this track. A track owns at most
// one reconstruction for its lifetime.
func (t *Track) AttachReconstruction(driver recon.Driver) *recon.Handle {
	if t.reconstruction != nil {
		panic(fmt.Sprintf("tracks: track %d already has reconstruction %s", t.id, t.reconstruction.VolumeID()))
	}
	t.reconstruction = recon.NewHandle(t.id, driver)
	debugf("track [%d]: attached reconstruction %s", t.id, t.reconstruction.VolumeID())
	return t.reconstruction
}

// NeedsCleanup reports whether a decay pass has been requested.
func (t *Track) NeedsCleanup() bool { return t.needsCleanup }

// SetNeedsCleanup sets or clears the pending decay request.
func (t *Track) SetNeedsCleanup(needsCleanup bool) { t.needsCleanup = needsCleanup }

// FusedFrames returns how many frames were fused into the reconstruction.
func (t *Track) FusedFrames() int { return t.fusedFrames }

// CountFusedFrame records one frame integrated into the reconstruction.
func (t *Track) CountFusedFrame() { t.fusedFrames++ }

// FuseFrame fuses frame i into the reconstruction if its pose relative to
// FirstFusableFrameIndex is known, counting it on success. The track must
// own a reconstruction.
func (t *Track) FuseFrame(i int) bool {
	t.mustHaveReconstruction("FuseFrame")
	anchor := t.FirstFusableFrameIndex()
	if anchor < 0 {
		return false
	}
	pose, ok := t.FramePoseFrom(anchor, i)
	if !ok {
		return false
	}
	f := &t.frames[i]
	t.reconstruction.Fuse(recon.Frame{
		TrackID:    t.id,
		FrameIdx:   f.FrameIdx,
		Pose:       pose,
		CameraPose: f.CameraPose,
		View:       f.View,
	})
	t.CountFusedFrame()
	return true
}

// ReapWeight returns the decay weight for a volume with fusedFrames fused
// frames: round(0.33·n) clamped to [1, 5].
func ReapWeight(fusedFrames int) int {
	w := int(math.Round(ReapWeightPerFusedFrame * float64(fusedFrames)))
	return min(MaxReapWeight, max(MinReapWeight, w))
}

// ReapReconstruction runs a decay pass on the reconstruction, weighted by
// how much evidence has been fused. The track must own a reconstruction.
func (t *Track) ReapReconstruction() {
	t.mustHaveReconstruction("ReapReconstruction")
	weight := ReapWeight(t.fusedFrames)
	monitoring.Logf("Reaping track [%d] with max weight [%d].", t.id, weight)
	t.reconstruction.Decay(weight)
}

// Close releases the track's reference to its reconstruction. Dropping a
// track that still owns one discards unflushed 3D data, so it is logged
// as a warning. The returned error comes from the driver's Close, if this
// was the last reference.
func (t *Track) Close() error {
	if t.reconstruction == nil {
		return nil
	}
	h := t.reconstruction
	t.reconstruction = nil
	monitoring.Warnf("Deleting track [%d] and its associated reconstruction %s (%d fused frames, %d refs)!",
		t.id, h.VolumeID(), t.fusedFrames, h.Refs())
	return h.Release()
}

func (t *Track) mustNotBeEmpty(op string) {
	if len(t.frames) == 0 {
		panic(fmt.Sprintf("tracks: %s on track %d with no frames", op, t.id))
	}
}

func (t *Track) mustHaveFrame(i int) {
	if i < 0 || i >= len(t.frames) {
		panic(fmt.Sprintf("tracks: frame %d out of range for track %d with %d frames", i, t.id, len(t.frames)))
	}
}

func (t *Track) mustHaveReconstruction(op string) {
	if t.reconstruction == nil {
		panic(fmt.Sprintf("tracks: %s on track %d without a reconstruction", op, t.id))
	}
}
