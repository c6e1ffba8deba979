// Package report turns the state machine internals recorded during a run
// into artifacts for offline inspection: a PNG plot of residual
// translation errors and an HTML timeline of motion states.
package report

import (
	"sort"
	"sync"

	"github.com/banshee-data/instrec/internal/tracks"
)

// ResidualSample is one successful relative pose estimate.
type ResidualSample struct {
	TrackID   int
	FrameIdx  int
	Residual  float64
	Threshold float64
}

// FailureSample is one frame for which no relative pose was found.
type FailureSample struct {
	TrackID       int
	FrameIdx      int
	FailureStreak int
}

// TransitionSample is one state change.
type TransitionSample struct {
	TrackID  int
	FrameIdx int
	From     tracks.State
	To       tracks.State
}

// Recorder collects debug samples from tracks. It implements
// tracks.DebugCollector and is safe for concurrent use.
type Recorder struct {
	mu          sync.Mutex
	enabled     bool
	residuals   []ResidualSample
	failures    []FailureSample
	transitions []TransitionSample
}

// NewRecorder returns a recorder that is already recording.
func NewRecorder() *Recorder {
	return &Recorder{enabled: true}
}

// Start clears previous samples and resumes recording.
func (r *Recorder) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.enabled = true
	r.residuals = nil
	r.failures = nil
	r.transitions = nil
}

// Stop disables recording. Collected samples are kept.
func (r *Recorder) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.enabled = false
}

func (r *Recorder) IsEnabled() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.enabled
}

func (r *Recorder) RecordResidual(trackID, frameIdx int, residual, threshold float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.enabled {
		return
	}
	r.residuals = append(r.residuals, ResidualSample{trackID, frameIdx, residual, threshold})
}

func (r *Recorder) RecordEstimationFailure(trackID, frameIdx, failureStreak int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.enabled {
		return
	}
	r.failures = append(r.failures, FailureSample{trackID, frameIdx, failureStreak})
}

func (r *Recorder) RecordTransition(trackID, frameIdx int, from, to tracks.State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.enabled {
		return
	}
	r.transitions = append(r.transitions, TransitionSample{trackID, frameIdx, from, to})
}

// Residuals returns all residual samples ordered by track, then frame.
func (r *Recorder) Residuals() []ResidualSample {
	r.mu.Lock()
	out := append([]ResidualSample(nil), r.residuals...)
	r.mu.Unlock()
	sort.Slice(out, func(a, b int) bool {
		if out[a].TrackID != out[b].TrackID {
			return out[a].TrackID < out[b].TrackID
		}
		return out[a].FrameIdx < out[b].FrameIdx
	})
	return out
}

// Failures returns all failure samples ordered by track, then frame.
func (r *Recorder) Failures() []FailureSample {
	r.mu.Lock()
	out := append([]FailureSample(nil), r.failures...)
	r.mu.Unlock()
	sort.Slice(out, func(a, b int) bool {
		if out[a].TrackID != out[b].TrackID {
			return out[a].TrackID < out[b].TrackID
		}
		return out[a].FrameIdx < out[b].FrameIdx
	})
	return out
}

// Transitions returns all transitions ordered by track, then frame.
func (r *Recorder) Transitions() []TransitionSample {
	r.mu.Lock()
	out := append([]TransitionSample(nil), r.transitions...)
	r.mu.Unlock()
	sort.SliceStable(out, func(a, b int) bool {
		if out[a].TrackID != out[b].TrackID {
			return out[a].TrackID < out[b].TrackID
		}
		return out[a].FrameIdx < out[b].FrameIdx
	})
	return out
}

// StateAt returns the state of trackID after the update at frameIdx, as
// reconstructed from the recorded transitions.
func (r *Recorder) StateAt(trackID, frameIdx int) tracks.State {
	return newStateHistory(r.Transitions()).at(trackID, frameIdx)
}

// stateHistory holds each track's transitions in frame order.
type stateHistory map[int][]TransitionSample

// newStateHistory indexes transitions, which must be ordered by track and
// then frame as Transitions returns them.
func newStateHistory(transitions []TransitionSample) stateHistory {
	h := make(stateHistory)
	for _, tr := range transitions {
		h[tr.TrackID] = append(h[tr.TrackID], tr)
	}
	return h
}

func (h stateHistory) at(trackID, frameIdx int) tracks.State {
	ts := h[trackID]
	n := sort.Search(len(ts), func(i int) bool { return ts[i].FrameIdx > frameIdx })
	if n == 0 {
		return tracks.Uncertain
	}
	return ts[n-1].To
}
