package tracks

import (
	"github.com/banshee-data/instrec/internal/geom"
	"github.com/banshee-data/instrec/internal/monitoring"
)

// Update estimates the relative pose of the newest frame against the one
// before it and advances the classification.
//
// The residual translation error is |t(egomotion⁻¹ · relative)|, the part
// of the object's apparent motion not explained by the camera moving.
//
//   - residual ≤ TransErrorThreshold is static evidence, above it dynamic.
//     Uncertain adopts the evidence immediately. A confirmed Static
//     (Dynamic) track only flips after MaxUncertainFramesStatic
//     (MaxUncertainFramesDynamic) consecutive contradicting estimates.
//   - an estimation failure extends the failure streak; when the streak
//     reaches the limit for the current state the track becomes
//     Uncertain. Failures neither break nor extend a contradiction streak.
//
// verbose only adds log output. A single-frame track has nothing to
// compare against: its relative pose stays absent and the state is kept.
func (t *Track) Update(egomotion geom.Pose32, estimator PoseEstimator, verbose bool) {
	t.mustNotBeEmpty("Update")
	n := len(t.frames)
	cur := &t.frames[n-1]
	if n < 2 {
		cur.RelativePose = geom.NoPose()
		if verbose {
			monitoring.Logf("Track [%d]: single frame %d, nothing to estimate yet.", t.id, cur.FrameIdx)
		}
		return
	}
	prev := &t.frames[n-2]

	before := t.state
	rel, ok := estimator.EstimateRelativePose(prev, cur, egomotion)
	if ok {
		cur.RelativePose = geom.SomePose(rel)
		cur.ExtrapolatedPose = geom.NoPose()
		t.applyMotionEvidence(cur, rel, egomotion.Float64(), verbose)
		t.lastKnownMotion = rel
		t.lastKnownMotionTime = cur.FrameIdx
		t.lastKnownMotionSpan = cur.FrameIdx - prev.FrameIdx
	} else {
		cur.RelativePose = geom.NoPose()
		t.applyEstimationFailure(prev, cur, verbose)
	}

	if t.state != before {
		if verbose {
			monitoring.Logf("Track [%d]: %s -> %s at frame %d.", t.id, before, t.state, cur.FrameIdx)
		}
		debugf("track [%d]: transition %s -> %s at frame %d", t.id, before, t.state, cur.FrameIdx)
		if t.debugEnabled() {
			t.debug.RecordTransition(t.id, cur.FrameIdx, before, t.state)
		}
	}
}

func (t *Track) applyMotionEvidence(cur *TrackFrame, rel, egomotion geom.Pose, verbose bool) {
	residual := egomotion.Inverse().Mul(rel).TranslationNorm()
	cur.ResidualError = residual
	looksStatic := residual <= t.cfg.TransErrorThreshold

	if verbose {
		monitoring.Logf("Track [%d]: frame %d residual translation %.4f (threshold %.4f).",
			t.id, cur.FrameIdx, residual, t.cfg.TransErrorThreshold)
	}
	if t.debugEnabled() {
		t.debug.RecordResidual(t.id, cur.FrameIdx, residual, t.cfg.TransErrorThreshold)
	}

	t.failureStreak = 0
	switch t.state {
	case Uncertain:
		t.contradictionStreak = 0
		if looksStatic {
			t.state = Static
		} else {
			t.state = Dynamic
		}
	case Static:
		if looksStatic {
			t.contradictionStreak = 0
		} else {
			t.contradictionStreak++
			if t.contradictionStreak >= t.cfg.MaxUncertainFramesStatic {
				t.state = Dynamic
				t.contradictionStreak = 0
			}
		}
	case Dynamic:
		if !looksStatic {
			t.contradictionStreak = 0
		} else {
			t.contradictionStreak++
			if t.contradictionStreak >= t.cfg.MaxUncertainFramesDynamic {
				t.state = Static
				t.contradictionStreak = 0
			}
		}
	}
}

func (t *Track) applyEstimationFailure(prev, cur *TrackFrame, verbose bool) {
	t.failureStreak++
	if t.debugEnabled() {
		t.debug.RecordEstimationFailure(t.id, cur.FrameIdx, t.failureStreak)
	}

	limit := 0
	switch t.state {
	case Static:
		limit = t.cfg.MaxUncertainFramesStatic
	case Dynamic:
		limit = t.cfg.MaxUncertainFramesDynamic
	}
	if verbose {
		monitoring.Logf("Track [%d]: no relative pose for frame %d (failure streak %d/%d).",
			t.id, cur.FrameIdx, t.failureStreak, limit)
	}
	if limit > 0 && t.failureStreak >= limit {
		t.state = Uncertain
		t.failureStreak = 0
		t.contradictionStreak = 0
	}

	if t.lastKnownMotionTime >= 0 {
		gap := cur.FrameIdx - prev.FrameIdx
		ratio := float64(gap) / float64(t.lastKnownMotionSpan)
		cur.ExtrapolatedPose = geom.SomePose(t.lastKnownMotion.Scale(ratio))
	}
}
