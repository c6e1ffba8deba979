package tracks

import "math"

// ScoreMatch rates how well candidate continues this track, in [0, 1].
// It does not modify the track, so callers may score one candidate
// against many tracks before assigning it.
//
// A candidate of a different class, or one not strictly after the track's
// last frame, scores 0. Otherwise the score is
//
//	MinSameClassScore + (1 - MinSameClassScore) · overlap · TemporalDiscount^(gap-1)
//
// where overlap is the mask IoU with the last frame (box IoU when either
// side has no mask) and gap is the frame index difference. An identical
// region of the same class in the very next frame scores 1.
func (t *Track) ScoreMatch(candidate *TrackFrame) float64 {
	t.mustNotBeEmpty("ScoreMatch")
	last := &t.frames[len(t.frames)-1]

	if candidate.View.ClassName() != last.View.ClassName() {
		return 0
	}
	gap := candidate.FrameIdx - last.FrameIdx
	if gap < 1 {
		return 0
	}

	overlap := last.View.Overlap(candidate.View)
	temporal := math.Pow(t.cfg.TemporalDiscount, float64(gap-1))
	floor := t.cfg.MinSameClassScore
	return floor + (1-floor)*overlap*temporal
}
