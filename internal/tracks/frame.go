package tracks

import (
	"github.com/banshee-data/instrec/internal/geom"
	"github.com/banshee-data/instrec/internal/segmentation"
)

// TrackFrame is one observation of a tracked object.
type TrackFrame struct {
	// FrameIdx is the global frame counter at capture time.
	FrameIdx int
	View     segmentation.InstanceView

	// CameraPose is the global camera pose when the frame was captured.
	CameraPose geom.Pose32

	// RelativePose is the object's motion from the previous frame of the
	// track to this one. Absent until Update runs on this frame, and
	// stays absent when estimation fails.
	RelativePose geom.MaybePose

	// ExtrapolatedPose is a constant-velocity guess stored when
	// estimation failed and an earlier estimate existed. Diagnostics only;
	// neither the state machine nor FramePose read it.
	ExtrapolatedPose geom.MaybePose

	// ResidualError is the translation left after removing egomotion from
	// RelativePose. Meaningful only when RelativePose is present.
	ResidualError float64
}

// NewTrackFrame returns a frame with no relative pose yet.
func NewTrackFrame(frameIdx int, view segmentation.InstanceView, cameraPose geom.Pose32) TrackFrame {
	return TrackFrame{
		FrameIdx:   frameIdx,
		View:       view,
		CameraPose: cameraPose,
	}
}
