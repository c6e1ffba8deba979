package geom

// MaybePose is a Pose that may be absent. It is held by value, so copying a
// struct that embeds it copies the pose as well.
type MaybePose struct {
	pose    Pose
	present bool
}

// SomePose wraps a present pose.
func SomePose(p Pose) MaybePose {
	return MaybePose{pose: p, present: true}
}

// NoPose returns an absent pose.
func NoPose() MaybePose {
	return MaybePose{}
}

// IsPresent reports whether a pose is held.
func (m MaybePose) IsPresent() bool {
	return m.present
}

// Get returns the pose and whether it is present.
func (m MaybePose) Get() (Pose, bool) {
	return m.pose, m.present
}
