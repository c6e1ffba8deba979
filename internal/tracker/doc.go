// Package tracker runs the per-frame loop around individual tracks: it
// assigns each frame's instance detections to live tracks, starts new
// tracks, updates their motion classification, feeds eligible tracks'
// reconstructions and evicts tracks that have not been seen for a while.
//
// Key types: Tracker, Config, FrameResult, Stats.
//
// The track state machine itself lives in internal/tracks; this package
// only decides which detection goes to which track and when the
// reconstruction work happens.
package tracker
