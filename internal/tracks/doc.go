// Package tracks owns the per-object track: the history of observations of
// one detected instance, the Static/Dynamic/Uncertain classification built
// from relative-motion evidence, and the gates that decide when the
// instance's volumetric reconstruction may start, be fused and be pruned.
//
// Responsibilities: frame history, motion-based state machine with
// hysteresis, match scoring for association, pose chaining for fusion, and
// reconstruction lifecycle bookkeeping.
// Key types: Track, TrackFrame, State, Config.
//
// A Track is not safe for concurrent use. Distinct tracks may be updated
// from different goroutines as long as each track is touched by one
// goroutine at a time.
package tracks
