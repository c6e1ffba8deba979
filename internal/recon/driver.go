// Package recon is the boundary to the volumetric fusion engine that
// reconstructs a single tracked instance.
//
// The engine itself lives elsewhere; this package defines the Driver
// contract it must satisfy and the reference-counted Handle through which a
// track owns its driver while renderers or exporters borrow it.
package recon

import (
	"github.com/banshee-data/instrec/internal/geom"
	"github.com/banshee-data/instrec/internal/segmentation"
)

// Frame is one observation handed to the fusion engine.
type Frame struct {
	TrackID  int
	FrameIdx int

	// Pose of this observation relative to the track's first frame.
	Pose geom.Pose

	CameraPose geom.Pose32
	View       segmentation.InstanceView
}

// Driver is a volumetric fusion engine bound to exactly one track.
//
// Fuse and Decay are synchronous and may be expensive. Neither reports
// errors: a driver that cannot fuse is a fatal condition for the process.
// Close frees the engine's resources and is called exactly once, by the
// Handle that owns the driver.
type Driver interface {
	Fuse(frame Frame)
	Decay(weight int)
	Close() error
}

// Factory creates a driver for the given track. It is called lazily, the
// first time a track becomes eligible for reconstruction.
type Factory func(trackID int) Driver
