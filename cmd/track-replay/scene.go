package main

import (
	"math/rand"

	"github.com/banshee-data/instrec/internal/geom"
	"github.com/banshee-data/instrec/internal/segmentation"
	"github.com/banshee-data/instrec/internal/tracks"
)

// sceneObject is one simulated object with a known per-frame motion.
type sceneObject struct {
	id      int
	class   string
	first   int   // first frame the object is in view
	last    int   // last frame the object is in view
	hidden  []int // frames where the detector misses it
	x0, y0  int   // box corner at first frame
	w, h    int
	pxShift int // horizontal box motion per frame
	masked  bool

	// motion is the object's true motion per frame in camera coordinates,
	// with the camera's own motion removed.
	motion geom.Pose
}

func (o *sceneObject) visible(frameIdx int) bool {
	if frameIdx < o.first || frameIdx > o.last {
		return false
	}
	for _, f := range o.hidden {
		if f == frameIdx {
			return false
		}
	}
	return true
}

func (o *sceneObject) box(frameIdx int) segmentation.BoundingBox {
	x := o.x0 + o.pxShift*(frameIdx-o.first)
	return segmentation.BoundingBox{X0: x, Y0: o.y0, X1: x + o.w - 1, Y1: o.y0 + o.h - 1}
}

func (o *sceneObject) view(frameIdx int) segmentation.InstanceView {
	box := o.box(frameIdx)
	var mask *segmentation.Mask
	if o.masked {
		mask = segmentation.FilledMask(box)
	}
	return segmentation.NewInstanceView(segmentation.InstanceDetection{
		ClassName:  o.class,
		Confidence: 0.9,
		Box:        box,
	}, mask)
}

// scene is a camera driving forward past a parked car while another car
// overtakes and a pedestrian crosses, briefly occluded.
type scene struct {
	cameraStep float64 // metres per frame along +z
	objects    []*sceneObject
}

func newScene() *scene {
	return &scene{
		cameraStep: 0.5,
		objects: []*sceneObject{
			{id: 0, class: "car", first: 0, last: 1 << 30, x0: 40, y0: 200, w: 160, h: 90, masked: true,
				motion: geom.Identity()},
			{id: 1, class: "car", first: 3, last: 1 << 30, x0: 420, y0: 180, w: 140, h: 80, pxShift: 6,
				motion: geom.Translation(0.1, 0, 0.7)},
			{id: 2, class: "person", first: 8, last: 22, hidden: []int{14, 15}, x0: 800, y0: 150, w: 40, h: 110, pxShift: -3,
				motion: geom.Translation(-0.35, 0, 0)},
		},
	}
}

// egomotion is the apparent motion of the static world between two
// consecutive frames.
func (s *scene) egomotion() geom.Pose {
	return geom.Translation(0, 0, -s.cameraStep)
}

func (s *scene) cameraPose(frameIdx int) geom.Pose {
	return geom.Translation(0, 0, s.cameraStep*float64(frameIdx))
}

func (s *scene) views(frameIdx int) []segmentation.InstanceView {
	var out []segmentation.InstanceView
	for _, o := range s.objects {
		if o.visible(frameIdx) {
			out = append(out, o.view(frameIdx))
		}
	}
	return out
}

// objectFor finds the scene object behind a track frame by its box.
func (s *scene) objectFor(f *tracks.TrackFrame) *sceneObject {
	box := f.View.Detection().Box
	for _, o := range s.objects {
		if f.View.ClassName() == o.class && o.box(f.FrameIdx) == box {
			return o
		}
	}
	return nil
}

// noisyEstimator reports the true apparent motion perturbed by Gaussian
// noise and fails on a fraction of calls. Its randomness is derived from
// the frame and object, so results do not depend on update order.
type noisyEstimator struct {
	scene   *scene
	seed    int64
	sigma   float64
	dropout float64
}

func (e *noisyEstimator) EstimateRelativePose(prev, cur *tracks.TrackFrame, egomotion geom.Pose32) (geom.Pose, bool) {
	obj := e.scene.objectFor(cur)
	if obj == nil {
		return geom.Pose{}, false
	}
	rng := rand.New(rand.NewSource(e.seed ^ int64(cur.FrameIdx)*1000003 ^ int64(obj.id)*7919))
	if rng.Float64() < e.dropout {
		return geom.Pose{}, false
	}

	gap := cur.FrameIdx - prev.FrameIdx
	noise := geom.Translation(rng.NormFloat64()*e.sigma, rng.NormFloat64()*e.sigma, rng.NormFloat64()*e.sigma)
	return egomotion.Float64().Mul(obj.motion.Pow(gap)).Mul(noise), true
}
