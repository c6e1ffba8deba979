// Package segmentation defines the detection payload attached to each
// track frame: the detector's class label and box, plus an optional
// per-pixel instance mask. Producing these is the detector's job; this
// package only carries them and measures overlap between two of them.
package segmentation

// BoundingBox is an axis-aligned pixel rectangle with inclusive corners,
// so a box with X0 == X1 is one pixel wide.
type BoundingBox struct {
	X0, Y0 int
	X1, Y1 int
}

// Width returns the number of pixel columns covered.
func (b BoundingBox) Width() int {
	if b.X1 < b.X0 {
		return 0
	}
	return b.X1 - b.X0 + 1
}

// Height returns the number of pixel rows covered.
func (b BoundingBox) Height() int {
	if b.Y1 < b.Y0 {
		return 0
	}
	return b.Y1 - b.Y0 + 1
}

// Area returns the pixel area. Degenerate boxes have zero area.
func (b BoundingBox) Area() int {
	return b.Width() * b.Height()
}

// Empty reports whether the box covers no pixels.
func (b BoundingBox) Empty() bool {
	return b.Area() == 0
}

// Intersect returns the overlap of b and o. The result is Empty when
// they do not overlap.
func (b BoundingBox) Intersect(o BoundingBox) BoundingBox {
	return BoundingBox{
		X0: max(b.X0, o.X0),
		Y0: max(b.Y0, o.Y0),
		X1: min(b.X1, o.X1),
		Y1: min(b.Y1, o.Y1),
	}
}

// Contains reports whether pixel (x, y) lies inside the box.
func (b BoundingBox) Contains(x, y int) bool {
	return x >= b.X0 && x <= b.X1 && y >= b.Y0 && y <= b.Y1
}

// IoU returns intersection-over-union in [0, 1].
func (b BoundingBox) IoU(o BoundingBox) float64 {
	inter := b.Intersect(o).Area()
	if inter == 0 {
		return 0
	}
	union := b.Area() + o.Area() - inter
	return float64(inter) / float64(union)
}

// InstanceDetection is one detector output: a class, its confidence, and
// the box it was found in.
type InstanceDetection struct {
	ClassName  string
	Confidence float32
	Box        BoundingBox
}

// InstanceView couples a detection with its segmentation mask. Mask may be
// nil when the segmenter produced only a box.
type InstanceView struct {
	detection InstanceDetection
	mask      *Mask
}

// NewInstanceView builds a view. The mask, if any, is not copied; callers
// hand over ownership.
func NewInstanceView(det InstanceDetection, mask *Mask) InstanceView {
	return InstanceView{detection: det, mask: mask}
}

// Detection returns the detection result.
func (v InstanceView) Detection() InstanceDetection {
	return v.detection
}

// ClassName is shorthand for Detection().ClassName.
func (v InstanceView) ClassName() string {
	return v.detection.ClassName
}

// Mask returns the instance mask, or nil.
func (v InstanceView) Mask() *Mask {
	return v.mask
}

// Overlap returns the spatial agreement of two views in [0, 1]: mask IoU
// when both carry a mask, box IoU otherwise.
func (v InstanceView) Overlap(o InstanceView) float64 {
	if v.mask != nil && o.mask != nil {
		return v.mask.IoU(o.mask)
	}
	return v.detection.Box.IoU(o.detection.Box)
}
