package segmentation

import "fmt"

// Mask is a binary instance mask covering Box. Bits are stored row-major
// relative to Box's top-left corner.
type Mask struct {
	Box  BoundingBox
	bits []bool
}

// NewMask returns an all-clear mask over box.
func NewMask(box BoundingBox) *Mask {
	return &Mask{Box: box, bits: make([]bool, box.Area())}
}

// FilledMask returns a mask with every pixel of box set.
func FilledMask(box BoundingBox) *Mask {
	m := NewMask(box)
	for i := range m.bits {
		m.bits[i] = true
	}
	return m
}

func (m *Mask) index(x, y int) int {
	return (y-m.Box.Y0)*m.Box.Width() + (x - m.Box.X0)
}

// Set marks pixel (x, y), given in image coordinates. It panics when the
// pixel lies outside the mask's box.
func (m *Mask) Set(x, y int, on bool) {
	if !m.Box.Contains(x, y) {
		panic(fmt.Sprintf("segmentation: pixel (%d, %d) outside mask box %+v", x, y, m.Box))
	}
	m.bits[m.index(x, y)] = on
}

// At reports whether pixel (x, y) is set. Pixels outside the box are clear.
func (m *Mask) At(x, y int) bool {
	if !m.Box.Contains(x, y) {
		return false
	}
	return m.bits[m.index(x, y)]
}

// Count returns the number of set pixels.
func (m *Mask) Count() int {
	n := 0
	for _, b := range m.bits {
		if b {
			n++
		}
	}
	return n
}

// IoU returns intersection-over-union of the set pixels of m and o.
func (m *Mask) IoU(o *Mask) float64 {
	overlap := m.Box.Intersect(o.Box)
	inter := 0
	if !overlap.Empty() {
		for y := overlap.Y0; y <= overlap.Y1; y++ {
			for x := overlap.X0; x <= overlap.X1; x++ {
				if m.At(x, y) && o.At(x, y) {
					inter++
				}
			}
		}
	}
	union := m.Count() + o.Count() - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}
