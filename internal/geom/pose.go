// Package geom holds the rigid-body transforms shared by tracking and
// reconstruction: camera poses, per-track relative motion and the optional
// wrapper used when a relative pose could not be estimated.
//
// All matrices are 4×4 homogeneous transforms stored row-major. Products
// and inverses go through gonum/mat.
package geom

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Pose is a double precision rigid transform, row-major.
type Pose [16]float64

// Pose32 is the single precision form used for camera poses and egomotion.
type Pose32 [16]float32

// Identity returns the identity transform.
func Identity() Pose {
	return Pose{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Translation returns a pure translation by (x, y, z).
func Translation(x, y, z float64) Pose {
	p := Identity()
	p[3], p[7], p[11] = x, y, z
	return p
}

// RotationY returns a rotation of theta radians about the Y (camera up) axis.
func RotationY(theta float64) Pose {
	s, c := math.Sincos(theta)
	return Pose{
		c, 0, s, 0,
		0, 1, 0, 0,
		-s, 0, c, 0,
		0, 0, 0, 1,
	}
}

// At returns the element at row r, column c.
func (p Pose) At(r, c int) float64 {
	return p[r*4+c]
}

func (p *Pose) dense() *mat.Dense {
	return mat.NewDense(4, 4, p[:])
}

func poseFromMatrix(m mat.Matrix) Pose {
	var p Pose
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			p[r*4+c] = m.At(r, c)
		}
	}
	return p
}

// Mul returns the composition p·q (q is applied first).
func (p Pose) Mul(q Pose) Pose {
	var out mat.Dense
	out.Mul(p.dense(), q.dense())
	return poseFromMatrix(&out)
}

// Inverse returns the inverse of a rigid transform, [Rᵀ | -Rᵀt].
// The rotation block is assumed orthonormal.
func (p Pose) Inverse() Pose {
	rot := p.dense().Slice(0, 3, 0, 3)
	t := mat.NewVecDense(3, []float64{p[3], p[7], p[11]})

	var rt mat.Dense
	rt.CloneFrom(rot.T())

	var negT mat.VecDense
	negT.MulVec(&rt, t)
	negT.ScaleVec(-1, &negT)

	inv := Identity()
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			inv[r*4+c] = rt.At(r, c)
		}
		inv[r*4+3] = negT.AtVec(r)
	}
	return inv
}

// Pow composes p with itself n times. Non-positive n yields the identity.
func (p Pose) Pow(n int) Pose {
	out := Identity()
	for i := 0; i < n; i++ {
		out = p.Mul(out)
	}
	return out
}

// Scale returns the fraction f of the motion p: a rotation by f times
// p's angle about the same axis, and f times p's translation. Scale(1/n)
// is a constant-velocity step of a motion observed over n frames. For
// pure translations or pure rotations Scale(n) equals Pow(n).
func (p Pose) Scale(f float64) Pose {
	if f == 1 {
		return p
	}
	rot := r3.Rotation(quat.PowReal(p.rotation(), f)).Mat()
	out := Identity()
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			out[r*4+c] = rot.At(r, c)
		}
		out[r*4+3] = f * p[r*4+3]
	}
	return out
}

// rotation returns the unit quaternion of p's rotation block, with a
// non-negative real part so powers take the short way round.
func (p Pose) rotation() quat.Number {
	m00, m01, m02 := p[0], p[1], p[2]
	m10, m11, m12 := p[4], p[5], p[6]
	m20, m21, m22 := p[8], p[9], p[10]

	var q quat.Number
	switch tr := m00 + m11 + m22; {
	case tr > 0:
		s := 2 * math.Sqrt(tr+1)
		q = quat.Number{Real: s / 4, Imag: (m21 - m12) / s, Jmag: (m02 - m20) / s, Kmag: (m10 - m01) / s}
	case m00 > m11 && m00 > m22:
		s := 2 * math.Sqrt(1+m00-m11-m22)
		q = quat.Number{Real: (m21 - m12) / s, Imag: s / 4, Jmag: (m01 + m10) / s, Kmag: (m02 + m20) / s}
	case m11 > m22:
		s := 2 * math.Sqrt(1+m11-m00-m22)
		q = quat.Number{Real: (m02 - m20) / s, Imag: (m01 + m10) / s, Jmag: s / 4, Kmag: (m12 + m21) / s}
	default:
		s := 2 * math.Sqrt(1+m22-m00-m11)
		q = quat.Number{Real: (m10 - m01) / s, Imag: (m02 + m20) / s, Jmag: (m12 + m21) / s, Kmag: s / 4}
	}
	if q.Real < 0 {
		q = quat.Scale(-1, q)
	}
	return q
}

// TranslationVec returns the translation column.
func (p Pose) TranslationVec() r3.Vec {
	return r3.Vec{X: p[3], Y: p[7], Z: p[11]}
}

// TranslationNorm returns the magnitude of the translation column.
func (p Pose) TranslationNorm() float64 {
	return r3.Norm(p.TranslationVec())
}

// ApproxEqual reports whether every element of p and q differs by at most tol.
func (p Pose) ApproxEqual(q Pose, tol float64) bool {
	for i := range p {
		if math.Abs(p[i]-q[i]) > tol {
			return false
		}
	}
	return true
}

// Float32 narrows p to single precision.
func (p Pose) Float32() Pose32 {
	var out Pose32
	for i, v := range p {
		out[i] = float32(v)
	}
	return out
}

func (p Pose) String() string {
	var b strings.Builder
	for r := 0; r < 4; r++ {
		if r > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "[%8.4f %8.4f %8.4f %8.4f]", p[r*4], p[r*4+1], p[r*4+2], p[r*4+3])
	}
	return b.String()
}

// Identity32 returns the single precision identity transform.
func Identity32() Pose32 {
	return Identity().Float32()
}

// Float64 widens p to double precision.
func (p Pose32) Float64() Pose {
	var out Pose
	for i, v := range p {
		out[i] = float64(v)
	}
	return out
}
