package geom

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

const tol = 1e-9

func TestIdentityMul(t *testing.T) {
	t.Parallel()
	p := RotationY(0.3).Mul(Translation(1, 2, 3))
	assert.True(t, Identity().Mul(p).ApproxEqual(p, tol))
	assert.True(t, p.Mul(Identity()).ApproxEqual(p, tol))
}

func TestMulComposesTranslations(t *testing.T) {
	t.Parallel()
	p := Translation(1, 0, 0).Mul(Translation(0, 2, 0))
	assert.True(t, p.ApproxEqual(Translation(1, 2, 0), tol), "got\n%v", p)
}

func TestMulOrder(t *testing.T) {
	t.Parallel()
	// Rotate then translate differs from translate then rotate.
	rot := RotationY(math.Pi / 2)
	tr := Translation(1, 0, 0)

	a := tr.Mul(rot) // rotation applied first
	assert.InDelta(t, 1.0, a.At(0, 3), tol)

	b := rot.Mul(tr) // translation applied first, then rotated
	assert.InDelta(t, 0.0, b.At(0, 3), tol)
	assert.InDelta(t, -1.0, b.At(2, 3), tol)
}

func TestInverse(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		pose Pose
	}{
		{name: "identity", pose: Identity()},
		{name: "translation", pose: Translation(-3, 0.5, 12)},
		{name: "rotation", pose: RotationY(1.1)},
		{name: "rigid", pose: Translation(0.2, -0.1, 1.5).Mul(RotationY(-0.4))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			inv := tt.pose.Inverse()
			assert.True(t, tt.pose.Mul(inv).ApproxEqual(Identity(), 1e-12), "p·p⁻¹\n%v", tt.pose.Mul(inv))
			assert.True(t, inv.Mul(tt.pose).ApproxEqual(Identity(), 1e-12), "p⁻¹·p\n%v", inv.Mul(tt.pose))
		})
	}
}

func TestPow(t *testing.T) {
	t.Parallel()
	step := Translation(0, 0, 0.5)
	assert.True(t, step.Pow(0).ApproxEqual(Identity(), tol))
	assert.True(t, step.Pow(-2).ApproxEqual(Identity(), tol))
	assert.True(t, step.Pow(1).ApproxEqual(step, tol))
	assert.True(t, step.Pow(4).ApproxEqual(Translation(0, 0, 2), tol))
}

func TestScale(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		pose Pose
		f    float64
		want Pose
	}{
		{"one third of a translation", Translation(0, 0, 0.3), 1.0 / 3, Translation(0, 0, 0.1)},
		{"half a rotation", RotationY(0.6), 0.5, RotationY(0.3)},
		{"rotation past a half turn", RotationY(3.0), 0.5, RotationY(1.5)},
		{"triple rotation matches Pow", RotationY(0.2), 3, RotationY(0.2).Pow(3)},
		{"identity", Identity(), 0.25, Identity()},
		{"zero", RotationY(0.4).Mul(Translation(1, 0, 0)), 0, Identity()},
		{"one", RotationY(0.4).Mul(Translation(1, 0, 0)), 1, RotationY(0.4).Mul(Translation(1, 0, 0))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := tt.pose.Scale(tt.f)
			assert.True(t, got.ApproxEqual(tt.want, tol), "got\n%v\nwant\n%v", got, tt.want)
		})
	}
}

func TestTranslationNorm(t *testing.T) {
	t.Parallel()
	assert.InDelta(t, 5.0, Translation(3, 4, 0).TranslationNorm(), tol)
	assert.InDelta(t, 0.0, RotationY(2).TranslationNorm(), tol)
	v := Translation(1, 2, 3).TranslationVec()
	assert.Equal(t, 1.0, v.X)
	assert.Equal(t, 2.0, v.Y)
	assert.Equal(t, 3.0, v.Z)
}

func TestPrecisionRoundTrip(t *testing.T) {
	t.Parallel()
	p := Translation(1.25, -0.5, 3).Mul(RotationY(0.25))
	back := p.Float32().Float64()
	assert.True(t, back.ApproxEqual(p, 1e-6))
	assert.True(t, Identity32().Float64().ApproxEqual(Identity(), 0))
}

func TestMaybePose(t *testing.T) {
	t.Parallel()
	var zero MaybePose
	assert.False(t, zero.IsPresent())
	assert.False(t, NoPose().IsPresent())

	m := SomePose(Translation(1, 1, 1))
	p, ok := m.Get()
	assert.True(t, ok)
	assert.True(t, m.IsPresent())
	assert.True(t, p.ApproxEqual(Translation(1, 1, 1), 0))

	// Value semantics: copies are independent.
	cp := m
	m = NoPose()
	assert.True(t, cp.IsPresent())
}
