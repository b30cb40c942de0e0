package geometry

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Transform is a 4x4 homogeneous affine matrix acting on column vectors
type Transform struct {
	M *mat.Dense
}

func Identity() Transform {
	var (
		M = mat.NewDense(4, 4, nil)
	)
	for i := 0; i < 4; i++ {
		M.Set(i, i, 1)
	}
	return Transform{M: M}
}

// FromRows builds a transform from row major values
func FromRows(rows [4][4]float64) Transform {
	var (
		M = mat.NewDense(4, 4, nil)
	)
	for i := 0; i < 4; i++ {
		M.SetRow(i, rows[i][:])
	}
	return Transform{M: M}
}

func Translate(x, y, z float64) (T Transform) {
	T = Identity()
	T.M.Set(0, 3, x)
	T.M.Set(1, 3, y)
	T.M.Set(2, 3, z)
	return
}

func Scale(x, y, z float64) (T Transform) {
	T = Identity()
	T.M.Set(0, 0, x)
	T.M.Set(1, 1, y)
	T.M.Set(2, 2, z)
	return
}

// rotate builds a right handed rotation by deg degrees about axis 0, 1 or 2
func rotate(axis int, deg float64) (T Transform) {
	var (
		s, c = math.Sincos(deg * math.Pi / 180)
		i, j = (axis + 1) % 3, (axis + 2) % 3
	)
	T = Identity()
	T.M.Set(i, i, c)
	T.M.Set(i, j, -s)
	T.M.Set(j, i, s)
	T.M.Set(j, j, c)
	return
}

func RotateX(deg float64) Transform { return rotate(0, deg) }
func RotateY(deg float64) Transform { return rotate(1, deg) }
func RotateZ(deg float64) Transform { return rotate(2, deg) }

// FromEuler builds the rotation given by the Euler parameters e0..e3 followed
// by the translation (tx, ty, tz)
func FromEuler(tx, ty, tz, e0, e1, e2, e3 float64) Transform {
	R := FromRows([4][4]float64{
		{e0*e0 + e1*e1 - e2*e2 - e3*e3, 2 * (e1*e2 + e0*e3), 2 * (e1*e3 - e0*e2), 0},
		{2 * (e1*e2 - e0*e3), e0*e0 - e1*e1 + e2*e2 - e3*e3, 2 * (e2*e3 + e0*e1), 0},
		{2 * (e1*e3 + e0*e2), 2 * (e2*e3 - e0*e1), e0*e0 - e1*e1 - e2*e2 + e3*e3, 0},
		{0, 0, 0, 1},
	})
	return R.Then(Translate(tx, ty, tz))
}

// Then returns the transform applying t first and next second
func (t Transform) Then(next Transform) Transform {
	var (
		M = mat.NewDense(4, 4, nil)
	)
	M.Mul(next.M, t.M)
	return Transform{M: M}
}

func (t Transform) At(i, j int) float64 { return t.M.At(i, j) }

// ApplyPoint transforms a position, including the translation
func (t Transform) ApplyPoint(p [3]float64) (r [3]float64) {
	var (
		w = t.M.At(3, 0)*p[0] + t.M.At(3, 1)*p[1] + t.M.At(3, 2)*p[2] + t.M.At(3, 3)
	)
	for i := 0; i < 3; i++ {
		r[i] = t.M.At(i, 0)*p[0] + t.M.At(i, 1)*p[1] + t.M.At(i, 2)*p[2] + t.M.At(i, 3)
	}
	if w != 1 && w != 0 {
		for i := range r {
			r[i] /= w
		}
	}
	return
}

// ApplyVector transforms a direction by the linear part only
func (t Transform) ApplyVector(v [3]float64) (r [3]float64) {
	for i := 0; i < 3; i++ {
		r[i] = t.M.At(i, 0)*v[0] + t.M.At(i, 1)*v[1] + t.M.At(i, 2)*v[2]
	}
	return
}

func (t Transform) IsIdentity() bool {
	return mat.EqualApprox(t.M, Identity().M, 1e-12)
}
