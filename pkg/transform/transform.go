package transform

import (
	"errors"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

var (
	// ErrNotAffine is returned by [Validate] when the bottom row of a matrix
	// is not exactly [0 0 0 1].
	ErrNotAffine = errors.New("matrix is not homogeneous affine")

	// ErrNotFinite is returned by [Validate] when any entry is NaN or ±Inf.
	ErrNotFinite = errors.New("matrix has non-finite entries")

	// ErrSingular is returned by [Inverse] when the matrix cannot be inverted.
	ErrSingular = errors.New("matrix is singular")
)

// RigidTolerance is the maximum deviation from orthonormality accepted by
// [IsRigid] before [Inverse] falls back to a generic inverse.
const RigidTolerance = 1e-9

// Identity returns the 4x4 identity matrix.
func Identity() mgl64.Mat4 { return mgl64.Ident4() }

// IsZero reports whether every entry of m is zero. A zero matrix is how an
// edge says "no transform given"; callers replace it with [Identity].
func IsZero(m mgl64.Mat4) bool {
	return m == mgl64.Mat4{}
}

// Translation returns a translation-only matrix.
func Translation(x, y, z float64) mgl64.Mat4 {
	return mgl64.Translate3D(x, y, z)
}

// Options mirrors the keyword arguments accepted when building a transform.
// All fields are optional.
type Options struct {
	// Matrix, when set, is returned unchanged and the other fields are ignored.
	Matrix *mgl64.Mat4
	// Quaternion sets the rotation block. It is normalized before use.
	Quaternion *mgl64.Quat
	// Translation sets the translation column.
	Translation *mgl64.Vec3
}

// FromOptions composes a homogeneous matrix from opts:
//
//   - nothing set: identity
//   - Matrix set: Matrix, unchanged
//   - Quaternion set: rotation only
//   - Translation set: translation only
//   - both: rotation with the translation column set
func FromOptions(opts Options) mgl64.Mat4 {
	if opts.Matrix != nil {
		return *opts.Matrix
	}
	m := mgl64.Ident4()
	if opts.Quaternion != nil {
		m = opts.Quaternion.Normalize().Mat4()
	}
	if opts.Translation != nil {
		t := *opts.Translation
		m.Set(0, 3, t[0])
		m.Set(1, 3, t[1])
		m.Set(2, 3, t[2])
	}
	return m
}

// Validate checks that m is finite and homogeneous affine (bottom row exactly
// [0 0 0 1]).
func Validate(m mgl64.Mat4) error {
	for _, v := range m {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return ErrNotFinite
		}
	}
	if m.At(3, 0) != 0 || m.At(3, 1) != 0 || m.At(3, 2) != 0 || m.At(3, 3) != 1 {
		return ErrNotAffine
	}
	return nil
}

// Coerce returns m with its bottom row forced to [0 0 0 1].
func Coerce(m mgl64.Mat4) mgl64.Mat4 {
	m.Set(3, 0, 0)
	m.Set(3, 1, 0)
	m.Set(3, 2, 0)
	m.Set(3, 3, 1)
	return m
}

// IsRigid reports whether the upper-left 3x3 block of m is orthonormal with
// determinant +1, within [RigidTolerance].
func IsRigid(m mgl64.Mat4) bool {
	r := m.Mat3()
	p := r.Transpose().Mul3(r)
	if !p.ApproxEqualThreshold(mgl64.Ident3(), RigidTolerance) {
		return false
	}
	return math.Abs(r.Det()-1) <= RigidTolerance
}

// Inverse inverts an affine matrix. Rigid transforms use the structural
// inverse [Rᵀ | -Rᵀt]; anything else falls back to the generic inverse,
// whose bottom row is snapped back to [0 0 0 1].
func Inverse(m mgl64.Mat4) (mgl64.Mat4, error) {
	if IsRigid(m) {
		return rigidInverse(m), nil
	}
	if m.Det() == 0 {
		return mgl64.Mat4{}, ErrSingular
	}
	return Coerce(m.Inv()), nil
}

func rigidInverse(m mgl64.Mat4) mgl64.Mat4 {
	rt := m.Mat3().Transpose()
	t := rt.Mul3x1(mgl64.Vec3{m.At(0, 3), m.At(1, 3), m.At(2, 3)})

	out := rt.Mat4()
	out.Set(0, 3, -t[0])
	out.Set(1, 3, -t[1])
	out.Set(2, 3, -t[2])
	return out
}

// Rows returns m in row-major order, the layout used by the interchange format.
func Rows(m mgl64.Mat4) [4][4]float64 {
	var rows [4][4]float64
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			rows[r][c] = m.At(r, c)
		}
	}
	return rows
}

// FromRows builds a matrix from row-major values.
func FromRows(rows [4][4]float64) mgl64.Mat4 {
	var m mgl64.Mat4
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			m.Set(r, c, rows[r][c])
		}
	}
	return m
}

// TranslationOf returns the translation column of m.
func TranslationOf(m mgl64.Mat4) mgl64.Vec3 {
	return mgl64.Vec3{m.At(0, 3), m.At(1, 3), m.At(2, 3)}
}

// Equal reports whether a and b match within eps on every entry.
func Equal(a, b mgl64.Mat4, eps float64) bool {
	return a.ApproxEqualThreshold(b, eps)
}
