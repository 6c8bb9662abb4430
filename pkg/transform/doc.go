// Package transform provides the small set of 4x4 homogeneous matrix helpers
// the scene forest depends on.
//
// Matrices are [mgl64.Mat4] values (column-major storage, accessed with
// At/Set by row and column). The interchange format is row-major; use [Rows]
// and [FromRows] to convert.
//
// [FromOptions] builds a matrix from optional matrix/quaternion/translation
// arguments. [Inverse] inverts an affine transform, using the structural
// inverse for rigid transforms and a generic inverse otherwise.
//
// [mgl64.Mat4]: github.com/go-gl/mathgl/mgl64.Mat4
package transform
