package iso

import "math"

// Point is a projected screen-space coordinate.
type Point struct {
	X, Y float64
}

// Matrix is a row-major 3x4 affine matrix:
//
//	| m[0] m[1] m[2]  m[3]  |
//	| m[4] m[5] m[6]  m[7]  |
//	| m[8] m[9] m[10] m[11] |
type Matrix [12]float64

// Identity is the matrix that leaves every point where it is.
var Identity = Matrix{
	1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, 1, 0,
}

// projection holds the isometric axes: [cos(π/6), cos(5π/6), −sin(π/6), −sin(5π/6)].
var projection = [4]float64{
	math.Cos(math.Pi / 6),
	math.Cos(math.Pi - math.Pi/6),
	-math.Sin(math.Pi / 6),
	-math.Sin(math.Pi - math.Pi/6),
}

// Isometric is a composable 3D affine transform followed by a fixed
// isometric projection. The zero value is not usable; call [New].
type Isometric struct {
	matrix Matrix
	saved  []Matrix
}

// New returns an Isometric with the identity transform and an empty stack.
func New() *Isometric {
	return &Isometric{matrix: Identity}
}

// Matrix returns a copy of the current transform.
func (t *Isometric) Matrix() Matrix { return t.matrix }

// Depth returns the number of saved transforms on the stack.
func (t *Isometric) Depth() int { return len(t.saved) }

// Save pushes the current transform onto the stack.
func (t *Isometric) Save() {
	t.saved = append(t.saved, t.matrix)
}

// Restore pops the most recently saved transform. Restoring with an empty
// stack leaves the current transform untouched.
func (t *Isometric) Restore() {
	n := len(t.saved)
	if n == 0 {
		return
	}
	t.matrix = t.saved[n-1]
	t.saved = t.saved[:n-1]
}

// Within saves the transform, runs fn and restores the stack to the depth it
// had before the call. Saves that fn leaves unbalanced are unwound too, so
// the transform seen by the caller afterwards is always the one it had
// before Within.
func (t *Isometric) Within(fn func()) {
	depth := len(t.saved)
	t.Save()
	defer func() {
		for len(t.saved) > depth {
			t.Restore()
		}
	}()
	fn()
}

// Scale3D scales the local x, y and z axes.
//
//	| a b c d |   | kx  0  0 0 |   | a·kx b·ky c·kz d |
//	| e f g h | · |  0 ky  0 0 | = | e·kx f·ky g·kz h |
//	| i j k l |   |  0  0 kz 0 |   | i·kx j·ky k·kz l |
func (t *Isometric) Scale3D(kx, ky, kz float64) {
	m := &t.matrix
	m[0] *= kx
	m[1] *= ky
	m[2] *= kz
	m[4] *= kx
	m[5] *= ky
	m[6] *= kz
	m[8] *= kx
	m[9] *= ky
	m[10] *= kz
}

// RotateZ rotates the local frame about its z axis by angle radians.
// Translation coefficients are left as they are.
func (t *Isometric) RotateZ(angle float64) {
	sin, cos := math.Sincos(angle)
	m := &t.matrix
	for row := 0; row < 3; row++ {
		a, b := m[row*4], m[row*4+1]
		m[row*4] = a*cos + b*sin
		m[row*4+1] = a*-sin + b*cos
	}
}

// Translate3D moves the local origin by (tx, ty, tz) measured in the
// current local frame.
func (t *Isometric) Translate3D(tx, ty, tz float64) {
	m := &t.matrix
	for row := 0; row < 3; row++ {
		r := m[row*4 : row*4+4]
		r[3] += r[0]*tx + r[1]*ty + r[2]*tz
	}
}

// Transform maps a local point to screen space.
func (t *Isometric) Transform(x, y, z float64) Point {
	m := &t.matrix
	return project(
		x*m[0]+y*m[1]+z*m[2]+m[3],
		x*m[4]+y*m[5]+z*m[6]+m[7],
		x*m[8]+y*m[9]+z*m[10]+m[11],
	)
}

func project(x, y, z float64) Point {
	return Point{
		X: x*projection[0] + y*projection[1],
		Y: x*projection[2] + y*projection[3] - z,
	}
}
