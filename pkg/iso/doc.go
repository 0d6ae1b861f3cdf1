// Package iso implements the affine transform stack used to draw the skyline.
//
// # Model
//
// An [Isometric] holds a single 3x4 affine matrix mapping a local point
// (x, y, z, 1) to world coordinates, plus a stack of saved matrices. World
// coordinates are flattened to the screen by a fixed isometric projection
// whose two horizontal axes point 30° and 150° from the screen's x axis:
//
//	X = x·cos(π/6) + y·cos(5π/6)
//	Y = −x·sin(π/6) − y·sin(5π/6) − z
//
// Screen Y grows downwards, so a positive z moves a point up the screen.
//
// # Composition
//
// [Isometric.Scale3D], [Isometric.RotateZ] and [Isometric.Translate3D]
// right-multiply the current matrix, so every call is expressed in the
// local frame produced by the calls before it. Translating after a scale
// moves by scaled units; translating after a rotation moves along the
// rotated axes. This is what lets a caller position many cubes on a grid
// with nothing more than save, translate, rotate, draw, restore:
//
//	t := iso.New()
//	t.Scale3D(7, 7, 7)
//	for _, c := range cells {
//	    t.Within(func() {
//	        t.Translate3D(c.X, c.Y, 0)
//	        t.RotateZ(angle)
//	        p := t.Transform(0, 0, 1)
//	        // ...
//	    })
//	}
//
// The stack is never reset implicitly. [Isometric.Within] pairs the save
// and restore around a callback and is the preferred way to make a local
// excursion.
//
// An Isometric is not safe for concurrent use.
package iso
