// Package scene turns a snapshot and an animation phase into the list of
// shapes that make up one frame of the skyline.
//
// [Render] is pure: given the same snapshot, counter, focus and options it
// returns the same shapes, and it never mutates its inputs. Each call
// starts from a fresh transform, applies the global scale, ranks entities
// by their total under the chosen metric, deals them into grid cells and
// builds one cube per placement at the phase angle. Shapes come back in
// paint order.
//
// [State] and [Step] hold everything that changes over time: the current
// snapshot, the animation counter and the focused entity. Step is a
// reducer; the engine package owns the only State and feeds it events one
// at a time.
package scene
