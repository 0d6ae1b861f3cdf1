// Package cube synthesizes the geometry of one stacked isometric cube.
//
// A cube stands on a square footprint of half-width [Dim] and rises to a
// height derived from the sum of its values. Height is log-compressed so a
// single outlier does not dwarf the rest of the skyline:
//
//	height = log10(1 + 12·Dim·total)
//
// Each value contributes a horizontal division line at its running share of
// that height, giving the stacked-segment look for entities made of several
// instances.
package cube

import (
	"math"

	"github.com/matzehuels/skyline/pkg/iso"
)

const (
	// Dim is half the footprint width of a cube in local units.
	Dim = 0.8

	// BaseDepth is how far the pedestal band extends below z=0.
	BaseDepth = 0.2

	// heightGain is the magnitude multiplier applied before log compression.
	heightGain = 12
)

// Vec3 is a position in the transform's local frame.
type Vec3 struct {
	X, Y, Z float64
}

// Cube is the projected geometry of one entity at one animation phase.
// Every point has already been through the transform stack.
type Cube struct {
	// Outer is the closed six-point silhouette of the cube body.
	Outer []iso.Point
	// Base is the closed silhouette of the pedestal band under the cube.
	Base []iso.Point
	// Inner holds open two-point polylines: a pair per value marking its
	// division, followed by the visible vertical edge.
	Inner [][]iso.Point
	// Anchor is the projected top-center, used to place the label.
	Anchor iso.Point
	// Height is the log-compressed height in local units.
	Height float64
	// Levels is the running height after each value. The last level equals
	// Height when at least one value is non-zero.
	Levels []float64
}

// NormalizeAngle reduces a into [0, π/2). A cube looks identical every
// quarter turn, so only the remainder matters.
func NormalizeAngle(a float64) float64 {
	a = math.Mod(a, math.Pi/2)
	if a < 0 {
		a += math.Pi / 2
	}
	// A tiny negative remainder can round up to exactly π/2.
	if a >= math.Pi/2 {
		a = 0
	}
	return a
}

// Heights returns the sum of values, the compressed height and the factor
// that maps a raw value onto its share of that height. A zero total yields
// a flat cube rather than a division by zero.
func Heights(values []float64) (total, scaled, factor float64) {
	for _, v := range values {
		total += v
	}
	if total == 0 {
		return 0, 0, 0
	}
	scaled = math.Log10(1 + heightGain*Dim*total)
	return total, scaled, scaled / total
}

// Build computes the cube for values at pos, rotated by angle. The global
// scale must already be applied to t; Build leaves t exactly as it found it.
func Build(t *iso.Isometric, angle float64, pos Vec3, values []float64) Cube {
	angle = NormalizeAngle(angle)
	_, h, factor := Heights(values)

	var c Cube
	t.Within(func() {
		t.Translate3D(pos.X, pos.Y, pos.Z)
		t.RotateZ(angle - math.Pi/4)

		c.Height = h
		c.Outer = prism(t, h, 0)
		c.Base = prism(t, 0, -BaseDepth)

		c.Inner = make([][]iso.Point, 0, 2*len(values)+1)
		c.Levels = make([]float64, 0, len(values))
		running := 0.0
		for _, v := range values {
			running += v * factor
			c.Levels = append(c.Levels, running)
			c.Inner = append(c.Inner,
				[]iso.Point{t.Transform(-Dim, -Dim, running), t.Transform(Dim, -Dim, running)},
				[]iso.Point{t.Transform(-Dim, -Dim, running), t.Transform(-Dim, Dim, running)},
			)
		}
		c.Inner = append(c.Inner, []iso.Point{t.Transform(-Dim, -Dim, h), t.Transform(-Dim, -Dim, 0)})

		c.Anchor = t.Transform(0, 0, h)
	})
	return c
}

// prism returns the visible silhouette of the footprint swept from bottom
// to top, in the fixed winding the renderer expects.
func prism(t *iso.Isometric, top, bottom float64) []iso.Point {
	return []iso.Point{
		t.Transform(Dim, -Dim, top),
		t.Transform(Dim, Dim, top),
		t.Transform(-Dim, Dim, top),
		t.Transform(-Dim, Dim, bottom),
		t.Transform(-Dim, -Dim, bottom),
		t.Transform(Dim, -Dim, bottom),
	}
}

// levelTolerance absorbs rounding in the running-height accumulation.
const levelTolerance = 1e-9

// InternalDivisions counts the division lines that fall strictly below the
// top face. The last level always coincides with the top, so a cube with a
// single value has none and a cube with two non-zero values has one.
func InternalDivisions(c Cube) int {
	n := 0
	for _, l := range c.Levels {
		if l < c.Height-levelTolerance {
			n++
		}
	}
	return n
}
