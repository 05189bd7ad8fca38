package csg

import (
	"math"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// sphere is a ball of the given radius centered at the local origin.
type sphere struct {
	object
	radius float64
}

func (s *sphere) Evaluate(p v3.Vec) float64 {
	return p.Length() - s.radius
}

func (s *sphere) BoundingBox() sdf.Box3 {
	r := v3.Vec{X: s.radius, Y: s.radius, Z: s.radius}
	return sdf.Box3{Min: r.Neg(), Max: r}
}

// cube is an axis-aligned cube centered at the local origin. half is
// the per-axis half extent, precomputed from the side length.
type cube struct {
	object
	side float64
	half v3.Vec
}

// Evaluate is the exact box SDF, valid both inside and outside.
func (c *cube) Evaluate(p v3.Vec) float64 {
	q := p.Abs().Sub(c.half)
	return q.Max(v3.Vec{}).Length() + math.Min(q.MaxComponent(), 0)
}

func (c *cube) BoundingBox() sdf.Box3 {
	return sdf.Box3{Min: c.half.Neg(), Max: c.half}
}
