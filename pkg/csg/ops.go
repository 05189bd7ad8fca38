package csg

import (
	"math"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// binop holds the operands shared by the boolean combinators. Both
// operands are plain references into the owning scene's arena; the
// scene guarantees they outlive this node.
type binop struct {
	object
	left, right Object
}

// union keeps a point when it is inside either operand.
type union struct {
	binop
}

func (u *union) Evaluate(p v3.Vec) float64 {
	return math.Min(u.left.Evaluate(p), u.right.Evaluate(p))
}

func (u *union) BoundingBox() sdf.Box3 {
	return u.left.BoundingBox().Extend(u.right.BoundingBox())
}

// intersection keeps a point only when it is inside both operands.
type intersection struct {
	binop
}

func (i *intersection) Evaluate(p v3.Vec) float64 {
	return math.Max(i.left.Evaluate(p), i.right.Evaluate(p))
}

// BoundingBox is conservative: the union of the operand boxes always
// bounds their intersection.
func (i *intersection) BoundingBox() sdf.Box3 {
	return i.left.BoundingBox().Extend(i.right.BoundingBox())
}

// difference keeps a point when it is inside left and outside right.
type difference struct {
	binop
}

func (d *difference) Evaluate(p v3.Vec) float64 {
	return math.Max(d.left.Evaluate(p), -d.right.Evaluate(p))
}

// BoundingBox of left bounds the difference; carving only removes
// material.
func (d *difference) BoundingBox() sdf.Box3 {
	return d.left.BoundingBox()
}

// transform applies an affine transform to its child. inv is the
// world-to-object matrix stored at construction; evaluation maps the
// query point through it before recursing, so a single inversion at
// build time serves millions of point queries. fwd is its inverse,
// kept for bounding boxes.
type transform struct {
	object
	child Object
	inv   sdf.M44
	fwd   sdf.M44
}

func (t *transform) Evaluate(p v3.Vec) float64 {
	return t.child.Evaluate(t.inv.MulPosition(p))
}

func (t *transform) BoundingBox() sdf.Box3 {
	return t.fwd.MulBox(t.child.BoundingBox())
}

// Unite returns the union of its operands. With more than two
// operands the combinators right-fold: Unite(a, b, c) behaves as
// Unite(a, Unite(b, c)). All operands must belong to the same scene.
func Unite(first, second Object, rest ...Object) Object {
	if len(rest) > 0 {
		second = Unite(second, rest[0], rest[1:]...)
	}
	s := mustShareScene(first, second)
	return s.add(&union{binop{object: object{scene: s}, left: first, right: second}})
}

// Intersect returns the intersection of its operands, right-folding
// the n-ary form like Unite.
func Intersect(first, second Object, rest ...Object) Object {
	if len(rest) > 0 {
		second = Intersect(second, rest[0], rest[1:]...)
	}
	s := mustShareScene(first, second)
	return s.add(&intersection{binop{object: object{scene: s}, left: first, right: second}})
}

// Subtract returns first with the remaining operands carved out. The
// n-ary form removes the union of the rest: Subtract(a, b, c) is
// Subtract(a, Unite(b, c)).
func Subtract(first, second Object, rest ...Object) Object {
	if len(rest) > 0 {
		second = Unite(second, rest[0], rest[1:]...)
	}
	s := mustShareScene(first, second)
	return s.add(&difference{binop{object: object{scene: s}, left: first, right: second}})
}

// Transform wraps child with an explicit affine matrix.
//
// The matrix must already be the INVERSE of the intended placement
// (world to object space): evaluation maps the query point through it
// before recursing into the child. Passing a forward placement matrix
// here silently distorts the shape. Prefer the Scale, Rotate and
// Translate helpers, which invert their parameters for you.
//
// The matrix is stored verbatim; invertibility is not validated and
// remains the caller's responsibility.
func Transform(child Object, inverse sdf.M44) Object {
	s := child.Scene()
	return s.add(&transform{
		object: object{scene: s},
		child:  child,
		inv:    inverse,
		fwd:    inverse.Inverse(),
	})
}

// ScaleXYZ scales child by the given per-axis factors. Every factor
// must be non-zero; a zero factor is a caller bug and panics.
func ScaleXYZ(child Object, factors v3.Vec) Object {
	if factors.X == 0 || factors.Y == 0 || factors.Z == 0 {
		panic("csg: scale factor components must be non-zero")
	}
	inv := v3.Vec{X: 1 / factors.X, Y: 1 / factors.Y, Z: 1 / factors.Z}
	return Transform(child, sdf.Scale3d(inv))
}

// Scale scales child uniformly by factor.
func Scale(child Object, factor float64) Object {
	if factor == 0 {
		panic("csg: scale factor must be non-zero")
	}
	return ScaleXYZ(child, v3.Vec{X: factor, Y: factor, Z: factor})
}

// XScale scales child by factor along the x axis only.
func XScale(child Object, factor float64) Object {
	return ScaleXYZ(child, v3.Vec{X: factor, Y: 1, Z: 1})
}

// YScale scales child by factor along the y axis only.
func YScale(child Object, factor float64) Object {
	return ScaleXYZ(child, v3.Vec{X: 1, Y: factor, Z: 1})
}

// ZScale scales child by factor along the z axis only.
func ZScale(child Object, factor float64) Object {
	return ScaleXYZ(child, v3.Vec{X: 1, Y: 1, Z: factor})
}

// Rotate rotates child by angle radians about the given axis, right
// hand rule.
func Rotate(child Object, angle float64, axis v3.Vec) Object {
	return Transform(child, sdf.Rotate3d(axis, -angle))
}

// XRotate rotates child by angle radians about the x axis.
func XRotate(child Object, angle float64) Object {
	return Rotate(child, angle, v3.Vec{X: 1})
}

// YRotate rotates child by angle radians about the y axis.
func YRotate(child Object, angle float64) Object {
	return Rotate(child, angle, v3.Vec{Y: 1})
}

// ZRotate rotates child by angle radians about the z axis.
func ZRotate(child Object, angle float64) Object {
	return Rotate(child, angle, v3.Vec{Z: 1})
}

// Translate moves child by offset.
func Translate(child Object, offset v3.Vec) Object {
	return Transform(child, sdf.Translate3d(offset.Neg()))
}

// XTranslate moves child by offset along the x axis.
func XTranslate(child Object, offset float64) Object {
	return Translate(child, v3.Vec{X: offset})
}

// YTranslate moves child by offset along the y axis.
func YTranslate(child Object, offset float64) Object {
	return Translate(child, v3.Vec{Y: offset})
}

// ZTranslate moves child by offset along the z axis.
func ZTranslate(child Object, offset float64) Object {
	return Translate(child, v3.Vec{Z: offset})
}
