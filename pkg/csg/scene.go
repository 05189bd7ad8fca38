package csg

import (
	"fmt"
	"io"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Material tags an exported toplevel shape. The core never interprets
// it; a downstream voxelizer or exporter decides what it means.
type Material string

// Object is a node of the CSG expression graph. Implementations are
// owned by exactly one Scene and are immutable once built, so
// Evaluate may be called concurrently from any number of goroutines
// as long as no goroutine is still growing the Scene.
//
// Object embeds sdf.SDF3: Evaluate returns the signed distance from p
// to the shape (negative inside, zero on the surface), and
// BoundingBox returns a conservative axis-aligned bound.
type Object interface {
	sdf.SDF3

	// Dump writes the textual form of the object to w. The output is
	// a valid expression of the scene description language.
	Dump(w io.Writer)

	// Scene returns the scene that owns this object.
	Scene() *Scene

	sealed()
}

// object is the common base embedded by every node variant. It pins
// the owner, which the builder functions check before combining.
type object struct {
	scene *Scene
}

func (o *object) Scene() *Scene { return o.scene }
func (o *object) sealed()       {}

// Scene owns all objects of a CSG expression graph. Objects are
// created only through the Scene's factory methods and the builder
// functions; they are never removed, so an Object reference stays
// valid for the life of the Scene and combinators can hold plain
// references to operands built earlier. Construction is
// single-writer; once built, the scene is read-only and safe for
// concurrent distance queries.
type Scene struct {
	objects   []Object
	toplevels []*Toplevel
}

// NewScene returns an empty scene.
func NewScene() *Scene {
	return &Scene{}
}

// add stores a freshly built object in the arena.
func (s *Scene) add(o Object) Object {
	s.objects = append(s.objects, o)
	return o
}

// Sphere creates a sphere of the given radius, centered at the local
// origin. The radius must be positive.
func (s *Scene) Sphere(radius float64) Object {
	if radius <= 0 {
		panic(fmt.Sprintf("csg: sphere radius must be positive, got %v", radius))
	}
	return s.add(&sphere{object: object{scene: s}, radius: radius})
}

// Cube creates an axis-aligned cube with the given side length,
// centered at the local origin. The side must be positive.
func (s *Scene) Cube(side float64) Object {
	if side <= 0 {
		panic(fmt.Sprintf("csg: cube side must be positive, got %v", side))
	}
	h := side / 2
	return s.add(&cube{
		object: object{scene: s},
		side:   side,
		half:   v3.Vec{X: h, Y: h, Z: h},
	})
}

// Toplevel registers child as an exported root shape carrying a
// material tag. Toplevels are enumerated in registration order by
// Toplevels; overlapping toplevels are legal, each remains separately
// queryable. The child must belong to this scene.
func (s *Scene) Toplevel(child Object, m Material) *Toplevel {
	mustOwn(s, child)
	t := &Toplevel{object: object{scene: s}, child: child, material: m}
	s.objects = append(s.objects, t)
	s.toplevels = append(s.toplevels, t)
	return t
}

// Toplevels returns the registered toplevel shapes in registration
// order. The returned slice is owned by the scene; callers must not
// modify it.
func (s *Scene) Toplevels() []*Toplevel {
	return s.toplevels
}

// Size returns the number of registered toplevels.
func (s *Scene) Size() int {
	return len(s.toplevels)
}

// NumObjects returns the total number of objects owned by the scene.
func (s *Scene) NumObjects() int {
	return len(s.objects)
}

// Toplevel is an exported root of a CSG expression. Distance queries
// delegate to the child; the material tag is metadata for downstream
// consumers and never influences evaluation.
type Toplevel struct {
	object
	child    Object
	material Material
}

// Child returns the wrapped root object.
func (t *Toplevel) Child() Object { return t.child }

// Material returns the material tag.
func (t *Toplevel) Material() Material { return t.material }

func (t *Toplevel) Evaluate(p v3.Vec) float64 {
	return t.child.Evaluate(p)
}

func (t *Toplevel) BoundingBox() sdf.Box3 {
	return t.child.BoundingBox()
}

// mustOwn panics unless obj was created by s. Combining objects from
// different scenes is a bug in the calling code, never a runtime
// condition, so it fails fast instead of returning an error.
func mustOwn(s *Scene, obj Object) {
	if obj.Scene() != s {
		panic("csg: object belongs to a different scene")
	}
}

// mustShareScene returns the common scene of two operands, panicking
// if they were built by different scenes.
func mustShareScene(left, right Object) *Scene {
	s := left.Scene()
	mustOwn(s, right)
	return s
}
