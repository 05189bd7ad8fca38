package tessellate_test

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/yiyijiang/ocmesh/pkg/csg"
	"github.com/yiyijiang/ocmesh/pkg/tessellate"
)

// testCells keeps marching cubes fast in tests.
const testCells = 32

func TestTessellateNilScene(t *testing.T) {
	if meshes := tessellate.Tessellate(nil, testCells); meshes != nil {
		t.Errorf("expected nil meshes for nil scene, got %d", len(meshes))
	}
}

func TestTessellateEmptyScene(t *testing.T) {
	meshes := tessellate.Tessellate(csg.NewScene(), testCells)
	if len(meshes) != 0 {
		t.Errorf("expected no meshes for empty scene, got %d", len(meshes))
	}
}

func TestTessellateSphere(t *testing.T) {
	s := csg.NewScene()
	s.Toplevel(s.Sphere(1), "steel")

	meshes := tessellate.Tessellate(s, testCells)
	if len(meshes) != 1 {
		t.Fatalf("expected 1 mesh, got %d", len(meshes))
	}

	m := meshes[0]
	if m.Name != "steel" {
		t.Errorf("mesh name = %q, want steel", m.Name)
	}
	if m.NumTriangles() == 0 {
		t.Fatal("expected a non-empty mesh")
	}
	if len(m.Vertices) != len(m.Normals) {
		t.Errorf("vertices/normals length mismatch: %d vs %d", len(m.Vertices), len(m.Normals))
	}
	if len(m.Indices)%3 != 0 {
		t.Errorf("index count %d is not a multiple of 3", len(m.Indices))
	}

	// Every vertex must lie near the unit sphere surface. Marching
	// cubes is approximate, so allow a generous cell-sized tolerance.
	cellSize := 2.0 / testCells
	for i := 0; i+2 < len(m.Vertices); i += 3 {
		r := math.Sqrt(float64(m.Vertices[i]*m.Vertices[i] +
			m.Vertices[i+1]*m.Vertices[i+1] +
			m.Vertices[i+2]*m.Vertices[i+2]))
		if math.Abs(r-1) > 2*cellSize {
			t.Fatalf("vertex %d at radius %v, want ~1", i/3, r)
		}
	}
}

func TestTessellateOrderFollowsRegistration(t *testing.T) {
	s := csg.NewScene()
	s.Toplevel(s.Cube(2), "wood")
	s.Toplevel(csg.XTranslate(s.Sphere(1), 5), "steel")

	meshes := tessellate.Tessellate(s, testCells)
	if len(meshes) != 2 {
		t.Fatalf("expected 2 meshes, got %d", len(meshes))
	}
	if meshes[0].Name != "wood" || meshes[1].Name != "steel" {
		t.Errorf("mesh order = [%q, %q], want [wood, steel]", meshes[0].Name, meshes[1].Name)
	}
}

func TestTessellateDoesNotMutateScene(t *testing.T) {
	s := csg.NewScene()
	s.Toplevel(csg.Subtract(s.Cube(2), s.Sphere(1)), "oak")

	before := s.NumObjects()
	dump := s.String()
	tessellate.Tessellate(s, testCells)

	if s.NumObjects() != before {
		t.Errorf("tessellation grew the scene: %d objects, had %d", s.NumObjects(), before)
	}
	if s.String() != dump {
		t.Error("tessellation changed the scene dump")
	}
}

func TestWriteSTL(t *testing.T) {
	s := csg.NewScene()
	s.Toplevel(s.Sphere(1), "steel")
	m := tessellate.Tessellate(s, testCells)[0]

	var buf bytes.Buffer
	if err := tessellate.WriteSTL(&buf, m); err != nil {
		t.Fatalf("WriteSTL: %v", err)
	}

	// Binary STL layout: 80 byte header, uint32 count, 50 bytes per
	// triangle.
	want := 84 + 50*m.NumTriangles()
	if buf.Len() != want {
		t.Fatalf("STL size = %d bytes, want %d", buf.Len(), want)
	}

	var count uint32
	if err := binary.Read(bytes.NewReader(buf.Bytes()[80:84]), binary.LittleEndian, &count); err != nil {
		t.Fatalf("reading triangle count: %v", err)
	}
	if int(count) != m.NumTriangles() {
		t.Errorf("STL triangle count = %d, want %d", count, m.NumTriangles())
	}
}

func TestMeshApproximatesDistanceField(t *testing.T) {
	// The mesh of a translated cube must stay inside a slightly
	// enlarged bounding box of the shape it approximates.
	s := csg.NewScene()
	top := s.Toplevel(csg.Translate(s.Cube(2), v3.Vec{X: 1}), "wood")

	m := tessellate.Tessellate(s, testCells)[0]
	if m.NumTriangles() == 0 {
		t.Fatal("expected a non-empty mesh")
	}

	bb := top.BoundingBox()
	slack := 0.2
	for i := 0; i+2 < len(m.Vertices); i += 3 {
		x := float64(m.Vertices[i])
		y := float64(m.Vertices[i+1])
		z := float64(m.Vertices[i+2])
		if x < bb.Min.X-slack || x > bb.Max.X+slack ||
			y < bb.Min.Y-slack || y > bb.Max.Y+slack ||
			z < bb.Min.Z-slack || z > bb.Max.Z+slack {
			t.Fatalf("vertex (%v, %v, %v) outside bounds [%v, %v]", x, y, z, bb.Min, bb.Max)
		}
	}
}
