// Package tessellate converts the toplevel shapes of a CSG scene
// into triangle meshes with sdfx marching cubes. One mesh is
// produced per toplevel, in registration order; the scene is only
// read, never mutated.
package tessellate

import (
	"bufio"
	"encoding/binary"
	"io"

	"github.com/deadsy/sdfx/render"

	"github.com/yiyijiang/ocmesh/pkg/csg"
)

// DefaultCells controls marching cubes tessellation resolution.
const DefaultCells = 200

// Mesh is a flat triangle mesh ready for STL export or GPU upload.
type Mesh struct {
	Name     string // material tag of the source toplevel
	Vertices []float32
	Normals  []float32
	Indices  []uint32
}

// NumTriangles returns the triangle count.
func (m *Mesh) NumTriangles() int {
	return len(m.Indices) / 3
}

// Tessellate meshes every toplevel of the scene. cells controls the
// marching cubes resolution; pass 0 for DefaultCells.
func Tessellate(s *csg.Scene, cells int) []*Mesh {
	if s == nil {
		return nil
	}
	if cells <= 0 {
		cells = DefaultCells
	}
	meshes := make([]*Mesh, 0, s.Size())
	for _, top := range s.Toplevels() {
		m := toMesh(top, cells)
		m.Name = string(top.Material())
		meshes = append(meshes, m)
	}
	return meshes
}

// toMesh runs marching cubes over a single toplevel. Toplevels
// satisfy sdf.SDF3, so they feed the renderer directly.
func toMesh(top *csg.Toplevel, cells int) *Mesh {
	renderer := render.NewMarchingCubesUniform(cells)
	triangles := render.ToTriangles(top, renderer)

	numTri := len(triangles)
	numVerts := numTri * 3

	vertices := make([]float32, 0, numVerts*3)
	normals := make([]float32, 0, numVerts*3)
	indices := make([]uint32, 0, numVerts)

	for i, tri := range triangles {
		// Flat shading: every vertex carries the face normal.
		n := tri.Normal()
		nx := float32(n.X)
		ny := float32(n.Y)
		nz := float32(n.Z)

		for j := 0; j < 3; j++ {
			v := tri[j]
			vertices = append(vertices, float32(v.X), float32(v.Y), float32(v.Z))
			normals = append(normals, nx, ny, nz)
			indices = append(indices, uint32(i*3+j))
		}
	}

	return &Mesh{
		Vertices: vertices,
		Normals:  normals,
		Indices:  indices,
	}
}

// WriteSTL writes the mesh to w in binary STL format.
func WriteSTL(w io.Writer, m *Mesh) error {
	bw := bufio.NewWriter(w)

	var header [80]byte
	copy(header[:], "ocmesh "+m.Name)
	if _, err := bw.Write(header[:]); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.LittleEndian, uint32(m.NumTriangles())); err != nil {
		return err
	}

	for i := 0; i+2 < len(m.Indices); i += 3 {
		// One normal per facet; the mesh stores it per vertex.
		record := make([]float32, 0, 12)
		record = append(record, m.Normals[m.Indices[i]*3], m.Normals[m.Indices[i]*3+1], m.Normals[m.Indices[i]*3+2])
		for j := 0; j < 3; j++ {
			vi := m.Indices[i+j] * 3
			record = append(record, m.Vertices[vi], m.Vertices[vi+1], m.Vertices[vi+2])
		}
		if err := binary.Write(bw, binary.LittleEndian, record); err != nil {
			return err
		}
		if err := binary.Write(bw, binary.LittleEndian, uint16(0)); err != nil {
			return err
		}
	}
	return bw.Flush()
}
