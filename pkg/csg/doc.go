// Package csg implements the constructive solid geometry scene
// representation at the heart of ocmesh. A Scene owns every node of a
// CSG expression graph; factory methods and the package-level builder
// functions grow the graph, and every node evaluates as a signed
// distance field. Nodes satisfy sdf.SDF3, so toplevel shapes plug
// straight into sdfx renderers and samplers.
package csg
