// Package shaders provides embedded GLSL shader sources.
//
// Node programs share one vertex stage; attribute locations are fixed so the
// visible and picking programs can draw from the same vertex array:
//
//	0 vertex  1 position  2 color  3 intensity  4 size
//	5 outlineWidth  6 outlineColor  7 encodedIndex
package shaders

import _ "embed"

// Attribute locations.
const (
	AttribVertex       = 0
	AttribPosition     = 1
	AttribColor        = 2
	AttribIntensity    = 3
	AttribSize         = 4
	AttribOutlineWidth = 5
	AttribOutlineColor = 6
	AttribEncodedIndex = 7
)

// NodesVertexShader expands each node instance into a view-aligned quad.
//
//go:embed nodes.vert
var NodesVertexShader string

// NodesFragmentShader shades nodes as lit discs with an outline ring.
//
//go:embed nodes.frag
var NodesFragmentShader string

// NodesPickingFragmentShader writes the encoded node index.
//
//go:embed nodes_picking.frag
var NodesPickingFragmentShader string

// EdgesVertexShader is the vertex shader for edge lines.
//
//go:embed edges.vert
var EdgesVertexShader string

// EdgesFragmentShader is the fragment shader for edge lines.
//
//go:embed edges.frag
var EdgesFragmentShader string
