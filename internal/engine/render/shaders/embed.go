// Package shaders provides embedded GLSL shader sources.
package shaders

import _ "embed"

// FaceVertexShader transforms the face mesh and writes the clip distance used
// by the comparison wipe.
//
//go:embed face.vert
var FaceVertexShader string

// FaceFragmentShader shades the face with a key light and a rim term.
//
//go:embed face.frag
var FaceFragmentShader string
