// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	_ "embed"
	"fmt"

	"github.com/gogpu/naga"
)

// Bind group 0 layout of the foveation shader.
const (
	BindingUniforms = 0
	BindingPyramid  = 1
	BindingSampler  = 2
)

// Shader entry points.
const (
	VertexEntryPoint   = "vs_main"
	FragmentEntryPoint = "fs_main"
)

//go:embed shaders/foveate.wgsl
var foveateShaderWGSL string

// Program is the foveation shader in source and SPIR-V form.
// Draw it as a single 3-vertex triangle list without vertex buffers.
type Program struct {
	Source string
	SPIRV  []uint32
}

// ShaderSource returns the WGSL source of the foveation shader.
func ShaderSource() string {
	return foveateShaderWGSL
}

// CompileProgram compiles the foveation shader with naga.
func CompileProgram() (*Program, error) {
	spirv, err := compileWGSL(foveateShaderWGSL)
	if err != nil {
		return nil, err
	}
	return &Program{Source: foveateShaderWGSL, SPIRV: spirv}, nil
}

// compileWGSL compiles WGSL to SPIR-V words.
func compileWGSL(source string) ([]uint32, error) {
	spirvBytes, err := naga.Compile(source)
	if err != nil {
		return nil, fmt.Errorf("render: compile shader: %w", err)
	}

	// SPIR-V is little-endian 32-bit words.
	words := make([]uint32, len(spirvBytes)/4)
	for i := range words {
		words[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}
	return words, nil
}
