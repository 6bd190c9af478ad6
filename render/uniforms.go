// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"encoding/binary"
	"math"

	"github.com/gogpu/foveate/internal/acuity"
	"github.com/gogpu/foveate/internal/image"
)

// UniformsSize is the byte size of the shader's Uniforms struct.
const UniformsSize = 48

// Uniforms mirrors the WGSL Uniforms struct field for field.
// The fixation is in image space, which is also WebGPU framebuffer space.
type Uniforms struct {
	GazeX, GazeY  float32
	Width, Height float32
	GazeRadius    float32
	DotPitch      float32
	ViewDist      float32
	MaxLOD        float32
	Epsilon2      float32
	Alpha         float32
	LogInvCT0     float32
	Model         float32 // 0 radial, 1 cortical
}

// NewUniforms fills the uniforms for drawing p with model at the given
// fixation. Parameters of the unused model stay zero.
func NewUniforms(model acuity.Model, p *image.Pyramid, gazeX, gazeY float64) Uniforms {
	w, h := p.Bounds()
	u := Uniforms{
		GazeX:  float32(gazeX),
		GazeY:  float32(gazeY),
		Width:  float32(w),
		Height: float32(h),
		MaxLOD: float32(max(0, p.NumLevels()-1)),
	}
	switch m := model.(type) {
	case acuity.Radial:
		u.GazeRadius = float32(m.GazeRadius)
	case acuity.Cortical:
		u.Model = 1
		u.DotPitch = float32(m.Viewing.DotPitch)
		u.ViewDist = float32(m.Viewing.ViewDist)
		u.Epsilon2 = float32(m.Constants.Epsilon2)
		u.Alpha = float32(m.Constants.Alpha)
		u.LogInvCT0 = float32(math.Log(1 / m.Constants.CT0))
	}
	return u
}

// Bytes packs the uniforms little-endian in WGSL struct order.
func (u Uniforms) Bytes() []byte {
	fields := [...]float32{
		u.GazeX, u.GazeY,
		u.Width, u.Height,
		u.GazeRadius, u.DotPitch, u.ViewDist, u.MaxLOD,
		u.Epsilon2, u.Alpha, u.LogInvCT0, u.Model,
	}
	buf := make([]byte, UniformsSize)
	for i, f := range fields {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}
