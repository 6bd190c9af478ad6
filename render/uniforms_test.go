// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/gogpu/foveate/internal/acuity"
)

func readFloat(b []byte, field int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(b[field*4:]))
}

func TestUniforms_Radial(t *testing.T) {
	p := newTestPyramid(t, 64, 32, 0)
	u := NewUniforms(acuity.Radial{GazeRadius: 25}, p, 10.5, 20)

	b := u.Bytes()
	if len(b) != UniformsSize {
		t.Fatalf("len(Bytes()) = %d, want %d", len(b), UniformsSize)
	}

	tests := []struct {
		name  string
		field int
		want  float32
	}{
		{"gaze.x", 0, 10.5},
		{"gaze.y", 1, 20},
		{"size.x", 2, 64},
		{"size.y", 3, 32},
		{"gaze_radius", 4, 25},
		{"dot_pitch", 5, 0},
		{"max_lod", 7, 6},
		{"model", 11, 0},
	}
	for _, tt := range tests {
		if got := readFloat(b, tt.field); got != tt.want {
			t.Errorf("%s = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestUniforms_Cortical(t *testing.T) {
	p := newTestPyramid(t, 16, 16, 0)
	vp := acuity.ViewingParameters{DotPitch: 3e-4, ViewDist: 0.6, Pix2Deg: 32}
	m, err := acuity.NewCortical(vp, acuity.DefaultConstants())
	if err != nil {
		t.Fatalf("NewCortical() error = %v", err)
	}

	b := NewUniforms(m, p, 8, 8).Bytes()
	tests := []struct {
		name  string
		field int
		want  float32
	}{
		{"gaze_radius", 4, 0},
		{"dot_pitch", 5, 3e-4},
		{"view_dist", 6, 0.6},
		{"max_lod", 7, 4},
		{"epsilon2", 8, 2.3},
		{"alpha", 9, 0.106},
		{"log_inv_ct0", 10, float32(math.Log(64))},
		{"model", 11, 1},
	}
	for _, tt := range tests {
		if got := readFloat(b, tt.field); got != tt.want {
			t.Errorf("%s = %v, want %v", tt.name, got, tt.want)
		}
	}
}
