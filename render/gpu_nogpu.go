// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build nogpu

package render

import (
	"github.com/gogpu/foveate/internal/acuity"
	"github.com/gogpu/foveate/internal/image"
)

// gpuCompositor is never created in nogpu builds.
type gpuCompositor struct{}

func newGPUCompositor(DeviceHandle) *gpuCompositor { return nil }

func (*gpuCompositor) composite(*Program, *image.Pyramid, acuity.Model, float64, float64) (*image.ImageBuf, error) {
	return nil, ErrNoGPU
}

func (*gpuCompositor) destroy() {}
