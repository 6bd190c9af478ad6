// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package render composites foveated frames from an image pyramid.
//
// All rendering state lives in an explicit Context: the host device handle,
// the worker pool used for band-parallel compositing, the logger and the
// compiled foveation shader. Nothing is process-global, so several engines
// can render side by side.
//
// # Compositing
//
// Composite reads a precomputed level-of-detail field and samples the
// pyramid trilinearly: bilinear within the two levels enclosing each
// pixel's LOD, then a linear blend by the fractional part. CompositeAnalytic
// evaluates the acuity model per pixel instead, the way a fragment shader
// does, and produces the same bytes as Composite over an absolute field.
//
// # GPU hosts
//
// The engine does not create a GPU device. When the DeviceHandle passed to
// WithDevice also exposes HalDevice and HalQueue, CompositeGPU draws the
// shader on that device and HasGPU reports true. Hosts that draw on screen
// themselves take the WGSL Program (also compiled to SPIR-V), fill a uniform buffer from
// Uniforms.Bytes and upload the pyramid as a single mip-mapped texture
// described by PyramidTextureDescriptor:
//
//	prog, err := rc.Program()
//	desc := render.PyramidTextureDescriptor(pyr)
//	for k := range pyr.NumLevels() {
//	    queue.WriteTexture(tex, k, render.MipLevelData(pyr, k))
//	}
//	queue.WriteBuffer(ubo, 0, render.NewUniforms(model, pyr, gx, gy).Bytes())
//
// # Thread Safety
//
// A Context is safe for concurrent use. Each Composite call runs its bands
// on the shared pool and returns a fresh buffer.
package render
