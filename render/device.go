// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/foveate/internal/image"
)

// DeviceHandle provides GPU device access from the host application.
//
// The engine never creates a device. A host passes its own through
// WithDevice. When the handle also exposes wgpu HAL objects through
// HalDevice() any and HalQueue() any, the context composites on that
// device; any other handle, NullDeviceHandle included, composites on the CPU.
//
// DeviceHandle is an alias for gpucontext.DeviceProvider.
type DeviceHandle = gpucontext.DeviceProvider

// TextureDescriptor describes parameters for creating a texture.
// Fields follow WebGPU's GPUTextureDescriptor.
type TextureDescriptor struct {
	// Label is an optional debug label for the texture.
	Label string

	// Width is the texture width in pixels.
	Width uint32

	// Height is the texture height in pixels.
	Height uint32

	// Depth is the array layer count. 1 for regular 2D textures.
	Depth uint32

	// MipLevelCount is the number of mipmap levels.
	MipLevelCount uint32

	// SampleCount is the number of samples for multisampling.
	SampleCount uint32

	// Format is the texture pixel format.
	Format gputypes.TextureFormat

	// Usage specifies how the texture will be used.
	Usage TextureUsage
}

// TextureUsage specifies how a texture can be used.
// These flags can be combined with bitwise OR.
type TextureUsage uint32

const (
	// TextureUsageCopySrc allows the texture to be used as a copy source.
	TextureUsageCopySrc TextureUsage = 1 << iota

	// TextureUsageCopyDst allows the texture to be used as a copy destination.
	TextureUsageCopyDst

	// TextureUsageTextureBinding allows the texture to be used in a texture binding.
	TextureUsageTextureBinding

	// TextureUsageStorageBinding allows the texture to be used in a storage binding.
	TextureUsageStorageBinding

	// TextureUsageRenderAttachment allows the texture to be used as a render attachment.
	TextureUsageRenderAttachment
)

// DefaultTextureDescriptor returns a TextureDescriptor with sensible defaults.
// Only Width, Height, and Format need to be set.
func DefaultTextureDescriptor(width, height uint32, format gputypes.TextureFormat) TextureDescriptor {
	return TextureDescriptor{
		Width:         width,
		Height:        height,
		Depth:         1,
		MipLevelCount: 1,
		SampleCount:   1,
		Format:        format,
		Usage:         TextureUsageTextureBinding | TextureUsageRenderAttachment,
	}
}

// PyramidTextureDescriptor describes an RGBA8 texture whose mip chain
// holds every pyramid level. Upload level k with MipLevelData(p, k).
func PyramidTextureDescriptor(p *image.Pyramid) TextureDescriptor {
	w, h := p.Bounds()
	desc := DefaultTextureDescriptor(uint32(w), uint32(h), gputypes.TextureFormatRGBA8Unorm) //nolint:gosec // dimensions are positive
	desc.Label = "foveate pyramid"
	desc.MipLevelCount = uint32(p.NumLevels()) //nolint:gosec // level count is small
	desc.Usage = TextureUsageTextureBinding | TextureUsageCopyDst
	return desc
}

// MipExtent returns the size of mip level k of a width x height texture.
// Texture mips round down where pyramid levels round up, so an odd level
// loses its last column or row on upload.
func MipExtent(width, height, k int) (int, int) {
	return max(1, width>>k), max(1, height>>k)
}

// MipLevelData returns pyramid level k as tightly packed RGBA8 rows of
// the MipExtent size, or nil if k is out of range.
func MipLevelData(p *image.Pyramid, k int) []byte {
	level := p.Level(k)
	if level == nil {
		return nil
	}
	lw, _ := level.Bounds()
	w, h := p.Bounds()
	mw, mh := MipExtent(w, h, k)

	rgba := level.ToRGBA().Data()
	if mw == lw {
		return rgba[:mw*mh*4]
	}
	out := make([]byte, mw*mh*4)
	for y := range mh {
		copy(out[y*mw*4:(y+1)*mw*4], rgba[y*lw*4:])
	}
	return out
}

// gpuUsage converts usage flags to their WebGPU values.
func (u TextureUsage) gpuUsage() gputypes.TextureUsage {
	var out gputypes.TextureUsage
	if u&TextureUsageCopySrc != 0 {
		out |= gputypes.TextureUsageCopySrc
	}
	if u&TextureUsageCopyDst != 0 {
		out |= gputypes.TextureUsageCopyDst
	}
	if u&TextureUsageTextureBinding != 0 {
		out |= gputypes.TextureUsageTextureBinding
	}
	if u&TextureUsageStorageBinding != 0 {
		out |= gputypes.TextureUsageStorageBinding
	}
	if u&TextureUsageRenderAttachment != 0 {
		out |= gputypes.TextureUsageRenderAttachment
	}
	return out
}

// NullDeviceHandle is a DeviceHandle that provides nil implementations.
// Used when compositing on the CPU without a host device.
type NullDeviceHandle struct{}

// Device returns nil for the null device.
func (NullDeviceHandle) Device() gpucontext.Device { return nil }

// Queue returns nil for the null device.
func (NullDeviceHandle) Queue() gpucontext.Queue { return nil }

// Adapter returns nil for the null device.
func (NullDeviceHandle) Adapter() gpucontext.Adapter { return nil }

// SurfaceFormat returns undefined format for the null device.
func (NullDeviceHandle) SurfaceFormat() gputypes.TextureFormat {
	return gputypes.TextureFormatUndefined
}

// Ensure NullDeviceHandle implements DeviceHandle.
var _ DeviceHandle = NullDeviceHandle{}
