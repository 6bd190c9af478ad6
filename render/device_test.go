// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"testing"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
)

func TestNullDeviceHandle(t *testing.T) {
	var handle DeviceHandle = NullDeviceHandle{}

	if handle.Device() != nil {
		t.Error("NullDeviceHandle.Device() should return nil")
	}
	if handle.Queue() != nil {
		t.Error("NullDeviceHandle.Queue() should return nil")
	}
	if handle.Adapter() != nil {
		t.Error("NullDeviceHandle.Adapter() should return nil")
	}
	if handle.SurfaceFormat() != gputypes.TextureFormatUndefined {
		t.Error("NullDeviceHandle.SurfaceFormat() should return Undefined")
	}

	// DeviceHandle is an alias for gpucontext.DeviceProvider.
	var _ gpucontext.DeviceProvider = handle
}

func TestTextureUsageGPU(t *testing.T) {
	got := (TextureUsageTextureBinding | TextureUsageCopyDst).gpuUsage()
	want := gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst
	if got != want {
		t.Errorf("gpuUsage() = %v, want %v", got, want)
	}
	if TextureUsage(0).gpuUsage() != 0 {
		t.Error("gpuUsage() of no flags should be 0")
	}
}

func TestTextureDescriptorDefault(t *testing.T) {
	desc := DefaultTextureDescriptor(256, 128, gputypes.TextureFormatRGBA8Unorm)

	if desc.Width != 256 || desc.Height != 128 {
		t.Errorf("size = %dx%d, want 256x128", desc.Width, desc.Height)
	}
	if desc.Depth != 1 || desc.MipLevelCount != 1 || desc.SampleCount != 1 {
		t.Errorf("Depth/MipLevelCount/SampleCount = %d/%d/%d, want 1/1/1",
			desc.Depth, desc.MipLevelCount, desc.SampleCount)
	}
	if desc.Format != gputypes.TextureFormatRGBA8Unorm {
		t.Errorf("Format = %v, want RGBA8Unorm", desc.Format)
	}
	if desc.Usage != TextureUsageTextureBinding|TextureUsageRenderAttachment {
		t.Errorf("Usage = %v", desc.Usage)
	}
}

func TestPyramidTextureDescriptor(t *testing.T) {
	p := newTestPyramid(t, 100, 50, 0)
	desc := PyramidTextureDescriptor(p)

	if desc.Width != 100 || desc.Height != 50 {
		t.Errorf("size = %dx%d, want 100x50", desc.Width, desc.Height)
	}
	if desc.MipLevelCount != 7 {
		t.Errorf("MipLevelCount = %d, want 7", desc.MipLevelCount)
	}
	if desc.Format != gputypes.TextureFormatRGBA8Unorm {
		t.Errorf("Format = %v, want RGBA8Unorm", desc.Format)
	}
	if desc.Usage&TextureUsageCopyDst == 0 || desc.Usage&TextureUsageTextureBinding == 0 {
		t.Errorf("Usage = %v, want CopyDst|TextureBinding", desc.Usage)
	}
}

func TestMipExtent(t *testing.T) {
	tests := []struct {
		k            int
		wantW, wantH int
	}{
		{0, 10, 6},
		{1, 5, 3},
		{2, 2, 1},
		{3, 1, 1},
	}
	for _, tt := range tests {
		if w, h := MipExtent(10, 6, tt.k); w != tt.wantW || h != tt.wantH {
			t.Errorf("MipExtent(10, 6, %d) = %d, %d, want %d, %d", tt.k, w, h, tt.wantW, tt.wantH)
		}
	}
}

func TestMipLevelData(t *testing.T) {
	p := newTestPyramid(t, 10, 6, 0)
	for k := range p.NumLevels() {
		w, h := MipExtent(10, 6, k)
		data := MipLevelData(p, k)
		if len(data) != w*h*4 {
			t.Errorf("MipLevelData(%d) len = %d, want %d", k, len(data), w*h*4)
		}
		// The last uploaded pixel is the level's pixel at the same spot.
		lr, lg, lb := p.Level(k).GetRGB(w-1, h-1)
		last := data[len(data)-4:]
		if last[0] != lr || last[1] != lg || last[2] != lb {
			t.Errorf("MipLevelData(%d) last pixel = %v, want [%d %d %d 255]", k, last, lr, lg, lb)
		}
		r, g, b := p.Level(k).GetRGB(0, 0)
		if data[0] != r || data[1] != g || data[2] != b || data[3] != 255 {
			t.Errorf("MipLevelData(%d) first pixel = %v, want [%d %d %d 255]", k, data[:4], r, g, b)
		}
	}
	if MipLevelData(p, p.NumLevels()) != nil {
		t.Error("MipLevelData(out of range) should be nil")
	}
}
