// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package render

import (
	"fmt"
	"sync"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/foveate/internal/acuity"
	"github.com/gogpu/foveate/internal/image"
)

// copyRowAlignment is the WebGPU alignment of BytesPerRow in
// texture-to-buffer copies.
const copyRowAlignment = 256

// gpuWaitTimeout bounds the wait for one composite to finish on the device.
const gpuWaitTimeout = 5 * time.Second

// halProvider is implemented by device handles that expose wgpu HAL objects.
type halProvider interface {
	HalDevice() any
	HalQueue() any
}

// gpuCompositor draws the foveation shader into an offscreen RGBA8 target
// and reads the frame back.
//
// The pipeline is created on first use. The pyramid texture is kept while
// the same pyramid is drawn and the target while the size is unchanged, so
// a fixation change costs one uniform upload and one draw.
type gpuCompositor struct {
	mu     sync.Mutex
	device hal.Device
	queue  hal.Queue

	shader     hal.ShaderModule
	bindLayout hal.BindGroupLayout
	pipeLayout hal.PipelineLayout
	pipeline   hal.RenderPipeline
	sampler    hal.Sampler

	pyramid     *image.Pyramid
	pyramidTex  hal.Texture
	pyramidView hal.TextureView

	width, height uint32
	targetTex     hal.Texture
	targetView    hal.TextureView
}

// newGPUCompositor returns a compositor for h, or nil when h carries no
// HAL device.
func newGPUCompositor(h DeviceHandle) *gpuCompositor {
	hp, ok := h.(halProvider)
	if !ok {
		return nil
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil
	}
	return &gpuCompositor{device: device, queue: queue}
}

// composite draws p for model at (gazeX, gazeY) and returns the RGB frame.
func (g *gpuCompositor) composite(prog *Program, p *image.Pyramid, model acuity.Model, gazeX, gazeY float64) (*image.ImageBuf, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.pipeline == nil {
		if err := g.createPipeline(prog); err != nil {
			g.destroyPipeline()
			return nil, fmt.Errorf("create pipeline: %w", err)
		}
	}
	if err := g.ensurePyramid(p); err != nil {
		return nil, fmt.Errorf("upload pyramid: %w", err)
	}
	w, h := p.Bounds()
	if err := g.ensureTarget(uint32(w), uint32(h)); err != nil { //nolint:gosec // dimensions are positive
		return nil, fmt.Errorf("create target: %w", err)
	}

	uniforms := NewUniforms(model, p, gazeX, gazeY).Bytes()
	ub, err := g.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "foveate_uniforms",
		Size:  uint64(len(uniforms)),
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("create uniform buffer: %w", err)
	}
	defer g.device.DestroyBuffer(ub)
	g.queue.WriteBuffer(ub, 0, uniforms)

	bindGroup, err := g.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "foveate_bind_group",
		Layout: g.bindLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: BindingUniforms, Resource: gputypes.BufferBinding{Buffer: ub.NativeHandle(), Offset: 0, Size: UniformsSize}},
			{Binding: BindingPyramid, Resource: gputypes.TextureViewBinding{TextureView: g.pyramidView.NativeHandle()}},
			{Binding: BindingSampler, Resource: gputypes.SamplerBinding{Sampler: g.sampler.NativeHandle()}},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create bind group: %w", err)
	}
	defer g.device.DestroyBindGroup(bindGroup)

	rgba, err := g.drawAndReadback(bindGroup)
	if err != nil {
		return nil, err
	}

	out, err := image.NewImageBuf(w, h, image.FormatRGB8)
	if err != nil {
		return nil, err
	}
	pix := out.Data()
	stride := alignedRowBytes(g.width)
	for y := range h {
		row := rgba[y*stride:]
		for x := range w {
			pix[(y*w+x)*3] = row[x*4]
			pix[(y*w+x)*3+1] = row[x*4+1]
			pix[(y*w+x)*3+2] = row[x*4+2]
		}
	}
	return out, nil
}

// drawAndReadback encodes the fullscreen draw, copies the target to a
// staging buffer, submits, waits and returns the padded RGBA rows.
func (g *gpuCompositor) drawAndReadback(bindGroup hal.BindGroup) ([]byte, error) {
	encoder, err := g.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: "foveate_encoder",
	})
	if err != nil {
		return nil, fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("foveate"); err != nil {
		return nil, fmt.Errorf("begin encoding: %w", err)
	}

	rp := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: "foveate_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{
			{
				View:       g.targetView,
				LoadOp:     gputypes.LoadOpClear,
				StoreOp:    gputypes.StoreOpStore,
				ClearValue: gputypes.Color{R: 0, G: 0, B: 0, A: 1},
			},
		},
	})
	rp.SetPipeline(g.pipeline)
	rp.SetBindGroup(0, bindGroup, nil)
	rp.Draw(3, 1, 0, 0)
	rp.End()

	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: g.targetTex,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageRenderAttachment,
			NewUsage: gputypes.TextureUsageCopySrc,
		},
	}})

	stride := alignedRowBytes(g.width)
	size := uint64(stride) * uint64(g.height)
	staging, err := g.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "foveate_staging",
		Size:  size,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		encoder.DiscardEncoding()
		return nil, fmt.Errorf("create staging buffer: %w", err)
	}
	defer g.device.DestroyBuffer(staging)

	encoder.CopyTextureToBuffer(g.targetTex, staging, []hal.BufferTextureCopy{{
		BufferLayout: hal.ImageDataLayout{Offset: 0, BytesPerRow: uint32(stride), RowsPerImage: g.height}, //nolint:gosec // stride fits
		TextureBase:  hal.ImageCopyTexture{Texture: g.targetTex, MipLevel: 0},
		Size:         hal.Extent3D{Width: g.width, Height: g.height, DepthOrArrayLayers: 1},
	}})

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return nil, fmt.Errorf("end encoding: %w", err)
	}
	defer g.device.FreeCommandBuffer(cmdBuf)

	fence, err := g.device.CreateFence()
	if err != nil {
		return nil, fmt.Errorf("create fence: %w", err)
	}
	defer g.device.DestroyFence(fence)

	if err := g.queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return nil, fmt.Errorf("submit: %w", err)
	}
	ok, err := g.device.Wait(fence, 1, gpuWaitTimeout)
	if err != nil || !ok {
		return nil, fmt.Errorf("wait for GPU: ok=%v err=%w", ok, err)
	}

	readback := make([]byte, size)
	if err := g.queue.ReadBuffer(staging, 0, readback); err != nil {
		return nil, fmt.Errorf("readback: %w", err)
	}
	return readback, nil
}

// createPipeline builds the shader module, layouts, sampler and pipeline.
func (g *gpuCompositor) createPipeline(prog *Program) error {
	shader, err := g.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "foveate_shader",
		Source: hal.ShaderSource{WGSL: prog.Source},
	})
	if err != nil {
		return fmt.Errorf("compile foveate shader: %w", err)
	}
	g.shader = shader

	bindLayout, err := g.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "foveate_bind_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    BindingUniforms,
				Visibility: gputypes.ShaderStageFragment,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
			},
			{
				Binding:    BindingPyramid,
				Visibility: gputypes.ShaderStageFragment,
				Texture: &gputypes.TextureBindingLayout{
					SampleType:    gputypes.TextureSampleTypeFloat,
					ViewDimension: gputypes.TextureViewDimension2D,
				},
			},
			{
				Binding:    BindingSampler,
				Visibility: gputypes.ShaderStageFragment,
				Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("create bind group layout: %w", err)
	}
	g.bindLayout = bindLayout

	pipeLayout, err := g.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "foveate_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{g.bindLayout},
	})
	if err != nil {
		return fmt.Errorf("create pipeline layout: %w", err)
	}
	g.pipeLayout = pipeLayout

	sampler, err := g.device.CreateSampler(&hal.SamplerDescriptor{
		Label:        "foveate_sampler",
		AddressModeU: gputypes.AddressModeClampToEdge,
		AddressModeV: gputypes.AddressModeClampToEdge,
		AddressModeW: gputypes.AddressModeClampToEdge,
		MagFilter:    gputypes.FilterModeLinear,
		MinFilter:    gputypes.FilterModeLinear,
		MipmapFilter: gputypes.FilterModeLinear,
	})
	if err != nil {
		return fmt.Errorf("create sampler: %w", err)
	}
	g.sampler = sampler

	pipeline, err := g.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  "foveate_pipeline",
		Layout: g.pipeLayout,
		Vertex: hal.VertexState{
			Module:     g.shader,
			EntryPoint: VertexEntryPoint,
		},
		Fragment: &hal.FragmentState{
			Module:     g.shader,
			EntryPoint: FragmentEntryPoint,
			Targets: []gputypes.ColorTargetState{
				{
					Format:    gputypes.TextureFormatRGBA8Unorm,
					WriteMask: gputypes.ColorWriteMaskAll,
				},
			},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleList,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return fmt.Errorf("create render pipeline: %w", err)
	}
	g.pipeline = pipeline
	return nil
}

// ensurePyramid uploads p as a mip-mapped texture unless it is already
// the resident pyramid.
func (g *gpuCompositor) ensurePyramid(p *image.Pyramid) error {
	if g.pyramid == p && g.pyramidTex != nil {
		return nil
	}
	g.destroyPyramid()

	desc := PyramidTextureDescriptor(p)
	tex, err := g.device.CreateTexture(&hal.TextureDescriptor{
		Label:         desc.Label,
		Size:          hal.Extent3D{Width: desc.Width, Height: desc.Height, DepthOrArrayLayers: desc.Depth},
		MipLevelCount: desc.MipLevelCount,
		SampleCount:   desc.SampleCount,
		Dimension:     gputypes.TextureDimension2D,
		Format:        desc.Format,
		Usage:         desc.Usage.gpuUsage(),
	})
	if err != nil {
		return fmt.Errorf("create pyramid texture: %w", err)
	}
	g.pyramidTex = tex

	view, err := g.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         "foveate_pyramid_view",
		Format:        desc.Format,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: desc.MipLevelCount,
	})
	if err != nil {
		g.destroyPyramid()
		return fmt.Errorf("create pyramid view: %w", err)
	}
	g.pyramidView = view

	w, h := p.Bounds()
	for k := range p.NumLevels() {
		mw, mh := MipExtent(w, h, k)
		g.queue.WriteTexture(
			&hal.ImageCopyTexture{Texture: tex, MipLevel: uint32(k)}, //nolint:gosec // level count is small
			MipLevelData(p, k),
			&hal.ImageDataLayout{Offset: 0, BytesPerRow: uint32(mw * 4), RowsPerImage: uint32(mh)}, //nolint:gosec // mip size fits
			&hal.Extent3D{Width: uint32(mw), Height: uint32(mh), DepthOrArrayLayers: 1},            //nolint:gosec // mip size fits
		)
	}
	g.pyramid = p
	return nil
}

// ensureTarget creates the w x h render target unless the size matches.
func (g *gpuCompositor) ensureTarget(w, h uint32) error {
	if g.width == w && g.height == h && g.targetTex != nil {
		return nil
	}
	g.destroyTarget()

	tex, err := g.device.CreateTexture(&hal.TextureDescriptor{
		Label:         "foveate_target",
		Size:          hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Usage:         gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageCopySrc,
	})
	if err != nil {
		return fmt.Errorf("create target texture: %w", err)
	}
	g.targetTex = tex

	view, err := g.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         "foveate_target_view",
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		g.destroyTarget()
		return fmt.Errorf("create target view: %w", err)
	}
	g.targetView = view

	g.width = w
	g.height = h
	return nil
}

// destroy releases every device resource.
func (g *gpuCompositor) destroy() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.destroyTarget()
	g.destroyPyramid()
	g.destroyPipeline()
}

func (g *gpuCompositor) destroyPyramid() {
	if g.pyramidView != nil {
		g.device.DestroyTextureView(g.pyramidView)
		g.pyramidView = nil
	}
	if g.pyramidTex != nil {
		g.device.DestroyTexture(g.pyramidTex)
		g.pyramidTex = nil
	}
	g.pyramid = nil
}

func (g *gpuCompositor) destroyTarget() {
	if g.targetView != nil {
		g.device.DestroyTextureView(g.targetView)
		g.targetView = nil
	}
	if g.targetTex != nil {
		g.device.DestroyTexture(g.targetTex)
		g.targetTex = nil
	}
	g.width = 0
	g.height = 0
}

// destroyPipeline releases pipeline resources in reverse creation order.
func (g *gpuCompositor) destroyPipeline() {
	if g.pipeline != nil {
		g.device.DestroyRenderPipeline(g.pipeline)
		g.pipeline = nil
	}
	if g.sampler != nil {
		g.device.DestroySampler(g.sampler)
		g.sampler = nil
	}
	if g.pipeLayout != nil {
		g.device.DestroyPipelineLayout(g.pipeLayout)
		g.pipeLayout = nil
	}
	if g.bindLayout != nil {
		g.device.DestroyBindGroupLayout(g.bindLayout)
		g.bindLayout = nil
	}
	if g.shader != nil {
		g.device.DestroyShaderModule(g.shader)
		g.shader = nil
	}
}

// alignedRowBytes returns the padded readback stride of a w-pixel RGBA8 row.
func alignedRowBytes(w uint32) int {
	row := int(w) * 4
	return (row + copyRowAlignment - 1) / copyRowAlignment * copyRowAlignment
}
