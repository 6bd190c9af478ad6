// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/gogpu/foveate/internal/acuity"
	"github.com/gogpu/foveate/internal/image"
	"github.com/gogpu/foveate/internal/lod"
	"github.com/gogpu/foveate/internal/parallel"
)

var (
	// ErrPyramidUnderflow is returned when a requested level does not exist
	// in the pyramid. It means the field and the pyramid disagree on the
	// level count, which is a programming error rather than a bad fixation.
	ErrPyramidUnderflow = errors.New("render: LOD exceeds pyramid levels")

	// ErrDimensionMismatch is returned when the field and pyramid sizes differ.
	ErrDimensionMismatch = errors.New("render: field and pyramid dimensions differ")

	// ErrNoGPU is returned by CompositeGPU on a context without a HAL device.
	ErrNoGPU = errors.New("render: no GPU device")
)

// Composite samples p trilinearly at every pixel using the levels in f.
//
// The field must match the pyramid size and every value must lie in
// [0, NumLevels-1]. Values outside that range fail the whole composite with
// ErrPyramidUnderflow. Nothing is clamped here.
func (c *Context) Composite(p *image.Pyramid, f *lod.Field) (*image.ImageBuf, error) {
	if err := checkPyramid(p); err != nil {
		return nil, err
	}
	if f == nil {
		return nil, fmt.Errorf("render: nil LOD field: %w", ErrDimensionMismatch)
	}
	w, h := p.Bounds()
	if f.Width() != w || f.Height() != h {
		return nil, fmt.Errorf("%w: field %dx%d, pyramid %dx%d",
			ErrDimensionMismatch, f.Width(), f.Height(), w, h)
	}

	top := p.NumLevels() - 1
	if f.Levels() > p.NumLevels() {
		return nil, fmt.Errorf("%w: field built for %d levels, pyramid has %d",
			ErrPyramidUnderflow, f.Levels(), p.NumLevels())
	}
	for i, v := range f.Data() {
		if !(v >= 0) || math.Ceil(float64(v)) > float64(top) {
			return nil, fmt.Errorf("%w: LOD %v at pixel (%d, %d), max level %d",
				ErrPyramidUnderflow, v, i%w, i/w, top)
		}
	}

	return c.composite(p, "field", func(x, y int) float32 {
		return f.At(x, y)
	}), nil
}

// CompositeAnalytic evaluates model at every pixel while sampling, the way
// the fragment shader does, instead of reading a precomputed field.
// The fixation is in image space. The output matches Composite over an
// absolute-normalized field of the same inputs byte for byte.
func (c *Context) CompositeAnalytic(p *image.Pyramid, model acuity.Model, gazeX, gazeY float64) (*image.ImageBuf, error) {
	if err := checkPyramid(p); err != nil {
		return nil, err
	}
	if model == nil {
		return nil, fmt.Errorf("%w: nil acuity model", acuity.ErrInvalidParameter)
	}
	if math.IsNaN(gazeX) || math.IsNaN(gazeY) || math.IsInf(gazeX, 0) || math.IsInf(gazeY, 0) {
		return nil, fmt.Errorf("%w: fixation (%v, %v)", acuity.ErrInvalidParameter, gazeX, gazeY)
	}

	levels := p.NumLevels()
	_, h := p.Bounds()
	return c.composite(p, "analytic", func(x, y int) float32 {
		return lod.Evaluate(model, levels, x, y, h, gazeX, gazeY)
	}), nil
}

// CompositeGPU draws the foveation shader for model at (gazeX, gazeY) on
// the host device and reads the frame back. Mips use the texture rounding
// of MipExtent and the GPU's filtering, so pixels can differ slightly from
// CompositeAnalytic. Returns ErrNoGPU unless HasGPU.
func (c *Context) CompositeGPU(p *image.Pyramid, model acuity.Model, gazeX, gazeY float64) (*image.ImageBuf, error) {
	if c.gpu == nil {
		return nil, ErrNoGPU
	}
	if err := checkPyramid(p); err != nil {
		return nil, err
	}
	if model == nil {
		return nil, fmt.Errorf("%w: nil acuity model", acuity.ErrInvalidParameter)
	}
	if math.IsNaN(gazeX) || math.IsNaN(gazeY) || math.IsInf(gazeX, 0) || math.IsInf(gazeY, 0) {
		return nil, fmt.Errorf("%w: fixation (%v, %v)", acuity.ErrInvalidParameter, gazeX, gazeY)
	}
	prog, err := c.Program()
	if err != nil {
		return nil, err
	}

	start := time.Now()
	out, err := c.gpu.composite(prog, p, model, gazeX, gazeY)
	if err != nil {
		return nil, fmt.Errorf("render: gpu composite: %w", err)
	}
	w, h := p.Bounds()
	c.Logger().Debug("render: composite",
		"mode", "gpu", "width", w, "height", h, "levels", p.NumLevels(),
		"elapsed", time.Since(start))
	return out, nil
}

func checkPyramid(p *image.Pyramid) error {
	if p.NumLevels() == 0 {
		return fmt.Errorf("render: empty pyramid: %w", image.ErrInvalidDimensions)
	}
	return nil
}

// composite fills a fresh RGB buffer band by band. levelAt must return a
// value in [0, NumLevels-1].
func (c *Context) composite(p *image.Pyramid, mode string, levelAt func(x, y int) float32) *image.ImageBuf {
	start := time.Now()
	w, h := p.Bounds()
	levels := p.Levels()

	out, _ := image.NewImageBuf(w, h, image.FormatRGB8)
	pix := out.Data()

	parallel.Rows(c.pool, h, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			row := pix[y*w*3 : (y+1)*w*3]
			for x := range w {
				r, g, b := sampleTrilinear(levels, x, y, levelAt(x, y)).Bytes()
				row[x*3] = r
				row[x*3+1] = g
				row[x*3+2] = b
			}
		}
	})

	c.Logger().Debug("render: composite",
		"mode", mode, "width", w, "height", h, "levels", len(levels),
		"elapsed", time.Since(start))
	return out
}

// sampleTrilinear blends bilinear samples of the two levels enclosing lod.
func sampleTrilinear(levels []*image.ImageBuf, x, y int, level float32) image.Texel {
	l := float64(level)
	lo := int(math.Floor(l))
	frac := l - float64(lo)

	a := sampleLevel(levels[lo], lo, x, y)
	if frac == 0 {
		return a
	}
	return a.Lerp(sampleLevel(levels[lo+1], lo+1, x, y), frac)
}

// sampleLevel samples level k at the footprint of full-resolution pixel
// (x, y). The pixel centre (x+0.5, y+0.5) scales by 2^-k; subtracting 0.5
// returns to texel-centre coordinates.
func sampleLevel(img *image.ImageBuf, k, x, y int) image.Texel {
	scale := float64(int(1) << k)
	fx := (float64(x)+0.5)/scale - 0.5
	fy := (float64(y)+0.5)/scale - 0.5
	return image.SampleBilinear(img, fx, fy)
}
