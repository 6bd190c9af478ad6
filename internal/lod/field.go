// Package lod computes the per-pixel level-of-detail field that drives
// foveated compositing.
package lod

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/gogpu/foveate/internal/image"
)

// Field is a single-channel float image in image row order (top row first).
// Every value lies in [0, Levels-1]. A Field is immutable once built.
type Field struct {
	width  int
	height int
	levels int
	data   []float32
}

// Stats summarises a field.
type Stats struct {
	Min  float64
	Max  float64
	Mean float64
}

// NewField wraps data as a width x height field for a pyramid of the given
// number of levels. Values are taken as is; they are not clamped.
func NewField(width, height, levels int, data []float32) (*Field, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("lod: field %dx%d: %w", width, height, image.ErrInvalidDimensions)
	}
	if len(data) != width*height {
		return nil, fmt.Errorf("lod: field data has %d values, want %d: %w",
			len(data), width*height, image.ErrDataTooSmall)
	}
	return &Field{width: width, height: height, levels: levels, data: data}, nil
}

// Width returns the field width in pixels.
func (f *Field) Width() int { return f.width }

// Height returns the field height in pixels.
func (f *Field) Height() int { return f.height }

// Levels returns the pyramid level count the field was computed for.
func (f *Field) Levels() int { return f.levels }

// At returns the level at image pixel (x, y). Panics if out of range.
func (f *Field) At(x, y int) float32 {
	return f.data[y*f.width+x]
}

// Data returns the raw values. The slice must not be modified.
func (f *Field) Data() []float32 {
	return f.data
}

// MaxLOD returns the largest value in the field.
func (f *Field) MaxLOD() float32 {
	m := f.data[0]
	for _, v := range f.data[1:] {
		m = max(m, v)
	}
	return m
}

// Stats returns the minimum, maximum and mean level.
func (f *Field) Stats() Stats {
	vals := make([]float64, len(f.data))
	for i, v := range f.data {
		vals[i] = float64(v)
	}
	return Stats{
		Min:  floats.Min(vals),
		Max:  floats.Max(vals),
		Mean: stat.Mean(vals, nil),
	}
}

// ToGray renders the field as a grayscale image, black for level 0 and
// white for level Levels-1.
func (f *Field) ToGray() *image.ImageBuf {
	out, _ := image.NewImageBuf(f.width, f.height, image.FormatGray8)
	if f.levels <= 1 {
		return out
	}
	scale := 255 / float64(f.levels-1)
	pix := out.Data()
	for i, v := range f.data {
		pix[i] = uint8(min(255, max(0, float64(v)*scale+0.5)))
	}
	return out
}

// Equal reports whether two fields have identical geometry and values.
func (f *Field) Equal(o *Field) bool {
	if f == nil || o == nil {
		return f == o
	}
	if f.width != o.width || f.height != o.height || f.levels != o.levels {
		return false
	}
	for i := range f.data {
		if f.data[i] != o.data[i] {
			return false
		}
	}
	return true
}
