package lod

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/gogpu/foveate/internal/acuity"
	"github.com/gogpu/foveate/internal/image"
	"github.com/gogpu/foveate/internal/parallel"
)

// Input is everything a field depends on.
type Input struct {
	Width  int
	Height int

	// GazeX, GazeY is the fixation in image space: origin at the top-left
	// corner, y growing downwards. May lie outside the image.
	GazeX float64
	GazeY float64

	// Levels is the pyramid level count; the field is clamped to [0, Levels-1].
	Levels int

	Model         acuity.Model
	Normalization Normalization
}

type cutoffModel interface {
	CutoffFrequency(eccPx float64) float64
}

// Validate checks the input without computing anything.
func (in Input) Validate() error {
	if in.Width <= 0 || in.Height <= 0 {
		return fmt.Errorf("lod: %dx%d: %w", in.Width, in.Height, image.ErrInvalidDimensions)
	}
	if in.Levels < 1 {
		return fmt.Errorf("%w: %d pyramid levels", acuity.ErrInvalidParameter, in.Levels)
	}
	if in.Model == nil {
		return fmt.Errorf("%w: nil acuity model", acuity.ErrInvalidParameter)
	}
	if math.IsNaN(in.GazeX) || math.IsNaN(in.GazeY) || math.IsInf(in.GazeX, 0) || math.IsInf(in.GazeY, 0) {
		return fmt.Errorf("%w: fixation (%v, %v)", acuity.ErrInvalidParameter, in.GazeX, in.GazeY)
	}
	switch in.Normalization {
	case Absolute:
	case Relative:
		if _, ok := in.Model.(cutoffModel); !ok {
			return fmt.Errorf("%w: relative normalization needs the cortical model, got %v",
				acuity.ErrInvalidParameter, in.Model.Kind())
		}
	default:
		return fmt.Errorf("%w: %v", acuity.ErrInvalidParameter, in.Normalization)
	}
	return nil
}

// Eccentricity returns the pixel distance from the centre of image pixel
// (x, y) to the fixation (gazeX, gazeY) given in image space.
//
// This is the only place the vertical axis is flipped: the fixation moves
// to render space (origin bottom-left) as (gazeX, height-gazeY) and the
// pixel centre as (x+0.5, height-y-0.5).
func Eccentricity(x, y, height int, gazeX, gazeY float64) float64 {
	h := float64(height)
	ry := h - gazeY
	px := float64(x) + 0.5
	py := h - float64(y) - 0.5
	return math.Hypot(px-gazeX, py-ry)
}

// Evaluate returns the absolute-normalized level of image pixel (x, y).
// Compute and per-pixel analytic evaluation both go through here, so the
// two agree bit for bit.
func Evaluate(m acuity.Model, levels, x, y, height int, gazeX, gazeY float64) float32 {
	return float32(Clamp(m.LOD(Eccentricity(x, y, height, gazeX, gazeY)), levels))
}

// Compute evaluates in.Model over every pixel. Rows are spread over pool in
// bands; a nil pool computes on the calling goroutine. Each pixel depends
// only on its coordinates, so the result does not depend on the pool.
func Compute(in Input, pool *parallel.WorkerPool) (*Field, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	w, h := in.Width, in.Height
	data := make([]float32, w*h)

	if in.Normalization == Relative {
		cm := in.Model.(cutoffModel)
		raw := make([]float64, w*h)
		parallel.Rows(pool, h, func(y0, y1 int) {
			for y := y0; y < y1; y++ {
				row := raw[y*w : (y+1)*w]
				for x := range row {
					row[x] = cm.CutoffFrequency(Eccentricity(x, y, h, in.GazeX, in.GazeY))
				}
			}
		})
		relative(raw, floats.Min(raw), floats.Max(raw), in.Levels, data)
	} else {
		parallel.Rows(pool, h, func(y0, y1 int) {
			for y := y0; y < y1; y++ {
				row := data[y*w : (y+1)*w]
				for x := range row {
					row[x] = Evaluate(in.Model, in.Levels, x, y, h, in.GazeX, in.GazeY)
				}
			}
		})
	}

	return &Field{width: w, height: h, levels: in.Levels, data: data}, nil
}
