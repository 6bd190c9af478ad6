package image

import (
	"math/bits"

	"github.com/gogpu/foveate/internal/filter"
	"github.com/gogpu/foveate/internal/parallel"
)

// Pyramid holds progressively half-resolution, lowpass-filtered copies of
// an RGB image.
//
// Level 0 is the source image itself. Level k has dimensions
// ceil(W/2^k) x ceil(H/2^k), and the chain has 1 + floor(log2(max(W, H)))
// levels, so the coarsest level is 1 or 2 pixels along the larger axis.
// A Pyramid is read-only once built.
type Pyramid struct {
	levels []*ImageBuf
	pool   *Pool
}

// PyramidOptions configures BuildPyramid.
type PyramidOptions struct {
	// Sigma is the standard deviation, in source-level pixels, of the
	// Gaussian applied before each 2x2 reduction. Zero gives a pure box
	// filter, matching GPU mipmap generation.
	Sigma float64

	// Pool supplies level buffers. Nil uses a package-level pool.
	Pool *Pool

	// Workers runs each reduction in row bands. Nil reduces on the
	// calling goroutine. Levels are identical either way.
	Workers *parallel.WorkerPool
}

// NumLevelsFor returns 1 + floor(log2(max(width, height))).
// Computed from the bit length so powers of two are exact.
func NumLevelsFor(width, height int) int {
	n := max(width, height)
	if n <= 0 {
		return 0
	}
	return bits.Len(uint(n))
}

// LevelSize returns the dimensions of pyramid level k for a width x height source.
func LevelSize(width, height, level int) (int, int) {
	div := 1 << level
	return (width + div - 1) / div, (height + div - 1) / div
}

// BuildPyramid builds the full level chain for src.
//
// src must be a non-empty RGB8 buffer; it becomes level 0 without a copy.
// Returns ErrInvalidDimensions for a nil or empty source.
func BuildPyramid(src *ImageBuf, opts PyramidOptions) (*Pyramid, error) {
	if src == nil || src.IsEmpty() {
		return nil, ErrInvalidDimensions
	}
	if src.Format() != FormatRGB8 {
		return nil, ErrInvalidFormat
	}

	pool := opts.Pool
	if pool == nil {
		pool = defaultPool
	}

	numLevels := NumLevelsFor(src.Width(), src.Height())
	p := &Pyramid{
		levels: make([]*ImageBuf, numLevels),
		pool:   pool,
	}
	p.levels[0] = src

	for k := 1; k < numLevels; k++ {
		p.levels[k] = reduce(p.levels[k-1], opts.Sigma, pool, opts.Workers)
	}

	return p, nil
}

// reduce lowpass-filters src and halves each dimension, rounding up.
// Each output pixel averages the in-bounds pixels of its 2x2 source block,
// so odd trailing rows and columns are averaged over 2 or 1 pixels instead
// of being padded.
func reduce(src *ImageBuf, sigma float64, pool *Pool, workers *parallel.WorkerPool) *ImageBuf {
	sw, sh := src.Bounds()
	dw, dh := (sw+1)/2, (sh+1)/2

	data := src.Data()
	work := make([]float32, len(data))
	for i, v := range data {
		work[i] = float32(v)
	}
	filter.BlurParallel(work, sw, sh, 3, sigma, workers)

	dst := pool.Get(dw, dh, FormatRGB8)
	out := dst.Data()

	parallel.Rows(workers, dh, func(y0, y1 int) {
		average2x2(work, out, sw, sh, dw, y0, y1)
	})
	return dst
}

// average2x2 writes output rows [y0, y1) of the edge-adjusted 2x2 average
// of the float source work.
func average2x2(work []float32, out []byte, sw, sh, dw, y0, y1 int) {
	for dy := y0; dy < y1; dy++ {
		sy0 := dy * 2
		sy1 := min(sy0+1, sh-1)
		for dx := 0; dx < dw; dx++ {
			sx0 := dx * 2
			sx1 := min(sx0+1, sw-1)

			var r, g, b float32
			n := float32(0)
			for sy := sy0; sy <= sy1; sy++ {
				for sx := sx0; sx <= sx1; sx++ {
					i := (sy*sw + sx) * 3
					r += work[i]
					g += work[i+1]
					b += work[i+2]
					n++
				}
			}

			o := (dy*dw + dx) * 3
			out[o] = toByte(float64(r / n))
			out[o+1] = toByte(float64(g / n))
			out[o+2] = toByte(float64(b / n))
		}
	}
}

// Level returns the buffer at level k, or nil if k is out of range.
func (p *Pyramid) Level(k int) *ImageBuf {
	if p == nil || k < 0 || k >= len(p.levels) {
		return nil
	}
	return p.levels[k]
}

// Levels returns the level buffers, finest first. The slice must not be modified.
func (p *Pyramid) Levels() []*ImageBuf {
	if p == nil {
		return nil
	}
	return p.levels
}

// NumLevels returns the number of levels, or 0 for a nil pyramid.
func (p *Pyramid) NumLevels() int {
	if p == nil {
		return 0
	}
	return len(p.levels)
}

// Bounds returns the level 0 dimensions.
func (p *Pyramid) Bounds() (int, int) {
	if p == nil || len(p.levels) == 0 {
		return 0, 0
	}
	return p.levels[0].Bounds()
}

// ByteSize returns the total storage of all levels, about 4/3 of level 0.
func (p *Pyramid) ByteSize() int {
	total := 0
	for _, l := range p.Levels() {
		if l != nil {
			total += l.ByteSize()
		}
	}
	return total
}

// Release returns levels 1 and above to the pool. Level 0 belongs to the
// caller and is left alone. The pyramid must not be used afterwards.
func (p *Pyramid) Release() {
	if p == nil {
		return
	}
	for k := 1; k < len(p.levels); k++ {
		if p.levels[k] != nil {
			p.pool.Put(p.levels[k])
			p.levels[k] = nil
		}
	}
}
