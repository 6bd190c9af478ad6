package filter

import (
	"sync"

	"github.com/gogpu/foveate/internal/parallel"
)

// Blur applies a separable Gaussian blur of the given sigma in place.
//
// data holds width*height pixels of channels interleaved float32 values,
// rows top to bottom. Samples outside the buffer repeat the edge pixel,
// so a constant buffer stays constant. A sigma <= 0 leaves data untouched.
func Blur(data []float32, width, height, channels int, sigma float64) {
	BlurParallel(data, width, height, channels, sigma, nil)
}

// BlurParallel is Blur with both passes split into row bands on pool.
// The result is identical to Blur for any pool, including nil.
func BlurParallel(data []float32, width, height, channels int, sigma float64, pool *parallel.WorkerPool) {
	if sigma <= 0 || width <= 0 || height <= 0 || channels <= 0 {
		return
	}
	kernel := CachedGaussianKernel(sigma)

	temp := getTempBuffer(width * height * channels)
	defer putTempBuffer(temp)

	parallel.Rows(pool, height, func(y0, y1 int) {
		blurHorizontal(data, temp, width, channels, kernel, y0, y1)
	})
	parallel.Rows(pool, height, func(y0, y1 int) {
		blurVertical(temp, data, width, height, channels, kernel, y0, y1)
	})
}

// blurHorizontal convolves rows [y0, y1) of src with kernel into dst.
func blurHorizontal(src, dst []float32, width, channels int, kernel []float32, y0, y1 int) {
	half := len(kernel) / 2
	for y := y0; y < y1; y++ {
		row := y * width
		for x := 0; x < width; x++ {
			out := (row + x) * channels
			for c := 0; c < channels; c++ {
				dst[out+c] = 0
			}
			for k, weight := range kernel {
				kx := clampInt(x+k-half, 0, width-1)
				in := (row + kx) * channels
				for c := 0; c < channels; c++ {
					dst[out+c] += src[in+c] * weight
				}
			}
		}
	}
}

// blurVertical convolves the columns of src with kernel into rows
// [y0, y1) of dst.
func blurVertical(src, dst []float32, width, height, channels int, kernel []float32, y0, y1 int) {
	half := len(kernel) / 2
	for y := y0; y < y1; y++ {
		for x := 0; x < width; x++ {
			out := (y*width + x) * channels
			for c := 0; c < channels; c++ {
				dst[out+c] = 0
			}
			for k, weight := range kernel {
				ky := clampInt(y+k-half, 0, height-1)
				in := (ky*width + x) * channels
				for c := 0; c < channels; c++ {
					dst[out+c] += src[in+c] * weight
				}
			}
		}
	}
}

// floatBuffer wraps a slice for sync.Pool to avoid allocation warnings.
type floatBuffer struct {
	data []float32
}

var tempBufferPool = sync.Pool{
	New: func() interface{} {
		return &floatBuffer{data: make([]float32, 512*512*3)}
	},
}

// getTempBuffer retrieves a scratch buffer of exactly size elements.
// Contents are undefined; the blur passes overwrite every element.
func getTempBuffer(size int) []float32 {
	wrapper := tempBufferPool.Get().(*floatBuffer)
	if len(wrapper.data) < size {
		tempBufferPool.Put(wrapper)
		return make([]float32, size)
	}
	return wrapper.data[:size]
}

// putTempBuffer returns a scratch buffer to the pool.
func putTempBuffer(buf []float32) {
	if cap(buf) <= 16*1024*1024 { // 64MB max
		tempBufferPool.Put(&floatBuffer{data: buf[:cap(buf)]})
	}
}

// clampInt clamps an integer to [minVal, maxVal].
func clampInt(v, minVal, maxVal int) int {
	if v < minVal {
		return minVal
	}
	if v > maxVal {
		return maxVal
	}
	return v
}
