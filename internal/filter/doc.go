// Package filter provides the lowpass filtering applied before each pyramid
// reduction.
//
// The filters operate on interleaved float32 pixel buffers so the pyramid
// builder can filter and reduce without intermediate quantization:
//   - Gaussian kernel generation with a shared cache
//   - Separable Gaussian blur with clamp-to-edge extension
package filter
