package image

import "math"

// Texel is an unrounded RGB sample in 0-255 range.
type Texel struct {
	R, G, B float64
}

// Lerp blends t towards o by frac.
func (t Texel) Lerp(o Texel, frac float64) Texel {
	return Texel{
		R: lerp(t.R, o.R, frac),
		G: lerp(t.G, o.G, frac),
		B: lerp(t.B, o.B, frac),
	}
}

// Bytes rounds the texel to the nearest 8-bit value per channel.
func (t Texel) Bytes() (r, g, b uint8) {
	return toByte(t.R), toByte(t.G), toByte(t.B)
}

// SampleBilinear interpolates the 4 texels surrounding (fx, fy).
func SampleBilinear(img *ImageBuf, fx, fy float64) Texel {
	w, h := img.Bounds()

	x0 := int(math.Floor(fx))
	y0 := int(math.Floor(fy))
	tx := fx - float64(x0)
	ty := fy - float64(y0)

	x1 := clamp(x0+1, 0, w-1)
	y1 := clamp(y0+1, 0, h-1)
	x0 = clamp(x0, 0, w-1)
	y0 = clamp(y0, 0, h-1)

	c00 := texelAt(img, x0, y0)
	c10 := texelAt(img, x1, y0)
	c01 := texelAt(img, x0, y1)
	c11 := texelAt(img, x1, y1)

	return Texel{
		R: lerp2D(c00.R, c10.R, c01.R, c11.R, tx, ty),
		G: lerp2D(c00.G, c10.G, c01.G, c11.G, tx, ty),
		B: lerp2D(c00.B, c10.B, c01.B, c11.B, tx, ty),
	}
}

// texelAt reads an in-bounds texel without interpolation.
func texelAt(img *ImageBuf, x, y int) Texel {
	r, g, b := img.GetRGB(x, y)
	return Texel{R: float64(r), G: float64(g), B: float64(b)}
}

// clamp clamps an integer value to [minVal, maxVal].
//
//nolint:unparam // minVal is always 0 currently
func clamp(val, minVal, maxVal int) int {
	if val < minVal {
		return minVal
	}
	if val > maxVal {
		return maxVal
	}
	return val
}

// toByte rounds v to the nearest integer and clamps it to [0, 255].
func toByte(v float64) uint8 {
	v = math.Round(v)
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v)
}

// lerp performs linear interpolation between a and b.
// Equal endpoints return a exactly, so flat regions never drift.
func lerp(a, b, t float64) float64 {
	if a == b {
		return a
	}
	return a + (b-a)*t
}

// lerp2D performs bilinear interpolation on a 2x2 grid.
func lerp2D(v00, v10, v01, v11, tx, ty float64) float64 {
	v0 := lerp(v00, v10, tx)
	v1 := lerp(v01, v11, tx)
	return lerp(v0, v1, ty)
}
