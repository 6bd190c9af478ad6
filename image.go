package foveate

import (
	"fmt"
	stdimage "image"

	"github.com/gogpu/foveate/internal/image"
)

// Image is a decoded RGB picture: Width*Height pixels, 3 interleaved 8-bit
// channels per pixel, rows top to bottom with no padding.
type Image struct {
	Width  int
	Height int
	Pix    []uint8
}

// NewImage allocates a black width x height image.
func NewImage(width, height int) (*Image, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("foveate: image %dx%d: %w", width, height, ErrInvalidImage)
	}
	return &Image{Width: width, Height: height, Pix: make([]uint8, width*height*3)}, nil
}

// ImageFromStd converts a standard library image. Alpha is dropped.
func ImageFromStd(img stdimage.Image) (*Image, error) {
	buf, err := image.FromStdImage(img)
	if err != nil {
		return nil, fmt.Errorf("foveate: %w", err)
	}
	return imageFromBuf(buf), nil
}

// LoadFile decodes the image file at path. PNG, JPEG, GIF, BMP, TIFF and
// WebP are recognized by content.
func LoadFile(path string) (*Image, error) {
	buf, err := image.DecodeFile(path)
	if err != nil {
		return nil, fmt.Errorf("foveate: %w", err)
	}
	return imageFromBuf(buf), nil
}

// SaveFile encodes the image to path in the format named by the extension.
// quality applies to JPEG output.
func (m *Image) SaveFile(path string, quality int) error {
	buf, err := m.toBuf()
	if err != nil {
		return err
	}
	if err := buf.EncodeFile(path, quality); err != nil {
		return fmt.Errorf("foveate: %w", err)
	}
	return nil
}

// IsSupportedFile reports whether name has an extension LoadFile accepts.
func IsSupportedFile(name string) bool {
	return image.IsSupportedFile(name)
}

// Validate returns ErrInvalidImage for non-positive dimensions or a short
// pixel buffer.
func (m *Image) Validate() error {
	if m == nil || m.Width <= 0 || m.Height <= 0 {
		return fmt.Errorf("foveate: invalid image size: %w", ErrInvalidImage)
	}
	if len(m.Pix) < m.Width*m.Height*3 {
		return fmt.Errorf("foveate: %dx%d image has %d bytes: %w",
			m.Width, m.Height, len(m.Pix), ErrInvalidImage)
	}
	return nil
}

// RGBAt returns the color of pixel (x, y). Panics if out of range.
func (m *Image) RGBAt(x, y int) (r, g, b uint8) {
	i := (y*m.Width + x) * 3
	return m.Pix[i], m.Pix[i+1], m.Pix[i+2]
}

// ToStd converts the image to an opaque *image.RGBA.
func (m *Image) ToStd() *stdimage.RGBA {
	out := stdimage.NewRGBA(stdimage.Rect(0, 0, m.Width, m.Height))
	for i, j := 0, 0; i+2 < len(m.Pix) && j < len(out.Pix); i, j = i+3, j+4 {
		out.Pix[j] = m.Pix[i]
		out.Pix[j+1] = m.Pix[i+1]
		out.Pix[j+2] = m.Pix[i+2]
		out.Pix[j+3] = 0xff
	}
	return out
}

// toBuf copies the image into an internal RGB8 buffer.
func (m *Image) toBuf() (*image.ImageBuf, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	n := m.Width * m.Height * 3
	pix := make([]byte, n)
	copy(pix, m.Pix[:n])
	return image.FromRaw(pix, m.Width, m.Height, image.FormatRGB8)
}

// imageFromBuf takes ownership of an RGB8 buffer's pixels.
func imageFromBuf(buf *image.ImageBuf) *Image {
	return &Image{Width: buf.Width(), Height: buf.Height(), Pix: buf.Data()}
}
