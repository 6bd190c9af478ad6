package image

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/webp" // register the webp decoder
)

// I/O errors.
var (
	// ErrUnsupportedFormat is returned when the file extension has no encoder.
	ErrUnsupportedFormat = errors.New("image: unsupported format")
)

// supportedExts lists the extensions DecodeFile and EncodeFile handle.
var supportedExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".bmp":  true,
	".tif":  true,
	".tiff": true,
	".webp": true,
}

// IsSupportedFile reports whether the file name has an image extension the
// package can decode.
func IsSupportedFile(name string) bool {
	return supportedExts[strings.ToLower(filepath.Ext(name))]
}

// Decode decodes an image from r, auto-detecting the format, into an RGB8 buffer.
func Decode(r io.Reader) (*ImageBuf, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("image: decode: %w", err)
	}
	return FromStdImage(img)
}

// DecodeFile decodes the image file at path into an RGB8 buffer.
func DecodeFile(path string) (*ImageBuf, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("image: open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return Decode(f)
}

// EncodeFile writes b to path, choosing the encoder from the extension.
// JPEG output uses the given quality (1-100).
func (b *ImageBuf) EncodeFile(path string, quality int) error {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".webp" || !supportedExts[ext] {
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}

	f, err := os.Create(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("image: create file: %w", err)
	}

	if err := b.Encode(f, ext, quality); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// Encode writes b to w in the format named by ext (".png", ".jpg", ...).
func (b *ImageBuf) Encode(w io.Writer, ext string, quality int) error {
	img := b.ToStdImage()

	var err error
	switch strings.ToLower(ext) {
	case ".png":
		err = png.Encode(w, img)
	case ".jpg", ".jpeg":
		quality = max(1, min(quality, 100))
		err = jpeg.Encode(w, img, &jpeg.Options{Quality: quality})
	case ".gif":
		err = gif.Encode(w, img, nil)
	case ".bmp":
		err = bmp.Encode(w, img)
	case ".tif", ".tiff":
		err = tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return fmt.Errorf("image: encode %s: %w", ext, err)
	}
	return nil
}

// FromStdImage converts a standard library image to an RGB8 buffer.
// Alpha is dropped; partially transparent pixels keep their straight color.
func FromStdImage(img image.Image) (*ImageBuf, error) {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	buf, err := NewImageBuf(width, height, FormatRGB8)
	if err != nil {
		return nil, err
	}
	out := buf.Data()

	// Fast path for the decoders' common outputs.
	switch src := img.(type) {
	case *image.NRGBA:
		for y := range height {
			row := src.Pix[y*src.Stride:]
			for x := range width {
				o := (y*width + x) * 3
				copy(out[o:o+3], row[x*4:x*4+3])
			}
		}
		return buf, nil
	case *image.RGBA:
		if src.Opaque() {
			for y := range height {
				row := src.Pix[y*src.Stride:]
				for x := range width {
					o := (y*width + x) * 3
					copy(out[o:o+3], row[x*4:x*4+3])
				}
			}
			return buf, nil
		}
	}

	for y := range height {
		for x := range width {
			c := color.NRGBAModel.Convert(img.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.NRGBA)
			o := (y*width + x) * 3
			out[o] = c.R
			out[o+1] = c.G
			out[o+2] = c.B
		}
	}
	return buf, nil
}

// ToStdImage converts the buffer to a standard library image:
// *image.Gray for Gray8, *image.NRGBA otherwise.
func (b *ImageBuf) ToStdImage() image.Image {
	rect := image.Rect(0, 0, b.width, b.height)

	switch b.format {
	case FormatGray8:
		gray := image.NewGray(rect)
		copy(gray.Pix, b.data)
		return gray

	case FormatRGBA8:
		nrgba := image.NewNRGBA(rect)
		copy(nrgba.Pix, b.data)
		return nrgba

	default:
		nrgba := image.NewNRGBA(rect)
		for y := range b.height {
			row := b.RowBytes(y)
			dst := nrgba.Pix[y*nrgba.Stride:]
			for x := range b.width {
				dst[x*4] = row[x*3]
				dst[x*4+1] = row[x*3+1]
				dst[x*4+2] = row[x*3+2]
				dst[x*4+3] = 255
			}
		}
		return nrgba
	}
}
