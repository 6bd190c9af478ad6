package acuity

import (
	"fmt"
	"math"
)

// Default viewing geometry.
const (
	DefaultViewDist = 0.6
	DefaultPix2Deg  = 32.0
)

// ViewingParameters describe the physical display and viewer.
type ViewingParameters struct {
	// DotPitch is the physical size of one pixel in meters.
	// Zero means derive it from Pix2Deg, ViewDist and the image width.
	DotPitch float64 `yaml:"dotPitch"`

	// ViewDist is the eye to screen distance in meters.
	ViewDist float64 `yaml:"distance"`

	// Pix2Deg is the number of pixels per degree of visual angle.
	Pix2Deg float64 `yaml:"pix2deg"`
}

// DefaultViewingParameters returns 0.6 m and 32 px/deg with the dot pitch
// left to be derived.
func DefaultViewingParameters() ViewingParameters {
	return ViewingParameters{
		ViewDist: DefaultViewDist,
		Pix2Deg:  DefaultPix2Deg,
	}
}

// Validate rejects non-positive distance or pixel density and a negative
// dot pitch. A zero dot pitch is allowed and means "derive".
func (vp ViewingParameters) Validate() error {
	switch {
	case !(vp.ViewDist > 0) || math.IsInf(vp.ViewDist, 1):
		return fmt.Errorf("%w: view distance %v", ErrInvalidParameter, vp.ViewDist)
	case !(vp.Pix2Deg > 0) || math.IsInf(vp.Pix2Deg, 1):
		return fmt.Errorf("%w: pix2deg %v", ErrInvalidParameter, vp.Pix2Deg)
	case !(vp.DotPitch >= 0) || math.IsInf(vp.DotPitch, 1):
		return fmt.Errorf("%w: dot pitch %v", ErrInvalidParameter, vp.DotPitch)
	}
	return nil
}

// DotPitchFor returns the pixel size in meters for an image of imgWidth
// pixels spanning imgWidth/pix2deg degrees at viewDist meters.
// It returns NaN when the image spans 180 degrees or more.
func DotPitchFor(pix2deg, viewDist float64, imgWidth int) float64 {
	w := float64(imgWidth)
	deg := w / pix2deg
	if !(deg < 180) {
		return math.NaN()
	}
	widthRad := deg * math.Pi / 180
	return 2 * viewDist * math.Tan(widthRad/2) / w
}

// Resolve returns vp with a zero DotPitch derived for imgWidth.
// An explicit DotPitch is kept.
func (vp ViewingParameters) Resolve(imgWidth int) ViewingParameters {
	if vp.DotPitch == 0 && imgWidth > 0 {
		vp.DotPitch = DotPitchFor(vp.Pix2Deg, vp.ViewDist, imgWidth)
	}
	return vp
}

// ResolveWidth is Resolve that fails with ErrInvalidParameter when a
// derived dot pitch is impossible: the image would span 180 degrees or more.
func (vp ViewingParameters) ResolveWidth(imgWidth int) (ViewingParameters, error) {
	r := vp.Resolve(imgWidth)
	if math.IsNaN(r.DotPitch) {
		return vp, fmt.Errorf("%w: %d px at %v px/deg spans %v degrees, need less than 180",
			ErrInvalidParameter, imgWidth, vp.Pix2Deg, float64(imgWidth)/vp.Pix2Deg)
	}
	return r, nil
}
