package foveate

import (
	"github.com/gogpu/foveate/internal/acuity"
	"github.com/gogpu/foveate/internal/lod"
)

// Model selects the acuity model.
type Model = acuity.Kind

// Acuity models.
const (
	// ModelRadial halves resolution for every doubling of distance beyond
	// the gaze radius.
	ModelRadial = acuity.KindRadial

	// ModelCortical follows the Geisler & Perry cortical magnification formula.
	ModelCortical = acuity.KindCortical
)

// Normalization selects how model output becomes a pyramid level.
type Normalization = lod.Normalization

// Normalization modes.
const (
	// NormalizationAbsolute clamps the model level into the pyramid range.
	NormalizationAbsolute = lod.Absolute

	// NormalizationRelative min-max rescales the cortical cut-off frequencies
	// of the current frame onto the pyramid range.
	NormalizationRelative = lod.Relative
)

// ViewingParameters describe the display and viewer for the cortical model.
type ViewingParameters = acuity.ViewingParameters

// DotPitchFor returns the physical pixel size in meters for an image of
// imgWidth pixels shown at pix2deg pixels per degree from viewDist meters.
// The result is NaN for images spanning 180 degrees or more, which the
// cortical model rejects.
func DotPitchFor(pix2deg, viewDist float64, imgWidth int) float64 {
	return acuity.DotPitchFor(pix2deg, viewDist, imgWidth)
}
