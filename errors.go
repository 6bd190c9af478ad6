package foveate

import (
	"errors"

	"github.com/gogpu/foveate/internal/acuity"
	"github.com/gogpu/foveate/internal/image"
	"github.com/gogpu/foveate/render"
)

// Errors returned by the engine. Match them with errors.Is; returned errors
// usually wrap one of these with details.
var (
	// ErrInvalidImage is returned for images with non-positive dimensions
	// or a pixel buffer shorter than 3*Width*Height.
	ErrInvalidImage = image.ErrInvalidDimensions

	// ErrInvalidParameter is returned for a non-positive gaze radius,
	// viewing distance or pixels-per-degree, non-finite fixations and
	// inconsistent configuration. The rejected update changes nothing.
	ErrInvalidParameter = acuity.ErrInvalidParameter

	// ErrPyramidUnderflow is returned when a LOD field asks for a level the
	// pyramid does not have.
	ErrPyramidUnderflow = render.ErrPyramidUnderflow

	// ErrDimensionMismatch is returned when a LOD field and the pyramid
	// disagree on size.
	ErrDimensionMismatch = render.ErrDimensionMismatch

	// ErrNoImage is returned by operations that need a loaded image.
	ErrNoImage = errors.New("foveate: no image loaded")
)
