package acuity

import (
	"fmt"
	"math"
)

// DefaultGazeRadius is the radius in pixels of the full-resolution region.
const DefaultGazeRadius = 25.0

// Radial is the log-distance falloff model: sharp inside GazeRadius, then
// one pyramid level coarser for every doubling of distance.
type Radial struct {
	GazeRadius float64
}

// NewRadial returns a Radial model, rejecting a non-positive or non-finite radius.
func NewRadial(gazeRadius float64) (Radial, error) {
	r := Radial{GazeRadius: gazeRadius}
	if err := r.Validate(); err != nil {
		return Radial{}, err
	}
	return r, nil
}

// Validate checks the gaze radius.
func (r Radial) Validate() error {
	if !(r.GazeRadius > 0) || math.IsInf(r.GazeRadius, 1) {
		return fmt.Errorf("%w: gaze radius %v", ErrInvalidParameter, r.GazeRadius)
	}
	return nil
}

// LOD returns log2(eccPx / GazeRadius). Zero eccentricity gives -Inf.
func (r Radial) LOD(eccPx float64) float64 {
	return math.Log2(eccPx / r.GazeRadius)
}

// Kind returns KindRadial.
func (Radial) Kind() Kind { return KindRadial }
