package foveate

import (
	"fmt"
	"math"
	"sync"

	"github.com/gogpu/foveate/internal/acuity"
)

type gazeMode uint8

const (
	gazeUnset    gazeMode = iota // resolves to the image centre
	gazeAuto                     // centre of the current image
	gazeExplicit                 // set by SetGaze
)

// GazeParams are the model parameters held next to the fixation.
type GazeParams struct {
	// GazeRadius is the full-resolution radius in pixels (radial model).
	GazeRadius float64

	// Viewing is the display geometry (cortical model).
	Viewing ViewingParameters
}

// GazeController holds the fixation and viewing parameters.
//
// Every successful setter increments Generation, which is what marks the
// cached LOD field stale. A controller owned by an Engine skips the
// increment for a parameter its acuity model ignores: the gaze radius under
// the cortical model and the viewing geometry under the radial one. A
// rejected update returns ErrInvalidParameter and changes nothing,
// Generation included.
//
// Thread safety: GazeController is safe for concurrent use.
type GazeController struct {
	mu         sync.RWMutex
	x, y       float64
	mode       gazeMode
	params     GazeParams
	generation uint64

	// Set by the owning engine.
	bound     bool
	model     acuity.Kind
	constants acuity.Constants
	width     int // width of the loaded image, 0 if none
}

// gazeState is a consistent snapshot of a GazeController.
type gazeState struct {
	x, y       float64
	mode       gazeMode
	params     GazeParams
	generation uint64
}

// NewGazeController returns a controller with an unset fixation, the
// default gaze radius and the default viewing geometry.
func NewGazeController() *GazeController {
	return &GazeController{
		params: GazeParams{
			GazeRadius: acuity.DefaultGazeRadius,
			Viewing:    acuity.DefaultViewingParameters(),
		},
	}
}

// SetGaze fixes the gaze at image coordinates (x, y), origin top-left.
// Points outside the image are allowed. NaN or infinite coordinates are
// rejected with ErrInvalidParameter.
func (g *GazeController) SetGaze(x, y float64) error {
	if math.IsNaN(x) || math.IsNaN(y) || math.IsInf(x, 0) || math.IsInf(y, 0) {
		return fmt.Errorf("%w: fixation (%v, %v)", ErrInvalidParameter, x, y)
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.x, g.y = x, y
	g.mode = gazeExplicit
	g.generation++
	return nil
}

// SetGazeRadius sets the radius in pixels of the sharp region used by the
// radial model. Non-positive or non-finite radii are rejected.
func (g *GazeController) SetGazeRadius(r float64) error {
	if _, err := acuity.NewRadial(r); err != nil {
		return err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.params.GazeRadius = r
	if g.uses(acuity.KindRadial) {
		g.generation++
	}
	return nil
}

// SetViewingParameters sets the display geometry used by the cortical
// model. A zero DotPitch is derived from Pix2Deg, ViewDist and the image
// width when the field is computed. Once a cortical engine has an image
// loaded, geometry that cannot be resolved for its width is rejected.
func (g *GazeController) SetViewingParameters(vp ViewingParameters) error {
	if err := vp.Validate(); err != nil {
		return err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.checkViewingLocked(vp, g.width); err != nil {
		return err
	}
	g.params.Viewing = vp
	if g.uses(acuity.KindCortical) {
		g.generation++
	}
	return nil
}

// ResetGaze forgets the fixation. The next field computation uses the
// centre of the loaded image, and later images use their own centre.
func (g *GazeController) ResetGaze() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.mode = gazeUnset
	g.generation++
}

// CurrentGaze returns the fixation in image coordinates. ok is false while
// the fixation is unset and no image has resolved it to a centre.
func (g *GazeController) CurrentGaze() (x, y float64, ok bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.x, g.y, g.mode != gazeUnset
}

// CurrentParams returns the gaze radius and viewing geometry.
func (g *GazeController) CurrentParams() GazeParams {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.params
}

// Generation returns a counter incremented by every state change.
func (g *GazeController) Generation() uint64 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.generation
}

// snapshot returns the full state under one lock.
func (g *GazeController) snapshot() gazeState {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return gazeState{x: g.x, y: g.y, mode: g.mode, params: g.params, generation: g.generation}
}

// bind ties the controller to an engine's acuity model.
func (g *GazeController) bind(model acuity.Kind, constants acuity.Constants) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.bound = true
	g.model = model
	g.constants = constants
}

// uses reports whether a parameter of model k affects the field.
// Must be called with g.mu held.
func (g *GazeController) uses(k acuity.Kind) bool {
	return !g.bound || g.model == k
}

// checkViewingLocked validates vp against an image width under the bound
// cortical model. Must be called with g.mu held.
func (g *GazeController) checkViewingLocked(vp ViewingParameters, width int) error {
	if !g.bound || g.model != acuity.KindCortical || width <= 0 {
		return nil
	}
	resolved, err := vp.ResolveWidth(width)
	if err != nil {
		return err
	}
	_, err = acuity.NewCortical(resolved, g.constants)
	return err
}

// checkImage reports whether the current parameters can drive the model
// for an image of the given width.
func (g *GazeController) checkImage(width int) error {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.checkViewingLocked(g.params.Viewing, width)
}

// followImage records a newly loaded width x height image and moves a
// non-explicit fixation to its centre. An explicit fixation is kept. The
// image is refused, with nothing changed, if the current parameters cannot
// drive the model at that width.
func (g *GazeController) followImage(width, height int) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.checkViewingLocked(g.params.Viewing, width); err != nil {
		return err
	}
	g.width = width
	if g.mode == gazeExplicit {
		return nil
	}
	g.setCentreLocked(width, height)
	return nil
}

// resolveUnset centres an unset fixation on the current image. It is a
// no-op once resolved, so repeated composites do not bump the generation.
func (g *GazeController) resolveUnset(width, height int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.mode != gazeUnset {
		return
	}
	g.setCentreLocked(width, height)
}

func (g *GazeController) setCentreLocked(width, height int) {
	cx, cy := float64(width)/2, float64(height)/2
	if g.mode == gazeAuto && g.x == cx && g.y == cy {
		return
	}
	g.x, g.y = cx, cy
	g.mode = gazeAuto
	g.generation++
}
