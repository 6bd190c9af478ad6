package lod

import (
	"fmt"
	"math"
	"strings"

	"github.com/gogpu/foveate/internal/acuity"
)

// Normalization selects how model output becomes a pyramid level.
type Normalization uint8

const (
	// Absolute clamps the model's level to [0, Levels-1]. The blur at a
	// given eccentricity does not depend on the image extent.
	Absolute Normalization = iota

	// Relative min-max rescales the raw cortical cut-off frequencies of the
	// current frame and inverts them onto [0, Levels-1], so the sharpest pixel
	// is level 0 and the most peripheral is Levels-1 whatever their
	// eccentricities. Only valid with the cortical model.
	Relative
)

// String returns the configuration name.
func (n Normalization) String() string {
	switch n {
	case Absolute:
		return "absolute"
	case Relative:
		return "relative"
	default:
		return fmt.Sprintf("Normalization(%d)", n)
	}
}

// ParseNormalization parses "absolute" or "relative" (any case). An empty
// string is Absolute.
func ParseNormalization(s string) (Normalization, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "absolute", "":
		return Absolute, nil
	case "relative":
		return Relative, nil
	default:
		return 0, fmt.Errorf("%w: unknown normalization %q", acuity.ErrInvalidParameter, s)
	}
}

// Clamp maps a raw model level into [0, levels-1].
// NaN and +Inf map to the coarsest level, -Inf to 0.
func Clamp(lod float64, levels int) float64 {
	top := float64(levels - 1)
	switch {
	case math.IsNaN(lod):
		return top
	case lod < 0:
		return 0
	case lod > top:
		return top
	}
	return lod
}

// relative rescales raw cut-off frequencies in place into levels.
// min == max (a single pixel, say) yields all zeros.
func relative(raw []float64, lo, hi float64, levels int, out []float32) {
	span := hi - lo
	if !(span > 0) {
		clear(out)
		return
	}
	top := float64(levels - 1)
	for i, v := range raw {
		out[i] = float32(Clamp((hi-v)/span*top, levels))
	}
}
