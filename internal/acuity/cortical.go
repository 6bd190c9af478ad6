package acuity

import (
	"fmt"
	"math"
)

// Constants are the perceptual constants of the Geisler & Perry model.
type Constants struct {
	// Epsilon2 is the half-resolution eccentricity in degrees.
	Epsilon2 float64 `yaml:"epsilon2"`

	// Alpha is the spatial frequency decay constant.
	Alpha float64 `yaml:"alpha"`

	// CT0 is the minimum contrast threshold, in (0, 1).
	CT0 float64 `yaml:"ct0"`
}

// DefaultConstants returns ε2 = 2.3, α = 0.106, CT0 = 1/64.
func DefaultConstants() Constants {
	return Constants{
		Epsilon2: 2.3,
		Alpha:    0.106,
		CT0:      1.0 / 64,
	}
}

// Validate checks that all constants are positive and CT0 < 1.
func (c Constants) Validate() error {
	switch {
	case !(c.Epsilon2 > 0) || math.IsInf(c.Epsilon2, 1):
		return fmt.Errorf("%w: epsilon2 %v", ErrInvalidParameter, c.Epsilon2)
	case !(c.Alpha > 0) || math.IsInf(c.Alpha, 1):
		return fmt.Errorf("%w: alpha %v", ErrInvalidParameter, c.Alpha)
	case !(c.CT0 > 0 && c.CT0 < 1):
		return fmt.Errorf("%w: ct0 %v", ErrInvalidParameter, c.CT0)
	}
	return nil
}

// Cortical is the Geisler & Perry cortical magnification model.
//
// The level at an eccentricity is the one whose representable frequency
// matches the eye's cut-off frequency there:
//
//	maxFreq(0) / 2^lod = cutoff(ec)  =>  lod = log2(maxFreq(0) / cutoff(ec))
//
// Viewing must be resolved (non-zero DotPitch) before use.
type Cortical struct {
	Viewing   ViewingParameters
	Constants Constants
}

// NewCortical validates vp and c and returns the model.
func NewCortical(vp ViewingParameters, c Constants) (Cortical, error) {
	m := Cortical{Viewing: vp, Constants: c}
	if err := m.Validate(); err != nil {
		return Cortical{}, err
	}
	return m, nil
}

// Validate checks the viewing geometry, which must have a resolved dot
// pitch, and the constants.
func (m Cortical) Validate() error {
	if err := m.Viewing.Validate(); err != nil {
		return err
	}
	if !(m.Viewing.DotPitch > 0) {
		return fmt.Errorf("%w: unresolved dot pitch", ErrInvalidParameter)
	}
	return m.Constants.Validate()
}

// EccentricityDeg converts a pixel eccentricity to degrees of visual angle.
func (m Cortical) EccentricityDeg(eccPx float64) float64 {
	radiusM := eccPx * m.Viewing.DotPitch
	return (180 / math.Pi) * math.Atan(radiusM/m.Viewing.ViewDist)
}

// CutoffFrequency returns the highest spatial frequency, in cycles per
// degree, the eye resolves at the given pixel eccentricity.
func (m Cortical) CutoffFrequency(eccPx float64) float64 {
	c := m.Constants
	ec := m.EccentricityDeg(eccPx)
	return c.Epsilon2 / (c.Alpha * (ec + c.Epsilon2)) * math.Log(1/c.CT0)
}

// MaxFrequency returns the highest frequency, in cycles per degree, that
// full-resolution pixels can represent at the given pixel eccentricity.
// One cycle spans the pixel pair around the eccentricity. Returns +Inf if
// the pair subtends no measurable angle.
func (m Cortical) MaxFrequency(eccPx float64) float64 {
	vp := m.Viewing
	radiusM := eccPx * vp.DotPitch
	theta := math.Atan((radiusM+vp.DotPitch)/vp.ViewDist) -
		math.Atan((radiusM-vp.DotPitch)/vp.ViewDist)
	if !(theta > 0) {
		return math.Inf(1)
	}
	return math.Pi / (theta * 180)
}

// LOD returns log2(MaxFrequency / CutoffFrequency).
func (m Cortical) LOD(eccPx float64) float64 {
	return math.Log2(m.MaxFrequency(eccPx) / m.CutoffFrequency(eccPx))
}

// Kind returns KindCortical.
func (Cortical) Kind() Kind { return KindCortical }
