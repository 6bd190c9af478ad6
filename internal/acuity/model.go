// Package acuity maps eccentricity from the fixation point to a continuous
// pyramid level.
//
// Two models are provided. Radial halves resolution every time the distance
// from the fixation doubles beyond a gaze radius. Cortical follows the
// Geisler & Perry cortical magnification formula and depends on the physical
// viewing geometry. Both implement Model and are chosen by configuration.
//
// All functions are pure and safe for concurrent use.
package acuity

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidParameter is returned for non-positive radii, distances,
// pixel densities or perceptual constants.
var ErrInvalidParameter = errors.New("acuity: invalid parameter")

// Kind identifies an acuity model.
type Kind uint8

const (
	// KindRadial is the log-distance falloff model.
	KindRadial Kind = iota

	// KindCortical is the Geisler & Perry cortical magnification model.
	KindCortical
)

// String returns the configuration name of the kind.
func (k Kind) String() string {
	switch k {
	case KindRadial:
		return "radial"
	case KindCortical:
		return "cortical"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// ParseKind parses a configuration name ("radial" or "cortical", any case).
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "radial", "":
		return KindRadial, nil
	case "cortical":
		return KindCortical, nil
	default:
		return 0, fmt.Errorf("%w: unknown model %q", ErrInvalidParameter, s)
	}
}

// Model maps pixel eccentricity to an unclamped continuous pyramid level.
//
// LOD may return values below zero, above the pyramid height, or -Inf for a
// zero eccentricity; clamping is the caller's job.
type Model interface {
	LOD(eccPx float64) float64
	Kind() Kind
}
