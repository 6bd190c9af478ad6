// Package foveate renders gaze-contingent foveated images.
//
// # Overview
//
// Given a still image and a fixation point, foveate produces a version of
// the image whose effective resolution falls off with distance from the
// fixation, following the falloff of human visual acuity away from the
// fovea. Flat regions look unchanged; detail fades towards the periphery.
//
// # Quick Start
//
//	eng, err := foveate.New()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer eng.Close()
//
//	img, _ := foveate.ImageFromStd(decoded)
//	if err := eng.LoadImage(img); err != nil {
//	    log.Fatal(err)
//	}
//	_ = eng.Gaze().SetGaze(320, 180)
//	out, err := eng.Composite()
//
// # Pipeline
//
// LoadImage builds an image pyramid: level 0 is the source and every
// further level halves both dimensions after a small Gaussian lowpass.
// The acuity model maps each pixel's eccentricity to a continuous level;
// the resulting LOD field is cached until the fixation or viewing
// parameters change. Composite samples the pyramid trilinearly through the
// field. The pyramid is rebuilt only when the image changes, never on a
// gaze update.
//
// # Acuity Models
//
//   - Radial: level log2(distance / radius), sharp inside the gaze radius.
//   - Cortical: Geisler & Perry cortical magnification, driven by the
//     physical viewing geometry (dot pitch, viewing distance, pixels per
//     degree).
//
// # Coordinate System
//
// Fixations are given in image coordinates:
//   - Origin (0,0) at top-left
//   - X increases right
//   - Y increases down
//
// An unset fixation resolves to the image centre when an image is loaded.
package foveate

// Version information
const (
	// Version is the current version of the library
	Version = "0.1.0"

	// VersionMajor is the major version
	VersionMajor = 0

	// VersionMinor is the minor version
	VersionMinor = 1

	// VersionPatch is the patch version
	VersionPatch = 0
)
