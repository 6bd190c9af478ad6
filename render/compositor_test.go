// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/gogpu/foveate/internal/acuity"
	"github.com/gogpu/foveate/internal/image"
	"github.com/gogpu/foveate/internal/lod"
)

func newTestPyramid(t *testing.T, w, h int, sigma float64) *image.Pyramid {
	t.Helper()
	src, err := image.NewImageBuf(w, h, image.FormatRGB8)
	if err != nil {
		t.Fatalf("NewImageBuf() error = %v", err)
	}
	rng := rand.New(rand.NewSource(int64(w*31 + h)))
	for i := range src.Data() {
		src.Data()[i] = uint8(rng.Intn(256))
	}
	p, err := image.BuildPyramid(src, image.PyramidOptions{Sigma: sigma, Pool: image.NewPool(0)})
	if err != nil {
		t.Fatalf("BuildPyramid() error = %v", err)
	}
	return p
}

func constantField(t *testing.T, p *image.Pyramid, v float32) *lod.Field {
	t.Helper()
	w, h := p.Bounds()
	data := make([]float32, w*h)
	for i := range data {
		data[i] = v
	}
	f, err := lod.NewField(w, h, p.NumLevels(), data)
	if err != nil {
		t.Fatalf("NewField() error = %v", err)
	}
	return f
}

func TestComposite_LevelZeroIsSource(t *testing.T) {
	rc := NewContext(WithWorkers(3))
	defer rc.Close()

	p := newTestPyramid(t, 37, 29, 0.5)
	out, err := rc.Composite(p, constantField(t, p, 0))
	if err != nil {
		t.Fatalf("Composite() error = %v", err)
	}
	if diff := cmp.Diff(p.Level(0).Data(), out.Data()); diff != "" {
		t.Errorf("Composite(lod 0) differs from source (-want +got):\n%s", diff)
	}
}

func solidBuf(t *testing.T, w, h int, r, g, b uint8) *image.ImageBuf {
	t.Helper()
	buf, err := image.NewImageBuf(w, h, image.FormatRGB8)
	if err != nil {
		t.Fatalf("NewImageBuf() error = %v", err)
	}
	for y := range h {
		for x := range w {
			_ = buf.SetRGB(x, y, r, g, b)
		}
	}
	return buf
}

func TestComposite_SolidColor(t *testing.T) {
	rc := NewContext()
	defer rc.Close()

	src := solidBuf(t, 50, 30, 12, 34, 56)
	p, err := image.BuildPyramid(src, image.PyramidOptions{Sigma: 0.5, Pool: image.NewPool(0)})
	if err != nil {
		t.Fatalf("BuildPyramid() error = %v", err)
	}
	for _, v := range []float32{0, 0.3, 2.5, float32(p.NumLevels() - 1)} {
		out, err := rc.Composite(p, constantField(t, p, v))
		if err != nil {
			t.Fatalf("Composite(%v) error = %v", v, err)
		}
		if !out.Equal(solidBuf(t, 50, 30, 12, 34, 56)) {
			t.Errorf("Composite(lod %v) of a solid image is not solid", v)
		}
	}
}

func TestComposite_BlendsLevels(t *testing.T) {
	rc := NewContext(WithWorkers(1))
	defer rc.Close()

	// 2x2 source, level 1 is the single average texel 85.
	src, _ := image.NewImageBuf(2, 2, image.FormatRGB8)
	_ = src.SetRGB(0, 0, 0, 0, 0)
	_ = src.SetRGB(1, 0, 100, 0, 0)
	_ = src.SetRGB(0, 1, 200, 0, 0)
	_ = src.SetRGB(1, 1, 40, 0, 0)
	p, err := image.BuildPyramid(src, image.PyramidOptions{})
	if err != nil {
		t.Fatalf("BuildPyramid() error = %v", err)
	}

	tests := []struct {
		lod  float32
		want [4]uint8
	}{
		{0, [4]uint8{0, 100, 200, 40}},
		{1, [4]uint8{85, 85, 85, 85}},
		{0.5, [4]uint8{43, 93, 143, 63}},
	}
	for _, tt := range tests {
		out, err := rc.Composite(p, constantField(t, p, tt.lod))
		if err != nil {
			t.Fatalf("Composite(%v) error = %v", tt.lod, err)
		}
		var got [4]uint8
		for i := range 4 {
			got[i], _, _ = out.GetRGB(i%2, i/2)
		}
		if got != tt.want {
			t.Errorf("Composite(lod %v) red = %v, want %v", tt.lod, got, tt.want)
		}
	}
}

func TestComposite_Errors(t *testing.T) {
	rc := NewContext()
	defer rc.Close()

	p := newTestPyramid(t, 8, 8, 0)
	top := float32(p.NumLevels() - 1)

	other := newTestPyramid(t, 8, 7, 0)
	bigLevels, _ := lod.NewField(8, 8, p.NumLevels()+1, make([]float32, 64))

	tests := []struct {
		name    string
		pyr     *image.Pyramid
		field   *lod.Field
		wantErr error
	}{
		{"size mismatch", p, constantField(t, other, 0), ErrDimensionMismatch},
		{"nil field", p, nil, ErrDimensionMismatch},
		{"nil pyramid", nil, constantField(t, p, 0), image.ErrInvalidDimensions},
		{"above top", p, constantField(t, p, top+0.25), ErrPyramidUnderflow},
		{"negative", p, constantField(t, p, -0.5), ErrPyramidUnderflow},
		{"NaN", p, constantField(t, p, float32(math.NaN())), ErrPyramidUnderflow},
		{"field levels exceed pyramid", p, bigLevels, ErrPyramidUnderflow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := rc.Composite(tt.pyr, tt.field)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Composite() error = %v, want %v", err, tt.wantErr)
			}
			if out != nil {
				t.Error("Composite() returned output on error")
			}
		})
	}

	if _, err := rc.Composite(p, constantField(t, p, top)); err != nil {
		t.Errorf("Composite(top level) error = %v", err)
	}
}

func TestCompositeAnalytic_MatchesField(t *testing.T) {
	p := newTestPyramid(t, 120, 90, 0.5)
	w, h := p.Bounds()
	cortical, err := acuity.NewCortical(acuity.DefaultViewingParameters().Resolve(w), acuity.DefaultConstants())
	if err != nil {
		t.Fatalf("NewCortical() error = %v", err)
	}

	models := []acuity.Model{acuity.Radial{GazeRadius: 6}, cortical}
	gazes := [][2]float64{{60, 45}, {3.5, 80.25}, {-200, 10}}

	for _, workers := range []int{1, 4} {
		rc := NewContext(WithWorkers(workers))
		for _, m := range models {
			for _, g := range gazes {
				f, err := lod.Compute(lod.Input{Width: w, Height: h, GazeX: g[0], GazeY: g[1],
					Levels: p.NumLevels(), Model: m}, rc.Pool())
				if err != nil {
					t.Fatalf("lod.Compute() error = %v", err)
				}
				fromField, err := rc.Composite(p, f)
				if err != nil {
					t.Fatalf("Composite() error = %v", err)
				}
				analytic, err := rc.CompositeAnalytic(p, m, g[0], g[1])
				if err != nil {
					t.Fatalf("CompositeAnalytic() error = %v", err)
				}
				if !fromField.Equal(analytic) {
					t.Errorf("workers=%d %v gaze %v: analytic and field composites differ",
						workers, m.Kind(), g)
				}
			}
		}
		rc.Close()
	}
}

func TestCompositeAnalytic_Invalid(t *testing.T) {
	rc := NewContext()
	defer rc.Close()
	p := newTestPyramid(t, 8, 8, 0)

	if _, err := rc.CompositeAnalytic(p, nil, 4, 4); !errors.Is(err, acuity.ErrInvalidParameter) {
		t.Errorf("CompositeAnalytic(nil model) error = %v, want ErrInvalidParameter", err)
	}
	if _, err := rc.CompositeAnalytic(p, acuity.Radial{GazeRadius: 2}, math.Inf(1), 4); !errors.Is(err, acuity.ErrInvalidParameter) {
		t.Errorf("CompositeAnalytic(Inf gaze) error = %v, want ErrInvalidParameter", err)
	}
	if _, err := rc.CompositeAnalytic(nil, acuity.Radial{GazeRadius: 2}, 4, 4); !errors.Is(err, image.ErrInvalidDimensions) {
		t.Errorf("CompositeAnalytic(nil pyramid) error = %v, want ErrInvalidDimensions", err)
	}
}

func TestComposite_Idempotent(t *testing.T) {
	rc := NewContext(WithWorkers(4))
	defer rc.Close()

	p := newTestPyramid(t, 64, 48, 0.5)
	f, err := lod.Compute(lod.Input{Width: 64, Height: 48, GazeX: 20, GazeY: 30,
		Levels: p.NumLevels(), Model: acuity.Radial{GazeRadius: 4}}, rc.Pool())
	if err != nil {
		t.Fatalf("lod.Compute() error = %v", err)
	}

	a, err := rc.Composite(p, f)
	if err != nil {
		t.Fatalf("Composite() error = %v", err)
	}
	b, _ := rc.Composite(p, f)
	if diff := cmp.Diff(a.Data(), b.Data()); diff != "" {
		t.Errorf("consecutive composites differ:\n%s", diff)
	}
}

func TestComposite_AfterClose(t *testing.T) {
	rc := NewContext(WithWorkers(4))
	rc.Close()
	rc.Close()

	p := newTestPyramid(t, 40, 40, 0)
	out, err := rc.Composite(p, constantField(t, p, 0))
	if err != nil {
		t.Fatalf("Composite() after Close error = %v", err)
	}
	if !out.Equal(p.Level(0)) {
		t.Error("Composite() after Close produced wrong output")
	}
}
