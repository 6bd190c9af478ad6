package foveate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gogpu/foveate/config"
	"github.com/gogpu/foveate/internal/acuity"
	"github.com/gogpu/foveate/internal/image"
	"github.com/gogpu/foveate/internal/lod"
	"github.com/gogpu/foveate/render"
)

// Engine owns one loaded image, its pyramid and the cached LOD field.
//
// The pyramid is built by LoadImage and only replaced by the next
// successful LoadImage. The LOD field is computed on first use after any
// gaze or parameter change and swapped in atomically. A failed operation
// leaves the previous pyramid, field and fixation in place.
//
// Thread safety: Engine is safe for concurrent use; operations that build
// or read the pyramid are serialized.
type Engine struct {
	mu sync.Mutex

	logger *slog.Logger
	rc     *render.Context
	ownsRC bool
	gaze   *GazeController
	pool   *image.Pool

	model         acuity.Kind
	normalization lod.Normalization
	constants     acuity.Constants
	sigma         float64

	imageGen atomic.Uint64
	src      atomic.Pointer[loadedImage]
	field    atomic.Pointer[cachedField]
}

type loadedImage struct {
	pyramid *image.Pyramid
	gen     uint64
}

type cachedField struct {
	field    *lod.Field
	imageGen uint64
	gazeGen  uint64
}

// New creates an engine. Without options it uses config.DefaultConfig():
// radial model, gaze radius 25, fixation at the image centre.
func New(opts ...Option) (*Engine, error) {
	var o engineOptions
	for _, opt := range opts {
		opt(&o)
	}

	cfg := config.DefaultConfig()
	if o.cfg != nil {
		c := *o.cfg
		cfg = &c
	}
	if o.model != nil {
		cfg.Model = o.model.String()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("foveate: %w", err)
	}
	kind, _ := cfg.ModelKind()
	norm, _ := cfg.NormalizationMode()

	logger := o.logger
	if logger == nil {
		logger = Logger()
	}

	e := &Engine{
		logger:        logger,
		rc:            o.rc,
		gaze:          NewGazeController(),
		pool:          image.NewPool(2),
		model:         kind,
		normalization: norm,
		constants:     cfg.Acuity,
		sigma:         cfg.Pyramid.Sigma,
	}
	if e.rc == nil {
		e.rc = render.NewContext(render.WithWorkers(cfg.Workers), render.WithLogger(logger))
		e.ownsRC = true
	}

	e.gaze.bind(kind, cfg.Acuity)
	// Validated above, so the setters cannot fail.
	_ = e.gaze.SetGazeRadius(cfg.Gaze.Radius)
	_ = e.gaze.SetViewingParameters(cfg.Viewing)
	if x, y, ok := cfg.Fixation(); ok {
		_ = e.gaze.SetGaze(x, y)
	}

	return e, nil
}

// Gaze returns the controller holding the fixation and viewing parameters.
func (e *Engine) Gaze() *GazeController {
	return e.gaze
}

// Model returns the acuity model in use.
func (e *Engine) Model() Model {
	return e.model
}

// Normalization returns the field normalization in use.
func (e *Engine) Normalization() Normalization {
	return e.normalization
}

// RenderContext returns the context the engine composites through.
func (e *Engine) RenderContext() *render.Context {
	return e.rc
}

// NumLevels returns the pyramid level count of the loaded image, or 0.
func (e *Engine) NumLevels() int {
	if src := e.src.Load(); src != nil {
		return src.pyramid.NumLevels()
	}
	return 0
}

// Size returns the dimensions of the loaded image, or 0, 0.
func (e *Engine) Size() (width, height int) {
	if src := e.src.Load(); src != nil {
		return src.pyramid.Bounds()
	}
	return 0, 0
}

// LoadImage copies img and builds its pyramid. An unset or auto-centred
// fixation moves to the centre of the new image; an explicit one is kept.
// On error the previously loaded image stays active.
func (e *Engine) LoadImage(img *Image) error {
	buf, err := img.toBuf()
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.gaze.checkImage(img.Width); err != nil {
		return fmt.Errorf("foveate: %w", err)
	}

	start := time.Now()
	pyr, err := image.BuildPyramid(buf, image.PyramidOptions{Sigma: e.sigma, Pool: e.pool, Workers: e.rc.Pool()})
	if err != nil {
		return fmt.Errorf("foveate: build pyramid: %w", err)
	}

	if err := e.gaze.followImage(img.Width, img.Height); err != nil {
		pyr.Release()
		return fmt.Errorf("foveate: %w", err)
	}

	old := e.src.Swap(&loadedImage{pyramid: pyr, gen: e.imageGen.Add(1)})
	e.field.Store(nil)
	if old != nil {
		old.pyramid.Release()
	}

	hits, misses := e.pool.Stats()
	e.logger.Info("foveate: image loaded",
		"width", img.Width, "height", img.Height,
		"levels", pyr.NumLevels(), "bytes", pyr.ByteSize(),
		"poolHits", hits, "poolMisses", misses,
		"elapsed", time.Since(start))
	return nil
}

// LODField returns the level-of-detail field for the current image and
// fixation, computing it if the gaze or parameters changed since the last
// call. The returned field must not be modified.
func (e *Engine) LODField() (*lod.Field, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, f, err := e.fieldLocked()
	return f, err
}

// Composite renders the foveated image.
//
// When the render context carries a GPU device and normalization is
// absolute, the frame is drawn on the device. Otherwise, or if the device
// fails, it is composited on the CPU from the cached LOD field.
// Consecutive calls without a gaze or image change return identical pixels.
func (e *Engine) Composite() (*Image, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.rc.HasGPU() && e.normalization == lod.Absolute {
		out, err := e.compositeGPULocked()
		switch {
		case err == nil:
			return imageFromBuf(out), nil
		case errors.Is(err, ErrNoImage), errors.Is(err, ErrInvalidParameter):
			return nil, err
		}
		e.logger.Warn("foveate: GPU composite failed, using CPU", "err", err)
	}

	src, f, err := e.fieldLocked()
	if err != nil {
		return nil, err
	}
	out, err := e.rc.Composite(src.pyramid, f)
	if err != nil {
		return nil, fmt.Errorf("foveate: %w", err)
	}
	return imageFromBuf(out), nil
}

// CompositeAnalytic renders the foveated image by evaluating the acuity
// model per pixel on the CPU, without the cached field. The result equals a
// CPU Composite under absolute normalization. Relative normalization
// depends on the whole frame and is rejected with ErrInvalidParameter.
func (e *Engine) CompositeAnalytic() (*Image, error) {
	if e.normalization != lod.Absolute {
		return nil, fmt.Errorf("%w: analytic compositing needs absolute normalization", ErrInvalidParameter)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	src, st, m, err := e.modelLocked()
	if err != nil {
		return nil, err
	}
	out, err := e.rc.CompositeAnalytic(src.pyramid, m, st.x, st.y)
	if err != nil {
		return nil, fmt.Errorf("foveate: %w", err)
	}
	return imageFromBuf(out), nil
}

// compositeGPULocked draws the current frame on the render context's
// device. Must be called with e.mu held.
func (e *Engine) compositeGPULocked() (*image.ImageBuf, error) {
	src, st, m, err := e.modelLocked()
	if err != nil {
		return nil, err
	}
	return e.rc.CompositeGPU(src.pyramid, m, st.x, st.y)
}

// modelLocked resolves the fixation and builds the acuity model for the
// current image. Must be called with e.mu held.
func (e *Engine) modelLocked() (*loadedImage, gazeState, acuity.Model, error) {
	src := e.src.Load()
	if src == nil {
		return nil, gazeState{}, nil, ErrNoImage
	}
	w, h := src.pyramid.Bounds()
	e.gaze.resolveUnset(w, h)
	st := e.gaze.snapshot()

	m, err := e.modelFor(st, w)
	if err != nil {
		return nil, gazeState{}, nil, err
	}
	return src, st, m, nil
}

// Close releases the pyramid and, unless it was supplied with
// WithRenderContext, the render context. Close is safe to call multiple times.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if old := e.src.Swap(nil); old != nil {
		old.pyramid.Release()
	}
	e.field.Store(nil)
	if e.ownsRC {
		e.rc.Close()
	}
}

// fieldLocked returns the current image and an up-to-date field.
// Must be called with e.mu held.
func (e *Engine) fieldLocked() (*loadedImage, *lod.Field, error) {
	src := e.src.Load()
	if src == nil {
		return nil, nil, ErrNoImage
	}
	w, h := src.pyramid.Bounds()
	e.gaze.resolveUnset(w, h)
	st := e.gaze.snapshot()

	if c := e.field.Load(); c != nil && c.imageGen == src.gen && c.gazeGen == st.generation {
		return src, c.field, nil
	}

	m, err := e.modelFor(st, w)
	if err != nil {
		return nil, nil, err
	}

	start := time.Now()
	f, err := lod.Compute(lod.Input{
		Width:         w,
		Height:        h,
		GazeX:         st.x,
		GazeY:         st.y,
		Levels:        src.pyramid.NumLevels(),
		Model:         m,
		Normalization: e.normalization,
	}, e.rc.Pool())
	if err != nil {
		return nil, nil, fmt.Errorf("foveate: compute LOD field: %w", err)
	}

	e.field.Store(&cachedField{field: f, imageGen: src.gen, gazeGen: st.generation})

	if e.logger.Enabled(context.Background(), slog.LevelDebug) {
		stats := f.Stats()
		e.logger.Debug("foveate: LOD field computed",
			"model", e.model, "gazeX", st.x, "gazeY", st.y,
			"min", stats.Min, "max", stats.Max, "mean", stats.Mean,
			"elapsed", time.Since(start))
	}
	return src, f, nil
}

// modelFor builds the acuity model for a gaze snapshot and image width.
func (e *Engine) modelFor(st gazeState, width int) (acuity.Model, error) {
	if e.model == acuity.KindCortical {
		vp, err := st.params.Viewing.ResolveWidth(width)
		if err != nil {
			return nil, fmt.Errorf("foveate: %w", err)
		}
		m, err := acuity.NewCortical(vp, e.constants)
		if err != nil {
			return nil, fmt.Errorf("foveate: %w", err)
		}
		return m, nil
	}
	m, err := acuity.NewRadial(st.params.GazeRadius)
	if err != nil {
		return nil, fmt.Errorf("foveate: %w", err)
	}
	return m, nil
}
