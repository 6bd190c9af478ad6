package foveate

import (
	"log/slog"

	"github.com/gogpu/foveate/config"
	"github.com/gogpu/foveate/internal/acuity"
	"github.com/gogpu/foveate/render"
)

// Option configures an Engine during creation.
// Use functional options to customize Engine behavior.
//
// Example:
//
//	// Defaults: radial model, radius 25, fixation at the image centre
//	eng, err := foveate.New()
//
//	// Cortical model from a config file
//	cfg, err := config.LoadConfig("foveate.yaml")
//	eng, err := foveate.New(foveate.WithConfig(cfg), foveate.WithModel(foveate.ModelCortical))
type Option func(*engineOptions)

// engineOptions holds optional configuration for Engine creation.
type engineOptions struct {
	cfg    *config.Config
	logger *slog.Logger
	rc     *render.Context
	model  *acuity.Kind
}

// WithConfig sets the engine configuration. The default is
// config.DefaultConfig(). The configuration is copied.
func WithConfig(cfg *config.Config) Option {
	return func(o *engineOptions) {
		o.cfg = cfg
	}
}

// WithLogger sets the engine logger. The default is the package Logger().
func WithLogger(l *slog.Logger) Option {
	return func(o *engineOptions) {
		o.logger = l
	}
}

// WithRenderContext makes the engine composite through rc instead of
// creating its own context. The caller keeps ownership: Engine.Close does
// not close rc.
func WithRenderContext(rc *render.Context) Option {
	return func(o *engineOptions) {
		o.rc = rc
	}
}

// WithModel overrides the acuity model named in the configuration.
func WithModel(k Model) Option {
	return func(o *engineOptions) {
		o.model = &k
	}
}
