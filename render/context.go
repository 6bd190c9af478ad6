// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/gogpu/foveate/internal/parallel"
)

// Context is the explicit rendering context passed to every composite.
// Create one with NewContext and release it with Close.
type Context struct {
	device DeviceHandle
	gpu    *gpuCompositor
	pool   *parallel.WorkerPool
	logger atomic.Pointer[slog.Logger]

	programOnce sync.Once
	program     *Program
	programErr  error
}

// ContextOption configures a Context during creation.
//
// Example:
//
//	rc := render.NewContext(render.WithWorkers(4), render.WithLogger(logger))
//	defer rc.Close()
type ContextOption func(*contextOptions)

type contextOptions struct {
	device  DeviceHandle
	workers int
	logger  *slog.Logger
}

// WithDevice sets the host GPU device. The default is NullDeviceHandle.
func WithDevice(h DeviceHandle) ContextOption {
	return func(o *contextOptions) {
		o.device = h
	}
}

// WithWorkers sets the number of compositing goroutines.
// 0 uses GOMAXPROCS; 1 composites on the calling goroutine.
func WithWorkers(n int) ContextOption {
	return func(o *contextOptions) {
		o.workers = n
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *slog.Logger) ContextOption {
	return func(o *contextOptions) {
		o.logger = l
	}
}

// NewContext creates a rendering context.
func NewContext(opts ...ContextOption) *Context {
	o := contextOptions{device: NullDeviceHandle{}}
	for _, opt := range opts {
		opt(&o)
	}
	if o.device == nil {
		o.device = NullDeviceHandle{}
	}

	c := &Context{device: o.device, gpu: newGPUCompositor(o.device)}
	if o.workers != 1 {
		c.pool = parallel.NewWorkerPool(o.workers)
	}
	c.SetLogger(o.logger)
	return c
}

// Device returns the host device handle.
func (c *Context) Device() DeviceHandle {
	return c.device
}

// HasGPU reports whether the device handle carries a wgpu HAL device that
// CompositeGPU draws on.
func (c *Context) HasGPU() bool {
	return c.gpu != nil
}

// Pool returns the worker pool, or nil for a single-worker context.
// The field computer shares it so one engine keeps one set of goroutines.
func (c *Context) Pool() *parallel.WorkerPool {
	return c.pool
}

// Workers returns the number of compositing goroutines. A closed context
// composites on the calling goroutine and reports 1.
func (c *Context) Workers() int {
	if c.pool == nil || !c.pool.IsRunning() {
		return 1
	}
	return c.pool.Workers()
}

// SetLogger replaces the logger. Nil restores the silent default.
func (c *Context) SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(slog.DiscardHandler)
	}
	c.logger.Store(l)
}

// Logger returns the current logger.
func (c *Context) Logger() *slog.Logger {
	return c.logger.Load()
}

// Program returns the foveation shader, compiling it on first use.
// A compilation failure is cached and returned on every call.
func (c *Context) Program() (*Program, error) {
	c.programOnce.Do(func() {
		c.program, c.programErr = CompileProgram()
		if c.programErr != nil {
			c.Logger().Warn("render: shader compilation failed", "err", c.programErr)
			return
		}
		c.Logger().Debug("render: shader compiled", "spirvWords", len(c.program.SPIRV))
	})
	return c.program, c.programErr
}

// Close stops the worker pool and releases device resources. CPU
// composites after Close run on the calling goroutine; GPU composites
// recreate what they need. Close is safe to call multiple times.
func (c *Context) Close() {
	if c.pool != nil {
		c.pool.Close()
	}
	if c.gpu != nil {
		c.gpu.destroy()
	}
}
