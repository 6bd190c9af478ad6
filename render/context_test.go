// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"bytes"
	"log/slog"
	"runtime"
	"strings"
	"testing"
)

func TestNewContext_Defaults(t *testing.T) {
	rc := NewContext()
	defer rc.Close()

	if _, ok := rc.Device().(NullDeviceHandle); !ok {
		t.Errorf("Device() = %T, want NullDeviceHandle", rc.Device())
	}
	if rc.Workers() != runtime.GOMAXPROCS(0) {
		t.Errorf("Workers() = %d, want GOMAXPROCS", rc.Workers())
	}
	if rc.Logger() == nil {
		t.Error("Logger() should never be nil")
	}
}

func TestContext_WorkersAfterClose(t *testing.T) {
	rc := NewContext(WithWorkers(3))
	if rc.Workers() != 3 {
		t.Errorf("Workers() = %d, want 3", rc.Workers())
	}
	rc.Close()
	if rc.Workers() != 1 {
		t.Errorf("Workers() = %d after Close, want 1", rc.Workers())
	}
}

func TestNewContext_Options(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	rc := NewContext(WithWorkers(1), WithLogger(logger), WithDevice(nil))
	defer rc.Close()

	if rc.Pool() != nil || rc.Workers() != 1 {
		t.Errorf("single-worker context: Pool() = %v, Workers() = %d", rc.Pool(), rc.Workers())
	}
	if _, ok := rc.Device().(NullDeviceHandle); !ok {
		t.Errorf("WithDevice(nil) should fall back to NullDeviceHandle, got %T", rc.Device())
	}

	p := newTestPyramid(t, 4, 4, 0)
	if _, err := rc.Composite(p, constantField(t, p, 0)); err != nil {
		t.Fatalf("Composite() error = %v", err)
	}
	if !strings.Contains(buf.String(), "render: composite") {
		t.Errorf("debug log missing composite entry, got %q", buf.String())
	}

	rc.SetLogger(nil)
	if rc.Logger() == nil || rc.Logger().Enabled(t.Context(), slog.LevelError) {
		t.Error("SetLogger(nil) should install a silent logger")
	}
}
