package main

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/gogpu/foveate"
)

func TestParsePoint(t *testing.T) {
	tests := []struct {
		in      string
		x, y    float64
		wantErr bool
	}{
		{"10,20", 10, 20, false},
		{" 1.5 , -3 ", 1.5, -3, false},
		{"10", 0, 0, true},
		{"a,2", 0, 0, true},
		{"1,b", 0, 0, true},
	}
	for _, tt := range tests {
		x, y, err := parsePoint(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parsePoint(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && (x != tt.x || y != tt.y) {
			t.Errorf("parsePoint(%q) = %v, %v; want %v, %v", tt.in, x, y, tt.x, tt.y)
		}
	}
}

func TestBatchRun(t *testing.T) {
	in := t.TempDir()
	out := filepath.Join(t.TempDir(), "out")
	lodDir := filepath.Join(t.TempDir(), "lod")

	img, err := foveate.NewImage(40, 30)
	if err != nil {
		t.Fatal(err)
	}
	for i := range img.Pix {
		img.Pix[i] = uint8(i)
	}
	if err := img.SaveFile(filepath.Join(in, "a.png"), 0); err != nil {
		t.Fatal(err)
	}
	if err := img.SaveFile(filepath.Join(in, "b.bmp"), 0); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(in, "notes.txt"), []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(in, "sub"), 0o750); err != nil {
		t.Fatal(err)
	}

	eng, err := foveate.New()
	if err != nil {
		t.Fatal(err)
	}
	defer eng.Close()

	var logs bytes.Buffer
	b := batch{
		eng:    eng,
		logger: slog.New(slog.NewTextHandler(&logs, nil)),
		outDir: out,
		lodDir: lodDir,
	}
	n, err := b.run(in)
	if err != nil {
		t.Fatalf("run() = %v", err)
	}
	if n != 2 {
		t.Errorf("run() = %d images, want 2", n)
	}
	for _, p := range []string{
		filepath.Join(out, "a.png"),
		filepath.Join(out, "b.bmp"),
		filepath.Join(lodDir, "a.png"),
		filepath.Join(lodDir, "b.png"),
	} {
		if _, err := os.Stat(p); err != nil {
			t.Errorf("missing output %s: %v", p, err)
		}
	}
	if !bytes.Contains(logs.Bytes(), []byte("notes.txt")) {
		t.Errorf("unsupported file not reported:\n%s", logs.String())
	}

	got, err := foveate.LoadFile(filepath.Join(out, "a.png"))
	if err != nil {
		t.Fatal(err)
	}
	if got.Width != 40 || got.Height != 30 {
		t.Errorf("output size = %dx%d, want 40x30", got.Width, got.Height)
	}
}

func TestBatchRunMissingDir(t *testing.T) {
	eng, err := foveate.New()
	if err != nil {
		t.Fatal(err)
	}
	defer eng.Close()

	b := batch{eng: eng, logger: slog.New(slog.DiscardHandler), outDir: t.TempDir()}
	if _, err := b.run(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Error("run() of a missing directory succeeded")
	}
}
