// Command foveate blurs every image in a directory around a fixation point,
// keeping full detail near the gaze and reducing it with eccentricity.
//
// Usage:
//
//	foveate -i photos -o out -p 320,240 -r 40
//	foveate -i photos -o out -m cortical -d 0.5 -x 40 -lod-dir lod
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gogpu/foveate"
	"github.com/gogpu/foveate/config"
)

func main() {
	var (
		configPath = flag.String("config", "", "YAML configuration file")
		gaze       = flag.String("p", "", "fixation as x,y in pixels (default: image centre)")
		radius     = flag.Float64("r", 25, "gaze radius in pixels (radial model)")
		viewDist   = flag.Float64("d", 0.6, "viewing distance in meters (cortical model)")
		pix2deg    = flag.Float64("x", 32, "pixels per degree of visual angle (cortical model)")
		model      = flag.String("m", "radial", "acuity model: radial or cortical")
		norm       = flag.String("n", "absolute", "LOD normalization: absolute or relative")
		inDir      = flag.String("i", "input", "input directory")
		outDir     = flag.String("o", "output", "output directory")
		lodDir     = flag.String("lod-dir", "", "also write each LOD field as a grayscale PNG here")
		quality    = flag.Int("quality", 95, "JPEG output quality")
		workers    = flag.Int("workers", 0, "worker goroutines (0 = GOMAXPROCS)")
		analytic   = flag.Bool("analytic", false, "evaluate the acuity model per pixel instead of using the LOD field")
		verbose    = flag.Bool("verbose", false, "debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	foveate.SetLogger(logger)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Flags given on the command line override the file.
	var flagErr error
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "p":
			x, y, err := parsePoint(*gaze)
			if err != nil {
				flagErr = errors.Join(flagErr, err)
				return
			}
			cfg.SetFixation(x, y)
		case "r":
			cfg.Gaze.Radius = *radius
		case "d":
			cfg.Viewing.ViewDist = *viewDist
		case "x":
			cfg.Viewing.Pix2Deg = *pix2deg
		case "m":
			cfg.Model = *model
		case "n":
			cfg.Normalization = *norm
		case "workers":
			cfg.Workers = *workers
		}
	})
	if flagErr != nil {
		log.Fatalf("Invalid flags: %v", flagErr)
	}

	eng, err := foveate.New(foveate.WithConfig(cfg))
	if err != nil {
		log.Fatalf("Failed to create engine: %v", err)
	}
	defer eng.Close()

	b := batch{
		eng:      eng,
		logger:   logger,
		outDir:   *outDir,
		lodDir:   *lodDir,
		quality:  *quality,
		analytic: *analytic,
	}
	n, err := b.run(*inDir)
	if err != nil {
		eng.Close()
		log.Fatalf("Failed: %v", err)
	}

	log.Printf("Foveated %d images into %s\n", n, *outDir)
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.DefaultConfig(), nil
	}
	return config.LoadConfig(path)
}

// parsePoint parses "x,y".
func parsePoint(s string) (x, y float64, err error) {
	xs, ys, ok := strings.Cut(s, ",")
	if !ok {
		return 0, 0, fmt.Errorf("point %q: want x,y", s)
	}
	if x, err = strconv.ParseFloat(strings.TrimSpace(xs), 64); err != nil {
		return 0, 0, fmt.Errorf("point %q: %w", s, err)
	}
	if y, err = strconv.ParseFloat(strings.TrimSpace(ys), 64); err != nil {
		return 0, 0, fmt.Errorf("point %q: %w", s, err)
	}
	return x, y, nil
}

// batch foveates every supported image of a directory.
type batch struct {
	eng      *foveate.Engine
	logger   *slog.Logger
	outDir   string
	lodDir   string
	quality  int
	analytic bool
}

// run processes inDir and returns the number of images written.
func (b *batch) run(inDir string) (int, error) {
	entries, err := os.ReadDir(inDir)
	if err != nil {
		return 0, fmt.Errorf("read input directory: %w", err)
	}
	if err := os.MkdirAll(b.outDir, 0o750); err != nil {
		return 0, fmt.Errorf("create output directory: %w", err)
	}
	if b.lodDir != "" {
		if err := os.MkdirAll(b.lodDir, 0o750); err != nil {
			return 0, fmt.Errorf("create LOD directory: %w", err)
		}
	}

	n := 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !foveate.IsSupportedFile(name) {
			b.logger.Warn("skipping unsupported file", "file", name)
			continue
		}
		if err := b.process(filepath.Join(inDir, name), name); err != nil {
			return n, fmt.Errorf("%s: %w", name, err)
		}
		n++
	}
	return n, nil
}

func (b *batch) process(path, name string) error {
	start := time.Now()

	img, err := foveate.LoadFile(path)
	if err != nil {
		return err
	}
	if err := b.eng.LoadImage(img); err != nil {
		return err
	}

	var out *foveate.Image
	if b.analytic {
		out, err = b.eng.CompositeAnalytic()
	} else {
		out, err = b.eng.Composite()
	}
	if err != nil {
		return err
	}

	outName := name
	if strings.EqualFold(filepath.Ext(name), ".webp") {
		outName = strings.TrimSuffix(name, filepath.Ext(name)) + ".png"
	}
	if err := out.SaveFile(filepath.Join(b.outDir, outName), b.quality); err != nil {
		return err
	}

	if b.lodDir != "" {
		f, err := b.eng.LODField()
		if err != nil {
			return err
		}
		lodName := strings.TrimSuffix(name, filepath.Ext(name)) + ".png"
		if err := f.ToGray().EncodeFile(filepath.Join(b.lodDir, lodName), 0); err != nil {
			return err
		}
	}

	x, y, _ := b.eng.Gaze().CurrentGaze()
	b.logger.Info("foveated", "file", name, "gazeX", x, "gazeY", y,
		"levels", b.eng.NumLevels(), "elapsed", time.Since(start))
	return nil
}
