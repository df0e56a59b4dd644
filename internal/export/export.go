package export

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/netviz/internal/logger"
	"github.com/Faultbox/netviz/internal/metrics"
)

// ErrExportFailure matches every error returned by Exporter.Export.
var ErrExportFailure = errors.New("export failed")

// Error is an export failure for one file.
type Error struct {
	Filename string
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("exporting %s: %v", e.Filename, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is makes every *Error match ErrExportFailure.
func (e *Error) Is(target error) bool { return target == ErrExportFailure }

// Source renders figures. Capture draws one visible pass into a dedicated
// width x height target cleared to background, releases the target and
// returns its RGBA pixels bottom row first.
type Source interface {
	Capture(width, height int, background [4]float32) ([]byte, error)
	CanvasSize() (width, height int)
	Background() [4]float32
}

// Config holds exporter defaults.
type Config struct {
	// Dir receives relative filenames. Empty means the working directory.
	Dir         string
	Scale       float32
	Supersample float32
	Metrics     *metrics.Registry
}

// Exporter writes figures of a Source.
type Exporter struct {
	src Source
	cfg Config
	log *zap.Logger
	now func() time.Time
}

// New creates an exporter for src.
func New(src Source, cfg Config) *Exporter {
	return &Exporter{
		src: src,
		cfg: cfg,
		log: logger.Named("export"),
		now: time.Now,
	}
}

// GenerateFilename returns a timestamped PNG filename.
func (e *Exporter) GenerateFilename() string {
	return fmt.Sprintf("netviz_%s.png", e.now().Format("2006-01-02_15-04-05"))
}

// Export renders and writes one figure, returning the written path. Zero
// Scale and Supersample fall back to the exporter defaults.
func (e *Exporter) Export(filename string, opts Options) (string, error) {
	start := e.now()
	if filename == "" {
		filename = e.GenerateFilename()
	}
	if !filepath.IsAbs(filename) && e.cfg.Dir != "" {
		filename = filepath.Join(e.cfg.Dir, filename)
	}

	format, err := FormatOf(filename)
	if err == nil {
		err = e.write(filename, format, opts)
	} else {
		format = "unknown"
	}
	e.cfg.Metrics.RecordExport(format, err, e.now().Sub(start))
	if err != nil {
		return "", &Error{Filename: filename, Err: err}
	}
	return filename, nil
}

func (e *Exporter) write(filename, format string, opts Options) error {
	if opts.Scale == 0 {
		opts.Scale = e.cfg.Scale
	}
	if opts.Supersample == 0 {
		opts.Supersample = e.cfg.Supersample
	}

	cw, ch := e.src.CanvasSize()
	size, err := Plan(opts, cw, ch)
	if err != nil {
		return err
	}

	bg := e.src.Background()
	if opts.Background != nil {
		bg = *opts.Background
	}

	pixels, err := e.src.Capture(size.TargetWidth, size.TargetHeight, bg)
	if err != nil {
		return fmt.Errorf("capturing %dx%d: %w", size.TargetWidth, size.TargetHeight, err)
	}
	img, err := FromPixels(pixels, size.TargetWidth, size.TargetHeight)
	if err != nil {
		return err
	}
	if size.Supersampled() {
		img = Downsample(img, size.Width, size.Height)
	}

	var buf bytes.Buffer
	if err := Encode(&buf, img, format); err != nil {
		return fmt.Errorf("encoding %s: %w", format, err)
	}
	if buf.Len() == 0 {
		return fmt.Errorf("%s encoder produced no data", format)
	}

	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating output dir: %w", err)
		}
	}
	if err := os.WriteFile(filename, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("writing file: %w", err)
	}

	e.log.Info("figure exported",
		zap.String("file", filename),
		zap.String("format", format),
		zap.Int("width", size.Width),
		zap.Int("height", size.Height),
		zap.Int("target_width", size.TargetWidth),
		zap.Int("target_height", size.TargetHeight),
	)
	return nil
}
