package export

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/Faultbox/netviz/internal/metrics"
)

func TestPlan(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		cw, ch  int
		want    Size
		wantErr bool
	}{
		{"canvas default", Options{Supersample: 1}, 640, 480, Size{640, 480, 640, 480}, false},
		{"default supersample", Options{}, 100, 50, Size{100, 50, 400, 200}, false},
		{"width only at 2:1", Options{Width: 800}, 1600, 800, Size{800, 400, 3200, 1600}, false},
		{"width only scaled", Options{Width: 800, Scale: 2, Supersample: 2}, 1600, 800, Size{1600, 800, 3200, 1600}, false},
		{"height only", Options{Height: 300, Supersample: 1}, 400, 300, Size{400, 300, 400, 300}, false},
		{"height rounds", Options{Height: 100, Supersample: 1}, 1000, 333, Size{300, 100, 300, 100}, false},
		{"both given", Options{Width: 50, Height: 70, Supersample: 1}, 400, 300, Size{50, 70, 50, 70}, false},
		{"fractional scale", Options{Width: 101, Height: 51, Scale: 0.5, Supersample: 3}, 10, 10, Size{51, 26, 152, 77}, false},
		{"empty canvas", Options{}, 0, 100, Size{}, true},
		{"negative width", Options{Width: -1}, 100, 100, Size{}, true},
		{"supersample below one", Options{Supersample: 0.5}, 100, 100, Size{}, true},
		{"too large", Options{Width: 10000, Supersample: 4}, 100, 100, Size{}, true},
	}

	for _, tt := range tests {
		got, err := Plan(tt.opts, tt.cw, tt.ch)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidOptions) {
				t.Errorf("%s: got %v, want ErrInvalidOptions", tt.name, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("%s: unexpected error %v", tt.name, err)
			continue
		}
		if got != tt.want {
			t.Errorf("%s: got %+v, want %+v", tt.name, got, tt.want)
		}
	}
}

func TestFormatOf(t *testing.T) {
	tests := []struct {
		name, want string
	}{
		{"a.png", FormatPNG},
		{"b.JPG", FormatJPEG},
		{"c.jpeg", FormatJPEG},
		{"dir/d.svg", FormatSVG},
	}
	for _, tt := range tests {
		got, err := FormatOf(tt.name)
		if err != nil || got != tt.want {
			t.Errorf("FormatOf(%q): got %q, %v, want %q", tt.name, got, err, tt.want)
		}
	}
	if _, err := FormatOf("e.gif"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("FormatOf(gif): got %v, want ErrUnsupportedFormat", err)
	}
}

func TestFromPixelsFlips(t *testing.T) {
	// 1x3, bottom row first: rows 10, 20, 30
	pixels := []byte{
		10, 0, 0, 255,
		20, 0, 0, 255,
		30, 0, 0, 255,
	}
	img, err := FromPixels(pixels, 1, 3)
	if err != nil {
		t.Fatalf("FromPixels: %v", err)
	}
	for y, want := range []uint8{30, 20, 10} {
		if got := img.NRGBAAt(0, y).R; got != want {
			t.Errorf("row %d: got %d, want %d", y, got, want)
		}
	}

	if _, err := FromPixels(pixels, 2, 2); err == nil {
		t.Errorf("FromPixels with wrong size: got nil error")
	}
}

type fakeSource struct {
	w, h     int
	bg       [4]float32
	captured [2]int
	gotBg    [4]float32
	empty    bool
}

func (f *fakeSource) CanvasSize() (int, int)  { return f.w, f.h }
func (f *fakeSource) Background() [4]float32 { return f.bg }

func (f *fakeSource) Capture(w, h int, bg [4]float32) ([]byte, error) {
	f.captured = [2]int{w, h}
	f.gotBg = bg
	if f.empty {
		return nil, nil
	}
	pixels := make([]byte, w*h*4)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := (y*w + x) * 4
			pixels[i] = byte(255 * bg[0])
			pixels[i+1] = byte(y)
			pixels[i+3] = 255
		}
	}
	return pixels, nil
}

func TestExportPNG(t *testing.T) {
	dir := t.TempDir()
	src := &fakeSource{w: 40, h: 20, bg: [4]float32{0.5, 0.5, 0.5, 1}}
	reg := metrics.NewRegistry()
	e := New(src, Config{Dir: dir, Scale: 1, Supersample: 4, Metrics: reg})

	path, err := e.Export("fig.png", Options{Width: 20})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if path != filepath.Join(dir, "fig.png") {
		t.Errorf("path: got %q", path)
	}
	if src.captured != [2]int{80, 40} {
		t.Errorf("capture size: got %v, want [80 40]", src.captured)
	}
	if src.gotBg != src.bg {
		t.Errorf("background: got %v, want %v", src.gotBg, src.bg)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("png.Decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 20 || b.Dy() != 10 {
		t.Errorf("image size: got %dx%d, want 20x10", b.Dx(), b.Dy())
	}

	if got := testutil.ToFloat64(reg.ExportsTotal.WithLabelValues(FormatPNG, "ok")); got != 1 {
		t.Errorf("exports ok: got %v, want 1", got)
	}
}

func TestExportBackgroundOverride(t *testing.T) {
	src := &fakeSource{w: 4, h: 4, bg: [4]float32{0.5, 0.5, 0.5, 1}}
	e := New(src, Config{Dir: t.TempDir()})

	white := [4]float32{1, 1, 1, 1}
	if _, err := e.Export("w.png", Options{Supersample: 1, Background: &white}); err != nil {
		t.Fatalf("Export: %v", err)
	}
	if src.gotBg != white {
		t.Errorf("background: got %v, want %v", src.gotBg, white)
	}
}

func TestExportJPEG(t *testing.T) {
	src := &fakeSource{w: 16, h: 8}
	e := New(src, Config{Dir: t.TempDir()})

	path, err := e.Export("fig.jpg", Options{Supersample: 2})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("jpeg.Decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 16 || b.Dy() != 8 {
		t.Errorf("image size: got %dx%d, want 16x8", b.Dx(), b.Dy())
	}
}

func TestExportSVG(t *testing.T) {
	src := &fakeSource{w: 10, h: 5}
	e := New(src, Config{Dir: t.TempDir()})

	path, err := e.Export("fig.svg", Options{Supersample: 1})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	doc := string(data)
	if !strings.HasPrefix(doc, "<svg") || !strings.Contains(doc, `width="10" height="5"`) {
		t.Errorf("svg header: got %.120s", doc)
	}

	m := regexp.MustCompile(`data:image/png;base64,([A-Za-z0-9+/=]+)`).FindStringSubmatch(doc)
	if m == nil {
		t.Fatalf("no embedded png")
	}
	raw, err := base64.StdEncoding.DecodeString(m[1])
	if err != nil {
		t.Fatalf("base64: %v", err)
	}
	if _, err := png.Decode(bytes.NewReader(raw)); err != nil {
		t.Errorf("embedded png: %v", err)
	}
}

func TestExportFailures(t *testing.T) {
	reg := metrics.NewRegistry()

	tests := []struct {
		name     string
		src      *fakeSource
		filename string
	}{
		{"empty capture", &fakeSource{w: 4, h: 4, empty: true}, "a.png"},
		{"unknown format", &fakeSource{w: 4, h: 4}, "a.gif"},
		{"empty canvas", &fakeSource{}, "a.png"},
	}

	for _, tt := range tests {
		e := New(tt.src, Config{Dir: t.TempDir(), Metrics: reg})
		_, err := e.Export(tt.filename, Options{Supersample: 1})
		if !errors.Is(err, ErrExportFailure) {
			t.Errorf("%s: got %v, want ErrExportFailure", tt.name, err)
		}
		var xerr *Error
		if !errors.As(err, &xerr) || !strings.HasSuffix(xerr.Filename, tt.filename) {
			t.Errorf("%s: got %v, want *Error for %s", tt.name, err, tt.filename)
		}
	}

	if got := testutil.ToFloat64(reg.ExportsTotal.WithLabelValues(FormatPNG, "error")); got != 2 {
		t.Errorf("png errors: got %v, want 2", got)
	}
}

func TestExportWriteFailure(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	if err := os.WriteFile(blocker, []byte("x"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	e := New(&fakeSource{w: 2, h: 2}, Config{})

	_, err := e.Export(filepath.Join(blocker, "out.png"), Options{Supersample: 1})
	if !errors.Is(err, ErrExportFailure) {
		t.Errorf("got %v, want ErrExportFailure", err)
	}
}

func TestGenerateFilename(t *testing.T) {
	e := New(&fakeSource{}, Config{})
	if name := e.GenerateFilename(); !strings.HasPrefix(name, "netviz_") || filepath.Ext(name) != ".png" {
		t.Errorf("GenerateFilename: got %q", name)
	}
}
