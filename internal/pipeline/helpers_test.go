package pipeline

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"math/rand"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ironsheep/blueprint-vision/internal/config"
	"github.com/ironsheep/blueprint-vision/internal/imaging"
	"github.com/ironsheep/blueprint-vision/internal/logger"
	"github.com/ironsheep/blueprint-vision/internal/observer"
	"github.com/ironsheep/blueprint-vision/internal/ocr"
)

var modTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

// crashMagic prefixes data for a registered format whose decoder panics.
const crashMagic = "CRASHIMG"

func init() {
	image.RegisterFormat("crashimg", crashMagic,
		func(io.Reader) (image.Image, error) { panic("decoder bug") },
		func(io.Reader) (image.Config, error) {
			return image.Config{ColorModel: color.RGBAModel, Width: 640, Height: 320}, nil
		})
}

type countingEngine struct {
	lines []ocr.Line
	calls atomic.Int32
}

func (e *countingEngine) Recognize(ctx context.Context, img image.Image) ([]ocr.Line, error) {
	e.calls.Add(1)
	return e.lines, nil
}

func (e *countingEngine) Version() string { return "test" }
func (e *countingEngine) Close() error    { return nil }

type staticProvider struct {
	engine ocr.Engine
	err    error
}

func (p staticProvider) Name() string { return "static" }

func (p staticProvider) Open(ctx context.Context) (ocr.Engine, error) {
	return p.engine, p.err
}

var errNoOCR = errors.New("ocr not installed")

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestAnalyzer(t *testing.T, cfg *config.Config, opts ...Option) (*Analyzer, *observer.Recorder) {
	t.Helper()
	if cfg == nil {
		cfg = config.Default()
	}
	rec := observer.NewRecorder()
	base := []Option{
		WithLogger(logger.Discard()),
		WithSink(rec),
		WithOCRProvider(staticProvider{err: errNoOCR}),
	}
	a := New(cfg, append(base, opts...)...)
	t.Cleanup(func() { a.Close() })
	return a, rec
}

func whiteImage(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	return img
}

func speckledImage(width, height int) *image.RGBA {
	img := whiteImage(width, height)
	rng := rand.New(rand.NewSource(11))
	for i := 0; i < width*height/8; i++ {
		// Light enough that speckle never breaks a drawn rule.
		v := uint8(100 + rng.Intn(156))
		img.Set(rng.Intn(width), rng.Intn(height), color.RGBA{v, v / 2, v, 255})
	}
	for y := 40; y < height-40; y += 60 {
		for x := 20; x < width-20; x++ {
			img.Set(x, y, color.Black)
			img.Set(x, y+1, color.Black)
		}
	}
	return img
}

// encodePNG encodes without compression so that file sizes are predictable.
func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.NoCompression}
	if err := enc.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}
	return buf.Bytes()
}

func source(name string, data []byte) imaging.SourceFile {
	return imaging.SourceFile{
		Name:         name,
		MediaType:    "image/png",
		Data:         data,
		LastModified: modTime,
	}
}

func noOCR() Options {
	opts := DefaultOptions()
	opts.EnableOCR = false
	return opts
}
