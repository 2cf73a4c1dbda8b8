package ocr

import (
	"context"
	"errors"
	"image"
	"sync/atomic"
	"time"

	"github.com/ironsheep/blueprint-vision/internal/imaging"
)

type fakeEngine struct {
	lines []Line
	err   error
	delay time.Duration
	calls atomic.Int32

	versions atomic.Int32
}

func (f *fakeEngine) Recognize(ctx context.Context, img image.Image) ([]Line, error) {
	f.calls.Add(1)
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.lines, f.err
}

func (f *fakeEngine) Version() string {
	f.versions.Add(1)
	return "fake-1.0"
}

func (f *fakeEngine) Close() error { return nil }

type fakeProvider struct {
	engine Engine
	err    error
	delay  time.Duration
	opens  atomic.Int32
}

func (p *fakeProvider) Name() string { return "fake" }

func (p *fakeProvider) Open(ctx context.Context) (Engine, error) {
	p.opens.Add(1)
	time.Sleep(p.delay)
	if p.err != nil {
		return nil, p.err
	}
	return p.engine, nil
}

var errNoLibrary = errors.New("libtesseract not found")

func whiteRaster(width, height int) *imaging.Raster {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	return imaging.NewRaster(img)
}
