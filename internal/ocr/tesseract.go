//go:build cgo

package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"sync"

	"github.com/otiai10/gosseract/v2"
)

// Tesseract provides engines backed by the native Tesseract library.
type Tesseract struct {
	// Language is the Tesseract language code, "eng" when empty.
	Language string

	// TessdataPrefix overrides the training data directory.
	TessdataPrefix string
}

// Name implements Provider.
func (t Tesseract) Name() string {
	return "gosseract"
}

// Open creates a client and runs a warm-up recognition so that missing
// libraries or training data surface here rather than on the first drawing.
func (t Tesseract) Open(ctx context.Context) (Engine, error) {
	language := t.Language
	if language == "" {
		language = "eng"
	}

	client := gosseract.NewClient()
	if t.TessdataPrefix != "" {
		if err := client.SetTessdataPrefix(t.TessdataPrefix); err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to set tessdata path: %w", err)
		}
	}
	if err := client.SetLanguage(language); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to set language: %w", err)
	}

	engine := &tesseractEngine{client: client, version: client.Version()}
	if _, err := engine.Recognize(ctx, warmupImage()); err != nil {
		client.Close()
		return nil, fmt.Errorf("tesseract warm-up failed: %w", err)
	}
	return engine, nil
}

type tesseractEngine struct {
	// gosseract clients are not safe for concurrent use.
	mu     sync.Mutex
	client *gosseract.Client

	version string
}

type recognizeResult struct {
	lines []Line
	err   error
}

// Recognize returns text lines with their bounding boxes.
//
// Tesseract cannot be interrupted, so on cancellation the call returns
// immediately while the recognition finishes in the background holding the
// client lock.
func (e *tesseractEngine) Recognize(ctx context.Context, img image.Image) ([]Line, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode OCR surface: %w", err)
	}

	done := make(chan recognizeResult, 1)
	go func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		lines, err := e.recognizeLocked(buf.Bytes())
		done <- recognizeResult{lines: lines, err: err}
	}()

	select {
	case res := <-done:
		return res.lines, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (e *tesseractEngine) recognizeLocked(data []byte) ([]Line, error) {
	if err := e.client.SetImageFromBytes(data); err != nil {
		return nil, fmt.Errorf("failed to set image: %w", err)
	}

	boxes, err := e.client.GetBoundingBoxes(gosseract.RIL_TEXTLINE)
	if err != nil {
		return nil, fmt.Errorf("OCR failed: %w", err)
	}

	lines := make([]Line, 0, len(boxes))
	for _, box := range boxes {
		if box.Word == "" {
			continue
		}
		lines = append(lines, Line{
			Text:       box.Word,
			Confidence: box.Confidence,
			Bounds: Bounds{
				X1: box.Box.Min.X,
				Y1: box.Box.Min.Y,
				X2: box.Box.Max.X,
				Y2: box.Box.Max.Y,
			},
		})
	}
	return lines, nil
}

// Version is read once in Open; it never waits for a recognition.
func (e *tesseractEngine) Version() string {
	return e.version
}

func (e *tesseractEngine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.client.Close()
}

func warmupImage() image.Image {
	img := image.NewGray(image.Rect(0, 0, 32, 32))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	return img
}
