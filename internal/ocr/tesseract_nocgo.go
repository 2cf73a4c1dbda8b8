//go:build !cgo

package ocr

import (
	"context"
	"errors"
)

// Tesseract is unavailable in builds without cgo.
type Tesseract struct {
	Language       string
	TessdataPrefix string
}

// Name implements Provider.
func (t Tesseract) Name() string {
	return "gosseract (disabled)"
}

// Open always fails.
func (t Tesseract) Open(ctx context.Context) (Engine, error) {
	return nil, errors.New("binary built without cgo, Tesseract is not linked")
}
