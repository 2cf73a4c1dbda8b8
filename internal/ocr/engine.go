package ocr

import (
	"context"
	"image"
)

// Bounds represents a rectangular bounding box in pixel coordinates.
type Bounds struct {
	X1 int `json:"x1"` // Left edge
	Y1 int `json:"y1"` // Top edge
	X2 int `json:"x2"` // Right edge
	Y2 int `json:"y2"` // Bottom edge
}

// Line is one recognized line of text.
type Line struct {
	Text string

	// Confidence is the engine's score on a 0-100 scale.
	Confidence float64

	Bounds Bounds
}

// Engine recognizes text on a rendered surface. Implementations must honor
// ctx cancellation and be safe for concurrent use.
type Engine interface {
	Recognize(ctx context.Context, img image.Image) ([]Line, error)
	Version() string
	Close() error
}

// Provider opens an Engine. Open is called at most once per Capability.
type Provider interface {
	Name() string
	Open(ctx context.Context) (Engine, error)
}
