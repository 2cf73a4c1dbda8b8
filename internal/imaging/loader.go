package imaging

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"math"
	"time"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"  // Register BMP format decoder
	_ "golang.org/x/image/tiff" // Register TIFF format decoder
	_ "golang.org/x/image/webp" // Register WebP format decoder

	apperrors "github.com/ironsheep/blueprint-vision/internal/errors"
)

// MinRasterDimension is the smallest width or height a downscaled raster may
// have.
const MinRasterDimension = 100

// Raster is a decoded drawing as row-major RGBA bytes.
//
// Pix holds Width*Height*4 bytes; the pixel at (x, y) starts at
// (y*Width + x) * 4. A Raster must not be modified once created.
type Raster struct {
	Width  int
	Height int
	Pix    []uint8
}

// NewRaster wraps an image as a Raster, flattening any transparency onto a
// white background.
func NewRaster(img image.Image) *Raster {
	bounds := img.Bounds()
	paper := imaging.New(bounds.Dx(), bounds.Dy(), color.White)
	flat := imaging.Overlay(paper, img, image.Pt(0, 0), 1.0)
	return &Raster{
		Width:  flat.Rect.Dx(),
		Height: flat.Rect.Dy(),
		Pix:    flat.Pix,
	}
}

// RGB returns the color components at (x, y). Coordinates must be in range.
func (r *Raster) RGB(x, y int) (uint8, uint8, uint8) {
	i := (y*r.Width + x) * 4
	return r.Pix[i], r.Pix[i+1], r.Pix[i+2]
}

// Luminance returns the perceptual brightness (0-255) at (x, y).
func (r *Raster) Luminance(x, y int) float64 {
	i := (y*r.Width + x) * 4
	return Luminance(r.Pix[i], r.Pix[i+1], r.Pix[i+2])
}

// Area returns Width*Height.
func (r *Raster) Area() int {
	return r.Width * r.Height
}

// Image returns a read-only image.Image view sharing the raster's pixels.
func (r *Raster) Image() image.Image {
	return &image.NRGBA{
		Pix:    r.Pix,
		Stride: r.Width * 4,
		Rect:   image.Rect(0, 0, r.Width, r.Height),
	}
}

// Luminance computes BT.601 luminance from 8-bit components.
func Luminance(r, g, b uint8) float64 {
	return 0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)
}

// RasterOptions bounds a Rasterize call.
type RasterOptions struct {
	// MaxSize is the largest allowed width or height. Larger images are
	// scaled down uniformly. Zero disables scaling.
	MaxSize int

	// Timeout bounds decoding and scaling. Zero means no time box beyond ctx.
	Timeout time.Duration

	// MaxPixels caps width*height as declared by the image header. Decoders
	// allocate the full buffer up front, so oversized headers are rejected
	// before decoding. Zero disables the check.
	MaxPixels int64
}

type rasterResult struct {
	raster *Raster
	err    error
}

// Rasterize decodes the source into a Raster.
//
// # Scaling
//
// When either axis exceeds MaxSize, both axes are multiplied by
// min(MaxSize/width, MaxSize/height) and floored, preserving the aspect ratio.
// A scaled result narrower or shorter than MinRasterDimension fails with a
// load error carrying ReasonTooSmallAfterScaling. Images that need no scaling
// are accepted at any size.
//
// # Errors
//
//   - decode_timeout: decoding did not finish within Timeout
//   - load: the bytes could not be decoded, the header exceeds MaxPixels,
//     or scaling hit the floor
//   - unknown_stage: a decoder panicked
//
// All wrap the underlying cause.
func Rasterize(ctx context.Context, src SourceFile, opts RasterOptions) (*Raster, error) {
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	done := make(chan rasterResult, 1)
	go func() {
		// Panics in third-party decoders would otherwise kill the process.
		defer func() {
			if rec := recover(); rec != nil {
				done <- rasterResult{err: apperrors.NewUnknownStageError("rasterize",
					fmt.Sprintf("decoder panicked on %s", src.Name), fmt.Errorf("panic: %v", rec))}
			}
		}()
		r, err := decodeAndScale(src.Data, opts.MaxSize, opts.MaxPixels)
		done <- rasterResult{raster: r, err: err}
	}()

	select {
	case res := <-done:
		return res.raster, res.err
	case <-ctx.Done():
		return nil, apperrors.NewDecodeTimeoutError(
			fmt.Sprintf("decoding %s did not finish in time", src.Name), ctx.Err())
	}
}

func decodeAndScale(data []byte, maxSize int, maxPixels int64) (*Raster, error) {
	if maxPixels > 0 {
		// Unreadable headers fall through to Decode, which reports them.
		if cfg, format, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
			if pixels := int64(cfg.Width) * int64(cfg.Height); pixels > maxPixels {
				return nil, apperrors.NewLoadError(apperrors.ReasonPixelBudgetExceeded,
					fmt.Sprintf("%s header declares %dx%d (%d pixels), limit is %d",
						format, cfg.Width, cfg.Height, pixels, maxPixels), nil)
			}
		}
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, apperrors.NewLoadError("", "failed to decode image", err)
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width <= 0 || height <= 0 {
		return nil, apperrors.NewLoadError("", fmt.Sprintf("decoded %s image has no pixels", format), nil)
	}

	newWidth, newHeight, scaled := ScaledSize(width, height, maxSize)
	if scaled {
		if newWidth < MinRasterDimension || newHeight < MinRasterDimension {
			return nil, apperrors.NewLoadError(apperrors.ReasonTooSmallAfterScaling,
				fmt.Sprintf("%dx%d scales to %dx%d, below %dx%d", width, height,
					newWidth, newHeight, MinRasterDimension, MinRasterDimension), nil)
		}
		img = imaging.Resize(img, newWidth, newHeight, imaging.Lanczos)
	}

	return NewRaster(img), nil
}

// ScaledSize returns the dimensions after fitting width x height within
// maxSize on both axes. scaled is false when no scaling is needed.
func ScaledSize(width, height, maxSize int) (newWidth, newHeight int, scaled bool) {
	if maxSize <= 0 || (width <= maxSize && height <= maxSize) {
		return width, height, false
	}
	ratio := math.Min(float64(maxSize)/float64(width), float64(maxSize)/float64(height))
	newWidth = int(math.Floor(float64(width) * ratio))
	newHeight = int(math.Floor(float64(height) * ratio))
	return newWidth, newHeight, true
}

// DecodeDimensions reads only the image header. It is used to size fallback
// results when full decoding failed.
func DecodeDimensions(data []byte) (int, int, bool) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil || cfg.Width <= 0 || cfg.Height <= 0 {
		return 0, 0, false
	}
	return cfg.Width, cfg.Height, true
}
