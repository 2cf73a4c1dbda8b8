package imaging

import (
	"image"
	"image/draw"

	"github.com/anthonynsimon/bild/adjust"
	"github.com/anthonynsimon/bild/effect"
	"github.com/disintegration/imaging"
)

// OCR surface tuning. Contrast and brightness are relative changes in bild's
// -1..1 range.
const (
	ocrContrastBoost   = 0.3
	ocrBrightnessBoost = 0.1
	ocrSharpenSigma    = 1.0
)

// RenderForOCR draws the raster onto a new grayscale surface with contrast
// and brightness boosted for text recognition. With sharpen set, an unsharp
// pass runs first. The raster itself is not touched.
func RenderForOCR(r *Raster, sharpen bool) *image.Gray {
	var img image.Image = r.Image()
	if sharpen {
		img = imaging.Sharpen(img, ocrSharpenSigma)
	}
	boosted := adjust.Contrast(img, ocrContrastBoost)
	boosted = adjust.Brightness(boosted, ocrBrightnessBoost)
	// bild returns gray levels in an RGBA buffer.
	rgba := effect.Grayscale(boosted)
	gray := image.NewGray(rgba.Bounds())
	draw.Draw(gray, gray.Bounds(), rgba, rgba.Bounds().Min, draw.Src)
	return gray
}
