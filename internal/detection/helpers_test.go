package detection

import (
	"image"
	"image/color"
	"math/rand"

	"github.com/ironsheep/blueprint-vision/internal/imaging"
)

// createTestImage creates a solid color test image.
func createTestImage(width, height int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// drawHLine draws a 2px thick horizontal line starting at row y.
func drawHLine(img *image.RGBA, y, x0, x1 int) {
	for x := x0; x <= x1; x++ {
		img.Set(x, y, color.Black)
		img.Set(x, y+1, color.Black)
	}
}

// drawVLine draws a 2px thick vertical line starting at column x.
func drawVLine(img *image.RGBA, x, y0, y1 int) {
	for y := y0; y <= y1; y++ {
		img.Set(x, y, color.Black)
		img.Set(x+1, y, color.Black)
	}
}

// fillRect fills [x0,x1) x [y0,y1).
func fillRect(img *image.RGBA, x0, y0, x1, y1 int, c color.Color) {
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			img.Set(x, y, c)
		}
	}
}

// createSpeckledImage scatters dark pixels over white with a fixed seed.
func createSpeckledImage(width, height int) *image.RGBA {
	img := createTestImage(width, height, color.White)
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < width*height/10; i++ {
		img.Set(rng.Intn(width), rng.Intn(height), color.RGBA{
			R: uint8(rng.Intn(120)), G: uint8(rng.Intn(120)), B: uint8(rng.Intn(120)), A: 255,
		})
	}
	return img
}

func raster(img image.Image) *imaging.Raster {
	return imaging.NewRaster(img)
}
