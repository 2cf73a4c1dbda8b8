package imaging

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/png"
	"io"
	"math/rand"
	"testing"
)

// panicMagic prefixes data for a registered format whose decoder panics.
const panicMagic = "PANICIMG"

func init() {
	image.RegisterFormat("panicimg", panicMagic,
		func(io.Reader) (image.Image, error) { panic("decoder bug") },
		func(io.Reader) (image.Config, error) {
			return image.Config{ColorModel: color.GrayModel, Width: 200, Height: 200}, nil
		})
}

// pngHeaderOnly returns a PNG signature and IHDR declaring a grayscale image
// of the given size, padded with zeros to size bytes. No pixel data follows.
func pngHeaderOnly(width, height uint32, size int) []byte {
	var buf bytes.Buffer
	buf.WriteString("\x89PNG\r\n\x1a\n")

	ihdr := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdr[0:4], width)
	binary.BigEndian.PutUint32(ihdr[4:8], height)
	ihdr[8] = 8 // bit depth; color type 0 (gray) and the rest stay zero

	binary.Write(&buf, binary.BigEndian, uint32(len(ihdr)))
	crc := crc32.NewIEEE()
	crc.Write([]byte("IHDR"))
	crc.Write(ihdr)
	buf.WriteString("IHDR")
	buf.Write(ihdr)
	binary.Write(&buf, binary.BigEndian, crc.Sum32())

	for buf.Len() < size {
		buf.WriteByte(0)
	}
	return buf.Bytes()
}

// createTestImage creates a solid-color RGBA image.
func createTestImage(width, height int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// createSpeckledImage creates a white image with seeded gray speckle so the
// PNG encoding stays well above the minimum file size.
func createSpeckledImage(width, height int) *image.RGBA {
	rng := rand.New(rand.NewSource(42))
	img := createTestImage(width, height, color.White)
	for i := 0; i < width*height/4; i++ {
		v := uint8(rng.Intn(256))
		img.Set(rng.Intn(width), rng.Intn(height), color.RGBA{v, v, v, 255})
	}
	return img
}

// encodePNG encodes img as PNG bytes.
func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}
	return buf.Bytes()
}
