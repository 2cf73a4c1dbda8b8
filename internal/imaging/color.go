package imaging

import (
	"fmt"
	"sort"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// PaletteColor is a quantized color and its share of the sampled pixels.
type PaletteColor struct {
	Hex        string  `json:"hex"`        // "#RRGGBB" after quantization
	Percentage float64 `json:"percentage"` // share of sampled pixels (0-100)
	Hue        float64 `json:"hue"`        // HSV hue in degrees (0-360)
	Saturation float64 `json:"saturation"` // HSV saturation (0-1)
	Value      float64 `json:"value"`      // HSV value (0-1)
}

// Color scheme labels.
const (
	SchemeCyanotype  = "cyanotype"  // light linework on a blue ground
	SchemeMonochrome = "monochrome" // dark ink on neutral paper
	SchemeColor      = "color"      // anything else
)

// DominantColors returns the count most common colors among pixels sampled
// every stride pixels in both directions.
//
// Components are quantized by dividing by 16 and rounding down, so colors
// within 16 units per component share a bucket: #F0F0F0 and #FAFAFA both
// map to #F0F0F0. Ties are broken by hex string for deterministic output.
func DominantColors(r *Raster, count, stride int) []PaletteColor {
	if stride < 1 {
		stride = 1
	}

	counts := make(map[[3]uint8]int)
	total := 0
	for y := 0; y < r.Height; y += stride {
		for x := 0; x < r.Width; x += stride {
			cr, cg, cb := r.RGB(x, y)
			key := [3]uint8{cr / 16 * 16, cg / 16 * 16, cb / 16 * 16}
			counts[key]++
			total++
		}
	}
	if total == 0 {
		return nil
	}

	palette := make([]PaletteColor, 0, len(counts))
	for key, n := range counts {
		c := colorful.Color{R: float64(key[0]) / 255, G: float64(key[1]) / 255, B: float64(key[2]) / 255}
		h, s, v := c.Hsv()
		palette = append(palette, PaletteColor{
			Hex:        fmt.Sprintf("#%02X%02X%02X", key[0], key[1], key[2]),
			Percentage: float64(n) / float64(total) * 100,
			Hue:        h,
			Saturation: s,
			Value:      v,
		})
	}

	sort.Slice(palette, func(i, j int) bool {
		if palette[i].Percentage != palette[j].Percentage {
			return palette[i].Percentage > palette[j].Percentage
		}
		return palette[i].Hex < palette[j].Hex
	})

	if count > 0 && len(palette) > count {
		palette = palette[:count]
	}
	return palette
}

// ColorScheme labels a drawing by its dominant (background) color.
func ColorScheme(palette []PaletteColor) string {
	if len(palette) == 0 {
		return SchemeMonochrome
	}
	ground := palette[0]
	switch {
	case ground.Saturation >= 0.35 && ground.Hue >= 180 && ground.Hue <= 260:
		return SchemeCyanotype
	case ground.Saturation < 0.15:
		return SchemeMonochrome
	default:
		return SchemeColor
	}
}
