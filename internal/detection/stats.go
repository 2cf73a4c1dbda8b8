package detection

import (
	"math"

	"github.com/ironsheep/blueprint-vision/internal/imaging"
)

// Element hint labels.
const (
	HintWalls            = "walls"
	HintDoors            = "doors"
	HintWindows          = "windows"
	HintTextLabels       = "text_labels"
	HintDimensions       = "dimensions"
	HintDetailedDrawings = "detailed_drawings"
	HintFilledAreas      = "filled_areas"
	HintComplexGeometry  = "complex_geometry"

	ViewElevation = "elevation_view"
	ViewSection   = "section_view"
	ViewPlan      = "plan_view"
)

const (
	statsPixelStride = 4
	darkLuminance    = 85
	brightLuminance  = 170
	edgeDelta        = 40
)

// BasicStats is the coarse triage of a drawing.
type BasicStats struct {
	DarkRatio       float64                `json:"dark_ratio"`
	BrightRatio     float64                `json:"bright_ratio"`
	EdgeRatio       float64                `json:"edge_ratio"`
	AverageContrast float64                `json:"average_contrast"`
	AspectRatio     float64                `json:"aspect_ratio"`
	Orientation     string                 `json:"orientation"`
	ElementHints    []string               `json:"element_hints"`
	ColorScheme     string                 `json:"color_scheme"`
	Palette         []imaging.PaletteColor `json:"palette,omitempty"`
}

// AnalyzeBasicStats scans every 4th pixel in row-major order.
//
// Ratios are taken over the sampled pixels: dark means luminance below 85,
// bright above 170, and edge means the pixel directly below differs by more
// than 40. Average contrast is the mean of |L-128|.
//
// The hint list always starts with "walls" and always ends with an
// orientation guess. With classify unset, nothing else is added.
//
// Parameters:
//   - r: The raster to scan. It is only read, so concurrent stages may share it.
//   - classify: Whether to derive the detailed element hints (doors, windows,
//     text labels, dimensions, detailed drawings, filled areas, complex
//     geometry) from the ratios.
//
// Returns:
//   - *BasicStats: The ratios, the hint list, and the dominant palette with its
//     color scheme. Never nil.
//
// # Orientation
//
// Aspect ratio is width/height: above 1.4 is "elevation_view", below 0.8 is
// "section_view", anything else "plan_view".
func AnalyzeBasicStats(r *imaging.Raster, classify bool) *BasicStats {
	total := r.Width * r.Height
	var sampled, dark, bright, edges int
	var contrastSum float64

	for p := 0; p < total; p += statsPixelStride {
		x, y := p%r.Width, p/r.Width
		l := r.Luminance(x, y)
		sampled++

		if l < darkLuminance {
			dark++
		} else if l > brightLuminance {
			bright++
		}
		if y+1 < r.Height && math.Abs(l-r.Luminance(x, y+1)) > edgeDelta {
			edges++
		}
		contrastSum += math.Abs(l - 128)
	}

	stats := &BasicStats{AspectRatio: float64(r.Width) / float64(r.Height)}
	if sampled > 0 {
		n := float64(sampled)
		stats.DarkRatio = float64(dark) / n
		stats.BrightRatio = float64(bright) / n
		stats.EdgeRatio = float64(edges) / n
		stats.AverageContrast = contrastSum / n
	}

	switch {
	case stats.AspectRatio > 1.4:
		stats.Orientation = ViewElevation
	case stats.AspectRatio < 0.8:
		stats.Orientation = ViewSection
	default:
		stats.Orientation = ViewPlan
	}

	stats.ElementHints = elementHints(stats, classify)

	paletteStride := int(math.Max(1, math.Floor(math.Sqrt(float64(total))/100)))
	stats.Palette = imaging.DominantColors(r, 3, paletteStride)
	stats.ColorScheme = imaging.ColorScheme(stats.Palette)

	return stats
}

func elementHints(s *BasicStats, classify bool) []string {
	hints := []string{HintWalls}
	if !classify {
		return append(hints, s.Orientation)
	}

	if s.EdgeRatio > 0.08 {
		hints = append(hints, HintDoors, HintWindows)
	}
	if s.DarkRatio > 0.25 {
		hints = append(hints, HintTextLabels, HintDimensions)
	}
	if s.EdgeRatio > 0.15 {
		hints = append(hints, HintDetailedDrawings)
	}
	if s.BrightRatio < 0.4 {
		hints = append(hints, HintFilledAreas)
	}
	hints = append(hints, s.Orientation)
	if s.EdgeRatio > 0.12 && s.AverageContrast > 60 {
		hints = append(hints, HintComplexGeometry)
	}
	return hints
}
