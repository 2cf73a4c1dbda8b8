package detection

import (
	"math"

	"github.com/ironsheep/blueprint-vision/internal/imaging"
)

// QualityScores are 0-100 image quality metrics.
type QualityScores struct {
	ImageClarity    int `json:"image_clarity"`
	TextReadability int `json:"text_readability"`
	LineDefinition  int `json:"line_definition"`
	OverallScore    int `json:"overall_score"`
}

// AssessQuality samples the raster on a grid of step
// max(1, floor(sqrt(width*height)/100)), starting at the origin.
//
// Per sample it measures contrast |L-128|, sharpness as the largest luminance
// difference to an orthogonal neighbor, and channel noise
// |R-G|+|G-B|+|B-R|. The means map onto scores:
//
//	clarity     = meanContrast / 1.5
//	readability = meanSharpness / 3
//	definition  = 100 - meanNoise/8
//	overall     = mean of the three
//
// Each score is clamped to [0, 100] and rounded.
//
// Parameters:
//   - r: The raster to sample. Neighbors outside the image are skipped.
//
// Returns:
//   - *QualityScores: The four scores. Identical rasters always produce
//     identical scores.
func AssessQuality(r *imaging.Raster) *QualityScores {
	step := int(math.Max(1, math.Floor(math.Sqrt(float64(r.Area()))/100)))

	var samples int
	var contrastSum, sharpnessSum, noiseSum float64
	for y := 0; y < r.Height; y += step {
		for x := 0; x < r.Width; x += step {
			l := r.Luminance(x, y)
			contrastSum += math.Abs(l - 128)
			sharpnessSum += sharpness(r, x, y, l)

			cr, cg, cb := r.RGB(x, y)
			noiseSum += absDiff(cr, cg) + absDiff(cg, cb) + absDiff(cb, cr)
			samples++
		}
	}

	if samples == 0 {
		return &QualityScores{}
	}
	n := float64(samples)

	clarity := clampScore(contrastSum / n / 1.5)
	readability := clampScore(sharpnessSum / n / 3)
	definition := clampScore(100 - noiseSum/n/8)
	overall := int(math.Round(float64(clarity+readability+definition) / 3))

	return &QualityScores{
		ImageClarity:    clarity,
		TextReadability: readability,
		LineDefinition:  definition,
		OverallScore:    overall,
	}
}

func sharpness(r *imaging.Raster, x, y int, l float64) float64 {
	var best float64
	check := func(nx, ny int) {
		if nx < 0 || ny < 0 || nx >= r.Width || ny >= r.Height {
			return
		}
		if d := math.Abs(l - r.Luminance(nx, ny)); d > best {
			best = d
		}
	}
	check(x-1, y)
	check(x+1, y)
	check(x, y-1)
	check(x, y+1)
	return best
}

func absDiff(a, b uint8) float64 {
	if a > b {
		return float64(a - b)
	}
	return float64(b - a)
}

func clampScore(v float64) int {
	return clampInt(int(math.Round(v)), 0, 100)
}
