package detection

import (
	"image/color"
	"reflect"
	"testing"
)

func TestAssessQuality(t *testing.T) {
	tests := []struct {
		name string
		c    color.Color
		want QualityScores
	}{
		{"white", color.White, QualityScores{ImageClarity: 85, TextReadability: 0, LineDefinition: 100, OverallScore: 62}},
		{"black", color.Black, QualityScores{ImageClarity: 85, TextReadability: 0, LineDefinition: 100, OverallScore: 62}},
		{"red", color.RGBA{R: 255, A: 255}, QualityScores{ImageClarity: 35, TextReadability: 0, LineDefinition: 36, OverallScore: 24}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AssessQuality(raster(createTestImage(200, 200, tt.c)))
			if *got != tt.want {
				t.Errorf("AssessQuality() = %+v, want %+v", *got, tt.want)
			}
		})
	}
}

func TestAssessQuality_Sharpness(t *testing.T) {
	img := createTestImage(200, 200, color.White)
	for y := 0; y < 200; y += 2 {
		fillRect(img, 0, y, 200, y+1, color.Black)
	}

	got := AssessQuality(raster(img))
	// Every sample sits next to a contrasting row: 255/3 saturates.
	if got.TextReadability != 85 {
		t.Errorf("TextReadability = %d, want 85", got.TextReadability)
	}
}

func TestAssessQuality_BoundsAndDeterminism(t *testing.T) {
	r := raster(createSpeckledImage(640, 480))

	first := AssessQuality(r)
	second := AssessQuality(r)
	if !reflect.DeepEqual(first, second) {
		t.Error("AssessQuality is not deterministic")
	}

	for name, v := range map[string]int{
		"clarity":     first.ImageClarity,
		"readability": first.TextReadability,
		"definition":  first.LineDefinition,
		"overall":     first.OverallScore,
	} {
		if v < 0 || v > 100 {
			t.Errorf("%s = %d out of [0,100]", name, v)
		}
	}
}
