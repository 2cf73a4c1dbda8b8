package pipeline

import (
	"github.com/ironsheep/blueprint-vision/internal/classify"
	"github.com/ironsheep/blueprint-vision/internal/detection"
	"github.com/ironsheep/blueprint-vision/internal/imaging"
	"github.com/ironsheep/blueprint-vision/internal/ocr"
)

// Fixed values of the fallback result.
const (
	fallbackWalls   = 8
	fallbackDoors   = 3
	fallbackWindows = 6
	fallbackQuality = 50
	unknownScheme   = "unknown"
)

const megabyte = 1024 * 1024

// Fallback builds a result from the source metadata alone. The file size
// picks the complexity tier and room count:
//
//	< 2MB  low     3 rooms
//	< 5MB  medium  5 rooms
//	else   high    8 rooms
//
// Element counts and quality scores are fixed. The same source always
// produces the same result apart from the run metadata.
func Fallback(src imaging.SourceFile) *Result {
	size := src.Size()

	complexity, rooms := classify.ComplexityHigh, 8
	switch {
	case size < 2*megabyte:
		complexity, rooms = classify.ComplexityLow, 3
	case size < 5*megabyte:
		complexity, rooms = classify.ComplexityMedium, 5
	}

	labels := ocr.FallbackRoomLabels
	if rooms < len(labels) {
		labels = labels[:rooms]
	}
	text := &ocr.Summary{
		Count:      rooms * 3,
		RoomCount:  rooms,
		Confidence: ocr.EstimatedConfidence,
		RoomLabels: append([]string(nil), labels...),
		Dimensions: []string{},
		Source:     ocr.SourceEstimated,
	}

	width, height, _ := imaging.DecodeDimensions(src.Data)
	orientation := detection.ViewPlan
	if width > 0 && height > 0 {
		switch aspect := float64(width) / float64(height); {
		case aspect > 1.4:
			orientation = detection.ViewElevation
		case aspect < 0.8:
			orientation = detection.ViewSection
		}
	}

	drawingType := classify.DrawingType(src.Name)

	return &Result{
		FileName:  src.Name,
		FileSize:  size,
		ImageSize: ImageSize{Width: width, Height: height},
		Elements: []string{
			detection.HintWalls, detection.HintDoors, detection.HintWindows, orientation,
		},
		Text: text,
		Lines: &detection.LineSummary{
			WallCount:   fallbackWalls,
			DoorCount:   fallbackDoors,
			WindowCount: fallbackWindows,
			TotalLines:  fallbackWalls + fallbackDoors + fallbackWindows,
		},
		Classification: &classify.Classification{
			DrawingType:             drawingType,
			ArchitecturalStyle:      classify.Style(src.Name, rooms, text.RoomLabels),
			Complexity:              complexity,
			EstimatedConversionTime: classify.ConversionTime(complexity, drawingType, size, ocr.EstimatedConfidence),
		},
		Quality: &detection.QualityScores{
			ImageClarity:    fallbackQuality,
			TextReadability: fallbackQuality,
			LineDefinition:  fallbackQuality,
			OverallScore:    fallbackQuality,
		},
		ColorScheme: unknownScheme,
		Fallback:    true,
	}
}
