package classify

import (
	"math"
	"strings"
)

// Drawing types.
const (
	TypeArchitectural = "architectural"
	TypeStructural    = "structural"
	TypeMEP           = "mep"
	TypeSite          = "site"
)

// Architectural styles.
const (
	StyleModern       = "modern"
	StyleTraditional  = "traditional"
	StyleLuxury       = "luxury"
	StyleContemporary = "contemporary"
)

// Complexity tiers.
const (
	ComplexityLow    = "low"
	ComplexityMedium = "medium"
	ComplexityHigh   = "high"
)

const (
	baseConversionMillis = 25000
	maxConversionMillis  = 180000
	bytesPerMB           = 1024 * 1024
)

var typeKeywords = []struct {
	drawingType string
	keywords    []string
}{
	{TypeStructural, []string{"struct", "beam", "foundation", "frame"}},
	{TypeMEP, []string{"mep", "hvac", "electrical", "plumbing"}},
	{TypeSite, []string{"site", "landscape", "plot"}},
}

// Input is what the classifier looks at.
type Input struct {
	FileName      string
	FileSize      int64
	TextCount     int
	RoomCount     int
	RoomLabels    []string
	OCRConfidence float64
}

// Classification describes the drawing.
type Classification struct {
	DrawingType             string `json:"drawing_type"`
	ArchitecturalStyle      string `json:"architectural_style"`
	Complexity              string `json:"complexity"`
	EstimatedConversionTime int    `json:"estimated_conversion_time_ms"`
	Scale                   string `json:"scale,omitempty"`
}

// Classify applies every rule to in.
func Classify(in Input) *Classification {
	drawingType := DrawingType(in.FileName)
	complexity := Complexity(in.TextCount, in.RoomCount, in.FileSize)
	return &Classification{
		DrawingType:             drawingType,
		ArchitecturalStyle:      Style(in.FileName, in.RoomCount, in.RoomLabels),
		Complexity:              complexity,
		EstimatedConversionTime: ConversionTime(complexity, drawingType, in.FileSize, in.OCRConfidence),
	}
}

// DrawingType matches filename keywords case-insensitively. Structural
// keywords win over MEP, MEP over site.
func DrawingType(fileName string) string {
	name := strings.ToLower(fileName)
	for _, group := range typeKeywords {
		for _, kw := range group.keywords {
			if strings.Contains(name, kw) {
				return group.drawingType
			}
		}
	}
	return TypeArchitectural
}

// Style checks, in order: modern (at most 4 rooms, or an open plan or great
// room label), traditional (more than 8 rooms), luxury (villa or mansion in
// the filename), contemporary.
func Style(fileName string, roomCount int, labels []string) string {
	if roomCount <= 4 || hasOpenPlanLabel(labels) {
		return StyleModern
	}
	if roomCount > 8 {
		return StyleTraditional
	}
	name := strings.ToLower(fileName)
	if strings.Contains(name, "villa") || strings.Contains(name, "mansion") {
		return StyleLuxury
	}
	return StyleContemporary
}

func hasOpenPlanLabel(labels []string) bool {
	for _, label := range labels {
		l := strings.ToLower(label)
		if strings.Contains(l, "open") || strings.Contains(l, "great room") {
			return true
		}
	}
	return false
}

// Score is textCount + 2*roomCount + min(fileSizeMB, 10).
func Score(textCount, roomCount int, fileSize int64) float64 {
	return float64(textCount) + 2*float64(roomCount) + fileComplexity(fileSize)
}

// Complexity buckets Score: below 20 is low, below 40 medium.
func Complexity(textCount, roomCount int, fileSize int64) string {
	score := Score(textCount, roomCount, fileSize)
	switch {
	case score < 20:
		return ComplexityLow
	case score < 40:
		return ComplexityMedium
	}
	return ComplexityHigh
}

// ConversionTime estimates the downstream conversion time in milliseconds.
func ConversionTime(complexity, drawingType string, fileSize int64, ocrConfidence float64) int {
	ms := float64(baseConversionMillis)

	switch complexity {
	case ComplexityLow:
		ms *= 0.8
	case ComplexityMedium:
		ms *= 1.2
	default:
		ms *= 1.8
	}

	if drawingType != TypeArchitectural {
		ms *= 1.3
	}

	ms *= math.Max(0.8, math.Min(2.0, fileComplexity(fileSize)/5))

	if ocrConfidence > 70 {
		ms *= 0.9
	} else {
		ms *= 1.1
	}

	return int(math.Min(maxConversionMillis, math.Round(ms)))
}

func fileComplexity(fileSize int64) float64 {
	return math.Min(float64(fileSize)/bytesPerMB, 10)
}
