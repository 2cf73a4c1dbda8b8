package pipeline

import (
	"time"

	"github.com/ironsheep/blueprint-vision/internal/classify"
	"github.com/ironsheep/blueprint-vision/internal/detection"
	"github.com/ironsheep/blueprint-vision/internal/imaging"
	"github.com/ironsheep/blueprint-vision/internal/ocr"
)

// Options control one analysis run.
type Options struct {
	EnableOCR        bool `json:"enable_ocr"`
	EnhanceImage     bool `json:"enhance_image"`
	DetectScale      bool `json:"detect_scale"`
	ClassifyElements bool `json:"classify_elements"`

	// MaxImageSize bounds the raster on either axis. Zero uses the
	// configured default.
	MaxImageSize int `json:"max_image_size,omitempty"`
}

// DefaultOptions enables every feature.
func DefaultOptions() Options {
	return Options{
		EnableOCR:        true,
		EnhanceImage:     true,
		DetectScale:      true,
		ClassifyElements: true,
	}
}

// ImageSize is the analyzed raster size. Fallback results report the source
// dimensions when the header could be read, 0x0 otherwise.
type ImageSize struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Result is the output of one analysis. It must not be modified once
// returned; cached results are shared between callers.
type Result struct {
	RunID     string    `json:"run_id"`
	FileName  string    `json:"file_name"`
	FileSize  int64     `json:"file_size"`
	ImageSize ImageSize `json:"image_size"`

	Elements       []string                 `json:"elements"`
	Text           *ocr.Summary             `json:"text"`
	Lines          *detection.LineSummary   `json:"lines"`
	Classification *classify.Classification `json:"classification"`
	Quality        *detection.QualityScores `json:"quality"`
	Stats          *detection.BasicStats    `json:"stats,omitempty"`
	ColorScheme    string                   `json:"color_scheme"`
	Palette        []imaging.PaletteColor   `json:"palette,omitempty"`

	Fallback         bool      `json:"fallback"`
	FallbackReason   string    `json:"fallback_reason,omitempty"`
	ProcessingTimeMs int64     `json:"processing_time_ms"`
	AnalyzedAt       time.Time `json:"analyzed_at"`
}

// CacheKey identifies a source file for caching. Options are not part of the
// key.
type CacheKey struct {
	Name         string
	Size         int64
	LastModified int64
}

// KeyFor builds the cache key of a source file.
func KeyFor(src imaging.SourceFile) CacheKey {
	var modified int64
	if !src.LastModified.IsZero() {
		modified = src.LastModified.UnixNano()
	}
	return CacheKey{Name: src.Name, Size: src.Size(), LastModified: modified}
}
