package ocr

import (
	"context"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"
	"unicode"

	apperrors "github.com/ironsheep/blueprint-vision/internal/errors"
	"github.com/ironsheep/blueprint-vision/internal/imaging"
)

// Category classifies a text region.
type Category string

const (
	CategoryRoomLabel Category = "room_label"
	CategoryDimension Category = "dimension"
	CategoryNote      Category = "note"
	CategoryTitle     Category = "title"
)

// Summary sources.
const (
	SourceOCR       = "ocr"
	SourceEstimated = "estimated"
)

// EstimatedConfidence is the confidence reported by the estimated path.
const EstimatedConfidence = 35

// FallbackRoomLabels is the ordered list the estimated path draws labels from.
var FallbackRoomLabels = []string{
	"Living Room", "Kitchen", "Bedroom", "Bathroom", "Dining Room", "Office", "Garage",
}

// roomWords are matched case-insensitively at the start of a line.
var roomWords = []string{
	"living", "kitchen", "bedroom", "bed", "bathroom", "bath", "dining", "office",
	"garage", "closet", "laundry", "hall", "foyer", "entry", "family", "master",
	"great room", "study", "den", "pantry", "porch", "patio", "utility", "storage",
	"mud", "powder", "guest", "nursery", "open", "lounge", "wc", "toilet",
	"balcony", "terrace", "basement", "attic", "library", "media", "gym", "suite",
}

var (
	dimensionPattern = regexp.MustCompile(
		`(?i)\d+(?:\.\d+)?\s*(?:'(?:\s*-?\s*\d+(?:\.\d+)?\s*")?|"|ft\b|feet\b|mm\b|cm\b|m\b|in\b)`)

	scalePattern = regexp.MustCompile(
		`(?i)\d+(?:/\d+)?\s*"\s*=\s*\d+\s*'(?:\s*-\s*\d+\s*")?|\b1\s*:\s*\d{1,4}\b`)
)

// TextRegion is one recognized block of text.
type TextRegion struct {
	Text       string   `json:"text"`
	Bounds     Bounds   `json:"bounds"`
	Confidence float64  `json:"confidence"`
	Category   Category `json:"category"`
}

// Summary is the text stage result.
type Summary struct {
	// Count is the number of recognized regions, or the estimated count.
	Count int `json:"count"`

	// RoomCount may exceed len(RoomLabels) on the estimated path.
	RoomCount int `json:"room_count"`

	Confidence float64      `json:"confidence"`
	RoomLabels []string     `json:"room_labels"`
	Dimensions []string     `json:"dimensions"`
	Regions    []TextRegion `json:"regions,omitempty"`
	Scale      string       `json:"scale,omitempty"`
	Source     string       `json:"source"`
}

// Options selects the extraction path.
type Options struct {
	Enabled     bool
	Enhance     bool
	DetectScale bool
}

// Extractor runs the text stage.
type Extractor struct {
	capability *Capability
	timeout    time.Duration
}

// NewExtractor creates an extractor. capability may be nil, in which case
// every extraction is estimated.
func NewExtractor(capability *Capability, timeout time.Duration) *Extractor {
	return &Extractor{capability: capability, timeout: timeout}
}

// Extract recognizes text on the raster, or estimates it.
//
// The returned summary is never nil. When it was estimated because OCR was
// unavailable, failed or timed out, the error says why; disabling OCR is not
// an error.
//
// Parameters:
//   - ctx: Bounds the wait for engine initialization and recognition. The
//     recognition is further limited by the extractor's timeout.
//   - r: The raster to read. An enhanced grayscale copy is handed to the
//     engine; r itself is not modified.
//   - opts: Enabled, Enhance (sharpen before recognition) and DetectScale.
//
// Returns:
//   - *Summary: Recognized regions with Source "ocr", or the area-based
//     estimate with Source "estimated" and confidence 35.
//   - error: Nil on success or when OCR is disabled.
//
// # Errors
//
//   - ocr_unavailable: no capability, engine failed to initialize, or the
//     engine reported an error
//   - ocr_timeout: recognition exceeded the timeout
func (e *Extractor) Extract(ctx context.Context, r *imaging.Raster, opts Options) (*Summary, error) {
	if !opts.Enabled {
		return Estimate(r.Area()), nil
	}
	if e.capability == nil {
		return Estimate(r.Area()), apperrors.NewOCRUnavailableError("no OCR engine configured", nil)
	}

	engine, err := e.capability.TryInitialize(ctx)
	if err != nil {
		return Estimate(r.Area()), err
	}

	lines, err := e.recognize(ctx, engine, r, opts.Enhance)
	if err != nil {
		return Estimate(r.Area()), err
	}
	return Summarize(lines, opts.DetectScale), nil
}

func (e *Extractor) recognize(ctx context.Context, engine Engine, r *imaging.Raster, enhance bool) ([]Line, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	surface := imaging.RenderForOCR(r, enhance)
	lines, err := engine.Recognize(ctx, surface)
	if err == nil {
		return lines, nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return nil, apperrors.NewOCRTimeoutError(
			fmt.Sprintf("recognition did not finish within %s", e.timeout), err)
	}
	if apperrors.IsType(err, apperrors.ErrorTypeOCRTimeout) || apperrors.IsType(err, apperrors.ErrorTypeOCRUnavailable) {
		return nil, err
	}
	return nil, apperrors.NewOCRUnavailableError("recognition failed", err)
}

// Estimate builds the heuristic summary for a raster of the given area:
//
//	count = max(3, floor(min(area/100000, 5) * 8))
//	rooms = max(1, floor(count/3))
//
// Labels are the first min(rooms, 7) entries of FallbackRoomLabels.
func Estimate(area int) *Summary {
	count := int(math.Max(3, math.Floor(math.Min(float64(area)/100000, 5)*8)))
	rooms := count / 3
	if rooms < 1 {
		rooms = 1
	}

	n := rooms
	if n > len(FallbackRoomLabels) {
		n = len(FallbackRoomLabels)
	}

	return &Summary{
		Count:      count,
		RoomCount:  rooms,
		Confidence: EstimatedConfidence,
		RoomLabels: append([]string(nil), FallbackRoomLabels[:n]...),
		Dimensions: []string{},
		Source:     SourceEstimated,
	}
}

// Summarize categorizes recognized lines. Blank lines are dropped, room
// labels and dimensions are deduplicated case-insensitively in order of first
// appearance, and confidence is the mean line confidence clamped to [0, 100].
func Summarize(lines []Line, detectScale bool) *Summary {
	s := &Summary{
		RoomLabels: []string{},
		Dimensions: []string{},
		Regions:    []TextRegion{},
		Source:     SourceOCR,
	}
	seenRooms := make(map[string]bool)
	seenDims := make(map[string]bool)
	var confidenceSum float64

	for _, line := range lines {
		text := strings.Join(strings.Fields(line.Text), " ")
		if text == "" {
			continue
		}
		confidenceSum += line.Confidence

		scale := scalePattern.FindString(text)
		if detectScale && scale != "" && s.Scale == "" {
			s.Scale = strings.Join(strings.Fields(scale), " ")
		}

		var dims []string
		if scale == "" {
			dims = dimensionPattern.FindAllString(text, -1)
		}
		for _, d := range dims {
			d = strings.Join(strings.Fields(d), " ")
			if key := strings.ToLower(d); !seenDims[key] {
				seenDims[key] = true
				s.Dimensions = append(s.Dimensions, d)
			}
		}

		category := categorize(text, scale != "", len(dims) > 0)
		if category == CategoryRoomLabel {
			label := roomLabel(text)
			if key := strings.ToLower(label); !seenRooms[key] {
				seenRooms[key] = true
				s.RoomLabels = append(s.RoomLabels, label)
			}
		}

		s.Regions = append(s.Regions, TextRegion{
			Text:       text,
			Bounds:     line.Bounds,
			Confidence: line.Confidence,
			Category:   category,
		})
	}

	s.Count = len(s.Regions)
	s.RoomCount = len(s.RoomLabels)
	if s.Count > 0 {
		s.Confidence = math.Max(0, math.Min(100, confidenceSum/float64(s.Count)))
	}
	return s
}

func categorize(text string, hasScale, hasDimension bool) Category {
	switch {
	case hasScale:
		return CategoryNote
	case isRoomLabel(text):
		return CategoryRoomLabel
	case hasDimension:
		return CategoryDimension
	case isTitle(text):
		return CategoryTitle
	}
	return CategoryNote
}

// boundedRoomWords must end at a word boundary; as bare prefixes they would
// match ordinary words such as "density".
var boundedRoomWords = map[string]bool{"den": true, "wc": true}

// isRoomLabel reports whether text starts with a room word, ignoring case.
// Plurals and compounds such as "BEDROOMS" or "Kitchenette" match.
func isRoomLabel(text string) bool {
	lower := strings.ToLower(text)
	for _, word := range roomWords {
		if !strings.HasPrefix(lower, word) {
			continue
		}
		if !boundedRoomWords[word] {
			return true
		}
		rest := lower[len(word):]
		if rest == "" || !unicode.IsLetter(rune(rest[0])) {
			return true
		}
	}
	return false
}

// roomLabel strips dimension strings from a room line, "KITCHEN 12' x 14'"
// becomes "KITCHEN".
func roomLabel(text string) string {
	fields := strings.Fields(dimensionPattern.ReplaceAllString(text, " "))
	for len(fields) > 0 && labelSeparators[strings.ToLower(fields[len(fields)-1])] {
		fields = fields[:len(fields)-1]
	}
	if len(fields) == 0 {
		return text
	}
	return strings.Join(fields, " ")
}

var labelSeparators = map[string]bool{"x": true, "×": true, "by": true, "-": true, ",": true, ":": true, "@": true}

func isTitle(text string) bool {
	hasLetter := strings.IndexFunc(text, unicode.IsLetter) >= 0
	return hasLetter && strings.ToUpper(text) == text && len(strings.Fields(text)) >= 2
}
