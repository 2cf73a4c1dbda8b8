package detection

import (
	"image"
	"math"

	"github.com/ironsheep/blueprint-vision/internal/imaging"
)

// Orientation of a detected line segment.
const (
	OrientationHorizontal = "horizontal"
	OrientationVertical   = "vertical"
)

// Role is the estimated architectural role of a line segment.
type Role string

const (
	RoleWall      Role = "wall"
	RoleDoor      Role = "door"
	RoleWindow    Role = "window"
	RoleDimension Role = "dimension"
)

const (
	sweepStep          = 3
	maxLinesPerSweep   = 50
	maxTotalLines      = 100
	runEdgeDelta       = 30
	runMaxLuminance    = 150
	minRunFraction     = 0.10
	cornerGridStep     = 10
	cornerSampleOffset = 5
	cornerDelta        = 50
	cornerMinSamples   = 2
	borderFraction     = 0.05
)

// LineSegment is one detected run.
type LineSegment struct {
	Start       image.Point `json:"start"`
	End         image.Point `json:"end"`
	Orientation string      `json:"orientation"`
	Role        Role        `json:"role,omitempty"`
}

// Length returns the segment length in pixels, inclusive of both ends.
func (s LineSegment) Length() int {
	if s.Orientation == OrientationHorizontal {
		return s.End.X - s.Start.X + 1
	}
	return s.End.Y - s.Start.Y + 1
}

// LineSummary holds the estimated element counts plus the raw detections.
type LineSummary struct {
	WallCount       int           `json:"wall_count"`
	DoorCount       int           `json:"door_count"`
	WindowCount     int           `json:"window_count"`
	TotalLines      int           `json:"total_lines"`
	HorizontalLines int           `json:"horizontal_lines"`
	VerticalLines   int           `json:"vertical_lines"`
	Corners         int           `json:"corners"`
	Segments        []LineSegment `json:"segments,omitempty"`
}

// DetectLines sweeps the raster for axis-aligned lines and corners.
//
// # Sweeps
//
// Every 3rd row is walked left to right. A pixel belongs to a run when it is
// darker than 150 and the rows above and below it differ by more than 30; a
// run at least 10% of the image width long is one horizontal line. Columns
// are swept the same way against the left and right neighbors. Each sweep
// stops after 50 lines.
//
// Because the neighbor test looks across the sampled row, a line is found on
// its first or last dark row. Hairlines a single pixel thick are invisible to
// the sweep.
//
// # Corners
//
// A 10px grid is sampled 5px away in the four cardinal directions. A grid
// point whose luminance differs by more than 50 from at least two samples is a
// corner.
//
// # Counts
//
// Wall, door and window counts are estimates derived from the line and corner
// totals, not a mapping of lines to elements. See EstimateCounts.
//
// With classifyRoles set, every segment also gets a role guess from its
// length and its distance to the image border.
func DetectLines(r *imaging.Raster, classifyRoles bool) *LineSummary {
	horizontal := sweepHorizontal(r)
	vertical := sweepVertical(r)
	corners := countCorners(r)

	summary := EstimateCounts(len(horizontal), len(vertical), corners)
	summary.Segments = append(horizontal, vertical...)
	if classifyRoles {
		for i := range summary.Segments {
			summary.Segments[i].Role = estimateRole(summary.Segments[i], r.Width, r.Height)
		}
	}
	return summary
}

// EstimateCounts applies the element-count formulas to raw detection totals:
//
//	total  = min(100, horizontal+vertical)
//	walls  = min(25, max(4, floor(total*0.4)) + floor(corners/4))
//	doors  = clamp(1, 12, floor(total*0.1 + corners*0.05))
//	window = clamp(2, 20, floor(total*0.15 + corners*0.08))
func EstimateCounts(horizontal, vertical, corners int) *LineSummary {
	total := horizontal + vertical
	if total > maxTotalLines {
		total = maxTotalLines
	}
	t, c := float64(total), float64(corners)

	walls := maxInt(4, int(math.Floor(t*0.4))) + corners/4
	if walls > 25 {
		walls = 25
	}

	return &LineSummary{
		WallCount:       walls,
		DoorCount:       clampInt(int(math.Floor(t*0.1+c*0.05)), 1, 12),
		WindowCount:     clampInt(int(math.Floor(t*0.15+c*0.08)), 2, 20),
		TotalLines:      total,
		HorizontalLines: horizontal,
		VerticalLines:   vertical,
		Corners:         corners,
	}
}

func sweepHorizontal(r *imaging.Raster) []LineSegment {
	var lines []LineSegment
	minRun := minRunFraction * float64(r.Width)

	for y := 1; y < r.Height-1 && len(lines) < maxLinesPerSweep; y += sweepStep {
		start := -1
		for x := 0; x <= r.Width; x++ {
			inRun := x < r.Width &&
				r.Luminance(x, y) < runMaxLuminance &&
				math.Abs(r.Luminance(x, y-1)-r.Luminance(x, y+1)) > runEdgeDelta

			if inRun {
				if start < 0 {
					start = x
				}
				continue
			}
			if start >= 0 && float64(x-start) >= minRun {
				lines = append(lines, LineSegment{
					Start:       image.Pt(start, y),
					End:         image.Pt(x-1, y),
					Orientation: OrientationHorizontal,
				})
				if len(lines) == maxLinesPerSweep {
					break
				}
			}
			start = -1
		}
	}
	return lines
}

func sweepVertical(r *imaging.Raster) []LineSegment {
	var lines []LineSegment
	minRun := minRunFraction * float64(r.Height)

	for x := 1; x < r.Width-1 && len(lines) < maxLinesPerSweep; x += sweepStep {
		start := -1
		for y := 0; y <= r.Height; y++ {
			inRun := y < r.Height &&
				r.Luminance(x, y) < runMaxLuminance &&
				math.Abs(r.Luminance(x-1, y)-r.Luminance(x+1, y)) > runEdgeDelta

			if inRun {
				if start < 0 {
					start = y
				}
				continue
			}
			if start >= 0 && float64(y-start) >= minRun {
				lines = append(lines, LineSegment{
					Start:       image.Pt(x, start),
					End:         image.Pt(x, y-1),
					Orientation: OrientationVertical,
				})
				if len(lines) == maxLinesPerSweep {
					break
				}
			}
			start = -1
		}
	}
	return lines
}

func countCorners(r *imaging.Raster) int {
	corners := 0
	for y := cornerSampleOffset; y < r.Height-cornerSampleOffset; y += cornerGridStep {
		for x := cornerSampleOffset; x < r.Width-cornerSampleOffset; x += cornerGridStep {
			center := r.Luminance(x, y)
			samples := [4]float64{
				r.Luminance(x-cornerSampleOffset, y),
				r.Luminance(x+cornerSampleOffset, y),
				r.Luminance(x, y-cornerSampleOffset),
				r.Luminance(x, y+cornerSampleOffset),
			}
			changed := 0
			for _, p := range samples {
				if math.Abs(p-center) > cornerDelta {
					changed++
				}
			}
			if changed >= cornerMinSamples {
				corners++
			}
		}
	}
	return corners
}

// estimateRole guesses a role from geometry alone. Lines hugging the border
// are dimension strings; otherwise long spans are walls, medium spans windows
// and short spans door openings.
func estimateRole(s LineSegment, width, height int) Role {
	var pos, extent, span int
	if s.Orientation == OrientationHorizontal {
		pos, extent, span = s.Start.Y, height, width
	} else {
		pos, extent, span = s.Start.X, width, height
	}

	margin := borderFraction * float64(extent)
	if float64(pos) < margin || float64(extent-1-pos) < margin {
		return RoleDimension
	}

	fraction := float64(s.Length()) / float64(span)
	switch {
	case fraction >= 0.25:
		return RoleWall
	case fraction >= 0.15:
		return RoleWindow
	default:
		return RoleDoor
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
