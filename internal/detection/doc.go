// Package detection implements the pixel-level analysis stages that run on a
// rasterized drawing:
//
//   - Basic statistics: stride-sampled luminance and edge ratios that seed a
//     coarse list of element hints and a view orientation guess.
//   - Geometric line detection: horizontal and vertical run sweeps plus a
//     grid corner sampling, turned into bounded wall, door and window estimates.
//   - Quality assessment: contrast, sharpness and channel noise scores.
//
// # Determinism
//
// Every function here is a pure function of the raster: the same pixels
// always produce the same counts and scores. None of them mutate the raster,
// so the pipeline runs them concurrently on one shared buffer.
//
// # Accuracy
//
// The heuristics are deliberately approximate. The element count formulas are
// empirically tuned policy, bounded so that noisy scans cannot produce
// pathological output; they are not a geometric reconstruction.
//
// # Coordinate System
//
// All coordinates use the standard image convention:
//   - Origin (0, 0) at top-left corner
//   - X increases rightward
//   - Y increases downward
package detection
