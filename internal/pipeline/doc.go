// Package pipeline runs the blueprint analysis stages and owns the result
// cache.
//
// A run is:
//
//	cache lookup -> validate -> rasterize -> {basic stats, text, lines} -> classify -> quality
//
// The three middle stages run concurrently on the same immutable raster.
//
// # Failure Policy
//
// Validation errors are the only errors Analyze returns. Every other failure,
// including a panic inside a stage, is recorded as a diagnostic event and
// answered with a deterministic fallback result built from the file metadata
// alone. OCR problems are absorbed inside the text stage and never trigger
// the whole-run fallback.
//
// Successful results are cached by (name, size, last modified); fallbacks are
// never cached, so a retry after a transient failure computes afresh.
package pipeline
