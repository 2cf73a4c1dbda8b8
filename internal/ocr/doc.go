// Package ocr extracts text regions from a rasterized drawing.
//
// Recognition is delegated to an Engine obtained from a Provider. The
// Tesseract provider (via gosseract/v2) is compiled in when cgo is enabled;
// builds without cgo get a provider that always reports itself unavailable.
//
// # Prerequisites
//
// Tesseract must be installed on the system for the cgo build:
//   - Ubuntu/Debian: apt-get install tesseract-ocr tesseract-ocr-eng
//   - macOS: brew install tesseract
//
// # Capability
//
// A Capability owns the single engine of a process. The first TryInitialize
// call starts opening the engine; every other caller, concurrent or later,
// waits on that same attempt. A failed attempt is never retried.
//
// # Extraction
//
// Extractor.Extract always returns a usable Summary. When OCR is disabled,
// unavailable, failing or too slow, the summary is estimated from the raster
// area instead, with a fixed confidence of 35 and room labels taken from a
// fixed list. A non-nil error alongside the summary says why the estimate was
// used.
//
// Recognized lines are split into categories:
//   - room_label: the line starts with a room word (kitchen, bedroom, ...)
//   - dimension: the line contains a unit-suffixed number (12', 3.5m, 10 ft)
//   - title: an all-caps line of two or more words
//   - note: everything else
package ocr
