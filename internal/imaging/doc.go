// Package imaging turns uploaded drawing files into the immutable pixel
// buffers the analysis stages read.
//
// It covers three steps of the pipeline:
//
//   - Validation: size limits and the raster media type allow-list, checked
//     before any decoding work is spent.
//   - Rasterization: decoding PNG, JPEG, GIF, BMP, TIFF and WebP with a time
//     box, downscaling to a maximum dimension and flattening transparency
//     onto white paper.
//   - Rendering helpers: the enhanced grayscale surface handed to OCR and the
//     quantized palette used for color scheme detection.
//
// # Coordinate System
//
// All pixel coordinates are 0-based with the origin at the top-left corner:
//   - X increases rightward (0 to Width-1)
//   - Y increases downward (0 to Height-1)
//
// # Pixel Layout
//
// A Raster stores non-premultiplied RGBA samples row-major, 4 bytes per
// pixel, with no row padding. Luminance uses the ITU-R BT.601 weights
// (0.299*R + 0.587*G + 0.114*B) on 8-bit components.
//
// # Thread Safety
//
// A Raster is never mutated after Rasterize returns, so any number of
// goroutines may read it concurrently without locking.
package imaging
