package imaging

import (
	"fmt"

	apperrors "github.com/ironsheep/blueprint-vision/internal/errors"
)

// Validator rejects inputs that are not worth decoding.
type Validator struct {
	maxBytes int64
	minBytes int64
	allowed  map[string]bool
}

// NewValidator creates a validator with the given byte limits and media type
// allow-list.
func NewValidator(maxBytes, minBytes int64, allowedTypes []string) *Validator {
	allowed := make(map[string]bool, len(allowedTypes))
	for _, t := range allowedTypes {
		allowed[NormalizeMediaType(t)] = true
	}
	return &Validator{
		maxBytes: maxBytes,
		minBytes: minBytes,
		allowed:  allowed,
	}
}

// Validate checks the file against the limits, in order: maximum size, media
// type, minimum size. It returns a validation *AppError or nil.
func (v *Validator) Validate(f SourceFile) error {
	size := f.Size()
	if size > v.maxBytes {
		return apperrors.NewValidationError(apperrors.ReasonTooLarge,
			fmt.Sprintf("file is %d bytes, limit is %d", size, v.maxBytes))
	}

	mediaType := ResolveMediaType(f)
	if !v.allowed[mediaType] {
		return apperrors.NewValidationError(apperrors.ReasonUnsupportedType,
			fmt.Sprintf("media type %q is not a supported raster image type", mediaType))
	}

	if size < v.minBytes {
		return apperrors.NewValidationError(apperrors.ReasonTooSmall,
			fmt.Sprintf("file is %d bytes, minimum is %d", size, v.minBytes))
	}
	return nil
}
