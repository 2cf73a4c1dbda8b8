package imaging

import (
	"bytes"
	"testing"

	apperrors "github.com/ironsheep/blueprint-vision/internal/errors"
)

func newTestValidator() *Validator {
	return NewValidator(10*1024*1024, 1024, []string{"image/png", "image/jpeg", "image/gif"})
}

func TestValidate(t *testing.T) {
	v := newTestValidator()
	pngData := encodePNG(t, createSpeckledImage(200, 200))

	tests := []struct {
		name       string
		src        SourceFile
		wantReason apperrors.Reason
	}{
		{
			"valid png",
			SourceFile{Name: "plan.png", MediaType: "image/png", Data: pngData},
			"",
		},
		{
			"jpg alias",
			SourceFile{Name: "plan.jpg", MediaType: "image/JPG", Data: bytes.Repeat([]byte{1}, 2048)},
			"",
		},
		{
			"too large",
			SourceFile{Name: "huge.png", MediaType: "image/png", Data: make([]byte, 10*1024*1024+1)},
			apperrors.ReasonTooLarge,
		},
		{
			"unsupported type",
			SourceFile{Name: "plan.pdf", MediaType: "application/pdf", Data: make([]byte, 4096)},
			apperrors.ReasonUnsupportedType,
		},
		{
			"just below floor",
			SourceFile{Name: "tiny.png", MediaType: "image/png", Data: make([]byte, 1023)},
			apperrors.ReasonTooSmall,
		},
		{
			"exactly at floor",
			SourceFile{Name: "edge.png", MediaType: "image/png", Data: make([]byte, 1024)},
			"",
		},
		{
			"sniffed type",
			SourceFile{Name: "upload", Data: pngData},
			"",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.src)
			if tt.wantReason == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !apperrors.IsType(err, apperrors.ErrorTypeValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if !apperrors.HasReason(err, tt.wantReason) {
				t.Errorf("reason: got %v, want %s", err, tt.wantReason)
			}
		})
	}
}

func TestNormalizeMediaType(t *testing.T) {
	tests := map[string]string{
		"image/PNG":              "image/png",
		"image/jpeg; q=0.9":      "image/jpeg",
		"image/pjpeg":            "image/jpeg",
		"image/x-ms-bmp":         "image/bmp",
		" image/webp ":           "image/webp",
		"application/postscript": "application/postscript",
	}
	for in, want := range tests {
		if got := NormalizeMediaType(in); got != want {
			t.Errorf("NormalizeMediaType(%q) = %q, want %q", in, got, want)
		}
	}
}
