package imaging

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
)

// SourceFile is an uploaded drawing before decoding.
type SourceFile struct {
	// Name is the client-supplied file name. It feeds the cache key and the
	// drawing type heuristics.
	Name string

	// MediaType is the declared media type, e.g. "image/png". When empty the
	// type is sniffed from Data.
	MediaType string

	// Data holds the encoded image bytes.
	Data []byte

	// LastModified is the client-reported modification time.
	LastModified time.Time
}

// Size returns the byte length of the file.
func (f SourceFile) Size() int64 {
	return int64(len(f.Data))
}

// SourceFromPath reads a file from disk. The media type comes from the file
// extension, falling back to content sniffing.
func SourceFromPath(path string) (SourceFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return SourceFile{}, fmt.Errorf("failed to read file: %w", err)
	}
	stat, err := os.Stat(path)
	if err != nil {
		return SourceFile{}, fmt.Errorf("failed to stat file: %w", err)
	}

	mediaType := mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))
	if mediaType == "" {
		mediaType = mimetype.Detect(data).String()
	}

	return SourceFile{
		Name:         filepath.Base(path),
		MediaType:    mediaType,
		Data:         data,
		LastModified: stat.ModTime(),
	}, nil
}

// NormalizeMediaType lowercases a media type, strips parameters and maps
// common aliases onto their canonical names.
func NormalizeMediaType(mediaType string) string {
	mt := strings.ToLower(strings.TrimSpace(mediaType))
	if i := strings.IndexByte(mt, ';'); i >= 0 {
		mt = strings.TrimSpace(mt[:i])
	}
	switch mt {
	case "image/jpg", "image/pjpeg":
		return "image/jpeg"
	case "image/x-ms-bmp", "image/x-bmp":
		return "image/bmp"
	case "image/x-png":
		return "image/png"
	}
	return mt
}

// ResolveMediaType returns the normalized declared type, or the sniffed type
// when none was declared.
func ResolveMediaType(f SourceFile) string {
	if f.MediaType != "" {
		return NormalizeMediaType(f.MediaType)
	}
	return NormalizeMediaType(mimetype.Detect(f.Data).String())
}
