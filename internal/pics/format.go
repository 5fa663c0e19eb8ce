package pics

import (
	"errors"
	"io"
	"path/filepath"
	"strings"
)

// ErrUnsupportedFormat is returned by extractors for format families whose
// metadata is not read yet (PNG, video).
var ErrUnsupportedFormat = errors.New("unsupported format")

// Format is a family of files that share a metadata layout.
type Format int

const (
	FormatUnknown Format = iota
	FormatJPEG
	FormatHEIC
	FormatPNG
	FormatVideo
)

func (f Format) String() string {
	switch f {
	case FormatJPEG:
		return "jpeg"
	case FormatHEIC:
		return "heic"
	case FormatPNG:
		return "png"
	case FormatVideo:
		return "video"
	default:
		return "unknown"
	}
}

var formatsByExt = map[string]Format{
	".jpg":  FormatJPEG,
	".jpeg": FormatJPEG,
	".heic": FormatHEIC,
	".heif": FormatHEIC,
	".png":  FormatPNG,
	".mp4":  FormatVideo,
	".mov":  FormatVideo,
	".m4v":  FormatVideo,
}

// DetectFormat returns the format family of a file from its extension.
// Detection ignores case; which files are imported at all is decided by the
// candidate patterns, not here.
func DetectFormat(name string) Format {
	if f, ok := formatsByExt[strings.ToLower(filepath.Ext(name))]; ok {
		return f
	}
	return FormatUnknown
}

// MetadataExtractor reads the original capture date embedded in a file.
// Implementations must not decode pixel data. A file without the tag is not
// an error: it yields UnknownCaptureTime.
type MetadataExtractor interface {
	ExtractCaptureTime(r io.ReadSeeker) (CaptureTime, error)
}

// ExtractorRegistry selects the MetadataExtractor for a format family.
type ExtractorRegistry interface {
	// For returns the extractor for f, or an error wrapping
	// ErrUnsupportedFormat if none is registered.
	For(f Format) (MetadataExtractor, error)
}
