package metadata

import (
	"fmt"
	"io"

	"copypics/internal/pics"
)

// UnsupportedExtractor stands in for formats whose metadata is not read.
type UnsupportedExtractor struct {
	format pics.Format
}

func NewUnsupportedExtractor(format pics.Format) *UnsupportedExtractor {
	return &UnsupportedExtractor{format: format}
}

func (e *UnsupportedExtractor) ExtractCaptureTime(io.ReadSeeker) (pics.CaptureTime, error) {
	return pics.UnknownCaptureTime, fmt.Errorf("%s: %w", e.format, pics.ErrUnsupportedFormat)
}

var _ pics.MetadataExtractor = (*UnsupportedExtractor)(nil)
