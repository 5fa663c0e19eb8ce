package metadata

import (
	"errors"
	"fmt"
	"io"

	"github.com/rwcarlsen/goexif/exif"

	"copypics/internal/pics"
)

// JPEGExtractor reads the capture date from a JPEG's APP1 EXIF segment.
type JPEGExtractor struct{}

func NewJPEGExtractor() *JPEGExtractor {
	return &JPEGExtractor{}
}

// ExtractCaptureTime returns the DateTimeOriginal tag. A file without EXIF,
// or without the tag, has an unknown capture time.
func (e *JPEGExtractor) ExtractCaptureTime(r io.ReadSeeker) (pics.CaptureTime, error) {
	x, err := exif.Decode(r)
	if err != nil && (x == nil || exif.IsCriticalError(err)) {
		return pics.UnknownCaptureTime, nil
	}

	tag, err := x.Get(exif.DateTimeOriginal)
	if err != nil {
		var notPresent exif.TagNotPresentError
		if errors.As(err, &notPresent) {
			return pics.UnknownCaptureTime, nil
		}
		return pics.UnknownCaptureTime, fmt.Errorf("reading DateTimeOriginal: %w", err)
	}

	raw, err := tag.StringVal()
	if err != nil {
		return pics.UnknownCaptureTime, fmt.Errorf("%w: DateTimeOriginal is not a string: %v", pics.ErrMalformedCaptureTime, err)
	}
	return pics.ParseCaptureTime(raw)
}

var _ pics.MetadataExtractor = (*JPEGExtractor)(nil)
