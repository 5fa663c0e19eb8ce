package metadata

import (
	"errors"
	"fmt"
	"io"

	goexif "github.com/dsoprea/go-exif/v3"

	"copypics/internal/pics"
)

const dateTimeOriginalTag = "DateTimeOriginal"

// HEICExtractor finds the EXIF block inside an HEIF container by scanning
// for the TIFF header, then looks up DateTimeOriginal.
type HEICExtractor struct{}

func NewHEICExtractor() *HEICExtractor {
	return &HEICExtractor{}
}

func (e *HEICExtractor) ExtractCaptureTime(r io.ReadSeeker) (pics.CaptureTime, error) {
	raw, err := goexif.SearchAndExtractExifWithReader(r)
	if err != nil {
		if errors.Is(err, goexif.ErrNoExif) {
			return pics.UnknownCaptureTime, nil
		}
		return pics.UnknownCaptureTime, fmt.Errorf("searching for exif: %w", err)
	}

	tags, _, err := goexif.GetFlatExifData(raw, nil)
	if err != nil {
		return pics.UnknownCaptureTime, fmt.Errorf("parsing exif: %w", err)
	}

	for _, tag := range tags {
		if tag.TagName == dateTimeOriginalTag {
			return pics.ParseCaptureTime(tag.Formatted)
		}
	}
	return pics.UnknownCaptureTime, nil
}

var _ pics.MetadataExtractor = (*HEICExtractor)(nil)
