package metadata

import (
	"fmt"

	"copypics/internal/pics"
)

// Registry maps each format to its extractor.
type Registry struct {
	extractors map[pics.Format]pics.MetadataExtractor
}

// NewRegistry returns a registry with the built-in extractors: EXIF for
// JPEG and HEIC, and UnsupportedExtractor for PNG and video.
func NewRegistry() *Registry {
	return &Registry{
		extractors: map[pics.Format]pics.MetadataExtractor{
			pics.FormatJPEG:  NewJPEGExtractor(),
			pics.FormatHEIC:  NewHEICExtractor(),
			pics.FormatPNG:   NewUnsupportedExtractor(pics.FormatPNG),
			pics.FormatVideo: NewUnsupportedExtractor(pics.FormatVideo),
		},
	}
}

// Register replaces the extractor for format.
func (r *Registry) Register(format pics.Format, extractor pics.MetadataExtractor) {
	r.extractors[format] = extractor
}

func (r *Registry) For(format pics.Format) (pics.MetadataExtractor, error) {
	extractor, ok := r.extractors[format]
	if !ok {
		return nil, fmt.Errorf("%s: %w", format, pics.ErrUnsupportedFormat)
	}
	return extractor, nil
}

var _ pics.ExtractorRegistry = (*Registry)(nil)
