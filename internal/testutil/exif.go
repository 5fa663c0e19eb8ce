package testutil

import (
	"bytes"
	"encoding/binary"
)

// EXIF tag IDs used by the fixtures.
const (
	TagDateTimeOriginal  uint16 = 0x9003
	TagDateTimeDigitized uint16 = 0x9004

	tagExifIFDPointer uint16 = 0x8769

	typeASCII uint16 = 2
	typeLong  uint16 = 4
)

// ExifTIFF returns a little-endian TIFF block whose IFD0 points to an Exif
// sub-IFD holding a single ASCII tag.
//
//	0   header ("II", 42, offset of IFD0 = 8)
//	8   IFD0: one entry, ExifIFDPointer -> 26
//	26  Exif IFD: one entry, tag = value
//	44  value bytes (when longer than 4 bytes)
func ExifTIFF(tag uint16, value string) []byte {
	le := binary.LittleEndian
	data := append([]byte(value), 0)

	var b bytes.Buffer
	b.WriteString("II")
	binary.Write(&b, le, uint16(42))
	binary.Write(&b, le, uint32(8))

	// IFD0
	binary.Write(&b, le, uint16(1))
	binary.Write(&b, le, tagExifIFDPointer)
	binary.Write(&b, le, typeLong)
	binary.Write(&b, le, uint32(1))
	binary.Write(&b, le, uint32(26))
	binary.Write(&b, le, uint32(0))

	// Exif IFD
	binary.Write(&b, le, uint16(1))
	binary.Write(&b, le, tag)
	binary.Write(&b, le, typeASCII)
	binary.Write(&b, le, uint32(len(data)))
	if len(data) <= 4 {
		inline := make([]byte, 4)
		copy(inline, data)
		b.Write(inline)
	} else {
		binary.Write(&b, le, uint32(44))
	}
	binary.Write(&b, le, uint32(0))

	if len(data) > 4 {
		b.Write(data)
	}
	return b.Bytes()
}

// JPEGWithExif wraps tiff in an APP1 "Exif" segment of a minimal JPEG.
// The result has no image data; extractors must not need any.
func JPEGWithExif(tiff []byte) []byte {
	payload := append([]byte("Exif\x00\x00"), tiff...)

	var b bytes.Buffer
	b.Write([]byte{0xFF, 0xD8}) // SOI
	b.Write([]byte{0xFF, 0xE1}) // APP1
	binary.Write(&b, binary.BigEndian, uint16(len(payload)+2))
	b.Write(payload)
	b.Write([]byte{0xFF, 0xD9}) // EOI
	return b.Bytes()
}

// JPEGWithCaptureTime returns a JPEG whose DateTimeOriginal is dateTime,
// e.g. "2021:03:15 10:00:00".
func JPEGWithCaptureTime(dateTime string) []byte {
	return JPEGWithExif(ExifTIFF(TagDateTimeOriginal, dateTime))
}

// JPEGWithoutExif returns a JPEG with only a JFIF APP0 segment.
// salt is embedded so that callers can build distinct files.
func JPEGWithoutExif(salt string) []byte {
	app0 := append([]byte("JFIF\x00\x01\x01\x00\x00\x01\x00\x01\x00\x00"), salt...)

	var b bytes.Buffer
	b.Write([]byte{0xFF, 0xD8})
	b.Write([]byte{0xFF, 0xE0})
	binary.Write(&b, binary.BigEndian, uint16(len(app0)+2))
	b.Write(app0)
	b.Write([]byte{0xFF, 0xD9})
	return b.Bytes()
}

// heifPrefix stands in for the ftyp box of an HEIF container.
var heifPrefix = []byte("\x00\x00\x00\x18ftypheic\x00\x00\x00\x00mif1heic")

// HEICWithCaptureTime returns an HEIF-like file carrying an EXIF block
// whose DateTimeOriginal is dateTime.
func HEICWithCaptureTime(dateTime string) []byte {
	b := append([]byte(nil), heifPrefix...)
	b = append(b, "Exif\x00\x00"...)
	return append(b, ExifTIFF(TagDateTimeOriginal, dateTime)...)
}

// HEICWithoutExif returns an HEIF-like file with no EXIF block.
func HEICWithoutExif(salt string) []byte {
	b := append([]byte(nil), heifPrefix...)
	return append(b, salt...)
}
