package pics

import (
	"errors"
	"fmt"
	"time"
)

// ErrMalformedCaptureTime is returned when a capture-time tag is present
// but does not start with a valid "YYYY:MM:DD" date.
var ErrMalformedCaptureTime = errors.New("malformed capture time")

// captureDateLayout is the date portion of the EXIF DateTimeOriginal format
// ("2006:01:02 15:04:05").
const captureDateLayout = "2006:01:02"

// CaptureTime is the calendar date a photo was taken, or unknown.
// The zero value is UnknownCaptureTime.
type CaptureTime struct {
	Year  int
	Month time.Month
	Day   int
	known bool
}

// UnknownCaptureTime is the sentinel for files without a usable capture date.
var UnknownCaptureTime = CaptureTime{}

// NewCaptureTime returns a known capture time for the given date.
func NewCaptureTime(year int, month time.Month, day int) CaptureTime {
	return CaptureTime{Year: year, Month: month, Day: day, known: true}
}

// ParseCaptureTime parses the leading "YYYY:MM:DD" of an EXIF date/time string.
// Anything after the first ten characters (normally " HH:MM:SS") is ignored.
// Impossible dates, including the all-zero date some cameras write when the
// clock was never set, are rejected.
func ParseCaptureTime(s string) (CaptureTime, error) {
	if len(s) < len(captureDateLayout) {
		return UnknownCaptureTime, fmt.Errorf("%w: %q is too short", ErrMalformedCaptureTime, s)
	}

	t, err := time.Parse(captureDateLayout, s[:len(captureDateLayout)])
	if err != nil {
		return UnknownCaptureTime, fmt.Errorf("%w: %q: %v", ErrMalformedCaptureTime, s, err)
	}
	return NewCaptureTime(t.Year(), t.Month(), t.Day()), nil
}

// Known reports whether this is a real date rather than UnknownCaptureTime.
func (c CaptureTime) Known() bool {
	return c.known
}

func (c CaptureTime) String() string {
	if !c.known {
		return "unknown"
	}
	return fmt.Sprintf("%04d:%02d:%02d", c.Year, int(c.Month), c.Day)
}
