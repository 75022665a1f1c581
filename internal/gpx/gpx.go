package gpx

import (
	"errors"
	"strings"
)

// ErrTrackFileInvalid means the file content does not look like a GPX
// document. Geometry is never checked here; publication-time rules live
// elsewhere.
var ErrTrackFileInvalid = errors.New("track file is not well-formed GPX")

const (
	openMarker  = "<gpx"
	closeMarker = "</gpx>"
)

// Validate confirms the raw track text carries both the opening and closing
// gpx container markers, in that order.
func Validate(raw []byte) error {
	text := string(raw)
	open := strings.Index(text, openMarker)
	if open < 0 {
		return ErrTrackFileInvalid
	}
	if !strings.Contains(text[open:], closeMarker) {
		return ErrTrackFileInvalid
	}
	return nil
}
