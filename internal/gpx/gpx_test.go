package gpx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateWellFormed(t *testing.T) {
	raw := []byte(`<?xml version="1.0"?>
<gpx version="1.1" creator="test"><trk><trkseg/></trk></gpx>`)
	assert.NoError(t, Validate(raw))
}

func TestValidateMissingOpenMarker(t *testing.T) {
	assert.ErrorIs(t, Validate([]byte("</gpx>")), ErrTrackFileInvalid)
	assert.ErrorIs(t, Validate([]byte("plain text")), ErrTrackFileInvalid)
}

func TestValidateMissingCloseMarker(t *testing.T) {
	assert.ErrorIs(t, Validate([]byte(`<gpx version="1.1">`)), ErrTrackFileInvalid)
}

func TestValidateMarkersOutOfOrder(t *testing.T) {
	assert.ErrorIs(t, Validate([]byte(`</gpx> then <gpx`)), ErrTrackFileInvalid)
}

func TestValidateEmpty(t *testing.T) {
	assert.ErrorIs(t, Validate(nil), ErrTrackFileInvalid)
}
