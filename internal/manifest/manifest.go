package manifest

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/viamarket/trip-ingestor/internal/archive"
	"github.com/viamarket/trip-ingestor/internal/types"
)

// Path is the well-known manifest entry at the archive root.
const Path = "viaggi.json"

// WrapperKey discriminates the multi-trip shape from a bare trip object.
const WrapperKey = "viaggi"

// MaxTripsPerBatch caps the multi-trip array length.
const MaxTripsPerBatch = 10

var (
	ErrManifestMissing     = errors.New("manifest viaggi.json not found in archive")
	ErrManifestInvalidJSON = errors.New("manifest is not valid JSON")
	ErrBatchSize           = errors.New("multi-trip manifest must contain between 1 and 10 trips")
)

// Parse reads and decodes the manifest entry, returning the trips in manifest
// order. A bare trip object yields a list of length 1; an object carrying the
// wrapper array yields one entry per array element.
func Parse(a *archive.Archive) ([]types.TripManifestEntry, error) {
	raw, err := a.ReadEntry(Path)
	if err != nil {
		if errors.Is(err, archive.ErrEntryNotFound) {
			return nil, ErrManifestMissing
		}
		return nil, err
	}
	return Decode(raw)
}

// Decode classifies raw manifest JSON as single-trip or multi-trip and
// returns the ordered trip list.
func Decode(raw []byte) ([]types.TripManifestEntry, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(raw, &top); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrManifestInvalidJSON, err)
	}

	wrapped, multi := top[WrapperKey]
	if !multi {
		var trip types.TripManifestEntry
		if err := json.Unmarshal(raw, &trip); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrManifestInvalidJSON, err)
		}
		return []types.TripManifestEntry{trip}, nil
	}

	var trips []types.TripManifestEntry
	if err := json.Unmarshal(wrapped, &trips); err != nil {
		return nil, fmt.Errorf("%w: %q must be an array of trip objects: %v", ErrManifestInvalidJSON, WrapperKey, err)
	}
	if len(trips) == 0 || len(trips) > MaxTripsPerBatch {
		return nil, fmt.Errorf("%w: got %d", ErrBatchSize, len(trips))
	}
	return trips, nil
}
