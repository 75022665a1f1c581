package manifest

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viamarket/trip-ingestor/internal/archive"
)

func archiveWith(t *testing.T, entries map[string]string) *archive.Archive {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, content := range entries {
		fw, err := w.Create(name)
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	a, err := archive.Open(buf.Bytes(), archive.DefaultLimits())
	require.NoError(t, err)
	return a
}

func TestParseMissingManifest(t *testing.T) {
	a := archiveWith(t, map[string]string{"other.txt": "x"})
	_, err := Parse(a)
	assert.ErrorIs(t, err, ErrManifestMissing)
}

func TestDecodeInvalidJSON(t *testing.T) {
	_, err := Decode([]byte("{broken"))
	assert.ErrorIs(t, err, ErrManifestInvalidJSON)
}

func TestDecodeSingleTrip(t *testing.T) {
	raw := []byte(`{"titolo":"Giro","sommario":"s","tappe":[{"titolo":"Tappa 1"}]}`)
	trips, err := Decode(raw)
	require.NoError(t, err)
	require.Len(t, trips, 1)
	assert.Equal(t, "Giro", trips[0].Title)
	require.Len(t, trips[0].Stages, 1)
	assert.Equal(t, "Tappa 1", trips[0].Stages[0].Title)
}

func TestDecodeMultiTrip(t *testing.T) {
	raw := []byte(`{"viaggi":[{"titolo":"A"},{"titolo":"B"},{"titolo":"C"}]}`)
	trips, err := Decode(raw)
	require.NoError(t, err)
	require.Len(t, trips, 3)
	assert.Equal(t, "A", trips[0].Title)
	assert.Equal(t, "C", trips[2].Title)
}

func TestDecodeWrapperMustBeArray(t *testing.T) {
	_, err := Decode([]byte(`{"viaggi":{"titolo":"A"}}`))
	assert.ErrorIs(t, err, ErrManifestInvalidJSON)
}

func TestDecodeBatchSizeBounds(t *testing.T) {
	_, err := Decode([]byte(`{"viaggi":[]}`))
	assert.ErrorIs(t, err, ErrBatchSize)

	var trips []map[string]string
	for i := 0; i <= MaxTripsPerBatch; i++ {
		trips = append(trips, map[string]string{"titolo": fmt.Sprintf("Trip %d", i)})
	}
	raw, err := json.Marshal(map[string]interface{}{"viaggi": trips})
	require.NoError(t, err)

	_, err = Decode(raw)
	assert.ErrorIs(t, err, ErrBatchSize)
}

func TestDecodeAtBatchCap(t *testing.T) {
	var trips []map[string]string
	for i := 0; i < MaxTripsPerBatch; i++ {
		trips = append(trips, map[string]string{"titolo": fmt.Sprintf("Trip %d", i)})
	}
	raw, err := json.Marshal(map[string]interface{}{"viaggi": trips})
	require.NoError(t, err)

	got, err := Decode(raw)
	require.NoError(t, err)
	assert.Len(t, got, MaxTripsPerBatch)
}
