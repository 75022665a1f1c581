package batch

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/viamarket/trip-ingestor/internal/types"
)

func TestNormalizeNil(t *testing.T) {
	assert.Empty(t, Normalize(nil))
}

func TestNormalizeString(t *testing.T) {
	got := Normalize("x")
	assert.Equal(t, []types.BatchError{{Message: "x"}}, got)
}

func TestNormalizeError(t *testing.T) {
	got := Normalize(errors.New("db connection lost"))
	assert.Equal(t, []types.BatchError{{Message: "db connection lost"}}, got)
}

func TestNormalizeFlatMap(t *testing.T) {
	got := Normalize(map[string]interface{}{"message": "x", "tripIndex": 2})
	assert.Len(t, got, 1)
	assert.Equal(t, "x", got[0].Message)
	assert.Equal(t, 2, *got[0].TripIndex)
	assert.Nil(t, got[0].StageIndex)
	assert.Empty(t, got[0].Field)
}

func TestNormalizeFlatMapFloatIndexes(t *testing.T) {
	// Indexes decoded from JSON arrive as float64.
	got := Normalize(map[string]interface{}{
		"message":    "bad stage",
		"tripIndex":  float64(1),
		"stageIndex": float64(3),
		"field":      "titolo",
	})
	assert.Len(t, got, 1)
	assert.Equal(t, 1, *got[0].TripIndex)
	assert.Equal(t, 3, *got[0].StageIndex)
	assert.Equal(t, "titolo", got[0].Field)
}

func TestNormalizeWrappedMap(t *testing.T) {
	got := Normalize(map[string]interface{}{
		"error": map[string]interface{}{
			"message":   "insert failed",
			"tripIndex": 4,
			"field":     "tema",
		},
	})
	assert.Len(t, got, 1)
	assert.Equal(t, "insert failed", got[0].Message)
	assert.Equal(t, 4, *got[0].TripIndex)
	assert.Equal(t, "tema", got[0].Field)
}

func TestNormalizeArrayConcatenates(t *testing.T) {
	a := "first"
	b := map[string]interface{}{"message": "second", "tripIndex": 1}

	got := Normalize([]interface{}{a, b})
	want := append(Normalize(a), Normalize(b)...)
	assert.Equal(t, want, got)
}

func TestNormalizeUnknownShapeFallsBack(t *testing.T) {
	assert.Equal(t, []types.BatchError{{Message: FallbackMessage}}, Normalize(42))
	assert.Equal(t, []types.BatchError{{Message: FallbackMessage}}, Normalize(map[string]interface{}{"unknownShape": true}))
	assert.Equal(t, []types.BatchError{{Message: FallbackMessage}}, Normalize(struct{ X int }{1}))
}

func TestNormalizeIdempotent(t *testing.T) {
	first := Normalize([]interface{}{
		"plain failure",
		map[string]interface{}{"message": "bad field", "tripIndex": 0, "field": "titolo"},
		map[string]interface{}{"error": map[string]interface{}{"message": "wrapped"}},
	})
	second := Normalize(first)
	assert.Equal(t, first, second)
}

func TestNormalizeBatchErrorPassthrough(t *testing.T) {
	be := types.BatchError{Message: "kept", TripIndex: types.IntPtr(7)}
	assert.Equal(t, []types.BatchError{be}, Normalize(be))
	assert.Equal(t, []types.BatchError{be}, Normalize(&be))
}
