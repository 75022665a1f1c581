package batch

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/viamarket/trip-ingestor/internal/types"
)

func validTrip() types.TripManifestEntry {
	return types.TripManifestEntry{
		Title:              "Giro delle Dolomiti",
		Summary:            "Cinque giorni tra rifugi e passi alpini, con tappe adatte a tutti.",
		Destination:        "Dolomiti",
		Theme:              "montagna",
		Characteristics:    []string{"natura", "panoramico"},
		RecommendedSeasons: []string{"estate"},
		Tags:               []string{"trekking"},
		Stages: []types.StageManifestEntry{
			{Title: "Passo Gardena", Description: "Salita al passo", RouteType: "sentiero", Duration: "4h"},
			{Title: "Rifugio Puez"},
		},
	}
}

func TestValidateTripAccepted(t *testing.T) {
	assert.Empty(t, ValidateTrip(validTrip()))
}

func TestValidateTripTitleBounds(t *testing.T) {
	trip := validTrip()
	trip.Title = "ab"
	errs := ValidateTrip(trip)
	assert.Len(t, errs, 1)
	assert.Equal(t, "titolo", errs[0].Field)

	trip.Title = strings.Repeat("a", 101)
	errs = ValidateTrip(trip)
	assert.Len(t, errs, 1)
	assert.Equal(t, "titolo", errs[0].Field)
}

func TestValidateTripSummaryBounds(t *testing.T) {
	trip := validTrip()
	trip.Summary = "too short"
	errs := ValidateTrip(trip)
	assert.Len(t, errs, 1)
	assert.Equal(t, "sommario", errs[0].Field)
}

func TestValidateTripClosedSets(t *testing.T) {
	trip := validTrip()
	trip.Characteristics = []string{"natura", "subacqueo"}
	trip.RecommendedSeasons = []string{"monsone"}

	errs := ValidateTrip(trip)
	fields := make([]string, 0, len(errs))
	for _, e := range errs {
		fields = append(fields, e.Field)
	}
	assert.Contains(t, fields, "caratteristiche")
	assert.Contains(t, fields, "stagioni_consigliate")
	assert.Len(t, errs, 2)
}

func TestValidateTripDuplicateCharacteristicsAllowed(t *testing.T) {
	trip := validTrip()
	trip.Characteristics = []string{"natura", "natura"}
	assert.Empty(t, ValidateTrip(trip))
}

func TestValidateTripSeasonsRequired(t *testing.T) {
	trip := validTrip()
	trip.RecommendedSeasons = nil
	errs := ValidateTrip(trip)
	assert.Len(t, errs, 1)
	assert.Equal(t, "stagioni_consigliate", errs[0].Field)
}

func TestValidateTripStageBounds(t *testing.T) {
	trip := validTrip()
	trip.Stages = nil
	errs := ValidateTrip(trip)
	assert.Len(t, errs, 1)
	assert.Equal(t, "tappe", errs[0].Field)

	trip = validTrip()
	trip.Stages = make([]types.StageManifestEntry, 21)
	for i := range trip.Stages {
		trip.Stages[i].Title = "Tappa"
	}
	errs = ValidateTrip(trip)
	assert.Len(t, errs, 1)
	assert.Equal(t, "tappe", errs[0].Field)
}

func TestValidateTripStageFieldsCarryStageIndex(t *testing.T) {
	trip := validTrip()
	trip.Stages[1].Title = ""
	trip.Stages[1].Description = strings.Repeat("x", 2001)

	errs := ValidateTrip(trip)
	assert.Len(t, errs, 2)
	for _, e := range errs {
		assert.NotNil(t, e.StageIndex)
		assert.Equal(t, 1, *e.StageIndex)
	}
}

func TestValidateTripCollectsAllViolations(t *testing.T) {
	trip := validTrip()
	trip.Title = "ab"
	trip.Summary = "short"
	trip.Destination = ""
	trip.Theme = strings.Repeat("t", 101)
	trip.Stages[0].Duration = strings.Repeat("d", 51)

	errs := ValidateTrip(trip)
	assert.Len(t, errs, 5)
}
