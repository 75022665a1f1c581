package batch

import (
	"fmt"
	"unicode/utf8"

	"github.com/viamarket/trip-ingestor/internal/types"
)

const (
	titleMinLen      = 3
	titleMaxLen      = 100
	summaryMinLen    = 10
	summaryMaxLen    = 6000
	shortFieldMaxLen = 100
	maxStages        = 20
	stageTitleMaxLen = 200
	stageDescMaxLen  = 2000
	routeTypeMaxLen  = 100
	durationMaxLen   = 50
)

// ValidateTrip checks one manifest trip against the structural rules and
// returns every violation found, so a client can fix a bad trip in one pass.
// An empty result means the trip is ready for persistence. Indexes are not
// stamped here; the caller owns the trip's position in the batch.
func ValidateTrip(trip types.TripManifestEntry) []types.BatchError {
	var errs []types.BatchError

	if n := utf8.RuneCountInString(trip.Title); n < titleMinLen || n > titleMaxLen {
		errs = append(errs, fieldError("titolo",
			fmt.Sprintf("title must be between %d and %d characters", titleMinLen, titleMaxLen)))
	}
	if n := utf8.RuneCountInString(trip.Summary); n < summaryMinLen || n > summaryMaxLen {
		errs = append(errs, fieldError("sommario",
			fmt.Sprintf("summary must be between %d and %d characters", summaryMinLen, summaryMaxLen)))
	}
	if n := utf8.RuneCountInString(trip.Destination); n < 1 || n > shortFieldMaxLen {
		errs = append(errs, fieldError("destinazione",
			fmt.Sprintf("destination must be between 1 and %d characters", shortFieldMaxLen)))
	}
	if n := utf8.RuneCountInString(trip.Theme); n < 1 || n > shortFieldMaxLen {
		errs = append(errs, fieldError("tema",
			fmt.Sprintf("theme must be between 1 and %d characters", shortFieldMaxLen)))
	}

	for _, c := range trip.Characteristics {
		if !types.IsTripCharacteristic(c) {
			errs = append(errs, fieldError("caratteristiche",
				fmt.Sprintf("unknown characteristic %q", c)))
		}
	}

	if len(trip.RecommendedSeasons) == 0 {
		errs = append(errs, fieldError("stagioni_consigliate",
			"at least one recommended season is required"))
	}
	for _, s := range trip.RecommendedSeasons {
		if !types.IsTripSeason(s) {
			errs = append(errs, fieldError("stagioni_consigliate",
				fmt.Sprintf("unknown season %q", s)))
		}
	}

	if len(trip.Stages) < 1 || len(trip.Stages) > maxStages {
		errs = append(errs, fieldError("tappe",
			fmt.Sprintf("trip must have between 1 and %d stages", maxStages)))
	}
	for i, stage := range trip.Stages {
		errs = append(errs, validateStage(i, stage)...)
	}

	return errs
}

func validateStage(index int, stage types.StageManifestEntry) []types.BatchError {
	var errs []types.BatchError

	if n := utf8.RuneCountInString(stage.Title); n < 1 || n > stageTitleMaxLen {
		errs = append(errs, stageError(index, "titolo",
			fmt.Sprintf("stage title must be between 1 and %d characters", stageTitleMaxLen)))
	}
	if utf8.RuneCountInString(stage.Description) > stageDescMaxLen {
		errs = append(errs, stageError(index, "descrizione",
			fmt.Sprintf("stage description must be at most %d characters", stageDescMaxLen)))
	}
	if utf8.RuneCountInString(stage.RouteType) > routeTypeMaxLen {
		errs = append(errs, stageError(index, "tipo_percorso",
			fmt.Sprintf("route type must be at most %d characters", routeTypeMaxLen)))
	}
	if utf8.RuneCountInString(stage.Duration) > durationMaxLen {
		errs = append(errs, stageError(index, "durata",
			fmt.Sprintf("duration must be at most %d characters", durationMaxLen)))
	}

	return errs
}

func fieldError(field, message string) types.BatchError {
	return types.BatchError{Field: field, Message: message}
}

func stageError(index int, field, message string) types.BatchError {
	return types.BatchError{StageIndex: types.IntPtr(index), Field: field, Message: message}
}
