package types

import (
	"time"
)

// ====== ENUMS ======

type JobStatus string

const (
	StatusPending    JobStatus = "pending"
	StatusProcessing JobStatus = "processing"
	StatusCompleted  JobStatus = "completed"
	StatusFailed     JobStatus = "failed"
)

// TripCharacteristics is the closed set of characteristic labels a trip may
// carry. Duplicates in a manifest are tolerated and stored as given.
var TripCharacteristics = []string{
	"natura",
	"cultura",
	"avventura",
	"relax",
	"enogastronomia",
	"panoramico",
	"storico",
	"famiglia",
	"sportivo",
}

// TripSeasons is the closed set of recommended-season labels.
var TripSeasons = []string{
	"primavera",
	"estate",
	"autunno",
	"inverno",
}

// ====== CORE TYPES ======

// StageManifestEntry is one ordered stage of a trip as decoded from the
// manifest. Transient: it exists only between manifest decode and persistence.
type StageManifestEntry struct {
	Title       string `json:"titolo"`
	Description string `json:"descrizione,omitempty"`
	RouteType   string `json:"tipo_percorso,omitempty"`
	Duration    string `json:"durata,omitempty"`
}

// TripManifestEntry is one trip as decoded from viaggi.json.
type TripManifestEntry struct {
	Title              string               `json:"titolo"`
	Summary            string               `json:"sommario"`
	Destination        string               `json:"destinazione"`
	Theme              string               `json:"tema"`
	Characteristics    []string             `json:"caratteristiche,omitempty"`
	RecommendedSeasons []string             `json:"stagioni_consigliate"`
	Tags               []string             `json:"tags,omitempty"`
	TravelDate         string               `json:"data_viaggio,omitempty"`
	Stages             []StageManifestEntry `json:"tappe"`
}

// BatchError is the uniform error record every validation or persistence
// failure is normalized into. Index fields are pointers so "unset" survives
// JSON round trips; a set index is always 0-based.
type BatchError struct {
	TripIndex  *int   `json:"tripIndex,omitempty"`
	StageIndex *int   `json:"stageIndex,omitempty"`
	Field      string `json:"field,omitempty"`
	Message    string `json:"message"`
}

// BatchJob is one asynchronous ingestion run over one uploaded archive.
// Owned exclusively by the job manager; everyone else sees copies.
type BatchJob struct {
	ID             string       `json:"jobId"`
	UserID         string       `json:"userId"`
	Status         JobStatus    `json:"status"`
	TotalTrips     int          `json:"totalTrips"`
	ProcessedTrips int          `json:"processedTrips"`
	CreatedTripIDs []string     `json:"createdTripIds"`
	Errors         []BatchError `json:"errors"`
	StartedAt      time.Time    `json:"startedAt"`
	CompletedAt    *time.Time   `json:"completedAt,omitempty"`
}

// ====== RESPONSE TYPES ======

type BatchProgress struct {
	Percentage int `json:"percentage"`
	Completed  int `json:"completed"`
	Total      int `json:"total"`
	Remaining  int `json:"remaining"`
}

// BatchStatusResponse is the polling client's view of a job. Duration is in
// seconds; raw nanosecond counts are no use to a polling client.
type BatchStatusResponse struct {
	JobID          string        `json:"jobId"`
	Status         JobStatus     `json:"status"`
	TotalTrips     int           `json:"totalTrips"`
	ProcessedTrips int           `json:"processedTrips"`
	CreatedTripIDs []string      `json:"createdTripIds"`
	Errors         []BatchError  `json:"errors"`
	StartedAt      time.Time     `json:"startedAt"`
	CompletedAt    *time.Time    `json:"completedAt,omitempty"`
	Progress       BatchProgress `json:"progress"`
	HasErrors      bool          `json:"hasErrors"`
	IsComplete     bool          `json:"isComplete"`
	Duration       float64       `json:"duration"`
}

type SubmitResponse struct {
	JobID     string    `json:"jobId"`
	Status    JobStatus `json:"status"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

type ErrorResponse struct {
	Error     string    `json:"error"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// ====== HELPERS ======

func IsTripCharacteristic(v string) bool {
	for _, c := range TripCharacteristics {
		if v == c {
			return true
		}
	}
	return false
}

func IsTripSeason(v string) bool {
	for _, s := range TripSeasons {
		if v == s {
			return true
		}
	}
	return false
}

// IntPtr returns a pointer to v, for the optional index fields of BatchError.
func IntPtr(v int) *int { return &v }
