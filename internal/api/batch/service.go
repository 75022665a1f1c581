package batch

import (
	"context"
	"fmt"
	"net/http"
	"path"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/viamarket/trip-ingestor/internal/archive"
	"github.com/viamarket/trip-ingestor/internal/gpx"
	"github.com/viamarket/trip-ingestor/internal/loaders"
	"github.com/viamarket/trip-ingestor/internal/manifest"
	"github.com/viamarket/trip-ingestor/internal/types"
	"github.com/viamarket/trip-ingestor/internal/utils"
)

const (
	topTrackPath     = "main.gpx"
	stagePrefix      = "tappe"
	stageTrackName   = "tappa.gpx"
	mediaPrefix      = "media"
	travelDateLayout = "2006-01-02"
)

// TripStore persists one validated trip atomically and returns its id.
// Implemented by loaders.PostgresClient.
type TripStore interface {
	InsertTrip(ctx context.Context, rec loaders.TripRecord) (string, error)
}

// Service drives the ingestion pipeline for submitted archives.
type Service struct {
	store  TripStore
	blobs  utils.BlobStore
	jobs   *JobManager
	limits archive.Limits
}

func NewService(store TripStore, blobs utils.BlobStore, jobs *JobManager, limits archive.Limits) *Service {
	return &Service{store: store, blobs: blobs, jobs: jobs, limits: limits}
}

func (s *Service) Jobs() *JobManager {
	return s.jobs
}

// SubmitBatch allocates a pending job and hands the archive to a background
// goroutine, returning the job id immediately. The caller is expected to
// have already verified the uploader's authoring capability and the payload
// size cap.
func (s *Service) SubmitBatch(userID string, archiveBytes []byte) string {
	jobID := s.jobs.Create(userID)

	utils.Zlog.Info("Batch job submitted",
		zap.String("jobId", jobID),
		zap.String("userId", userID),
		zap.Int("archiveBytes", len(archiveBytes)))

	go s.run(jobID, userID, archiveBytes)
	return jobID
}

// run executes the pipeline for one job. Archive or manifest faults fail the
// job before any trip is attempted; everything after that is isolated per
// trip, and the job always ends completed once the trip loop has been
// entered.
func (s *Service) run(jobID, userID string, archiveBytes []byte) {
	ctx := context.Background()

	a, err := archive.Open(archiveBytes, s.limits)
	if err != nil {
		utils.Zlog.Error("Archive unreadable", zap.String("jobId", jobID), zap.Error(err))
		s.jobs.Fail(jobID, Normalize(err))
		return
	}

	trips, err := manifest.Parse(a)
	if err != nil {
		utils.Zlog.Error("Manifest rejected", zap.String("jobId", jobID), zap.Error(err))
		s.jobs.Fail(jobID, Normalize(err))
		return
	}

	s.jobs.BeginProcessing(jobID, len(trips))
	utils.Zlog.Info("Processing batch",
		zap.String("jobId", jobID),
		zap.Int("totalTrips", len(trips)))

	// Archive-level tracks and media only apply in single-trip mode; a
	// multi-trip manifest carries structured data only.
	single := len(trips) == 1

	for i, trip := range trips {
		if s.jobs.CancelRequested(jobID) {
			utils.Zlog.Info("Batch cancelled, stopping before next trip",
				zap.String("jobId", jobID),
				zap.Int("nextTripIndex", i))
			break
		}
		s.processTrip(ctx, jobID, userID, i, trip, a, single)
	}

	s.jobs.Complete(jobID)
	utils.Zlog.Info("Batch finished", zap.String("jobId", jobID))
}

// processTrip runs validate -> track check -> persist for one trip. Every
// failure path records errors against this trip only and returns; siblings
// are unaffected.
func (s *Service) processTrip(ctx context.Context, jobID, userID string, index int, trip types.TripManifestEntry, a *archive.Archive, single bool) {
	errs := ValidateTrip(trip)

	var travelDate *time.Time
	if trip.TravelDate != "" {
		parsed, err := time.Parse(travelDateLayout, trip.TravelDate)
		if err != nil {
			errs = append(errs, types.BatchError{
				Field:   "data_viaggio",
				Message: fmt.Sprintf("travel date must use the %s format", travelDateLayout),
			})
		} else {
			travelDate = &parsed
		}
	}

	if len(errs) > 0 {
		s.jobs.RecordFailure(jobID, stampTripIndex(index, errs))
		return
	}

	rec := loaders.TripRecord{
		UserID:             userID,
		Title:              trip.Title,
		Summary:            trip.Summary,
		Destination:        trip.Destination,
		Theme:              trip.Theme,
		Characteristics:    trip.Characteristics,
		RecommendedSeasons: trip.RecommendedSeasons,
		Tags:               trip.Tags,
		TravelDate:         travelDate,
		Stages:             make([]loaders.StageRecord, len(trip.Stages)),
	}
	for i, stage := range trip.Stages {
		rec.Stages[i] = loaders.StageRecord{
			Title:       stage.Title,
			Description: stage.Description,
			RouteType:   stage.RouteType,
			Duration:    stage.Duration,
		}
	}

	if single {
		if trackErrs := validateTracks(a); len(trackErrs) > 0 {
			s.jobs.RecordFailure(jobID, stampTripIndex(index, trackErrs))
			return
		}
		if err := s.uploadArchiveFiles(ctx, jobID, index, a, &rec); err != nil {
			utils.Zlog.Error("Blob upload failed",
				zap.String("jobId", jobID),
				zap.Int("tripIndex", index),
				zap.Error(err))
			s.jobs.RecordFailure(jobID, stampTripIndex(index, Normalize(err)))
			return
		}
	}

	tripID, err := s.store.InsertTrip(ctx, rec)
	if err != nil {
		utils.Zlog.Error("Trip persistence failed",
			zap.String("jobId", jobID),
			zap.Int("tripIndex", index),
			zap.Error(err))
		s.jobs.RecordFailure(jobID, stampTripIndex(index, Normalize(err)))
		return
	}

	s.jobs.RecordSuccess(jobID, tripID)
}

// validateTracks checks the optional top-level and per-stage track files.
// Absent tracks are fine; publication rules enforce their presence later,
// not ingestion.
func validateTracks(a *archive.Archive) []types.BatchError {
	var errs []types.BatchError

	if a.HasEntry(topTrackPath) {
		if msg := checkTrack(a, topTrackPath); msg != "" {
			errs = append(errs, types.BatchError{
				Field:   topTrackPath,
				Message: msg,
			})
		}
	}

	for i, folder := range stageFolders(a) {
		trackPath := folder + "/" + stageTrackName
		if !a.HasEntry(trackPath) {
			continue
		}
		if msg := checkTrack(a, trackPath); msg != "" {
			errs = append(errs, types.BatchError{
				StageIndex: types.IntPtr(i),
				Field:      stageTrackName,
				Message:    msg,
			})
		}
	}

	return errs
}

// checkTrack reads and validates one track entry, returning an empty string
// when it is fine. A failing read is reported separately from malformed GPX
// so the client knows whether the archive entry or the track content is the
// problem.
func checkTrack(a *archive.Archive, trackPath string) string {
	raw, err := a.ReadEntry(trackPath)
	if err != nil {
		return fmt.Sprintf("unreadable archive entry %s", trackPath)
	}
	if gpx.Validate(raw) != nil {
		return fmt.Sprintf("invalid track file %s", trackPath)
	}
	return ""
}

// uploadArchiveFiles copies tracks and media to the blob store and records
// the resulting URLs on the trip. Stage folders map to stages by their
// position in lexicographic order; folders beyond the manifest's stage list
// are ignored.
func (s *Service) uploadArchiveFiles(ctx context.Context, jobID string, index int, a *archive.Archive, rec *loaders.TripRecord) error {
	if a.HasEntry(topTrackPath) {
		url, err := s.putEntry(ctx, jobID, index, a, topTrackPath)
		if err != nil {
			return err
		}
		rec.TrackURL = url
	}

	for _, entry := range a.ListEntriesUnderPrefix(mediaPrefix) {
		url, err := s.putEntry(ctx, jobID, index, a, entry)
		if err != nil {
			return err
		}
		rec.MediaURLs = append(rec.MediaURLs, url)
	}

	for i, folder := range stageFolders(a) {
		if i >= len(rec.Stages) {
			break
		}
		trackPath := folder + "/" + stageTrackName
		if a.HasEntry(trackPath) {
			url, err := s.putEntry(ctx, jobID, index, a, trackPath)
			if err != nil {
				return err
			}
			rec.Stages[i].TrackURL = url
		}
		for _, entry := range a.ListEntriesUnderPrefix(folder + "/" + mediaPrefix) {
			url, err := s.putEntry(ctx, jobID, index, a, entry)
			if err != nil {
				return err
			}
			rec.Stages[i].MediaURLs = append(rec.Stages[i].MediaURLs, url)
		}
	}

	return nil
}

func (s *Service) putEntry(ctx context.Context, jobID string, index int, a *archive.Archive, entry string) (string, error) {
	raw, err := a.ReadEntry(entry)
	if err != nil {
		return "", err
	}
	key := fmt.Sprintf("batch/%s/trip-%d/%s", jobID, index, entry)
	return s.blobs.Put(ctx, key, raw, contentTypeFor(entry, raw))
}

func contentTypeFor(entry string, raw []byte) string {
	if strings.HasSuffix(entry, ".gpx") {
		return "application/gpx+xml"
	}
	return http.DetectContentType(raw)
}

// stageFolders lists the tappe/<NN>-<slug> folders in lexicographic order,
// which the two-digit prefix makes stage order.
func stageFolders(a *archive.Archive) []string {
	seen := make(map[string]bool)
	var folders []string
	for _, entry := range a.ListEntriesUnderPrefix(stagePrefix) {
		rest := strings.TrimPrefix(entry, stagePrefix+"/")
		folder, _, found := strings.Cut(rest, "/")
		if !found || folder == "" {
			continue
		}
		full := path.Join(stagePrefix, folder)
		if !seen[full] {
			seen[full] = true
			folders = append(folders, full)
		}
	}
	return folders
}

func stampTripIndex(index int, errs []types.BatchError) []types.BatchError {
	for i := range errs {
		if errs[i].TripIndex == nil {
			errs[i].TripIndex = types.IntPtr(index)
		}
	}
	return errs
}
