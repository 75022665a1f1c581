package batch

import (
	"math"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/viamarket/trip-ingestor/internal/types"
)

// CancelResult is the outcome of a cancellation request.
type CancelResult int

const (
	CancelAccepted CancelResult = iota
	CancelNotFound
	CancelConflict
)

type jobRecord struct {
	job             types.BatchJob
	cancelRequested bool
}

// JobManager owns the in-memory job table and the job lifecycle
// pending -> processing -> {completed, failed}. All access goes through the
// mutex so a poll never observes a progress counter without its matching
// error or trip-id entry. Records do not survive a process restart.
type JobManager struct {
	mu   sync.Mutex
	jobs map[string]*jobRecord
	now  func() time.Time
}

func NewJobManager() *JobManager {
	return &JobManager{
		jobs: make(map[string]*jobRecord),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// Create allocates a pending job and returns its id.
func (m *JobManager) Create(userID string) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := uuid.New().String()
	m.jobs[id] = &jobRecord{
		job: types.BatchJob{
			ID:             id,
			UserID:         userID,
			Status:         types.StatusPending,
			CreatedTripIDs: []string{},
			Errors:         []types.BatchError{},
			StartedAt:      m.now(),
		},
	}
	return id
}

// BeginProcessing records the discovered trip count and moves the job to
// processing. Called once, after the manifest has been decoded.
func (m *JobManager) BeginProcessing(jobID string, totalTrips int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if rec, ok := m.jobs[jobID]; ok {
		rec.job.TotalTrips = totalTrips
		rec.job.Status = types.StatusProcessing
	}
}

// RecordSuccess appends a persisted trip id and bumps the attempt counter in
// the same critical section.
func (m *JobManager) RecordSuccess(jobID, tripID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if rec, ok := m.jobs[jobID]; ok {
		rec.job.CreatedTripIDs = append(rec.job.CreatedTripIDs, tripID)
		rec.job.ProcessedTrips++
	}
}

// RecordFailure appends the trip's errors and bumps the attempt counter in
// the same critical section.
func (m *JobManager) RecordFailure(jobID string, errs []types.BatchError) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if rec, ok := m.jobs[jobID]; ok {
		rec.job.Errors = append(rec.job.Errors, errs...)
		rec.job.ProcessedTrips++
	}
}

// Complete marks the job completed. "Completed" means the pipeline finished
// running; whether every trip succeeded is visible through the errors list.
func (m *JobManager) Complete(jobID string) {
	m.terminate(jobID, types.StatusCompleted, nil)
}

// Fail marks the job failed with the fatal pipeline fault. Only reachable
// before any trip has been attempted.
func (m *JobManager) Fail(jobID string, errs []types.BatchError) {
	m.terminate(jobID, types.StatusFailed, errs)
}

func (m *JobManager) terminate(jobID string, status types.JobStatus, errs []types.BatchError) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if rec, ok := m.jobs[jobID]; ok {
		rec.job.Errors = append(rec.job.Errors, errs...)
		rec.job.Status = status
		done := m.now()
		rec.job.CompletedAt = &done
	}
}

// Cancel sets the cooperative cancellation flag. Trips already persisted are
// never undone; the pipeline stops at the next between-trips checkpoint.
func (m *JobManager) Cancel(jobID string) CancelResult {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.jobs[jobID]
	if !ok {
		return CancelNotFound
	}
	if rec.job.Status == types.StatusCompleted || rec.job.Status == types.StatusFailed {
		return CancelConflict
	}
	rec.cancelRequested = true
	return CancelAccepted
}

// CancelRequested reports the cancellation flag for the pipeline's
// between-trips checkpoint.
func (m *JobManager) CancelRequested(jobID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.jobs[jobID]
	return ok && rec.cancelRequested
}

// Get returns a snapshot copy of the job.
func (m *JobManager) Get(jobID string) (types.BatchJob, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.jobs[jobID]
	if !ok {
		return types.BatchJob{}, false
	}
	return copyJob(rec.job), true
}

// Status builds the polling client's view, including the derived progress
// figures.
func (m *JobManager) Status(jobID string) (types.BatchStatusResponse, bool) {
	job, ok := m.Get(jobID)
	if !ok {
		return types.BatchStatusResponse{}, false
	}

	percentage := 0
	if job.TotalTrips > 0 {
		percentage = int(math.Round(float64(job.ProcessedTrips) / float64(job.TotalTrips) * 100))
	}

	isComplete := job.Status == types.StatusCompleted || job.Status == types.StatusFailed
	end := m.now()
	if job.CompletedAt != nil {
		end = *job.CompletedAt
	}

	return types.BatchStatusResponse{
		JobID:          job.ID,
		Status:         job.Status,
		TotalTrips:     job.TotalTrips,
		ProcessedTrips: job.ProcessedTrips,
		CreatedTripIDs: job.CreatedTripIDs,
		Errors:         job.Errors,
		StartedAt:      job.StartedAt,
		CompletedAt:    job.CompletedAt,
		Progress: types.BatchProgress{
			Percentage: percentage,
			Completed:  job.ProcessedTrips,
			Total:      job.TotalTrips,
			Remaining:  job.TotalTrips - job.ProcessedTrips,
		},
		HasErrors:  len(job.Errors) > 0,
		IsComplete: isComplete,
		Duration:   end.Sub(job.StartedAt).Seconds(),
	}, true
}

// Count returns the number of jobs in the table.
func (m *JobManager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.jobs)
}

// Reset drops every job record. Used at process shutdown and in tests.
func (m *JobManager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jobs = make(map[string]*jobRecord)
}

func copyJob(job types.BatchJob) types.BatchJob {
	out := job
	out.CreatedTripIDs = append([]string{}, job.CreatedTripIDs...)
	out.Errors = append([]types.BatchError{}, job.Errors...)
	if job.CompletedAt != nil {
		done := *job.CompletedAt
		out.CompletedAt = &done
	}
	return out
}
