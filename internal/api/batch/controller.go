package batch

import (
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/viamarket/trip-ingestor/internal/types"
	"github.com/viamarket/trip-ingestor/internal/utils"
)

// UserIDHeader carries the uploader's id, set by the upstream auth proxy
// after it has verified the trip-authoring capability.
const UserIDHeader = "X-User-Id"

// Controller adapts HTTP requests to the batch service. Authentication,
// roles and payments live upstream; only pre-submission checks happen here.
type Controller struct {
	service        *Service
	maxUploadBytes int64
}

func NewController(service *Service, maxUploadBytes int64) *Controller {
	return &Controller{service: service, maxUploadBytes: maxUploadBytes}
}

// Submit accepts a multipart zip upload and returns the job id immediately.
func (ctrl *Controller) Submit(c *gin.Context) {
	userID := c.GetHeader(UserIDHeader)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, types.ErrorResponse{
			Error:     "Unauthorized",
			Message:   "uploader identity header is missing",
			Timestamp: time.Now().UTC(),
		})
		return
	}

	if c.Request.ContentLength > ctrl.maxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, types.ErrorResponse{
			Error:     "Payload Too Large",
			Message:   "archive exceeds the upload size cap",
			Timestamp: time.Now().UTC(),
		})
		return
	}

	fileHeader, err := c.FormFile("archive")
	if err != nil {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{
			Error:     "Bad Request",
			Message:   "multipart field 'archive' is required",
			Timestamp: time.Now().UTC(),
		})
		return
	}
	if !strings.HasSuffix(strings.ToLower(fileHeader.Filename), ".zip") {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{
			Error:     "Bad Request",
			Message:   "archive must be a .zip file",
			Timestamp: time.Now().UTC(),
		})
		return
	}
	if fileHeader.Size > ctrl.maxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, types.ErrorResponse{
			Error:     "Payload Too Large",
			Message:   "archive exceeds the upload size cap",
			Timestamp: time.Now().UTC(),
		})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{
			Error:     "Bad Request",
			Message:   "unable to read uploaded archive",
			Timestamp: time.Now().UTC(),
		})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, ctrl.maxUploadBytes+1))
	if err != nil || int64(len(data)) > ctrl.maxUploadBytes {
		utils.Zlog.Error("Failed to buffer uploaded archive", zap.Error(err))
		c.JSON(http.StatusRequestEntityTooLarge, types.ErrorResponse{
			Error:     "Payload Too Large",
			Message:   "archive exceeds the upload size cap",
			Timestamp: time.Now().UTC(),
		})
		return
	}

	jobID := ctrl.service.SubmitBatch(userID, data)
	c.JSON(http.StatusAccepted, types.SubmitResponse{
		JobID:     jobID,
		Status:    types.StatusPending,
		Message:   "Batch queued for processing",
		Timestamp: time.Now().UTC(),
	})
}

// Status reports the polling view of a job.
func (ctrl *Controller) Status(c *gin.Context) {
	status, ok := ctrl.service.Jobs().Status(c.Param("jobId"))
	if !ok {
		c.JSON(http.StatusNotFound, types.ErrorResponse{
			Error:     "Not Found",
			Message:   "unknown job id",
			Timestamp: time.Now().UTC(),
		})
		return
	}
	c.JSON(http.StatusOK, status)
}

// Cancel requests cooperative cancellation of a running job.
func (ctrl *Controller) Cancel(c *gin.Context) {
	switch ctrl.service.Jobs().Cancel(c.Param("jobId")) {
	case CancelNotFound:
		c.JSON(http.StatusNotFound, types.ErrorResponse{
			Error:     "Not Found",
			Message:   "unknown job id",
			Timestamp: time.Now().UTC(),
		})
	case CancelConflict:
		c.JSON(http.StatusConflict, types.ErrorResponse{
			Error:     "Conflict",
			Message:   "job is already in a terminal state",
			Timestamp: time.Now().UTC(),
		})
	default:
		c.JSON(http.StatusAccepted, gin.H{"status": "cancellation requested"})
	}
}
