package batch

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/viamarket/trip-ingestor/internal/archive"
	"github.com/viamarket/trip-ingestor/internal/config"
	"github.com/viamarket/trip-ingestor/internal/loaders"
	"github.com/viamarket/trip-ingestor/internal/utils"
)

func RegisterRoutes(router *gin.RouterGroup, db *loaders.PostgresClient, cfg *config.Config) {
	blobs := utils.NewHTTPBlobStore(cfg.BlobStoreURL, time.Duration(cfg.BlobTimeoutSeconds)*time.Second)
	limits := archive.Limits{
		MaxEntries:          cfg.ArchiveMaxEntries,
		MaxUncompressedSize: cfg.ArchiveMaxBytes,
	}

	service := NewService(db, blobs, NewJobManager(), limits)
	controller := NewController(service, cfg.MaxUploadBytes)

	router.POST("/trips/batch", controller.Submit)
	router.GET("/trips/batch/:jobId/status", controller.Status)
	router.POST("/trips/batch/:jobId/cancel", controller.Cancel)
}
