package config

import (
	"errors"
	"os"
	"strconv"
)

type Config struct {
	DatabaseURL        string
	BlobStoreURL       string
	BlobTimeoutSeconds int
	LogLevel           string
	Debug              bool
	ServiceName        string
	Environment        string
	Port               string
	MaxUploadBytes     int64
	ArchiveMaxEntries  int
	ArchiveMaxBytes    int64
}

func LoadConfig() (*Config, error) {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	databaseUrl := os.Getenv("DATABASE_URL")
	if databaseUrl == "" {
		return nil, errors.New("DATABASE_URL is required")
	}

	blobStoreUrl := os.Getenv("BLOB_STORE_URL")
	if blobStoreUrl == "" {
		return nil, errors.New("BLOB_STORE_URL is required")
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}

	debug := os.Getenv("DEBUG")
	if debug == "" {
		debug = "false"
	}

	serviceName := os.Getenv("SERVICE_NAME")
	if serviceName == "" {
		serviceName = "trip-ingestor"
	}

	environment := os.Getenv("ENVIRONMENT")
	if environment == "" {
		environment = "development"
	}

	blobTimeout := 15 // default value
	if bt := os.Getenv("BLOB_TIMEOUT_SECONDS"); bt != "" {
		if parsed, err := strconv.Atoi(bt); err == nil {
			blobTimeout = parsed
		}
	}

	maxUpload := int64(100 << 20) // enforced before any parsing
	if mu := os.Getenv("MAX_UPLOAD_BYTES"); mu != "" {
		if parsed, err := strconv.ParseInt(mu, 10, 64); err == nil {
			maxUpload = parsed
		}
	}

	archiveMaxEntries := 1000
	if ae := os.Getenv("ARCHIVE_MAX_ENTRIES"); ae != "" {
		if parsed, err := strconv.Atoi(ae); err == nil {
			archiveMaxEntries = parsed
		}
	}

	archiveMaxBytes := int64(200 << 20)
	if ab := os.Getenv("ARCHIVE_MAX_BYTES"); ab != "" {
		if parsed, err := strconv.ParseInt(ab, 10, 64); err == nil {
			archiveMaxBytes = parsed
		}
	}

	return &Config{
		DatabaseURL:        databaseUrl,
		BlobStoreURL:       blobStoreUrl,
		BlobTimeoutSeconds: blobTimeout,
		LogLevel:           logLevel,
		Debug:              debug == "true",
		ServiceName:        serviceName,
		Environment:        environment,
		Port:               port,
		MaxUploadBytes:     maxUpload,
		ArchiveMaxEntries:  archiveMaxEntries,
		ArchiveMaxBytes:    archiveMaxBytes,
	}, nil
}
