package utils

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
)

// BlobStore is the opaque file storage trips reference by URL. Tracks and
// media end up here; the ingestion core never touches a filesystem.
type BlobStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// HTTPBlobStore uploads blobs with a PUT against a base URL. Every call
// carries its own short deadline so a stalled store surfaces as a per-item
// failure instead of hanging the pipeline.
type HTTPBlobStore struct {
	BaseURL string
	Timeout time.Duration
	client  *http.Client
}

func NewHTTPBlobStore(baseURL string, timeout time.Duration) *HTTPBlobStore {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &HTTPBlobStore{
		BaseURL: baseURL,
		Timeout: timeout,
		client:  &http.Client{},
	}
}

func (s *HTTPBlobStore) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	target := fmt.Sprintf("%s/%s", s.BaseURL, url.PathEscape(key))
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, target, bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("blob upload failed for %s: %w", key, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		Zlog.Error("Blob store rejected upload",
			zap.String("key", key),
			zap.Int("status", resp.StatusCode))
		return "", fmt.Errorf("blob store returned status %d for %s", resp.StatusCode, key)
	}
	return target, nil
}
