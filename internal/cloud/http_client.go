package cloud

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// UploadError represents an error from the snapshot backup endpoint.
type UploadError struct {
	StatusCode int
	Body       string
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("snapshot upload failed: HTTP %d: %s", e.StatusCode, e.Body)
}

// IsRetryable returns true for server errors (5xx) and network errors.
// Client errors (4xx) are considered permanent.
func (e *UploadError) IsRetryable() bool {
	return e.StatusCode >= 500
}

// HTTPClient posts project snapshots to the Cutroom backup service.
type HTTPClient struct {
	baseURL    string
	token      string
	deviceID   string
	httpClient *http.Client
	logger     *slog.Logger
}

func NewHTTPClient(baseURL, token string, logger *slog.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		logger: logger,
	}
}

func (c *HTTPClient) SetDeviceID(id string) {
	c.deviceID = id
}

func (c *HTTPClient) RegisterDevice(deviceID string) error {
	c.deviceID = deviceID
	c.logger.Info("cloud http: device registered", "device_id", deviceID)
	return nil
}

func (c *HTTPClient) UploadSnapshot(ctx context.Context, payload SnapshotPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal snapshot payload: %w", err)
	}

	url := fmt.Sprintf("%s/api/backup/snapshots", c.baseURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("X-Cutroom-Request-Id", uuid.NewString())
	if c.deviceID != "" {
		req.Header.Set("X-Cutroom-Device-Id", c.deviceID)
	}

	c.logger.Info("uploading snapshot to cloud",
		"url", url,
		"project_id", payload.ProjectID,
		"body_bytes", len(body),
	)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		var result SnapshotIngestResponse
		if err := json.Unmarshal(respBody, &result); err == nil {
			c.logger.Info("snapshot upload succeeded",
				"project_id", result.ProjectID,
				"revision", result.Revision,
			)
		}
		return nil
	}

	return &UploadError{StatusCode: resp.StatusCode, Body: string(respBody)}
}
