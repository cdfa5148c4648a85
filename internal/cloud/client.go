package cloud

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"
)

// SnapshotPayload is a project snapshot sent to the backup endpoint.
type SnapshotPayload struct {
	ProjectID     string          `json:"project_id"`
	ProjectName   string          `json:"project_name"`
	SchemaVersion int             `json:"schema_version"`
	Snapshot      json.RawMessage `json:"snapshot"`
	SavedAt       time.Time       `json:"saved_at"`
}

type SnapshotIngestResponse struct {
	ProjectID string `json:"project_id"`
	Revision  int    `json:"revision"`
}

// Client backs up project snapshots off the machine. Backups are always
// best-effort; editing never blocks on the cloud.
type Client interface {
	UploadSnapshot(ctx context.Context, payload SnapshotPayload) error
	RegisterDevice(deviceID string) error
}

// StubClient logs instead of talking to any backend. Used when no backup
// URL is configured.
type StubClient struct {
	logger *slog.Logger
}

func NewStubClient(logger *slog.Logger) *StubClient {
	return &StubClient{logger: logger}
}

func (c *StubClient) UploadSnapshot(ctx context.Context, payload SnapshotPayload) error {
	c.logger.Info("cloud stub: snapshot upload requested",
		"project_id", payload.ProjectID, "bytes", len(payload.Snapshot))
	return nil
}

func (c *StubClient) RegisterDevice(deviceID string) error {
	c.logger.Info("cloud stub: device registration requested", "device_id", deviceID)
	return nil
}
