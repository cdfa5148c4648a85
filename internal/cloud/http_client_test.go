package cloud

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testPayload() SnapshotPayload {
	return SnapshotPayload{
		ProjectID:     "p1",
		ProjectName:   "Demo",
		SchemaVersion: 2,
		Snapshot:      json.RawMessage(`{"id":"p1"}`),
		SavedAt:       time.Now(),
	}
}

func TestUploadSnapshot_Success(t *testing.T) {
	var gotAuth, gotDevice, gotPath string
	var gotPayload SnapshotPayload

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotDevice = r.Header.Get("X-Cutroom-Device-Id")
		gotPath = r.URL.Path
		json.NewDecoder(r.Body).Decode(&gotPayload)
		json.NewEncoder(w).Encode(SnapshotIngestResponse{ProjectID: "p1", Revision: 3})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "secret-token", discardLogger())
	c.SetDeviceID("device-1")

	if err := c.UploadSnapshot(context.Background(), testPayload()); err != nil {
		t.Fatalf("UploadSnapshot: %v", err)
	}
	if gotAuth != "Bearer secret-token" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotDevice != "device-1" {
		t.Errorf("device header = %q", gotDevice)
	}
	if gotPath != "/api/backup/snapshots" {
		t.Errorf("path = %q", gotPath)
	}
	if gotPayload.ProjectID != "p1" {
		t.Errorf("payload project = %q", gotPayload.ProjectID)
	}
}

func TestUploadSnapshot_ServerErrorIsRetryable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "backend down", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "t", discardLogger())
	err := c.UploadSnapshot(context.Background(), testPayload())

	var uploadErr *UploadError
	if !errors.As(err, &uploadErr) {
		t.Fatalf("error = %v, want *UploadError", err)
	}
	if !uploadErr.IsRetryable() {
		t.Error("500 should be retryable")
	}
}

func TestUploadSnapshot_ClientErrorIsPermanent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad payload", http.StatusBadRequest)
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "t", discardLogger())
	err := c.UploadSnapshot(context.Background(), testPayload())

	var uploadErr *UploadError
	if !errors.As(err, &uploadErr) {
		t.Fatalf("error = %v, want *UploadError", err)
	}
	if uploadErr.IsRetryable() {
		t.Error("400 should not be retryable")
	}
}

func TestUploadSnapshot_NetworkError(t *testing.T) {
	c := NewHTTPClient("http://127.0.0.1:1", "t", discardLogger())
	if err := c.UploadSnapshot(context.Background(), testPayload()); err == nil {
		t.Fatal("expected network error")
	}
}
