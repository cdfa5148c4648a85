package playback

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func TestParseRange(t *testing.T) {
	const size = 1000

	cases := []struct {
		name    string
		header  string
		want    *ByteRange
		wantErr error
	}{
		{"no header", "", nil, nil},
		{"full range", "bytes=0-999", &ByteRange{0, 999}, nil},
		{"open ended", "bytes=500-", &ByteRange{500, 999}, nil},
		{"suffix", "bytes=-200", &ByteRange{800, 999}, nil},
		{"suffix larger than file", "bytes=-2000", &ByteRange{0, 999}, nil},
		{"end clamped", "bytes=0-5000", &ByteRange{0, 999}, nil},
		{"multi range uses first", "bytes=0-99,200-299", &ByteRange{0, 99}, nil},
		{"missing prefix", "0-99", nil, ErrInvalidRange},
		{"garbage", "bytes=abc-def", nil, ErrInvalidRange},
		{"negative start", "bytes=-0", nil, ErrInvalidRange},
		{"start past end", "bytes=500-100", nil, ErrUnsatisfiable},
		{"start past size", "bytes=1000-", nil, ErrUnsatisfiable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseRange(tc.header, size)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("error = %v, want %v", err, tc.wantErr)
			}
			if tc.want == nil {
				if got != nil {
					t.Fatalf("range = %+v, want nil", got)
				}
				return
			}
			if got == nil || *got != *tc.want {
				t.Errorf("range = %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestContentLengthAndRange(t *testing.T) {
	r := ByteRange{Start: 100, End: 199}
	if r.ContentLength() != 100 {
		t.Errorf("ContentLength = %d, want 100", r.ContentLength())
	}
	if got := r.ContentRange(1000); got != "bytes 100-199/1000" {
		t.Errorf("ContentRange = %s", got)
	}
}

func writeMediaFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "clip.mp4")
	data := make([]byte, 1000)
	for i := range data {
		data[i] = byte(i % 256)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("write media: %v", err)
	}
	return path
}

func TestServeFile_FullContent(t *testing.T) {
	s := NewServer(nil)
	path := writeMediaFile(t)

	req := httptest.NewRequest(http.MethodGet, "/media", nil)
	rec := httptest.NewRecorder()
	if err := s.ServeFile(rec, req, path); err != nil {
		t.Fatalf("ServeFile: %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if rec.Body.Len() != 1000 {
		t.Errorf("body length = %d, want 1000", rec.Body.Len())
	}
	if got := rec.Header().Get("Accept-Ranges"); got != "bytes" {
		t.Errorf("Accept-Ranges = %s", got)
	}
}

func TestServeFile_PartialContent(t *testing.T) {
	s := NewServer(nil)
	path := writeMediaFile(t)

	req := httptest.NewRequest(http.MethodGet, "/media", nil)
	req.Header.Set("Range", "bytes=100-199")
	rec := httptest.NewRecorder()
	if err := s.ServeFile(rec, req, path); err != nil {
		t.Fatalf("ServeFile: %v", err)
	}

	if rec.Code != http.StatusPartialContent {
		t.Errorf("status = %d, want 206", rec.Code)
	}
	if got := rec.Header().Get("Content-Range"); got != "bytes 100-199/1000" {
		t.Errorf("Content-Range = %s", got)
	}
	body := rec.Body.Bytes()
	if len(body) != 100 {
		t.Fatalf("body length = %d, want 100", len(body))
	}
	if body[0] != 100 {
		t.Errorf("first byte = %d, want 100", body[0])
	}
}

func TestServeFile_Unsatisfiable(t *testing.T) {
	s := NewServer(nil)
	path := writeMediaFile(t)

	req := httptest.NewRequest(http.MethodGet, "/media", nil)
	req.Header.Set("Range", "bytes=5000-")
	rec := httptest.NewRecorder()
	if err := s.ServeFile(rec, req, path); err != nil {
		t.Fatalf("ServeFile: %v", err)
	}
	if rec.Code != http.StatusRequestedRangeNotSatisfiable {
		t.Errorf("status = %d, want 416", rec.Code)
	}
}

func TestServeFile_Missing(t *testing.T) {
	s := NewServer(nil)

	req := httptest.NewRequest(http.MethodGet, "/media", nil)
	rec := httptest.NewRecorder()
	if err := s.ServeFile(rec, req, "/does/not/exist.mp4"); err != nil {
		t.Fatalf("ServeFile: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}
