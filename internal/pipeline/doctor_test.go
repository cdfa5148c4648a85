package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"
)

type fakeDoctor struct {
	calls int
	caps  *Capabilities
	err   error
}

func (f *fakeDoctor) RunDoctor(ctx context.Context) (*Capabilities, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	caps := *f.caps
	caps.ProbedAt = time.Now()
	return &caps, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCachedDoctor_CachesWithinTTL(t *testing.T) {
	fake := &fakeDoctor{caps: &Capabilities{HasFFmpeg: true, HasFFprobe: true}}
	d := NewCachedDoctor(fake, discardLogger())

	for i := 0; i < 3; i++ {
		caps, err := d.Get(context.Background())
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if !caps.HasFFmpeg {
			t.Error("HasFFmpeg = false, want true")
		}
	}
	if fake.calls != 1 {
		t.Errorf("doctor ran %d times, want 1", fake.calls)
	}
}

func TestCachedDoctor_RefreshBypassesCache(t *testing.T) {
	fake := &fakeDoctor{caps: &Capabilities{HasFFmpeg: true}}
	d := NewCachedDoctor(fake, discardLogger())

	if _, err := d.Get(context.Background()); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if _, err := d.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if fake.calls != 2 {
		t.Errorf("doctor ran %d times, want 2", fake.calls)
	}
}

func TestCachedDoctor_StaleCacheOnError(t *testing.T) {
	fake := &fakeDoctor{caps: &Capabilities{HasFFmpeg: true}}
	d := NewCachedDoctor(fake, discardLogger())

	if _, err := d.Get(context.Background()); err != nil {
		t.Fatalf("Get: %v", err)
	}

	fake.err = errors.New("probe exploded")
	caps, err := d.Refresh(context.Background())
	if err != nil {
		t.Fatalf("Refresh with stale cache: %v", err)
	}
	if !caps.HasFFmpeg {
		t.Error("stale capabilities lost")
	}
}

func TestCachedDoctor_ErrorWithoutCache(t *testing.T) {
	fake := &fakeDoctor{err: errors.New("probe exploded")}
	d := NewCachedDoctor(fake, discardLogger())

	if _, err := d.Get(context.Background()); err == nil {
		t.Fatal("expected error with no cache to fall back on")
	}
}

func TestCachedDoctor_Invalidate(t *testing.T) {
	fake := &fakeDoctor{caps: &Capabilities{HasFFmpeg: true}}
	d := NewCachedDoctor(fake, discardLogger())

	if _, err := d.Get(context.Background()); err != nil {
		t.Fatalf("Get: %v", err)
	}
	d.Invalidate()
	if d.Peek() != nil {
		t.Error("Peek after Invalidate should be nil")
	}
	if _, err := d.Get(context.Background()); err != nil {
		t.Fatalf("Get after invalidate: %v", err)
	}
	if fake.calls != 2 {
		t.Errorf("doctor ran %d times, want 2", fake.calls)
	}
}
