package store

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/cutroom/cutroom-agent/internal/db"
	"github.com/cutroom/cutroom-agent/internal/timeline"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	tmpDir := t.TempDir()
	database, err := db.New(filepath.Join(tmpDir, "test.db"), nil)
	if err != nil {
		t.Fatalf("db.New: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	s, err := New(filepath.Join(tmpDir, "projects"), database.Conn(), discardLogger())
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}
	return s
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSaveAndLoad(t *testing.T) {
	s := testStore(t)
	p := timeline.NewProject("Demo")
	p.Tracks[0].Clips = append(p.Tracks[0].Clips, &timeline.Clip{
		ID:          timeline.NewID(),
		MediaFileID: "m1",
		StartTime:   1.5,
		EndTime:     7.5,
		TrimStart:   0.5,
		Volume:      1.0,
	})

	if err := s.Save(context.Background(), p); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := s.Load(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Name != "Demo" {
		t.Errorf("name = %s", loaded.Name)
	}
	if loaded.SchemaVersion != timeline.SchemaVersion {
		t.Errorf("schema version = %d, want %d", loaded.SchemaVersion, timeline.SchemaVersion)
	}
	if len(loaded.Tracks[0].Clips) != 1 {
		t.Fatalf("clips = %d, want 1", len(loaded.Tracks[0].Clips))
	}
	c := loaded.Tracks[0].Clips[0]
	if c.StartTime != 1.5 || c.EndTime != 7.5 || c.TrimStart != 0.5 {
		t.Errorf("clip = %+v", c)
	}
}

func TestLoadLatest(t *testing.T) {
	s := testStore(t)

	latest, err := s.LoadLatest(context.Background())
	if err != nil {
		t.Fatalf("LoadLatest on empty store: %v", err)
	}
	if latest != nil {
		t.Fatalf("LoadLatest on empty store = %+v, want nil", latest)
	}

	older := timeline.NewProject("Older")
	older.UpdatedAt = time.Now().Add(-time.Hour)
	newer := timeline.NewProject("Newer")

	if err := s.Save(context.Background(), older); err != nil {
		t.Fatalf("Save older: %v", err)
	}
	if err := s.Save(context.Background(), newer); err != nil {
		t.Fatalf("Save newer: %v", err)
	}

	latest, err = s.LoadLatest(context.Background())
	if err != nil {
		t.Fatalf("LoadLatest: %v", err)
	}
	if latest.Name != "Newer" {
		t.Errorf("latest = %s, want Newer", latest.Name)
	}
}

func TestListAndDelete(t *testing.T) {
	s := testStore(t)
	p := timeline.NewProject("Doomed")
	if err := s.Save(context.Background(), p); err != nil {
		t.Fatalf("Save: %v", err)
	}

	infos, err := s.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(infos) != 1 || infos[0].ID != p.ID {
		t.Fatalf("infos = %+v", infos)
	}

	if err := s.Delete(context.Background(), p.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	infos, _ = s.List(context.Background())
	if len(infos) != 0 {
		t.Errorf("project survives delete: %+v", infos)
	}
	if _, err := s.Load(context.Background(), p.ID); err == nil {
		t.Error("snapshot file survives delete")
	}
}

func TestMigrateSnapshot_V1FillsDefaults(t *testing.T) {
	v1 := []byte(`{
		"id": "p1",
		"name": "Legacy",
		"schema_version": 1,
		"tracks": [
			{"id": "t1", "name": "Main", "kind": "video", "clips": [
				{"id": "c1", "media_file_id": "m1", "start_time": 0, "end_time": 5}
			]}
		]
	}`)

	p, err := MigrateSnapshot(v1)
	if err != nil {
		t.Fatalf("MigrateSnapshot: %v", err)
	}
	if p.SchemaVersion != timeline.SchemaVersion {
		t.Errorf("schema version = %d, want %d", p.SchemaVersion, timeline.SchemaVersion)
	}
	if p.Tracks[0].Volume != 1.0 {
		t.Errorf("track volume = %g, want 1", p.Tracks[0].Volume)
	}
	if p.Tracks[0].Clips[0].Volume != 1.0 {
		t.Errorf("clip volume = %g, want 1", p.Tracks[0].Clips[0].Volume)
	}
}

func TestMigrateSnapshot_NewerSchemaRejected(t *testing.T) {
	data := []byte(`{"id": "p1", "schema_version": 99}`)
	if _, err := MigrateSnapshot(data); err == nil {
		t.Fatal("expected error for newer schema")
	}
}

func TestAutosaver_SaveNow(t *testing.T) {
	s := testStore(t)
	session := timeline.NewSession()
	a := NewAutosaver(s, session, time.Minute, discardLogger())

	// No project: nothing to save, no error.
	if err := a.SaveNow(context.Background()); err != nil {
		t.Fatalf("SaveNow without project: %v", err)
	}

	p := timeline.NewProject("Autosaved")
	session.SetProject(p)
	if err := a.SaveNow(context.Background()); err != nil {
		t.Fatalf("SaveNow: %v", err)
	}

	loaded, err := s.Load(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Name != "Autosaved" {
		t.Errorf("loaded = %s", loaded.Name)
	}
}

func TestAutosaver_SavesOnShutdown(t *testing.T) {
	s := testStore(t)
	session := timeline.NewSession()
	p := timeline.NewProject("Final Save")
	session.SetProject(p)

	a := NewAutosaver(s, session, time.Hour, discardLogger())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		a.Start(ctx)
		close(done)
	}()
	cancel()
	<-done

	loaded, err := s.Load(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("Load after shutdown: %v", err)
	}
	if loaded.Name != "Final Save" {
		t.Errorf("loaded = %s", loaded.Name)
	}
}
