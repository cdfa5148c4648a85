package api

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/cutroom/cutroom-agent/internal/db"
	"github.com/cutroom/cutroom-agent/internal/store"
	"github.com/cutroom/cutroom-agent/internal/timeline"
)

// newStoreEnv wires the router against a real SQLite-backed store so the
// project lifecycle endpoints hit the same persistence path production does.
func newStoreEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	dir := t.TempDir()

	database, err := db.New(filepath.Join(dir, "test.db"), logger)
	if err != nil {
		t.Fatalf("db.New: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	st, err := store.New(filepath.Join(dir, "projects"), database.Conn(), logger)
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}

	session := timeline.NewSession()
	library := &fakeLibrary{durations: map[string]float64{"long": 10}}
	engine := timeline.NewEngine(session, library, timeline.RippleInsert, logger)
	autosaver := store.NewAutosaver(st, session, time.Hour, logger)

	cfg := ServerConfig{
		Engine:       engine,
		Session:      session,
		MediaService: library,
		Repository:   &fakeAuthRepo{token: testToken},
		Store:        st,
		Autosaver:    autosaver,
		Logger:       logger,
		StartTime:    time.Now(),
		DeviceID:     "test-device",
	}

	return &testEnv{
		cfg:     cfg,
		router:  NewRouter(cfg),
		session: session,
		engine:  engine,
	}
}

func TestProjectLifecycle(t *testing.T) {
	env := newStoreEnv(t)

	rr := doRequest(t, env.router, http.MethodPost, "/projects", testToken, CreateProjectRequest{Name: "Tutorial"})
	if rr.Code != http.StatusCreated {
		t.Fatalf("create status = %d: %s", rr.Code, rr.Body.String())
	}
	body := decodeBody(t, rr)
	project, ok := body["project"].(map[string]interface{})
	if !ok {
		t.Fatal("project missing from create response")
	}
	projectID, _ := project["id"].(string)
	if projectID == "" {
		t.Fatal("project id missing")
	}

	rr = doRequest(t, env.router, http.MethodGet, "/projects", testToken, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("list status = %d", rr.Code)
	}
	projects, _ := decodeBody(t, rr)["projects"].([]interface{})
	if len(projects) != 1 {
		t.Fatalf("projects count = %d, want 1", len(projects))
	}

	// Edit, save, drop the session, then reopen from disk.
	if _, err := env.engine.AddClip(context.Background(), "long", 0, 0); err != nil {
		t.Fatalf("AddClip: %v", err)
	}
	rr = doRequest(t, env.router, http.MethodPost, "/projects/save", testToken, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("save status = %d: %s", rr.Code, rr.Body.String())
	}

	env.session.SetProject(nil)

	rr = doRequest(t, env.router, http.MethodPost, "/projects/"+projectID+"/open", testToken, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("open status = %d: %s", rr.Code, rr.Body.String())
	}

	p := env.session.Project()
	if p == nil || p.ID != projectID {
		t.Fatal("open did not restore the project into the session")
	}
	if got := p.Duration(); got != 10 {
		t.Errorf("restored duration = %g, want 10", got)
	}
}

func TestSaveProject_NoActiveProject(t *testing.T) {
	env := newStoreEnv(t)

	rr := doRequest(t, env.router, http.MethodPost, "/projects/save", testToken, nil)
	if rr.Code != http.StatusConflict {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusConflict)
	}
	if code := decodeBody(t, rr)["code"]; code != "NO_ACTIVE_PROJECT" {
		t.Errorf("code = %v, want NO_ACTIVE_PROJECT", code)
	}
}

func TestOpenProject_Unknown(t *testing.T) {
	env := newStoreEnv(t)

	rr := doRequest(t, env.router, http.MethodPost, "/projects/nope/open", testToken, nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusNotFound)
	}
}

func TestExportEDL_EndToEnd(t *testing.T) {
	env := newStoreEnv(t)
	env.engine.CreateProject("Cut")
	if _, err := env.engine.AddClip(context.Background(), "long", 0, 0); err != nil {
		t.Fatalf("AddClip: %v", err)
	}

	outDir := t.TempDir()
	rr := doRequest(t, env.router, http.MethodPost, "/export/edl", testToken, map[string]interface{}{
		"output_dir": outDir,
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rr.Code, rr.Body.String())
	}

	body := decodeBody(t, rr)
	if body["status"] != "completed" {
		t.Errorf("status = %v, want completed", body["status"])
	}
	if body["clip_count"] != float64(1) {
		t.Errorf("clip_count = %v, want 1", body["clip_count"])
	}
	outPath, _ := body["output_path"].(string)
	if filepath.Dir(outPath) != outDir {
		t.Errorf("output_path = %q, not in %q", outPath, outDir)
	}
}

func TestExportEDL_NoProject(t *testing.T) {
	env := newStoreEnv(t)

	rr := doRequest(t, env.router, http.MethodPost, "/export/edl", testToken, map[string]interface{}{
		"output_dir": t.TempDir(),
	})
	if rr.Code != http.StatusConflict {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusConflict)
	}
}
