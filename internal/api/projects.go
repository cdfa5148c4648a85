package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cutroom/cutroom-agent/internal/export"
	"github.com/cutroom/cutroom-agent/internal/timeline"
)

func createProjectHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateProjectRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}
		if req.Name == "" {
			req.Name = "Untitled Project"
		}

		p := cfg.Engine.CreateProject(req.Name)

		if cfg.Store != nil {
			if err := cfg.Store.Save(r.Context(), p); err != nil {
				cfg.Logger.Warn("initial project save failed", "project_id", p.ID, "error", err)
			}
		}

		WriteJSON(w, http.StatusCreated, projectResponse(p))
	}
}

func listProjectsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		infos, err := cfg.Store.List(r.Context())
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to list projects", "INTERNAL_ERROR")
			return
		}
		WriteJSON(w, http.StatusOK, ProjectListResponse{Projects: infos})
	}
}

func openProjectHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if id == "" {
			WriteError(w, http.StatusBadRequest, "project id required", "BAD_REQUEST")
			return
		}

		p, err := cfg.Store.Load(r.Context(), id)
		if err != nil {
			WriteError(w, http.StatusNotFound, "project not found", "NOT_FOUND")
			return
		}

		cfg.Session.SetProject(p)
		cfg.Logger.Info("project opened", "project_id", p.ID, "name", p.Name)
		WriteJSON(w, http.StatusOK, projectResponse(p))
	}
}

func saveProjectHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cfg.Session.Project() == nil {
			WriteEngineError(w, timeline.ErrNoActiveProject)
			return
		}
		if err := cfg.Autosaver.SaveNow(r.Context()); err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
			return
		}
		WriteJSON(w, http.StatusOK, map[string]string{"status": "saved"})
	}
}

func timelineHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := cfg.Engine.GetTimeline()
		if err != nil {
			WriteEngineError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, projectResponse(p))
	}
}

func historyHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, HistoryResponse{Records: cfg.Engine.History()})
	}
}

func exportEDLHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req export.ExportRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}
		if req.OutputDir == "" {
			WriteError(w, http.StatusBadRequest, "output_dir is required", "BAD_REQUEST")
			return
		}
		if req.FrameRate == 0 {
			req.FrameRate = 30
		}

		p, err := cfg.Engine.GetTimeline()
		if err != nil {
			WriteEngineError(w, err)
			return
		}

		resp, err := export.ExportEDL(r.Context(), p, cfg.MediaService, req)
		if err != nil {
			WriteError(w, http.StatusBadRequest, err.Error(), "EXPORT_FAILED")
			return
		}

		WriteJSON(w, http.StatusOK, resp)
	}
}
