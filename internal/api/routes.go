package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/cutroom/cutroom-agent/internal/config"
	"github.com/cutroom/cutroom-agent/internal/timeline"
)

func NewRouter(cfg ServerConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware())
	r.Use(RecoveryMiddleware(cfg.Logger))
	r.Use(LoggingMiddleware(cfg.Logger))

	r.Get("/health", healthHandler(cfg))

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(cfg.Repository, cfg.Logger))

		r.Get("/status", statusHandler(cfg))

		r.Post("/projects", createProjectHandler(cfg))
		r.Get("/projects", listProjectsHandler(cfg))
		r.Post("/projects/{id}/open", openProjectHandler(cfg))
		r.Post("/projects/save", saveProjectHandler(cfg))
		r.Get("/timeline", timelineHandler(cfg))
		r.Get("/history", historyHandler(cfg))
		r.Post("/export/edl", exportEDLHandler(cfg))

		r.Post("/clips", addClipHandler(cfg))
		r.Post("/clips/overlay", addOverlayClipHandler(cfg))
		r.Get("/clips/{id}", getClipHandler(cfg))
		r.Patch("/clips/{id}", updateClipHandler(cfg))
		r.Delete("/clips/{id}", deleteClipHandler(cfg))
		r.Post("/clips/{id}/trim", trimClipHandler(cfg))
		r.Post("/clips/{id}/split", splitClipHandler(cfg))
		r.Post("/clips/{id}/move", moveClipHandler(cfg))
		r.Post("/tracks/{index}/volume", trackVolumeHandler(cfg))
		r.Post("/tracks/{index}/mute", trackMuteHandler(cfg))

		r.Post("/media/import", importMediaHandler(cfg))
		r.Get("/media", listMediaHandler(cfg))
		r.Get("/media/{id}", getMediaHandler(cfg))
		r.Delete("/media/{id}", deleteMediaHandler(cfg))
		r.Get("/playback/file", playbackHandler(cfg))
	})

	return r
}

func healthHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uptime := int64(time.Since(cfg.StartTime).Seconds())
		WriteJSON(w, http.StatusOK, HealthResponse{
			Status:   "ok",
			Version:  config.Version,
			UptimeS:  uptime,
			DeviceID: cfg.DeviceID,
		})
	}
}

func statusHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		resp := StatusResponse{State: "no_project"}

		if p := cfg.Session.Project(); p != nil {
			resp.State = "editing"
			resp.ProjectID = p.ID
			resp.ProjectName = p.Name
			resp.DurationSeconds = p.Duration()
			for _, tr := range p.Tracks {
				resp.ClipCount += len(tr.Clips)
			}
		}

		resp.OverlapPolicy = cfg.Engine.Policy().String()
		if cfg.Autosaver != nil {
			resp.AutosavePaused = cfg.Autosaver.IsPaused()
		}
		if count, err := cfg.MediaService.CountMediaFiles(ctx); err == nil {
			resp.MediaCount = count
		}

		if cfg.Doctor != nil {
			caps, err := cfg.Doctor.Get(ctx)
			if err == nil && caps != nil {
				resp.Tools = &ToolStatusResponse{
					HasFFmpeg:     caps.HasFFmpeg,
					HasFFprobe:    caps.HasFFprobe,
					FFmpegVersion: caps.FFmpegVersion,
					LastProbeAt:   caps.ProbedAt.Format(time.RFC3339),
				}
			}
		}

		WriteJSON(w, http.StatusOK, resp)
	}
}

func projectResponse(p *timeline.Project) ProjectResponse {
	return ProjectResponse{Project: p, DurationSeconds: p.Duration()}
}
