package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

func importMediaHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ImportMediaRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}
		if req.Path == "" {
			WriteError(w, http.StatusBadRequest, "path is required", "BAD_REQUEST")
			return
		}

		file, err := cfg.MediaService.ImportFile(r.Context(), req.Path)
		if err != nil {
			WriteError(w, http.StatusBadRequest, err.Error(), "IMPORT_FAILED")
			return
		}
		WriteJSON(w, http.StatusCreated, MediaFileToResponse(file))
	}
}

func listMediaHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		files, err := cfg.MediaService.ListMediaFiles(r.Context())
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to list media files", "INTERNAL_ERROR")
			return
		}

		resp := MediaFilesResponse{MediaFiles: make([]MediaFileResponse, len(files))}
		for i, f := range files {
			resp.MediaFiles[i] = MediaFileToResponse(f)
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

func getMediaHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		file, err := cfg.MediaService.GetMediaFile(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
			return
		}
		if file == nil {
			WriteError(w, http.StatusNotFound, "media file not found", "NOT_FOUND")
			return
		}
		WriteJSON(w, http.StatusOK, MediaFileToResponse(file))
	}
}

func deleteMediaHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := cfg.MediaService.RemoveMediaFile(r.Context(), chi.URLParam(r, "id")); err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func playbackHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mediaID := r.URL.Query().Get("media_id")
		if mediaID == "" {
			WriteError(w, http.StatusBadRequest, "media_id is required", "BAD_REQUEST")
			return
		}

		file, err := cfg.MediaService.GetMediaFile(r.Context(), mediaID)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
			return
		}
		if file == nil {
			WriteError(w, http.StatusNotFound, "media file not found", "NOT_FOUND")
			return
		}

		if err := cfg.PlaybackServer.ServeFile(w, r, file.Path); err != nil {
			cfg.Logger.Error("playback error", "error", err, "media_file_id", mediaID)
		}
	}
}
