package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/cutroom/cutroom-agent/internal/timeline"
)

func addClipHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AddClipRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}
		if req.MediaFileID == "" {
			WriteError(w, http.StatusBadRequest, "media_file_id is required", "BAD_REQUEST")
			return
		}

		clipID, err := cfg.Engine.AddClip(r.Context(), req.MediaFileID, req.TrackIndex, req.StartTime)
		if err != nil {
			WriteEngineError(w, err)
			return
		}
		WriteJSON(w, http.StatusCreated, ClipIDResponse{ClipID: clipID})
	}
}

func addOverlayClipHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AddOverlayClipRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}
		if req.MediaFileID == "" {
			WriteError(w, http.StatusBadRequest, "media_file_id is required", "BAD_REQUEST")
			return
		}

		clipID, err := cfg.Engine.AddOverlayClip(r.Context(), req.MediaFileID, req.StartTime, req.LinkedRecordingID)
		if err != nil {
			WriteEngineError(w, err)
			return
		}
		WriteJSON(w, http.StatusCreated, ClipIDResponse{ClipID: clipID})
	}
}

func getClipHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clip, err := cfg.Engine.GetClip(chi.URLParam(r, "id"))
		if err != nil {
			WriteEngineError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, clip)
	}
}

func updateClipHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var props timeline.ClipProperties
		if err := json.NewDecoder(r.Body).Decode(&props); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}

		clipID := chi.URLParam(r, "id")
		if err := cfg.Engine.UpdateClipProperties(clipID, props); err != nil {
			WriteEngineError(w, err)
			return
		}

		clip, err := cfg.Engine.GetClip(clipID)
		if err != nil {
			WriteEngineError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, clip)
	}
}

func deleteClipHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := cfg.Engine.DeleteClip(chi.URLParam(r, "id")); err != nil {
			WriteEngineError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func trimClipHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req TrimClipRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}
		if req.TrimStart == nil && req.TrimEnd == nil {
			WriteError(w, http.StatusBadRequest, "trim_start or trim_end is required", "BAD_REQUEST")
			return
		}

		clipID := chi.URLParam(r, "id")
		if err := cfg.Engine.TrimClip(r.Context(), clipID, req.TrimStart, req.TrimEnd); err != nil {
			WriteEngineError(w, err)
			return
		}

		clip, err := cfg.Engine.GetClip(clipID)
		if err != nil {
			WriteEngineError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, clip)
	}
}

func splitClipHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SplitClipRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}

		leftID, rightID, err := cfg.Engine.SplitClip(r.Context(), chi.URLParam(r, "id"), req.SplitTime)
		if err != nil {
			WriteEngineError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, SplitClipResponse{LeftClipID: leftID, RightClipID: rightID})
	}
}

func moveClipHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req MoveClipRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}

		clipID := chi.URLParam(r, "id")
		if err := cfg.Engine.MoveClip(r.Context(), clipID, req.TrackIndex, req.StartTime); err != nil {
			WriteEngineError(w, err)
			return
		}

		clip, err := cfg.Engine.GetClip(clipID)
		if err != nil {
			WriteEngineError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, clip)
	}
}

func trackIndexParam(r *http.Request) (int, error) {
	return strconv.Atoi(chi.URLParam(r, "index"))
}

func trackVolumeHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		index, err := trackIndexParam(r)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "invalid track index", "BAD_REQUEST")
			return
		}

		var req TrackVolumeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}

		if err := cfg.Engine.SetTrackVolume(index, req.Volume); err != nil {
			WriteEngineError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func trackMuteHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		index, err := trackIndexParam(r)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "invalid track index", "BAD_REQUEST")
			return
		}

		var req TrackMuteRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}

		if err := cfg.Engine.SetTrackMuted(index, req.Muted); err != nil {
			WriteEngineError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
