package httpapi

import (
	"errors"
	"net/http"

	"github.com/elbara99/ai-counter-cafeteria/internal/camera"
	"github.com/elbara99/ai-counter-cafeteria/internal/classifier"
)

type DetectionStatusDTO struct {
	Running    bool `json:"running"`
	ModelReady bool `json:"modelReady"`
}

// loadModel triggers a model load on explicit user action. A failed load is
// never retried automatically; the user presses the button again.
func (s *Server) loadModel(w http.ResponseWriter, r *http.Request) {
	if s.deps.LoadModel == nil {
		respondError(w, http.StatusNotImplemented, "no_model", "no model is configured")
		return
	}

	if err := s.deps.LoadModel(); err != nil {
		if errors.Is(err, classifier.ErrAlreadyLoading) {
			respondError(w, http.StatusConflict, "already_loading", "a model load is already in progress")
			return
		}
		respondError(w, http.StatusInternalServerError, "load_failed", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"ready": true})
}

func (s *Server) startDetection(w http.ResponseWriter, r *http.Request) {
	if s.deps.ModelReady == nil || !s.deps.ModelReady() {
		respondError(w, http.StatusConflict, "model_not_loaded", "load the model before starting detection")
		return
	}

	if s.deps.StartCamera != nil {
		if err := s.deps.StartCamera(); err != nil && !errors.Is(err, camera.ErrDeviceBusy) {
			respondError(w, http.StatusServiceUnavailable, "camera_unavailable", camera.UserMessage(err))
			return
		}
	}

	if !s.deps.Poller.Start(s.deps.OnDetections) {
		respondError(w, http.StatusConflict, "already_running", "detection is already running")
		return
	}
	respondJSON(w, http.StatusOK, DetectionStatusDTO{Running: true, ModelReady: true})
}

func (s *Server) stopDetection(w http.ResponseWriter, r *http.Request) {
	s.deps.Poller.Stop()
	respondJSON(w, http.StatusNoContent, nil)
}

func (s *Server) detectionStatus(w http.ResponseWriter, r *http.Request) {
	ready := s.deps.ModelReady != nil && s.deps.ModelReady()
	respondJSON(w, http.StatusOK, DetectionStatusDTO{
		Running:    s.deps.Poller.Running(),
		ModelReady: ready,
	})
}
