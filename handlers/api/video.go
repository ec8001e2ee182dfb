package api

import (
	"net/http"

	"ytdigest/errors"
	"ytdigest/models"
	"ytdigest/services/video"
	"ytdigest/validation"

	"github.com/sirupsen/logrus"
)

type VideoHandler struct {
	service   video.Service
	validator *validation.Validator
	logger    *logrus.Logger
}

func NewVideoHandler(service video.Service, validator *validation.Validator) *VideoHandler {
	return &VideoHandler{
		service:   service,
		validator: validator,
		logger:    logrus.StandardLogger(),
	}
}

// HandleSubmit handles POST /api/v1/videos
func (h *VideoHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	const op = "VideoHandler.HandleSubmit"
	logger := h.logger.WithContext(r.Context())

	if err := h.validator.ValidateRequest(r, validation.RequestValidationOpts{
		MaxContentLength: 1024 * 1024, // 1MB
		AllowedMethods:   []string{http.MethodPost},
		RequireJSON:      true,
	}); err != nil {
		respondError(w, r, err)
		return
	}

	var req video.SubmitRequest
	if err := readJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	if req.URL == "" {
		respondError(w, r, errors.InvalidInput(op, nil, "URL is required"))
		return
	}

	logger.WithField("url", req.URL).Info("Received video submission")

	v, err := h.service.Submit(r.Context(), req)
	if err != nil {
		logger.WithError(err).Error("Failed to submit video")
		respondError(w, r, err)
		return
	}

	logger.WithFields(logrus.Fields{
		"video_id":   v.ID,
		"youtube_id": v.YouTubeID,
		"status":     v.Status,
	}).Info("Video submitted")

	respondJSON(w, r, http.StatusAccepted, models.NewVideoResponse(v, nil))
}

// HandleList handles GET /api/v1/videos
func (h *VideoHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	const op = "VideoHandler.HandleList"
	logger := h.logger.WithContext(r.Context())

	status := models.Status(r.URL.Query().Get("status"))
	if status != "" && !models.ValidStatus(status) {
		respondError(w, r, errors.InvalidInput(op, nil, "Invalid status filter"))
		return
	}

	videos, err := h.service.List(r.Context(), status)
	if err != nil {
		logger.WithError(err).Error("Failed to list videos")
		respondError(w, r, err)
		return
	}

	responses := make([]*models.VideoResponse, 0, len(videos))
	for _, v := range videos {
		responses = append(responses, models.NewVideoResponse(v, nil))
	}

	respondJSON(w, r, http.StatusOK, responses)
}

// HandleGet handles GET /api/v1/videos/{id}
func (h *VideoHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	const op = "VideoHandler.HandleGet"
	logger := h.logger.WithContext(r.Context())

	id := r.PathValue("id")
	if id == "" {
		respondError(w, r, errors.InvalidInput(op, nil, "ID is required"))
		return
	}

	v, t, err := h.service.Get(r.Context(), id)
	if err != nil {
		logger.WithError(err).Error("Failed to get video")
		respondError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, models.NewVideoResponse(v, t))
}

// HandleGetStatus handles GET /api/v1/videos/{id}/status
func (h *VideoHandler) HandleGetStatus(w http.ResponseWriter, r *http.Request) {
	const op = "VideoHandler.HandleGetStatus"
	logger := h.logger.WithContext(r.Context())

	id := r.PathValue("id")
	if id == "" {
		respondError(w, r, errors.InvalidInput(op, nil, "ID is required"))
		return
	}

	v, _, err := h.service.Get(r.Context(), id)
	if err != nil {
		logger.WithError(err).Error("Failed to get video status")
		respondError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, models.NewStatusResponse(v))
}

// HandleProcess handles POST /api/v1/videos/{id}/process
func (h *VideoHandler) HandleProcess(w http.ResponseWriter, r *http.Request) {
	const op = "VideoHandler.HandleProcess"
	logger := h.logger.WithContext(r.Context())

	id := r.PathValue("id")
	if id == "" {
		respondError(w, r, errors.InvalidInput(op, nil, "ID is required"))
		return
	}

	v, err := h.service.Process(r.Context(), id)
	if err != nil {
		logger.WithError(err).Error("Failed to queue processing")
		respondError(w, r, err)
		return
	}

	logger.WithFields(logrus.Fields{
		"video_id": v.ID,
		"status":   v.Status,
	}).Info("Processing queued")

	respondJSON(w, r, http.StatusAccepted, models.NewStatusResponse(v))
}

// HandleGenerateSummary handles POST /api/v1/videos/{id}/summary
func (h *VideoHandler) HandleGenerateSummary(w http.ResponseWriter, r *http.Request) {
	const op = "VideoHandler.HandleGenerateSummary"
	logger := h.logger.WithContext(r.Context())

	id := r.PathValue("id")
	if id == "" {
		respondError(w, r, errors.InvalidInput(op, nil, "ID is required"))
		return
	}

	v, t, err := h.service.GenerateSummary(r.Context(), id)
	if err != nil {
		logger.WithError(err).Error("Failed to generate summary")
		respondError(w, r, err)
		return
	}

	logger.WithField("video_id", v.ID).Info("Summary generated")

	respondJSON(w, r, http.StatusOK, models.NewVideoResponse(v, t))
}

// HandleDelete handles DELETE /api/v1/videos/{id}
func (h *VideoHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	const op = "VideoHandler.HandleDelete"
	logger := h.logger.WithContext(r.Context())

	id := r.PathValue("id")
	if id == "" {
		respondError(w, r, errors.InvalidInput(op, nil, "ID is required"))
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		logger.WithError(err).Error("Failed to delete video")
		respondError(w, r, err)
		return
	}

	logger.WithField("video_id", id).Info("Video deleted")

	respondJSON(w, r, http.StatusOK, map[string]string{"status": "deleted"})
}
