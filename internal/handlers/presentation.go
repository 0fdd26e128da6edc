package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"slidegen-backend/internal/middleware"
	"slidegen-backend/internal/models"
	"slidegen-backend/internal/pkg/logger"
)

type presentationService interface {
	Generate(ctx context.Context, userID uuid.UUID, req models.SlideContentRequest) (*models.GeneratePPTResponse, error)
	Enqueue(ctx context.Context, userID uuid.UUID, req models.SlideContentRequest) (*models.Job, error)
	GetJob(ctx context.Context, userID, jobID uuid.UUID) (*models.Job, error)
	List(ctx context.Context, userID uuid.UUID, limit, offset int) (*models.PresentationPage, error)
	Get(ctx context.Context, userID, id uuid.UUID) (*models.Presentation, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

type PresentationHandler struct {
	service presentationService
	log     *logger.Logger
}

func NewPresentationHandler(service presentationService, log *logger.Logger) *PresentationHandler {
	return &PresentationHandler{service: service, log: log}
}

// GeneratePPT builds the deck within the request and responds with its download URL.
func (h *PresentationHandler) GeneratePPT(w http.ResponseWriter, r *http.Request) {
	var req models.SlideContentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	userID := middleware.GetUserID(r.Context())
	resp, err := h.service.Generate(r.Context(), userID, req)
	if err != nil {
		h.log.Error("Presentation generation failed", "user_id", userID, "topic", req.Topic, "error", err)
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *PresentationHandler) CreateJob(w http.ResponseWriter, r *http.Request) {
	var req models.SlideContentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	job, err := h.service.Enqueue(r.Context(), middleware.GetUserID(r.Context()), req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]interface{}{
		"job_id": job.ID,
	})
}

func (h *PresentationHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid job ID", r))
		return
	}

	job, err := h.service.GetJob(r.Context(), middleware.GetUserID(r.Context()), id)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, job)
}

func (h *PresentationHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	page, err := h.service.List(r.Context(), middleware.GetUserID(r.Context()), limit, offset)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, page)
}

func (h *PresentationHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid presentation ID", r))
		return
	}

	p, err := h.service.Get(r.Context(), middleware.GetUserID(r.Context()), id)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, p)
}

func (h *PresentationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid presentation ID", r))
		return
	}

	if err := h.service.Delete(r.Context(), middleware.GetUserID(r.Context()), id); err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Presentation deleted"})
}
