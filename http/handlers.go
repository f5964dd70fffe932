package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"loan-advisor/domain"
	"loan-advisor/repository"
	"loan-advisor/service"
)

const maxBodyBytes = 1 << 20

type Handler struct {
	apps        *service.ApplicationService
	defaultTopK int
	logger      *zap.Logger
}

func NewHandler(apps *service.ApplicationService, defaultTopK int, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if defaultTopK < 1 {
		defaultTopK = service.DefaultTopK
	}
	return &Handler{apps: apps, defaultTopK: defaultTopK, logger: logger}
}

// Score scores, stores and returns a new application.
func (h *Handler) Score(w http.ResponseWriter, r *http.Request) {
	payload, ok := h.decodePayload(w, r)
	if !ok {
		return
	}

	app, err := h.apps.Submit(r.Context(), payload)
	if err != nil {
		h.fail(w, r, "Score", err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, app)
}

// Recommend returns improvement tips and a greedy plan without storing anything.
func (h *Handler) Recommend(w http.ResponseWriter, r *http.Request) {
	topK := h.defaultTopK
	if raw := r.URL.Query().Get("top_k"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, h.logger, http.StatusBadRequest, "top_k must be a positive integer")
			return
		}
		topK = n
	}

	payload, ok := h.decodePayload(w, r)
	if !ok {
		return
	}

	result, err := h.apps.Engine().Recommend(r.Context(), payload, topK)
	if err != nil {
		h.fail(w, r, "Recommend", err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, result)
}

func (h *Handler) GetApplication(w http.ResponseWriter, r *http.Request) {
	app, err := h.apps.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, "GetApplication", err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, app)
}

// Review applies an officer decision to a REVIEW case.
func (h *Handler) Review(w http.ResponseWriter, r *http.Request) {
	if !requireJSON(w, r, h.logger) {
		return
	}
	var input domain.ReviewInput
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&input); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "invalid request body")
		return
	}

	app, err := h.apps.Review(r.Context(), chi.URLParam(r, "id"), input)
	if err != nil {
		h.fail(w, r, "Review", err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, app)
}

func (h *Handler) Advice(w http.ResponseWriter, r *http.Request) {
	app, err := h.apps.Advice(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, "Advice", err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, map[string]string{
		"id":            app.ID,
		"advice":        app.Advice,
		"advice_source": app.AdviceSource,
	})
}

func (h *Handler) decodePayload(w http.ResponseWriter, r *http.Request) (domain.ApplicantPayload, bool) {
	if !requireJSON(w, r, h.logger) {
		return nil, false
	}
	var payload domain.ApplicantPayload
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&payload); err != nil || payload == nil {
		h.logger.Debug("invalid request body", zap.String("op", "decodePayload"), zap.Error(err))
		writeError(w, h.logger, http.StatusBadRequest, "invalid request body")
		return nil, false
	}
	return payload, true
}

func requireJSON(w http.ResponseWriter, r *http.Request, logger *zap.Logger) bool {
	if !strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		writeError(w, logger, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return false
	}
	return true
}

// fail maps workflow and boundary errors onto status codes.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	var (
		oracleErr *service.OracleError
		renderErr *service.RenderError
	)
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, repository.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrNotOpenForReview), errors.Is(err, service.ErrAdviceUnavailable):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrInvalidAction):
		status = http.StatusUnprocessableEntity
	case errors.As(err, &oracleErr), errors.As(err, &renderErr), errors.Is(err, service.ErrRendererUnavailable):
		status = http.StatusBadGateway
	}

	fields := []zap.Field{
		zap.String("op", op),
		zap.String("request_id", requestID(r.Context())),
		zap.Int("status", status),
		zap.Error(err),
	}
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", fields...)
	} else {
		h.logger.Info("request rejected", fields...)
	}

	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal server error"
	}
	writeError(w, h.logger, status, msg)
}
