// Package rest exposes the review, comment, report and moderation usecases over HTTP.
package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/CesarOsorioP/StateView-sub000/internal/domain"
	"github.com/CesarOsorioP/StateView-sub000/internal/middleware"
	"github.com/CesarOsorioP/StateView-sub000/internal/platform/logger"
	"github.com/CesarOsorioP/StateView-sub000/internal/usecase"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// Handler serves the HTTP API on top of the usecases.
type Handler struct {
	reviews    *usecase.ReviewUsecase
	comments   *usecase.CommentUsecase
	reports    *usecase.ReportUsecase
	moderation *usecase.ModerationUsecase
	catalog    *usecase.CatalogUsecase
	validate   *validator.Validate
	logger     *logger.Logger
}

// Usecases groups the usecases the handler depends on.
type Usecases struct {
	Reviews    *usecase.ReviewUsecase
	Comments   *usecase.CommentUsecase
	Reports    *usecase.ReportUsecase
	Moderation *usecase.ModerationUsecase
	Catalog    *usecase.CatalogUsecase
}

func NewHandler(uc Usecases, log *logger.Logger) *Handler {
	return &Handler{
		reviews:    uc.Reviews,
		comments:   uc.Comments,
		reports:    uc.Reports,
		moderation: uc.Moderation,
		catalog:    uc.Catalog,
		validate:   NewValidator(),
		logger:     log.Named("HTTPHandler"),
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *Handler) respondWithJSON(w http.ResponseWriter, r *http.Request, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("Failed to encode JSON response", zap.String("path", r.URL.Path), zap.Error(err))
	}
}

// statusFor maps domain errors to an HTTP status and a metrics error type.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrSelfReport):
		return http.StatusBadRequest, "self_report"
	case errors.Is(err, domain.ErrInvalidTransition):
		return http.StatusConflict, "invalid_transition"
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, "validation"
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, domain.ErrAlreadyExists):
		return http.StatusConflict, "duplicate"
	case errors.Is(err, domain.ErrOptimisticLock):
		return http.StatusConflict, "conflict"
	case errors.Is(err, domain.ErrTransient):
		return http.StatusServiceUnavailable, "unavailable"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	code, errorType := statusFor(err)
	middleware.SetErrorType(r.Context(), errorType)

	message := err.Error()
	if code >= http.StatusInternalServerError {
		h.logger.Error("Request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("request_id", middleware.RequestIDFromContext(r.Context())),
			zap.Error(err))
		message = http.StatusText(code)
	}
	h.respondWithJSON(w, r, code, errorResponse{Error: message})
}

// decode reads a JSON body into dst and runs struct validation on it.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: invalid request body: %v", domain.ErrInvalidInput, err)
	}
	if err := h.validate.StructCtx(r.Context(), dst); err != nil {
		return fmt.Errorf("%w: %s", domain.ErrInvalidInput, validationMessage(err))
	}
	return nil
}

func objectIDParam(r *http.Request, name string) (primitive.ObjectID, error) {
	raw := chi.URLParam(r, name)
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: invalid %s '%s'", domain.ErrInvalidInput, name, raw)
	}
	return id, nil
}

// caller returns the authenticated identity. Routes using it sit behind JWTAuth.
func caller(r *http.Request) (middleware.Identity, error) {
	id, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		return middleware.Identity{}, fmt.Errorf("%w: authentication required", domain.ErrForbidden)
	}
	return id, nil
}
