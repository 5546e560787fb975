// Package handlers implements the HTTP endpoints of the navigation API.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"wayfinder-backend/internal/application/services"
	apperrors "wayfinder-backend/internal/errors"
	"wayfinder-backend/internal/infrastructure/photos"
	"wayfinder-backend/internal/interfaces/http/dto"
	"wayfinder-backend/internal/interfaces/http/response"
	"wayfinder-backend/internal/interfaces/http/validation"
	"wayfinder-backend/internal/locator"
	"wayfinder-backend/internal/session"
)

// NavigationService is the slice of the application service the handlers use.
type NavigationService interface {
	Navigate(ctx context.Context, req services.NavigateRequest) (*services.Route, error)
	Recover(ctx context.Context, req services.RecoverRequest) (*services.Recovery, error)
	RecoverFromPhoto(ctx context.Context, req services.PhotoRecoverRequest) (*services.Recovery, error)
	Search(ctx context.Context, req services.SearchRequest) (*services.SearchResult, error)
	Destinations() []locator.Destination
	CreateSession() session.Session
	GetSession(id string) (session.Session, error)
	DeleteSession(id string)
	Health() services.Health
}

// maxJSONBytes bounds JSON request bodies.
const maxJSONBytes = 64 << 10

// NavigationHandler serves the navigation endpoints.
type NavigationHandler struct {
	service        NavigationService
	maxUploadBytes int64
	logger         *zap.Logger
}

// NewNavigationHandler creates the handler. maxUploadBytes bounds recovery
// photos.
func NewNavigationHandler(service NavigationService, maxUploadBytes int64, logger *zap.Logger) *NavigationHandler {
	return &NavigationHandler{
		service:        service,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

// Navigate godoc
// @Summary Compute a route
// @Description Resolves the start (or the session anchor) and the destination and returns the photo steps of the shortest route
// @Tags navigation
// @Accept json
// @Produce json
// @Param request body dto.NavigateRequest true "Route request"
// @Success 200 {object} response.Response{data=dto.RouteResponse}
// @Failure 400 {object} errors.HTTPErrorResponse
// @Failure 404 {object} errors.HTTPErrorResponse
// @Failure 422 {object} errors.HTTPErrorResponse
// @Router /navigate [post]
func (h *NavigationHandler) Navigate(w http.ResponseWriter, r *http.Request) {
	var req dto.NavigateRequest
	if !h.decode(w, r, &req) {
		return
	}

	route, err := h.service.Navigate(r.Context(), req.ToService())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, r, dto.NewRouteResponse(route))
}

// Destinations godoc
// @Summary List destinations
// @Description Lists every room number and named place with its floor
// @Tags navigation
// @Produce json
// @Success 200 {object} response.Response{data=dto.DestinationsResponse}
// @Router /destinations [get]
func (h *NavigationHandler) Destinations(w http.ResponseWriter, r *http.Request) {
	list := h.service.Destinations()
	if list == nil {
		list = []locator.Destination{}
	}
	h.ok(w, r, dto.DestinationsResponse{Destinations: list, Count: len(list)})
}

// Recover godoc
// @Summary Recover from a landmark
// @Description Re-anchors the session at a landmark the user says they can see
// @Tags recovery
// @Accept json
// @Produce json
// @Param request body dto.RecoverRequest true "Recovery request"
// @Success 200 {object} response.Response{data=dto.RecoveryResponse}
// @Failure 400 {object} errors.HTTPErrorResponse
// @Failure 404 {object} errors.HTTPErrorResponse
// @Router /recover [post]
func (h *NavigationHandler) Recover(w http.ResponseWriter, r *http.Request) {
	var req dto.RecoverRequest
	if !h.decode(w, r, &req) {
		return
	}

	rec, err := h.service.Recover(r.Context(), req.ToService())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, r, dto.NewRecoveryResponse(rec))
}

// RecoverFromPhoto godoc
// @Summary Recover from a photo
// @Description Re-anchors the session at the landmark shown in an uploaded photo
// @Tags recovery
// @Accept multipart/form-data
// @Produce json
// @Param photo formData file true "Photo of the surroundings"
// @Param session_id formData string false "Session id"
// @Success 200 {object} response.Response{data=dto.RecoveryResponse}
// @Failure 400 {object} errors.HTTPErrorResponse
// @Failure 404 {object} errors.HTTPErrorResponse
// @Failure 503 {object} errors.HTTPErrorResponse
// @Router /recover/photo [post]
func (h *NavigationHandler) RecoverFromPhoto(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		h.fail(w, r, invalidInput("photo", "expected a multipart form with a photo no larger than the upload limit", err))
		return
	}

	file, header, err := r.FormFile("photo")
	if err != nil {
		h.fail(w, r, invalidInput("photo", "the photo field is required", err))
		return
	}
	defer file.Close()

	mimeType := header.Header.Get("Content-Type")
	if !photos.Supported(mimeType) {
		mimeType = photos.MimeType(header.Filename)
	}
	if !photos.Supported(mimeType) {
		h.fail(w, r, invalidInput("photo", "unsupported image type "+mimeType, nil))
		return
	}

	image, err := io.ReadAll(file)
	if err != nil {
		h.fail(w, r, invalidInput("photo", "could not read the photo", err))
		return
	}
	if len(image) == 0 {
		h.fail(w, r, invalidInput("photo", "the photo is empty", nil))
		return
	}

	rec, err := h.service.RecoverFromPhoto(r.Context(), services.PhotoRecoverRequest{
		SessionID: strings.TrimSpace(r.FormValue("session_id")),
		Image:     image,
		MimeType:  mimeType,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, r, dto.NewRecoveryResponse(rec))
}

// Search godoc
// @Summary Resolve a location
// @Description Resolves free-form text to a node without routing
// @Tags navigation
// @Accept json
// @Produce json
// @Param request body dto.SearchRequest true "Search request"
// @Success 200 {object} response.Response{data=services.SearchResult}
// @Failure 404 {object} errors.HTTPErrorResponse
// @Router /search [post]
func (h *NavigationHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req dto.SearchRequest
	if !h.decode(w, r, &req) {
		return
	}

	res, err := h.service.Search(r.Context(), req.ToService())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, r, res)
}

// Health godoc
// @Summary Health check
// @Description Reports the loaded building and which AI features are available
// @Tags health
// @Produce json
// @Success 200 {object} response.Response{data=services.Health}
// @Router /health [get]
func (h *NavigationHandler) Health(w http.ResponseWriter, r *http.Request) {
	h.ok(w, r, h.service.Health())
}

// CreateSession godoc
// @Summary Start a session
// @Tags sessions
// @Produce json
// @Success 201 {object} response.Response{data=dto.SessionResponse}
// @Router /sessions [post]
func (h *NavigationHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	sess := h.service.CreateSession()
	if err := response.Created(w, r, dto.NewSessionResponse(sess), "/api/sessions/"+sess.ID); err != nil {
		h.logger.Debug("Failed to write response", zap.Error(err))
	}
}

// GetSession godoc
// @Summary Inspect a session
// @Tags sessions
// @Produce json
// @Param id path string true "Session id"
// @Success 200 {object} response.Response{data=dto.SessionResponse}
// @Failure 404 {object} errors.HTTPErrorResponse
// @Router /sessions/{id} [get]
func (h *NavigationHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := h.service.GetSession(chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, r, dto.NewSessionResponse(sess))
}

// DeleteSession godoc
// @Summary End a session
// @Tags sessions
// @Param id path string true "Session id"
// @Success 204
// @Router /sessions/{id} [delete]
func (h *NavigationHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	h.service.DeleteSession(chi.URLParam(r, "id"))
	response.NoContent(w)
}

func (h *NavigationHandler) decode(w http.ResponseWriter, r *http.Request, target interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBytes)
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		msg := "request body must be a JSON object"
		if errors.Is(err, io.EOF) {
			msg = "request body is empty"
		}
		h.fail(w, r, invalidInput("body", msg, err))
		return false
	}
	if err := validation.ValidateRequest(target); err != nil {
		h.fail(w, r, err)
		return false
	}
	return true
}

func (h *NavigationHandler) ok(w http.ResponseWriter, r *http.Request, data interface{}) {
	if err := response.OK(w, r, data); err != nil {
		h.logger.Debug("Failed to write response", zap.Error(err))
	}
}

func (h *NavigationHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	apperrors.WriteHTTPError(w, r, err, h.logger)
}

func invalidInput(field, msg string, cause error) error {
	return apperrors.Validation(apperrors.CodeInvalidInput.String(), "Invalid request").
		WithDetails(msg).
		WithResource(field).
		WithCause(cause).
		Build()
}
