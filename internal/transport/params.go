package transport

import (
	"errors"
	"net/http"
	"strconv"

	"catalog-api/internal/dto"
	"catalog-api/internal/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

var errInvalidID = errors.New("id must be a positive 32-bit integer")

// HandlerOptions tunes contract details shared by the entity handlers.
type HandlerOptions struct {
	// EmptyListNotFound answers an empty list with 404 instead of 200.
	EmptyListNotFound bool
}

// CreatedResponse is returned by POST on success.
type CreatedResponse struct {
	Message string `json:"message"`
	ID      int    `json:"id"`
}

// parseID reads a positive integer from the named URL parameter.
func parseID(r *http.Request, param string) (int, error) {
	return parsePositive(chi.URLParam(r, param))
}

func parsePositive(raw string) (int, error) {
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 || id > dto.MaxInt32 {
		return 0, errInvalidID
	}
	return id, nil
}

// queryBool reports whether the query parameter is set to a true value.
func queryBool(r *http.Request, name string) bool {
	v, err := strconv.ParseBool(r.URL.Query().Get(name))
	return err == nil && v
}

// decodeBody decodes and validates the JSON body into v. On failure it has
// already written a 400 response and returns false.
func decodeBody(w http.ResponseWriter, r *http.Request, logger *zap.Logger, v interface{}) bool {
	err := middleware.DecodeAndValidate(r, v)
	if err == nil {
		return true
	}

	if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
		logger.Warn("Request validation failed",
			zap.String("path", r.URL.Path),
			zap.Any("validation_errors", validationErrors),
		)
		middleware.RespondWithValidationErrors(w, validationErrors)
		return false
	}

	logger.Warn("Invalid request body", zap.String("path", r.URL.Path), zap.Error(err))
	middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
	return false
}
