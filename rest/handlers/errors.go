package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rediwo/refdata/integrity"
	"github.com/rediwo/refdata/logger"
	"github.com/rediwo/refdata/models"
	"github.com/rediwo/refdata/query"
	"github.com/rediwo/refdata/rest/types"
	"github.com/rediwo/refdata/service"
)

const unexpectedError = "unexpected server error"

// badRequest wraps request decoding failures
type badRequest struct {
	err error
}

func (e *badRequest) Error() string { return e.err.Error() }
func (e *badRequest) Unwrap() error { return e.err }

// statusOf maps a service error to its HTTP status and client message
func statusOf(err error) (int, string) {
	var (
		notFound   *service.NotFoundError
		badInput   *service.BadRequestError
		validation *models.ValidationError
		decode     *badRequest
		pagination *query.PaginationError
		violation  *integrity.Violation
		config     *query.ConfigurationError
	)

	switch {
	case errors.As(err, &notFound):
		return http.StatusNotFound, notFound.Message
	case errors.As(err, &pagination):
		return http.StatusBadRequest, pagination.Message
	case errors.As(err, &violation):
		return violation.Status, violation.Message
	case errors.As(err, &config):
		return config.Status(), config.Message
	case errors.As(err, &badInput):
		return http.StatusBadRequest, badInput.Message
	case errors.As(err, &validation):
		return http.StatusBadRequest, validation.Error()
	case errors.As(err, &decode):
		return http.StatusBadRequest, decode.Error()
	default:
		return http.StatusInternalServerError, unexpectedError
	}
}

func writeError(w http.ResponseWriter, l logger.Logger, err error) {
	status, message := statusOf(err)
	if status >= http.StatusInternalServerError {
		l.Error("request failed: %v", err)
	}
	writeJSON(w, status, types.NewMessage(message))
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
