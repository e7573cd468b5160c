package query

import "net/http"

// PaginationError reports a page request with page < 1 or size < 1. It is
// a client error.
type PaginationError struct {
	Message string
}

func (e *PaginationError) Error() string {
	return e.Message
}

// ConfigurationError reports a page request the calling code should never
// have built, such as sorting on a column the entity does not have.
type ConfigurationError struct {
	Message string
}

func (e *ConfigurationError) Error() string {
	return e.Message
}

// Status is the HTTP status the error maps to
func (e *ConfigurationError) Status() int {
	return http.StatusInternalServerError
}

const sortColumnNotFound = "Sorting column not found on model."

var (
	errPageTooSmall = &PaginationError{Message: "Page number smaller than one not possible."}
	errSizeTooSmall = &PaginationError{Message: "Page size smaller than one not possible."}
)
