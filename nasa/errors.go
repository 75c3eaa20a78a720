package nasa

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/spacerhq/spacer/i18n"
)

// Category classifies why a search failed.
type Category string

const (
	CategoryUnauthorized Category = "unauthorized"
	CategoryForbidden    Category = "forbidden"
	CategoryNotFound     Category = "not_found"
	CategoryClientError  Category = "client_error"
	CategoryServerError  Category = "server_error"
	CategoryNetwork      Category = "network"
	CategoryParser       Category = "parser"
	CategoryUnknown      Category = "unknown"
)

// ServiceError is the error returned by Client for every failed search.
// Match categories with errors.Is against the Err* sentinels; the underlying
// transport error or spacer.Issues is reachable through Unwrap.
type ServiceError struct {
	Category Category
	Status   int // HTTP status when the server answered, 0 otherwise
	Err      error
}

func (e *ServiceError) Error() string {
	msg := i18n.T(string(e.Category), nil)
	if e.Status != 0 {
		msg += " (HTTP " + strconv.Itoa(e.Status) + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ServiceError) Unwrap() error { return e.Err }

// Is matches any ServiceError of the same category.
func (e *ServiceError) Is(target error) bool {
	t, ok := target.(*ServiceError)
	return ok && t.Category == e.Category
}

var (
	ErrUnauthorized = &ServiceError{Category: CategoryUnauthorized}
	ErrForbidden    = &ServiceError{Category: CategoryForbidden}
	ErrNotFound     = &ServiceError{Category: CategoryNotFound}
	ErrClientError  = &ServiceError{Category: CategoryClientError}
	ErrServerError  = &ServiceError{Category: CategoryServerError}
	ErrNetwork      = &ServiceError{Category: CategoryNetwork}
	ErrParser       = &ServiceError{Category: CategoryParser}
	ErrUnknown      = &ServiceError{Category: CategoryUnknown}
)

// CategoryOf returns the category of err, or CategoryUnknown.
func CategoryOf(err error) Category {
	var se *ServiceError
	if errors.As(err, &se) {
		return se.Category
	}
	return CategoryUnknown
}

// StatusCategory maps a non-2xx HTTP status to its category.
func StatusCategory(status int) Category {
	switch {
	case status == http.StatusUnauthorized:
		return CategoryUnauthorized
	case status == http.StatusForbidden:
		return CategoryForbidden
	case status == http.StatusNotFound:
		return CategoryNotFound
	case status >= 400 && status < 500:
		return CategoryClientError
	case status >= 500 && status < 600:
		return CategoryServerError
	}
	return CategoryUnknown
}

func networkError(err error) error { return &ServiceError{Category: CategoryNetwork, Err: err} }

func parserError(err error) error { return &ServiceError{Category: CategoryParser, Err: err} }
