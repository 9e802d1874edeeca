package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcoot/seabattle/internal/model"
	"github.com/mcoot/seabattle/internal/protocol"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// HTTP-only error codes; everything else reuses the websocket error codes
const (
	CodeInvalidRequest = "InvalidRequest"
	CodeNotFound       = "NotFound"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	code, message := protocol.Describe(err)
	return &httpError{statusFor(err), APIError{string(code), message}}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, model.ErrRoomNotFound),
		errors.Is(err, model.ErrGameNotFound),
		errors.Is(err, model.ErrPlayerNotFound),
		errors.Is(err, model.ErrUnknownPlayer):
		return http.StatusNotFound
	case errors.Is(err, model.ErrRoomFull),
		errors.Is(err, model.ErrAlreadyInRoom),
		errors.Is(err, model.ErrNameTaken),
		errors.Is(err, model.ErrAlreadyConnected):
		return http.StatusConflict
	case errors.Is(err, model.ErrInvalidCredentials),
		errors.Is(err, model.ErrInvalidPassword):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewNotFoundError creates a not found error for unknown routes
func NewNotFoundError() error {
	return &httpError{http.StatusNotFound, APIError{CodeNotFound, "Not found"}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{string(protocol.CodeInternal), "Internal server error"}}
}
