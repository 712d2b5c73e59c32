package web

// errors.go renders every handler error the same way: the technical error
// is logged with the request ID, the client gets core.MapError's message
// as JSON with a status derived from the error.

import (
	"context"
	"errors"
	"net/http"

	"github.com/JonMunkholm/catalogimport/internal/core"
	"github.com/JonMunkholm/catalogimport/internal/logging"
	"github.com/JonMunkholm/catalogimport/internal/sheet"
)

// ErrorResponse is the JSON body of every error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// respondError logs err and writes the user-facing message. A zero status
// is derived from the error.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error, status int) {
	if status == 0 {
		status = statusFor(err)
	}
	userMsg := core.MapError(err)

	logger := logging.FromContext(r.Context())
	attrs := []any{
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", userMsg.Code,
	}
	if status >= http.StatusInternalServerError {
		logger.Error("request error", attrs...)
	} else {
		logger.Warn("request error", attrs...)
	}

	if errors.Is(err, core.ErrTooManyImports) {
		w.Header().Set("Retry-After", "5")
	}

	writeJSONStatus(w, status, ErrorResponse{
		Error:   core.FormatUserError(err),
		Message: userMsg.Message,
		Action:  userMsg.Action,
		Code:    userMsg.Code,
	})
}

// statusFor maps service errors to HTTP status codes.
func statusFor(err error) int {
	var conflict *core.StoreConflictError
	var fatal *core.FatalInputError
	var tooLarge *http.MaxBytesError

	switch {
	case errors.As(err, &conflict):
		return http.StatusConflict
	case errors.Is(err, sheet.ErrFileTooLarge), errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.As(err, &fatal), errors.Is(err, sheet.ErrUnsupportedFormat):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrUnknownProductType), errors.Is(err, core.ErrBatchNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrBatchExpired):
		return http.StatusGone
	case errors.Is(err, core.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, core.ErrMissingVendor), errors.Is(err, core.ErrVendorMismatch),
		errors.Is(err, core.ErrProductTypeMismatch):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrTooManyImports):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
