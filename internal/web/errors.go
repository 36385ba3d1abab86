package web

// errors.go provides unified error responses for the web layer.
//
// The flow:
//  1. Handler encounters an error
//  2. Calls respondError(w, r, err, status)
//  3. The error is mapped via core.MapError to a user message and code
//  4. The technical error is logged with the request id for correlation
//  5. The client receives ErrorResponse as JSON
//
// Row and header findings are not errors in this sense. They travel in
// RunReport with their ERR_*/WARN_* codes.

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/JonMunkholm/prfbulk/internal/core"
	"github.com/JonMunkholm/prfbulk/internal/logging"
)

// ErrorResponse represents the JSON structure for API error responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// respondError logs the technical error and writes the mapped user message.
// Errors with a known user message are logged at warn; anything that fell
// through to ERR000 is logged at error.
func respondError(w http.ResponseWriter, r *http.Request, err error, status int) {
	userErr := core.NewUserError(err)

	level := slog.LevelError
	if core.IsUserFacing(err) {
		level = slog.LevelWarn
	}
	logging.FromContext(r.Context()).Log(r.Context(), level, "request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", userErr.Technical.Error(),
		"code", userErr.User.Code,
	)

	writeJSON(w, status, ErrorResponse{
		Error:   userErr.Error(),
		Message: userErr.User.Message,
		Action:  userErr.User.Action,
		Code:    userErr.User.Code,
	})
}

// statusFor picks the HTTP status for an environment error.
func statusFor(err error) int {
	var maxBytes *http.MaxBytesError
	switch {
	case errors.Is(err, core.ErrInputTooLarge), errors.As(err, &maxBytes):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, core.ErrTooManyRuns):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, errNoFile), errors.Is(err, core.ErrInvalidStartSeq):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
