package handler

// RESPONSE HELPERS:
// Every handler answers through writeJSON and writeError, so the API has
// exactly one success shape (the value itself) and one error shape:
//
//	{"error": "not_found", "message": "tasting not found with id abc123"}
//
// The machine-readable "error" lets the views branch (a not_found on the
// detail page redirects to the library) without parsing messages.

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/sakif/vininote/internal/apperror"
)

// maxJSONBody bounds every JSON request body.
const maxJSONBody = 1 << 20

// ErrorResponse is the error body of every endpoint.
type ErrorResponse struct {
	Error   string `json:"error"`   // machine-readable type, e.g. "not_found"
	Message string `json:"message"` // human-readable description
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// writeJSON sends data with status. Headers go before the body: once
// Encode writes, later header changes are silently dropped.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// errorStatus maps a domain error to its status code and error type.
//
// errors.Is walks the whole chain, so a service error wrapped with
// fmt.Errorf("...: %w", apperror.NotFound(...)) still maps to 404.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, apperror.ErrValidation):
		return http.StatusBadRequest, "validation_error"
	case errors.Is(err, apperror.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, apperror.ErrUnauthorized):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, apperror.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, apperror.ErrConflict):
		return http.StatusConflict, "conflict"
	}
	return http.StatusInternalServerError, "internal_error"
}

// writeError sends err in the standard error shape. Anything that is not
// an *apperror.AppError becomes a generic 500: raw errors can carry file
// paths and SQL, which never leave the server.
func (b base) writeError(w http.ResponseWriter, r *http.Request, err error) {
	appErr, ok := apperror.As(err)
	if !ok {
		b.logger.Error("request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "An internal error occurred",
		})
		return
	}

	status, kind := errorStatus(err)
	writeJSON(w, status, ErrorResponse{Error: kind, Message: appErr.Message})
}

// base is embedded by every handler for the logger and the helpers.
type base struct {
	logger *slog.Logger
}

// decode reads a JSON body into dst and runs its validate tags.
func (b base) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	if err := dec.Decode(dst); err != nil {
		b.logger.Debug("invalid JSON body", slog.String("path", r.URL.Path), slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "invalid JSON body",
		})
		return false
	}

	if err := validate.Struct(dst); err != nil {
		b.writeError(w, r, validationError(err))
		return false
	}
	return true
}

// validationError turns validator output into one apperror naming the
// first failing field.
func validationError(err error) error {
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) || len(ves) == 0 {
		return apperror.ValidationFailed("", "invalid request")
	}
	fe := ves[0]
	field := strings.ToLower(fe.Field()[:1]) + fe.Field()[1:]

	msg := fmt.Sprintf("%s is invalid", field)
	switch fe.Tag() {
	case "required":
		msg = fmt.Sprintf("%s is required", field)
	case "email":
		msg = "invalid email format"
	case "oneof":
		msg = fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	}
	return apperror.ValidationFailed(field, msg)
}
