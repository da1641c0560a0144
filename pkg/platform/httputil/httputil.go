// Package httputil writes JSON responses and maps errors to status codes.
package httputil

import (
	"encoding/json"
	"errors"
	"net/http"

	dErrors "github.com/baldwij5/welfareSimulation-sub000/pkg/domain-errors"
	"github.com/baldwij5/welfareSimulation-sub000/pkg/platform/sentinel"
)

type errorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

// WriteJSON encodes body with status.
func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// WriteError maps err to a status and a coded JSON body. Internal failures
// never expose their message.
func WriteError(w http.ResponseWriter, err error) {
	status, code := classify(err)
	resp := errorResponse{Error: code}
	if status != http.StatusInternalServerError {
		resp.ErrorDescription = err.Error()
	}
	WriteJSON(w, status, resp)
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return http.StatusNotFound, string(dErrors.CodeNotFound)
	case errors.Is(err, sentinel.ErrUnavailable):
		return http.StatusServiceUnavailable, "unavailable"
	}
	switch code := dErrors.CodeOf(err); code {
	case dErrors.CodeInvalidInput:
		return http.StatusBadRequest, string(code)
	case dErrors.CodeNotFound:
		return http.StatusNotFound, string(code)
	case dErrors.CodeInvalidConfig, dErrors.CodeInvariantViolation:
		return http.StatusUnprocessableEntity, string(code)
	}
	return http.StatusInternalServerError, "internal_error"
}
