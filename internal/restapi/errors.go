package restapi

import (
	"log/slog"
	"net/http"

	"bharatbus.in/internal/logging"
)

// FieldErrors maps a query parameter to its validation messages.
type FieldErrors map[string][]string

func (fe FieldErrors) add(field, message string) {
	fe[field] = append(fe[field], message)
}

func (api *RestAPI) validationErrorResponse(w http.ResponseWriter, r *http.Request, fieldErrors FieldErrors) {
	api.sendErrorWithData(w, r, http.StatusBadRequest, "validation error",
		map[string]interface{}{"fieldErrors": fieldErrors})
}

func (api *RestAPI) serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	logging.LogError(logging.FromContext(r.Context()), "request failed", err,
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("request_id", GetRequestID(r.Context())),
		slog.String("component", "restapi"))
	api.sendError(w, r, http.StatusInternalServerError, "internal server error")
}
