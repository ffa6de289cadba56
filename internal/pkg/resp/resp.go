/*
Package resp provides helper functions for constructing and sending standardized HTTP JSON responses.

Every response carries a boolean success flag; successful responses add an optional
message and data payload, while error responses carry the message from the errs package
and a non-2xx status code.
*/
package resp

import (
	"encoding/json"
	"net/http"

	"lanshare/internal/pkg/errs"
	"lanshare/internal/pkg/logx"
)

// JSONResponse defines the standardized JSON response structure returned to clients.
type JSONResponse struct {
	// Success reports whether the request was handled successfully.
	Success bool `json:"success"`

	// Message is the client-friendly status description or error message.
	Message string `json:"message,omitempty"`

	// Data is the optional response payload.
	Data any `json:"data,omitempty"`
}

// Fields is a flat success payload merged next to the success flag, used by
// routes whose response shape is flat rather than nested under "data".
type Fields map[string]any

// RespondJSON is a generic response function used to set the Content-Type and send the JSON payload.
func RespondJSON(w http.ResponseWriter, r *http.Request, httpStatus int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")

	response, err := json.Marshal(payload)
	if err != nil {
		logx.Error(
			err,
			"Error encoding JSON response",
			"http_status", httpStatus,
		)

		http.Error(w, "Error encoding JSON response", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(httpStatus)
	w.Write(response)
}

// RespondSuccess sends a successful HTTP response (HTTP 200 OK) with a nested data payload.
func RespondSuccess(w http.ResponseWriter, r *http.Request, message string, data any) {
	res := JSONResponse{
		Success: true,
		Message: message,
		Data:    data,
	}
	RespondJSON(w, r, http.StatusOK, res)
}

// RespondCreated sends a successful HTTP response with status 201 Created.
func RespondCreated(w http.ResponseWriter, r *http.Request, message string, data any) {
	res := JSONResponse{
		Success: true,
		Message: message,
		Data:    data,
	}
	RespondJSON(w, r, http.StatusCreated, res)
}

// RespondFields sends a successful flat response: the success flag plus the
// given fields at the top level of the JSON object.
func RespondFields(w http.ResponseWriter, r *http.Request, fields Fields) {
	payload := make(map[string]any, len(fields)+1)
	payload["success"] = true
	for k, v := range fields {
		payload[k] = v
	}
	RespondJSON(w, r, http.StatusOK, payload)
}

// RespondError sends an HTTP response containing custom error information.
func RespondError(w http.ResponseWriter, r *http.Request, customErr *errs.CustomError) {
	if customErr == nil {
		customErr = errs.NewError(errs.ErrUnknown)
	}

	res := JSONResponse{
		Success: false,
		Message: customErr.Message,
	}
	RespondJSON(w, r, customErr.Status, res)
}
