package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
)

// JSONBody is the envelope of every JSON answer.
type JSONBody struct {
	Data  any          `json:"data,omitempty"`
	Error *ErrorDetail `json:"error,omitempty"`
}

type ErrorDetail struct {
	Code    string              `json:"code"`
	Message string              `json:"message"`
	Details map[string][]string `json:"details,omitempty"`
}

type jsonResponse struct {
	status int
	body   JSONBody
}

func (j jsonResponse) Render(w http.ResponseWriter, _ *http.Request) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(j.status)
	return json.NewEncoder(w).Encode(j.body)
}

// JSON answers 200 with v as data.
func JSON(v any) Response {
	return jsonResponse{status: http.StatusOK, body: JSONBody{Data: v}}
}

// JSONError answers with status and err described in the error field.
// Validation errors carry their per-field messages.
func JSONError(status int, err error) Response {
	return jsonError(status, "", err)
}

// jsonError is JSONError with a known error code. An empty code is taken from
// an HTTPError in err, or falls back to the status.
func jsonError(status int, code string, err error) Response {
	detail := &ErrorDetail{Code: code, Message: http.StatusText(status)}
	var httpErr HTTPError
	if detail.Code == "" && errors.As(err, &httpErr) {
		detail.Code = httpErr.Key
	}
	var valErr ValidationError
	if errors.As(err, &valErr) {
		detail.Code = "validation_failed"
		detail.Message = valErr.Error()
		detail.Details = valErr
	}
	if detail.Code == "" {
		detail.Code = statusCode(status)
	}
	if status < http.StatusInternalServerError && detail.Details == nil && err != nil {
		detail.Message = err.Error()
	}
	return jsonResponse{status: status, body: JSONBody{Error: detail}}
}

// statusCode turns 404 into "not_found".
func statusCode(status int) string {
	text := http.StatusText(status)
	if text == "" {
		return "internal_server_error"
	}
	return strings.ReplaceAll(strings.ToLower(text), " ", "_")
}
