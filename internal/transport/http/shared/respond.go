// Package shared centralizes the JSON envelopes of the HTTP layer so every
// handler answers in the same shape.
package shared

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	dErrors "custodia/pkg/domain-errors"
)

// maxBodyBytes bounds request bodies. Attendance payloads are small; anything
// bigger is abuse.
const maxBodyBytes = 1 << 20

// WriteJSON writes a response body with the given status.
func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}

// errorEnvelope is the uniform error shape of the API.
type errorEnvelope struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// WriteError translates a domain error into its HTTP status and envelope.
// Unknown errors answer as opaque 500s so internals never leak.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	message := dErrors.MessageOf(err)
	if code == dErrors.CodeInternal {
		message = "internal error"
	}

	var envelope errorEnvelope
	envelope.Error.Code = string(code)
	envelope.Error.Message = message
	WriteJSON(w, dErrors.ToHTTPStatus(code), envelope)
}

// DecodeJSON decodes a request body into dst, rejecting unknown fields and
// oversized payloads.
func DecodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return dErrors.New(dErrors.CodeBadRequest, "invalid request body")
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return dErrors.New(dErrors.CodeBadRequest, "request body must contain a single JSON object")
	}
	return nil
}
