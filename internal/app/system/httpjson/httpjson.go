// internal/app/system/httpjson/httpjson.go

// Package httpjson holds the small request/response helpers shared by the
// API handlers: one way to write a JSON body, one way to write the
// {"message": "..."} error envelope, one way to decode a request body.
package httpjson

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
)

// maxBodyBytes caps request bodies; the API only ever receives small
// JSON documents.
const maxBodyBytes = 1 << 20

// Write serializes v as JSON with the given status code.
func Write(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// errorBody is the error envelope every failure response uses.
type errorBody struct {
	Message string `json:"message"`
}

// Error writes the error envelope with the given status code.
func Error(w http.ResponseWriter, status int, message string) {
	Write(w, status, errorBody{Message: message})
}

// Decode parses the request body into dst, rejecting unknown fields and
// oversized bodies. Returns a caller-safe error message on failure.
func Decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body required")
		}
		return errors.New("invalid request body")
	}
	return nil
}
