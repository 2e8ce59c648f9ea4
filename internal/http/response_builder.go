// Package http exposes the budgeting services as a JSON API.
//
// This file implements a small builder for JSON responses so every handler
// writes status, headers and body the same way.
package http

import (
	"encoding/json"
	"net/http"
)

// JSONResponseBuilder provides a fluent API for building JSON responses.
type JSONResponseBuilder struct {
	statusCode int
	headers    map[string]string
	body       any
}

// messageBody is the shape of informational responses.
type messageBody struct {
	Message string `json:"message"`
}

// errorBody is the shape of every error response.
type errorBody struct {
	Error string `json:"error"`
}

// NewJSONResponse creates a new response builder with default 200 status.
func NewJSONResponse() *JSONResponseBuilder {
	return &JSONResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

func (b *JSONResponseBuilder) Status(code int) *JSONResponseBuilder {
	b.statusCode = code
	return b
}

func (b *JSONResponseBuilder) Header(key, value string) *JSONResponseBuilder {
	b.headers[key] = value
	return b
}

// Body sets the value encoded as the response body.
func (b *JSONResponseBuilder) Body(v any) *JSONResponseBuilder {
	b.body = v
	return b
}

// Message sets a {"message": msg} body.
func (b *JSONResponseBuilder) Message(msg string) *JSONResponseBuilder {
	return b.Body(messageBody{Message: msg})
}

// Error sets a {"error": msg} body.
func (b *JSONResponseBuilder) Error(msg string) *JSONResponseBuilder {
	return b.Body(errorBody{Error: msg})
}

// Write sends the response. Encoding errors after the header is written
// cannot be reported to the client and are returned to the caller.
func (b *JSONResponseBuilder) Write(w http.ResponseWriter) error {
	h := w.Header()
	h.Set("Content-Type", "application/json; charset=utf-8")
	for k, v := range b.headers {
		h.Set(k, v)
	}
	w.WriteHeader(b.statusCode)
	if b.body == nil {
		return nil
	}
	return json.NewEncoder(w).Encode(b.body)
}

// listOf keeps empty collections encoded as [] rather than null.
func listOf[T any](xs []T) []T {
	if xs == nil {
		return []T{}
	}
	return xs
}
