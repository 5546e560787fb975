// Package response writes the success envelope of the HTTP API. Failures go
// through errors.WriteHTTPError, which writes the matching error envelope.
package response

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

// Response is the envelope of every successful response.
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Meta    *Meta       `json:"meta,omitempty"`
}

// Meta contains response metadata.
type Meta struct {
	RequestID string `json:"request_id,omitempty"`
	Timestamp string `json:"timestamp"`
}

// Builder provides a fluent interface for building responses.
type Builder struct {
	response *Response
	writer   http.ResponseWriter
	status   int
	headers  map[string]string
}

// New creates a builder; the request id is taken from the chi context.
func New(w http.ResponseWriter, r *http.Request) *Builder {
	b := &Builder{
		writer: w,
		response: &Response{
			Success: true,
			Meta: &Meta{
				Timestamp: time.Now().UTC().Format(time.RFC3339),
			},
		},
		status:  http.StatusOK,
		headers: make(map[string]string),
	}
	if r != nil {
		b.response.Meta.RequestID = middleware.GetReqID(r.Context())
	}
	return b
}

// Status sets the HTTP status code.
func (b *Builder) Status(code int) *Builder {
	b.status = code
	return b
}

// Data sets the payload.
func (b *Builder) Data(data interface{}) *Builder {
	b.response.Data = data
	return b
}

// Header adds a response header.
func (b *Builder) Header(key, value string) *Builder {
	b.headers[key] = value
	return b
}

// Send writes the response.
func (b *Builder) Send() error {
	b.writer.Header().Set("Content-Type", "application/json")
	for key, value := range b.headers {
		b.writer.Header().Set(key, value)
	}
	b.writer.WriteHeader(b.status)
	return json.NewEncoder(b.writer).Encode(b.response)
}

// OK sends a 200 response.
func OK(w http.ResponseWriter, r *http.Request, data interface{}) error {
	return New(w, r).Data(data).Send()
}

// Created sends a 201 response with a Location header.
func Created(w http.ResponseWriter, r *http.Request, data interface{}, location string) error {
	return New(w, r).
		Status(http.StatusCreated).
		Header("Location", location).
		Data(data).
		Send()
}

// NoContent sends a 204 response.
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}
