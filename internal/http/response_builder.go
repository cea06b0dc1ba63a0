package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"wellness/internal/core"
	"wellness/internal/log"
)

// JSONResponseBuilder provides a fluent API for JSON responses.
type JSONResponseBuilder struct {
	statusCode int
	headers    map[string]string
	payload    any
}

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

func (b *JSONResponseBuilder) Header(name, value string) *JSONResponseBuilder {
	b.headers[name] = value
	return b
}

func (b *JSONResponseBuilder) Body(v any) *JSONResponseBuilder {
	b.payload = v
	return b
}

// Write encodes the payload. A nil payload writes only the status.
func (b *JSONResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	if b.payload == nil {
		w.WriteHeader(b.statusCode)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(b.statusCode)
	if err := json.NewEncoder(w).Encode(b.payload); err != nil {
		slog.Error("Failed to encode JSON response", "error", err)
	}
}

type errorBody struct {
	Error string `json:"error"`
}

func ErrorResponse(statusCode int, message string) *JSONResponseBuilder {
	return NewJSONResponse().Status(statusCode).Body(errorBody{Error: message})
}

func BadRequestError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusBadRequest, message)
}

func InternalServerError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusInternalServerError, message)
}

func NotFoundError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusNotFound, message)
}

func MethodNotAllowedError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusMethodNotAllowed, message)
}

// writeServiceError maps a service error to its HTTP status: validation
// failures are 400, everything else is 500 with the store message.
func writeServiceError(w http.ResponseWriter, r *http.Request, op string, err error) {
	var ve *core.ValidationError
	if errors.As(err, &ve) {
		BadRequestError(ve.Message).Write(w)
		return
	}

	errorType, message := log.ErrorTypeInternal, err.Error()
	var se *core.StoreError
	if errors.As(err, &se) {
		errorType, message = log.ErrorTypeDatabase, se.Error()
	}
	log.NewStructuredLogger(log.FromContext(r.Context())).
		LogError(r.Context(), "Request failed", err, op, errorType)
	InternalServerError(message).Write(w)
}
