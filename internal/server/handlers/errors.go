package handlers

// errors.go maps domain errors and query outcomes to HTTP error responses

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/dentsusoken/oid4vc-verifier-endpoint-core-sub000/internal/domain"
	"github.com/dentsusoken/oid4vc-verifier-endpoint-core-sub000/internal/logger"
)

// OAuth style error codes used in the error field of ErrorResponse.
const (
	ErrorInvalidRequest    = "invalid_request"
	ErrorNotFound          = "not_found"
	ErrorServerError       = "server_error"
	ErrorRequestTooLarge   = "request_too_large"
	ErrorRateLimitExceeded = "rate_limit_exceeded"
)

// ErrorResponse is the body of every error response
type ErrorResponse struct {
	// OAuth style error code e.g. invalid_request
	Error string `json:"error" example:"invalid_request"`

	// Human readable description of the problem
	ErrorDescription string `json:"error_description,omitempty" example:"missing nonce"`

	// The HTTP status code returned
	StatusCode int `json:"statusCode" example:"400"`

	// The URI that was requested
	RequestURI string `json:"requestUri" example:"/ui/presentations"`

	// The HTTP method used to make the request e.g. GET, POST, etc
	HTTPMethod string `json:"httpMethod" example:"POST"`

	// A unique identifier to the HTTP request within the scope of the API provider
	ProviderCorrelationReference string `json:"providerCorrelationReference,omitempty"`

	// The DateTime corresponding to the error occurring
	ErrorDateTime string `json:"errorDateTime" example:"2025-03-01T12:00:00Z"`
}

// NewErrorResponse builds the error body for a request.
func NewErrorResponse(r *http.Request, statusCode int, code, description string) *ErrorResponse {
	return &ErrorResponse{
		Error:                        code,
		ErrorDescription:             description,
		StatusCode:                   statusCode,
		RequestURI:                   r.RequestURI,
		HTTPMethod:                   r.Method,
		ProviderCorrelationReference: middleware.GetReqID(r.Context()),
		ErrorDateTime:                time.Now().UTC().Format(time.RFC3339),
	}
}

// MapErrorToResponse maps err to a status code and error body.
//
//   - request body over the size limit: 413
//   - not_found: 404
//   - validation, state, protocol_mismatch, crypto: 400
//   - misconfiguration and anything that is not a domain error: 500
//
// The description of 500 responses is generic; the full error is logged server-side.
func MapErrorToResponse(err error, r *http.Request) *ErrorResponse {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		return NewErrorResponse(r, http.StatusRequestEntityTooLarge, ErrorRequestTooLarge,
			fmt.Sprintf("Request body exceeds maximum allowed size (%d bytes)", maxBytesErr.Limit))
	}

	var derr *domain.Error
	if !errors.As(err, &derr) {
		reqLogger := logger.ContextRequestLogger(r.Context())
		reqLogger.Error("unmapped error type",
			slog.String("error_type", fmt.Sprintf("%T", err)),
			slog.String("error", err.Error()),
		)
		return NewErrorResponse(r, http.StatusInternalServerError, ErrorServerError, "An internal error occurred")
	}

	switch derr.Code() {
	case domain.CodeNotFound:
		return NewErrorResponse(r, http.StatusNotFound, ErrorNotFound, derr.Message())
	case domain.CodeValidation, domain.CodeState, domain.CodeProtocolMismatch, domain.CodeCrypto:
		return NewErrorResponse(r, http.StatusBadRequest, ErrorInvalidRequest, derr.Message())
	case domain.CodeMisconfiguration:
		reqLogger := logger.ContextRequestLogger(r.Context())
		reqLogger.Error("verifier misconfiguration", slog.String("error", err.Error()))
		return NewErrorResponse(r, http.StatusInternalServerError, ErrorServerError, "The verifier is not configured to serve this request")
	case domain.CodeInternal:
		reqLogger := logger.ContextRequestLogger(r.Context())
		reqLogger.Error("internal error", slog.String("error", err.Error()))
		return NewErrorResponse(r, http.StatusInternalServerError, ErrorServerError, "An internal error occurred")
	default:
		return NewErrorResponse(r, http.StatusInternalServerError, ErrorServerError, "An internal error occurred")
	}
}

// RespondWithErrorResponse maps err and writes the error response.
func RespondWithErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	errorResponse := MapErrorToResponse(err, r)

	reqLogger := logger.ContextRequestLogger(r.Context())
	reqLogger.Warn("Request failed",
		slog.String("error", err.Error()),
		slog.Int("status_code", errorResponse.StatusCode),
		slog.String("error_code", errorResponse.Error),
	)

	RespondWithJSONPayload(w, errorResponse.StatusCode, errorResponse)
}

// RespondWithJSONPayload sends a JSON response with the given status code
func RespondWithJSONPayload(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			// headers are already written
			slog.Error("Failed to encode JSON response",
				slog.String("error", err.Error()),
			)
		}
	}
}
