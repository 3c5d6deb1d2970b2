// Package apierror defines the JSON error envelope returned by the API.
// Handlers never put raw database errors in these bodies.
package apierror

// APIError is the body of every 4xx/5xx response.
type APIError struct {
	Detail string `json:"detail"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// ValidationError carries one message per offending field.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "validation failed", Fields: fields}
}
