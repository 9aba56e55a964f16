package errors

const (
	HttpInternalError        = "internal_error"
	HttpInvalidJsonError     = "invalid_json"
	HttpUnknownNameError     = "unknown_name"
	HttpInvalidIntervalError = "invalid_interval"
	HttpDuplicateReading     = "duplicate_reading"
)

// ErrorResponse is the error response body for all API endpoints.
type ErrorResponse struct {
	ErrorType string      `json:"error_type"`
	Message   string      `json:"message"`
	Details   interface{} `json:"details,omitempty"`
}
