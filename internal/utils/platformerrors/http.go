package platformerrors

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// HTTPErrorResponse is the JSON envelope written for every failed request.
type HTTPErrorResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Type      string `json:"error_type,omitempty"`
	Code      string `json:"code,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// WriteHTTPError writes a PlatformError as an HTTP response.
// It maps the error type to an appropriate HTTP status code and formats the response.
func WriteHTTPError(c *gin.Context, err *PlatformError, log zerolog.Logger) {
	if err == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, HTTPErrorResponse{
			Message: "Server error",
			Type:    "internal_error",
		})
		return
	}

	LogError(log, err)

	c.AbortWithStatusJSON(ErrorTypeToHTTPStatus(err.Type), HTTPErrorResponse{
		Message:   err.Message,
		Type:      errorTypeToString(err.Type),
		Code:      err.UUID,
		RequestID: err.RequestID,
	})
}

// WriteError writes a generic error as an HTTP response.
// If the error is a PlatformError, it will be handled appropriately.
// Otherwise fallback is reported to the client and err is only logged.
func WriteError(c *gin.Context, err error, fallback string, log zerolog.Logger) {
	if platformErr := GetPlatformError(err); platformErr != nil {
		WriteHTTPError(c, platformErr, log)
		return
	}

	log.Error().Err(err).Str("stack", string(debug.Stack())).Msg(fallback)
	c.AbortWithStatusJSON(http.StatusInternalServerError, HTTPErrorResponse{
		Message: fallback,
		Type:    "internal_error",
	})
}

// errorTypeToString converts an ErrorType to a snake_case string for API responses.
func errorTypeToString(t ErrorType) string {
	switch t {
	case ErrorTypeNotFound:
		return "not_found_error"
	case ErrorTypeValidation:
		return "validation_error"
	case ErrorTypeConflict:
		return "conflict_error"
	case ErrorTypeForbidden:
		return "forbidden_error"
	case ErrorTypeExpired:
		return "expired_error"
	case ErrorTypeTimeout:
		return "timeout_error"
	case ErrorTypeNotImplemented:
		return "not_implemented_error"
	case ErrorTypeExternal:
		return "external_error"
	default:
		return "internal_error"
	}
}
