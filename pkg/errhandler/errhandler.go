// Package errhandler turns any failure value into something a console user can
// read, and decides whether the failure is worth retrying.
package errhandler

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"strings"

	apperrors "github.com/utafrali/productconsole/pkg/errors"
	"github.com/utafrali/productconsole/pkg/jsend"
)

// User-facing fallback messages.
const (
	MsgValidationFailed = "Validation failed"
	MsgInvalidRequest   = "Invalid request"
	MsgServerError      = "A server error occurred. Please try again later."
	MsgUnexpected       = "An unexpected error occurred"
)

// networkMarkers are matched case-sensitively against generic error messages.
var networkMarkers = []string{"Network", "fetch", "timeout"}

// Message derives a user-facing message from any value. It never panics and
// never returns an empty string for a nil or unknown input.
func Message(v any) string {
	switch e := v.(type) {
	case nil:
		return MsgUnexpected
	case string:
		return e
	case error:
		if isNilError(e) {
			return MsgUnexpected
		}
		if apiErr, ok := apperrors.AsAPIError(e); ok {
			return apiMessage(apiErr)
		}
		if tErr, ok := apperrors.AsTransportError(e); ok {
			return tErr.Message
		}
		return e.Error()
	default:
		return MsgUnexpected
	}
}

func apiMessage(e *apperrors.APIError) string {
	if e.IsValidationError() {
		fields := e.ValidationErrors()
		if len(fields) > 0 && len(fields[0].Messages) > 0 && fields[0].Messages[0] != "" {
			return fields[0].Messages[0]
		}
		return MsgValidationFailed
	}

	switch {
	case e.IsClientError():
		if e.Message == "" {
			return MsgInvalidRequest
		}
		return e.Message
	case e.IsServerError():
		// The raw server message stays in Details for diagnostics only.
		return MsgServerError
	default:
		return e.Message
	}
}

// isNilError reports whether err holds a nil pointer, whose methods would
// dereference it.
func isNilError(err error) bool {
	if err == nil {
		return true
	}
	v := reflect.ValueOf(err)
	return v.Kind() == reflect.Pointer && v.IsNil()
}

// Details is the structured diagnostic record for a failure.
type Details struct {
	Message          string            `json:"message"`
	Status           jsend.Status      `json:"status,omitempty"`
	Code             *int              `json:"code,omitempty"`
	Timestamp        string            `json:"timestamp,omitempty"`
	Path             string            `json:"path,omitempty"`
	Method           string            `json:"method,omitempty"`
	ValidationErrors jsend.FieldErrors `json:"validationErrors,omitempty"`
}

// GetDetails builds the diagnostic record for v.
func GetDetails(v any) Details {
	d := Details{Message: Message(v)}

	err, ok := v.(error)
	if !ok {
		return d
	}
	apiErr, ok := apperrors.AsAPIError(err)
	if !ok {
		return d
	}

	d.Status = apiErr.Status
	d.Code = apiErr.Code
	d.Timestamp = apiErr.Timestamp
	if data, ok := apiErr.ErrorData(); ok {
		d.Path = data.Path
		d.Method = data.Method
	}
	if apiErr.IsValidationError() {
		d.ValidationErrors = apiErr.ValidationErrors()
	}
	return d
}

// LogValue implements slog.LogValuer.
func (d Details) LogValue() slog.Value {
	attrs := []slog.Attr{slog.String("message", d.Message)}
	if d.Status != "" {
		attrs = append(attrs, slog.String("status", string(d.Status)))
	}
	if d.Code != nil {
		attrs = append(attrs, slog.Int("code", *d.Code))
	}
	if d.Timestamp != "" {
		attrs = append(attrs, slog.String("timestamp", d.Timestamp))
	}
	if d.Path != "" {
		attrs = append(attrs, slog.String("path", d.Path))
	}
	if d.Method != "" {
		attrs = append(attrs, slog.String("method", d.Method))
	}
	if d.ValidationErrors != nil {
		attrs = append(attrs, slog.Any("validation_errors", d.ValidationErrors.Map()))
	}
	return slog.GroupValue(attrs...)
}

// IsNetworkError reports whether v is a generic error, not an APIError, whose
// message mentions the network, a fetch or a timeout.
func IsNetworkError(v any) bool {
	err, ok := v.(error)
	if !ok || isNilError(err) {
		return false
	}
	if _, isAPI := apperrors.AsAPIError(err); isAPI {
		return false
	}

	msg := err.Error()
	for _, marker := range networkMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// IsRetryableError reports whether repeating the request might succeed.
func IsRetryableError(v any) bool {
	if err, ok := v.(error); ok {
		if apiErr, isAPI := apperrors.AsAPIError(err); isAPI {
			if apiErr.IsClientError() {
				return false
			}
			if apiErr.IsServerError() {
				return true
			}
		}
	}
	return IsNetworkError(v)
}

// LogError writes the diagnostic record for v to logger, tagged with scope
// when given, then the original error when v is one. Logging never changes how
// v is classified.
func LogError(ctx context.Context, logger *slog.Logger, v any, scope string) {
	if logger == nil {
		logger = slog.Default()
	}

	msg := "API Error"
	if scope != "" {
		msg = fmt.Sprintf("API Error [%s]", scope)
	}
	logger.ErrorContext(ctx, msg, slog.Any("details", GetDetails(v)))

	if err, ok := v.(error); ok && !isNilError(err) {
		logger.ErrorContext(ctx, "Original error",
			slog.String("error", err.Error()),
			slog.String("type", fmt.Sprintf("%T", err)),
		)
	}
}
