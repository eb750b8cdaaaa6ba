package errors

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/utafrali/productconsole/pkg/jsend"
)

// Sentinel errors matched by APIError and TransportError through errors.Is.
var (
	ErrClient       = errors.New("client-attributable failure")
	ErrServer       = errors.New("server-attributable failure")
	ErrUnauthorized = errors.New("unauthorized")
	ErrTransport    = errors.New("transport failure")
)

// defaultFailMessage is used when a fail envelope carries no message.
const defaultFailMessage = "An error occurred"

// APIError is built from a fail or error envelope and is not modified
// afterwards.
type APIError struct {
	Status     jsend.Status
	Code       *int
	Message    string
	Timestamp  string
	HTTPStatus int

	fail    *jsend.FailData
	errData *jsend.ErrorData
}

// FromEnvelope converts a non-success envelope into an APIError. httpStatus is
// the transport status the envelope arrived with. It returns nil for a
// success envelope.
func FromEnvelope(env jsend.Envelope, httpStatus int) *APIError {
	switch e := env.(type) {
	case *jsend.Fail:
		data := e.Data
		msg := data.Message
		if msg == "" {
			msg = defaultFailMessage
		}
		return &APIError{
			Status:     jsend.StatusFail,
			Message:    msg,
			HTTPStatus: httpStatus,
			fail:       &data,
		}
	case *jsend.Error:
		apiErr := &APIError{
			Status:     jsend.StatusError,
			Code:       e.Code,
			Message:    e.Message,
			HTTPStatus: httpStatus,
			errData:    e.Data,
		}
		if e.Data != nil {
			apiErr.Timestamp = e.Data.Timestamp
		}
		return apiErr
	default:
		return nil
	}
}

func (e *APIError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Code != nil {
		return fmt.Sprintf("%s (%d): %s", e.Status, *e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Status, e.Message)
}

// Is lets errors.Is match the sentinel errors of this package.
func (e *APIError) Is(target error) bool {
	if e == nil {
		return false
	}
	switch target {
	case ErrClient:
		return e.IsClientError()
	case ErrServer:
		return e.IsServerError()
	case ErrUnauthorized:
		return e.IsUnauthorized()
	}
	return false
}

// IsClientError reports whether the error came from a fail envelope.
func (e *APIError) IsClientError() bool {
	return e.Status == jsend.StatusFail
}

// IsServerError reports whether the error came from an error envelope.
func (e *APIError) IsServerError() bool {
	return e.Status == jsend.StatusError
}

// IsUnauthorized reports whether the envelope arrived with a 401 status.
func (e *APIError) IsUnauthorized() bool {
	return e.HTTPStatus == http.StatusUnauthorized
}

// IsValidationError reports whether this is a fail carrying a field-error map,
// even an empty one.
func (e *APIError) IsValidationError() bool {
	return e.IsClientError() && e.fail != nil && e.fail.Errors != nil
}

// ValidationErrors returns the ordered field errors, or nil when this is not a
// validation error.
func (e *APIError) ValidationErrors() jsend.FieldErrors {
	if !e.IsValidationError() {
		return nil
	}
	return e.fail.Errors
}

// FailData returns the data object of a fail envelope.
func (e *APIError) FailData() (jsend.FailData, bool) {
	if e.fail == nil {
		return jsend.FailData{}, false
	}
	return *e.fail, true
}

// ErrorData returns the data object of an error envelope.
func (e *APIError) ErrorData() (jsend.ErrorData, bool) {
	if e.errData == nil {
		return jsend.ErrorData{}, false
	}
	return *e.errData, true
}

// TransportError is a failure with no envelope to decode: connection errors,
// timeouts, or non-JSend error bodies.
type TransportError struct {
	Message    string
	StatusCode int
	Err        error
}

// defaultTransportMessage is used when the transport gave no message.
const defaultTransportMessage = "Network error occurred"

// NewTransportError builds a TransportError, falling back to a generic message.
func NewTransportError(message string, statusCode int, err error) *TransportError {
	if message == "" {
		message = defaultTransportMessage
	}
	return &TransportError{Message: message, StatusCode: statusCode, Err: err}
}

func (e *TransportError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.Message
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Is matches ErrTransport, and ErrUnauthorized for a 401 status.
func (e *TransportError) Is(target error) bool {
	if e == nil {
		return false
	}
	switch target {
	case ErrTransport:
		return true
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized
	}
	return false
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	return fmt.Errorf("%s: %w", message, err)
}

// AsAPIError is a shorthand for errors.As with *APIError. A nil *APIError
// stored in err does not match.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr != nil {
		return apiErr, true
	}
	return nil, false
}

// AsTransportError is a shorthand for errors.As with *TransportError. A nil
// *TransportError stored in err does not match.
func AsTransportError(err error) (*TransportError, bool) {
	var tErr *TransportError
	if errors.As(err, &tErr) && tErr != nil {
		return tErr, true
	}
	return nil, false
}
