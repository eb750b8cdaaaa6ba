// Package jsend decodes and writes the JSend response envelope used by the
// products API: {"status": "success" | "fail" | "error", ...}.
package jsend

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Status is the envelope discriminator.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFail    Status = "fail"
	StatusError   Status = "error"
)

// ErrNotEnvelope is returned by Decode when the body is not a JSend envelope.
var ErrNotEnvelope = errors.New("jsend: body is not a JSend envelope")

// Envelope is one of *Success, *Fail or *Error. The set is closed.
type Envelope interface {
	Status() Status
	envelope()
}

// Success carries an arbitrary payload.
type Success struct {
	Data json.RawMessage
}

// Fail is a client-attributable failure.
type Fail struct {
	Data FailData
}

// Error is a server-attributable failure.
type Error struct {
	Message string
	Code    *int
	Data    *ErrorData
}

func (*Success) Status() Status { return StatusSuccess }
func (*Fail) Status() Status    { return StatusFail }
func (*Error) Status() Status   { return StatusError }

func (*Success) envelope() {}
func (*Fail) envelope()    {}
func (*Error) envelope()   {}

// Empty reports whether the payload is absent or null.
func (s *Success) Empty() bool {
	return len(s.Data) == 0 || bytes.Equal(bytes.TrimSpace(s.Data), []byte("null"))
}

// Decode unmarshals the success payload into v. An absent or null payload
// leaves v untouched.
func (s *Success) Decode(v any) error {
	if v == nil || s.Empty() {
		return nil
	}
	if err := json.Unmarshal(s.Data, v); err != nil {
		return fmt.Errorf("decode success payload: %w", err)
	}
	return nil
}

// ErrorData is the optional diagnostic object attached to an error envelope.
type ErrorData struct {
	Timestamp string `json:"timestamp,omitempty"`
	Path      string `json:"path,omitempty"`
	Method    string `json:"method,omitempty"`
}

type wireEnvelope struct {
	Status  Status          `json:"status"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Code    *int            `json:"code"`
}

// Decode interprets body as a JSend envelope. Bodies without a recognised
// status tag yield ErrNotEnvelope.
func Decode(body []byte) (Envelope, error) {
	var w wireEnvelope
	if err := json.Unmarshal(body, &w); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotEnvelope, err)
	}

	switch w.Status {
	case StatusSuccess:
		return &Success{Data: w.Data}, nil
	case StatusFail:
		f := &Fail{}
		if !isNull(w.Data) {
			if err := json.Unmarshal(w.Data, &f.Data); err != nil {
				return nil, fmt.Errorf("%w: fail data: %v", ErrNotEnvelope, err)
			}
		}
		return f, nil
	case StatusError:
		e := &Error{Message: w.Message, Code: w.Code}
		if !isNull(w.Data) {
			e.Data = &ErrorData{}
			if err := json.Unmarshal(w.Data, e.Data); err != nil {
				return nil, fmt.Errorf("%w: error data: %v", ErrNotEnvelope, err)
			}
		}
		return e, nil
	default:
		return nil, fmt.Errorf("%w: unknown status %q", ErrNotEnvelope, w.Status)
	}
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}
