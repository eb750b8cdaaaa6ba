package jsend

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// FieldError holds the messages reported for a single field.
type FieldError struct {
	Field    string   `json:"field"`
	Messages []string `json:"messages"`
}

// FieldErrors is the field-to-messages map of a fail envelope, kept in the
// order the keys appeared on the wire. A nil value means the map was absent; a
// non-nil empty value means it was present but empty.
type FieldErrors []FieldError

// Get returns the messages for field, or nil.
func (fe FieldErrors) Get(field string) []string {
	for _, f := range fe {
		if f.Field == field {
			return f.Messages
		}
	}
	return nil
}

// Map flattens the list into a map. Ordering is lost.
func (fe FieldErrors) Map() map[string][]string {
	out := make(map[string][]string, len(fe))
	for _, f := range fe {
		out[f.Field] = f.Messages
	}
	return out
}

// UnmarshalJSON decodes a JSON object while preserving key order.
func (fe *FieldErrors) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("decode field errors: %w", err)
	}
	if tok == nil {
		*fe = nil
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("decode field errors: expected object, got %v", tok)
	}

	out := FieldErrors{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("decode field errors: %w", err)
		}
		key, _ := keyTok.(string)

		var msgs []string
		if err := dec.Decode(&msgs); err != nil {
			return fmt.Errorf("decode field errors for %q: %w", key, err)
		}
		out = append(out, FieldError{Field: key, Messages: msgs})
	}
	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("decode field errors: %w", err)
	}

	*fe = out
	return nil
}

// MarshalJSON encodes the list as a JSON object in list order.
func (fe FieldErrors) MarshalJSON() ([]byte, error) {
	if fe == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range fe {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.Field)
		if err != nil {
			return nil, err
		}
		msgs := f.Messages
		if msgs == nil {
			msgs = []string{}
		}
		val, err := json.Marshal(msgs)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// FailData is the data object of a fail envelope. Keys other than message and
// errors are kept verbatim in Extra.
type FailData struct {
	Message string
	Errors  FieldErrors
	Extra   map[string]json.RawMessage
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *FailData) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("decode fail data: %w", err)
	}

	var out FailData
	for key, val := range raw {
		switch key {
		case "message":
			if isNull(val) {
				continue
			}
			if err := json.Unmarshal(val, &out.Message); err != nil {
				return fmt.Errorf("decode fail data message: %w", err)
			}
		case "errors":
			if err := out.Errors.UnmarshalJSON(val); err != nil {
				return err
			}
		default:
			if out.Extra == nil {
				out.Extra = make(map[string]json.RawMessage)
			}
			out.Extra[key] = val
		}
	}

	*d = out
	return nil
}

// MarshalJSON implements json.Marshaler.
func (d FailData) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	write := func(key string, val []byte) {
		if !first {
			buf.WriteByte(',')
		}
		first = false
		k, _ := json.Marshal(key)
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(val)
	}

	if d.Message != "" {
		v, err := json.Marshal(d.Message)
		if err != nil {
			return nil, err
		}
		write("message", v)
	}
	if d.Errors != nil {
		v, err := d.Errors.MarshalJSON()
		if err != nil {
			return nil, err
		}
		write("errors", v)
	}

	keys := make([]string, 0, len(d.Extra))
	for k := range d.Extra {
		if k == "message" || k == "errors" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		write(k, d.Extra[k])
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}
