package jsend

import (
	"encoding/json"
	"net/http"
)

type successBody struct {
	Status Status `json:"status"`
	Data   any    `json:"data"`
}

type failBody struct {
	Status Status   `json:"status"`
	Data   FailData `json:"data"`
}

type errorBody struct {
	Status  Status     `json:"status"`
	Message string     `json:"message"`
	Code    *int       `json:"code,omitempty"`
	Data    *ErrorData `json:"data,omitempty"`
}

// WriteJSON writes v as JSON with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Headers are already sent; nothing meaningful can be done if encoding fails.
	_ = json.NewEncoder(w).Encode(v)
}

// WriteSuccess writes a success envelope around data.
func WriteSuccess(w http.ResponseWriter, status int, data any) {
	WriteJSON(w, status, successBody{Status: StatusSuccess, Data: data})
}

// WriteFail writes a fail envelope.
func WriteFail(w http.ResponseWriter, status int, data FailData) {
	WriteJSON(w, status, failBody{Status: StatusFail, Data: data})
}

// WriteError writes an error envelope.
func WriteError(w http.ResponseWriter, status int, message string, code *int, data *ErrorData) {
	WriteJSON(w, status, errorBody{Status: StatusError, Message: message, Code: code, Data: data})
}

// Code is a helper for building the optional numeric code of an error envelope.
func Code(c int) *int {
	return &c
}
