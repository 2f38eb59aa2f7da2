package api

import "encoding/json"

// Envelope is the response wrapper the server puts around most payloads.
type Envelope[T any] struct {
	Success *bool          `json:"success,omitempty"`
	Data    T              `json:"data"`
	Meta    map[string]any `json:"meta,omitempty"`
	Error   *ErrorBody     `json:"error,omitempty"`
}

// Succeeded reports whether the envelope does not carry success:false.
// Responses without a success flag count as successful.
func (e *Envelope[T]) Succeeded() bool {
	return e.Success == nil || *e.Success
}

// ErrorBody is the error object inside a failed envelope.
type ErrorBody struct {
	Code    int    `json:"code,omitempty"`
	Message string `json:"message"`
}

// AuthData is the data section of a successful login.
type AuthData struct {
	Token string `json:"token"`
}

// Item is a single table row. Column sets differ per table, so rows stay untyped.
type Item = map[string]any

// ItemList is the envelope returned by getItems.
type ItemList = Envelope[[]Item]

// RawEnvelope keeps the data section undecoded.
type RawEnvelope = Envelope[json.RawMessage]
