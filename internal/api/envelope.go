package api

import (
	"strings"

	"github.com/danielgtaylor/huma/v2"
)

// Envelope is the uniform response wrapper. Success responses carry the
// payload in data; error responses carry the coded error in error.
type Envelope struct {
	Success bool `json:"success"`
	Data    any  `json:"data,omitempty"`
	Error   any  `json:"error,omitempty"`
}

// EnvelopeTransformer wraps every response body in the Envelope shape.
// Registered on the huma config so handlers return plain bodies.
func EnvelopeTransformer(_ huma.Context, status string, v any) (any, error) {
	if v == nil {
		return &Envelope{Success: strings.HasPrefix(status, "2")}, nil
	}

	if apiErr, ok := v.(*APIError); ok {
		return &Envelope{Success: false, Error: apiErr}, nil
	}
	if _, ok := v.(huma.StatusError); ok {
		return &Envelope{Success: false, Error: v}, nil
	}

	return &Envelope{Success: true, Data: v}, nil
}
