package handler

import "github.com/condoerp/backend/internal/interfaces/http/dto"

// Response envelope types referenced by the swagger annotations on the
// handlers. The runtime envelope is dto.Response; these generic views
// exist so the generated docs can name the payload type.

// APIResponse documents a successful envelope with a typed payload.
type APIResponse[T any] struct {
	Success bool           `json:"success"`
	Data    T              `json:"data,omitempty"`
	Error   *dto.ErrorInfo `json:"error,omitempty"`
	Meta    *dto.Meta      `json:"meta,omitempty"`
}

// ErrorResponse documents a failed envelope.
type ErrorResponse struct {
	Success bool           `json:"success"`
	Error   *dto.ErrorInfo `json:"error"`
}

// SuccessResponse documents a successful envelope without a payload.
type SuccessResponse struct {
	Success bool `json:"success"`
}
