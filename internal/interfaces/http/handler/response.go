package handler

import "github.com/vertinimas/portal/internal/interfaces/http/dto"

// Typed envelopes referenced by the swagger annotations. Handlers build
// responses with the dto helpers; these only describe the shape.

// ErrorResponse is the envelope of a failed request
type ErrorResponse struct {
	Success bool          `json:"success" example:"false"`
	Error   dto.ErrorInfo `json:"error"`
}

// APIResponse is the envelope of a successful request
type APIResponse[T any] struct {
	Success bool `json:"success" example:"true"`
	Data    T    `json:"data"`
}

// ListResponse is the envelope of a paginated listing
type ListResponse[T any] struct {
	Success bool     `json:"success" example:"true"`
	Data    []T      `json:"data"`
	Meta    dto.Meta `json:"meta"`
}
