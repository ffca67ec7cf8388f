package dto

import "github.com/estatehub/property-moderation/pkg/util/pagination"

// SuccessEnvelope wraps every successful response.
type SuccessEnvelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
	Meta    *Meta       `json:"meta,omitempty"`
}

// Meta carries list metadata.
type Meta struct {
	Pagination pagination.Meta `json:"pagination"`
}

// ErrorEnvelope wraps every failed response.
type ErrorEnvelope struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	StatusCode int    `json:"statusCode"`
}
