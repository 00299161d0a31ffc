package dto

import "github.com/radieske/bet-tracker/internal/bet-service/domain"

// ErrorResponse é o corpo de 400/404/500
type ErrorResponse struct {
	Error string `json:"error"`
}

// ValidationErrorResponse é o corpo do 422
type ValidationErrorResponse struct {
	Error  string              `json:"error"` // sempre "validation failed"
	Fields []domain.FieldError `json:"fields"`
}

// RootResponse é a resposta de GET /
type RootResponse struct {
	Message string `json:"message"`
	Version string `json:"version"`
	Status  string `json:"status"`
}

type HealthResponse struct {
	Status  string `json:"status"` // healthy | unhealthy
	Service string `json:"service"`
}
