// Package dto contains the request and response bodies of the HTTP API.
package dto

import (
	"strings"

	"wayfinder-backend/internal/application/services"
)

// NavigateRequest is the body of POST /api/navigate.
type NavigateRequest struct {
	SessionID     string `json:"session_id" validate:"omitempty,uuid"`
	StartLocation string `json:"start_location" validate:"max=200"`
	Destination   string `json:"destination" validate:"required,max=200"`
	UseAI         *bool  `json:"use_ai,omitempty"`
}

// ToService converts the body to a service request. use_ai defaults to true.
func (r NavigateRequest) ToService() services.NavigateRequest {
	return services.NavigateRequest{
		SessionID:   r.SessionID,
		Start:       strings.TrimSpace(r.StartLocation),
		Destination: strings.TrimSpace(r.Destination),
		UseAI:       useAI(r.UseAI),
	}
}

// RecoverRequest is the body of POST /api/recover.
type RecoverRequest struct {
	SessionID string `json:"session_id" validate:"omitempty,uuid"`
	Landmark  string `json:"landmark" validate:"required,max=200"`
	UseAI     *bool  `json:"use_ai,omitempty"`
}

func (r RecoverRequest) ToService() services.RecoverRequest {
	return services.RecoverRequest{
		SessionID: r.SessionID,
		Landmark:  strings.TrimSpace(r.Landmark),
		UseAI:     useAI(r.UseAI),
	}
}

// SearchRequest is the body of POST /api/search.
type SearchRequest struct {
	Query string `json:"query" validate:"required,max=200"`
	UseAI *bool  `json:"use_ai,omitempty"`
}

func (r SearchRequest) ToService() services.SearchRequest {
	return services.SearchRequest{
		Query: strings.TrimSpace(r.Query),
		UseAI: useAI(r.UseAI),
	}
}

func useAI(v *bool) bool {
	return v == nil || *v
}

// ValidationError describes one rejected field.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}
