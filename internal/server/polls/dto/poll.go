package dto

import (
	"time"

	"github.com/Alwanly/forkauthority-polls/internal/viewpoll"
)

// CreatePollRequest represents a new poll
type CreatePollRequest struct {
	Title       string   `json:"title" validate:"required,max=200" example:"Friday lunch"`
	Restaurants []string `json:"restaurants" validate:"max=50,dive,required,max=100" example:"Tacos,Ramen"`
}

// CreatePollResponse carries the id of the created poll
type CreatePollResponse struct {
	ID string `json:"id" example:"01922f4e-5b8a-7c3d-9e1f-2a3b4c5d6e7f"`
}

// GetPollResponse is the current state of a poll as the stream would show it
type GetPollResponse struct {
	ID        string         `json:"id" example:"01922f4e-5b8a-7c3d-9e1f-2a3b4c5d6e7f"`
	Title     string         `json:"title" example:"Friday lunch"`
	ETag      string         `json:"etag" example:"01922f4e-6c1d-7a2b-8f3e-4d5c6b7a8f9e"`
	UpdatedAt time.Time      `json:"updated_at" example:"2026-10-19T12:00:00Z"`
	State     viewpoll.State `json:"state" swaggertype:"object"`
}
